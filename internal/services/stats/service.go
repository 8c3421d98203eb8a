// Package stats computes per-attribute aggregates over canonical
// datasets on demand.
package stats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/geoscope/internal/models"
)

// DefaultTopK is the number of distinct values reported by TopValues.
const DefaultTopK = 5

// UnknownAttributeError indicates the statistics engine was invoked on an
// attribute absent from the dataset profile. This is a caller error, not
// a data error, and must not reach the end user silently.
type UnknownAttributeError struct {
	Attribute string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("unknown attribute %q", e.Attribute)
}

// Service implements on-demand aggregate computation.
type Service struct {
	logger arbor.ILogger
}

// NewService creates a new statistics service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// Aggregate computes mean, median and sum over all features supplying a
// non-null value for the attribute. The attribute must be numeric.
func (s *Service) Aggregate(dataset *models.Dataset, profile *models.DatasetProfile, attribute string) (*models.AttributeAggregates, error) {
	attr, ok := profile.Attribute(attribute)
	if !ok {
		return nil, &UnknownAttributeError{Attribute: attribute}
	}
	if attr.Type != models.AttributeNumber {
		return nil, fmt.Errorf("attribute %q is %s, not numeric", attribute, attr.Type)
	}

	var values []float64
	for _, feature := range dataset.Collection.Features {
		if v, ok := numericValue(feature.PropertyMap()[attribute]); ok {
			values = append(values, v)
		}
	}

	agg := &models.AttributeAggregates{Attribute: attribute, Count: len(values)}
	if len(values) == 0 {
		return agg, nil
	}

	for _, v := range values {
		agg.Sum += v
	}
	agg.Mean = agg.Sum / float64(len(values))
	agg.Median = median(values)

	return agg, nil
}

// TopValues returns the k most frequent distinct values of an attribute
// with their counts. Ties break by first-encountered order.
func (s *Service) TopValues(dataset *models.Dataset, profile *models.DatasetProfile, attribute string, k int) ([]models.ValueCount, error) {
	if _, ok := profile.Attribute(attribute); !ok {
		return nil, &UnknownAttributeError{Attribute: attribute}
	}
	if k <= 0 {
		k = DefaultTopK
	}

	counts := map[string]int{}
	var order []string

	for _, feature := range dataset.Collection.Features {
		value, present := feature.PropertyMap()[attribute]
		if !present || value == nil {
			continue
		}
		key := fmt.Sprintf("%v", value)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	// Stable sort keeps first-encountered order among equal counts
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > k {
		order = order[:k]
	}

	result := make([]models.ValueCount, 0, len(order))
	for _, key := range order {
		result = append(result, models.ValueCount{Value: key, Count: counts[key]})
	}
	return result, nil
}

// CountMatches answers "how many features have attribute A equal to
// value V". Comparison is exact but case-insensitive on the string
// rendering; when the attribute is numeric and the target parses as a
// number, numeric equality is also attempted so "42" matches 42.0.
func (s *Service) CountMatches(dataset *models.Dataset, profile *models.DatasetProfile, attribute, target string) (int, error) {
	attr, ok := profile.Attribute(attribute)
	if !ok {
		return 0, &UnknownAttributeError{Attribute: attribute}
	}

	targetNum, targetIsNum := 0.0, false
	if attr.Type == models.AttributeNumber {
		if n, err := strconv.ParseFloat(strings.TrimSpace(target), 64); err == nil {
			targetNum, targetIsNum = n, true
		}
	}

	count := 0
	for _, feature := range dataset.Collection.Features {
		value, present := feature.PropertyMap()[attribute]
		if !present || value == nil {
			continue
		}
		if strings.EqualFold(fmt.Sprintf("%v", value), strings.TrimSpace(target)) {
			count++
			continue
		}
		if targetIsNum {
			if n, ok := numericValue(value); ok && n == targetNum {
				count++
			}
		}
	}

	s.logger.Debug().
		Str("attribute", attribute).
		Str("target", target).
		Int("count", count).
		Msg("Counted attribute matches")

	return count, nil
}

func numericValue(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
