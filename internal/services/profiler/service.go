// Package profiler derives a dataset's structural profile in one pass
// over its features.
package profiler

import (
	"sort"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/geoscope/internal/models"
)

// Service builds DatasetProfiles from canonical datasets.
type Service struct {
	logger arbor.ILogger
}

// NewService creates a new profiler service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// Profile inspects a canonical dataset and derives its structural
// summary: attribute set with inferred types and samples, feature count,
// and geometry-type histogram. A dataset with zero features profiles to
// an empty summary, not an error.
//
// The attribute set is exactly the union of property keys across all
// features. An attribute's type and sample come from the first feature
// that supplies a non-null value for it; attributes observed only as
// null keep the null type. Output order is sorted by name so repeated
// runs on the same dataset enumerate identically.
func (s *Service) Profile(dataset *models.Dataset) *models.DatasetProfile {
	profile := &models.DatasetProfile{
		DatasetID:      dataset.ID,
		SourceURL:      dataset.SourceURL,
		GeometryCounts: map[string]int{},
		Attributes:     []models.AttributeProfile{},
		ProfiledAt:     time.Now(),
	}

	if dataset.Collection == nil {
		return profile
	}

	seen := map[string]*models.AttributeProfile{}

	for _, feature := range dataset.Collection.Features {
		profile.FeatureCount++
		profile.GeometryCounts[feature.GeometryTypeName(dataset.Collection.GeometryType)]++

		for name, value := range feature.PropertyMap() {
			attr, ok := seen[name]
			if !ok {
				attr = &models.AttributeProfile{
					Name: name,
					Type: models.InferAttributeType(value),
				}
				if value != nil {
					attr.Sample = value
				}
				seen[name] = attr
				continue
			}
			// Upgrade null-only attributes once a real value appears
			if attr.Type == models.AttributeNull && value != nil {
				attr.Type = models.InferAttributeType(value)
				attr.Sample = value
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		profile.Attributes = append(profile.Attributes, *seen[name])
	}

	s.logger.Debug().
		Str("source", dataset.SourceURL).
		Int("features", profile.FeatureCount).
		Int("attributes", len(profile.Attributes)).
		Msg("Dataset profiled")

	return profile
}
