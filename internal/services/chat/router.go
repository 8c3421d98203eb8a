package chat

import (
	"strings"

	"github.com/ternarybob/geoscope/internal/models"
)

// QueryIntent represents different types of user questions
type QueryIntent string

const (
	// QueryIntentCount answers directly from the counting operation
	QueryIntentCount QueryIntent = "count"
	// QueryIntentStatistic precomputes aggregates, then delegates for phrasing
	QueryIntentStatistic QueryIntent = "statistic"
	// QueryIntentOpen delegates with the full profile summary
	QueryIntentOpen QueryIntent = "open"
)

// QueryClassification holds the routing decision for one question.
// Classification is stateless: every question is scanned fresh.
type QueryClassification struct {
	Intent       QueryIntent
	Attribute    string // matched attribute name, when any
	DatasetIndex int    // profile the attribute came from
	Value        string // extracted comparison value for counting
}

var countKeywords = []string{"how many", "count", "number of"}

var statKeywords = []string{"average", "mean", "median", "sum"}

// valueStopwords are filler tokens skipped when hunting for the
// comparison value adjacent to a matched attribute name.
var valueStopwords = map[string]bool{
	"is": true, "are": true, "was": true, "equal": true, "equals": true,
	"to": true, "of": true, "the": true, "a": true, "an": true,
	"with": true, "value": true, "set": true, "=": true,
}

// ClassifyQuery scans a question for counting and statistic intent and
// matches attribute names from the loaded profiles as substrings.
//
// This is a known-coarse keyword heuristic, not a parser; it lives behind
// the router so it can be swapped for a real classifier without touching
// the statistics engine or the normalizer. When several attribute names
// appear in the question, the longest match wins ("state_code" beats
// "state"); equal lengths fall back to profile order.
func ClassifyQuery(query string, profiles []*models.DatasetProfile) *QueryClassification {
	queryLower := strings.ToLower(strings.TrimSpace(query))

	hasCount := containsAny(queryLower, countKeywords)
	hasStat := containsAny(queryLower, statKeywords)

	attribute, datasetIdx := matchAttribute(queryLower, profiles)

	if hasCount && attribute != "" {
		value := adjacentValue(queryLower, attribute)
		if value != "" {
			return &QueryClassification{
				Intent:       QueryIntentCount,
				Attribute:    attribute,
				DatasetIndex: datasetIdx,
				Value:        value,
			}
		}
		// Counting intent without a comparison value still benefits from
		// precomputed frequencies, so treat it like a statistic question.
		return &QueryClassification{
			Intent:       QueryIntentStatistic,
			Attribute:    attribute,
			DatasetIndex: datasetIdx,
		}
	}

	if hasStat && attribute != "" {
		return &QueryClassification{
			Intent:       QueryIntentStatistic,
			Attribute:    attribute,
			DatasetIndex: datasetIdx,
		}
	}

	// Default: delegation. An unmatched question is not an error.
	return &QueryClassification{Intent: QueryIntentOpen}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// matchAttribute finds the attribute name appearing as a substring of the
// question. Longest name wins across all profiles; ties keep the first
// match in profile order.
func matchAttribute(queryLower string, profiles []*models.DatasetProfile) (string, int) {
	best := ""
	bestIdx := 0
	for i, profile := range profiles {
		for _, attr := range profile.Attributes {
			name := strings.ToLower(attr.Name)
			if name == "" || !strings.Contains(queryLower, name) {
				continue
			}
			if len(name) > len(best) {
				best = attr.Name
				bestIdx = i
			}
		}
	}
	return best, bestIdx
}

// adjacentValue extracts the comparison value next to the attribute
// mention: the first non-filler token after it, falling back to the token
// immediately before it ("how many active status records").
func adjacentValue(queryLower, attribute string) string {
	attrLower := strings.ToLower(attribute)
	pos := strings.Index(queryLower, attrLower)
	if pos < 0 {
		return ""
	}

	after := strings.Fields(queryLower[pos+len(attrLower):])
	for _, token := range after {
		token = trimToken(token)
		if token == "" || valueStopwords[token] {
			continue
		}
		return token
	}

	before := strings.Fields(queryLower[:pos])
	for i := len(before) - 1; i >= 0; i-- {
		token := trimToken(before[i])
		if token == "" || valueStopwords[token] || containsAny(token, countKeywords) {
			continue
		}
		// Words like "many" from the intent phrase are not values
		if token == "how" || token == "many" || token == "count" || token == "number" {
			continue
		}
		return token
	}

	return ""
}

func trimToken(token string) string {
	return strings.Trim(token, `"'?.,!:;()`)
}
