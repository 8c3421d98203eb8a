package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// AttributeType is the inferred scalar type of a dataset attribute,
// decided once at profiling time from the first non-null observed value.
type AttributeType string

const (
	AttributeNumber  AttributeType = "number"
	AttributeText    AttributeType = "text"
	AttributeBoolean AttributeType = "boolean"
	AttributeNull    AttributeType = "null"
)

// InferAttributeType maps a decoded JSON property value to its attribute type.
func InferAttributeType(value interface{}) AttributeType {
	switch value.(type) {
	case float64, float32, int, int64:
		return AttributeNumber
	case bool:
		return AttributeBoolean
	case string:
		return AttributeText
	case nil:
		return AttributeNull
	default:
		// Nested objects/arrays are rare in feature properties; treat as text
		return AttributeText
	}
}

// AttributeProfile holds per-attribute derived facts: inferred type and
// one sample value from the first feature that supplied the attribute.
type AttributeProfile struct {
	Name   string        `json:"name"`
	Type   AttributeType `json:"type"`
	Sample interface{}   `json:"sample,omitempty"`
}

// DatasetProfile is the whole-dataset structural summary, recomputed
// synchronously on every reload. Attributes are sorted by name so prompt
// construction and UI listings are reproducible run to run.
type DatasetProfile struct {
	DatasetID      string             `json:"dataset_id"`
	SourceURL      string             `json:"source_url"`
	FeatureCount   int                `json:"feature_count"`
	GeometryCounts map[string]int     `json:"geometry_counts"`
	Attributes     []AttributeProfile `json:"attributes"`
	ProfiledAt     time.Time          `json:"profiled_at"`
}

// Attribute looks up an attribute profile by name.
func (p *DatasetProfile) Attribute(name string) (*AttributeProfile, bool) {
	for i := range p.Attributes {
		if p.Attributes[i].Name == name {
			return &p.Attributes[i], true
		}
	}
	return nil, false
}

// AttributeNames returns the attribute names in profile order.
func (p *DatasetProfile) AttributeNames() []string {
	names := make([]string, len(p.Attributes))
	for i, a := range p.Attributes {
		names[i] = a.Name
	}
	return names
}

// Summary renders the profile as deterministic plain text for prompt
// construction and report generation.
func (p *DatasetProfile) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\n", p.SourceURL)
	fmt.Fprintf(&b, "Features: %d\n", p.FeatureCount)

	if len(p.GeometryCounts) > 0 {
		types := make([]string, 0, len(p.GeometryCounts))
		for t := range p.GeometryCounts {
			types = append(types, t)
		}
		sort.Strings(types)
		parts := make([]string, 0, len(types))
		for _, t := range types {
			parts = append(parts, fmt.Sprintf("%s=%d", t, p.GeometryCounts[t]))
		}
		fmt.Fprintf(&b, "Geometry types: %s\n", strings.Join(parts, ", "))
	}

	if len(p.Attributes) > 0 {
		b.WriteString("Attributes:\n")
		for _, a := range p.Attributes {
			fmt.Fprintf(&b, "  - %s (%s), sample: %v\n", a.Name, a.Type, a.Sample)
		}
	}

	return b.String()
}

// AttributeAggregates holds numeric aggregates over the non-null values
// of a single attribute.
type AttributeAggregates struct {
	Attribute string  `json:"attribute"`
	Count     int     `json:"count"`
	Mean      float64 `json:"mean"`
	Median    float64 `json:"median"`
	Sum       float64 `json:"sum"`
}

// ValueCount is one entry of a top-k value frequency result.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}
