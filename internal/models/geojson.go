package models

import (
	"encoding/json"
	"time"
)

// FeatureCollectionType is the type tag every canonical dataset carries.
const FeatureCollectionType = "FeatureCollection"

// Geometry represents a feature geometry. Coordinates are kept opaque
// because nesting depth varies by geometry type and the pipeline never
// computes on them. The X/Y pair covers the ArcGIS point dialect, which
// has no type tag of its own.
type Geometry struct {
	Type        string          `json:"type,omitempty"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
	X           *float64        `json:"x,omitempty"`
	Y           *float64        `json:"y,omitempty"`
}

// Feature represents a single geographic feature. Standard GeoJSON carries
// its scalar values under "properties"; the ArcGIS dialect carries them
// under "attributes". Both are preserved as-is so a normalized document
// round-trips with feature content unchanged.
type Feature struct {
	Type       string                 `json:"type,omitempty"`
	Geometry   *Geometry              `json:"geometry"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// PropertyMap returns the feature's scalar values regardless of dialect.
// Never returns nil.
func (f *Feature) PropertyMap() map[string]interface{} {
	if f.Properties != nil {
		return f.Properties
	}
	if f.Attributes != nil {
		return f.Attributes
	}
	return map[string]interface{}{}
}

// GeometryTypeName returns the geometry type for histogram purposes,
// falling back to the collection-level ArcGIS geometry type when the
// feature geometry carries no tag of its own.
func (f *Feature) GeometryTypeName(collectionGeometryType string) string {
	if f.Geometry != nil && f.Geometry.Type != "" {
		return f.Geometry.Type
	}
	if collectionGeometryType != "" {
		return collectionGeometryType
	}
	return "Unknown"
}

// FeatureCollection is the canonical dataset shape all downstream
// components assume. GeometryType is retained when the payload arrived in
// the ArcGIS dialect so feature-level geometry tags can be backfilled.
type FeatureCollection struct {
	Type         string     `json:"type"`
	Features     []*Feature `json:"features"`
	GeometryType string     `json:"geometryType,omitempty"`
}

// Dataset binds a canonical collection to its source. Replaced wholesale
// on reload, never mutated in place once published.
type Dataset struct {
	ID         string             `json:"id"`
	SourceURL  string             `json:"source_url"`
	Collection *FeatureCollection `json:"collection"`
	LoadedAt   time.Time          `json:"loaded_at"`
}
