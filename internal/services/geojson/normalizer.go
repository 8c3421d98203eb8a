// Package geojson absorbs dialect divergence between standard GeoJSON and
// ArcGIS-style feature responses. It is the single place normalization
// happens; all downstream components assume the canonical shape.
package geojson

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ternarybob/geoscope/internal/models"
)

// ErrMalformedData indicates a payload with neither the canonical nor the
// ArcGIS-style shape. Fatal to that single source only.
var ErrMalformedData = errors.New("payload has no resolvable features array")

// payloadProbe reads just enough of a payload to decide its dialect.
type payloadProbe struct {
	Type         string          `json:"type"`
	GeometryType string          `json:"geometryType"`
	Features     json.RawMessage `json:"features"`
}

// Normalize converts a raw payload into a canonical FeatureCollection.
//
// Detection rule: a payload carrying both a "features" key and a
// "geometryType" key without a standard type tag is the ArcGIS dialect
// and gets a FeatureCollection wrapper synthesized around its features,
// leaving each feature's internal shape untouched. A payload already
// declaring itself a FeatureCollection passes through unchanged.
func Normalize(payload json.RawMessage) (*models.FeatureCollection, error) {
	var probe payloadProbe
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}

	if probe.Type == models.FeatureCollectionType {
		var fc models.FeatureCollection
		if err := json.Unmarshal(payload, &fc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
		}
		if fc.Features == nil {
			fc.Features = []*models.Feature{}
		}
		return &fc, nil
	}

	if probe.Type == "" && probe.GeometryType != "" && len(probe.Features) > 0 {
		var features []*models.Feature
		if err := json.Unmarshal(probe.Features, &features); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
		}
		return &models.FeatureCollection{
			Type:         models.FeatureCollectionType,
			Features:     features,
			GeometryType: esriGeometryName(probe.GeometryType),
		}, nil
	}

	return nil, ErrMalformedData
}

// esriGeometryName maps ArcGIS geometry type markers to GeoJSON names so
// the geometry histogram stays uniform across dialects.
func esriGeometryName(esriType string) string {
	switch esriType {
	case "esriGeometryPoint":
		return "Point"
	case "esriGeometryMultipoint":
		return "MultiPoint"
	case "esriGeometryPolyline":
		return "LineString"
	case "esriGeometryPolygon":
		return "Polygon"
	default:
		return esriType
	}
}
