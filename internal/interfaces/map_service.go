package interfaces

import "github.com/ternarybob/geoscope/internal/models"

// MapLayer is one dataset rendered on the map.
type MapLayer struct {
	Name       string                    `json:"name"`
	SourceURL  string                    `json:"source_url"`
	Collection *models.FeatureCollection `json:"collection"`
}

// MapView is the renderable map object handed to the client-side map
// library: already-normalized data plus a center/zoom directive. Opaque
// to the core beyond construction.
type MapView struct {
	Center models.Center `json:"center"`
	Zoom   int           `json:"zoom"`
	Layers []MapLayer    `json:"layers"`
}

// MapService builds map views from the session's canonical datasets.
type MapService interface {
	// BuildView assembles a map view. Returns an error when no datasets
	// are loaded; a partial map is never rendered.
	BuildView(snapshot *SessionSnapshot) (*MapView, error)
}
