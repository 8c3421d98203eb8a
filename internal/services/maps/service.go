package maps

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/geoscope/internal/interfaces"
)

// Service builds renderable map views from session snapshots. Rendering
// itself happens client-side; the service only assembles the data.
type Service struct {
	logger arbor.ILogger
}

var _ interfaces.MapService = (*Service)(nil)

// NewService creates a new map service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// BuildView assembles a map view from the loaded datasets. All layers
// come from the same snapshot, so the map always reflects one consistent
// load.
func (s *Service) BuildView(snapshot *interfaces.SessionSnapshot) (*interfaces.MapView, error) {
	if snapshot == nil || snapshot.Session == nil {
		return nil, fmt.Errorf("no session loaded")
	}
	if len(snapshot.Datasets) == 0 {
		return nil, fmt.Errorf("no datasets loaded")
	}

	layers := make([]interfaces.MapLayer, 0, len(snapshot.Datasets))
	for _, ds := range snapshot.Datasets {
		layers = append(layers, interfaces.MapLayer{
			Name:       layerName(ds.SourceURL),
			SourceURL:  ds.SourceURL,
			Collection: ds.Collection,
		})
	}

	s.logger.Debug().
		Int("layer_count", len(layers)).
		Float64("lat", snapshot.Session.Center.Latitude).
		Float64("lon", snapshot.Session.Center.Longitude).
		Msg("Built map view")

	return &interfaces.MapView{
		Center: snapshot.Session.Center,
		Zoom:   snapshot.Session.Zoom,
		Layers: layers,
	}, nil
}

// layerName derives a display name from the source URL, falling back to
// the host when the path carries no useful segment.
func layerName(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return sourceURL
	}

	segment := path.Base(strings.TrimSuffix(u.Path, "/"))
	segment = strings.TrimSuffix(segment, path.Ext(segment))
	if segment == "" || segment == "." || segment == "/" {
		return u.Host
	}
	return segment
}
