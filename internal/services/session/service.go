package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/geoscope/internal/common"
	"github.com/ternarybob/geoscope/internal/interfaces"
	"github.com/ternarybob/geoscope/internal/models"
	"github.com/ternarybob/geoscope/internal/services/geojson"
	"github.com/ternarybob/geoscope/internal/services/profiler"
)

// Service owns the session lifecycle. The published snapshot is replaced
// wholesale under the write lock, so readers always observe one complete
// load, never a mix of old and new datasets.
type Service struct {
	fetcher  interfaces.FetchService
	profiler *profiler.Service
	storage  interfaces.SessionStorage
	events   interfaces.EventService
	config   *common.Config
	logger   arbor.ILogger

	mu       sync.RWMutex
	snapshot *interfaces.SessionSnapshot

	cron *cron.Cron
}

var _ interfaces.SessionService = (*Service)(nil)

// NewService creates a new session service
func NewService(
	fetcher interfaces.FetchService,
	profilerService *profiler.Service,
	storage interfaces.SessionStorage,
	events interfaces.EventService,
	cfg *common.Config,
	logger arbor.ILogger,
) *Service {
	return &Service{
		fetcher:  fetcher,
		profiler: profilerService,
		storage:  storage,
		events:   events,
		config:   cfg,
		logger:   logger,
	}
}

// Load fetches, normalizes and profiles the given sources and publishes a
// new session snapshot. A source that fails to fetch or parse is reported
// in the result without aborting the rest; the load fails only when no
// source survives.
func (s *Service) Load(ctx context.Context, urls []string, center models.Center, zoom int) (*interfaces.LoadResult, error) {
	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("no source URLs provided")
	}
	if max := s.config.Fetcher.MaxSources; max > 0 && len(cleaned) > max {
		return nil, fmt.Errorf("too many sources: %d exceeds limit of %d", len(cleaned), max)
	}

	if zoom <= 0 {
		zoom = s.config.Map.DefaultZoom
	}

	session := &models.Session{
		ID:         uuid.New().String(),
		SourceURLs: cleaned,
		Center:     center,
		Zoom:       zoom,
	}

	result, datasets, profiles := s.loadSources(ctx, session, cleaned)

	if len(datasets) == 0 {
		return result, fmt.Errorf("all %d sources failed to load", len(cleaned))
	}

	if err := s.storage.SaveSession(session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	previous := s.snapshot
	s.snapshot = &interfaces.SessionSnapshot{
		Session:  session,
		Datasets: datasets,
		Profiles: profiles,
	}
	s.mu.Unlock()

	// Chat history belongs to the replaced session; drop it with the session.
	if previous != nil && previous.Session.ID != session.ID {
		if err := s.storage.DeleteMessages(previous.Session.ID); err != nil {
			s.logger.Warn().Err(err).Str("session_id", previous.Session.ID).Msg("Failed to clear previous chat history")
		}
		if err := s.storage.DeleteSession(previous.Session.ID); err != nil {
			s.logger.Warn().Err(err).Str("session_id", previous.Session.ID).Msg("Failed to delete previous session")
		}
	}

	s.logger.Info().
		Str("session_id", session.ID).
		Int("sources", len(cleaned)).
		Int("loaded", len(datasets)).
		Msg("Session loaded")

	return result, nil
}

// Reload re-fetches the current session's sources and replaces the
// snapshot in place, keeping the session identity and chat history.
func (s *Service) Reload(ctx context.Context) (*interfaces.LoadResult, error) {
	s.mu.RLock()
	current := s.snapshot
	s.mu.RUnlock()

	if current == nil {
		return nil, fmt.Errorf("no session loaded")
	}

	session := current.Session
	result, datasets, profiles := s.loadSources(ctx, session, session.SourceURLs)

	if len(datasets) == 0 {
		// Keep serving the previous snapshot rather than dropping to nothing.
		return result, fmt.Errorf("reload failed: all %d sources failed", len(session.SourceURLs))
	}

	if err := s.storage.SaveSession(session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.snapshot = &interfaces.SessionSnapshot{
		Session:  session,
		Datasets: datasets,
		Profiles: profiles,
	}
	s.mu.Unlock()

	if s.events != nil {
		s.events.Publish(ctx, interfaces.Event{
			Type:    interfaces.EventSessionReload,
			Payload: result,
		})
	}

	s.logger.Info().
		Str("session_id", session.ID).
		Int("loaded", len(datasets)).
		Msg("Session reloaded")

	return result, nil
}

// loadSources runs the fetch, normalize and profile pipeline for the
// given URLs and reports per-source outcomes.
func (s *Service) loadSources(ctx context.Context, session *models.Session, urls []string) (*interfaces.LoadResult, []*models.Dataset, []*models.DatasetProfile) {
	fetchResults := s.fetcher.FetchAll(ctx, urls)

	result := &interfaces.LoadResult{
		SessionID: session.ID,
		Sources:   make([]interfaces.SourceStatus, 0, len(urls)),
	}
	datasets := make([]*models.Dataset, 0, len(urls))
	profiles := make([]*models.DatasetProfile, 0, len(urls))

	for _, fr := range fetchResults {
		status := interfaces.SourceStatus{URL: fr.URL}

		if fr.Err != nil {
			status.Error = fr.Err.Error()
			s.logger.Error().Err(fr.Err).Str("url", fr.URL).Msg("Source fetch failed")
			s.publishSourceEvent(ctx, interfaces.EventDatasetFailed, status)
			result.Sources = append(result.Sources, status)
			continue
		}

		collection, err := geojson.Normalize(fr.Payload)
		if err != nil {
			status.Error = err.Error()
			s.logger.Error().Err(err).Str("url", fr.URL).Msg("Source payload not recognized")
			s.publishSourceEvent(ctx, interfaces.EventDatasetFailed, status)
			result.Sources = append(result.Sources, status)
			continue
		}

		dataset := &models.Dataset{
			ID:         uuid.New().String(),
			SourceURL:  fr.URL,
			Collection: collection,
			LoadedAt:   time.Now(),
		}
		profile := s.profiler.Profile(dataset)

		status.Loaded = true
		status.Dataset = dataset.ID
		result.Sources = append(result.Sources, status)
		datasets = append(datasets, dataset)
		profiles = append(profiles, profile)

		s.publishSourceEvent(ctx, interfaces.EventDatasetLoaded, status)
	}

	result.Profiles = profiles
	return result, datasets, profiles
}

func (s *Service) publishSourceEvent(ctx context.Context, eventType interfaces.EventType, status interfaces.SourceStatus) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, interfaces.Event{Type: eventType, Payload: status}); err != nil {
		s.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("Failed to publish event")
	}
}

// Snapshot returns the current published snapshot, or nil before the
// first successful load.
func (s *Service) Snapshot() *interfaces.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// AppendHistory records one chat message against the current session.
func (s *Service) AppendHistory(role, content string) error {
	s.mu.RLock()
	current := s.snapshot
	s.mu.RUnlock()

	if current == nil {
		return fmt.Errorf("no session loaded")
	}

	return s.storage.SaveMessage(&models.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: current.Session.ID,
		Role:      role,
		Content:   content,
	})
}

// History returns the current session's conversation in order.
func (s *Service) History() ([]models.ChatMessage, error) {
	s.mu.RLock()
	current := s.snapshot
	s.mu.RUnlock()

	if current == nil {
		return nil, nil
	}

	return s.storage.GetMessages(current.Session.ID)
}

// StartScheduledRefresh begins periodically re-fetching the session's
// sources on the configured cron schedule. A refresh before the first
// load is a no-op.
func (s *Service) StartScheduledRefresh() error {
	if !s.config.Refresh.Enabled {
		return nil
	}
	if s.cron != nil {
		return fmt.Errorf("scheduled refresh already started")
	}

	c := cron.New()
	_, err := c.AddFunc(s.config.Refresh.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if s.Snapshot() == nil {
			return
		}

		if s.events != nil {
			s.events.Publish(ctx, interfaces.Event{Type: interfaces.EventRefreshStarted})
		}

		if _, err := s.Reload(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Scheduled refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add refresh job: %w", err)
	}

	c.Start()
	s.cron = c

	s.logger.Info().
		Str("schedule", s.config.Refresh.Schedule).
		Msg("Scheduled refresh started")

	return nil
}

// Close stops the refresh scheduler and releases storage.
func (s *Service) Close() error {
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
	return s.storage.Close()
}
