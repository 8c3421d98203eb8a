package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/geoscope/internal/common"
	"github.com/ternarybob/geoscope/internal/handlers"
	"github.com/ternarybob/geoscope/internal/interfaces"
	"github.com/ternarybob/geoscope/internal/services/chat"
	"github.com/ternarybob/geoscope/internal/services/events"
	"github.com/ternarybob/geoscope/internal/services/fetcher"
	"github.com/ternarybob/geoscope/internal/services/llm"
	"github.com/ternarybob/geoscope/internal/services/maps"
	"github.com/ternarybob/geoscope/internal/services/profiler"
	"github.com/ternarybob/geoscope/internal/services/report"
	"github.com/ternarybob/geoscope/internal/services/session"
	"github.com/ternarybob/geoscope/internal/services/stats"
	"github.com/ternarybob/geoscope/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	DB *badger.BadgerDB

	// Core services
	EventService   interfaces.EventService
	FetchService   interfaces.FetchService
	ProfileService *profiler.Service
	StatsService   *stats.Service
	SessionService interfaces.SessionService
	LLMService     interfaces.LLMService
	ChatService    interfaces.ChatService
	MapService     interfaces.MapService
	ReportService  interfaces.ReportService

	// HTTP handlers
	DatasetHandler *handlers.DatasetHandler
	ChatHandler    *handlers.ChatHandler
	MapHandler     *handlers.MapHandler
	ReportHandler  *handlers.ReportHandler
	StatusHandler  *handlers.StatusHandler
	WSHandler      *handlers.WebSocketHandler
}

// NewApp creates and wires the application
func NewApp(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Bool("refresh_enabled", cfg.Refresh.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

func (a *App) initStorage() error {
	db, err := badger.NewBadgerDB(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return err
	}
	a.DB = db

	a.Logger.Debug().
		Str("storage", "badger").
		Bool("in_memory", a.Config.Storage.Badger.InMemory).
		Msg("Storage layer initialized")

	return nil
}

func (a *App) initServices() error {
	a.EventService = events.NewService(a.Logger)

	a.FetchService = fetcher.NewService(a.Logger,
		fetcher.WithTimeout(a.Config.Fetcher.RequestTimeout),
		fetcher.WithRateLimit(a.Config.Fetcher.RateLimit),
		fetcher.WithMaxBodySize(a.Config.Fetcher.MaxBodySize),
		fetcher.WithUserAgent(a.Config.Fetcher.UserAgent),
	)

	a.ProfileService = profiler.NewService(a.Logger)
	a.StatsService = stats.NewService(a.Logger)

	sessionStorage := badger.NewSessionStorage(a.DB, a.Logger)
	sessionService := session.NewService(
		a.FetchService,
		a.ProfileService,
		sessionStorage,
		a.EventService,
		a.Config,
		a.Logger,
	)
	a.SessionService = sessionService

	if err := sessionService.StartScheduledRefresh(); err != nil {
		return fmt.Errorf("failed to start scheduled refresh: %w", err)
	}

	a.LLMService = llm.NewService(a.Config, a.Logger)
	a.ChatService = chat.NewService(a.LLMService, a.SessionService, a.StatsService, a.Logger)
	a.MapService = maps.NewService(a.Logger)
	a.ReportService = report.NewService(a.Logger)

	a.Logger.Debug().Msg("Services initialized")
	return nil
}

func (a *App) initHandlers() error {
	a.DatasetHandler = handlers.NewDatasetHandler(a.SessionService, a.Logger)
	a.ChatHandler = handlers.NewChatHandler(a.ChatService, a.Logger)
	a.MapHandler = handlers.NewMapHandler(a.MapService, a.SessionService, a.Logger)
	a.ReportHandler = handlers.NewReportHandler(a.ReportService, a.SessionService, a.Logger)
	a.StatusHandler = handlers.NewStatusHandler(a.SessionService, a.Logger)

	a.WSHandler = handlers.NewWebSocketHandler(a.EventService, a.Logger)
	if err := a.WSHandler.SubscribeToEvents(); err != nil {
		return fmt.Errorf("failed to subscribe websocket broadcaster: %w", err)
	}

	a.Logger.Debug().Msg("Handlers initialized")
	return nil
}

// Close shuts down services in reverse dependency order.
func (a *App) Close() error {
	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	// Session service owns the storage handle and closes it.
	if a.SessionService != nil {
		if err := a.SessionService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close session service")
		}
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}
