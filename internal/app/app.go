// Package app initializes and holds long-lived application services, acting
// as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/belivan/prospect-discovery/internal/api"
	"github.com/belivan/prospect-discovery/internal/clock/system"
	"github.com/belivan/prospect-discovery/internal/config"
	"github.com/belivan/prospect-discovery/internal/discovery"
	"github.com/belivan/prospect-discovery/internal/expander/openai"
	"github.com/belivan/prospect-discovery/internal/progress"
	"github.com/belivan/prospect-discovery/internal/progress/sinks"
	"github.com/belivan/prospect-discovery/internal/publisher"
	"github.com/belivan/prospect-discovery/internal/publisher/pubsub"
	"github.com/belivan/prospect-discovery/internal/ratelimit"
	"github.com/belivan/prospect-discovery/internal/search/places"
	"github.com/belivan/prospect-discovery/internal/storage/memory"
	"github.com/belivan/prospect-discovery/internal/storage/postgres"
)

// App holds the shared, long-lived services for the discovery service.
// It is initialized once at startup and passed to the components that need it.
type App struct {
	logger   *zap.Logger
	pool     *pgxpool.Pool
	notifier publisher.Publisher
	server   *api.Server
}

// Handler returns the HTTP handler serving the API surface.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Logger returns the shared zap logger instance.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// NewApp creates and initializes the service graph from configuration.
// It fails fast if any critical dependency cannot be constructed.
func NewApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	logger.Info("initializing application services",
		zap.String("storage", cfg.Storage.Provider),
		zap.Bool("pubsub", cfg.PubSub.Enabled),
	)

	var (
		history discovery.QueryHistory
		dedup   discovery.DedupStore
		pool    *pgxpool.Pool
	)
	switch cfg.Storage.Provider {
	case "postgres":
		pc, err := pgxpool.ParseConfig(cfg.DB.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse db dsn: %w", err)
		}
		if cfg.DB.MaxConns > 0 {
			pc.MaxConns = int32(cfg.DB.MaxConns)
		}
		if cfg.DB.MinConns > 0 {
			pc.MinConns = int32(cfg.DB.MinConns)
		}
		if cfg.DB.ConnLifetimeMin > 0 {
			pc.MaxConnLifetime = cfg.DB.ConnLifetime()
		}
		pool, err = pgxpool.NewWithConfig(ctx, pc)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		history, err = postgres.NewHistoryStoreWithPool(pool, cfg.Storage.HistoryTable)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("initialize history store: %w", err)
		}
		dedup, err = postgres.NewDedupStoreWithPool(pool, cfg.Storage.DedupTable)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("initialize dedup store: %w", err)
		}
	case "memory":
		logger.Info("using in-memory storage, history and dedup state will not survive restarts")
		history = memory.NewHistoryStore()
		dedup = memory.NewDedupStore()
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Storage.Provider)
	}

	expander := openai.NewExpander(&openai.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: float32(cfg.OpenAI.Temperature),
		Logger:      logger.Named("expander"),
	})

	search, err := places.New(&places.Config{
		APIKey: cfg.Places.APIKey,
		Logger: logger.Named("places"),
	})
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, fmt.Errorf("initialize search client: %w", err)
	}

	throttle := ratelimit.New(ratelimit.Config{
		MinSpacing: cfg.Discovery.MinSpacing(),
		Burst:      1,
		Provider:   "places",
	})

	promSink, err := sinks.NewPrometheusSink(nil)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, fmt.Errorf("register progress metrics: %w", err)
	}
	emitter := progress.NewFanout(logger.Named("progress"),
		sinks.NewLogSink(logger.Named("progress")),
		promSink,
	)

	ctrl := discovery.NewController(
		history,
		dedup,
		expander,
		search,
		throttle,
		emitter,
		system.New(),
		logger.Named("discovery"),
		discovery.Config{
			GeoExpansionAfter:  cfg.Discovery.GeoExpansionAfter,
			SearchConcurrency:  cfg.Discovery.SearchConcurrency,
			MaxResultsPerQuery: cfg.Discovery.MaxResultsPerQuery,
			CostPerSearch:      cfg.Discovery.CostPerSearch,
			CostPerExpansion:   cfg.Discovery.CostPerExpansion,
		},
	)

	var notifier publisher.Publisher = publisher.Noop{}
	if cfg.PubSub.Enabled {
		notifier, err = pubsub.New(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicName)
		if err != nil {
			if pool != nil {
				pool.Close()
			}
			return nil, fmt.Errorf("initialize pubsub publisher: %w", err)
		}
		logger.Info("run notices will be published",
			zap.String("topic", cfg.PubSub.TopicName),
		)
	}

	server := api.NewServer(ctrl, notifier, logger.Named("api"), cfg)

	logger.Info("application services initialized")

	return &App{
		logger:   logger,
		pool:     pool,
		notifier: notifier,
		server:   server,
	}, nil
}

// Close gracefully shuts down all services in the container.
func (a *App) Close() {
	a.logger.Info("shutting down application services")
	if err := a.notifier.Close(); err != nil {
		a.logger.Warn("error closing publisher", zap.Error(err))
	}
	if a.pool != nil {
		a.pool.Close()
	}
	// Sync flushes buffered log entries; failures on stderr are expected on
	// some platforms and not actionable.
	_ = a.logger.Sync()
}
