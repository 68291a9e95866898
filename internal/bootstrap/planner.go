package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"lazy-tourist-be/internal/config"
	"lazy-tourist-be/internal/pkg/logger"
	"lazy-tourist-be/pkg/database"
	"lazy-tourist-be/pkg/events"
	"lazy-tourist-be/pkg/llm"
	"lazy-tourist-be/pkg/llm/factory"
	pktNats "lazy-tourist-be/pkg/nats"
	"lazy-tourist-be/pkg/planner/catalog"
	"lazy-tourist-be/pkg/planner/checkpoint"
	"lazy-tourist-be/pkg/planner/feedback"
	"lazy-tourist-be/pkg/planner/intent"
	"lazy-tourist-be/pkg/planner/orchestrator"
	"lazy-tourist-be/pkg/planner/persistence"
	"lazy-tourist-be/pkg/planner/presenter"
	"lazy-tourist-be/pkg/planner/refine"

	"github.com/redis/go-redis/v9"
)

// NewLLMProvider builds the configured oracle wrapped with timeout and throttling.
func NewLLMProvider(ctx context.Context, cfg *config.Config) (llm.LLMProvider, error) {
	provider, err := factory.NewLLMProvider(ctx, factory.Settings{
		Provider:           cfg.Ai.LLMProvider,
		Model:              cfg.Ai.LLMModel,
		OllamaBaseURL:      cfg.Ai.OllamaBaseURL,
		HuggingFaceBaseURL: cfg.Ai.HuggingFaceBaseURL,
		HuggingFaceAPIKey:  cfg.Keys.HuggingFace,
		GeminiAPIKey:       cfg.Keys.GoogleGemini,
	})
	if err != nil {
		return nil, err
	}
	return llm.Guard(provider, cfg.Ai.RequestsPerSecond, cfg.Ai.OracleTimeout), nil
}

func NewCatalogSource(cfg *config.Config) (catalog.Source, error) {
	var source catalog.Source
	switch cfg.Catalog.Source {
	case "embedded", "":
		return catalog.EmbeddedSource{}, nil
	case "file":
		if cfg.Catalog.FilePath == "" {
			return nil, fmt.Errorf("CATALOG_FILE is required for the file catalog source")
		}
		source = catalog.FileSource{Path: cfg.Catalog.FilePath}
	case "http":
		source = catalog.NewHTTPSource(catalog.Endpoints{
			OutboundFlights: cfg.Catalog.OutboundFlightsURL,
			ReturnFlights:   cfg.Catalog.ReturnFlightsURL,
			Hotels:          cfg.Catalog.HotelsURL,
			Activities:      cfg.Catalog.ActivitiesURL,
			DestinationInfo: cfg.Catalog.DestinationInfoURL,
		}, cfg.Catalog.HTTPTimeout)
	default:
		return nil, fmt.Errorf("unsupported catalog source: %s", cfg.Catalog.Source)
	}
	return catalog.NewCachedSource(source, cfg.Catalog.CacheTTL), nil
}

func NewRenderer(cfg *config.Config, provider llm.LLMProvider, log logger.ILogger) presenter.Renderer {
	if cfg.Planner.PresenterMode == "llm" {
		return presenter.NewOracleFormatter(provider, log)
	}
	return presenter.MarkdownRenderer{}
}

// NewPlanner wires every planner component from configuration.
func NewPlanner(ctx context.Context, cfg *config.Config, log logger.ILogger) (*orchestrator.Planner, error) {
	provider, err := NewLLMProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}
	source, err := NewCatalogSource(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("BOOTSTRAP", "Planner configured", map[string]interface{}{
		"provider":  cfg.Ai.LLMProvider,
		"model":     cfg.Ai.LLMModel,
		"catalog":   cfg.Catalog.Source,
		"presenter": cfg.Planner.PresenterMode,
	})

	return orchestrator.NewPlanner(orchestrator.Dependencies{
		Resolver:   intent.NewResolver(provider, log, time.Now),
		Catalog:    catalog.NewClient(source, log),
		Renderer:   NewRenderer(cfg, provider, log),
		Classifier: feedback.NewClassifier(provider, log, cfg.Planner.HistoryWindow),
		Refiner:    refine.NewEngine(provider, log, time.Now),
		Saver:      persistence.FileSaver{Dir: cfg.Planner.OutputDir},
		Logger:     log,
	}), nil
}

// NewCheckpointStore returns the configured store and a function releasing it.
func NewCheckpointStore(ctx context.Context, cfg *config.Config) (checkpoint.Store, func(), error) {
	switch cfg.Planner.CheckpointBackend {
	case "memory", "":
		return checkpoint.NewMemoryStore(cfg.Planner.CheckpointTTL), func() {}, nil
	case "redis":
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connect to Redis: %w", err)
		}
		return checkpoint.NewRedisStore(rdb, cfg.Planner.CheckpointTTL), func() { rdb.Close() }, nil
	case "postgres":
		db, err := database.Open(cfg.App.DatabaseURL, database.DefaultPoolConfig(), cfg.App.Environment == "development")
		if err != nil {
			return nil, nil, fmt.Errorf("connect to Postgres: %w", err)
		}
		store, err := checkpoint.NewGormStore(ctx, db, cfg.Planner.CheckpointTTL)
		if err != nil {
			database.Close(db)
			return nil, nil, err
		}
		if n, err := store.PurgeExpired(ctx); err != nil {
			log.Printf("[WARN] Failed to purge expired checkpoints: %v", err)
		} else if n > 0 {
			log.Printf("Purged %d expired checkpoints", n)
		}
		return store, func() { database.Close(db) }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported checkpoint backend: %s", cfg.Planner.CheckpointBackend)
	}
}

// NewNatsPublisher connects when NATS is enabled. A connection failure only
// disables external events.
func NewNatsPublisher(cfg *config.Config, log logger.ILogger) (events.Publisher, func()) {
	if !cfg.App.NatsEnabled {
		return nil, func() {}
	}
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		return nil, func() {}
	}
	return natsPub, natsPub.Close
}

func NewDriver(planner *orchestrator.Planner, store checkpoint.Store, publisher events.Publisher, cfg *config.Config, log logger.ILogger) *orchestrator.Driver {
	return orchestrator.NewDriver(planner, store, log,
		orchestrator.WithPublisher(publisher),
		orchestrator.WithMaxSteps(cfg.Planner.MaxStepsPerTurn),
		orchestrator.WithMaxTurns(cfg.Planner.MaxTurns),
	)
}
