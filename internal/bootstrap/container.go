package bootstrap

import (
	"context"

	"lazy-tourist-be/internal/config"
	"lazy-tourist-be/internal/controller"
	"lazy-tourist-be/internal/pkg/logger"
	"lazy-tourist-be/internal/service"
	"lazy-tourist-be/pkg/events"
	"lazy-tourist-be/pkg/planner/orchestrator"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	TripController controller.ITripController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Driver *orchestrator.Driver
	Logger logger.ILogger

	closers []func()
}

func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogPath)
	c := &Container{Logger: sysLogger}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { pubSub.Close() })

	publishers := events.MultiPublisher{service.NewPublisherService(cfg.App.EventTopic, pubSub)}
	if natsPub, closeNats := NewNatsPublisher(cfg, sysLogger); natsPub != nil {
		publishers = append(publishers, natsPub)
		c.closers = append(c.closers, closeNats)
	}

	// 3. Planner
	planner, err := NewPlanner(ctx, cfg, sysLogger)
	if err != nil {
		c.Close()
		return nil, err
	}
	store, closeStore, err := NewCheckpointStore(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.closers = append(c.closers, closeStore)
	c.Driver = NewDriver(planner, store, publishers, cfg, sysLogger)

	// 4. Services
	tripService := service.NewTripService(c.Driver, sysLogger, cfg.App.JwtSecret, cfg.App.SessionTokenTTL)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.EventTopic, auditLogger)

	// 5. Controllers
	c.TripController = controller.NewTripController(tripService, cfg.App.JwtSecret)
	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
	_ = c.Logger.Sync()
}
