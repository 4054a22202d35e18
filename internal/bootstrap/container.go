package bootstrap

import (
	"context"
	"log"

	"shop-assistant-be/internal/config"
	"shop-assistant-be/internal/controller"
	"shop-assistant-be/internal/metrics"
	"shop-assistant-be/internal/pkg/logger"
	"shop-assistant-be/internal/repository/implementation"
	"shop-assistant-be/internal/repository/memory"
	"shop-assistant-be/internal/repository/redisstore"
	"shop-assistant-be/internal/repository/unitofwork"
	"shop-assistant-be/internal/service"
	"shop-assistant-be/internal/websocket"
	"shop-assistant-be/pkg/assistant/pipeline"
	"shop-assistant-be/pkg/assistant/response"
	"shop-assistant-be/pkg/canon"
	"shop-assistant-be/pkg/catalog"
	"shop-assistant-be/pkg/llm/factory"
	pktNats "shop-assistant-be/pkg/nats"
	"shop-assistant-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AssistantController      controller.IAssistantController
	AssistantAdminController controller.IAssistantAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	WebSocketHub    *websocket.Hub

	Dictionary *canon.Store
	Pipeline   *pipeline.Pipeline
	Logger     logger.ILogger

	cfg     *config.Config
	closers []func()
}

// NewContainer wires the assistant. db may be nil: the message log, the session
// mirror and the postgres catalog are then unavailable and the in-memory
// fallbacks are used.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c := &Container{Logger: sysLogger, cfg: cfg}

	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	}

	// 2. Canonical dictionary
	dictionary := canon.NewStore(sysLogger)
	_ = dictionary.LoadOrDefault(cfg.Assistant.CanonDictionaryPath) // failure already logged, default table in use
	c.Dictionary = dictionary

	// 3. Redis (session store backend and cross-instance WebSocket delivery)
	rdb := connectRedis(cfg)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// 4. Session store
	sessions := newSessionStore(cfg, db, rdb, sysLogger)

	// 5. Catalog
	exec := newCatalog(cfg, db, dictionary, sysLogger)

	// 6. Metrics
	m := metrics.New(prometheus.DefaultRegisterer)

	// 7. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	publisherService := service.NewPublisherService(cfg.Assistant.TurnTopic, pubSub)
	turnRecorder := service.NewTurnRecorder(publisherService, sysLogger)

	var natsPub service.EventPublisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
			c.closers = append(c.closers, pub.Close)
		}
	}

	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.Assistant.TurnTopic,
		cfg.Assistant.TurnEventType,
		uowFactory,
		natsPub,
		sysLogger,
	)

	// 8. Pipeline
	opts := []pipeline.Option{
		pipeline.WithObserver(m),
		pipeline.WithObserver(turnRecorder),
	}
	if rw := newRewriter(cfg, sysLogger); rw != nil {
		opts = append(opts, pipeline.WithRewriter(rw))
	}
	c.Pipeline = pipeline.New(dictionary, sessions, exec, sysLogger, opts...)

	// 9. WebSocket Hub
	var wsLogger logger.ILogger = sysLogger
	if cfg.App.WebSocketLogPath != "" {
		wsLogger = logger.NewIsolatedLogger(cfg.App.WebSocketLogPath)
	}
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger, m)

	// 10. Controllers
	assistantService := service.NewAssistantService(
		c.Pipeline,
		sessions,
		dictionary,
		cfg.Assistant.CanonDictionaryPath,
		uowFactory,
		sysLogger,
	)
	c.AssistantController = controller.NewAssistantController(assistantService, c.WebSocketHub, sysLogger)
	c.AssistantAdminController = controller.NewAssistantAdminController(assistantService, cfg.App.AdminToken)

	return c
}

// Start launches the background workers; they stop when ctx is done.
func (c *Container) Start(ctx context.Context) error {
	if err := c.ConsumerService.Consume(ctx); err != nil {
		return err
	}

	go c.WebSocketHub.Run(ctx)

	if c.cfg.Assistant.CanonWatch && c.cfg.Assistant.CanonDictionaryPath != "" {
		if err := c.Dictionary.Watch(ctx, c.cfg.Assistant.CanonDictionaryPath); err != nil {
			// Hot reload is optional; the admin reload route still works.
			c.Logger.Warn("Bootstrap", "Dictionary watcher not started", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func connectRedis(cfg *config.Config) *redis.Client {
	if cfg.App.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func newSessionStore(cfg *config.Config, db *gorm.DB, rdb *redis.Client, log logger.ILogger) store.SessionStore {
	if cfg.Assistant.SessionBackend == "redis" {
		if rdb != nil {
			log.Info("Bootstrap", "Using redis session store", nil)
			return redisstore.NewSessionRepository(rdb, cfg.Assistant.SessionTTL, log)
		}
		log.Warn("Bootstrap", "Redis unavailable, falling back to in-memory sessions", nil)
	}

	var mirror store.SessionMirror
	if cfg.Assistant.SessionMirror && db != nil {
		mirror = implementation.NewSessionMirror(implementation.NewAssistantSessionRepository(db))
	}
	return memory.NewSessionRepository(cfg.Assistant.SessionTTL, mirror, log)
}

func newCatalog(cfg *config.Config, db *gorm.DB, dict *canon.Store, log logger.ILogger) catalog.Executor {
	var inner catalog.Executor

	switch {
	case cfg.Assistant.CatalogBackend == "postgres" && db != nil:
		inner = implementation.NewProductCatalog(implementation.NewProductRepository(db), dict)
		log.Info("Bootstrap", "Using postgres catalog", nil)
	default:
		items, err := catalog.LoadItemsFile(cfg.Assistant.CatalogSeedPath)
		if err != nil {
			log.Error("Bootstrap", "Failed to load catalog seed, catalog is empty", map[string]interface{}{
				"path":  cfg.Assistant.CatalogSeedPath,
				"error": err.Error(),
			})
		}
		inner = catalog.NewMemoryExecutor(items, dict)
		log.Info("Bootstrap", "Using in-memory catalog", map[string]interface{}{"items": len(items)})
	}

	return catalog.NewGuarded(inner, cfg.Assistant.CatalogTimeout, log)
}

// newRewriter returns nil when rewriting is off or the provider cannot be built.
func newRewriter(cfg *config.Config, log logger.ILogger) *response.Rewriter {
	if !cfg.Assistant.RewriteEnabled {
		return nil
	}

	baseURL := cfg.Ai.OllamaBaseURL
	if cfg.Ai.LLMProvider == "huggingface" {
		baseURL = cfg.Ai.HuggingFaceURL
	}

	provider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, baseURL, cfg.Ai.HuggingFaceKey)
	if err != nil {
		log.Warn("Bootstrap", "Rewrite disabled, provider unavailable", map[string]interface{}{"error": err.Error()})
		return nil
	}
	log.Info("Bootstrap", "Rewrite enabled", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})
	return response.NewRewriter(provider, cfg.Assistant.RewriteTone, cfg.Assistant.RewriteTimeout, log)
}
