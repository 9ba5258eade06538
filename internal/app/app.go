package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	httpapi "github.com/shestoi/evstore/internal/api/http"
	"github.com/shestoi/evstore/internal/catalog"
	"github.com/shestoi/evstore/internal/checkout"
	httpclient "github.com/shestoi/evstore/internal/client/http"
	"github.com/shestoi/evstore/internal/config"
	kafkaevent "github.com/shestoi/evstore/internal/event/kafka"
	"github.com/shestoi/evstore/internal/repository"
	"github.com/shestoi/evstore/internal/repository/memory"
	mongorepo "github.com/shestoi/evstore/internal/repository/mongo"
	"github.com/shestoi/evstore/internal/repository/postgres"
	redisrepo "github.com/shestoi/evstore/internal/repository/redis"
	platformhealth "github.com/shestoi/evstore/platform/health/http"
	platformlogging "github.com/shestoi/evstore/platform/logging"
	platformobservability "github.com/shestoi/evstore/platform/observability"
	platformshutdown "github.com/shestoi/evstore/platform/shutdown"
)

const catalogSyncTimeout = 30 * time.Second

// App содержит все зависимости для запуска и корректного shutdown Storefront Service
type App struct {
	cfg         config.Config
	logger      *zap.Logger
	httpServer  *http.Server
	registry    *checkout.Registry
	catalog     *catalog.Service
	source      catalog.Source
	shutdownMgr *platformshutdown.Manager
	wg          sync.WaitGroup
}

// stores содержит реализации хранилищ для выбранного STORAGE_MODE
type stores struct {
	reconciliations repository.ReconciliationRepository
	guard           repository.OrderGuard
	catalog         repository.CatalogRepository
	checks          map[string]platformhealth.Check
}

// Build создаёт и настраивает все зависимости Storefront Service
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	// Создаём logger
	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "storefront",
		Env:         string(cfg.AppEnv),
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		return nil, err
	}

	cfg.Log(logger)
	logger = logger.With(zap.String("op", op))
	logger.Info("Building Storefront service",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("storage_mode", string(cfg.StorageMode)),
	)

	// OpenTelemetry
	otelShutdown, err := platformobservability.Init(context.Background(), platformobservability.Config{
		Enabled:               cfg.OTelEnabled,
		OTLPEndpoint:          cfg.OTelEndpoint,
		SamplingRatio:         cfg.OTelSamplingRatio,
		ServiceName:           "storefront",
		DeploymentEnvironment: string(cfg.AppEnv),
	})
	if err != nil {
		return nil, err
	}

	// Создаём shutdown manager. Функции выполняются в обратном порядке регистрации:
	// otel регистрируется первым, чтобы закрыться последним и успеть выгрузить spans/metrics.
	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)
	shutdownMgr.Add("otel", otelShutdown)

	st, err := buildStores(cfg, logger, shutdownMgr)
	if err != nil {
		shutdownMgr.Shutdown()
		return nil, err
	}

	// Kafka publisher событий checkout (или no-op)
	var events checkout.EventPublisher = checkout.NopPublisher{}
	if cfg.Kafka.Enabled {
		publisher := kafkaevent.NewCheckoutEventPublisher(logger, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		shutdownMgr.Add("kafka_publisher", platformshutdown.CloseWithError(publisher))
		events = publisher
		logger.Info("Kafka publisher enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	metered, err := newMeteredPublisher(events, otel.Meter("storefront"))
	if err != nil {
		shutdownMgr.Shutdown()
		return nil, fmt.Errorf("create checkout events counter: %w", err)
	}

	// REST клиент platform API
	client := httpclient.New(httpclient.Config{
		BaseURL:     cfg.BackendBaseURL,
		Timeout:     cfg.BackendTimeout,
		ServiceName: "storefront",
	}, logger)

	registry := checkout.NewRegistry(checkout.Deps{
		Payments:        client,
		Cart:            client,
		Reconciliations: st.reconciliations,
		Guard:           st.guard,
		Events:          metered,
		Logger:          logger,
		ListingPath:     cfg.ListingPath,
		GuardTTL:        cfg.OrderGuardTTL,
	}, cfg.CheckoutIdleTTL)

	catalogService := catalog.NewService(st.catalog, logger, cfg.DefaultPageSize)

	handler := httpapi.NewHandler(httpapi.Deps{
		Checkouts:       registry,
		Cart:            client,
		Catalog:         catalogService,
		Payments:        client,
		Reconciliations: st.reconciliations,
		Logger:          logger,
	})

	readiness := platformhealth.Readiness(2*time.Second, st.checks)
	router := httpapi.NewRouter(handler, readiness, logger)

	// Создаём HTTP сервер
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// HTTP сервер останавливается первым, flow разбираются после него
	shutdownMgr.Add("checkouts", func(ctx context.Context) error {
		registry.CloseAll()
		return nil
	})
	shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(httpServer))

	return &App{
		cfg:         cfg,
		logger:      logger,
		httpServer:  httpServer,
		registry:    registry,
		catalog:     catalogService,
		source:      client,
		shutdownMgr: shutdownMgr,
	}, nil
}

// buildStores подключает хранилища по STORAGE_MODE и регистрирует их закрытие
func buildStores(cfg config.Config, logger *zap.Logger, shutdownMgr *platformshutdown.Manager) (stores, error) {
	if cfg.StorageMode == config.StorageMemory {
		logger.Warn("Using in-memory storage: reconciliations and order guard are lost on restart")
		return stores{
			reconciliations: memory.NewReconciliationRepository(),
			guard:           memory.NewOrderGuard(),
			catalog:         memory.NewCatalogRepository(),
			checks:          map[string]platformhealth.Check{},
		}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Применяем миграции
	logger.Info("Applying database migrations")
	if err := postgres.Migrate(ctx, cfg.PostgresDSN); err != nil {
		return stores{}, err
	}
	logger.Info("Database migrations applied successfully")

	// Подключаемся к PostgreSQL
	logger.Info("Connecting to PostgreSQL")
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return stores{}, err
	}
	shutdownMgr.Add("postgres_pool", platformshutdown.ClosePool(pool))
	if err := pool.Ping(ctx); err != nil {
		return stores{}, err
	}
	logger.Info("PostgreSQL connection established")

	// Подключаемся к Redis
	logger.Info("Connecting to Redis", zap.String("addr", cfg.RedisAddr))
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	shutdownMgr.Add("redis_client", platformshutdown.CloseWithError(redisClient))
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return stores{}, err
	}
	logger.Info("Redis connection established")

	// Подключаемся к MongoDB
	logger.Info("Connecting to MongoDB", zap.String("db", cfg.MongoDBName))
	mongoClient, err := mongodriver.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return stores{}, err
	}
	shutdownMgr.Add("mongo_client", platformshutdown.DisconnectMongo(mongoClient))
	if err := mongoClient.Ping(ctx, nil); err != nil {
		return stores{}, err
	}
	logger.Info("MongoDB connection established")

	return stores{
		reconciliations: postgres.NewReconciliationRepository(pool),
		guard:           redisrepo.NewOrderGuard(redisClient, logger),
		catalog:         mongorepo.NewCatalogRepository(mongoClient, cfg.MongoDBName),
		checks: map[string]platformhealth.Check{
			"postgres": pool.Ping,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
			"mongo": func(ctx context.Context) error {
				return mongoClient.Ping(ctx, nil)
			},
		},
	}, nil
}

// Run запускает сервис и блокируется до получения сигнала shutdown
func (a *App) Run() error {
	defer platformlogging.Sync(a.logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.logger.Info("Starting Storefront service", zap.String("addr", a.httpServer.Addr))
	a.logger.Info("Health check available", zap.String("url", "http://"+a.httpServer.Addr+"/health"))

	// Первичная синхронизация каталога; ошибка не фатальна, витрина просто пустая
	syncCtx, syncCancel := context.WithTimeout(ctx, catalogSyncTimeout)
	if _, err := a.catalog.Sync(syncCtx, a.source); err != nil {
		a.logger.Warn("Initial catalog sync failed", zap.Error(err))
	}
	syncCancel()

	// Janitor вытесняет простаивающие checkout flow
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.registry.Run(ctx, a.cfg.CheckoutJanitorInterval); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("Checkout janitor error", zap.Error(err))
		}
	}()

	serverErr := make(chan error, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", zap.Error(err))
			serverErr <- err
			cancel()
		}
	}()

	// Ожидаем сигнал (или падение HTTP сервера) и выполняем shutdown
	a.shutdownMgr.Wait(ctx)
	cancel()

	a.wg.Wait()
	a.logger.Info("Storefront service stopped")

	select {
	case err := <-serverErr:
		return err
	default:
		return nil
	}
}
