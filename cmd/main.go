package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/shenikar/emergency_dispatch_system/internal/cache"
	"github.com/shenikar/emergency_dispatch_system/internal/config"
	"github.com/shenikar/emergency_dispatch_system/internal/eta"
	v1 "github.com/shenikar/emergency_dispatch_system/internal/handler/http/v1"
	"github.com/shenikar/emergency_dispatch_system/internal/messaging"
	"github.com/shenikar/emergency_dispatch_system/internal/metrics"
	"github.com/shenikar/emergency_dispatch_system/internal/repository/memory"
	pgrepo "github.com/shenikar/emergency_dispatch_system/internal/repository/postgres"
	"github.com/shenikar/emergency_dispatch_system/internal/seed"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
	"github.com/shenikar/emergency_dispatch_system/internal/webhook"
	"github.com/shenikar/emergency_dispatch_system/pkg/logger"
	"github.com/shenikar/emergency_dispatch_system/pkg/postgres"
	redisclient "github.com/shenikar/emergency_dispatch_system/pkg/redis"

	_ "github.com/shenikar/emergency_dispatch_system/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	shutdownTimeout   = 5 * time.Second
	rateLimiterIdle   = 10 * time.Minute
	readHeaderTimeout = 5 * time.Second
)

// stores - репозитории, выбранные по конфигурации
type stores struct {
	responders  service.ResponderRepository
	reports     service.ReportRepository
	assignments service.AssignmentRepository
}

// @title Emergency Dispatch API
// @version 1.0
// @description Registry of responders, emergency reports and their assignments.
// @host localhost:8080
// @BasePath /
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
		migrationURL = strings.Replace(migrationURL, "postgresql://", "pgx5://", 1)
	}

	m, err := migrate.New(cfg.MigrationsPath, migrationURL)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func newStores(dbpool *pgxpool.Pool, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) stores {
	if dbpool == nil {
		log.Warn("DATABASE_URL is empty, state is kept in process memory")
		return stores{
			responders:  memory.NewResponderRepository(),
			reports:     memory.NewReportRepository(),
			assignments: memory.NewAssignmentRepository(),
		}
	}

	var reportCache cache.ReportCache
	if redisClient != nil {
		reportCache = cache.NewRedisReportCache(redisClient, cfg.CacheTTL)
	} else {
		reportCache = cache.NewMemoryReportCache(cfg.CacheTTL)
	}
	return stores{
		responders:  pgrepo.NewResponderRepository(dbpool),
		reports:     pgrepo.NewReportRepository(dbpool, reportCache, log),
		assignments: pgrepo.NewAssignmentRepository(dbpool),
	}
}

func newPublisher(redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) (webhook.WebhookPublisher, func(), error) {
	switch cfg.EventBroker {
	case config.BrokerRedis:
		return webhook.NewRedisWebhookPublisher(redisClient), func() {}, nil
	case config.BrokerRabbitMQ:
		publisher, err := messaging.NewRabbitMQPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
		if err != nil {
			return nil, nil, err
		}
		return publisher, func() {
			if err := publisher.Close(); err != nil {
				log.WithError(err).Warn("Failed to close RabbitMQ publisher")
			}
		}, nil
	default:
		return webhook.NopPublisher{}, func() {}, nil
	}
}

func seedResponders(ctx context.Context, cfg *config.Config, st stores, registry service.ResponderService, log *logrus.Logger) error {
	if cfg.SeedFile == "" {
		return nil
	}
	file, err := seed.LoadFile(cfg.SeedFile)
	if err != nil {
		return err
	}
	_, err = seed.Responders(ctx, file, st.responders, registry, log)
	return err
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// PostgreSQL подключается только при заданном DATABASE_URL
	var dbpool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		if err := runMigrations(cfg, log); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}
		dbpool, err = postgres.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer dbpool.Close()
		log.Info("Successfully connected to PostgreSQL")
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = redisclient.NewRedisClient(ctx, redisclient.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Info("Successfully connected to Redis")
	}

	st := newStores(dbpool, redisClient, cfg, log)

	publisher, closePublisher, err := newPublisher(redisClient, cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize event publisher: %v", err)
	}
	defer closePublisher()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	dispatchMetrics := metrics.New(registry)

	// Инициализация сервисов
	responderService := service.NewResponderService(st.responders, log)
	reportService := service.NewReportService(st.reports, log)
	tracker := service.NewLifecycleTracker(st.reports, publisher, dispatchMetrics, log)
	engine := service.NewAssignmentEngine(service.EngineDeps{
		Reports:     st.reports,
		Assignments: st.assignments,
		Registry:    responderService,
		Tracker:     tracker,
		Calculator:  eta.NewCalculator(cfg.ResponderSpeedKmH),
		Publisher:   publisher,
		Metrics:     dispatchMetrics,
		Logger:      log,
	})
	queryService := service.NewQueryService(st.responders, st.reports, st.assignments)

	if err := seedResponders(ctx, cfg, st, responderService, log); err != nil {
		log.Fatalf("Failed to seed responders: %v", err)
	}

	// Инициализация хэндлеров
	handler := v1.NewHandler(v1.Services{
		Responders: responderService,
		Reports:    reportService,
		Dispatcher: engine,
		Lifecycle:  tracker,
		Query:      queryService,
	}, log)

	// Настройка Gin роутера
	router := gin.New()
	router.Use(gin.Recovery(), logger.GinMiddleware(log))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/")
	api.Use(v1.RateLimiter(v1.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, rateLimiterIdle)))
	handler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("HTTP server started on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Воркер вебхуков читает очередь Redis, поэтому нужен только для брокера redis
	if cfg.EventBroker == config.BrokerRedis && cfg.WebhookURL != "" {
		worker := webhook.NewWebhookWorker(redisClient, st.assignments, log, cfg)
		g.Go(func() error {
			return worker.Start(gctx)
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Received shutdown signal, shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Errorf("Dispatch service stopped with error: %v", err)
		return
	}
	log.Info("Server gracefully stopped")
}
