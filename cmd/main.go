package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/shenikar/firechain/docs"
	"github.com/shenikar/firechain/internal/config"
	v1 "github.com/shenikar/firechain/internal/handler/http/v1"
	"github.com/shenikar/firechain/internal/identity"
	"github.com/shenikar/firechain/internal/ledger"
	"github.com/shenikar/firechain/internal/metrics"
	"github.com/shenikar/firechain/internal/repository"
	"github.com/shenikar/firechain/internal/service"
	"github.com/shenikar/firechain/internal/webhook"
	"github.com/shenikar/firechain/pkg/logger"
	"github.com/shenikar/firechain/pkg/postgres"
	redisclient "github.com/shenikar/firechain/pkg/redis"
)

const (
	migrationsSource = "file://migrations"
	shutdownTimeout  = 5 * time.Second
	applyRetryDelay  = 100 * time.Millisecond
)

// @title FireChain API
// @version 1.0
// @description Fire incident registry with verification, reporter rewards and an emergency fund.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New("firechain", cfg.LogLevel, nil)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Хранилище журнала
	store, closeDB, err := openLedgerStore(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to open %s ledger: %v", cfg.LedgerBackend, err)
	}
	defer closeDB()

	m := metrics.New(prometheus.DefaultRegisterer)
	committer := ledger.NewCommitter(store, log,
		ledger.WithQueueSize(cfg.LedgerQueueSize),
		ledger.WithApplyRetries(cfg.LedgerApplyRetries, applyRetryDelay),
		ledger.WithObserver(m),
	)

	// Redis не обязателен: без него нет кеша и вебхуков
	var (
		redisClient *goredis.Client
		publisher   webhook.WebhookPublisher
		worker      *webhook.WebhookWorker
	)
	if cfg.RedisAddr != "" {
		redisClient, err = redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Info("Successfully connected to Redis")

		// без получателя события не ставятся в очередь
		if cfg.WebhookURL != "" {
			publisher = webhook.NewRedisWebhookPublisher(redisClient)
			worker = webhook.NewWebhookWorker(redisClient, log, cfg, m)
			worker.Start(ctx)
		}
	} else {
		log.Warn("REDIS_ADDR is not set: incident cache and webhooks are disabled")
	}

	// Инициализация репозитория и сервисов
	repo := repository.NewLedgerRepository(committer, redisClient, cfg.CacheTTL, cfg.ConfirmationTimeout)

	incidentService := service.NewIncidentService(repo, log, cfg, publisher, m)
	rewardService := service.NewRewardService(repo, log, cfg, m)
	fundService := service.NewFundService(repo, log, cfg, m)
	services := v1.Services{
		Incidents:    incidentService,
		Verification: service.NewVerificationService(repo, rewardService, log, cfg, m),
		Rewards:      rewardService,
		Funds:        fundService,
		Projection:   service.NewProjectionService(incidentService, log, cfg, m),
	}

	if cfg.FundPoolSeed.IsPositive() {
		seeded, err := fundService.SeedPool(ctx, cfg.FundPoolSeed)
		if err != nil {
			log.Fatalf("Failed to seed fund pool: %v", err)
		}
		if seeded {
			log.WithField("amount", cfg.FundPoolSeed.String()).Info("Fund pool seeded")
		}
	}

	// Инициализация хэндлеров
	provider := identity.FromConfig(cfg.APIKeys, cfg.JWTSecret, cfg.JWTIssuer)
	handler := v1.NewHandler(services, provider, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Swagger UI и метрики
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Запуск HTTP-сервера
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.WithField("ledger", cfg.LedgerBackend).Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Stop()
	}
	if err := committer.Close(); err != nil {
		log.Errorf("Failed to close ledger: %v", err)
	}

	log.Info("Server gracefully stopped")
}

// openLedgerStore открывает бэкенд журнала по LEDGER_BACKEND.
// Возвращаемая функция освобождает ресурсы, которыми не владеет Store.
func openLedgerStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (ledger.Store, func(), error) {
	switch cfg.LedgerBackend {
	case config.BackendPostgres:
		log.Info("Running database migrations...")
		applied, err := postgres.Migrate(cfg.DatabaseURL, migrationsSource)
		if err != nil {
			return nil, nil, err
		}
		if applied {
			log.Info("Database migrations applied successfully")
		}

		var dbpool *pgxpool.Pool
		if dbpool, err = postgres.NewPostgresDB(ctx, cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		log.Info("Successfully connected to PostgreSQL")
		return ledger.NewPostgresStore(dbpool), dbpool.Close, nil

	case config.BackendSQLite:
		store, err := ledger.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("path", cfg.SQLitePath).Info("Using SQLite ledger")
		return store, func() {}, nil

	default:
		log.Warn("Using in-memory ledger: records are lost on restart")
		return ledger.NewMemoryStore(), func() {}, nil
	}
}
