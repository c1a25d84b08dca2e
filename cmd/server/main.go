package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	appcatalog "github.com/stockledger/backend/internal/application/catalog"
	appidentity "github.com/stockledger/backend/internal/application/identity"
	importapp "github.com/stockledger/backend/internal/application/import"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/infrastructure/auth"
	"github.com/stockledger/backend/internal/infrastructure/cache"
	"github.com/stockledger/backend/internal/infrastructure/config"
	"github.com/stockledger/backend/internal/infrastructure/event"
	"github.com/stockledger/backend/internal/infrastructure/logger"
	"github.com/stockledger/backend/internal/infrastructure/persistence"
	"github.com/stockledger/backend/internal/infrastructure/storage"
	"github.com/stockledger/backend/internal/infrastructure/telemetry"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
	"github.com/stockledger/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	_ = godotenv.Load() // .env is optional

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting stock ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("unit_policy", cfg.Ledger.UnitPolicy),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	logsProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	if logsProvider.IsEnabled() {
		level, _ := logger.ParseLevel(cfg.Log.Level)
		log = logsProvider.Bridge(log, cfg.Telemetry.ServiceName, level)
	}

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Database.LogLevel), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBName:          cfg.Database.DBName,
		}, log)
		if err := plugin.Register(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// Repositories
	unitRepo := persistence.NewGormUnitRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	lotRepo := persistence.NewGormProductItemRepository(db.DB)
	inwardRepo := persistence.NewGormInwardRepository(db.DB)
	outwardRepo := persistence.NewGormOutwardRepository(db.DB)
	transferRepo := persistence.NewGormStockTransferRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Event bus: ledger events are published after commit
	eventBus := event.NewInMemoryEventBus(log)

	// Application services
	units := appcatalog.NewUnitResolver(unitRepo, cfg.Ledger.DefaultUnit)
	ledgerOpts := appinv.LedgerOptions{
		TxTimeout:       cfg.Ledger.TxTimeout,
		UnitPolicy:      catalog.UnitPolicy(cfg.Ledger.UnitPolicy),
		DefaultLocation: cfg.Ledger.DefaultLocation,
	}
	inwardSvc := appinv.NewInwardService(txScope, units, eventBus, log, ledgerOpts)
	outwardSvc := appinv.NewOutwardService(txScope, units, eventBus, log, ledgerOpts)
	transferSvc := appinv.NewTransferService(txScope, units, transferRepo, eventBus, log, ledgerOpts)
	querySvc := appinv.NewQueryService(lotRepo, inwardRepo, outwardRepo, productRepo)
	catalogSvc := appcatalog.NewCatalogService(unitRepo, productRepo)

	lowStock := appinv.NewLowStockMonitor(lotRepo, productRepo, nil, log)
	eventBus.Subscribe(lowStock, lowStock.EventTypes()...)

	ledgerMetrics, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter:           meterProvider.Meter("stock-ledger"),
		Logger:          log,
		LowStock:        querySvc,
		CollectInterval: cfg.Telemetry.MetricsInterval,
	})
	if err != nil {
		log.Fatal("Failed to initialize ledger metrics", zap.Error(err))
	}
	eventBus.Subscribe(ledgerMetrics, ledgerMetrics.EventTypes()...)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	metricsCtx, stopMetrics := context.WithCancel(ctx)
	ledgerMetrics.Start(metricsCtx)

	// Privileges, with cross-instance invalidation when Redis is configured
	var broadcaster appidentity.InvalidationBroadcaster
	var invalidator *cache.RedisPrivilegeInvalidator
	var redisCloser func() error
	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		redisCloser = client.Close
		invalidator = cache.NewRedisPrivilegeInvalidator(client,
			cache.WithChannel(cfg.PrivilegeCache.RedisChannel),
			cache.WithLogger(log),
		)
		broadcaster = invalidator
	} else {
		log.Info("Redis not configured, privilege cache is instance-local")
	}
	privilegeSvc := appidentity.NewPrivilegeService(
		roleRepo,
		appidentity.NewPrivilegeCache(nil, cfg.PrivilegeCache.TTL),
		broadcaster,
		log,
	)
	if invalidator != nil {
		go func() {
			err := invalidator.Subscribe(ctx, privilegeSvc.Invalidate)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Privilege invalidation subscription stopped", zap.Error(err))
			}
		}()
	}

	// Uploaded sheets are archived to S3 when a bucket is configured
	var archive importapp.UploadArchive
	if cfg.Storage.Enabled() {
		s3Archive, err := storage.NewS3UploadArchive(ctx, cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize upload archive", zap.Error(err))
		}
		if err := s3Archive.EnsureBucket(ctx); err != nil {
			log.Warn("Upload archive bucket check failed", zap.Error(err))
		}
		archive = s3Archive
	}
	importSvc := importapp.NewBulkImportService(inwardSvc, outwardSvc, units, archive, log, cfg.Ledger.ImportMaxBytes)

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine, err := router.New(router.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		Version:        version,
		TracingEnabled: tracerProvider.IsEnabled(),
		CORS:           cors,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		ImportMaxBytes: cfg.Ledger.ImportMaxBytes,
	}, router.Dependencies{
		Logger:     log,
		Tokens:     auth.NewJWTService(cfg.JWT),
		Privileges: privilegeSvc,
		Health:     db,
		Inward:     inwardSvc,
		Outward:    outwardSvc,
		Transfers:  transferSvc,
		Query:      querySvc,
		Catalog:    catalogSvc,
		Imports:    importSvc,
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	stopMetrics()
	ledgerMetrics.Stop()
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop event bus", zap.Error(err))
	}
	if invalidator != nil {
		_ = invalidator.Close()
	}
	if redisCloser != nil {
		if err := redisCloser(); err != nil {
			log.Error("Failed to close Redis client", zap.Error(err))
		}
	}
	if err := logsProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown logger provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown tracer provider", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Failed to close database", zap.Error(err))
	}

	log.Info("Server exited")
}
