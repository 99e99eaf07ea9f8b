package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/clientdesk/backend/api/handler"
	"github.com/clientdesk/backend/internal/config"
	"github.com/clientdesk/backend/internal/infrastructure/buffer"
	"github.com/clientdesk/backend/internal/infrastructure/monitor"
	pgInfra "github.com/clientdesk/backend/internal/infrastructure/postgres"
	redisInfra "github.com/clientdesk/backend/internal/infrastructure/redis"
	"github.com/clientdesk/backend/internal/marketplace"
	"github.com/clientdesk/backend/internal/middleware"
	"github.com/clientdesk/backend/internal/router"
	"github.com/clientdesk/backend/internal/services"
	"github.com/clientdesk/backend/internal/services/lifecycle"
	"github.com/clientdesk/backend/pkg/httpcontext"
	"github.com/clientdesk/backend/pkg/logger"
	"github.com/clientdesk/backend/repository/postgres"
	redisRepo "github.com/clientdesk/backend/repository/redis"
	authUC "github.com/clientdesk/backend/usecase/auth"
	customerUC "github.com/clientdesk/backend/usecase/customer"
	"github.com/clientdesk/backend/usecase/importer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "import_buffer")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(pool, redisClient, bufferStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	customerRepo := postgres.NewCustomerRepository(pool)
	historyRepo := postgres.NewHistoryRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Auth.SessionTTL)
	importGuard := redisRepo.NewImportGuard(redisClient, cfg.Reconcile.GuardRetention)

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		customerRepo,
		historyRepo,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})

	bufferBridge := services.NewBufferBridge(bufferProcessor)

	authUseCase := authUC.New(sessionRepo, authUC.Config{
		APIKey: cfg.Auth.APIKey,
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.JWTIssuer,
	}, zapLogger)
	customerUseCase := customerUC.New(customerRepo, settingsRepo, bufferBridge, zapLogger)
	importerUseCase := importer.New(
		customerRepo,
		historyRepo,
		settingsRepo,
		importGuard,
		bufferBridge,
		importer.Config{
			CountryCode:    cfg.Reconcile.CountryCode,
			FuzzyThreshold: cfg.Reconcile.FuzzyThreshold,
		},
		zapLogger,
	)

	marketplaceClient := marketplace.NewClient(marketplace.Config{
		BaseURL:  cfg.Marketplace.BaseURL,
		Token:    cfg.Marketplace.Token,
		PageSize: cfg.Marketplace.PageSize,
		Timeout:  cfg.Marketplace.Timeout,
	}, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(authUseCase, cfg.Auth.SessionTTL, ctxAdapter, zapLogger),
		Customer: apiHandler.NewCustomerHandler(customerUseCase, ctxAdapter, zapLogger),
		Import:   apiHandler.NewImportHandler(importerUseCase, marketplaceClient, historyRepo, ctxAdapter, zapLogger),
		Settings: apiHandler.NewSettingsHandler(importerUseCase, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.Auth.JWTSecret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
