package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/biofolio/backend/api/handler"
	bioClient "github.com/biofolio/backend/internal/bio"
	"github.com/biofolio/backend/internal/config"
	"github.com/biofolio/backend/internal/infrastructure/localstore"
	"github.com/biofolio/backend/internal/infrastructure/monitor"
	pgInfra "github.com/biofolio/backend/internal/infrastructure/postgres"
	redisInfra "github.com/biofolio/backend/internal/infrastructure/redis"
	"github.com/biofolio/backend/internal/middleware"
	"github.com/biofolio/backend/internal/router"
	"github.com/biofolio/backend/internal/services"
	"github.com/biofolio/backend/internal/services/lifecycle"
	"github.com/biofolio/backend/pkg/httpcontext"
	"github.com/biofolio/backend/pkg/logger"
	"github.com/biofolio/backend/repository"
	boltRepo "github.com/biofolio/backend/repository/bolt"
	pgRepo "github.com/biofolio/backend/repository/postgres"
	redisRepo "github.com/biofolio/backend/repository/redis"
	"github.com/biofolio/backend/usecase"
	authUC "github.com/biofolio/backend/usecase/auth"
	bioUC "github.com/biofolio/backend/usecase/bio"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		AppName:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	// The bolt file is always opened: with the default driver it holds the
	// directory and session keys, with the postgres driver it backs the
	// registration spill queue.
	store, err := localstore.Open(cfg.Store.Path)
	if err != nil {
		zapLogger.Fatal("failed to open local store", zap.Error(err))
	}
	manager.Register("localstore", func(ctx context.Context) error {
		return store.Close()
	})

	var (
		directoryRepo repository.DirectoryRepository
		sessionRepo   repository.SessionRepository
		spill         usecase.RegistrationSpill
		mon           *monitor.Monitor
	)

	switch cfg.Store.Driver {
	case config.DriverPostgres:
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

		directoryRepo = pgRepo.NewDirectoryRepository(pool)
		sessionRepo = redisRepo.NewSessionRepository(redisClient)

		mon = monitor.New(pool, redisClient, store, 10*time.Second, zapLogger)
		mon.Start()
		manager.Register("monitor", func(ctx context.Context) error {
			mon.Stop()
			return nil
		})

		spillProcessor := services.NewSpillProcessor(store, mon, directoryRepo, zapLogger, services.SpillConfig{
			Interval:   cfg.Spill.Interval,
			MaxRetries: cfg.Spill.MaxRetries,
		})
		spillProcessor.Start()
		manager.Register("spill_processor", func(ctx context.Context) error {
			spillProcessor.Stop(ctx)
			return nil
		})
		spill = spillProcessor

	default:
		directoryRepo = boltRepo.NewDirectoryRepository(store)
		sessionRepo = boltRepo.NewSessionRepository(store)

		mon = monitor.New(nil, nil, store, 10*time.Second, zapLogger)
		mon.Start()
		manager.Register("monitor", func(ctx context.Context) error {
			mon.Stop()
			return nil
		})
	}

	authUseCase := authUC.New(directoryRepo, sessionRepo, spill, zapLogger, authUC.Options{
		LoginDelay:    cfg.Auth.LoginDelay,
		RegisterDelay: cfg.Auth.RegisterDelay,
	})
	bioUseCase := bioUC.New(bioClient.NewClient(bioClient.Config{
		URL:      cfg.Bio.URL,
		APIKey:   cfg.Bio.APIKey,
		Model:    cfg.Bio.Model,
		Timeout:  cfg.Bio.Timeout,
		MaxChars: cfg.Bio.MaxChars,
	}), zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:      apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.JWT.Secret, cfg.JWT.Issuer),
		Directory: apiHandler.NewDirectoryHandler(authUseCase, ctxAdapter, zapLogger),
		Bio:       apiHandler.NewBioHandler(bioUseCase, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.SessionAuth(cfg.JWT.Secret, authUseCase, zapLogger)
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
