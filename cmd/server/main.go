package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/embeddables/api/handler"
	"github.com/fastygo/embeddables/internal/config"
	"github.com/fastygo/embeddables/internal/infrastructure/audit"
	"github.com/fastygo/embeddables/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/embeddables/internal/infrastructure/redis"
	"github.com/fastygo/embeddables/internal/middleware"
	"github.com/fastygo/embeddables/internal/router"
	"github.com/fastygo/embeddables/internal/services/lifecycle"
	"github.com/fastygo/embeddables/internal/services/retention"
	"github.com/fastygo/embeddables/pkg/httpcontext"
	"github.com/fastygo/embeddables/pkg/logger"
	"github.com/fastygo/embeddables/repository"
	"github.com/fastygo/embeddables/repository/easypost"
	redisRepo "github.com/fastygo/embeddables/repository/redis"
	embeddablesUC "github.com/fastygo/embeddables/usecase/embeddables"
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

	// Requests fail with the same error until the environment is fixed.
	if err := cfg.EasyPost.Validate(); err != nil {
		zapLogger.Error("embeddables proxy misconfigured", zap.Error(err))
	}

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.SignalContext(context.Background())
	defer stop()

	var (
		cache      repository.DirectoryCache
		sessionLog repository.SessionAudit
		pinger     monitor.Pinger
		sizer      monitor.Sizer
	)

	if cfg.Redis.URL != "" {
		redisClient, err := redisInfra.NewClient(cfg.Redis)
		if err != nil {
			zapLogger.Warn("redis unavailable, directory cache disabled", zap.Error(err))
		} else {
			cache = redisRepo.NewDirectoryCache(redisClient, cfg.AppName, cfg.Redis.TTL)
			pinger = monitor.PingFunc(func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			})
			manager.OnStop("redis", func(ctx context.Context) error {
				return redisClient.Close()
			})
		}
	}

	if cfg.Audit.Path != "" {
		auditStore, err := audit.Open(cfg.Audit.Path, "sessions")
		if err != nil {
			zapLogger.Fatal("failed to open audit store", zap.Error(err))
		}
		sessionLog, sizer = auditStore, auditStore
		manager.OnStop("audit", func(ctx context.Context) error {
			return auditStore.Close()
		})

		pruner := retention.NewPruner(auditStore, retention.Config{
			Interval:  cfg.Audit.PruneInterval,
			Retention: cfg.Audit.Retention,
		}, zapLogger)
		pruner.Start()
		manager.OnStop("audit_pruner", func(ctx context.Context) error {
			pruner.Stop(ctx)
			return nil
		})
	}

	mon := monitor.New(pinger, sizer, 10*time.Second, zapLogger)
	mon.Start()
	manager.OnStop("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	platform := easypost.NewClient(easypost.Options{
		BaseURL: cfg.EasyPost.BaseURL,
		APIKey:  cfg.EasyPost.APIKey,
		Timeout: cfg.EasyPost.Timeout,
		Name:    cfg.AppName,
	}, zapLogger)

	useCase := embeddablesUC.New(platform, cfg.EasyPost, cache, sessionLog, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Session: apiHandler.NewSessionHandler(useCase, ctxAdapter, zapLogger),
		Users:   apiHandler.NewUsersHandler(useCase, cfg.EasyPost.PaginateChildren, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(apiHandler.HealthInfo{
			Port:       cfg.HTTP.Port,
			OriginHost: cfg.EasyPost.OriginHost,
			HasAPIKey:  cfg.EasyPost.APIKey != "",
		}, mon, ctxAdapter, zapLogger),
		Static: apiHandler.NewStaticHandler(cfg.Static.Dir, cfg.Static.Index, zapLogger),
	}

	r := router.New(handlers)
	handler := middleware.AccessLog(zapLogger)(middleware.CORS(cfg.HTTP.AllowedOrigin)(r.Handler))

	server := &fasthttp.Server{
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("origin_host", cfg.EasyPost.OriginHost),
			zap.Bool("has_api_key", cfg.EasyPost.APIKey != ""))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.OnStop("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()
	zapLogger.Info("shutdown signal received")

	if err := manager.Stop(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
