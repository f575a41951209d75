package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	httptransport "github.com/audioforge/studio/internal/api/http"
	"github.com/audioforge/studio/internal/api/http/handlers"
	"github.com/audioforge/studio/internal/auth"
	"github.com/audioforge/studio/internal/blob"
	"github.com/audioforge/studio/internal/config"
	"github.com/audioforge/studio/internal/events"
	"github.com/audioforge/studio/internal/modelapi"
	"github.com/audioforge/studio/internal/observability"
	"github.com/audioforge/studio/internal/persistence"
	"github.com/audioforge/studio/internal/repository"
	"github.com/audioforge/studio/internal/service"
	"github.com/audioforge/studio/internal/session"
	"github.com/audioforge/studio/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer store.close()

	readiness := map[string]handlers.Pinger{}
	if store.pinger != nil {
		readiness[cfg.Store.Driver] = store.pinger
	}

	statuses := repository.NewMemoryStatusStore(cfg.Redis.StatusTTL)
	if redis := persistence.NewRedis(cfg.Redis, logger); redis != nil {
		defer redis.Close()
		statuses = repository.NewRedisStatusStore(redis.Client, cfg.Redis.StatusTTL)
		readiness["redis"] = redis
	}

	blobs := openBlobStore(ctx, cfg.Blob, logger)

	dispatcher := events.NewInMemoryDispatcher()
	var forwarder *events.NATSForwarder
	if cfg.Events.NATSURL != "" {
		nc, err := nats.Connect(cfg.Events.NATSURL, nats.Name(cfg.App.Name), nats.MaxReconnects(-1))
		if err != nil {
			logger.Fatal("failed to connect nats", zap.Error(err))
		}
		defer nc.Drain() //nolint:errcheck
		forwarder = events.NewNATSForwarder(nc, cfg.Events.SubjectPrefix)
		logger.Info("forwarding events to nats", zap.String("prefix", cfg.Events.SubjectPrefix))
	}
	worker.StartEventWorkers(dispatcher, service.NewAuditService(dispatcher, logger), forwarder)

	sessions, err := session.NewService(cfg.Auth.Secret)
	if err != nil {
		logger.Fatal("failed to init session tokens", zap.Error(err))
	}

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   store.users,
		Sessions:   sessions,
		BcryptCost: cfg.Auth.BcryptCost,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	historyService := service.NewHistoryService(service.HistoryDependencies{
		HistoryRepo: store.history,
		Blobs:       blobs,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	generationService := service.NewGenerationService(service.GenerationDependencies{
		Clients:    modelClients(cfg.Models),
		History:    historyService,
		Statuses:   statuses,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	uploadService := service.NewUploadService(blobs)

	cookies := auth.CookieOptions{Secure: cfg.Auth.SecureCookie}
	guard := auth.NewGuard(sessions, auth.DefaultClassifier(), cookies, logger)
	metrics := observability.NewMetrics()

	app := httptransport.NewApp(cfg.App.Name, logger, metrics)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), guard)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Auth:       handlers.NewAuthHandler(authService, guard, cookies),
		History:    handlers.NewHistoryHandler(historyService),
		Generation: handlers.NewGenerationHandler(generationService),
		Uploads:    handlers.NewUploadHandler(uploadService),
		Pages:      handlers.NewPagesHandler(cfg.App.Name),
		Metrics:    handlers.NewMetricsHandler(metrics),
		StaticDir:  cfg.App.StaticDir,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func modelClients(cfg config.ModelsConfig) service.ModelClients {
	timeout := cfg.Timeout()
	musicKey := cfg.MusicAPIKey
	if musicKey == "" {
		musicKey = cfg.APIKey
	}
	return service.ModelClients{
		Speech:          modelapi.NewClient(cfg.SpeechURL, cfg.APIKey, timeout),
		VoiceConversion: modelapi.NewClient(cfg.VoiceConversionURL, cfg.APIKey, timeout),
		SoundEffect:     modelapi.NewClient(cfg.SoundEffectURL, cfg.APIKey, timeout),
		Melody:          modelapi.NewClient(cfg.MelodyURL, cfg.APIKey, timeout),
		Music:           modelapi.NewClient(cfg.MusicURL, musicKey, timeout),
	}
}

func openBlobStore(ctx context.Context, cfg config.BlobConfig, logger *zap.Logger) blob.Store {
	if !cfg.Enabled() {
		logger.Warn("azure storage not configured; uploads and blob cleanup disabled")
		return blob.Disabled{}
	}
	store, err := blob.NewAzure(cfg, logger)
	if err != nil {
		logger.Fatal("failed to init blob storage", zap.Error(err))
	}
	if err := store.EnsureContainer(ctx); err != nil {
		logger.Warn("unable to ensure blob container", zap.String("container", cfg.Container), zap.Error(err))
	}
	return store
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
