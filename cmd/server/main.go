package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/reelgrid/reelgrid/internal/auth"
	"github.com/reelgrid/reelgrid/internal/config"
	"github.com/reelgrid/reelgrid/internal/db"
	"github.com/reelgrid/reelgrid/internal/db/repository"
	"github.com/reelgrid/reelgrid/internal/handler"
	"github.com/reelgrid/reelgrid/internal/service"
	"github.com/reelgrid/reelgrid/internal/streamhost"
	"github.com/reelgrid/reelgrid/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Named("server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, &db.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxConnections),
		MinConns:        int32(cfg.Database.MinConnections),
		MaxConnLifetime: cfg.Database.MaxLifetime,
		MaxConnIdleTime: cfg.Database.MaxIdleTime,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close(pool)
	log.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Name))

	videoRepo := repository.NewVideoRepository(pool)
	subtitleRepo := repository.NewSubtitleRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	tagRepo := repository.NewTagRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	catalogClient := streamhost.NewClient(streamhost.Config{
		BaseURL: cfg.Streamhost.BaseURL,
		Token:   cfg.Streamhost.Token,
		Timeout: cfg.Streamhost.Timeout,
	})

	// Sync completion events are published when RabbitMQ is configured.
	var publisher service.EventPublisher
	if cfg.RabbitMQ.Host != "" {
		mp, err := service.NewMessagePublisher(&cfg.RabbitMQ)
		if err != nil {
			log.Warn("RabbitMQ unavailable, sync events will not be published", zap.Error(err))
		} else {
			publisher = mp
			defer func() { _ = mp.Close() }()
			log.Info("RabbitMQ publisher initialized", zap.String("exchange", cfg.RabbitMQ.Exchange))
		}
	}

	listingService := service.NewListingService(videoRepo, categoryRepo, tagRepo, subtitleRepo, logger.Named("listing"))
	adminService := service.NewAdminService(videoRepo, categoryRepo, tagRepo, userRepo, logger.Named("admin"))
	syncService := service.NewSyncService(catalogClient, videoRepo, subtitleRepo, publisher, cfg.Sync, logger.Named("sync"))

	authenticator := auth.NewAuthenticator(&cfg.OAuth, userRepo, logger.Named("auth"))

	if cfg.Session.Secret == "" {
		return errors.New("session secret is required (APP_SESSION_SECRET)")
	}
	store := cookie.NewStore([]byte(cfg.Session.Secret))
	store.Options(sessionOptions(cfg))

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.RouterConfig{
		TemplatesDir: cfg.Server.TemplatesDir,
		StaticDir:    cfg.Server.StaticDir,
		SessionStore: store,
		CronSecret:   cfg.Sync.CronSecret,
	}, handler.Handlers{
		Pages:  handler.NewPageHandler(listingService),
		Auth:   handler.NewAuthHandler(authenticator),
		Admin:  handler.NewAdminHandler(listingService, adminService),
		Sync:   handler.NewSyncHandler(syncService),
		Health: handler.NewHealthHandler(pool),
	})

	scheduler, err := startScheduler(cfg, syncService, log)
	if err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	if scheduler != nil {
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.Int("port", cfg.Server.Port))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("Server stopped gracefully")
	return nil
}

func sessionOptions(cfg *config.Config) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Session.MaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// startScheduler registers the configured sync schedules. Returns nil when no
// schedule is configured.
func startScheduler(cfg *config.Config, syncService *service.SyncService, log *zap.Logger) (*cron.Cron, error) {
	if cfg.Sync.Schedule == "" && cfg.Sync.FullSchedule == "" {
		return nil, nil
	}

	scheduler := cron.New()
	schedules := map[string]string{
		service.SyncLatest: cfg.Sync.Schedule,
		service.SyncFull:   cfg.Sync.FullSchedule,
	}
	for syncType, schedule := range schedules {
		if schedule == "" {
			continue
		}
		_, err := scheduler.AddFunc(schedule, func() {
			if _, err := syncService.Run(context.Background(), syncType); err != nil {
				log.Error("Scheduled sync failed", zap.String("type", syncType), zap.Error(err))
			}
		})
		if err != nil {
			return nil, fmt.Errorf("schedule %s sync: %w", syncType, err)
		}
		log.Info("Sync scheduled", zap.String("type", syncType), zap.String("schedule", schedule))
	}

	scheduler.Start()
	return scheduler, nil
}
