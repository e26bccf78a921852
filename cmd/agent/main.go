package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kyoolapp/lifestyle-sub000/internal/backend"
	"github.com/kyoolapp/lifestyle-sub000/internal/config"
	"github.com/kyoolapp/lifestyle-sub000/internal/database"
	"github.com/kyoolapp/lifestyle-sub000/internal/events"
	"github.com/kyoolapp/lifestyle-sub000/internal/handlers"
	"github.com/kyoolapp/lifestyle-sub000/internal/identity"
	"github.com/kyoolapp/lifestyle-sub000/internal/logging"
	"github.com/kyoolapp/lifestyle-sub000/internal/middleware"
	"github.com/kyoolapp/lifestyle-sub000/internal/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Server.Debug {
		logger.SetLevel(logging.LevelDebug)
		logging.SetDefaultLevel(logging.LevelDebug)
		logger.Debug("Debug logging enabled", map[string]interface{}{"env": cfg.Server.Environment})
	}

	logger.Info("Starting lifestyle agent...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		db      *database.PostgresDB
		redisDB *database.RedisDB
	)

	if cfg.Database.Enabled {
		logger.Info("Connecting to PostgreSQL", map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
		})
		db, err = database.NewPostgresDB(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer db.Close()

		logger.Info("Running database migrations...")
		if err := database.Migrate(cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		logger.Info("Migrations completed")
	}

	if cfg.Redis.Enabled {
		logger.Info("Connecting to Redis", map[string]interface{}{"addr": cfg.Redis.Addr()})
		redisDB, err = database.NewRedisDB(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = redisDB.Close() }()
	}

	// Identity and the backend client
	bus := events.NewBus()
	store := identity.NewStore()

	verifier, err := identity.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.Issuer())
	if err != nil {
		return fmt.Errorf("initializing firebase verifier: %w", err)
	}

	clientOpts := []backend.Option{
		backend.WithLogger(logger),
		backend.WithUserAgent(cfg.Backend.UserAgent),
		backend.WithPublisher(bus),
	}
	if cfg.Backend.SendIDToken {
		clientOpts = append(clientOpts, backend.WithTokenSource(identity.TokenSource(store)))
	}
	api, err := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, clientOpts...)
	if err != nil {
		return fmt.Errorf("creating backend client: %w", err)
	}

	// Notification plumbing
	var notificationService *services.NotificationService
	var recorder services.NotificationRecorder
	if db != nil {
		notificationService = services.NewNotificationService(services.NewPoolAdapter(db.Pool), cfg.Notifications.Retention)
		recorder = notificationService
	}
	emailService := services.NewEmailService(&cfg.Email, logger)

	sessionManager := services.NewSessionManager(store, api, bus, services.SessionConfig{
		Presence: services.PresenceConfig{
			FriendsInterval:            cfg.Polling.FriendsInterval,
			RequestsInterval:           cfg.Polling.RequestsInterval,
			RequestsForegroundInterval: cfg.Polling.RequestsForegroundInterval,
		},
		HeartbeatInterval:   cfg.Polling.HeartbeatInterval,
		InteractionThrottle: cfg.Polling.InteractionThrottle,
		Ledger:              newLedger(cfg.Notifications, redisDB),
		Sinks:               buildSinks(cfg.Notifications, logger, bus, recorder, emailService),
	}, logger)
	sessionManager.Start(ctx)
	defer sessionManager.Close()

	if notificationService != nil {
		go runCleanup(ctx, notificationService, 24*time.Hour, logger)
	}

	// Handlers
	var notificationStore handlers.NotificationStore
	var dbHealth, redisHealth handlers.HealthChecker
	if notificationService != nil {
		notificationStore = notificationService
		dbHealth = db
	}
	if redisDB != nil {
		redisHealth = redisDB
	}

	// Without redis the limiter counts in process.
	var rc middleware.ScriptRunner
	if redisDB != nil {
		rc = redisDB.Client
	}
	limiter := middleware.NewRateLimiter(rc, cfg.API.RateLimit, cfg.API.RateLimitWindow, "ratelimit:api:", middleware.SessionUserKey, true)

	apiKey := middleware.NewAPIKeyAuth(cfg.API.KeyHash)
	if !apiKey.Enabled() {
		logger.Warn("Local API key not configured; the API is open to local clients")
	}

	router := newRouter(routeDeps{
		logger:       logger,
		apiKey:       apiKey,
		sessions:     middleware.NewSessionMiddleware(sessionManager),
		limiter:      limiter,
		health:       handlers.NewHealthHandler(dbHealth, redisHealth),
		session:      handlers.NewSessionHandler(verifier, store),
		user:         handlers.NewUserHandler(api, services.NewFriendshipResolver(api, logger)),
		friend:       handlers.NewFriendHandler(),
		presence:     handlers.NewPresenceHandler(),
		notification: handlers.NewNotificationHandler(notificationStore),
		water:        handlers.NewWaterHandler(services.NewHydrationService(api, bus)),
	})

	addr := cfg.Server.Addr()
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		logger.Info("Agent is shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Agent listening", map[string]interface{}{"addr": addr})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Agent stopped")
	return nil
}

// newLedger shares dedup state through redis when it is available so several
// agents for the same user notify once.
func newLedger(cfg config.NotificationsConfig, redisDB *database.RedisDB) services.Ledger {
	if redisDB != nil {
		return services.NewRedisLedger(services.NewRedisAdapter(redisDB.Client), cfg.DedupTTL)
	}
	return services.NewMemoryLedger(cfg.DedupCapacity)
}

func buildSinks(cfg config.NotificationsConfig, logger *logging.Logger, bus events.Publisher, history services.NotificationRecorder, email services.EmailSender) []services.Sink {
	sinks := []services.Sink{services.NewLogSink(logger), services.NewBusSink(bus)}
	if history != nil {
		sinks = append(sinks, services.NewHistorySink(history))
	}
	if cfg.Email && email != nil {
		sinks = append(sinks, services.NewEmailSink(email, cfg.EmailTo))
	}
	return sinks
}

type cleaner interface {
	CleanupOld(ctx context.Context) (int64, error)
}

func runCleanup(ctx context.Context, c cleaner, every time.Duration, logger *logging.Logger) {
	clean := func() {
		removed, err := c.CleanupOld(ctx)
		if err != nil {
			logger.Warn("Notification cleanup failed", map[string]interface{}{"error": err.Error()})
			return
		}
		if removed > 0 {
			logger.Info("Notification cleanup", map[string]interface{}{"removed": removed})
		}
	}

	clean()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			clean()
		}
	}
}
