package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/prismchat/prism/internal/api"
	"github.com/prismchat/prism/internal/audit"
	"github.com/prismchat/prism/internal/auth"
	"github.com/prismchat/prism/internal/chat"
	"github.com/prismchat/prism/internal/config"
	"github.com/prismchat/prism/internal/database"
	"github.com/prismchat/prism/internal/events"
	"github.com/prismchat/prism/internal/keys"
	"github.com/prismchat/prism/internal/middleware"
	"github.com/prismchat/prism/internal/ratelimits"
	iredis "github.com/prismchat/prism/internal/redis"
	"github.com/prismchat/prism/internal/server"
	"github.com/prismchat/prism/internal/usage"
	"github.com/prismchat/prism/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	ctx := context.Background()

	// Migrations
	if err := database.RunMigrations(cfg.DB.DSN(), cfg.DB.MigrationsPath); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS (optional)
	var natsClient *events.Client
	var publisher *events.Publisher
	if cfg.NATS.URL != "" {
		natsClient, err = events.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to NATS", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
		publisher = events.NewPublisher(natsClient.JetStream())
	} else {
		slog.Info("NATS not configured, event publishing disabled")
	}

	// Auth
	jwtManager := auth.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	authSvc := auth.NewService(jwtManager, redisClient)
	userRepo := users.NewRepository(pool)
	userSvc := users.NewService(userRepo)
	authHandler := auth.NewHandler(authSvc, userSvc)

	// Usage ledger
	ledger := usage.NewLedger(usage.NewStore(pool), cfg.Limits)
	usageHandler := ratelimits.NewHandler(ledger)

	// Provider keys
	cipher, err := keys.NewCipher(cfg.Encryption.Key)
	if err != nil {
		slog.Error("initializing cipher", "error", err)
		os.Exit(1)
	}
	keySvc := keys.NewService(keys.NewRepository(pool), cipher)
	keyHandler := keys.NewHandler(keySvc)

	// Chat
	chatSvc := chat.NewService(chat.NewRepository(pool), ledger, keySvc, publisher)
	chatHandler := chat.NewHandler(chatSvc)

	// Quota audit
	auditRepo := audit.NewRepository(pool)
	auditHandler := audit.NewHandler(auditRepo)

	if natsClient != nil {
		consumer := audit.NewConsumer(auditRepo, events.NewConsumerManager(natsClient.JetStream()))
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("audit consumer stopped", "error", err)
			}
		}()
	}

	// Router
	authLimiter := middleware.NewRateLimiter(redisClient, 10, 60)
	router := api.NewRouter(pool, redisClient, natsClient, api.RouterConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		AuthRateLimiter:    authLimiter.Middleware,
	}, api.HandlerSet{
		Register: authHandler.Register,
		Login:    authHandler.Login,
		Guest:    authHandler.Guest,
		Refresh:  authHandler.Refresh,
		Logout:   authHandler.Logout,

		SendMessage:  chatHandler.Send,
		ListChats:    chatHandler.ListChats,
		ListMessages: chatHandler.ListMessages,
		ListModels:   chatHandler.ListModels,

		SaveKey:   keyHandler.Save,
		ListKeys:  keyHandler.List,
		DeleteKey: keyHandler.Delete,

		ListProviders: keyHandler.Providers,

		GetUsage:  usageHandler.GetUsage,
		ListAudit: auditHandler.List,

		AuthMiddleware: auth.Middleware(authSvc),
	})

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
