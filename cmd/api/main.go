package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/hackreg/registration-api/internal/account"
	"github.com/hackreg/registration-api/internal/auth"
	"github.com/hackreg/registration-api/internal/config"
	"github.com/hackreg/registration-api/internal/database"
	"github.com/hackreg/registration-api/internal/email"
	httpServer "github.com/hackreg/registration-api/internal/http"
	"github.com/hackreg/registration-api/internal/logging"
)

// @title           Event Registration API
// @version         1.0
// @description     Account backend for event registration: credential, verification and password-reset lifecycle.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"event", cfg.Event.Name,
	)

	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Stores: Postgres behind a Redis read-through cache for the per-request
	// account resolution.
	store := account.NewCachedStore(account.NewPostgresStore(db), redisClient)
	profileStore := account.NewPostgresProfileStore(db)

	tokenService, err := initTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	sender := email.NewSMTPSender(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
	)
	notifier := email.NewComposer(sender, cfg.Event, logger)

	var subscriber auth.ListSubscriber = email.NoopSubscriber{}
	if cfg.Email.ListAddress != "" {
		subscriber = email.NewMailgunSubscriber(
			cfg.Email.MailgunAPIBase,
			cfg.Email.MailgunAPIKey,
			cfg.Email.ListAddress,
		)
	} else {
		logger.Warn("no mailing list configured, verification subscriptions disabled")
	}

	authService := auth.NewService(
		store,
		profileStore,
		auth.NewHasher(),
		tokenService,
		notifier,
		subscriber,
		logger,
		cfg.Auth.SessionTokenDuration,
	)

	authHandler := auth.NewHandler(authService, logger)
	authMiddleware := auth.NewMiddleware(tokenService, store)

	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// initTokenService builds the configured session token issuer
func initTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	switch cfg.TokenProvider {
	case config.TokenProviderPaseto:
		return auth.NewPasetoService(cfg.PasetoKey)
	default:
		return auth.NewJWTService(cfg.SigningKey)
	}
}
