package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"enzo/internal/config"
	"enzo/internal/database"
	"enzo/internal/folder"
	"enzo/internal/handler"
	"enzo/internal/imagestore"
	"enzo/internal/jwtauth"
	"enzo/internal/logging"
	"enzo/internal/pagination"
	"enzo/internal/policy"
	"enzo/internal/ratelimit"
	"enzo/internal/user"
	"enzo/internal/word"
)

const shutdownTimeout = 30 * time.Second

var skipMigrations bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on startup")
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.SetDefault(logger)

	// Connect to database
	db, err := database.Open(ctx, cfg.Database.URL, database.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Run migrations
	if !skipMigrations {
		if err := db.MigrateUp(); err != nil {
			return err
		}
		logMigrationVersion(logger, db)
	}

	verifier, err := jwtauth.NewVerifier(jwtauth.Config{
		ProjectID: cfg.Firebase.ProjectID,
		JWKSURL:   cfg.Firebase.JWKSURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	pol, err := policy.New(ctx, policy.Options{
		Kind:           cfg.Auth.Policy,
		AllowedEmails:  cfg.Auth.AllowedEmails,
		AllowedRoles:   cfg.Auth.AllowedRoles,
		RegoPolicyPath: cfg.Auth.RegoPolicyPath,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize access policy: %w", err)
	}
	logger.Info("access policy configured", slog.String("policy", cfg.Auth.Policy))

	userManager := user.NewManager(user.NewDatastore(db))
	folderManager := folder.NewManager(folder.NewDatastore(db))
	wordManager := word.NewManager(word.NewDatastore(db), folderManager)

	var images handler.ImageStore
	if cfg.Storage.Enabled() {
		store, err := imagestore.New(ctx, imagestore.Config{
			Bucket:     cfg.Storage.Bucket,
			Region:     cfg.Storage.Region,
			Endpoint:   cfg.Storage.Endpoint,
			AccessKey:  cfg.Storage.AccessKey,
			SecretKey:  cfg.Storage.SecretKey,
			PresignTTL: cfg.Storage.PresignTTL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize image storage: %w", err)
		}
		images = store
		logger.Info("image storage enabled", slog.String("bucket", cfg.Storage.Bucket))
	} else {
		logger.Info("image storage disabled: S3_BUCKET not set")
	}

	limiter, closeLimiter, err := newLimiter(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("failed to initialize rate limiter: %w", err)
	}
	defer closeLimiter()

	router := handler.NewRouter(handler.Deps{
		DB:       db,
		Version:  version,
		Verifier: verifier,
		Policy:   pol,
		Users:    userManager,
		Folders:  folderManager,
		Words:    wordManager,
		Images:   images,
		Pages: pagination.Policy{
			DefaultLimit: cfg.Page.DefaultLimit,
			MaxLimit:     cfg.Page.MaxLimit,
		},
		Limiter:         limiter,
		RateLimit:       cfg.RateLimit.Requests,
		ClientRateLimit: cfg.RateLimit.ClientRequests,
		RateLimitWindow: cfg.RateLimit.Window,
		RequestTimeout:  cfg.RequestTimeout,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Channel to signal server errors
	serverErr := make(chan error, 1)

	go func() {
		logger.Info("server starting",
			slog.String("addr", server.Addr),
			slog.String("env", cfg.Environment),
			slog.String("version", version),
		)
		serverErr <- server.ListenAndServe()
	}()

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		logger.Info("received signal, initiating graceful shutdown", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("waiting for in-flight requests to complete")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed, forcing shutdown", slog.Any("error", err))
			if err := server.Close(); err != nil {
				return fmt.Errorf("forced shutdown failed: %w", err)
			}
		}

		logger.Info("server shutdown complete")
	}

	return nil
}

// newLimiter picks the Redis limiter when REDIS_ADDR is set and the
// in-process one otherwise.
func newLimiter(cfg config.RateLimitConfig) (ratelimit.Limiter, func(), error) {
	if cfg.RedisAddr == "" {
		return ratelimit.NewMemory(ratelimit.MemoryConfig{}), func() {}, nil
	}

	limiter, client, err := ratelimit.NewRedis(ratelimit.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, nil, err
	}
	slog.Info("rate limiter using redis", slog.String("addr", cfg.RedisAddr))
	return limiter, func() {
		if err := client.Close(); err != nil {
			slog.Error("error closing redis client", slog.Any("error", err))
		}
	}, nil
}

func logMigrationVersion(logger *slog.Logger, db *database.DB) {
	version, dirty, err := db.MigrateVersion()
	switch {
	case err != nil:
		logger.Warn("failed to get migration version", slog.Any("error", err))
	case dirty:
		logger.Warn("database is in dirty state - a previous migration failed and manual intervention is required",
			slog.Uint64("version", uint64(version)))
	default:
		logger.Info("database migrations complete", slog.Uint64("version", uint64(version)))
	}
}
