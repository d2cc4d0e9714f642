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

	"github.com/joho/godotenv"
	"github.com/taskmanager/taskmanager-go/internal/config"
	"github.com/taskmanager/taskmanager-go/internal/crypto"
	"github.com/taskmanager/taskmanager-go/internal/handler"
	"github.com/taskmanager/taskmanager-go/internal/mailer"
	"github.com/taskmanager/taskmanager-go/internal/repository"
	"github.com/taskmanager/taskmanager-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users, tasks, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var m mailer.Mailer = mailer.NewLogMailer(logger)
	if cfg.SendGridAPIKey != "" {
		m = mailer.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFrom)
	}

	hasher := crypto.NewHasher(crypto.DefaultHashParams())

	router := handler.NewRouter(ctx, handler.RouterConfig{
		Logger:        logger,
		Auth:          service.NewAuthService(users, hasher, m, logger, cfg.JWTSecret, cfg.JWTExpiry),
		Users:         service.NewUserService(users, tasks, hasher, m, logger),
		Tasks:         service.NewTaskService(tasks),
		AuthRateLimit: cfg.AuthRateLimit,
		AuthRateBurst: cfg.AuthRateBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// openStore connects the backend named by cfg.StoreDriver and prepares its
// schema. The returned func releases the connection.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (repository.UserRepository, repository.TaskRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMySQL:
		db, err := repository.NewDB(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := db.Close(); err != nil {
				logger.Error("closing database", "error", err)
			}
		}
		return repository.NewMySQLUserRepository(db), repository.NewMySQLTaskRepository(db), closeFn, nil

	case config.StoreMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		store := repository.NewMemoryStore()
		return store.Users(), store.Tasks(), func() {}, nil

	default:
		client, err := repository.NewMongo(ctx, cfg.MongoURL)
		if err != nil {
			return nil, nil, nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := repository.EnsureIndexes(ctx, db); err != nil {
			client.Disconnect(context.Background())
			return nil, nil, nil, err
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				logger.Error("disconnecting mongo", "error", err)
			}
		}
		return repository.NewMongoUserRepository(db), repository.NewMongoTaskRepository(db), closeFn, nil
	}
}
