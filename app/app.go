// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"go-auth-api/config"
	"go-auth-api/db"
	"go-auth-api/handler"
	"go-auth-api/logger"
	"go-auth-api/repository"
	"go-auth-api/router"
	"go-auth-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// Stores bundles the opened connections and the repositories built on them.
type Stores struct {
	DB        *sql.DB
	Redis     *redis.Client
	Users     repository.IUserRepository
	Tokens    repository.ITokenRepository
	Blacklist repository.IBlacklistRepository
}

// OpenStores connects to Postgres, applies migrations and builds the
// repositories. The blacklist lives in Postgres or Redis depending on
// cfg.Blacklist.Backend.
func OpenStores(cfg *config.Config) (*Stores, error) {
	database, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(cfg.Database.MigrationsPath, cfg.Database.URL()); err != nil {
		database.Close()
		return nil, err
	}

	s := &Stores{
		DB:     database,
		Users:  repository.NewUserRepository(database),
		Tokens: repository.NewTokenRepository(database),
	}

	switch cfg.Blacklist.Backend {
	case "redis":
		rdb, err := db.ConnectRedis(cfg.Redis)
		if err != nil {
			database.Close()
			return nil, err
		}
		s.Redis = rdb
		s.Blacklist = repository.NewRedisBlacklistRepository(rdb)
	default:
		s.Blacklist = repository.NewBlacklistRepository(database)
	}

	logger.Log.WithField("blacklist_backend", cfg.Blacklist.Backend).Info("Stores ready")
	return s, nil
}

func (s *Stores) Close() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logger.Log.WithError(err).Warn("Error closing Redis client")
		}
	}
	if err := s.DB.Close(); err != nil {
		logger.Log.WithError(err).Warn("Error closing database")
	}
}

// NewHandler wires services and handlers on top of stores and returns the
// routed HTTP handler.
func NewHandler(cfg *config.Config, stores *Stores) (http.Handler, error) {
	codec, err := service.NewTokenCodec(cfg.JWT)
	if err != nil {
		return nil, fmt.Errorf("could not build token codec: %w", err)
	}

	authService := service.NewAuthService(
		stores.Users,
		stores.Tokens,
		stores.Blacklist,
		codec,
		service.NewPasswordHasher(),
		service.RefreshPolicy{
			RotateRefreshTokens:    cfg.JWT.RotateRefreshTokens,
			BlacklistAfterRotation: cfg.JWT.BlacklistAfterRotation,
			UpdateLastLogin:        cfg.JWT.UpdateLastLogin,
		},
	)
	userService := service.NewUserService(stores.Users)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	return router.NewRouter(authHandler, userHandler, authService), nil
}

func Run() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		// The logger is not configured yet; use its defaults.
		logger.Log.Fatalf("Could not load config: %v", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	logger.Log.Info("Configuration loaded successfully")

	stores, err := OpenStores(cfg)
	if err != nil {
		logger.Log.Fatalf("Error opening stores: %v", err)
	}
	defer stores.Close()

	r, err := NewHandler(cfg, stores)
	if err != nil {
		logger.Log.Fatalf("Error wiring application: %v", err)
	}

	port := cfg.Server.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Errorf("Server forced to shutdown: %v", err)
		return
	}

	logger.Log.Info("Server exited properly")
}
