package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/movie-catalog/internal/auth"
	"github.com/iliyamo/movie-catalog/internal/config"
	"github.com/iliyamo/movie-catalog/internal/database"
	"github.com/iliyamo/movie-catalog/internal/handler"
	"github.com/iliyamo/movie-catalog/internal/logger"
	"github.com/iliyamo/movie-catalog/internal/middleware"
	"github.com/iliyamo/movie-catalog/internal/queue"
	"github.com/iliyamo/movie-catalog/internal/repository"
	"github.com/iliyamo/movie-catalog/internal/router"
	"github.com/iliyamo/movie-catalog/internal/service"
	"github.com/iliyamo/movie-catalog/internal/usecase"
)

func main() {
	cfg := config.Load() // Load environment config
	log := logger.Init(cfg.Env, cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		log.Error("database unavailable", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Error("migration failed", "err", err)
			os.Exit(1)
		}
	}

	// Redis is optional: without it revocation lives in MySQL and the
	// limiter and cache pass through.
	rdb := config.NewRedisClient()
	var tokens repository.TokenRepository
	sqlTokens := repository.NewTokenRepo(db)
	if rdb != nil {
		defer rdb.Close()
		tokens = repository.NewRedisTokenRepo(rdb)
		log.Info("redis connected; revoked tokens stored in redis")
	} else {
		tokens = sqlTokens
		go purgeRevokedTokens(ctx, sqlTokens, log)
		log.Warn("redis unavailable; rate limiting is per instance and caching is disabled")
	}

	var events usecase.EventPublisher = service.NoopPublisher{}
	if cfg.EventsEnabled {
		pub := service.NewAMQPPublisher(cfg.RabbitURL, log)
		defer pub.Close()
		events = pub
	}
	if cfg.EventsConsumer {
		go func() {
			if err := queue.StartMovieEventConsumer(ctx, cfg.RabbitURL, cfg.EventsLogPath, log); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("movie-events consumer stopped", "err", err)
			}
		}()
	}

	users := repository.NewUserRepo(db)
	movies := repository.NewMovieRepo(db)
	tx := repository.NewSQLTxManager(db)
	provider := auth.NewProvider(cfg.JWTSecret, cfg.JWTTTL, users, tokens)

	userUC := usecase.NewUsers(users, tx, cfg.BcryptCost, log)
	movieUC := usecase.NewMovies(movies, tx, events, log)
	authUC := usecase.NewAuth(provider, log)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler(cfg.Debug, log)
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(log))

	health := map[string]handler.Pinger{"mysql": db}
	if rdb != nil {
		health["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	router.Register(e, router.Handlers{
		Auth:   handler.NewAuthHandler(authUC, userUC),
		Movies: handler.NewMovieHandler(movieUC),
		Users:  handler.NewUserHandler(userUC),
		Health: handler.NewHealthHandler(health),
	}, router.Middleware{
		Auth:      middleware.JWTAuth(provider, log),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log),
	})

	addr := ":" + cfg.Port // Address string with port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
	log.Info("server stopped")
}

// purgeRevokedTokens deletes expired rows from revoked_tokens every hour.
func purgeRevokedTokens(ctx context.Context, tokens *repository.TokenRepo, log *slog.Logger) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := tokens.PurgeExpired(ctx)
			if err != nil {
				log.Warn("purge revoked tokens failed", "err", err)
				continue
			}
			log.Debug("purged revoked tokens", "rows", n)
		}
	}
}
