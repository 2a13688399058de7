package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notekeeper/internal/config"
	"notekeeper/internal/db"
	apihttp "notekeeper/internal/http"
	"notekeeper/internal/repository"
	"notekeeper/internal/service"
	"notekeeper/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint, cfg.OTelServiceName)
	if err != nil {
		logger.Warn("otel setup failed", zap.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	var (
		userRepo   repository.UserRepository
		noteRepo   repository.NoteRepository
		budgetRepo repository.BudgetRepository
		storage    apihttp.Pinger
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		userRepo = repository.NewPgUserRepository(pool)
		noteRepo = repository.NewPgNoteRepository(pool)
		budgetRepo = repository.NewPgBudgetRepository(pool)
		storage = pool
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		userRepo = repository.NewMemoryUserRepository()
		noteRepo = repository.NewMemoryNoteRepository()
		budgetRepo = repository.NewMemoryBudgetRepository()
	}

	var (
		denylist = service.NewMemoryTokenDenylist()
		limiter  = service.NewLoginRateLimiter(cfg.LoginRateWindow, cfg.LoginRateMax)
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory denylist and limiter", zap.Error(err))
		} else {
			denylist = service.NewRedisTokenDenylist(redisClient)
			limiter = service.NewRedisLoginRateLimiter(redisClient, cfg.LoginRateWindow, cfg.LoginRateMax)
		}
		cancel()
	}

	codec := service.NewTokenCodec(service.TokenConfig{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.TokenTTL,
	}, service.WithDenylist(denylist))

	userSvc := service.NewUserService(logger, userRepo, service.NewPasswordHasher(cfg.BcryptCost), cfg.Password, limiter)
	noteSvc := service.NewNoteService(logger, noteRepo)
	budgetSvc := service.NewBudgetService(logger, budgetRepo)

	router := apihttp.NewRouter(
		logger,
		apihttp.RouterConfig{
			AuthHeader:     cfg.AuthHeader,
			CORSOrigin:     cfg.CORSOrigin,
			RequestTimeout: cfg.RequestTimeout,
		},
		codec,
		apihttp.NewUserHandler(logger, userSvc, codec),
		apihttp.NewNoteHandler(logger, noteSvc),
		apihttp.NewBudgetHandler(logger, budgetSvc),
		apihttp.NewHealthHandler(logger, storage),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
