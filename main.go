package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joshcord99/stoxai/internal/chat/gemini"
	"github.com/joshcord99/stoxai/internal/config"
	"github.com/joshcord99/stoxai/internal/domain"
	"github.com/joshcord99/stoxai/internal/handler"
	"github.com/joshcord99/stoxai/internal/ratelimit"
	"github.com/joshcord99/stoxai/internal/repository/postgres"
	"github.com/joshcord99/stoxai/internal/repository/sqlite"
	"github.com/joshcord99/stoxai/internal/service"
)

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	cfg, err := config.LoadServer()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	var provider domain.ChatProvider
	if cfg.GeminiAPIKey != "" {
		p, err := gemini.New(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.ChatModel})
		if err != nil {
			slog.Error("failed to initialize chat provider", "error", err)
			os.Exit(1)
		}
		provider = p
		slog.Info("chat provider enabled", "model", cfg.ChatModel)
	} else {
		slog.Info("GEMINI_API_KEY not set, chat replies use the fallback message")
	}

	limiter, closeLimiter, err := newAuthLimiter(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize rate limiter", "error", err)
		os.Exit(1)
	}
	defer closeLimiter.Close()

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	users := db.Users()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Services{
		Tokens:      tokens,
		Auth:        service.NewAuthService(users, tokens, cfg.BcryptCost),
		Accounts:    service.NewAccountService(users),
		Chat:        service.NewChatService(users, provider, cfg.ChatTimeout),
		AuthLimiter: limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.RequestLogger(handler.SecurityHeaders(handler.CORS(cfg.CORSOrigin, mux))),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCtx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openDatabase selects PostgreSQL for postgres:// URLs and SQLite otherwise.
func openDatabase(ctx context.Context, cfg config.Server) (domain.Database, error) {
	if cfg.UsesPostgres() {
		slog.Info("using postgres database")
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	slog.Info("using sqlite database", "path", cfg.DatabaseURL)
	db, err := sqlite.New(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// newAuthLimiter returns the limiter for the credential endpoints: a Redis
// sliding window shared across instances when REDIS_ADDR is set, otherwise
// an in-process token bucket.
func newAuthLimiter(ctx context.Context, cfg config.Server) (ratelimit.Limiter, io.Closer, error) {
	if cfg.RedisAddr == "" {
		tb := ratelimit.NewTokenBucket(cfg.AuthRatePerSecond, float64(cfg.AuthRateBurst))
		return tb, tb, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, err
	}
	l, err := ratelimit.NewRedisLimiter(rdb, "stoxai:ratelimit:auth:", cfg.AuthRateBurst,
		ratelimit.WindowFor(cfg.AuthRatePerSecond, cfg.AuthRateBurst))
	if err != nil {
		rdb.Close()
		return nil, nil, err
	}
	slog.Info("using redis rate limiter", "addr", cfg.RedisAddr)
	return l, rdb, nil
}
