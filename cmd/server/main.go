// Package main is the entry point for the TaskDeck web server.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Nayuta9382/taskdeck/internal/config"
	"github.com/Nayuta9382/taskdeck/internal/database"
	"github.com/Nayuta9382/taskdeck/internal/handler/web"
	"github.com/Nayuta9382/taskdeck/internal/middleware"
	"github.com/Nayuta9382/taskdeck/internal/repository"
	"github.com/Nayuta9382/taskdeck/internal/service"
	"github.com/Nayuta9382/taskdeck/internal/session"
	"github.com/Nayuta9382/taskdeck/internal/upload"
)

func main() {
	// Setup structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Starting TaskDeck",
		slog.String("environment", cfg.Server.Environment),
		slog.Int("port", cfg.Server.Port),
	)

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	// Run migrations
	if err := db.RunMigrations(cfg.Database); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Database migrations completed")

	// Connect to Redis
	redis, err := database.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()
	logger.Info("Connected to Redis")

	// Wire collaborators
	userRepo := repository.NewUserRepository(db.Pool())
	taskRepo := repository.NewTaskRepository(db.Pool())
	sessionRepo := repository.NewSessionRepository(redis)

	authService := service.NewAuthService(userRepo, sessionRepo, cfg.Session.MaxAge, logger)
	oauthService := service.NewOAuthService(
		cfg.Auth.OAuthGitHubID,
		cfg.Auth.OAuthGitHubSecret,
		cfg.Auth.OAuthCallbackURL+"/auth/github/callback",
		userRepo, sessionRepo, cfg.Session.MaxAge, logger,
	)
	taskService := service.NewTaskService(taskRepo, logger)

	sessionManager := session.NewManager(cfg.Session.Secret, int(cfg.Session.MaxAge.Seconds()))

	uploadStore, err := upload.NewStore(cfg.Upload.Dir, logger)
	if err != nil {
		log.Fatalf("Failed to prepare upload directory: %v", err)
	}

	webHandler := web.NewHandler(authService, oauthService, taskService, sessionManager, uploadStore, logger)

	// Setup router
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.CORS())
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.RateLimit(redis, middleware.DefaultRateLimitConfig(), webHandler.RenderRateLimited))

	// Health and metrics endpoints
	r.Get("/health", healthHandler(db, redis))
	r.Handle("/metrics", promhttp.Handler())

	// Static assets and uploaded avatars
	staticServer := http.FileServer(http.Dir(cfg.Server.StaticDir))
	r.Handle("/static/*", http.StripPrefix("/static/", staticServer))
	uploadServer := http.FileServer(http.Dir(cfg.Upload.Dir))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", uploadServer))

	// Web pages
	loginLimiter := middleware.RateLimit(redis, middleware.LoginRateLimitConfig(), webHandler.RenderRateLimited)
	r.Mount("/", webHandler.Routes(loginLimiter))

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      gzhttp.GzipHandler(r),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  time.Minute,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("Shutting down server", slog.String("signal", sig.String()))

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	logger.Info("Server stopped gracefully")
}

// healthHandler verifies database and Redis connections.
func healthHandler(db *database.Postgres, redis *database.Redis) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")

		if err := db.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"error","component":"database"}`))
			return
		}
		if err := redis.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"error","component":"redis"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}
