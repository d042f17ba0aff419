package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Baaaki/inkwell/internal/audit"
	"github.com/Baaaki/inkwell/internal/config"
	"github.com/Baaaki/inkwell/internal/database"
	"github.com/Baaaki/inkwell/internal/handler"
	"github.com/Baaaki/inkwell/internal/middleware"
	"github.com/Baaaki/inkwell/internal/repository"
	"github.com/Baaaki/inkwell/internal/router"
	"github.com/Baaaki/inkwell/internal/service"
	"github.com/Baaaki/inkwell/internal/session"
	"github.com/Baaaki/inkwell/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}
	if _, err := database.EnsureAdmin(ctx, db, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Log.Fatal("Failed to bootstrap admin", zap.Error(err))
	}

	// Audit journal
	journal, err := audit.Open(cfg.AuditLogPath)
	if err != nil {
		logger.Log.Fatal("Failed to open audit journal", zap.Error(err))
	}
	defer journal.Close()
	if _, err := journal.Prune(time.Now().Add(-cfg.AuditRetention)); err != nil {
		logger.Log.Warn("Failed to prune audit journal", zap.Error(err))
	}

	// Sessions live in Redis when configured, otherwise in process
	var (
		store       session.Store
		redisClient *redis.Client
	)
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Log.Fatal("Failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close()
		store = session.NewRedisStore(redisClient)
	} else {
		memoryStore, err := session.NewMemoryStore(cfg.SessionCacheSize)
		if err != nil {
			logger.Log.Fatal("Failed to create session store", zap.Error(err))
		}
		store = memoryStore
		logger.Log.Warn("REDIS_URL not set, using in-memory sessions and no rate limiting")
	}
	sessions := session.NewManager(store, cfg.SessionTTL, cfg.SessionSliding)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, sessions)
	postService := service.NewPostService(postRepo)
	commentService := service.NewCommentService(commentRepo, postRepo)
	userService := service.NewUserService(userRepo, journal, sessions)
	statsService := service.NewStatsService(userRepo, postRepo, commentRepo)

	deps := router.Deps{
		Sessions:     sessions,
		CookieName:   cfg.SessionCookieName,
		CORSOrigins:  cfg.CORSOrigins,
		IsProduction: cfg.IsProduction(),
		Auth: handler.NewAuthHandler(authService, handler.CookieSettings{
			Name:   cfg.SessionCookieName,
			TTL:    cfg.SessionTTL,
			Secure: cfg.IsProduction(),
		}),
		Posts:    handler.NewPostHandler(postService),
		Comments: handler.NewCommentHandler(commentService),
		Admin:    handler.NewAdminHandler(userService, statsService),
	}
	if redisClient != nil {
		limiter := middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
			MaxRequests: cfg.RateLimitMaxRequests,
			Window:      cfg.RateLimitWindow,
			BlockTime:   cfg.RateLimitBlockTime,
			Prefix:      "ratelimit:auth",
		})
		deps.AuthLimiter = limiter
		deps.Bans = handler.NewBanHandler(service.NewBanService(limiter, journal))
	}

	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           router.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server starting",
			zap.String("addr", cfg.ServerPort),
			zap.String("environment", cfg.Environment),
			zap.String("db_driver", cfg.DatabaseDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
}
