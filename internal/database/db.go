package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/Baaaki/inkwell/internal/config"
	"github.com/Baaaki/inkwell/internal/models"
	"github.com/Baaaki/inkwell/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the relational store selected by cfg.DatabaseDriver
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DatabaseDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite":
		dialector = sqlite.Open(SQLiteDSN(cfg.DatabaseURL))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	// Unique violations surface as gorm.ErrDuplicatedKey on every driver
	gormCfg := &gorm.Config{TranslateError: true}
	if cfg.IsProduction() {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.DatabaseDriver, err)
	}

	logger.Log.Info("Database connected",
		zap.String("driver", cfg.DatabaseDriver),
	)
	return db, nil
}

// SQLiteDSN turns on foreign keys, which SQLite leaves off by default
func SQLiteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Log.Info("Database migration completed")
	return nil
}

// ConnectRedis parses a redis:// URL and checks the server is reachable
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Log.Info("Redis connected", zap.String("addr", opts.Addr))
	return client, nil
}
