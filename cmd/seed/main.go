package main

import (
	"context"
	"log"

	"github.com/Baaaki/inkwell/internal/config"
	"github.com/Baaaki/inkwell/internal/database"
	"github.com/Baaaki/inkwell/pkg/logger"
	"go.uber.org/zap"
)

// Creates the first admin from ADMIN_USERNAME, ADMIN_EMAIL and
// ADMIN_PASSWORD. Does nothing when an admin already exists.
func main() {
	cfg := config.Load()
	if err := logger.Init(true); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	created, err := database.EnsureAdmin(context.Background(), db, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		logger.Log.Fatal("Failed to create admin", zap.Error(err))
	}
	if !created {
		logger.Log.Info("Admin user already exists, nothing to do")
		return
	}
	logger.Log.Info("Admin user created",
		zap.String("username", cfg.AdminUsername),
		zap.String("email", cfg.AdminEmail),
	)
}
