package database

import (
	"context"
	"fmt"

	"github.com/Baaaki/inkwell/internal/models"
	"github.com/Baaaki/inkwell/internal/utils"
	"github.com/Baaaki/inkwell/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnsureAdmin creates the first admin account when no admin exists yet.
// It reports whether an account was created.
func EnsureAdmin(ctx context.Context, db *gorm.DB, username, email, password string) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("counting admins: %w", err)
	}
	if count > 0 {
		logger.Log.Debug("Admin account already present", zap.Int64("admins", count))
		return false, nil
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hashing admin password: %w", err)
	}

	admin := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  "Administrator",
		Role:         models.RoleAdmin,
	}
	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		return false, fmt.Errorf("creating admin: %w", err)
	}

	logger.Log.Info("Admin account created",
		zap.Uint("user_id", admin.ID),
		zap.String("username", admin.Username),
		zap.String("email", admin.Email),
	)
	return true, nil
}
