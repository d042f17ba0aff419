package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Baaaki/inkwell/internal/models"
	"gorm.io/gorm"
)

// ErrDuplicateUser means the username or email is already taken
var ErrDuplicateUser = errors.New("username or email already taken")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("creating user: %w", ErrDuplicateUser)
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetUserByID returns nil, nil when no user has that id
func (r *UserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

// GetUserByLogin matches either the username or the email
func (r *UserRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.first(ctx, "username = ? OR email = ?", login, login)
}

func (r *UserRepository) first(ctx context.Context, query string, args ...any) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return &user, nil
}

// GetAllUsers returns every user, newest first
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id uint, role models.Role) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("role", role).Error
	if err != nil {
		return fmt.Errorf("updating role of user %d: %w", id, err)
	}
	return nil
}

// DeleteWithContent removes the user with everything they own in one
// transaction: their comments, comments on their posts, their posts, then
// the user row.
func (r *UserRepository) DeleteWithContent(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("deleting comments by user %d: %w", id, err)
		}

		ownPosts := tx.Model(&models.Post{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("post_id IN (?)", ownPosts).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("deleting comments on posts of user %d: %w", id, err)
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return fmt.Errorf("deleting posts of user %d: %w", id, err)
		}

		if err := tx.Delete(&models.User{}, id).Error; err != nil {
			return fmt.Errorf("deleting user %d: %w", id, err)
		}
		return nil
	})
}

func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}
