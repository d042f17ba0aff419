package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Baaaki/inkwell/internal/models"
	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("creating comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading comment %d: %w", id, err)
	}
	return &comment, nil
}

// ListByPost returns the comments of a post, newest first
func (r *CommentRepository) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("listing comments of post %d: %w", postID, err)
	}
	return comments, nil
}

func (r *CommentRepository) DeleteComment(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error; err != nil {
		return fmt.Errorf("deleting comment %d: %w", id, err)
	}
	return nil
}

func (r *CommentRepository) CountComments(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Count(&count).Error
	return count, err
}
