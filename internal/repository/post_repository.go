package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Baaaki/inkwell/internal/models"
	"gorm.io/gorm"
)

// PostFilter narrows a listing. A nil Status with All unset means
// published only.
type PostFilter struct {
	Status *models.PostStatus
	All    bool
}

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("creating post: %w", err)
	}
	return nil
}

// GetPostByID returns nil, nil when the post does not exist
func (r *PostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading post %d: %w", id, err)
	}
	return &post, nil
}

// ListPosts returns matching posts, newest first
func (r *PostRepository) ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC")

	switch {
	case filter.All:
	case filter.Status != nil:
		query = query.Where("status = ?", *filter.Status)
	default:
		query = query.Where("status = ?", models.StatusPublished)
	}

	posts := []models.Post{}
	if err := query.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// SavePost writes every column of post and refreshes updated_at
func (r *PostRepository) SavePost(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return fmt.Errorf("saving post %d: %w", post.ID, err)
	}
	return nil
}

// DeleteWithComments removes the post and its comments atomically
func (r *PostRepository) DeleteWithComments(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("deleting comments of post %d: %w", id, err)
		}
		if err := tx.Delete(&models.Post{}, id).Error; err != nil {
			return fmt.Errorf("deleting post %d: %w", id, err)
		}
		return nil
	})
}

func (r *PostRepository) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error
	return count, err
}

func (r *PostRepository) CountByStatus(ctx context.Context, status models.PostStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
