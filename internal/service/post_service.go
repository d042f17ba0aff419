package service

import (
	"context"
	"strings"

	"github.com/Baaaki/inkwell/internal/apperr"
	"github.com/Baaaki/inkwell/internal/authz"
	"github.com/Baaaki/inkwell/internal/models"
	"github.com/Baaaki/inkwell/internal/repository"
	"github.com/Baaaki/inkwell/internal/session"
	"github.com/Baaaki/inkwell/pkg/logger"
	"go.uber.org/zap"
)

// PostListFilter mirrors the listing query string
type PostListFilter struct {
	Status string
	All    bool
}

type CreatePostInput struct {
	Title   string
	Content string
	Status  string
}

// UpdatePostInput is a partial update. Empty fields keep their value.
type UpdatePostInput struct {
	Title   string
	Content string
	Status  string
}

type PostService struct {
	postRepo *repository.PostRepository
}

func NewPostService(postRepo *repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

// List returns published posts unless a status filter or all is given.
// Anything beyond published requires a session.
func (s *PostService) List(ctx context.Context, identity *session.Identity, filter PostListFilter) ([]models.Post, error) {
	var repoFilter repository.PostFilter

	switch {
	case filter.All:
		// Any logged-in user sees every post here, not just their own
		if err := authz.RequireAuthenticated(identity).Err(); err != nil {
			return nil, err
		}
		repoFilter.All = true
	case filter.Status != "":
		status, err := parseStatus(filter.Status)
		if err != nil {
			return nil, err
		}
		if status != models.StatusPublished {
			if err := authz.RequireAuthenticated(identity).Err(); err != nil {
				return nil, err
			}
		}
		repoFilter.Status = &status
	}

	posts, err := s.postRepo.ListPosts(ctx, repoFilter)
	if err != nil {
		logger.Log.Error("Failed to list posts", zap.Error(err))
		return nil, err
	}

	logger.Log.Debug("Listed posts",
		zap.String("status", filter.Status),
		zap.Bool("all", filter.All),
		zap.Int("count", len(posts)),
	)
	return posts, nil
}

// Get hides non-published posts from everyone but the owner and admins
func (s *PostService) Get(ctx context.Context, identity *session.Identity, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.NotFound("post not found")
	}

	if post.Status != models.StatusPublished && !authz.OwnerOrAdmin(identity, post.UserID).Allowed {
		return nil, apperr.NotFound("post not found")
	}
	return post, nil
}

func (s *PostService) Create(ctx context.Context, identity *session.Identity, in CreatePostInput) (*models.Post, error) {
	if err := authz.RequireAuthenticated(identity).Err(); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, apperr.Validation("title and content are required")
	}

	status := models.StatusPublished
	if in.Status != "" {
		var err error
		if status, err = parseStatus(in.Status); err != nil {
			return nil, err
		}
	}

	userID := identity.ID
	post := &models.Post{
		Title:   title,
		Content: content,
		Author:  identity.DisplayName,
		UserID:  &userID,
		Status:  status,
	}
	if err := s.postRepo.CreatePost(ctx, post); err != nil {
		logger.Log.Error("Failed to create post",
			zap.Uint("user_id", identity.ID),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Post created",
		zap.Uint("post_id", post.ID),
		zap.Uint("user_id", identity.ID),
		zap.String("status", string(post.Status)),
	)
	return post, nil
}

func (s *PostService) Update(ctx context.Context, identity *session.Identity, id uint, in UpdatePostInput) (*models.Post, error) {
	var status models.PostStatus
	if in.Status != "" {
		var err error
		if status, err = parseStatus(in.Status); err != nil {
			return nil, err
		}
	}

	post, err := authz.RequireOwnerOrAdmin(ctx, identity, authz.KindPost, id, s.loadPost)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		post.Title = title
	}
	if content := strings.TrimSpace(in.Content); content != "" {
		post.Content = content
	}
	if status != "" {
		post.Status = status
	}

	if err := s.postRepo.SavePost(ctx, post); err != nil {
		logger.Log.Error("Failed to update post", zap.Uint("post_id", id), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Post updated",
		zap.Uint("post_id", id),
		zap.Uint("actor_id", identity.ID),
	)
	return post, nil
}

// ChangeStatus validates status before touching storage
func (s *PostService) ChangeStatus(ctx context.Context, identity *session.Identity, id uint, rawStatus string) (*models.Post, error) {
	status, err := parseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	post, err := authz.RequireOwnerOrAdmin(ctx, identity, authz.KindPost, id, s.loadPost)
	if err != nil {
		return nil, err
	}

	previous := post.Status
	post.Status = status
	if err := s.postRepo.SavePost(ctx, post); err != nil {
		logger.Log.Error("Failed to change post status", zap.Uint("post_id", id), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Post status changed",
		zap.Uint("post_id", id),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
		zap.Uint("actor_id", identity.ID),
	)
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, identity *session.Identity, id uint) error {
	if _, err := authz.RequireOwnerOrAdmin(ctx, identity, authz.KindPost, id, s.loadPost); err != nil {
		return err
	}

	if err := s.postRepo.DeleteWithComments(ctx, id); err != nil {
		logger.Log.Error("Failed to delete post", zap.Uint("post_id", id), zap.Error(err))
		return err
	}

	logger.Log.Info("Post deleted",
		zap.Uint("post_id", id),
		zap.Uint("actor_id", identity.ID),
	)
	return nil
}

func (s *PostService) loadPost(ctx context.Context, id uint) (*models.Post, bool, error) {
	post, err := s.postRepo.GetPostByID(ctx, id)
	return post, post != nil, err
}

func parseStatus(raw string) (models.PostStatus, error) {
	status := models.PostStatus(strings.TrimSpace(raw))
	if !status.Valid() {
		return "", apperr.Validation("invalid status, must be one of: published, draft, hidden")
	}
	return status, nil
}
