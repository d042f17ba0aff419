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

type CommentService struct {
	commentRepo *repository.CommentRepository
	postRepo    *repository.PostRepository
}

func NewCommentService(commentRepo *repository.CommentRepository, postRepo *repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

func (s *CommentService) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		logger.Log.Error("Failed to list comments", zap.Uint("post_id", postID), zap.Error(err))
		return nil, err
	}
	return comments, nil
}

func (s *CommentService) Create(ctx context.Context, identity *session.Identity, postID uint, content string) (*models.Comment, error) {
	if err := authz.RequireAuthenticated(identity).Err(); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("content is required")
	}

	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	userID := identity.ID
	comment := &models.Comment{
		PostID:  postID,
		UserID:  &userID,
		Author:  identity.DisplayName,
		Content: content,
	}
	if err := s.commentRepo.CreateComment(ctx, comment); err != nil {
		logger.Log.Error("Failed to create comment",
			zap.Uint("post_id", postID),
			zap.Uint("user_id", identity.ID),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Comment created",
		zap.Uint("comment_id", comment.ID),
		zap.Uint("post_id", postID),
		zap.Uint("user_id", identity.ID),
	)
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, identity *session.Identity, id uint) error {
	load := func(ctx context.Context, id uint) (*models.Comment, bool, error) {
		comment, err := s.commentRepo.GetCommentByID(ctx, id)
		return comment, comment != nil, err
	}
	if _, err := authz.RequireOwnerOrAdmin(ctx, identity, authz.KindComment, id, load); err != nil {
		return err
	}

	if err := s.commentRepo.DeleteComment(ctx, id); err != nil {
		logger.Log.Error("Failed to delete comment", zap.Uint("comment_id", id), zap.Error(err))
		return err
	}

	logger.Log.Info("Comment deleted",
		zap.Uint("comment_id", id),
		zap.Uint("actor_id", identity.ID),
	)
	return nil
}

func (s *CommentService) requirePost(ctx context.Context, postID uint) error {
	post, err := s.postRepo.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return apperr.NotFound("post not found")
	}
	return nil
}
