package service

import (
	"context"
	"fmt"

	"github.com/Baaaki/inkwell/internal/authz"
	"github.com/Baaaki/inkwell/internal/models"
	"github.com/Baaaki/inkwell/internal/repository"
	"github.com/Baaaki/inkwell/internal/session"
)

type StatsService struct {
	userRepo    *repository.UserRepository
	postRepo    *repository.PostRepository
	commentRepo *repository.CommentRepository
}

func NewStatsService(userRepo *repository.UserRepository, postRepo *repository.PostRepository, commentRepo *repository.CommentRepository) *StatsService {
	return &StatsService{
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

func (s *StatsService) Get(ctx context.Context, identity *session.Identity) (*models.Stats, error) {
	if err := authz.RequireAdmin(identity).Err(); err != nil {
		return nil, err
	}

	var (
		stats models.Stats
		err   error
	)
	if stats.TotalUsers, err = s.userRepo.CountUsers(ctx); err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	if stats.TotalPosts, err = s.postRepo.CountPosts(ctx); err != nil {
		return nil, fmt.Errorf("counting posts: %w", err)
	}
	if stats.TotalComments, err = s.commentRepo.CountComments(ctx); err != nil {
		return nil, fmt.Errorf("counting comments: %w", err)
	}
	if stats.PublishedPosts, err = s.postRepo.CountByStatus(ctx, models.StatusPublished); err != nil {
		return nil, fmt.Errorf("counting published posts: %w", err)
	}
	return &stats, nil
}
