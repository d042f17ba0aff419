package service

import (
	"context"
	"fmt"

	"github.com/Baaaki/inkwell/internal/apperr"
	"github.com/Baaaki/inkwell/internal/audit"
	"github.com/Baaaki/inkwell/internal/authz"
	"github.com/Baaaki/inkwell/internal/models"
	"github.com/Baaaki/inkwell/internal/repository"
	"github.com/Baaaki/inkwell/internal/session"
	"github.com/Baaaki/inkwell/pkg/logger"
	"go.uber.org/zap"
)

// UserService is the admin surface over accounts. Every mutation is
// recorded in the audit journal and ends the target's live sessions.
type UserService struct {
	userRepo *repository.UserRepository
	journal  audit.Recorder
	sessions *session.Manager
}

func NewUserService(userRepo *repository.UserRepository, journal audit.Recorder, sessions *session.Manager) *UserService {
	return &UserService{
		userRepo: userRepo,
		journal:  journal,
		sessions: sessions,
	}
}

func (s *UserService) List(ctx context.Context, identity *session.Identity) ([]models.User, error) {
	if err := authz.RequireAdmin(identity).Err(); err != nil {
		return nil, err
	}

	users, err := s.userRepo.GetAllUsers(ctx)
	if err != nil {
		logger.Log.Error("Failed to fetch users", zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Fetched all users",
		zap.Uint("admin_id", identity.ID),
		zap.Int("count", len(users)),
	)
	return users, nil
}

func (s *UserService) ChangeRole(ctx context.Context, identity *session.Identity, id uint, rawRole string) (*models.User, error) {
	if err := authz.RequireAdmin(identity).Err(); err != nil {
		return nil, err
	}

	role := models.Role(rawRole)
	if !role.Valid() {
		return nil, apperr.Validation("invalid role, must be one of: user, admin")
	}
	if id == identity.ID && role != models.RoleAdmin {
		return nil, apperr.Validation("you cannot remove your own admin role")
	}

	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}

	previous := user.Role
	if err := s.userRepo.UpdateRole(ctx, id, role); err != nil {
		logger.Log.Error("Failed to change role", zap.Uint("user_id", id), zap.Error(err))
		return nil, err
	}
	user.Role = role

	// Sessions carry the old role
	if previous != role {
		s.revokeSessions(ctx, id)
	}

	s.record(audit.Entry{
		Action:   audit.ActionRoleChange,
		ActorID:  identity.ID,
		TargetID: id,
		Detail:   fmt.Sprintf("%s -> %s", previous, role),
	})

	logger.Log.Info("User role changed",
		zap.Uint("user_id", id),
		zap.String("from", string(previous)),
		zap.String("to", string(role)),
		zap.Uint("admin_id", identity.ID),
	)
	return user, nil
}

// Delete removes the user together with their posts and comments
func (s *UserService) Delete(ctx context.Context, identity *session.Identity, id uint) error {
	if err := authz.RequireAdmin(identity).Err(); err != nil {
		return err
	}
	if id == identity.ID {
		return apperr.Validation("you cannot delete your own account")
	}

	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.NotFound("user not found")
	}

	if err := s.userRepo.DeleteWithContent(ctx, id); err != nil {
		logger.Log.Error("Failed to delete user",
			zap.Uint("user_id", id),
			zap.Error(err),
		)
		return err
	}

	s.revokeSessions(ctx, id)

	s.record(audit.Entry{
		Action:   audit.ActionUserDelete,
		ActorID:  identity.ID,
		TargetID: id,
		Detail:   user.Username,
	})

	logger.Log.Info("User deleted",
		zap.Uint("user_id", id),
		zap.String("username", user.Username),
		zap.Uint("admin_id", identity.ID),
	)
	return nil
}

// AuditLog returns the journal, oldest entry first
func (s *UserService) AuditLog(ctx context.Context, identity *session.Identity) ([]audit.Entry, error) {
	if err := authz.RequireAdmin(identity).Err(); err != nil {
		return nil, err
	}
	return s.journal.ReadAll()
}

func (s *UserService) record(entry audit.Entry) {
	recordAdminAction(s.journal, entry)
}

// The mutation already committed, so a journal failure is only logged
func recordAdminAction(journal audit.Recorder, entry audit.Entry) {
	if err := journal.Write(entry); err != nil {
		logger.Log.Error("Failed to journal admin action",
			zap.String("action", string(entry.Action)),
			zap.Uint("target_id", entry.TargetID),
			zap.String("detail", entry.Detail),
			zap.Error(err),
		)
	}
}

// Failures are logged by the manager. A store that cannot delete usually
// cannot resolve either, which leaves the old token anonymous.
func (s *UserService) revokeSessions(ctx context.Context, userID uint) {
	_ = s.sessions.DestroyUser(ctx, userID)
}
