package session

import (
	"context"
	"errors"
	"time"

	"github.com/Baaaki/inkwell/internal/models"
	"github.com/Baaaki/inkwell/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager owns the session lifecycle on top of a Store.
type Manager struct {
	store   Store
	ttl     time.Duration
	sliding bool
}

// NewManager wires a store. With sliding enabled every successful Resolve
// pushes the expiry forward by ttl.
func NewManager(store Store, ttl time.Duration, sliding bool) *Manager {
	return &Manager{
		store:   store,
		ttl:     ttl,
		sliding: sliding,
	}
}

// TTL is the lifetime of a new session, also used as the cookie Max-Age.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create starts a session for user and returns its token.
func (m *Manager) Create(ctx context.Context, user *models.User) (string, error) {
	token := uuid.NewString()

	if err := m.store.Set(ctx, token, IdentityFromUser(user), m.ttl); err != nil {
		logger.Log.Error("Failed to store session",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return "", err
	}

	logger.Log.Debug("Session created",
		zap.Uint("user_id", user.ID),
		zap.Duration("ttl", m.ttl),
	)
	return token, nil
}

// Resolve returns the identity for token, or nil when there is none.
// Store failures are logged and treated as an anonymous request.
func (m *Manager) Resolve(ctx context.Context, token string) *Identity {
	if token == "" {
		return nil
	}

	identity, err := m.store.Get(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			logger.Log.Warn("Session lookup failed", zap.Error(err))
		}
		return nil
	}

	if m.sliding {
		if err := m.store.Expire(ctx, token, identity.ID, m.ttl); err != nil {
			logger.Log.Warn("Failed to extend session",
				zap.Uint("user_id", identity.ID),
				zap.Error(err),
			)
		}
	}

	return identity
}

// Destroy ends the session. Unknown tokens are not an error.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.Delete(ctx, token)
}

// DestroyUser ends every session held by userID, so a deleted or re-roled
// user has to log in again.
func (m *Manager) DestroyUser(ctx context.Context, userID uint) error {
	if err := m.store.DeleteUser(ctx, userID); err != nil {
		logger.Log.Error("Failed to revoke user sessions",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("User sessions revoked", zap.Uint("user_id", userID))
	return nil
}
