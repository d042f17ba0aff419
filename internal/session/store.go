// Package session maps opaque cookie tokens to authenticated identity snapshots.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/Baaaki/inkwell/internal/models"
)

// ErrNoSession is returned by a Store when the token is unknown or expired.
var ErrNoSession = errors.New("session not found")

// Identity is the snapshot of a user taken at login time.
type Identity struct {
	ID          uint        `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Role        models.Role `json:"role"`
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

// IdentityFromUser builds the snapshot stored for a user.
func IdentityFromUser(user *models.User) Identity {
	return Identity{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}
}

// Store persists sessions keyed by token and indexes them by user so that
// all of a user's sessions can be dropped at once. Get returns ErrNoSession
// for unknown or expired tokens.
type Store interface {
	Get(ctx context.Context, token string) (*Identity, error)
	Set(ctx context.Context, token string, identity Identity, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
	Expire(ctx context.Context, token string, userID uint, ttl time.Duration) error
	DeleteUser(ctx context.Context, userID uint) error
}
