// Package authz holds the access rules applied before any mutation:
// authenticated-only, admin-only and owner-or-admin.
package authz

import (
	"context"
	"fmt"

	"github.com/Baaaki/inkwell/internal/apperr"
	"github.com/Baaaki/inkwell/internal/session"
)

// Decision is the outcome of a predicate. A denied decision carries the
// apperr-kinded reason.
type Decision struct {
	Allowed bool
	Reason  error
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason error) Decision {
	return Decision{Reason: reason}
}

// Err is nil for an allowed decision and the reason otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return d.Reason
}

func RequireAuthenticated(identity *session.Identity) Decision {
	if identity == nil {
		return Deny(apperr.Unauthenticated("authentication required"))
	}
	return Allow()
}

func RequireAdmin(identity *session.Identity) Decision {
	if identity == nil {
		return Deny(apperr.Unauthenticated("authentication required"))
	}
	if !identity.IsAdmin() {
		return Deny(apperr.Forbidden("admin access required"))
	}
	return Allow()
}

// OwnerOrAdmin allows admins and the owner. A resource without an owner
// can only be touched by an admin.
func OwnerOrAdmin(identity *session.Identity, ownerID *uint) Decision {
	if d := RequireAuthenticated(identity); !d.Allowed {
		return d
	}
	if identity.IsAdmin() {
		return Allow()
	}
	if ownerID != nil && *ownerID == identity.ID {
		return Allow()
	}
	return Deny(apperr.Forbidden("you do not have permission to modify this resource"))
}

// ResourceKind names a resource in error messages
type ResourceKind string

const (
	KindPost    ResourceKind = "post"
	KindComment ResourceKind = "comment"
)

// Owned is implemented by resources that carry an owning user id.
type Owned interface {
	OwnerID() *uint
}

// Loader fetches a resource by id; found is false when it does not exist.
type Loader[T Owned] func(ctx context.Context, id uint) (resource T, found bool, err error)

// RequireOwnerOrAdmin loads the resource and applies OwnerOrAdmin to it.
// It fails with NotFound when the resource is absent and returns the
// loaded resource when access is granted.
func RequireOwnerOrAdmin[T Owned](ctx context.Context, identity *session.Identity, kind ResourceKind, id uint, load Loader[T]) (T, error) {
	var zero T

	if d := RequireAuthenticated(identity); !d.Allowed {
		return zero, d.Err()
	}

	resource, found, err := load(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("loading %s %d: %w", kind, id, err)
	}
	if !found {
		return zero, apperr.NotFound(fmt.Sprintf("%s not found", kind))
	}

	if err := OwnerOrAdmin(identity, resource.OwnerID()).Err(); err != nil {
		return zero, err
	}
	return resource, nil
}
