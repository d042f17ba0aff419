package middleware

import (
	"github.com/Baaaki/inkwell/internal/apperr"
	"github.com/Baaaki/inkwell/internal/authz"
	"github.com/Baaaki/inkwell/internal/session"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// LoadSession resolves the session cookie and stores the identity on the
// context. Requests without a valid session pass through anonymously.
func LoadSession(manager *session.Manager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err == nil && token != "" {
			if identity := manager.Resolve(c.Request.Context(), token); identity != nil {
				c.Set(identityKey, identity)
			}
		}
		c.Next()
	}
}

// CurrentIdentity returns the caller, or nil for anonymous requests
func CurrentIdentity(c *gin.Context) *session.Identity {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(*session.Identity); ok {
			return identity
		}
	}
	return nil
}

func RequireAuth() gin.HandlerFunc {
	return gate(authz.RequireAuthenticated)
}

func RequireAdmin() gin.HandlerFunc {
	return gate(authz.RequireAdmin)
}

func gate(predicate func(*session.Identity) authz.Decision) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := predicate(CurrentIdentity(c)).Err(); err != nil {
			c.AbortWithStatusJSON(apperr.Status(err), gin.H{
				"error": err.Error(),
			})
			return
		}
		c.Next()
	}
}
