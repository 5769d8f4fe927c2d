package middleware

import (
	"errors"
	"strings"

	"webservices-backend/internal/auth"
	"webservices-backend/internal/infrastructure/sessions"
	"webservices-backend/internal/shared/response"
	"webservices-backend/pkg/jwt"
	"webservices-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Authenticate resolves the request identity, if any, and attaches it to the
// context. A missing or stale credential passes through as anonymous — routes
// that demand an identity layer RequireAuth on top — but a session-store
// outage fails the request outright. Two transports are accepted:
//
//  1. the session cookie set by the sign-in exchange (browser clients)
//  2. an Authorization: Bearer token (API clients)
func Authenticate(store *sessions.Store, jwtManager *jwt.Manager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sid, err := c.Cookie(cookieName); err == nil && sid != "" {
			var identity auth.Identity
			switch err := store.Get(c.Request.Context(), sid, &identity); {
			case err == nil:
				auth.SetIdentity(c, &identity)
				c.Next()
				return
			case errors.Is(err, sessions.ErrNotFound):
				// Stale or unknown cookie: treat as anonymous.
			default:
				// A session-store outage must not silently downgrade an
				// authenticated browser request to anonymous.
				logger.Error("authenticate: load session", err)
				response.InternalServerError(c, "Server Error")
				c.Abort()
				return
			}
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				if claims, err := jwtManager.ValidateToken(parts[1]); err == nil {
					auth.SetIdentity(c, &auth.Identity{
						ID:          claims.UserID,
						DisplayName: claims.DisplayName,
						Email:       claims.Email,
						Role:        claims.Role,
					})
				}
			}
		}

		c.Next()
	}
}

// RequireAuth gates protected operations: no established identity means 401,
// with no internal detail leaked.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.FromContext(c); !ok {
			response.Unauthorized(c, "Authentication required. Please log in.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin gates privileged-only operations. No CRUD resource uses it,
// but the elevated-privilege predicate is part of the auth contract.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.FromContext(c)
		if !ok {
			response.Unauthorized(c, "Authentication required. Please log in.")
			c.Abort()
			return
		}
		if !identity.IsAdmin() {
			response.Forbidden(c, "Admin privileges required")
			c.Abort()
			return
		}
		c.Next()
	}
}
