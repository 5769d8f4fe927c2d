package auth

import (
	"fmt"
	"net/http"
	"time"

	"webservices-backend/internal/infrastructure/sessions"
	"webservices-backend/internal/shared/response"
	"webservices-backend/pkg/jwt"
	"webservices-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler serves the session endpoints around the sign-in exchange. The
// OAuth provider round-trip itself is an external collaborator; these
// endpoints only establish, report, and destroy the resulting session.
type Handler struct {
	store       *sessions.Store
	jwtManager  *jwt.Manager
	cookieName  string
	cookieTTL   time.Duration
	secure      bool
	environment string
}

func NewHandler(store *sessions.Store, jwtManager *jwt.Manager, cookieName string, ttl time.Duration, secure bool, environment string) *Handler {
	return &Handler{
		store:       store,
		jwtManager:  jwtManager,
		cookieName:  cookieName,
		cookieTTL:   ttl,
		secure:      secure,
		environment: environment,
	}
}

// RegisterRoutes mounts the auth endpoints under /auth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/test-login", h.TestLogin)
	rg.GET("/current", h.Current)
	rg.GET("/logout", h.Logout)
}

// TestLogin establishes a session without the OAuth round-trip. Development
// only; in production the route answers 404 as if it did not exist.
func (h *Handler) TestLogin(c *gin.Context) {
	if h.environment == "production" {
		response.NotFound(c, "Route not found")
		return
	}

	role := RoleUser
	if c.Query("role") == RoleAdmin {
		role = RoleAdmin
	}

	identity := &Identity{
		ID:          fmt.Sprintf("test-user-%d", time.Now().UnixMilli()),
		DisplayName: "Test User",
		Email:       "test@example.com",
		Role:        role,
	}

	sid, err := h.store.Create(c.Request.Context(), identity)
	if err != nil {
		logger.Error("test-login: create session", err)
		response.InternalServerError(c, "Login failed")
		return
	}

	token, err := h.jwtManager.GenerateToken(identity.ID, identity.DisplayName, identity.Email, identity.Role)
	if err != nil {
		logger.Error("test-login: issue token", err)
		response.InternalServerError(c, "Login failed")
		return
	}

	c.SetCookie(h.cookieName, sid, int(h.cookieTTL.Seconds()), "/", "", h.secure, true)

	response.Success(c, http.StatusOK, "Test login successful. You are now authenticated.", gin.H{
		"user":         identity,
		"access_token": token,
	})
}

// Current reports the identity established for this request.
func (h *Handler) Current(c *gin.Context) {
	identity, ok := FromContext(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	response.Success(c, http.StatusOK, "", gin.H{
		"authenticated": true,
		"user":          identity,
	})
}

// Logout destroys the session and clears the cookie. Logging out without a
// session is not an error.
func (h *Handler) Logout(c *gin.Context) {
	if sid, err := c.Cookie(h.cookieName); err == nil && sid != "" {
		if err := h.store.Destroy(c.Request.Context(), sid); err != nil {
			logger.Error("logout: destroy session", err)
			response.InternalServerError(c, "Logout failed")
			return
		}
	}

	c.SetCookie(h.cookieName, "", -1, "/", "", h.secure, true)
	response.Success(c, http.StatusOK, "Logged out successfully", nil)
}
