package auth

import (
	"github.com/gin-gonic/gin"
)

// RoleAdmin is the only elevated role. Regular sign-ins get RoleUser.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// contextKey is the gin context key under which the request identity travels.
// The identity is always passed explicitly through the request context; there
// is no ambient "current user" state anywhere in the process.
const contextKey = "identity"

// Identity is the actor attached to a request after a successful sign-in
// exchange. The exchange itself (OAuth provider round-trip) happens outside
// this service; we only consume its result.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

// IsAdmin reports whether the identity holds elevated privilege.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// SetIdentity attaches the identity to the request context.
func SetIdentity(c *gin.Context, id *Identity) {
	c.Set(contextKey, id)
}

// FromContext returns the identity established for this request, if any.
func FromContext(c *gin.Context) (*Identity, bool) {
	v, exists := c.Get(contextKey)
	if !exists {
		return nil, false
	}
	id, ok := v.(*Identity)
	if !ok || id == nil {
		return nil, false
	}
	return id, true
}
