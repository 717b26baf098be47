package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/cinelog/internal/database"
	"github.com/mantonx/cinelog/internal/errors"
	"github.com/mantonx/cinelog/internal/policy"
	"gorm.io/gorm"
)

// ContextUserKey is the gin context key holding the authenticated user.
const ContextUserKey = "auth_user"

// Authenticate resolves the bearer token (when present) into a user and
// stores it on the request context. Requests without an Authorization header
// pass through as anonymous; requests with a bad token are rejected so a
// client never silently degrades to anonymous access.
func Authenticate(manager *TokenManager, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			errors.HandleUnauthorized(c, "authorization header must be of the form 'Bearer <token>'")
			c.Abort()
			return
		}

		claims, err := manager.ValidateToken(parts[1])
		if err != nil {
			errors.HandleUnauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		var user database.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			errors.HandleUnauthorized(c, "token refers to an unknown user")
			c.Abort()
			return
		}
		if !user.IsActive {
			errors.HandleUnauthorized(c, "account is disabled")
			c.Abort()
			return
		}

		c.Set(ContextUserKey, &user)
		c.Next()
	}
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(c *gin.Context) (*database.User, bool) {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*database.User)
	return user, ok
}

// IdentityFromContext builds the policy identity for the current request.
func IdentityFromContext(c *gin.Context) policy.Identity {
	user, ok := UserFromContext(c)
	if !ok {
		return policy.Anonymous
	}
	return policy.Identity{
		Authenticated: true,
		UserID:        user.ID,
		Staff:         user.IsStaff || user.IsSuperuser,
	}
}

// RequireAuthenticated rejects anonymous callers.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserFromContext(c); !ok {
			errors.HandleUnauthorized(c, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireCapability rejects requests whose identity lacks the capability.
// Anonymous callers get 401, authenticated-but-unprivileged callers get 403.
func RequireCapability(capability policy.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFromContext(c)
		if policy.Allow(identity, capability) {
			c.Next()
			return
		}

		if !identity.Authenticated {
			errors.HandleUnauthorized(c, "authentication required")
		} else {
			errors.HandleForbidden(c, "insufficient permissions")
		}
		c.Abort()
	}
}
