// Package middleware provides Gin HTTP middleware for authentication,
// authorization guards, rate limiting, security headers, and audit logging.
//
// Middleware ordering matters and is enforced in router.go:
//
//	Security → RateLimit → Auth → Guards → Audit → Handler
//
// Security headers run first so they appear on all responses including errors.
// Rate limiting runs before auth to block brute-force attacks before any DB work.
// Auth populates the user identity and role context; the guards read from that
// context. Audit logging runs after the guards so only successfully authorized
// mutations are recorded as successful actions.
//
// The guards mirror how the SPA nests its route protection: each denial
// carries a redirect_to field so the client can translate an API rejection
// into navigation (login page, forbidden page, or workspace picker).
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vertex-platform/vertex-backend/internal/auth"
	"github.com/vertex-platform/vertex-backend/internal/db/repositories"
)

// Context keys set by AuthMiddleware
const (
	ContextUser                = "user"
	ContextUserID              = "user_id"
	ContextIsAdmin             = "is_admin"
	ContextSystemRole          = "system_role"
	ContextActiveWorkspaceRole = "active_workspace_role"
)

// Redirect targets carried on guard denials
const (
	RedirectLogin     = "/login"
	RedirectForbidden = "/forbidden"
)

// unauthorized aborts with a 401 and tells the client to navigate to the
// login page, echoing the originally requested path so the post-login route
// resolver can send the user back after they authenticate.
func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
		"data": gin.H{
			"redirect_to": RedirectLogin,
			"from":        c.Request.URL.Path,
		},
	})
}

// AuthMiddleware validates the bearer JWT and loads the user with their role
// in the currently active workspace. This is the authenticated guard: every
// protected route sits behind it.
func AuthMiddleware(userRepo *repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Missing authorization header")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			unauthorized(c, "Authorization header must start with 'Bearer '")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		token = strings.TrimSpace(token)

		if token == "" {
			unauthorized(c, "Authorization token is empty")
			return
		}

		claims, err := auth.ValidateJWT(token)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		// The JWT proves identity; role and workspace context always come
		// from the database so revoked memberships and workspace switches
		// take effect immediately, not at token refresh.
		user, err := userRepo.GetUserWithWorkspaceRole(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to load user",
			})
			return
		}

		if user == nil {
			unauthorized(c, "User not found")
			return
		}

		systemRole := auth.SystemRole(user.SystemRole)
		workspaceRole := auth.WorkspaceRole(user.ActiveWorkspaceRole)

		c.Set(ContextUser, user)
		c.Set(ContextUserID, user.ID)
		c.Set(ContextSystemRole, systemRole)
		c.Set(ContextActiveWorkspaceRole, workspaceRole)
		c.Set(ContextIsAdmin, auth.IsAdmin(systemRole, workspaceRole))

		c.Next()
	}
}
