// Package session implements the authentication endpoints: password login,
// token refresh, logout, and the /me surface the SPA boots from (profile,
// workspace memberships, and the post-login route resolver).
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vertex-platform/vertex-backend/internal/auth"
	"github.com/vertex-platform/vertex-backend/internal/cache"
	"github.com/vertex-platform/vertex-backend/internal/config"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
	"github.com/vertex-platform/vertex-backend/internal/db/repositories"
	"github.com/vertex-platform/vertex-backend/internal/middleware"
)

// TokenTTL is the lifetime of issued session tokens. Refresh extends a
// session without re-entering credentials.
const TokenTTL = 24 * time.Hour

// Handlers handles session and identity endpoints
type Handlers struct {
	cfg           *config.Config
	db            *sql.DB
	userRepo      *repositories.UserRepository
	workspaceRepo *repositories.WorkspaceRepository
	wsCache       *cache.WorkspaceCache
}

// NewHandlers creates a new session Handlers instance. wsCache may be nil
// when Redis is not configured.
func NewHandlers(cfg *config.Config, db *sql.DB, wsCache *cache.WorkspaceCache) *Handlers {
	return &Handlers{
		cfg:           cfg,
		db:            db,
		userRepo:      repositories.NewUserRepository(db),
		workspaceRepo: repositories.NewWorkspaceRepository(db),
		wsCache:       wsCache,
	}
}

// userPayload shapes a user for API responses. Built by hand so the password
// hash can never leak through struct serialization.
func userPayload(user *models.UserWithWorkspaceRole) gin.H {
	return gin.H{
		"id":                    user.ID,
		"email":                 user.Email,
		"name":                  user.Name,
		"system_role":           user.SystemRole,
		"active_workspace_id":   user.ActiveWorkspaceID,
		"active_workspace_role": user.ActiveWorkspaceRole,
		"is_admin": auth.IsAdmin(
			auth.SystemRole(user.SystemRole),
			auth.WorkspaceRole(user.ActiveWorkspaceRole),
		),
	}
}

// LoginRequest represents the password login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	// From is the path the SPA bounced the user away from before login,
	// echoed back through the route resolver as the landing path.
	From string `json:"from"`
}

// @Summary      Password login
// @Description  Authenticate with email and password. Returns a bearer token, the user profile, and the resolved post-login path.
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        body  body  LoginRequest  true  "Login request"
// @Success      200  {object}  map[string]interface{}  "data: token, user, redirect_to"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      401  {object}  map[string]interface{}  "Invalid email or password"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/auth/login [post]
// LoginHandler authenticates a user with email and password
// POST /api/v1/auth/login
func (h *Handlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request: " + err.Error(),
			})
			return
		}

		user, err := h.userRepo.GetUserByEmail(c.Request.Context(), req.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to look up user",
			})
			return
		}

		// A missing user and a wrong password return the same message so the
		// endpoint cannot be used to probe which emails have accounts.
		if user == nil || !auth.VerifyPassword(req.Password, user.PasswordHash) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid email or password",
			})
			return
		}

		enriched, err := h.userRepo.GetUserWithWorkspaceRole(c.Request.Context(), user.ID)
		if err != nil || enriched == nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to load user",
			})
			return
		}

		token, err := auth.GenerateJWT(user.ID, user.Email, user.SystemRole, TokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to issue token",
			})
			return
		}

		isAdmin := auth.IsAdmin(
			auth.SystemRole(enriched.SystemRole),
			auth.WorkspaceRole(enriched.ActiveWorkspaceRole),
		)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Logged in",
			"data": gin.H{
				"token":       token,
				"user":        userPayload(enriched),
				"redirect_to": auth.ResolvePostLoginPath(isAdmin, req.From),
			},
		})
	}
}

// @Summary      Refresh session token
// @Description  Issue a fresh token for the authenticated user, extending the session.
// @Tags         Authentication
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "data: token"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/auth/refresh [post]
// RefreshHandler issues a fresh token for an authenticated session
// POST /api/v1/auth/refresh
func (h *Handlers) RefreshHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
			})
			return
		}

		token, err := auth.GenerateJWT(user.ID, user.Email, user.SystemRole, TokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to issue token",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Token refreshed",
			"data": gin.H{
				"token": token,
			},
		})
	}
}

// @Summary      Logout
// @Description  End the session. Tokens are stateless; the client discards its copy and navigates to the login page.
// @Tags         Authentication
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "data: redirect_to"
// @Router       /api/v1/auth/logout [post]
// LogoutHandler ends the session
// POST /api/v1/auth/logout
func (h *Handlers) LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Logged out",
			"data": gin.H{
				"redirect_to": "/login",
			},
		})
	}
}
