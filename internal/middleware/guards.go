// guards.go implements the area, workspace-selected, and approval guards that
// nest under AuthMiddleware. Denials never render pages: they return an
// envelope whose data carries redirect_to, mirroring the SPA's nested route
// protection (authenticated → area → workspace-selected → content).
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vertex-platform/vertex-backend/internal/auth"
	"github.com/vertex-platform/vertex-backend/internal/cache"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
	"github.com/vertex-platform/vertex-backend/internal/db/repositories"
	"github.com/vertex-platform/vertex-backend/internal/workspace"
)

// CurrentUser returns the authenticated user set by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.UserWithWorkspaceRole, bool) {
	v, exists := c.Get(ContextUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.UserWithWorkspaceRole)
	return user, ok
}

// IsAdminFromContext returns the derived admin flag set by AuthMiddleware.
func IsAdminFromContext(c *gin.Context) bool {
	v, exists := c.Get(ContextIsAdmin)
	if !exists {
		return false
	}
	isAdmin, ok := v.(bool)
	return ok && isAdmin
}

// RequireArea is the area guard: it passes only when the user's admin-ness
// matches the route's area. Admins may only use admin routes and trainers
// only trainer routes, exactly as the resolver partitions landing paths.
func RequireArea(area auth.Area) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			unauthorized(c, "Authentication required")
			return
		}

		if auth.AreaFor(IsAdminFromContext(c)) != area {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "You do not have access to this area",
				"data": gin.H{
					"redirect_to": RedirectForbidden,
				},
			})
			return
		}

		c.Next()
	}
}

// RequireWorkspaceSelected is the workspace-selected guard: routes under it
// need an active workspace pointer. Without one the client is sent to its
// workspace picker. Approval status is deliberately not checked here — a
// member of a pending workspace may still browse it (see RequireMutableWorkspace).
func RequireWorkspaceSelected() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			unauthorized(c, "Authentication required")
			return
		}

		if user.ActiveWorkspaceID == nil || *user.ActiveWorkspaceID == "" {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "No workspace selected",
				"data": gin.H{
					"redirect_to": auth.DefaultRouteFor(IsAdminFromContext(c)),
				},
			})
			return
		}

		c.Next()
	}
}

// RequireMutableWorkspace is the approval gate: the server-side authoritative
// counterpart of the advisory client-side evaluation. Mutating requests
// against a workspace that is not approved are rejected unless the caller is
// a platform admin. Reads always pass.
func RequireMutableWorkspace(workspaceRepo *repositories.WorkspaceRepository, wsCache *cache.WorkspaceCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		user, ok := CurrentUser(c)
		if !ok {
			unauthorized(c, "Authentication required")
			return
		}

		// Platform admins bypass the gate so they can act on any workspace
		// regardless of its lifecycle state.
		if auth.SystemRole(user.SystemRole) == auth.SystemRolePlatformAdmin {
			c.Next()
			return
		}

		if user.ActiveWorkspaceID == nil || *user.ActiveWorkspaceID == "" {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "No workspace selected",
				"data": gin.H{
					"redirect_to": auth.DefaultRouteFor(IsAdminFromContext(c)),
				},
			})
			return
		}

		ws, err := wsCache.Get(c.Request.Context(), *user.ActiveWorkspaceID)
		if err != nil || ws == nil {
			ws, err = workspaceRepo.GetByID(c.Request.Context(), *user.ActiveWorkspaceID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "Failed to load workspace",
				})
				return
			}
			if ws != nil {
				// Best effort: a failed cache write only costs a DB read later.
				_ = wsCache.Set(c.Request.Context(), ws)
			}
		}

		decision := workspace.Evaluate(ws)
		if !decision.CanMutate {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": decision.ApprovalMessage,
				"data": gin.H{
					"can_mutate":       false,
					"approval_message": decision.ApprovalMessage,
				},
			})
			return
		}

		c.Next()
	}
}
