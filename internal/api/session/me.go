// me.go implements the /me surface: the profile the SPA boots from, the
// workspace picker listing, and the post-login route resolver endpoint.
package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vertex-platform/vertex-backend/internal/auth"
	"github.com/vertex-platform/vertex-backend/internal/middleware"
)

// @Summary      Current user profile
// @Description  Get the authenticated user's profile including system role, active workspace, and derived admin flag.
// @Tags         Me
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "data: user"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Router       /api/v1/me [get]
// MeHandler returns the authenticated user's profile
// GET /api/v1/me
func (h *Handlers) MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"user": userPayload(user),
			},
		})
	}
}

// @Summary      List my workspaces
// @Description  List the workspaces available to the user for the workspace picker. Members see their memberships with roles; platform admins see every workspace.
// @Tags         Me
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "data: workspaces"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/me/workspaces [get]
// MyWorkspacesHandler lists the workspaces the user can pick from
// GET /api/v1/me/workspaces
func (h *Handlers) MyWorkspacesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
			})
			return
		}

		workspaces := make([]gin.H, 0)

		if auth.SystemRole(user.SystemRole) == auth.SystemRolePlatformAdmin {
			// Platform admins are not members of every workspace but may
			// switch into any of them, so the picker shows them all.
			all, _, err := h.workspaceRepo.List(c.Request.Context(), "", 1000, 0)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "Failed to list workspaces",
				})
				return
			}
			for _, ws := range all {
				workspaces = append(workspaces, gin.H{
					"id":              ws.ID,
					"name":            ws.Name,
					"role":            "",
					"approval_status": ws.ApprovalStatus,
					"approval_note":   ws.ApprovalNote,
				})
			}
		} else {
			mine, err := h.workspaceRepo.ListForUser(c.Request.Context(), user.ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "Failed to list workspaces",
				})
				return
			}
			for _, ws := range mine {
				workspaces = append(workspaces, gin.H{
					"id":              ws.ID,
					"name":            ws.Name,
					"role":            ws.Role,
					"approval_status": ws.ApprovalStatus,
					"approval_note":   ws.ApprovalNote,
				})
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"workspaces": workspaces,
			},
		})
	}
}

// @Summary      Resolve post-login route
// @Description  Compute where the SPA should land the user after login. Honors the "from" path only when it is not an auth/error page and matches the user's area; otherwise returns the area default.
// @Tags         Me
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Path the user was bounced away from before login"
// @Success      200  {object}  map[string]interface{}  "data: path"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Router       /api/v1/me/route [get]
// RouteHandler resolves the post-login landing path
// GET /api/v1/me/route?from=/trainer/students
func (h *Handlers) RouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := middleware.CurrentUser(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
			})
			return
		}

		path := auth.ResolvePostLoginPath(middleware.IsAdminFromContext(c), c.Query("from"))

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"path": path,
			},
		})
	}
}
