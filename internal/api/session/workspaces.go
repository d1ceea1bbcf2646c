// workspaces.go implements workspace creation and the active-workspace switch.
// Creation is open to any authenticated user; new workspaces start pending and
// stay read-only until a platform admin approves them.
package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vertex-platform/vertex-backend/internal/auth"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
	"github.com/vertex-platform/vertex-backend/internal/middleware"
)

// CreateWorkspaceRequest represents the request to create a workspace
type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required"`
}

// @Summary      Create workspace
// @Description  Create a new workspace. The creator becomes its owner_admin member and the workspace starts in pending approval state.
// @Tags         Workspaces
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  CreateWorkspaceRequest  true  "Workspace creation request"
// @Success      201  {object}  map[string]interface{}  "data: workspace"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/workspaces [post]
// CreateWorkspaceHandler creates a new pending workspace owned by the caller
// POST /api/v1/workspaces
func (h *Handlers) CreateWorkspaceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
			})
			return
		}

		var req CreateWorkspaceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request: " + err.Error(),
			})
			return
		}

		ws := &models.Workspace{
			Name:           req.Name,
			OwnerUserID:    user.ID,
			ApprovalStatus: models.ApprovalStatusPending,
		}

		// Create enrolls the owner as owner_admin in the same transaction.
		if err := h.workspaceRepo.Create(c.Request.Context(), ws); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to create workspace",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Workspace created and awaiting approval",
			"data": gin.H{
				"workspace": gin.H{
					"id":              ws.ID,
					"name":            ws.Name,
					"owner_user_id":   ws.OwnerUserID,
					"approval_status": ws.ApprovalStatus,
				},
			},
		})
	}
}

// @Summary      Switch active workspace
// @Description  Set the caller's server-side active workspace pointer. Membership is required unless the caller is a platform admin. Returns the landing path for the new workspace context.
// @Tags         Workspaces
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Workspace ID"
// @Success      200  {object}  map[string]interface{}  "data: active_workspace_id, role, redirect_to"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Not a member of this workspace"
// @Failure      404  {object}  map[string]interface{}  "Workspace not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/workspaces/{id}/switch [post]
// SwitchWorkspaceHandler sets the caller's active workspace
// POST /api/v1/workspaces/:id/switch
func (h *Handlers) SwitchWorkspaceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
			})
			return
		}

		workspaceID := c.Param("id")

		ws, err := h.workspaceRepo.GetByID(c.Request.Context(), workspaceID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to load workspace",
			})
			return
		}
		if ws == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Workspace not found",
			})
			return
		}

		role := ""
		if auth.SystemRole(user.SystemRole) != auth.SystemRolePlatformAdmin {
			role, err = h.workspaceRepo.GetMemberRole(c.Request.Context(), workspaceID, user.ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "Failed to check workspace membership",
				})
				return
			}
			if role == "" {
				c.JSON(http.StatusForbidden, gin.H{
					"success": false,
					"message": "You are not a member of this workspace",
					"data": gin.H{
						"redirect_to": middleware.RedirectForbidden,
					},
				})
				return
			}
		}

		if err := h.userRepo.SetActiveWorkspace(c.Request.Context(), user.ID, &workspaceID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to switch workspace",
			})
			return
		}

		// Warm the cache so the approval gate's first lookup after the
		// switch doesn't hit the database.
		_ = h.wsCache.Set(c.Request.Context(), ws)

		isAdmin := auth.IsAdmin(auth.SystemRole(user.SystemRole), auth.WorkspaceRole(role))

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Workspace switched",
			"data": gin.H{
				"active_workspace_id": workspaceID,
				"role":                role,
				"redirect_to":         auth.DefaultRouteFor(isAdmin),
			},
		})
	}
}
