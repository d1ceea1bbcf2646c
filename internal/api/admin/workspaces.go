// Package admin implements the platform-admin area handlers: the workspace
// approval queue, user account management, and cross-workspace report exports.
// Every route in this package sits behind the admin area guard.
package admin

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vertex-platform/vertex-backend/internal/cache"
	"github.com/vertex-platform/vertex-backend/internal/config"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
	"github.com/vertex-platform/vertex-backend/internal/db/repositories"
	"github.com/vertex-platform/vertex-backend/internal/telemetry"
)

// WorkspaceHandlers handles the workspace approval queue endpoints
type WorkspaceHandlers struct {
	cfg           *config.Config
	db            *sql.DB
	workspaceRepo *repositories.WorkspaceRepository
	wsCache       *cache.WorkspaceCache
}

// NewWorkspaceHandlers creates a new WorkspaceHandlers instance. wsCache may
// be nil when Redis is not configured.
func NewWorkspaceHandlers(cfg *config.Config, db *sql.DB, wsCache *cache.WorkspaceCache) *WorkspaceHandlers {
	return &WorkspaceHandlers{
		cfg:           cfg,
		db:            db,
		workspaceRepo: repositories.NewWorkspaceRepository(db),
		wsCache:       wsCache,
	}
}

// parsePagination parses page/per_page query parameters with the usual bounds.
func parsePagination(c *gin.Context) (page, perPage, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	return page, perPage, (page - 1) * perPage
}

func workspacePayload(ws *models.Workspace) gin.H {
	return gin.H{
		"id":              ws.ID,
		"name":            ws.Name,
		"owner_user_id":   ws.OwnerUserID,
		"approval_status": ws.ApprovalStatus,
		"approval_note":   ws.ApprovalNote,
		"created_at":      ws.CreatedAt,
		"updated_at":      ws.UpdatedAt,
	}
}

// @Summary      List workspaces
// @Description  Get a paginated list of workspaces, optionally filtered by approval status. Admin area only.
// @Tags         Admin/Workspaces
// @Security     Bearer
// @Produce      json
// @Param        status    query  string  false  "Filter by approval status: pending, approved, rejected"
// @Param        page      query  int     false  "Page number (default 1)"
// @Param        per_page  query  int     false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "data: workspaces, meta: pagination"
// @Failure      400  {object}  map[string]interface{}  "Invalid status filter"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/workspaces [get]
// ListWorkspacesHandler lists workspaces for the approval queue
// GET /api/v1/admin/workspaces?status=pending&page=1&per_page=20
func (h *WorkspaceHandlers) ListWorkspacesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := c.Query("status")
		switch status {
		case "", models.ApprovalStatusPending, models.ApprovalStatusApproved, models.ApprovalStatusRejected:
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid status filter",
			})
			return
		}

		page, perPage, offset := parsePagination(c)

		workspaces, total, err := h.workspaceRepo.List(c.Request.Context(), status, perPage, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to list workspaces",
			})
			return
		}

		payload := make([]gin.H, 0, len(workspaces))
		for _, ws := range workspaces {
			payload = append(payload, workspacePayload(ws))
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"workspaces": payload,
			},
			"meta": gin.H{
				"page":     page,
				"per_page": perPage,
				"total":    total,
			},
		})
	}
}

// @Summary      Get workspace
// @Description  Get a workspace with its member list. Admin area only.
// @Tags         Admin/Workspaces
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Workspace ID"
// @Success      200  {object}  map[string]interface{}  "data: workspace, members"
// @Failure      404  {object}  map[string]interface{}  "Workspace not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/workspaces/{id} [get]
// GetWorkspaceHandler retrieves a workspace with its members
// GET /api/v1/admin/workspaces/:id
func (h *WorkspaceHandlers) GetWorkspaceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID := c.Param("id")

		ws, err := h.workspaceRepo.GetByID(c.Request.Context(), workspaceID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve workspace",
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

		members, err := h.workspaceRepo.ListMembers(c.Request.Context(), workspaceID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve workspace members",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"workspace": workspacePayload(ws),
				"members":   members,
			},
		})
	}
}

// setApprovalStatus is the shared implementation of approve and reject. It
// transitions the lifecycle state, invalidates the workspace cache so the
// approval gate sees the new state immediately, and counts the decision.
func (h *WorkspaceHandlers) setApprovalStatus(c *gin.Context, status, note, message string) {
	workspaceID := c.Param("id")

	ws, err := h.workspaceRepo.GetByID(c.Request.Context(), workspaceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to retrieve workspace",
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

	if err := h.workspaceRepo.SetApprovalStatus(c.Request.Context(), workspaceID, status, note); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to update approval status",
		})
		return
	}

	// The approval gate reads through the cache; a stale entry here would
	// let a rejected workspace keep mutating until the TTL expires.
	_ = h.wsCache.Invalidate(c.Request.Context(), workspaceID)

	telemetry.WorkspaceApprovalsTotal.WithLabelValues(status).Inc()

	ws.ApprovalStatus = status
	ws.ApprovalNote = note

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data": gin.H{
			"workspace": workspacePayload(ws),
		},
	})
}

// @Summary      Approve workspace
// @Description  Approve a workspace, enabling mutations for its members. Re-evaluation of a previously rejected workspace is allowed.
// @Tags         Admin/Workspaces
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Workspace ID"
// @Success      200  {object}  map[string]interface{}  "data: workspace"
// @Failure      404  {object}  map[string]interface{}  "Workspace not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/workspaces/{id}/approve [post]
// ApproveWorkspaceHandler approves a workspace
// POST /api/v1/admin/workspaces/:id/approve
func (h *WorkspaceHandlers) ApproveWorkspaceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.setApprovalStatus(c, models.ApprovalStatusApproved, "", "Workspace approved")
	}
}

// RejectWorkspaceRequest carries the optional rejection rationale shown to
// the workspace's members.
type RejectWorkspaceRequest struct {
	Note string `json:"note"`
}

// @Summary      Reject workspace
// @Description  Reject a workspace with an optional note surfaced to its members. Members keep read access; mutations stay blocked.
// @Tags         Admin/Workspaces
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true   "Workspace ID"
// @Param        body  body  RejectWorkspaceRequest  false  "Rejection note"
// @Success      200  {object}  map[string]interface{}  "data: workspace"
// @Failure      404  {object}  map[string]interface{}  "Workspace not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/workspaces/{id}/reject [post]
// RejectWorkspaceHandler rejects a workspace
// POST /api/v1/admin/workspaces/:id/reject
func (h *WorkspaceHandlers) RejectWorkspaceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RejectWorkspaceRequest
		// The note is optional; an empty body is a rejection without rationale.
		_ = c.ShouldBindJSON(&req)

		h.setApprovalStatus(c, models.ApprovalStatusRejected, req.Note, "Workspace rejected")
	}
}

// @Summary      Delete workspace
// @Description  Delete a workspace and all of its data. Cascading deletes remove members, students, programs, appointments, and reminders.
// @Tags         Admin/Workspaces
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Workspace ID"
// @Success      200  {object}  map[string]interface{}  "message: Workspace deleted"
// @Failure      404  {object}  map[string]interface{}  "Workspace not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/workspaces/{id} [delete]
// DeleteWorkspaceHandler deletes a workspace
// DELETE /api/v1/admin/workspaces/:id
func (h *WorkspaceHandlers) DeleteWorkspaceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID := c.Param("id")

		ws, err := h.workspaceRepo.GetByID(c.Request.Context(), workspaceID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve workspace",
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

		if err := h.workspaceRepo.Delete(c.Request.Context(), workspaceID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to delete workspace",
			})
			return
		}

		_ = h.wsCache.Invalidate(c.Request.Context(), workspaceID)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Workspace deleted",
		})
	}
}
