// Package trainer implements the trainer-area HTTP handlers: student rosters,
// training programs and their assignments, appointment scheduling, reminders,
// WhatsApp contact links, and workspace report exports.
//
// Every handler operates on the requesting user's active workspace. The route
// guards upstream guarantee a workspace is selected and approved before any
// handler here runs, so handlers resolve the workspace from the authenticated
// user rather than from the URL.
package trainer

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vertex-platform/vertex-backend/internal/middleware"
)

// activeWorkspaceID resolves the requesting user's active workspace. When no
// workspace is resolvable the request is answered with 403 and the caller
// should return immediately.
func activeWorkspaceID(c *gin.Context) (string, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok || user.ActiveWorkspaceID == nil || *user.ActiveWorkspaceID == "" {
		c.JSON(http.StatusForbidden, gin.H{
			"success":     false,
			"message":     "No active workspace selected",
			"redirect_to": middleware.RedirectForbidden,
		})
		return "", false
	}
	return *user.ActiveWorkspaceID, true
}

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
