// audit.go provides Gin middleware that records authenticated write operations to the audit
// log, with optional shipping to external audit destinations.
package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vertex-platform/vertex-backend/internal/audit"
	"github.com/vertex-platform/vertex-backend/internal/config"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
	"github.com/vertex-platform/vertex-backend/internal/db/repositories"
)

// auditResources maps request path segments to the audit resource type they
// touch. Order matters: more specific segments are checked first.
var auditResources = []struct {
	segment      string
	resourceType string
}{
	{"/workspaces", "workspace"},
	{"/students", "student"},
	{"/programs", "program"},
	{"/appointments", "appointment"},
	{"/reminders", "reminder"},
	{"/whatsapp-links", "whatsapp_link"},
	{"/reports", "report"},
	{"/users", "user"},
	{"/auth", "session"},
}

// AuditMiddleware logs authenticated actions to the database only
func AuditMiddleware(auditRepo *repositories.AuditRepository) gin.HandlerFunc {
	return AuditMiddlewareWithShipper(auditRepo, nil, nil)
}

// AuditMiddlewareWithShipper logs authenticated actions and ships to external destinations
func AuditMiddlewareWithShipper(auditRepo *repositories.AuditRepository, shipper audit.Shipper, auditCfg *config.AuditConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Process request first
		c.Next()

		if c.Request.Method == "OPTIONS" {
			return
		}

		logReadOps := auditCfg != nil && auditCfg.LogReadOperations
		logFailedReqs := auditCfg != nil && auditCfg.LogFailedRequests

		isReadOp := c.Request.Method == "GET" || c.Request.Method == "HEAD"
		isFailed := c.Writer.Status() >= 400

		// Default behavior: only log successful write operations
		if auditCfg == nil {
			if isReadOp || isFailed {
				return
			}
		} else {
			if isReadOp && !logReadOps {
				return
			}
			if isFailed && !logFailedReqs {
				return
			}
		}

		userID, _ := c.Get(ContextUserID)
		workspaceID := activeWorkspaceIDFromContext(c)

		action := fmt.Sprintf("%s %s", c.Request.Method, c.Request.URL.Path)
		ipAddress := c.ClientIP()

		auditLog := &models.AuditLog{
			Action:    action,
			IPAddress: &ipAddress,
			CreatedAt: time.Now(),
		}

		var userIDStr string
		if userID != nil {
			if uid, ok := userID.(string); ok && uid != "" {
				userIDStr = uid
				auditLog.UserID = &userIDStr
			}
		}

		if workspaceID != "" {
			auditLog.WorkspaceID = &workspaceID
		}

		var resourceType string
		for _, r := range auditResources {
			if strings.Contains(c.Request.URL.Path, r.segment) {
				resourceType = r.resourceType
				auditLog.ResourceType = &resourceType
				break
			}
		}

		// Approval decisions get explicit action names so they are easy to
		// search for in a SIEM.
		if resourceType == "workspace" {
			switch {
			case strings.HasSuffix(c.Request.URL.Path, "/approve"):
				auditLog.Action = "workspace.approved"
			case strings.HasSuffix(c.Request.URL.Path, "/reject"):
				auditLog.Action = "workspace.rejected"
			}
		}

		statusCode := c.Writer.Status()
		metadata := map[string]interface{}{
			"status_code": statusCode,
		}
		if requestID, ok := c.Get(RequestIDKey); ok {
			metadata["request_id"] = requestID
		}
		auditLog.Metadata = metadata

		// Async log creation (non-blocking)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if auditRepo != nil {
				if err := auditRepo.CreateAuditLog(ctx, auditLog); err != nil {
					fmt.Printf("Failed to create audit log in database: %v\n", err)
				}
			}

			if shipper != nil {
				entry := &audit.LogEntry{
					Timestamp:    auditLog.CreatedAt,
					Action:       auditLog.Action,
					UserID:       userIDStr,
					WorkspaceID:  workspaceID,
					ResourceType: resourceType,
					IPAddress:    ipAddress,
					StatusCode:   statusCode,
					Metadata:     metadata,
				}

				if err := shipper.Ship(ctx, entry); err != nil {
					fmt.Printf("Failed to ship audit log: %v\n", err)
				}
			}
		}()
	}
}

// activeWorkspaceIDFromContext returns the authenticated user's active
// workspace ID, or "" when no user is set or no workspace is selected.
func activeWorkspaceIDFromContext(c *gin.Context) string {
	user, ok := CurrentUser(c)
	if !ok || user.ActiveWorkspaceID == nil {
		return ""
	}
	return *user.ActiveWorkspaceID
}
