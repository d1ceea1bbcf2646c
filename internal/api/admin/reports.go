// reports.go implements admin-side report export endpoints. Unlike the
// trainer area, admins address any workspace explicitly by ID and are not
// subject to the approval gate.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
	"github.com/vertex-platform/vertex-backend/internal/middleware"
	"github.com/vertex-platform/vertex-backend/internal/services"
)

// ReportHandlers handles admin report export endpoints
type ReportHandlers struct {
	exporter *services.ReportExporter
}

// NewReportHandlers creates a new ReportHandlers instance
func NewReportHandlers(exporter *services.ReportExporter) *ReportHandlers {
	return &ReportHandlers{exporter: exporter}
}

// GenerateReportRequest represents the request to generate an export
type GenerateReportRequest struct {
	Kind string `json:"kind" binding:"required"`
}

// @Summary      Generate workspace report
// @Description  Generate a CSV export (students or appointments) for any workspace and store it in the storage backend.
// @Tags         Admin/Reports
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "Workspace ID"
// @Param        body  body  GenerateReportRequest  true  "Report kind"
// @Success      201  {object}  map[string]interface{}  "data: report"
// @Failure      400  {object}  map[string]interface{}  "Invalid report kind"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/workspaces/{id}/reports [post]
// GenerateReportHandler generates a CSV export for a workspace
// POST /api/v1/admin/workspaces/:id/reports
func (h *ReportHandlers) GenerateReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GenerateReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request: " + err.Error(),
			})
			return
		}

		if req.Kind != models.ReportKindStudents && req.Kind != models.ReportKindAppointments {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid report kind",
			})
			return
		}

		requestedBy := ""
		if user, ok := middleware.CurrentUser(c); ok {
			requestedBy = user.ID
		}

		report, err := h.exporter.Generate(c.Request.Context(), c.Param("id"), req.Kind, requestedBy)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to generate report",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Report generated",
			"data": gin.H{
				"report": report,
			},
		})
	}
}

// @Summary      List workspace reports
// @Description  List generated report exports for any workspace, newest first.
// @Tags         Admin/Reports
// @Security     Bearer
// @Produce      json
// @Param        id        path   string  true   "Workspace ID"
// @Param        page      query  int     false  "Page number (default 1)"
// @Param        per_page  query  int     false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "data: reports, meta: pagination"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/workspaces/{id}/reports [get]
// ListReportsHandler lists a workspace's generated reports
// GET /api/v1/admin/workspaces/:id/reports
func (h *ReportHandlers) ListReportsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage, offset := parsePagination(c)

		reports, total, err := h.exporter.List(c.Request.Context(), c.Param("id"), perPage, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to list reports",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"reports": reports,
			},
			"meta": gin.H{
				"page":     page,
				"per_page": perPage,
				"total":    total,
			},
		})
	}
}

// @Summary      Get report download URL
// @Description  Get a time-limited download URL for a generated report, with its sha256 for integrity verification.
// @Tags         Admin/Reports
// @Security     Bearer
// @Produce      json
// @Param        id        path  string  true  "Workspace ID"
// @Param        reportId  path  string  true  "Report ID"
// @Success      200  {object}  map[string]interface{}  "data: report, download_url"
// @Failure      404  {object}  map[string]interface{}  "Report not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/workspaces/{id}/reports/{reportId}/download [get]
// DownloadReportHandler returns a signed download URL for a report
// GET /api/v1/admin/workspaces/:id/reports/:reportId/download
func (h *ReportHandlers) DownloadReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report, url, err := h.exporter.DownloadURL(c.Request.Context(), c.Param("id"), c.Param("reportId"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to generate download URL",
			})
			return
		}
		if report == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Report not found",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"report":       report,
				"download_url": url,
			},
		})
	}
}
