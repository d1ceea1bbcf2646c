// reports.go implements report export handlers for the trainer area. Trainers
// export only their active workspace's data; the workspace always comes from
// the session, never from the URL.
package trainer

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
	"github.com/vertex-platform/vertex-backend/internal/middleware"
	"github.com/vertex-platform/vertex-backend/internal/services"
)

// ReportHandlers handles trainer-side report export endpoints
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

// @Summary      Generate report
// @Description  Generate a CSV export (students or appointments) of the active workspace.
// @Tags         Trainer/Reports
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  GenerateReportRequest  true  "Report kind"
// @Success      201  {object}  map[string]interface{}  "data: report"
// @Failure      400  {object}  map[string]interface{}  "Invalid report kind"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/reports [post]
// GenerateReportHandler generates a CSV export of the active workspace
// POST /api/v1/trainer/reports
func (h *ReportHandlers) GenerateReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

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

		report, err := h.exporter.Generate(c.Request.Context(), workspaceID, req.Kind, requestedBy)
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

// @Summary      List reports
// @Description  List generated report exports for the active workspace, newest first.
// @Tags         Trainer/Reports
// @Security     Bearer
// @Produce      json
// @Param        page      query  int  false  "Page number (default 1)"
// @Param        per_page  query  int  false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "data: reports, meta: pagination"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/reports [get]
// ListReportsHandler lists the active workspace's generated reports
// GET /api/v1/trainer/reports
func (h *ReportHandlers) ListReportsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		page, perPage, offset := parsePagination(c)

		reports, total, err := h.exporter.List(c.Request.Context(), workspaceID, perPage, offset)
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
// @Tags         Trainer/Reports
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Report ID"
// @Success      200  {object}  map[string]interface{}  "data: report, download_url"
// @Failure      404  {object}  map[string]interface{}  "Report not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/reports/{id}/download [get]
// DownloadReportHandler returns a signed download URL for a report
// GET /api/v1/trainer/reports/:id/download
func (h *ReportHandlers) DownloadReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		report, url, err := h.exporter.DownloadURL(c.Request.Context(), workspaceID, c.Param("id"))
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
