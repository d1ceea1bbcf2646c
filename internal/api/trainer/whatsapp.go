// whatsapp.go implements WhatsApp contact link handlers for the trainer area.
// Links store an E.164 number per student; the response always carries the
// derived wa.me deep link so clients never build it themselves.
package trainer

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vertex-platform/vertex-backend/internal/config"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
	"github.com/vertex-platform/vertex-backend/internal/db/repositories"
	"github.com/vertex-platform/vertex-backend/internal/validation"
)

// WhatsAppHandlers handles WhatsApp contact link endpoints
type WhatsAppHandlers struct {
	cfg         *config.Config
	db          *sql.DB
	linkRepo    *repositories.WhatsAppLinkRepository
	studentRepo *repositories.StudentRepository
}

// NewWhatsAppHandlers creates a new WhatsAppHandlers instance
func NewWhatsAppHandlers(cfg *config.Config, db *sql.DB) *WhatsAppHandlers {
	return &WhatsAppHandlers{
		cfg:         cfg,
		db:          db,
		linkRepo:    repositories.NewWhatsAppLinkRepository(db),
		studentRepo: repositories.NewStudentRepository(db),
	}
}

func whatsappLinkPayload(l *models.WhatsAppLink) gin.H {
	return gin.H{
		"id":           l.ID,
		"workspace_id": l.WorkspaceID,
		"student_id":   l.StudentID,
		"phone":        l.Phone,
		"label":        l.Label,
		"deep_link":    l.DeepLink(),
		"created_at":   l.CreatedAt,
		"updated_at":   l.UpdatedAt,
	}
}

// @Summary      List WhatsApp links
// @Description  List a student's saved WhatsApp contacts with their wa.me deep links.
// @Tags         Trainer/WhatsApp
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Student ID"
// @Success      200  {object}  map[string]interface{}  "data: links"
// @Failure      404  {object}  map[string]interface{}  "Student not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/students/{id}/whatsapp-links [get]
// ListWhatsAppLinksHandler lists a student's WhatsApp links
// GET /api/v1/trainer/students/:id/whatsapp-links
func (h *WhatsAppHandlers) ListWhatsAppLinksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		student, err := h.studentRepo.GetByID(c.Request.Context(), workspaceID, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve student",
			})
			return
		}
		if student == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Student not found",
			})
			return
		}

		links, err := h.linkRepo.ListByStudent(c.Request.Context(), workspaceID, student.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to list WhatsApp links",
			})
			return
		}

		payload := make([]gin.H, 0, len(links))
		for _, l := range links {
			payload = append(payload, whatsappLinkPayload(l))
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"links": payload,
			},
		})
	}
}

// CreateWhatsAppLinkRequest represents the request to save a WhatsApp contact
type CreateWhatsAppLinkRequest struct {
	Phone string `json:"phone" binding:"required"`
	Label string `json:"label"`
}

// @Summary      Create WhatsApp link
// @Description  Save a WhatsApp contact number for a student. The number must be E.164.
// @Tags         Trainer/WhatsApp
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "Student ID"
// @Param        body  body  CreateWhatsAppLinkRequest  true  "Link creation request"
// @Success      201  {object}  map[string]interface{}  "data: link"
// @Failure      400  {object}  map[string]interface{}  "Invalid phone number"
// @Failure      404  {object}  map[string]interface{}  "Student not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/students/{id}/whatsapp-links [post]
// CreateWhatsAppLinkHandler saves a WhatsApp contact for a student
// POST /api/v1/trainer/students/:id/whatsapp-links
func (h *WhatsAppHandlers) CreateWhatsAppLinkHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		var req CreateWhatsAppLinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request: " + err.Error(),
			})
			return
		}

		if err := validation.ValidateE164(req.Phone); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": err.Error(),
			})
			return
		}

		student, err := h.studentRepo.GetByID(c.Request.Context(), workspaceID, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve student",
			})
			return
		}
		if student == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Student not found",
			})
			return
		}

		link := &models.WhatsAppLink{
			WorkspaceID: workspaceID,
			StudentID:   student.ID,
			Phone:       req.Phone,
			Label:       req.Label,
		}

		if err := h.linkRepo.Create(c.Request.Context(), link); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to create WhatsApp link",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "WhatsApp link created",
			"data": gin.H{
				"link": whatsappLinkPayload(link),
			},
		})
	}
}

// UpdateWhatsAppLinkRequest represents the request to update a WhatsApp contact
type UpdateWhatsAppLinkRequest struct {
	Phone *string `json:"phone"`
	Label *string `json:"label"`
}

// @Summary      Update WhatsApp link
// @Description  Change a saved WhatsApp contact's number or label.
// @Tags         Trainer/WhatsApp
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string                     true  "Student ID"
// @Param        linkId  path  string                     true  "Link ID"
// @Param        body    body  UpdateWhatsAppLinkRequest  true  "Link update request"
// @Success      200  {object}  map[string]interface{}  "data: link"
// @Failure      400  {object}  map[string]interface{}  "Invalid phone number"
// @Failure      404  {object}  map[string]interface{}  "Link not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/students/{id}/whatsapp-links/{linkId} [put]
// UpdateWhatsAppLinkHandler updates a WhatsApp link
// PUT /api/v1/trainer/students/:id/whatsapp-links/:linkId
func (h *WhatsAppHandlers) UpdateWhatsAppLinkHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		var req UpdateWhatsAppLinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request: " + err.Error(),
			})
			return
		}

		if req.Phone != nil {
			if err := validation.ValidateE164(*req.Phone); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"message": err.Error(),
				})
				return
			}
		}

		link, err := h.linkRepo.GetByID(c.Request.Context(), workspaceID, c.Param("linkId"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve WhatsApp link",
			})
			return
		}
		if link == nil || link.StudentID != c.Param("id") {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "WhatsApp link not found",
			})
			return
		}

		if req.Phone != nil {
			link.Phone = *req.Phone
		}
		if req.Label != nil {
			link.Label = *req.Label
		}

		if err := h.linkRepo.Update(c.Request.Context(), link); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to update WhatsApp link",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "WhatsApp link updated",
			"data": gin.H{
				"link": whatsappLinkPayload(link),
			},
		})
	}
}

// @Summary      Delete WhatsApp link
// @Description  Remove a saved WhatsApp contact from a student.
// @Tags         Trainer/WhatsApp
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "Student ID"
// @Param        linkId  path  string  true  "Link ID"
// @Success      200  {object}  map[string]interface{}  "message: WhatsApp link deleted"
// @Failure      404  {object}  map[string]interface{}  "Link not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/students/{id}/whatsapp-links/{linkId} [delete]
// DeleteWhatsAppLinkHandler deletes a WhatsApp link
// DELETE /api/v1/trainer/students/:id/whatsapp-links/:linkId
func (h *WhatsAppHandlers) DeleteWhatsAppLinkHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		link, err := h.linkRepo.GetByID(c.Request.Context(), workspaceID, c.Param("linkId"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve WhatsApp link",
			})
			return
		}
		if link == nil || link.StudentID != c.Param("id") {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "WhatsApp link not found",
			})
			return
		}

		if err := h.linkRepo.Delete(c.Request.Context(), workspaceID, link.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to delete WhatsApp link",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "WhatsApp link deleted",
		})
	}
}
