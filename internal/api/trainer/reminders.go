// reminders.go implements appointment reminder handlers for the trainer area.
// Reminders are created against appointments and later delivered by the
// background dispatcher; handlers here only manage the schedule.
package trainer

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/vertex-platform/vertex-backend/internal/config"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
	"github.com/vertex-platform/vertex-backend/internal/db/repositories"
)

// ReminderHandlers handles reminder scheduling endpoints
type ReminderHandlers struct {
	cfg             *config.Config
	reminderRepo    *repositories.ReminderRepository
	appointmentRepo *repositories.AppointmentRepository
}

// NewReminderHandlers creates a new ReminderHandlers instance
func NewReminderHandlers(cfg *config.Config, db *sql.DB, sqlxDB *sqlx.DB) *ReminderHandlers {
	return &ReminderHandlers{
		cfg:             cfg,
		reminderRepo:    repositories.NewReminderRepository(sqlxDB),
		appointmentRepo: repositories.NewAppointmentRepository(db),
	}
}

func validReminderChannel(channel string) bool {
	return channel == models.ReminderChannelEmail || channel == models.ReminderChannelWhatsApp
}

// @Summary      List reminders
// @Description  Get a paginated list of reminders in the active workspace, soonest first.
// @Tags         Trainer/Reminders
// @Security     Bearer
// @Produce      json
// @Param        page      query  int  false  "Page number (default 1)"
// @Param        per_page  query  int  false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "data: reminders, meta: pagination"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/reminders [get]
// ListRemindersHandler lists reminders in the active workspace
// GET /api/v1/trainer/reminders
func (h *ReminderHandlers) ListRemindersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		page, perPage, offset := parsePagination(c)

		reminders, total, err := h.reminderRepo.List(c.Request.Context(), workspaceID, perPage, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to list reminders",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"reminders": reminders,
			},
			"meta": gin.H{
				"page":     page,
				"per_page": perPage,
				"total":    total,
			},
		})
	}
}

// CreateReminderRequest represents the request to schedule a reminder
type CreateReminderRequest struct {
	AppointmentID string    `json:"appointment_id" binding:"required"`
	Channel       string    `json:"channel" binding:"required"`
	RemindAt      time.Time `json:"remind_at" binding:"required"`
	Message       string    `json:"message"`
}

// @Summary      Create reminder
// @Description  Schedule an email or WhatsApp reminder for an appointment. The dispatcher delivers it once remind_at passes.
// @Tags         Trainer/Reminders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  CreateReminderRequest  true  "Reminder creation request"
// @Success      201  {object}  map[string]interface{}  "data: reminder"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      404  {object}  map[string]interface{}  "Appointment not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/reminders [post]
// CreateReminderHandler schedules a new reminder
// POST /api/v1/trainer/reminders
func (h *ReminderHandlers) CreateReminderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		var req CreateReminderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request: " + err.Error(),
			})
			return
		}

		if !validReminderChannel(req.Channel) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid reminder channel",
			})
			return
		}

		appointment, err := h.appointmentRepo.GetByID(c.Request.Context(), workspaceID, req.AppointmentID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve appointment",
			})
			return
		}
		if appointment == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Appointment not found",
			})
			return
		}

		reminder := &models.Reminder{
			WorkspaceID:   workspaceID,
			AppointmentID: appointment.ID,
			Channel:       req.Channel,
			RemindAt:      req.RemindAt,
			Message:       req.Message,
		}

		if err := h.reminderRepo.Create(c.Request.Context(), reminder); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to create reminder",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Reminder created",
			"data": gin.H{
				"reminder": reminder,
			},
		})
	}
}

// UpdateReminderRequest represents the request to update an unsent reminder
type UpdateReminderRequest struct {
	Channel  *string    `json:"channel"`
	RemindAt *time.Time `json:"remind_at"`
	Message  *string    `json:"message"`
}

// @Summary      Update reminder
// @Description  Reschedule an unsent reminder or change its channel or message. Dispatched reminders are immutable.
// @Tags         Trainer/Reminders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "Reminder ID"
// @Param        body  body  UpdateReminderRequest  true  "Reminder update request"
// @Success      200  {object}  map[string]interface{}  "data: reminder"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      404  {object}  map[string]interface{}  "Reminder not found"
// @Failure      409  {object}  map[string]interface{}  "Reminder already sent"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/reminders/{id} [put]
// UpdateReminderHandler updates an unsent reminder
// PUT /api/v1/trainer/reminders/:id
func (h *ReminderHandlers) UpdateReminderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		var req UpdateReminderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request: " + err.Error(),
			})
			return
		}

		if req.Channel != nil && !validReminderChannel(*req.Channel) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid reminder channel",
			})
			return
		}

		reminder, err := h.reminderRepo.GetByID(c.Request.Context(), workspaceID, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve reminder",
			})
			return
		}
		if reminder == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Reminder not found",
			})
			return
		}
		if reminder.SentAt.Valid {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "Reminder was already sent",
			})
			return
		}

		if req.Channel != nil {
			reminder.Channel = *req.Channel
		}
		if req.RemindAt != nil {
			reminder.RemindAt = *req.RemindAt
		}
		if req.Message != nil {
			reminder.Message = *req.Message
		}

		if err := h.reminderRepo.Update(c.Request.Context(), reminder); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to update reminder",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Reminder updated",
			"data": gin.H{
				"reminder": reminder,
			},
		})
	}
}

// @Summary      Delete reminder
// @Description  Cancel a reminder. Sent reminders can also be deleted; this only removes the record.
// @Tags         Trainer/Reminders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Reminder ID"
// @Success      200  {object}  map[string]interface{}  "message: Reminder deleted"
// @Failure      404  {object}  map[string]interface{}  "Reminder not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/reminders/{id} [delete]
// DeleteReminderHandler deletes a reminder
// DELETE /api/v1/trainer/reminders/:id
func (h *ReminderHandlers) DeleteReminderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		reminder, err := h.reminderRepo.GetByID(c.Request.Context(), workspaceID, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve reminder",
			})
			return
		}
		if reminder == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Reminder not found",
			})
			return
		}

		if err := h.reminderRepo.Delete(c.Request.Context(), workspaceID, c.Param("id")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to delete reminder",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Reminder deleted",
		})
	}
}
