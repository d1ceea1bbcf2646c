// appointments.go implements appointment scheduling handlers for the trainer
// area, including an upcoming-window listing for calendar views.
package trainer

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vertex-platform/vertex-backend/internal/config"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
	"github.com/vertex-platform/vertex-backend/internal/db/repositories"
	"github.com/vertex-platform/vertex-backend/internal/middleware"
)

// DefaultUpcomingWindowHours is the lookahead window for upcoming listings
// when the caller does not specify one.
const DefaultUpcomingWindowHours = 168 // one week

// AppointmentHandlers handles appointment scheduling endpoints
type AppointmentHandlers struct {
	cfg             *config.Config
	db              *sql.DB
	appointmentRepo *repositories.AppointmentRepository
	studentRepo     *repositories.StudentRepository
}

// NewAppointmentHandlers creates a new AppointmentHandlers instance
func NewAppointmentHandlers(cfg *config.Config, db *sql.DB) *AppointmentHandlers {
	return &AppointmentHandlers{
		cfg:             cfg,
		db:              db,
		appointmentRepo: repositories.NewAppointmentRepository(db),
		studentRepo:     repositories.NewStudentRepository(db),
	}
}

func appointmentPayload(a *models.Appointment) gin.H {
	return gin.H{
		"id":              a.ID,
		"workspace_id":    a.WorkspaceID,
		"student_id":      a.StudentID,
		"trainer_user_id": a.TrainerUserID,
		"starts_at":       a.StartsAt,
		"ends_at":         a.EndsAt,
		"location":        a.Location,
		"status":          a.Status,
		"notes":           a.Notes,
		"created_at":      a.CreatedAt,
		"updated_at":      a.UpdatedAt,
	}
}

func validAppointmentStatus(status string) bool {
	switch status {
	case models.AppointmentStatusScheduled,
		models.AppointmentStatusCompleted,
		models.AppointmentStatusCancelled:
		return true
	}
	return false
}

// @Summary      List appointments
// @Description  Get a paginated list of appointments in the active workspace, newest first.
// @Tags         Trainer/Appointments
// @Security     Bearer
// @Produce      json
// @Param        page      query  int  false  "Page number (default 1)"
// @Param        per_page  query  int  false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "data: appointments, meta: pagination"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/appointments [get]
// ListAppointmentsHandler lists appointments in the active workspace
// GET /api/v1/trainer/appointments
func (h *AppointmentHandlers) ListAppointmentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		page, perPage, offset := parsePagination(c)

		appointments, total, err := h.appointmentRepo.List(c.Request.Context(), workspaceID, perPage, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to list appointments",
			})
			return
		}

		payload := make([]gin.H, 0, len(appointments))
		for _, a := range appointments {
			payload = append(payload, appointmentPayload(a))
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"appointments": payload,
			},
			"meta": gin.H{
				"page":     page,
				"per_page": perPage,
				"total":    total,
			},
		})
	}
}

// @Summary      List upcoming appointments
// @Description  List scheduled appointments starting within the lookahead window (default one week).
// @Tags         Trainer/Appointments
// @Security     Bearer
// @Produce      json
// @Param        hours  query  int  false  "Lookahead window in hours (default 168)"
// @Success      200  {object}  map[string]interface{}  "data: appointments"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/appointments/upcoming [get]
// ListUpcomingHandler lists appointments in the lookahead window
// GET /api/v1/trainer/appointments/upcoming?hours=48
func (h *AppointmentHandlers) ListUpcomingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		hours, _ := strconv.Atoi(c.DefaultQuery("hours", strconv.Itoa(DefaultUpcomingWindowHours)))
		if hours < 1 {
			hours = DefaultUpcomingWindowHours
		}
		until := time.Now().Add(time.Duration(hours) * time.Hour)

		appointments, err := h.appointmentRepo.ListUpcoming(c.Request.Context(), workspaceID, until)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to list upcoming appointments",
			})
			return
		}

		payload := make([]gin.H, 0, len(appointments))
		for _, a := range appointments {
			payload = append(payload, appointmentPayload(a))
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"appointments": payload,
			},
		})
	}
}

// @Summary      Get appointment
// @Description  Get a single appointment in the active workspace.
// @Tags         Trainer/Appointments
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Appointment ID"
// @Success      200  {object}  map[string]interface{}  "data: appointment"
// @Failure      404  {object}  map[string]interface{}  "Appointment not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/appointments/{id} [get]
// GetAppointmentHandler retrieves a specific appointment
// GET /api/v1/trainer/appointments/:id
func (h *AppointmentHandlers) GetAppointmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		appointment, err := h.appointmentRepo.GetByID(c.Request.Context(), workspaceID, c.Param("id"))
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

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"appointment": appointmentPayload(appointment),
			},
		})
	}
}

// CreateAppointmentRequest represents the request to create an appointment
type CreateAppointmentRequest struct {
	StudentID string    `json:"student_id" binding:"required"`
	StartsAt  time.Time `json:"starts_at" binding:"required"`
	EndsAt    time.Time `json:"ends_at" binding:"required"`
	Location  string    `json:"location"`
	Notes     string    `json:"notes"`
}

// @Summary      Create appointment
// @Description  Schedule a session with a student. The requesting trainer is recorded as the session's trainer.
// @Tags         Trainer/Appointments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  CreateAppointmentRequest  true  "Appointment creation request"
// @Success      201  {object}  map[string]interface{}  "data: appointment"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      404  {object}  map[string]interface{}  "Student not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/appointments [post]
// CreateAppointmentHandler creates a new appointment
// POST /api/v1/trainer/appointments
func (h *AppointmentHandlers) CreateAppointmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		var req CreateAppointmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request: " + err.Error(),
			})
			return
		}

		if !req.EndsAt.After(req.StartsAt) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Appointment must end after it starts",
			})
			return
		}

		student, err := h.studentRepo.GetByID(c.Request.Context(), workspaceID, req.StudentID)
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

		trainerUserID := ""
		if user, ok := middleware.CurrentUser(c); ok {
			trainerUserID = user.ID
		}

		appointment := &models.Appointment{
			WorkspaceID:   workspaceID,
			StudentID:     req.StudentID,
			TrainerUserID: trainerUserID,
			StartsAt:      req.StartsAt,
			EndsAt:        req.EndsAt,
			Location:      req.Location,
			Status:        models.AppointmentStatusScheduled,
			Notes:         req.Notes,
		}

		if err := h.appointmentRepo.Create(c.Request.Context(), appointment); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to create appointment",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Appointment created",
			"data": gin.H{
				"appointment": appointmentPayload(appointment),
			},
		})
	}
}

// UpdateAppointmentRequest represents the request to update an appointment
type UpdateAppointmentRequest struct {
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	Location *string    `json:"location"`
	Status   *string    `json:"status"`
	Notes    *string    `json:"notes"`
}

// @Summary      Update appointment
// @Description  Reschedule an appointment or change its status (scheduled, completed, cancelled).
// @Tags         Trainer/Appointments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "Appointment ID"
// @Param        body  body  UpdateAppointmentRequest  true  "Appointment update request"
// @Success      200  {object}  map[string]interface{}  "data: appointment"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      404  {object}  map[string]interface{}  "Appointment not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/appointments/{id} [put]
// UpdateAppointmentHandler updates an appointment
// PUT /api/v1/trainer/appointments/:id
func (h *AppointmentHandlers) UpdateAppointmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		var req UpdateAppointmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request: " + err.Error(),
			})
			return
		}

		if req.Status != nil && !validAppointmentStatus(*req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid appointment status",
			})
			return
		}

		appointment, err := h.appointmentRepo.GetByID(c.Request.Context(), workspaceID, c.Param("id"))
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

		if req.StartsAt != nil {
			appointment.StartsAt = *req.StartsAt
		}
		if req.EndsAt != nil {
			appointment.EndsAt = *req.EndsAt
		}
		if !appointment.EndsAt.After(appointment.StartsAt) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Appointment must end after it starts",
			})
			return
		}
		if req.Location != nil {
			appointment.Location = *req.Location
		}
		if req.Status != nil {
			appointment.Status = *req.Status
		}
		if req.Notes != nil {
			appointment.Notes = *req.Notes
		}

		if err := h.appointmentRepo.Update(c.Request.Context(), appointment); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to update appointment",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Appointment updated",
			"data": gin.H{
				"appointment": appointmentPayload(appointment),
			},
		})
	}
}

// @Summary      Delete appointment
// @Description  Delete an appointment. Cascading deletes remove its reminders.
// @Tags         Trainer/Appointments
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Appointment ID"
// @Success      200  {object}  map[string]interface{}  "message: Appointment deleted"
// @Failure      404  {object}  map[string]interface{}  "Appointment not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/appointments/{id} [delete]
// DeleteAppointmentHandler deletes an appointment
// DELETE /api/v1/trainer/appointments/:id
func (h *AppointmentHandlers) DeleteAppointmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		appointment, err := h.appointmentRepo.GetByID(c.Request.Context(), workspaceID, c.Param("id"))
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

		if err := h.appointmentRepo.Delete(c.Request.Context(), workspaceID, c.Param("id")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to delete appointment",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Appointment deleted",
		})
	}
}
