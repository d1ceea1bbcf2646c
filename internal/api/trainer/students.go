// students.go implements the student roster CRUD handlers for the trainer area.
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

// StudentHandlers handles student roster endpoints
type StudentHandlers struct {
	cfg         *config.Config
	db          *sql.DB
	studentRepo *repositories.StudentRepository
}

// NewStudentHandlers creates a new StudentHandlers instance
func NewStudentHandlers(cfg *config.Config, db *sql.DB) *StudentHandlers {
	return &StudentHandlers{
		cfg:         cfg,
		db:          db,
		studentRepo: repositories.NewStudentRepository(db),
	}
}

func studentPayload(s *models.Student) gin.H {
	return gin.H{
		"id":             s.ID,
		"workspace_id":   s.WorkspaceID,
		"name":           s.Name,
		"email":          s.Email,
		"phone":          s.Phone,
		"whatsapp_phone": s.WhatsAppPhone,
		"notes":          s.Notes,
		"active":         s.Active,
		"created_at":     s.CreatedAt,
		"updated_at":     s.UpdatedAt,
	}
}

// @Summary      List students
// @Description  Get a paginated list of students in the active workspace, ordered by name.
// @Tags         Trainer/Students
// @Security     Bearer
// @Produce      json
// @Param        page      query  int  false  "Page number (default 1)"
// @Param        per_page  query  int  false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "data: students, meta: pagination"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/students [get]
// ListStudentsHandler lists students in the active workspace
// GET /api/v1/trainer/students
func (h *StudentHandlers) ListStudentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		page, perPage, offset := parsePagination(c)

		students, total, err := h.studentRepo.List(c.Request.Context(), workspaceID, perPage, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to list students",
			})
			return
		}

		payload := make([]gin.H, 0, len(students))
		for _, s := range students {
			payload = append(payload, studentPayload(s))
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"students": payload,
			},
			"meta": gin.H{
				"page":     page,
				"per_page": perPage,
				"total":    total,
			},
		})
	}
}

// @Summary      Get student
// @Description  Get a single student in the active workspace.
// @Tags         Trainer/Students
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Student ID"
// @Success      200  {object}  map[string]interface{}  "data: student"
// @Failure      404  {object}  map[string]interface{}  "Student not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/students/{id} [get]
// GetStudentHandler retrieves a specific student
// GET /api/v1/trainer/students/:id
func (h *StudentHandlers) GetStudentHandler() gin.HandlerFunc {
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

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"student": studentPayload(student),
			},
		})
	}
}

// CreateStudentRequest represents the request to create a student
type CreateStudentRequest struct {
	Name          string  `json:"name" binding:"required"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Phone         *string `json:"phone"`
	WhatsAppPhone *string `json:"whatsapp_phone"`
	Notes         string  `json:"notes"`
}

// @Summary      Create student
// @Description  Add a student to the active workspace. The WhatsApp phone, when given, must be E.164.
// @Tags         Trainer/Students
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  CreateStudentRequest  true  "Student creation request"
// @Success      201  {object}  map[string]interface{}  "data: student"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/students [post]
// CreateStudentHandler creates a new student
// POST /api/v1/trainer/students
func (h *StudentHandlers) CreateStudentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		var req CreateStudentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request: " + err.Error(),
			})
			return
		}

		if req.WhatsAppPhone != nil && *req.WhatsAppPhone != "" {
			if err := validation.ValidateE164(*req.WhatsAppPhone); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"message": err.Error(),
				})
				return
			}
		}

		student := &models.Student{
			WorkspaceID:   workspaceID,
			Name:          req.Name,
			Email:         req.Email,
			Phone:         req.Phone,
			WhatsAppPhone: req.WhatsAppPhone,
			Notes:         req.Notes,
			Active:        true,
		}

		if err := h.studentRepo.Create(c.Request.Context(), student); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to create student",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Student created",
			"data": gin.H{
				"student": studentPayload(student),
			},
		})
	}
}

// UpdateStudentRequest represents the request to update a student
type UpdateStudentRequest struct {
	Name          *string `json:"name"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Phone         *string `json:"phone"`
	WhatsAppPhone *string `json:"whatsapp_phone"`
	Notes         *string `json:"notes"`
	Active        *bool   `json:"active"`
}

// @Summary      Update student
// @Description  Update a student's details or active flag in the active workspace.
// @Tags         Trainer/Students
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "Student ID"
// @Param        body  body  UpdateStudentRequest  true  "Student update request"
// @Success      200  {object}  map[string]interface{}  "data: student"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      404  {object}  map[string]interface{}  "Student not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/students/{id} [put]
// UpdateStudentHandler updates a student
// PUT /api/v1/trainer/students/:id
func (h *StudentHandlers) UpdateStudentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		var req UpdateStudentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request: " + err.Error(),
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

		if req.Name != nil {
			student.Name = *req.Name
		}
		if req.Email != nil {
			student.Email = req.Email
		}
		if req.Phone != nil {
			student.Phone = req.Phone
		}
		if req.WhatsAppPhone != nil {
			if *req.WhatsAppPhone != "" {
				if err := validation.ValidateE164(*req.WhatsAppPhone); err != nil {
					c.JSON(http.StatusBadRequest, gin.H{
						"success": false,
						"message": err.Error(),
					})
					return
				}
			}
			student.WhatsAppPhone = req.WhatsAppPhone
		}
		if req.Notes != nil {
			student.Notes = *req.Notes
		}
		if req.Active != nil {
			student.Active = *req.Active
		}

		if err := h.studentRepo.Update(c.Request.Context(), student); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to update student",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Student updated",
			"data": gin.H{
				"student": studentPayload(student),
			},
		})
	}
}

// @Summary      Delete student
// @Description  Remove a student from the active workspace. Cascading deletes remove their assignments and appointments.
// @Tags         Trainer/Students
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Student ID"
// @Success      200  {object}  map[string]interface{}  "message: Student deleted"
// @Failure      404  {object}  map[string]interface{}  "Student not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/students/{id} [delete]
// DeleteStudentHandler deletes a student
// DELETE /api/v1/trainer/students/:id
func (h *StudentHandlers) DeleteStudentHandler() gin.HandlerFunc {
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

		if err := h.studentRepo.Delete(c.Request.Context(), workspaceID, c.Param("id")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to delete student",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Student deleted",
		})
	}
}
