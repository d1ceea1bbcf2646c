// programs.go implements training program CRUD and program-to-student
// assignment handlers for the trainer area.
package trainer

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vertex-platform/vertex-backend/internal/config"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
	"github.com/vertex-platform/vertex-backend/internal/db/repositories"
)

// ProgramHandlers handles training program endpoints
type ProgramHandlers struct {
	cfg         *config.Config
	db          *sql.DB
	programRepo *repositories.ProgramRepository
	studentRepo *repositories.StudentRepository
}

// NewProgramHandlers creates a new ProgramHandlers instance
func NewProgramHandlers(cfg *config.Config, db *sql.DB) *ProgramHandlers {
	return &ProgramHandlers{
		cfg:         cfg,
		db:          db,
		programRepo: repositories.NewProgramRepository(db),
		studentRepo: repositories.NewStudentRepository(db),
	}
}

func programPayload(p *models.Program) gin.H {
	return gin.H{
		"id":           p.ID,
		"workspace_id": p.WorkspaceID,
		"name":         p.Name,
		"description":  p.Description,
		"weeks":        p.Weeks,
		"created_at":   p.CreatedAt,
		"updated_at":   p.UpdatedAt,
	}
}

// @Summary      List programs
// @Description  Get a paginated list of training programs in the active workspace.
// @Tags         Trainer/Programs
// @Security     Bearer
// @Produce      json
// @Param        page      query  int  false  "Page number (default 1)"
// @Param        per_page  query  int  false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "data: programs, meta: pagination"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/programs [get]
// ListProgramsHandler lists programs in the active workspace
// GET /api/v1/trainer/programs
func (h *ProgramHandlers) ListProgramsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		page, perPage, offset := parsePagination(c)

		programs, total, err := h.programRepo.List(c.Request.Context(), workspaceID, perPage, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to list programs",
			})
			return
		}

		payload := make([]gin.H, 0, len(programs))
		for _, p := range programs {
			payload = append(payload, programPayload(p))
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"programs": payload,
			},
			"meta": gin.H{
				"page":     page,
				"per_page": perPage,
				"total":    total,
			},
		})
	}
}

// @Summary      Get program
// @Description  Get a single training program in the active workspace.
// @Tags         Trainer/Programs
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Program ID"
// @Success      200  {object}  map[string]interface{}  "data: program"
// @Failure      404  {object}  map[string]interface{}  "Program not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/programs/{id} [get]
// GetProgramHandler retrieves a specific program
// GET /api/v1/trainer/programs/:id
func (h *ProgramHandlers) GetProgramHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		program, err := h.programRepo.GetByID(c.Request.Context(), workspaceID, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve program",
			})
			return
		}
		if program == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Program not found",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"program": programPayload(program),
			},
		})
	}
}

// CreateProgramRequest represents the request to create a program
type CreateProgramRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Weeks       int    `json:"weeks" binding:"omitempty,min=1"`
}

// @Summary      Create program
// @Description  Create a training program template in the active workspace.
// @Tags         Trainer/Programs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  CreateProgramRequest  true  "Program creation request"
// @Success      201  {object}  map[string]interface{}  "data: program"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/programs [post]
// CreateProgramHandler creates a new program
// POST /api/v1/trainer/programs
func (h *ProgramHandlers) CreateProgramHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		var req CreateProgramRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request: " + err.Error(),
			})
			return
		}

		program := &models.Program{
			WorkspaceID: workspaceID,
			Name:        req.Name,
			Description: req.Description,
			Weeks:       req.Weeks,
		}

		if err := h.programRepo.Create(c.Request.Context(), program); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to create program",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Program created",
			"data": gin.H{
				"program": programPayload(program),
			},
		})
	}
}

// UpdateProgramRequest represents the request to update a program
type UpdateProgramRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Weeks       *int    `json:"weeks" binding:"omitempty,min=1"`
}

// @Summary      Update program
// @Description  Update a training program's name, description, or duration.
// @Tags         Trainer/Programs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "Program ID"
// @Param        body  body  UpdateProgramRequest  true  "Program update request"
// @Success      200  {object}  map[string]interface{}  "data: program"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      404  {object}  map[string]interface{}  "Program not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/programs/{id} [put]
// UpdateProgramHandler updates a program
// PUT /api/v1/trainer/programs/:id
func (h *ProgramHandlers) UpdateProgramHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		var req UpdateProgramRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request: " + err.Error(),
			})
			return
		}

		program, err := h.programRepo.GetByID(c.Request.Context(), workspaceID, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve program",
			})
			return
		}
		if program == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Program not found",
			})
			return
		}

		if req.Name != nil {
			program.Name = *req.Name
		}
		if req.Description != nil {
			program.Description = *req.Description
		}
		if req.Weeks != nil {
			program.Weeks = *req.Weeks
		}

		if err := h.programRepo.Update(c.Request.Context(), program); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to update program",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Program updated",
			"data": gin.H{
				"program": programPayload(program),
			},
		})
	}
}

// @Summary      Delete program
// @Description  Delete a training program. Cascading deletes remove its assignments.
// @Tags         Trainer/Programs
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Program ID"
// @Success      200  {object}  map[string]interface{}  "message: Program deleted"
// @Failure      404  {object}  map[string]interface{}  "Program not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/programs/{id} [delete]
// DeleteProgramHandler deletes a program
// DELETE /api/v1/trainer/programs/:id
func (h *ProgramHandlers) DeleteProgramHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		program, err := h.programRepo.GetByID(c.Request.Context(), workspaceID, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve program",
			})
			return
		}
		if program == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Program not found",
			})
			return
		}

		if err := h.programRepo.Delete(c.Request.Context(), workspaceID, c.Param("id")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to delete program",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Program deleted",
		})
	}
}

// AssignProgramRequest represents the request to assign a program to a student
type AssignProgramRequest struct {
	StudentID string `json:"student_id" binding:"required"`
}

// @Summary      Assign program
// @Description  Assign a training program to a student in the active workspace. Re-assigning restarts the program.
// @Tags         Trainer/Programs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "Program ID"
// @Param        body  body  AssignProgramRequest  true  "Assignment request"
// @Success      200  {object}  map[string]interface{}  "message: Program assigned"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      404  {object}  map[string]interface{}  "Program or student not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/programs/{id}/assignments [post]
// AssignProgramHandler assigns a program to a student
// POST /api/v1/trainer/programs/:id/assignments
func (h *ProgramHandlers) AssignProgramHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		var req AssignProgramRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request: " + err.Error(),
			})
			return
		}

		// Both sides must exist in this workspace before linking them, since
		// the assignment table itself is not workspace-scoped.
		program, err := h.programRepo.GetByID(c.Request.Context(), workspaceID, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve program",
			})
			return
		}
		if program == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Program not found",
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

		if err := h.programRepo.Assign(c.Request.Context(), req.StudentID, program.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to assign program",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Program assigned",
		})
	}
}

// @Summary      Unassign program
// @Description  Remove a program assignment from a student.
// @Tags         Trainer/Programs
// @Security     Bearer
// @Produce      json
// @Param        id         path  string  true  "Program ID"
// @Param        studentId  path  string  true  "Student ID"
// @Success      200  {object}  map[string]interface{}  "message: Program unassigned"
// @Failure      404  {object}  map[string]interface{}  "Program not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/programs/{id}/assignments/{studentId} [delete]
// UnassignProgramHandler removes a program assignment
// DELETE /api/v1/trainer/programs/:id/assignments/:studentId
func (h *ProgramHandlers) UnassignProgramHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		program, err := h.programRepo.GetByID(c.Request.Context(), workspaceID, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve program",
			})
			return
		}
		if program == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Program not found",
			})
			return
		}

		if err := h.programRepo.Unassign(c.Request.Context(), c.Param("studentId"), program.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to unassign program",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Program unassigned",
		})
	}
}

// @Summary      List program assignments
// @Description  List students assigned to a program, most recently started first.
// @Tags         Trainer/Programs
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Program ID"
// @Success      200  {object}  map[string]interface{}  "data: assignments"
// @Failure      404  {object}  map[string]interface{}  "Program not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/trainer/programs/{id}/assignments [get]
// ListAssignmentsHandler lists a program's assignments
// GET /api/v1/trainer/programs/:id/assignments
func (h *ProgramHandlers) ListAssignmentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, ok := activeWorkspaceID(c)
		if !ok {
			return
		}

		program, err := h.programRepo.GetByID(c.Request.Context(), workspaceID, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve program",
			})
			return
		}
		if program == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Program not found",
			})
			return
		}

		assignments, err := h.programRepo.ListAssignments(c.Request.Context(), program.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to list assignments",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"assignments": assignments,
			},
		})
	}
}
