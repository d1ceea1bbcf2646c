// users.go implements handlers for user account CRUD operations including listing, creating, updating, and deleting users.
package admin

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vertex-platform/vertex-backend/internal/auth"
	"github.com/vertex-platform/vertex-backend/internal/config"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
	"github.com/vertex-platform/vertex-backend/internal/db/repositories"
)

// UserHandlers handles user management endpoints
type UserHandlers struct {
	cfg           *config.Config
	db            *sql.DB
	userRepo      *repositories.UserRepository
	workspaceRepo *repositories.WorkspaceRepository
}

// NewUserHandlers creates a new UserHandlers instance
func NewUserHandlers(cfg *config.Config, db *sql.DB) *UserHandlers {
	return &UserHandlers{
		cfg:           cfg,
		db:            db,
		userRepo:      repositories.NewUserRepository(db),
		workspaceRepo: repositories.NewWorkspaceRepository(db),
	}
}

// accountPayload shapes a user account for admin responses. Built by hand so
// the password hash can never leak through struct serialization.
func accountPayload(u *models.User) gin.H {
	return gin.H{
		"id":                  u.ID,
		"email":               u.Email,
		"name":                u.Name,
		"system_role":         u.SystemRole,
		"active_workspace_id": u.ActiveWorkspaceID,
		"created_at":          u.CreatedAt,
		"updated_at":          u.UpdatedAt,
	}
}

// @Summary      List users
// @Description  Get a paginated list of all user accounts. Admin area only.
// @Tags         Admin/Users
// @Security     Bearer
// @Produce      json
// @Param        page      query  int  false  "Page number (default 1)"
// @Param        per_page  query  int  false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "data: users, meta: pagination"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/users [get]
// ListUsersHandler lists all users with pagination
// GET /api/v1/admin/users?page=1&per_page=20
func (h *UserHandlers) ListUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage, offset := parsePagination(c)

		users, total, err := h.userRepo.ListUsers(c.Request.Context(), perPage, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to list users",
			})
			return
		}

		payload := make([]gin.H, 0, len(users))
		for _, u := range users {
			payload = append(payload, accountPayload(u))
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"users": payload,
			},
			"meta": gin.H{
				"page":     page,
				"per_page": perPage,
				"total":    total,
			},
		})
	}
}

// @Summary      Search users
// @Description  Search users by email or name. Admin area only.
// @Tags         Admin/Users
// @Security     Bearer
// @Produce      json
// @Param        q         query  string  true   "Search query"
// @Param        page      query  int     false  "Page number (default 1)"
// @Param        per_page  query  int     false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "data: users, meta: pagination"
// @Failure      400  {object}  map[string]interface{}  "Search query is required"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/users/search [get]
// SearchUsersHandler searches users by email or name
// GET /api/v1/admin/users/search?q=query
func (h *UserHandlers) SearchUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Search query is required",
			})
			return
		}

		page, perPage, offset := parsePagination(c)

		users, err := h.userRepo.Search(c.Request.Context(), query, perPage, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to search users",
			})
			return
		}

		payload := make([]gin.H, 0, len(users))
		for _, u := range users {
			payload = append(payload, accountPayload(u))
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"users": payload,
			},
			"meta": gin.H{
				"page":     page,
				"per_page": perPage,
			},
		})
	}
}

// @Summary      Get user
// @Description  Get a user account with their workspace memberships. Admin area only.
// @Tags         Admin/Users
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "User ID"
// @Success      200  {object}  map[string]interface{}  "data: user, workspaces"
// @Failure      404  {object}  map[string]interface{}  "User not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/users/{id} [get]
// GetUserHandler retrieves a specific user by ID
// GET /api/v1/admin/users/:id
func (h *UserHandlers) GetUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("id")

		user, err := h.userRepo.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve user",
			})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "User not found",
			})
			return
		}

		workspaces, err := h.workspaceRepo.ListForUser(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve user workspaces",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OK",
			"data": gin.H{
				"user":       accountPayload(user),
				"workspaces": workspaces,
			},
		})
	}
}

// CreateUserRequest represents the request to create a new user
type CreateUserRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Name       string `json:"name" binding:"required"`
	Password   string `json:"password" binding:"required"`
	SystemRole string `json:"system_role"`
}

// @Summary      Create user
// @Description  Create a new user account with a password and optional system role (defaults to workspace_user). Admin area only.
// @Tags         Admin/Users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  CreateUserRequest  true  "User creation request"
// @Success      201  {object}  map[string]interface{}  "data: user"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      409  {object}  map[string]interface{}  "User with this email already exists"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/users [post]
// CreateUserHandler creates a new user
// POST /api/v1/admin/users
func (h *UserHandlers) CreateUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request: " + err.Error(),
			})
			return
		}

		systemRole := req.SystemRole
		if systemRole == "" {
			systemRole = string(auth.SystemRoleWorkspaceUser)
		}
		if !auth.SystemRole(systemRole).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid system role",
			})
			return
		}

		passwordHash, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": err.Error(),
			})
			return
		}

		existing, err := h.userRepo.GetUserByEmail(c.Request.Context(), req.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to check existing user",
			})
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "User with this email already exists",
			})
			return
		}

		user := &models.User{
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: passwordHash,
			SystemRole:   systemRole,
		}

		if err := h.userRepo.CreateUser(c.Request.Context(), user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to create user",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "User created",
			"data": gin.H{
				"user": accountPayload(user),
			},
		})
	}
}

// UpdateUserRequest represents the request to update a user
type UpdateUserRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	SystemRole *string `json:"system_role"`
}

// @Summary      Update user
// @Description  Update a user's name, email, password, or system role. Admin area only.
// @Tags         Admin/Users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "User ID"
// @Param        body  body  UpdateUserRequest  true  "User update request"
// @Success      200  {object}  map[string]interface{}  "data: user"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      404  {object}  map[string]interface{}  "User not found"
// @Failure      409  {object}  map[string]interface{}  "Email already in use by another user"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/users/{id} [put]
// UpdateUserHandler updates a user
// PUT /api/v1/admin/users/:id
func (h *UserHandlers) UpdateUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("id")

		var req UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request: " + err.Error(),
			})
			return
		}

		user, err := h.userRepo.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve user",
			})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "User not found",
			})
			return
		}

		if req.Name != nil {
			user.Name = *req.Name
		}

		if req.SystemRole != nil {
			if !auth.SystemRole(*req.SystemRole).Valid() {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"message": "Invalid system role",
				})
				return
			}
			user.SystemRole = *req.SystemRole
		}

		if req.Password != nil {
			passwordHash, err := auth.HashPassword(*req.Password)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"message": err.Error(),
				})
				return
			}
			user.PasswordHash = passwordHash
		}

		if req.Email != nil {
			existing, err := h.userRepo.GetUserByEmail(c.Request.Context(), *req.Email)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "Failed to check email availability",
				})
				return
			}
			if existing != nil && existing.ID != userID {
				c.JSON(http.StatusConflict, gin.H{
					"success": false,
					"message": "Email already in use by another user",
				})
				return
			}
			user.Email = *req.Email
		}

		if err := h.userRepo.UpdateUser(c.Request.Context(), user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to update user",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "User updated",
			"data": gin.H{
				"user": accountPayload(user),
			},
		})
	}
}

// @Summary      Delete user
// @Description  Delete a user account. Cascading deletes remove workspace memberships. Admin area only.
// @Tags         Admin/Users
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "User ID"
// @Success      200  {object}  map[string]interface{}  "message: User deleted"
// @Failure      404  {object}  map[string]interface{}  "User not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/users/{id} [delete]
// DeleteUserHandler deletes a user
// DELETE /api/v1/admin/users/:id
func (h *UserHandlers) DeleteUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("id")

		user, err := h.userRepo.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to retrieve user",
			})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "User not found",
			})
			return
		}

		if err := h.userRepo.DeleteUser(c.Request.Context(), userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to delete user",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "User deleted",
		})
	}
}
