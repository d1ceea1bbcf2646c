// Package repositories - student_repository.go handles coached clients within
// a workspace.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
)

// StudentRepository handles student database operations
type StudentRepository struct {
	db *sql.DB
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create creates a new student
func (r *StudentRepository) Create(ctx context.Context, s *models.Student) error {
	s.ID = uuid.New().String()
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()

	query := `
		INSERT INTO students (id, workspace_id, name, email, phone, whatsapp_phone, notes, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.WorkspaceID,
		s.Name,
		s.Email,
		s.Phone,
		s.WhatsAppPhone,
		s.Notes,
		s.Active,
		s.CreatedAt,
		s.UpdatedAt,
	)

	return err
}

// GetByID retrieves a student by ID, scoped to a workspace
func (r *StudentRepository) GetByID(ctx context.Context, workspaceID, studentID string) (*models.Student, error) {
	query := `
		SELECT id, workspace_id, name, email, phone, whatsapp_phone, notes, active, created_at, updated_at
		FROM students
		WHERE id = $1 AND workspace_id = $2
	`

	s := &models.Student{}
	err := r.db.QueryRowContext(ctx, query, studentID, workspaceID).Scan(
		&s.ID,
		&s.WorkspaceID,
		&s.Name,
		&s.Email,
		&s.Phone,
		&s.WhatsAppPhone,
		&s.Notes,
		&s.Active,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return s, nil
}

// List retrieves a paginated list of students in a workspace
func (r *StudentRepository) List(ctx context.Context, workspaceID string, limit, offset int) ([]*models.Student, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM students WHERE workspace_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, workspaceID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, workspace_id, name, email, phone, whatsapp_phone, notes, active, created_at, updated_at
		FROM students
		WHERE workspace_id = $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, workspaceID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	students := make([]*models.Student, 0)
	for rows.Next() {
		s := &models.Student{}
		err := rows.Scan(
			&s.ID,
			&s.WorkspaceID,
			&s.Name,
			&s.Email,
			&s.Phone,
			&s.WhatsAppPhone,
			&s.Notes,
			&s.Active,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		students = append(students, s)
	}

	return students, total, rows.Err()
}

// Update updates a student's information
func (r *StudentRepository) Update(ctx context.Context, s *models.Student) error {
	s.UpdatedAt = time.Now()

	query := `
		UPDATE students
		SET name = $3, email = $4, phone = $5, whatsapp_phone = $6, notes = $7, active = $8, updated_at = $9
		WHERE id = $1 AND workspace_id = $2
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.WorkspaceID,
		s.Name,
		s.Email,
		s.Phone,
		s.WhatsAppPhone,
		s.Notes,
		s.Active,
		s.UpdatedAt,
	)

	return err
}

// Delete deletes a student (cascades to assignments, appointments, links)
func (r *StudentRepository) Delete(ctx context.Context, workspaceID, studentID string) error {
	query := `DELETE FROM students WHERE id = $1 AND workspace_id = $2`
	_, err := r.db.ExecContext(ctx, query, studentID, workspaceID)
	return err
}
