// Package repositories - program_repository.go handles training programs and
// their assignment to students.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
)

// ProgramRepository handles program database operations
type ProgramRepository struct {
	db *sql.DB
}

// NewProgramRepository creates a new ProgramRepository
func NewProgramRepository(db *sql.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// Create creates a new program
func (r *ProgramRepository) Create(ctx context.Context, p *models.Program) error {
	p.ID = uuid.New().String()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()

	query := `
		INSERT INTO programs (id, workspace_id, name, description, weeks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.WorkspaceID,
		p.Name,
		p.Description,
		p.Weeks,
		p.CreatedAt,
		p.UpdatedAt,
	)

	return err
}

// GetByID retrieves a program by ID, scoped to a workspace
func (r *ProgramRepository) GetByID(ctx context.Context, workspaceID, programID string) (*models.Program, error) {
	query := `
		SELECT id, workspace_id, name, description, weeks, created_at, updated_at
		FROM programs
		WHERE id = $1 AND workspace_id = $2
	`

	p := &models.Program{}
	err := r.db.QueryRowContext(ctx, query, programID, workspaceID).Scan(
		&p.ID,
		&p.WorkspaceID,
		&p.Name,
		&p.Description,
		&p.Weeks,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return p, nil
}

// List retrieves a paginated list of programs in a workspace
func (r *ProgramRepository) List(ctx context.Context, workspaceID string, limit, offset int) ([]*models.Program, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM programs WHERE workspace_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, workspaceID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, workspace_id, name, description, weeks, created_at, updated_at
		FROM programs
		WHERE workspace_id = $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, workspaceID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	programs := make([]*models.Program, 0)
	for rows.Next() {
		p := &models.Program{}
		err := rows.Scan(
			&p.ID,
			&p.WorkspaceID,
			&p.Name,
			&p.Description,
			&p.Weeks,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		programs = append(programs, p)
	}

	return programs, total, rows.Err()
}

// Update updates a program's information
func (r *ProgramRepository) Update(ctx context.Context, p *models.Program) error {
	p.UpdatedAt = time.Now()

	query := `
		UPDATE programs
		SET name = $3, description = $4, weeks = $5, updated_at = $6
		WHERE id = $1 AND workspace_id = $2
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.WorkspaceID,
		p.Name,
		p.Description,
		p.Weeks,
		p.UpdatedAt,
	)

	return err
}

// Delete deletes a program (cascades to assignments)
func (r *ProgramRepository) Delete(ctx context.Context, workspaceID, programID string) error {
	query := `DELETE FROM programs WHERE id = $1 AND workspace_id = $2`
	_, err := r.db.ExecContext(ctx, query, programID, workspaceID)
	return err
}

// Assign assigns a program to a student. Re-assigning refreshes started_at.
func (r *ProgramRepository) Assign(ctx context.Context, studentID, programID string) error {
	query := `
		INSERT INTO program_assignments (student_id, program_id, started_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id, program_id) DO UPDATE SET started_at = EXCLUDED.started_at
	`
	_, err := r.db.ExecContext(ctx, query, studentID, programID, time.Now())
	return err
}

// Unassign removes a program assignment from a student
func (r *ProgramRepository) Unassign(ctx context.Context, studentID, programID string) error {
	query := `DELETE FROM program_assignments WHERE student_id = $1 AND program_id = $2`
	_, err := r.db.ExecContext(ctx, query, studentID, programID)
	return err
}

// ListAssignments retrieves assignments for a program with student names
func (r *ProgramRepository) ListAssignments(ctx context.Context, programID string) ([]*models.ProgramAssignmentWithDetails, error) {
	query := `
		SELECT pa.student_id, s.name, pa.program_id, p.name, pa.started_at
		FROM program_assignments pa
		JOIN students s ON s.id = pa.student_id
		JOIN programs p ON p.id = pa.program_id
		WHERE pa.program_id = $1
		ORDER BY pa.started_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]*models.ProgramAssignmentWithDetails, 0)
	for rows.Next() {
		a := &models.ProgramAssignmentWithDetails{}
		err := rows.Scan(
			&a.StudentID,
			&a.StudentName,
			&a.ProgramID,
			&a.ProgramName,
			&a.StartedAt,
		)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}
