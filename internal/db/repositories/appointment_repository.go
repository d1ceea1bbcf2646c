// Package repositories - appointment_repository.go handles scheduled sessions
// between trainers and students.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
)

// AppointmentRepository handles appointment database operations
type AppointmentRepository struct {
	db *sql.DB
}

// NewAppointmentRepository creates a new AppointmentRepository
func NewAppointmentRepository(db *sql.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Create creates a new appointment
func (r *AppointmentRepository) Create(ctx context.Context, a *models.Appointment) error {
	a.ID = uuid.New().String()
	if a.Status == "" {
		a.Status = models.AppointmentStatusScheduled
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()

	query := `
		INSERT INTO appointments (id, workspace_id, student_id, trainer_user_id, starts_at, ends_at, location, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.WorkspaceID,
		a.StudentID,
		a.TrainerUserID,
		a.StartsAt,
		a.EndsAt,
		a.Location,
		a.Status,
		a.Notes,
		a.CreatedAt,
		a.UpdatedAt,
	)

	return err
}

// GetByID retrieves an appointment by ID, scoped to a workspace
func (r *AppointmentRepository) GetByID(ctx context.Context, workspaceID, appointmentID string) (*models.Appointment, error) {
	query := `
		SELECT id, workspace_id, student_id, trainer_user_id, starts_at, ends_at, location, status, notes, created_at, updated_at
		FROM appointments
		WHERE id = $1 AND workspace_id = $2
	`

	a := &models.Appointment{}
	err := r.db.QueryRowContext(ctx, query, appointmentID, workspaceID).Scan(
		&a.ID,
		&a.WorkspaceID,
		&a.StudentID,
		&a.TrainerUserID,
		&a.StartsAt,
		&a.EndsAt,
		&a.Location,
		&a.Status,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return a, nil
}

// List retrieves a paginated list of appointments in a workspace, newest first
func (r *AppointmentRepository) List(ctx context.Context, workspaceID string, limit, offset int) ([]*models.Appointment, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM appointments WHERE workspace_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, workspaceID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, workspace_id, student_id, trainer_user_id, starts_at, ends_at, location, status, notes, created_at, updated_at
		FROM appointments
		WHERE workspace_id = $1
		ORDER BY starts_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, workspaceID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	appointments, err := scanAppointments(rows)
	if err != nil {
		return nil, 0, err
	}

	return appointments, total, rows.Err()
}

// ListUpcoming retrieves appointments in a workspace starting within the window
func (r *AppointmentRepository) ListUpcoming(ctx context.Context, workspaceID string, until time.Time) ([]*models.Appointment, error) {
	query := `
		SELECT id, workspace_id, student_id, trainer_user_id, starts_at, ends_at, location, status, notes, created_at, updated_at
		FROM appointments
		WHERE workspace_id = $1 AND status = 'scheduled' AND starts_at BETWEEN now() AND $2
		ORDER BY starts_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, workspaceID, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appointments, err := scanAppointments(rows)
	if err != nil {
		return nil, err
	}

	return appointments, rows.Err()
}

// Update updates an appointment
func (r *AppointmentRepository) Update(ctx context.Context, a *models.Appointment) error {
	a.UpdatedAt = time.Now()

	query := `
		UPDATE appointments
		SET student_id = $3, trainer_user_id = $4, starts_at = $5, ends_at = $6, location = $7, status = $8, notes = $9, updated_at = $10
		WHERE id = $1 AND workspace_id = $2
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.WorkspaceID,
		a.StudentID,
		a.TrainerUserID,
		a.StartsAt,
		a.EndsAt,
		a.Location,
		a.Status,
		a.Notes,
		a.UpdatedAt,
	)

	return err
}

// Delete deletes an appointment (cascades to reminders)
func (r *AppointmentRepository) Delete(ctx context.Context, workspaceID, appointmentID string) error {
	query := `DELETE FROM appointments WHERE id = $1 AND workspace_id = $2`
	_, err := r.db.ExecContext(ctx, query, appointmentID, workspaceID)
	return err
}

func scanAppointments(rows *sql.Rows) ([]*models.Appointment, error) {
	appointments := make([]*models.Appointment, 0)
	for rows.Next() {
		a := &models.Appointment{}
		err := rows.Scan(
			&a.ID,
			&a.WorkspaceID,
			&a.StudentID,
			&a.TrainerUserID,
			&a.StartsAt,
			&a.EndsAt,
			&a.Location,
			&a.Status,
			&a.Notes,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, nil
}
