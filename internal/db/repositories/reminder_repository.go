// reminder_repository.go implements ReminderRepository, providing database
// queries for appointment reminders, including the claim-and-mark logic the
// background dispatcher relies on for exactly-once delivery.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
)

// ReminderRepository handles database operations for appointment reminders
type ReminderRepository struct {
	db *sqlx.DB
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(db *sqlx.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Create creates a new reminder
func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	reminder.ID = uuid.New().String()
	reminder.CreatedAt = time.Now()
	reminder.UpdatedAt = time.Now()

	query := `
		INSERT INTO reminders (id, workspace_id, appointment_id, channel, remind_at, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		reminder.ID, reminder.WorkspaceID, reminder.AppointmentID, reminder.Channel,
		reminder.RemindAt, reminder.Message, reminder.CreatedAt, reminder.UpdatedAt,
	)
	return err
}

// GetByID retrieves a reminder by ID, scoped to a workspace
func (r *ReminderRepository) GetByID(ctx context.Context, workspaceID, reminderID string) (*models.Reminder, error) {
	var reminder models.Reminder
	query := `SELECT * FROM reminders WHERE id = $1 AND workspace_id = $2`
	err := r.db.GetContext(ctx, &reminder, query, reminderID, workspaceID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

// List retrieves a paginated list of reminders in a workspace
func (r *ReminderRepository) List(ctx context.Context, workspaceID string, limit, offset int) ([]*models.Reminder, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reminders WHERE workspace_id = $1`, workspaceID); err != nil {
		return nil, 0, err
	}

	var reminders []*models.Reminder
	query := `
		SELECT * FROM reminders
		WHERE workspace_id = $1
		ORDER BY remind_at ASC
		LIMIT $2 OFFSET $3
	`
	err := r.db.SelectContext(ctx, &reminders, query, workspaceID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if reminders == nil {
		reminders = make([]*models.Reminder, 0)
	}
	return reminders, total, nil
}

// ListDue retrieves unsent reminders whose remind_at has passed, joined with
// the recipient details the dispatcher needs.
func (r *ReminderRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ReminderWithRecipient, error) {
	var due []*models.ReminderWithRecipient
	query := `
		SELECT rem.id, rem.workspace_id, rem.appointment_id, rem.channel, rem.remind_at,
		       rem.sent_at, rem.message, rem.created_at, rem.updated_at,
		       s.name AS student_name, s.email AS student_email, s.whatsapp_phone,
		       a.starts_at
		FROM reminders rem
		JOIN appointments a ON a.id = rem.appointment_id
		JOIN students s ON s.id = a.student_id
		WHERE rem.sent_at IS NULL AND rem.remind_at <= $1
		ORDER BY rem.remind_at ASC
		LIMIT $2
	`
	err := r.db.SelectContext(ctx, &due, query, now, limit)
	if err != nil {
		return nil, err
	}
	return due, nil
}

// MarkSent records that a reminder was dispatched. The sent_at IS NULL guard
// makes the mark a claim: only the first caller wins, so a reminder is never
// delivered twice even with concurrent dispatchers.
func (r *ReminderRepository) MarkSent(ctx context.Context, reminderID string, sentAt time.Time) (bool, error) {
	query := `
		UPDATE reminders
		SET sent_at = $2, updated_at = $2
		WHERE id = $1 AND sent_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, reminderID, sentAt)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// Update updates an unsent reminder's schedule, channel, and message.
// Reminders that were already dispatched are immutable.
func (r *ReminderRepository) Update(ctx context.Context, reminder *models.Reminder) error {
	reminder.UpdatedAt = time.Now()

	query := `
		UPDATE reminders
		SET channel = $3, remind_at = $4, message = $5, updated_at = $6
		WHERE id = $1 AND workspace_id = $2 AND sent_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query,
		reminder.ID, reminder.WorkspaceID, reminder.Channel,
		reminder.RemindAt, reminder.Message, reminder.UpdatedAt,
	)
	return err
}

// Delete deletes a reminder
func (r *ReminderRepository) Delete(ctx context.Context, workspaceID, reminderID string) error {
	query := `DELETE FROM reminders WHERE id = $1 AND workspace_id = $2`
	_, err := r.db.ExecContext(ctx, query, reminderID, workspaceID)
	return err
}
