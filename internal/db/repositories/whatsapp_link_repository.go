// whatsapp_link_repository.go implements WhatsAppLinkRepository for stored
// WhatsApp contact links.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
)

// WhatsAppLinkRepository handles whatsapp_links database operations
type WhatsAppLinkRepository struct {
	db *sql.DB
}

// NewWhatsAppLinkRepository creates a new WhatsAppLinkRepository
func NewWhatsAppLinkRepository(db *sql.DB) *WhatsAppLinkRepository {
	return &WhatsAppLinkRepository{db: db}
}

// Create creates a new WhatsApp link
func (r *WhatsAppLinkRepository) Create(ctx context.Context, l *models.WhatsAppLink) error {
	l.ID = uuid.New().String()
	l.CreatedAt = time.Now()
	l.UpdatedAt = time.Now()

	query := `
		INSERT INTO whatsapp_links (id, workspace_id, student_id, phone, label, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		l.ID,
		l.WorkspaceID,
		l.StudentID,
		l.Phone,
		l.Label,
		l.CreatedAt,
		l.UpdatedAt,
	)

	return err
}

// GetByID retrieves a WhatsApp link by ID, scoped to a workspace
func (r *WhatsAppLinkRepository) GetByID(ctx context.Context, workspaceID, linkID string) (*models.WhatsAppLink, error) {
	query := `
		SELECT id, workspace_id, student_id, phone, label, created_at, updated_at
		FROM whatsapp_links
		WHERE id = $1 AND workspace_id = $2
	`

	l := &models.WhatsAppLink{}
	err := r.db.QueryRowContext(ctx, query, linkID, workspaceID).Scan(
		&l.ID,
		&l.WorkspaceID,
		&l.StudentID,
		&l.Phone,
		&l.Label,
		&l.CreatedAt,
		&l.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return l, nil
}

// ListByStudent retrieves the WhatsApp links saved for a student
func (r *WhatsAppLinkRepository) ListByStudent(ctx context.Context, workspaceID, studentID string) ([]*models.WhatsAppLink, error) {
	query := `
		SELECT id, workspace_id, student_id, phone, label, created_at, updated_at
		FROM whatsapp_links
		WHERE workspace_id = $1 AND student_id = $2
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, workspaceID, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]*models.WhatsAppLink, 0)
	for rows.Next() {
		l := &models.WhatsAppLink{}
		err := rows.Scan(
			&l.ID,
			&l.WorkspaceID,
			&l.StudentID,
			&l.Phone,
			&l.Label,
			&l.CreatedAt,
			&l.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}

	return links, rows.Err()
}

// Update updates a WhatsApp link's phone and label
func (r *WhatsAppLinkRepository) Update(ctx context.Context, l *models.WhatsAppLink) error {
	l.UpdatedAt = time.Now()

	query := `
		UPDATE whatsapp_links
		SET phone = $3, label = $4, updated_at = $5
		WHERE id = $1 AND workspace_id = $2
	`

	_, err := r.db.ExecContext(ctx, query, l.ID, l.WorkspaceID, l.Phone, l.Label, l.UpdatedAt)
	return err
}

// Delete deletes a WhatsApp link
func (r *WhatsAppLinkRepository) Delete(ctx context.Context, workspaceID, linkID string) error {
	query := `DELETE FROM whatsapp_links WHERE id = $1 AND workspace_id = $2`
	_, err := r.db.ExecContext(ctx, query, linkID, workspaceID)
	return err
}
