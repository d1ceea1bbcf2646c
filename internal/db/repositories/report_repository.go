// report_repository.go implements ReportRepository, providing database queries
// for generated CSV export metadata.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
)

// ReportRepository handles database operations for report export metadata
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create records metadata for a generated report
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	report.ID = uuid.New().String()
	report.CreatedAt = time.Now()

	query := `
		INSERT INTO reports (id, workspace_id, kind, object_key, sha256, row_count, requested_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		report.ID, report.WorkspaceID, report.Kind, report.ObjectKey,
		report.SHA256, report.RowCount, report.RequestedBy, report.CreatedAt,
	)
	return err
}

// GetByID retrieves report metadata by ID, scoped to a workspace
func (r *ReportRepository) GetByID(ctx context.Context, workspaceID, reportID string) (*models.Report, error) {
	var report models.Report
	query := `SELECT * FROM reports WHERE id = $1 AND workspace_id = $2`
	err := r.db.GetContext(ctx, &report, query, reportID, workspaceID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List retrieves a paginated list of reports for a workspace, newest first
func (r *ReportRepository) List(ctx context.Context, workspaceID string, limit, offset int) ([]*models.Report, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reports WHERE workspace_id = $1`, workspaceID); err != nil {
		return nil, 0, err
	}

	var reports []*models.Report
	query := `
		SELECT * FROM reports
		WHERE workspace_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	err := r.db.SelectContext(ctx, &reports, query, workspaceID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if reports == nil {
		reports = make([]*models.Report, 0)
	}
	return reports, total, nil
}

// Delete removes report metadata (the stored object is deleted separately)
func (r *ReportRepository) Delete(ctx context.Context, workspaceID, reportID string) error {
	query := `DELETE FROM reports WHERE id = $1 AND workspace_id = $2`
	_, err := r.db.ExecContext(ctx, query, reportID, workspaceID)
	return err
}
