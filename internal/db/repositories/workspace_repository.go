// Package repositories - workspace_repository.go handles workspaces, their
// approval lifecycle, and workspace membership.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
)

// WorkspaceRepository handles workspace database operations
type WorkspaceRepository struct {
	db *sql.DB
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(db *sql.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// Create creates a workspace in the pending state and enrolls the owner as
// owner_admin in a single transaction.
func (r *WorkspaceRepository) Create(ctx context.Context, ws *models.Workspace) error {
	ws.ID = uuid.New().String()
	ws.ApprovalStatus = models.ApprovalStatusPending
	ws.CreatedAt = time.Now()
	ws.UpdatedAt = time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO workspaces (id, name, owner_user_id, approval_status, approval_note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.ExecContext(ctx, query,
		ws.ID,
		ws.Name,
		ws.OwnerUserID,
		ws.ApprovalStatus,
		ws.ApprovalNote,
		ws.CreatedAt,
		ws.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert workspace: %w", err)
	}

	memberQuery := `
		INSERT INTO workspace_members (workspace_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = tx.ExecContext(ctx, memberQuery, ws.ID, ws.OwnerUserID, "owner_admin", ws.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert owner membership: %w", err)
	}

	return tx.Commit()
}

// GetByID retrieves a workspace by ID
func (r *WorkspaceRepository) GetByID(ctx context.Context, workspaceID string) (*models.Workspace, error) {
	query := `
		SELECT id, name, owner_user_id, approval_status, approval_note, created_at, updated_at
		FROM workspaces
		WHERE id = $1
	`

	ws := &models.Workspace{}
	err := r.db.QueryRowContext(ctx, query, workspaceID).Scan(
		&ws.ID,
		&ws.Name,
		&ws.OwnerUserID,
		&ws.ApprovalStatus,
		&ws.ApprovalNote,
		&ws.CreatedAt,
		&ws.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return ws, nil
}

// List retrieves a paginated list of workspaces, optionally filtered by
// approval status (empty means all).
func (r *WorkspaceRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.Workspace, int, error) {
	var total int
	var rows *sql.Rows
	var err error

	if status != "" {
		countQuery := `SELECT COUNT(*) FROM workspaces WHERE approval_status = $1`
		if err := r.db.QueryRowContext(ctx, countQuery, status).Scan(&total); err != nil {
			return nil, 0, err
		}
		query := `
			SELECT id, name, owner_user_id, approval_status, approval_note, created_at, updated_at
			FROM workspaces
			WHERE approval_status = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`
		rows, err = r.db.QueryContext(ctx, query, status, limit, offset)
	} else {
		countQuery := `SELECT COUNT(*) FROM workspaces`
		if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
			return nil, 0, err
		}
		query := `
			SELECT id, name, owner_user_id, approval_status, approval_note, created_at, updated_at
			FROM workspaces
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`
		rows, err = r.db.QueryContext(ctx, query, limit, offset)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	workspaces := make([]*models.Workspace, 0)
	for rows.Next() {
		ws := &models.Workspace{}
		err := rows.Scan(
			&ws.ID,
			&ws.Name,
			&ws.OwnerUserID,
			&ws.ApprovalStatus,
			&ws.ApprovalNote,
			&ws.CreatedAt,
			&ws.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		workspaces = append(workspaces, ws)
	}

	return workspaces, total, rows.Err()
}

// ListForUser retrieves the workspaces a user belongs to, with their role in
// each, for the workspace picker.
func (r *WorkspaceRepository) ListForUser(ctx context.Context, userID string) ([]*models.WorkspaceWithRole, error) {
	query := `
		SELECT w.id, w.name, w.owner_user_id, w.approval_status, w.approval_note,
		       w.created_at, w.updated_at, wm.role
		FROM workspaces w
		JOIN workspace_members wm ON wm.workspace_id = w.id
		WHERE wm.user_id = $1
		ORDER BY w.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workspaces := make([]*models.WorkspaceWithRole, 0)
	for rows.Next() {
		ws := &models.WorkspaceWithRole{}
		err := rows.Scan(
			&ws.ID,
			&ws.Name,
			&ws.OwnerUserID,
			&ws.ApprovalStatus,
			&ws.ApprovalNote,
			&ws.CreatedAt,
			&ws.UpdatedAt,
			&ws.Role,
		)
		if err != nil {
			return nil, err
		}
		workspaces = append(workspaces, ws)
	}

	return workspaces, rows.Err()
}

// SetApprovalStatus transitions a workspace's approval lifecycle state.
// Re-evaluation of already approved/rejected workspaces is allowed.
func (r *WorkspaceRepository) SetApprovalStatus(ctx context.Context, workspaceID, status, note string) error {
	query := `
		UPDATE workspaces
		SET approval_status = $2, approval_note = $3, updated_at = $4
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, workspaceID, status, note, time.Now())
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("workspace not found: %s", workspaceID)
	}

	return nil
}

// Update updates a workspace's name
func (r *WorkspaceRepository) Update(ctx context.Context, ws *models.Workspace) error {
	ws.UpdatedAt = time.Now()

	query := `
		UPDATE workspaces
		SET name = $2, updated_at = $3
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, ws.ID, ws.Name, ws.UpdatedAt)
	return err
}

// Delete deletes a workspace (cascades to members and workspace data)
func (r *WorkspaceRepository) Delete(ctx context.Context, workspaceID string) error {
	query := `DELETE FROM workspaces WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, workspaceID)
	return err
}

// AddMember adds a user to a workspace with the given role
func (r *WorkspaceRepository) AddMember(ctx context.Context, workspaceID, userID, role string) error {
	query := `
		INSERT INTO workspace_members (workspace_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (workspace_id, user_id) DO UPDATE SET role = EXCLUDED.role
	`
	_, err := r.db.ExecContext(ctx, query, workspaceID, userID, role, time.Now())
	return err
}

// RemoveMember removes a user from a workspace
func (r *WorkspaceRepository) RemoveMember(ctx context.Context, workspaceID, userID string) error {
	query := `DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, workspaceID, userID)
	return err
}

// GetMemberRole returns the user's role in the workspace, or "" if the user
// is not a member.
func (r *WorkspaceRepository) GetMemberRole(ctx context.Context, workspaceID, userID string) (string, error) {
	query := `SELECT role FROM workspace_members WHERE workspace_id = $1 AND user_id = $2`

	var role string
	err := r.db.QueryRowContext(ctx, query, workspaceID, userID).Scan(&role)

	if err == sql.ErrNoRows {
		return "", nil
	}

	if err != nil {
		return "", err
	}

	return role, nil
}

// ListMembers retrieves workspace members with user details
func (r *WorkspaceRepository) ListMembers(ctx context.Context, workspaceID string) ([]*models.WorkspaceMemberWithUser, error) {
	query := `
		SELECT wm.workspace_id, wm.user_id, wm.role, wm.created_at, u.name, u.email
		FROM workspace_members wm
		JOIN users u ON u.id = wm.user_id
		WHERE wm.workspace_id = $1
		ORDER BY wm.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*models.WorkspaceMemberWithUser, 0)
	for rows.Next() {
		m := &models.WorkspaceMemberWithUser{}
		err := rows.Scan(
			&m.WorkspaceID,
			&m.UserID,
			&m.Role,
			&m.CreatedAt,
			&m.UserName,
			&m.UserEmail,
		)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	return members, rows.Err()
}
