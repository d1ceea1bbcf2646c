// Package models - workspace_member.go defines user-to-workspace membership
// with the workspace-scoped role, plus an enriched view joining user details.
package models

import "time"

// WorkspaceMember represents a user's membership in a workspace
type WorkspaceMember struct {
	WorkspaceID string
	UserID      string
	Role        string // "owner_admin" or "trainer"
	CreatedAt   time.Time
}

// WorkspaceMemberWithUser includes user details for display
type WorkspaceMemberWithUser struct {
	WorkspaceID string    `json:"workspace_id"`
	UserID      string    `json:"user_id"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UserName    string    `json:"user_name"`
	UserEmail   string    `json:"user_email"`
}
