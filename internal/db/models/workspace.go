// Package models - workspace.go defines the Workspace model, a tenant-scoped
// container of students/trainers/data with a platform-admin-controlled
// approval lifecycle.
package models

import "time"

// Workspace approval lifecycle states. A workspace is created pending; a
// platform admin moves it to approved or rejected and may re-evaluate later.
const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)

// Workspace represents a workspace (tenant) in the platform
type Workspace struct {
	ID             string
	Name           string
	OwnerUserID    string
	ApprovalStatus string // "pending", "approved", "rejected"
	ApprovalNote   string // Free-text rationale, mainly set on rejection
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WorkspaceWithRole includes the requesting user's relationship to the
// workspace, for the /me/workspaces listing.
type WorkspaceWithRole struct {
	Workspace
	Role string `json:"role"` // "owner_admin", "trainer", or "" for platform admins browsing
}
