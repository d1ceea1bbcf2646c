// Package models - user.go defines the User model for platform accounts with email,
// display name, system role, and the server-side pointer to the active workspace.
package models

import "time"

// User represents a user in the system
type User struct {
	ID                string
	Email             string
	Name              string
	PasswordHash      string  // bcrypt hash, never serialized
	SystemRole        string  // "platform_admin" or "workspace_user"
	ActiveWorkspaceID *string // Nullable: no workspace selected
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// UserWithWorkspaceRole represents a user enriched with their role in the
// currently active workspace, as resolved from workspace membership.
type UserWithWorkspaceRole struct {
	User
	ActiveWorkspaceRole string // "owner_admin", "trainer", or "" when none
}
