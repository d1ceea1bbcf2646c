// Package auth - roles.go defines the two role axes used across the platform:
// the account-level system role and the workspace-scoped role. Routing and
// authorization decisions derive from these via IsAdmin.
package auth

// SystemRole is the platform-wide privilege level, set once at account level.
type SystemRole string

const (
	SystemRolePlatformAdmin SystemRole = "platform_admin"
	SystemRoleWorkspaceUser SystemRole = "workspace_user"
)

// Valid reports whether the role is one of the known system roles.
func (r SystemRole) Valid() bool {
	return r == SystemRolePlatformAdmin || r == SystemRoleWorkspaceUser
}

// WorkspaceRole is the privilege level scoped to the currently active
// workspace. Empty means no workspace is selected.
type WorkspaceRole string

const (
	WorkspaceRoleOwnerAdmin WorkspaceRole = "owner_admin"
	WorkspaceRoleTrainer    WorkspaceRole = "trainer"
	WorkspaceRoleNone       WorkspaceRole = ""
)

// Valid reports whether the role is a known workspace role (including none).
func (r WorkspaceRole) Valid() bool {
	return r == WorkspaceRoleOwnerAdmin || r == WorkspaceRoleTrainer || r == WorkspaceRoleNone
}

// IsAdmin reports whether a user is treated as an admin for routing purposes:
// platform admins always, and workspace owners while that workspace is active.
// Unknown role strings never grant admin.
func IsAdmin(system SystemRole, workspace WorkspaceRole) bool {
	return system == SystemRolePlatformAdmin || workspace == WorkspaceRoleOwnerAdmin
}
