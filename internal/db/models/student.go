// Package models - student.go defines the Student model, a coached client
// belonging to a workspace.
package models

import "time"

// Student represents a coached client within a workspace
type Student struct {
	ID            string
	WorkspaceID   string
	Name          string
	Email         *string
	Phone         *string
	WhatsAppPhone *string // E.164, used for wa.me deep links
	Notes         string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
