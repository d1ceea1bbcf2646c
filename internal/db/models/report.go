// Package models - report.go defines metadata for generated CSV exports
// written to the storage backend.
package models

import "time"

// Report kinds
const (
	ReportKindStudents     = "students"
	ReportKindAppointments = "appointments"
)

// Report represents a generated CSV export stored in the storage backend
type Report struct {
	ID          string    `db:"id" json:"id"`
	WorkspaceID string    `db:"workspace_id" json:"workspace_id"`
	Kind        string    `db:"kind" json:"kind"` // "students" or "appointments"
	ObjectKey   string    `db:"object_key" json:"object_key"`
	SHA256      string    `db:"sha256" json:"sha256"`
	RowCount    int       `db:"row_count" json:"row_count"`
	RequestedBy string    `db:"requested_by" json:"requested_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
