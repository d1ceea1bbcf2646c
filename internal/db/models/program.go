// Package models - program.go defines the training Program model and its
// assignment to students.
package models

import "time"

// Program represents a training program template within a workspace
type Program struct {
	ID          string
	WorkspaceID string
	Name        string
	Description string
	Weeks       int // Planned duration in weeks
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProgramAssignment represents a program assigned to a student
type ProgramAssignment struct {
	StudentID string    `json:"student_id"`
	ProgramID string    `json:"program_id"`
	StartedAt time.Time `json:"started_at"`
}

// ProgramAssignmentWithDetails joins student and program names for listings
type ProgramAssignmentWithDetails struct {
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	ProgramID   string    `json:"program_id"`
	ProgramName string    `json:"program_name"`
	StartedAt   time.Time `json:"started_at"`
}
