// Package models - appointment.go defines the Appointment model for scheduled
// sessions between a trainer and a student.
package models

import "time"

// Appointment status values
const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
)

// Appointment represents a scheduled session within a workspace
type Appointment struct {
	ID            string
	WorkspaceID   string
	StudentID     string
	TrainerUserID string
	StartsAt      time.Time
	EndsAt        time.Time
	Location      string
	Status        string // "scheduled", "completed", "cancelled"
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
