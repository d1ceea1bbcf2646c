// Package models - reminder.go defines the Reminder model for scheduled
// appointment notifications. SentAt is the persisted send-exactly-once marker
// consulted by the background dispatcher.
package models

import (
	"database/sql"
	"time"
)

// Reminder channels
const (
	ReminderChannelEmail    = "email"
	ReminderChannelWhatsApp = "whatsapp"
)

// Reminder represents a scheduled notification for an appointment
type Reminder struct {
	ID            string       `db:"id" json:"id"`
	WorkspaceID   string       `db:"workspace_id" json:"workspace_id"`
	AppointmentID string       `db:"appointment_id" json:"appointment_id"`
	Channel       string       `db:"channel" json:"channel"` // "email" or "whatsapp"
	RemindAt      time.Time    `db:"remind_at" json:"remind_at"`
	SentAt        sql.NullTime `db:"sent_at" json:"sent_at,omitempty"` // Null until dispatched
	Message       string       `db:"message" json:"message"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// ReminderWithRecipient joins the appointment's student contact details needed
// by the dispatcher to actually deliver the reminder.
type ReminderWithRecipient struct {
	Reminder
	StudentName   string         `db:"student_name" json:"student_name"`
	StudentEmail  sql.NullString `db:"student_email" json:"student_email,omitempty"`
	WhatsAppPhone sql.NullString `db:"whatsapp_phone" json:"whatsapp_phone,omitempty"`
	StartsAt      time.Time      `db:"starts_at" json:"starts_at"`
}
