// Package models - whatsapp_link.go defines stored WhatsApp contact links for
// students. The API derives a wa.me deep link from the E.164 phone number.
package models

import (
	"strings"
	"time"
)

// WhatsAppLink represents a saved WhatsApp contact for a student
type WhatsAppLink struct {
	ID          string
	WorkspaceID string
	StudentID   string
	Phone       string // E.164, e.g. +5511999998888
	Label       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DeepLink returns the wa.me URL for the stored phone number.
func (l *WhatsAppLink) DeepLink() string {
	return "https://wa.me/" + strings.TrimPrefix(l.Phone, "+")
}
