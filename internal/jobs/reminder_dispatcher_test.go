package jobs

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/vertex-platform/vertex-backend/internal/config"
	"github.com/vertex-platform/vertex-backend/internal/db/repositories"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newDispatcherConfig(enabled bool) *config.RemindersConfig {
	return &config.RemindersConfig{
		Enabled:                 enabled,
		DispatchIntervalSeconds: 60,
		BatchSize:               100,
	}
}

func newNotifyConfig(enabled bool, smtpHost string) *config.NotificationsConfig {
	return &config.NotificationsConfig{
		Enabled: enabled,
		SMTP: config.SMTPConfig{
			Host: smtpHost,
			Port: 25,
			From: "noreply@example.com",
		},
	}
}

func newReminderRepoForDispatcher(t *testing.T) (*repositories.ReminderRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return repositories.NewReminderRepository(sqlx.NewDb(db, "postgres")), mock
}

var dueReminderCols = []string{
	"id", "workspace_id", "appointment_id", "channel", "remind_at",
	"sent_at", "message", "created_at", "updated_at",
	"student_name", "student_email", "whatsapp_phone", "starts_at",
}

// ---------------------------------------------------------------------------
// NewReminderDispatcher — construction and defaulting
// ---------------------------------------------------------------------------

func TestNewReminderDispatcher_DefaultInterval(t *testing.T) {
	cfg := newDispatcherConfig(true)
	cfg.DispatchIntervalSeconds = 0 // should default to 60s

	d := NewReminderDispatcher(nil, cfg, newNotifyConfig(true, "smtp.example.com"))
	if d == nil {
		t.Fatal("NewReminderDispatcher returned nil")
	}
	if d.interval != 60*time.Second {
		t.Errorf("interval = %v, want 60s", d.interval)
	}
}

func TestNewReminderDispatcher_DefaultBatchSize(t *testing.T) {
	cfg := newDispatcherConfig(true)
	cfg.BatchSize = -1

	d := NewReminderDispatcher(nil, cfg, newNotifyConfig(true, "smtp.example.com"))
	if d.batchSize != 100 {
		t.Errorf("batchSize = %d, want 100", d.batchSize)
	}
}

func TestNewReminderDispatcher_CustomInterval(t *testing.T) {
	cfg := newDispatcherConfig(true)
	cfg.DispatchIntervalSeconds = 15

	d := NewReminderDispatcher(nil, cfg, newNotifyConfig(true, "smtp.example.com"))
	if d.interval != 15*time.Second {
		t.Errorf("interval = %v, want 15s", d.interval)
	}
}

// ---------------------------------------------------------------------------
// Start — early exits
// ---------------------------------------------------------------------------

func TestReminderDispatcher_Start_Disabled(t *testing.T) {
	d := NewReminderDispatcher(nil, newDispatcherConfig(false), newNotifyConfig(true, "smtp.example.com"))

	done := make(chan struct{})
	go func() {
		// Must return immediately without touching the nil repository.
		d.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return for a disabled dispatcher")
	}
}

func TestReminderDispatcher_Stop_UnblocksLoop(t *testing.T) {
	repo, mock := newReminderRepoForDispatcher(t)
	// The immediate first cycle finds nothing due.
	mock.ExpectQuery("SELECT (.+) FROM reminders").
		WillReturnRows(sqlmock.NewRows(dueReminderCols))

	cfg := newDispatcherConfig(true)
	cfg.DispatchIntervalSeconds = 3600 // the test must not depend on a tick
	d := NewReminderDispatcher(repo, cfg, newNotifyConfig(false, ""))

	done := make(chan struct{})
	go func() {
		d.Start(context.Background())
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	d.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not unblock the dispatch loop")
	}
}

// ---------------------------------------------------------------------------
// runCycle — claim semantics
// ---------------------------------------------------------------------------

func TestRunCycle_ClaimLostSkipsDelivery(t *testing.T) {
	repo, mock := newReminderRepoForDispatcher(t)

	remindAt := time.Now().Add(-time.Minute)
	mock.ExpectQuery("SELECT (.+) FROM reminders").
		WillReturnRows(sqlmock.NewRows(dueReminderCols).
			AddRow("rem-1", "ws-1", "appt-1", "whatsapp", remindAt,
				nil, "Training tomorrow!", time.Now(), time.Now(),
				"Val", "val@example.com", "+5511999998888", time.Now().Add(23*time.Hour)))
	// Another instance already claimed it: zero rows affected.
	mock.ExpectExec("UPDATE reminders").
		WillReturnResult(sqlmock.NewResult(0, 0))

	d := NewReminderDispatcher(repo, newDispatcherConfig(true), newNotifyConfig(false, ""))
	d.runCycle(context.Background())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestRunCycle_WhatsAppDelivery(t *testing.T) {
	repo, mock := newReminderRepoForDispatcher(t)

	remindAt := time.Now().Add(-time.Minute)
	mock.ExpectQuery("SELECT (.+) FROM reminders").
		WillReturnRows(sqlmock.NewRows(dueReminderCols).
			AddRow("rem-1", "ws-1", "appt-1", "whatsapp", remindAt,
				nil, "Training tomorrow!", time.Now(), time.Now(),
				"Val", nil, "+5511999998888", time.Now().Add(23*time.Hour)))
	mock.ExpectExec("UPDATE reminders").
		WillReturnResult(sqlmock.NewResult(0, 1))

	d := NewReminderDispatcher(repo, newDispatcherConfig(true), newNotifyConfig(false, ""))
	d.runCycle(context.Background())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestRunCycle_EmailWithoutSMTPCountsError(t *testing.T) {
	repo, mock := newReminderRepoForDispatcher(t)

	remindAt := time.Now().Add(-time.Minute)
	mock.ExpectQuery("SELECT (.+) FROM reminders").
		WillReturnRows(sqlmock.NewRows(dueReminderCols).
			AddRow("rem-1", "ws-1", "appt-1", "email", remindAt,
				nil, "", time.Now(), time.Now(),
				"Val", "val@example.com", nil, time.Now().Add(23*time.Hour)))
	mock.ExpectExec("UPDATE reminders").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// SMTP not configured: the claimed reminder fails delivery, and the cycle
	// must carry on rather than crash.
	d := NewReminderDispatcher(repo, newDispatcherConfig(true), newNotifyConfig(true, ""))
	d.runCycle(context.Background())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

// ---------------------------------------------------------------------------
// WhatsAppDeepLink
// ---------------------------------------------------------------------------

func TestWhatsAppDeepLink(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		message string
		want    string
	}{
		{"no message", "+5511999998888", "", "https://wa.me/5511999998888"},
		{"with message", "+5511999998888", "See you tomorrow", "https://wa.me/5511999998888?text=See+you+tomorrow"},
		{"already stripped", "14155552671", "", "https://wa.me/14155552671"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WhatsAppDeepLink(tt.phone, tt.message)
			if got != tt.want {
				t.Errorf("WhatsAppDeepLink(%q, %q) = %q, want %q", tt.phone, tt.message, got, tt.want)
			}
		})
	}
}
