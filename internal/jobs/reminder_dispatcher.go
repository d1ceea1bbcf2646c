// reminder_dispatcher.go implements the ReminderDispatcher background job,
// which periodically claims due appointment reminders and delivers them over
// their configured channel. Delivery state is persisted in the database
// (sent_at column) and the claim is a conditional update, so a reminder is
// delivered at most once even across server restarts or concurrent instances.
// The job is a no-op when reminders.enabled is false, so it is always safe to
// start regardless of deployment environment.
package jobs

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"net/url"
	"strings"
	"time"

	"github.com/vertex-platform/vertex-backend/internal/config"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
	"github.com/vertex-platform/vertex-backend/internal/db/repositories"
	"github.com/vertex-platform/vertex-backend/internal/telemetry"
)

// ReminderDispatcher periodically delivers due appointment reminders.
type ReminderDispatcher struct {
	reminderRepo *repositories.ReminderRepository
	remindersCfg *config.RemindersConfig
	notifyCfg    *config.NotificationsConfig
	interval     time.Duration
	batchSize    int
	stopChan     chan struct{}
}

// NewReminderDispatcher creates a new ReminderDispatcher.
// reminders.dispatch_interval_seconds controls the poll cadence (default 60s).
func NewReminderDispatcher(
	reminderRepo *repositories.ReminderRepository,
	remindersCfg *config.RemindersConfig,
	notifyCfg *config.NotificationsConfig,
) *ReminderDispatcher {
	seconds := remindersCfg.DispatchIntervalSeconds
	if seconds <= 0 {
		seconds = 60
	}
	batch := remindersCfg.BatchSize
	if batch <= 0 {
		batch = 100
	}
	return &ReminderDispatcher{
		reminderRepo: reminderRepo,
		remindersCfg: remindersCfg,
		notifyCfg:    notifyCfg,
		interval:     time.Duration(seconds) * time.Second,
		batchSize:    batch,
		stopChan:     make(chan struct{}),
	}
}

// Start begins the background dispatch loop.
// It runs an initial cycle immediately, then repeats on the configured interval.
// The loop exits when ctx is cancelled or Stop() is called.
func (d *ReminderDispatcher) Start(ctx context.Context) {
	if !d.remindersCfg.Enabled {
		log.Println("Reminder dispatcher: disabled (reminders.enabled=false)")
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	log.Printf("Reminder dispatcher started (poll interval: %v, batch size: %d)",
		d.interval, d.batchSize)

	// Run once immediately on startup
	d.runCycle(ctx)

	for {
		select {
		case <-ticker.C:
			d.runCycle(ctx)
		case <-d.stopChan:
			log.Println("Reminder dispatcher stopped")
			return
		case <-ctx.Done():
			log.Println("Reminder dispatcher context cancelled")
			return
		}
	}
}

// Stop signals the background loop to exit.
func (d *ReminderDispatcher) Stop() {
	close(d.stopChan)
}

// runCycle claims and delivers all due reminders up to the batch size.
func (d *ReminderDispatcher) runCycle(ctx context.Context) {
	start := time.Now()
	defer func() {
		telemetry.ReminderDispatchDuration.Observe(time.Since(start).Seconds())
	}()

	due, err := d.reminderRepo.ListDue(ctx, time.Now(), d.batchSize)
	if err != nil {
		log.Printf("Reminder dispatcher: failed to query due reminders: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	log.Printf("Reminder dispatcher: %d reminder(s) due", len(due))

	for _, reminder := range due {
		// Claim before sending. If another instance got here first the
		// conditional update reports zero rows and we skip; a claimed
		// reminder that then fails to send is logged and dropped rather
		// than risking a duplicate delivery.
		claimed, err := d.reminderRepo.MarkSent(ctx, reminder.ID, time.Now())
		if err != nil {
			log.Printf("Reminder dispatcher: failed to claim reminder %s: %v", reminder.ID, err)
			continue
		}
		if !claimed {
			continue
		}

		if err := d.deliver(reminder); err != nil {
			telemetry.RemindersSentTotal.WithLabelValues(reminder.Channel, "error").Inc()
			log.Printf("Reminder dispatcher: failed to deliver reminder %s via %s: %v",
				reminder.ID, reminder.Channel, err)
			continue
		}
		telemetry.RemindersSentTotal.WithLabelValues(reminder.Channel, "sent").Inc()
	}
}

// deliver routes a claimed reminder to its channel.
func (d *ReminderDispatcher) deliver(reminder *models.ReminderWithRecipient) error {
	switch reminder.Channel {
	case models.ReminderChannelEmail:
		return d.deliverEmail(reminder)
	case models.ReminderChannelWhatsApp:
		return d.deliverWhatsApp(reminder)
	default:
		return fmt.Errorf("unknown reminder channel %q", reminder.Channel)
	}
}

// deliverEmail composes and sends a plain-text reminder email via SMTP.
func (d *ReminderDispatcher) deliverEmail(reminder *models.ReminderWithRecipient) error {
	if !d.notifyCfg.Enabled {
		return fmt.Errorf("email reminders require notifications.enabled=true")
	}
	if d.notifyCfg.SMTP.Host == "" {
		return fmt.Errorf("email reminders require notifications.smtp.host")
	}
	if !reminder.StudentEmail.Valid || reminder.StudentEmail.String == "" {
		return fmt.Errorf("student %s has no email address", reminder.StudentName)
	}

	subject := fmt.Sprintf("Reminder: training session on %s",
		reminder.StartsAt.Format("Mon, 2 Jan at 15:04"))
	message := reminder.Message
	if message == "" {
		message = fmt.Sprintf("Hi %s, this is a reminder of your training session on %s.",
			reminder.StudentName, reminder.StartsAt.Format(time.RFC1123))
	}
	body := strings.Join([]string{
		fmt.Sprintf("Hello %s,", reminder.StudentName),
		"",
		message,
		"",
		"See you there!",
	}, "\r\n")

	smtpCfg := &d.notifyCfg.SMTP
	toEmail := reminder.StudentEmail.String
	headers := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n",
		smtpCfg.From, toEmail, subject,
	)
	msg := []byte(headers + body + "\r\n")

	addr := fmt.Sprintf("%s:%d", smtpCfg.Host, smtpCfg.Port)
	auth := smtp.PlainAuth("", smtpCfg.Username, smtpCfg.Password, smtpCfg.Host)

	if smtpCfg.UseTLS {
		return sendMailTLS(addr, smtpCfg.Host, auth, smtpCfg.From, []string{toEmail}, msg)
	}
	return smtp.SendMail(addr, auth, smtpCfg.From, []string{toEmail}, msg)
}

// deliverWhatsApp produces the wa.me deep link with the reminder message
// prefilled. There is no server-side WhatsApp send; the link is logged so
// operators can audit dispatches, and trainers use the same link format from
// the UI.
func (d *ReminderDispatcher) deliverWhatsApp(reminder *models.ReminderWithRecipient) error {
	if !reminder.WhatsAppPhone.Valid || reminder.WhatsAppPhone.String == "" {
		return fmt.Errorf("student %s has no WhatsApp number", reminder.StudentName)
	}

	link := WhatsAppDeepLink(reminder.WhatsAppPhone.String, reminder.Message)
	log.Printf("Reminder dispatcher: whatsapp reminder %s ready for %s: %s",
		reminder.ID, reminder.StudentName, link)
	return nil
}

// WhatsAppDeepLink builds a wa.me URL for an E.164 phone number with an
// optional prefilled message.
func WhatsAppDeepLink(phone, message string) string {
	link := "https://wa.me/" + strings.TrimPrefix(phone, "+")
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link
}

// sendMailTLS connects via implicit TLS (port 465 / SMTPS) and sends a message.
// Use this when UseTLS=true and the port is 465; for port 587 STARTTLS,
// smtp.SendMail handles the upgrade automatically — but we call this path for
// both so the config is unambiguous: UseTLS=true always means an encrypted connection.
func sendMailTLS(addr, host string, auth smtp.Auth, from string, to []string, msg []byte) error {
	tlsConfig := &tls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		// Fall back to STARTTLS via the standard smtp.SendMail path (port 587 pattern)
		return smtp.SendMail(addr, auth, from, to, msg)
	}
	defer conn.Close()

	hostname, _, _ := net.SplitHostPort(addr)
	c, err := smtp.NewClient(conn, hostname)
	if err != nil {
		return fmt.Errorf("smtp new client: %w", err)
	}
	defer c.Quit() //nolint:errcheck

	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(from); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	for _, addr := range to {
		if err := c.Rcpt(addr); err != nil {
			return fmt.Errorf("smtp RCPT TO %s: %w", addr, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	return w.Close()
}
