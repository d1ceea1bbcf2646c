// Package services implements higher-level business logic that coordinates across multiple repositories and external systems.
// The report exporter, for example, orchestrates querying workspace data, rendering it to CSV, storing the file in the configured storage backend, and recording the export metadata in the database — a multi-step operation that spans several domain boundaries.
package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
	"github.com/vertex-platform/vertex-backend/internal/db/repositories"
	"github.com/vertex-platform/vertex-backend/internal/storage"
	"github.com/vertex-platform/vertex-backend/internal/telemetry"
	"github.com/vertex-platform/vertex-backend/pkg/checksum"
)

const (
	// maxExportRows caps how many rows a single export will pull from the
	// database. Workspaces are small (one gym or studio); this is a safety
	// bound, not an expected limit.
	maxExportRows = 50000

	// DownloadURLTTL is how long generated report download links stay valid.
	DownloadURLTTL = 15 * time.Minute
)

// ReportExporter generates CSV exports of workspace data and stores them in
// the configured storage backend.
type ReportExporter struct {
	studentRepo     *repositories.StudentRepository
	appointmentRepo *repositories.AppointmentRepository
	reportRepo      *repositories.ReportRepository
	storageBackend  storage.Storage
}

// NewReportExporter creates a new report exporter
func NewReportExporter(
	studentRepo *repositories.StudentRepository,
	appointmentRepo *repositories.AppointmentRepository,
	reportRepo *repositories.ReportRepository,
	storageBackend storage.Storage,
) *ReportExporter {
	return &ReportExporter{
		studentRepo:     studentRepo,
		appointmentRepo: appointmentRepo,
		reportRepo:      reportRepo,
		storageBackend:  storageBackend,
	}
}

// Generate renders a CSV export of the given kind for a workspace, uploads it
// to storage, and records its metadata. The stored sha256 lets consumers
// verify the file they downloaded matches what was generated.
func (e *ReportExporter) Generate(ctx context.Context, workspaceID, kind, requestedBy string) (*models.Report, error) {
	start := time.Now()

	report, err := e.generate(ctx, workspaceID, kind, requestedBy)

	result := "success"
	if err != nil {
		result = "error"
	}
	telemetry.ReportGenerationsTotal.WithLabelValues(kind, result).Inc()
	telemetry.ReportGenerationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	return report, err
}

func (e *ReportExporter) generate(ctx context.Context, workspaceID, kind, requestedBy string) (*models.Report, error) {
	var (
		data     []byte
		rowCount int
		err      error
	)

	switch kind {
	case models.ReportKindStudents:
		data, rowCount, err = e.renderStudentsCSV(ctx, workspaceID)
	case models.ReportKindAppointments:
		data, rowCount, err = e.renderAppointmentsCSV(ctx, workspaceID)
	default:
		return nil, fmt.Errorf("unknown report kind: %s", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s report: %w", kind, err)
	}

	sha, err := checksum.CalculateSHA256(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to checksum report: %w", err)
	}

	objectKey := fmt.Sprintf("reports/%s/%s-%s.csv", workspaceID, kind, uuid.New().String())
	if _, err := e.storageBackend.Upload(ctx, objectKey, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, fmt.Errorf("failed to upload report: %w", err)
	}

	report := &models.Report{
		WorkspaceID: workspaceID,
		Kind:        kind,
		ObjectKey:   objectKey,
		SHA256:      sha,
		RowCount:    rowCount,
		RequestedBy: requestedBy,
	}
	if err := e.reportRepo.Create(ctx, report); err != nil {
		// The orphaned object is harmless; the next cleanup or bucket
		// lifecycle rule removes it.
		return nil, fmt.Errorf("failed to record report metadata: %w", err)
	}

	return report, nil
}

// DownloadURL returns report metadata together with a time-limited download
// URL for its stored CSV. Returns a nil report when it does not exist in the
// workspace.
func (e *ReportExporter) DownloadURL(ctx context.Context, workspaceID, reportID string) (*models.Report, string, error) {
	report, err := e.reportRepo.GetByID(ctx, workspaceID, reportID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load report: %w", err)
	}
	if report == nil {
		return nil, "", nil
	}

	url, err := e.storageBackend.GetURL(ctx, report.ObjectKey, DownloadURLTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate download URL: %w", err)
	}

	return report, url, nil
}

// List returns a page of report metadata for a workspace, newest first.
func (e *ReportExporter) List(ctx context.Context, workspaceID string, limit, offset int) ([]*models.Report, int, error) {
	return e.reportRepo.List(ctx, workspaceID, limit, offset)
}

// Delete removes a report's metadata row and its stored object.
func (e *ReportExporter) Delete(ctx context.Context, workspaceID, reportID string) error {
	report, err := e.reportRepo.GetByID(ctx, workspaceID, reportID)
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}
	if report == nil {
		return nil
	}

	if err := e.storageBackend.Delete(ctx, report.ObjectKey); err != nil {
		return fmt.Errorf("failed to delete report object: %w", err)
	}

	return e.reportRepo.Delete(ctx, workspaceID, reportID)
}

func (e *ReportExporter) renderStudentsCSV(ctx context.Context, workspaceID string) ([]byte, int, error) {
	students, _, err := e.studentRepo.List(ctx, workspaceID, maxExportRows, 0)
	if err != nil {
		return nil, 0, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "name", "email", "phone", "whatsapp_phone", "active", "notes", "created_at"}); err != nil {
		return nil, 0, err
	}
	for _, s := range students {
		record := []string{
			s.ID,
			s.Name,
			stringOrEmpty(s.Email),
			stringOrEmpty(s.Phone),
			stringOrEmpty(s.WhatsAppPhone),
			strconv.FormatBool(s.Active),
			s.Notes,
			s.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, 0, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), len(students), nil
}

func (e *ReportExporter) renderAppointmentsCSV(ctx context.Context, workspaceID string) ([]byte, int, error) {
	appointments, _, err := e.appointmentRepo.List(ctx, workspaceID, maxExportRows, 0)
	if err != nil {
		return nil, 0, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "student_id", "trainer_user_id", "starts_at", "ends_at", "location", "status", "notes"}); err != nil {
		return nil, 0, err
	}
	for _, a := range appointments {
		record := []string{
			a.ID,
			a.StudentID,
			a.TrainerUserID,
			a.StartsAt.UTC().Format(time.RFC3339),
			a.EndsAt.UTC().Format(time.RFC3339),
			a.Location,
			a.Status,
			a.Notes,
		}
		if err := w.Write(record); err != nil {
			return nil, 0, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), len(appointments), nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
