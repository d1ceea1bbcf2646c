package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
	"github.com/vertex-platform/vertex-backend/internal/db/repositories"
	"github.com/vertex-platform/vertex-backend/internal/storage"
)

// memStorage is an in-memory storage.Storage used to capture uploads.
type memStorage struct {
	objects map[string][]byte
	fail    bool
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (m *memStorage) Upload(ctx context.Context, path string, reader io.Reader, size int64) (*storage.UploadResult, error) {
	if m.fail {
		return nil, io.ErrUnexpectedEOF
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	m.objects[path] = data
	sum := sha256.Sum256(data)
	return &storage.UploadResult{Path: path, Size: int64(len(data)), Checksum: hex.EncodeToString(sum[:])}, nil
}

func (m *memStorage) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	data, ok := m.objects[path]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStorage) Delete(ctx context.Context, path string) error {
	delete(m.objects, path)
	return nil
}

func (m *memStorage) GetURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	return "https://storage.example.com/" + path, nil
}

func (m *memStorage) Exists(ctx context.Context, path string) (bool, error) {
	_, ok := m.objects[path]
	return ok, nil
}

func (m *memStorage) GetMetadata(ctx context.Context, path string) (*storage.FileMetadata, error) {
	data, ok := m.objects[path]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return &storage.FileMetadata{Path: path, Size: int64(len(data))}, nil
}

func newExporter(t *testing.T) (sqlmock.Sqlmock, *memStorage, *ReportExporter) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := newMemStorage()
	sqlxDB := sqlx.NewDb(db, "postgres")
	exporter := NewReportExporter(
		repositories.NewStudentRepository(db),
		repositories.NewAppointmentRepository(db),
		repositories.NewReportRepository(sqlxDB),
		store,
	)
	return mock, store, exporter
}

var studentCols = []string{
	"id", "workspace_id", "name", "email", "phone", "whatsapp_phone",
	"notes", "active", "created_at", "updated_at",
}

func TestReportExporter_GenerateStudents(t *testing.T) {
	mock, store, exporter := newExporter(t)

	email := "sam@example.com"
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT (.+) FROM students").
		WillReturnRows(sqlmock.NewRows(studentCols).
			AddRow("st-1", "ws-1", "Sam Strong", email, nil, "+5511999998888", "", true, time.Now(), time.Now()).
			AddRow("st-2", "ws-1", "Val, the \"Wall\"", nil, nil, nil, "needs pre-pay", false, time.Now(), time.Now()))
	mock.ExpectExec("INSERT INTO reports").
		WillReturnResult(sqlmock.NewResult(1, 1))

	report, err := exporter.Generate(context.Background(), "ws-1", models.ReportKindStudents, "user-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if report.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", report.RowCount)
	}
	if report.Kind != "students" {
		t.Errorf("Kind = %q", report.Kind)
	}
	if !strings.HasPrefix(report.ObjectKey, "reports/ws-1/students-") {
		t.Errorf("ObjectKey = %q", report.ObjectKey)
	}

	data, ok := store.objects[report.ObjectKey]
	if !ok {
		t.Fatal("CSV was not uploaded to storage")
	}
	body := string(data)
	if !strings.HasPrefix(body, "id,name,email,phone,whatsapp_phone,active,notes,created_at\n") {
		t.Errorf("unexpected CSV header: %q", strings.SplitN(body, "\n", 2)[0])
	}
	if !strings.Contains(body, "Sam Strong") || !strings.Contains(body, `"Val, the ""Wall"""`) {
		t.Errorf("CSV body missing or mis-escaped rows: %q", body)
	}

	// Stored checksum must match the uploaded bytes.
	sum := sha256.Sum256(data)
	if report.SHA256 != hex.EncodeToString(sum[:]) {
		t.Errorf("SHA256 = %q does not match uploaded object", report.SHA256)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestReportExporter_GenerateAppointments(t *testing.T) {
	mock, store, exporter := newExporter(t)

	cols := []string{
		"id", "workspace_id", "student_id", "trainer_user_id", "starts_at",
		"ends_at", "location", "status", "notes", "created_at", "updated_at",
	}
	now := time.Now()
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("ap-1", "ws-1", "st-1", "user-1", now, now.Add(time.Hour), "Studio A", "scheduled", "", now, now))
	mock.ExpectExec("INSERT INTO reports").
		WillReturnResult(sqlmock.NewResult(1, 1))

	report, err := exporter.Generate(context.Background(), "ws-1", models.ReportKindAppointments, "user-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if report.RowCount != 1 {
		t.Errorf("RowCount = %d, want 1", report.RowCount)
	}

	body := string(store.objects[report.ObjectKey])
	if !strings.Contains(body, "Studio A") {
		t.Errorf("CSV body missing appointment row: %q", body)
	}
}

func TestReportExporter_UnknownKind(t *testing.T) {
	_, _, exporter := newExporter(t)

	if _, err := exporter.Generate(context.Background(), "ws-1", "sessions", "user-1"); err == nil {
		t.Error("expected an error for an unknown report kind")
	}
}

func TestReportExporter_UploadFailureSurfaces(t *testing.T) {
	mock, store, exporter := newExporter(t)
	store.fail = true

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT (.+) FROM students").
		WillReturnRows(sqlmock.NewRows(studentCols))

	if _, err := exporter.Generate(context.Background(), "ws-1", models.ReportKindStudents, "user-1"); err == nil {
		t.Error("expected an error when the storage upload fails")
	}
}

func TestReportExporter_DownloadURL(t *testing.T) {
	mock, _, exporter := newExporter(t)

	reportCols := []string{"id", "workspace_id", "kind", "object_key", "sha256", "row_count", "requested_by", "created_at"}
	mock.ExpectQuery("SELECT (.+) FROM reports").
		WillReturnRows(sqlmock.NewRows(reportCols).
			AddRow("rp-1", "ws-1", "students", "reports/ws-1/students-x.csv", "abc", 3, "user-1", time.Now()))

	report, url, err := exporter.DownloadURL(context.Background(), "ws-1", "rp-1")
	if err != nil {
		t.Fatalf("DownloadURL: %v", err)
	}
	if report == nil || report.ID != "rp-1" {
		t.Fatalf("report = %+v", report)
	}
	if url != "https://storage.example.com/reports/ws-1/students-x.csv" {
		t.Errorf("url = %q", url)
	}
}

func TestReportExporter_DownloadURL_NotFound(t *testing.T) {
	mock, _, exporter := newExporter(t)

	reportCols := []string{"id", "workspace_id", "kind", "object_key", "sha256", "row_count", "requested_by", "created_at"}
	mock.ExpectQuery("SELECT (.+) FROM reports").
		WillReturnRows(sqlmock.NewRows(reportCols))

	report, url, err := exporter.DownloadURL(context.Background(), "ws-1", "rp-404")
	if err != nil {
		t.Fatalf("DownloadURL: %v", err)
	}
	if report != nil || url != "" {
		t.Errorf("expected nil report for a missing id, got %+v / %q", report, url)
	}
}
