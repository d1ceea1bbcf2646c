package trainer

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/vertex-platform/vertex-backend/internal/config"
)

var reminderSQLCols = []string{
	"id", "workspace_id", "appointment_id", "channel", "remind_at",
	"sent_at", "message", "created_at", "updated_at",
}

func newReminderRouter(t *testing.T) (sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	sqlxDB := sqlx.NewDb(db, "postgres")

	h := NewReminderHandlers(&config.Config{}, db, sqlxDB)

	r := gin.New()
	g := r.Group("", injectUser(trainerUser()))
	g.GET("/reminders", h.ListRemindersHandler())
	g.POST("/reminders", h.CreateReminderHandler())
	g.PUT("/reminders/:id", h.UpdateReminderHandler())
	g.DELETE("/reminders/:id", h.DeleteReminderHandler())

	return mock, r
}

func TestListRemindersHandler_Success(t *testing.T) {
	mock, r := newReminderRouter(t)

	mock.ExpectQuery("SELECT COUNT").WithArgs("ws-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT \\* FROM reminders").
		WillReturnRows(sqlmock.NewRows(reminderSQLCols).
			AddRow("rem-1", "ws-1", "appt-1", "email", time.Now().Add(time.Hour),
				nil, "See you tomorrow", time.Now(), time.Now()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/reminders", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	reminders, _ := dataField(w, "reminders").([]interface{})
	if len(reminders) != 1 {
		t.Fatalf("len(reminders) = %d, want 1", len(reminders))
	}
}

func TestCreateReminderHandler_Success(t *testing.T) {
	mock, r := newReminderRouter(t)

	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WithArgs("appt-1", "ws-1").
		WillReturnRows(sampleAppointmentRow())
	mock.ExpectExec("INSERT INTO reminders").
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reminders", jsonBody(map[string]interface{}{
		"appointment_id": "appt-1",
		"channel":        "whatsapp",
		"remind_at":      time.Now().Add(23 * time.Hour),
		"message":        "Training tomorrow!",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	reminder, _ := dataField(w, "reminder").(map[string]interface{})
	if reminder["channel"] != "whatsapp" {
		t.Errorf("channel = %v, want whatsapp", reminder["channel"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestCreateReminderHandler_InvalidChannel(t *testing.T) {
	_, r := newReminderRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reminders", jsonBody(map[string]interface{}{
		"appointment_id": "appt-1",
		"channel":        "sms",
		"remind_at":      time.Now().Add(time.Hour),
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateReminderHandler_AppointmentNotFound(t *testing.T) {
	mock, r := newReminderRouter(t)

	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WillReturnRows(sqlmock.NewRows(appointmentSQLCols))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reminders", jsonBody(map[string]interface{}{
		"appointment_id": "appt-404",
		"channel":        "email",
		"remind_at":      time.Now().Add(time.Hour),
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUpdateReminderHandler_AlreadySent(t *testing.T) {
	mock, r := newReminderRouter(t)

	mock.ExpectQuery("SELECT \\* FROM reminders").
		WillReturnRows(sqlmock.NewRows(reminderSQLCols).
			AddRow("rem-1", "ws-1", "appt-1", "email", time.Now().Add(-time.Hour),
				time.Now(), "Sent already", time.Now(), time.Now()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/reminders/rem-1", jsonBody(map[string]interface{}{
		"message": "Too late to change",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestUpdateReminderHandler_Reschedule(t *testing.T) {
	mock, r := newReminderRouter(t)

	mock.ExpectQuery("SELECT \\* FROM reminders").
		WillReturnRows(sqlmock.NewRows(reminderSQLCols).
			AddRow("rem-1", "ws-1", "appt-1", "email", time.Now().Add(time.Hour),
				nil, "Original", time.Now(), time.Now()))
	mock.ExpectExec("UPDATE reminders").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/reminders/rem-1", jsonBody(map[string]interface{}{
		"remind_at": time.Now().Add(4 * time.Hour),
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestDeleteReminderHandler_Success(t *testing.T) {
	mock, r := newReminderRouter(t)

	mock.ExpectQuery("SELECT \\* FROM reminders").
		WillReturnRows(sqlmock.NewRows(reminderSQLCols).
			AddRow("rem-1", "ws-1", "appt-1", "email", time.Now().Add(time.Hour),
				nil, "", time.Now(), time.Now()))
	mock.ExpectExec("DELETE FROM reminders").
		WithArgs("rem-1", "ws-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/reminders/rem-1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}
