package trainer

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/vertex-platform/vertex-backend/internal/config"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
)

var studentSQLCols = []string{
	"id", "workspace_id", "name", "email", "phone", "whatsapp_phone",
	"notes", "active", "created_at", "updated_at",
}

func sampleStudentRow() *sqlmock.Rows {
	return sqlmock.NewRows(studentSQLCols).
		AddRow("stu-1", "ws-1", "Val", "val@example.com", nil, "+5511999998888",
			"prefers mornings", true, time.Now(), time.Now())
}

func newStudentRouter(t *testing.T, user *models.UserWithWorkspaceRole) (sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h := NewStudentHandlers(&config.Config{}, db)

	r := gin.New()
	g := r.Group("", injectUser(user))
	g.GET("/students", h.ListStudentsHandler())
	g.GET("/students/:id", h.GetStudentHandler())
	g.POST("/students", h.CreateStudentHandler())
	g.PUT("/students/:id", h.UpdateStudentHandler())
	g.DELETE("/students/:id", h.DeleteStudentHandler())

	return mock, r
}

func TestListStudentsHandler_ScopedToActiveWorkspace(t *testing.T) {
	mock, r := newStudentRouter(t, trainerUser())

	mock.ExpectQuery("SELECT COUNT").WithArgs("ws-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM students").WithArgs("ws-1", 20, 0).
		WillReturnRows(sampleStudentRow())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/students", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	students, _ := dataField(w, "students").([]interface{})
	if len(students) != 1 {
		t.Fatalf("len(students) = %d, want 1", len(students))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestListStudentsHandler_NoActiveWorkspace(t *testing.T) {
	user := trainerUser()
	user.ActiveWorkspaceID = nil
	_, r := newStudentRouter(t, user)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/students", nil))

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestGetStudentHandler_NotFound(t *testing.T) {
	mock, r := newStudentRouter(t, trainerUser())

	mock.ExpectQuery("SELECT (.+) FROM students").
		WithArgs("stu-404", "ws-1").
		WillReturnRows(sqlmock.NewRows(studentSQLCols))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/students/stu-404", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestCreateStudentHandler_Success(t *testing.T) {
	mock, r := newStudentRouter(t, trainerUser())

	mock.ExpectExec("INSERT INTO students").
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/students", jsonBody(map[string]interface{}{
		"name":           "Val",
		"email":          "val@example.com",
		"whatsapp_phone": "+5511999998888",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	student, _ := dataField(w, "student").(map[string]interface{})
	if student["workspace_id"] != "ws-1" {
		t.Errorf("workspace_id = %v, want ws-1", student["workspace_id"])
	}
	if student["active"] != true {
		t.Errorf("new students should start active")
	}
}

func TestCreateStudentHandler_BadWhatsAppPhone(t *testing.T) {
	_, r := newStudentRouter(t, trainerUser())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/students", jsonBody(map[string]interface{}{
		"name":           "Val",
		"whatsapp_phone": "11 99999-8888",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUpdateStudentHandler_Deactivate(t *testing.T) {
	mock, r := newStudentRouter(t, trainerUser())

	mock.ExpectQuery("SELECT (.+) FROM students").WillReturnRows(sampleStudentRow())
	mock.ExpectExec("UPDATE students").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/students/stu-1", jsonBody(map[string]interface{}{
		"active": false,
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	student, _ := dataField(w, "student").(map[string]interface{})
	if student["active"] != false {
		t.Errorf("active = %v, want false", student["active"])
	}
}

func TestDeleteStudentHandler_Success(t *testing.T) {
	mock, r := newStudentRouter(t, trainerUser())

	mock.ExpectQuery("SELECT (.+) FROM students").WillReturnRows(sampleStudentRow())
	mock.ExpectExec("DELETE FROM students").
		WithArgs("stu-1", "ws-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/students/stu-1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}
