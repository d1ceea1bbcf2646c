package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/vertex-platform/vertex-backend/internal/auth"
	"github.com/vertex-platform/vertex-backend/internal/db/repositories"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var userWithRoleCols = []string{
	"id", "email", "name", "password_hash", "system_role",
	"active_workspace_id", "created_at", "updated_at", "active_workspace_role",
}

func newUserRepo(t *testing.T) (*repositories.UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return repositories.NewUserRepository(db), mock
}

func generateTestJWT(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateJWT(userID, "test@example.com", "workspace_user", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return token
}

// newAuthRouter builds a router with AuthMiddleware. A nil repo is safe for
// early-exit paths that abort before any repo call.
func newAuthRouter(userRepo *repositories.UserRepository) *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(userRepo))
	r.GET("/api/v1/me", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	return e
}

// ---------------------------------------------------------------------------
// Rejection paths
// ---------------------------------------------------------------------------

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	r := newAuthRouter(nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	e := decodeEnvelope(t, w)
	if e.Success {
		t.Error("success = true, want false")
	}
	if e.Data["redirect_to"] != RedirectLogin {
		t.Errorf("redirect_to = %v, want %q", e.Data["redirect_to"], RedirectLogin)
	}
	if e.Data["from"] != "/api/v1/me" {
		t.Errorf("from = %v, want /api/v1/me", e.Data["from"])
	}
}

func TestAuthMiddleware_WrongScheme(t *testing.T) {
	r := newAuthRouter(nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_EmptyToken(t *testing.T) {
	r := newAuthRouter(nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer    ")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_GarbageToken(t *testing.T) {
	r := newAuthRouter(nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_UserNotFound(t *testing.T) {
	userRepo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT u.id.*FROM users u").
		WillReturnRows(sqlmock.NewRows(userWithRoleCols))

	r := newAuthRouter(userRepo)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+generateTestJWT(t, "ghost"))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

// ---------------------------------------------------------------------------
// Success path and derived context
// ---------------------------------------------------------------------------

func TestAuthMiddleware_ValidToken(t *testing.T) {
	userRepo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT u.id.*FROM users u").
		WillReturnRows(sqlmock.NewRows(userWithRoleCols).
			AddRow("user-1", "owner@example.com", "Sam Owner", "$2a$12$hash", "workspace_user",
				"ws-1", time.Now(), time.Now(), "owner_admin"))

	var gotIsAdmin bool
	var gotUserID string
	r := gin.New()
	r.Use(AuthMiddleware(userRepo))
	r.GET("/api/v1/me", func(c *gin.Context) {
		gotIsAdmin = IsAdminFromContext(c)
		gotUserID = c.GetString(ContextUserID)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+generateTestJWT(t, "user-1"))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotUserID != "user-1" {
		t.Errorf("user_id = %q, want user-1", gotUserID)
	}
	if !gotIsAdmin {
		t.Error("owner_admin of active workspace should be treated as admin")
	}
}

func TestAuthMiddleware_TrainerIsNotAdmin(t *testing.T) {
	userRepo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT u.id.*FROM users u").
		WillReturnRows(sqlmock.NewRows(userWithRoleCols).
			AddRow("user-2", "trainer@example.com", "Jo Trainer", "$2a$12$hash", "workspace_user",
				"ws-1", time.Now(), time.Now(), "trainer"))

	var gotIsAdmin bool
	r := gin.New()
	r.Use(AuthMiddleware(userRepo))
	r.GET("/api/v1/me", func(c *gin.Context) {
		gotIsAdmin = IsAdminFromContext(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+generateTestJWT(t, "user-2"))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotIsAdmin {
		t.Error("trainer should not be treated as admin")
	}
}
