package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestMeHandler_ProfileShape(t *testing.T) {
	_, r := newSessionRouter(t, trainerUser())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/me", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	user, _ := dataField(w, "user").(map[string]interface{})
	if user["email"] != "tina@example.com" {
		t.Errorf("email = %v", user["email"])
	}
	if user["system_role"] != "workspace_user" {
		t.Errorf("system_role = %v", user["system_role"])
	}
	if user["active_workspace_role"] != "trainer" {
		t.Errorf("active_workspace_role = %v", user["active_workspace_role"])
	}
	if user["is_admin"] != false {
		t.Errorf("is_admin = %v, want false", user["is_admin"])
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Error("profile response must not carry password material")
	}
}

func TestMeHandler_OwnerAdminIsAdmin(t *testing.T) {
	owner := trainerUser()
	owner.ActiveWorkspaceRole = "owner_admin"
	_, r := newSessionRouter(t, owner)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/me", nil))

	user, _ := dataField(w, "user").(map[string]interface{})
	if user["is_admin"] != true {
		t.Errorf("is_admin = %v, want true for owner_admin", user["is_admin"])
	}
}

func TestMeHandler_Unauthenticated(t *testing.T) {
	_, r := newSessionRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestMyWorkspacesHandler_MemberSeesOwnWithRoles(t *testing.T) {
	mock, r := newSessionRouter(t, trainerUser())

	rows := sqlmock.NewRows(append(append([]string{}, wsSQLCols...), "role")).
		AddRow("ws-1", "Iron Temple", "owner-9", "approved", "", time.Now(), time.Now(), "trainer").
		AddRow("ws-2", "South Branch", "owner-9", "pending", "", time.Now(), time.Now(), "owner_admin")
	mock.ExpectQuery("SELECT (.+) FROM workspaces").WillReturnRows(rows)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/me/workspaces", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	workspaces, _ := dataField(w, "workspaces").([]interface{})
	if len(workspaces) != 2 {
		t.Fatalf("len(workspaces) = %d, want 2", len(workspaces))
	}
	first, _ := workspaces[0].(map[string]interface{})
	if first["role"] != "trainer" || first["approval_status"] != "approved" {
		t.Errorf("first workspace = %v", first)
	}
}

func TestMyWorkspacesHandler_PlatformAdminSeesAll(t *testing.T) {
	mock, r := newSessionRouter(t, platformAdminUser())

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM workspaces").
		WillReturnRows(sqlmock.NewRows(wsSQLCols).
			AddRow("ws-3", "North Branch", "owner-2", "rejected", "incomplete details", time.Now(), time.Now()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/me/workspaces", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	workspaces, _ := dataField(w, "workspaces").([]interface{})
	if len(workspaces) != 1 {
		t.Fatalf("len(workspaces) = %d, want 1", len(workspaces))
	}
	first, _ := workspaces[0].(map[string]interface{})
	if first["role"] != "" {
		t.Errorf("platform admin role = %v, want empty", first["role"])
	}
	if first["approval_note"] != "incomplete details" {
		t.Errorf("approval_note = %v", first["approval_note"])
	}
}

func TestRouteHandler(t *testing.T) {
	tests := []struct {
		name string
		user func() (admin bool)
		from string
		want string
	}{
		{"trainer no from", func() bool { return false }, "", "/trainer/workspaces"},
		{"trainer matching from", func() bool { return false }, "/trainer/students", "/trainer/students"},
		{"trainer denied login from", func() bool { return false }, "/login", "/trainer/workspaces"},
		{"trainer denied forbidden from", func() bool { return false }, "/forbidden", "/trainer/workspaces"},
		{"trainer cross-area from", func() bool { return false }, "/admin/users", "/trainer/workspaces"},
		{"admin matching from", func() bool { return true }, "/admin/users", "/admin/users"},
		{"admin cross-area from", func() bool { return true }, "/trainer/students", "/admin/workspaces"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := trainerUser()
			if tt.user() {
				user = platformAdminUser()
			}
			_, r := newSessionRouter(t, user)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/me/route?from="+tt.from, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if got := dataField(w, "path"); got != tt.want {
				t.Errorf("path = %v, want %s", got, tt.want)
			}
		})
	}
}
