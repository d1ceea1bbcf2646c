package trainer

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vertex-platform/vertex-backend/internal/auth"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
	"github.com/vertex-platform/vertex-backend/internal/middleware"
)

func TestMain(m *testing.M) {
	os.Setenv("VTX_JWT_SECRET", "test-trainer-jwt-secret-that-is-32chars")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// injectUser populates the gin context the way AuthMiddleware does. A nil
// user simulates an unauthenticated request reaching the handler.
func injectUser(user *models.UserWithWorkspaceRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.ContextUser, user)
			c.Set(middleware.ContextUserID, user.ID)
			c.Set(middleware.ContextIsAdmin, auth.IsAdmin(
				auth.SystemRole(user.SystemRole),
				auth.WorkspaceRole(user.ActiveWorkspaceRole),
			))
		}
		c.Next()
	}
}

// trainerUser is the default authenticated user for trainer-area tests, with
// ws-1 as the active workspace.
func trainerUser() *models.UserWithWorkspaceRole {
	wsID := "ws-1"
	return &models.UserWithWorkspaceRole{
		User: models.User{
			ID:                "user-1",
			Email:             "tina@example.com",
			Name:              "Tina Trainer",
			SystemRole:        "workspace_user",
			ActiveWorkspaceID: &wsID,
			CreatedAt:         time.Now(),
			UpdatedAt:         time.Now(),
		},
		ActiveWorkspaceRole: "trainer",
	}
}

func jsonBody(v interface{}) *bytes.Buffer {
	b, _ := json.Marshal(v)
	return bytes.NewBuffer(b)
}

func getJSON(resp *httptest.ResponseRecorder) map[string]interface{} {
	var m map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &m)
	return m
}

func dataField(resp *httptest.ResponseRecorder, key string) interface{} {
	data, _ := getJSON(resp)["data"].(map[string]interface{})
	return data[key]
}
