package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"devconnect-api/internal/auth"
	"devconnect-api/internal/database"
	"devconnect-api/internal/models"
	"devconnect-api/internal/notify"
	"devconnect-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupHandlerTest swaps the global DB for an in-memory one and returns a
// notifier with no realtime layer attached.
func setupHandlerTest(t *testing.T) (*gorm.DB, *notify.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db
	return db, notify.NewService(db, nil)
}

func seedUser(t *testing.T, db *gorm.DB, id, name, email string) models.User {
	t.Helper()
	user := models.User{ID: id, FullName: name, Email: email, Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func bearerToken(t *testing.T, userID, name string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, name)
	require.NoError(t, err)
	return "Bearer " + token
}

// doJSON performs one request against the router with an optional JSON body.
func doJSON(t *testing.T, r *gin.Engine, method, path, authHeader string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) map[string]any {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
	return decodeBody(t, w)
}
