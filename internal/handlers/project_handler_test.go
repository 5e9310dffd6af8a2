package handlers

import (
	"net/http"
	"testing"
	"time"

	"devconnect-api/internal/middleware"
	"devconnect-api/internal/models"
	"devconnect-api/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newProjectRouter(notifier *notify.Service) *gin.Engine {
	r := gin.New()
	h := NewProjectHandler(notifier)
	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware())
	api.POST("/projects", h.Create)
	api.GET("/projects", h.List)
	api.GET("/projects/:id", h.Get)
	api.PUT("/projects/:id", h.Update)
	api.DELETE("/projects/:id", h.Delete)
	return r
}

func TestProjectCreateAndGet(t *testing.T) {
	db, notifier := setupHandlerTest(t)
	seedUser(t, db, "u-1", "Alice", "alice@example.com")
	r := newProjectRouter(notifier)
	token := bearerToken(t, "u-1", "Alice")

	body := requireStatus(t, doJSON(t, r, http.MethodPost, "/api/projects", token,
		map[string]any{"title": "DevConnect", "description": "social for devs", "tags": "go,websocket"}),
		http.StatusCreated)
	project := body["project"].(map[string]any)
	require.Equal(t, "u-1", project["ownerId"])
	projectID := project["id"].(string)

	body = requireStatus(t, doJSON(t, r, http.MethodGet, "/api/projects/"+projectID, token, nil), http.StatusOK)
	require.Equal(t, "DevConnect", body["project"].(map[string]any)["title"])

	requireStatus(t, doJSON(t, r, http.MethodGet, "/api/projects/p-404", token, nil), http.StatusNotFound)

	// Missing title is rejected.
	requireStatus(t, doJSON(t, r, http.MethodPost, "/api/projects", token,
		map[string]any{"description": "no title"}), http.StatusBadRequest)
}

func TestProjectList_OwnerFilter(t *testing.T) {
	db, notifier := setupHandlerTest(t)
	seedUser(t, db, "u-1", "Alice", "alice@example.com")
	seedProject(t, db, "p-1", "u-1", "One")
	seedProject(t, db, "p-2", "u-1", "Two")
	seedProject(t, db, "p-3", "u-2", "Other")
	r := newProjectRouter(notifier)
	token := bearerToken(t, "u-1", "Alice")

	body := requireStatus(t, doJSON(t, r, http.MethodGet, "/api/projects?ownerId=u-1", token, nil), http.StatusOK)
	require.EqualValues(t, 2, body["total"])
	require.Len(t, body["projects"], 2)

	body = requireStatus(t, doJSON(t, r, http.MethodGet, "/api/projects", token, nil), http.StatusOK)
	require.EqualValues(t, 3, body["total"])
}

func TestProjectUpdate_NotifiesCollaborators(t *testing.T) {
	db, notifier := setupHandlerTest(t)
	seedUser(t, db, "u-1", "Alice", "alice@example.com")
	seedUser(t, db, "u-2", "Bob", "bob@example.com")
	seedProject(t, db, "p-1", "u-1", "DevConnect")
	require.NoError(t, db.Create(&models.ProjectCollaborator{
		ProjectID: "p-1", UserID: "u-2", AddedAt: time.Now(),
	}).Error)
	r := newProjectRouter(notifier)

	// Non-owner cannot update.
	requireStatus(t, doJSON(t, r, http.MethodPut, "/api/projects/p-1",
		bearerToken(t, "u-2", "Bob"), map[string]any{"title": "Hijacked"}), http.StatusForbidden)

	requireStatus(t, doJSON(t, r, http.MethodPut, "/api/projects/p-1",
		bearerToken(t, "u-1", "Alice"), map[string]any{"title": "DevConnect v2"}), http.StatusOK)

	var stored models.Notification
	require.NoError(t, db.Where("recipient_id = ? AND type = ?",
		"u-2", models.NotifyProjectUpdate).First(&stored).Error)
	require.Contains(t, stored.Message, "DevConnect v2")
}

func TestProjectDelete_OwnerOnly(t *testing.T) {
	db, notifier := setupHandlerTest(t)
	seedUser(t, db, "u-1", "Alice", "alice@example.com")
	seedProject(t, db, "p-1", "u-1", "DevConnect")
	r := newProjectRouter(notifier)

	requireStatus(t, doJSON(t, r, http.MethodDelete, "/api/projects/p-1",
		bearerToken(t, "u-2", "Bob"), nil), http.StatusForbidden)
	requireStatus(t, doJSON(t, r, http.MethodDelete, "/api/projects/p-1",
		bearerToken(t, "u-1", "Alice"), nil), http.StatusOK)

	var count int64
	db.Model(&models.Project{}).Count(&count)
	require.Zero(t, count)
}
