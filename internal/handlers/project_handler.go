package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"devconnect-api/internal/database"
	"devconnect-api/internal/models"
	"devconnect-api/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectHandler serves project CRUD. Updates notify accepted collaborators.
type ProjectHandler struct {
	Notifier *notify.Service
}

// NewProjectHandler constructs a project handler.
func NewProjectHandler(notifier *notify.Service) *ProjectHandler {
	return &ProjectHandler{Notifier: notifier}
}

// ProjectRequest is the create/update payload.
type ProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
}

// Create handles POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	userID := c.GetString("user_id")

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Title is required",
		})
		return
	}

	project := models.Project{
		ID:          uuid.NewString(),
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	}
	if err := database.GetDB().Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to create project",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"project": project,
	})
}

// List handles GET /api/projects (optionally filtered by ownerId)
func (h *ProjectHandler) List(c *gin.Context) {
	page, limit := pageParams(c, 20)

	db := database.GetDB()
	query := db.Model(&models.Project{})
	if ownerID := c.Query("ownerId"); ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to count projects",
		})
		return
	}

	var projects []models.Project
	err := query.Session(&gorm.Session{}).
		Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&projects).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch projects",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"projects": projects,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// fetchProject loads a project or writes the failure envelope.
func fetchProject(c *gin.Context, projectID string) (*models.Project, bool) {
	var project models.Project
	err := database.GetDB().Preload("Collaborators").
		Where("id = ?", projectID).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Project not found",
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to fetch project",
			})
		}
		return nil, false
	}
	return &project, true
}

// Get handles GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	project, ok := fetchProject(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"project": project,
	})
}

// Update handles PUT /api/projects/:id (owner only). Collaborators get a
// project_update notification; failed live pushes are logged, not surfaced.
func (h *ProjectHandler) Update(c *gin.Context) {
	userID := c.GetString("user_id")
	fullname := c.GetString("fullname")

	project, ok := fetchProject(c, c.Param("id"))
	if !ok {
		return
	}
	if project.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "You can only update your own projects",
		})
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Title is required",
		})
		return
	}

	project.Title = req.Title
	project.Description = req.Description
	project.Tags = req.Tags
	if err := database.GetDB().Save(project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to update project",
		})
		return
	}

	for _, collab := range project.Collaborators {
		_, _, err := h.Notifier.Notify(collab.UserID, userID, models.NotifyProjectUpdate,
			fmt.Sprintf("%s updated the project %q", fullname, project.Title),
			models.JSONMap{"projectId": project.ID, "projectTitle": project.Title})
		if err != nil {
			slog.Warn("project update notification failed",
				"project", project.ID, "recipient", collab.UserID, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"project": project,
	})
}

// Delete handles DELETE /api/projects/:id (owner only)
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID := c.GetString("user_id")

	project, ok := fetchProject(c, c.Param("id"))
	if !ok {
		return
	}
	if project.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "You can only delete your own projects",
		})
		return
	}

	if err := database.GetDB().Delete(project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to delete project",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Project deleted successfully",
	})
}
