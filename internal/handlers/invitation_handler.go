package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"devconnect-api/internal/apperr"
	"devconnect-api/internal/database"
	"devconnect-api/internal/models"
	"devconnect-api/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// invitationTTL is how long a pending invitation stays actionable.
const invitationTTL = 7 * 24 * time.Hour

// InvitationHandler serves the collaboration workflow: owner invites,
// user join-requests, and the accept/reject resolutions. Every step
// dispatches a notification through the notify port.
type InvitationHandler struct {
	Notifier *notify.Service
}

// NewInvitationHandler constructs an invitation handler.
func NewInvitationHandler(notifier *notify.Service) *InvitationHandler {
	return &InvitationHandler{Notifier: notifier}
}

// InviteRequest is the owner-initiated invitation payload.
type InviteRequest struct {
	RecipientID string `json:"recipientId" binding:"required"`
	Message     string `json:"message"`
}

// notifyQuiet dispatches a notification and only logs failures.
func (h *InvitationHandler) notifyQuiet(recipientID, senderID string, typ models.NotificationType, message string, related models.JSONMap) {
	if _, _, err := h.Notifier.Notify(recipientID, senderID, typ, message, related); err != nil {
		slog.Warn("invitation notification failed", "recipient", recipientID, "type", typ, "error", err)
	}
}

// Invite handles POST /api/projects/:id/invitations (owner only)
func (h *InvitationHandler) Invite(c *gin.Context) {
	userID := c.GetString("user_id")
	fullname := c.GetString("fullname")

	project, ok := fetchProject(c, c.Param("id"))
	if !ok {
		return
	}
	if project.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "Only the project owner can send invitations",
		})
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Recipient ID is required",
		})
		return
	}
	if req.RecipientID == userID {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Cannot invite yourself",
		})
		return
	}

	db := database.GetDB()

	var recipient models.User
	if err := db.Where("id = ?", req.RecipientID).First(&recipient).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "User not found",
		})
		return
	}

	var pending int64
	db.Model(&models.ProjectInvitation{}).
		Where("project_id = ? AND recipient_id = ? AND status = ?",
			project.ID, req.RecipientID, models.InvitationPending).
		Count(&pending)
	if pending > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "An invitation is already pending for this user",
		})
		return
	}

	invitation := models.ProjectInvitation{
		ID:          uuid.NewString(),
		ProjectID:   project.ID,
		SenderID:    userID,
		RecipientID: req.RecipientID,
		Kind:        models.InvitationInvite,
		Status:      models.InvitationPending,
		Message:     req.Message,
		ExpiresAt:   time.Now().Add(invitationTTL),
	}
	if err := db.Create(&invitation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to create invitation",
		})
		return
	}

	h.notifyQuiet(req.RecipientID, userID, models.NotifyProjectInvite,
		fmt.Sprintf("%s invited you to collaborate on %q", fullname, project.Title),
		models.JSONMap{"invitationId": invitation.ID, "projectId": project.ID, "projectTitle": project.Title})

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"invitation": invitation,
	})
}

// JoinRequest handles POST /api/projects/:id/join-requests
type JoinRequestBody struct {
	Message string `json:"message"`
}

// RequestJoin handles POST /api/projects/:id/join-requests
func (h *InvitationHandler) RequestJoin(c *gin.Context) {
	userID := c.GetString("user_id")
	fullname := c.GetString("fullname")

	project, ok := fetchProject(c, c.Param("id"))
	if !ok {
		return
	}
	if project.OwnerID == userID {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "You already own this project",
		})
		return
	}

	var req JoinRequestBody
	_ = c.ShouldBindJSON(&req)

	db := database.GetDB()

	var pending int64
	db.Model(&models.ProjectInvitation{}).
		Where("project_id = ? AND sender_id = ? AND status = ?",
			project.ID, userID, models.InvitationPending).
		Count(&pending)
	if pending > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "A request is already pending for this project",
		})
		return
	}

	invitation := models.ProjectInvitation{
		ID:          uuid.NewString(),
		ProjectID:   project.ID,
		SenderID:    userID,
		RecipientID: project.OwnerID,
		Kind:        models.InvitationRequest,
		Status:      models.InvitationPending,
		Message:     req.Message,
		ExpiresAt:   time.Now().Add(invitationTTL),
	}
	if err := db.Create(&invitation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to create request",
		})
		return
	}

	h.notifyQuiet(project.OwnerID, userID, models.NotifyCollaborationRequest,
		fmt.Sprintf("%s wants to collaborate on %q", fullname, project.Title),
		models.JSONMap{"invitationId": invitation.ID, "projectId": project.ID, "projectTitle": project.Title})

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"invitation": invitation,
	})
}

// resolve loads a pending invitation addressed to the caller, expiring it
// on the spot when past its deadline.
func (h *InvitationHandler) resolve(c *gin.Context) (*models.ProjectInvitation, bool) {
	userID := c.GetString("user_id")

	var invitation models.ProjectInvitation
	err := database.GetDB().Where("id = ?", c.Param("id")).First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apperr.New(apperr.NotFound, "Invitation not found"))
		} else {
			respondError(c, apperr.Wrap(apperr.Internal, "Failed to fetch invitation", err))
		}
		return nil, false
	}

	if invitation.RecipientID != userID {
		respondError(c, apperr.New(apperr.Forbidden, "This invitation is not addressed to you"))
		return nil, false
	}
	if invitation.Status != models.InvitationPending {
		respondError(c, apperr.New(apperr.Conflict, "Invitation has already been resolved"))
		return nil, false
	}
	if time.Now().After(invitation.ExpiresAt) {
		database.GetDB().Model(&invitation).Update("status", models.InvitationExpired)
		respondError(c, apperr.New(apperr.Conflict, "Invitation has expired"))
		return nil, false
	}
	return &invitation, true
}

// collaboratorID is the non-owner party that joins the project on accept.
func collaboratorID(invitation *models.ProjectInvitation) string {
	if invitation.Kind == models.InvitationRequest {
		return invitation.SenderID
	}
	return invitation.RecipientID
}

// Accept handles POST /api/invitations/:id/accept
func (h *InvitationHandler) Accept(c *gin.Context) {
	userID := c.GetString("user_id")
	fullname := c.GetString("fullname")

	invitation, ok := h.resolve(c)
	if !ok {
		return
	}

	db := database.GetDB()
	if err := db.Model(invitation).Update("status", models.InvitationAccepted).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to accept invitation",
		})
		return
	}

	collab := models.ProjectCollaborator{
		ProjectID: invitation.ProjectID,
		UserID:    collaboratorID(invitation),
		AddedAt:   time.Now(),
	}
	if err := db.Create(&collab).Error; err != nil {
		slog.Warn("failed to add collaborator", "project", invitation.ProjectID, "error", err)
	}

	h.notifyQuiet(invitation.SenderID, userID, models.NotifyCollaborationAccepted,
		fmt.Sprintf("%s accepted your collaboration request", fullname),
		models.JSONMap{"invitationId": invitation.ID, "projectId": invitation.ProjectID})

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Invitation accepted",
		"invitation": invitation,
	})
}

// Reject handles POST /api/invitations/:id/reject
func (h *InvitationHandler) Reject(c *gin.Context) {
	userID := c.GetString("user_id")
	fullname := c.GetString("fullname")

	invitation, ok := h.resolve(c)
	if !ok {
		return
	}

	if err := database.GetDB().Model(invitation).
		Update("status", models.InvitationRejected).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to reject invitation",
		})
		return
	}

	h.notifyQuiet(invitation.SenderID, userID, models.NotifyCollaborationRejected,
		fmt.Sprintf("%s declined your collaboration request", fullname),
		models.JSONMap{"invitationId": invitation.ID, "projectId": invitation.ProjectID})

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Invitation rejected",
		"invitation": invitation,
	})
}

// List handles GET /api/invitations?box=inbox|outbox
func (h *InvitationHandler) List(c *gin.Context) {
	userID := c.GetString("user_id")
	page, limit := pageParams(c, 20)

	query := database.GetDB().Model(&models.ProjectInvitation{})
	if c.DefaultQuery("box", "inbox") == "outbox" {
		query = query.Where("sender_id = ?", userID)
	} else {
		query = query.Where("recipient_id = ?", userID)
	}

	var invitations []models.ProjectInvitation
	err := query.Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&invitations).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch invitations",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"invitations": invitations,
		"page":        page,
		"limit":       limit,
	})
}
