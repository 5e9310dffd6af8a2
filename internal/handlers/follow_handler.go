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

// FollowHandler serves the follow/unfollow endpoints. Following a user
// dispatches a notification through the notify port; live-delivery failure
// never fails the request.
type FollowHandler struct {
	Notifier *notify.Service
}

// NewFollowHandler constructs a follow handler.
func NewFollowHandler(notifier *notify.Service) *FollowHandler {
	return &FollowHandler{Notifier: notifier}
}

// Follow handles POST /api/follow/:userId
func (h *FollowHandler) Follow(c *gin.Context) {
	currentUserID := c.GetString("user_id")
	fullname := c.GetString("fullname")
	targetID := c.Param("userId")

	if targetID == "" || targetID == currentUserID {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid user ID or cannot follow yourself",
		})
		return
	}

	db := database.GetDB()

	var target models.User
	if err := db.Where("id = ?", targetID).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "User not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to follow user",
		})
		return
	}

	var existing models.Follow
	err := db.Where("follower_id = ? AND following_id = ?", currentUserID, targetID).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "Already following this user",
		})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to follow user",
		})
		return
	}

	follow := models.Follow{
		ID:          uuid.NewString(),
		FollowerID:  currentUserID,
		FollowingID: targetID,
	}
	if err := db.Create(&follow).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to follow user",
		})
		return
	}

	result, _, err := h.Notifier.Notify(targetID, currentUserID, models.NotifyFollow,
		fmt.Sprintf("%s started following you", fullname),
		models.JSONMap{
			"followerId":   currentUserID,
			"followerName": fullname,
		})
	if err != nil {
		// Follow is committed; the notification failing is logged only.
		slog.Warn("follow notification failed", "target", targetID, "error", err)
	}

	var followerCount, followingCount int64
	db.Model(&models.Follow{}).Where("following_id = ?", targetID).Count(&followerCount)
	db.Model(&models.Follow{}).Where("follower_id = ?", currentUserID).Count(&followingCount)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Successfully followed user",
		"data": gin.H{
			"followId":     follow.ID,
			"followedUser": target.Public(),
			"stats": gin.H{
				"followers": followerCount,
				"following": followingCount,
			},
			"notification": gin.H{
				"sent":   result.LiveDelivery,
				"stored": result.Persisted,
			},
		},
	})
}

// Unfollow handles DELETE /api/follow/:userId
func (h *FollowHandler) Unfollow(c *gin.Context) {
	currentUserID := c.GetString("user_id")
	targetID := c.Param("userId")

	if targetID == "" || targetID == currentUserID {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid user ID or cannot unfollow yourself",
		})
		return
	}

	res := database.GetDB().
		Where("follower_id = ? AND following_id = ?", currentUserID, targetID).
		Delete(&models.Follow{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to unfollow user",
		})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Not following this user",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Successfully unfollowed user",
	})
}

// listFollowUsers resolves one side of the follows table to public profiles.
func listFollowUsers(c *gin.Context, matchColumn, selectColumn string) {
	userID := c.Param("id")
	page, limit := pageParams(c, 20)

	db := database.GetDB()
	sub := db.Model(&models.Follow{}).
		Select(selectColumn).
		Where(matchColumn+" = ?", userID)

	var users []models.User
	err := db.Where("id IN (?)", sub).
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&users).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch users",
		})
		return
	}

	resp := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		resp = append(resp, u.Public())
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   resp,
		"page":    page,
		"limit":   limit,
	})
}

// Followers handles GET /api/users/:id/followers
func (h *FollowHandler) Followers(c *gin.Context) {
	listFollowUsers(c, "following_id", "follower_id")
}

// Following handles GET /api/users/:id/following
func (h *FollowHandler) Following(c *gin.Context) {
	listFollowUsers(c, "follower_id", "following_id")
}
