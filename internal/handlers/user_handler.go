package handlers

import (
	"errors"
	"net/http"

	"devconnect-api/internal/database"
	"devconnect-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetAllUsers returns all users as public profiles (protected)
// GET /api/users
func GetAllUsers(c *gin.Context) {
	var users []models.User
	if err := database.GetDB().Find(&users).Error; err != nil {
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
		"count":   len(resp),
	})
}

// GetUser returns one user's public profile
// GET /api/users/:id
func GetUser(c *gin.Context) {
	var user models.User
	err := database.GetDB().Where("id = ?", c.Param("id")).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "User not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch user",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user.Public(),
	})
}
