package handlers

import (
	"strconv"

	"devconnect-api/internal/apperr"

	"github.com/gin-gonic/gin"
)

// respondError converts a classified error into the JSON failure envelope.
func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{
		"success": false,
		"message": apperr.MessageOf(err),
	})
}

// pageParams reads page/limit query params with sane bounds.
func pageParams(c *gin.Context, defaultLimit int) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
