package handlers

import (
	"errors"
	"net/http"

	"taskflow-api/internal/httperr"
	"taskflow-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// writeError maps a structured failure to its HTTP status. Unclassified
// errors are hidden behind a generic 500 message.
func writeError(c *gin.Context, err error) {
	status := httperr.Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}

// currentUser loads the authenticated user row for the request. The JWT
// middleware guarantees user_id is set; a missing row means the account was
// removed after the token was issued.
func currentUser(c *gin.Context, db *gorm.DB) (*models.User, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return nil, false
	}
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		}
		return nil, false
	}
	return &user, true
}
