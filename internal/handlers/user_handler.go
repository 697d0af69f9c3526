package handlers

import (
	"net/http"
	"time"

	"taskflow-api/internal/entitlement"
	"taskflow-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler serves profile and trial endpoints.
type UserHandler struct {
	DB        *gorm.DB
	TrialDays int
}

// UserResponse is the safe user payload.
type UserResponse struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Username         string     `json:"username"`
	PhoneNumber      string     `json:"phone_number"`
	Address          string     `json:"address"`
	IsOnTrial        bool       `json:"is_on_trial"`
	TrialEndsAt      *time.Time `json:"trial_ends_at"`
	HasPremiumAccess bool       `json:"has_premium_access"`
}

func userResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		Username:         u.Username,
		PhoneNumber:      u.PhoneNumber,
		Address:          u.Address,
		IsOnTrial:        u.IsOnTrial,
		TrialEndsAt:      u.TrialEndsAt,
		HasPremiumAccess: entitlement.HasPremiumAccess(u, time.Now()),
	}
}

// UpdateMeRequest updates profile fields; nil fields are left untouched.
type UpdateMeRequest struct {
	Username    *string `json:"username"`
	PhoneNumber *string `json:"phone_number"`
	Address     *string `json:"address"`
}

// Me handles GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

// UpdateMe handles PUT /api/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if err := h.DB.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

// StartTrial handles POST /api/users/me/trial
func (h *UserHandler) StartTrial(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}
	if err := entitlement.StartTrial(user, time.Now(), h.TrialDays); err != nil {
		writeError(c, err)
		return
	}
	if err := h.DB.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start trial"})
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

// GetAllUsers handles GET /api/users
func (h *UserHandler) GetAllUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, userResponse(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": resp, "count": len(resp)})
}
