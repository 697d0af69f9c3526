package handlers

import (
	"net/http"

	"taskflow-api/internal/accountability"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PartnerHandler serves accountability partner request endpoints.
type PartnerHandler struct {
	DB *gorm.DB
}

// PartnerRequestBody carries the addressed partner's user ID
type PartnerRequestBody struct {
	PartnerID string `json:"partner_id" binding:"required"`
}

// ListPartnerships handles GET /api/accountability/partners
func (h *PartnerHandler) ListPartnerships(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}
	recs, err := accountability.ListForUser(h.DB, user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"partners": recs, "count": len(recs)})
}

// RequestPartnership handles POST /api/accountability/partners
func (h *PartnerHandler) RequestPartnership(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}
	var req PartnerRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := accountability.Request(h.DB, user.ID, req.PartnerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// AcceptPartnership handles POST /api/accountability/partners/:id/accept
func (h *PartnerHandler) AcceptPartnership(c *gin.Context) {
	h.respond(c, true)
}

// RejectPartnership handles POST /api/accountability/partners/:id/reject
func (h *PartnerHandler) RejectPartnership(c *gin.Context) {
	h.respond(c, false)
}

func (h *PartnerHandler) respond(c *gin.Context, accept bool) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}
	rec, err := accountability.Respond(h.DB, c.Param("id"), user.ID, accept)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
