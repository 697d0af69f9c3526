package handlers

import (
	"net/http"

	"taskflow-api/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CommentHandler serves task comment endpoints.
type CommentHandler struct {
	DB  *gorm.DB
	Svc *service.TaskService
}

// CreateCommentRequest represents the comment payload
type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// ListComments handles GET /api/tasks/:id/comments
func (h *CommentHandler) ListComments(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}
	comments, err := h.Svc.ListComments(user, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}

// CreateComment handles POST /api/tasks/:id/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	comment, err := h.Svc.Comment(user, c.Param("id"), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// DeleteComment handles DELETE /api/tasks/:id/comments/:commentId
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}
	if err := h.Svc.DeleteComment(user, c.Param("commentId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
