package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"taskflow-api/internal/models"
	"taskflow-api/internal/policy"
	"taskflow-api/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TaskHandler serves the task lifecycle endpoints.
type TaskHandler struct {
	DB  *gorm.DB
	Svc *service.TaskService
}

// CreateTaskRequest represents the JSON payload for creating a task
type CreateTaskRequest struct {
	Title                  string              `json:"title" binding:"required"`
	Description            string              `json:"description"`
	AssigneeID             *string             `json:"assignee_id"`
	TeamID                 *string             `json:"team_id"`
	OrganizationID         *string             `json:"organization_id"`
	Status                 models.TaskStatus   `json:"status"`
	Priority               models.TaskPriority `json:"priority"`
	DueDate                *time.Time          `json:"due_date"`
	AccountabilityPartners []string            `json:"accountability_partners"`
}

// UpdateTaskRequest represents the payload for updating a task. Assignee and
// due date accept an explicit null to clear the stored value.
type UpdateTaskRequest struct {
	Title                  *string                     `json:"title"`
	Description            *string                     `json:"description"`
	AssigneeID             service.Nullable[string]    `json:"assignee_id"`
	Status                 *models.TaskStatus          `json:"status"`
	Priority               *models.TaskPriority        `json:"priority"`
	DueDate                service.Nullable[time.Time] `json:"due_date"`
	CompletedAt            *time.Time                  `json:"completed_at"`
	AccountabilityPartners *[]string                   `json:"accountability_partners"`
}

// TaskResponse decorates a task with the advisory edit flag.
type TaskResponse struct {
	models.Task
	CanEdit bool `json:"can_edit"`
}

func (h *TaskHandler) taskResponse(user *models.User, task *models.Task) TaskResponse {
	return TaskResponse{Task: *task, CanEdit: h.Svc.CanEdit(user, task)}
}

// ListTasks handles GET /api/tasks.
// Query params: task_type (view category), priority, due_date (YYYY-MM-DD),
// search (title/description substring).
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	query := service.ListQuery{
		Category: policy.ViewCategory(c.Query("task_type")),
		Priority: models.TaskPriority(c.Query("priority")),
		Search:   c.Query("search"),
	}
	if raw := c.Query("due_date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "due_date must be YYYY-MM-DD"})
			return
		}
		query.DueDate = &day
	}

	tasks, err := h.Svc.List(user, query)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, h.taskResponse(user, &tasks[i]))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": resp, "count": len(resp)})
}

// GetTaskByID handles GET /api/tasks/:id
func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}
	task, err := h.Svc.Get(user, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.taskResponse(user, task))
}

// CreateTask handles POST /api/tasks. Accepts JSON, or multipart form data
// when an attachment file rides along.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	var in service.CreateTaskInput
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		parsed, err := parseMultipartCreate(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		in = *parsed
		if in.Attachment != nil {
			if closer, ok := in.Attachment.Reader.(io.Closer); ok {
				defer closer.Close()
			}
		}
	} else {
		var req CreateTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		in = service.CreateTaskInput{
			Title:          req.Title,
			Description:    req.Description,
			AssigneeID:     req.AssigneeID,
			TeamID:         req.TeamID,
			OrganizationID: req.OrganizationID,
			Status:         req.Status,
			Priority:       req.Priority,
			DueDate:        req.DueDate,
			PartnerEmails:  req.AccountabilityPartners,
		}
	}

	task, err := h.Svc.Create(user, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.taskResponse(user, task))
}

// UpdateTask handles PUT /api/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.Svc.Update(user, c.Param("id"), service.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		AssigneeID:    req.AssigneeID,
		Status:        req.Status,
		Priority:      req.Priority,
		DueDate:       req.DueDate,
		CompletedAt:   req.CompletedAt,
		PartnerEmails: req.AccountabilityPartners,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.taskResponse(user, task))
}

// DeleteTask handles DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}
	taskID := c.Param("id")
	if err := h.Svc.Delete(user, taskID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
		"id":      taskID,
	})
}

// DownloadAttachment handles GET /api/tasks/:id/attachments/:attachmentId
func (h *TaskHandler) DownloadAttachment(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}
	att, rc, err := h.Svc.OpenAttachment(user, c.Param("attachmentId"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, att.Size, att.ContentType, rc, map[string]string{
		"Content-Disposition": `attachment; filename="` + att.FileName + `"`,
	})
}

// MyToday handles GET /api/my-today: open tasks due today from the
// user's full visible set.
func (h *TaskHandler) MyToday(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}
	tasks, err := h.Svc.DailyView(user)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, h.taskResponse(user, &tasks[i]))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": resp, "count": len(resp)})
}

func parseMultipartCreate(c *gin.Context) (*service.CreateTaskInput, error) {
	in := service.CreateTaskInput{
		Title:         c.PostForm("title"),
		Description:   c.PostForm("description"),
		Status:        models.TaskStatus(c.PostForm("status")),
		Priority:      models.TaskPriority(c.PostForm("priority")),
		PartnerEmails: c.PostFormArray("accountability_partners"),
	}
	if v := c.PostForm("assignee_id"); v != "" {
		in.AssigneeID = &v
	}
	if v := c.PostForm("team_id"); v != "" {
		in.TeamID = &v
	}
	if v := c.PostForm("organization_id"); v != "" {
		in.OrganizationID = &v
	}
	if v := c.PostForm("due_date"); v != "" {
		due, err := parseDateFlexible(v)
		if err != nil {
			return nil, err
		}
		in.DueDate = &due
	}

	fh, err := c.FormFile("attachment_file")
	if err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		// The service validates size and MIME before anything is written.
		in.Attachment = &service.AttachmentInput{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Reader:      f,
		}
	}
	return &in, nil
}

func parseDateFlexible(raw string) (time.Time, error) {
	layouts := []string{time.RFC3339, "2006-01-02"}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
