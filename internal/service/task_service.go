package service

import (
	"encoding/json"
	"errors"
	"io"
	"time"

	"taskflow-api/internal/accountability"
	"taskflow-api/internal/httperr"
	"taskflow-api/internal/models"
	"taskflow-api/internal/notify"
	"taskflow-api/internal/policy"
	"taskflow-api/internal/realtime"
	"taskflow-api/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxAttachmentSize = 5 * 1024 * 1024 // 5 MB

var allowedAttachmentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/svg+xml":   true,
	"application/pdf": true,
	"text/plain":      true,
}

// TaskService is the lifecycle manager for tasks: every mutating operation
// runs through the authorization engine first, and partner/attachment side
// effects happen only once the task write itself has gone through.
type TaskService struct {
	db       *gorm.DB
	store    storage.Store
	notifier notify.Dispatcher
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewTaskService(db *gorm.DB, store storage.Store, notifier notify.Dispatcher, log *zap.SugaredLogger) *TaskService {
	return &TaskService{db: db, store: store, notifier: notifier, log: log, now: time.Now}
}

// AttachmentInput carries an uploaded file with its declared type and size.
type AttachmentInput struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// CreateTaskInput is the payload for creating a task.
type CreateTaskInput struct {
	Title          string
	Description    string
	AssigneeID     *string
	TeamID         *string
	OrganizationID *string
	Status         models.TaskStatus
	Priority       models.TaskPriority
	DueDate        *time.Time
	PartnerEmails  []string
	Attachment     *AttachmentInput
}

// UpdateTaskInput updates a task; absent fields are left untouched. Assignee
// and due date are Nullable so an explicit null clears them. A non-nil
// PartnerEmails replaces the task's whole partner set.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	AssigneeID    Nullable[string]
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	DueDate       Nullable[time.Time]
	CompletedAt   *time.Time
	PartnerEmails *[]string
}

// Create validates input, runs the authorization gate, and persists the
// task together with its attachment and partner set. Validation failures
// and authorization denials leave nothing behind.
func (s *TaskService) Create(user *models.User, in CreateTaskInput) (*models.Task, error) {
	if in.Title == "" {
		return nil, httperr.Validation("Title is required.")
	}
	status := in.Status
	if status == "" {
		status = models.StatusPending
	}
	if !validStatus(status) {
		return nil, httperr.Validation("Invalid task status.")
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !validPriority(priority) {
		return nil, httperr.Validation("Invalid task priority.")
	}

	orgID := in.OrganizationID
	if in.TeamID != nil {
		var team models.Team
		if err := s.db.First(&team, "id = ?", *in.TeamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, httperr.NotFound("Team not found.")
			}
			return nil, err
		}
		// A team-scoped task always carries the team's organization.
		if orgID == nil {
			orgID = &team.OrganizationID
		} else if *orgID != team.OrganizationID {
			return nil, httperr.Validation("Task organization must match the team's organization.")
		}
	}

	if in.Attachment != nil {
		if err := validateAttachment(in.Attachment); err != nil {
			return nil, err
		}
	}
	if err := accountability.CheckPartnerCap(user, in.PartnerEmails, s.now()); err != nil {
		return nil, err
	}
	if err := policy.AuthorizeCreate(s.db, user.ID, in.AssigneeID, orgID); err != nil {
		return nil, err
	}

	task := models.Task{
		ID:             uuid.NewString(),
		Title:          in.Title,
		Description:    in.Description,
		OwnerID:        user.ID,
		AssigneeID:     in.AssigneeID,
		TeamID:         in.TeamID,
		OrganizationID: orgID,
		Status:         status,
		Priority:       priority,
		DueDate:        in.DueDate,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		if in.Attachment != nil {
			ref, err := s.store.Save(in.Attachment.FileName, in.Attachment.Reader)
			if err != nil {
				return err
			}
			att := models.TaskAttachment{
				ID:           uuid.NewString(),
				TaskID:       task.ID,
				FileRef:      ref,
				FileName:     in.Attachment.FileName,
				ContentType:  in.Attachment.ContentType,
				Size:         in.Attachment.Size,
				UploadedByID: user.ID,
			}
			if err := tx.Create(&att).Error; err != nil {
				return err
			}
		}
		if len(in.PartnerEmails) > 0 {
			if _, err := accountability.AttachPartners(tx, task.ID, in.PartnerEmails); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := accountability.EnsureManagerPartnership(s.db, &task); err != nil {
		s.log.Errorw("auto partnership failed", "task_id", task.ID, "error", err)
	}
	if task.AssigneeID != nil && *task.AssigneeID != user.ID {
		s.notifyUser(*task.AssigneeID, notify.TemplateTaskAssigned, map[string]any{
			"task_id": task.ID, "title": task.Title,
		})
	}
	s.broadcast(&task, "task_created")
	return &task, nil
}

// Update applies a partial update behind the update-authorization gate.
// Owner and creation metadata are immutable. A provided partner list is
// replaced wholesale, atomically with the field update.
func (s *TaskService) Update(user *models.User, taskID string, in UpdateTaskInput) (*models.Task, error) {
	task, err := s.load(taskID)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeUpdate(s.db, user.ID, task); err != nil {
		return nil, err
	}
	if in.PartnerEmails != nil {
		if err := accountability.CheckPartnerCap(user, *in.PartnerEmails, s.now()); err != nil {
			return nil, err
		}
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, httperr.Validation("Title is required.")
		}
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.AssigneeID.Set {
		task.AssigneeID = in.AssigneeID.Value
	}
	if in.Status != nil {
		if !validStatus(*in.Status) {
			return nil, httperr.Validation("Invalid task status.")
		}
		task.Status = *in.Status
	}
	if in.Priority != nil {
		if !validPriority(*in.Priority) {
			return nil, httperr.Validation("Invalid task priority.")
		}
		task.Priority = *in.Priority
	}
	if in.DueDate.Set {
		task.DueDate = in.DueDate.Value
	}
	if in.CompletedAt != nil {
		// Set by whoever transitions the status; never derived here.
		task.CompletedAt = in.CompletedAt
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}
		if in.PartnerEmails != nil {
			if err := accountability.ReplacePartners(tx, task.ID, *in.PartnerEmails); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(task, "task_updated")
	return task, nil
}

// Delete removes a task and everything hanging off it: comments,
// attachments (rows and stored files), and partner attachments.
func (s *TaskService) Delete(user *models.User, taskID string) error {
	task, err := s.load(taskID)
	if err != nil {
		return err
	}
	if err := policy.AuthorizeDelete(s.db, user.ID, task); err != nil {
		return err
	}

	var attachments []models.TaskAttachment
	if err := s.db.Where("task_id = ?", taskID).Find(&attachments).Error; err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAttachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAccountability{}).Error; err != nil {
			return err
		}
		return tx.Delete(task).Error
	})
	if err != nil {
		return err
	}

	for _, att := range attachments {
		if err := s.store.Remove(att.FileRef); err != nil {
			s.log.Warnw("stored file removal failed", "ref", att.FileRef, "error", err)
		}
	}
	s.broadcast(task, "task_deleted")
	return nil
}

// Comment adds a comment behind the comment-authorization gate.
func (s *TaskService) Comment(user *models.User, taskID, text string) (*models.TaskComment, error) {
	if text == "" {
		return nil, httperr.Validation("Comment text is required.")
	}
	task, err := s.load(taskID)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeComment(s.db, user.ID, task); err != nil {
		return nil, err
	}
	comment := models.TaskComment{
		ID:       uuid.NewString(),
		TaskID:   task.ID,
		AuthorID: user.ID,
		Text:     text,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments returns a task's comments to anyone allowed to comment.
func (s *TaskService) ListComments(user *models.User, taskID string) ([]models.TaskComment, error) {
	task, err := s.load(taskID)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeComment(s.db, user.ID, task); err != nil {
		return nil, err
	}
	var comments []models.TaskComment
	err = s.db.Where("task_id = ?", taskID).Order("created_at asc, id asc").Find(&comments).Error
	return comments, err
}

// DeleteComment removes a comment; only its author may do so.
func (s *TaskService) DeleteComment(user *models.User, commentID string) error {
	var comment models.TaskComment
	if err := s.db.First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("Comment not found.")
		}
		return err
	}
	if err := policy.AuthorizeCommentDelete(user.ID, &comment); err != nil {
		return err
	}
	return s.db.Delete(&comment).Error
}

// ListQuery scopes a task listing.
type ListQuery struct {
	Category policy.ViewCategory
	Priority models.TaskPriority
	DueDate  *time.Time
	Search   string
}

// List returns the tasks visible to the user under the requested view
// category, narrowed by the optional filters, in stable creation order.
func (s *TaskService) List(user *models.User, query ListQuery) ([]models.Task, error) {
	q, err := policy.VisibleTasks(s.db, user.ID, query.Category)
	if err != nil {
		return nil, err
	}
	if query.Priority != "" {
		if !validPriority(query.Priority) {
			return nil, httperr.Validation("Invalid task priority.")
		}
		q = policy.FilterPriority(q, query.Priority)
	}
	if query.DueDate != nil {
		q = policy.FilterDueDate(q, *query.DueDate)
	}
	if query.Search != "" {
		q = policy.FilterSearch(q, query.Search)
	}
	var tasks []models.Task
	err = policy.OrderByCreation(q).Find(&tasks).Error
	return tasks, err
}

// Get returns a single task if it falls inside the user's default-category
// visible set.
func (s *TaskService) Get(user *models.User, taskID string) (*models.Task, error) {
	q, err := policy.VisibleTasks(s.db, user.ID, policy.ViewDefault)
	if err != nil {
		return nil, err
	}
	var task models.Task
	if err := q.Where("tasks.id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("Task not found.")
		}
		return nil, err
	}
	return &task, nil
}

// DailyView returns the user's visible tasks due today that are still open.
func (s *TaskService) DailyView(user *models.User) ([]models.Task, error) {
	q, err := policy.VisibleTasks(s.db, user.ID, policy.ViewDefault)
	if err != nil {
		return nil, err
	}
	q = policy.FilterDueDate(q, s.now())
	q = q.Where("status IN ?", []models.TaskStatus{models.StatusPending, models.StatusInProgress})
	var tasks []models.Task
	err = policy.OrderByCreation(q).Find(&tasks).Error
	return tasks, err
}

// OpenAttachment streams a stored attachment to anyone who can see the
// owning task. The caller closes the reader.
func (s *TaskService) OpenAttachment(user *models.User, attachmentID string) (*models.TaskAttachment, io.ReadCloser, error) {
	var att models.TaskAttachment
	if err := s.db.First(&att, "id = ?", attachmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, httperr.NotFound("Attachment not found.")
		}
		return nil, nil, err
	}
	if _, err := s.Get(user, att.TaskID); err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(att.FileRef)
	if err != nil {
		return nil, nil, err
	}
	return &att, rc, nil
}

// CanEdit exposes the advisory edit flag for response payloads.
func (s *TaskService) CanEdit(user *models.User, task *models.Task) bool {
	return policy.CanEdit(s.db, user.ID, task)
}

func (s *TaskService) load(taskID string) (*models.Task, error) {
	var task models.Task
	if err := s.db.First(&task, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("Task not found.")
		}
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) notifyUser(userID, template string, data map[string]any) {
	var u models.User
	if err := s.db.First(&u, "id = ?", userID).Error; err != nil {
		return
	}
	s.notifier.Send(template, u.Email, data)
}

// broadcast pushes a task event to every user with a stake in the task:
// owner, assignee, and attached partners.
func (s *TaskService) broadcast(task *models.Task, event string) {
	evt := map[string]any{
		"type":    event,
		"task_id": task.ID,
		"version": 1,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}

	recipients := map[string]struct{}{task.OwnerID: {}}
	if task.AssigneeID != nil {
		recipients[*task.AssigneeID] = struct{}{}
	}
	var partners []models.TaskAccountability
	if err := s.db.Where("task_id = ?", task.ID).Find(&partners).Error; err == nil {
		for _, p := range partners {
			recipients[p.PartnerID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(recipients))
	for userID := range recipients {
		ids = append(ids, userID)
	}
	realtime.GetHub().Publish(payload, ids...)
}

func validateAttachment(att *AttachmentInput) error {
	if att.Size > maxAttachmentSize {
		return httperr.Validation("File size too large. Maximum size is 5MB.")
	}
	if !allowedAttachmentTypes[att.ContentType] {
		return httperr.Validation("Unsupported file type. Allowed types are JPG, PNG, GIF, SVG, PDF, and TXT.")
	}
	return nil
}

func validStatus(s models.TaskStatus) bool {
	switch s {
	case models.StatusPending, models.StatusInProgress, models.StatusCompleted:
		return true
	}
	return false
}

func validPriority(p models.TaskPriority) bool {
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		return true
	}
	return false
}
