package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"taskflow-api/internal/auth"
	"taskflow-api/internal/middleware"
	"taskflow-api/internal/models"
	"taskflow-api/internal/notify"
	"taskflow-api/internal/service"
	"taskflow-api/internal/storage"
	"taskflow-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTaskRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	svc := service.NewTaskService(db, store, notify.NopDispatcher{}, zap.NewNop().Sugar())
	h := &TaskHandler{DB: db, Svc: svc}

	r := gin.New()
	r.Use(middleware.JWTAuthMiddleware())
	r.GET("/api/tasks", h.ListTasks)
	r.POST("/api/tasks", h.CreateTask)
	r.PUT("/api/tasks/:id", h.UpdateTask)
	r.DELETE("/api/tasks/:id", h.DeleteTask)
	return r, db
}

func seedHandlerUser(t *testing.T, db *gorm.DB, id, email string) string {
	t.Helper()
	require.NoError(t, db.Create(&models.User{ID: id, Email: email, Username: id, Password: "x"}).Error)
	token, err := auth.GenerateToken(id, email)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateTask_Success(t *testing.T) {
	r, db := newTaskRouter(t)
	token := seedHandlerUser(t, db, "u-1", "alice@handler.test")

	w := doJSON(t, r, http.MethodPost, "/api/tasks", token, map[string]any{
		"title":       "Test Task",
		"description": "Desc",
		"priority":    "high",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "u-1", created.OwnerID)
	require.Equal(t, models.PriorityHigh, created.Priority)
	require.True(t, created.CanEdit)
}

func TestCreateTask_AssignmentForbiddenForMember(t *testing.T) {
	r, db := newTaskRouter(t)
	token := seedHandlerUser(t, db, "frank", "frank@handler.test")
	seedHandlerUser(t, db, "gina", "gina@handler.test")
	require.NoError(t, db.Create(&models.Organization{ID: "org1", Name: "Org"}).Error)
	for _, id := range []string{"frank", "gina"} {
		require.NoError(t, db.Create(&models.Membership{
			ID: uuid.NewString(), UserID: id, OrganizationID: "org1", Role: models.OrgRoleMember,
		}).Error)
	}

	w := doJSON(t, r, http.MethodPost, "/api/tasks", token, map[string]any{
		"title":           "Delegate",
		"assignee_id":     "gina",
		"organization_id": "org1",
	})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "You must be an admin or manager to assign tasks.")
}

func TestCreateTask_MultipartAttachment(t *testing.T) {
	r, db := newTaskRouter(t)
	token := seedHandlerUser(t, db, "u-1", "uploader@handler.test")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "With attachment"))
	require.NoError(t, mw.WriteField("priority", "low"))
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="attachment_file"; filename="notes.txt"`)
	hdr.Set("Content-Type", "text/plain")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, models.PriorityLow, created.Priority)

	var att models.TaskAttachment
	require.NoError(t, db.First(&att, "task_id = ?", created.ID).Error)
	require.Equal(t, "notes.txt", att.FileName)
	require.Equal(t, "text/plain", att.ContentType)
}

func TestListTasks_Categories(t *testing.T) {
	r, db := newTaskRouter(t)
	token := seedHandlerUser(t, db, "u-1", "lister@handler.test")

	w := doJSON(t, r, http.MethodPost, "/api/tasks", token, map[string]any{"title": "One"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/tasks?task_type=owned_by_me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Tasks []TaskResponse `json:"tasks"`
		Count int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)

	w = doJSON(t, r, http.MethodGet, "/api/tasks?task_type=bogus", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTask_CompletedRejected(t *testing.T) {
	r, db := newTaskRouter(t)
	token := seedHandlerUser(t, db, "u-1", "closer@handler.test")

	w := doJSON(t, r, http.MethodPost, "/api/tasks", token, map[string]any{"title": "Close me"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, r, http.MethodPut, "/api/tasks/"+created.ID, token, map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/tasks/"+created.ID, token, map[string]any{"title": "Reopen?"})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "Completed tasks cannot be updated.")

	w = doJSON(t, r, http.MethodDelete, "/api/tasks/"+created.ID, token, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateTask_NullClearsAssignee(t *testing.T) {
	r, db := newTaskRouter(t)
	token := seedHandlerUser(t, db, "u-1", "unassign@handler.test")

	w := doJSON(t, r, http.MethodPost, "/api/tasks", token, map[string]any{
		"title":       "Mine for now",
		"assignee_id": "u-1",
		"due_date":    "2026-09-01T12:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotNil(t, created.AssigneeID)

	// A body without the field leaves the assignee alone.
	w = doJSON(t, r, http.MethodPut, "/api/tasks/"+created.ID, token, map[string]any{"title": "Still mine"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.NotNil(t, updated.AssigneeID)
	require.NotNil(t, updated.DueDate)

	// An explicit null clears it.
	w = doJSON(t, r, http.MethodPut, "/api/tasks/"+created.ID, token, map[string]any{
		"assignee_id": nil,
		"due_date":    nil,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Nil(t, updated.AssigneeID)
	require.Nil(t, updated.DueDate)

	var stored models.Task
	require.NoError(t, db.First(&stored, "id = ?", created.ID).Error)
	require.Nil(t, stored.AssigneeID)
	require.Nil(t, stored.DueDate)
}

func TestDeleteTask_Success(t *testing.T) {
	r, db := newTaskRouter(t)
	token := seedHandlerUser(t, db, "u-1", "deleter@handler.test")

	w := doJSON(t, r, http.MethodPost, "/api/tasks", token, map[string]any{"title": "Ephemeral"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, r, http.MethodDelete, "/api/tasks/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/tasks/"+created.ID, token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
