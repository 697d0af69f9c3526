package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskflow-api/internal/models"
	"taskflow-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	h := &AuthHandler{DB: db, TrialDays: 7}

	r := gin.New()
	r.POST("/api/register", h.Register)
	r.POST("/api/login", h.Login)
	return r, db
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister_StartsTrial(t *testing.T) {
	r, db := newAuthRouter(t)

	w := postJSON(t, r, "/api/register", map[string]string{
		"email":    "new@auth.test",
		"username": "newuser",
		"password": "super-secret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "new@auth.test").Error)
	require.True(t, user.IsOnTrial)
	require.NotNil(t, user.TrialEndsAt)
	require.NotEqual(t, "super-secret", user.Password)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	r, _ := newAuthRouter(t)

	payload := map[string]string{
		"email":    "dup@auth.test",
		"username": "dup",
		"password": "super-secret",
	}
	require.Equal(t, http.StatusCreated, postJSON(t, r, "/api/register", payload).Code)
	require.Equal(t, http.StatusConflict, postJSON(t, r, "/api/register", payload).Code)
}

func TestLogin_RoundTrip(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := postJSON(t, r, "/api/register", map[string]string{
		"email":    "round@auth.test",
		"username": "round",
		"password": "super-secret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, r, "/api/login", map[string]string{
		"email":    "round@auth.test",
		"password": "super-secret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	w = postJSON(t, r, "/api/login", map[string]string{
		"email":    "round@auth.test",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
