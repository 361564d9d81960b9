package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/auth"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/user"
)

type fakeService struct {
	user.Service
	users       map[string]*user.User
	lastUpdate  user.UpdateUserRequest
	registerErr error
}

func (f *fakeService) Register(_ context.Context, email, _, displayName, timezone string) (*user.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &user.User{ID: "new", Email: email, DisplayName: &displayName, Timezone: timezone, IsActive: true}, nil
}

func (f *fakeService) Login(_ context.Context, email, password string) (*user.User, error) {
	for _, u := range f.users {
		if u.Email == email && password == "password123" {
			return u, nil
		}
	}
	return nil, user.ErrInvalidCredentials
}

func (f *fakeService) GetByID(_ context.Context, id string) (*user.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (f *fakeService) Update(_ context.Context, id string, req user.UpdateUserRequest) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	f.lastUpdate = req
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, user.ErrInvalidTimezone
		}
		u.Timezone = *req.Timezone
	}
	return u, nil
}

func setup(t *testing.T) (*gin.Engine, *fakeService, *auth.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &fakeService{users: map[string]*user.User{
		"u1": {ID: "u1", Email: "amina@example.com", Timezone: "UTC", IsActive: true},
	}}
	jwt := auth.NewJWTManager("secret", time.Minute)
	h := NewHandler(svc, jwt)

	r := gin.New()
	RegisterRoutes(r.Group("/v1"), h, auth.AuthRequired(jwt), func(c *gin.Context) { c.Next() })
	return r, svc, jwt
}

func do(r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	r, svc, _ := setup(t)

	w := do(r, http.MethodPost, "/v1/auth/register", RegisterRequest{
		Email: "new@example.com", Password: "password123", DisplayName: "New",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "new@example.com", resp.User.Email)

	w = do(r, http.MethodPost, "/v1/auth/register", RegisterRequest{Email: "bad", Password: "short"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.registerErr = user.ErrEmailAlreadyUsed
	w = do(r, http.MethodPost, "/v1/auth/register", RegisterRequest{
		Email: "new@example.com", Password: "password123", DisplayName: "New",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	svc.registerErr = user.ErrInvalidTimezone
	w = do(r, http.MethodPost, "/v1/auth/register", RegisterRequest{
		Email: "new@example.com", Password: "password123", DisplayName: "New", Timezone: "Mars/Base",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginAndMe(t *testing.T) {
	r, _, jwt := setup(t)

	w := do(r, http.MethodPost, "/v1/auth/login", LoginRequest{Email: "amina@example.com", Password: "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/v1/auth/login", LoginRequest{Email: "amina@example.com", Password: "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var login LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	claims, err := jwt.ParseAndValidate(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "UTC", claims.Timezone)

	w = do(r, http.MethodGet, "/v1/me", nil, login.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	var me MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "amina@example.com", me.User.Email)

	w = do(r, http.MethodGet, "/v1/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateMe(t *testing.T) {
	r, svc, jwt := setup(t)
	token, err := jwt.GenerateAccessToken(auth.Identity{UserID: "u1", Email: "amina@example.com"})
	require.NoError(t, err)

	zone := "Africa/Nairobi"
	w := do(r, http.MethodPatch, "/v1/me", UpdateMeRequest{Timezone: &zone}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Africa/Nairobi", svc.users["u1"].Timezone)
	assert.Nil(t, svc.lastUpdate.IsSystemAdmin, "users cannot promote themselves")

	bad := "Mars/Base"
	w = do(r, http.MethodPatch, "/v1/me", UpdateMeRequest{Timezone: &bad}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	phone := "not-a-phone"
	w = do(r, http.MethodPatch, "/v1/me", UpdateMeRequest{PhoneNumber: &phone}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
