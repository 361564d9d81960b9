package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/notification"
)

const callerID = "11111111-1111-1111-1111-111111111111"

// memRepo backs the real service so defaults and validation are exercised.
type memRepo struct {
	prefs map[string]*notification.Preferences
	err   error
}

func (r *memRepo) Get(_ context.Context, userID string) (*notification.Preferences, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.prefs[userID]
	if !ok {
		return nil, notification.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) Upsert(_ context.Context, p *notification.Preferences) error {
	if r.err != nil {
		return r.err
	}
	cp := *p
	r.prefs[p.UserID] = &cp
	return nil
}

func newRouter(repo *memRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	fakeAuth := func(c *gin.Context) {
		c.Set("userID", callerID)
		c.Next()
	}
	RegisterRoutes(r.Group("/v1"), NewHandler(notification.NewService(repo)), fakeAuth)
	return r
}

func do(r *gin.Engine, method, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/v1/me/notification-preferences", nil)
	} else {
		req = httptest.NewRequest(method, "/v1/me/notification-preferences", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGet_DefaultsWithoutStoredRow(t *testing.T) {
	r := newRouter(&memRepo{prefs: map[string]*notification.Preferences{}})

	w := do(r, http.MethodGet, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body PreferencesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.EmailInvitations)
	assert.False(t, body.SMSInvitations)
	assert.True(t, body.SMSCancellations)
	assert.Equal(t, 30, body.ReminderTimeMinutes)
	assert.False(t, body.QuietHoursEnabled)
	assert.Nil(t, body.QuietHoursStart)
	assert.Contains(t, w.Body.String(), `"quiet_hours_end":null`)
}

func TestUpdate(t *testing.T) {
	repo := &memRepo{prefs: map[string]*notification.Preferences{}}
	r := newRouter(repo)

	w := do(r, http.MethodPut, `{
		"sms_invitations": true,
		"reminder_time_minutes": 15,
		"quiet_hours_enabled": true,
		"quiet_hours_start": "22:00",
		"quiet_hours_end": "07:00"
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body PreferencesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.SMSInvitations)
	assert.True(t, body.EmailUpdates, "omitted switches keep their default")
	assert.Equal(t, 15, body.ReminderTimeMinutes)
	require.NotNil(t, body.QuietHoursStart)
	assert.Equal(t, "22:00", *body.QuietHoursStart)

	stored := repo.prefs[callerID]
	require.NotNil(t, stored)
	assert.Equal(t, 15, stored.ReminderMinutes)
	assert.Equal(t, "07:00", stored.QuietHoursEnd.String())

	// A later GET returns what was saved.
	w = do(r, http.MethodGet, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 15, body.ReminderTimeMinutes)
	assert.True(t, body.QuietHoursEnabled)
}

func TestUpdate_Rejects(t *testing.T) {
	tests := map[string]string{
		"malformed json":        `{"sms_invitations": `,
		"wrong type":            `{"sms_invitations": "yes"}`,
		"lead too short":        `{"reminder_time_minutes": 0}`,
		"lead too long":         `{"reminder_time_minutes": 1441}`,
		"bad clock":             `{"quiet_hours_start": "10pm"}`,
		"enabled without range": `{"quiet_hours_enabled": true}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			repo := &memRepo{prefs: map[string]*notification.Preferences{}}
			w := do(newRouter(repo), http.MethodPut, body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Empty(t, repo.prefs)
		})
	}
}

func TestStorageFailure(t *testing.T) {
	r := newRouter(&memRepo{err: errors.New("db down")})

	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodGet, "").Code)
	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodPut, `{"sms_updates": true}`).Code)
}
