package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/auth"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/pkg/ratelimit"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/user"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUsers struct {
	user.Service
	users map[string]*user.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func newTestRouter(limiter ratelimit.Limiter) *gin.Engine {
	return NewRouter(Config{
		Logger:      zap.NewNop(),
		Limiter:     limiter,
		DefaultZone: time.UTC,
		UserService: &fakeUsers{},
		JWTManager:  auth.NewJWTManager("secret", time.Minute),
	})
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(nil)

	for _, path := range []string{"/v1/me", "/v1/meetings", "/v1/availability", "/v1/me/notification-preferences"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	r := newTestRouter(ratelimit.NewMemoryLimiter(1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code, "health checks are not limited")
}

func TestRequireSystemAdmin(t *testing.T) {
	users := &fakeUsers{users: map[string]*user.User{
		"admin":    {ID: "admin", IsActive: true, IsSystemAdmin: true},
		"regular":  {ID: "regular", IsActive: true},
		"disabled": {ID: "disabled", IsSystemAdmin: true},
	}}

	tests := []struct {
		name     string
		userID   string
		adminTok bool
		want     int
	}{
		{"admin", "admin", true, http.StatusOK},
		{"admin without claim", "admin", false, http.StatusForbidden},
		{"regular", "regular", false, http.StatusForbidden},
		{"demoted since login", "regular", true, http.StatusForbidden},
		{"disabled", "disabled", true, http.StatusForbidden},
		{"ghost", "ghost", true, http.StatusUnauthorized},
		{"anonymous", "", false, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin", func(c *gin.Context) {
				if tt.userID != "" {
					auth.SetIdentity(c, auth.Identity{UserID: tt.userID, IsSystemAdmin: tt.adminTok})
				}
				c.Next()
			}, RequireSystemAdmin(users), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
			require.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	assert.Contains(t, allowedOrigins(false, ""), "http://localhost:3000")
	assert.Equal(t,
		[]string{"https://a.example.com", "https://b.example.com"},
		allowedOrigins(true, " https://a.example.com,,https://b.example.com "),
	)
}
