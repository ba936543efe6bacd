package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productpulse/internal/auth"
	"productpulse/internal/infrastructure"
	"productpulse/internal/services"
	"productpulse/internal/shared/testutil"
)

// stubValidator accepts "good" and reports "old" as expired
type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*auth.Claims, error) {
	switch token {
	case "good":
		return &auth.Claims{UserID: 7, Username: "admin"}, nil
	case "old":
		return nil, services.ErrSessionExpired
	case "":
		return nil, services.ErrUnauthenticated
	default:
		return nil, services.ErrUnauthenticated
	}
}

func TestAuthGate(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	gate := NewAuthGate(stubValidator{}, "token", nil, logger)

	tests := []struct {
		name         string
		path         string
		cookie       string
		bearer       string
		wantStatus   int
		wantLocation string
		wantNext     bool
	}{
		{name: "root redirects to login", path: "/", wantStatus: http.StatusFound, wantLocation: LoginPath},
		{name: "root redirects even with session", path: "/", cookie: "good", wantStatus: http.StatusFound, wantLocation: LoginPath},
		{name: "login page without session", path: LoginPath, wantStatus: http.StatusOK, wantNext: true},
		{name: "login page with session", path: LoginPath, cookie: "good", wantStatus: http.StatusFound, wantLocation: DashboardPath},
		{name: "dashboard without session", path: DashboardPath, wantStatus: http.StatusFound, wantLocation: LoginPath},
		{name: "dashboard subpage with expired session", path: DashboardPath + "/widget", cookie: "old", wantStatus: http.StatusFound, wantLocation: LoginPath},
		{name: "dashboard with session", path: DashboardPath, cookie: "good", wantStatus: http.StatusOK, wantNext: true},
		{name: "api without token", path: "/api/data", wantStatus: http.StatusUnauthorized},
		{name: "api with bad token", path: "/api/data", cookie: "forged", wantStatus: http.StatusUnauthorized},
		{name: "api with cookie", path: "/api/data", cookie: "good", wantStatus: http.StatusOK, wantNext: true},
		{name: "api with bearer token", path: "/api/data/summary", bearer: "good", wantStatus: http.StatusOK, wantNext: true},
		{name: "stale cookie falls back to bearer token", path: "/api/data/summary", cookie: "old", bearer: "good", wantStatus: http.StatusOK, wantNext: true},
		{name: "forged cookie falls back to bearer token", path: DashboardPath, cookie: "forged", bearer: "good", wantStatus: http.StatusOK, wantNext: true},
		{name: "both tokens invalid", path: "/api/data", cookie: "old", bearer: "forged", wantStatus: http.StatusUnauthorized},
		{name: "public login endpoint", path: "/api/auth/login", wantStatus: http.StatusOK, wantNext: true},
		{name: "public health endpoint", path: "/api/health/ready", wantStatus: http.StatusOK, wantNext: true},
		{name: "static asset", path: "/assets/app.js", wantStatus: http.StatusOK, wantNext: true},
		{name: "similar prefix is not the dashboard", path: "/product-dashboards", wantStatus: http.StatusOK, wantNext: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tt.cookie})
			}
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			rec := httptest.NewRecorder()

			gate.Handler(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantNext, nextCalled)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			}
		})
	}
}

func TestAuthGate_SessionInContext(t *testing.T) {
	gate := NewAuthGate(stubValidator{}, "token", nil, nil)

	var claims *auth.Claims
	var user string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ = ClaimsFromContext(r.Context())
		user = infrastructure.GetUser(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "good"})
	gate.Handler(next).ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, claims)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "admin", user)
}

func TestAuthGate_UnauthorizedProblem(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	gate := NewAuthGate(stubValidator{}, "token", nil, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "old"})
	rec := httptest.NewRecorder()
	gate.Handler(http.NotFoundHandler()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Unauthorized", body["title"])
	assert.Equal(t, float64(http.StatusUnauthorized), body["status"])
	assert.Contains(t, body["detail"], "expired")
	assert.True(t, logs.ContainsAttr("reason", "expired"))
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromRequest(req, "token"))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, TokenFromRequest(req, "token"))

	req.Header.Set("Authorization", "bearer  abc ")
	assert.Equal(t, "abc", TokenFromRequest(req, "token"))

	req.AddCookie(&http.Cookie{Name: "token", Value: "from-cookie"})
	assert.Equal(t, "from-cookie", TokenFromRequest(req, "token"), "cookie wins over the header")
	assert.Equal(t, []string{"from-cookie", "abc"}, tokenCandidates(req, "token"))

	req.Header.Set("Authorization", "Bearer ")
	assert.Equal(t, []string{"from-cookie"}, tokenCandidates(req, "token"))
}
