package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "productpulse/internal/errors"
	"productpulse/internal/infrastructure"
	"productpulse/internal/shared/testutil"
)

func newTestPageHandler(t *testing.T, files map[string]string) *PageHandler {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	logger, _ := testutil.NewTestLogger(t)
	return NewPageHandler(dir, "9.9.9", logger, apierrors.NewErrorHandler(logger, false))
}

func TestPageHandler_Pages(t *testing.T) {
	handler := newTestPageHandler(t, map[string]string{
		LoginPage:     `<title>Login {{.Version}}</title>`,
		DashboardPage: `<p>Hello {{.Username}}</p>`,
	})

	t.Run("login", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.Login(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		assert.Contains(t, rec.Body.String(), "Login 9.9.9")
	})

	t.Run("dashboard greets the user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/product-dashboard", nil)
		req = req.WithContext(infrastructure.WithUser(req.Context(), "admin"))
		rec := httptest.NewRecorder()
		handler.Dashboard(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Hello admin")
	})
}

func TestPageHandler_MissingPage(t *testing.T) {
	handler := newTestPageHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/product-dashboard", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":404`)
}

func TestPageHandler_Static(t *testing.T) {
	handler := newTestPageHandler(t, map[string]string{
		"static/app.js": `console.log("pulse")`,
	})

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedBody   string
	}{
		{name: "file", path: "/static/app.js", expectedStatus: http.StatusOK, expectedBody: `console.log("pulse")`},
		{name: "directory listing", path: "/static/", expectedStatus: http.StatusNotFound},
		{name: "missing file", path: "/static/missing.js", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.Static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}
}
