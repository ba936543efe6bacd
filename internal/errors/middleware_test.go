package errors

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productpulse/internal/shared/testutil"
)

func TestErrorMiddleware_Handler(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		path      string
		body      string
		wantCode  int
		wantLevel slog.Level
	}{
		{
			name:      "success",
			handler:   func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) },
			path:      "/api/data/summary",
			wantCode:  http.StatusOK,
			wantLevel: slog.LevelInfo,
		},
		{
			name: "client error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			path:      "/api/data/chart?days=x",
			wantCode:  http.StatusBadRequest,
			wantLevel: slog.LevelWarn,
		},
		{
			name:      "panic",
			handler:   func(w http.ResponseWriter, r *http.Request) { panic("bad") },
			path:      "/api/data",
			wantCode:  http.StatusInternalServerError,
			wantLevel: slog.LevelError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			mw := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			r.Header.Set("User-Agent", "pulse-test/1.0")
			mw.Handler(tt.handler).ServeHTTP(w, r)

			assert.Equal(t, tt.wantCode, w.Code)

			var found *testutil.LogRecord
			for _, rec := range logs.GetRecords() {
				if rec.Message == "http request" {
					rec := rec
					found = &rec
				}
			}
			require.NotNil(t, found)
			assert.Equal(t, tt.wantLevel, found.Level)
			assert.Equal(t, int64(tt.wantCode), found.Attrs["status"])
			assert.Equal(t, "pulse-test/1.0", found.Attrs["user_agent"])
			if i := strings.Index(tt.path, "?"); i >= 0 {
				assert.Equal(t, tt.path[i+1:], found.Attrs["query"])
			}
		})
	}
}

func TestErrorMiddleware_RedactsJSONBody(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	mw := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"admin","password":"hunter2"}`))
	r.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(httptest.NewRecorder(), r)

	var body string
	for _, rec := range logs.GetRecords() {
		if v, ok := rec.Attrs["request_body"].(string); ok {
			body = v
		}
	}
	assert.Contains(t, body, "[REDACTED]")
	assert.NotContains(t, body, "hunter2")
	assert.Contains(t, body, "admin")
}

func TestErrorMiddleware_SkipsNonJSONBodies(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	mw := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

	var seen string
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		seen = buf.String()
		w.WriteHeader(http.StatusBadRequest)
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/data/upload", strings.NewReader("PK\x03\x04binary"))
	r.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	handler.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "PK\x03\x04binary", seen, "body still reaches the handler")
	assert.False(t, logs.ContainsAttr("request_body", "PK\x03\x04binary"))
}

func TestSanitizeRequestBody(t *testing.T) {
	assert.Equal(t, "not json", sanitizeRequestBody("not json"))
	assert.Equal(t, `{"token":"[REDACTED]","user":"a"}`, sanitizeRequestBody(`{"token":"t","user":"a"}`))
}

func TestRecoveryMiddleware(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	mw := RecoveryMiddleware(NewErrorHandler(logger, false))

	w := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("exploded")
	})).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, logs.ContainsMessage("panic recovered"))
}

func TestRecoveryMiddleware_RepanicsAbort(t *testing.T) {
	mw := RecoveryMiddleware(NewErrorHandler(nil, false))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
