package http

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	apierrors "productpulse/internal/errors"
	"productpulse/internal/infrastructure"
)

// Page files expected in the web directory
const (
	LoginPage     = "login.html"
	DashboardPage = "dashboard.html"
	staticDir     = "static"
)

// PageData is passed to every page template
type PageData struct {
	Version  string
	Username string
}

// PageHandler serves the login and dashboard pages and their assets. The
// auth gate decides who reaches which page.
type PageHandler struct {
	webDir       string
	version      string
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPageHandler creates a page handler for webDir
func NewPageHandler(webDir, version string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PageHandler {
	return &PageHandler{
		webDir:       webDir,
		version:      version,
		logger:       logger.With(slog.String("handler", "pages")),
		errorHandler: errorHandler,
	}
}

// Login serves the login page
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.serveHTML(w, r, LoginPage, PageData{Version: h.version})
}

// Dashboard serves the product dashboard
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.serveHTML(w, r, DashboardPage, PageData{Version: h.version, Username: infrastructure.GetUser(r.Context())})
}

// Static serves files below <webDir>/static without directory listings
func (h *PageHandler) Static() http.Handler {
	fs := http.FileServer(http.Dir(filepath.Join(h.webDir, staticDir)))
	return http.StripPrefix("/"+staticDir, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			h.errorHandler.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	}))
}

// serveHTML renders a page template from the web directory
func (h *PageHandler) serveHTML(w http.ResponseWriter, r *http.Request, page string, data PageData) {
	path := filepath.Join(h.webDir, page)
	if _, err := os.Stat(path); err != nil {
		h.logger.WarnContext(r.Context(), "page not found",
			slog.String("page", page),
			slog.String("web_dir", h.webDir))
		h.errorHandler.NotFound(w, r)
		return
	}

	tmpl, err := template.ParseFiles(path)
	if err != nil {
		h.errorHandler.HandleError(w, r, fmt.Errorf("failed to load page %s: %w", page, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := tmpl.Execute(w, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page",
			slog.String("page", page),
			slog.String("error", err.Error()))
	}
}
