package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "productpulse/internal/errors"
	mw "productpulse/internal/middleware"
	"productpulse/internal/services"
)

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

// CookieSettings controls the session cookie
type CookieSettings struct {
	Name   string
	Secure bool
}

// AuthHandler issues and clears session cookies
type AuthHandler struct {
	service      AuthServiceInterface
	validator    *mw.ValidationMiddleware
	cookie       CookieSettings
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	service AuthServiceInterface,
	validator *mw.ValidationMiddleware,
	cookie CookieSettings,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *AuthHandler {
	return &AuthHandler{
		service:      service,
		validator:    validator,
		cookie:       cookie,
		logger:       logger.With(slog.String("handler", "auth")),
		errorHandler: errorHandler,
	}
}

// Routes returns the auth routes, mounted at /api/auth
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(mw.ContentTypeValidator("application/json")).Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/me", h.Me)
	return r
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	session, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.errorHandler.HandleError(w, r, apierrors.ErrInvalidCredentials)
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(h.service.TokenTTL() / time.Second),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	render.JSON(w, r, map[string]interface{}{
		"status":     "success",
		"user":       session.User,
		"expires_at": session.ExpiresAt,
	})
}

// Logout handles POST /api/auth/logout. It always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"message": "Logged out",
	})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := mw.ClaimsFromContext(r.Context())
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnauthorized)
		return
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"user": map[string]interface{}{
			"id":       claims.UserID,
			"username": claims.Username,
		},
		"expires_at": expiresAt,
	})
}
