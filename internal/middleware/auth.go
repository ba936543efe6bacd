package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"productpulse/internal/auth"
	apierrors "productpulse/internal/errors"
	"productpulse/internal/infrastructure"
	"productpulse/internal/services"
)

// Page routes handled by the gate
const (
	LoginPath     = "/login"
	DashboardPath = "/product-dashboard"
)

// TokenValidator verifies session tokens
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

type claimsKey struct{}

// WithClaims stores verified session claims in the context
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims stored by the auth gate
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok && claims != nil
}

// TokenFromRequest reads the session token from the cookie, then from an
// Authorization: Bearer header.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if tokens := tokenCandidates(r, cookieName); len(tokens) > 0 {
		return tokens[0]
	}
	return ""
}

// tokenCandidates lists the cookie token and the bearer token, in that order,
// skipping absent ones
func tokenCandidates(r *http.Request, cookieName string) []string {
	var tokens []string
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		tokens = append(tokens, c.Value)
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if token = strings.TrimSpace(token); ok && strings.EqualFold(scheme, "bearer") && token != "" {
		tokens = append(tokens, token)
	}
	return tokens
}

// AuthGate protects the API and routes the login and dashboard pages.
//
//   - "/" redirects to the login page.
//   - the login page redirects to the dashboard when the session is valid.
//   - dashboard pages redirect to the login page without a valid session.
//   - API routes answer 401 without a valid session, except public paths.
//
// Everything else, such as static assets, passes through.
type AuthGate struct {
	validator    TokenValidator
	cookieName   string
	metrics      *infrastructure.BusinessMetrics
	logger       *slog.Logger
	publicPaths  map[string]struct{}
	publicPrefix []string
}

// NewAuthGate creates the gate. metrics may be nil.
func NewAuthGate(validator TokenValidator, cookieName string, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *AuthGate {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthGate{
		validator:  validator,
		cookieName: cookieName,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "auth_gate")),
		publicPaths: map[string]struct{}{
			"/api/auth/login":  {},
			"/api/auth/logout": {},
			"/api/version":     {},
		},
		publicPrefix: []string{"/api/health"},
	}
}

// Handler returns the middleware handler function
func (g *AuthGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		switch {
		case path == "/":
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return

		case path == LoginPath:
			if _, err := g.authenticate(r); err == nil {
				http.Redirect(w, r, DashboardPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
			return

		case path == DashboardPath || strings.HasPrefix(path, DashboardPath+"/"):
			claims, err := g.authenticate(r)
			if err != nil {
				g.logger.DebugContext(r.Context(), "redirecting unauthenticated page request",
					slog.String("path", path))
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(g.withSession(r.Context(), claims)))
			return

		case strings.HasPrefix(path, "/api/"):
			if g.isPublic(path) {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := g.authenticate(r)
			if err != nil {
				g.reject(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(g.withSession(r.Context(), claims)))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authenticate accepts the first candidate token that validates, so a stale
// cookie does not shadow a valid bearer token. The first failure is reported.
func (g *AuthGate) authenticate(r *http.Request) (*auth.Claims, error) {
	tokens := tokenCandidates(r, g.cookieName)
	if len(tokens) == 0 {
		return g.validator.ValidateToken("")
	}

	var firstErr error
	for _, token := range tokens {
		claims, err := g.validator.ValidateToken(token)
		if err == nil {
			return claims, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

func (g *AuthGate) withSession(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = WithClaims(ctx, claims)
	return infrastructure.WithUser(ctx, claims.Username)
}

func (g *AuthGate) isPublic(path string) bool {
	if _, ok := g.publicPaths[path]; ok {
		return true
	}
	for _, prefix := range g.publicPrefix {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (g *AuthGate) reject(w http.ResponseWriter, r *http.Request, err error) {
	reason := "invalid"
	detail := "Authentication required"
	switch {
	case TokenFromRequest(r, g.cookieName) == "":
		reason = "missing"
	case errors.Is(err, services.ErrSessionExpired):
		reason = "expired"
		detail = "Session expired, please sign in again"
	}

	g.metrics.RecordAuthFailure(r.Context(), reason)
	g.logger.WarnContext(r.Context(), "unauthorized API request",
		slog.String("path", r.URL.Path),
		slog.String("reason", reason),
		slog.String("remote_addr", r.RemoteAddr))

	writeProblem(w, r, http.StatusUnauthorized, apierrors.TypeAuthUnauthorized, "Unauthorized", detail)
}
