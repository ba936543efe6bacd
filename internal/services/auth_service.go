package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"productpulse/internal/auth"
	"productpulse/internal/config"
	"productpulse/internal/infrastructure"
)

// dummyHash is compared against when the username is unknown so that both
// failure paths cost one bcrypt comparison.
const dummyHash = "$2a$12$C6UzMDM.H6dfI/f/IKcEeO5v7eH0Q0Q9rV8tVYpC2uW5wVh4w1V0K"

// Session is the result of a successful login
type Session struct {
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	User      auth.User `json:"user"`
}

// AuthService verifies credentials and session tokens
type AuthService struct {
	users   auth.UserStore
	issuer  *auth.TokenIssuer
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// NewAuthService creates an auth service. metrics may be nil.
func NewAuthService(users auth.UserStore, issuer *auth.TokenIssuer, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:   users,
		issuer:  issuer,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "auth_service")),
	}
}

// NewUserStore builds the account store from configuration
func NewUserStore(cfg config.AuthConfig) (*auth.MemoryUserStore, error) {
	users := auth.NewMemoryUserStore()
	if cfg.SeedUser == "" {
		return users, nil
	}
	if _, err := users.Add(cfg.SeedUser, cfg.SeedPasswordHash); err != nil {
		return nil, fmt.Errorf("failed to seed user: %w", err)
	}
	return users, nil
}

// Login checks a username and password and issues a session token
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.metrics.RecordLogin(ctx, false)
		return nil, ErrInvalidCredentials
	}

	user, found, err := s.users.ByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash := dummyHash
	if found {
		hash = user.PasswordHash
	}
	if !auth.VerifyPassword(password, hash) || !found {
		s.metrics.RecordLogin(ctx, false)
		s.logger.WarnContext(ctx, "Login rejected", slog.String("username", username))
		return nil, ErrInvalidCredentials
	}

	token, expires, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLogin(ctx, true)
	s.logger.InfoContext(ctx, "Login succeeded",
		slog.String("username", user.Username),
		slog.Int64("user_id", user.ID))

	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// ValidateToken returns the claims of a valid session token
func (s *AuthService) ValidateToken(token string) (*auth.Claims, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := s.issuer.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// TokenTTL returns how long issued sessions stay valid
func (s *AuthService) TokenTTL() time.Duration {
	return s.issuer.TTL()
}
