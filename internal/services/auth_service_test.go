package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"productpulse/internal/auth"
	"productpulse/internal/config"
	"productpulse/internal/shared/testutil"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuthService(t *testing.T, ttl time.Duration) *AuthService {
	t.Helper()
	hash, err := auth.HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	users, err := NewUserStore(config.AuthConfig{SeedUser: "admin", SeedPasswordHash: hash})
	require.NoError(t, err)

	issuer, err := auth.NewTokenIssuer(testSecret, ttl, "productpulse")
	require.NoError(t, err)

	logger, _ := testutil.NewTestLogger(t)
	return NewAuthService(users, issuer, nil, logger)
}

func TestAuthService_Login(t *testing.T) {
	svc := newAuthService(t, time.Hour)

	session, err := svc.Login(context.Background(), " Admin ", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "admin", session.User.Username)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)

	claims, err := svc.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
	assert.Equal(t, time.Hour, svc.TokenTTL())
}

func TestAuthService_LoginRejects(t *testing.T) {
	svc := newAuthService(t, time.Hour)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "admin", password: "nope"},
		{name: "unknown user", username: "ghost", password: "s3cret"},
		{name: "empty username", username: "", password: "s3cret"},
		{name: "empty password", username: "admin", password: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.username, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	svc := newAuthService(t, time.Hour)

	_, err := svc.ValidateToken("")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.ValidateToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	other, err := auth.NewTokenIssuer("ffffffffffffffffffffffffffffffff", time.Hour, "productpulse")
	require.NoError(t, err)
	forged, _, err := other.Issue(auth.User{ID: 1, Username: "admin"})
	require.NoError(t, err)
	_, err = svc.ValidateToken(forged)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestNewUserStore(t *testing.T) {
	users, err := NewUserStore(config.AuthConfig{})
	require.NoError(t, err)
	assert.Equal(t, 0, users.Len())

	_, err = NewUserStore(config.AuthConfig{SeedUser: "admin", SeedPasswordHash: "plain"})
	assert.Error(t, err)
}
