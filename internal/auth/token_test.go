package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestIssuer(t *testing.T, now time.Time) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(testSecret, 24*time.Hour, "productpulse")
	require.NoError(t, err)
	issuer.now = func() time.Time { return now }
	return issuer
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	issuer := newTestIssuer(t, now)

	token, expires, err := issuer.Issue(User{ID: 7, Username: "ops"})
	require.NoError(t, err)
	assert.Equal(t, now.Add(24*time.Hour), expires)
	assert.Equal(t, 2, strings.Count(token, "."))

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "ops", claims.Username)
	assert.Equal(t, "7", claims.Subject)
}

func TestTokenIssuer_Expired(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	issuer := newTestIssuer(t, now)

	token, _, err := issuer.Issue(User{ID: 1, Username: "ops"})
	require.NoError(t, err)

	issuer.now = func() time.Time { return now.Add(25 * time.Hour) }
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	now := time.Now()
	issuer := newTestIssuer(t, now)
	token, _, err := issuer.Issue(User{ID: 1, Username: "ops"})
	require.NoError(t, err)

	other, err := NewTokenIssuer(strings.Repeat("x", 32), time.Hour, "productpulse")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Username: "ops"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		with  *TokenIssuer
	}{
		{name: "empty", token: "", with: issuer},
		{name: "garbage", token: "not.a.jwt", with: issuer},
		{name: "wrong secret", token: token, with: other},
		{name: "none algorithm", token: noneToken, with: issuer},
		{name: "tampered", token: token[:len(token)-2] + "xx", with: issuer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.with.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewTokenIssuer_Validation(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour, "x")
	assert.Error(t, err)

	_, err = NewTokenIssuer(testSecret, 0, "x")
	assert.Error(t, err)
}
