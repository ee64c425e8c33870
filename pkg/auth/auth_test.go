package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	hash, err := svc.HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, svc.VerifyPassword("secret123", hash))
	assert.False(t, svc.VerifyPassword("wrong-password", hash))
}

func TestIssueAndVerifyToken(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	token, err := svc.IssueToken(42, "budi", "budi@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "budi", claims.Username)
	assert.Equal(t, "budi@example.com", claims.Email)
}

func TestExpiredTokenRejected(t *testing.T) {
	// TTL negatif menghasilkan token yang sudah kadaluarsa
	svc := NewService("test-secret", -time.Minute)

	token, err := svc.IssueToken(1, "budi", "budi@example.com")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWithWrongSecretRejected(t *testing.T) {
	issuer := NewService("secret-a", time.Hour)
	verifier := NewService("secret-b", time.Hour)

	token, err := issuer.IssueToken(1, "budi", "budi@example.com")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	_, err := svc.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
