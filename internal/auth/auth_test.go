package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	tok, err := Sign("test-secret", "user-1", "MANAGER", "jti-1", time.Hour)
	require.NoError(t, err)

	claims, err := Verify("test-secret", tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "MANAGER", claims.Role)
	assert.Equal(t, "jti-1", claims.JWTID)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := Sign("test-secret", "user-1", "AGENT", "jti-1", time.Hour)
	require.NoError(t, err)

	_, err = Verify("other-secret", tok)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tok, err := Sign("test-secret", "user-1", "AGENT", "jti-1", -time.Minute)
	require.NoError(t, err)

	_, err = Verify("test-secret", tok)
	assert.Error(t, err)
}

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, CheckPassword(hash, "s3cret"))
	assert.Error(t, CheckPassword(hash, "wrong"))
}

func TestPrincipalContext(t *testing.T) {
	ctx := WithPrincipal(context.Background(), Principal{ID: "u1", Role: "ADMIN"})
	p := FromContext(ctx)
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, "ADMIN", p.Role)
	assert.False(t, p.IsZero())

	assert.True(t, FromContext(context.Background()).IsZero())
}
