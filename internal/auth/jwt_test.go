package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndValidate(t *testing.T) {
	a := NewAuthenticator("secret", "admin", "admin123", "")

	token, err := a.Login("admin", "admin123")
	require.NoError(t, err)

	claims, err := a.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := NewAuthenticator("secret", "admin", "admin123", "")

	_, err := a.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.Login("root", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWithPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	a := NewAuthenticator("secret", "admin", "admin123", hash)

	_, err = a.Login("admin", "s3cret")
	assert.NoError(t, err)
	_, err = a.Login("admin", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "plain password is ignored once a hash is set")
}

func TestValidateRejects(t *testing.T) {
	a := NewAuthenticator("secret", "admin", "admin123", "")
	token, err := a.GenerateJWT("admin")
	require.NoError(t, err)

	other := NewAuthenticator("other-secret", "admin", "admin123", "")
	_, err = other.ValidateJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.ValidateJWT("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	a.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	_, err = a.ValidateJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")
}

func TestValidateRequiresAdminRole(t *testing.T) {
	a := NewAuthenticator("secret", "admin", "admin123", "")
	claims := Claims{
		Username: "someone",
		Role:     "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = a.ValidateJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
