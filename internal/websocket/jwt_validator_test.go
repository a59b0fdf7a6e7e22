package websocket

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, secret, subject string, expiry time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTValidator_ValidToken(t *testing.T) {
	userID := uuid.New()
	v := NewJWTValidator(testSecret)

	got, err := v.ValidateToken(signedToken(t, testSecret, userID.String(), time.Hour))
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestJWTValidator_WrongSecret(t *testing.T) {
	v := NewJWTValidator(testSecret)

	_, err := v.ValidateToken(signedToken(t, "other-secret", uuid.New().String(), time.Hour))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTValidator_ExpiredToken(t *testing.T) {
	v := NewJWTValidator(testSecret)

	_, err := v.ValidateToken(signedToken(t, testSecret, uuid.New().String(), -time.Hour))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTValidator_MalformedSubject(t *testing.T) {
	v := NewJWTValidator(testSecret)

	_, err := v.ValidateToken(signedToken(t, testSecret, "not-a-uuid", time.Hour))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTValidator_Garbage(t *testing.T) {
	v := NewJWTValidator(testSecret)

	_, err := v.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
