package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/testutil"
)

func newAuthService() (*AuthService, *testutil.MockUserRepository) {
	repo := testutil.NewMockUserRepository()
	return NewAuthService(repo, "test-secret", time.Hour, bcrypt.MinCost), repo
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Username:        "harsha",
		Email:           "harsha@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
}

func TestRegister(t *testing.T) {
	t.Run("creates user and issues token", func(t *testing.T) {
		svc, repo := newAuthService()

		user, token, err := svc.Register(validRegistration())
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "harsha", user.Username)
		assert.NotEqual(t, "secret123", user.PasswordHash, "password must be hashed")
		assert.Len(t, repo.ByID, 1)
	})

	t.Run("normalizes email case", func(t *testing.T) {
		svc, _ := newAuthService()
		input := validRegistration()
		input.Email = "Harsha@Example.COM"

		user, _, err := svc.Register(input)
		require.NoError(t, err)
		assert.Equal(t, "harsha@example.com", user.Email)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		svc, _ := newAuthService()
		_, _, err := svc.Register(validRegistration())
		require.NoError(t, err)

		input := validRegistration()
		input.Email = "other@example.com"
		_, _, err = svc.Register(input)
		assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc, _ := newAuthService()
		_, _, err := svc.Register(validRegistration())
		require.NoError(t, err)

		input := validRegistration()
		input.Username = "other"
		_, _, err = svc.Register(input)
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})

	t.Run("rejects password mismatch", func(t *testing.T) {
		svc, _ := newAuthService()
		input := validRegistration()
		input.ConfirmPassword = "different"

		_, _, err := svc.Register(input)
		assert.ErrorIs(t, err, domain.ErrPasswordMismatch)
	})

	t.Run("rejects short password", func(t *testing.T) {
		svc, _ := newAuthService()
		input := validRegistration()
		input.Password = "abc"
		input.ConfirmPassword = "abc"

		_, _, err := svc.Register(input)
		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
	})
}

func TestLogin(t *testing.T) {
	t.Run("username or email both work", func(t *testing.T) {
		svc, _ := newAuthService()
		_, _, err := svc.Register(validRegistration())
		require.NoError(t, err)

		user, token, err := svc.Login("harsha", "secret123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "harsha", user.Username)

		_, _, err = svc.Login("harsha@example.com", "secret123")
		require.NoError(t, err)
	})

	t.Run("wrong password yields invalid credentials", func(t *testing.T) {
		svc, _ := newAuthService()
		_, _, err := svc.Register(validRegistration())
		require.NoError(t, err)

		_, _, err = svc.Login("harsha", "wrong")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown user yields invalid credentials, not not-found", func(t *testing.T) {
		svc, _ := newAuthService()

		_, _, err := svc.Login("ghost", "secret123")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("empty inputs rejected", func(t *testing.T) {
		svc, _ := newAuthService()
		_, _, err := svc.Login("", "")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}
