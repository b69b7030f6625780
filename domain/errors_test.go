package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	plain := NewError(ErrCodeInvalid, "bad input")
	assert.Equal(t, "bad input", plain.Error())

	wrapped := WrapError(ErrCodeInternal, "store failed", errors.New("disk full"))
	assert.Equal(t, "store failed: disk full", wrapped.Error())
	require.ErrorIs(t, wrapped, wrapped.Err)
}

func TestIsDomainError(t *testing.T) {
	assert.True(t, IsDomainError(ErrEmailTaken, ErrCodeConflict))
	assert.True(t, IsDomainError(ErrInvalidCredentials, ErrCodeUnauthorized))
	assert.False(t, IsDomainError(ErrEmailTaken, ErrCodeUnauthorized))
	assert.False(t, IsDomainError(errors.New("plain"), ErrCodeInternal))

	// Classification survives wrapping.
	wrapped := fmt.Errorf("register: %w", ErrEmailTaken)
	assert.True(t, IsDomainError(wrapped, ErrCodeConflict))
}

func TestSessionIsActive(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.IsActive())
	assert.False(t, (&Session{ID: "s-1"}).IsActive())
	assert.True(t, (&Session{ID: "s-1", UserID: "u-1"}).IsActive())
}

func TestUserSanitized(t *testing.T) {
	user := User{ID: "u-1", Email: "a@x.com", Password: "secret1"}
	clean := user.Sanitized()
	assert.Empty(t, clean.Password)
	assert.Equal(t, "secret1", user.Password, "original is untouched")
}
