package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewAuthService("organizer", string(hash), nil)
	ctx := context.Background()

	principal, err := svc.Login(ctx, LoginInput{Username: "organizer", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, RoleOrganizer, principal.Role)
	assert.Equal(t, "organizer", principal.Username)

	_, err = svc.Login(ctx, LoginInput{Username: "organizer", Password: "wrong"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Username: "someone", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Username: "organizer"})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestAuthService_DisabledWithoutHash(t *testing.T) {
	svc := NewAuthService("organizer", "", nil)
	assert.False(t, svc.Enabled())

	_, err := svc.Login(context.Background(), LoginInput{Username: "organizer", Password: "anything"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}
