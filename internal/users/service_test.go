package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(NewMemoryRepo())
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	u, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	require.False(t, u.ID.IsZero())
	require.NotEqual(t, "s3cret", u.PasswordHash, "plaintext must never be stored")
	require.False(t, u.CreatedAt.IsZero())

	got, err := svc.Authenticate(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	svc := newTestService()

	_, err := svc.Authenticate(context.Background(), "nobody", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	svc := NewService(repo)

	_, err := svc.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other@example.com", "pw")
	require.ErrorIs(t, err, ErrConflict)

	// No second row behind the conflict.
	u, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", u.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob", "alice@example.com", "pw")
	require.ErrorIs(t, err, ErrConflict)
}

func TestRegister_RequiresFields(t *testing.T) {
	svc := newTestService()

	_, err := svc.Register(context.Background(), "", "a@example.com", "pw")
	require.Error(t, err)

	_, err = svc.Register(context.Background(), "alice", "a@example.com", "")
	require.Error(t, err)
}

func TestGetByID_BadID(t *testing.T) {
	svc := newTestService()

	_, err := svc.GetByID(context.Background(), "not-a-hex-id")
	require.ErrorIs(t, err, ErrUserNotFound)
}
