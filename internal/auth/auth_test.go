package auth

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"bizpulse/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "auth.db")
	st, err := store.Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewService(st, bcrypt.MinCost, slog.Default()), st
}

func TestSignupAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Signup(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Username)

	session, err = svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Username)
}

func TestSignup_StoresHashNotPlaintext(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "s3cret")
	require.NoError(t, err)

	user, err := st.UserByName(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.True(t, strings.HasPrefix(user.PasswordHash, "$2a$"), "expected a bcrypt hash, got %q", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))
}

func TestSignup_DuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "one")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "alice", "two")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestSignup_EmptyCredentials(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Signup(context.Background(), "  ", "pw")
	assert.Error(t, err)

	_, err = svc.Signup(context.Background(), "alice", "")
	assert.Error(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "right")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "nobody", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
