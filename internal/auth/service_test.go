package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"houseoflove/pkg/database"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "auth.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))

	svc := NewService(NewRepo(db), TokenService{Secret: []byte("test-secret"), Issuer: "houseoflove", Duration: time.Hour}, nil)
	svc.Cost = bcrypt.MinCost
	return svc
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.Register(ctx, " Amina@Example.com ", "secret1"))

	u, token, err := svc.Login(ctx, "amina@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "amina@example.com", u.Email)
	assert.NotEmpty(t, token)

	claims, err := svc.Tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, 0, claims.TokenVersion)
}

func TestRegisterErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	assert.Equal(t, KindWeakPassword, KindOf(svc.Register(ctx, "a@b.co", "12345")))
	assert.Equal(t, KindInvalidEmail, KindOf(svc.Register(ctx, "not-an-email", "secret1")))

	require.NoError(t, svc.Register(ctx, "a@b.co", "secret1"))
	assert.Equal(t, KindDuplicateRegistration, KindOf(svc.Register(ctx, "A@B.co", "another1")))
}

func TestLoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	require.NoError(t, svc.Register(ctx, "a@b.co", "secret1"))

	_, _, err := svc.Login(ctx, "a@b.co", "wrong!")
	assert.Equal(t, KindInvalidCredentials, KindOf(err))

	_, _, err2 := svc.Login(ctx, "nobody@b.co", "secret1")
	assert.Equal(t, KindInvalidCredentials, KindOf(err2))
	assert.Equal(t, err.Error(), err2.Error())
}

func TestLogoutRevokesTokens(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	require.NoError(t, svc.Register(ctx, "a@b.co", "secret1"))
	u, _, err := svc.Login(ctx, "a@b.co", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, u.ID))
	v, err := svc.Repo.GetTokenVersion(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = svc.Repo.GetTokenVersion(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	require.NoError(t, svc.Register(ctx, "a@b.co", "secret1"))
	u, _, err := svc.Login(ctx, "a@b.co", "secret1")
	require.NoError(t, err)

	assert.Equal(t, KindInvalidCredentials, KindOf(svc.ChangePassword(ctx, u.ID, "nope", "secret2")))
	assert.Equal(t, KindWeakPassword, KindOf(svc.ChangePassword(ctx, u.ID, "secret1", "123")))

	require.NoError(t, svc.ChangePassword(ctx, u.ID, "secret1", "secret2"))
	_, _, err = svc.Login(ctx, "a@b.co", "secret2")
	assert.NoError(t, err)
}

func TestValidateRegistration(t *testing.T) {
	assert.NoError(t, ValidateRegistration("a@b.co", "secret1", ""))
	assert.NoError(t, ValidateRegistration("a@b.co", "secret1", "secret1"))
	assert.Equal(t, KindPasswordMismatch, KindOf(ValidateRegistration("a@b.co", "secret1", "secret2")))
	assert.Equal(t, KindWeakPassword, KindOf(ValidateRegistration("a@b.co", "short", "short")))
}
