package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samudhan2008/sa-notes-beta/internal/common"
	"github.com/samudhan2008/sa-notes-beta/internal/dbx"
	"github.com/samudhan2008/sa-notes-beta/internal/logging"
	"github.com/samudhan2008/sa-notes-beta/internal/server/auth"
	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/refreshtokens"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/repomanager"
)

func TestRegister_LogsInAndSanitizes(t *testing.T) {
	env := newTestEnv(t)

	s, err := env.users.Register(context.Background(), " alice@example.com ", "alice", "secret")
	require.NoError(t, err)

	assert.NotEmpty(t, s.AccessToken)
	assert.NotEmpty(t, s.RefreshToken)
	assert.Equal(t, "alice@example.com", s.User.Email)
	assert.Equal(t, models.RoleUser, s.User.Role)
	assert.Equal(t, models.UserActive, s.User.Status)
	assert.False(t, s.User.Verified)

	claims, err := auth.ParseToken(s.AccessToken, []byte(env.cfg.SecretKey))
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)

	stored, err := env.m.Users(env.db).GetByID(context.Background(), s.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret", stored.PasswordHash)
	assert.NotEmpty(t, stored.VerifyToken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "bob@example.com", "bob")

	_, err := env.users.Register(context.Background(), "BOB@example.com", "bobby", "other")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name                      string
		email, username, password string
	}{
		{"empty email", "", "u", "p"},
		{"malformed email", "not-an-email", "u", "p"},
		{"display name form", "Bob <bob@example.com>", "u", "p"},
		{"empty username", "u@example.com", "  ", "p"},
		{"empty password", "u@example.com", "u", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.users.Register(ctx, tt.email, tt.username, tt.password)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestLogin_Flows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, "carol@example.com", "carol")

	s, err := env.users.Login(ctx, "Carol@Example.com", "pass-carol")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, s.User.ID)
	assert.NotEqual(t, reg.RefreshToken, s.RefreshToken)

	_, err = env.users.Login(ctx, "carol@example.com", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = env.users.Login(ctx, "nobody@example.com", "pass-carol")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestLogin_Suspended(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, "dan@example.com", "dan")

	_, err := env.admin.SetUserStatus(ctx, Actor{UserID: "root", Role: models.RoleAdmin}, reg.User.ID, models.UserSuspended)
	require.NoError(t, err)

	_, err = env.users.Login(ctx, "dan@example.com", "pass-dan")
	assert.ErrorIs(t, err, common.ErrorForbidden)

	// suspension revoked the session issued at registration
	_, err = env.users.RefreshToken(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRefreshToken_Rotates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, "erin@example.com", "erin")

	pair, err := env.users.RefreshToken(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEqual(t, reg.RefreshToken, pair.RefreshToken)

	_, err = env.users.RefreshToken(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = env.users.RefreshToken(ctx, pair.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshToken_Expired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, "finn@example.com", "finn")

	require.NoError(t, env.m.RefreshTokens(env.db).Create(ctx, reg.User.ID, "stale", -time.Minute))

	_, err := env.users.RefreshToken(ctx, "stale")
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
}

func TestLogout_RevokesAndAlwaysSucceeds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, "gina@example.com", "gina")

	require.NoError(t, env.users.Logout(ctx, reg.RefreshToken))
	require.NoError(t, env.users.Logout(ctx, reg.RefreshToken))
	require.NoError(t, env.users.Logout(ctx, ""))

	_, err := env.users.RefreshToken(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, "hank@example.com", "hank")

	err := env.users.ChangePassword(ctx, reg.User.ID, "wrong", "new-pass")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	require.NoError(t, env.users.ChangePassword(ctx, reg.User.ID, "pass-hank", "new-pass"))

	_, err = env.users.Login(ctx, "hank@example.com", "pass-hank")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	_, err = env.users.Login(ctx, "hank@example.com", "new-pass")
	assert.NoError(t, err)

	_, err = env.users.RefreshToken(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, "ivy@example.com", "ivy")

	bio, inst := "  Second-year CS  ", "MIT"
	p, err := env.users.UpdateProfile(ctx, reg.User.ID, models.ProfileUpdate{Bio: &bio, Institution: &inst})
	require.NoError(t, err)
	assert.Equal(t, "Second-year CS", p.Bio)
	assert.Equal(t, "MIT", p.Institution)
	assert.Equal(t, "ivy", p.Username)

	blank := " "
	_, err = env.users.UpdateProfile(ctx, reg.User.ID, models.ProfileUpdate{Username: &blank})
	assert.ErrorIs(t, err, common.ErrorValidation)

	got, err := env.users.Profile(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Second-year CS", got.Bio)

	_, err = env.users.Profile(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestVerifyEmail_SingleUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, "jack@example.com", "jack")

	stored, err := env.m.Users(env.db).GetByID(ctx, reg.User.ID)
	require.NoError(t, err)

	p, err := env.users.VerifyEmail(ctx, stored.VerifyToken)
	require.NoError(t, err)
	assert.True(t, p.Verified)

	_, err = env.users.VerifyEmail(ctx, stored.VerifyToken)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRequestPasswordReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "kim@example.com", "kim")

	assert.NoError(t, env.users.RequestPasswordReset(ctx, "kim@example.com"))
	assert.NoError(t, env.users.RequestPasswordReset(ctx, "ghost@example.com"))
	assert.ErrorIs(t, env.users.RequestPasswordReset(ctx, "bad"), common.ErrorValidation)
}

func TestEnsureAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.users.EnsureAdmin(ctx, "admin@sanotes.dev", "admin-pass"))
	require.NoError(t, env.users.EnsureAdmin(ctx, "admin@sanotes.dev", "ignored"))

	s, err := env.users.Login(ctx, "admin@sanotes.dev", "admin-pass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, s.User.Role)
	assert.True(t, s.User.Verified)

	reg := env.register(t, "lee@example.com", "lee")
	require.NoError(t, env.users.EnsureAdmin(ctx, "lee@example.com", ""))
	p, err := env.users.Profile(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, p.Role)
}

type fakeRefreshRepo struct {
	createErr error
}

func (f *fakeRefreshRepo) Create(context.Context, string, string, time.Duration) error {
	return f.createErr
}
func (f *fakeRefreshRepo) Find(context.Context, string) (*models.RefreshToken, error) {
	return nil, common.ErrorNotFound
}
func (f *fakeRefreshRepo) Delete(context.Context, string) error       { return nil }
func (f *fakeRefreshRepo) DeleteByUser(context.Context, string) error { return nil }

type refreshOverride struct {
	repomanager.RepositoryManager
	r refreshtokens.Repository
}

func (m refreshOverride) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.r }

func TestLogin_TokenStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "max@example.com", "max")

	rm := refreshOverride{RepositoryManager: env.m, r: &fakeRefreshRepo{createErr: errBoom{}}}
	s := NewUserService(env.db, rm, env.cfg, logging.Nop())

	_, err := s.Login(context.Background(), "max@example.com", "pass-max")
	if !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("want ErrorInternal, got %v", err)
	}
}
