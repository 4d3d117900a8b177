package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sogecredit/internal/adapters/persistence/models"
	"sogecredit/internal/config"
	"sogecredit/internal/core/domain"
	"sogecredit/internal/pkg/password"
)

func newAuthEnv(t *testing.T) (*AuthService, *testEnv, *fakeRefreshTokenRepo) {
	t.Helper()
	env := newTestEnv()

	hashed, err := password.Hash("motdepasse123")
	require.NoError(t, err)
	for id := uint(1); id <= 4; id++ {
		user, _ := env.users.GetByID(context.Background(), id)
		user.Password = hashed
	}

	tokens := newFakeRefreshTokenRepo()
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}

	return NewAuthService(env.users, tokens, NewAuditService(env.audits), cfg), env, tokens
}

func TestLogin(t *testing.T) {
	svc, env, tokens := newAuthEnv(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &LoginInput{Username: "secretary", Password: "motdepasse123"}, testMeta)
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "secretary", resp.User.Username)
	assert.Len(t, tokens.tokens, 1)

	user, _ := env.users.GetByID(ctx, 2)
	assert.NotNil(t, user.LastLogin)

	require.Len(t, env.audits.entries, 1)
	assert.Equal(t, models.AuditActionLogin, env.audits.entries[0].Action)
	assert.Equal(t, models.AuditStatusSuccess, env.audits.entries[0].Status)

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(2), claims.UserID)
	assert.Equal(t, "secretary", claims.Role)
}

func TestLogin_Failures(t *testing.T) {
	svc, env, _ := newAuthEnv(t)
	ctx := context.Background()

	t.Run("unknown username", func(t *testing.T) {
		_, err := svc.Login(ctx, &LoginInput{Username: "ghost", Password: "motdepasse123"}, testMeta)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

		// Failure lands in the audit trail with no user id
		entry := env.audits.entries[len(env.audits.entries)-1]
		assert.Equal(t, models.AuditStatusFailed, entry.Status)
		assert.Nil(t, entry.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &LoginInput{Username: "secretary", Password: "faux"}, testMeta)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

		entry := env.audits.entries[len(env.audits.entries)-1]
		assert.Equal(t, models.AuditStatusFailed, entry.Status)
		require.NotNil(t, entry.UserID)
		assert.Equal(t, uint(2), *entry.UserID)
	})

	t.Run("inactive account", func(t *testing.T) {
		user, _ := env.users.GetByID(ctx, 3)
		user.IsActive = false
		_, err := svc.Login(ctx, &LoginInput{Username: "officer1", Password: "motdepasse123"}, testMeta)
		assert.ErrorIs(t, err, domain.ErrUserInactive)
	})
}

func TestRefreshToken_Rotation(t *testing.T) {
	svc, _, tokens := newAuthEnv(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, &LoginInput{Username: "officer1", Password: "motdepasse123"}, testMeta)
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)
	assert.Len(t, tokens.tokens, 2)

	// The rotated-out token is dead
	_, err = svc.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	// The new one still works
	_, err = svc.RefreshToken(ctx, rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshToken_Garbage(t *testing.T) {
	svc, _, _ := newAuthEnv(t)

	_, err := svc.RefreshToken(context.Background(), "pas-un-jeton")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestRefreshToken_InactiveUser(t *testing.T) {
	svc, env, _ := newAuthEnv(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, &LoginInput{Username: "officer1", Password: "motdepasse123"}, testMeta)
	require.NoError(t, err)

	user, _ := env.users.GetByID(ctx, 3)
	user.IsActive = false

	_, err = svc.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestLogout(t *testing.T) {
	svc, env, _ := newAuthEnv(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, &LoginInput{Username: "secretary", Password: "motdepasse123"}, testMeta)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, login.RefreshToken, 2, "secretary", testMeta))

	_, err = svc.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	entry := env.audits.entries[len(env.audits.entries)-1]
	assert.Equal(t, models.AuditActionLogout, entry.Action)
}

func TestLogoutAll(t *testing.T) {
	svc, _, tokens := newAuthEnv(t)
	ctx := context.Background()

	first, err := svc.Login(ctx, &LoginInput{Username: "secretary", Password: "motdepasse123"}, testMeta)
	require.NoError(t, err)
	second, err := svc.Login(ctx, &LoginInput{Username: "secretary", Password: "motdepasse123"}, testMeta)
	require.NoError(t, err)
	require.Len(t, tokens.tokens, 2)

	require.NoError(t, svc.LogoutAll(ctx, 2, "secretary", testMeta))

	_, err = svc.RefreshToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	_, err = svc.RefreshToken(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
