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

func newUserService(env *testEnv) *UserService {
	// Empty SMTP host keeps the mailer disabled in tests
	return NewUserService(env.users, NewMailerService(config.SMTPConfig{}), NewAuditService(env.audits))
}

func validUserInput() *CreateUserInput {
	return &CreateUserInput{
		Username:  "jdoe",
		Email:     "jdoe@sogecredit.ht",
		Password:  "motdepasse123",
		FirstName: "Jean",
		LastName:  "DOE",
		Role:      domain.RoleOfficer,
		Branch:    "Delmas",
	}
}

func TestCreateUser(t *testing.T) {
	env := newTestEnv()
	svc := newUserService(env)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, env.actor(1), validUserInput(), testMeta)
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive)
	assert.Equal(t, domain.RoleOfficer, user.Role)
	assert.NotEqual(t, "motdepasse123", user.Password)
	assert.True(t, password.Verify("motdepasse123", user.Password))

	require.Len(t, env.audits.entries, 1)
	assert.Equal(t, models.AuditActionCreateUser, env.audits.entries[0].Action)
}

func TestCreateUser_ManagerOnly(t *testing.T) {
	env := newTestEnv()
	svc := newUserService(env)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, env.actor(2), validUserInput(), testMeta)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = svc.CreateUser(ctx, env.actor(3), validUserInput(), testMeta)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestCreateUser_Validation(t *testing.T) {
	env := newTestEnv()
	svc := newUserService(env)
	ctx := context.Background()

	t.Run("unknown role", func(t *testing.T) {
		input := validUserInput()
		input.Role = domain.Role("admin")
		_, err := svc.CreateUser(ctx, env.actor(1), input, testMeta)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("short password", func(t *testing.T) {
		input := validUserInput()
		input.Password = "court"
		_, err := svc.CreateUser(ctx, env.actor(1), input, testMeta)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("username taken", func(t *testing.T) {
		input := validUserInput()
		input.Username = "officer1"
		_, err := svc.CreateUser(ctx, env.actor(1), input, testMeta)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestUpdateUser(t *testing.T) {
	env := newTestEnv()
	svc := newUserService(env)
	ctx := context.Background()

	user, err := svc.UpdateUser(ctx, env.actor(1), 3, &UpdateUserInput{Branch: strPtr("Cap-Haïtien")}, testMeta)
	require.NoError(t, err)
	assert.Equal(t, "Cap-Haïtien", user.Branch)

	t.Run("own role is locked", func(t *testing.T) {
		role := domain.RoleSecretary
		_, err := svc.UpdateUser(ctx, env.actor(1), 1, &UpdateUserInput{Role: &role}, testMeta)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.UpdateUser(ctx, env.actor(1), 99, &UpdateUserInput{Branch: strPtr("x")}, testMeta)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestToggleActive(t *testing.T) {
	env := newTestEnv()
	svc := newUserService(env)
	ctx := context.Background()

	user, err := svc.ToggleActive(ctx, env.actor(1), 3, testMeta)
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	user, err = svc.ToggleActive(ctx, env.actor(1), 3, testMeta)
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	t.Run("never on self", func(t *testing.T) {
		_, err := svc.ToggleActive(ctx, env.actor(1), 1, testMeta)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv()
	svc := newUserService(env)
	ctx := context.Background()

	require.NoError(t, svc.DeleteUser(ctx, env.actor(1), 4))
	_, err := env.users.GetByID(ctx, 4)
	assert.Error(t, err)

	t.Run("never on self", func(t *testing.T) {
		err := svc.DeleteUser(ctx, env.actor(1), 1)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("manager only", func(t *testing.T) {
		err := svc.DeleteUser(ctx, env.actor(2), 3)
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})
}

func TestListUsers_RoleScoped(t *testing.T) {
	env := newTestEnv()
	svc := newUserService(env)
	ctx := context.Background()

	// Deactivated officers drop out of the non-manager listing
	officer, _ := env.users.GetByID(ctx, 4)
	officer.IsActive = false

	manager, err := svc.ListUsers(ctx, env.actor(1))
	require.NoError(t, err)
	assert.Len(t, manager, 3)

	secretary, err := svc.ListUsers(ctx, env.actor(2))
	require.NoError(t, err)
	require.Len(t, secretary, 1)
	assert.Equal(t, "officer1", secretary[0].Username)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv()
	svc := newUserService(env)
	ctx := context.Background()

	hashed, err := password.Hash("ancien-mdp-123")
	require.NoError(t, err)
	user, _ := env.users.GetByID(ctx, 3)
	user.Password = hashed

	t.Run("wrong old password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, env.actor(3), &ChangePasswordInput{OldPassword: "faux", NewPassword: "nouveau-mdp-123"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("short new password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, env.actor(3), &ChangePasswordInput{OldPassword: "ancien-mdp-123", NewPassword: "court"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("success", func(t *testing.T) {
		err := svc.ChangePassword(ctx, env.actor(3), &ChangePasswordInput{OldPassword: "ancien-mdp-123", NewPassword: "nouveau-mdp-123"})
		require.NoError(t, err)
		updated, _ := env.users.GetByID(ctx, 3)
		assert.True(t, password.Verify("nouveau-mdp-123", updated.Password))
	})
}
