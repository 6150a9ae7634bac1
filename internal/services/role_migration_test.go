package services_test

import (
	"context"
	"testing"

	"job-board-api/internal/models"
	"job-board-api/internal/services"
	"job-board-api/internal/storage"
	"job-board-api/internal/storage/memory"
	"job-board-api/internal/transport/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_MigrateRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	recruiter := f.signup(t, "r@x.com", "pass", models.RoleRecruiter)
	recruiter, err := f.accounts.ResolveProviderLogin(ctx, recruiter, &dto.ProviderLoginRequest{
		Provider: "google", Subject: "g-1", AccessToken: "tok",
	})
	require.NoError(t, err)
	require.NoError(t, f.users.AddOpening(ctx, recruiter.ID, models.Opening{JobID: uuid.New(), JobName: "Gopher"}))

	migrated, err := f.accounts.MigrateRole(ctx, recruiter, &dto.AccountTypeRequest{Type: "applicant"})
	require.NoError(t, err)

	assert.NotEqual(t, recruiter.ID, migrated.ID)
	assert.Equal(t, models.RoleApplicant, migrated.Role)
	assert.Equal(t, models.DefaultRoleProfile(models.RoleApplicant), migrated.RoleProfile)
	assert.Equal(t, recruiter.Email, migrated.Email)
	assert.Equal(t, recruiter.PasswordHash, migrated.PasswordHash)
	assert.Equal(t, recruiter.Providers, migrated.Providers)
	assert.Equal(t, recruiter.Tokens, migrated.Tokens)
	assert.Equal(t, recruiter.Profile, migrated.Profile)

	_, err = f.users.FindByID(ctx, recruiter.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound, "old record must be gone")
	byEmail, err := f.users.FindByEmail(ctx, "r@x.com")
	require.NoError(t, err)
	assert.Equal(t, migrated.ID, byEmail.ID)

	// Credentials survive the swap.
	loggedIn, err := f.accounts.Login(ctx, &dto.LoginRequest{Email: "r@x.com", Password: "pass"})
	require.NoError(t, err)
	assert.Equal(t, migrated.ID, loggedIn.ID)

	t.Run("Round trip resets role data", func(t *testing.T) {
		back, err := f.accounts.MigrateRole(ctx, migrated, &dto.AccountTypeRequest{Type: "recruiter"})
		require.NoError(t, err)
		again, err := f.accounts.MigrateRole(ctx, back, &dto.AccountTypeRequest{Type: "applicant"})
		require.NoError(t, err)
		assert.Equal(t, models.DefaultRoleProfile(models.RoleApplicant), again.RoleProfile)

		applicants, err := f.users.ListByRole(ctx, models.RoleApplicant, 0)
		require.NoError(t, err)
		assert.Len(t, applicants, 1, "one live record per email")
	})

	t.Run("Same role is a no-op", func(t *testing.T) {
		current, err := f.users.FindByEmail(ctx, "r@x.com")
		require.NoError(t, err)
		out, err := f.accounts.MigrateRole(ctx, current, &dto.AccountTypeRequest{Type: string(current.Role)})
		require.NoError(t, err)
		assert.Equal(t, current.ID, out.ID)
	})

	t.Run("Invalid target", func(t *testing.T) {
		current, err := f.users.FindByEmail(ctx, "r@x.com")
		require.NoError(t, err)
		_, err = f.accounts.MigrateRole(ctx, current, &dto.AccountTypeRequest{Type: "admin"})
		assert.ErrorIs(t, err, services.ErrInvalidRole)
	})
}

// failingReplace rejects every swap the way a unique index would.
type failingReplace struct {
	*memory.UserRepo
}

func (failingReplace) Replace(context.Context, uuid.UUID, *models.Identity) error {
	return storage.ErrDuplicateEmail
}

func TestAccountService_MigrateRoleConflictKeepsAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	identity := f.signup(t, "a@x.com", "pass", models.RoleApplicant)

	accounts := services.NewAccountService(failingReplace{f.users}, f.hasher, nil)
	_, err := accounts.MigrateRole(ctx, identity, &dto.AccountTypeRequest{Type: "recruiter"})
	assert.ErrorIs(t, err, services.ErrConflict)

	still, err := f.users.FindByID(ctx, identity.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleApplicant, still.Role)
}
