package memory_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"job-board-api/internal/models"
	"job-board-api/internal/storage"
	"job-board-api/internal/storage/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApplicant(t *testing.T, email string) *models.Identity {
	t.Helper()
	identity, err := models.NewApplicant(email, models.Credentials{PasswordHash: "$2a$04$hash"}, models.Profile{})
	require.NoError(t, err)
	return identity
}

func TestUserRepoInsertAndFind(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepo()

	identity := newApplicant(t, "a@x.com")
	require.NoError(t, repo.Insert(ctx, identity))
	assert.False(t, identity.CreatedAt.IsZero())

	found, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, identity.ID, found.ID)

	err = repo.Insert(ctx, newApplicant(t, "a@x.com"))
	assert.ErrorIs(t, err, storage.ErrDuplicateEmail)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUserRepoReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepo()
	identity := newApplicant(t, "a@x.com")
	require.NoError(t, repo.Insert(ctx, identity))

	found, err := repo.FindByID(ctx, identity.ID)
	require.NoError(t, err)
	found.Email = "mutated@x.com"

	again, err := repo.FindByID(ctx, identity.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", again.Email)
}

func TestUserRepoUpdateEmailConflict(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepo()
	first := newApplicant(t, "a@x.com")
	second := newApplicant(t, "b@x.com")
	require.NoError(t, repo.Insert(ctx, first))
	require.NoError(t, repo.Insert(ctx, second))

	taken := "a@x.com"
	_, err := repo.Update(ctx, second.ID, &models.IdentityPatch{Email: &taken})
	assert.ErrorIs(t, err, storage.ErrDuplicateEmail)

	fresh := "c@x.com"
	updated, err := repo.Update(ctx, second.ID, &models.IdentityPatch{Email: &fresh})
	require.NoError(t, err)
	assert.Equal(t, "c@x.com", updated.Email)

	_, err = repo.FindByEmail(ctx, "b@x.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUserRepoReplace(t *testing.T) {
	ctx := context.Background()

	t.Run("Swaps atomically", func(t *testing.T) {
		repo := memory.NewUserRepo()
		old := newApplicant(t, "a@x.com")
		require.NoError(t, repo.Insert(ctx, old))

		replacement, err := models.Migrate(old, models.RoleRecruiter)
		require.NoError(t, err)
		require.NoError(t, repo.Replace(ctx, old.ID, replacement))

		_, err = repo.FindByID(ctx, old.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		found, err := repo.FindByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, replacement.ID, found.ID)
		assert.Equal(t, models.RoleRecruiter, found.Role)
	})

	t.Run("Keeps the original on conflict", func(t *testing.T) {
		repo := memory.NewUserRepo()
		old := newApplicant(t, "a@x.com")
		other := newApplicant(t, "b@x.com")
		require.NoError(t, repo.Insert(ctx, old))
		require.NoError(t, repo.Insert(ctx, other))

		replacement, err := models.Migrate(old, models.RoleRecruiter)
		require.NoError(t, err)
		replacement.Email = "b@x.com"

		err = repo.Replace(ctx, old.ID, replacement)
		assert.ErrorIs(t, err, storage.ErrDuplicateEmail)

		found, err := repo.FindByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, old.ID, found.ID)
	})

	t.Run("Unknown id", func(t *testing.T) {
		repo := memory.NewUserRepo()
		replacement := newApplicant(t, "a@x.com")
		assert.ErrorIs(t, repo.Replace(ctx, uuid.New(), replacement), storage.ErrNotFound)
	})
}

func TestUserRepoRedeemResetTokenRace(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepo()
	identity := newApplicant(t, "a@x.com")
	require.NoError(t, repo.Insert(ctx, identity))

	now := time.Now()
	_, err := repo.Update(ctx, identity.ID, &models.IdentityPatch{Reset: &models.ResetWindow{Token: "tok", Expires: now.Add(time.Hour)}})
	require.NoError(t, err)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for _, hash := range []string{"hash-a", "hash-b"} {
		wg.Add(1)
		go func(hash string) {
			defer wg.Done()
			if _, err := repo.RedeemResetToken(ctx, "tok", now, hash); err == nil {
				wins.Add(1)
			} else {
				assert.ErrorIs(t, err, storage.ErrNotFound)
			}
		}(hash)
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())

	found, err := repo.FindByID(ctx, identity.ID)
	require.NoError(t, err)
	assert.Empty(t, found.ResetToken)
	assert.Nil(t, found.ResetExpires)
	assert.Contains(t, []string{"hash-a", "hash-b"}, found.PasswordHash)
}

func TestUserRepoOpenings(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepo()
	recruiter, err := models.NewRecruiter("r@x.com", models.Credentials{PasswordHash: "h"}, models.Profile{})
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, recruiter))

	jobID := uuid.New()
	require.NoError(t, repo.AddOpening(ctx, recruiter.ID, models.Opening{JobID: jobID, JobName: "Gopher"}))
	found, _ := repo.FindByID(ctx, recruiter.ID)
	assert.Len(t, found.RoleProfile.Recruiter.Openings, 1)

	require.NoError(t, repo.RemoveOpening(ctx, recruiter.ID, jobID))
	found, _ = repo.FindByID(ctx, recruiter.ID)
	assert.Empty(t, found.RoleProfile.Recruiter.Openings)

	applicant := newApplicant(t, "a@x.com")
	require.NoError(t, repo.Insert(ctx, applicant))
	assert.ErrorIs(t, repo.AddOpening(ctx, applicant.ID, models.Opening{JobID: jobID}), storage.ErrNotFound)
}

func TestJobRepoApply(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewJobRepo()
	job := &models.Job{Name: "Gopher", Skills: []string{"go"}}
	require.NoError(t, repo.Create(ctx, job))

	applicant := models.JobApplicant{ID: uuid.New(), Name: "Ann"}
	require.NoError(t, repo.AddApplicant(ctx, job.ID, applicant))
	assert.ErrorIs(t, repo.AddApplicant(ctx, job.ID, applicant), storage.ErrConflict)
	assert.ErrorIs(t, repo.AddApplicant(ctx, uuid.New(), applicant), storage.ErrNotFound)

	found, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, found.Applicants, 1)
}

func TestJobRepoListPaging(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewJobRepo()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.Job{Name: "job"}))
	}

	page, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	page, err = repo.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	page, err = repo.List(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}
