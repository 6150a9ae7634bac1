package mongodb_test

import (
	"context"
	"os"
	"testing"
	"time"

	"job-board-api/config"
	"job-board-api/internal/database"
	"job-board-api/internal/models"
	"job-board-api/internal/storage"
	"job-board-api/internal/storage/mongodb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// newDatabase connects to TEST_MONGO_URL (a replica set) and hands out a
// fresh database that is dropped afterwards.
func newDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URL")
	if uri == "" {
		t.Skip("TEST_MONGO_URL not set")
	}
	ctx := context.Background()
	name := "jobboard_test_" + uuid.NewString()[:8]
	client, err := database.NewMongoClient(ctx, config.MongoConfig{URI: uri, Database: name})
	require.NoError(t, err)

	db := client.Database(name)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestUserRepoReplaceAndRedeem(t *testing.T) {
	db := newDatabase(t)
	ctx := context.Background()
	repo, err := mongodb.NewUserRepo(ctx, db)
	require.NoError(t, err)

	identity, err := models.NewApplicant("ada@example.com", models.Credentials{PasswordHash: "$2a$04$hash"}, models.Profile{FirstName: "Ada"})
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, identity))

	dup, err := models.NewApplicant("ada@example.com", models.Credentials{PasswordHash: "$2a$04$hash"}, models.Profile{})
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Insert(ctx, dup), storage.ErrDuplicateEmail)

	migrated, err := models.Migrate(identity, models.RoleRecruiter)
	require.NoError(t, err)
	require.NoError(t, repo.Replace(ctx, identity.ID, migrated))

	_, err = repo.FindByID(ctx, identity.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	found, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, migrated.ID, found.ID)
	require.NotNil(t, found.RoleProfile.Recruiter)

	jobID := uuid.New()
	require.NoError(t, repo.AddOpening(ctx, migrated.ID, models.Opening{JobID: jobID, JobName: "Engineer"}))
	found, err = repo.FindByID(ctx, migrated.ID)
	require.NoError(t, err)
	assert.Len(t, found.RoleProfile.Recruiter.Openings, 1)
	require.NoError(t, repo.RemoveOpening(ctx, migrated.ID, jobID))

	now := time.Now()
	token := "0123456789abcdef0123456789abcdef"
	_, err = repo.Update(ctx, migrated.ID, &models.IdentityPatch{
		Reset: &models.ResetWindow{Token: token, Expires: now.Add(time.Hour)},
	})
	require.NoError(t, err)

	redeemed, err := repo.RedeemResetToken(ctx, token, now, "$2a$04$new")
	require.NoError(t, err)
	assert.Equal(t, "$2a$04$new", redeemed.PasswordHash)
	assert.Empty(t, redeemed.ResetToken)

	_, err = repo.RedeemResetToken(ctx, token, now, "$2a$04$other")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJobRepoAddApplicant(t *testing.T) {
	db := newDatabase(t)
	ctx := context.Background()
	jobs, err := mongodb.NewJobRepo(ctx, db)
	require.NoError(t, err)

	job := &models.Job{Name: "Engineer", Owner: models.JobOwner{ID: uuid.New(), Name: "Grace"}}
	require.NoError(t, jobs.Create(ctx, job))

	entry := models.JobApplicant{ID: uuid.New(), Name: "Ada"}
	require.NoError(t, jobs.AddApplicant(ctx, job.ID, entry))
	assert.ErrorIs(t, jobs.AddApplicant(ctx, job.ID, entry), storage.ErrConflict)

	list, err := jobs.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Applicants, 1)
}
