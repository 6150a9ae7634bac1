package storage

import (
	"context"
	"time"

	"job-board-api/internal/models"

	"github.com/google/uuid"
)

// UserRepository defines the interface for identity data operations.
// Lookups return ErrNotFound when nothing matches.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Identity, error)
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	FindByProvider(ctx context.Context, provider, subject string) (*models.Identity, error)
	// FindByResetToken only matches a token that is still redeemable at now.
	FindByResetToken(ctx context.Context, token string, now time.Time) (*models.Identity, error)
	ListByRole(ctx context.Context, role models.Role, limit int) ([]*models.Identity, error)

	// Insert stores a new identity and sets its timestamps. A nil ID is
	// replaced with a generated one. Fails with ErrDuplicateEmail.
	Insert(ctx context.Context, identity *models.Identity) error
	Update(ctx context.Context, id uuid.UUID, patch *models.IdentityPatch) (*models.Identity, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Replace removes oldID and inserts replacement as one atomic step. On
	// any failure the old identity is left untouched.
	Replace(ctx context.Context, oldID uuid.UUID, replacement *models.Identity) error

	// RedeemResetToken sets passwordHash and clears the reset pair in one
	// conditional write. Of two concurrent calls with the same token at
	// most one succeeds; the other gets ErrNotFound.
	RedeemResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (*models.Identity, error)

	AddOpening(ctx context.Context, recruiterID uuid.UUID, opening models.Opening) error
	RemoveOpening(ctx context.Context, recruiterID, jobID uuid.UUID) error
}

// JobRepository defines the interface for job data operations.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	List(ctx context.Context, limit, offset int) ([]*models.Job, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.JobPatch) (*models.Job, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// AddApplicant fails with ErrConflict when the applicant is already listed.
	AddApplicant(ctx context.Context, jobID uuid.UUID, applicant models.JobApplicant) error
}
