package services

import (
	"context"

	"job-board-api/internal/models"
	"job-board-api/internal/transport/dto"

	"github.com/google/uuid"
)

// PasswordHasher is the credential store boundary.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, hash string) (bool, error)
}

// AccountService defines the interface for identity-related business logic.
// Methods acting for a logged in caller take that caller's identity explicitly.
type AccountService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*models.Identity, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*models.Identity, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Identity, error)
	UpdateProfile(ctx context.Context, viewer *models.Identity, req *dto.UpdateProfileRequest) (*models.Identity, error)
	ChangePassword(ctx context.Context, viewer *models.Identity, req *dto.ChangePasswordRequest) (*models.Identity, error)
	Delete(ctx context.Context, viewer *models.Identity) error
	UnlinkProvider(ctx context.Context, viewer *models.Identity, provider string) (*models.Identity, error)
	// ResolveProviderLogin links, logs in or creates an identity for an
	// OAuth callback. viewer is nil when nobody is logged in.
	ResolveProviderLogin(ctx context.Context, viewer *models.Identity, req *dto.ProviderLoginRequest) (*models.Identity, error)
	// MigrateRole swaps the caller's identity for one of the target role.
	// The returned identity has a new ID.
	MigrateRole(ctx context.Context, viewer *models.Identity, req *dto.AccountTypeRequest) (*models.Identity, error)
	ListApplicants(ctx context.Context, limit int) ([]*models.Identity, error)
}

// PasswordResetService drives the forgot/reset token flow.
type PasswordResetService interface {
	// RequestReset never reports whether the email is registered.
	RequestReset(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ValidateToken(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) (*ResetResult, error)
	// Wait blocks until background reset mail deliveries finish or ctx is done.
	Wait(ctx context.Context) error
}

// JobService defines the interface for job-related business logic.
type JobService interface {
	CreateJob(ctx context.Context, viewer *models.Identity, req *dto.CreateJobRequest) (*models.Job, error)
	GetJobByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListJobs(ctx context.Context, req *dto.ListJobsRequest) ([]*models.Job, error)
	UpdateJob(ctx context.Context, viewer *models.Identity, req *dto.UpdateJobRequest) (*models.Job, error)
	DeleteJob(ctx context.Context, viewer *models.Identity, id uuid.UUID) error
	ApplyToJob(ctx context.Context, viewer *models.Identity, id uuid.UUID) (*models.Job, error)
}
