package services

import (
	"context"
	"errors"

	"job-board-api/internal/models"
	"job-board-api/internal/storage"
	"job-board-api/internal/transport/dto"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type jobService struct {
	jobs  storage.JobRepository
	users storage.UserRepository
}

// NewJobService creates a new instance of JobService.
func NewJobService(jobs storage.JobRepository, users storage.UserRepository) JobService {
	return &jobService{jobs: jobs, users: users}
}

func (s *jobService) CreateJob(ctx context.Context, viewer *models.Identity, req *dto.CreateJobRequest) (*models.Job, error) {
	if viewer.Role != models.RoleRecruiter {
		return nil, userError(ErrForbidden, "Only recruiters can post jobs.")
	}

	job := &models.Job{
		Name:        sanitize(req.Name),
		Description: sanitize(req.Description),
		Location:    sanitize(req.Location),
		Company:     sanitize(req.Company),
		Skills:      sanitizeTags(models.SplitTags(req.Skills)),
		Owner:       models.JobOwner{ID: viewer.ID, Name: viewer.DisplayName()},
		Recruiters:  []uuid.UUID{viewer.ID},
		Applicants:  []models.JobApplicant{},
	}
	if job.Name == "" {
		return nil, NewValidationError("name", "Job name is required.")
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, MapRepoError(err, "create job")
	}

	// The opening is the recruiter's back-reference; without it the job would be orphaned.
	if err := s.users.AddOpening(ctx, viewer.ID, models.Opening{JobID: job.ID, JobName: job.Name}); err != nil {
		if delErr := s.jobs.Delete(ctx, job.ID); delErr != nil {
			log.Error().Err(delErr).Str("job_id", job.ID.String()).Msg("Failed to roll back job after opening error")
		}
		return nil, MapRepoError(err, "create job")
	}
	return job, nil
}

func (s *jobService) GetJobByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, MapRepoError(err, "get job")
	}
	return job, nil
}

func (s *jobService) ListJobs(ctx context.Context, req *dto.ListJobsRequest) ([]*models.Job, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	jobs, err := s.jobs.List(ctx, limit, req.Offset)
	if err != nil {
		return nil, MapRepoError(err, "list jobs")
	}
	return jobs, nil
}

func (s *jobService) UpdateJob(ctx context.Context, viewer *models.Identity, req *dto.UpdateJobRequest) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, req.ID)
	if err != nil {
		return nil, MapRepoError(err, "update job")
	}
	if !job.CanManage(viewer.ID) {
		return nil, userError(ErrForbidden, "Not a recruiter on this job.")
	}

	patch := &models.JobPatch{}
	clean := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := sanitize(*p)
		return &v
	}
	patch.Name = clean(req.Name)
	patch.Description = clean(req.Description)
	patch.Location = clean(req.Location)
	patch.Company = clean(req.Company)
	if req.Skills != nil {
		patch.Skills = sanitizeTags(models.SplitTags(*req.Skills))
	}
	if patch.Name != nil && *patch.Name == "" {
		return nil, NewValidationError("name", "Job name cannot be empty.")
	}

	updated, err := s.jobs.Update(ctx, req.ID, patch)
	if err != nil {
		return nil, MapRepoError(err, "update job")
	}
	return updated, nil
}

func (s *jobService) DeleteJob(ctx context.Context, viewer *models.Identity, id uuid.UUID) error {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return MapRepoError(err, "delete job")
	}
	if job.Owner.ID != viewer.ID {
		return userError(ErrForbidden, "Only the owner can delete a job.")
	}
	if err := s.jobs.Delete(ctx, id); err != nil {
		return MapRepoError(err, "delete job")
	}

	// The owner may have changed account type since posting, leaving no recruiter to update.
	if err := s.users.RemoveOpening(ctx, job.Owner.ID, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Warn().Err(err).Str("job_id", id.String()).Msg("Failed to remove opening from recruiter")
	}
	return nil
}

func (s *jobService) ApplyToJob(ctx context.Context, viewer *models.Identity, id uuid.UUID) (*models.Job, error) {
	if viewer.Role != models.RoleApplicant {
		return nil, userError(ErrForbidden, "Only applicants can apply.")
	}
	err := s.jobs.AddApplicant(ctx, id, models.JobApplicant{ID: viewer.ID, Name: viewer.DisplayName()})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, userError(ErrConflict, "You already applied to this job.")
		}
		return nil, MapRepoError(err, "apply to job")
	}
	return s.GetJobByID(ctx, id)
}
