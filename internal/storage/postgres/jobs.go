// Package postgres stores identities and jobs in PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"job-board-api/internal/models"
	"job-board-api/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const jobColumns = `id, name, description, location, company, skills, owner_id, owner_name, recruiters, applicants, created_at, updated_at`

// JobRepo implements the storage.JobRepository interface using PostgreSQL.
type JobRepo struct {
	db Querier
}

// NewJobRepo creates a new JobRepo.
func NewJobRepo(db *pgxpool.Pool) *JobRepo {
	return &JobRepo{db: db}
}

// WithTx creates a new JobRepo with the transaction.
func (r *JobRepo) WithTx(tx pgx.Tx) *JobRepo {
	return &JobRepo{db: tx}
}

// Compile-time check to ensure JobRepo implements JobRepository
var _ storage.JobRepository = (*JobRepo)(nil)

func scanJob(row pgx.Row) (*models.Job, error) {
	var (
		job                            models.Job
		skills, recruiters, applicants []byte
	)
	err := row.Scan(
		&job.ID,
		&job.Name,
		&job.Description,
		&job.Location,
		&job.Company,
		&skills,
		&job.Owner.ID,
		&job.Owner.Name,
		&recruiters,
		&applicants,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Skills = []string{}
	job.Recruiters = []uuid.UUID{}
	job.Applicants = []models.JobApplicant{}
	if err := unmarshalJSON(skills, &job.Skills); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(recruiters, &job.Recruiters); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(applicants, &job.Applicants); err != nil {
		return nil, err
	}
	return &job, nil
}

// Create saves a new job posting.
func (r *JobRepo) Create(ctx context.Context, job *models.Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New() // Generate ID server-side
	}
	skills, err := marshalArray(job.Skills)
	if err != nil {
		return err
	}
	recruiters, err := marshalArray(job.Recruiters)
	if err != nil {
		return err
	}
	applicants, err := marshalArray(job.Applicants)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err = r.db.QueryRow(ctx, query,
		job.ID,
		job.Name,
		job.Description,
		job.Location,
		job.Company,
		skills,
		job.Owner.ID,
		job.Owner.Name,
		recruiters,
		applicants,
	).Scan(&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		log.Error().Err(err).Msg("Error creating job")
		return fmt.Errorf("failed to create job: %w", err)
	}

	log.Info().Str("job_id", job.ID.String()).Msg("Job created")
	return nil
}

// GetByID retrieves a specific job by its ID.
func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	job, err := scanJob(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job by ID %s: %w", id, err)
	}
	return job, nil
}

// List returns jobs newest first.
func (r *JobRepo) List(ctx context.Context, limit, offset int) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	jobs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Job, error) {
		return scanJob(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan jobs: %w", err)
	}
	if jobs == nil {
		jobs = []*models.Job{}
	}
	return jobs, nil
}

// Update modifies an existing job based on the non-nil fields of patch.
func (r *JobRepo) Update(ctx context.Context, id uuid.UUID, patch *models.JobPatch) (*models.Job, error) {
	var b setBuilder
	if patch.Name != nil {
		b.add("name", *patch.Name)
	}
	if patch.Description != nil {
		b.add("description", *patch.Description)
	}
	if patch.Location != nil {
		b.add("location", *patch.Location)
	}
	if patch.Company != nil {
		b.add("company", *patch.Company)
	}
	if patch.Skills != nil {
		skills, err := marshalJSON(patch.Skills)
		if err != nil {
			return nil, err
		}
		b.add("skills", skills)
	}

	query, args := b.build("jobs", id, jobColumns)
	job, err := scanJob(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update job %s: %w", id, err)
	}
	return job, nil
}

// Delete removes a job by its ID.
func (r *JobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AddApplicant appends in one statement guarded by a containment check, so
// two concurrent applies by the same applicant cannot both land.
func (r *JobRepo) AddApplicant(ctx context.Context, jobID uuid.UUID, applicant models.JobApplicant) error {
	entry, err := marshalJSON([]models.JobApplicant{applicant})
	if err != nil {
		return err
	}
	probe, err := marshalJSON([]map[string]string{{"id": applicant.ID.String()}})
	if err != nil {
		return err
	}

	query := `
		UPDATE jobs
		SET applicants = COALESCE(NULLIF(applicants, 'null'::jsonb), '[]'::jsonb) || $2::jsonb, updated_at = NOW()
		WHERE id = $1 AND NOT applicants @> $3::jsonb
	`
	cmdTag, err := r.db.Exec(ctx, query, jobID, entry, probe)
	if err != nil {
		return fmt.Errorf("failed to add applicant to job %s: %w", jobID, err)
	}
	if cmdTag.RowsAffected() == 1 {
		return nil
	}

	// Nothing updated: either the job is gone or the applicant is listed.
	if _, err := r.GetByID(ctx, jobID); err != nil {
		return err
	}
	return storage.ErrConflict
}
