package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"job-board-api/internal/models"
	"job-board-api/internal/storage"

	"github.com/google/uuid"
)

type JobRepo struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*models.Job
	now  func() time.Time
}

func NewJobRepo() *JobRepo {
	return &JobRepo{jobs: make(map[uuid.UUID]*models.Job), now: time.Now}
}

var _ storage.JobRepository = (*JobRepo)(nil)

func (r *JobRepo) Create(_ context.Context, job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if _, taken := r.jobs[job.ID]; taken {
		return storage.ErrConflict
	}
	now := r.now()
	job.CreatedAt = now
	job.UpdatedAt = now
	r.jobs[job.ID] = job.Clone()
	return nil
}

func (r *JobRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return job.Clone(), nil
}

func (r *JobRepo) List(_ context.Context, limit, offset int) ([]*models.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*models.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		all = append(all, job.Clone())
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if offset >= len(all) {
		return []*models.Job{}, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *JobRepo) Update(_ context.Context, id uuid.UUID, patch *models.JobPatch) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	patch.Apply(job)
	job.UpdatedAt = r.now()
	return job.Clone(), nil
}

func (r *JobRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return storage.ErrNotFound
	}
	delete(r.jobs, id)
	return nil
}

func (r *JobRepo) AddApplicant(_ context.Context, jobID uuid.UUID, applicant models.JobApplicant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return storage.ErrNotFound
	}
	if job.HasApplicant(applicant.ID) {
		return storage.ErrConflict
	}
	job.Applicants = append(job.Applicants, applicant)
	job.UpdatedAt = r.now()
	return nil
}
