// Package memory keeps identities and jobs in process memory. It is used
// for local development and as the store behind service tests, and it
// honours the same atomicity contracts as the database stores.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"job-board-api/internal/models"
	"job-board-api/internal/storage"

	"github.com/google/uuid"
)

type UserRepo struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*models.Identity
	byEmail map[string]uuid.UUID
	now     func() time.Time
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:    make(map[uuid.UUID]*models.Identity),
		byEmail: make(map[string]uuid.UUID),
		now:     time.Now,
	}
}

var _ storage.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return identity.Clone(), nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *UserRepo) FindByProvider(_ context.Context, provider, subject string) (*models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, identity := range r.byID {
		if s, ok := identity.Providers[provider]; ok && s == subject {
			return identity.Clone(), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r *UserRepo) FindByResetToken(_ context.Context, token string, now time.Time) (*models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if identity := r.findResetLocked(token, now); identity != nil {
		return identity.Clone(), nil
	}
	return nil, storage.ErrNotFound
}

func (r *UserRepo) ListByRole(_ context.Context, role models.Role, limit int) ([]*models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Identity{}
	for _, identity := range r.byID {
		if identity.Role == role {
			out = append(out, identity.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *UserRepo) Insert(_ context.Context, identity *models.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(identity)
}

func (r *UserRepo) Update(_ context.Context, id uuid.UUID, patch *models.IdentityPatch) (*models.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if patch.Email != nil && *patch.Email != current.Email {
		if _, taken := r.byEmail[*patch.Email]; taken {
			return nil, storage.ErrDuplicateEmail
		}
		delete(r.byEmail, current.Email)
		r.byEmail[*patch.Email] = id
	}
	patch.Apply(current)
	current.UpdatedAt = r.now()
	return current.Clone(), nil
}

func (r *UserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.byID[id]
	if !ok {
		return storage.ErrNotFound
	}
	delete(r.byEmail, identity.Email)
	delete(r.byID, id)
	return nil
}

func (r *UserRepo) Replace(_ context.Context, oldID uuid.UUID, replacement *models.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.byID[oldID]
	if !ok {
		return storage.ErrNotFound
	}

	delete(r.byEmail, old.Email)
	delete(r.byID, oldID)
	if err := r.insertLocked(replacement); err != nil {
		r.byID[oldID] = old
		r.byEmail[old.Email] = oldID
		return err
	}
	return nil
}

func (r *UserRepo) RedeemResetToken(_ context.Context, token string, now time.Time, passwordHash string) (*models.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity := r.findResetLocked(token, now)
	if identity == nil {
		return nil, storage.ErrNotFound
	}
	patch := &models.IdentityPatch{PasswordHash: &passwordHash, Reset: &models.ResetWindow{}}
	patch.Apply(identity)
	identity.UpdatedAt = r.now()
	return identity.Clone(), nil
}

func (r *UserRepo) AddOpening(_ context.Context, recruiterID uuid.UUID, opening models.Opening) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.byID[recruiterID]
	if !ok || identity.RoleProfile.Recruiter == nil {
		return storage.ErrNotFound
	}
	identity.RoleProfile.Recruiter.Openings = append(identity.RoleProfile.Recruiter.Openings, opening)
	identity.UpdatedAt = r.now()
	return nil
}

func (r *UserRepo) RemoveOpening(_ context.Context, recruiterID, jobID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.byID[recruiterID]
	if !ok || identity.RoleProfile.Recruiter == nil {
		return storage.ErrNotFound
	}
	recruiter := identity.RoleProfile.Recruiter
	recruiter.Openings = slices.DeleteFunc(recruiter.Openings, func(o models.Opening) bool { return o.JobID == jobID })
	identity.UpdatedAt = r.now()
	return nil
}

func (r *UserRepo) insertLocked(identity *models.Identity) error {
	if _, taken := r.byEmail[identity.Email]; taken {
		return storage.ErrDuplicateEmail
	}
	if identity.ID == uuid.Nil {
		identity.ID = uuid.New()
	}
	if _, taken := r.byID[identity.ID]; taken {
		return storage.ErrConflict
	}
	now := r.now()
	identity.CreatedAt = now
	identity.UpdatedAt = now
	r.byID[identity.ID] = identity.Clone()
	r.byEmail[identity.Email] = identity.ID
	return nil
}

func (r *UserRepo) findResetLocked(token string, now time.Time) *models.Identity {
	if token == "" {
		return nil
	}
	for _, identity := range r.byID {
		if identity.ResetToken == token && identity.ResetPending(now) {
			return identity
		}
	}
	return nil
}
