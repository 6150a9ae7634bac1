package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"job-board-api/internal/models"
	"job-board-api/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const userColumns = `id, email, password_hash, reset_token, reset_expires, providers, auth_tokens, profile, role, role_profile, created_at, updated_at`

// UserRepo implements the storage.UserRepository interface using PostgreSQL.
// The variable parts of an identity live in JSONB columns.
type UserRepo struct {
	db Querier
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{db: db}
}

// WithTx creates a new UserRepo bound to the transaction.
func (r *UserRepo) WithTx(tx pgx.Tx) *UserRepo {
	return &UserRepo{db: tx}
}

// Compile-time check to ensure UserRepo implements UserRepository
var _ storage.UserRepository = (*UserRepo)(nil)

func scanIdentity(row pgx.Row) (*models.Identity, error) {
	var (
		identity                                models.Identity
		resetToken                              *string
		providers, tokens, profile, roleProfile []byte
	)
	err := row.Scan(
		&identity.ID,
		&identity.Email,
		&identity.PasswordHash,
		&resetToken,
		&identity.ResetExpires,
		&providers,
		&tokens,
		&profile,
		&identity.Role,
		&roleProfile,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if resetToken != nil {
		identity.ResetToken = *resetToken
	}

	identity.Providers = map[string]string{}
	identity.Tokens = []models.AuthToken{}
	if err := unmarshalJSON(providers, &identity.Providers); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(tokens, &identity.Tokens); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(profile, &identity.Profile); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(roleProfile, &identity.RoleProfile); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *UserRepo) findOne(ctx context.Context, where string, args ...any) (*models.Identity, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	identity, err := scanIdentity(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return identity, nil
}

// FindByID retrieves a single identity by ID.
func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	return r.findOne(ctx, `id = $1`, id)
}

// FindByEmail expects an already normalised address.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return r.findOne(ctx, `email = $1`, email)
}

func (r *UserRepo) FindByProvider(ctx context.Context, provider, subject string) (*models.Identity, error) {
	return r.findOne(ctx, `providers ->> $1 = $2`, provider, subject)
}

func (r *UserRepo) FindByResetToken(ctx context.Context, token string, now time.Time) (*models.Identity, error) {
	return r.findOne(ctx, `reset_token = $1 AND reset_expires > $2`, token, now)
}

// ListByRole returns the newest identities holding role.
func (r *UserRepo) ListByRole(ctx context.Context, role models.Role, limit int) ([]*models.Identity, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.Query(ctx, query, role, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by role: %w", err)
	}
	defer rows.Close()

	identities, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Identity, error) {
		return scanIdentity(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan users by role: %w", err)
	}
	if identities == nil {
		identities = []*models.Identity{} // Return empty slice, not nil
	}
	return identities, nil
}

// Insert saves a new identity and fills in its timestamps.
func (r *UserRepo) Insert(ctx context.Context, identity *models.Identity) error {
	if identity.ID == uuid.Nil {
		identity.ID = uuid.New()
	}
	providers, err := marshalJSON(identity.Providers)
	if err != nil {
		return err
	}
	tokens, err := marshalJSON(identity.Tokens)
	if err != nil {
		return err
	}
	profile, err := marshalJSON(identity.Profile)
	if err != nil {
		return err
	}
	roleProfile, err := marshalJSON(identity.RoleProfile)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err = r.db.QueryRow(ctx, query,
		identity.ID,
		identity.Email,
		identity.PasswordHash,
		nullableString(identity.ResetToken),
		identity.ResetExpires,
		providers,
		tokens,
		profile,
		identity.Role,
		roleProfile,
	).Scan(&identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	log.Debug().Str("user_id", identity.ID.String()).Msg("User inserted")
	return nil
}

// Update applies the non-nil fields of patch.
func (r *UserRepo) Update(ctx context.Context, id uuid.UUID, patch *models.IdentityPatch) (*models.Identity, error) {
	var b setBuilder

	if patch.Email != nil {
		b.add("email", *patch.Email)
	}
	if patch.PasswordHash != nil {
		b.add("password_hash", *patch.PasswordHash)
	}
	if patch.Reset != nil {
		if patch.Reset.IsZero() {
			b.raw("reset_token = NULL")
			b.raw("reset_expires = NULL")
		} else {
			b.add("reset_token", patch.Reset.Token)
			b.add("reset_expires", patch.Reset.Expires)
		}
	}
	if patch.Links != nil {
		providers, err := marshalJSON(patch.Links.Providers)
		if err != nil {
			return nil, err
		}
		tokens, err := marshalJSON(patch.Links.Tokens)
		if err != nil {
			return nil, err
		}
		b.add("providers", providers)
		b.add("auth_tokens", tokens)
	}
	if patch.Profile != nil {
		profile, err := marshalJSON(patch.Profile)
		if err != nil {
			return nil, err
		}
		b.add("profile", profile)
	}
	if patch.RoleProfile != nil {
		roleProfile, err := marshalJSON(patch.RoleProfile)
		if err != nil {
			return nil, err
		}
		b.add("role_profile", roleProfile)
	}

	query, args := b.build("users", id, userColumns)
	identity, err := scanIdentity(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		if mapped := mapWriteError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to update user %s: %w", id, err)
	}
	return identity, nil
}

// Delete removes an identity by its ID.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Replace deletes oldID and inserts replacement inside one transaction.
func (r *UserRepo) Replace(ctx context.Context, oldID uuid.UUID, replacement *models.Identity) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		txRepo := r.WithTx(tx)
		if err := txRepo.Delete(ctx, oldID); err != nil {
			return err
		}
		return txRepo.Insert(ctx, replacement)
	})
}

// RedeemResetToken is a single conditional UPDATE. A concurrent redemption
// blocks on the row lock and then no longer matches the WHERE clause.
func (r *UserRepo) RedeemResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (*models.Identity, error) {
	query := `
		UPDATE users
		SET password_hash = $1, reset_token = NULL, reset_expires = NULL, updated_at = NOW()
		WHERE reset_token = $2 AND reset_expires > $3
		RETURNING ` + userColumns
	identity, err := scanIdentity(r.db.QueryRow(ctx, query, passwordHash, token, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to redeem reset token: %w", err)
	}
	return identity, nil
}

// AddOpening appends to the recruiter's openings array.
func (r *UserRepo) AddOpening(ctx context.Context, recruiterID uuid.UUID, opening models.Opening) error {
	payload, err := marshalJSON([]models.Opening{opening})
	if err != nil {
		return err
	}
	query := `
		UPDATE users
		SET role_profile = jsonb_set(
				role_profile,
				'{recruiter,openings}',
				COALESCE(NULLIF(role_profile -> 'recruiter' -> 'openings', 'null'::jsonb), '[]'::jsonb) || $2::jsonb
			),
			updated_at = NOW()
		WHERE id = $1 AND role = 'recruiter'
	`
	cmdTag, err := r.db.Exec(ctx, query, recruiterID, payload)
	if err != nil {
		return fmt.Errorf("failed to add opening for %s: %w", recruiterID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// RemoveOpening drops every opening pointing at jobID.
func (r *UserRepo) RemoveOpening(ctx context.Context, recruiterID, jobID uuid.UUID) error {
	query := `
		UPDATE users
		SET role_profile = jsonb_set(
				role_profile,
				'{recruiter,openings}',
				COALESCE(
					(SELECT jsonb_agg(o)
					 FROM jsonb_array_elements(COALESCE(NULLIF(role_profile -> 'recruiter' -> 'openings', 'null'::jsonb), '[]'::jsonb)) AS o
					 WHERE o ->> 'jobId' <> $2),
					'[]'::jsonb
				)
			),
			updated_at = NOW()
		WHERE id = $1 AND role = 'recruiter'
	`
	cmdTag, err := r.db.Exec(ctx, query, recruiterID, jobID.String())
	if err != nil {
		return fmt.Errorf("failed to remove opening for %s: %w", recruiterID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
