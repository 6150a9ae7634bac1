package services

import (
	"context"
	"errors"

	"job-board-api/internal/models"
	"job-board-api/internal/storage"
	"job-board-api/internal/transport/dto"

	"github.com/rs/zerolog/log"
)

// MigrateRole swaps the caller's identity for a freshly shaped one of the
// requested role. The store replaces old with new atomically, so a failed
// swap leaves the account as it was. Asking for the current role changes
// nothing.
func (s *accountService) MigrateRole(ctx context.Context, viewer *models.Identity, req *dto.AccountTypeRequest) (*models.Identity, error) {
	target, err := models.ParseRole(req.Type)
	if err != nil {
		s.metrics.RecordRoleMigration("invalid")
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, viewer.ID)
	if err != nil {
		return nil, MapRepoError(err, "change account type")
	}
	if current.Role == target {
		return current, nil
	}

	next, err := models.Migrate(current, target)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, current.ID, next); err != nil {
		s.metrics.RecordRoleMigration("failure")
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return nil, userError(ErrConflict, "Account with that email address already exists.")
		}
		return nil, MapRepoError(err, "change account type")
	}

	s.metrics.RecordRoleMigration("success")
	log.Info().
		Str("old_id", current.ID.String()).
		Str("new_id", next.ID.String()).
		Str("from", current.Role.String()).
		Str("to", target.String()).
		Msg("Account type changed")
	return next, nil
}
