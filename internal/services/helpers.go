package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"html"
	"strings"

	"job-board-api/internal/models"
	"job-board-api/internal/storage"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
)

// MapRepoError maps storage errors to service errors
func MapRepoError(err error, operation string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, operation)
	}
	if errors.Is(err, storage.ErrDuplicateEmail) {
		return fmt.Errorf("%w: %s (duplicate email)", ErrConflict, operation)
	}
	if errors.Is(err, storage.ErrConflict) {
		return fmt.Errorf("%w: %s (%v)", ErrConflict, operation, err)
	}
	log.Error().Err(err).Str("operation", operation).Msg("Unexpected repository error")
	return fmt.Errorf("internal error during %s: %w", operation, err)
}

// hashError keeps a failed hash fatal: the caller must abort the write.
func hashError(err error) error {
	return fmt.Errorf("%w: %w", ErrCredentialHash, err)
}

// newResetToken returns 16 random bytes, hex encoded.
func newResetToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

var textPolicy = bluemonday.StrictPolicy()

// sanitize strips any markup from user supplied free text. The policy
// escapes what it keeps, so entities are turned back into plain text.
func sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

func sanitizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = sanitize(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func sanitizeProfile(p models.Profile) models.Profile {
	return models.Profile{
		FirstName: sanitize(p.FirstName),
		LastName:  sanitize(p.LastName),
		Gender:    sanitize(p.Gender),
		Location:  sanitize(p.Location),
		Website:   p.Website,
		Picture:   p.Picture,
	}
}
