package models

import (
	"github.com/google/uuid"
)

// Migrate converts an identity to another role. Login methods, reset state
// and the shared profile carry over; the role specific payload starts
// empty. The result has a fresh ID and unset timestamps, the store assigns
// those when the swap is persisted.
func Migrate(existing *Identity, target Role) (*Identity, error) {
	if !target.Assignable() {
		return nil, ErrInvalidRole
	}

	src := existing.Clone()
	return &Identity{
		ID:           uuid.New(),
		Email:        src.Email,
		PasswordHash: src.PasswordHash,
		ResetToken:   src.ResetToken,
		ResetExpires: src.ResetExpires,
		Providers:    src.Providers,
		Tokens:       src.Tokens,
		Profile:      src.Profile,
		Role:         target,
		RoleProfile:  DefaultRoleProfile(target),
	}, nil
}
