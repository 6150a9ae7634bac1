package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"job-board-api/internal/metrics"
	"job-board-api/internal/models"
	"job-board-api/internal/storage"
	"job-board-api/internal/transport/dto"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type accountService struct {
	repo    storage.UserRepository
	hasher  PasswordHasher
	metrics metrics.Recorder
}

// NewAccountService creates a new instance of AccountService.
func NewAccountService(repo storage.UserRepository, hasher PasswordHasher, rec metrics.Recorder) AccountService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &accountService{repo: repo, hasher: hasher, metrics: rec}
}

func (s *accountService) Signup(ctx context.Context, req *dto.SignupRequest) (*models.Identity, error) {
	role, err := models.ParseRole(req.Type)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		return nil, hashError(err)
	}

	creds := models.Credentials{PasswordHash: hash}
	profile := sanitizeProfile(models.Profile{FirstName: req.FirstName, LastName: req.LastName})

	var identity *models.Identity
	if role == models.RoleRecruiter {
		identity, err = models.NewRecruiter(req.Email, creds, profile)
	} else {
		identity, err = models.NewApplicant(req.Email, creds, profile)
	}
	if err != nil {
		return nil, NewValidationError("email", "Please enter a valid email address.")
	}

	if err := s.repo.Insert(ctx, identity); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return nil, userError(ErrConflict, "Account with that email address already exists.")
		}
		return nil, MapRepoError(err, "signup")
	}

	s.metrics.RecordSignup(role.String())
	log.Info().Str("user_id", identity.ID.String()).Str("role", role.String()).Msg("Account created")
	return identity, nil
}

func (s *accountService) Login(ctx context.Context, req *dto.LoginRequest) (*models.Identity, error) {
	identity, err := s.repo.FindByEmail(ctx, models.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.metrics.RecordLogin("failure")
			return nil, ErrInvalidCredentials
		}
		return nil, MapRepoError(err, "login")
	}

	// Provider-only accounts have no password to check against.
	if !identity.HasPassword() {
		s.metrics.RecordLogin("failure")
		log.Info().Str("user_id", identity.ID.String()).Msg("Password login attempted on provider-only account")
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(ctx, req.Password, identity.PasswordHash)
	if err != nil {
		return nil, hashError(err)
	}
	if !ok {
		s.metrics.RecordLogin("failure")
		log.Info().Str("user_id", identity.ID.String()).Msg("Login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	s.metrics.RecordLogin("success")
	return identity, nil
}

func (s *accountService) GetByID(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	identity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, MapRepoError(err, "get account")
	}
	return identity, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, viewer *models.Identity, req *dto.UpdateProfileRequest) (*models.Identity, error) {
	// Re-read so openings added since the caller's view are not overwritten.
	current, err := s.repo.FindByID(ctx, viewer.ID)
	if err != nil {
		return nil, MapRepoError(err, "update profile")
	}

	patch := &models.IdentityPatch{}
	if email := models.NormalizeEmail(req.Email); email != current.Email {
		patch.Email = &email
	}

	profile := sanitizeProfile(models.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
		Location:  req.Location,
		Website:   req.Website,
		Picture:   current.Profile.Picture,
	})
	patch.Profile = &profile

	roleProfile := current.RoleProfile.Clone()
	switch {
	case roleProfile.Applicant != nil:
		a := roleProfile.Applicant
		a.Major = sanitize(req.Major)
		a.GraduationYear = req.GraduationYear
		a.Degree = sanitize(req.Degree)
		a.School = sanitize(req.School)
		a.ResumeURL = req.ResumeURL
		a.Skills = sanitizeTags(models.SplitTags(req.Skills))
		a.Interests = sanitizeTags(models.SplitTags(req.Interests))
		patch.RoleProfile = &roleProfile
	case roleProfile.Recruiter != nil:
		r := roleProfile.Recruiter
		r.Organization = sanitize(req.Organization)
		r.Title = sanitize(req.Title)
		r.Skills = sanitizeTags(models.SplitTags(req.Skills))
		r.Interests = sanitizeTags(models.SplitTags(req.Interests))
		patch.RoleProfile = &roleProfile
	}

	updated, err := s.repo.Update(ctx, current.ID, patch)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return nil, userError(ErrConflict, "The email address you have entered is already associated with an account.")
		}
		return nil, MapRepoError(err, "update profile")
	}
	return updated, nil
}

func (s *accountService) ChangePassword(ctx context.Context, viewer *models.Identity, req *dto.ChangePasswordRequest) (*models.Identity, error) {
	hash, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		return nil, hashError(err)
	}

	updated, err := s.repo.Update(ctx, viewer.ID, &models.IdentityPatch{PasswordHash: &hash})
	if err != nil {
		return nil, MapRepoError(err, "change password")
	}
	log.Info().Str("user_id", viewer.ID.String()).Msg("Password changed")
	return updated, nil
}

func (s *accountService) Delete(ctx context.Context, viewer *models.Identity) error {
	if err := s.repo.Delete(ctx, viewer.ID); err != nil {
		return MapRepoError(err, "delete account")
	}
	log.Info().Str("user_id", viewer.ID.String()).Msg("Account deleted")
	return nil
}

func (s *accountService) UnlinkProvider(ctx context.Context, viewer *models.Identity, provider string) (*models.Identity, error) {
	if !models.IsKnownProvider(provider) {
		return nil, NewValidationError("provider", "Unknown provider.")
	}

	current, err := s.repo.FindByID(ctx, viewer.ID)
	if err != nil {
		return nil, MapRepoError(err, "unlink provider")
	}

	tokens := slices.DeleteFunc(slices.Clone(current.Tokens), func(t models.AuthToken) bool {
		return t.Kind == provider
	})
	linked := current.IsLinked(provider)
	if !linked && len(tokens) == len(current.Tokens) {
		return current, nil
	}
	if linked && current.LoginMethods() == 1 {
		return nil, NewValidationError("provider", "Set a password or link another provider before unlinking your only login method.")
	}

	providers := make(map[string]string, len(current.Providers))
	for k, v := range current.Providers {
		if k != provider {
			providers[k] = v
		}
	}

	updated, err := s.repo.Update(ctx, current.ID, &models.IdentityPatch{
		Links: &models.Links{Providers: providers, Tokens: tokens},
	})
	if err != nil {
		return nil, MapRepoError(err, "unlink provider")
	}
	log.Info().Str("user_id", current.ID.String()).Str("provider", provider).Msg("Provider unlinked")
	return updated, nil
}

func (s *accountService) ResolveProviderLogin(ctx context.Context, viewer *models.Identity, req *dto.ProviderLoginRequest) (*models.Identity, error) {
	if !models.IsKnownProvider(req.Provider) {
		return nil, NewValidationError("provider", "Unknown provider.")
	}

	owner, err := s.repo.FindByProvider(ctx, req.Provider, req.Subject)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, MapRepoError(err, "provider login")
	}
	found := err == nil

	if viewer != nil {
		if found {
			if owner.ID != viewer.ID {
				return nil, userError(ErrConflict, fmt.Sprintf("That %s account is already linked to another account.", req.Provider))
			}
			return owner, nil
		}
		return s.linkProvider(ctx, viewer.ID, req)
	}

	if found {
		s.metrics.RecordLogin("success")
		return owner, nil
	}

	if req.Email == "" {
		return nil, NewValidationError("email", "The provider did not share an email address.")
	}
	if _, err := s.repo.FindByEmail(ctx, models.NormalizeEmail(req.Email)); err == nil {
		return nil, userError(ErrConflict, fmt.Sprintf("There is already an account using this email address. Sign in to that account and link %s from your account settings.", req.Provider))
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, MapRepoError(err, "provider login")
	}

	identity, err := models.NewUnassigned(req.Email, models.Credentials{
		Provider: req.Provider,
		Subject:  req.Subject,
		Token:    providerToken(req),
	}, sanitizeProfile(providerProfile(req)))
	if err != nil {
		return nil, NewValidationError("email", "The provider shared an invalid email address.")
	}
	if err := s.repo.Insert(ctx, identity); err != nil {
		return nil, MapRepoError(err, "provider signup")
	}

	s.metrics.RecordSignup(identity.Role.String())
	log.Info().Str("user_id", identity.ID.String()).Str("provider", req.Provider).Msg("Account created from provider login")
	return identity, nil
}

// linkProvider attaches the provider to an existing identity and fills
// profile fields that are still empty.
func (s *accountService) linkProvider(ctx context.Context, id uuid.UUID, req *dto.ProviderLoginRequest) (*models.Identity, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, MapRepoError(err, "link provider")
	}

	providers := make(map[string]string, len(current.Providers)+1)
	for k, v := range current.Providers {
		providers[k] = v
	}
	providers[req.Provider] = req.Subject
	tokens := slices.Clone(current.Tokens)
	if t := providerToken(req); t != nil {
		tokens = append(tokens, *t)
	}

	incoming := sanitizeProfile(providerProfile(req))
	profile := current.Profile
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&profile.FirstName, incoming.FirstName)
	fill(&profile.LastName, incoming.LastName)
	fill(&profile.Gender, incoming.Gender)
	fill(&profile.Location, incoming.Location)
	fill(&profile.Website, incoming.Website)
	fill(&profile.Picture, incoming.Picture)

	updated, err := s.repo.Update(ctx, id, &models.IdentityPatch{
		Links:   &models.Links{Providers: providers, Tokens: tokens},
		Profile: &profile,
	})
	if err != nil {
		return nil, MapRepoError(err, "link provider")
	}
	log.Info().Str("user_id", id.String()).Str("provider", req.Provider).Msg("Provider linked")
	return updated, nil
}

func providerToken(req *dto.ProviderLoginRequest) *models.AuthToken {
	if req.AccessToken == "" {
		return nil
	}
	return &models.AuthToken{Kind: req.Provider, AccessToken: req.AccessToken, TokenSecret: req.TokenSecret}
}

func providerProfile(req *dto.ProviderLoginRequest) models.Profile {
	return models.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
		Location:  req.Location,
		Website:   req.Website,
		Picture:   req.Picture,
	}
}

func (s *accountService) ListApplicants(ctx context.Context, limit int) ([]*models.Identity, error) {
	identities, err := s.repo.ListByRole(ctx, models.RoleApplicant, limit)
	if err != nil {
		return nil, MapRepoError(err, "list applicants")
	}
	return identities, nil
}
