package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"job-board-api/internal/metrics"
	"job-board-api/internal/models"
	"job-board-api/internal/notify"
	"job-board-api/internal/storage"
	"job-board-api/internal/transport/dto"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultResetWindow is how long an issued reset token stays redeemable.
	DefaultResetWindow = time.Hour
	// DefaultDeliveryTimeout bounds a reset link delivery running after the request returned.
	DefaultDeliveryTimeout = 30 * time.Second
)

type ResetOptions struct {
	Window          time.Duration
	BaseURL         string // prefix of the emailed link, e.g. https://jobs.example.com
	DeliveryTimeout time.Duration
	Now             func() time.Time
}

// ResetResult is a completed reset. NotificationErr is set when the
// confirmation mail failed; the new password is in effect regardless.
type ResetResult struct {
	Identity        *models.Identity
	NotificationErr error
}

type passwordResetService struct {
	repo     storage.UserRepository
	hasher   PasswordHasher
	notifier notify.Notifier
	metrics  metrics.Recorder
	window   time.Duration
	baseURL  string
	now      func() time.Time

	deliveryTimeout time.Duration
	inflight        sync.WaitGroup
}

func NewPasswordResetService(repo storage.UserRepository, hasher PasswordHasher, notifier notify.Notifier, rec metrics.Recorder, opts ResetOptions) PasswordResetService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if opts.Window <= 0 {
		opts.Window = DefaultResetWindow
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = DefaultDeliveryTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &passwordResetService{
		repo:     repo,
		hasher:   hasher,
		notifier: notifier,
		metrics:  rec,
		window:   opts.Window,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		now:      opts.Now,

		deliveryTimeout: opts.DeliveryTimeout,
	}
}

func (s *passwordResetService) RequestReset(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	identity, err := s.repo.FindByEmail(ctx, models.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.metrics.RecordPasswordReset("request", "unknown_email")
			log.Info().Msg("Password reset requested for unknown email")
			return nil
		}
		return MapRepoError(err, "request password reset")
	}

	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	window := models.ResetWindow{Token: token, Expires: s.now().Add(s.window)}
	if _, err := s.repo.Update(ctx, identity.ID, &models.IdentityPatch{Reset: &window}); err != nil {
		return MapRepoError(err, "request password reset")
	}
	s.metrics.RecordPasswordReset("request", "issued")
	log.Info().Str("user_id", identity.ID.String()).Time("expires", window.Expires).Msg("Password reset token issued")

	// Neither the outcome nor the latency may depend on delivery, or the
	// answer would reveal that the account exists.
	s.deliverDetached(ctx, notify.ResetRequested(identity.Email, s.baseURL+"/reset/"+token))
	return nil
}

func (s *passwordResetService) ValidateToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidResetToken
	}
	if _, err := s.repo.FindByResetToken(ctx, token, s.now()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return MapRepoError(err, "validate reset token")
	}
	return nil
}

func (s *passwordResetService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) (*ResetResult, error) {
	// Cheap check first so bogus tokens do not cost a hash.
	if err := s.ValidateToken(ctx, req.Token); err != nil {
		s.metrics.RecordPasswordReset("redeem", "invalid")
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		return nil, hashError(err)
	}

	identity, err := s.repo.RedeemResetToken(ctx, req.Token, s.now(), hash)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.metrics.RecordPasswordReset("redeem", "invalid")
			return nil, ErrInvalidResetToken
		}
		return nil, MapRepoError(err, "reset password")
	}
	s.metrics.RecordPasswordReset("redeem", "success")
	log.Info().Str("user_id", identity.ID.String()).Msg("Password reset")

	result := &ResetResult{Identity: identity}
	if err := s.deliver(ctx, notify.PasswordChanged(identity.Email)); err != nil {
		result.NotificationErr = fmt.Errorf("%w: %w", ErrNotification, err)
	}
	return result, nil
}

// deliverDetached sends msg in the background. The delivery outlives the
// request context but not deliveryTimeout.
func (s *passwordResetService) deliverDetached(ctx context.Context, msg notify.Message) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deliveryTimeout)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()
		_ = s.deliver(ctx, msg)
	}()
}

func (s *passwordResetService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *passwordResetService) deliver(ctx context.Context, msg notify.Message) error {
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.metrics.RecordNotification(string(msg.Kind), "failure")
		log.Warn().Err(err).Str("kind", string(msg.Kind)).Msg("Failed to deliver account notification")
		return err
	}
	s.metrics.RecordNotification(string(msg.Kind), "success")
	return nil
}
