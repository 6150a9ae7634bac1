// Package credentials hashes and verifies passwords. Plaintext never leaves
// this package in any stored form.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/matthewhartstonge/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	AlgorithmBcrypt = "bcrypt"
	AlgorithmArgon2 = "argon2"

	DefaultCost = 10
)

var (
	ErrEmptyPassword    = errors.New("password must not be empty")
	ErrUnknownAlgorithm = errors.New("unknown hashing algorithm")
	ErrUnrecognizedHash = errors.New("unrecognized password hash format")
)

// Config selects the algorithm used for new hashes. Verification accepts
// hashes from either algorithm so switching does not lock anyone out.
type Config struct {
	Algorithm string
	Cost      int // bcrypt work factor
	Workers   int // concurrent hashing slots, defaults to GOMAXPROCS
}

// Store hashes on a bounded set of slots so slow hashes cannot pile up.
type Store struct {
	algorithm string
	cost      int
	argon     argon2.Config
	slots     chan struct{}
}

func NewStore(cfg Config) (*Store, error) {
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmBcrypt
	}
	if cfg.Algorithm != AlgorithmBcrypt && cfg.Algorithm != AlgorithmArgon2 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, cfg.Algorithm)
	}
	if cfg.Cost == 0 {
		cfg.Cost = DefaultCost
	}
	if cfg.Cost < bcrypt.MinCost || cfg.Cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d outside [%d, %d]", cfg.Cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	return &Store{
		algorithm: cfg.Algorithm,
		cost:      cfg.Cost,
		argon:     argon2.DefaultConfig(),
		slots:     make(chan struct{}, cfg.Workers),
	}, nil
}

// Hash returns a salted one-way hash of plaintext. A hashing failure is
// always returned; callers must not persist anything in that case.
func (s *Store) Hash(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if err := s.acquire(ctx); err != nil {
		return "", err
	}
	defer s.release()

	switch s.algorithm {
	case AlgorithmArgon2:
		encoded, err := s.argon.HashEncoded([]byte(plaintext))
		if err != nil {
			return "", fmt.Errorf("argon2 hash: %w", err)
		}
		return string(encoded), nil
	default:
		hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
		if err != nil {
			return "", fmt.Errorf("bcrypt hash: %w", err)
		}
		return string(hashed), nil
	}
}

// Verify reports whether plaintext matches hash. An empty hash never matches.
func (s *Store) Verify(ctx context.Context, plaintext, hash string) (bool, error) {
	if hash == "" || plaintext == "" {
		return false, nil
	}
	if err := s.acquire(ctx); err != nil {
		return false, err
	}
	defer s.release()

	switch {
	case strings.HasPrefix(hash, "$argon2"):
		ok, err := argon2.VerifyEncoded([]byte(plaintext), []byte(hash))
		if err != nil {
			return false, fmt.Errorf("argon2 verify: %w", err)
		}
		return ok, nil
	case strings.HasPrefix(hash, "$2"):
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("bcrypt verify: %w", err)
		}
		return true, nil
	default:
		return false, ErrUnrecognizedHash
	}
}

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release() {
	<-s.slots
}
