package services_test

import (
	"context"
	"testing"
	"time"

	"job-board-api/internal/credentials"
	"job-board-api/internal/models"
	"job-board-api/internal/notify"
	"job-board-api/internal/services"
	"job-board-api/internal/storage/memory"
	"job-board-api/internal/transport/dto"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, msg notify.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	args := m.Called(ctx, plaintext)
	return args.String(0), args.Error(1)
}

func (m *MockHasher) Verify(ctx context.Context, plaintext, hash string) (bool, error) {
	args := m.Called(ctx, plaintext, hash)
	return args.Bool(0), args.Error(1)
}

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	users    *memory.UserRepo
	jobs     *memory.JobRepo
	hasher   *credentials.Store
	notifier *MockNotifier
	now      time.Time

	accounts services.AccountService
	resets   services.PasswordResetService
	jobSvc   services.JobService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hasher, err := credentials.NewStore(credentials.Config{Algorithm: credentials.AlgorithmBcrypt, Cost: 4})
	require.NoError(t, err)

	f := &fixture{
		users:    memory.NewUserRepo(),
		jobs:     memory.NewJobRepo(),
		hasher:   hasher,
		notifier: &MockNotifier{},
		now:      baseTime,
	}
	f.accounts = services.NewAccountService(f.users, hasher, nil)
	f.resets = services.NewPasswordResetService(f.users, hasher, f.notifier, nil, services.ResetOptions{
		Window:  time.Hour,
		BaseURL: "http://jobs.test/",
		Now:     func() time.Time { return f.now },
	})
	f.jobSvc = services.NewJobService(f.jobs, f.users)
	return f
}

func (f *fixture) signup(t *testing.T, email, password string, role models.Role) *models.Identity {
	t.Helper()
	identity, err := f.accounts.Signup(context.Background(), &dto.SignupRequest{
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
		Type:            string(role),
		FirstName:       "Ada",
		LastName:        "Lovelace",
	})
	require.NoError(t, err)
	return identity
}
