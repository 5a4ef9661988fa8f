package auth

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rqwannn/Moodiary/internal/config"
)

const (
	testEmail    = "a@b.com"
	testPassword = "Abcdef1!"
)

func newTestLogger(t *testing.T) *zap.Logger {
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	return logger
}

func newTestConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:            "test-secret-key",
		Algorithm:            "HS256",
		AccessTokenDuration:  30 * time.Minute,
		RefreshTokenDuration: 72 * time.Hour,
		MaxLoginAttempts:     5,
		LockoutDuration:      30 * time.Minute,
		BcryptCost:           bcrypt.MinCost,
		MaxConcurrentHashes:  2,
	}
}

func newTestService(t *testing.T) *Service {
	return newTestServiceWithRepo(t, NewMemoryRepository())
}

func newTestServiceWithRepo(t *testing.T, repo Repository) *Service {
	svc, err := NewService(
		newTestConfig(),
		newTestLogger(t),
		repo,
		NewMetrics(prometheus.NewRegistry()),
	)
	require.NoError(t, err)
	return svc
}

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(newTestService(t), newTestLogger(t))
}

// testClock is a settable clock shared by a service and its token codec.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func withClock(svc *Service) *testClock {
	clock := &testClock{now: time.Now()}
	svc.now = clock.Now
	svc.tokens.now = clock.Now
	return clock
}

func registerTestAccount(t *testing.T, svc *Service, email string) *Account {
	account, err := svc.Register(context.Background(), Registration{
		Email:           email,
		Password:        testPassword,
		ConfirmPassword: testPassword,
		Name:            "Test User",
		PersonalityType: "INTJ",
	})
	require.NoError(t, err)
	return account
}
