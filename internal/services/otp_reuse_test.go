package services

import (
	"auth-account/internal/apperror"
	"auth-account/internal/models"
	"auth-account/internal/repository"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// gatedStore holds each OTP read until every party has read,
// so every caller verifies the same code before any of them consumes it.
type gatedStore struct {
	repository.Store
	gate *readGate
}

func (s gatedStore) OTPRequests() repository.IOTPRepository {
	return gatedOTPRepository{IOTPRepository: s.Store.OTPRequests(), gate: s.gate}
}

type gatedOTPRepository struct {
	repository.IOTPRepository
	gate *readGate
}

func (r gatedOTPRepository) GetOTPByEmail(ctx context.Context, email string) (*models.OTPRequest, error) {
	record, err := r.IOTPRepository.GetOTPByEmail(ctx, email)
	r.gate.wait()
	return record, err
}

type readGate struct {
	mu      sync.Mutex
	parties int
	arrived int
	open    chan struct{}
}

func newReadGate(parties int) *readGate {
	return &readGate{parties: parties, open: make(chan struct{})}
}

func (g *readGate) wait() {
	g.mu.Lock()
	g.arrived++
	switch {
	case g.arrived == g.parties:
		close(g.open)
	case g.arrived > g.parties:
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()
	<-g.open
}

// raceOTP runs fn from two goroutines that both pass verification before
// either consumes, and returns both results.
func raceOTP(t *testing.T, fn func() error) []error {
	t.Helper()
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = fn()
		}(i)
	}
	wg.Wait()
	return errs
}

func assertSingleUse(t *testing.T, errs []error) {
	t.Helper()
	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assertAppError(t, err, apperror.KindBadRequest, "No OTP request found")
	}
	assert.Equal(t, 1, succeeded, "exactly one caller may use the code")
}

func newGatedAuth(f *fixture) *AuthService {
	store := gatedStore{Store: f.store, gate: newReadGate(2)}
	otp := NewOTPService(store, f.otp.ttl)
	otp.now = f.clock.Now
	lockout := NewLockoutService(store, DefaultLockoutThreshold)
	return NewAuthService(store, f.jwt, otp, lockout, nil, f.notifier, zap.NewNop(), AuthServiceOptions{})
}

func TestResetPassword_ConcurrentSameCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.registerUser(t, "a@example.com", "abc123!")
	code := f.issueOTP(t, "a@example.com")

	auth := newGatedAuth(f)
	errs := raceOTP(t, func() error {
		return auth.ResetPassword(ctx, "a@example.com", "new-pass1!", code, "")
	})
	assertSingleUse(t, errs)

	_, err := f.otp.Verify(ctx, "a@example.com", code, "")
	assert.ErrorIs(t, err, ErrOTPNotRequested)
}

func TestUnlockAccount_ConcurrentSameCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.registerUser(t, "a@example.com", "abc123!")
	lockAccount(t, f, "a@example.com")
	code := f.issueOTP(t, "a@example.com")

	auth := newGatedAuth(f)
	errs := raceOTP(t, func() error {
		return auth.UnlockAccount(ctx, "a@example.com", code, "")
	})
	assertSingleUse(t, errs)

	user, err := f.store.Users().GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, user.Status)
}

func TestResetPassword_StaleCodeRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.registerUser(t, "a@example.com", "abc123!")
	code := f.issueOTP(t, "a@example.com")
	replacement := "999999"
	if code == replacement {
		replacement = "888888"
	}

	// The code is replaced between verification and the update.
	store := replacingStore{Store: f.store, replace: func() {
		require.NoError(t, f.store.OTPRequests().UpsertOTP(ctx, &models.OTPRequest{
			Email: "a@example.com", UserID: id, OTP: replacement, ExpiredAt: "2026-10-14T08:05:00",
		}))
	}}
	otp := NewOTPService(store, f.otp.ttl)
	otp.now = f.clock.Now
	auth := NewAuthService(store, f.jwt, otp, f.lockout, nil, f.notifier, zap.NewNop(), AuthServiceOptions{})

	err := auth.ResetPassword(ctx, "a@example.com", "new-pass1!", code, "")
	assertAppError(t, err, apperror.KindBadRequest, "No OTP request found")

	_, err = f.auth.Login(ctx, "a@example.com", "abc123!")
	assert.NoError(t, err, "password must be unchanged")
}

type replacingStore struct {
	repository.Store
	replace func()
}

func (s replacingStore) OTPRequests() repository.IOTPRepository {
	return replacingOTPRepository{IOTPRepository: s.Store.OTPRequests(), replace: s.replace}
}

type replacingOTPRepository struct {
	repository.IOTPRepository
	replace func()
}

func (r replacingOTPRepository) GetOTPByEmail(ctx context.Context, email string) (*models.OTPRequest, error) {
	record, err := r.IOTPRepository.GetOTPByEmail(ctx, email)
	r.replace()
	return record, err
}
