package services

import (
	"auth-account/internal/event"
	"auth-account/internal/repository"
	"auth-account/internal/testutil"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, time.October, 14, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []event.OTPNotification
	err  error
}

func (r *recordingNotifier) SendOTP(_ context.Context, n event.OTPNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func (r *recordingNotifier) last() event.OTPNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent[len(r.sent)-1]
}

type fixture struct {
	store    repository.Store
	clock    *fakeClock
	jwt      *JWTService
	otp      *OTPService
	lockout  *LockoutService
	register *RegistrationService
	auth     *AuthService
	profile  *ProfileService
	notifier *recordingNotifier
	objects  *fakeObjectStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zap.NewNop()
	store := testutil.NewStore(t)
	clock := newFakeClock()

	jwtService := NewJWTService("test-secret", "auth-account", time.Hour)
	jwtService.now = clock.Now

	otp := NewOTPService(store, 5*time.Minute)
	otp.now = clock.Now

	lockout := NewLockoutService(store, DefaultLockoutThreshold)

	register := NewRegistrationService(store, logger)
	register.now = clock.Now

	notifier := &recordingNotifier{}
	auth := NewAuthService(store, jwtService, otp, lockout, nil, notifier, logger, AuthServiceOptions{})

	objects := &fakeObjectStore{}
	profile := NewProfileService(store, otp, objects, logger)
	profile.now = clock.Now

	return &fixture{
		store:    store,
		clock:    clock,
		jwt:      jwtService,
		otp:      otp,
		lockout:  lockout,
		register: register,
		auth:     auth,
		profile:  profile,
		notifier: notifier,
		objects:  objects,
	}
}

// registerUser creates an account and returns its id.
func (f *fixture) registerUser(t *testing.T, email, password string) int64 {
	t.Helper()
	user, err := f.register.Register(context.Background(), email, password)
	require.NoError(t, err)
	return user.UserID
}

// issueOTP requests a code for email and returns what the notifier received.
func (f *fixture) issueOTP(t *testing.T, email string) string {
	t.Helper()
	_, err := f.auth.RequestOTP(context.Background(), email)
	require.NoError(t, err)
	return f.notifier.last().OTP
}
