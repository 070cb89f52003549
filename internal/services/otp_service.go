package services

import (
	"auth-account/internal/models"
	"auth-account/internal/repository"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
	_ "time/tzdata"
)

var (
	ErrOTPNotRequested    = errors.New("no OTP request found")
	ErrOTPMismatch        = errors.New("invalid OTP")
	ErrOTPExpired         = errors.New("OTP has expired")
	ErrOTPInvalidTimezone = errors.New("invalid timezone")
)

const (
	otpMin = 100000
	otpMax = 999999
)

// GenerateOTP draws a code uniformly from [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}

type OTPService struct {
	store repository.Store
	ttl   time.Duration
	now   func() time.Time
}

func NewOTPService(store repository.Store, ttl time.Duration) *OTPService {
	return &OTPService{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// WithStore returns a copy bound to store, typically a transaction.
func (s *OTPService) WithStore(store repository.Store) *OTPService {
	cp := *s
	cp.store = store
	return &cp
}

// Issue stores a fresh code for email, replacing any earlier one, and
// returns it with its expiry instant.
func (s *OTPService) Issue(ctx context.Context, userID int64, email string) (string, time.Time, error) {
	code, err := GenerateOTP()
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := s.now().UTC().Add(s.ttl).Truncate(time.Second)
	err = s.store.OTPRequests().UpsertOTP(ctx, &models.OTPRequest{
		Email:     email,
		UserID:    userID,
		OTP:       code,
		ExpiredAt: expiresAt.Format(models.OTPTimeLayout),
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return code, expiresAt, nil
}

// Verify checks candidate against the code stored for email. The record is
// left in place; callers Consume it inside the transaction that makes the
// guarded change.
func (s *OTPService) Verify(ctx context.Context, email, candidate, timezone string) (*models.OTPRequest, error) {
	record, err := s.store.OTPRequests().GetOTPByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOTPNotRequested
	}
	if err != nil {
		return nil, err
	}

	if err := CheckOTP(record, candidate, timezone, s.now()); err != nil {
		return nil, err
	}
	return record, nil
}

// VerifyByCode locates the request holding candidate without knowing the
// email, then applies the same timezone and expiry rules as Verify. A row
// owned by userID is preferred when codes collide across accounts.
func (s *OTPService) VerifyByCode(ctx context.Context, userID int64, candidate, timezone string) (*models.OTPRequest, error) {
	record, err := s.store.OTPRequests().GetOTPByCode(ctx, candidate, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOTPMismatch
	}
	if err != nil {
		return nil, err
	}

	if err := CheckOTP(record, candidate, timezone, s.now()); err != nil {
		return nil, err
	}
	return record, nil
}

// Consume deletes the request for email if it still holds code. Run it in
// the same transaction as the change the code authorises: when a concurrent
// request consumed or replaced the code first, it fails with
// ErrOTPNotRequested and the change must be rolled back.
func (s *OTPService) Consume(ctx context.Context, email, code string) error {
	err := s.store.OTPRequests().DeleteOTP(ctx, email, code)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrOTPNotRequested
	}
	return err
}

// CheckOTP applies the validation order: not requested, mismatch, timezone,
// expiry.
func CheckOTP(record *models.OTPRequest, candidate, timezone string, now time.Time) error {
	if record == nil || record.OTP == "" {
		return ErrOTPNotRequested
	}
	if record.OTP != candidate {
		return ErrOTPMismatch
	}

	loc, err := ResolveTimezone(timezone)
	if err != nil {
		return err
	}

	expiresAt, err := time.ParseInLocation(models.OTPTimeLayout, record.ExpiredAt, time.UTC)
	if err != nil {
		return ErrOTPNotRequested
	}
	if now.In(loc).After(expiresAt.In(loc)) {
		return ErrOTPExpired
	}
	return nil
}

// ResolveTimezone loads an explicit IANA zone, failing with
// ErrOTPInvalidTimezone when it is unknown. Without one it falls back to
// the server's local zone, or UTC if that is unavailable.
func ResolveTimezone(name string) (*time.Location, error) {
	if name != "" {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, ErrOTPInvalidTimezone
		}
		return loc, nil
	}
	if time.Local != nil {
		return time.Local, nil
	}
	return time.UTC, nil
}
