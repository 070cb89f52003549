package services

import (
	"auth-account/internal/apperror"
	"auth-account/internal/event"
	"auth-account/internal/models"
	"auth-account/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

type IAuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	RequestOTP(ctx context.Context, email string) (*OTPIssueResult, error)
	UnlockAccount(ctx context.Context, email, otp, timezone string) error
	ResetPassword(ctx context.Context, email, newPassword, otp, timezone string) error
}

type LoginResult struct {
	User             *models.User
	AccessToken      string
	ExpiresInSeconds int64
}

type OTPIssueResult struct {
	UserID int64
	Email  string
	// OTP is only set when codes are echoed back to the caller.
	OTP string
}

type AuthServiceOptions struct {
	// ExposeOTP echoes issued codes in the response. Development only.
	ExposeOTP bool
}

type AuthService struct {
	store    repository.Store
	jwt      *JWTService
	otp      *OTPService
	lockout  *LockoutService
	limiter  RateLimiter
	notifier event.Notifier
	logger   *zap.Logger
	opts     AuthServiceOptions
}

func NewAuthService(
	store repository.Store,
	jwt *JWTService,
	otp *OTPService,
	lockout *LockoutService,
	limiter RateLimiter,
	notifier event.Notifier,
	logger *zap.Logger,
	opts AuthServiceOptions,
) *AuthService {
	if limiter == nil {
		limiter = NoopRateLimiter{}
	}
	return &AuthService{
		store:    store,
		jwt:      jwt,
		otp:      otp,
		lockout:  lockout,
		limiter:  limiter,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
	}
}

func (s *AuthService) lookupUser(ctx context.Context, email string, notFound error) (*models.User, error) {
	user, err := s.store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, storeError("get user", err)
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.lookupUser(ctx, email, apperror.BadRequest("Invalid email or password"))
	if err != nil {
		return nil, err
	}

	if user.Status == models.UserStatusLocked {
		return nil, apperror.Forbidden("Account is locked. Please unlock it using OTP")
	}

	if !VerifyPassword(password, user.HashedPassword) {
		count, locked, err := s.lockout.RecordFailure(ctx, user.UserID)
		if err != nil {
			return nil, storeError("record failure", err)
		}
		if locked {
			s.logger.Warn("account locked after failed logins",
				zap.Int64("user_id", user.UserID),
				zap.Int("failed_attempts", count))
			return nil, apperror.Forbidden("Account locked due to too many failed attempts")
		}
		return nil, apperror.BadRequest(fmt.Sprintf("Invalid password. %d attempts remaining", s.lockout.Remaining(count)))
	}

	if err := s.lockout.Reset(ctx, user.UserID); err != nil {
		return nil, storeError("reset attempts", err)
	}

	token, err := s.jwt.GenerateNewToken(user)
	if err != nil {
		return nil, apperror.Internal("Failed to issue token", err)
	}

	return &LoginResult{
		User:             user,
		AccessToken:      token,
		ExpiresInSeconds: int64(s.jwt.TTL().Seconds()),
	}, nil
}

// RequestOTP issues a fresh code for email and hands it to the notifier.
// Delivery failures are logged only: the code is stored and the caller can
// ask again.
func (s *AuthService) RequestOTP(ctx context.Context, email string) (*OTPIssueResult, error) {
	user, err := s.lookupUser(ctx, email, apperror.NotFound("Email not found"))
	if err != nil {
		return nil, err
	}

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		s.logger.Warn("otp rate limiter unavailable, allowing request", zap.Error(err))
		allowed = true
	}
	if !allowed {
		return nil, apperror.RateLimited("Too many OTP requests, try again later")
	}

	code, expiresAt, err := s.otp.Issue(ctx, user.UserID, user.Email)
	if err != nil {
		return nil, storeError("issue otp", err)
	}

	err = s.notifier.SendOTP(ctx, event.OTPNotification{
		UserID:    user.UserID,
		Email:     user.Email,
		OTP:       code,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		s.logger.Error("otp delivery failed", zap.Int64("user_id", user.UserID), zap.Error(err))
	}

	result := &OTPIssueResult{UserID: user.UserID, Email: user.Email}
	if s.opts.ExposeOTP {
		result.OTP = code
	}
	return result, nil
}

func (s *AuthService) UnlockAccount(ctx context.Context, email, otp, timezone string) error {
	user, err := s.lookupUser(ctx, email, apperror.BadRequest("Email not found"))
	if err != nil {
		return err
	}
	if user.Status != models.UserStatusLocked {
		return apperror.BadRequest("Account is not locked")
	}

	if _, err := s.otp.Verify(ctx, email, otp, timezone); err != nil {
		return otpError(err)
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := s.otp.WithStore(tx).Consume(ctx, email, otp); err != nil {
			return err
		}
		return s.lockout.WithStore(tx).Unlock(ctx, user.UserID)
	})
	if err != nil {
		return txError("unlock account", err)
	}

	s.logger.Info("account unlocked", zap.Int64("user_id", user.UserID))
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword, otp, timezone string) error {
	user, err := s.lookupUser(ctx, email, apperror.NotFound("Email not found"))
	if err != nil {
		return err
	}

	if _, err := s.otp.Verify(ctx, email, otp, timezone); err != nil {
		return otpError(err)
	}

	hashed, err := hashNewPassword(newPassword)
	if err != nil {
		return err
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := s.otp.WithStore(tx).Consume(ctx, email, otp); err != nil {
			return err
		}
		return tx.Users().UpdatePassword(ctx, user.UserID, hashed)
	})
	if err != nil {
		return txError("reset password", err)
	}

	s.logger.Info("password reset", zap.Int64("user_id", user.UserID))
	return nil
}
