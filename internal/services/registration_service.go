package services

import (
	"auth-account/internal/apperror"
	"auth-account/internal/models"
	"auth-account/internal/repository"
	"auth-account/utils"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

type IRegistrationService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
}

type RegistrationService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewRegistrationService(store repository.Store, logger *zap.Logger) *RegistrationService {
	return &RegistrationService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates the account with its profile, placeholder OTP row and
// zeroed login attempts in one transaction. The first account ever created
// becomes Admin.
func (s *RegistrationService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if err := utils.ValidateEmail(email); err != nil {
		return nil, apperror.Validation("Invalid email format")
	}

	hashed, err := hashNewPassword(password)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.Users().EmailExists(ctx, email)
	if err != nil {
		return nil, storeError("check email", err)
	}
	if exists {
		return nil, apperror.Conflict("Email already registered")
	}

	user := &models.User{
		Email:          email,
		HashedPassword: hashed,
		Status:         models.UserStatusActive,
		CreatedAt:      s.now().UTC().Format(time.RFC3339),
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().LockForRegistration(ctx); err != nil {
			return err
		}
		count, err := tx.Users().CountUsers(ctx)
		if err != nil {
			return err
		}
		user.Role = models.RoleCustomer
		if count == 0 {
			user.Role = models.RoleAdmin
		}

		if _, err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		if err := tx.Profiles().CreateProfile(ctx, user.UserID); err != nil {
			return err
		}
		if err := tx.OTPRequests().CreatePlaceholder(ctx, user.UserID, user.Email); err != nil {
			return err
		}
		return tx.LoginAttempts().CreateLoginAttempt(ctx, user.UserID)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperror.Conflict("Email already registered")
	}
	if err != nil {
		s.logger.Error("registration rolled back", zap.String("email", email), zap.Error(err))
		return nil, apperror.Internal("Registration failed", err)
	}

	s.logger.Info("user registered",
		zap.Int64("user_id", user.UserID),
		zap.String("role", string(user.Role)))
	return user, nil
}
