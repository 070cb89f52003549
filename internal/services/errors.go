package services

import (
	"auth-account/internal/apperror"
	"auth-account/utils"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	msgWeakPassword = "Password must contain at least one letter, one number, and one special character"
	msgLongPassword = "Password must be at most 72 bytes"
)

// otpError maps OTP verification failures to client errors. Anything else is
// a store failure.
func otpError(err error) error {
	switch {
	case errors.Is(err, ErrOTPNotRequested):
		return apperror.BadRequest("No OTP request found")
	case errors.Is(err, ErrOTPMismatch):
		return apperror.BadRequest("Invalid OTP")
	case errors.Is(err, ErrOTPInvalidTimezone):
		return apperror.BadRequest("Invalid timezone")
	case errors.Is(err, ErrOTPExpired):
		return apperror.BadRequest("OTP has expired")
	default:
		return apperror.Internal("Failed to verify OTP", err)
	}
}

func isOTPError(err error) bool {
	return errors.Is(err, ErrOTPNotRequested) ||
		errors.Is(err, ErrOTPMismatch) ||
		errors.Is(err, ErrOTPInvalidTimezone) ||
		errors.Is(err, ErrOTPExpired)
}

// txError maps a failed OTP-guarded transaction. Losing the code to a
// concurrent request is an OTP failure; anything else is a store failure.
func txError(op string, err error) error {
	if isOTPError(err) {
		return otpError(err)
	}
	return storeError(op, err)
}

// hashNewPassword enforces the strength policy before hashing.
func hashNewPassword(password string) (string, error) {
	if err := utils.ValidatePasswordStrength(password); err != nil {
		return "", apperror.Validation(msgWeakPassword)
	}

	hashed, err := HashPassword(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperror.Validation(msgLongPassword)
	}
	if err != nil {
		return "", apperror.Internal("Failed to hash password", err)
	}
	return hashed, nil
}

func storeError(op string, err error) error {
	return apperror.Internal("Internal server error", fmt.Errorf("%s: %w", op, err))
}
