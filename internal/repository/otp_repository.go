package repository

import (
	"auth-account/internal/models"
	"auth-account/utils"
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type IOTPRepository interface {
	CreatePlaceholder(ctx context.Context, userID int64, email string) error
	UpsertOTP(ctx context.Context, otp *models.OTPRequest) error
	GetOTPByEmail(ctx context.Context, email string) (*models.OTPRequest, error)
	GetOTPByCode(ctx context.Context, code string, preferUserID int64) (*models.OTPRequest, error)
	DeleteOTP(ctx context.Context, email, code string) error
}

type OTPRepository struct {
	db sqlx.ExtContext
}

func NewOTPRepository(db sqlx.ExtContext) IOTPRepository {
	return &OTPRepository{
		db: db,
	}
}

// CreatePlaceholder writes the empty code row created with each account.
func (r *OTPRepository) CreatePlaceholder(ctx context.Context, userID int64, email string) error {
	query := `INSERT INTO otp_requests (email, user_id, otp, expired_at) VALUES (?, ?, '', '')`
	if err := utils.ExecWithCheck(ctx, r.db, query, utils.ExecInsert, email, userID); err != nil {
		return fmt.Errorf("failed to create otp placeholder: %w", mapError(err))
	}
	return nil
}

// UpsertOTP replaces whatever code is stored for otp.Email.
func (r *OTPRepository) UpsertOTP(ctx context.Context, otp *models.OTPRequest) error {
	query := `
		INSERT INTO otp_requests (email, user_id, otp, expired_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			user_id = excluded.user_id,
			otp = excluded.otp,
			expired_at = excluded.expired_at`
	err := utils.ExecWithCheck(ctx, r.db, query, utils.ExecInsert, otp.Email, otp.UserID, otp.OTP, otp.ExpiredAt)
	if err != nil {
		return fmt.Errorf("failed to upsert otp: %w", mapError(err))
	}
	return nil
}

func (r *OTPRepository) GetOTPByEmail(ctx context.Context, email string) (*models.OTPRequest, error) {
	var otp models.OTPRequest
	query := r.db.Rebind(`SELECT email, user_id, otp, expired_at FROM otp_requests WHERE email = ?`)

	if err := sqlx.GetContext(ctx, r.db, &otp, query, email); err != nil {
		return nil, fmt.Errorf("failed to get otp by email: %w", mapError(err))
	}
	return &otp, nil
}

// GetOTPByCode finds a live request by code alone. When several emails hold
// the same code, a row owned by preferUserID wins, then the one expiring last.
func (r *OTPRepository) GetOTPByCode(ctx context.Context, code string, preferUserID int64) (*models.OTPRequest, error) {
	if code == "" {
		return nil, ErrNotFound
	}

	var otp models.OTPRequest
	query := r.db.Rebind(`
		SELECT email, user_id, otp, expired_at FROM otp_requests
		WHERE otp = ?
		ORDER BY (user_id = ?) DESC, expired_at DESC
		LIMIT 1`)

	if err := sqlx.GetContext(ctx, r.db, &otp, query, code, preferUserID); err != nil {
		return nil, fmt.Errorf("failed to get otp by code: %w", mapError(err))
	}
	return &otp, nil
}

// DeleteOTP removes the request for email only while it still holds code.
// ErrNotFound means the code was already used or replaced.
func (r *OTPRepository) DeleteOTP(ctx context.Context, email, code string) error {
	if code == "" {
		return fmt.Errorf("failed to delete otp: %w", ErrNotFound)
	}
	query := `DELETE FROM otp_requests WHERE email = ? AND otp = ?`
	err := utils.ExecWithCheck(ctx, r.db, query, utils.ExecDelete, email, code)
	if errors.Is(err, utils.ErrNoRowsAffected) {
		return fmt.Errorf("failed to delete otp: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete otp: %w", mapError(err))
	}
	return nil
}
