package repository

import (
	"auth-account/internal/models"
	"auth-account/utils"
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type ILoginAttemptRepository interface {
	CreateLoginAttempt(ctx context.Context, userID int64) error
	GetLoginAttempt(ctx context.Context, userID int64) (*models.LoginAttempt, error)
	IncrementFailedAttempts(ctx context.Context, userID int64) (int, error)
	SetLocked(ctx context.Context, userID int64, locked bool) error
	ResetLoginAttempt(ctx context.Context, userID int64) error
}

type LoginAttemptRepository struct {
	db sqlx.ExtContext
}

func NewLoginAttemptRepository(db sqlx.ExtContext) ILoginAttemptRepository {
	return &LoginAttemptRepository{
		db: db,
	}
}

func (r *LoginAttemptRepository) CreateLoginAttempt(ctx context.Context, userID int64) error {
	query := `INSERT INTO login_attempts (user_id, failed_attempts, locked) VALUES (?, 0, ?)`
	if err := utils.ExecWithCheck(ctx, r.db, query, utils.ExecInsert, userID, false); err != nil {
		return fmt.Errorf("failed to create login attempt: %w", mapError(err))
	}
	return nil
}

func (r *LoginAttemptRepository) GetLoginAttempt(ctx context.Context, userID int64) (*models.LoginAttempt, error) {
	var attempt models.LoginAttempt
	query := r.db.Rebind(`SELECT user_id, failed_attempts, locked FROM login_attempts WHERE user_id = ?`)

	if err := sqlx.GetContext(ctx, r.db, &attempt, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get login attempt: %w", mapError(err))
	}
	return &attempt, nil
}

// IncrementFailedAttempts adds one failure in a single statement, creating
// the row at 1 when absent, and returns the new count.
func (r *LoginAttemptRepository) IncrementFailedAttempts(ctx context.Context, userID int64) (int, error) {
	query := r.db.Rebind(`
		INSERT INTO login_attempts (user_id, failed_attempts, locked)
		VALUES (?, 1, ?)
		ON CONFLICT (user_id) DO UPDATE SET failed_attempts = login_attempts.failed_attempts + 1
		RETURNING failed_attempts`)

	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, query, userID, false); err != nil {
		return 0, fmt.Errorf("failed to increment login attempts: %w", mapError(err))
	}
	return count, nil
}

func (r *LoginAttemptRepository) SetLocked(ctx context.Context, userID int64, locked bool) error {
	query := `UPDATE login_attempts SET locked = ? WHERE user_id = ?`
	if err := utils.ExecWithCheck(ctx, r.db, query, utils.ExecUpdate, locked, userID); err != nil {
		return fmt.Errorf("failed to set lock flag: %w", mapError(err))
	}
	return nil
}

func (r *LoginAttemptRepository) ResetLoginAttempt(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO login_attempts (user_id, failed_attempts, locked)
		VALUES (?, 0, ?)
		ON CONFLICT (user_id) DO UPDATE SET failed_attempts = 0, locked = excluded.locked`
	if err := utils.ExecWithCheck(ctx, r.db, query, utils.ExecInsert, userID, false); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", mapError(err))
	}
	return nil
}
