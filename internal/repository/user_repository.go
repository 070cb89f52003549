package repository

import (
	"auth-account/internal/models"
	"auth-account/utils"
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type IUserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CountUsers(ctx context.Context) (int, error)
	LockForRegistration(ctx context.Context) error
	UpdateStatus(ctx context.Context, id int64, status models.UserStatus) error
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
	UpdateEmail(ctx context.Context, id int64, email string) error
	ListAccountSummaries(ctx context.Context) ([]models.AccountSummary, error)
}

type UserRepository struct {
	db sqlx.ExtContext
}

func NewUserRepository(db sqlx.ExtContext) IUserRepository {
	return &UserRepository{
		db: db,
	}
}

// CreateUser inserts the account and returns the generated user_id.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	query := r.db.Rebind(`
		INSERT INTO users (email, hashed_password, role, status, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING user_id`)

	var id int64
	err := sqlx.GetContext(ctx, r.db, &id, query,
		user.Email, user.HashedPassword, user.Role, user.Status, user.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", mapError(err))
	}

	user.UserID = id
	return id, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT user_id, email, hashed_password, role, status, created_at FROM users WHERE user_id = ?`)

	if err := sqlx.GetContext(ctx, r.db, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", mapError(err))
	}
	return &user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT user_id, email, hashed_password, role, status, created_at FROM users WHERE email = ?`)

	if err := sqlx.GetContext(ctx, r.db, &user, query, email); err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", mapError(err))
	}
	return &user, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *UserRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// LockForRegistration holds off other registrations until the surrounding
// transaction ends, so the first-user count and the insert agree. Call it
// inside WithTx.
func (r *UserRepository) LockForRegistration(ctx context.Context) error {
	stmt := lockUsersStatement(r.db.DriverName())
	if stmt == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to lock users: %w", err)
	}
	return nil
}

// lockUsersStatement is empty for drivers that already serialise writers.
func lockUsersStatement(driver string) string {
	if driver == "postgres" {
		// Conflicts with itself but not with plain reads.
		return `LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE`
	}
	return ""
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id int64, status models.UserStatus) error {
	err := utils.ExecWithCheck(ctx, r.db, `UPDATE users SET status = ? WHERE user_id = ?`, utils.ExecUpdate, status, id)
	return r.updateError("status", err)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	err := utils.ExecWithCheck(ctx, r.db, `UPDATE users SET hashed_password = ? WHERE user_id = ?`, utils.ExecUpdate, hashedPassword, id)
	return r.updateError("password", err)
}

func (r *UserRepository) UpdateEmail(ctx context.Context, id int64, email string) error {
	err := utils.ExecWithCheck(ctx, r.db, `UPDATE users SET email = ? WHERE user_id = ?`, utils.ExecUpdate, email, id)
	return r.updateError("email", err)
}

func (r *UserRepository) updateError(field string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, utils.ErrNoRowsAffected) {
		return fmt.Errorf("failed to update user %s: %w", field, ErrNotFound)
	}
	return fmt.Errorf("failed to update user %s: %w", field, mapError(err))
}

// ListAccountSummaries joins every user with its profile, oldest first.
func (r *UserRepository) ListAccountSummaries(ctx context.Context) ([]models.AccountSummary, error) {
	query := `
		SELECT u.user_id, u.email, p.full_name, p.phone, u.created_at
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.user_id
		ORDER BY u.user_id`

	var summaries []models.AccountSummary
	if err := sqlx.SelectContext(ctx, r.db, &summaries, query); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return summaries, nil
}
