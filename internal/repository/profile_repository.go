package repository

import (
	"auth-account/internal/models"
	"auth-account/utils"
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

type IProfileRepository interface {
	CreateProfile(ctx context.Context, userID int64) error
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	UpsertProfile(ctx context.Context, userID int64, update models.ProfileUpdate) error
}

type ProfileRepository struct {
	db sqlx.ExtContext
}

func NewProfileRepository(db sqlx.ExtContext) IProfileRepository {
	return &ProfileRepository{
		db: db,
	}
}

// CreateProfile inserts the empty profile that accompanies a new account.
func (r *ProfileRepository) CreateProfile(ctx context.Context, userID int64) error {
	err := utils.ExecWithCheck(ctx, r.db, `INSERT INTO profiles (user_id) VALUES (?)`, utils.ExecInsert, userID)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", mapError(err))
	}
	return nil
}

func (r *ProfileRepository) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	var profile models.Profile
	query := r.db.Rebind(`SELECT user_id, full_name, phone, birth_date, avatar_url FROM profiles WHERE user_id = ?`)

	if err := sqlx.GetContext(ctx, r.db, &profile, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", mapError(err))
	}
	return &profile, nil
}

// UpsertProfile writes only the fields set in update, creating the row when
// it is missing.
func (r *ProfileRepository) UpsertProfile(ctx context.Context, userID int64, update models.ProfileUpdate) error {
	columns := []string{"user_id"}
	args := []any{userID}

	add := func(column string, value *string) {
		if value != nil {
			columns = append(columns, column)
			args = append(args, *value)
		}
	}
	add("full_name", update.FullName)
	add("phone", update.Phone)
	add("birth_date", update.BirthDate)
	add("avatar_url", update.AvatarURL)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO profiles (%s) VALUES (%s)", strings.Join(columns, ", "), placeholders)

	if len(columns) == 1 {
		query += " ON CONFLICT (user_id) DO NOTHING"
	} else {
		sets := make([]string, 0, len(columns)-1)
		for _, column := range columns[1:] {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", column, column))
		}
		query += " ON CONFLICT (user_id) DO UPDATE SET " + strings.Join(sets, ", ")
	}

	if err := utils.ExecWithCheck(ctx, r.db, query, utils.ExecInsert, args...); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", mapError(err))
	}
	return nil
}
