package models

import (
	"database/sql"

	"github.com/golang-jwt/jwt/v5"
)

type User struct {
	UserID         int64      `json:"user_id" db:"user_id"`
	Email          string     `json:"email" db:"email"`
	HashedPassword string     `json:"-" db:"hashed_password"`
	Role           Role       `json:"role" db:"role"`
	Status         UserStatus `json:"status" db:"status"`
	CreatedAt      string     `json:"created_at" db:"created_at"`
}

type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleCustomer Role = "Customer"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusLocked   UserStatus = "locked"
	UserStatusInactive UserStatus = "inactive"
)

// DefaultAvatarURL is reported for profiles that never set an avatar.
const DefaultAvatarURL = "default_avatar_url"

type Profile struct {
	UserID    int64          `db:"user_id"`
	FullName  sql.NullString `db:"full_name"`
	Phone     sql.NullString `db:"phone"`
	BirthDate sql.NullString `db:"birth_date"`
	AvatarURL sql.NullString `db:"avatar_url"`
}

// ProfileUpdate carries the fields of a partial profile write. Nil fields are
// left untouched.
type ProfileUpdate struct {
	FullName  *string
	Phone     *string
	BirthDate *string
	AvatarURL *string
}

// IsEmpty reports whether no field is set.
func (p ProfileUpdate) IsEmpty() bool {
	return p.FullName == nil && p.Phone == nil && p.BirthDate == nil && p.AvatarURL == nil
}

type LoginAttempt struct {
	UserID         int64 `db:"user_id"`
	FailedAttempts int   `db:"failed_attempts"`
	Locked         bool  `db:"locked"`
}

// OTPRequest is the single live one-time code for an email. ExpiredAt is a
// naive UTC timestamp in OTPTimeLayout; an empty OTP marks the placeholder
// row written at registration.
type OTPRequest struct {
	Email     string `db:"email"`
	UserID    int64  `db:"user_id"`
	OTP       string `db:"otp"`
	ExpiredAt string `db:"expired_at"`
}

const OTPTimeLayout = "2006-01-02T15:04:05"

// AccountSummary is a user joined with its profile for the admin listing.
type AccountSummary struct {
	UserID    int64          `db:"user_id"`
	Email     string         `db:"email"`
	FullName  sql.NullString `db:"full_name"`
	Phone     sql.NullString `db:"phone"`
	CreatedAt string         `db:"created_at"`
}

type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}
