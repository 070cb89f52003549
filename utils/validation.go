package utils

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(?:\.[a-zA-Z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*@(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?\.)+[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

	hasLetter  = regexp.MustCompile(`[A-Za-z]`)
	hasNumber  = regexp.MustCompile(`[0-9]`)
	hasSpecial = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

const BirthDateLayout = "2006-01-02"

var (
	ErrInvalidEmail     = errors.New("email format incorrect")
	ErrInvalidPhone     = errors.New("phone format incorrect")
	ErrWeakPassword     = errors.New("password must contain a letter, a number and a special character")
	ErrInvalidBirthDate = errors.New("birth_date must be formatted as YYYY-MM-DD")
	ErrFutureBirthDate  = errors.New("birth_date cannot be in the future")
	ErrBirthDateAge     = errors.New("age must be between 1 and 100 years")
)

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// NormalizePhone drops the separators people commonly type.
func NormalizePhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
}

// ValidatePhone accepts 8 to 15 digits with an optional leading +.
func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}

// ValidatePasswordStrength requires a letter, a digit and a symbol. Length is
// not constrained.
func ValidatePasswordStrength(password string) error {
	if !hasLetter.MatchString(password) || !hasNumber.MatchString(password) || !hasSpecial.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}

// ValidateBirthDate parses value as YYYY-MM-DD and checks it is not after
// today and that the age it implies on today is within [1, 100].
func ValidateBirthDate(value string, today time.Time) (time.Time, error) {
	birth, err := time.Parse(BirthDateLayout, value)
	if err != nil {
		return time.Time{}, ErrInvalidBirthDate
	}

	y, m, d := today.Date()
	todayDate := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if birth.After(todayDate) {
		return time.Time{}, ErrFutureBirthDate
	}

	if age := AgeOn(birth, todayDate); age < 1 || age > 100 {
		return time.Time{}, ErrBirthDateAge
	}
	return birth, nil
}

// AgeOn returns the number of whole years between birth and day.
func AgeOn(birth, day time.Time) int {
	age := day.Year() - birth.Year()
	if day.Month() < birth.Month() || (day.Month() == birth.Month() && day.Day() < birth.Day()) {
		age--
	}
	return age
}
