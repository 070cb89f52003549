package services

import (
	"auth-account/internal/models"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Password hashing
// ============================================================================

func TestHashPassword_RoundTripAndSalted(t *testing.T) {
	first, err := HashPassword("abc123!")
	require.NoError(t, err)
	second, err := HashPassword("abc123!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "salts must differ")
	assert.True(t, VerifyPassword("abc123!", first))
	assert.True(t, VerifyPassword("abc123!", second))
	assert.False(t, VerifyPassword("abc123?", first))
	assert.False(t, VerifyPassword("abc123!", "not-a-hash"))
}

// ============================================================================
// Tokens
// ============================================================================

func newTestJWT(clock *fakeClock) *JWTService {
	s := NewJWTService("test-secret", "auth-account", 30*time.Minute)
	s.now = clock.Now
	return s
}

func TestJWT_RoundTrip(t *testing.T) {
	clock := newFakeClock()
	s := newTestJWT(clock)

	token, err := s.GenerateNewToken(&models.User{UserID: 42, Email: "a@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	claims, err := s.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, clock.Now().Add(30*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestJWT_Expired(t *testing.T) {
	clock := newFakeClock()
	s := newTestJWT(clock)

	token, err := s.IssueToken(1, "a@example.com", models.RoleCustomer, s.TTL())
	require.NoError(t, err)

	clock.Advance(29 * time.Minute)
	_, err = s.VerifyToken(token)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = s.VerifyToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWT_Invalid(t *testing.T) {
	clock := newFakeClock()
	s := newTestJWT(clock)

	token, err := s.IssueToken(1, "a@example.com", models.RoleCustomer, time.Minute)
	require.NoError(t, err)

	t.Run("different key", func(t *testing.T) {
		other := NewJWTService("other-secret", "auth-account", time.Minute)
		other.now = clock.Now
		_, err := other.VerifyToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + "." + parts[1] + "x." + parts[2]
		_, err := s.VerifyToken(tampered)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.VerifyToken("not-a-token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService("test-secret", "someone-else", time.Minute)
		other.now = clock.Now
		foreign, err := other.IssueToken(1, "a@example.com", models.RoleCustomer, time.Minute)
		require.NoError(t, err)
		_, err = s.VerifyToken(foreign)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("unsigned", func(t *testing.T) {
		claims := models.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "auth-account",
				ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Minute)),
			},
			UserID: 1,
		}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.VerifyToken(unsigned)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}
