package services

import (
	"auth-account/internal/models"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockoutService_LocksOnThreshold(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.registerUser(t, "a@example.com", "abc123!")

	for i := 1; i <= 4; i++ {
		count, locked, err := f.lockout.RecordFailure(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, i, count)
		assert.False(t, locked)
	}

	user, err := f.store.Users().GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, user.Status)

	count, locked, err := f.lockout.RecordFailure(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.True(t, locked)

	user, err = f.store.Users().GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusLocked, user.Status)

	attempt, err := f.store.LoginAttempts().GetLoginAttempt(ctx, id)
	require.NoError(t, err)
	assert.True(t, attempt.Locked)
	assert.Equal(t, 5, attempt.FailedAttempts)
}

func TestLockoutService_UnlockRestoresAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.registerUser(t, "a@example.com", "abc123!")

	for range 5 {
		_, _, err := f.lockout.RecordFailure(ctx, id)
		require.NoError(t, err)
	}

	require.NoError(t, f.lockout.Unlock(ctx, id))

	user, err := f.store.Users().GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, user.Status)

	attempt, err := f.store.LoginAttempts().GetLoginAttempt(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, attempt.FailedAttempts)
	assert.False(t, attempt.Locked)
}

func TestLockoutService_ConcurrentFailuresAreNotLost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.registerUser(t, "a@example.com", "abc123!")
	lockout := NewLockoutService(f.store, 100)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := lockout.RecordFailure(ctx, id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	attempt, err := f.store.LoginAttempts().GetLoginAttempt(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 20, attempt.FailedAttempts)
}

func TestLockoutService_Remaining(t *testing.T) {
	l := NewLockoutService(nil, 0)
	assert.Equal(t, DefaultLockoutThreshold, l.Threshold())
	assert.Equal(t, 4, l.Remaining(1))
	assert.Equal(t, 0, l.Remaining(7))
}
