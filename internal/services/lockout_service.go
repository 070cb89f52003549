package services

import (
	"auth-account/internal/models"
	"auth-account/internal/repository"
	"context"
	"fmt"
)

const DefaultLockoutThreshold = 5

// LockoutService counts consecutive failed logins per account. Failures
// never decay; only a successful login or an unlock clears them.
type LockoutService struct {
	store     repository.Store
	threshold int
}

func NewLockoutService(store repository.Store, threshold int) *LockoutService {
	if threshold <= 0 {
		threshold = DefaultLockoutThreshold
	}
	return &LockoutService{
		store:     store,
		threshold: threshold,
	}
}

func (s *LockoutService) WithStore(store repository.Store) *LockoutService {
	cp := *s
	cp.store = store
	return &cp
}

func (s *LockoutService) Threshold() int {
	return s.threshold
}

// Remaining is the number of failures left before the account locks.
func (s *LockoutService) Remaining(count int) int {
	return max(s.threshold-count, 0)
}

// RecordFailure increments the counter and, once it reaches the threshold,
// locks the account. Both happen in one transaction.
func (s *LockoutService) RecordFailure(ctx context.Context, userID int64) (count int, locked bool, err error) {
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		n, err := tx.LoginAttempts().IncrementFailedAttempts(ctx, userID)
		if err != nil {
			return err
		}
		count = n
		if count < s.threshold {
			return nil
		}

		locked = true
		if err := tx.LoginAttempts().SetLocked(ctx, userID, true); err != nil {
			return err
		}
		return tx.Users().UpdateStatus(ctx, userID, models.UserStatusLocked)
	})
	if err != nil {
		return 0, false, fmt.Errorf("record login failure: %w", err)
	}
	return count, locked, nil
}

// Reset zeroes the failure counter and clears the lock flag.
func (s *LockoutService) Reset(ctx context.Context, userID int64) error {
	if err := s.store.LoginAttempts().ResetLoginAttempt(ctx, userID); err != nil {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	return nil
}

// Unlock resets the counter and reactivates the account together.
func (s *LockoutService) Unlock(ctx context.Context, userID int64) error {
	return s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.LoginAttempts().ResetLoginAttempt(ctx, userID); err != nil {
			return err
		}
		return tx.Users().UpdateStatus(ctx, userID, models.UserStatusActive)
	})
}
