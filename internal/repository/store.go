package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store gives access to the four account entities. Repositories obtained
// from the Store passed to a WithTx callback share that transaction.
type Store interface {
	Users() IUserRepository
	Profiles() IProfileRepository
	LoginAttempts() ILoginAttemptRepository
	OTPRequests() IOTPRepository

	// WithTx runs fn inside a transaction, committing when fn returns nil
	// and rolling back otherwise. Calls on a transactional Store join the
	// outer transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

type sqlStore struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

func NewStore(db *sqlx.DB) Store {
	return &sqlStore{db: db, ext: db}
}

func (s *sqlStore) Users() IUserRepository                 { return NewUserRepository(s.ext) }
func (s *sqlStore) Profiles() IProfileRepository           { return NewProfileRepository(s.ext) }
func (s *sqlStore) LoginAttempts() ILoginAttemptRepository { return NewLoginAttemptRepository(s.ext) }
func (s *sqlStore) OTPRequests() IOTPRepository            { return NewOTPRepository(s.ext) }

func (s *sqlStore) WithTx(ctx context.Context, fn func(tx Store) error) (err error) {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&sqlStore{ext: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *sqlStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}

// mapError translates driver errors into the package sentinels so callers
// never depend on a specific database.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
