package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors surfaced to handlers. Uniqueness failures are detected from
// the storage constraint, never from a prior read.
var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicateEmail      = errors.New("duplicate email")
	ErrDuplicateProviderID = errors.New("duplicate provider id")
	ErrDuplicateRegisterNo = errors.New("duplicate register number")
	ErrAlreadyMarked       = errors.New("attendance already marked")
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
