package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a record is missing from storage.
	ErrNotFound = errors.New("repository: record not found")

	// ErrActiveSessionExists is returned when a user already has an active session.
	ErrActiveSessionExists = errors.New("repository: active session already exists")

	// ErrSessionNotActive is returned when completing a session that is not active.
	ErrSessionNotActive = errors.New("repository: session is not active")

	// ErrDuplicate is returned when a unique column (username, email) collides.
	ErrDuplicate = errors.New("repository: duplicate record")
)

const (
	uniqueViolation = "23505"
	fkViolation     = "23503"

	activeSessionIndex = "check_ins_one_active_per_user"
)

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func pgErrorCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}
