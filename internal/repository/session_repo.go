package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"techie-backend/internal/models"
)

const sessionColumns = `id, user_id, check_in_time, check_out_time, status, duration`

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

// CreateActive inserts an active session for userID. The partial unique index
// on check_ins(user_id) WHERE status = 'active' makes the insert fail when the
// user already has one, so concurrent check-ins cannot both succeed.
func (r *SessionRepo) CreateActive(ctx context.Context, userID uuid.UUID, start time.Time) (*models.Session, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO check_ins (user_id, check_in_time, status)
		VALUES ($1, $2, 'active')
		RETURNING `+sessionColumns,
		userID, start,
	)

	s, err := scanSession(row)
	if err != nil {
		switch code, constraint := pgErrorCode(err); {
		case code == uniqueViolation && constraint == activeSessionIndex:
			return nil, ErrActiveSessionExists
		case code == fkViolation:
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to insert check-in: %w", err)
	}
	return s, nil
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM check_ins WHERE id = $1`, id)
	s, err := scanSession(row)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return s, nil
}

// Complete closes an active session. The status guard in the WHERE clause
// means only one of several concurrent check-outs updates the row.
func (r *SessionRepo) Complete(ctx context.Context, id uuid.UUID, end time.Time, durationMinutes int) (*models.Session, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE check_ins
		SET check_out_time = $2,
			duration = $3,
			status = 'completed'
		WHERE id = $1
		  AND status = 'active'
		RETURNING `+sessionColumns,
		id, end, durationMinutes,
	)

	s, err := scanSession(row)
	if err == nil {
		return s, nil
	}
	if mapNoRows(err) != ErrNotFound {
		return nil, fmt.Errorf("failed to complete check-in: %w", err)
	}

	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrSessionNotActive
}

// GetActive returns the user's active session, or nil when there is none.
func (r *SessionRepo) GetActive(ctx context.Context, userID uuid.UUID) (*models.Session, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM check_ins
		WHERE user_id = $1
		  AND status = 'active'
	`, userID)

	s, err := scanSession(row)
	if err != nil {
		if mapNoRows(err) == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *SessionRepo) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM check_ins
		WHERE user_id = $1
		ORDER BY check_in_time DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// ListStartedBetween returns sessions whose check-in time lies in [start, end],
// most recent first.
func (r *SessionRepo) ListStartedBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM check_ins
		WHERE user_id = $1
		  AND check_in_time >= $2
		  AND check_in_time <= $3
		ORDER BY check_in_time DESC
	`, userID, start, end)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

func scanSession(row pgx.Row) (*models.Session, error) {
	s := &models.Session{}
	if err := row.Scan(&s.ID, &s.UserID, &s.CheckInTime, &s.CheckOutTime, &s.Status, &s.DurationMinutes); err != nil {
		return nil, err
	}
	return s, nil
}

func collectSessions(rows pgx.Rows) ([]models.Session, error) {
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}
