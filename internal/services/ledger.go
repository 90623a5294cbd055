package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"techie-backend/internal/clock"
	"techie-backend/internal/metrics"
	"techie-backend/internal/models"
	"techie-backend/internal/repository"
)

const (
	defaultRecentLimit = 5
	maxRecentLimit     = 100
)

// Ledger owns check-in sessions and the one-active-session-per-user rule.
type Ledger struct {
	sessions SessionStore
	clock    clock.Clock
	logger   zerolog.Logger
}

func NewLedger(sessions SessionStore, clk clock.Clock, logger zerolog.Logger) *Ledger {
	return &Ledger{
		sessions: sessions,
		clock:    clk,
		logger:   logger.With().Str("component", "ledger").Logger(),
	}
}

// CheckIn opens an active session for userID starting now.
func (l *Ledger) CheckIn(ctx context.Context, caller Caller, userID uuid.UUID) (*models.Session, error) {
	if err := Authorize(caller, userID); err != nil {
		return nil, err
	}

	// Fast path; the store's CreateActive is still the authoritative check.
	active, err := l.sessions.GetActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active session: %w", err)
	}
	if active != nil {
		metrics.CheckInConflicts.Inc()
		return nil, &ConflictError{Message: "You already have an active check-in"}
	}

	session, err := l.sessions.CreateActive(ctx, userID, l.clock.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrActiveSessionExists):
			metrics.CheckInConflicts.Inc()
			return nil, &ConflictError{Message: "You already have an active check-in"}
		case errors.Is(err, repository.ErrNotFound):
			return nil, &NotFoundError{Message: "User not found"}
		}
		return nil, err
	}

	metrics.CheckInsTotal.Inc()
	metrics.ActiveSessions.Inc()
	l.logger.Info().
		Str("session_id", session.ID.String()).
		Str("user_id", userID.String()).
		Msg("Checked in")

	return session, nil
}

// CheckOut completes an active session, recording end time and whole minutes.
func (l *Ledger) CheckOut(ctx context.Context, caller Caller, sessionID uuid.UUID) (*models.Session, error) {
	session, err := l.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Message: "Check-in record not found"}
		}
		return nil, err
	}

	if err := Authorize(caller, session.UserID); err != nil {
		return nil, &ForbiddenError{Message: "Not your check-in record"}
	}

	if !session.IsActive() {
		return nil, &InvalidStateError{Message: "This check-in is already completed"}
	}

	now := l.clock.Now()
	if now.Before(session.CheckInTime) {
		now = session.CheckInTime
	}
	duration := clock.ElapsedMinutes(session.CheckInTime, now)

	completed, err := l.sessions.Complete(ctx, sessionID, now, duration)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotActive):
			return nil, &InvalidStateError{Message: "This check-in is already completed"}
		case errors.Is(err, repository.ErrNotFound):
			return nil, &NotFoundError{Message: "Check-in record not found"}
		}
		return nil, err
	}

	metrics.CheckOutsTotal.Inc()
	metrics.ActiveSessions.Dec()
	metrics.SessionMinutes.Observe(float64(duration))
	l.logger.Info().
		Str("session_id", sessionID.String()).
		Str("user_id", completed.UserID.String()).
		Int("duration_minutes", duration).
		Msg("Checked out")

	return completed, nil
}

// GetActive returns the user's active session or nil; absence is not an error.
func (l *Ledger) GetActive(ctx context.Context, caller Caller, userID uuid.UUID) (*models.SessionView, error) {
	if err := Authorize(caller, userID); err != nil {
		return nil, err
	}

	session, err := l.sessions.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	return &models.SessionView{
		Session:        session,
		ElapsedMinutes: session.MinutesAt(l.clock.Now()),
	}, nil
}

// GetRecent returns up to limit sessions, most recent start first.
func (l *Ledger) GetRecent(ctx context.Context, caller Caller, userID uuid.UUID, limit int) ([]models.Session, error) {
	if err := Authorize(caller, userID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	return l.sessions.ListRecent(ctx, userID, limit)
}

// toggle checks the user out if a session is active, otherwise checks in.
// It is the ledger half of a QR scan.
func (l *Ledger) toggle(ctx context.Context, caller Caller, userID uuid.UUID) (*models.ScanResult, error) {
	active, err := l.sessions.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	if active != nil {
		session, err := l.CheckOut(ctx, caller, active.ID)
		if err != nil {
			return nil, err
		}
		return &models.ScanResult{Action: models.ScanCheckedOut, Session: session}, nil
	}

	session, err := l.CheckIn(ctx, caller, userID)
	if err != nil {
		return nil, err
	}
	return &models.ScanResult{Action: models.ScanCheckedIn, Session: session}, nil
}
