package models

import (
	"time"

	"github.com/google/uuid"

	"techie-backend/internal/clock"
)

// Session statuses
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
)

// Session is one check-in/check-out cycle. CheckOutTime and DurationMinutes
// are set together, exactly when Status becomes completed.
type Session struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	CheckInTime     time.Time  `json:"check_in_time"`
	CheckOutTime    *time.Time `json:"check_out_time"`
	Status          string     `json:"status"`
	DurationMinutes *int       `json:"duration"`
}

// IsActive reports whether the session is still in progress.
func (s *Session) IsActive() bool {
	return s.Status == SessionActive
}

// MinutesAt returns the stored duration of a completed session, or the
// elapsed-to-now minutes of an active one.
func (s *Session) MinutesAt(now time.Time) int {
	if s.IsActive() {
		return clock.ElapsedMinutes(s.CheckInTime, now)
	}
	if s.DurationMinutes != nil {
		return *s.DurationMinutes
	}
	return 0
}

// SessionView decorates a session with the live elapsed time for dashboards.
type SessionView struct {
	*Session
	ElapsedMinutes int `json:"elapsed_minutes"`
}
