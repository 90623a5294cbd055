package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"techie-backend/internal/models"
)

// SessionStore persists check-in sessions. Implementations must make
// CreateActive and Complete atomic with respect to the active-session
// invariant and report repository.ErrActiveSessionExists,
// repository.ErrSessionNotActive and repository.ErrNotFound.
type SessionStore interface {
	CreateActive(ctx context.Context, userID uuid.UUID, start time.Time) (*models.Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Complete(ctx context.Context, id uuid.UUID, end time.Time, durationMinutes int) (*models.Session, error)
	GetActive(ctx context.Context, userID uuid.UUID) (*models.Session, error)
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.Session, error)
	ListStartedBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.Session, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

type BillingStore interface {
	// RecordPlanChange switches the plan and appends a pending record in one
	// transaction. A non-nil profile is written in the same transaction and
	// reports repository.ErrDuplicate for a taken email.
	RecordPlanChange(ctx context.Context, userID uuid.UUID, plan string, amount int, start time.Time, profile *models.ProfileUpdate) (*models.BillingRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.BillingRecord, error)
	ListStartedBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.BillingRecord, error)
}
