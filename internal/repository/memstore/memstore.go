// Package memstore is an in-memory implementation of the repository layer.
// It backs unit tests and keeps the same atomicity guarantees the PostgreSQL
// repositories get from their constraints.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"techie-backend/internal/models"
	"techie-backend/internal/repository"
)

// Store holds users, check-ins and billings behind one mutex.
type Store struct {
	mu       sync.Mutex
	users    map[uuid.UUID]models.User
	sessions []models.Session
	billings []models.BillingRecord
}

func New() *Store {
	return &Store{users: make(map[uuid.UUID]models.User)}
}

func (s *Store) Sessions() *Sessions { return &Sessions{s} }
func (s *Store) Users() *Users       { return &Users{s} }
func (s *Store) Billings() *Billings { return &Billings{s} }

// Sessions implements the check-in store.
type Sessions struct{ s *Store }

func (r *Sessions) CreateActive(_ context.Context, userID uuid.UUID, start time.Time) (*models.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return nil, repository.ErrNotFound
	}
	for _, existing := range r.s.sessions {
		if existing.UserID == userID && existing.IsActive() {
			return nil, repository.ErrActiveSessionExists
		}
	}

	session := models.Session{
		ID:          uuid.New(),
		UserID:      userID,
		CheckInTime: start,
		Status:      models.SessionActive,
	}
	r.s.sessions = append(r.s.sessions, session)
	return cloneSession(session), nil
}

func (r *Sessions) GetByID(_ context.Context, id uuid.UUID) (*models.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if i := r.s.sessionIndex(id); i >= 0 {
		return cloneSession(r.s.sessions[i]), nil
	}
	return nil, repository.ErrNotFound
}

func (r *Sessions) Complete(_ context.Context, id uuid.UUID, end time.Time, durationMinutes int) (*models.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.sessionIndex(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	if !r.s.sessions[i].IsActive() {
		return nil, repository.ErrSessionNotActive
	}

	d := durationMinutes
	r.s.sessions[i].CheckOutTime = &end
	r.s.sessions[i].DurationMinutes = &d
	r.s.sessions[i].Status = models.SessionCompleted
	return cloneSession(r.s.sessions[i]), nil
}

func (r *Sessions) GetActive(_ context.Context, userID uuid.UUID) (*models.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, session := range r.s.sessions {
		if session.UserID == userID && session.IsActive() {
			return cloneSession(session), nil
		}
	}
	return nil, nil
}

func (r *Sessions) ListRecent(_ context.Context, userID uuid.UUID, limit int) ([]models.Session, error) {
	out := r.filter(func(session models.Session) bool { return session.UserID == userID })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Sessions) ListStartedBetween(_ context.Context, userID uuid.UUID, start, end time.Time) ([]models.Session, error) {
	return r.filter(func(session models.Session) bool {
		return session.UserID == userID &&
			!session.CheckInTime.Before(start) &&
			!session.CheckInTime.After(end)
	}), nil
}

// filter returns matching sessions, most recent check-in first.
func (r *Sessions) filter(keep func(models.Session) bool) []models.Session {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Session, 0)
	for _, session := range r.s.sessions {
		if keep(session) {
			out = append(out, *cloneSession(session))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CheckInTime.After(out[j].CheckInTime)
	})
	return out
}

// Users implements the user store.
type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *Users) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *Users) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, user := range r.s.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) List(_ context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users := make([]models.User, 0, len(r.s.users))
	for _, user := range r.s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].Username < users[j].Username
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (r *Users) UpdateProfile(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range r.s.users {
		if id != user.ID && other.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	existing.FullName = user.FullName
	existing.Email = user.Email
	r.s.users[user.ID] = existing
	return nil
}

// Delete removes the user together with their check-ins and billings.
func (r *Users) Delete(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, userID)

	sessions := r.s.sessions[:0]
	for _, session := range r.s.sessions {
		if session.UserID != userID {
			sessions = append(sessions, session)
		}
	}
	r.s.sessions = sessions

	billings := r.s.billings[:0]
	for _, record := range r.s.billings {
		if record.UserID != userID {
			billings = append(billings, record)
		}
	}
	r.s.billings = billings
	return nil
}

// Billings implements the billing store.
type Billings struct{ s *Store }

func (r *Billings) RecordPlanChange(_ context.Context, userID uuid.UUID, plan string, amount int, start time.Time, profile *models.ProfileUpdate) (*models.BillingRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if profile != nil {
		for id, other := range r.s.users {
			if id != userID && other.Email == profile.Email {
				return nil, repository.ErrDuplicate
			}
		}
		user.FullName = profile.FullName
		user.Email = profile.Email
	}
	user.CurrentPlan = plan
	r.s.users[userID] = user

	record := models.BillingRecord{
		ID:        uuid.New(),
		UserID:    userID,
		PlanType:  plan,
		Amount:    amount,
		StartDate: start,
		Status:    models.BillingPending,
	}
	r.s.billings = append(r.s.billings, record)
	return &record, nil
}

func (r *Billings) ListByUser(_ context.Context, userID uuid.UUID) ([]models.BillingRecord, error) {
	return r.filter(func(record models.BillingRecord) bool { return record.UserID == userID }), nil
}

func (r *Billings) ListStartedBetween(_ context.Context, userID uuid.UUID, start, end time.Time) ([]models.BillingRecord, error) {
	return r.filter(func(record models.BillingRecord) bool {
		return record.UserID == userID &&
			!record.StartDate.Before(start) &&
			!record.StartDate.After(end)
	}), nil
}

// Insert adds a billing record as-is. Used to seed history.
func (r *Billings) Insert(record models.BillingRecord) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	r.s.billings = append(r.s.billings, record)
}

func (r *Billings) filter(keep func(models.BillingRecord) bool) []models.BillingRecord {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.BillingRecord, 0)
	for _, record := range r.s.billings {
		if keep(record) {
			out = append(out, record)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate.After(out[j].StartDate)
	})
	return out
}

// InsertSession adds a session as-is, bypassing the active-session check.
// Used to seed history.
func (r *Sessions) InsertSession(session models.Session) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	r.s.sessions = append(r.s.sessions, session)
}

func (s *Store) sessionIndex(id uuid.UUID) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneSession(session models.Session) *models.Session {
	out := session
	if session.CheckOutTime != nil {
		t := *session.CheckOutTime
		out.CheckOutTime = &t
	}
	if session.DurationMinutes != nil {
		d := *session.DurationMinutes
		out.DurationMinutes = &d
	}
	return &out
}
