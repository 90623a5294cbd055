package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"techie-backend/internal/clock"
	"techie-backend/internal/models"
	"techie-backend/internal/repository/memstore"
)

// Wednesday 2025-03-12 09:00 UTC
var testStart = time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	store   *memstore.Store
	clock   *clock.TestClock
	ledger  *Ledger
	usage   *UsageAggregator
	quota   *QuotaService
	reports *ReportService
	users   *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memstore.New()
	clk := &clock.TestClock{CurrentTime: testStart}
	logger := zerolog.Nop()

	usage := NewUsageAggregator(store.Sessions(), clk)
	quota := NewQuotaService(store.Users(), store.Billings(), usage, clk, logger)

	return &testEnv{
		store:   store,
		clock:   clk,
		ledger:  NewLedger(store.Sessions(), clk, logger),
		usage:   usage,
		quota:   quota,
		reports: NewReportService(store.Sessions(), store.Billings(), usage, clk),
		users:   NewUserService(store.Users(), quota, logger),
	}
}

func (e *testEnv) addUser(t *testing.T, username, plan string) uuid.UUID {
	t.Helper()

	user := &models.User{
		Username:    username,
		Email:       username + "@example.com",
		FullName:    username,
		Role:        models.RoleUser,
		CurrentPlan: plan,
	}
	if err := e.store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user.ID
}

// addSession seeds a completed session of the given length.
func (e *testEnv) addSession(userID uuid.UUID, start time.Time, minutes int) {
	end := start.Add(time.Duration(minutes) * time.Minute)
	e.store.Sessions().InsertSession(models.Session{
		UserID:          userID,
		CheckInTime:     start,
		CheckOutTime:    &end,
		Status:          models.SessionCompleted,
		DurationMinutes: &minutes,
	})
}

func self(userID uuid.UUID) Caller {
	return Caller{UserID: userID}
}

func admin() Caller {
	return Caller{UserID: uuid.New(), Privileged: true}
}

func newTestQRService(t *testing.T, env *testEnv) (*QRService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewQRService(client, fakeEncoder{}, env.ledger, env.clock, 1, zerolog.Nop()), mr
}

type fakeEncoder struct{}

func (fakeEncoder) Encode(payload []byte) (string, error) {
	return "data:image/png;base64,ZmFrZQ==", nil
}
