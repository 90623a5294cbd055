package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"techie-backend/internal/clock"
	"techie-backend/internal/models"
)

func TestSumMinutes_CountsActiveToNow(t *testing.T) {
	start := testStart
	done := 45
	end := start.Add(45 * time.Minute)

	sessions := []models.Session{
		{CheckInTime: start, CheckOutTime: &end, Status: models.SessionCompleted, DurationMinutes: &done},
		{CheckInTime: start.Add(2 * time.Hour), Status: models.SessionActive},
	}

	now := start.Add(2*time.Hour + 20*time.Minute + 59*time.Second)
	if got := SumMinutes(sessions, now); got != 65 {
		t.Fatalf("expected 65 minutes, got %d", got)
	}
}

func TestUsageAggregator_TotalMinutesUsesStartTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.addUser(t, "alice", "hourly")

	// Started the day before the window; excluded even though it ran into it.
	env.addSession(userID, testStart.AddDate(0, 0, -1).Add(14*time.Hour), 600)
	env.addSession(userID, testStart, 120)

	total, err := env.usage.TotalMinutes(ctx, userID, clock.DayWindow(testStart))
	if err != nil {
		t.Fatalf("total failed: %v", err)
	}
	if total != 120 {
		t.Fatalf("expected 120, got %d", total)
	}
}

func TestUsageAggregator_DailyBreakdown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.addUser(t, "bob", "hourly")

	monday := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	env.addSession(userID, monday, 500)
	env.addSession(userID, monday.AddDate(0, 0, 1), 240)
	// previous Sunday, outside the week
	env.addSession(userID, monday.AddDate(0, 0, -1), 300)

	days, err := env.usage.DailyBreakdown(ctx, userID, testStart)
	if err != nil {
		t.Fatalf("breakdown failed: %v", err)
	}
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if days[0].Day != "Monday" || days[6].Day != "Sunday" {
		t.Fatalf("expected Monday..Sunday, got %s..%s", days[0].Day, days[6].Day)
	}

	if days[0].Minutes != 500 || days[0].Percentage != 100 || days[0].Hours != 8.33 {
		t.Fatalf("unexpected monday: %+v", days[0])
	}
	if days[1].Minutes != 240 || days[1].Percentage != 50 || days[1].Hours != 4 {
		t.Fatalf("unexpected tuesday: %+v", days[1])
	}
	if days[6].Minutes != 0 || days[6].Percentage != 0 {
		t.Fatalf("unexpected sunday: %+v", days[6])
	}
}

func TestQuotaService_WeeklyUsage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.addUser(t, "carol", "hourly")

	monday := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	env.addSession(userID, monday, 400)
	env.addSession(userID, monday.AddDate(0, 0, 1), 300)

	usage, err := env.quota.WeeklyUsage(ctx, self(userID), userID)
	if err != nil {
		t.Fatalf("weekly usage failed: %v", err)
	}
	if usage.TotalMinutes != 700 || usage.WeeklyLimit != 1200 || usage.UtilizationPercent != 58 {
		t.Fatalf("unexpected weekly usage: %+v", usage)
	}
}

func TestQuotaService_WeeklyUsageNotClamped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.addUser(t, "dave", "")

	env.addSession(userID, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), 1800)

	usage, err := env.quota.WeeklyUsage(ctx, self(userID), userID)
	if err != nil {
		t.Fatalf("weekly usage failed: %v", err)
	}
	if usage.Plan != "hourly" {
		t.Fatalf("expected unset plan to default to hourly, got %q", usage.Plan)
	}
	if usage.UtilizationPercent != 150 {
		t.Fatalf("expected 150%%, got %d", usage.UtilizationPercent)
	}
}

func TestQuotaService_WeeklyUsageIncludesActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.addUser(t, "erin", "monthly")

	if _, err := env.ledger.CheckIn(ctx, self(userID), userID); err != nil {
		t.Fatalf("check-in failed: %v", err)
	}
	env.clock.Advance(36 * time.Minute)

	usage, err := env.quota.WeeklyUsage(ctx, self(userID), userID)
	if err != nil {
		t.Fatalf("weekly usage failed: %v", err)
	}
	if usage.TotalMinutes != 36 || usage.WeeklyLimit != 3600 || usage.UtilizationPercent != 1 {
		t.Fatalf("unexpected weekly usage: %+v", usage)
	}
}

func TestQuotaService_ChangePlan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.addUser(t, "frank", "hourly")

	earlier := models.BillingRecord{
		UserID:    userID,
		PlanType:  "daily",
		Amount:    4000,
		StartDate: testStart.AddDate(0, -1, 0),
		Status:    models.BillingPaid,
	}
	env.store.Billings().Insert(earlier)

	record, err := env.quota.ChangePlan(ctx, self(userID), userID, "monthly")
	if err != nil {
		t.Fatalf("change plan failed: %v", err)
	}
	if record.Amount != 68000 || record.Status != models.BillingPending || record.PlanType != "monthly" {
		t.Fatalf("unexpected billing record: %+v", record)
	}
	if !record.StartDate.Equal(testStart) {
		t.Fatalf("expected start date now, got %v", record.StartDate)
	}

	history, _ := env.store.Billings().ListByUser(ctx, userID)
	if len(history) != 2 {
		t.Fatalf("expected exactly one record appended, got %d total", len(history))
	}
	if history[1].Status != models.BillingPaid || history[1].Amount != 4000 {
		t.Fatalf("existing record must be untouched: %+v", history[1])
	}

	user, _ := env.store.Users().GetByID(ctx, userID)
	if user.CurrentPlan != "monthly" {
		t.Fatalf("expected plan monthly, got %q", user.CurrentPlan)
	}
}

func TestQuotaService_ChangePlanErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.addUser(t, "grace", "hourly")

	_, err := env.quota.ChangePlan(ctx, self(userID), userID, "platinum")
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := validation.Fields["plan_type"]; !ok {
		t.Fatalf("expected plan_type field error, got %v", validation.Fields)
	}

	unknown := uuid.New()
	_, err = env.quota.ChangePlan(ctx, admin(), unknown, "daily")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	history, _ := env.store.Billings().ListByUser(ctx, userID)
	if len(history) != 0 {
		t.Fatalf("failed plan changes must not bill")
	}
}
