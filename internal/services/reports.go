package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"techie-backend/internal/clock"
	"techie-backend/internal/models"
	"techie-backend/internal/plans"
)

const noPeakDay = "None"

// ReportService builds attendance, usage and billing views for a period.
type ReportService struct {
	sessions SessionStore
	billings BillingStore
	usage    *UsageAggregator
	clock    clock.Clock
}

func NewReportService(sessions SessionStore, billings BillingStore, usage *UsageAggregator, clk clock.Clock) *ReportService {
	return &ReportService{
		sessions: sessions,
		billings: billings,
		usage:    usage,
		clock:    clk,
	}
}

// Attendance returns sessions started within the period around ref, newest first.
// Unknown periods resolve to the daily window.
func (s *ReportService) Attendance(ctx context.Context, caller Caller, userID uuid.UUID, period string, ref time.Time) ([]models.Session, error) {
	if err := Authorize(caller, userID); err != nil {
		return nil, err
	}
	w := clock.Resolve(period, ref)
	return s.sessions.ListStartedBetween(ctx, userID, w.Start, w.End)
}

// Usage summarises the attendance set. The day breakdown, and with it the
// peak day and the average's divisor, always covers the current week.
func (s *ReportService) Usage(ctx context.Context, caller Caller, userID uuid.UUID, period string, ref time.Time) (*models.UsageReport, error) {
	sessions, err := s.Attendance(ctx, caller, userID, period, ref)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	breakdown, err := s.usage.DailyBreakdown(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	total := SumMinutes(sessions, now)

	peakDay, peak, activeDays := noPeakDay, 0, 0
	for _, day := range breakdown {
		if day.Minutes > peak {
			peak = day.Minutes
			peakDay = day.Day
		}
		if day.Minutes > 0 {
			activeDays++
		}
	}
	if activeDays == 0 {
		activeDays = 1
	}

	return &models.UsageReport{
		TotalMinutes:    total,
		AvgDailyMinutes: plans.RoundHalfUp(float64(total) / float64(activeDays)),
		PeakDay:         peakDay,
		DayBreakdown:    breakdown,
	}, nil
}

// Billing returns billing records starting within the period, newest first.
func (s *ReportService) Billing(ctx context.Context, caller Caller, userID uuid.UUID, period string, ref time.Time) ([]models.BillingRecord, error) {
	if err := Authorize(caller, userID); err != nil {
		return nil, err
	}
	w := clock.Resolve(period, ref)
	return s.billings.ListStartedBetween(ctx, userID, w.Start, w.End)
}

// BillingHistory returns every billing record for the user, newest first.
func (s *ReportService) BillingHistory(ctx context.Context, caller Caller, userID uuid.UUID) ([]models.BillingRecord, error) {
	if err := Authorize(caller, userID); err != nil {
		return nil, err
	}
	return s.billings.ListByUser(ctx, userID)
}

// WeeklyBreakdown is the day-by-day usage of the current week.
func (s *ReportService) WeeklyBreakdown(ctx context.Context, caller Caller, userID uuid.UUID) ([]models.DayUsage, error) {
	if err := Authorize(caller, userID); err != nil {
		return nil, err
	}
	return s.usage.DailyBreakdown(ctx, userID, s.clock.Now())
}
