package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"techie-backend/internal/clock"
	"techie-backend/internal/models"
	"techie-backend/internal/plans"
)

// FullDayMinutes is the baseline for a 100% day in the daily breakdown.
const FullDayMinutes = 8 * 60

// UsageAggregator turns sessions into minute totals. It does no
// authorization; callers check access before asking for a user's totals.
type UsageAggregator struct {
	sessions SessionStore
	clock    clock.Clock
}

func NewUsageAggregator(sessions SessionStore, clk clock.Clock) *UsageAggregator {
	return &UsageAggregator{sessions: sessions, clock: clk}
}

// TotalMinutes sums sessions whose check-in lies in w. Active sessions count
// their elapsed-to-now minutes even when now is outside the window.
func (a *UsageAggregator) TotalMinutes(ctx context.Context, userID uuid.UUID, w clock.Window) (int, error) {
	sessions, err := a.sessions.ListStartedBetween(ctx, userID, w.Start, w.End)
	if err != nil {
		return 0, err
	}
	return SumMinutes(sessions, a.clock.Now()), nil
}

// SumMinutes adds stored durations and, for active sessions, elapsed minutes at now.
func SumMinutes(sessions []models.Session, now time.Time) int {
	total := 0
	for i := range sessions {
		total += sessions[i].MinutesAt(now)
	}
	return total
}

// DailyBreakdown reports minutes per day for the Monday-first week containing ref.
func (a *UsageAggregator) DailyBreakdown(ctx context.Context, userID uuid.UUID, ref time.Time) ([]models.DayUsage, error) {
	days := clock.WeekDays(ref)
	week := clock.WeekWindow(ref)

	sessions, err := a.sessions.ListStartedBetween(ctx, userID, week.Start, week.End)
	if err != nil {
		return nil, err
	}

	now := a.clock.Now()
	out := make([]models.DayUsage, 0, len(days))
	for _, day := range days {
		w := clock.DayWindow(day)
		minutes := 0
		for i := range sessions {
			if w.Contains(sessions[i].CheckInTime) {
				minutes += sessions[i].MinutesAt(now)
			}
		}
		out = append(out, dayUsage(day.Weekday().String(), minutes))
	}
	return out, nil
}

func dayUsage(name string, minutes int) models.DayUsage {
	percentage := plans.UtilizationPercent(minutes, FullDayMinutes)
	if percentage > 100 {
		percentage = 100
	}
	return models.DayUsage{
		Day:        name,
		Minutes:    minutes,
		Hours:      math.Round(float64(minutes)/60*100) / 100,
		Percentage: percentage,
	}
}
