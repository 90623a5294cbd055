package models

import "github.com/google/uuid"

type DayUsage struct {
	Day        string  `json:"day"`
	Minutes    int     `json:"minutes"`
	Hours      float64 `json:"hours"`
	Percentage int     `json:"percentage"`
}

type WeeklyUsage struct {
	UserID             uuid.UUID `json:"user_id"`
	Plan               string    `json:"plan"`
	TotalMinutes       int       `json:"total_minutes"`
	WeeklyLimit        int       `json:"weekly_limit"`
	UtilizationPercent int       `json:"utilization_percent"`
}

type UsageReport struct {
	TotalMinutes    int        `json:"total_minutes"`
	AvgDailyMinutes int        `json:"avg_daily_minutes"`
	PeakDay         string     `json:"peak_day"`
	DayBreakdown    []DayUsage `json:"day_breakdown"`
}
