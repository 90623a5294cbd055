package plans

import "math"

// Plan identifiers
const (
	Hourly  = "hourly"
	Daily   = "daily"
	Weekly  = "weekly"
	Monthly = "monthly"

	Default = Hourly
)

// Policy is one row of the plan table: the weekly allowance a member on the
// plan may use and the amount billed per rate period.
type Policy struct {
	Plan                  string `json:"plan"`
	WeeklyMinuteAllowance int    `json:"weekly_minute_allowance"`
	Rate                  int    `json:"rate"`
	RatePeriod            string `json:"rate_period"`
}

var table = []Policy{
	{Plan: Hourly, WeeklyMinuteAllowance: 20 * 60, Rate: 500, RatePeriod: "hour"},
	{Plan: Daily, WeeklyMinuteAllowance: 40 * 60, Rate: 4000, RatePeriod: "day"},
	{Plan: Weekly, WeeklyMinuteAllowance: 50 * 60, Rate: 20000, RatePeriod: "week"},
	{Plan: Monthly, WeeklyMinuteAllowance: 60 * 60, Rate: 68000, RatePeriod: "month"},
}

// Lookup returns the policy for plan.
func Lookup(plan string) (Policy, bool) {
	for _, p := range table {
		if p.Plan == plan {
			return p, true
		}
	}
	return Policy{}, false
}

// Resolve returns the policy for a stored plan, falling back to the default
// plan when the value is empty or unrecognised.
func Resolve(plan string) Policy {
	if p, ok := Lookup(plan); ok {
		return p
	}
	p, _ := Lookup(Default)
	return p
}

// Valid reports whether plan is one of the fixed identifiers.
func Valid(plan string) bool {
	_, ok := Lookup(plan)
	return ok
}

// All returns a copy of the plan table, cheapest first.
func All() []Policy {
	out := make([]Policy, len(table))
	copy(out, table)
	return out
}

// Names returns the plan identifiers in table order.
func Names() []string {
	names := make([]string, len(table))
	for i, p := range table {
		names[i] = p.Plan
	}
	return names
}

// UtilizationPercent is round(total/limit*100). It is deliberately not
// clamped to 100; the daily breakdown clamps, weekly usage does not.
func UtilizationPercent(totalMinutes, limitMinutes int) int {
	if limitMinutes <= 0 {
		return 0
	}
	return RoundHalfUp(float64(totalMinutes) / float64(limitMinutes) * 100)
}

// RoundHalfUp rounds x to the nearest integer, halves towards +Inf.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
