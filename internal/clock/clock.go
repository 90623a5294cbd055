package clock

import "time"

// Clock provides the current time to anything that computes durations or
// period boundaries. Tests substitute TestClock.
type Clock interface {
	Now() time.Time
}

// RealClock reads the wall clock in a fixed location.
type RealClock struct {
	Location *time.Location
}

// NewRealClock returns a wall clock reporting times in loc (UTC when nil).
func NewRealClock(loc *time.Location) RealClock {
	if loc == nil {
		loc = time.UTC
	}
	return RealClock{Location: loc}
}

// Now returns the current system time.
func (c RealClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// TestClock provides fixed time for testing.
type TestClock struct {
	CurrentTime time.Time
}

// Now returns the test time.
func (t *TestClock) Now() time.Time {
	return t.CurrentTime
}

// Advance moves the test clock forward by d.
func (t *TestClock) Advance(d time.Duration) {
	t.CurrentTime = t.CurrentTime.Add(d)
}

// ElapsedMinutes returns whole minutes between start and now, floored.
// A start in the future yields zero.
func ElapsedMinutes(start, now time.Time) int {
	ms := now.Sub(start).Milliseconds()
	if ms <= 0 {
		return 0
	}
	return int(ms / 60000)
}
