package checkin

import "time"

// Clock supplies "now" (and therefore "today") so the day-scoped logic is
// testable without waiting for midnight.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant. Test helper.
type FixedClock struct{ At time.Time }

func (f FixedClock) Now() time.Time { return f.At }
