package tracking

import "time"

// Layouts used at every serialization boundary. The management sheet this
// system replaces stored timestamps as "2024-01-01 09:15:00" and dates as
// "2024-01-01"; keep both for format compatibility.
const (
	DateLayout  = "2006-01-02"
	StampLayout = "2006-01-02 15:04:05"
)

type Status string

const (
	StatusNotArrived     Status = "not_arrived"
	StatusArrivedPending Status = "arrived_pending"
	StatusCompleted      Status = "completed"
)

// Reservation is one pre-booked delivery slot. Loaded for the day and never
// mutated by the engine.
type Reservation struct {
	OrderID  string
	Supplier string
	Packages int

	// Calendar date of the slot.
	Date time.Time

	// Booked time range as entered by planning, e.g. "09:00-09:30" or
	// "09:00 - 09:30". May be unparseable; delay is then simply not computed.
	BookedRange string
}

// Record is the management row for one order on one day: created when the
// truck arrives, completed when warehouse handling finishes. Optional fields
// are nil until the corresponding registration happens. Durations are
// computed once at registration time and stored, never recomputed on read.
type Record struct {
	OrderID  string
	Supplier string
	Packages int

	ArrivedAt      *time.Time
	ServiceStartAt *time.Time
	ServiceEndAt   *time.Time

	WaitMinutes    *int
	ServiceMinutes *int
	TotalMinutes   *int
	DelayMinutes   *int
}

func (r Record) Completed() bool {
	return r.ServiceStartAt != nil && r.ServiceEndAt != nil
}
