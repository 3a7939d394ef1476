// Package tracking holds the order status and duration engine: day-scoped
// lifecycle classification (not arrived -> arrived pending service ->
// completed) and the wait/service/total/delay arithmetic around the
// arrival and service timestamps.
//
// The engine is pure computation over in-memory collections. Persistence,
// sessions and rendering live elsewhere; callers own serialization of the
// read-modify-write cycle (see checkin.Service).
package tracking

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/supplier-gate/internal/internaltypes"
)

// TodaysReservations filters by exact calendar-date match. An empty result is
// a valid terminal state for the caller (nothing booked today).
func TodaysReservations(all []Reservation, today time.Time) []Reservation {
	var out []Reservation
	for _, r := range all {
		if sameDay(r.Date, today) {
			out = append(out, r)
		}
	}
	return out
}

// ParseBookedStart extracts the start of a booked range ("09:00-09:30",
// spaces around the dash allowed) as a 24-hour wall time. The second half is
// not validated; it is never used. Returns false when there is no dash or the
// first half does not parse.
func ParseBookedStart(rangeText string) (time.Time, bool) {
	if !strings.Contains(rangeText, "-") {
		return time.Time{}, false
	}
	first := strings.TrimSpace(strings.SplitN(rangeText, "-", 2)[0])
	t, err := time.Parse("15:04", first)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Classify reports the lifecycle state of an order. Only a record whose
// arrival timestamp falls on today counts; stale rows from earlier days do
// not contribute.
func Classify(orderID string, records []Record, today time.Time) Status {
	for _, r := range records {
		if r.OrderID != orderID || r.ArrivedAt == nil || !sameDay(*r.ArrivedAt, today) {
			continue
		}
		if r.Completed() {
			return StatusCompleted
		}
		return StatusArrivedPending
	}
	return StatusNotArrived
}

// RegisterArrival upserts the arrival of an order against today's
// reservations. A second registration for the same order overwrites the
// stored arrival time in place; no second row is created. Delay against the
// booked slot start is signed (negative means early) and absent when the
// booked range does not parse.
//
// The input slice is not mutated; the updated collection and record are
// returned.
func RegisterArrival(orderID string, reservations []Reservation, arrivedAt time.Time, records []Record) ([]Record, Record, error) {
	res, ok := reservationFor(orderID, TodaysReservations(reservations, arrivedAt))
	if !ok {
		return nil, Record{}, fmt.Errorf("%w: order %q has no reservation today", internaltypes.ErrValidation, orderID)
	}

	out := make([]Record, len(records))
	copy(out, records)

	at := arrivedAt
	for i := range out {
		if out[i].OrderID == orderID {
			out[i].ArrivedAt = &at
			return out, out[i], nil
		}
	}

	rec := Record{
		OrderID:   res.OrderID,
		Supplier:  res.Supplier,
		Packages:  res.Packages,
		ArrivedAt: &at,
	}
	if start, ok := ParseBookedStart(res.BookedRange); ok {
		booked := combine(arrivedAt, start)
		d := minutesBetween(booked, arrivedAt)
		rec.DelayMinutes = &d
	}
	out = append(out, rec)
	return out, rec, nil
}

// RegisterService sets the service window on an existing arrival record and
// stores the three derived durations. Ordering is validated here: the end
// must be after the start, and the start must not precede the arrival.
//
// There is deliberately no completed-state guard at this level; the caller
// decides whether an already-completed record may be overwritten (see
// checkin.Service, which rejects it).
func RegisterService(orderID string, start, end time.Time, records []Record) ([]Record, Record, error) {
	out := make([]Record, len(records))
	copy(out, records)

	idx := -1
	for i := range out {
		if out[i].OrderID == orderID && out[i].ArrivedAt != nil {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, Record{}, fmt.Errorf("%w: no arrival registered for order %q", internaltypes.ErrNotFound, orderID)
	}

	arrived := *out[idx].ArrivedAt
	if !end.After(start) {
		return nil, Record{}, fmt.Errorf("%w: service end must be after service start", internaltypes.ErrValidation)
	}
	if start.Before(arrived) {
		return nil, Record{}, fmt.Errorf("%w: service start cannot precede arrival", internaltypes.ErrValidation)
	}

	s, e := start, end
	wait := minutesBetween(arrived, start)
	service := minutesBetween(start, end)
	total := minutesBetween(arrived, end)

	out[idx].ServiceStartAt = &s
	out[idx].ServiceEndAt = &e
	out[idx].WaitMinutes = &wait
	out[idx].ServiceMinutes = &service
	out[idx].TotalMinutes = &total
	return out, out[idx], nil
}

func reservationFor(orderID string, today []Reservation) (Reservation, bool) {
	for _, r := range today {
		if r.OrderID == orderID {
			return r, true
		}
	}
	return Reservation{}, false
}

// Whole minutes, truncated toward zero. Matches integer division of seconds
// in the sheet formulas, so -10.5min reads as -10.
func minutesBetween(from, to time.Time) int {
	return int(to.Sub(from).Minutes())
}

func sameDay(a, b time.Time) bool {
	return a.Format(DateLayout) == b.Format(DateLayout)
}

// combine puts a wall time on the calendar date of day, in day's location.
func combine(day, wall time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), wall.Hour(), wall.Minute(), 0, 0, day.Location())
}
