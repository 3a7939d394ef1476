// Package checkin drives the tracking engine against the snapshot store:
// load, apply one registration, save. A mutex serializes the
// read-modify-write cycle within this process, which is the serialization
// the engine's contract requires. Across processes the store is
// last-write-wins: two instances registering against the same day can
// overwrite each other, so deploy a single writer per dataset.
package checkin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/supplier-gate/internal/internaltypes"
	"github.com/example/supplier-gate/internal/store"
	"github.com/example/supplier-gate/internal/tracking"
)

type Service struct {
	Store store.Store
	Clock Clock

	mu sync.Mutex
}

// BoardRow is one reservation of the day joined with its lifecycle state and,
// once arrived, its management record.
type BoardRow struct {
	Reservation tracking.Reservation
	Status      tracking.Status
	Record      *tracking.Record
}

// Board lists today's reservations with their current state. Empty when
// nothing is booked today.
func (s *Service) Board(ctx context.Context) ([]BoardRow, error) {
	snap, err := s.Store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	now := s.Clock.Now()

	var rows []BoardRow
	for _, res := range tracking.TodaysReservations(snap.Reservations, now) {
		row := BoardRow{
			Reservation: res,
			Status:      tracking.Classify(res.OrderID, snap.Records, now),
		}
		if row.Status != tracking.StatusNotArrived {
			if rec, ok := recordFor(res.OrderID, snap.Records); ok {
				row.Record = &rec
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// RegisterArrival stamps the truck's arrival at hour:minute today and
// persists the updated management log.
func (s *Service) RegisterArrival(ctx context.Context, orderID string, hour, minute int) (tracking.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.Store.Load(ctx)
	if err != nil {
		return tracking.Record{}, fmt.Errorf("store: %w", err)
	}

	arrivedAt := s.today(hour, minute)
	records, rec, err := tracking.RegisterArrival(orderID, snap.Reservations, arrivedAt, snap.Records)
	if err != nil {
		return tracking.Record{}, err
	}

	snap.Records = records
	if err := s.Store.Save(ctx, snap); err != nil {
		return tracking.Record{}, fmt.Errorf("store: %w", err)
	}
	return rec, nil
}

// RegisterService stamps the service window for an arrived order. Unlike the
// engine, the service refuses to overwrite a completed record; re-timing a
// finished delivery is a correction flow this system does not offer.
func (s *Service) RegisterService(ctx context.Context, orderID string, startHour, startMinute, endHour, endMinute int) (tracking.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.Store.Load(ctx)
	if err != nil {
		return tracking.Record{}, fmt.Errorf("store: %w", err)
	}

	now := s.Clock.Now()
	if tracking.Classify(orderID, snap.Records, now) == tracking.StatusCompleted {
		return tracking.Record{}, fmt.Errorf("%w: service already registered for order %q", internaltypes.ErrValidation, orderID)
	}

	start := s.today(startHour, startMinute)
	end := s.today(endHour, endMinute)
	records, rec, err := tracking.RegisterService(orderID, start, end, snap.Records)
	if err != nil {
		return tracking.Record{}, err
	}

	snap.Records = records
	if err := s.Store.Save(ctx, snap); err != nil {
		return tracking.Record{}, fmt.Errorf("store: %w", err)
	}
	return rec, nil
}

// DefaultArrival is the pre-filled picker value for a reservation: the booked
// slot start when it parses, otherwise the current wall time.
func (s *Service) DefaultArrival(res tracking.Reservation) (hour, minute int) {
	if start, ok := tracking.ParseBookedStart(res.BookedRange); ok {
		return start.Hour(), start.Minute()
	}
	now := s.Clock.Now()
	return now.Hour(), now.Minute()
}

func (s *Service) today(hour, minute int) time.Time {
	now := s.Clock.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
}

func recordFor(orderID string, records []tracking.Record) (tracking.Record, bool) {
	for _, r := range records {
		if r.OrderID == orderID {
			return r, true
		}
	}
	return tracking.Record{}, false
}
