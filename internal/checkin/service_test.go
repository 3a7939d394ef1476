package checkin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/supplier-gate/internal/internaltypes"
	"github.com/example/supplier-gate/internal/store"
	"github.com/example/supplier-gate/internal/tracking"
)

func newTestService() (*Service, *store.Memory) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mem := store.NewMemory(store.Snapshot{
		Reservations: []tracking.Reservation{
			{OrderID: "PO100", Supplier: "Acme Foods", Packages: 12, Date: day, BookedRange: "09:00-09:30"},
			{OrderID: "PO101", Supplier: "Beta Logistics", Packages: 3, Date: day, BookedRange: "10:00 - 10:30"},
			{OrderID: "PO900", Supplier: "Tomorrow Co", Packages: 1, Date: day.AddDate(0, 0, 1), BookedRange: "09:00-09:30"},
		},
	})
	svc := &Service{
		Store: mem,
		Clock: FixedClock{At: time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC)},
	}
	return svc, mem
}

func TestBoard_OnlyToday(t *testing.T) {
	svc, _ := newTestService()
	rows, err := svc.Board(context.Background())
	if err != nil {
		t.Fatalf("Board failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows today, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Status != tracking.StatusNotArrived {
			t.Errorf("%s: status = %s before any registration", row.Reservation.OrderID, row.Status)
		}
		if row.Record != nil {
			t.Errorf("%s: unexpected record before arrival", row.Reservation.OrderID)
		}
	}
}

func TestRegisterArrival_PersistsAndClassifies(t *testing.T) {
	svc, mem := newTestService()
	ctx := context.Background()

	rec, err := svc.RegisterArrival(ctx, "PO100", 9, 15)
	if err != nil {
		t.Fatalf("RegisterArrival failed: %v", err)
	}
	if rec.DelayMinutes == nil || *rec.DelayMinutes != 15 {
		t.Errorf("delay = %v, want 15", rec.DelayMinutes)
	}

	snap, err := mem.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(snap.Records) != 1 {
		t.Fatalf("expected 1 persisted record, got %d", len(snap.Records))
	}

	rows, err := svc.Board(ctx)
	if err != nil {
		t.Fatalf("Board failed: %v", err)
	}
	for _, row := range rows {
		want := tracking.StatusNotArrived
		if row.Reservation.OrderID == "PO100" {
			want = tracking.StatusArrivedPending
		}
		if row.Status != want {
			t.Errorf("%s: status = %s, want %s", row.Reservation.OrderID, row.Status, want)
		}
	}
}

func TestRegisterService_FullFlow(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.RegisterService(ctx, "PO100", 9, 20, 10, 5); !errors.Is(err, internaltypes.ErrNotFound) {
		t.Fatalf("service before arrival: err = %v, want ErrNotFound", err)
	}

	if _, err := svc.RegisterArrival(ctx, "PO100", 9, 15); err != nil {
		t.Fatalf("RegisterArrival failed: %v", err)
	}

	rec, err := svc.RegisterService(ctx, "PO100", 9, 20, 10, 5)
	if err != nil {
		t.Fatalf("RegisterService failed: %v", err)
	}
	if *rec.WaitMinutes != 5 || *rec.ServiceMinutes != 45 || *rec.TotalMinutes != 50 {
		t.Errorf("durations = %d/%d/%d, want 5/45/50", *rec.WaitMinutes, *rec.ServiceMinutes, *rec.TotalMinutes)
	}

	// Completed records stay completed; a second registration is refused.
	if _, err := svc.RegisterService(ctx, "PO100", 10, 10, 10, 30); !errors.Is(err, internaltypes.ErrValidation) {
		t.Errorf("re-registration after completion: err = %v, want ErrValidation", err)
	}

	rows, err := svc.Board(ctx)
	if err != nil {
		t.Fatalf("Board failed: %v", err)
	}
	for _, row := range rows {
		if row.Reservation.OrderID == "PO100" && row.Status != tracking.StatusCompleted {
			t.Errorf("PO100: status = %s, want %s", row.Status, tracking.StatusCompleted)
		}
	}
}

func TestRegisterArrival_Rejections(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.RegisterArrival(ctx, "PO555", 9, 0); !errors.Is(err, internaltypes.ErrValidation) {
		t.Errorf("unknown order: err = %v, want ErrValidation", err)
	}
	if _, err := svc.RegisterArrival(ctx, "PO900", 9, 0); !errors.Is(err, internaltypes.ErrValidation) {
		t.Errorf("tomorrow's order: err = %v, want ErrValidation", err)
	}
}

func TestDefaultArrival(t *testing.T) {
	svc, _ := newTestService()

	h, m := svc.DefaultArrival(tracking.Reservation{BookedRange: "09:00-09:30"})
	if h != 9 || m != 0 {
		t.Errorf("booked range default = %02d:%02d, want 09:00", h, m)
	}

	// Unparseable range falls back to the clock.
	h, m = svc.DefaultArrival(tracking.Reservation{BookedRange: "tbd"})
	if h != 8 || m != 30 {
		t.Errorf("fallback default = %02d:%02d, want 08:30", h, m)
	}
}
