// Package store persists the three record collections the tracking engine
// works over: supplier credentials, booked reservations and the management
// log. Save replaces the whole dataset; a load is a consistent snapshot but
// may be up to a few minutes stale relative to another writer, and callers
// must not assume it reflects the latest save from another session.
package store

import (
	"context"

	"github.com/example/supplier-gate/internal/tracking"
)

// Credential is one staff login row from the credential sheet. The engine
// never reads these; auth does.
type Credential struct {
	Supplier     string
	Username     string
	PasswordHash string
}

type Snapshot struct {
	Credentials  []Credential
	Reservations []tracking.Reservation
	Records      []tracking.Record
}

type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	// Save atomically replaces the full dataset. Two concurrent savers are
	// last-write-wins; serialization is the caller's job (checkin.Service
	// does it for one process).
	Save(ctx context.Context, s Snapshot) error
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Credentials:  make([]Credential, len(s.Credentials)),
		Reservations: make([]tracking.Reservation, len(s.Reservations)),
		Records:      make([]tracking.Record, len(s.Records)),
	}
	copy(out.Credentials, s.Credentials)
	copy(out.Reservations, s.Reservations)
	copy(out.Records, s.Records)
	return out
}
