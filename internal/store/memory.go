package store

import (
	"context"
	"sync"
)

// Memory keeps the dataset in process. Used by tests and --store=memory runs
// where no Postgres is available.
type Memory struct {
	mu   sync.Mutex
	snap Snapshot
}

func NewMemory(seed Snapshot) *Memory {
	return &Memory{snap: seed.clone()}
}

func (m *Memory) Load(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.clone(), nil
}

func (m *Memory) Save(ctx context.Context, s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = s.clone()
	return nil
}
