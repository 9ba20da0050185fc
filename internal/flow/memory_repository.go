package flow

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

// NewMemoryRepository builds an in-memory snapshot store for dev and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{snaps: make(map[string]Snapshot)}
}

func (r *memoryRepository) Save(_ context.Context, snap Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps[snap.ID] = cloneSnapshot(snap)
	return nil
}

func (r *memoryRepository) Find(_ context.Context, id string) (Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.snaps[id]
	if !ok {
		return Snapshot{}, ErrSnapshotNotFound
	}
	return cloneSnapshot(snap), nil
}

// cloneSnapshot detaches the map fields so callers and the store never
// alias each other.
func cloneSnapshot(snap Snapshot) Snapshot {
	if snap.State.FieldErrors != nil {
		errs := make(map[string]string, len(snap.State.FieldErrors))
		for k, v := range snap.State.FieldErrors {
			errs[k] = v
		}
		snap.State.FieldErrors = errs
	}
	return snap
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.snaps, id)
	return nil
}
