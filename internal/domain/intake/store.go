package intake

import "sync"

// Store owns the canonical patient collection. Readers only ever receive
// snapshots; the only mutation is an append.
type Store interface {
	All() []Patient
	Add(p Patient)
}

var _ Store = (*MemoryStore)(nil)

// MemoryStore is a process-local Store. Nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	patients []Patient
}

// NewMemoryStore creates a store holding a copy of seed in the given order.
func NewMemoryStore(seed ...Patient) *MemoryStore {
	patients := make([]Patient, len(seed))
	copy(patients, seed)
	return &MemoryStore{patients: patients}
}

// All returns a snapshot of every record in insertion order.
func (s *MemoryStore) All() []Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Patient, len(s.patients))
	copy(out, s.patients)
	return out
}

// Add appends p. No validation is performed; callers commit only records
// that passed Validate.
func (s *MemoryStore) Add(p Patient) {
	s.mu.Lock()
	s.patients = append(s.patients, p)
	s.mu.Unlock()
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patients)
}
