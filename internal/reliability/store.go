package reliability

import (
	"context"
	"sync"
)

// Default multipliers by brain role.
const (
	DefaultMultiplier    = 1.0
	DefaultSMEMultiplier = 1.1
)

// Store defines reliability-score persistence. Update must be an atomic
// read-modify-write on a single brain's scalar; no multi-key transactions
// are needed.
type Store interface {
	// Multiplier returns the current multiplier for a brain, or its
	// default if the brain has never been updated.
	Multiplier(ctx context.Context, brainName string) (float64, error)

	// Update applies fn atomically to a brain's multiplier and returns
	// the new value.
	Update(ctx context.Context, brainName string, fn func(current float64) float64) (float64, error)

	// Snapshot returns a copy of all known multipliers.
	Snapshot(ctx context.Context) (map[string]float64, error)
}

// InMemoryStore is the process-wide in-memory Store implementation.
type InMemoryStore struct {
	mu         sync.RWMutex
	scores     map[string]float64
	defaultFor func(brainName string) float64
}

// NewInMemoryStore creates an in-memory store. defaultFor supplies the
// starting multiplier per brain (SME brains start at 1.1); nil means every
// brain starts at 1.0.
func NewInMemoryStore(defaultFor func(brainName string) float64) *InMemoryStore {
	if defaultFor == nil {
		defaultFor = func(string) float64 { return DefaultMultiplier }
	}
	return &InMemoryStore{
		scores:     make(map[string]float64),
		defaultFor: defaultFor,
	}
}

// Multiplier returns the current multiplier for a brain.
func (s *InMemoryStore) Multiplier(ctx context.Context, brainName string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.scores[brainName]; ok {
		return v, nil
	}
	return s.defaultFor(brainName), nil
}

// Update applies fn atomically to a brain's multiplier.
func (s *InMemoryStore) Update(ctx context.Context, brainName string, fn func(float64) float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.scores[brainName]
	if !ok {
		cur = s.defaultFor(brainName)
	}
	next := fn(cur)
	s.scores[brainName] = next
	return next, nil
}

// Snapshot returns a copy of all multipliers that have been touched.
func (s *InMemoryStore) Snapshot(ctx context.Context) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.scores))
	for k, v := range s.scores {
		out[k] = v
	}
	return out, nil
}
