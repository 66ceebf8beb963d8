package orchestrator

import (
	"sync"

	"github.com/fyrsmithlabs/cortexd/internal/learning"
)

// DecisionStore keeps recent decision records for feedback correlation,
// bounded to the most recent N requests. Feedback for an aged-out request
// id reads as unknown.
type DecisionStore struct {
	mu      sync.RWMutex
	limit   int
	byID    map[string]*learning.DecisionRecord
	arrival []string
}

// NewDecisionStore creates a bounded decision store.
func NewDecisionStore(limit int) *DecisionStore {
	if limit <= 0 {
		limit = defaultDecisionHistoryLimit
	}
	return &DecisionStore{
		limit: limit,
		byID:  make(map[string]*learning.DecisionRecord),
	}
}

// Put records a decision, evicting the oldest when over the limit.
func (s *DecisionStore) Put(rec *learning.DecisionRecord) {
	if rec == nil || rec.RequestID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[rec.RequestID]; !ok {
		s.arrival = append(s.arrival, rec.RequestID)
	}
	s.byID[rec.RequestID] = rec

	for len(s.arrival) > s.limit {
		oldest := s.arrival[0]
		s.arrival = s.arrival[1:]
		delete(s.byID, oldest)
	}
}

// Record returns the decision record for a request id.
func (s *DecisionStore) Record(requestID string) (*learning.DecisionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[requestID]
	return rec, ok
}

// Len returns the number of retained records.
func (s *DecisionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
