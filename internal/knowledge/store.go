package knowledge

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Common errors for knowledge operations.
var (
	ErrItemNotFound = errors.New("knowledge item not found")
	ErrInvalidItem  = errors.New("invalid knowledge item")
)

// matchLimit caps how many items a single match returns.
const matchLimit = 10

// Item is a unit of shareable cross-brain knowledge.
type Item struct {
	// ID identifies the item; sharing again with the same ID overwrites.
	ID string `json:"id"`

	// SourceBrain is the brain that contributed the item.
	SourceBrain string `json:"source_brain"`

	// Type categorizes the knowledge (e.g. "pattern", "procedure").
	Type string `json:"type"`

	// Contexts lists where the item applies, matched case-insensitively.
	Contexts []string `json:"applicable_contexts"`

	// SuccessRate is the empirical success rate observed when the item
	// was created. Not recomputed on transfer.
	SuccessRate float64 `json:"success_rate"`

	// UsageCount tracks how many times the item has been transferred.
	UsageCount int `json:"usage_count"`

	// LastUsed is the time of the most recent transfer.
	LastUsed time.Time `json:"last_used,omitempty"`

	// CreatedAt is when the item was first shared.
	CreatedAt time.Time `json:"created_at"`
}

// NewItem creates a knowledge item with a generated ID.
func NewItem(sourceBrain, knowledgeType string, contexts []string, successRate float64) (*Item, error) {
	if sourceBrain == "" || knowledgeType == "" {
		return nil, ErrInvalidItem
	}
	if successRate < 0 || successRate > 1 {
		return nil, ErrInvalidItem
	}
	return &Item{
		ID:          uuid.New().String(),
		SourceBrain: sourceBrain,
		Type:        knowledgeType,
		Contexts:    contexts,
		SuccessRate: successRate,
		CreatedAt:   time.Now(),
	}, nil
}

// Request describes a knowledge lookup: same-type items whose contexts
// intersect the request contexts.
type Request struct {
	Type     string   `json:"type"`
	Contexts []string `json:"contexts"`
}

// Store defines the cross-brain knowledge repository. Implementations must
// be safe for concurrent use; each operation touches a single item.
type Store interface {
	// Share stores or overwrites an item under its ID.
	Share(ctx context.Context, item *Item) error

	// Match returns up to 10 same-type items whose contexts intersect the
	// request contexts (case-insensitive), ranked by success rate then
	// usage count, both descending.
	Match(ctx context.Context, req *Request) ([]*Item, error)

	// Transfer marks an item as used: increments usage count and updates
	// last-used. The item's success rate is left untouched.
	Transfer(ctx context.Context, itemID string) (*Item, error)

	// Count returns the number of stored items.
	Count(ctx context.Context) (int, error)
}

// InMemoryStore is the default Store, a mutex-guarded map per brain.
type InMemoryStore struct {
	mu sync.RWMutex
	// bases maps source brain -> item id -> item.
	bases map[string]map[string]*Item
	now   func() time.Time
}

// NewInMemoryStore creates an empty in-memory knowledge store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		bases: make(map[string]map[string]*Item),
		now:   time.Now,
	}
}

// Share stores or overwrites an item in its source brain's knowledge base.
func (s *InMemoryStore) Share(ctx context.Context, item *Item) error {
	if item == nil || item.ID == "" || item.SourceBrain == "" {
		return ErrInvalidItem
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	base, ok := s.bases[item.SourceBrain]
	if !ok {
		base = make(map[string]*Item)
		s.bases[item.SourceBrain] = base
	}
	cp := *item
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	base[item.ID] = &cp
	return nil
}

// Match finds applicable items across all brains' knowledge bases.
func (s *InMemoryStore) Match(ctx context.Context, req *Request) ([]*Item, error) {
	if req == nil || req.Type == "" {
		return nil, nil
	}

	want := make(map[string]struct{}, len(req.Contexts))
	for _, c := range req.Contexts {
		want[strings.ToLower(c)] = struct{}{}
	}

	s.mu.RLock()
	var matches []*Item
	for _, base := range s.bases {
		for _, item := range base {
			if item.Type != req.Type {
				continue
			}
			if !contextsIntersect(item.Contexts, want) {
				continue
			}
			cp := *item
			matches = append(matches, &cp)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].SuccessRate != matches[j].SuccessRate {
			return matches[i].SuccessRate > matches[j].SuccessRate
		}
		if matches[i].UsageCount != matches[j].UsageCount {
			return matches[i].UsageCount > matches[j].UsageCount
		}
		return matches[i].ID < matches[j].ID // stable tie-break
	})

	if len(matches) > matchLimit {
		matches = matches[:matchLimit]
	}
	return matches, nil
}

// Transfer bumps usage accounting for an item.
func (s *InMemoryStore) Transfer(ctx context.Context, itemID string) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, base := range s.bases {
		if item, ok := base[itemID]; ok {
			item.UsageCount++
			item.LastUsed = s.now()
			cp := *item
			return &cp, nil
		}
	}
	return nil, ErrItemNotFound
}

// Count returns the total number of stored items.
func (s *InMemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, base := range s.bases {
		n += len(base)
	}
	return n, nil
}

// contextsIntersect reports whether any item context appears in the wanted
// set, comparing case-insensitively.
func contextsIntersect(contexts []string, want map[string]struct{}) bool {
	if len(want) == 0 {
		return false
	}
	for _, c := range contexts {
		if _, ok := want[strings.ToLower(c)]; ok {
			return true
		}
	}
	return false
}
