package qa

import (
	"sync"
	"time"

	"github.com/fyrsmithlabs/cortexd/internal/learning"
)

// History defaults. The per-target buffer is a recency heuristic for the
// consistency check, not a full audit log; the learning package keeps the
// complete append-only history.
const (
	DefaultHistoryLimit    = 100
	consistencyWindowDepth = 10
)

// HistoryEntry is the per-update summary retained for consistency checks.
type HistoryEntry struct {
	UpdateID string
	Type     learning.UpdateType
	Target   string
	Content  map[string]any
	Quality  QualityLevel
	At       time.Time
}

// History is a bounded per-target ring buffer of validated updates.
// Only non-rejected updates are recorded; ordering is arrival order within
// a target, with no guarantee across targets.
type History struct {
	mu       sync.RWMutex
	limit    int
	byTarget map[string][]HistoryEntry
}

// NewHistory creates a validation history with the given per-target limit;
// zero means the default 100 entries.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{
		limit:    limit,
		byTarget: make(map[string][]HistoryEntry),
	}
}

// Record stores a summary for a validated, non-rejected update.
func (h *History) Record(u *learning.Update, quality QualityLevel) {
	if u == nil || quality == QualityRejected {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := append(h.byTarget[u.TargetBrain], HistoryEntry{
		UpdateID: u.ID,
		Type:     u.Type,
		Target:   u.TargetBrain,
		Content:  u.Content,
		Quality:  quality,
		At:       u.CreatedAt,
	})
	if len(entries) > h.limit {
		entries = entries[len(entries)-h.limit:]
	}
	h.byTarget[u.TargetBrain] = entries
}

// RecentByType returns up to n most recent entries for a target filtered to
// one update type, newest last.
func (h *History) RecentByType(target string, typ learning.UpdateType, n int) []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	entries := h.byTarget[target]
	out := make([]HistoryEntry, 0, n)
	for i := len(entries) - 1; i >= 0 && len(out) < n; i-- {
		if entries[i].Type == typ {
			out = append(out, entries[i])
		}
	}
	// reverse back to oldest-first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Size returns the retained entry count for a target.
func (h *History) Size(target string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byTarget[target])
}
