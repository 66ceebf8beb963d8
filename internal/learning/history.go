package learning

import (
	"sync"
	"time"
)

// DefaultRetention is how long history entries are kept before ageing out.
const DefaultRetention = 30 * 24 * time.Hour

// History is the append-only log of learning updates, approved and rejected
// alike. Entries are never deleted individually; Prune ages out whole spans
// past the retention window.
type History struct {
	mu        sync.RWMutex
	entries   []*Update
	retention time.Duration
	now       func() time.Time
}

// NewHistory creates a history with the given retention; zero means the
// default 30 days.
func NewHistory(retention time.Duration) *History {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &History{
		retention: retention,
		now:       time.Now,
	}
}

// Append records an update. Updates arrive already status-stamped by the
// QA gate; the history stores them as-is.
func (h *History) Append(u *Update) {
	if u == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, u)
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Recent returns up to n most recent entries, newest last.
func (h *History) Recent(n int) []*Update {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]*Update, n)
	copy(out, h.entries[len(h.entries)-n:])
	return out
}

// Prune drops entries older than the retention window and returns how many
// were aged out. Entries are appended in arrival order, so a single cut
// point suffices.
func (h *History) Prune() int {
	cutoff := h.now().Add(-h.retention)
	h.mu.Lock()
	defer h.mu.Unlock()

	idx := 0
	for idx < len(h.entries) && h.entries[idx].CreatedAt.Before(cutoff) {
		idx++
	}
	if idx == 0 {
		return 0
	}
	h.entries = append([]*Update{}, h.entries[idx:]...)
	return idx
}
