package learning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHistoryAppendRecent(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, DefaultRetention, h.retention)

	h.Append(nil) // no-op
	assert.Equal(t, 0, h.Len())

	for i := 0; i < 3; i++ {
		h.Append(newUpdate(UpdateExecutionFeedback, "planner", map[string]any{"i": i}, 0.7, time.Now()))
	}
	assert.Equal(t, 3, h.Len())

	recent := h.Recent(2)
	assert.Len(t, recent, 2)
	assert.Equal(t, 2, recent[1].Content["i"])

	assert.Len(t, h.Recent(0), 3)
	assert.Len(t, h.Recent(100), 3)
}

func TestHistoryPrune(t *testing.T) {
	h := NewHistory(24 * time.Hour)
	now := time.Now()
	h.now = func() time.Time { return now }

	h.Append(newUpdate(UpdateExecutionFeedback, "planner", map[string]any{"age": "old"}, 0.7, now.Add(-48*time.Hour)))
	h.Append(newUpdate(UpdateExecutionFeedback, "planner", map[string]any{"age": "older"}, 0.7, now.Add(-25*time.Hour)))
	h.Append(newUpdate(UpdateExecutionFeedback, "planner", map[string]any{"age": "fresh"}, 0.7, now.Add(-time.Hour)))

	dropped := h.Prune()
	assert.Equal(t, 2, dropped)
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, "fresh", h.Recent(1)[0].Content["age"])

	assert.Equal(t, 0, h.Prune())
}
