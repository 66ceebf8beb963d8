package reliability

import (
	"context"

	"go.uber.org/zap"
)

// Multiplier bounds and nudge targets.
const (
	MinMultiplier = 0.5
	MaxMultiplier = 1.5

	successTarget = 1.1
	failureTarget = 0.9
)

// Tracker mutates brain reliability from validated execution outcomes and
// serves current multipliers to the confidence aggregator.
type Tracker struct {
	store  Store
	logger *zap.Logger
}

// NewTracker creates a tracker over the given store.
func NewTracker(store Store, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{store: store, logger: logger}
}

// RecordOutcome nudges a brain's multiplier toward 1.1 (success) or 0.9
// (failure), weighted by how accurate the brain's confidence turned out to
// be, and clamps the result to [0.5, 1.5]. Only callers holding a validated,
// non-rejected update may invoke this.
func (t *Tracker) RecordOutcome(ctx context.Context, brainName string, success bool, confidenceAccuracy float64) (float64, error) {
	target := failureTarget
	if success {
		target = successTarget
	}
	weight := confidenceAccuracy
	if weight < 0 {
		weight = 0
	} else if weight > 1 {
		weight = 1
	}

	next, err := t.store.Update(ctx, brainName, func(cur float64) float64 {
		return clampMultiplier(cur + (target-cur)*weight)
	})
	if err != nil {
		return 0, err
	}

	t.logger.Debug("reliability updated",
		zap.String("brain", brainName),
		zap.Bool("success", success),
		zap.Float64("confidence_accuracy", weight),
		zap.Float64("multiplier", next),
	)
	return next, nil
}

// Multiplier returns the current multiplier for a brain, falling back to
// the neutral 1.0 on store failure so aggregation never blocks on state.
// Implements the fusion package's ReliabilityReader.
func (t *Tracker) Multiplier(ctx context.Context, brainName string) float64 {
	v, err := t.store.Multiplier(ctx, brainName)
	if err != nil {
		t.logger.Warn("reliability read failed, using neutral multiplier",
			zap.String("brain", brainName), zap.Error(err))
		return DefaultMultiplier
	}
	return v
}

// Snapshot exposes all multipliers, for the operator endpoint.
func (t *Tracker) Snapshot(ctx context.Context) (map[string]float64, error) {
	return t.store.Snapshot(ctx)
}

func clampMultiplier(v float64) float64 {
	if v < MinMultiplier {
		return MinMultiplier
	}
	if v > MaxMultiplier {
		return MaxMultiplier
	}
	return v
}
