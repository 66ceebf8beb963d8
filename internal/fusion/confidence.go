package fusion

import (
	"context"
	"math"

	"github.com/fyrsmithlabs/cortexd/internal/brain"
)

// Fixed fusion weights. They must sum to exactly 1.0 so the aggregate stays
// a convex combination of brain confidences.
const (
	WeightIntent    = 0.4
	WeightTechnical = 0.4
	WeightSME       = 0.2
)

// DefaultSMEConfidence stands in for an empty or fully failed SME round.
const DefaultSMEConfidence = 0.5

// ReliabilityReader supplies the current per-brain reliability multiplier.
// Implementations must return 1.0 for unknown brains and never block hard;
// a nil reader disables reliability scaling.
type ReliabilityReader interface {
	Multiplier(ctx context.Context, brainName string) float64
}

// ConfidenceAggregator fuses intent, technical, and SME confidences into one
// overall confidence. It always returns a defined value: missing pieces fall
// back to neutral defaults instead of propagating failure.
type ConfidenceAggregator struct {
	reliability ReliabilityReader
}

// NewConfidenceAggregator creates an aggregator. reliability may be nil.
func NewConfidenceAggregator(reliability ReliabilityReader) *ConfidenceAggregator {
	return &ConfidenceAggregator{reliability: reliability}
}

// Aggregate computes the overall confidence for a request.
//
// Each raw confidence is scaled by its brain's reliability multiplier and
// clamped back to [0,1] before fusion. SME confidence is the arithmetic mean
// over non-error consultations, with malformed values defaulting to 0.5
// each; an empty SME round contributes DefaultSMEConfidence. The result is
// clamped to [0,1].
func (a *ConfidenceAggregator) Aggregate(ctx context.Context, intent, technical *brain.Analysis, consultations []brain.Consultation) float64 {
	intentConf := a.scaled(ctx, intent)
	technicalConf := a.scaled(ctx, technical)
	smeConf := a.smeConfidence(ctx, consultations)

	overall := intentConf*WeightIntent + technicalConf*WeightTechnical + smeConf*WeightSME
	return Clamp01(overall)
}

// scaled applies the reliability multiplier to a single analysis confidence.
// A nil analysis degrades to the neutral 0.5.
func (a *ConfidenceAggregator) scaled(ctx context.Context, analysis *brain.Analysis) float64 {
	if analysis == nil {
		return 0.5
	}
	conf := analysis.Confidence
	if math.IsNaN(conf) {
		conf = 0.5
	}
	conf = Clamp01(conf)
	if a.reliability != nil {
		conf = Clamp01(conf * a.reliability.Multiplier(ctx, analysis.Brain))
	}
	return conf
}

// smeConfidence averages consultation confidences. Error consultations are
// excluded; if nothing remains, the neutral default applies.
func (a *ConfidenceAggregator) smeConfidence(ctx context.Context, consultations []brain.Consultation) float64 {
	var sum float64
	var n int
	for _, c := range consultations {
		conf, ok := brain.ConsultationConfidence(c)
		if !ok {
			continue
		}
		if a.reliability != nil {
			conf = Clamp01(conf * a.reliability.Multiplier(ctx, c.SourceBrain()))
		}
		sum += conf
		n++
	}
	if n == 0 {
		return DefaultSMEConfidence
	}
	return sum / float64(n)
}

// Clamp01 clamps v into [0,1]. NaN clamps to 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
