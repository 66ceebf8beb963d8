package learning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/cortexd/internal/fusion"
)

func record() *DecisionRecord {
	return &DecisionRecord{
		RequestID:         "req-1",
		IntentType:        "change_request",
		Complexity:        "moderate",
		Strategy:          fusion.StrategyGuidedExecution,
		Confidence:        0.7,
		EstimatedDuration: 60 * time.Second,
		IntentBrain:       "intent_main",
		TechnicalBrain:    "planner",
		CreatedAt:         time.Now(),
	}
}

func feedbackFor(outcome Outcome) *ExecutionFeedback {
	return &ExecutionFeedback{
		RequestID:          "req-1",
		Outcome:            outcome,
		ConfidenceAccuracy: 0.9,
		ExecutionTime:      65 * time.Second,
	}
}

func updatesOfType(updates []*Update, typ UpdateType) []*Update {
	var out []*Update
	for _, u := range updates {
		if u.Type == typ {
			out = append(out, u)
		}
	}
	return out
}

func TestGenerateValidation(t *testing.T) {
	g := NewGenerator(zap.NewNop())

	_, err := g.Generate(nil, record())
	assert.ErrorIs(t, err, ErrNilFeedback)

	_, err = g.Generate(feedbackFor(OutcomeSuccess), nil)
	assert.ErrorIs(t, err, ErrNilDecision)
}

func TestPatternRecognition(t *testing.T) {
	t.Run("no pattern update before five observations", func(t *testing.T) {
		g := NewGenerator(zap.NewNop())
		for i := 0; i < 4; i++ {
			updates, err := g.Generate(feedbackFor(OutcomeSuccess), record())
			require.NoError(t, err)
			assert.Empty(t, updatesOfType(updates, UpdatePatternRecognition))
		}
	})

	t.Run("fifth observation emits the pattern with its success rate", func(t *testing.T) {
		g := NewGenerator(zap.NewNop())
		outcomes := []Outcome{OutcomeSuccess, OutcomeSuccess, OutcomeSuccess, OutcomeSuccess, OutcomeFailure}

		var updates []*Update
		for _, o := range outcomes {
			var err error
			updates, err = g.Generate(feedbackFor(o), record())
			require.NoError(t, err)
		}

		patterns := updatesOfType(updates, UpdatePatternRecognition)
		require.Len(t, patterns, 1)
		p := patterns[0]
		assert.Equal(t, TargetAllBrains, p.TargetBrain)
		assert.Equal(t, SourceFeedbackAnalyzer, p.SourceBrain)
		assert.Equal(t, StatusPending, p.ValidationStatus)
		assert.InDelta(t, 0.8, p.Content["success_rate"].(float64), 1e-9)
		assert.Equal(t, 5, p.Content["observations"])
		assert.Equal(t, TagHighConfidence, p.Content["tag"]) // boundary rate counts
	})

	t.Run("middling success rates stay standard", func(t *testing.T) {
		g := NewGenerator(zap.NewNop())
		outcomes := []Outcome{OutcomeSuccess, OutcomeSuccess, OutcomeSuccess, OutcomeFailure, OutcomeFailure}

		var updates []*Update
		for _, o := range outcomes {
			var err error
			updates, err = g.Generate(feedbackFor(o), record())
			require.NoError(t, err)
		}

		patterns := updatesOfType(updates, UpdatePatternRecognition)
		require.Len(t, patterns, 1)
		assert.InDelta(t, 0.6, patterns[0].Content["success_rate"].(float64), 1e-9)
		assert.Equal(t, TagStandardApproach, patterns[0].Content["tag"])
	})

	t.Run("tags follow the empirical rate", func(t *testing.T) {
		g := NewGenerator(zap.NewNop())
		var updates []*Update
		for i := 0; i < 5; i++ {
			var err error
			updates, err = g.Generate(feedbackFor(OutcomeSuccess), record())
			require.NoError(t, err)
		}
		patterns := updatesOfType(updates, UpdatePatternRecognition)
		require.Len(t, patterns, 1)
		assert.Equal(t, TagHighConfidence, patterns[0].Content["tag"])

		g = NewGenerator(zap.NewNop())
		for i := 0; i < 5; i++ {
			var err error
			updates, err = g.Generate(feedbackFor(OutcomeFailure), record())
			require.NoError(t, err)
		}
		patterns = updatesOfType(updates, UpdatePatternRecognition)
		require.Len(t, patterns, 1)
		assert.Equal(t, TagReviewApproach, patterns[0].Content["tag"])
	})

	t.Run("partial success counts as a failure for patterns", func(t *testing.T) {
		g := NewGenerator(zap.NewNop())
		var updates []*Update
		for i := 0; i < 5; i++ {
			var err error
			updates, err = g.Generate(feedbackFor(OutcomePartialSuccess), record())
			require.NoError(t, err)
		}
		patterns := updatesOfType(updates, UpdatePatternRecognition)
		require.Len(t, patterns, 1)
		assert.InDelta(t, 0.0, patterns[0].Content["success_rate"].(float64), 1e-9)
	})
}

func TestCalibration(t *testing.T) {
	t.Run("over-confident decisions nudge down", func(t *testing.T) {
		g := NewGenerator(zap.NewNop())
		rec := record()
		rec.Confidence = 0.9

		updates, err := g.Generate(feedbackFor(OutcomeFailure), rec)
		require.NoError(t, err)

		corrections := updatesOfType(updates, UpdateErrorCorrection)
		require.Len(t, corrections, 1)
		c := corrections[0]
		assert.Equal(t, TargetAllBrains, c.TargetBrain)
		assert.InDelta(t, -0.1, c.Content["calibration_adjustment"].(float64), 1e-9)
		assert.Equal(t, "over_confident", c.Content["direction"])
	})

	t.Run("under-confident decisions nudge up", func(t *testing.T) {
		g := NewGenerator(zap.NewNop())
		rec := record()
		rec.Confidence = 0.3

		updates, err := g.Generate(feedbackFor(OutcomeSuccess), rec)
		require.NoError(t, err)

		corrections := updatesOfType(updates, UpdateErrorCorrection)
		require.Len(t, corrections, 1)
		assert.InDelta(t, 0.1, corrections[0].Content["calibration_adjustment"].(float64), 1e-9)
		assert.Equal(t, "under_confident", corrections[0].Content["direction"])
	})

	t.Run("gap at the trigger boundary stays quiet", func(t *testing.T) {
		g := NewGenerator(zap.NewNop())
		rec := record()
		rec.Confidence = 0.7 // gap to 1.0 is exactly 0.3

		updates, err := g.Generate(feedbackFor(OutcomeSuccess), rec)
		require.NoError(t, err)
		assert.Empty(t, updatesOfType(updates, UpdateErrorCorrection))
	})

	t.Run("partial success counts half", func(t *testing.T) {
		g := NewGenerator(zap.NewNop())
		rec := record()
		rec.Confidence = 0.9 // gap to 0.5 is 0.4

		updates, err := g.Generate(feedbackFor(OutcomePartialSuccess), rec)
		require.NoError(t, err)
		corrections := updatesOfType(updates, UpdateErrorCorrection)
		require.Len(t, corrections, 1)
		assert.InDelta(t, 0.5, corrections[0].Content["actual_success"].(float64), 1e-9)
	})
}

func TestTiming(t *testing.T) {
	t.Run("large deviation emits an adjustment factor for the planner", func(t *testing.T) {
		g := NewGenerator(zap.NewNop())
		fb := feedbackFor(OutcomeSuccess)
		fb.ExecutionTime = 100 * time.Second // estimate is 60s, deviation 0.66

		updates, err := g.Generate(fb, record())
		require.NoError(t, err)

		timings := updatesOfType(updates, UpdateExecutionFeedback)
		require.Len(t, timings, 1)
		u := timings[0]
		assert.Equal(t, "planner", u.TargetBrain)
		assert.InDelta(t, 100.0/60.0, u.Content["adjustment_factor"].(float64), 1e-9)
	})

	t.Run("deviation within tolerance stays quiet", func(t *testing.T) {
		g := NewGenerator(zap.NewNop())
		fb := feedbackFor(OutcomeSuccess)
		fb.ExecutionTime = 80 * time.Second // deviation 0.33

		updates, err := g.Generate(fb, record())
		require.NoError(t, err)
		assert.Empty(t, updatesOfType(updates, UpdateExecutionFeedback))
	})

	t.Run("missing estimate disables the check", func(t *testing.T) {
		g := NewGenerator(zap.NewNop())
		rec := record()
		rec.EstimatedDuration = 0
		fb := feedbackFor(OutcomeSuccess)
		fb.ExecutionTime = time.Hour

		updates, err := g.Generate(fb, rec)
		require.NoError(t, err)
		assert.Empty(t, updatesOfType(updates, UpdateExecutionFeedback))
	})
}

func TestSMEEffectiveness(t *testing.T) {
	g := NewGenerator(zap.NewNop())
	rec := record()
	rec.SMEBrains = []string{"sme_security", "sme_network"}

	t.Run("success scores 0.8 per consulted SME", func(t *testing.T) {
		updates, err := g.Generate(feedbackFor(OutcomeSuccess), rec)
		require.NoError(t, err)

		var smeUpdates []*Update
		for _, u := range updatesOfType(updates, UpdateExecutionFeedback) {
			if u.TargetBrain == "sme_security" || u.TargetBrain == "sme_network" {
				smeUpdates = append(smeUpdates, u)
			}
		}
		require.Len(t, smeUpdates, 2)
		for _, u := range smeUpdates {
			assert.InDelta(t, 0.8, u.Content["effectiveness_score"].(float64), 1e-9)
		}
	})

	t.Run("failure scores 0.3", func(t *testing.T) {
		fb := feedbackFor(OutcomeFailure)
		fb.ExecutionTime = 0 // keep the timing check out of the way
		updates, err := g.Generate(fb, rec)
		require.NoError(t, err)

		for _, u := range updatesOfType(updates, UpdateExecutionFeedback) {
			assert.InDelta(t, 0.3, u.Content["effectiveness_score"].(float64), 1e-9)
		}
	})
}

func TestErrorPattern(t *testing.T) {
	cases := []struct {
		errText string
		pattern string
	}{
		{"operation timeout after 30s", "timeout"},
		{"Permission denied for role deployer", "permission"},
		{"insufficient resource quota", "resource"},
		{"network unreachable", "network"},
	}

	for _, tc := range cases {
		t.Run(tc.pattern, func(t *testing.T) {
			g := NewGenerator(zap.NewNop())
			fb := feedbackFor(OutcomeFailure)
			fb.ExecutionTime = 0
			fb.Error = tc.errText
			rec := record()
			rec.Confidence = 0.2 // keep calibration quiet

			updates, err := g.Generate(fb, rec)
			require.NoError(t, err)

			corrections := updatesOfType(updates, UpdateErrorCorrection)
			require.Len(t, corrections, 1)
			assert.Equal(t, tc.pattern, corrections[0].Content["error_pattern"])
			assert.Equal(t, "planner", corrections[0].TargetBrain)
			assert.NotEmpty(t, corrections[0].Content["suggestion"])
		})
	}

	t.Run("unknown error text emits nothing", func(t *testing.T) {
		g := NewGenerator(zap.NewNop())
		fb := feedbackFor(OutcomeFailure)
		fb.ExecutionTime = 0
		fb.Error = "segfault in step 3"
		rec := record()
		rec.Confidence = 0.2

		updates, err := g.Generate(fb, rec)
		require.NoError(t, err)
		assert.Empty(t, updatesOfType(updates, UpdateErrorCorrection))
	})

	t.Run("successful runs never emit error patterns", func(t *testing.T) {
		g := NewGenerator(zap.NewNop())
		fb := feedbackFor(OutcomeSuccess)
		fb.Error = "timeout" // stale text on a success is ignored
		rec := record()

		updates, err := g.Generate(fb, rec)
		require.NoError(t, err)
		for _, u := range updatesOfType(updates, UpdateErrorCorrection) {
			assert.NotContains(t, u.Content, "error_pattern")
		}
	})
}
