package learning

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Generator thresholds and constants.
const (
	// patternMinObservations is how many outcomes a pattern key must
	// accumulate before a pattern-recognition update is emitted.
	patternMinObservations = 5

	// Pattern tags by empirical success rate.
	patternHighConfidenceRate = 0.8
	patternReviewRate         = 0.4

	TagHighConfidence   = "high_confidence"
	TagReviewApproach   = "review_approach"
	TagStandardApproach = "standard_approach"

	// calibrationTrigger is the |predicted - actual| gap that flags a
	// miscalibrated confidence; the correction nudges by a fixed step.
	calibrationTrigger = 0.3
	calibrationStep    = 0.1

	// timingTrigger is the relative deviation of actual vs estimated
	// duration that warrants a timing adjustment.
	timingTrigger = 0.5

	// SME effectiveness scores by outcome.
	smeEffectivenessSuccess = 0.8
	smeEffectivenessFailure = 0.3
)

// Candidate-update confidences. The QA gate re-scores these; they only need
// to clear its 0.3 floor and reflect relative evidence strength.
const (
	patternUpdateConfidence     = 0.75
	calibrationUpdateConfidence = 0.8
	timingUpdateConfidence      = 0.6
	smeUpdateConfidence         = 0.7
	errorPatternConfidence      = 0.65
)

// errorPatternSuggestions maps known failure-text substrings to a fixed
// improvement suggestion.
var errorPatternSuggestions = []struct {
	substring  string
	suggestion string
}{
	{"timeout", "increase execution time budget or split long-running steps"},
	{"permission", "verify credentials and required privileges before execution"},
	{"resource", "check resource availability and quotas before execution"},
	{"network", "add connectivity preflight checks and retry with backoff"},
}

// patternStats accumulates outcome counts for one pattern key.
type patternStats struct {
	Successes int
	Failures  int
}

func (p *patternStats) total() int { return p.Successes + p.Failures }

func (p *patternStats) successRate() float64 {
	if p.total() == 0 {
		return 0
	}
	return float64(p.Successes) / float64(p.total())
}

// Generator converts execution feedback into candidate learning updates.
// It owns the pattern counters; everything else it emits is stateless.
type Generator struct {
	mu       sync.Mutex
	patterns map[PatternKey]*patternStats

	logger *zap.Logger
	now    func() time.Time
}

// NewGenerator creates a learning update generator.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		patterns: make(map[PatternKey]*patternStats),
		logger:   logger,
		now:      time.Now,
	}
}

// Generate produces all candidate updates implied by one feedback record.
// Candidates carry StatusPending; nothing here touches adaptive state.
func (g *Generator) Generate(fb *ExecutionFeedback, rec *DecisionRecord) ([]*Update, error) {
	if fb == nil {
		return nil, ErrNilFeedback
	}
	if rec == nil {
		return nil, ErrNilDecision
	}

	var updates []*Update
	if u := g.recordPattern(fb, rec); u != nil {
		updates = append(updates, u)
	}
	if u := g.calibration(fb, rec); u != nil {
		updates = append(updates, u)
	}
	if u := g.timing(fb, rec); u != nil {
		updates = append(updates, u)
	}
	updates = append(updates, g.smeEffectiveness(fb, rec)...)
	if u := g.errorPattern(fb, rec); u != nil {
		updates = append(updates, u)
	}

	g.logger.Debug("generated learning updates",
		zap.String("request_id", fb.RequestID),
		zap.String("outcome", string(fb.Outcome)),
		zap.Int("count", len(updates)),
	)
	return updates, nil
}

// recordPattern counts the outcome under the decision's pattern key and
// emits a pattern-recognition update once enough observations accumulate.
func (g *Generator) recordPattern(fb *ExecutionFeedback, rec *DecisionRecord) *Update {
	key := rec.PatternKey()

	g.mu.Lock()
	stats, ok := g.patterns[key]
	if !ok {
		stats = &patternStats{}
		g.patterns[key] = stats
	}
	if fb.Outcome.Succeeded() {
		stats.Successes++
	} else {
		stats.Failures++
	}
	total := stats.total()
	rate := stats.successRate()
	g.mu.Unlock()

	if total < patternMinObservations {
		return nil
	}

	// Boundary rates count toward the tag: 4 of 5 successes is already
	// a high-confidence pattern.
	tag := TagStandardApproach
	switch {
	case rate >= patternHighConfidenceRate:
		tag = TagHighConfidence
	case rate <= patternReviewRate:
		tag = TagReviewApproach
	}

	return newUpdate(UpdatePatternRecognition, TargetAllBrains, map[string]any{
		"intent_type":  key.IntentType,
		"complexity":   key.Complexity,
		"strategy":     string(key.Strategy),
		"success_rate": rate,
		"observations": total,
		"tag":          tag,
	}, patternUpdateConfidence, g.now())
}

// calibration emits an error-correction update when predicted and actual
// success diverge by more than the trigger gap.
func (g *Generator) calibration(fb *ExecutionFeedback, rec *DecisionRecord) *Update {
	predicted := rec.Confidence
	actual := fb.Outcome.ActualSuccess()
	gap := predicted - actual
	if math.Abs(gap) <= calibrationTrigger {
		return nil
	}

	adjustment := calibrationStep // under-confident: nudge up
	direction := "under_confident"
	if gap > 0 {
		adjustment = -calibrationStep // over-confident: nudge down
		direction = "over_confident"
	}

	return newUpdate(UpdateErrorCorrection, TargetAllBrains, map[string]any{
		"calibration_adjustment": adjustment,
		"direction":              direction,
		"predicted_success":      predicted,
		"actual_success":         actual,
	}, calibrationUpdateConfidence, g.now())
}

// timing emits an adjustment-factor update when actual duration deviates
// from the estimate by more than half the estimate.
func (g *Generator) timing(fb *ExecutionFeedback, rec *DecisionRecord) *Update {
	est := rec.EstimatedDuration
	actual := fb.ExecutionTime
	if est <= 0 || actual <= 0 {
		return nil
	}
	deviation := math.Abs(actual.Seconds()-est.Seconds()) / est.Seconds()
	if deviation <= timingTrigger {
		return nil
	}

	return newUpdate(UpdateExecutionFeedback, rec.TechnicalBrain, map[string]any{
		"adjustment_factor": actual.Seconds() / est.Seconds(),
		"estimated_seconds": est.Seconds(),
		"actual_seconds":    actual.Seconds(),
	}, timingUpdateConfidence, g.now())
}

// smeEffectiveness emits one update per consulted SME scoring how useful
// the consultation turned out to be.
func (g *Generator) smeEffectiveness(fb *ExecutionFeedback, rec *DecisionRecord) []*Update {
	if len(rec.SMEBrains) == 0 {
		return nil
	}
	score := smeEffectivenessFailure
	if fb.Outcome.Succeeded() {
		score = smeEffectivenessSuccess
	}

	updates := make([]*Update, 0, len(rec.SMEBrains))
	for _, sme := range rec.SMEBrains {
		updates = append(updates, newUpdate(UpdateExecutionFeedback, sme, map[string]any{
			"effectiveness_score": score,
			"outcome":             string(fb.Outcome),
			"strategy":            string(rec.Strategy),
		}, smeUpdateConfidence, g.now()))
	}
	return updates
}

// errorPattern maps known substrings in the failure text to a fixed
// improvement suggestion.
func (g *Generator) errorPattern(fb *ExecutionFeedback, rec *DecisionRecord) *Update {
	if fb.Outcome.Succeeded() || fb.Error == "" {
		return nil
	}
	lower := strings.ToLower(fb.Error)
	for _, ep := range errorPatternSuggestions {
		if strings.Contains(lower, ep.substring) {
			return newUpdate(UpdateErrorCorrection, rec.TechnicalBrain, map[string]any{
				"error_pattern": ep.substring,
				"suggestion":    ep.suggestion,
				"strategy":      string(rec.Strategy),
			}, errorPatternConfidence, g.now())
		}
	}
	return nil
}

// PatternObservations reports the current observation count for a key.
// Exposed for diagnostics.
func (g *Generator) PatternObservations(key PatternKey) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if stats, ok := g.patterns[key]; ok {
		return stats.total()
	}
	return 0
}

// String renders a pattern key for logs.
func (k PatternKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.IntentType, k.Complexity, k.Strategy)
}
