package qa

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/cortexd/internal/brain"
	"github.com/fyrsmithlabs/cortexd/internal/learning"
)

// SourceDirectory reports the declared capability of an update source.
// The brain registry implements it; capabilities are set at registration,
// never inferred from source names.
type SourceDirectory interface {
	DescribeSource(name string) (brain.Capability, bool)
}

// Config holds validator settings. Weights are validated at construction;
// source lists may be swapped at runtime via SetSourceLists.
type Config struct {
	Weights            map[Criterion]float64
	TrustedSources     []string
	BlacklistedSources []string
	HistoryLimit       int
}

// Validator is the quality-assurance gate for learning updates.
type Validator struct {
	weights map[Criterion]float64
	sources SourceDirectory
	history *History
	logger  *zap.Logger
	now     func() time.Time

	listMu      sync.RWMutex
	trusted     map[string]struct{}
	blacklisted map[string]struct{}
}

// NewValidator creates a validator. Returns an error when the weights do
// not sum to 1.0; that is a startup configuration failure.
func NewValidator(cfg Config, sources SourceDirectory, logger *zap.Logger) (*Validator, error) {
	if cfg.Weights == nil {
		cfg.Weights = DefaultWeights()
	}
	if err := ValidateWeights(cfg.Weights); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	v := &Validator{
		weights: cfg.Weights,
		sources: sources,
		history: NewHistory(cfg.HistoryLimit),
		logger:  logger,
		now:     time.Now,
	}
	v.SetSourceLists(cfg.TrustedSources, cfg.BlacklistedSources)
	return v, nil
}

// SetSourceLists replaces the trusted and blacklisted source lists.
// Safe to call while validations are in flight; used by config reload.
func (v *Validator) SetSourceLists(trusted, blacklisted []string) {
	t := make(map[string]struct{}, len(trusted))
	for _, s := range trusted {
		t[strings.ToLower(s)] = struct{}{}
	}
	b := make(map[string]struct{}, len(blacklisted))
	for _, s := range blacklisted {
		b[strings.ToLower(s)] = struct{}{}
	}
	v.listMu.Lock()
	v.trusted, v.blacklisted = t, b
	v.listMu.Unlock()
}

func (v *Validator) sourceBlacklisted(name string) bool {
	v.listMu.RLock()
	defer v.listMu.RUnlock()
	_, ok := v.blacklisted[strings.ToLower(name)]
	return ok
}

// History exposes the bounded validation history (for diagnostics).
func (v *Validator) History() *History { return v.history }

// Validate scores an update against all criteria, stamps its validation
// status, and records non-rejected updates in the consistency history.
//
// The overall score sums weight*score over passed criteria only; a failed
// criterion contributes zero even when its raw score is nonzero. The raw
// score always lands in Diagnostics.
func (v *Validator) Validate(ctx context.Context, u *learning.Update) *Result {
	start := v.now()

	res := &Result{
		UpdateID:    u.ID,
		Diagnostics: make(map[Criterion]float64, len(v.weights)),
	}

	evals := []struct {
		criterion Criterion
		eval      func(*learning.Update) (float64, bool, string)
	}{
		{CriterionConfidence, v.checkConfidence},
		{CriterionSource, v.checkSource},
		{CriterionCompleteness, v.checkCompleteness},
		{CriterionConsistency, v.checkConsistency},
		{CriterionImpact, v.checkImpact},
		{CriterionSafety, v.checkSafety},
	}

	var overall float64
	for _, e := range evals {
		score, passed, note := e.eval(u)
		res.Diagnostics[e.criterion] = score
		if note != "" {
			res.Notes = append(res.Notes, note)
		}
		if passed {
			res.CriteriaMet = append(res.CriteriaMet, e.criterion)
			overall += score * v.weights[e.criterion]
		} else {
			res.CriteriaFailed = append(res.CriteriaFailed, e.criterion)
		}
	}

	// A blacklisted source is an outright rejection, no matter how well
	// the rest of the update scores.
	if v.sourceBlacklisted(u.SourceBrain) {
		res.Score = 0
		res.Quality = QualityRejected
	} else {
		res.Score = clamp01(overall)
		res.Quality = qualityFor(res.Score)
	}
	res.IsValid = res.Quality != QualityRejected &&
		len(res.CriteriaFailed) < len(res.CriteriaMet)
	res.Duration = v.now().Sub(start)

	u.ValidationStatus = res.Quality.Status()
	v.history.Record(u, res.Quality)

	v.logger.Debug("validated learning update",
		zap.String("update_id", u.ID),
		zap.String("type", string(u.Type)),
		zap.String("quality", string(res.Quality)),
		zap.Float64("score", res.Score),
		zap.Bool("is_valid", res.IsValid),
	)
	return res
}

func qualityFor(score float64) QualityLevel {
	switch {
	case score >= highCutoff:
		return QualityHigh
	case score >= mediumCutoff:
		return QualityMedium
	case score >= lowCutoff:
		return QualityLow
	default:
		return QualityRejected
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
