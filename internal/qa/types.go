package qa

import (
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/cortexd/internal/learning"
)

// Common errors for QA operations.
var (
	// ErrValidationRejected marks an update discarded by the gate.
	// Not fatal to the caller; rejected updates only skip application.
	ErrValidationRejected = errors.New("learning update rejected by validation")

	ErrBadWeights = errors.New("criteria weights must sum to 1.0")
)

// Criterion names the six validation criteria.
type Criterion string

const (
	CriterionConfidence   Criterion = "confidence_threshold"
	CriterionSource       Criterion = "source_reliability"
	CriterionCompleteness Criterion = "content_completeness"
	CriterionConsistency  Criterion = "consistency_check"
	CriterionImpact       Criterion = "impact_assessment"
	CriterionSafety       Criterion = "safety_validation"
)

// DefaultWeights are the production criteria weights. They sum to 1.0.
func DefaultWeights() map[Criterion]float64 {
	return map[Criterion]float64{
		CriterionConfidence:   0.20,
		CriterionSource:       0.25,
		CriterionCompleteness: 0.15,
		CriterionConsistency:  0.20,
		CriterionImpact:       0.10,
		CriterionSafety:       0.10,
	}
}

// ValidateWeights checks that weights cover all six criteria and sum to 1.0
// within floating-point tolerance. Bad weights are fatal at startup.
func ValidateWeights(weights map[Criterion]float64) error {
	all := []Criterion{
		CriterionConfidence, CriterionSource, CriterionCompleteness,
		CriterionConsistency, CriterionImpact, CriterionSafety,
	}
	sum := 0.0
	for _, c := range all {
		w, ok := weights[c]
		if !ok {
			return fmt.Errorf("%w: missing %s", ErrBadWeights, c)
		}
		if w < 0 {
			return fmt.Errorf("%w: negative weight for %s", ErrBadWeights, c)
		}
		sum += w
	}
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("%w: got %.4f", ErrBadWeights, sum)
	}
	return nil
}

// QualityLevel is the four-tier classification assigned by the validator.
type QualityLevel string

const (
	QualityHigh     QualityLevel = "high"
	QualityMedium   QualityLevel = "medium"
	QualityLow      QualityLevel = "low"
	QualityRejected QualityLevel = "rejected"
)

// Quality-tier cut points on the overall weighted score.
const (
	highCutoff   = 0.8
	mediumCutoff = 0.6
	lowCutoff    = 0.4
)

// Status converts a quality level into the update validation status.
func (q QualityLevel) Status() learning.Status {
	switch q {
	case QualityHigh:
		return learning.StatusHigh
	case QualityMedium:
		return learning.StatusMedium
	case QualityLow:
		return learning.StatusLow
	default:
		return learning.StatusRejected
	}
}

// Result is the validator's verdict on one update. Created and owned by the
// validator; consumers read it once, and only a summary entry survives in
// the validation history.
type Result struct {
	UpdateID string       `json:"update_id"`
	IsValid  bool         `json:"is_valid"`
	Quality  QualityLevel `json:"quality_level"`

	// Score is the overall weighted score in [0,1]. Failed criteria
	// contribute zero regardless of their raw score.
	Score float64 `json:"confidence_score"`

	CriteriaMet    []Criterion `json:"criteria_met"`
	CriteriaFailed []Criterion `json:"criteria_failed"`
	Notes          []string    `json:"notes,omitempty"`

	// Diagnostics holds the raw per-criterion scores, including for
	// failed criteria.
	Diagnostics map[Criterion]float64 `json:"diagnostics"`

	Duration time.Duration `json:"duration"`
}
