package learning

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/cortexd/internal/fusion"
)

// Common errors for learning operations.
var (
	ErrNilFeedback = errors.New("execution feedback cannot be nil")
	ErrNilDecision = errors.New("decision record cannot be nil")
)

// SourceFeedbackAnalyzer is the source name the generator stamps on every
// update it emits. It is registered as a trusted feedback-analyzer source so
// the QA validator can apply its domain adjustment.
const SourceFeedbackAnalyzer = "execution_feedback_analyzer"

// TargetAllBrains addresses an update at every brain rather than one.
const TargetAllBrains = "all_brains"

// UpdateType classifies a learning update candidate.
type UpdateType string

const (
	UpdateExecutionFeedback  UpdateType = "execution_feedback"
	UpdatePatternRecognition UpdateType = "pattern_recognition"
	UpdateExternalKnowledge  UpdateType = "external_knowledge"
	UpdateCrossBrainInsight  UpdateType = "cross_brain_insight"
	UpdateErrorCorrection    UpdateType = "error_correction"
)

// Status is the validation status stamped on an update by the QA gate.
// Mirrors the validator's quality tiers.
type Status string

const (
	StatusPending  Status = "pending"
	StatusHigh     Status = "high"
	StatusMedium   Status = "medium"
	StatusLow      Status = "low"
	StatusRejected Status = "rejected"
)

// Update is a candidate change to knowledge or reliability state. Created by
// the generator, mutated exactly once when the QA validator sets its status,
// then appended to the history.
type Update struct {
	ID               string         `json:"id"`
	Type             UpdateType     `json:"type"`
	SourceBrain      string         `json:"source_brain"`
	TargetBrain      string         `json:"target_brain"`
	Content          map[string]any `json:"content"`
	Confidence       float64        `json:"confidence"`
	ValidationStatus Status         `json:"validation_status"`
	CreatedAt        time.Time      `json:"created_at"`
}

// newUpdate builds an update with a generated ID and pending status.
func newUpdate(typ UpdateType, target string, content map[string]any, confidence float64, at time.Time) *Update {
	return &Update{
		ID:               uuid.New().String(),
		Type:             typ,
		SourceBrain:      SourceFeedbackAnalyzer,
		TargetBrain:      target,
		Content:          content,
		Confidence:       confidence,
		ValidationStatus: StatusPending,
		CreatedAt:        at,
	}
}

// Outcome is the reported result of executing a decision.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomePartialSuccess Outcome = "partial_success"
	OutcomeFailure        Outcome = "failure"
	OutcomeTimeout        Outcome = "timeout"
	OutcomeError          Outcome = "error"
)

// Succeeded reports whether the outcome counts as a full success.
func (o Outcome) Succeeded() bool { return o == OutcomeSuccess }

// ActualSuccess maps the outcome onto [0,1] for confidence calibration.
// Partial success counts half.
func (o Outcome) ActualSuccess() float64 {
	switch o {
	case OutcomeSuccess:
		return 1.0
	case OutcomePartialSuccess:
		return 0.5
	default:
		return 0.0
	}
}

// ExecutionFeedback is the asynchronous report on how a prior decision
// played out. Immutable once recorded.
type ExecutionFeedback struct {
	// RequestID keys the feedback to a previously issued decision.
	RequestID string `json:"request_id"`

	Outcome Outcome `json:"outcome"`

	// ConfidenceAccuracy in [0,1] reports how well the predicted
	// confidence matched reality; it weights reliability nudges.
	ConfidenceAccuracy float64 `json:"confidence_accuracy"`

	// ExecutionTime is how long execution actually took.
	ExecutionTime time.Duration `json:"execution_time"`

	// UserSatisfaction in [0,1], optional.
	UserSatisfaction float64 `json:"user_satisfaction,omitempty"`

	// Error carries the failure text for error-pattern analysis.
	Error string `json:"error,omitempty"`
}

// DecisionRecord is the slice of an aggregated decision the learning loop
// needs for correlation: what was predicted, by whom, and what was planned.
type DecisionRecord struct {
	RequestID         string          `json:"request_id"`
	IntentType        string          `json:"intent_type"`
	Complexity        string          `json:"complexity"`
	Strategy          fusion.Strategy `json:"strategy"`
	Confidence        float64         `json:"confidence"`
	EstimatedDuration time.Duration   `json:"estimated_duration"`
	IntentBrain       string          `json:"intent_brain"`
	TechnicalBrain    string          `json:"technical_brain"`
	SMEBrains         []string        `json:"sme_brains,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// PatternKey groups execution outcomes for pattern recognition.
func (r *DecisionRecord) PatternKey() PatternKey {
	return PatternKey{
		IntentType: r.IntentType,
		Complexity: r.Complexity,
		Strategy:   r.Strategy,
	}
}

// PatternKey identifies one (intent type, complexity, strategy) bucket.
type PatternKey struct {
	IntentType string          `json:"intent_type"`
	Complexity string          `json:"complexity"`
	Strategy   fusion.Strategy `json:"strategy"`
}
