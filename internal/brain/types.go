package brain

import (
	"context"
	"errors"
	"time"
)

// Common errors for brain operations.
var (
	// ErrAnalysisUnavailable indicates a brain failed to produce an analysis.
	// Non-mandatory stages degrade to a neutral default instead of aborting.
	ErrAnalysisUnavailable = errors.New("brain analysis unavailable")

	ErrEmptyRequest   = errors.New("request text cannot be empty")
	ErrUnknownBrain   = errors.New("brain not registered")
	ErrDuplicateBrain = errors.New("brain already registered")
)

// Kind identifies the role a brain plays in the decision pipeline.
type Kind string

const (
	// KindIntent classifies what the user wants. Mandatory first stage.
	KindIntent Kind = "intent"

	// KindTechnical plans how to do it. Mandatory second stage, receives
	// the intent analysis as prior output.
	KindTechnical Kind = "technical"

	// KindSME is a domain specialist consulted conditionally, driven by the
	// technical plan's declared needs or by elevated risk.
	KindSME Kind = "sme"
)

// RiskLevel is the three-tier risk classification used across all brains.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Severity returns the ordering rank of a risk level (low < medium < high).
// Unknown values rank below low so malformed input never escalates risk.
func (r RiskLevel) Severity() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	default:
		return 0
	}
}

// MaxRisk returns the most severe of the given risk levels.
// Returns RiskLow when no recognizable level is present.
func MaxRisk(levels ...RiskLevel) RiskLevel {
	max := RiskLow
	for _, l := range levels {
		if l.Severity() > max.Severity() {
			max = l
		}
	}
	return max
}

// ActionType describes what category of action the intent brain resolved.
type ActionType string

const (
	// ActionInformational means the request only needs an answer, not an
	// execution plan. Terminal in the strategy decision table.
	ActionInformational ActionType = "informational"

	// ActionOperational means the request asks for real-world changes.
	ActionOperational ActionType = "operational"
)

// Request is the unit of work flowing through the decision pipeline.
type Request struct {
	// ID is the request identifier. Feedback arriving later is keyed by it.
	ID string `json:"id"`

	// Text is the raw request to analyze.
	Text string `json:"text"`

	// Context carries caller-supplied context (environment, tenant, asset
	// identifiers). Opaque to the pipeline, passed through to brains.
	Context map[string]any `json:"context,omitempty"`
}

// Analysis is the structured output of a single brain for a single request.
// Immutable once produced; owned by the orchestrator for the request lifetime.
type Analysis struct {
	// Brain is the producing brain's registered name.
	Brain string `json:"brain"`

	// Kind is the producing brain's pipeline role.
	Kind Kind `json:"kind"`

	// Confidence is the brain's self-assessed certainty in [0,1].
	Confidence float64 `json:"confidence"`

	// Risk is the brain's risk verdict for the request.
	Risk RiskLevel `json:"risk_level"`

	// Content is the brain-specific structured payload. Well-known keys:
	// "action_type", "sme_needs", "risk_factors", "steps",
	// "estimated_duration", "intent_type", "complexity".
	Content map[string]any `json:"content,omitempty"`

	// Recommendations are free-form suggestions surfaced to the caller.
	Recommendations []string `json:"recommendations,omitempty"`

	// Timestamp is when the analysis was produced.
	Timestamp time.Time `json:"timestamp"`
}

// NeutralAnalysis returns the degraded default used when a non-mandatory
// brain fails: confidence 0.5, risk medium, empty content.
func NeutralAnalysis(name string, kind Kind) *Analysis {
	return &Analysis{
		Brain:      name,
		Kind:       kind,
		Confidence: 0.5,
		Risk:       RiskMedium,
		Content:    map[string]any{},
		Timestamp:  time.Now(),
	}
}

// ActionTypeOf extracts the declared action type from an intent analysis.
// Missing or unrecognized values default to operational, which keeps the
// strategy table on its cautious branches.
func ActionTypeOf(a *Analysis) ActionType {
	if a == nil {
		return ActionOperational
	}
	if v, ok := a.Content["action_type"].(string); ok {
		if ActionType(v) == ActionInformational {
			return ActionInformational
		}
	}
	return ActionOperational
}

// StringsAt extracts a []string from a content map key, tolerating both
// []string and []any payload shapes.
func StringsAt(content map[string]any, key string) []string {
	if content == nil {
		return nil
	}
	switch v := content[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Brain is the reasoning oracle contract. Implementations are black boxes:
// they may call remote models or services, so Analyze must honor ctx.
type Brain interface {
	// Name returns the registered brain name.
	Name() string

	// Kind returns the brain's pipeline role.
	Kind() Kind

	// Analyze produces an analysis for the request. prior carries the
	// previous mandatory stage's output and may be nil. A failing brain
	// returns an error wrapping ErrAnalysisUnavailable.
	Analyze(ctx context.Context, req *Request, prior *Analysis) (*Analysis, error)
}
