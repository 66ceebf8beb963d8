package brain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// StaticBrain returns a fixed analysis for every request. Used by tests and
// by the one-shot CLI; production deployments register real oracle clients.
type StaticBrain struct {
	BrainName string
	BrainKind Kind
	Analysis  Analysis
	Err       error
}

func (b *StaticBrain) Name() string { return b.BrainName }
func (b *StaticBrain) Kind() Kind   { return b.BrainKind }

func (b *StaticBrain) Analyze(ctx context.Context, req *Request, prior *Analysis) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
	}
	if b.Err != nil {
		return nil, b.Err
	}
	a := b.Analysis
	a.Brain = b.BrainName
	a.Kind = b.BrainKind
	a.Timestamp = time.Now()
	return &a, nil
}

// HeuristicPlannerBrain drafts a fixed-shape plan for operational requests.
// Like HeuristicIntentBrain it exists for the demo CLI and tests only.
type HeuristicPlannerBrain struct{}

func (b *HeuristicPlannerBrain) Name() string { return "planner_heuristic" }
func (b *HeuristicPlannerBrain) Kind() Kind   { return KindTechnical }

func (b *HeuristicPlannerBrain) Analyze(ctx context.Context, req *Request, prior *Analysis) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
	}
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, ErrEmptyRequest)
	}

	risk := RiskLow
	if prior != nil {
		risk = prior.Risk
	}

	var smeNeeds []string
	lower := strings.ToLower(req.Text)
	for _, kw := range []string{"security", "firewall", "credential", "compliance"} {
		if strings.Contains(lower, kw) {
			smeNeeds = append(smeNeeds, "security_and_compliance")
			break
		}
	}

	return &Analysis{
		Brain:      b.Name(),
		Kind:       KindTechnical,
		Confidence: 0.65,
		Risk:       risk,
		Content: map[string]any{
			"steps":              []string{"review the request", "apply the change", "verify the result"},
			"estimated_duration": "2m",
			"sme_needs":          smeNeeds,
		},
		Timestamp: time.Now(),
	}, nil
}

// HeuristicIntentBrain is a keyword-driven intent classifier used by the
// demo CLI. It has no model behind it; real deployments replace it.
type HeuristicIntentBrain struct{}

func (b *HeuristicIntentBrain) Name() string { return "intent_heuristic" }
func (b *HeuristicIntentBrain) Kind() Kind   { return KindIntent }

func (b *HeuristicIntentBrain) Analyze(ctx context.Context, req *Request, _ *Analysis) (*Analysis, error) {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, ErrEmptyRequest)
	}

	lower := strings.ToLower(req.Text)
	action := ActionOperational
	intentType := "change_request"
	risk := RiskLow

	switch {
	case strings.HasPrefix(lower, "what"), strings.HasPrefix(lower, "how"),
		strings.HasPrefix(lower, "why"), strings.Contains(lower, "explain"):
		action = ActionInformational
		intentType = "question"
	case strings.Contains(lower, "delete"), strings.Contains(lower, "shutdown"),
		strings.Contains(lower, "production"):
		risk = RiskHigh
	case strings.Contains(lower, "restart"), strings.Contains(lower, "deploy"):
		risk = RiskMedium
	}

	return &Analysis{
		Brain:      b.Name(),
		Kind:       KindIntent,
		Confidence: 0.7,
		Risk:       risk,
		Content: map[string]any{
			"action_type": string(action),
			"intent_type": intentType,
			"complexity":  "moderate",
		},
		Timestamp: time.Now(),
	}, nil
}
