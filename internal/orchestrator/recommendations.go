package orchestrator

import (
	"fmt"

	"github.com/fyrsmithlabs/cortexd/internal/brain"
	"github.com/fyrsmithlabs/cortexd/internal/fusion"
)

// strategyGuidance is the leading recommendation per strategy.
var strategyGuidance = map[fusion.Strategy]string{
	fusion.StrategyAutomatedExecution: "proceed with automated execution; confidence is high and risk is low",
	fusion.StrategyGuidedExecution:    "execute step by step with confirmation at each stage",
	fusion.StrategyAssistedExecution:  "prepare the plan and assist a human operator through execution",
	fusion.StrategyManualReview:       "route to a human reviewer before any execution",
}

// assembleRecommendations builds the ordered recommendation list: strategy
// guidance first, then plan step and duration notes, then SME notes, then
// risk mitigations, capped at 10 entries. Informational requests get the
// fixed terminal pair.
func assembleRecommendations(strategy fusion.Strategy, technical *brain.Analysis, consultations []brain.Consultation, risk fusion.RiskAssessment) []string {
	if strategy == fusion.StrategyInformationalResponse {
		return []string{"provide the requested answer", "no further action required"}
	}

	var recs []string
	if guidance, ok := strategyGuidance[strategy]; ok {
		recs = append(recs, guidance)
	}

	recs = append(recs, planNotes(technical)...)

	for _, c := range consultations {
		switch sc := c.(type) {
		case brain.StructuredConsultation:
			for _, r := range sc.Recommendations {
				recs = append(recs, fmt.Sprintf("%s: %s", sc.Brain, r))
			}
		case brain.FreeTextConsultation:
			if sc.Text != "" {
				recs = append(recs, fmt.Sprintf("%s: %s", sc.Brain, sc.Text))
			}
		}
	}

	for _, m := range risk.Mitigations {
		recs = append(recs, "mitigation: "+m)
	}

	recs = dedupe(recs)
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// planNotes surfaces step count and duration estimates from the technical
// plan when present.
func planNotes(technical *brain.Analysis) []string {
	if technical == nil {
		return nil
	}
	var notes []string
	if steps := brain.StringsAt(technical.Content, "steps"); len(steps) > 0 {
		notes = append(notes, fmt.Sprintf("plan has %d steps", len(steps)))
	}
	if d := estimatedDuration(technical.Content); d > 0 {
		notes = append(notes, fmt.Sprintf("estimated duration %s", d))
	}
	return notes
}

func dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := list[:0]
	for _, s := range list {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
