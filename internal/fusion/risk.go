package fusion

import (
	"github.com/fyrsmithlabs/cortexd/internal/brain"
)

// RiskAssessment is the merged risk verdict for a request.
type RiskAssessment struct {
	// Overall is the max-severity merge of all contributing risk levels.
	Overall brain.RiskLevel `json:"overall"`

	// Factors is the deduplicated union of risk factors across sources,
	// in first-seen order.
	Factors []string `json:"factors,omitempty"`

	// Mitigations collects mitigation strategies from SME recommendations.
	Mitigations []string `json:"mitigations,omitempty"`

	// Error marks degraded processing (mandatory-stage failure, timeout).
	// Callers see degradation here and in near-zero confidence, never as a
	// transport-level error.
	Error string `json:"error,omitempty"`
}

// AggregateRisk merges intent, technical, and SME risk into one assessment.
// Error consultations contribute nothing; a nil analysis contributes the
// neutral medium default.
func AggregateRisk(intent, technical *brain.Analysis, consultations []brain.Consultation) RiskAssessment {
	levels := []brain.RiskLevel{analysisRisk(intent), analysisRisk(technical)}

	seen := make(map[string]struct{})
	var factors []string
	appendFactors := func(fs []string) {
		for _, f := range fs {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			factors = append(factors, f)
		}
	}

	if intent != nil {
		appendFactors(brain.StringsAt(intent.Content, "risk_factors"))
	}
	if technical != nil {
		appendFactors(brain.StringsAt(technical.Content, "risk_factors"))
	}

	var mitigations []string
	for _, c := range consultations {
		if risk, ok := brain.ConsultationRisk(c); ok {
			levels = append(levels, risk)
		}
		if sc, ok := c.(brain.StructuredConsultation); ok {
			appendFactors(brain.StringsAt(sc.Content, "risk_factors"))
			mitigations = append(mitigations, sc.Recommendations...)
		}
	}

	return RiskAssessment{
		Overall:     brain.MaxRisk(levels...),
		Factors:     factors,
		Mitigations: mitigations,
	}
}

// analysisRisk returns the risk of an analysis, medium when absent.
func analysisRisk(a *brain.Analysis) brain.RiskLevel {
	if a == nil {
		return brain.RiskMedium
	}
	if a.Risk.Severity() == 0 {
		return brain.RiskMedium
	}
	return a.Risk
}
