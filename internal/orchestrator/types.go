package orchestrator

import (
	"time"

	"github.com/fyrsmithlabs/cortexd/internal/fusion"
)

// SecurityComplianceDomain is the SME domain always consulted when intent
// or plan risk is high.
const SecurityComplianceDomain = "security_and_compliance"

// maxRecommendations caps the recommended-actions list on a decision.
const maxRecommendations = 10

// Decision is the aggregated output of the pipeline for one request.
// Never mutated after creation.
type Decision struct {
	RequestID string `json:"request_id"`

	// OverallConfidence is the fused confidence in [0,1].
	OverallConfidence float64 `json:"overall_confidence"`

	// Strategy tells the execution layer how cautiously to proceed.
	Strategy fusion.Strategy `json:"execution_strategy"`

	// Risk is the merged risk assessment. Degraded processing is marked
	// in Risk.Error, never surfaced as a transport error.
	Risk fusion.RiskAssessment `json:"risk_assessment"`

	// RecommendedActions is the ordered guidance list, at most 10 items.
	RecommendedActions []string `json:"recommended_actions"`

	// ContributingBrains lists every brain whose output entered fusion.
	ContributingBrains []string `json:"contributing_brains"`

	ProcessingTime time.Duration `json:"processing_time"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Config holds orchestrator settings.
type Config struct {
	// RequestBudget is the per-request wall-clock limit. Zero means the
	// 30 second default.
	RequestBudget time.Duration

	// DecisionHistoryLimit bounds the recent-decision store used for
	// feedback correlation. Zero means the default 1000.
	DecisionHistoryLimit int
}

const (
	defaultRequestBudget        = 30 * time.Second
	defaultDecisionHistoryLimit = 1000
)

func (c *Config) withDefaults() Config {
	out := Config{}
	if c != nil {
		out = *c
	}
	if out.RequestBudget <= 0 {
		out.RequestBudget = defaultRequestBudget
	}
	if out.DecisionHistoryLimit <= 0 {
		out.DecisionHistoryLimit = defaultDecisionHistoryLimit
	}
	return out
}
