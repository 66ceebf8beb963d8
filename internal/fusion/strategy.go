package fusion

import (
	"github.com/fyrsmithlabs/cortexd/internal/brain"
)

// Strategy tells the downstream execution layer how cautiously to act.
type Strategy string

const (
	// StrategyInformationalResponse answers the request without executing.
	StrategyInformationalResponse Strategy = "informational_response"

	// StrategyAutomatedExecution runs the plan without human involvement.
	StrategyAutomatedExecution Strategy = "automated_execution"

	// StrategyGuidedExecution runs with step-by-step human confirmation.
	StrategyGuidedExecution Strategy = "guided_execution"

	// StrategyAssistedExecution prepares everything but a human drives.
	StrategyAssistedExecution Strategy = "assisted_execution"

	// StrategyManualReview hands the whole request to a human.
	StrategyManualReview Strategy = "manual_review"
)

// Strategy decision-table thresholds.
const (
	automatedConfidence = 0.8
	guidedConfidence    = 0.6
	reviewConfidence    = 0.4
)

// SelectStrategy applies the fixed-priority decision table over
// (confidence, risk, action type). Pure: no persisted state, same inputs
// always yield the same strategy.
//
// Priority order:
//  1. informational intent -> informational_response
//  2. confidence >= 0.8 and low risk -> automated_execution
//  3. confidence >= 0.6 -> guided_execution
//  4. confidence < 0.4 or high risk -> manual_review
//  5. otherwise -> assisted_execution
func SelectStrategy(confidence float64, risk brain.RiskLevel, action brain.ActionType) Strategy {
	switch {
	case action == brain.ActionInformational:
		return StrategyInformationalResponse
	case confidence >= automatedConfidence && risk == brain.RiskLow:
		return StrategyAutomatedExecution
	case confidence >= guidedConfidence:
		return StrategyGuidedExecution
	case confidence < reviewConfidence || risk == brain.RiskHigh:
		return StrategyManualReview
	default:
		return StrategyAssistedExecution
	}
}
