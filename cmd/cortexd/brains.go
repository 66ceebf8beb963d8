package main

import (
	"github.com/fyrsmithlabs/cortexd/internal/brain"
	"github.com/fyrsmithlabs/cortexd/internal/orchestrator"
)

// registerBuiltinBrains registers the heuristic demo brains. Production
// deployments register oracle clients here instead; the pipeline only sees
// the Brain interface.
func registerBuiltinBrains(registry *brain.Registry) error {
	if err := registry.Register(&brain.HeuristicIntentBrain{}, brain.Capability{
		Trusted: true,
	}); err != nil {
		return err
	}

	if err := registry.Register(&brain.HeuristicPlannerBrain{}, brain.Capability{
		Trusted: true,
	}); err != nil {
		return err
	}

	// Security specialist, consulted whenever risk runs high.
	return registry.Register(&brain.StaticBrain{
		BrainName: "sme_security",
		BrainKind: brain.KindSME,
		Analysis: brain.Analysis{
			Confidence: 0.75,
			Risk:       brain.RiskMedium,
			Content: map[string]any{
				"risk_factors": []string{"change touches protected infrastructure"},
			},
			Recommendations: []string{
				"verify change against security policy",
				"capture an audit trail before execution",
			},
		},
	}, brain.Capability{
		Domain:  orchestrator.SecurityComplianceDomain,
		Trusted: true,
	})
}
