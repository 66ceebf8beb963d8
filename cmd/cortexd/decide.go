package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/cortexd/internal/brain"
	"github.com/fyrsmithlabs/cortexd/internal/fusion"
	"github.com/fyrsmithlabs/cortexd/internal/orchestrator"
	"github.com/fyrsmithlabs/cortexd/internal/reliability"
	"github.com/fyrsmithlabs/cortexd/internal/telemetry"
)

var decideCmd = &cobra.Command{
	Use:   "decide <request text>",
	Short: "Run one request through the decision pipeline",
	Long: `Run a single request through the full decision pipeline using the
built-in heuristic brains and print the decision as JSON.

Useful for inspecting strategy selection without a running daemon.

Examples:
  cortexd decide "restart the payment service"
  cortexd decide "what does the retry policy do"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecide,
}

func runDecide(cmd *cobra.Command, args []string) error {
	registry := brain.NewRegistry()
	if err := registerBuiltinBrains(registry); err != nil {
		return fmt.Errorf("failed to register brains: %w", err)
	}

	store := reliability.NewInMemoryStore(func(brainName string) float64 {
		if kind, ok := registry.KindOf(brainName); ok && kind == brain.KindSME {
			return reliability.DefaultSMEMultiplier
		}
		return reliability.DefaultMultiplier
	})
	tracker := reliability.NewTracker(store, zap.NewNop())
	confidence := fusion.NewConfidenceAggregator(tracker)

	orch := orchestrator.New(registry, confidence, telemetry.NewMetrics(), zap.NewNop(), nil)

	decision := orch.Decide(cmd.Context(), &brain.Request{
		Text: strings.Join(args, " "),
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(decision)
}
