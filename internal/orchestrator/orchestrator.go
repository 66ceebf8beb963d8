package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/cortexd/internal/brain"
	"github.com/fyrsmithlabs/cortexd/internal/fusion"
	"github.com/fyrsmithlabs/cortexd/internal/learning"
	"github.com/fyrsmithlabs/cortexd/internal/telemetry"
)

// Orchestrator runs the decision pipeline. Safe for concurrent requests;
// all mutable state lives in the injected stores.
type Orchestrator struct {
	registry   *brain.Registry
	confidence *fusion.ConfidenceAggregator
	decisions  *DecisionStore
	metrics    *telemetry.Metrics
	logger     *zap.Logger
	cfg        Config
	now        func() time.Time
}

// New creates an orchestrator. metrics may be nil.
func New(registry *brain.Registry, confidence *fusion.ConfidenceAggregator, metrics *telemetry.Metrics, logger *zap.Logger, cfg *Config) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	resolved := cfg.withDefaults()
	return &Orchestrator{
		registry:   registry,
		confidence: confidence,
		decisions:  NewDecisionStore(resolved.DecisionHistoryLimit),
		metrics:    metrics,
		logger:     logger,
		cfg:        resolved,
		now:        time.Now,
	}
}

// Decisions exposes the recent-decision store for feedback correlation.
func (o *Orchestrator) Decisions() *DecisionStore { return o.decisions }

// Decide runs the full pipeline for one request and always returns a
// well-formed decision. Brain failures degrade; they never surface as
// errors. The request runs under the configured wall-clock budget.
func (o *Orchestrator) Decide(ctx context.Context, req *brain.Request) *Decision {
	start := o.now()
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.RequestBudget)
	defer cancel()

	log := o.logger.With(zap.String("request_id", req.ID))

	// Mandatory stage one: intent.
	intentBrain, ok := o.registry.ByKind(brain.KindIntent)
	if !ok {
		return o.finish(start, req, o.minimalDecision(req, "no intent brain registered"), nil, nil, nil)
	}
	intent, err := intentBrain.Analyze(ctx, req, nil)
	if err != nil {
		log.Warn("intent analysis failed", zap.Error(err))
		o.metrics.ObserveBrainFailure(intentBrain.Name())
		return o.finish(start, req, o.minimalDecision(req, "intent analysis failed"), nil, nil, nil)
	}

	// Mandatory stage two: technical, fed with the intent output.
	technicalBrain, ok := o.registry.ByKind(brain.KindTechnical)
	if !ok {
		return o.finish(start, req, o.minimalDecision(req, "no technical brain registered"), intent, nil, nil)
	}
	technical, err := technicalBrain.Analyze(ctx, req, intent)
	if err != nil {
		log.Warn("technical analysis failed", zap.Error(err))
		o.metrics.ObserveBrainFailure(technicalBrain.Name())
		return o.finish(start, req, o.minimalDecision(req, "technical analysis failed"), intent, nil, nil)
	}

	// Conditional SME fan-out.
	consultations := o.consultSMEs(ctx, req, intent, technical, log)

	// Budget expiry transitions straight to manual review with a timeout
	// marker; already-obtained results still inform confidence.
	timedOut := ctx.Err() != nil

	overall := o.confidence.Aggregate(ctx, intent, technical, consultations)
	risk := fusion.AggregateRisk(intent, technical, consultations)
	action := brain.ActionTypeOf(intent)

	strategy := fusion.SelectStrategy(overall, risk.Overall, action)
	if timedOut {
		strategy = fusion.StrategyManualReview
		risk.Error = "request budget exceeded"
	}

	decision := &Decision{
		RequestID:          req.ID,
		OverallConfidence:  overall,
		Strategy:           strategy,
		Risk:               risk,
		RecommendedActions: assembleRecommendations(strategy, technical, consultations, risk),
		ContributingBrains: contributingBrains(intent, technical, consultations),
	}
	return o.finish(start, req, decision, intent, technical, consultations)
}

// consultSMEs resolves the SME set and fans out the consultations. SME
// brains are mutually independent, so they dispatch concurrently; failures
// and abandonment become error-marked consultations, never aborts.
func (o *Orchestrator) consultSMEs(ctx context.Context, req *brain.Request, intent, technical *brain.Analysis, log *zap.Logger) []brain.Consultation {
	domains := brain.StringsAt(technical.Content, "sme_needs")
	if intent.Risk == brain.RiskHigh || technical.Risk == brain.RiskHigh {
		domains = appendMissing(domains, SecurityComplianceDomain)
	}
	if len(domains) == 0 {
		return nil
	}

	consultations := make([]brain.Consultation, len(domains))
	g, gctx := errgroup.WithContext(ctx)
	for i, domain := range domains {
		sme, ok := o.registry.SMEByDomain(domain)
		if !ok {
			consultations[i] = brain.ConsultationError{
				Brain: domain,
				Err:   fmt.Sprintf("no SME registered for domain %q", domain),
			}
			continue
		}
		g.Go(func() error {
			a, err := sme.Analyze(gctx, req, technical)
			if err != nil {
				log.Warn("sme consultation failed",
					zap.String("brain", sme.Name()), zap.Error(err))
				o.metrics.ObserveBrainFailure(sme.Name())
			}
			consultations[i] = brain.Resolve(sme.Name(), a, err)
			return nil
		})
	}
	_ = g.Wait() // goroutines report through the consultation union
	return consultations
}

// minimalDecision is the mandatory-stage failure shape: confidence zero,
// risk high, manual review. The failure reason travels inside the risk
// assessment, not as an error.
func (o *Orchestrator) minimalDecision(req *brain.Request, reason string) *Decision {
	return &Decision{
		RequestID:          req.ID,
		OverallConfidence:  0,
		Strategy:           fusion.StrategyManualReview,
		Risk:               fusion.RiskAssessment{Overall: brain.RiskHigh, Error: reason},
		RecommendedActions: []string{"escalate to a human reviewer"},
	}
}

// finish stamps timing, records the decision for feedback correlation, and
// emits metrics.
func (o *Orchestrator) finish(start time.Time, req *brain.Request, d *Decision, intent, technical *brain.Analysis, consultations []brain.Consultation) *Decision {
	d.CreatedAt = o.now()
	d.ProcessingTime = d.CreatedAt.Sub(start)

	o.decisions.Put(decisionRecord(req, d, intent, technical, consultations))
	o.metrics.ObserveDecision(string(d.Strategy), d.ProcessingTime)

	o.logger.Info("decision assembled",
		zap.String("request_id", d.RequestID),
		zap.String("strategy", string(d.Strategy)),
		zap.Float64("confidence", d.OverallConfidence),
		zap.String("risk", string(d.Risk.Overall)),
		zap.Duration("processing_time", d.ProcessingTime),
	)
	return d
}

// decisionRecord distills the decision into what the learning loop needs.
func decisionRecord(req *brain.Request, d *Decision, intent, technical *brain.Analysis, consultations []brain.Consultation) *learning.DecisionRecord {
	rec := &learning.DecisionRecord{
		RequestID:  req.ID,
		Strategy:   d.Strategy,
		Confidence: d.OverallConfidence,
		CreatedAt:  d.CreatedAt,
	}
	if intent != nil {
		rec.IntentBrain = intent.Brain
		if v, ok := intent.Content["intent_type"].(string); ok {
			rec.IntentType = v
		}
		if v, ok := intent.Content["complexity"].(string); ok {
			rec.Complexity = v
		}
	}
	if technical != nil {
		rec.TechnicalBrain = technical.Brain
		rec.EstimatedDuration = estimatedDuration(technical.Content)
	}
	for _, c := range consultations {
		if _, failed := c.(brain.ConsultationError); !failed {
			rec.SMEBrains = append(rec.SMEBrains, c.SourceBrain())
		}
	}
	return rec
}

// estimatedDuration reads the technical plan's duration estimate, accepting
// either seconds as a number or a Go duration string.
func estimatedDuration(content map[string]any) time.Duration {
	switch v := content["estimated_duration"].(type) {
	case float64:
		return time.Duration(v * float64(time.Second))
	case int:
		return time.Duration(v) * time.Second
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return 0
}

func contributingBrains(intent, technical *brain.Analysis, consultations []brain.Consultation) []string {
	brains := []string{intent.Brain, technical.Brain}
	for _, c := range consultations {
		if _, failed := c.(brain.ConsultationError); !failed {
			brains = append(brains, c.SourceBrain())
		}
	}
	return brains
}

func appendMissing(list []string, v string) []string {
	for _, e := range list {
		if e == v {
			return list
		}
	}
	return append(list, v)
}
