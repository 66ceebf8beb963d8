package feedback

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/cortexd/internal/knowledge"
	"github.com/fyrsmithlabs/cortexd/internal/learning"
	"github.com/fyrsmithlabs/cortexd/internal/qa"
	"github.com/fyrsmithlabs/cortexd/internal/reliability"
	"github.com/fyrsmithlabs/cortexd/internal/telemetry"
)

// ErrRequestNotFound marks feedback for a request id that was never
// decided or has aged out of the decision store.
var ErrRequestNotFound = errors.New("request not found")

// DecisionLookup resolves a request id to its recorded decision.
// The orchestrator's decision store implements it.
type DecisionLookup interface {
	Record(requestID string) (*learning.DecisionRecord, bool)
}

// Summary reports what one feedback submission produced.
type Summary struct {
	RequestID string `json:"request_id"`
	Generated int    `json:"updates_generated"`
	Applied   int    `json:"updates_applied"`
	Rejected  int    `json:"updates_rejected"`
}

// Service processes execution feedback into validated state changes.
type Service struct {
	decisions DecisionLookup
	generator *learning.Generator
	validator *qa.Validator
	history   *learning.History
	tracker   *reliability.Tracker
	knowledge knowledge.Store
	metrics   *telemetry.Metrics
	logger    *zap.Logger
}

// NewService wires the feedback pipeline. metrics may be nil.
func NewService(
	decisions DecisionLookup,
	generator *learning.Generator,
	validator *qa.Validator,
	history *learning.History,
	tracker *reliability.Tracker,
	store knowledge.Store,
	metrics *telemetry.Metrics,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		decisions: decisions,
		generator: generator,
		validator: validator,
		history:   history,
		tracker:   tracker,
		knowledge: store,
		metrics:   metrics,
		logger:    logger,
	}
}

// Submit records feedback for a prior decision. Returns ErrRequestNotFound
// for unknown request ids; QA rejections are not errors, they just skip
// application.
func (s *Service) Submit(ctx context.Context, fb *learning.ExecutionFeedback) (*Summary, error) {
	if fb == nil {
		return nil, learning.ErrNilFeedback
	}
	rec, ok := s.decisions.Record(fb.RequestID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRequestNotFound, fb.RequestID)
	}

	updates, err := s.generator.Generate(fb, rec)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveFeedback(string(fb.Outcome))

	summary := &Summary{RequestID: fb.RequestID, Generated: len(updates)}
	for _, u := range updates {
		result := s.validator.Validate(ctx, u)
		s.metrics.ObserveValidation(string(result.Quality))
		s.history.Append(u)

		if !result.IsValid {
			summary.Rejected++
			s.logger.Debug("learning update rejected",
				zap.String("update_id", u.ID),
				zap.String("type", string(u.Type)),
				zap.Strings("notes", result.Notes),
			)
			continue
		}
		if err := s.apply(ctx, u, fb); err != nil {
			s.logger.Warn("failed to apply validated update",
				zap.String("update_id", u.ID), zap.Error(err))
			continue
		}
		summary.Applied++
	}

	s.metrics.ObserveApplied(summary.Applied, summary.Rejected)
	s.logger.Info("feedback processed",
		zap.String("request_id", fb.RequestID),
		zap.String("outcome", string(fb.Outcome)),
		zap.Int("generated", summary.Generated),
		zap.Int("applied", summary.Applied),
		zap.Int("rejected", summary.Rejected),
	)
	return summary, nil
}

// apply routes one validated update to the state it mutates. Only validated
// updates reach this point; rejected updates never touch adaptive state.
func (s *Service) apply(ctx context.Context, u *learning.Update, fb *learning.ExecutionFeedback) error {
	switch u.Type {
	case learning.UpdateExecutionFeedback:
		// Outcome updates nudge the targeted brain's reliability.
		if u.TargetBrain == learning.TargetAllBrains {
			return nil
		}
		_, err := s.tracker.RecordOutcome(ctx, u.TargetBrain, fb.Outcome.Succeeded(), fb.ConfidenceAccuracy)
		return err

	case learning.UpdatePatternRecognition:
		// Proven patterns become shareable cross-brain knowledge.
		item, err := patternItem(u)
		if err != nil {
			return err
		}
		return s.knowledge.Share(ctx, item)

	case learning.UpdateErrorCorrection, learning.UpdateExternalKnowledge, learning.UpdateCrossBrainInsight:
		// Stored for matching; brains pull these on their next request.
		item, err := insightItem(u)
		if err != nil {
			return err
		}
		return s.knowledge.Share(ctx, item)
	}
	return nil
}

// patternItem converts a pattern-recognition update into a knowledge item
// whose success rate snapshots the observed rate at creation time.
func patternItem(u *learning.Update) (*knowledge.Item, error) {
	rate, _ := u.Content["success_rate"].(float64)
	contexts := []string{}
	if v, ok := u.Content["intent_type"].(string); ok && v != "" {
		contexts = append(contexts, v)
	}
	if v, ok := u.Content["complexity"].(string); ok && v != "" {
		contexts = append(contexts, v)
	}
	item, err := knowledge.NewItem(u.SourceBrain, "pattern", contexts, rate)
	if err != nil {
		return nil, err
	}
	item.ID = u.ID // dedupe against re-validation of the same update
	return item, nil
}

// insightItem converts correction and insight updates into knowledge items.
func insightItem(u *learning.Update) (*knowledge.Item, error) {
	contexts := []string{u.TargetBrain}
	if v, ok := u.Content["error_pattern"].(string); ok && v != "" {
		contexts = append(contexts, v)
	}
	item, err := knowledge.NewItem(u.SourceBrain, string(u.Type), contexts, u.Confidence)
	if err != nil {
		return nil, err
	}
	item.ID = u.ID
	return item, nil
}
