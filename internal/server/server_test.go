package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/cortexd/internal/brain"
	"github.com/fyrsmithlabs/cortexd/internal/feedback"
	"github.com/fyrsmithlabs/cortexd/internal/fusion"
	"github.com/fyrsmithlabs/cortexd/internal/knowledge"
	"github.com/fyrsmithlabs/cortexd/internal/learning"
	"github.com/fyrsmithlabs/cortexd/internal/orchestrator"
	"github.com/fyrsmithlabs/cortexd/internal/qa"
	"github.com/fyrsmithlabs/cortexd/internal/reliability"
	"github.com/fyrsmithlabs/cortexd/internal/telemetry"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	registry := brain.NewRegistry()
	require.NoError(t, registry.Register(&brain.StaticBrain{
		BrainName: "intent_main",
		BrainKind: brain.KindIntent,
		Analysis: brain.Analysis{
			Confidence: 0.9,
			Risk:       brain.RiskLow,
			Content: map[string]any{
				"action_type": "operational",
				"intent_type": "change_request",
				"complexity":  "moderate",
			},
		},
	}, brain.Capability{Trusted: true}))
	require.NoError(t, registry.Register(&brain.StaticBrain{
		BrainName: "planner_main",
		BrainKind: brain.KindTechnical,
		Analysis: brain.Analysis{
			Confidence: 0.85,
			Risk:       brain.RiskLow,
			Content:    map[string]any{"estimated_duration": "60s"},
		},
	}, brain.Capability{Trusted: true}))

	tracker := reliability.NewTracker(reliability.NewInMemoryStore(nil), zap.NewNop())
	metrics := telemetry.NewMetrics()
	orch := orchestrator.New(registry, fusion.NewConfidenceAggregator(tracker), metrics, zap.NewNop(), nil)

	validator, err := qa.NewValidator(qa.Config{
		TrustedSources: []string{learning.SourceFeedbackAnalyzer},
	}, registry, zap.NewNop())
	require.NoError(t, err)

	store := knowledge.NewInMemoryStore()
	fbService := feedback.NewService(
		orch.Decisions(),
		learning.NewGenerator(zap.NewNop()),
		validator,
		learning.NewHistory(0),
		tracker,
		store,
		metrics,
		zap.NewNop(),
	)

	srv, err := NewServer(orch, fbService, tracker, store, metrics, zap.NewNop(), nil)
	require.NoError(t, err)
	return srv
}

func postJSON(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestNewServer(t *testing.T) {
	t.Run("uses defaults when config is nil", func(t *testing.T) {
		srv := setupTestServer(t)
		assert.Equal(t, "localhost", srv.config.Host)
		assert.Equal(t, 9270, srv.config.Port)
	})

	t.Run("requires a logger", func(t *testing.T) {
		_, err := NewServer(&orchestrator.Orchestrator{}, &feedback.Service{}, nil, nil, nil, nil, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})

	t.Run("requires an orchestrator", func(t *testing.T) {
		_, err := NewServer(nil, &feedback.Service{}, nil, nil, nil, zap.NewNop(), nil)
		assert.Error(t, err)
	})
}

func TestHandleHealth(t *testing.T) {
	srv := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleMetrics(t *testing.T) {
	srv := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleDecide(t *testing.T) {
	srv := setupTestServer(t)

	t.Run("returns a decision", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/v1/decide", map[string]any{
			"id":   "req-1",
			"text": "restart the payment service",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var decision orchestrator.Decision
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
		assert.Equal(t, "req-1", decision.RequestID)
		assert.InDelta(t, 0.9*0.4+0.85*0.4+0.5*0.2, decision.OverallConfidence, 1e-9)
		assert.Equal(t, fusion.StrategyGuidedExecution, decision.Strategy)
	})

	t.Run("empty text is a client error", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/v1/decide", map[string]any{"id": "req-2"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleFeedback(t *testing.T) {
	srv := setupTestServer(t)

	t.Run("unknown request id is not found", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/v1/feedback", map[string]any{
			"request_id": "never-decided",
			"outcome":    "success",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing request id is a client error", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/v1/feedback", map[string]any{"outcome": "success"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("feedback for a decided request returns a summary", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/v1/decide", map[string]any{
			"id":   "req-fb",
			"text": "restart the payment service",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = postJSON(t, srv, "/api/v1/feedback", map[string]any{
			"request_id":          "req-fb",
			"outcome":             "failure",
			"confidence_accuracy": 0.5,
			"error":               "network unreachable",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var summary feedback.Summary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.Equal(t, "req-fb", summary.RequestID)
		assert.Greater(t, summary.Generated, 0)
	})
}

func TestHandleReliability(t *testing.T) {
	srv := setupTestServer(t)

	// touch a multiplier so the snapshot is non-empty
	_, err := srv.tracker.RecordOutcome(context.Background(), "planner_main", true, 1.0)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reliability", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ReliabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 1.1, resp.Multipliers["planner_main"], 1e-9)
}

func TestHandleKnowledgeMatch(t *testing.T) {
	srv := setupTestServer(t)

	item, err := knowledge.NewItem("planner_main", "pattern", []string{"deployment"}, 0.8)
	require.NoError(t, err)
	require.NoError(t, srv.knowledge.Share(context.Background(), item))

	t.Run("returns ranked matches", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/v1/knowledge/match", knowledge.Request{
			Type:     "pattern",
			Contexts: []string{"deployment"},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var items []*knowledge.Item
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
		require.Len(t, items, 1)
		assert.Equal(t, item.ID, items[0].ID)
	})

	t.Run("missing type is a client error", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/v1/knowledge/match", knowledge.Request{Contexts: []string{"x"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no matches yields an empty list", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/v1/knowledge/match", knowledge.Request{Type: "runbook", Contexts: []string{"x"}})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]\n", rec.Body.String())
	})
}

// Decisions flow end to end: decide, then feed back, then observe the
// reliability nudge.
func TestDecideFeedbackLoop(t *testing.T) {
	srv := setupTestServer(t)

	rec := postJSON(t, srv, "/api/v1/decide", map[string]any{
		"id":   "loop-1",
		"text": "rotate the api keys",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, srv, "/api/v1/feedback", map[string]any{
		"request_id":          "loop-1",
		"outcome":             "success",
		"confidence_accuracy": 1.0,
		"execution_time":      int64(200 * time.Second), // far over the 60s estimate
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var summary feedback.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	// timing update targets the planner
	require.GreaterOrEqual(t, summary.Applied, 1)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reliability", nil)
	out := httptest.NewRecorder()
	srv.echo.ServeHTTP(out, req)
	require.Equal(t, http.StatusOK, out.Code)

	var resp ReliabilityResponse
	require.NoError(t, json.Unmarshal(out.Body.Bytes(), &resp))
	assert.Contains(t, resp.Multipliers, "planner_main")
}
