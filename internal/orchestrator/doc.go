// Package orchestrator sequences brains into one aggregated decision.
//
// The pipeline per request: intent analysis, technical analysis (with the
// intent output as prior), conditional SME fan-out, then confidence fusion,
// risk aggregation, and strategy selection. Intent and technical are
// mandatory; their failure yields a minimal manual-review decision instead
// of an error. SME failures degrade to error-marked consultations. The whole
// request runs under a wall-clock budget; expiry routes to manual review
// with a timeout marker rather than blocking the caller.
package orchestrator
