// Package feedback closes the learning loop.
//
// Execution feedback arrives asynchronously (HTTP or NATS), keyed by a
// prior request id. The service correlates it with the recorded decision,
// asks the learning generator for candidate updates, runs every candidate
// through the QA gate, and applies only validated, non-rejected updates to
// the reliability tracker and knowledge store. Every candidate, approved or
// not, is appended to the learning history.
package feedback
