// Package telemetry exposes Prometheus metrics for the decision pipeline
// and the learning loop. All helpers are nil-safe so wiring metrics stays
// optional in tests.
package telemetry
