// Package logging provides the Zap-based structured logger for cortexd.
//
// Loggers carry request ids from context so every line emitted during a
// decision can be correlated with the feedback that later references it.
package logging
