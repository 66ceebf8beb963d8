// Package knowledge holds the cross-brain knowledge store and matcher.
//
// Brains share knowledge items (patterns, procedures, domain facts) tagged
// with applicable contexts. Other brains retrieve them by type and context
// overlap, ranked by success rate and usage. Transfers bump usage counters
// only; an item's success rate is a curation-time snapshot and is never
// recomputed automatically.
package knowledge
