// Package fusion turns multiple brain outputs into a single verdict.
//
// It holds the three pure pieces of the decision pipeline: the confidence
// aggregator (fixed-weight fusion scaled by learned reliability), the risk
// aggregator (max-severity merge), and the execution strategy decision table.
// None of them persist state; the same inputs always produce the same output.
package fusion
