// Package reliability tracks a learned trust multiplier per brain.
//
// The multiplier scales a brain's raw confidence during fusion. It starts at
// 1.0 (1.1 for SME specialists), moves toward 1.1 on validated successes and
// 0.9 on validated failures, and is hard-bounded to [0.5, 1.5] so no update
// sequence can drive a brain's influence to zero or let it dominate.
//
// State lives behind an injectable Store so deployments can persist it; the
// in-memory default guards every key with a single mutex, which is enough
// because each update touches exactly one brain's scalar.
package reliability
