// Package brain defines the contract every reasoning module must honor.
//
// A brain consumes a request plus optional prior-stage output and returns a
// structured Analysis with a self-assessed confidence and risk level. Brains
// never touch shared state; everything adaptive (reliability multipliers,
// knowledge bases) lives behind the stores in sibling packages.
//
// Brain trust is declared at registration via a Capability descriptor rather
// than inferred from naming conventions.
package brain
