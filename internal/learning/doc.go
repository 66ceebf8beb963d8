// Package learning turns execution feedback into candidate updates.
//
// The generator never mutates adaptive state itself. It emits LearningUpdate
// candidates (pattern recognition, confidence calibration, timing, SME
// effectiveness, error-pattern suggestions) which must clear the qa package's
// validation gate before anything downstream applies them. Every candidate,
// approved or rejected, lands in the append-only history, which ages entries
// out by retention policy but never deletes them early.
package learning
