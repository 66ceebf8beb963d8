// Package qa gates learning updates before they touch adaptive state.
//
// Every candidate update is scored against six weighted criteria. A failed
// criterion contributes zero to the weighted sum even when its raw partial
// score is nonzero; the raw score is still kept in the diagnostics map. Two
// rules act as deliberate human-in-the-loop gates and must keep their exact
// thresholds: an impact score above 0.8 fails the impact criterion ("too
// important to auto-apply"), and dangerous-action keywords soft-fail safety
// at 0.5 rather than 0.
package qa
