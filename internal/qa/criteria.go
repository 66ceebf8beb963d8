package qa

import (
	"encoding/json"
	"strings"

	"github.com/fyrsmithlabs/cortexd/internal/learning"
)

// Criterion constants.
const (
	confidenceFloor  = 0.3
	confidenceTarget = 0.8

	sourceBaseScore       = 0.7
	trustedSourceBonus    = 0.2
	smeSourceBonus        = 0.1
	feedbackAnalyzerBonus = 0.15
	knowledgeIntegrator   = -0.1

	minSerializedContent = 10

	contradictionFailRate = 0.3

	impactBase           = 0.5
	impactHighTypeBonus  = 0.2
	impactAllBrainsBonus = 0.3
	impactSMETargetBonus = 0.1
	impactKeywordBonus   = 0.1
	impactAutoApplyLimit = 0.8

	safetySoftFailScore = 0.5
)

var highImpactKeywords = []string{"critical", "security", "safety", "error", "failure", "risk"}

var dangerousActionKeywords = []string{"delete", "remove", "destroy", "disable", "bypass"}

// errorCorrectionRedFlags fail error-correction updates outright: a
// "correction" that tells brains to skip or bypass checks is exactly the
// kind of feedback the gate exists to stop.
var errorCorrectionRedFlags = []string{"disable", "bypass", "skip", "ignore"}

// checkConfidence passes updates at or above the confidence floor and
// scores them against the 0.8 target.
func (v *Validator) checkConfidence(u *learning.Update) (float64, bool, string) {
	score := u.Confidence / confidenceTarget
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	if u.Confidence < confidenceFloor {
		return score, false, "confidence below acceptance floor"
	}
	return score, true, ""
}

// checkSource scores the update's source. Blacklisted sources fail with
// score zero regardless of everything else. Otherwise the base score is
// adjusted by the trusted-source bonus and the source's declared capability.
func (v *Validator) checkSource(u *learning.Update) (float64, bool, string) {
	if v.sourceBlacklisted(u.SourceBrain) {
		return 0, false, "source is blacklisted"
	}

	v.listMu.RLock()
	_, isTrusted := v.trusted[strings.ToLower(u.SourceBrain)]
	v.listMu.RUnlock()

	score := sourceBaseScore
	if isTrusted {
		score += trustedSourceBonus
	}
	if v.sources != nil {
		if capability, ok := v.sources.DescribeSource(u.SourceBrain); ok {
			if capability.Domain != "" {
				score += smeSourceBonus
			}
			if capability.FeedbackAnalyzer {
				score += feedbackAnalyzerBonus
			}
			if capability.KnowledgeIntegrator {
				score += knowledgeIntegrator
			}
		}
	}
	return clamp01(score), true, ""
}

// checkCompleteness verifies the update's required fields, that its content
// is a non-empty structured map, and that the serialized content carries a
// minimum amount of information.
func (v *Validator) checkCompleteness(u *learning.Update) (float64, bool, string) {
	checks := []bool{
		u.ID != "",
		u.Type != "",
		u.SourceBrain != "",
		u.TargetBrain != "",
		len(u.Content) > 0,
		len(serializeContent(u.Content)) >= minSerializedContent,
	}

	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	score := float64(passed) / float64(len(checks))
	if passed < len(checks) {
		return score, false, "update content incomplete"
	}
	return score, true, ""
}

// checkConsistency compares the update's scalar content values against the
// same target's last 10 validated updates of the same type. A contradiction
// is the same key holding a different scalar value; the criterion fails when
// more than 30% of comparable keys contradict.
func (v *Validator) checkConsistency(u *learning.Update) (float64, bool, string) {
	prior := v.history.RecentByType(u.TargetBrain, u.Type, consistencyWindowDepth)
	if len(prior) == 0 {
		return 1, true, ""
	}

	comparisons := 0
	contradictions := 0
	for key, val := range u.Content {
		sv, ok := scalarValue(val)
		if !ok {
			continue
		}
		for _, entry := range prior {
			pv, ok := scalarValue(entry.Content[key])
			if !ok {
				continue
			}
			comparisons++
			if pv != sv {
				contradictions++
			}
		}
	}
	if comparisons == 0 {
		return 1, true, ""
	}

	rate := float64(contradictions) / float64(comparisons)
	score := 1 - rate
	if rate > contradictionFailRate {
		return score, false, "contradicts recent validated updates"
	}
	return score, true, ""
}

// checkImpact estimates the blast radius of applying the update. High-impact
// updates are not rejected outright but fail this criterion so they route to
// manual review instead of auto-application.
func (v *Validator) checkImpact(u *learning.Update) (float64, bool, string) {
	score := impactBase

	if u.Type == learning.UpdateErrorCorrection || u.Type == learning.UpdateExternalKnowledge {
		score += impactHighTypeBonus
	}
	if u.TargetBrain == learning.TargetAllBrains {
		score += impactAllBrainsBonus
	}
	if v.sources != nil {
		if capability, ok := v.sources.DescribeSource(u.TargetBrain); ok && capability.Domain != "" {
			score += impactSMETargetBonus
		}
	}

	serialized := strings.ToLower(serializeContent(u.Content))
	for _, kw := range highImpactKeywords {
		if strings.Contains(serialized, kw) {
			score += impactKeywordBonus
		}
	}
	score = clamp01(score)

	if score > impactAutoApplyLimit {
		return score, false, "impact too high to auto-apply, requires manual review"
	}
	return score, true, ""
}

// checkSafety scans content for dangerous-action language. Plain matches
// soft-fail at 0.5 so the update can still pass on other merits; an
// error-correction update carrying bypass language fails hard.
func (v *Validator) checkSafety(u *learning.Update) (float64, bool, string) {
	serialized := strings.ToLower(serializeContent(u.Content))

	if u.Type == learning.UpdateErrorCorrection {
		for _, kw := range errorCorrectionRedFlags {
			if strings.Contains(serialized, kw) {
				return 0, false, "error correction contains bypass language"
			}
		}
	}

	for _, kw := range dangerousActionKeywords {
		if strings.Contains(serialized, kw) {
			return safetySoftFailScore, false, "content contains dangerous-action keyword"
		}
	}
	return 1, true, ""
}

// serializeContent renders content deterministically for length and keyword
// checks. Marshal failure yields an empty string, which reads as incomplete.
func serializeContent(content map[string]any) string {
	if len(content) == 0 {
		return ""
	}
	b, err := json.Marshal(content)
	if err != nil {
		return ""
	}
	return string(b)
}

// scalarValue reports whether a content value is a comparable scalar and
// normalizes numbers to float64 so 1 and 1.0 do not read as contradictory.
func scalarValue(v any) (any, bool) {
	switch n := v.(type) {
	case nil:
		return nil, false
	case string:
		return n, true
	case bool:
		return n, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return nil, false
}
