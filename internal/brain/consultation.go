package brain

import "math"

// Consultation is the tagged union of SME consultation outcomes. SME brains
// return heterogeneous payloads (structured maps, free text, or nothing at
// all on failure); the union is resolved once at the SME boundary so the
// aggregators never type-inspect raw payloads.
type Consultation interface {
	// SourceBrain returns the consulted SME brain's name.
	SourceBrain() string

	isConsultation()
}

// StructuredConsultation is an SME answer with a full structured payload.
type StructuredConsultation struct {
	Brain           string         `json:"brain"`
	Confidence      float64        `json:"confidence"`
	Risk            RiskLevel      `json:"risk_level"`
	Content         map[string]any `json:"content,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
}

func (c StructuredConsultation) SourceBrain() string { return c.Brain }
func (StructuredConsultation) isConsultation()       {}

// FreeTextConsultation is an SME answer that only carries prose.
type FreeTextConsultation struct {
	Brain      string    `json:"brain"`
	Confidence float64   `json:"confidence"`
	Risk       RiskLevel `json:"risk_level"`
	Text       string    `json:"text"`
}

func (c FreeTextConsultation) SourceBrain() string { return c.Brain }
func (FreeTextConsultation) isConsultation()       {}

// ConsultationError marks an SME that failed or was abandoned. Error
// consultations are excluded from confidence averaging entirely.
type ConsultationError struct {
	Brain string `json:"brain"`
	Err   string `json:"error"`
}

func (c ConsultationError) SourceBrain() string { return c.Brain }
func (ConsultationError) isConsultation()       {}

// Resolve converts a raw SME analyze result into the consultation union.
// A nil analysis or an error yields a ConsultationError; an analysis whose
// content is empty but carries prose under "text" becomes free text.
func Resolve(name string, a *Analysis, err error) Consultation {
	if err != nil {
		return ConsultationError{Brain: name, Err: err.Error()}
	}
	if a == nil {
		return ConsultationError{Brain: name, Err: ErrAnalysisUnavailable.Error()}
	}
	if text, ok := a.Content["text"].(string); ok && len(a.Content) == 1 {
		return FreeTextConsultation{
			Brain:      name,
			Confidence: a.Confidence,
			Risk:       a.Risk,
			Text:       text,
		}
	}
	return StructuredConsultation{
		Brain:           name,
		Confidence:      a.Confidence,
		Risk:            a.Risk,
		Content:         a.Content,
		Recommendations: a.Recommendations,
	}
}

// ConsultationConfidence returns the confidence carried by a consultation.
// Malformed values (NaN or outside [0,1]) default to 0.5. The second return
// is false for error consultations, which must be skipped, not defaulted.
func ConsultationConfidence(c Consultation) (float64, bool) {
	var conf float64
	switch v := c.(type) {
	case StructuredConsultation:
		conf = v.Confidence
	case FreeTextConsultation:
		conf = v.Confidence
	case ConsultationError:
		return 0, false
	default:
		return 0, false
	}
	if math.IsNaN(conf) || conf < 0 || conf > 1 {
		return 0.5, true
	}
	return conf, true
}

// ConsultationRisk returns the risk level carried by a consultation, with
// false for error consultations.
func ConsultationRisk(c Consultation) (RiskLevel, bool) {
	switch v := c.(type) {
	case StructuredConsultation:
		return v.Risk, true
	case FreeTextConsultation:
		return v.Risk, true
	}
	return "", false
}
