package compliance

// Field defaults substituted when the analysis left a pillar field empty.
// Degraded fields are never fatal after validation.
const (
	defaultUnknown        = "Unknown"
	defaultEvidence       = "No evidence provided"
	defaultEscalationNote = "Immediate escalation required"
	defaultGapNote        = "Review compliance gap"
)

// DetectCriticalFailures flags pillars requiring immediate escalation review:
// status Not Met, or risk level Critical or High. Partial status with Medium
// or Low risk is not flagged. Input order is preserved.
func DetectCriticalFailures(result Result) []CriticalFailure {
	var critical []CriticalFailure
	for _, p := range result.Pillars {
		if p.Status != StatusNotMet && p.RiskLevel != RiskCritical && p.RiskLevel != RiskHigh {
			continue
		}
		critical = append(critical, CriticalFailure{
			PillarName:         p.Name,
			Status:             fallback(string(p.Status), defaultUnknown),
			Risk:               fallback(string(p.RiskLevel), defaultUnknown),
			Evidence:           fallback(p.Evidence, defaultEvidence),
			Recommendation:     fallback(p.Recommendation, defaultEscalationNote),
			RequiresEscalation: RequiresEscalation(p),
		})
	}
	return critical
}

// RequiresEscalation reports whether a pillar failure must open a follow-up
// task. Only the Pricing Model and Schedule pillars ever escalate, and only
// when their status is Not Met or Partial.
func RequiresEscalation(p PillarResult) bool {
	if p.Name != "Pricing Model" && p.Name != "Schedule" {
		return false
	}
	return p.Status == StatusNotMet || p.Status == StatusPartial
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
