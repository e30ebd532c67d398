package compliance

import "sort"

var priorityRank = map[string]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
}

// Prioritize returns action items for every pillar with status Not Met or
// Partial, ordered CRITICAL first, then HIGH, then MEDIUM. Pillars with equal
// priority keep their input order.
func Prioritize(result Result) []Recommendation {
	var recs []Recommendation
	for _, p := range result.Pillars {
		if p.Status != StatusNotMet && p.Status != StatusPartial {
			continue
		}
		recs = append(recs, Recommendation{
			PillarName:         p.Name,
			Status:             fallback(string(p.Status), defaultUnknown),
			Risk:               fallback(string(p.RiskLevel), defaultUnknown),
			Evidence:           fallback(p.Evidence, defaultEvidence),
			Recommendation:     fallback(p.Recommendation, defaultGapNote),
			Priority:           priorityFor(p.RiskLevel),
			RequiresEscalation: RequiresEscalation(p),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank[recs[i].Priority] < priorityRank[recs[j].Priority]
	})
	return recs
}

func priorityFor(risk RiskLevel) string {
	switch risk {
	case RiskCritical:
		return PriorityCritical
	case RiskHigh:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}
