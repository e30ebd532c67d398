package compliance

import "strings"

var (
	fixedCostKeywords = []string{"fixed cost", "fixed price", "lump sum", "firm fixed"}
	tmKeywords        = []string{"time and material", "t&m", "hourly rate", "daily rate"}
)

// CheckPricingModel re-examines the Pricing Model pillar's evidence for
// pricing red flags. Fixed Cost language must be present and Time & Material
// language absent for the pricing model to be compliant. The issues list is
// never empty.
func CheckPricingModel(result Result) PricingReport {
	pricing, ok := findPillar(result, "Pricing Model")
	if !ok {
		return PricingReport{
			Compliant:    false,
			IsFixedCost:  false,
			HasTMClauses: true,
			Issues:       []string{"Pricing Model pillar not found in analysis"},
		}
	}

	evidence := strings.ToLower(pricing.Evidence)
	isFixedCost := containsAny(evidence, fixedCostKeywords)
	hasTM := containsAny(evidence, tmKeywords)

	var issues []string
	if hasTM {
		issues = append(issues, "CRITICAL: Time & Material clauses detected")
	}
	if !isFixedCost {
		issues = append(issues, "Fixed Cost model not clearly stated")
	}
	if len(issues) == 0 {
		issues = []string{"Pricing model appears compliant"}
	}

	return PricingReport{
		Compliant:    isFixedCost && !hasTM,
		IsFixedCost:  isFixedCost,
		HasTMClauses: hasTM,
		Status:       pricing.Status,
		RiskLevel:    pricing.RiskLevel,
		Issues:       issues,
	}
}

func findPillar(result Result, name string) (PillarResult, bool) {
	for _, p := range result.Pillars {
		if p.Name == name {
			return p, true
		}
	}
	return PillarResult{}, false
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
