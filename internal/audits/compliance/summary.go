package compliance

import "math"

// Summarize aggregates pillar counts by status and risk level. The compliance
// rate counts fully Met pillars only, rounded to one decimal place.
func Summarize(result Result) Summary {
	s := Summary{Total: len(result.Pillars)}
	for _, p := range result.Pillars {
		switch p.Status {
		case StatusMet:
			s.Met++
		case StatusPartial:
			s.Partial++
		case StatusNotMet:
			s.NotMet++
		}
		switch p.RiskLevel {
		case RiskCritical:
			s.CriticalRisk++
		case RiskHigh:
			s.HighRisk++
		case RiskMedium:
			s.MediumRisk++
		case RiskLow:
			s.LowRisk++
		}
	}
	if s.Total > 0 {
		s.ComplianceRate = math.Round(float64(s.Met)/float64(s.Total)*100*10) / 10
	}
	return s
}

// TableRow is one line of the pillar table in the rendered report.
type TableRow struct {
	Pillar         string
	Status         string
	RiskLevel      string
	Evidence       string
	Recommendation string
}

const evidenceTableLimit = 150

// TableRows formats the pillar results for the report's compliance table,
// truncating evidence to keep rows readable.
func TableRows(result Result) []TableRow {
	rows := make([]TableRow, 0, len(result.Pillars))
	for _, p := range result.Pillars {
		evidence := p.Evidence
		if evidence == "" {
			evidence = "Not found"
		}
		if len(evidence) > evidenceTableLimit {
			evidence = evidence[:evidenceTableLimit] + "..."
		}
		rec := p.Recommendation
		if rec == "" {
			rec = "N/A"
		}
		rows = append(rows, TableRow{
			Pillar:         p.Name,
			Status:         fallback(string(p.Status), defaultUnknown),
			RiskLevel:      fallback(string(p.RiskLevel), defaultUnknown),
			Evidence:       evidence,
			Recommendation: rec,
		})
	}
	return rows
}
