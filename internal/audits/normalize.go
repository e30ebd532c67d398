package audits

import (
	"encoding/json"
	"errors"
	"strings"

	"sow-backend/internal/audits/compliance"
)

// normalizeAnalysisResult converts the raw LLM payload into the canonical
// compliance.Result exactly once. Alias key spellings (risk_level vs riskLevel
// vs risklevel, pillar vs name, go_no_go vs goNoGo) and string-vs-array list
// shapes are resolved here; downstream rule code never sees them.
func normalizeAnalysisResult(raw json.RawMessage) (compliance.Result, error) {
	if len(raw) == 0 {
		return compliance.Result{}, errors.New("empty analysis result")
	}
	var top map[string]any
	if err := json.Unmarshal(raw, &top); err != nil {
		return compliance.Result{}, err
	}

	out := compliance.Result{
		ExecutiveSummary:   stringField(top, "executive_summary", "executiveSummary", "summary"),
		GoNoGo:             normalizeGoNoGo(stringField(top, "go_no_go", "goNoGo", "go_nogo")),
		CriticalRisks:      stringListField(top, "critical_risks", "criticalRisks"),
		ActionableRedlines: stringListField(top, "actionable_redlines", "actionableRedlines", "redlines"),
	}

	rawPillars, ok := anyField(top, "pillars")
	if !ok {
		// Leave Pillars nil so validation reports the structural failure.
		return out, nil
	}
	entries, ok := rawPillars.([]any)
	if !ok {
		return out, nil
	}

	out.Pillars = make([]compliance.PillarResult, 0, len(entries))
	for _, entry := range entries {
		fields, ok := entry.(map[string]any)
		if !ok {
			out.Pillars = append(out.Pillars, compliance.PillarResult{})
			continue
		}
		out.Pillars = append(out.Pillars, compliance.PillarResult{
			Name:           stringField(fields, "name", "pillar"),
			Status:         normalizeStatus(stringField(fields, "status")),
			RiskLevel:      normalizeRisk(stringField(fields, "risk_level", "riskLevel", "risklevel", "risk")),
			Evidence:       stringField(fields, "evidence"),
			Recommendation: stringField(fields, "recommendation"),
		})
	}
	return out, nil
}

// EvaluateRaw normalizes and validates a raw model payload, then attaches the
// derived score and critical failures. It is the offline entrypoint used by
// the CLI; the service pipeline runs the same steps with a repair round trip.
func EvaluateRaw(raw json.RawMessage) (compliance.Result, error) {
	result, err := normalizeAnalysisResult(raw)
	if err != nil {
		return compliance.Result{}, err
	}
	if err := compliance.Validate(result); err != nil {
		return compliance.Result{}, err
	}
	result.ComplianceScore = compliance.Score(result)
	result.CriticalFailures = compliance.DetectCriticalFailures(result)
	return result, nil
}

func anyField(container map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if value, ok := container[key]; ok {
			return value, true
		}
	}
	return nil, false
}

func stringField(container map[string]any, keys ...string) string {
	value, ok := anyField(container, keys...)
	if !ok {
		return ""
	}
	str, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(str)
}

func stringListField(container map[string]any, keys ...string) []string {
	value, ok := anyField(container, keys...)
	if !ok {
		return []string{}
	}
	switch raw := value.(type) {
	case string:
		if strings.TrimSpace(raw) == "" {
			return []string{}
		}
		return []string{strings.TrimSpace(raw)}
	case []any:
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return []string{}
	}
}

func normalizeStatus(value string) compliance.Status {
	switch strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(value, "_", " "), "-", " ")) {
	case "met", "compliant":
		return compliance.StatusMet
	case "partial", "partially met":
		return compliance.StatusPartial
	case "not met", "notmet", "missing":
		return compliance.StatusNotMet
	default:
		return compliance.Status(value)
	}
}

func normalizeRisk(value string) compliance.RiskLevel {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "critical":
		return compliance.RiskCritical
	case "high":
		return compliance.RiskHigh
	case "medium":
		return compliance.RiskMedium
	case "low":
		return compliance.RiskLow
	default:
		return compliance.RiskLevel(value)
	}
}

func normalizeGoNoGo(value string) string {
	switch strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(value, "-", ""), " ", "")) {
	case "go":
		return "Go"
	case "nogo":
		return "NoGo"
	default:
		return value
	}
}
