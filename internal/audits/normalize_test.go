package audits

import (
	"encoding/json"
	"testing"

	"sow-backend/internal/audits/compliance"
)

func TestNormalizeAnalysisResultAliases(t *testing.T) {
	raw := json.RawMessage(`{
		"executiveSummary": "Summary text",
		"goNoGo": "no-go",
		"criticalRisks": "Risk 1: single string",
		"redlines": ["Redline 1"],
		"pillars": [
			{"pillar": "Pricing Model", "status": "NOT_MET", "riskLevel": "critical", "evidence": "Hourly rates", "recommendation": "Fix it"},
			{"name": "Schedule", "status": "partially met", "risk": "HIGH"}
		]
	}`)

	result, err := normalizeAnalysisResult(raw)
	if err != nil {
		t.Fatalf("normalizeAnalysisResult: %v", err)
	}
	if result.ExecutiveSummary != "Summary text" {
		t.Errorf("executive summary alias not resolved: %q", result.ExecutiveSummary)
	}
	if result.GoNoGo != "NoGo" {
		t.Errorf("expected NoGo, got %q", result.GoNoGo)
	}
	if len(result.CriticalRisks) != 1 || result.CriticalRisks[0] != "Risk 1: single string" {
		t.Errorf("string critical_risks not wrapped: %#v", result.CriticalRisks)
	}
	if len(result.ActionableRedlines) != 1 {
		t.Errorf("redlines alias not resolved: %#v", result.ActionableRedlines)
	}
	if len(result.Pillars) != 2 {
		t.Fatalf("expected 2 pillars, got %d", len(result.Pillars))
	}
	first := result.Pillars[0]
	if first.Name != "Pricing Model" || first.Status != compliance.StatusNotMet || first.RiskLevel != compliance.RiskCritical {
		t.Errorf("unexpected first pillar: %+v", first)
	}
	second := result.Pillars[1]
	if second.Status != compliance.StatusPartial || second.RiskLevel != compliance.RiskHigh {
		t.Errorf("unexpected second pillar: %+v", second)
	}
}

func TestNormalizeAnalysisResultMissingPillarsKey(t *testing.T) {
	result, err := normalizeAnalysisResult(json.RawMessage(`{"executive_summary": "x"}`))
	if err != nil {
		t.Fatalf("normalizeAnalysisResult: %v", err)
	}
	if result.Pillars != nil {
		t.Fatalf("expected nil pillars for missing key, got %#v", result.Pillars)
	}
	if err := compliance.Validate(result); err == nil {
		t.Fatal("expected structural validation failure")
	}
}

func TestNormalizeAnalysisResultInvalidJSON(t *testing.T) {
	if _, err := normalizeAnalysisResult(json.RawMessage(`not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if _, err := normalizeAnalysisResult(nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestNormalizeGoNoGo(t *testing.T) {
	cases := map[string]string{
		"go":    "Go",
		"GO":    "Go",
		"NoGo":  "NoGo",
		"no go": "NoGo",
		"maybe": "maybe",
	}
	for in, want := range cases {
		if got := normalizeGoNoGo(in); got != want {
			t.Errorf("normalizeGoNoGo(%q) = %q, want %q", in, got, want)
		}
	}
}
