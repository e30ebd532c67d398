package report

import (
	"bytes"
	"testing"
	"time"

	"sow-backend/internal/audits/compliance"
	"sow-backend/internal/pillars"
)

func sampleResult() compliance.Result {
	var list []compliance.PillarResult
	for _, name := range pillars.Names() {
		list = append(list, compliance.PillarResult{
			Name:           name,
			Status:         compliance.StatusMet,
			RiskLevel:      compliance.RiskLow,
			Evidence:       "Section 4.2 covers this requirement in full.",
			Recommendation: "None",
		})
	}
	list[0].Status = compliance.StatusNotMet
	list[0].RiskLevel = compliance.RiskCritical
	list[0].Evidence = "Hourly rates listed in Appendix B."

	result := compliance.Result{
		Pillars:            list,
		ExecutiveSummary:   "The SOW is largely complete but pricing terms expose the client.",
		GoNoGo:             "NoGo",
		CriticalRisks:      []string{"Risk 1: T&M pricing with no cap"},
		ActionableRedlines: []string{"Redline 1: Replace hourly rates with a firm fixed price"},
	}
	result.ComplianceScore = compliance.Score(result)
	result.CriticalFailures = compliance.DetectCriticalFailures(result)
	return result
}

func TestRenderProducesPDF(t *testing.T) {
	result := sampleResult()
	in := Input{
		ProjectName:     "Carve-out Alpha",
		FileName:        "sow.pdf",
		GeneratedAt:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Result:          result,
		Pricing:         compliance.CheckPricingModel(result),
		Schedule:        compliance.CheckSchedule(result, compliance.ProjectTimeline{ProjectName: "Carve-out Alpha"}),
		Recommendations: compliance.Prioritize(result),
	}

	out, err := Render(in)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected non-empty PDF output")
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected PDF magic header, got %q", out[:8])
	}
}

func TestRenderEmptyResult(t *testing.T) {
	out, err := Render(Input{})
	if err != nil {
		t.Fatalf("Render empty input: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("expected PDF output for empty input")
	}
}
