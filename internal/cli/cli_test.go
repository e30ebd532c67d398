package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sow-backend/internal/audits/compliance"
	"sow-backend/internal/pillars"
)

func TestBuildTimeline(t *testing.T) {
	timeline, err := buildTimeline("Carve-out Alpha", "2026-03-31", "2026-05-31", "2026-06-30")
	if err != nil {
		t.Fatalf("buildTimeline: %v", err)
	}
	if timeline.ProjectName != "Carve-out Alpha" {
		t.Errorf("project name: %q", timeline.ProjectName)
	}
	if timeline.BuildEndDate.Format("2006-01-02") != "2026-03-31" {
		t.Errorf("build end: %v", timeline.BuildEndDate)
	}

	if _, err := buildTimeline("", "31/03/2026", "", ""); err == nil {
		t.Fatal("expected error for bad date format")
	}

	timeline, err = buildTimeline("", "", "", "")
	if err != nil {
		t.Fatalf("empty dates should be allowed: %v", err)
	}
	if !timeline.BuildEndDate.IsZero() {
		t.Errorf("expected zero build end, got %v", timeline.BuildEndDate)
	}
}

func TestMimeForFile(t *testing.T) {
	cases := map[string]string{
		"sow.pdf":     "application/pdf",
		"SOW.PDF":     "application/pdf",
		"sow.docx":    "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"notes.txt":   "",
		"no-ext-file": "",
	}
	for in, want := range cases {
		if got := mimeForFile(in); got != want {
			t.Errorf("mimeForFile(%q) = %q, want %q", in, got, want)
		}
	}
}

func sampleAuditOutput() auditOutput {
	names := pillars.Names()
	result := compliance.Result{
		ExecutiveSummary: "Mostly compliant with one pricing gap.",
		GoNoGo:           "NoGo",
	}
	for i, name := range names {
		pillar := compliance.PillarResult{Name: name, Status: compliance.StatusMet, RiskLevel: compliance.RiskLow}
		if i == 0 {
			pillar.Status = compliance.StatusNotMet
			pillar.RiskLevel = compliance.RiskCritical
			pillar.Evidence = "Hourly rates found in section 4."
			pillar.Recommendation = "Convert to fixed price."
		}
		result.Pillars = append(result.Pillars, pillar)
	}
	result.ComplianceScore = compliance.Score(result)
	result.CriticalFailures = compliance.DetectCriticalFailures(result)

	return auditOutput{
		ProjectName:     "Carve-out Alpha",
		FileName:        "sow.pdf",
		Result:          result,
		Pricing:         compliance.CheckPricingModel(result),
		Schedule:        compliance.CheckSchedule(result, compliance.ProjectTimeline{}),
		Recommendations: compliance.Prioritize(result),
	}
}

func TestRenderAudit(t *testing.T) {
	rendered := RenderAudit(sampleAuditOutput())

	for _, want := range []string{
		"SOW Compliance Audit",
		"Carve-out Alpha",
		"NO-GO",
		"Pricing Model",
		"Critical failures (1)",
		"Recommendations",
		"Convert to fixed price.",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

func TestPillarsCommand(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"pillars"})

	if err := root.Execute(); err != nil {
		t.Fatalf("pillars command: %v", err)
	}
	for _, name := range pillars.Names() {
		if !strings.Contains(out.String(), name) {
			t.Errorf("expected pillar %q in output", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("version command: %v", err)
	}
	if !strings.HasPrefix(out.String(), "sowctl ") {
		t.Errorf("unexpected version output: %q", out.String())
	}
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	payloadPath := filepath.Join(dir, "audit.json")
	outPath := filepath.Join(dir, "report.pdf")

	data, err := json.Marshal(sampleAuditOutput())
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(payloadPath, data, 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"report", payloadPath, "--out", outPath})

	if err := root.Execute(); err != nil {
		t.Fatalf("report command: %v", err)
	}

	pdf, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read rendered report: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("expected PDF magic header")
	}
}
