package mailer

import (
	"errors"
	"strings"
	"testing"

	"sow-backend/internal/audits/compliance"
)

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(Config{From: "audit@example.com"}); err == nil {
		t.Fatal("expected error for missing host")
	}
	if _, err := New(Config{Host: "smtp.example.com"}); err == nil {
		t.Fatal("expected error for missing from address")
	}
	m, err := New(Config{Host: "smtp.example.com", From: "audit@example.com"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.cfg.Port != 587 {
		t.Fatalf("expected default port 587, got %d", m.cfg.Port)
	}
}

func TestClassifySendError(t *testing.T) {
	authErr := classifySendError(errors.New("535 5.7.8 authentication credentials invalid"))
	if !strings.Contains(authErr.Error(), "smtp authentication failed") {
		t.Fatalf("expected auth classification, got %v", authErr)
	}
	netErr := classifySendError(errors.New("dial tcp: connection refused"))
	if !strings.Contains(netErr.Error(), "smtp send failed") {
		t.Fatalf("expected transport classification, got %v", netErr)
	}
}

func TestReportBody(t *testing.T) {
	result := compliance.Result{
		Pillars: []compliance.PillarResult{
			{Name: "Pricing Model", Status: compliance.StatusNotMet, RiskLevel: compliance.RiskCritical},
			{Name: "Schedule", Status: compliance.StatusMet, RiskLevel: compliance.RiskLow},
		},
		ExecutiveSummary: "Pricing terms expose the client.",
		GoNoGo:           "NoGo",
		ComplianceScore:  50.0,
	}
	result.CriticalFailures = compliance.DetectCriticalFailures(result)
	pricing := compliance.PricingReport{
		Compliant: false,
		Issues:    []string{"CRITICAL: Time & Material clauses detected"},
	}
	schedule := compliance.ScheduleReport{Compliant: true}

	body := ReportBody("Carve-out Alpha", result, pricing, schedule)

	for _, want := range []string{
		"Carve-out Alpha",
		"Verdict: NoGo",
		"Compliance score: 50.0",
		"1 met, 0 partial, 1 not met of 2",
		"Pricing Model (Not Met, risk Critical)",
		"CRITICAL: Time & Material clauses detected",
		"attached as a PDF",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q\nbody:\n%s", want, body)
		}
	}
	if strings.Contains(body, "Schedule issues") {
		t.Error("did not expect schedule issues section for compliant schedule")
	}
}
