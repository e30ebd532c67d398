package compliance

import (
	"strings"
	"testing"
	"time"
)

func testTimeline() ProjectTimeline {
	return ProjectTimeline{
		ProjectName:    "Carve-out Alpha",
		BuildEndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		TestEndDate:    time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
		CutoverEndDate: time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
	}
}

func resultWithScheduleEvidence(evidence string, status Status) Result {
	return Result{Pillars: []PillarResult{
		{Name: "Schedule", Status: status, RiskLevel: RiskMedium, Evidence: evidence},
	}}
}

func TestCheckScheduleCompliant(t *testing.T) {
	report := CheckSchedule(resultWithScheduleEvidence(
		"Build completes in March, test runs through May, cutover end of June", StatusMet),
		testTimeline())
	if !report.Compliant {
		t.Fatalf("expected compliant schedule, got %+v", report)
	}
	if len(report.Issues) != 1 || report.Issues[0] != "Schedule appears aligned with project timeline" {
		t.Fatalf("unexpected issues: %v", report.Issues)
	}
}

func TestCheckScheduleMissingPhaseAndStatus(t *testing.T) {
	// Evidence covers build and test only, status Partial: exactly one
	// phase issue plus one status issue.
	report := CheckSchedule(resultWithScheduleEvidence(
		"The build phase ends in March and the test phase ends in May", StatusPartial),
		testTimeline())
	if report.Compliant {
		t.Fatalf("expected non-compliant schedule")
	}
	if len(report.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", report.Issues)
	}
	if report.Issues[0] != "Cutover phase not clearly defined in SOW" {
		t.Fatalf("unexpected phase issue: %q", report.Issues[0])
	}
	if report.Issues[1] != "Schedule pillar status: Partial" {
		t.Fatalf("unexpected status issue: %q", report.Issues[1])
	}
}

func TestCheckScheduleAllPhasesMissing(t *testing.T) {
	report := CheckSchedule(resultWithScheduleEvidence("Timeline to be confirmed", StatusNotMet), testTimeline())
	if report.Compliant {
		t.Fatalf("expected non-compliant schedule")
	}
	// Three phase issues plus the status issue.
	if len(report.Issues) != 4 {
		t.Fatalf("expected 4 issues, got %v", report.Issues)
	}
	for _, phase := range []string{"Build", "Test", "Cutover"} {
		found := false
		for _, issue := range report.Issues {
			if strings.HasPrefix(issue, phase+" phase") {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected an issue for %s phase, got %v", phase, report.Issues)
		}
	}
}

func TestCheckScheduleDetails(t *testing.T) {
	report := CheckSchedule(resultWithScheduleEvidence(
		"Build, test and cutover dates are listed in appendix B", StatusMet), testTimeline())
	if report.Details != "Build, test and cutover dates are listed in appendix B" {
		t.Fatalf("expected raw evidence as details, got %q", report.Details)
	}

	empty := CheckSchedule(resultWithScheduleEvidence("", StatusNotMet), testTimeline())
	if empty.Details != "No schedule information found" {
		t.Fatalf("expected placeholder details, got %q", empty.Details)
	}
}

func TestCheckSchedulePillarAbsent(t *testing.T) {
	report := CheckSchedule(Result{Pillars: []PillarResult{
		{Name: "Pricing Model", Status: StatusMet},
	}}, testTimeline())
	if report.Compliant {
		t.Fatalf("expected non-compliant when Schedule pillar absent")
	}
	if len(report.Issues) != 1 || report.Issues[0] != "Schedule pillar not found in analysis" {
		t.Fatalf("unexpected issues: %v", report.Issues)
	}
	if report.Details != "Unable to verify schedule compliance" {
		t.Fatalf("unexpected details: %q", report.Details)
	}
}
