package compliance

import (
	"errors"
	"strings"
	"testing"
)

func fullResult() Result {
	names := []string{
		"Pricing Model", "Responsibilities", "Schedule", "Licensing",
		"Master Contract Reference", "Sign-off Blocks", "Change Management",
		"Risk & Terms Mitigation", "Data Handling",
	}
	pillars := make([]PillarResult, 0, len(names))
	for _, name := range names {
		pillars = append(pillars, PillarResult{
			Name:      name,
			Status:    StatusMet,
			RiskLevel: RiskLow,
			Evidence:  "evidence for " + name,
		})
	}
	return Result{Pillars: pillars}
}

func TestValidateFullCatalog(t *testing.T) {
	if err := Validate(fullResult()); err != nil {
		t.Fatalf("expected full catalog to validate, got %v", err)
	}
}

func TestValidateMissingPillarsField(t *testing.T) {
	err := Validate(Result{})
	if err == nil {
		t.Fatalf("expected error for nil pillar list")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Kind != KindStructural {
		t.Fatalf("expected kind %q, got %q", KindStructural, verr.Kind)
	}
	if verr.Message != "Invalid analysis structure: missing 'pillars' field" {
		t.Fatalf("unexpected message: %q", verr.Message)
	}
}

func TestValidatePillarMissingName(t *testing.T) {
	result := fullResult()
	result.Pillars[3].Name = ""

	err := Validate(result)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Kind != KindStructural {
		t.Fatalf("expected structural error, got %v", err)
	}
	if verr.Message != "Pillar missing 'name' field" {
		t.Fatalf("unexpected message: %q", verr.Message)
	}
}

func TestValidateUnknownPillar(t *testing.T) {
	result := fullResult()
	result.Pillars[0].Name = "Payment Terms"

	err := Validate(result)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Kind != KindUnknownPillar {
		t.Fatalf("expected unknown pillar error, got %v", err)
	}
	if !strings.Contains(verr.Message, "'Payment Terms'") {
		t.Fatalf("expected offending value in message, got %q", verr.Message)
	}
}

func TestValidateMissingPillarNamed(t *testing.T) {
	// Eight of nine present: the missing pillar must be named.
	result := fullResult()
	result.Pillars = result.Pillars[:8]

	err := Validate(result)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Kind != KindMissingPillars {
		t.Fatalf("expected missing pillars error, got %v", err)
	}
	if !strings.Contains(verr.Message, "Data Handling") {
		t.Fatalf("expected missing pillar name in message, got %q", verr.Message)
	}
	if len(verr.Missing) != 1 || verr.Missing[0] != "Data Handling" {
		t.Fatalf("unexpected missing list: %v", verr.Missing)
	}
}

func TestValidateDuplicatesNotRejected(t *testing.T) {
	// A duplicate of a catalog pillar does not fail validation on its own;
	// completeness is judged by the distinct name set.
	result := fullResult()
	result.Pillars = append(result.Pillars, result.Pillars[2])
	if err := Validate(result); err != nil {
		t.Fatalf("expected duplicates of valid pillars to pass, got %v", err)
	}
}

func TestValidateEmptyListReportsAllMissing(t *testing.T) {
	err := Validate(Result{Pillars: []PillarResult{}})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Kind != KindMissingPillars {
		t.Fatalf("expected missing pillars error, got %v", err)
	}
	if len(verr.Missing) != 9 {
		t.Fatalf("expected all 9 missing, got %d", len(verr.Missing))
	}
}
