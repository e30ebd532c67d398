package pillars

import (
	"reflect"
	"testing"
)

func TestNamesOrderAndCount(t *testing.T) {
	want := []string{
		"Pricing Model",
		"Responsibilities",
		"Schedule",
		"Licensing",
		"Master Contract Reference",
		"Sign-off Blocks",
		"Change Management",
		"Risk & Terms Mitigation",
		"Data Handling",
	}
	got := Names()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected catalog order %v, got %v", want, got)
	}
	if Count() != 9 {
		t.Fatalf("expected 9 pillars, got %d", Count())
	}
}

func TestIsMandatory(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"Pricing Model", true},
		{"Data Handling", true},
		{"pricing model", false},
		{"Pricing", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsMandatory(tc.name); got != tc.want {
			t.Fatalf("IsMandatory(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	first := All()
	first[0].Name = "mutated"
	second := All()
	if second[0].Name != "Pricing Model" {
		t.Fatalf("catalog leaked mutation: %q", second[0].Name)
	}
}

func TestDescribe(t *testing.T) {
	if Describe("Schedule") == "" {
		t.Fatalf("expected non-empty description for Schedule")
	}
	if Describe("nope") != "" {
		t.Fatalf("expected empty description for unknown pillar")
	}
}
