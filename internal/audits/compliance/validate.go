package compliance

import (
	"fmt"
	"strings"

	"sow-backend/internal/pillars"
)

// ValidationError kinds.
const (
	KindStructural     = "structural"
	KindUnknownPillar  = "unknown_pillar"
	KindMissingPillars = "missing_pillars"
)

// ValidationError reports why an analysis failed catalog validation.
type ValidationError struct {
	Kind    string
	Message string
	// Missing lists the absent catalog names for KindMissingPillars.
	Missing []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks that a result names every mandatory pillar and nothing else.
// It returns nil only when the set of seen names equals the catalog set.
// Duplicate entries for the same pillar are not rejected; the missing-set
// check is the sole completeness rule.
func Validate(result Result) error {
	if result.Pillars == nil {
		return &ValidationError{
			Kind:    KindStructural,
			Message: "Invalid analysis structure: missing 'pillars' field",
		}
	}

	seen := make(map[string]bool, pillars.Count())
	for _, p := range result.Pillars {
		if p.Name == "" {
			return &ValidationError{
				Kind:    KindStructural,
				Message: "Pillar missing 'name' field",
			}
		}
		if !pillars.IsMandatory(p.Name) {
			return &ValidationError{
				Kind:    KindUnknownPillar,
				Message: fmt.Sprintf("Invalid pillar: '%s' (not in mandatory 9 pillars)", p.Name),
			}
		}
		seen[p.Name] = true
	}

	var missing []string
	for _, name := range pillars.Names() {
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{
			Kind:    KindMissingPillars,
			Message: "Missing mandatory pillars: " + strings.Join(missing, ", "),
			Missing: missing,
		}
	}
	return nil
}
