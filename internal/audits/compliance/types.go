// Package compliance implements the pillar compliance rules: validation of an
// audit result against the mandatory pillar catalog, scoring, critical-failure
// detection, recommendation prioritization, and the pricing and schedule
// specialized checks. All functions here are pure and safe to call from any
// goroutine.
package compliance

import "time"

// Status is the per-pillar compliance state.
type Status string

const (
	StatusMet     Status = "Met"
	StatusPartial Status = "Partial"
	StatusNotMet  Status = "Not Met"
)

// RiskLevel is the per-pillar severity.
type RiskLevel string

const (
	RiskCritical RiskLevel = "Critical"
	RiskHigh     RiskLevel = "High"
	RiskMedium   RiskLevel = "Medium"
	RiskLow      RiskLevel = "Low"
)

// PillarResult is one pillar's verdict in canonical form. Alias field names
// from the raw LLM payload are resolved before a PillarResult is built; code
// in this package never sees alternate key spellings.
type PillarResult struct {
	Name           string    `json:"name"`
	Status         Status    `json:"status"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Evidence       string    `json:"evidence"`
	Recommendation string    `json:"recommendation,omitempty"`
}

// Result is the canonical audit analysis. ComplianceScore and CriticalFailures
// are derived fields attached after validation; everything else comes from the
// analysis payload.
type Result struct {
	Pillars            []PillarResult    `json:"pillars"`
	ExecutiveSummary   string            `json:"executive_summary"`
	GoNoGo             string            `json:"go_no_go"`
	CriticalRisks      []string          `json:"critical_risks"`
	ActionableRedlines []string          `json:"actionable_redlines"`
	ComplianceScore    float64           `json:"compliance_score"`
	CriticalFailures   []CriticalFailure `json:"critical_failures"`
}

// CriticalFailure is a flagged pillar requiring escalation review.
type CriticalFailure struct {
	PillarName         string `json:"pillar"`
	Status             string `json:"status"`
	Risk               string `json:"risk"`
	Evidence           string `json:"evidence"`
	Recommendation     string `json:"recommendation"`
	RequiresEscalation bool   `json:"requires_escalation"`
}

// Recommendation is a prioritized action item for a non-compliant pillar.
type Recommendation struct {
	PillarName         string `json:"pillar"`
	Status             string `json:"status"`
	Risk               string `json:"risk"`
	Evidence           string `json:"evidence"`
	Recommendation     string `json:"recommendation"`
	Priority           string `json:"priority"`
	RequiresEscalation bool   `json:"requires_escalation"`
}

// Recommendation priorities, ordered CRITICAL before HIGH before MEDIUM.
const (
	PriorityCritical = "CRITICAL"
	PriorityHigh     = "HIGH"
	PriorityMedium   = "MEDIUM"
)

// PricingReport is the outcome of the pricing model specialized check.
type PricingReport struct {
	Compliant    bool      `json:"compliant"`
	IsFixedCost  bool      `json:"is_fixed_cost"`
	HasTMClauses bool      `json:"has_tm_clauses"`
	Status       Status    `json:"status,omitempty"`
	RiskLevel    RiskLevel `json:"risk_level,omitempty"`
	Issues       []string  `json:"issues"`
}

// ScheduleReport is the outcome of the schedule specialized check.
type ScheduleReport struct {
	Compliant bool      `json:"compliant"`
	Issues    []string  `json:"issues"`
	Details   string    `json:"details"`
	Status    Status    `json:"status,omitempty"`
	RiskLevel RiskLevel `json:"risk_level,omitempty"`
}

// ProjectTimeline carries the agreed phase end dates collected from the
// requester when an audit is started.
type ProjectTimeline struct {
	ProjectName    string    `json:"project_name"`
	BuildEndDate   time.Time `json:"build_end_date"`
	TestEndDate    time.Time `json:"test_end_date"`
	CutoverEndDate time.Time `json:"cutover_end_date"`
}

// Summary holds aggregate pillar counts used by the report and the email body.
type Summary struct {
	Total          int     `json:"total"`
	Met            int     `json:"met"`
	Partial        int     `json:"partial"`
	NotMet         int     `json:"not_met"`
	CriticalRisk   int     `json:"critical_risk"`
	HighRisk       int     `json:"high_risk"`
	MediumRisk     int     `json:"medium_risk"`
	LowRisk        int     `json:"low_risk"`
	ComplianceRate float64 `json:"compliance_rate"`
}
