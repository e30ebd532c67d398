package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sow-backend/internal/audits/compliance"
)

var (
	accent  = lipgloss.Color("#D97706")
	dim     = lipgloss.Color("#6B7280")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(dim)
	goStyle     = lipgloss.NewStyle().Bold(true).Foreground(success)
	noGoStyle   = lipgloss.NewStyle().Bold(true).Foreground(danger)
	warnStyle   = lipgloss.NewStyle().Foreground(warning)
	failStyle   = lipgloss.NewStyle().Foreground(danger)
	passStyle   = lipgloss.NewStyle().Foreground(success)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)
)

// RenderAudit renders a completed audit for the terminal.
func RenderAudit(out auditOutput) string {
	var b strings.Builder

	header := headerStyle.Render("SOW Compliance Audit")
	subject := out.FileName
	if out.ProjectName != "" {
		subject = out.ProjectName + "  (" + out.FileName + ")"
	}
	verdict := renderVerdict(out.Result.GoNoGo)
	score := fmt.Sprintf("Score %.1f / 100", out.Result.ComplianceScore)
	b.WriteString(boxStyle.Render(header + "\n" + dimStyle.Render(subject) + "\n\n" + verdict + "  " + titleStyle.Render(score)))
	b.WriteString("\n\n")

	if out.Result.ExecutiveSummary != "" {
		b.WriteString(out.Result.ExecutiveSummary)
		b.WriteString("\n\n")
	}

	b.WriteString(titleStyle.Render("Pillars"))
	b.WriteString("\n")
	for _, pillar := range out.Result.Pillars {
		b.WriteString(renderPillarLine(pillar))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(out.Result.CriticalFailures) > 0 {
		b.WriteString(failStyle.Render(fmt.Sprintf("Critical failures (%d)", len(out.Result.CriticalFailures))))
		b.WriteString("\n")
		for _, f := range out.Result.CriticalFailures {
			line := fmt.Sprintf("  %s  %s / %s", f.PillarName, f.Status, f.Risk)
			if f.RequiresEscalation {
				line += failStyle.Render("  ESCALATE")
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(out.Recommendations) > 0 {
		b.WriteString(titleStyle.Render("Recommendations"))
		b.WriteString("\n")
		for i, rec := range out.Recommendations {
			b.WriteString(fmt.Sprintf("  %d. %s %s\n", i+1, renderPriority(rec.Priority), rec.PillarName))
			b.WriteString(dimStyle.Render("     " + rec.Recommendation))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(renderCheck("Pricing model", out.Pricing.Compliant, out.Pricing.Issues))
	b.WriteString(renderCheck("Schedule", out.Schedule.Compliant, out.Schedule.Issues))

	return b.String()
}

func renderVerdict(goNoGo string) string {
	switch goNoGo {
	case "Go":
		return goStyle.Render("GO")
	case "NoGo":
		return noGoStyle.Render("NO-GO")
	default:
		return dimStyle.Render("N/A")
	}
}

func renderPillarLine(pillar compliance.PillarResult) string {
	var marker string
	switch pillar.Status {
	case compliance.StatusMet:
		marker = passStyle.Render("✓")
	case compliance.StatusPartial:
		marker = warnStyle.Render("~")
	default:
		marker = failStyle.Render("✗")
	}
	line := fmt.Sprintf("  %s %-28s %-8s %s", marker, pillar.Name, pillar.Status, dimStyle.Render(string(pillar.RiskLevel)))
	return line
}

func renderPriority(priority string) string {
	switch priority {
	case compliance.PriorityCritical:
		return failStyle.Render("[CRITICAL]")
	case compliance.PriorityHigh:
		return warnStyle.Render("[HIGH]")
	default:
		return dimStyle.Render("[" + priority + "]")
	}
}

func renderCheck(label string, compliant bool, issues []string) string {
	var b strings.Builder
	status := passStyle.Render("compliant")
	if !compliant {
		status = failStyle.Render("non-compliant")
	}
	b.WriteString(titleStyle.Render(label) + ": " + status + "\n")
	for _, issue := range issues {
		b.WriteString(dimStyle.Render("  - " + issue))
		b.WriteString("\n")
	}
	return b.String()
}
