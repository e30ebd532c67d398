// Package report renders completed audit results as PDF documents.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"sow-backend/internal/audits/compliance"
)

// Input is everything a rendered report needs. It is deliberately decoupled
// from the audit model so the renderer can be driven from the CLI as well.
type Input struct {
	ProjectName     string
	FileName        string
	GeneratedAt     time.Time
	Result          compliance.Result
	Pricing         compliance.PricingReport
	Schedule        compliance.ScheduleReport
	Recommendations []compliance.Recommendation
}

const (
	pageMargin  = 15.0
	lineHeight  = 6.0
	tableRowPad = 1.5
)

// Render produces the PDF bytes for a completed audit.
func Render(in Input) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	writeHeader(pdf, in)
	writeSummary(pdf, in.Result)
	writePillarTable(pdf, in.Result)
	writeCriticalFailures(pdf, in.Result.CriticalFailures)
	writeRecommendations(pdf, in.Recommendations)
	writeFindings(pdf, in.Pricing, in.Schedule)
	writeRisksAndRedlines(pdf, in.Result)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(pdf *fpdf.Fpdf, in Input) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "SOW Compliance Audit Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	project := in.ProjectName
	if project == "" {
		project = "N/A"
	}
	pdf.CellFormat(0, lineHeight, fmt.Sprintf("Project: %s", project), "", 1, "L", false, 0, "")
	if in.FileName != "" {
		pdf.CellFormat(0, lineHeight, fmt.Sprintf("Document: %s", in.FileName), "", 1, "L", false, 0, "")
	}
	generated := in.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}
	pdf.CellFormat(0, lineHeight, fmt.Sprintf("Generated: %s", generated.Format("2006-01-02 15:04 MST")), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func writeSummary(pdf *fpdf.Fpdf, result compliance.Result) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Executive Summary", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	summaryText := result.ExecutiveSummary
	if summaryText == "" {
		summaryText = "No executive summary provided."
	}
	pdf.MultiCell(0, lineHeight, summaryText, "", "L", false)
	pdf.Ln(2)

	stats := compliance.Summarize(result)
	pdf.SetFont("Helvetica", "B", 11)
	verdict := result.GoNoGo
	if verdict == "" {
		verdict = "N/A"
	}
	pdf.CellFormat(0, lineHeight+1, fmt.Sprintf("Verdict: %s    Compliance Score: %.1f", verdict, result.ComplianceScore), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, lineHeight,
		fmt.Sprintf("Pillars: %d met, %d partial, %d not met of %d (%.1f%% fully compliant)",
			stats.Met, stats.Partial, stats.NotMet, stats.Total, stats.ComplianceRate),
		"", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func writePillarTable(pdf *fpdf.Fpdf, result compliance.Result) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Pillar Assessment", "", 1, "L", false, 0, "")

	widths := []float64{48, 20, 20, 92}
	headers := []string{"Pillar", "Status", "Risk", "Evidence"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, row := range compliance.TableRows(result) {
		rowHeight := evidenceHeight(pdf, widths[3], row.Evidence)
		x, y := pdf.GetXY()
		pdf.CellFormat(widths[0], rowHeight, row.Pillar, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], rowHeight, row.Status, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], rowHeight, row.RiskLevel, "1", 0, "L", false, 0, "")
		pdf.MultiCell(widths[3], 5, row.Evidence, "1", "L", false)
		pdf.SetXY(x, y+rowHeight)
	}
	pdf.Ln(4)
}

// evidenceHeight sizes a table row to fit the wrapped evidence column.
func evidenceHeight(pdf *fpdf.Fpdf, width float64, text string) float64 {
	lines := pdf.SplitText(text, width-2*tableRowPad)
	n := len(lines)
	if n < 1 {
		n = 1
	}
	return 5.0 * float64(n)
}

func writeCriticalFailures(pdf *fpdf.Fpdf, failures []compliance.CriticalFailure) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Critical Failures", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if len(failures) == 0 {
		pdf.CellFormat(0, lineHeight, "No critical failures detected.", "", 1, "L", false, 0, "")
		pdf.Ln(4)
		return
	}

	for _, f := range failures {
		pdf.SetFont("Helvetica", "B", 10)
		label := fmt.Sprintf("%s (%s, risk %s)", f.PillarName, f.Status, f.Risk)
		if f.RequiresEscalation {
			label += " - ESCALATE"
		}
		pdf.MultiCell(0, lineHeight, label, "", "L", false)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, "Evidence: "+f.Evidence, "", "L", false)
		pdf.MultiCell(0, 5, "Recommendation: "+f.Recommendation, "", "L", false)
		pdf.Ln(1)
	}
	pdf.Ln(3)
}

func writeRecommendations(pdf *fpdf.Fpdf, recs []compliance.Recommendation) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Prioritized Recommendations", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if len(recs) == 0 {
		pdf.CellFormat(0, lineHeight, "No open recommendations. All pillars are met.", "", 1, "L", false, 0, "")
		pdf.Ln(4)
		return
	}

	for i, rec := range recs {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(0, lineHeight, fmt.Sprintf("%d. [%s] %s", i+1, rec.Priority, rec.PillarName), "", "L", false)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, rec.Recommendation, "", "L", false)
		pdf.Ln(1)
	}
	pdf.Ln(3)
}

func writeFindings(pdf *fpdf.Fpdf, pricing compliance.PricingReport, schedule compliance.ScheduleReport) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Pricing Model", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, lineHeight, fmt.Sprintf("Compliant: %s    Fixed cost: %s    T&M clauses: %s",
		yesNo(pricing.Compliant), yesNo(pricing.IsFixedCost), yesNo(pricing.HasTMClauses)), "", 1, "L", false, 0, "")
	for _, issue := range pricing.Issues {
		pdf.MultiCell(0, 5, "- "+issue, "", "L", false)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Schedule Alignment", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, lineHeight, fmt.Sprintf("Compliant: %s", yesNo(schedule.Compliant)), "", 1, "L", false, 0, "")
	for _, issue := range schedule.Issues {
		pdf.MultiCell(0, 5, "- "+issue, "", "L", false)
	}
	if schedule.Details != "" {
		pdf.MultiCell(0, 5, "Details: "+schedule.Details, "", "L", false)
	}
	pdf.Ln(3)
}

func writeRisksAndRedlines(pdf *fpdf.Fpdf, result compliance.Result) {
	if len(result.CriticalRisks) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, "Critical Risks", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, risk := range result.CriticalRisks {
			pdf.MultiCell(0, 5, "- "+risk, "", "L", false)
		}
		pdf.Ln(3)
	}

	if len(result.ActionableRedlines) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, "Actionable Redlines", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, redline := range result.ActionableRedlines {
			pdf.MultiCell(0, 5, "- "+redline, "", "L", false)
		}
		pdf.Ln(3)
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
