package deepseek

import (
	"fmt"
	"strings"
	"time"

	"sow-backend/internal/llm"
	"sow-backend/internal/pillars"
)

// Message is one chat message in a prompt.
type Message struct {
	Role    string
	Content string
}

// Document text beyond this prefix is dropped from the prompt to keep the
// request inside the model's context budget.
const documentTextLimit = 15000

const responseFormat = `RESPONSE FORMAT (Valid JSON):
{
    "executive_summary": "3-sentence overview of SOW quality and findings",
    "go_no_go": "Go" or "NoGo",
    "pillars": [
        {
            "name": "Pricing Model",
            "status": "Met" | "Partial" | "Not Met",
            "risk_level": "Critical" | "High" | "Medium" | "Low",
            "evidence": "Specific quote or finding from document",
            "recommendation": "Actionable suggestion to protect the client"
        }
    ],
    "critical_risks": [
        "Risk 1: Description"
    ],
    "actionable_redlines": [
        "Redline 1: Change X to Y because..."
    ]
}

The "pillars" array must contain exactly one entry per mandatory pillar, using
the exact pillar names listed above.

CRITICAL: Return ONLY valid JSON. No markdown. No extra text.`

// BuildPrompt constructs the chat messages for a SOW compliance analysis.
func BuildPrompt(input llm.AnalyzeInput) []Message {
	return []Message{
		{Role: "system", Content: systemPrompt()},
		{Role: "user", Content: userPrompt(input)},
	}
}

func systemPrompt() string {
	var b strings.Builder
	b.WriteString("You are a Senior SOW Auditor & IT Contracts Expert for divestment projects.\n\n")
	b.WriteString("Analyze Statements of Work (SOW) and evaluate them against these mandatory pillars:\n\n")
	for i, p := range pillars.All() {
		fmt.Fprintf(&b, "%d. **%s**\n   %s\n\n", i+1, p.Name, p.Description)
	}
	b.WriteString("Be strict: missing or ambiguous language is Partial at best. Quote evidence verbatim from the document.")
	return b.String()
}

func userPrompt(input llm.AnalyzeInput) string {
	text := input.DocumentText
	if len(text) > documentTextLimit {
		text = text[:documentTextLimit]
	}

	tablesInfo := "No tables extracted"
	if input.TableCount > 0 {
		tablesInfo = fmt.Sprintf("EXTRACTED TABLES: %d tables found", input.TableCount)
	}

	var b strings.Builder
	b.WriteString("Analyze this SOW document for a divestment project:\n\n")
	b.WriteString("PROJECT TIMELINE (Hard Deadlines):\n")
	fmt.Fprintf(&b, "- Project: %s\n", fallbackNA(input.Timeline.ProjectName))
	fmt.Fprintf(&b, "- Build Phase End: %s\n", formatDate(input.Timeline.BuildEndDate))
	fmt.Fprintf(&b, "- Test Phase End: %s\n", formatDate(input.Timeline.TestEndDate))
	fmt.Fprintf(&b, "- Cutover Phase End: %s\n\n", formatDate(input.Timeline.CutoverEndDate))
	fmt.Fprintf(&b, "SOW DOCUMENT TEXT (first %d chars):\n%s\n\n", documentTextLimit, text)
	b.WriteString(tablesInfo)
	b.WriteString("\n\n")
	b.WriteString(responseFormat)
	return b.String()
}

func buildFixPrompt(raw []byte) []Message {
	return []Message{
		{Role: "system", Content: "Fix the following so it is a single valid JSON object with the same content. Output JSON only, no markdown."},
		{Role: "user", Content: string(raw)},
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("2006-01-02")
}

func fallbackNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "N/A"
	}
	return value
}
