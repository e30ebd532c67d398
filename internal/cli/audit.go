package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sow-backend/internal/audits"
	"sow-backend/internal/audits/compliance"
	"sow-backend/internal/extract"
	"sow-backend/internal/llm"
	"sow-backend/internal/llm/deepseek"
	"sow-backend/internal/report"
)

// auditOutput is the JSON payload emitted by --json and consumed by the
// report subcommand.
type auditOutput struct {
	ProjectName     string                      `json:"project_name"`
	FileName        string                      `json:"file_name"`
	Result          compliance.Result           `json:"result"`
	Pricing         compliance.PricingReport    `json:"pricing"`
	Schedule        compliance.ScheduleReport   `json:"schedule"`
	Recommendations []compliance.Recommendation `json:"recommendations"`
}

func newAuditCmd() *cobra.Command {
	var (
		projectName string
		buildEnd    string
		testEnd     string
		cutoverEnd  string
		jsonOutput  bool
		pdfOut      string
	)

	cmd := &cobra.Command{
		Use:   "audit <file>",
		Short: "Run a SOW compliance audit against a local PDF or DOCX",
		Long:  "Extract a local document, send it through the analysis model, and print the compliance verdict. Requires DEEPSEEK_API_KEY.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			timeline, err := buildTimeline(projectName, buildEnd, testEnd, cutoverEnd)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read document: %w", err)
			}

			extracted, err := extract.ExtractFromBytes(ctx, data, mimeForFile(path), filepath.Base(path))
			if err != nil {
				return fmt.Errorf("extract document: %w", err)
			}

			model := os.Getenv("DEEPSEEK_MODEL")
			if model == "" {
				model = "deepseek-chat"
			}
			client, err := deepseek.NewClient(os.Getenv("DEEPSEEK_API_KEY"), model, os.Getenv("DEEPSEEK_API_URL"))
			if err != nil {
				return err
			}

			raw, err := client.AnalyzeSOW(ctx, llm.AnalyzeInput{
				DocumentText: extracted.Rendered(),
				Timeline:     timeline,
				TableCount:   extracted.Metadata.TablesFound,
			})
			if err != nil {
				return fmt.Errorf("analyze document: %w", err)
			}

			result, err := audits.EvaluateRaw(raw)
			if err != nil {
				return fmt.Errorf("analysis output invalid: %w", err)
			}

			out := auditOutput{
				ProjectName:     timeline.ProjectName,
				FileName:        filepath.Base(path),
				Result:          result,
				Pricing:         compliance.CheckPricingModel(result),
				Schedule:        compliance.CheckSchedule(result, timeline),
				Recommendations: compliance.Prioritize(result),
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			fmt.Fprint(cmd.OutOrStdout(), RenderAudit(out))

			if pdfOut != "" {
				if err := writeReport(out, pdfOut); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", pdfOut)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectName, "project", "", "project name for the report header")
	cmd.Flags().StringVar(&buildEnd, "build-end", "", "agreed build phase end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&testEnd, "test-end", "", "agreed test phase end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&cutoverEnd, "cutover-end", "", "agreed cutover end date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the full audit payload as JSON")
	cmd.Flags().StringVar(&pdfOut, "pdf", "", "also write the PDF report to this path")
	return cmd
}

func buildTimeline(projectName, buildEnd, testEnd, cutoverEnd string) (compliance.ProjectTimeline, error) {
	timeline := compliance.ProjectTimeline{ProjectName: strings.TrimSpace(projectName)}
	var err error
	if timeline.BuildEndDate, err = parseFlagDate(buildEnd); err != nil {
		return timeline, fmt.Errorf("--build-end: %w", err)
	}
	if timeline.TestEndDate, err = parseFlagDate(testEnd); err != nil {
		return timeline, fmt.Errorf("--test-end: %w", err)
	}
	if timeline.CutoverEndDate, err = parseFlagDate(cutoverEnd); err != nil {
		return timeline, fmt.Errorf("--cutover-end: %w", err)
	}
	return timeline, nil
}

func parseFlagDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", value)
}

func mimeForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return ""
	}
}

func writeReport(out auditOutput, path string) error {
	pdfBytes, err := report.Render(report.Input{
		ProjectName:     out.ProjectName,
		FileName:        out.FileName,
		GeneratedAt:     time.Now().UTC(),
		Result:          out.Result,
		Pricing:         out.Pricing,
		Schedule:        out.Schedule,
		Recommendations: out.Recommendations,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
