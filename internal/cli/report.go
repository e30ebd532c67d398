package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "report <audit.json>",
		Short: "Render a PDF report from a saved audit payload",
		Long:  "Reads the JSON emitted by `sowctl audit --json` and renders the PDF report without re-running the analysis.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read audit payload: %w", err)
			}
			var payload auditOutput
			if err := json.Unmarshal(data, &payload); err != nil {
				return fmt.Errorf("parse audit payload: %w", err)
			}
			if err := writeReport(payload, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "sow-audit-report.pdf", "output PDF path")
	return cmd
}
