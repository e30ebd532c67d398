// Package cli implements the sowctl command line interface: offline SOW
// audits, pillar catalog inspection, and PDF report rendering without the
// API server.
package cli

import "github.com/spf13/cobra"

// NewRootCmd builds the sowctl command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sowctl",
		Short:        "Audit Statements of Work for compliance from the command line",
		SilenceUsage: true,
	}
	root.AddCommand(newAuditCmd())
	root.AddCommand(newPillarsCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newVersionCmd())
	return root
}
