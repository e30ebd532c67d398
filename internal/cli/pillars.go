package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sow-backend/internal/pillars"
)

func newPillarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pillars",
		Short: "List the mandatory compliance pillars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var b strings.Builder
			b.WriteString(headerStyle.Render("Mandatory SOW compliance pillars"))
			b.WriteString("\n\n")
			for i, p := range pillars.All() {
				b.WriteString(titleStyle.Render(fmt.Sprintf("%d. %s", i+1, p.Name)))
				b.WriteString("\n")
				if p.Description != "" {
					b.WriteString(dimStyle.Render("   " + p.Description))
					b.WriteString("\n")
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), b.String())
			return nil
		},
	}
}
