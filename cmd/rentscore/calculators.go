package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rentscore/rentscore/internal/intake"
)

func newCalculatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calculators",
		Short: "List available calculators and their required fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := intake.NewRegistry(intake.Defaults{CollectionRate: cfg.Scoring.DefaultCollectionRate})
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tREQUIRED\tROSTER\tDESCRIPTION")
			for _, c := range registry.Calculators() {
				roster := "-"
				if c.AcceptsRoster {
					roster = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, strings.Join(c.Required, ","), roster, c.Description)
			}
			return tw.Flush()
		},
	}
}
