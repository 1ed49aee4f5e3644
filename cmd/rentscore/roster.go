package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rentscore/rentscore/internal/roster"
	"github.com/rentscore/rentscore/pkg/scoring"
)

func newRosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Manage saved tenant rosters",
	}
	cmd.AddCommand(newRosterPutCmd(), newRosterShowCmd())
	return cmd
}

func newRosterPutCmd() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "put <org-id>",
		Short: "Replace an organization's roster",
		Long:  `Reads {"tenants": [...]} from --input (or stdin with "-") and saves it as the organization's current roster.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), inputPath, false)
			if err != nil {
				return err
			}
			var req struct {
				Tenants []scoring.TenantRiskInput `json:"tenants"`
			}
			if err := json.Unmarshal(data, &req); err != nil {
				return eris.Wrap(err, "decoding roster")
			}

			svc, closeFn, err := roster.Open(cmd.Context(), cfg.Roster)
			if err != nil {
				return err
			}
			defer closeFn()

			r, err := svc.Put(cmd.Context(), args[0], req.Tenants)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved roster %s for %s (%d tenants)\n", r.DocumentID, r.OrgID, len(r.Tenants))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Roster file, or - for stdin")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newRosterShowCmd() *cobra.Command {
	var (
		asJSON     bool
		documentID string
	)

	cmd := &cobra.Command{
		Use:   "show <org-id>",
		Short: "Print an organization's current roster or a saved revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := roster.Open(cmd.Context(), cfg.Roster)
			if err != nil {
				return err
			}
			defer closeFn()

			var r roster.Roster
			if documentID != "" {
				r, err = svc.Revision(cmd.Context(), args[0], documentID)
			} else {
				r, err = svc.Get(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}
			fmt.Fprintf(out, "Roster %s for %s, updated %s\n", r.DocumentID, r.OrgID, r.UpdatedAt.Format(time.RFC3339))
			for _, t := range r.Tenants {
				fmt.Fprintf(out, "  %-20s %10.2f  %s\n", t.RenterID, t.RentAmount, t.PropertyAddress)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the roster document as JSON")
	cmd.Flags().StringVar(&documentID, "document", "", "Show this saved revision instead of the current roster")
	return cmd
}
