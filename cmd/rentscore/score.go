package main

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rentscore/rentscore/internal/dispatch"
	"github.com/rentscore/rentscore/internal/intake"
	"github.com/rentscore/rentscore/internal/roster"
	"github.com/rentscore/rentscore/pkg/config"
	"github.com/rentscore/rentscore/pkg/scoring"
	"github.com/rentscore/rentscore/pkg/surface"
)

type scoreOpts struct {
	calculator string
	inputPath  string
	outputFmt  string
	remoteURL  string
	orgID      string
}

func newScoreCmd() *cobra.Command {
	var opts scoreOpts

	cmd := &cobra.Command{
		Use:   "score <calculator>",
		Short: "Run a calculator against a JSON request",
		Long: `Reads a JSON request body from --input (or stdin with "-"), runs the named
calculator, and renders the result. With --org, tenants are taken from the
organization's saved roster.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.calculator = args[0]
			return runScore(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.inputPath, "input", "i", "", "Request file, or - for stdin")
	cmd.Flags().StringVarP(&opts.outputFmt, "output", "o", "text", "Output format: text, json, or markdown")
	cmd.Flags().StringVar(&opts.remoteURL, "remote", "", "Base URL of a rentscored instance (default: engine.remote_url)")
	cmd.Flags().StringVar(&opts.orgID, "org", "", "Score the saved roster of this organization")

	return cmd
}

func runScore(ctx context.Context, stdin io.Reader, out io.Writer, opts scoreOpts) error {
	renderer, err := surface.For(opts.outputFmt)
	if err != nil {
		return err
	}

	body, err := readInput(stdin, opts.inputPath, opts.orgID != "")
	if err != nil {
		return err
	}

	engineCfg := cfg.Engine
	engineCfg.RemoteURL = firstNonEmpty(opts.remoteURL, cfg.Engine.RemoteURL)
	engine := dispatch.FromConfig(engineCfg, cfg.Scoring.BatchConcurrency, dispatch.WithLogger(zap.L()))
	registry := intake.NewRegistry(intake.Defaults{CollectionRate: cfg.Scoring.DefaultCollectionRate})

	var result any
	if opts.orgID != "" {
		tenants, err := rosterTenants(ctx, cfg.Roster, opts.orgID)
		if err != nil {
			return err
		}
		result, err = registry.RunWithTenants(ctx, engine, opts.calculator, body, tenants)
		if err != nil {
			return err
		}
	} else {
		result, err = registry.Run(ctx, engine, opts.calculator, body)
		if err != nil {
			return err
		}
	}

	report, err := surface.Build(opts.calculator, result)
	if err != nil {
		return err
	}
	return renderer.Render(out, report)
}

func rosterTenants(ctx context.Context, rc config.RosterConfig, orgID string) ([]scoring.TenantRiskInput, error) {
	svc, closeFn, err := roster.Open(ctx, rc)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return svc.Tenants(ctx, orgID)
}

// readInput reads the request body. An absent --input is only allowed when
// the tenants come from a roster.
func readInput(stdin io.Reader, path string, optional bool) ([]byte, error) {
	if path == "" {
		if optional {
			return nil, nil
		}
		return nil, eris.New("--input is required")
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "reading %s", path)
	}
	return data, nil
}
