package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	piaware "github.com/jpalmerr/piaware-exporter"
	"github.com/jpalmerr/piaware-exporter/config"
	"github.com/jpalmerr/piaware-exporter/state"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Poll PiAware once and print subsystem states",
		Long: `Fetch status.json once and print the state of every subsystem.

No metrics server is started. Useful for verifying connectivity before
deploying the exporter.

Exit codes:
  0 - status.json was fetched and interpreted
  1 - the fetch failed or PiAware returned a non-2xx status

Example:
  piaware-exporter check --host piaware.local
  piaware-exporter check -c config.yaml`,
		RunE: runCheck,
	}
	addTargetFlags(cmd)
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	opts := append(config.BuildOptions(cfg), piaware.WithLogger(logger))
	exp, err := piaware.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create exporter: %w", err)
	}

	pollErr := exp.Poll(context.Background())

	states := exp.States()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SUBSYSTEM\tMETRIC\tSTATE\n")
	for _, sub := range state.Subsystems {
		fmt.Fprintf(w, "%s\t%s\t%s\n", sub, sub.MetricName(), states[sub])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if pollErr != nil {
		return fmt.Errorf("check failed: %w", pollErr)
	}
	return nil
}
