// Package main is the entry point for the piaware-exporter CLI.
//
// Usage:
//
//	piaware-exporter serve --host piaware.local  # Export metrics on :9101
//	piaware-exporter serve -c piaware.yaml       # Same, configured from YAML
//	piaware-exporter check --host piaware.local  # Poll once and print states
//	piaware-exporter validate -c piaware.yaml    # Validate configuration
//	piaware-exporter version                     # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// newRootCmd builds the command tree. The root command only displays help.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "piaware-exporter",
		Short: "Prometheus exporter for PiAware feeder status",
		Long: `piaware-exporter polls the status.json document of a PiAware ADS-B
feeder and exports the state of its radio, PiAware service, FlightAware
connection, MLAT and GPS as Prometheus metrics.

Quick start:
  1. Run: piaware-exporter serve --host piaware.local
  2. Scrape http://localhost:9101/metrics

Example config:
  host: piaware.local
  port: 8080
  poll_interval: 15s
  listen_port: 9101`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newCheckCmd(), newValidateCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of this piaware-exporter binary.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "piaware-exporter %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}
