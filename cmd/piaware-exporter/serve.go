package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	piaware "github.com/jpalmerr/piaware-exporter"
	"github.com/jpalmerr/piaware-exporter/config"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the exporter",
		Long: `Start polling PiAware and serving Prometheus metrics.

The exporter will:
  - Fetch status.json immediately, then once per poll interval
  - Serve metrics on /metrics and a status page on / at the listen port

The exporter runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  piaware-exporter serve --host piaware.local
  piaware-exporter serve -c /etc/piaware-exporter/config.yaml --listen-port 9200`,
		RunE: runServe,
	}
	addTargetFlags(cmd)
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- exp.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("exporter error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("exporter error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
