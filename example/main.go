package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	piaware "github.com/jpalmerr/piaware-exporter"
	"github.com/jpalmerr/piaware-exporter/example/mockpiaware"
	"github.com/jpalmerr/piaware-exporter/state"
)

func main() {
	// start a mock feeder whose subsystems change every 10-30 seconds
	mock := mockpiaware.New(slog.Default())
	mock.MinChange = 10 * time.Second
	mock.MaxChange = 30 * time.Second
	mock.Outages = true
	go func() {
		if err := mockpiaware.ListenAndServe(":9999", mock); err != nil {
			slog.Error("mock piaware error", "error", err)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	exp, err := piaware.New(
		piaware.WithTarget("http", "localhost", 9999),
		piaware.WithPollingInterval(5*time.Second),
		piaware.WithTimeout(2*time.Second),
		piaware.WithPort(9101),
		piaware.WithTitle("PiAware Demo"),
		piaware.WithStateCallback(func(c piaware.StateChange) {
			if c.To == state.Red {
				fmt.Printf("ALERT: %s is red (was %s)\n", c.Subsystem.MetricName(), c.From)
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create exporter", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   PiAware Exporter Demo                               ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Status page: http://localhost:9101                  ║")
	fmt.Println("  ║   Metrics:     http://localhost:9101/metrics          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := exp.Start(ctx); err != nil {
		slog.Error("exporter error", "error", err)
		os.Exit(1)
	}
}
