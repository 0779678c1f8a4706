// Package piaware exports the health of a PiAware ADS-B feeder as
// Prometheus metrics.
//
// An [Exporter] polls the status.json document served by the PiAware web
// interface and maps its five subsystems onto enum-style state metrics:
//
//	piaware_radio_state                     radio
//	piaware_service_state                   piaware
//	piaware_connect_to_flightaware_state    adept
//	piaware_mlat_state                      mlat
//	piaware_gps_state                       gps
//
// Each metric carries one series per state (green, amber, red, N/A) with
// exactly one series set to 1.
//
// # Quick Start
//
//	exp, err := piaware.New(piaware.WithTarget("http", "piaware.local", 8080))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	exp.Start(ctx) // blocks until ctx is cancelled
//
// # Poll Semantics
//
// A 2xx response updates every subsystem present in the document. A
// subsystem whose status is missing or not one of green and amber is red.
// Subsystems absent from the document keep their previous state.
//
// Any other status code sets every subsystem to N/A. Transport failures
// (refused connections, timeouts, DNS errors) are logged and leave every
// state as it was.
//
// # Architecture
//
//   - internal/poller: Single sequential fetch loop for status.json
//   - internal/store: In-memory state with pub/sub for live updates
//   - internal/metrics: Prometheus collectors for states and poll outcomes
//   - internal/server: /metrics, JSON status API and Server-Sent Events
//   - dashboard: Embedded status page
//   - config: YAML configuration for the piaware-exporter binary
package piaware
