// Package server provides the HTTP server for scraping and inspecting
// exporter state.
//
// This package is internal and handles all HTTP concerns:
//
//   - Prometheus scraping at "/metrics"
//   - REST API: JSON snapshot at "/api/status" and "/api/status/{subsystem}"
//   - Server-Sent Events: state changes at "/api/sse"
//   - Status page: embedded HTML at "/"
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
package server
