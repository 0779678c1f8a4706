// Standalone mock PiAware for trying the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockpiaware
//
// Then in another terminal:
//
//	go run ./cmd/piaware-exporter serve --host localhost --port 9999 --interval 5s
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jpalmerr/piaware-exporter/example/mockpiaware"
)

func main() {
	addr := flag.String("addr", ":9999", "listen address")
	outages := flag.Bool("outages", true, "occasionally answer 503 or omit a subsystem")
	flag.Parse()

	fmt.Printf("Mock PiAware starting on %s\n", *addr)
	fmt.Println("Subsystems cycle through: green → amber → red")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	srv := mockpiaware.New(slog.Default())
	srv.Outages = *outages

	if err := mockpiaware.ListenAndServe(*addr, srv); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
