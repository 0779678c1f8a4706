// Package dashboard provides the embedded status page for the exporter.
//
// The page lists the five subsystem states, loads the current snapshot from
// /api/status and follows changes over /api/sse. It is served by the
// server package at the root path ("/").
package dashboard

import "embed"

// Assets is an embedded filesystem containing the status page.
//
//	assets/
//	  index.html    - Status page with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
