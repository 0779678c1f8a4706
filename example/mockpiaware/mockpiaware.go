// Package mockpiaware serves a fake PiAware status.json whose subsystem
// states drift over time, for trying the exporter without a feeder.
package mockpiaware

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// Subsystem keys as they appear in status.json.
var keys = []string{"radio", "piaware", "adept", "mlat", "gps"}

var statuses = []string{"green", "amber", "red"}

var messages = map[string]map[string]string{
	"radio": {
		"green": "Received Mode S data recently",
		"amber": "No Mode S data received recently",
		"red":   "dump1090 is not running",
	},
	"piaware": {
		"green": "PiAware is running",
		"amber": "PiAware is restarting",
		"red":   "PiAware is not running",
	},
	"adept": {
		"green": "Connected to FlightAware and logged in",
		"amber": "Connected to FlightAware, not logged in",
		"red":   "Not connected to FlightAware",
	},
	"mlat": {
		"green": "Multilateration synchronized",
		"amber": "Multilateration not synchronized",
		"red":   "Multilateration not enabled",
	},
	"gps": {
		"green": "GPS 3D fix",
		"amber": "GPS 2D fix",
		"red":   "GPS not connected",
	},
}

// subsystemState tracks status and next change time for one subsystem.
type subsystemState struct {
	statusIdx    int
	nextChangeAt time.Time
}

// Server is an http.Handler for /status.json.
//
// Every subsystem starts green and steps green, amber, red on its own
// schedule. With Outages enabled, roughly one request in twenty is answered
// with 503 and one in twenty omits a random subsystem.
type Server struct {
	// MinChange and MaxChange bound the time between status changes of a
	// subsystem.
	MinChange, MaxChange time.Duration

	// Outages enables occasional 503 responses and missing subsystems.
	Outages bool

	mu     sync.Mutex
	states map[string]*subsystemState
	rng    *rand.Rand
	now    func() time.Time
	logger *slog.Logger
}

// New creates a Server that changes each subsystem every 20-60 seconds.
func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		MinChange: 20 * time.Second,
		MaxChange: 60 * time.Second,
		states:    make(map[string]*subsystemState),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
		logger:    logger,
	}
}

func (s *Server) nextChange() time.Duration {
	span := s.MaxChange - s.MinChange
	if span <= 0 {
		return s.MinChange
	}
	return s.MinChange + time.Duration(s.rng.Int63n(int64(span)+1))
}

// Snapshot returns the current status of every subsystem, advancing any
// whose change is due.
func (s *Server) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		st, ok := s.states[key]
		if !ok {
			st = &subsystemState{nextChangeAt: now.Add(s.nextChange())}
			s.states[key] = st
		}
		if !now.Before(st.nextChangeAt) {
			old := statuses[st.statusIdx]
			st.statusIdx = (st.statusIdx + 1) % len(statuses)
			st.nextChangeAt = now.Add(s.nextChange())
			s.logger.Info("status change", "subsystem", key, "from", old, "to", statuses[st.statusIdx])
		}
		out[key] = statuses[st.statusIdx]
	}
	return out
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/status.json" {
		http.NotFound(w, r)
		return
	}

	snapshot := s.Snapshot()

	s.mu.Lock()
	outage := s.Outages && s.rng.Intn(20) == 0
	var dropped string
	if s.Outages && s.rng.Intn(20) == 0 {
		dropped = keys[s.rng.Intn(len(keys))]
	}
	s.mu.Unlock()

	if outage {
		s.logger.Info("simulating outage")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	doc := map[string]any{
		"site_url": "https://flightaware.com/adsb/stats/user/mock",
		"time":     s.now().UnixMilli(),
	}
	for key, status := range snapshot {
		if key == dropped {
			continue
		}
		doc[key] = map[string]string{
			"status":  status,
			"message": messages[key][status],
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

// ListenAndServe runs a mock PiAware on addr until it fails.
func ListenAndServe(addr string, srv *Server) error {
	mux := http.NewServeMux()
	mux.Handle("/status.json", srv)
	return http.ListenAndServe(addr, mux)
}
