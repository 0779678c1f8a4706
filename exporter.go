package piaware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jpalmerr/piaware-exporter/dashboard"
	"github.com/jpalmerr/piaware-exporter/internal/metrics"
	"github.com/jpalmerr/piaware-exporter/internal/poller"
	"github.com/jpalmerr/piaware-exporter/internal/server"
	"github.com/jpalmerr/piaware-exporter/internal/store"
	"github.com/jpalmerr/piaware-exporter/state"
)

const (
	defaultPollingInterval = 15 * time.Second
	defaultTimeout         = 10 * time.Second
	defaultPort            = 9101

	// outcomeInvalidBody counts 2xx responses whose body was not a status document.
	outcomeInvalidBody = "invalid_body"
)

// ErrUnavailable is returned by [Exporter.Poll] when PiAware answered with a
// non-2xx status code. All subsystems are set to state.Unavailable.
var ErrUnavailable = errors.New("piaware returned a non-success status code")

// StateChange describes a subsystem moving from one state to another.
type StateChange struct {
	// Subsystem is the PiAware component whose state changed.
	Subsystem state.Subsystem

	// From is the previous state.
	From state.State

	// To is the new state.
	To state.State

	// At is when the change was recorded.
	At time.Time
}

// Exporter polls a PiAware status.json endpoint and exports the state of
// its five subsystems as Prometheus metrics.
//
// Each Exporter owns its states and its metrics registry, so several
// exporters for different PiAware hosts can run in one process. It is
// created using [New] and started with [Exporter.Start]:
//
//	exp, err := piaware.New(piaware.WithTarget("http", "piaware.local", 8080))
//	if err != nil {
//	    slog.Error("failed to create exporter", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	exp.Start(ctx) // blocks until ctx is cancelled
type Exporter struct {
	endpoint        string
	pollingInterval time.Duration
	timeout         time.Duration
	port            int
	title           string
	logger          *slog.Logger
	registry        *prometheus.Registry
	stateCallbacks  []func(StateChange)

	store       *store.MemoryStore
	pollMetrics *metrics.PollMetrics
	poller      *poller.Poller

	// serialises result handling between Start's loop and direct Poll calls
	mu sync.Mutex
}

// New creates an [Exporter] with the given options.
//
// An endpoint must be configured via [WithEndpoint] or [WithTarget].
// Other options have defaults:
//   - Polling interval: 15 seconds
//   - Request timeout: 10 seconds
//   - Metrics port: 9101
//
// Every subsystem starts as state.Unavailable.
func New(opts ...Option) (*Exporter, error) {
	cfg := &exporterConfig{
		pollingInterval: defaultPollingInterval,
		timeout:         defaultTimeout,
		port:            defaultPort,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.endpoint == "" {
		return nil, errors.New("an endpoint is required")
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := cfg.registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	outcomes := make([]string, 0, len(poller.Outcomes)+1)
	for _, o := range poller.Outcomes {
		outcomes = append(outcomes, string(o))
	}
	outcomes = append(outcomes, outcomeInvalidBody)

	e := &Exporter{
		endpoint:        cfg.endpoint,
		pollingInterval: cfg.pollingInterval,
		timeout:         cfg.timeout,
		port:            cfg.port,
		title:           cfg.title,
		logger:          logger,
		registry:        registry,
		stateCallbacks:  cfg.stateCallbacks,
		store:           store.NewMemoryStore(),
		pollMetrics:     metrics.NewPollMetrics(outcomes...),
	}

	if err := metrics.Register(registry, metrics.NewStateCollector(e.store), e.pollMetrics); err != nil {
		return nil, err
	}

	e.poller = poller.New(e.endpoint, e.pollingInterval, e.timeout, e.handleResult, logger)

	return e, nil
}

// Start serves metrics and runs the poll loop.
//
// Start is a blocking call that runs until ctx is cancelled. status.json is
// fetched immediately, then again after each polling interval. Fetch
// failures never stop the loop.
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server
// fails to start.
func (e *Exporter) Start(ctx context.Context) error {
	e.logger.Info("piaware exporter starting", "endpoint", e.endpoint)
	e.logger.Info("polling configured",
		"interval", e.pollingInterval.String(),
		"timeout", e.timeout.String(),
	)
	e.logger.Info("metrics available", "url", fmt.Sprintf("http://localhost:%d/metrics", e.port))

	if ctx.Err() != nil {
		return nil
	}

	httpServer := server.NewServer(e.store, e.registry, e.port, dashboard.Assets, e.title, e.logger)
	if err := httpServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	e.poller.Run(ctx)
	<-httpServer.Done()

	e.logger.Info("piaware exporter stopped")
	return nil
}

// Poll runs a single fetch-and-apply cycle.
//
// Returns nil if status.json was fetched and applied. Returns an error
// wrapping [ErrUnavailable] for non-2xx responses (after setting every
// subsystem to unavailable), and the transport or parse error otherwise
// (leaving states unchanged).
func (e *Exporter) Poll(ctx context.Context) error {
	_, err := e.poller.PollOnce(ctx)
	return err
}

// handleResult applies one poll result to the exporter's states.
func (e *Exporter) handleResult(r poller.Result) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch r.Outcome {
	case poller.OutcomeOK:
		doc, err := ParseDocument(r.Body)
		if err != nil {
			e.pollMetrics.Observe(outcomeInvalidBody, r.Latency, r.CheckedAt)
			e.logger.Error("malformed status.json", "url", r.URL, "error", err)
			return err
		}
		e.pollMetrics.Observe(string(r.Outcome), r.Latency, r.CheckedAt)
		e.applyLocked(doc)
		return nil

	case poller.OutcomeHTTPError:
		e.pollMetrics.Observe(string(r.Outcome), r.Latency, r.CheckedAt)
		e.notify(e.store.SetAll(state.Unavailable))
		return fmt.Errorf("%w: %d", ErrUnavailable, r.StatusCode)

	default:
		e.pollMetrics.Observe(string(r.Outcome), r.Latency, r.CheckedAt)
		if r.Error != nil {
			return r.Error
		}
		return fmt.Errorf("fetch failed: %s", r.Outcome)
	}
}

// Apply writes the states of every subsystem present in doc.
//
// Subsystems missing from doc keep their current state. Returns the
// transitions that occurred.
func (e *Exporter) Apply(doc Document) []StateChange {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.applyLocked(doc)
}

func (e *Exporter) applyLocked(doc Document) []StateChange {
	states := doc.States()

	var changes []store.Change
	for _, sub := range state.Subsystems {
		s, ok := states[sub]
		if !ok {
			continue
		}
		if c, changed := e.store.Set(sub, s); changed {
			changes = append(changes, c)
		}
	}
	return e.notify(changes)
}

// notify logs transitions and invokes state callbacks.
func (e *Exporter) notify(changes []store.Change) []StateChange {
	if len(changes) == 0 {
		return nil
	}

	out := make([]StateChange, 0, len(changes))
	for _, c := range changes {
		change := StateChange{Subsystem: c.Subsystem, From: c.From, To: c.To, At: c.At}
		out = append(out, change)

		e.logger.Info("subsystem state changed",
			"subsystem", c.Subsystem.String(),
			"from", c.From.String(),
			"to", c.To.String(),
		)
		for _, cb := range e.stateCallbacks {
			invokeCallbackSafe(cb, change, e.logger)
		}
	}
	return out
}

// States returns the current state of every subsystem.
func (e *Exporter) States() map[state.Subsystem]state.State {
	entries := e.store.GetAll()
	states := make(map[state.Subsystem]state.State, len(entries))
	for _, entry := range entries {
		states[entry.Subsystem] = entry.State
	}
	return states
}

// MetricsHandler returns an http.Handler serving this exporter's registry,
// for embedding in an existing HTTP server instead of calling Start.
func (e *Exporter) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Endpoint returns the configured PiAware base URL.
func (e *Exporter) Endpoint() string {
	return e.endpoint
}

// Port returns the configured metrics port.
func (e *Exporter) Port() int {
	return e.port
}

// PollingInterval returns the configured interval between fetches.
func (e *Exporter) PollingInterval() time.Duration {
	return e.pollingInterval
}

// Timeout returns the configured per-request timeout.
func (e *Exporter) Timeout() time.Duration {
	return e.timeout
}

// invokeCallbackSafe calls a state callback with panic recovery.
// Panics are logged with a correlation ID and do not propagate.
func invokeCallbackSafe(cb func(StateChange), change StateChange, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("state callback panicked",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"subsystem", change.Subsystem.String(),
				"stack", string(debug.Stack()),
			)
		}
	}()
	cb(change)
}
