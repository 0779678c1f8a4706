package piaware

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// exporterConfig holds mutable state during Exporter construction.
type exporterConfig struct {
	endpoint        string
	pollingInterval time.Duration
	timeout         time.Duration
	port            int
	title           string
	logger          *slog.Logger
	registry        *prometheus.Registry
	stateCallbacks  []func(StateChange)
}

// Option is a function that configures an [Exporter] during construction.
//
// Options return an error if validation fails.
type Option func(*exporterConfig) error

// WithEndpoint sets the base URL of the PiAware web interface.
// status.json is fetched from directly below this URL.
//
// Example:
//
//	exp, err := piaware.New(
//	    piaware.WithEndpoint("http://piaware.local:8080"),
//	)
//
// Returns an error if the URL is not an absolute http or https URL.
func WithEndpoint(rawURL string) Option {
	return func(cfg *exporterConfig) error {
		u, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("invalid endpoint: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("endpoint scheme must be http or https, got %q", u.Scheme)
		}
		if u.Host == "" {
			return errors.New("endpoint must include a host")
		}
		cfg.endpoint = rawURL
		return nil
	}
}

// WithTarget sets the endpoint from its parts as {protocol}://{host}:{port}.
//
// Returns an error if the protocol is not http or https, the host is empty,
// or the port is outside 1-65535.
func WithTarget(protocol, host string, port int) Option {
	return func(cfg *exporterConfig) error {
		if host == "" {
			return errors.New("host cannot be empty")
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("target port must be between 1 and 65535, got %d", port)
		}
		raw := fmt.Sprintf("%s://%s", protocol, net.JoinHostPort(host, strconv.Itoa(port)))
		return WithEndpoint(raw)(cfg)
	}
}

// WithPollingInterval sets the time slept between fetches.
// Defaults to 15 seconds.
//
// Returns an error if the duration is zero or negative.
func WithPollingInterval(d time.Duration) Option {
	return func(cfg *exporterConfig) error {
		if d <= 0 {
			return errors.New("polling interval must be positive")
		}
		cfg.pollingInterval = d
		return nil
	}
}

// WithTimeout sets the per-request timeout for fetching status.json.
// Defaults to 10 seconds.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) Option {
	return func(cfg *exporterConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithPort sets the port the metrics server listens on.
// Defaults to 9101.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *exporterConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithTitle sets the heading of the status page served on /.
// Defaults to "PiAware Exporter".
func WithTitle(title string) Option {
	return func(cfg *exporterConfig) error {
		cfg.title = title
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *exporterConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithRegistry registers the exporter's metrics on reg instead of a
// private registry, and serves reg from /metrics.
//
// When not set, each Exporter gets its own registry that also carries the
// Go runtime and process collectors.
//
// Returns an error if the registry is nil.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(cfg *exporterConfig) error {
		if reg == nil {
			return errors.New("registry cannot be nil")
		}
		cfg.registry = reg
		return nil
	}
}

// WithStateCallback registers a function to be called on every subsystem
// state transition.
//
// Callbacks are invoked synchronously from the poll loop, in registration
// order, after the new state is visible to scrapes. They must not block.
// Panics are recovered and logged. Nil callbacks are ignored.
//
// Example:
//
//	exp, err := piaware.New(
//	    piaware.WithEndpoint("http://piaware:8080"),
//	    piaware.WithStateCallback(func(c piaware.StateChange) {
//	        if c.To == state.Red {
//	            log.Printf("ALERT: %s is red", c.Subsystem)
//	        }
//	    }),
//	)
func WithStateCallback(cb func(StateChange)) Option {
	return func(cfg *exporterConfig) error {
		if cb == nil {
			return nil
		}
		cfg.stateCallbacks = append(cfg.stateCallbacks, cb)
		return nil
	}
}
