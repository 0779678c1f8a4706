package config

import (
	piaware "github.com/jpalmerr/piaware-exporter"
)

// BuildOptions converts parsed configuration into exporter options.
//
// The returned options do not include a logger or registry; callers append
// those themselves.
func BuildOptions(cfg *Config) []piaware.Option {
	opts := []piaware.Option{
		piaware.WithTarget(cfg.Protocol, cfg.Host, cfg.Port),
		piaware.WithPollingInterval(cfg.PollInterval.Duration()),
		piaware.WithTimeout(cfg.Timeout.Duration()),
		piaware.WithPort(cfg.ListenPort),
	}
	if cfg.Title != "" {
		opts = append(opts, piaware.WithTitle(cfg.Title))
	}
	return opts
}
