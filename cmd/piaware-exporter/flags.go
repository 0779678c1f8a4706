package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jpalmerr/piaware-exporter/config"
	"github.com/spf13/cobra"
)

// addTargetFlags registers the config file flag and the per-key overrides
// shared by serve and check.
func addTargetFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("config", "c", "", "path to config file")
	flags.String("host", "", "PiAware hostname or IP address")
	flags.Int("port", config.DefaultPort, "PiAware web interface port")
	flags.String("protocol", config.DefaultProtocol, "PiAware protocol (http or https)")
	flags.Duration("interval", config.DefaultPollInterval, "time between status.json fetches")
	flags.Duration("timeout", config.DefaultTimeout, "status.json request timeout")
	flags.Int("listen-port", config.DefaultListenPort, "port serving /metrics")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

// resolveConfig loads the config file if one is given, applies any flags
// set on the command line and validates the result. Flags win over the
// file; the file wins over defaults.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	cfg := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.Read(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("protocol") {
		cfg.Protocol, _ = flags.GetString("protocol")
	}
	if flags.Changed("interval") {
		d, _ := flags.GetDuration("interval")
		cfg.PollInterval = config.Duration(d)
	}
	if flags.Changed("timeout") {
		d, _ := flags.GetDuration("timeout")
		cfg.Timeout = config.Duration(d)
	}
	if flags.Changed("listen-port") {
		cfg.ListenPort, _ = flags.GetInt("listen-port")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger creates a JSON logger on stderr at the level named by the
// --log-level flag.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	name, _ := cmd.Flags().GetString("log-level")

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", name)
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})), nil
}
