package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/c360/accessmon/config"
)

const envPrefix = config.DefaultEnvPrefix + "_"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPaths []string
	InputPath   string
	OutputPath  string
	Append      bool

	StatsWindow       int64
	AlertWindow       int64
	AlertRate         int64
	MaxTimestampError int64
	ChronologyPolicy  string

	LogLevel  string
	LogFormat string
	Debug     bool

	MetricsPort int
	MetricsFile string

	ShowVersion bool
	ShowHelp    bool
	Validate    bool

	// explicit records the flags given on the command line
	explicit map[string]bool
	usage    func()
}

// layerList is a repeatable flag. The first Set replaces the env default.
type layerList struct {
	paths []string
	set   bool
}

func (l *layerList) String() string {
	return strings.Join(l.paths, ",")
}

func (l *layerList) Set(value string) error {
	if !l.set {
		l.paths = nil
		l.set = true
	}
	l.paths = append(l.paths, splitList(value)...)
	return nil
}

func parseFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{explicit: make(map[string]bool)}
	defaults := config.DefaultConfig()

	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	layers := &layerList{paths: splitList(getEnv(envPrefix+"CONFIG", ""))}
	fs.Var(layers, "config",
		"Configuration file (JSON or YAML), repeatable; later files override earlier ones (env: ACCESSMON_CONFIG, comma separated)")
	fs.Var(layers, "c", "Shorthand for --config")

	fs.StringVar(&cfg.InputPath, "input",
		getEnv(envPrefix+"INPUT", "-"),
		"CSV access log to read, - for stdin (env: ACCESSMON_INPUT)")
	fs.StringVar(&cfg.InputPath, "i",
		getEnv(envPrefix+"INPUT", "-"),
		"Shorthand for --input")

	fs.StringVar(&cfg.OutputPath, "output",
		getEnv(envPrefix+"OUTPUT", "-"),
		"File for summary and alert lines, - for stdout (env: ACCESSMON_OUTPUT)")
	fs.StringVar(&cfg.OutputPath, "o",
		getEnv(envPrefix+"OUTPUT", "-"),
		"Shorthand for --output")

	fs.BoolVar(&cfg.Append, "append",
		getEnvBool(envPrefix+"APPEND", false),
		"Append to the output file instead of truncating it (env: ACCESSMON_APPEND)")

	// Pipeline settings. Environment overrides for these are applied by the
	// config loader, so the flag only wins when given explicitly.
	fs.Int64Var(&cfg.StatsWindow, "stats-window", defaults.StatsWindow,
		"Summary chunk width in seconds (env: ACCESSMON_STATS_WINDOW)")
	fs.Int64Var(&cfg.AlertWindow, "alert-window", defaults.AlertWindow,
		"Rolling alert window in seconds (env: ACCESSMON_ALERT_WINDOW)")
	fs.Int64Var(&cfg.AlertRate, "alert-rate", defaults.AlertRate,
		"Alert threshold in requests per second (env: ACCESSMON_ALERT_RATE)")
	fs.Int64Var(&cfg.MaxTimestampError, "max-timestamp-error", defaults.MaxTimestampError,
		"Largest expected timestamp disorder in seconds (env: ACCESSMON_MAX_TIMESTAMP_ERROR)")
	fs.StringVar(&cfg.ChronologyPolicy, "chronology-policy", defaults.ChronologyPolicy,
		"Handling of records later than the reorder window: abort, skip (env: ACCESSMON_CHRONOLOGY_POLICY)")

	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv(envPrefix+"LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: ACCESSMON_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv(envPrefix+"LOG_FORMAT", "text"),
		"Log format: json, text (env: ACCESSMON_LOG_FORMAT)")

	fs.BoolVar(&cfg.Debug, "debug",
		getEnvBool(envPrefix+"DEBUG", false),
		"Enable debug logging (env: ACCESSMON_DEBUG)")

	fs.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt(envPrefix+"METRICS_PORT", 0),
		"Serve Prometheus metrics on this port while running, 0 to disable (env: ACCESSMON_METRICS_PORT)")

	fs.StringVar(&cfg.MetricsFile, "metrics-file",
		getEnv(envPrefix+"METRICS_FILE", ""),
		"Write Prometheus text metrics to this file at exit (env: ACCESSMON_METRICS_FILE)")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	cfg.usage = func() {
		printDetailedHelp(fs, stderr)
	}
	fs.Usage = cfg.usage

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	fs.Visit(func(f *flag.Flag) {
		cfg.explicit[f.Name] = true
	})
	cfg.ConfigPaths = layers.paths

	// Override log level if debug is set
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, strings.ToLower(cfg.LogLevel)) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, strings.ToLower(cfg.LogFormat)) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}

	if !isStdio(cfg.InputPath) {
		if _, err := os.Stat(cfg.InputPath); err != nil {
			return fmt.Errorf("input file not found: %s", cfg.InputPath)
		}
	}

	if cfg.Append && isStdio(cfg.OutputPath) {
		return fmt.Errorf("--append requires --output")
	}

	return nil
}

// applyFlagOverrides copies explicitly given pipeline flags over cfg.
func applyFlagOverrides(cli *CLIConfig, cfg config.Config) config.Config {
	if cli.explicit["stats-window"] {
		cfg.StatsWindow = cli.StatsWindow
	}
	if cli.explicit["alert-window"] {
		cfg.AlertWindow = cli.AlertWindow
	}
	if cli.explicit["alert-rate"] {
		cfg.AlertRate = cli.AlertRate
	}
	if cli.explicit["max-timestamp-error"] {
		cfg.MaxTimestampError = cli.MaxTimestampError
	}
	if cli.explicit["chronology-policy"] {
		cfg.ChronologyPolicy = strings.ToLower(strings.TrimSpace(cli.ChronologyPolicy))
	}
	return cfg
}

func printDetailedHelp(fs *flag.FlagSet, w io.Writer) {
	_, _ = fmt.Fprintf(w, `%s - HTTP access log monitor

Reads a CSV access log and prints traffic summaries every stats window and
an alert whenever the request rate crosses the threshold.

Usage: %s [options] < access.csv

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(w, `
Examples:
  # Summaries every 10s, alert above 10 rps over 2 minutes
  %s < sample.csv

  # Tighter alerting, output to a file
  %s --input=sample.csv --alert-rate=5 --alert-window=60 --output=report.log

  # Settings from files and the environment
  export ACCESSMON_CONFIG=/etc/accessmon/base.yaml,./local.json
  export ACCESSMON_ALERT_RATE=20
  %s < sample.csv

  # Validate configuration only
  %s --validate

Version: %s
Build: %s
`, appName, appName, appName, appName, Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isStdio(path string) bool {
	return path == "" || path == "-"
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
