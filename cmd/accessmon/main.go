// Package main implements the accessmon command, an HTTP access log monitor
// that prints periodic traffic summaries and rate alerts.
package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/c360/accessmon/config"
	"github.com/c360/accessmon/engine"
	"github.com/c360/accessmon/errors"
	"github.com/c360/accessmon/metric"
	"github.com/c360/accessmon/output/file"
	"github.com/c360/accessmon/processor/parser"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "accessmon"
)

// errStdinTerminal is returned when no input was piped in.
var errStdinTerminal = stderrors.New("stdin is a terminal: pipe a CSV access log in or pass --input")

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(os.Args[1:], stdinIsTerminal); err != nil {
		slog.Error("accessmon failed",
			"error", err,
			"class", errors.Classify(err).String(),
			"exit_code", 1)
		os.Exit(1)
	}
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func run(args []string, isTerminal func() bool) error {
	cli, err := parseFlags(args, os.Stderr)
	if stderrors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err), "main", "run", "parse flags")
	}

	if cli.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cli.ShowHelp {
		cli.usage()
		return nil
	}

	if err := validateFlags(cli); err != nil {
		return errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err), "main", "run", "validate flags")
	}

	logger := setupLogger(cli.LogLevel, cli.LogFormat, os.Stderr).With("run_id", uuid.New().String())
	slog.SetDefault(logger)

	cfg, err := loadConfiguration(cli)
	if err != nil {
		return err
	}

	if cli.Validate {
		logger.Info("Configuration is valid", "config", cfg.String())
		return nil
	}

	input, err := openInput(cli.InputPath, isTerminal)
	if err != nil {
		if stderrors.Is(err, errStdinTerminal) {
			_, _ = fmt.Fprintf(os.Stderr, "usage: %s [options] < access.csv (see --help)\n", appName)
		}
		return err
	}
	defer input.Close()

	var registry *metric.MetricsRegistry
	if cli.MetricsPort > 0 || cli.MetricsFile != "" {
		registry = metric.NewMetricsRegistry()
		registry.CoreMetrics().SetBuildInfo(Version)
	}

	logger.Info("Starting accessmon",
		"version", Version,
		"build_time", BuildTime,
		"input", cli.InputPath,
		"output", cli.OutputPath,
		"config_layers", len(cli.ConfigPaths))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = monitor(ctx, cli, cfg, input, registry, logger)
	logRunMetrics(registry, logger)

	if cli.MetricsFile != "" {
		if werr := registry.WriteTextfile(cli.MetricsFile); werr != nil {
			logger.Warn("Failed to write metrics file", "path", cli.MetricsFile, "error", werr)
		} else {
			logger.Info("Metrics written", "path", cli.MetricsFile)
		}
	}

	if err != nil && ctx.Err() != nil && stderrors.Is(err, context.Canceled) {
		logger.Warn("Interrupted, open chunk not reported")
		return nil
	}
	return err
}

// logRunMetrics reports input volume and error counts gathered during the run.
func logRunMetrics(registry *metric.MetricsRegistry, logger *slog.Logger) {
	if registry == nil {
		return
	}
	inputBytes, _, err := registry.Value(metric.Namespace+"_input_bytes_total", nil)
	if err != nil {
		logger.Debug("Failed to gather run metrics", "error", err)
		return
	}
	errs, _, _ := registry.Value(metric.Namespace+"_errors_total", nil)
	logger.Info("Run metrics", "input_bytes", int64(inputBytes), "errors", int64(errs))
}

// loadConfiguration layers defaults, config files, ACCESSMON_* env vars and
// explicit flags, in that order, and validates the result.
func loadConfiguration(cli *CLIConfig) (config.Config, error) {
	loader := config.NewLoader()
	for _, path := range cli.ConfigPaths {
		loader.AddLayer(path)
	}

	cfg, err := loader.Load()
	if err != nil {
		return config.Config{}, err
	}

	cfg = applyFlagOverrides(cli, cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func openInput(path string, isTerminal func() bool) (io.ReadCloser, error) {
	if isStdio(path) {
		if isTerminal != nil && isTerminal() {
			return nil, errors.WrapInvalid(errStdinTerminal, "main", "openInput", "check stdin")
		}
		return io.NopCloser(os.Stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "main", "openInput", "open input file")
	}
	return f, nil
}

// monitor runs the pipeline and, when enabled, the metrics server next to it.
func monitor(
	ctx context.Context,
	cli *CLIConfig,
	cfg config.Config,
	input io.Reader,
	registry *metric.MetricsRegistry,
	logger *slog.Logger,
) (engine.Result, error) {
	eng, err := engine.New(cfg, engine.WithLogger(logger), engine.WithMetrics(registry))
	if err != nil {
		return engine.Result{}, err
	}

	sink, err := file.Open(file.Config{
		Path:         cli.OutputPath,
		Append:       cli.Append,
		BufferSize:   64 * 1024,
		LineBuffered: true,
	}, file.WithLogger(logger), file.WithMetrics(registry))
	if err != nil {
		return engine.Result{}, err
	}

	g, gctx := errgroup.WithContext(ctx)

	var server *metric.Server
	if cli.MetricsPort > 0 {
		server = metric.NewServer(cli.MetricsPort, "/metrics", registry)
		logger.Info("Metrics server listening", "address", server.Address())
		g.Go(server.Start)
	}

	var res engine.Result
	g.Go(func() error {
		defer func() {
			if server == nil {
				return
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Metrics server shutdown failed", "error", err)
			}
		}()

		dec := parser.NewDecoder(input, parser.WithLogger(logger), parser.WithMetrics(registry))
		if err := dec.ReadHeader(); err != nil {
			return err
		}

		var runErr error
		res, runErr = eng.Run(gctx, dec, sink)
		logger.Debug("Input consumed", "rows", dec.Rows(), "bytes", dec.BytesRead())
		return runErr
	})

	err = g.Wait()
	if cerr := sink.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return res, err
}
