package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cxd309/stopping-engine/internal/config"
	"github.com/cxd309/stopping-engine/internal/engine"
	"github.com/cxd309/stopping-engine/internal/logging"
	"github.com/cxd309/stopping-engine/internal/observability"
	"github.com/cxd309/stopping-engine/internal/vehicle"
	"github.com/cxd309/stopping-engine/internal/writers"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitRuntime = 1
	ExitUsage   = 2
)

// Run executes the CLI with argv (without the program name) and returns the
// process exit code. Results go to stdout; logs, traces and errors to stderr.
func Run(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := NewFlagSet("stopping")
	fs.SetOutput(stderr)
	cfg := config.Load()
	opt, err := ParseArgs(fs, argv, cfg)
	if errors.Is(err, flag.ErrHelp) {
		return ExitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return ExitUsage
	}

	if opt.ListCars {
		if err := listCars(stdout); err != nil && !writers.IsBrokenPipe(err) {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return ExitRuntime
		}
		return ExitOK
	}

	log := logging.New(logging.Config{Level: opt.LogLevel, Format: opt.LogFormat, Output: stderr})

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     opt.Trace,
		ServiceName: cfg.Tracing.ServiceName,
		Writer:      stderr,
	}, log)
	if err != nil {
		log.Error(ctx, "tracing init failed", logging.Err(err))
		return ExitRuntime
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	collector, err := observability.NewCollector(prometheus.NewRegistry())
	if err != nil {
		log.Error(ctx, "metrics init failed", logging.Err(err))
		return ExitRuntime
	}

	req, err := buildRequest(opt, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return ExitUsage
	}

	gen := engine.NewGenerator(engine.WithLogger(log), engine.WithRecorder(collector))
	resp, err := gen.Run(ctx, req)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if errors.Is(err, engine.ErrInvalidParameter) {
			return ExitUsage
		}
		return ExitRuntime
	}
	collector.ObserveCalculation(resp.Result.Defined(), resp.Result.TotalDistance)

	if err := writers.Write(opt.Format, stdout, resp); err != nil && !writers.IsBrokenPipe(err) {
		log.Error(ctx, "write output failed", logging.Err(err))
		return ExitRuntime
	}

	if opt.MetricsFile != "" {
		if err := collector.WriteTextfile(opt.MetricsFile); err != nil {
			log.Error(ctx, "metrics dump failed", logging.Err(err))
			return ExitRuntime
		}
		log.Debug(ctx, "metrics written", logging.String("path", opt.MetricsFile))
	}
	return ExitOK
}

func buildRequest(opt Options, stdin io.Reader) (engine.Request, error) {
	if opt.Input == "" {
		return opt.Request()
	}

	var (
		data []byte
		err  error
	)
	if opt.Input == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(opt.Input)
	}
	if err != nil {
		return engine.Request{}, fmt.Errorf("read input: %w", err)
	}

	var req engine.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return engine.Request{}, fmt.Errorf("invalid input JSON: %w", err)
	}
	if opt.Profile && req.ProfileDt == 0 {
		req.ProfileDt = opt.ProfileDt
	}
	return req, nil
}

func listCars(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMASS_KG\tCD\tAREA_M2")
	for _, name := range vehicle.Presets() {
		p, err := vehicle.Lookup(name)
		if err != nil {
			return err
		}
		cd, area := "-", "-"
		if p.HasAero() {
			cd = fmt.Sprintf("%.2f", *p.DragCoefficient)
			area = fmt.Sprintf("%.2f", *p.FrontalArea)
		}
		fmt.Fprintf(tw, "%s\t%.0f\t%s\t%s\n", p.Name, p.MassKg, cd, area)
	}
	return tw.Flush()
}
