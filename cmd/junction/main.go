// Command junction runs a single adaptive intersection controller. It seeds
// the queues at random, then serves metrics, a websocket feed and an
// optional terminal view while the control loop runs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/anggasct/junction"
	"github.com/anggasct/junction/pkg/feed"
	"github.com/anggasct/junction/pkg/logging"
	"github.com/anggasct/junction/pkg/observers"
	"github.com/anggasct/junction/visualization"
)

// initialQueues is the range every lane is seeded from at startup
var initialQueues = junction.Range{Min: 0, Max: 10}

type options struct {
	name        string
	seed        int64
	timeUnit    time.Duration
	greenUnits  int
	pollUnits   int
	delayUnits  int
	threshold   int
	cycles      int
	simulate    bool
	listen      string
	render      bool
	color       bool
	validate    bool
	dotFile     string
	logLevel    string
	development bool
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	opts := &options{}
	flags := pflag.NewFlagSet("junction", pflag.ContinueOnError)
	flags.SetOutput(output)

	flags.StringVar(&opts.name, "name", "intersection", "Name reported in logs, metrics and snapshots.")
	flags.Int64Var(&opts.seed, "seed", 0, "Random seed for queues, departures and arrivals. 0 seeds from the clock.")
	flags.DurationVar(&opts.timeUnit, "time-unit", junction.DefaultTimeUnit, "Length of one time unit.")
	flags.IntVar(&opts.greenUnits, "green-units", junction.DefaultGreenUnits, "Maximum green phase length in time units.")
	flags.IntVar(&opts.pollUnits, "poll-units", junction.DefaultPollUnits, "Queue polling interval during a green phase in time units.")
	flags.IntVar(&opts.delayUnits, "delay-units", junction.DefaultCycleDelayUnits, "Pause between cycles in time units.")
	flags.IntVar(&opts.threshold, "threshold", junction.DefaultClearanceThreshold, "An axis below this many cars ends the green phase early.")
	flags.IntVar(&opts.cycles, "cycles", 0, "Number of cycles to run. 0 runs until interrupted.")
	flags.BoolVar(&opts.simulate, "simulate", false, "Use a virtual clock and run as fast as possible.")
	flags.StringVar(&opts.listen, "listen", "", "Address serving /metrics and /feed, e.g. :9090. Empty disables the server.")
	flags.BoolVar(&opts.render, "render", false, "Draw the intersection in the terminal.")
	flags.BoolVar(&opts.color, "color", true, "Use ANSI colors when rendering.")
	flags.BoolVar(&opts.validate, "validate", false, "Check every cycle against the controller invariants and report violations.")
	flags.StringVar(&opts.dotFile, "dot", "", "Write the final snapshot as a Graphviz DOT file.")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log verbosity: info, verbose, debug, trace or a number.")
	flags.BoolVar(&opts.development, "dev-logging", false, "Human readable development logs.")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if opts.cycles < 0 {
		return nil, fmt.Errorf("--cycles must not be negative, got %d", opts.cycles)
	}
	if opts.seed == 0 {
		opts.seed = time.Now().UnixNano()
	}
	return opts, nil
}

func (o *options) config() junction.Config {
	config := junction.ConfigForTimeUnit(o.timeUnit)
	config.Name = o.name
	config.GreenDuration = junction.Units(o.greenUnits, o.timeUnit)
	config.PollInterval = junction.Units(o.pollUnits, o.timeUnit)
	config.CycleDelay = junction.Units(o.delayUnits, o.timeUnit)
	config.ClearanceThreshold = o.threshold
	return config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args, stdout)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(opts.logLevel, opts.development)
	if err != nil {
		return err
	}
	logger = logger.WithName("junction")

	source := junction.NewSource(opts.seed)
	var queues junction.QueueState
	for _, lane := range junction.Lanes {
		queues[lane] = initialQueues.Draw(source)
	}

	config := opts.config()
	metrics := observers.NewMetricsObserver("")
	builder := junction.NewBuilder().
		Config(config).
		Queues(queues).
		Source(source).
		Observer(observers.NewLoggingObserver(logger, observers.LogInfo, config.Name)).
		Observer(metrics)

	var validation *observers.ValidationObserver
	if opts.validate {
		validation = observers.NewValidationObserver(junction.Decide, config.Departures, config.Arrivals)
		builder = builder.Observer(validation)
	}
	if opts.simulate {
		builder = builder.Clock(junction.NewManualClock(time.Now()))
	}

	controller, err := builder.Build()
	if err != nil {
		return err
	}
	logger.Info("Intersection ready", "id", controller.ID(), "seed", opts.seed, "queues", queues.String(),
		"green", config.GreenDuration, "poll", config.PollInterval, "threshold", config.ClearanceThreshold)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.listen != "" {
		server, err := serve(ctx, opts.listen, controller, metrics, logger)
		if err != nil {
			return err
		}
		defer shutdown(server, logger)
	}

	if opts.render {
		go renderLoop(ctx, controller, stdout, opts.color)
	}

	if opts.cycles > 0 {
		err = controller.RunCycles(ctx, opts.cycles)
	} else {
		err = controller.Run(ctx)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	cancel()
	snapshot := controller.Snapshot()
	logger.Info("Intersection stopped", "cycles", snapshot.Cycle, "queues", snapshot.Queues.String())
	fmt.Fprintln(stdout, visualization.NewTextRenderer().Summary(snapshot))

	if opts.dotFile != "" {
		if err := visualization.NewDOTGenerator(snapshot).GenerateToFile(opts.dotFile); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.dotFile, err)
		}
		logger.V(logging.VERBOSE).Info("Wrote snapshot graph", "file", opts.dotFile)
	}

	if validation != nil {
		return reportViolations(validation, logger)
	}
	return nil
}

func reportViolations(validation *observers.ValidationObserver, logger logr.Logger) error {
	violations := validation.GetViolations()
	for _, v := range violations {
		logger.Info("Invariant violated", "violation", v)
	}
	if len(violations) > 0 {
		return fmt.Errorf("%d invariant violations", len(violations))
	}
	return nil
}

func serve(ctx context.Context, addr string, controller *junction.Controller, metrics *observers.MetricsObserver, logger logr.Logger) (*http.Server, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(registry); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	hub := feed.NewHub(controller, feed.WithLogger(logger))
	go func() {
		_ = hub.Run(ctx)
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/feed", hub)

	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("Serving metrics and feed", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(err, "Server stopped")
		}
	}()
	return server, nil
}

func shutdown(server *http.Server, logger logr.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error(err, "Failed to shut down server")
	}
}

func renderLoop(ctx context.Context, controller *junction.Controller, out io.Writer, color bool) {
	renderer := visualization.NewTextRenderer()
	renderer.Color = color

	ticker := time.NewTicker(feed.DefaultInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(out, "\x1b[H\x1b[2J"+renderer.Render(controller.Snapshot()))
		}
	}
}
