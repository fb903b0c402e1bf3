package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/netdyn/internal/config"
	"github.com/san-kum/netdyn/internal/metrics"
)

var (
	dataDir     string
	logLevel    string
	logJSON     bool
	metricsAddr string

	configFile string
	preset     string
	dt         float64
	duration   float64
	integrator string
	seed       int64
	adaptive   bool
	tolerance  float64
	jitter     float64
	parallel   bool
	workers    int
	saveEvery  int
	noSave     bool

	components    []string
	phaseX        string
	phaseY        string
	poincare      string
	poincareAt    float64
	exportFormat  string
	stepsPerFrame int
	withLyapunov  bool

	sweepTarget string
	sweepParam  string
	sweepFrom   float64
	sweepTo     float64
	sweepSteps  int
	transient   float64

	ensembleRuns  int
	ensembleSigma float64

	logger   *slog.Logger
	registry *metrics.Registry
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "netdyn",
		Short:         "network dynamical system simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(logLevel, logJSON)
			if err != nil {
				return err
			}
			logger = l
			slog.SetDefault(logger)
			registry = metrics.NewRegistry()
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".netdyn", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a network simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addNetworkFlags(runCmd)
	runCmd.Flags().IntVar(&saveEvery, "save-every", 1, "keep every n-th state")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "show the state layout and mass matrix of a network",
		Args:  cobra.NoArgs,
		RunE:  showLayout,
	}
	addNetworkFlags(layoutCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a network with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addNetworkFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 5, "integration steps per frame")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored trajectories",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&components, "component", nil, "components to plot, by symbol (default: first six)")
	plotCmd.Flags().StringVar(&phaseX, "phase-x", "", "x component of a phase portrait")
	plotCmd.Flags().StringVar(&phaseY, "phase-y", "", "y component of a phase portrait")
	plotCmd.Flags().StringVar(&poincare, "poincare", "", "draw a poincare section where this component crosses --poincare-at")
	plotCmd.Flags().Float64Var(&poincareAt, "poincare-at", 0, "section threshold")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format (json, csv, svg)")
	exportCmd.Flags().StringSliceVar(&components, "component", nil, "components drawn by the svg format (default: first six)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringSliceVar(&components, "component", nil, "component to analyze, by symbol (default: first)")
	analyzeCmd.Flags().BoolVar(&withLyapunov, "lyapunov", false, "also estimate the largest Lyapunov exponent")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep a rule parameter and record where the network settles",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addNetworkFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepTarget, "target", "edges", "parameter owner (vertices, edges)")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "k", "parameter name")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 2, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 21, "number of values")
	sweepCmd.Flags().Float64Var(&transient, "transient", 0, "time discarded before recording (default: half the duration)")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run a network from several perturbed initial states",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addNetworkFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&ensembleRuns, "runs", 8, "number of runs")
	ensembleCmd.Flags().Float64Var(&ensembleSigma, "sigma", 0, "gaussian perturbation of the initial state (default: the config jitter)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark evaluation on Kuramoto rings",
		Args:  cobra.NoArgs,
		RunE:  benchEvaluate,
	}
	benchCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 picks a default)")

	presetsCmd := &cobra.Command{
		Use:   "presets [family]",
		Short: "list preset families, or the presets of one family",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Println("preset families:")
				for _, f := range config.ListFamilies() {
					fmt.Printf("  %s: %s\n", f, strings.Join(config.ListPresets(f), ", "))
				}
				return nil
			}
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for family: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s/%s\n", args[0], p)
			}
			return nil
		},
	}

	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "list local rules, their default parameters and integrators",
		Args:  cobra.NoArgs,
		RunE:  listRules,
	}

	rootCmd.AddCommand(runCmd, layoutCmd, liveCmd, listCmd, plotCmd, exportCmd, analyzeCmd, sweepCmd, ensembleCmd, benchCmd, presetsCmd, rulesCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addNetworkFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "network config file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "preset as family/name, see 'netdyn presets'")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (euler, rk4, rk45)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for the initial state")
	cmd.Flags().BoolVar(&adaptive, "adaptive", false, "adaptive step size")
	cmd.Flags().Float64Var(&tolerance, "tol", config.DefaultTolerance, "adaptive error tolerance")
	cmd.Flags().Float64Var(&jitter, "jitter", 0, "uniform perturbation of the initial state")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "evaluate each phase in parallel")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 picks a default)")
}

// loadConfig resolves the network config: a file, a preset or the default,
// then any flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "" && preset != "":
		return nil, errors.New("use either --config or --preset")
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	case preset != "":
		family, name, ok := strings.Cut(preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset must be family/name, got %q", preset)
		}
		cfg = config.GetPreset(family, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(family))
		}
	default:
		cfg = config.DefaultConfig()
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("adaptive") {
		cfg.Adaptive = adaptive
	}
	if flags.Changed("tol") {
		cfg.Tolerance = tolerance
	}
	if flags.Changed("jitter") {
		cfg.Jitter = jitter
	}
	if flags.Changed("parallel") {
		cfg.Parallel = parallel
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Lookup("save-every") != nil && flags.Changed("save-every") {
		cfg.SaveEvery = saveEvery
	}

	return cfg, cfg.Validate()
}

func newLogger(level string, asJSON bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if asJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

// serveMetrics exposes the registry until the returned function is called.
func serveMetrics(addr string) func() {
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
