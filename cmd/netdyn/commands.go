package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/netdyn/internal/analysis"
	"github.com/san-kum/netdyn/internal/config"
	"github.com/san-kum/netdyn/internal/dynamo"
	"github.com/san-kum/netdyn/internal/experiment"
	"github.com/san-kum/netdyn/internal/export"
	"github.com/san-kum/netdyn/internal/graphs"
	"github.com/san-kum/netdyn/internal/integrators"
	"github.com/san-kum/netdyn/internal/metrics"
	"github.com/san-kum/netdyn/internal/network"
	"github.com/san-kum/netdyn/internal/rules"
	"github.com/san-kum/netdyn/internal/sim"
	"github.com/san-kum/netdyn/internal/storage"
	"github.com/san-kum/netdyn/internal/viz"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

func buildExperiment(cfg *config.Config, reg *experiment.Registry) (*experiment.Experiment, error) {
	exp, err := experiment.Build(cfg, reg, network.WithLogger(logger), network.WithObserver(registry))
	if err != nil {
		return nil, err
	}
	sys := exp.System
	registry.SetNetworkSize(sys.NumVertices(), sys.NumEdges(), sys.StateDim())
	return exp, nil
}

func integratorFactory(reg *experiment.Registry, name string) func() integrators.Integrator {
	return func() integrators.Integrator {
		integ, _ := reg.GetIntegrator(name)
		return integ
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := buildExperiment(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}
	sys := exp.System

	stop := serveMetrics(metricsAddr)
	defer stop()

	logger.Info("running simulation",
		"name", cfg.Name,
		"vertices", sys.NumVertices(),
		"edges", sys.NumEdges(),
		"state_dim", sys.StateDim(),
		"integrator", cfg.Integrator,
	)
	start := time.Now()

	result, runErr := exp.Run(cmd.Context(), logger, registry)
	if result == nil {
		return runErr
	}
	if runErr != nil {
		logger.Warn("run stopped early", "error", runErr)
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("saved states: %d\n", len(result.States))
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, sys.NumVertices(), sys.NumEdges(), sys.Symbols(), result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}

	return runErr
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if ensembleRuns < 1 {
		return errors.New("runs must be at least 1")
	}
	reg := experiment.NewRegistry()
	exp, err := buildExperiment(cfg, reg)
	if err != nil {
		return err
	}

	sigma := ensembleSigma
	if !cmd.Flags().Changed("sigma") {
		sigma = cfg.Jitter
	}

	logger.Info("running ensemble", "name", cfg.Name, "runs", ensembleRuns, "sigma", sigma)
	start := time.Now()
	results, err := sim.NewEnsemble(exp.System, integratorFactory(reg, cfg.Integrator), ensembleRuns, cfg.Seed).
		WithJitter(sigma).
		WithMetrics(exp.DefaultMetrics).
		WithWorkers(cfg.Workers).
		Run(cmd.Context(), exp.X0, exp.SimConfig())
	if err != nil {
		return err
	}
	fmt.Printf("%d runs in %v\n\n", len(results), time.Since(start))

	var names []string
	for name := range results[0].Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RUN\tSTEPS\t%s\n", strings.ToUpper(strings.Join(names, "\t")))
	sums := make([]float64, len(names))
	for i, res := range results {
		row := []string{strconv.Itoa(i), strconv.Itoa(res.StepsTaken)}
		for k, name := range names {
			v := res.Metrics[name]
			sums[k] += v
			row = append(row, strconv.FormatFloat(v, 'g', 6, 64))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	row := []string{"mean", "-"}
	for _, sum := range sums {
		row = append(row, strconv.FormatFloat(sum/float64(len(results)), 'g', 6, 64))
	}
	fmt.Fprintln(w, strings.Join(row, "\t"))
	return w.Flush()
}

func showLayout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := buildExperiment(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}
	sys := exp.System
	layout := sys.Layout()
	topo := sys.Topology()

	fmt.Println(headerStyle.Render(fmt.Sprintf("%s: %d vertices, %d edges", cfg.Name, sys.NumVertices(), sys.NumEdges())))
	fmt.Printf("state dim %d, edge dim %d\n\n", sys.StateDim(), sys.EdgeDim())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ENTITY\tINDEX\tKIND\tDIM\tSTATE\tEDGE VECTOR\tLABELS\tIN\tOUT")
	for i := 0; i < sys.NumVertices(); i++ {
		v := sys.Vertex(i)
		seg := layout.Vertices[i]
		fmt.Fprintf(w, "vertex\t%d\t%s\t%d\t[%d,%d)\t-\t%s\t%d\t%d\n",
			i, v.Kind(), v.Dim(), seg.Offset, seg.End(), strings.Join(v.Labels(), ","),
			len(topo.InEdges(i)), len(topo.OutEdges(i)))
	}
	for j := 0; j < sys.NumEdges(); j++ {
		e := sys.Edge(j)
		seg := layout.Edges[j]
		state := "-"
		if s, ok := layout.EdgeStateSegment(j); ok {
			state = fmt.Sprintf("[%d,%d)", s.Offset, s.End())
		}
		fmt.Fprintf(w, "edge\t%d\t%s\t%d\t%s\t[%d,%d)\t%s\t%d\t%d\n",
			j, e.Kind(), e.Dim(), state, seg.Offset, seg.End(), strings.Join(e.Labels(), ","),
			topo.Source(j), topo.Dest(j))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	mass := sys.MassMatrix()
	fmt.Println()
	fmt.Println(headerStyle.Render("mass matrix"))
	switch {
	case mass.IsIdentity():
		fmt.Printf("identity (%dx%d, not materialized)\n", mass.Size(), mass.Size())
	default:
		fmt.Printf("block diagonal, %d blocks, diagonal=%v\n", len(mass.Blocks()), mass.IsDiagonal())
		for _, b := range mass.Blocks() {
			if b.Mass.IsIdentity() {
				continue
			}
			row := make([]string, b.Size)
			for k := range row {
				row[k] = strconv.FormatFloat(b.Mass.At(k, k), 'g', 4, 64)
			}
			fmt.Printf("  [%d,%d) diag %s\n", b.Offset, b.Offset+b.Size, strings.Join(row, " "))
		}
	}

	if alg := sys.Algebraic(); len(alg) > 0 {
		fmt.Println()
		fmt.Println(headerStyle.Render("algebraic segments"))
		for _, seg := range alg {
			fmt.Printf("  [%d,%d)\n", seg.Offset, seg.End())
		}
	}

	if sys.EdgeDim() == 0 {
		return nil
	}
	edges := make([]float64, sys.EdgeDim())
	if err := sys.EdgeValues(edges, exp.X0, nil, 0); err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(headerStyle.Render("edge values at t=0"))
	symbols := sys.EdgeSymbols()
	for k := range edges[:min(len(edges), 12)] {
		fmt.Printf("  %-12s % .6g\n", symbols[k], edges[k])
	}
	if len(edges) > 12 {
		fmt.Printf("  ... %d more\n", len(edges)-12)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()
	exp, err := buildExperiment(cfg, reg)
	if err != nil {
		return err
	}
	integ, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}

	model := viz.NewModel(exp.System, integ, exp.X0, cfg.Dt, stepsPerFrame, cfg.Name, exp.PhaseIndices())
	return viz.Run(model)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tGRAPH\tV\tE\tSTEPS\tINTEG\tTIME")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			run.ID,
			run.Name,
			run.Graph,
			run.Vertices,
			run.Edges,
			run.Steps,
			run.Integrator,
			run.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, _, symbols, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("network: %s (%d vertices, %d edges)\n", meta.Name, meta.Vertices, meta.Edges)
	fmt.Printf("samples: %d\n\n", len(states))

	if phaseX != "" || phaseY != "" {
		xi, yi := indexOf(symbols, phaseX), indexOf(symbols, phaseY)
		if xi < 0 || yi < 0 {
			return fmt.Errorf("unknown component in %q/%q", phaseX, phaseY)
		}
		if poincare != "" {
			ci := indexOf(symbols, poincare)
			if ci < 0 {
				return fmt.Errorf("unknown component %q", poincare)
			}
			points, err := analysis.PoincareSection(states, ci, poincareAt, xi, yi)
			if err != nil {
				return err
			}
			fmt.Printf("poincare section %s = %g: %d crossings\n", poincare, poincareAt, len(points))
			fmt.Print(analysis.PointsToASCII(points, 70, 24))
			return nil
		}
		portrait, err := analysis.NewPhasePortrait(states, xi, yi)
		if err != nil {
			return err
		}
		fmt.Printf("%s vs %s\n", phaseY, phaseX)
		fmt.Print(analysis.PointsToASCII(portrait.Points, 70, 24))
		return nil
	}

	selected := components
	if len(selected) == 0 {
		selected = symbols[:min(6, len(symbols))]
	}
	for _, sym := range selected {
		data, err := storage.Column(states, symbols, sym)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sym),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func indexOf(symbols []string, s string) int {
	for i, sym := range symbols {
		if sym == s {
			return i
		}
	}
	return -1
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	switch exportFormat {
	case "json":
		return st.ExportJSON(os.Stdout, runID)
	case "csv":
		states, times, symbols, err := st.LoadStates(runID)
		if err != nil {
			return err
		}
		w := csv.NewWriter(os.Stdout)
		if err := w.Write(append([]string{"time"}, symbols...)); err != nil {
			return err
		}
		for i, state := range states {
			row := make([]string, 0, len(state)+1)
			row = append(row, strconv.FormatFloat(times[i], 'f', 6, 64))
			for _, v := range state {
				row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	case "svg":
		states, times, symbols, err := st.LoadStates(runID)
		if err != nil {
			return err
		}
		selected := components
		if len(selected) == 0 {
			selected = symbols[:min(6, len(symbols))]
		}
		series := make([]export.Series, 0, len(selected))
		for _, sym := range selected {
			data, err := storage.Column(states, symbols, sym)
			if err != nil {
				return err
			}
			series = append(series, export.TimeSeries(sym, times, data))
		}
		return export.WriteSVG(os.Stdout, series, 800, 400)
	default:
		return fmt.Errorf("unknown format: %s", exportFormat)
	}
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, times, symbols, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) < 4 || len(symbols) == 0 {
		return fmt.Errorf("not enough data")
	}

	sym := symbols[0]
	if len(components) > 0 {
		sym = components[0]
	}
	data, err := storage.Column(states, symbols, sym)
	if err != nil {
		return err
	}
	sample := times[1] - times[0]

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("component: %s, %d samples every %.4g\n\n", sym, len(data), sample)

	ps := analysis.PowerSpectrum(data)
	graph := asciigraph.Plot(ps[:max(len(ps)/4, 2)],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+sym+")"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq := analysis.DominantFrequency(data, sample)
	fmt.Printf("dominant frequency: %.4f\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.4f\n", 1.0/freq)
	}

	if !withLyapunov {
		return nil
	}
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()
	exp, err := buildExperiment(cfg, reg)
	if err != nil {
		return err
	}
	lambda, err := analysis.LyapunovExponent(exp.System, integratorFactory(reg, cfg.Integrator), exp.X0, nil, cfg.Dt, cfg.Duration, 1e-8)
	if err != nil {
		return err
	}
	fmt.Printf("largest lyapunov exponent: %.4f\n", lambda)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if sweepTarget != "vertices" && sweepTarget != "edges" {
		return fmt.Errorf("target must be vertices or edges, got %q", sweepTarget)
	}
	if sweepSteps < 1 {
		return errors.New("steps must be at least 1")
	}
	reg := experiment.NewRegistry()

	probe, err := experiment.Build(base, reg)
	if err != nil {
		return err
	}
	phases := probe.PhaseIndices()
	observe := analysis.Observable(func(x dynamo.State) float64 { return dispersion(x) })
	name := "dispersion"
	if len(phases) > 0 {
		observe = func(x dynamo.State) float64 { return metrics.Coherence(x, phases) }
		name = "order parameter"
	}

	build := func(v float64) (integrators.RHS, dynamo.State, error) {
		cfg := base.Clone()
		groups := cfg.Edges
		if sweepTarget == "vertices" {
			groups = cfg.Vertices
		}
		for i := range groups {
			if groups[i].Params == nil {
				groups[i].Params = map[string]float64{}
			}
			groups[i].Params[sweepParam] = v
		}
		exp, err := experiment.Build(cfg, reg)
		if err != nil {
			return nil, nil, err
		}
		return exp.System, exp.X0, nil
	}

	tr := transient
	if !cmd.Flags().Changed("transient") {
		tr = base.Duration / 2
	}
	if tr >= base.Duration {
		return fmt.Errorf("transient %.3g leaves nothing of duration %.3g to record", tr, base.Duration)
	}

	logger.Info("sweeping", "target", sweepTarget, "param", sweepParam, "from", sweepFrom, "to", sweepTo, "steps", sweepSteps)
	points, err := analysis.Sweep(cmd.Context(), analysis.Linspace(sweepFrom, sweepTo, sweepSteps), build,
		integratorFactory(reg, base.Integrator), observe,
		analysis.SweepConfig{Dt: base.Dt, Transient: tr, Record: base.Duration - tr, Workers: base.Workers})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMEAN %s\tDISTINCT\n", strings.ToUpper(sweepParam), strings.ToUpper(name))
	means := make([]float64, len(points))
	for i, p := range points {
		means[i] = p.Mean
		fmt.Fprintf(w, "%.4g\t%.6f\t%d\n", p.Param, p.Mean, len(p.Values))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(means) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(means, asciigraph.Height(10), asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("%s vs %s", name, sweepParam))))
		fmt.Printf("\ndistinct values of %s\n", name)
		fmt.Print(analysis.SweepToASCII(points, 60, 12))
	}
	return nil
}

// dispersion is the standard deviation over all components.
func dispersion(x dynamo.State) float64 {
	if len(x) == 0 {
		return 0
	}
	mean := x.Sum() / float64(len(x))
	ss := 0.0
	for _, v := range x {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(len(x)))
}

func benchEvaluate(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERTICES\tMODE\tEVALS\tNS/EVAL\tNS/VERTEX")

	n := workers
	if n == 0 {
		n = dynamo.DefaultWorkers
	}

	for _, size := range []int{100, 1000, 10000, 100000} {
		for _, mode := range []string{"serial", "parallel"} {
			var opts []network.Option
			if mode == "parallel" {
				opts = append(opts, network.WithParallel(n, 1024))
			}
			sys, err := kuramotoRing(size, opts...)
			if err != nil {
				return err
			}

			u := make([]float64, sys.StateDim())
			du := make([]float64, sys.StateDim())
			for i := range u {
				u[i] = float64(i) * 0.01
			}

			evals := 0
			start := time.Now()
			for time.Since(start) < 200*time.Millisecond {
				if err := sys.Evaluate(du, u, nil, 0); err != nil {
					return err
				}
				evals++
			}
			perEval := float64(time.Since(start).Nanoseconds()) / float64(evals)
			fmt.Fprintf(w, "%d\t%s\t%d\t%.0f\t%.2f\n", size, mode, evals, perEval, perEval/float64(size))
		}
	}
	return w.Flush()
}

func kuramotoRing(n int, opts ...network.Option) (*network.System, error) {
	rule := rules.NewKuramoto()
	v, err := rule.VertexSpec()
	if err != nil {
		return nil, err
	}
	e, err := rule.EdgeSpec()
	if err != nil {
		return nil, err
	}
	g, err := graphs.Ring(n, false)
	if err != nil {
		return nil, err
	}
	return network.Assemble(network.RepeatVertex(v, n), network.RepeatEdge(e, n), g, opts...)
}

func listRules(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ROLE\tRULE\tDEFAULTS")
	for _, name := range reg.ListVertexRules() {
		params, _ := reg.VertexParams(name)
		fmt.Fprintf(w, "vertex\t%s\t%s\n", name, formatParams(params))
	}
	for _, name := range reg.ListEdgeRules() {
		params, _ := reg.EdgeParams(name)
		fmt.Fprintf(w, "edge\t%s\t%s\n", name, formatParams(params))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nintegrators: %s\n", strings.Join(reg.ListIntegrators(), ", "))
	return nil
}

func formatParams(params map[string]float64) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, params[k])
	}
	return strings.Join(parts, " ")
}
