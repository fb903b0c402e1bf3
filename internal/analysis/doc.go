// Package analysis works on trajectories of assembled networks.
//
//   - [PowerSpectrum], [DominantFrequency]: spectral content of one component
//   - [LyapunovExponent]: largest exponent via trajectory separation
//   - [Sweep]: parameter sweep, e.g. coupling strength against order parameter
//   - [NewPhasePortrait], [PoincareSection]: projections of stored runs
//
// # Synchronization transition
//
// Sweeping the Kuramoto coupling and observing the order parameter shows the
// onset of synchrony:
//
//	points, err := analysis.Sweep(ctx, analysis.Linspace(0, 2, 21), build,
//		func() integrators.Integrator { return integrators.NewRK4() },
//		func(x dynamo.State) float64 { return metrics.Coherence(x, phases) },
//		analysis.SweepConfig{Dt: 0.01, Transient: 50, Record: 10})
package analysis
