package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/netdyn/internal/dynamo"
	"github.com/san-kum/netdyn/internal/integrators"
)

type Option func(*Simulator)

func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(s *Simulator) { s.recorder = r }
}

// Simulator drives an assembled network through time with one integrator.
// A Simulator owns its integrator's scratch space and runs one trajectory
// at a time.
type Simulator struct {
	sys        integrators.RHS
	integrator integrators.Integrator
	metrics    []Metric
	observers  []Observer
	recorder   Recorder
	logger     *slog.Logger
}

func New(sys integrators.RHS, integrator integrators.Integrator, opts ...Option) *Simulator {
	s := &Simulator{
		sys:        sys,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg Config) (*Result, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	saveEvery := max(cfg.SaveEvery, 1)
	expected := int(math.Round(cfg.Duration/cfg.Dt)) / saveEvery
	result := &Result{
		States:  make([]dynamo.State, 0, expected+2),
		Times:   make([]float64, 0, expected+2),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt
	start := time.Now()

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	s.logger.Debug("run started",
		"state_dim", len(x),
		"dt", cfg.Dt,
		"duration", cfg.Duration,
		"adaptive", cfg.Adaptive,
	)

	status := "ok"
	defer func() {
		if s.recorder != nil {
			s.recorder.RecordRun(status, time.Since(start))
		}
	}()

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	for i := 0; ; i++ {
		if cfg.Adaptive {
			if cfg.Duration-t <= math.Max(cfg.MinDt, 1e-12*cfg.Duration) {
				break
			}
		} else if i >= steps {
			break
		}

		select {
		case <-ctx.Done():
			status = "canceled"
			return result, ctx.Err()
		default:
		}

		for _, m := range s.metrics {
			m.Observe(x, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, t)
		}

		stepStart := time.Now()
		taken := dt
		var err error
		if cfg.Adaptive {
			if remaining := cfg.Duration - t; dt > remaining {
				dt = remaining
			}
			taken, dt, err = s.adaptiveStep(x, t, dt, cfg)
		} else {
			err = s.integrator.Step(s.sys, x, cfg.Params, t, dt)
		}
		if err != nil {
			status = "error"
			return result, SimError{Time: t, Step: i, Message: "step failed", Wrapped: err}
		}
		if s.recorder != nil {
			s.recorder.RecordStep(time.Since(stepStart), taken)
		}

		if cfg.ValidateState && !x.IsValid() {
			err := SimError{Time: t, Step: i, Message: "invalid state", Wrapped: dynamo.ErrInvalidState}
			s.logger.Warn("run aborted", "step", i, "t", t, "err", err)
			result.Errors = append(result.Errors, err)
			status = "invalid"
			break
		}

		if cfg.Adaptive {
			t += taken
		} else {
			t = float64(i+1) * cfg.Dt
		}
		result.StepsTaken++

		if result.StepsTaken%saveEvery == 0 {
			result.States = append(result.States, x.Clone())
			result.Times = append(result.Times, t)
		}
	}

	if result.Times[len(result.Times)-1] != t {
		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Debug("run finished", "steps", result.StepsTaken, "t", t, "elapsed", time.Since(start))
	return result, nil
}

func (s *Simulator) validate(x0 dynamo.State, cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Adaptive && cfg.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive for adaptive stepping")
	}
	if len(x0) != s.sys.StateDim() {
		return fmt.Errorf("%w: initial state has %d entries, system has %d", dynamo.ErrDimensionMismatch, len(x0), s.sys.StateDim())
	}
	return nil
}

// adaptiveStep uses the integrator's own error control when it has one and
// step doubling otherwise. It returns the step taken and the next step.
func (s *Simulator) adaptiveStep(x dynamo.State, t, dt float64, cfg Config) (float64, float64, error) {
	if adaptive, ok := s.integrator.(integrators.AdaptiveIntegrator); ok {
		taken, next, err := adaptive.StepAdaptive(s.sys, x, cfg.Params, t, dt, cfg.Tolerance)
		if cfg.MaxDt > 0 {
			next = math.Min(next, cfg.MaxDt)
		}
		return taken, next, err
	}

	full := x.Clone()
	half := x.Clone()
	for {
		copy(full, x)
		copy(half, x)
		if err := s.integrator.Step(s.sys, full, cfg.Params, t, dt); err != nil {
			return 0, 0, err
		}
		if err := s.integrator.Step(s.sys, half, cfg.Params, t, dt/2); err != nil {
			return 0, 0, err
		}
		if err := s.integrator.Step(s.sys, half, cfg.Params, t+dt/2, dt/2); err != nil {
			return 0, 0, err
		}

		errNorm := full.Sub(half).Norm()
		if errNorm > cfg.Tolerance && dt/2 >= cfg.MinDt {
			dt /= 2
			continue
		}

		next := dt
		if errNorm < cfg.Tolerance/10 {
			next = dt * 2
			if cfg.MaxDt > 0 {
				next = math.Min(next, cfg.MaxDt)
			}
		}
		copy(x, half)
		return dt, next, nil
	}
}

// RunWithCallback steps until the duration elapses or callback returns false.
// Nothing is recorded.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 dynamo.State, cfg Config, callback func(dynamo.State, float64) bool) error {
	if err := s.validate(x0, cfg); err != nil {
		return err
	}

	x := x0.Clone()
	steps := int(math.Round(cfg.Duration / cfg.Dt))

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt
		if !callback(x, t) {
			return nil
		}

		if err := s.integrator.Step(s.sys, x, cfg.Params, t, cfg.Dt); err != nil {
			return SimError{Time: t, Step: i, Message: "step failed", Wrapped: err}
		}

		if cfg.ValidateState && !x.IsValid() {
			return SimError{Time: t + cfg.Dt, Step: i, Message: "invalid state", Wrapped: dynamo.ErrInvalidState}
		}
	}

	return nil
}
