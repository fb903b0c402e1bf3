package sim

import (
	"fmt"
	"time"

	"github.com/san-kum/netdyn/internal/dynamo"
)

// Metric accumulates a scalar over the states of a run.
type Metric interface {
	Name() string
	Observe(x dynamo.State, t float64)
	Value() float64
	Reset()
}

// Observer sees every state before it is advanced. The slice is reused by
// the next step; clone it to keep it.
type Observer interface {
	OnStep(x dynamo.State, t float64)
}

// Recorder receives run-level instrumentation.
type Recorder interface {
	RecordStep(d time.Duration, dt float64)
	RecordRun(status string, d time.Duration)
}

type Config struct {
	Dt            float64
	Duration      float64
	Adaptive      bool
	Tolerance     float64
	MinDt         float64
	MaxDt         float64
	ValidateState bool
	SaveEvery     int // keep every n-th state; 0 or 1 keeps all
	Params        any // passed to every local rule
	Seed          int64
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      10.0,
		Tolerance:     1e-6,
		MinDt:         1e-9,
		MaxDt:         1.0,
		ValidateState: true,
		SaveEvery:     1,
	}
}

type Result struct {
	States     []dynamo.State
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Final is the last saved state.
func (r *Result) Final() dynamo.State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

type SimError struct {
	Time    float64
	Step    int
	Message string
	Wrapped error
}

func (e SimError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("step %d (t=%.4f): %s: %v", e.Step, e.Time, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error {
	return e.Wrapped
}
