package metrics

import (
	"time"
)

// ObserveEvaluation implements network.EvalObserver
func (r *Registry) ObserveEvaluation(d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.EvaluationsTotal.WithLabelValues(status).Inc()
	r.EvaluationDuration.Observe(d.Seconds())
}

// RecordStep implements sim.Recorder
func (r *Registry) RecordStep(_ time.Duration, dt float64) {
	r.StepsTotal.Inc()
	r.StepSize.Observe(dt)
}

// RecordRun implements sim.Recorder
func (r *Registry) RecordRun(status string, d time.Duration) {
	r.RunsTotal.WithLabelValues(status).Inc()
	r.RunDuration.Observe(d.Seconds())
}

// SetNetworkSize publishes the shape of the assembled network.
func (r *Registry) SetNetworkSize(vertices, edges, stateDim int) {
	r.NetworkVertices.Set(float64(vertices))
	r.NetworkEdges.Set(float64(edges))
	r.NetworkStateDim.Set(float64(stateDim))
}
