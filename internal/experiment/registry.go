package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/netdyn/internal/dynamo"
	"github.com/san-kum/netdyn/internal/integrators"
	"github.com/san-kum/netdyn/internal/network"
	"github.com/san-kum/netdyn/internal/rules"
)

type VertexRule interface {
	dynamo.Configurable
	VertexSpec() (network.VertexSpec, error)
}

type EdgeRule interface {
	dynamo.Configurable
	EdgeSpec() (network.EdgeSpec, error)
}

// Registry maps the names used in configuration files to rule and
// integrator constructors.
type Registry struct {
	vertexRules map[string]func() VertexRule
	edgeRules   map[string]func() EdgeRule
	integrators map[string]func() integrators.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		vertexRules: make(map[string]func() VertexRule),
		edgeRules:   make(map[string]func() EdgeRule),
		integrators: make(map[string]func() integrators.Integrator),
	}

	r.vertexRules["diffusion"] = func() VertexRule { return rules.NewDiffusion() }
	r.vertexRules["kuramoto"] = func() VertexRule { return rules.NewKuramoto() }
	r.vertexRules["swing"] = func() VertexRule { return rules.NewSwing() }
	r.vertexRules["slack"] = func() VertexRule { return rules.NewSlack() }
	r.vertexRules["fitzhugh-nagumo"] = func() VertexRule { return rules.NewFitzHughNagumo() }

	r.edgeRules["diffusion"] = func() EdgeRule { return rules.NewDiffusion() }
	r.edgeRules["kuramoto"] = func() EdgeRule { return rules.NewKuramoto() }
	r.edgeRules["swing"] = func() EdgeRule { return rules.NewSwing() }
	r.edgeRules["lowpass"] = func() EdgeRule { return rules.NewLowPass() }

	r.integrators["euler"] = func() integrators.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() integrators.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() integrators.Integrator { return integrators.NewRK45() }

	return r
}

// RegisterVertexRule adds or replaces a vertex rule.
func (r *Registry) RegisterVertexRule(name string, fn func() VertexRule) { r.vertexRules[name] = fn }

// RegisterEdgeRule adds or replaces an edge rule.
func (r *Registry) RegisterEdgeRule(name string, fn func() EdgeRule) { r.edgeRules[name] = fn }

// VertexSpec builds the named rule with params applied.
func (r *Registry) VertexSpec(name string, params map[string]float64) (network.VertexSpec, error) {
	fn, ok := r.vertexRules[name]
	if !ok {
		return network.VertexSpec{}, fmt.Errorf("unknown vertex rule: %s", name)
	}
	rule := fn()
	if err := applyParams(rule, params); err != nil {
		return network.VertexSpec{}, err
	}
	return rule.VertexSpec()
}

// EdgeSpec builds the named rule with params applied.
func (r *Registry) EdgeSpec(name string, params map[string]float64) (network.EdgeSpec, error) {
	fn, ok := r.edgeRules[name]
	if !ok {
		return network.EdgeSpec{}, fmt.Errorf("unknown edge rule: %s", name)
	}
	rule := fn()
	if err := applyParams(rule, params); err != nil {
		return network.EdgeSpec{}, err
	}
	return rule.EdgeSpec()
}

func (r *Registry) GetIntegrator(name string) (integrators.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

// VertexParams returns the default parameters of a vertex rule.
func (r *Registry) VertexParams(name string) (map[string]float64, bool) {
	fn, ok := r.vertexRules[name]
	if !ok {
		return nil, false
	}
	return fn().GetParams(), true
}

// EdgeParams returns the default parameters of an edge rule.
func (r *Registry) EdgeParams(name string) (map[string]float64, bool) {
	fn, ok := r.edgeRules[name]
	if !ok {
		return nil, false
	}
	return fn().GetParams(), true
}

func (r *Registry) ListVertexRules() []string { return sortedKeys(r.vertexRules) }
func (r *Registry) ListEdgeRules() []string { return sortedKeys(r.edgeRules) }
func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }

// applyParams sets parameters in name order so errors are reproducible.
func applyParams(c dynamo.Configurable, params map[string]float64) error {
	for _, name := range sortedKeys(params) {
		if err := c.SetParam(name, params[name]); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
