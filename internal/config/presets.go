package config

import "sort"

var Presets = map[string]map[string]*Config{
	"kuramoto": {
		"ring": {
			Name:       "kuramoto-ring",
			Graph:      GraphConfig{Type: "ring", Vertices: 20},
			Vertices:   []GroupConfig{{Rule: "kuramoto", Params: map[string]float64{"omega": 1.0}}},
			Edges:      []GroupConfig{{Rule: "kuramoto", Params: map[string]float64{"k": 1.5}}},
			Integrator: "rk4", Dt: 0.01, Duration: 30.0, Jitter: 1.0, Seed: 1,
		},
		"random": {
			Name:       "kuramoto-random",
			Graph:      GraphConfig{Type: "random", Vertices: 100, P: 0.1, Seed: 7},
			Vertices:   []GroupConfig{{Rule: "kuramoto"}},
			Edges:      []GroupConfig{{Rule: "kuramoto", Params: map[string]float64{"k": 0.3}}},
			Integrator: "rk45", Adaptive: true, Tolerance: 1e-6, Dt: 0.05, Duration: 50.0, Jitter: 2.0, Seed: 3,
			Parallel: true,
		},
		"complete": {
			Name:       "kuramoto-complete",
			Graph:      GraphConfig{Type: "complete", Vertices: 12},
			Vertices:   []GroupConfig{{Rule: "kuramoto"}},
			Edges:      []GroupConfig{{Rule: "kuramoto", Params: map[string]float64{"k": 0.2}}},
			Integrator: "rk4", Dt: 0.01, Duration: 20.0, Jitter: 1.5, Seed: 2,
		},
	},
	"diffusion": {
		"grid": {
			Name:       "diffusion-grid",
			Graph:      GraphConfig{Type: "grid", Rows: 8, Cols: 8},
			Vertices:   []GroupConfig{{Rule: "diffusion", Count: 1, Init: []float64{64}}, {Rule: "diffusion"}},
			Edges:      []GroupConfig{{Rule: "diffusion", Params: map[string]float64{"k": 0.5}}},
			Integrator: "rk4", Dt: 0.01, Duration: 20.0,
		},
		"lagged": {
			Name:       "diffusion-lagged",
			Graph:      GraphConfig{Type: "path", Vertices: 10},
			Vertices:   []GroupConfig{{Rule: "diffusion", Count: 1, Init: []float64{10}}, {Rule: "diffusion"}},
			Edges:      []GroupConfig{{Rule: "lowpass", Params: map[string]float64{"tau": 0.5}}},
			Integrator: "rk45", Adaptive: true, Tolerance: 1e-7, Dt: 0.01, Duration: 30.0,
		},
	},
	"swing": {
		"star": {
			Name:  "swing-star",
			Graph: GraphConfig{Type: "star", Vertices: 6},
			Vertices: []GroupConfig{
				{Rule: "slack", Count: 1, Params: map[string]float64{"dim": 2}},
				{Rule: "swing", Params: map[string]float64{"power": 0.5, "inertia": 2.0}, Init: []float64{0, 0}},
			},
			Edges:      []GroupConfig{{Rule: "swing", Params: map[string]float64{"k": 4.0}}},
			Integrator: "rk4", Dt: 0.005, Duration: 30.0, Jitter: 0.1, Seed: 5,
		},
	},
	"fitzhugh-nagumo": {
		"ring": {
			Name:       "fhn-ring",
			Graph:      GraphConfig{Type: "ring", Vertices: 30},
			Vertices:   []GroupConfig{{Rule: "fitzhugh-nagumo", Init: []float64{-1.2, -0.6}}},
			Edges:      []GroupConfig{{Rule: "diffusion", Params: map[string]float64{"k": 0.1}}},
			Integrator: "rk4", Dt: 0.05, Duration: 200.0, Jitter: 0.5, Seed: 11, SaveEvery: 4,
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(family, preset string) *Config {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	cfg, ok := familyPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(family string) []string {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(familyPresets))
	for name := range familyPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListFamilies() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
