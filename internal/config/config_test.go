package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Graph.Type != "ring" {
		t.Errorf("expected ring graph, got %s", cfg.Graph.Type)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("diffusion", "grid")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.NumVertices() != 64 {
		t.Errorf("expected 64 vertices, got %d", cfg.NumVertices())
	}

	cfg.Vertices[0].Init[0] = -1
	if Presets["diffusion"]["grid"].Vertices[0].Init[0] != 64 {
		t.Error("GetPreset should return an independent copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("kuramoto", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "ring"); cfg != nil {
		t.Error("expected nil for nonexistent family")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("kuramoto")
	if len(presets) != 3 || presets[0] != "complete" {
		t.Errorf("expected sorted kuramoto presets, got %v", presets)
	}
	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent family")
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, family := range ListFamilies() {
		for _, name := range ListPresets(family) {
			t.Run(family+"/"+name, func(t *testing.T) {
				if err := GetPreset(family, name).Validate(); err != nil {
					t.Errorf("preset does not validate: %v", err)
				}
			})
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }, "Config.Dt"},
		{"unknown integrator", func(c *Config) { c.Integrator = "leapfrog" }, "Config.Integrator: must be one of"},
		{"unknown graph", func(c *Config) { c.Graph.Type = "torus" }, "Config.Graph.Type"},
		{"probability above one", func(c *Config) { c.Graph.P = 1.5 }, "Config.Graph.P"},
		{"no vertex groups", func(c *Config) { c.Vertices = nil }, "Config.Vertices: field is required"},
		{"group without rule", func(c *Config) { c.Vertices[0].Rule = "" }, "Rule: field is required"},
		{"bad explicit edge", func(c *Config) {
			c.Graph.Type = "explicit"
			c.Graph.Edges = [][]int{{0, 1, 2}}
		}, "must have exactly 2 entries"},
		{"grid without shape", func(c *Config) { c.Graph.Type = "grid" }, "grid needs rows and cols"},
		{"ring without vertices", func(c *Config) { c.Graph.Vertices = 0 }, "needs a vertex count"},
		{"adaptive without tolerance", func(c *Config) {
			c.Adaptive = true
			c.Tolerance = 0
		}, "Tolerance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.yaml")
	cfg := GetPreset("swing", "star")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Name != "swing-star" || len(loaded.Vertices) != 2 {
		t.Fatalf("unexpected config %+v", loaded)
	}
	if loaded.Vertices[1].Params["inertia"] != 2.0 {
		t.Errorf("params not preserved: %v", loaded.Vertices[1].Params)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.yaml")
	data := `
graph:
  type: explicit
  vertices: 3
  edges: [[0, 1], [1, 2]]
vertices:
  - rule: diffusion
    init: [1]
edges:
  - rule: lowpass
    params: {tau: 0.25}
dt: 0.5
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dt != 0.5 || cfg.Integrator != "rk4" {
		t.Errorf("expected dt override and default integrator, got %v %s", cfg.Dt, cfg.Integrator)
	}
	if len(cfg.Vertices) != 1 || cfg.Vertices[0].Rule != "diffusion" {
		t.Errorf("vertex groups should replace the defaults, got %+v", cfg.Vertices)
	}
	if len(cfg.Graph.Edges) != 2 || cfg.Graph.Edges[1][1] != 2 {
		t.Errorf("unexpected edges %v", cfg.Graph.Edges)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
