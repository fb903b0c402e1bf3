package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt         = 0.01
	DefaultDuration   = 10.0
	DefaultTolerance  = 1e-6
	DefaultVertices   = 10
	DefaultIntegrator = "rk4"
)

var validate = validator.New()

// Config describes a network, its local rules and how to integrate it.
type Config struct {
	Name       string        `yaml:"name" validate:"omitempty,max=64"`
	Graph      GraphConfig   `yaml:"graph"`
	Vertices   []GroupConfig `yaml:"vertices" validate:"required,min=1,dive"`
	Edges      []GroupConfig `yaml:"edges" validate:"omitempty,dive"`
	Integrator string        `yaml:"integrator" validate:"required,oneof=euler rk4 rk45"`
	Dt         float64       `yaml:"dt" validate:"gt=0"`
	Duration   float64       `yaml:"duration" validate:"gt=0"`
	Tolerance  float64       `yaml:"tolerance" validate:"gte=0"`
	Adaptive   bool          `yaml:"adaptive"`
	Seed       int64         `yaml:"seed"`
	Jitter     float64       `yaml:"jitter" validate:"gte=0"`
	SaveEvery  int           `yaml:"save_every" validate:"gte=0"`
	Parallel   bool          `yaml:"parallel"`
	Workers    int           `yaml:"workers" validate:"gte=0,lte=256"`
}

type GraphConfig struct {
	Type     string  `yaml:"type" validate:"required,oneof=path ring star complete grid random explicit"`
	Vertices int     `yaml:"vertices" validate:"gte=0"`
	Directed bool    `yaml:"directed"`
	Edges    [][]int `yaml:"edges,omitempty" validate:"omitempty,dive,len=2"`
	P        float64 `yaml:"p,omitempty" validate:"gte=0,lte=1"`
	Seed     int64   `yaml:"seed,omitempty"`
	Rows     int     `yaml:"rows,omitempty" validate:"gte=0"`
	Cols     int     `yaml:"cols,omitempty" validate:"gte=0"`
}

// GroupConfig assigns one rule to a run of consecutive vertices or edges.
// A zero count takes every remaining entity. Init is the initial state of
// each entity in the group and is repeated for all of them.
type GroupConfig struct {
	Rule   string             `yaml:"rule" validate:"required"`
	Count  int                `yaml:"count,omitempty" validate:"gte=0"`
	Params map[string]float64 `yaml:"params,omitempty"`
	Init   []float64          `yaml:"init,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "kuramoto",
		Graph:      GraphConfig{Type: "ring", Vertices: DefaultVertices},
		Vertices:   []GroupConfig{{Rule: "kuramoto"}},
		Edges:      []GroupConfig{{Rule: "kuramoto"}},
		Integrator: DefaultIntegrator,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Tolerance:  DefaultTolerance,
		Jitter:     1.0,
		SaveEvery:  1,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Vertices, cfg.Edges = nil, nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks field ranges and the parameters each graph type needs.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}

	g := c.Graph
	switch g.Type {
	case "grid":
		if g.Rows < 1 || g.Cols < 1 {
			return fmt.Errorf("Graph: grid needs rows and cols, got %dx%d", g.Rows, g.Cols)
		}
	case "explicit":
		if g.Vertices < 1 {
			return errors.New("Graph: explicit graph needs a vertex count")
		}
	default:
		if g.Vertices < 1 {
			return fmt.Errorf("Graph: %s graph needs a vertex count", g.Type)
		}
	}
	if c.Adaptive && c.Tolerance <= 0 {
		return errors.New("Tolerance: must be positive for adaptive stepping")
	}
	return nil
}

// NumVertices is the vertex count the graph section describes.
func (c *Config) NumVertices() int {
	if c.Graph.Type == "grid" {
		return c.Graph.Rows * c.Graph.Cols
	}
	return c.Graph.Vertices
}

// Clone copies c deeply enough that the copy can be edited freely.
func (c *Config) Clone() *Config {
	out := *c
	out.Graph.Edges = make([][]int, len(c.Graph.Edges))
	for i, e := range c.Graph.Edges {
		out.Graph.Edges[i] = append([]int(nil), e...)
	}
	out.Vertices = cloneGroups(c.Vertices)
	out.Edges = cloneGroups(c.Edges)
	return &out
}

func cloneGroups(groups []GroupConfig) []GroupConfig {
	if groups == nil {
		return nil
	}
	out := make([]GroupConfig, len(groups))
	for i, g := range groups {
		out[i] = g
		out[i].Init = append([]float64(nil), g.Init...)
		if g.Params != nil {
			out[i].Params = make(map[string]float64, len(g.Params))
			for k, v := range g.Params {
				out[i].Params[k] = v
			}
		}
	}
	return out
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	for _, e := range validationErrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, e.Param())
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s", field, e.Param())
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, e.Param())
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, e.Param())
		case "len":
			return fmt.Errorf("%s: must have exactly %s entries", field, e.Param())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}
