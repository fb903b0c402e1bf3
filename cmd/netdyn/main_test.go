package main

import (
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/netdyn/internal/config"
	"github.com/san-kum/netdyn/internal/dynamo"
)

func newNetworkCmd(t *testing.T) *cobra.Command {
	t.Helper()
	configFile, preset = "", ""
	cmd := &cobra.Command{Use: "test"}
	addNetworkFlags(cmd)
	return cmd
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		flags   map[string]string
		check   func(t *testing.T, cfg *config.Config)
		wantErr bool
	}{
		{
			name: "default",
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Name != "kuramoto" || cfg.Dt != config.DefaultDt {
					t.Errorf("unexpected default %+v", cfg)
				}
			},
		},
		{
			name:  "preset",
			flags: map[string]string{"preset": "swing/star"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Name != "swing-star" || cfg.Dt != 0.005 {
					t.Errorf("preset not applied: %+v", cfg)
				}
			},
		},
		{
			name:  "explicit flags override preset",
			flags: map[string]string{"preset": "swing/star", "dt": "0.002", "integrator": "rk45", "jitter": "0"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Dt != 0.002 || cfg.Integrator != "rk45" || cfg.Jitter != 0 {
					t.Errorf("flags not applied: %+v", cfg)
				}
				if cfg.Duration != 30 {
					t.Errorf("unset flag must keep the preset value, got %v", cfg.Duration)
				}
			},
		},
		{name: "malformed preset", flags: map[string]string{"preset": "swing"}, wantErr: true},
		{name: "unknown preset", flags: map[string]string{"preset": "swing/mesh"}, wantErr: true},
		{name: "invalid override", flags: map[string]string{"integrator": "leapfrog"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newNetworkCmd(t)
			for k, v := range tt.flags {
				if err := cmd.Flags().Set(k, v); err != nil {
					t.Fatal(err)
				}
			}
			cfg, err := loadConfig(cmd)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.yaml")
	cfg := config.GetPreset("diffusion", "grid")
	if err := config.Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	cmd := newNetworkCmd(t)
	if err := cmd.Flags().Set("config", path); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("time", "3"); err != nil {
		t.Fatal(err)
	}
	loaded, err := loadConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Graph.Type != "grid" || loaded.Duration != 3 {
		t.Errorf("unexpected config %+v", loaded)
	}

	if err := cmd.Flags().Set("preset", "swing/star"); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(cmd); err == nil {
		t.Error("config and preset together should be rejected")
	}
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("debug", true)
	if err != nil {
		t.Fatal(err)
	}
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}
	if l, _ = newLogger("warn", false); l.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be filtered at warn")
	}
	if _, err := newLogger("loud", false); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestDispersion(t *testing.T) {
	if got := dispersion(dynamo.State{1, 1, 1}); got != 0 {
		t.Errorf("equal components have no dispersion, got %v", got)
	}
	if got := dispersion(dynamo.State{0, 2}); math.Abs(got-1) > 1e-15 {
		t.Errorf("dispersion = %v, want 1", got)
	}
}

func TestFormatParams(t *testing.T) {
	if got := formatParams(map[string]float64{"omega": 1, "k": 0.5}); got != "k=0.5 omega=1" {
		t.Errorf("got %q", got)
	}
}

func TestKuramotoRing(t *testing.T) {
	sys, err := kuramotoRing(50)
	if err != nil {
		t.Fatal(err)
	}
	if sys.StateDim() != 50 || sys.NumEdges() != 50 {
		t.Errorf("unexpected ring %d/%d", sys.StateDim(), sys.NumEdges())
	}
}

func TestMain(m *testing.M) {
	logger = slog.New(slog.DiscardHandler)
	os.Exit(m.Run())
}
