package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/netdyn/internal/config"
	"github.com/san-kum/netdyn/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	configFile   = "config.yaml"
)

// ErrRunNotFound is returned when no run directory matches an ID.
var ErrRunNotFound = errors.New("storage: run not found")

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Adaptive   bool               `json:"adaptive"`
	Graph      string             `json:"graph"`
	Vertices   int                `json:"vertices"`
	Edges      int                `json:"edges"`
	Steps      int                `json:"steps"`
	Symbols    []string           `json:"symbols"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes the run's metadata, the config that produced it and its saved
// states. symbols names the state columns and must match the state length.
func (s *Store) Save(cfg *config.Config, numVertices, numEdges int, symbols []string, result *sim.Result) (string, error) {
	if len(result.States) > 0 && len(result.States[0]) != len(symbols) {
		return "", fmt.Errorf("storage: %d symbols for a state of %d components", len(symbols), len(result.States[0]))
	}

	name := cfg.Name
	if name == "" {
		name = cfg.Graph.Type
	}
	runID := fmt.Sprintf("%s_%s", name, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       name,
		Timestamp:  time.Now(),
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Integrator: cfg.Integrator,
		Adaptive:   cfg.Adaptive,
		Graph:      cfg.Graph.Type,
		Vertices:   numVertices,
		Edges:      numEdges,
		Steps:      result.StepsTaken,
		Symbols:    symbols,
		Metrics:    result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, statesFile), symbols, result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, symbols []string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"time"}, symbols...)); err != nil {
		return err
	}

	row := make([]string, len(symbols)+1)
	for i, state := range result.States {
		row[0] = strconv.FormatFloat(result.Times[i], 'g', -1, 64)
		for k, v := range state {
			row[k+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadConfig returns the config the run was started with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	path := filepath.Join(s.baseDir, runID, configFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return config.Load(path)
}

// LoadStates reads the saved trajectory back together with its column names.
func (s *Store) LoadStates(runID string) (states [][]float64, times []float64, symbols []string, err error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) == 0 {
		return [][]float64{}, []float64{}, nil, nil
	}

	symbols = records[0][1:]
	times = make([]float64, 0, len(records)-1)
	states = make([][]float64, 0, len(records)-1)

	for i, record := range records[1:] {
		values := make([]float64, len(record))
		for k, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("storage: %s row %d column %d: %w", runID, i+1, k, err)
			}
			values[k] = v
		}
		times = append(times, values[0])
		states = append(states, values[1:])
	}

	return states, times, symbols, nil
}

// Column returns the trajectory of one named component.
func Column(states [][]float64, symbols []string, symbol string) ([]float64, error) {
	idx := -1
	for k, s := range symbols {
		if s == symbol {
			idx = k
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("storage: no component named %q", symbol)
	}

	out := make([]float64, len(states))
	for i, state := range states {
		out[i] = state[idx]
	}
	return out, nil
}
