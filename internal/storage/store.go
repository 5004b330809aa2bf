package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var ErrCorrupt = errors.New("storage: corrupt run data")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type BodyMeta struct {
	Name string  `json:"name"`
	Mass float64 `json:"mass"`
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Scenario    string             `json:"scenario"`
	Model       string             `json:"model"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	G           float64            `json:"g"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Steps       int                `json:"steps"`
	Bodies      []BodyMeta         `json:"bodies"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

// RunInfo describes where a run's initial state came from.
type RunInfo struct {
	Scenario string
	Seed     int64
}

// Save writes metadata.json and trajectory.csv into a fresh run directory.
func (s *Store) Save(info RunInfo, cfg dynamo.Config, result *dynamo.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", info.Scenario, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Scenario:    info.Scenario,
		Model:       result.Model,
		Timestamp:   now,
		Seed:        info.Seed,
		G:           cfg.G,
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		Steps:       result.StepsTaken,
		EnergyDrift: finite(result.EnergyDrift),
		Metrics:     make(map[string]float64, len(result.Metrics)),
	}
	for _, b := range result.Initial.Bodies {
		meta.Bodies = append(meta.Bodies, BodyMeta{Name: b.Name, Mass: b.Mass})
	}
	// encoding/json rejects Inf and NaN
	for k, v := range result.Metrics {
		meta.Metrics[k] = finite(v)
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, result); err != nil {
		return "", err
	}
	return runID, nil
}

// WriteCSV writes a header of step, time and name.x, name.y, name.vx,
// name.vy, name.ax, name.ay per body, then the initial state as step 0 and
// one row per snapshot. Floats use the shortest exact representation.
func WriteCSV(out io.Writer, result *dynamo.Result) error {
	w := csv.NewWriter(out)

	header := []string{"step", "time"}
	for _, b := range result.Initial.Bodies {
		for _, col := range []string{"x", "y", "vx", "vy", "ax", "ay"} {
			header = append(header, b.Name+"."+col)
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	writeRow := func(snap dynamo.Snapshot) error {
		row := []string{strconv.Itoa(snap.Step), formatFloat(snap.Time)}
		for _, b := range snap.Bodies {
			for _, v := range []float64{b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y, b.Acc.X, b.Acc.Y} {
				row = append(row, formatFloat(v))
			}
		}
		return w.Write(row)
	}

	if err := writeRow(result.Initial); err != nil {
		return err
	}
	for _, snap := range result.Trajectory {
		if err := writeRow(snap); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, runID, err)
	}

	return &meta, nil
}

// LoadResult rebuilds the initial state and trajectory of a saved run.
func (s *Store) LoadResult(runID string) (*RunMetadata, *dynamo.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, runID, err)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("%w: %s: no initial state", ErrCorrupt, runID)
	}

	want := 2 + 6*len(meta.Bodies)
	snaps := make([]dynamo.Snapshot, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != want {
			return nil, nil, fmt.Errorf("%w: %s: row %d has %d fields, want %d", ErrCorrupt, runID, i+1, len(record), want)
		}
		snap, err := parseRow(record, meta.Bodies)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: row %d: %v", ErrCorrupt, runID, i+1, err)
		}
		snaps = append(snaps, snap)
	}

	result := &dynamo.Result{
		Model:       meta.Model,
		Initial:     snaps[0],
		Trajectory:  dynamo.Trajectory(snaps[1:]),
		Metrics:     meta.Metrics,
		EnergyDrift: meta.EnergyDrift,
		StepsTaken:  len(snaps) - 1,
	}
	return meta, result, nil
}

func parseRow(record []string, bodies []BodyMeta) (dynamo.Snapshot, error) {
	step, err := strconv.Atoi(record[0])
	if err != nil {
		return dynamo.Snapshot{}, err
	}
	t, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return dynamo.Snapshot{}, err
	}

	snap := dynamo.Snapshot{Step: step, Time: t, Bodies: make([]dynamo.Body, len(bodies))}
	for i, meta := range bodies {
		var v [6]float64
		for k := range v {
			v[k], err = strconv.ParseFloat(record[2+6*i+k], 64)
			if err != nil {
				return dynamo.Snapshot{}, err
			}
		}
		snap.Bodies[i] = dynamo.Body{
			Name: meta.Name,
			Mass: meta.Mass,
			Pos:  r2.Vec{X: v[0], Y: v[1]},
			Vel:  r2.Vec{X: v[2], Y: v[3]},
			Acc:  r2.Vec{X: v[4], Y: v[5]},
		}
	}
	return snap, nil
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

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func finite(v float64) float64 {
	switch {
	case math.IsNaN(v), math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}
