package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/einslab/sketchphys/internal/engine"
	"github.com/einslab/sketchphys/internal/geom"
)

// Store persists simulation runs on disk, one directory per run holding
// metadata.json and frames.csv.
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
	ID           string    `json:"id"`
	Scene        string    `json:"scene"`
	Timestamp    time.Time `json:"timestamp"`
	TimeStepS    float64   `json:"time_step_s"`
	Duration     float64   `json:"duration"`
	BodyIDs      []string  `json:"body_ids"`
	RopeDriftMax float64   `json:"rope_drift_max"`
	EnergyStart  float64   `json:"energy_start"`
	EnergyEnd    float64   `json:"energy_end"`
}

// Save writes a run directory and returns its id. The frame CSV carries
// one column group (x, y, vx, vy) per body, in BodyIDs order, plus the
// energy and rope-error series.
func (s *Store) Save(sceneName string, timeStep, duration float64, result *engine.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", sceneName, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Scene:        sceneName,
		Timestamp:    time.Now(),
		TimeStepS:    timeStep,
		Duration:     duration,
		RopeDriftMax: result.RopeDriftMax,
	}
	if len(result.Frames) > 0 {
		for _, b := range result.Frames[0].Bodies {
			meta.BodyIDs = append(meta.BodyIDs, b.ID)
		}
	}
	if len(result.Energy) > 0 {
		meta.EnergyStart = result.Energy[0]
		meta.EnergyEnd = result.Energy[len(result.Energy)-1]
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if len(result.Frames) == 0 {
		return runID, nil
	}

	header := []string{"time"}
	for _, id := range meta.BodyIDs {
		header = append(header, id+"_x", id+"_y", id+"_vx", id+"_vy")
	}
	header = append(header, "energy", "rope_error")
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i, frame := range result.Frames {
		row := []string{fmtFloat(result.Times[i])}
		for _, b := range frame.Bodies {
			row = append(row,
				fmtFloat(b.PositionM.X), fmtFloat(b.PositionM.Y),
				fmtFloat(b.VelocityMS.X), fmtFloat(b.VelocityMS.Y))
		}
		row = append(row, fmtFloat(result.Energy[i]), fmtFloat(result.RopeError[i]))
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

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

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// RunSeries is a loaded frames.csv in column-accessible form.
type RunSeries struct {
	Times     []float64
	Bodies    map[string][]geom.Vec2 // positions per body
	Energy    []float64
	RopeError []float64
}

// LoadSeries reads a run's frame data back. Malformed rows are skipped.
func (s *Store) LoadSeries(runID string) (*RunSeries, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoFrames, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	series := &RunSeries{Bodies: make(map[string][]geom.Vec2)}
	if len(records) < 2 {
		return series, nil
	}

	wantCols := 1 + 4*len(meta.BodyIDs) + 2
	for _, record := range records[1:] {
		if len(record) < wantCols {
			continue
		}
		vals := make([]float64, len(record))
		ok := true
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}
		series.Times = append(series.Times, vals[0])
		for bi, id := range meta.BodyIDs {
			series.Bodies[id] = append(series.Bodies[id], geom.V(vals[1+bi*4], vals[2+bi*4]))
		}
		series.Energy = append(series.Energy, vals[wantCols-2])
		series.RopeError = append(series.RopeError, vals[wantCols-1])
	}

	return series, nil
}
