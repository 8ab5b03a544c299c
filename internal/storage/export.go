package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/einslab/sketchphys/internal/geom"
)

// ExportData is the flat JSON form of a stored run.
type ExportData struct {
	ID           string                 `json:"id"`
	Scene        string                 `json:"scene"`
	TimeStepS    float64                `json:"time_step_s"`
	Duration     float64                `json:"duration"`
	Steps        int                    `json:"steps"`
	Times        []float64              `json:"times"`
	Bodies       map[string][]geom.Vec2 `json:"bodies"`
	Energy       []float64              `json:"energy"`
	RopeError    []float64              `json:"rope_error"`
	RopeDriftMax float64                `json:"rope_drift_max"`
}

func exportData(meta *RunMetadata, series *RunSeries) ExportData {
	return ExportData{
		ID:           meta.ID,
		Scene:        meta.Scene,
		TimeStepS:    meta.TimeStepS,
		Duration:     meta.Duration,
		Steps:        len(series.Times),
		Times:        series.Times,
		Bodies:       series.Bodies,
		Energy:       series.Energy,
		RopeError:    series.RopeError,
		RopeDriftMax: meta.RopeDriftMax,
	}
}

// ExportJSON writes a stored run as indented JSON.
func ExportJSON(w io.Writer, meta *RunMetadata, series *RunSeries) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportData(meta, series))
}

// ExportJSONFile writes a stored run to a file.
func ExportJSONFile(path string, meta *RunMetadata, series *RunSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ExportJSON(f, meta, series)
}
