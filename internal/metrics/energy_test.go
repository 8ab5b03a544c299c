package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/einslab/sketchphys/internal/engine"
	"github.com/einslab/sketchphys/internal/scene"
)

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift()

	m.Observe(100)
	if m.Value() != 0 {
		t.Errorf("single sample drift = %v", m.Value())
	}

	m.Observe(101)
	m.Observe(99)
	m.Observe(100.5)
	if math.Abs(m.Value()-0.01) > 1e-12 {
		t.Errorf("drift = %v, want 0.01", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("reset did not clear drift")
	}
}

func TestEnergyDriftZeroBaseline(t *testing.T) {
	m := NewEnergyDrift()
	m.Observe(0)
	m.Observe(5)
	// A zero baseline has no meaningful relative drift.
	if m.Value() != 0 {
		t.Errorf("drift = %v", m.Value())
	}
}

func TestRopeDrift(t *testing.T) {
	m := NewRopeDrift()
	m.Observe(1e-5)
	m.Observe(-3e-4)
	m.Observe(2e-5)
	if math.Abs(m.Value()-3e-4) > 1e-15 {
		t.Errorf("rope drift = %v, want 3e-4", m.Value())
	}
}

func TestStability(t *testing.T) {
	m := NewStability(1.0)
	if m.Value() != 1.0 {
		t.Errorf("no samples should report 1.0, got %v", m.Value())
	}

	m.Observe(0.5)
	m.Observe(2.0)
	m.Observe(-0.3)
	m.Observe(1.5)
	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("stability = %v, want 0.5", m.Value())
	}
}

func TestSummarize(t *testing.T) {
	e := engine.New(scene.ExamplePulley())
	res, err := e.Run(context.Background(), 0.5)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	summary := Summarize(res)
	for _, name := range []string{"energy_drift", "rope_drift", "stability"} {
		if _, ok := summary[name]; !ok {
			t.Errorf("summary missing %q", name)
		}
	}
	if summary["stability"] < 0 || summary["stability"] > 1 {
		t.Errorf("stability = %v", summary["stability"])
	}
	if summary["rope_drift"] != res.RopeDriftMax {
		t.Errorf("rope_drift = %v, want %v", summary["rope_drift"], res.RopeDriftMax)
	}
}
