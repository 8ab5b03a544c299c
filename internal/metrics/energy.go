// Package metrics computes per-run diagnostic figures from the recorded
// simulation series: energy drift, rope-length drift, and constraint
// stability. Metrics observe one sample per tick and report a single
// value at the end.
package metrics

import "math"

type Metric interface {
	Name() string
	Observe(v float64)
	Value() float64
	Reset()
}

// EnergyDrift tracks the worst relative deviation of total mechanical
// energy from its first observed sample.
type EnergyDrift struct {
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift { return &EnergyDrift{} }

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(v float64) {
	if e.samples == 0 {
		e.initial = v
	}
	e.samples++
	if e.initial != 0 {
		drift := math.Abs(v-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// RopeDrift tracks the worst rope-length violation seen.
type RopeDrift struct {
	max float64
}

func NewRopeDrift() *RopeDrift { return &RopeDrift{} }

func (r *RopeDrift) Name() string { return "rope_drift" }

func (r *RopeDrift) Observe(v float64) {
	r.max = math.Max(r.max, math.Abs(v))
}

func (r *RopeDrift) Value() float64 { return r.max }

func (r *RopeDrift) Reset() { r.max = 0 }
