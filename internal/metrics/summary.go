package metrics

import (
	"github.com/einslab/sketchphys/internal/engine"
	"github.com/einslab/sketchphys/internal/pulley"
)

// Summarize runs the standard metric set over a recorded result: energy
// drift over the energy series, rope drift and constraint stability over
// the rope-error series.
func Summarize(res *engine.Result) map[string]float64 {
	energy := NewEnergyDrift()
	for _, v := range res.Energy {
		energy.Observe(v)
	}

	rope := NewRopeDrift()
	stable := NewStability(pulley.PositionTolerance)
	for _, v := range res.RopeError {
		rope.Observe(v)
		stable.Observe(v)
	}

	return map[string]float64{
		energy.Name(): energy.Value(),
		rope.Name():   rope.Value(),
		stable.Name(): stable.Value(),
	}
}
