// Package pulley patches the one constraint a generic rigid-body
// integrator lacks: the ideal fixed pulley. Two rope segments share a
// world anchor and their combined length is conserved while each segment
// varies. The solver runs once per tick, after integration, and projects
// positions and velocities back onto the rope-length manifold.
package pulley

import (
	"fmt"
	"math"

	"github.com/einslab/sketchphys/internal/geom"
	"github.com/einslab/sketchphys/internal/scene"
)

const (
	// PositionTolerance is the rope-length error below which no
	// positional correction is applied.
	PositionTolerance = 1e-4
	// VelocityTolerance is the rope-speed deviation below which no
	// velocity correction is applied.
	VelocityTolerance = 1e-5
)

// BodyState is the minimal view of an integrator body the solver needs:
// post-integration position and velocity, writable, plus mass. Static
// bodies report an infinite (or non-positive) mass and are never moved.
type BodyState interface {
	Position() geom.Vec2
	SetPosition(geom.Vec2)
	Velocity() geom.Vec2
	SetVelocity(geom.Vec2)
	Mass() float64
}

type ropeState struct {
	id          string
	bodyA       BodyState
	bodyB       BodyState
	anchor      geom.Vec2
	totalLength float64
}

// Solver holds the registered pulley constraints of one scene.
type Solver struct {
	ropes    []ropeState
	warnings []string
}

// New registers every ideal_fixed_pulley constraint of the scene. The
// lookup resolves a body id to the integrator's live body state; dangling
// references are skipped with a warning. Total rope length is the
// declared rope_length_m, or the sum of the two initial anchor distances
// when undeclared.
func New(s *scene.Scene, lookup func(id string) BodyState) *Solver {
	sv := &Solver{}
	for _, c := range s.Constraints {
		p, ok := c.(*scene.IdealFixedPulley)
		if !ok {
			continue
		}
		a := lookup(p.BodyA)
		b := lookup(p.BodyB)
		if a == nil || b == nil {
			sv.warnings = append(sv.warnings,
				fmt.Sprintf("pulley %q references a missing body; skipped", p.ID))
			continue
		}
		total := p.RopeLengthM
		if !(total > 0) || !isFinite(total) {
			total = a.Position().Dist(p.PulleyAnchorM) + b.Position().Dist(p.PulleyAnchorM)
		}
		sv.ropes = append(sv.ropes, ropeState{
			id:          p.ID,
			bodyA:       a,
			bodyB:       b,
			anchor:      p.PulleyAnchorM,
			totalLength: total,
		})
	}
	return sv
}

// Warnings returns setup warnings (dangling references).
func (s *Solver) Warnings() []string { return s.warnings }

// Count returns the number of registered pulleys.
func (s *Solver) Count() int { return len(s.ropes) }

// Enforce applies one corrective projection per pulley: a mass-weighted
// positional shift along each anchor direction restoring
// distA + distB = totalLength, then removal of the velocity components
// inconsistent with a single shared rope speed. O(1) per pulley; this is
// a Gauss-Seidel style projection, not a full constraint solve.
func (s *Solver) Enforce() {
	for i := range s.ropes {
		s.ropes[i].enforce()
	}
}

func (r *ropeState) enforce() {
	posA, posB := r.bodyA.Position(), r.bodyB.Position()
	distA := posA.Dist(r.anchor)
	distB := posB.Dist(r.anchor)
	if distA < 1e-9 || distB < 1e-9 {
		// A body sitting on the anchor has no defined rope direction.
		return
	}
	dirA := posA.Sub(r.anchor).Scale(1 / distA)
	dirB := posB.Sub(r.anchor).Scale(1 / distB)

	shareA, shareB := shares(r.bodyA.Mass(), r.bodyB.Mass())
	if shareA == 0 && shareB == 0 {
		return
	}

	if err := distA + distB - r.totalLength; math.Abs(err) >= PositionTolerance {
		r.bodyA.SetPosition(posA.Add(dirA.Scale(-err * shareA)))
		r.bodyB.SetPosition(posB.Add(dirB.Scale(-err * shareB)))
	}

	// An inextensible rope pays out on one side exactly what it takes up
	// on the other: the projected speeds must sum to zero.
	velA, velB := r.bodyA.Velocity(), r.bodyB.Velocity()
	dev := velA.Dot(dirA) + velB.Dot(dirB)
	if math.Abs(dev) <= VelocityTolerance {
		return
	}
	switch {
	case shareA == 0:
		r.bodyB.SetVelocity(velB.Sub(dirB.Scale(dev)))
	case shareB == 0:
		r.bodyA.SetVelocity(velA.Sub(dirA.Scale(dev)))
	default:
		r.bodyA.SetVelocity(velA.Sub(dirA.Scale(dev / 2)))
		r.bodyB.SetVelocity(velB.Sub(dirB.Scale(dev / 2)))
	}
}

// shares splits a correction between the two bodies so the heavier one
// moves less. Immovable bodies (non-positive or infinite mass) take no
// share; their partner takes all of it.
func shares(massA, massB float64) (shareA, shareB float64) {
	movableA := massA > 0 && !math.IsInf(massA, 1)
	movableB := massB > 0 && !math.IsInf(massB, 1)
	switch {
	case movableA && movableB:
		total := massA + massB
		return massB / total, massA / total
	case movableA:
		return 1, 0
	case movableB:
		return 0, 1
	default:
		return 0, 0
	}
}

// MaxError returns the largest current rope-length violation across all
// registered pulleys, for diagnostics.
func (s *Solver) MaxError() float64 {
	maxErr := 0.0
	for i := range s.ropes {
		r := &s.ropes[i]
		err := math.Abs(r.bodyA.Position().Dist(r.anchor) + r.bodyB.Position().Dist(r.anchor) - r.totalLength)
		if err > maxErr {
			maxErr = err
		}
	}
	return maxErr
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
