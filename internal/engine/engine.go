// Package engine is a small reference rigid-body stepper used by the CLI
// to exercise the scene core end to end: semi-implicit Euler over the
// dynamic bodies with gravity, linear drag, distance-style constraints,
// and AABB collision against static geometry. The pulley solver runs
// after every step, per the required tick ordering. The transform and
// normalizer packages never depend on it.
package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/einslab/sketchphys/internal/geom"
	"github.com/einslab/sketchphys/internal/pulley"
	"github.com/einslab/sketchphys/internal/scene"
)

const defaultTimeStepS = 0.016

// Body is the live simulation state of one scene body.
type Body struct {
	ID          string
	Type        scene.BodyType
	massKg      float64
	pos         geom.Vec2
	vel         geom.Vec2
	angle       float64
	restitution float64
	friction    float64
	// shape carries the collider for AABB queries; its position is
	// synced before each query.
	shape scene.Body
}

func (b *Body) Position() geom.Vec2     { return b.pos }
func (b *Body) SetPosition(p geom.Vec2) { b.pos = p }
func (b *Body) Velocity() geom.Vec2     { return b.vel }
func (b *Body) SetVelocity(v geom.Vec2) { b.vel = v }
func (b *Body) Angle() float64          { return b.angle }

// Mass reports +Inf for non-dynamic bodies so constraint code never
// moves them.
func (b *Body) Mass() float64 {
	if b.Type != scene.Dynamic {
		return math.Inf(1)
	}
	return b.massKg
}

func (b *Body) dynamic() bool { return b.Type == scene.Dynamic }

// AABB returns the body's collider box at its current position.
func (b *Body) AABB() geom.AABB {
	b.shape.PositionM = b.pos
	b.shape.AngleRad = b.angle
	return b.shape.AABB()
}

// Engine steps a scene forward in fixed timesteps.
type Engine struct {
	world    scene.World
	bodies   []*Body
	byID     map[string]*Body
	cons     scene.Constraints
	solver   *pulley.Solver
	t        float64
	warnings []string
}

// New builds an engine from a scene. The scene is cloned; stepping never
// touches the caller's value. Undeclared pulley rope lengths are resolved
// from the initial geometry.
func New(s *scene.Scene) *Engine {
	src := s.ResolveRopeLengths()
	e := &Engine{
		world: src.World,
		byID:  make(map[string]*Body, len(src.Bodies)),
		cons:  src.Constraints,
	}
	if !(e.world.TimeStepS > 0) || math.IsNaN(e.world.TimeStepS) {
		e.world.TimeStepS = defaultTimeStepS
	}
	for i := range src.Bodies {
		sb := &src.Bodies[i]
		b := &Body{
			ID:          sb.ID,
			Type:        sb.Type,
			massKg:      sb.MassKg,
			pos:         sb.PositionM,
			vel:         sb.Velocity(),
			angle:       sb.AngleRad,
			restitution: 1,
			shape:       *sb,
		}
		if b.dynamic() && !(b.massKg > 0) {
			e.warnings = append(e.warnings, fmt.Sprintf("dynamic body %q has no mass; using 1 kg", sb.ID))
			b.massKg = 1
		}
		if sb.Material != nil {
			b.friction = sb.Material.Friction
			if sb.Material.Restitution != nil {
				b.restitution = *sb.Material.Restitution
			}
		}
		e.bodies = append(e.bodies, b)
		e.byID[b.ID] = b
	}
	e.solver = pulley.New(src, func(id string) pulley.BodyState {
		b, ok := e.byID[id]
		if !ok {
			return nil
		}
		return b
	})
	e.warnings = append(e.warnings, e.solver.Warnings()...)
	return e
}

func (e *Engine) Warnings() []string { return e.warnings }
func (e *Engine) Time() float64      { return e.t }
func (e *Engine) Bodies() []*Body    { return e.bodies }
func (e *Engine) Body(id string) *Body { return e.byID[id] }

// RopeError is the current worst rope-length violation, for diagnostics.
func (e *Engine) RopeError() float64 { return e.solver.MaxError() }

// Step advances one fixed timestep: forces and integration first, then
// distance constraints and static collisions, and the pulley projection
// last. Rendering reads positions only after Step returns.
func (e *Engine) Step() {
	dt := e.world.TimeStepS

	e.applySprings(dt)

	for _, b := range e.bodies {
		if !b.dynamic() {
			continue
		}
		b.vel.Y -= e.world.GravityMS2 * dt
		if c := e.world.AirResistanceCoeff; c > 0 && b.massKg > 0 {
			b.vel = b.vel.Sub(b.vel.Scale(math.Min(c/b.massKg*dt, 1)))
		}
		b.pos = b.pos.Add(b.vel.Scale(dt))
	}

	e.applyRopes()
	e.collideStatics()
	e.solver.Enforce()

	e.t += dt
}

// Energy returns total mechanical energy (kinetic + gravitational
// potential) of the dynamic bodies.
func (e *Engine) Energy() float64 {
	total := 0.0
	for _, b := range e.bodies {
		if !b.dynamic() {
			continue
		}
		v := b.vel.Len()
		total += 0.5*b.massKg*v*v + b.massKg*e.world.GravityMS2*b.pos.Y
	}
	return total
}

func (e *Engine) applySprings(dt float64) {
	for _, c := range e.cons {
		sp, ok := c.(*scene.Spring)
		if !ok {
			continue
		}
		a, b := e.byID[sp.BodyA], e.byID[sp.BodyB]
		if a == nil || b == nil {
			continue
		}
		pa := a.pos.Add(sp.AnchorA)
		pb := b.pos.Add(sp.AnchorB)
		delta := pb.Sub(pa)
		dist := delta.Len()
		if dist < 1e-9 {
			continue
		}
		dir := delta.Scale(1 / dist)
		force := sp.Stiffness * (dist - sp.RestLengthM)
		relSpeed := b.vel.Sub(a.vel).Dot(dir)
		force += sp.Damping * relSpeed
		if a.dynamic() {
			a.vel = a.vel.Add(dir.Scale(force / a.massKg * dt))
		}
		if b.dynamic() {
			b.vel = b.vel.Sub(dir.Scale(force / b.massKg * dt))
		}
	}
}

// applyRopes clamps rope and distance constraints with a mass-weighted
// positional projection, the same scheme the pulley solver uses for its
// two segments.
func (e *Engine) applyRopes() {
	for _, c := range e.cons {
		var bodyA, bodyB string
		var anchorA, anchorB geom.Vec2
		var length float64
		var taut bool // rope only resists stretch; distance is exact

		switch cc := c.(type) {
		case *scene.Rope:
			bodyA, bodyB = cc.BodyA, cc.BodyB
			anchorA, anchorB = cc.AnchorA, cc.AnchorB
			length = cc.LengthM
			taut = true
		case *scene.Distance:
			bodyA, bodyB = cc.BodyA, cc.BodyB
			anchorA, anchorB = cc.AnchorA, cc.AnchorB
			length = cc.LengthM
		default:
			continue
		}
		if !(length > 0) {
			continue
		}
		a, b := e.byID[bodyA], e.byID[bodyB]
		if a == nil || b == nil {
			continue
		}
		delta := b.pos.Add(anchorB).Sub(a.pos.Add(anchorA))
		dist := delta.Len()
		if dist < 1e-9 {
			continue
		}
		err := dist - length
		if taut && err <= 0 {
			continue
		}
		dir := delta.Scale(1 / dist)
		shareA, shareB := massShares(a, b)
		a.pos = a.pos.Add(dir.Scale(err * shareA))
		b.pos = b.pos.Sub(dir.Scale(err * shareB))
	}
}

func massShares(a, b *Body) (float64, float64) {
	switch {
	case a.dynamic() && b.dynamic():
		total := a.massKg + b.massKg
		return b.massKg / total, a.massKg / total
	case a.dynamic():
		return 1, 0
	case b.dynamic():
		return 0, 1
	default:
		return 0, 0
	}
}

// collideStatics resolves dynamic-vs-static AABB overlap: push out along
// the axis of least penetration and reflect the approaching velocity
// component scaled by restitution.
func (e *Engine) collideStatics() {
	for _, b := range e.bodies {
		if !b.dynamic() {
			continue
		}
		for _, s := range e.bodies {
			if s == b || s.dynamic() {
				continue
			}
			bb, sb := b.AABB(), s.AABB()
			if !bb.Overlaps(sb) {
				continue
			}
			dx, dy := bb.OverlapExtents(sb)
			// Kinetic friction bleeds off tangential speed on contact.
			grip := math.Min(b.friction+s.friction, 1)
			if dx < dy {
				b.vel.Y *= 1 - grip
				if bb.Center().X < sb.Center().X {
					b.pos.X -= dx
					if b.vel.X > 0 {
						b.vel.X = -b.vel.X * b.restitution
					}
				} else {
					b.pos.X += dx
					if b.vel.X < 0 {
						b.vel.X = -b.vel.X * b.restitution
					}
				}
			} else {
				b.vel.X *= 1 - grip
				if bb.Center().Y < sb.Center().Y {
					b.pos.Y -= dy
					if b.vel.Y > 0 {
						b.vel.Y = -b.vel.Y * b.restitution
					}
				} else {
					b.pos.Y += dy
					if b.vel.Y < 0 {
						b.vel.Y = -b.vel.Y * b.restitution
					}
				}
			}
		}
	}
}

// BodyFrame is one body's state in a recorded frame.
type BodyFrame struct {
	ID         string    `json:"id"`
	PositionM  geom.Vec2 `json:"position_m"`
	VelocityMS geom.Vec2 `json:"velocity_m_s"`
	AngleRad   float64   `json:"angle_rad,omitempty"`
}

// Frame is the state of every body at one tick.
type Frame struct {
	T      float64     `json:"t"`
	Bodies []BodyFrame `json:"bodies"`
}

// Result holds a recorded run: per-tick frames plus the energy and
// rope-error series.
type Result struct {
	Frames    []Frame
	Times     []float64
	Energy    []float64
	RopeError []float64
	// RopeDriftMax is the worst post-correction rope-length violation
	// seen over the whole run.
	RopeDriftMax float64
}

// Snapshot records the current body states.
func (e *Engine) Snapshot() Frame {
	f := Frame{T: e.t, Bodies: make([]BodyFrame, len(e.bodies))}
	for i, b := range e.bodies {
		f.Bodies[i] = BodyFrame{ID: b.ID, PositionM: b.pos, VelocityMS: b.vel, AngleRad: b.angle}
	}
	return f
}

// Run simulates for the given duration at the scene timestep, recording
// every tick. Cancelable via ctx; a canceled run returns the frames
// recorded so far along with ctx.Err().
func (e *Engine) Run(ctx context.Context, duration float64) (*Result, error) {
	if !(duration > 0) {
		return nil, fmt.Errorf("engine: duration must be positive, got %f", duration)
	}
	steps := int(duration / e.world.TimeStepS)
	res := &Result{
		Frames: make([]Frame, 0, steps+1),
		Times:  make([]float64, 0, steps+1),
		Energy: make([]float64, 0, steps+1),
	}
	record := func() {
		res.Frames = append(res.Frames, e.Snapshot())
		res.Times = append(res.Times, e.t)
		res.Energy = append(res.Energy, e.Energy())
		err := e.RopeError()
		res.RopeError = append(res.RopeError, err)
		if err > res.RopeDriftMax {
			res.RopeDriftMax = err
		}
	}
	record()
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}
		e.Step()
		record()
	}
	return res, nil
}
