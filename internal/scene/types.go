// Package scene defines the physics scene schema shared with the upstream
// diagram parser and the downstream renderer: world settings, rigid
// bodies, constraints, and the frozen image-to-meters mapping.
package scene

import (
	"math"

	"github.com/einslab/sketchphys/internal/geom"
)

// SchemaVersion is the scene schema version this package reads and writes.
const SchemaVersion = "0.4.0"

// DefaultHalfExtentM is the collider half-extent substituted for missing
// or non-positive collider sizes.
const DefaultHalfExtentM = 0.05

// BodyType is the explicit role of a body. The normalizer trusts this
// field alone; it never guesses a role from the body id.
type BodyType string

const (
	Static    BodyType = "static"
	Dynamic   BodyType = "dynamic"
	Kinematic BodyType = "kinematic"
)

// World holds the global simulation settings.
type World struct {
	// GravityMS2 is the positive magnitude of gravitational acceleration,
	// applied along -y.
	GravityMS2 float64 `json:"gravity_m_s2"`
	// AirResistanceCoeff is the linear drag coefficient (F = -c v).
	AirResistanceCoeff float64 `json:"air_resistance_coeff,omitempty"`
	// TimeStepS is the fixed integrator timestep in seconds.
	TimeStepS float64 `json:"time_step_s"`
	Seed      *int64  `json:"seed,omitempty"`
}

type Material struct {
	Name     string  `json:"name,omitempty"`
	Friction float64 `json:"friction"`
	// Restitution is optional in parsed scenes; the normalizer fills in
	// the simulation default (1, perfectly elastic) when absent.
	Restitution *float64 `json:"restitution,omitempty"`
}

type ColliderKind string

const (
	Circle    ColliderKind = "circle"
	Rectangle ColliderKind = "rectangle"
	Polygon   ColliderKind = "polygon"
)

// Collider describes a body's shape in meters. Exactly the fields for its
// kind are meaningful; sizes are replaced with DefaultHalfExtentM-based
// fallbacks when non-positive.
type Collider struct {
	Kind     ColliderKind `json:"type"`
	RadiusM  float64      `json:"radius_m,omitempty"`
	WidthM   float64      `json:"width_m,omitempty"`
	HeightM  float64      `json:"height_m,omitempty"`
	Vertices []geom.Vec2  `json:"vertices,omitempty"` // body-relative, meters
}

type Body struct {
	ID                  string     `json:"id"`
	Type                BodyType   `json:"type"`
	MassKg              float64    `json:"mass_kg,omitempty"`
	PositionM           geom.Vec2  `json:"position_m"`
	VelocityMS          *geom.Vec2 `json:"velocity_m_s,omitempty"`
	AngleRad            float64    `json:"angle_rad,omitempty"`
	AngularVelocityRadS float64    `json:"angular_velocity_rad_s,omitempty"`
	Collider            *Collider  `json:"collider,omitempty"`
	Material            *Material  `json:"material,omitempty"`
}

// Mapping is the frozen relationship between the source image's pixel grid
// and physical meters, established once at scene creation. OriginPx is
// where meter (0,0) sits in the image; ScaleMPerPx converts pixel spans to
// meters. Image pixel Y grows downward, physical Y grows upward.
type Mapping struct {
	OriginPx    geom.Vec2 `json:"origin_px"`
	ScaleMPerPx float64   `json:"scale_m_per_px"`
}

func (m *Mapping) Valid() bool {
	return m != nil && m.ScaleMPerPx > 0 &&
		isFinite(m.ScaleMPerPx) && m.OriginPx.IsFinite()
}

// NormalizationMeta is the write-only diagnostic block the normalizer
// leaves on a scene it adjusted.
type NormalizationMeta struct {
	TranslationM      geom.Vec2            `json:"translation_m"`
	Scale             float64              `json:"scale,omitempty"`
	ContactSeparation map[string]geom.Vec2 `json:"contact_separation,omitempty"`
}

type Meta struct {
	Normalization *NormalizationMeta `json:"normalization,omitempty"`
}

// Scene is the complete physics description at a point in time. All core
// operations treat it as an immutable value: they deep-clone and return a
// new Scene, never mutate the input.
type Scene struct {
	Version     string      `json:"version,omitempty"`
	World       World       `json:"world"`
	Bodies      []Body      `json:"bodies"`
	Constraints Constraints `json:"constraints"`
	Mapping     *Mapping    `json:"mapping,omitempty"`
	Meta        *Meta       `json:"meta,omitempty"`
	Notes       string      `json:"notes,omitempty"`
}

// Body returns the body with the given id, or nil.
func (s *Scene) Body(id string) *Body {
	for i := range s.Bodies {
		if s.Bodies[i].ID == id {
			return &s.Bodies[i]
		}
	}
	return nil
}

func (s *Scene) BodyIDs() map[string]bool {
	ids := make(map[string]bool, len(s.Bodies))
	for i := range s.Bodies {
		ids[s.Bodies[i].ID] = true
	}
	return ids
}

// Movable reports whether the body may be repositioned by the normalizer.
// Static and kinematic bodies are ground truth from the diagram.
func (b *Body) Movable() bool {
	return b.Type != Static && b.Type != Kinematic
}

// Velocity returns the body velocity, zero when unset.
func (b *Body) Velocity() geom.Vec2 {
	if b.VelocityMS == nil {
		return geom.Vec2{}
	}
	return *b.VelocityMS
}

// AABB returns the world-space axis-aligned bounding box of the body's
// collider at its current position and angle. A missing or degenerate
// collider falls back to a DefaultHalfExtentM square.
func (b *Body) AABB() geom.AABB {
	hx, hy := b.halfExtents()
	if b.Collider != nil && b.Collider.Kind == Polygon && len(b.Collider.Vertices) > 0 {
		return b.polygonAABB()
	}
	return geom.AABB{
		Min: geom.V(b.PositionM.X-hx, b.PositionM.Y-hy),
		Max: geom.V(b.PositionM.X+hx, b.PositionM.Y+hy),
	}
}

func (b *Body) halfExtents() (hx, hy float64) {
	c := b.Collider
	if c == nil {
		return DefaultHalfExtentM, DefaultHalfExtentM
	}
	switch c.Kind {
	case Circle:
		r := c.RadiusM
		if !(r > 0) || !isFinite(r) {
			r = DefaultHalfExtentM
		}
		return r, r
	case Rectangle:
		w, h := c.WidthM/2, c.HeightM/2
		if !(w > 0) || !isFinite(w) {
			w = DefaultHalfExtentM
		}
		if !(h > 0) || !isFinite(h) {
			h = DefaultHalfExtentM
		}
		if b.AngleRad != 0 {
			cos := math.Abs(math.Cos(b.AngleRad))
			sin := math.Abs(math.Sin(b.AngleRad))
			return w*cos + h*sin, w*sin + h*cos
		}
		return w, h
	default:
		return DefaultHalfExtentM, DefaultHalfExtentM
	}
}

func (b *Body) polygonAABB() geom.AABB {
	box := geom.EmptyAABB()
	cos, sin := math.Cos(b.AngleRad), math.Sin(b.AngleRad)
	for _, v := range b.Collider.Vertices {
		if !v.IsFinite() {
			continue
		}
		p := geom.V(
			b.PositionM.X+v.X*cos-v.Y*sin,
			b.PositionM.Y+v.X*sin+v.Y*cos,
		)
		box = box.ExtendPoint(p)
	}
	if box.IsEmpty() {
		return geom.AABB{
			Min: geom.V(b.PositionM.X-DefaultHalfExtentM, b.PositionM.Y-DefaultHalfExtentM),
			Max: geom.V(b.PositionM.X+DefaultHalfExtentM, b.PositionM.Y+DefaultHalfExtentM),
		}
	}
	return box
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
