package scene

import (
	"encoding/json"
	"fmt"

	"github.com/einslab/sketchphys/internal/geom"
)

// Constraint is the closed set of constraint kinds. Each kind carries
// strongly typed anchor fields so geometric passes can switch on the
// concrete type instead of scanning field names.
type Constraint interface {
	// Kind returns the schema type tag ("rope", "ideal_fixed_pulley", ...).
	Kind() string
	// Name returns the constraint id, possibly empty.
	Name() string
	// BodyRefs returns the referenced body ids in declaration order.
	BodyRefs() []string
	// Clone returns a deep copy.
	Clone() Constraint

	// Translate shifts every world- or body-anchored point of the
	// constraint that follows the given bodies by d meters.
	Translate(d geom.Vec2, moved map[string]bool)
	// Rescale applies a uniform scale about center to anchors and lengths,
	// for constraints referencing at least one of the given bodies.
	Rescale(center geom.Vec2, factor float64, scaled map[string]bool)
}

// Rope is an inextensible link of fixed maximum length between two bodies.
type Rope struct {
	ID      string    `json:"id,omitempty"`
	BodyA   string    `json:"body_a"`
	BodyB   string    `json:"body_b"`
	AnchorA geom.Vec2 `json:"anchor_a_m"` // body-relative, meters
	AnchorB geom.Vec2 `json:"anchor_b_m"`
	LengthM float64   `json:"length_m,omitempty"`
	// Stiffness in (0,1]; 1 models an ideal inextensible rope.
	Stiffness float64 `json:"stiffness,omitempty"`
}

// Spring is a damped linear spring between two bodies.
type Spring struct {
	ID          string    `json:"id,omitempty"`
	BodyA       string    `json:"body_a"`
	BodyB       string    `json:"body_b"`
	AnchorA     geom.Vec2 `json:"anchor_a_m"`
	AnchorB     geom.Vec2 `json:"anchor_b_m"`
	RestLengthM float64   `json:"rest_length_m,omitempty"`
	Stiffness   float64   `json:"stiffness,omitempty"`
	Damping     float64   `json:"damping,omitempty"`
}

// Hinge pins two bodies together at a shared world-space pivot.
type Hinge struct {
	ID     string    `json:"id,omitempty"`
	BodyA  string    `json:"body_a"`
	BodyB  string    `json:"body_b"`
	PivotM geom.Vec2 `json:"pivot_m"` // world, meters
}

// Fixed pins one body to a world-space point.
type Fixed struct {
	ID     string    `json:"id,omitempty"`
	Body   string    `json:"body"`
	PointM geom.Vec2 `json:"point_m"` // world, meters
}

// Distance keeps two body anchors at an exact separation.
type Distance struct {
	ID      string    `json:"id,omitempty"`
	BodyA   string    `json:"body_a"`
	BodyB   string    `json:"body_b"`
	AnchorA geom.Vec2 `json:"anchor_a_m"`
	AnchorB geom.Vec2 `json:"anchor_b_m"`
	LengthM float64   `json:"length_m,omitempty"`
}

// IdealFixedPulley models an inextensible, massless rope routed over a
// frictionless wheel at a fixed world anchor, connecting two bodies. The
// sum of the two segment lengths is conserved.
type IdealFixedPulley struct {
	ID            string    `json:"id,omitempty"`
	BodyA         string    `json:"body_a"`
	BodyB         string    `json:"body_b"`
	PulleyAnchorM geom.Vec2 `json:"pulley_anchor_m"` // world, meters
	// RopeLengthM is the total rope length; 0 means "derive from the
	// initial geometry" (sum of both anchor distances).
	RopeLengthM  float64 `json:"rope_length_m,omitempty"`
	RopeMassKg   float64 `json:"rope_mass_kg,omitempty"`
	WheelRadiusM float64 `json:"wheel_radius_m,omitempty"` // cosmetic in the ideal model
}

func (c *Rope) Kind() string             { return "rope" }
func (c *Spring) Kind() string           { return "spring" }
func (c *Hinge) Kind() string            { return "hinge" }
func (c *Fixed) Kind() string            { return "fixed" }
func (c *Distance) Kind() string         { return "distance" }
func (c *IdealFixedPulley) Kind() string { return "ideal_fixed_pulley" }

func (c *Rope) Name() string             { return c.ID }
func (c *Spring) Name() string           { return c.ID }
func (c *Hinge) Name() string            { return c.ID }
func (c *Fixed) Name() string            { return c.ID }
func (c *Distance) Name() string         { return c.ID }
func (c *IdealFixedPulley) Name() string { return c.ID }

func (c *Rope) BodyRefs() []string             { return []string{c.BodyA, c.BodyB} }
func (c *Spring) BodyRefs() []string           { return []string{c.BodyA, c.BodyB} }
func (c *Hinge) BodyRefs() []string            { return []string{c.BodyA, c.BodyB} }
func (c *Fixed) BodyRefs() []string            { return []string{c.Body} }
func (c *Distance) BodyRefs() []string         { return []string{c.BodyA, c.BodyB} }
func (c *IdealFixedPulley) BodyRefs() []string { return []string{c.BodyA, c.BodyB} }

func (c *Rope) Clone() Constraint             { d := *c; return &d }
func (c *Spring) Clone() Constraint           { d := *c; return &d }
func (c *Hinge) Clone() Constraint            { d := *c; return &d }
func (c *Fixed) Clone() Constraint            { d := *c; return &d }
func (c *Distance) Clone() Constraint         { d := *c; return &d }
func (c *IdealFixedPulley) Clone() Constraint { d := *c; return &d }

// Body-relative anchors follow their body automatically under
// translation; only world-space points need shifting.

func (c *Rope) Translate(geom.Vec2, map[string]bool)     {}
func (c *Spring) Translate(geom.Vec2, map[string]bool)   {}
func (c *Distance) Translate(geom.Vec2, map[string]bool) {}

func (c *Hinge) Translate(d geom.Vec2, moved map[string]bool) {
	if moved[c.BodyA] || moved[c.BodyB] {
		c.PivotM = c.PivotM.Add(d)
	}
}

func (c *Fixed) Translate(d geom.Vec2, moved map[string]bool) {
	if moved[c.Body] {
		c.PointM = c.PointM.Add(d)
	}
}

func (c *IdealFixedPulley) Translate(d geom.Vec2, moved map[string]bool) {
	if moved[c.BodyA] || moved[c.BodyB] {
		c.PulleyAnchorM = c.PulleyAnchorM.Add(d)
	}
}

func scalePoint(p, center geom.Vec2, factor float64) geom.Vec2 {
	return center.Add(p.Sub(center).Scale(factor))
}

func (c *Rope) Rescale(center geom.Vec2, factor float64, scaled map[string]bool) {
	if !scaled[c.BodyA] && !scaled[c.BodyB] {
		return
	}
	c.AnchorA = c.AnchorA.Scale(factor)
	c.AnchorB = c.AnchorB.Scale(factor)
	c.LengthM *= factor
}

func (c *Spring) Rescale(center geom.Vec2, factor float64, scaled map[string]bool) {
	if !scaled[c.BodyA] && !scaled[c.BodyB] {
		return
	}
	c.AnchorA = c.AnchorA.Scale(factor)
	c.AnchorB = c.AnchorB.Scale(factor)
	c.RestLengthM *= factor
}

func (c *Hinge) Rescale(center geom.Vec2, factor float64, scaled map[string]bool) {
	if scaled[c.BodyA] || scaled[c.BodyB] {
		c.PivotM = scalePoint(c.PivotM, center, factor)
	}
}

func (c *Fixed) Rescale(center geom.Vec2, factor float64, scaled map[string]bool) {
	if scaled[c.Body] {
		c.PointM = scalePoint(c.PointM, center, factor)
	}
}

func (c *Distance) Rescale(center geom.Vec2, factor float64, scaled map[string]bool) {
	if !scaled[c.BodyA] && !scaled[c.BodyB] {
		return
	}
	c.AnchorA = c.AnchorA.Scale(factor)
	c.AnchorB = c.AnchorB.Scale(factor)
	c.LengthM *= factor
}

func (c *IdealFixedPulley) Rescale(center geom.Vec2, factor float64, scaled map[string]bool) {
	if !scaled[c.BodyA] && !scaled[c.BodyB] {
		return
	}
	c.PulleyAnchorM = scalePoint(c.PulleyAnchorM, center, factor)
	c.RopeLengthM *= factor
	c.WheelRadiusM *= factor
}

// Constraints is a heterogeneous constraint list with tag-dispatched JSON
// encoding: each element serializes flat with a "type" discriminator.
type Constraints []Constraint

func (cs Constraints) Clone() Constraints {
	if cs == nil {
		return nil
	}
	out := make(Constraints, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}

func (cs Constraints) MarshalJSON() ([]byte, error) {
	raw := make([]json.RawMessage, len(cs))
	for i, c := range cs {
		body, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		// Splice the type tag into the flat object.
		tagged := append([]byte(nil), body[:len(body)-1]...)
		if len(body) > 2 {
			tagged = append(tagged, ',')
		}
		tagged = append(tagged, []byte(fmt.Sprintf("%q:%q}", "type", c.Kind()))...)
		raw[i] = tagged
	}
	return json.Marshal(raw)
}

func (cs *Constraints) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Constraints, 0, len(raw))
	for i, msg := range raw {
		var tag struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &tag); err != nil {
			return fmt.Errorf("scene: constraint %d: %w", i, err)
		}
		var c Constraint
		switch tag.Type {
		case "rope":
			c = &Rope{}
		case "spring":
			c = &Spring{}
		case "hinge":
			c = &Hinge{}
		case "fixed":
			c = &Fixed{}
		case "distance":
			c = &Distance{}
		case "ideal_fixed_pulley":
			c = &IdealFixedPulley{}
		default:
			return fmt.Errorf("scene: constraint %d: unknown type %q", i, tag.Type)
		}
		if err := json.Unmarshal(msg, c); err != nil {
			return fmt.Errorf("scene: constraint %d (%s): %w", i, tag.Type, err)
		}
		out = append(out, c)
	}
	*cs = out
	return nil
}
