package scene

import "fmt"

// Validate inspects the scene and returns human-readable warnings. Nothing
// here is fatal: malformed scenes are still simulated and rendered with
// documented defaults substituted at the point of use.
func (s *Scene) Validate() []string {
	var warnings []string

	ids := make(map[string]int, len(s.Bodies))
	for i := range s.Bodies {
		b := &s.Bodies[i]
		if b.ID == "" {
			warnings = append(warnings, fmt.Sprintf("body %d has no id", i))
		}
		ids[b.ID]++
		if ids[b.ID] == 2 {
			warnings = append(warnings, fmt.Sprintf("duplicate body id %q", b.ID))
		}
		if !b.PositionM.IsFinite() {
			warnings = append(warnings, fmt.Sprintf("body %q has a non-finite position", b.ID))
		}
		if b.Type == Dynamic && !(b.MassKg > 0) {
			warnings = append(warnings, fmt.Sprintf("dynamic body %q has non-positive mass", b.ID))
		}
		if b.Collider != nil {
			switch b.Collider.Kind {
			case Circle:
				if !(b.Collider.RadiusM > 0) {
					warnings = append(warnings, fmt.Sprintf("body %q: circle radius defaults to %.2f m", b.ID, DefaultHalfExtentM))
				}
			case Rectangle:
				if !(b.Collider.WidthM > 0) || !(b.Collider.HeightM > 0) {
					warnings = append(warnings, fmt.Sprintf("body %q: rectangle extents default to %.2f m", b.ID, DefaultHalfExtentM))
				}
			case Polygon:
				if len(b.Collider.Vertices) < 3 {
					warnings = append(warnings, fmt.Sprintf("body %q: polygon has fewer than 3 vertices", b.ID))
				}
			default:
				warnings = append(warnings, fmt.Sprintf("body %q: unknown collider kind %q", b.ID, b.Collider.Kind))
			}
		}
	}

	if !(s.World.TimeStepS > 0) {
		warnings = append(warnings, "world time_step_s is not positive")
	}
	if s.Mapping != nil && !s.Mapping.Valid() {
		warnings = append(warnings, "mapping is present but unusable (non-positive or non-finite scale)")
	}

	for _, c := range s.Constraints {
		for _, ref := range c.BodyRefs() {
			if _, ok := ids[ref]; !ok {
				warnings = append(warnings, fmt.Sprintf("%s constraint %q references unknown body %q", c.Kind(), c.Name(), ref))
			}
		}
	}

	return warnings
}

// ResolveRopeLengths fills in the total rope length of every pulley
// constraint that left it unset, using the initial geometry: the sum of
// both anchor distances. Returns a scene copy; the input is not mutated.
func (s *Scene) ResolveRopeLengths() *Scene {
	out := s.Clone()
	for _, c := range out.Constraints {
		p, ok := c.(*IdealFixedPulley)
		if !ok || p.RopeLengthM > 0 {
			continue
		}
		a := out.Body(p.BodyA)
		b := out.Body(p.BodyB)
		if a == nil || b == nil {
			continue
		}
		p.RopeLengthM = a.PositionM.Dist(p.PulleyAnchorM) + b.PositionM.Dist(p.PulleyAnchorM)
	}
	return out
}
