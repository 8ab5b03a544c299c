package scene

import "github.com/einslab/sketchphys/internal/geom"

// Clone is an explicit deep copy of the scene. Every pointer, slice, and
// map is duplicated so the copy shares no memory with the original.
func (s *Scene) Clone() *Scene {
	if s == nil {
		return nil
	}
	out := &Scene{
		Version:     s.Version,
		World:       s.World.clone(),
		Bodies:      make([]Body, len(s.Bodies)),
		Constraints: s.Constraints.Clone(),
		Notes:       s.Notes,
	}
	for i := range s.Bodies {
		out.Bodies[i] = s.Bodies[i].clone()
	}
	if s.Mapping != nil {
		m := *s.Mapping
		out.Mapping = &m
	}
	if s.Meta != nil {
		out.Meta = s.Meta.clone()
	}
	return out
}

func (w World) clone() World {
	out := w
	if w.Seed != nil {
		seed := *w.Seed
		out.Seed = &seed
	}
	return out
}

func (b Body) clone() Body {
	out := b
	if b.VelocityMS != nil {
		v := *b.VelocityMS
		out.VelocityMS = &v
	}
	if b.Collider != nil {
		c := *b.Collider
		if b.Collider.Vertices != nil {
			c.Vertices = make([]geom.Vec2, len(b.Collider.Vertices))
			copy(c.Vertices, b.Collider.Vertices)
		}
		out.Collider = &c
	}
	if b.Material != nil {
		m := *b.Material
		if b.Material.Restitution != nil {
			r := *b.Material.Restitution
			m.Restitution = &r
		}
		out.Material = &m
	}
	return out
}

func (m *Meta) clone() *Meta {
	out := &Meta{}
	if m.Normalization != nil {
		n := *m.Normalization
		if m.Normalization.ContactSeparation != nil {
			n.ContactSeparation = make(map[string]geom.Vec2, len(m.Normalization.ContactSeparation))
			for k, v := range m.Normalization.ContactSeparation {
				n.ContactSeparation[k] = v
			}
		}
		out.Normalization = &n
	}
	return out
}
