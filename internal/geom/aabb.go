package geom

import "math"

// AABB is an axis-aligned bounding box with inclusive bounds.
type AABB struct {
	Min Vec2
	Max Vec2
}

// EmptyAABB returns a box that unions as the identity: Min at +Inf,
// Max at -Inf. IsEmpty reports true for it.
func EmptyAABB() AABB {
	return AABB{
		Min: Vec2{X: math.Inf(1), Y: math.Inf(1)},
		Max: Vec2{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y
}

func (b AABB) Width() float64 {
	return b.Max.X - b.Min.X
}

func (b AABB) Height() float64 {
	return b.Max.Y - b.Min.Y
}

func (b AABB) Center() Vec2 {
	return Vec2{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}

func (b AABB) Union(o AABB) AABB {
	if b.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return b
	}
	return AABB{
		Min: Vec2{X: math.Min(b.Min.X, o.Min.X), Y: math.Min(b.Min.Y, o.Min.Y)},
		Max: Vec2{X: math.Max(b.Max.X, o.Max.X), Y: math.Max(b.Max.Y, o.Max.Y)},
	}
}

// ExtendPoint grows the box to include p.
func (b AABB) ExtendPoint(p Vec2) AABB {
	return b.Union(AABB{Min: p, Max: p})
}

func (b AABB) Translate(d Vec2) AABB {
	return AABB{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// Shrink insets the box by m on all sides. A box smaller than 2m per axis
// collapses to its center line on that axis rather than inverting.
func (b AABB) Shrink(m float64) AABB {
	out := AABB{
		Min: Vec2{X: b.Min.X + m, Y: b.Min.Y + m},
		Max: Vec2{X: b.Max.X - m, Y: b.Max.Y - m},
	}
	if out.Min.X > out.Max.X {
		c := (b.Min.X + b.Max.X) / 2
		out.Min.X, out.Max.X = c, c
	}
	if out.Min.Y > out.Max.Y {
		c := (b.Min.Y + b.Max.Y) / 2
		out.Min.Y, out.Max.Y = c, c
	}
	return out
}

func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X < o.Max.X && b.Max.X > o.Min.X &&
		b.Min.Y < o.Max.Y && b.Max.Y > o.Min.Y
}

// OverlapExtents returns the penetration depth along each axis; both are
// positive only when the boxes overlap.
func (b AABB) OverlapExtents(o AABB) (dx, dy float64) {
	dx = math.Min(b.Max.X, o.Max.X) - math.Max(b.Min.X, o.Min.X)
	dy = math.Min(b.Max.Y, o.Max.Y) - math.Max(b.Min.Y, o.Min.Y)
	return dx, dy
}

func (b AABB) Contains(o AABB) bool {
	return o.Min.X >= b.Min.X && o.Max.X <= b.Max.X &&
		o.Min.Y >= b.Min.Y && o.Max.Y <= b.Max.Y
}
