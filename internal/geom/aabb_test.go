package geom

import (
	"math"
	"testing"
)

func TestEmptyAABBUnionIdentity(t *testing.T) {
	e := EmptyAABB()
	if !e.IsEmpty() {
		t.Fatal("EmptyAABB is not empty")
	}

	box := AABB{Min: V(-1, -1), Max: V(1, 1)}
	if got := e.Union(box); got != box {
		t.Errorf("empty union box = %v", got)
	}
	if got := box.Union(e); got != box {
		t.Errorf("box union empty = %v", got)
	}
}

func TestAABBExtendPoint(t *testing.T) {
	box := EmptyAABB().ExtendPoint(V(1, 2)).ExtendPoint(V(-3, 0))
	want := AABB{Min: V(-3, 0), Max: V(1, 2)}
	if box != want {
		t.Errorf("got %v, want %v", box, want)
	}
}

func TestAABBShrink(t *testing.T) {
	box := AABB{Min: V(0, 0), Max: V(4, 2)}
	got := box.Shrink(0.5)
	want := AABB{Min: V(0.5, 0.5), Max: V(3.5, 1.5)}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAABBShrinkCollapsesInsteadOfInverting(t *testing.T) {
	box := AABB{Min: V(0, 0), Max: V(1, 0.1)}
	got := box.Shrink(0.2)
	if got.IsEmpty() {
		t.Fatal("shrink inverted the box")
	}
	if got.Height() != 0 {
		t.Errorf("expected collapsed Y axis, height = %v", got.Height())
	}
	if math.Abs(got.Min.Y-0.05) > 1e-12 {
		t.Errorf("collapsed to %v, want centerline 0.05", got.Min.Y)
	}
	if math.Abs(got.Width()-0.6) > 1e-12 {
		t.Errorf("width = %v, want 0.6", got.Width())
	}
}

func TestAABBOverlapExtents(t *testing.T) {
	a := AABB{Min: V(0, 0), Max: V(2, 2)}
	b := AABB{Min: V(1.5, 1), Max: V(3, 4)}

	if !a.Overlaps(b) {
		t.Fatal("expected overlap")
	}
	dx, dy := a.OverlapExtents(b)
	if math.Abs(dx-0.5) > 1e-12 {
		t.Errorf("dx = %v, want 0.5", dx)
	}
	if math.Abs(dy-1) > 1e-12 {
		t.Errorf("dy = %v, want 1", dy)
	}

	c := AABB{Min: V(5, 5), Max: V(6, 6)}
	if a.Overlaps(c) {
		t.Error("disjoint boxes reported overlapping")
	}
}

func TestAABBTouchingEdgesDoNotOverlap(t *testing.T) {
	a := AABB{Min: V(0, 0), Max: V(1, 1)}
	b := AABB{Min: V(1, 0), Max: V(2, 1)}
	if a.Overlaps(b) {
		t.Error("edge contact counted as overlap")
	}
}

func TestAABBContains(t *testing.T) {
	outer := AABB{Min: V(0, 0), Max: V(10, 10)}
	inner := AABB{Min: V(1, 1), Max: V(9, 9)}
	if !outer.Contains(inner) {
		t.Error("expected containment")
	}
	if inner.Contains(outer) {
		t.Error("inner cannot contain outer")
	}
}
