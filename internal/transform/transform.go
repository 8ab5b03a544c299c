// Package transform maps points between the three coordinate spaces of a
// diagram scene: physical meters, source-image pixels, and on-screen
// canvas pixels under letterboxing. Every function degrades to a safe
// default on malformed input; none ever returns a non-finite transform.
package transform

import (
	"math"

	"github.com/einslab/sketchphys/internal/geom"
	"github.com/einslab/sketchphys/internal/scene"
)

const (
	// DefaultPixelsPerMeter is used when a scene has no usable mapping.
	DefaultPixelsPerMeter = 80.0
	// MinPixelsPerMeter and MaxPixelsPerMeter clamp fallback and
	// fit-to-bounds scales to a renderable range.
	MinPixelsPerMeter = 6.0
	MaxPixelsPerMeter = 480.0
)

// Size is a pixel extent.
type Size struct {
	W float64
	H float64
}

func (s Size) valid() bool {
	return s.W > 0 && s.H > 0 && isFinite(s.W) && isFinite(s.H)
}

// Canvas is the ephemeral meters-to-canvas-pixels transform, recomputed
// every layout change from the frozen scene mapping and the current
// container size. Never persisted.
type Canvas struct {
	// OriginPx is the canvas pixel where meter (0,0) lands.
	OriginPx geom.Vec2
	// MetersToPixels is the uniform scale; canvas Y grows down while
	// physical Y grows up, so the Y axis inverts around OriginPx.
	MetersToPixels float64
	// LetterboxScale and LetterboxOffset place the source image inside
	// the container: uniformly scaled, centered.
	LetterboxScale  float64
	LetterboxOffset geom.Vec2
	// HasMapping reports whether the transform came from a real scene
	// mapping rather than the fallback framing.
	HasMapping bool
}

// Identity is the transform of last resort: 1 px per meter, origin at the
// canvas origin.
func Identity() Canvas {
	return Canvas{MetersToPixels: 1, LetterboxScale: 1}
}

// Compute derives the canvas transform for a scene mapping, the source
// image size, and the current container size. With a usable mapping the
// image is letterbox-fit into the container and the mapping is composed
// on top; otherwise a centered default framing is used.
func Compute(mapping *scene.Mapping, imageSize, containerSize Size) Canvas {
	if !containerSize.valid() {
		return Identity()
	}
	if mapping.Valid() && imageSize.valid() {
		ls := math.Min(containerSize.W/imageSize.W, containerSize.H/imageSize.H)
		offset := geom.V(
			(containerSize.W-imageSize.W*ls)/2,
			(containerSize.H-imageSize.H*ls)/2,
		)
		mpp := ls / mapping.ScaleMPerPx
		origin := offset.Add(mapping.OriginPx.Scale(ls))
		if isFinite(mpp) && mpp > 0 && origin.IsFinite() {
			return Canvas{
				OriginPx:        origin,
				MetersToPixels:  mpp,
				LetterboxScale:  ls,
				LetterboxOffset: offset,
				HasMapping:      true,
			}
		}
	}
	return fallback(containerSize)
}

func fallback(containerSize Size) Canvas {
	return Canvas{
		OriginPx:       geom.V(containerSize.W/2, containerSize.H/2),
		MetersToPixels: clampScale(DefaultPixelsPerMeter),
		LetterboxScale: 1,
	}
}

// FitToBounds frames a world-space bounding box inside the container with
// the given pixel padding, used when a scene has body positions but no
// photographed-image mapping. The scale is uniform, clamped, and the box
// is centered.
func FitToBounds(bounds geom.AABB, containerSize Size, paddingPx float64) Canvas {
	if !containerSize.valid() {
		return Identity()
	}
	if bounds.IsEmpty() || !bounds.Min.IsFinite() || !bounds.Max.IsFinite() {
		return fallback(containerSize)
	}
	if !isFinite(paddingPx) || paddingPx < 0 {
		paddingPx = 0
	}
	availW := math.Max(containerSize.W-2*paddingPx, 1)
	availH := math.Max(containerSize.H-2*paddingPx, 1)

	mpp := MaxPixelsPerMeter
	if bounds.Width() > 0 {
		mpp = math.Min(mpp, availW/bounds.Width())
	}
	if bounds.Height() > 0 {
		mpp = math.Min(mpp, availH/bounds.Height())
	}
	mpp = clampScale(mpp)

	center := bounds.Center()
	return Canvas{
		OriginPx: geom.V(
			containerSize.W/2-center.X*mpp,
			containerSize.H/2+center.Y*mpp,
		),
		MetersToPixels: mpp,
		LetterboxScale: 1,
	}
}

// ToCanvas maps a point in meters to canvas pixels.
func (t Canvas) ToCanvas(p geom.Vec2) geom.Vec2 {
	s := t.scale()
	return geom.V(t.OriginPx.X+p.X*s, t.OriginPx.Y-p.Y*s)
}

// ToMeters is the exact inverse of ToCanvas up to floating-point epsilon.
func (t Canvas) ToMeters(p geom.Vec2) geom.Vec2 {
	s := t.scale()
	return geom.V((p.X-t.OriginPx.X)/s, (t.OriginPx.Y-p.Y)/s)
}

func (t Canvas) scale() float64 {
	if !isFinite(t.MetersToPixels) || t.MetersToPixels <= 0 {
		return 1
	}
	return t.MetersToPixels
}

// ImageBounds projects the source image's pixel rectangle into meters
// through the inverse mapping, giving the world-space rectangle the image
// covers. Returns an empty box when the mapping is unusable.
func ImageBounds(mapping *scene.Mapping, imageSize Size) geom.AABB {
	if !mapping.Valid() || !imageSize.valid() {
		return geom.EmptyAABB()
	}
	box := geom.EmptyAABB()
	corners := [4]geom.Vec2{
		{X: 0, Y: 0},
		{X: imageSize.W, Y: 0},
		{X: 0, Y: imageSize.H},
		{X: imageSize.W, Y: imageSize.H},
	}
	for _, c := range corners {
		// Image pixel Y grows down, meters Y grows up.
		p := geom.V(
			(c.X-mapping.OriginPx.X)*mapping.ScaleMPerPx,
			(mapping.OriginPx.Y-c.Y)*mapping.ScaleMPerPx,
		)
		box = box.ExtendPoint(p)
	}
	return box
}

func clampScale(s float64) float64 {
	if !isFinite(s) || s <= 0 {
		return DefaultPixelsPerMeter
	}
	return math.Min(math.Max(s, MinPixelsPerMeter), MaxPixelsPerMeter)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
