// Package normalize repositions and rescales the bodies of a freshly
// parsed scene so they fit inside the source image and start free of
// overlap with static geometry. Diagram parsing is approximate; this pass
// turns its output into a renderable, simulatable scene and reports every
// adjustment it made.
package normalize

import (
	"fmt"
	"math"
	"sort"

	"github.com/einslab/sketchphys/internal/geom"
	"github.com/einslab/sketchphys/internal/scene"
	"github.com/einslab/sketchphys/internal/transform"
)

type Mode string

const (
	// Translate only shifts bodies; a scene larger than the image stays
	// larger than the image.
	Translate Mode = "translate"
	// TranslateAndScale additionally shrinks the body cluster uniformly
	// until it fits.
	TranslateAndScale Mode = "translate-and-scale"
)

type Target string

const (
	// DynamicBodies adjusts only bodies the simulation may move. Static
	// and kinematic geometry is ground truth from the diagram.
	DynamicBodies Target = "dynamic"
	// AllBodies adjusts everything, statics included.
	AllBodies Target = "all"
)

const (
	DefaultMarginM = 0.02
	// separationEpsilonM is the extra clearance left after pushing a
	// dynamic body out of a static one.
	separationEpsilonM  = 5e-4
	maxSeparationPasses = 5
	// defaultRestitution is assigned to movable bodies that lack one:
	// perfectly elastic, the pedagogical default.
	defaultRestitution = 1.0
)

type Options struct {
	MarginM         float64
	Mode            Mode
	Target          Target
	ScaleVelocities bool
}

func DefaultOptions() Options {
	return Options{
		MarginM: DefaultMarginM,
		Mode:    TranslateAndScale,
		Target:  DynamicBodies,
	}
}

// Report describes what Normalize did. It is diagnostic output, never
// scene state.
type Report struct {
	Applied         bool      `json:"applied"`
	TranslationM    geom.Vec2 `json:"translation_m"`
	Scale           float64   `json:"scale,omitempty"`
	AdjustedBodyIDs []string  `json:"adjusted_body_ids,omitempty"`
	Warnings        []string  `json:"warnings,omitempty"`
}

// Normalize returns a corrected copy of the scene together with a report.
// The input scene is never mutated. Failure never surfaces as an error:
// unusable input degrades to a no-op with an explanatory warning.
func Normalize(s *scene.Scene, mapping *scene.Mapping, image transform.Size, opts Options) (*scene.Scene, Report) {
	if opts.MarginM < 0 || !isFinite(opts.MarginM) {
		opts.MarginM = DefaultMarginM
	}
	if opts.Mode == "" {
		opts.Mode = TranslateAndScale
	}
	if opts.Target == "" {
		opts.Target = DynamicBodies
	}

	out := s.Clone()
	report := Report{}
	report.Warnings = append(report.Warnings, out.Validate()...)

	applyMaterialDefaults(out)

	targets := targetIndices(out, opts.Target)
	if len(targets) == 0 {
		report.Warnings = append(report.Warnings, "no eligible bodies to normalize")
		return out, report
	}

	allowed := transform.ImageBounds(mapping, image).Shrink(opts.MarginM)
	if allowed.IsEmpty() || allowed.Width() <= 0 || allowed.Height() <= 0 {
		report.Warnings = append(report.Warnings, "image bounds are unusable; scene left as-is")
		return out, report
	}

	adjusted := make(map[string]bool)

	translation := translatePass(out, targets, allowed)
	if translation != (geom.Vec2{}) {
		for _, i := range targets {
			adjusted[out.Bodies[i].ID] = true
		}
	}

	scale := 1.0
	if opts.Mode == TranslateAndScale {
		scale = scalePass(out, targets, allowed, opts.ScaleVelocities)
		if scale != 1 {
			for _, i := range targets {
				adjusted[out.Bodies[i].ID] = true
			}
			// Re-tighten against the margin after shrinking.
			extra := translatePass(out, targets, allowed)
			translation = translation.Add(extra)
		}
	} else if !targetUnion(out, targets).IsEmpty() && !allowed.Contains(targetUnion(out, targets)) {
		report.Warnings = append(report.Warnings, "bodies exceed image bounds and mode does not permit scaling")
	}

	separation := separatePass(out, targets, &report)
	for id := range separation {
		adjusted[id] = true
	}

	report.TranslationM = translation
	if scale != 1 {
		report.Scale = scale
	}
	report.Applied = translation != (geom.Vec2{}) || scale != 1 || len(separation) > 0
	report.AdjustedBodyIDs = sortedKeys(adjusted)

	if report.Applied {
		if out.Meta == nil {
			out.Meta = &scene.Meta{}
		}
		meta := &scene.NormalizationMeta{TranslationM: translation}
		if scale != 1 {
			meta.Scale = scale
		}
		if len(separation) > 0 {
			meta.ContactSeparation = separation
		}
		out.Meta.Normalization = meta
	}

	return out, report
}

func applyMaterialDefaults(s *scene.Scene) {
	for i := range s.Bodies {
		b := &s.Bodies[i]
		if !b.Movable() {
			continue
		}
		if b.Material == nil {
			b.Material = &scene.Material{}
		}
		if b.Material.Restitution == nil {
			r := defaultRestitution
			b.Material.Restitution = &r
		}
	}
}

func targetIndices(s *scene.Scene, target Target) []int {
	var idx []int
	for i := range s.Bodies {
		if target == AllBodies || s.Bodies[i].Movable() {
			idx = append(idx, i)
		}
	}
	return idx
}

func targetUnion(s *scene.Scene, targets []int) geom.AABB {
	box := geom.EmptyAABB()
	for _, i := range targets {
		box = box.Union(s.Bodies[i].AABB())
	}
	return box
}

// translatePass shifts all target bodies by the single minimal translation
// that brings their union AABB inside the allowed rectangle. Each axis is
// clamped independently; a cluster larger than the rectangle is centered
// on that axis instead.
func translatePass(s *scene.Scene, targets []int, allowed geom.AABB) geom.Vec2 {
	union := targetUnion(s, targets)
	if union.IsEmpty() {
		return geom.Vec2{}
	}
	d := geom.V(
		axisShift(union.Min.X, union.Max.X, allowed.Min.X, allowed.Max.X),
		axisShift(union.Min.Y, union.Max.Y, allowed.Min.Y, allowed.Max.Y),
	)
	if math.Abs(d.X) < 1e-12 {
		d.X = 0
	}
	if math.Abs(d.Y) < 1e-12 {
		d.Y = 0
	}
	if d == (geom.Vec2{}) {
		return d
	}
	applyTranslation(s, targets, d)
	return d
}

func axisShift(lo, hi, allowedLo, allowedHi float64) float64 {
	if hi-lo > allowedHi-allowedLo {
		// Cannot fit on this axis; center it and let the scale pass
		// (when enabled) finish the job.
		return (allowedLo+allowedHi)/2 - (lo+hi)/2
	}
	if lo < allowedLo {
		return allowedLo - lo
	}
	if hi > allowedHi {
		return allowedHi - hi
	}
	return 0
}

func applyTranslation(s *scene.Scene, targets []int, d geom.Vec2) {
	moved := make(map[string]bool, len(targets))
	for _, i := range targets {
		s.Bodies[i].PositionM = s.Bodies[i].PositionM.Add(d)
		moved[s.Bodies[i].ID] = true
	}
	for _, c := range s.Constraints {
		c.Translate(d, moved)
	}
}

// scalePass shrinks the target cluster uniformly about its centroid until
// it fits the allowed rectangle. Returns the factor applied (1 = none).
func scalePass(s *scene.Scene, targets []int, allowed geom.AABB, scaleVelocities bool) float64 {
	union := targetUnion(s, targets)
	if union.IsEmpty() {
		return 1
	}
	factor := 1.0
	if union.Width() > allowed.Width() && union.Width() > 0 {
		factor = math.Min(factor, allowed.Width()/union.Width())
	}
	if union.Height() > allowed.Height() && union.Height() > 0 {
		factor = math.Min(factor, allowed.Height()/union.Height())
	}
	if factor >= 1 || !(factor > 0) {
		return 1
	}

	center := union.Center()
	scaled := make(map[string]bool, len(targets))
	for _, i := range targets {
		b := &s.Bodies[i]
		b.PositionM = center.Add(b.PositionM.Sub(center).Scale(factor))
		scaleCollider(b.Collider, factor)
		if scaleVelocities && b.VelocityMS != nil {
			v := b.VelocityMS.Scale(factor)
			b.VelocityMS = &v
		}
		scaled[b.ID] = true
	}
	for _, c := range s.Constraints {
		c.Rescale(center, factor, scaled)
	}
	return factor
}

func scaleCollider(c *scene.Collider, factor float64) {
	if c == nil {
		return
	}
	switch c.Kind {
	case scene.Circle:
		c.RadiusM *= factor
	case scene.Rectangle:
		c.WidthM *= factor
		c.HeightM *= factor
	case scene.Polygon:
		for i := range c.Vertices {
			c.Vertices[i] = c.Vertices[i].Scale(factor)
		}
	}
}

// separatePass resolves initial AABB overlap between movable targets and
// static bodies: each overlapping pair pushes the movable body out along
// the axis of least penetration, away from the static body's center, with
// a small clearance. Capped at maxSeparationPasses; residual overlap is
// reported, not fatal.
func separatePass(s *scene.Scene, targets []int, report *Report) map[string]geom.Vec2 {
	var statics []int
	for i := range s.Bodies {
		if !s.Bodies[i].Movable() {
			statics = append(statics, i)
		}
	}
	if len(statics) == 0 {
		return nil
	}

	displaced := make(map[string]geom.Vec2)
	converged := false
	for pass := 0; pass < maxSeparationPasses && !converged; pass++ {
		converged = true
		for _, ti := range targets {
			body := &s.Bodies[ti]
			if !body.Movable() {
				continue
			}
			for _, si := range statics {
				st := &s.Bodies[si]
				bb, sb := body.AABB(), st.AABB()
				if !bb.Overlaps(sb) {
					continue
				}
				dx, dy := bb.OverlapExtents(sb)
				push := geom.Vec2{}
				if dx < dy {
					push.X = dx + separationEpsilonM
					if bb.Center().X < sb.Center().X {
						push.X = -push.X
					}
				} else {
					push.Y = dy + separationEpsilonM
					if bb.Center().Y < sb.Center().Y {
						push.Y = -push.Y
					}
				}
				body.PositionM = body.PositionM.Add(push)
				displaced[body.ID] = displaced[body.ID].Add(push)
				converged = false
			}
		}
	}

	for _, id := range sortedKeys(boolKeys(displaced)) {
		report.Warnings = append(report.Warnings, fmt.Sprintf("contact separation applied to %s", id))
	}
	if !converged {
		for _, ti := range targets {
			for _, si := range statics {
				if s.Bodies[ti].AABB().Overlaps(s.Bodies[si].AABB()) {
					report.Warnings = append(report.Warnings, fmt.Sprintf(
						"contact separation did not converge for %s vs %s; residual overlap accepted",
						s.Bodies[ti].ID, s.Bodies[si].ID))
				}
			}
		}
	}
	return displaced
}

func boolKeys(m map[string]geom.Vec2) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
