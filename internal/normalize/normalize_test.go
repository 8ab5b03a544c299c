package normalize

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/einslab/sketchphys/internal/geom"
	"github.com/einslab/sketchphys/internal/scene"
	"github.com/einslab/sketchphys/internal/transform"
)

var (
	testMapping = &scene.Mapping{OriginPx: geom.V(400, 300), ScaleMPerPx: 0.01}
	testImage   = transform.Size{W: 800, H: 600} // world box [-4,4] x [-3,3]
)

func dynamicBody(id string, x, y, w, h float64) scene.Body {
	return scene.Body{
		ID:        id,
		Type:      scene.Dynamic,
		MassKg:    1,
		PositionM: geom.V(x, y),
		Collider:  &scene.Collider{Kind: scene.Rectangle, WidthM: w, HeightM: h},
	}
}

func testScene(bodies ...scene.Body) *scene.Scene {
	return &scene.Scene{
		Version: scene.SchemaVersion,
		World:   scene.World{GravityMS2: 9.81, TimeStepS: 0.016},
		Bodies:  bodies,
	}
}

func dynamicUnion(s *scene.Scene) geom.AABB {
	box := geom.EmptyAABB()
	for i := range s.Bodies {
		if s.Bodies[i].Movable() {
			box = box.Union(s.Bodies[i].AABB())
		}
	}
	return box
}

// containsLoosely allows one ulp of slop at an exactly-fitting edge.
func containsLoosely(outer, inner geom.AABB) bool {
	const eps = 1e-9
	return inner.Min.X >= outer.Min.X-eps && inner.Max.X <= outer.Max.X+eps &&
		inner.Min.Y >= outer.Min.Y-eps && inner.Max.Y <= outer.Max.Y+eps
}

func TestTranslateIntoBounds(t *testing.T) {
	g := NewWithT(t)

	s := testScene(dynamicBody("m1", 10, 5, 0.4, 0.4))
	out, report := Normalize(s, testMapping, testImage, DefaultOptions())

	g.Expect(report.Applied).To(BeTrue())
	g.Expect(report.AdjustedBodyIDs).To(ContainElement("m1"))
	g.Expect(report.Scale).To(BeZero(), "a small body needs no scaling")

	allowed := transform.ImageBounds(testMapping, testImage).Shrink(DefaultMarginM)
	g.Expect(containsLoosely(allowed, dynamicUnion(out))).To(BeTrue())

	// Input untouched.
	g.Expect(s.Bodies[0].PositionM).To(Equal(geom.V(10, 5)))
}

func TestTranslationIsMinimal(t *testing.T) {
	g := NewWithT(t)

	// Body pokes 0.5 m past the right edge of the allowed box.
	s := testScene(dynamicBody("m1", 4.28, 0, 0.4, 0.4))
	out, report := Normalize(s, testMapping, testImage, DefaultOptions())

	// Right edge of allowed box is 4 - margin; body half width 0.2.
	wantX := 4 - DefaultMarginM - 0.2
	g.Expect(out.Bodies[0].PositionM.X).To(BeNumerically("~", wantX, 1e-9))
	g.Expect(out.Bodies[0].PositionM.Y).To(BeNumerically("~", 0, 1e-9))
	g.Expect(report.TranslationM.Y).To(BeZero())
}

func TestScalePassShrinksOversizeCluster(t *testing.T) {
	g := NewWithT(t)

	s := testScene(
		dynamicBody("m1", -6, 0, 1, 1),
		dynamicBody("m2", 6, 0, 1, 1),
	)
	out, report := Normalize(s, testMapping, testImage, DefaultOptions())

	g.Expect(report.Applied).To(BeTrue())
	g.Expect(report.Scale).To(BeNumerically(">", 0))
	g.Expect(report.Scale).To(BeNumerically("<", 1))

	allowed := transform.ImageBounds(testMapping, testImage).Shrink(DefaultMarginM)
	g.Expect(containsLoosely(allowed, dynamicUnion(out))).To(BeTrue())

	// Collider sizes shrink with the cluster.
	g.Expect(out.Bodies[0].Collider.WidthM).To(BeNumerically("<", 1))
}

func TestTranslateOnlyModeWarnsOnOversize(t *testing.T) {
	g := NewWithT(t)

	s := testScene(
		dynamicBody("m1", -6, 0, 1, 1),
		dynamicBody("m2", 6, 0, 1, 1),
	)
	opts := DefaultOptions()
	opts.Mode = Translate
	out, report := Normalize(s, testMapping, testImage, opts)

	g.Expect(report.Scale).To(BeZero())
	g.Expect(report.Warnings).To(ContainElement(ContainSubstring("does not permit scaling")))

	// The cluster is centered on the axis it cannot fit.
	g.Expect(dynamicUnion(out).Center().X).To(BeNumerically("~", 0, 1e-9))
}

func TestContactSeparation(t *testing.T) {
	g := NewWithT(t)

	ground := scene.Body{
		ID:        "ground_1",
		Type:      scene.Static,
		PositionM: geom.V(0, -0.1),
		Collider:  &scene.Collider{Kind: scene.Rectangle, WidthM: 8, HeightM: 0.2},
	}
	block := dynamicBody("block_1", 0, -0.02, 0.4, 0.4)

	s := testScene(ground, block)
	out, report := Normalize(s, testMapping, testImage, DefaultOptions())

	g.Expect(report.Applied).To(BeTrue())
	g.Expect(report.AdjustedBodyIDs).To(ContainElement("block_1"))
	g.Expect(report.Warnings).To(ContainElement(ContainSubstring("contact separation applied to block_1")))

	outBlock := out.Body("block_1")
	outGround := out.Body("ground_1")
	g.Expect(outBlock.AABB().Overlaps(outGround.AABB())).To(BeFalse())
	// Pushed up, away from the ground center, with clearance.
	g.Expect(outBlock.PositionM.Y).To(BeNumerically(">", -0.02))
	g.Expect(outBlock.AABB().Min.Y).To(BeNumerically(">", 0))
	// The static body never moves.
	g.Expect(outGround.PositionM).To(Equal(geom.V(0, -0.1)))

	g.Expect(out.Meta).NotTo(BeNil())
	g.Expect(out.Meta.Normalization.ContactSeparation).To(HaveKey("block_1"))
}

func TestIdempotent(t *testing.T) {
	g := NewWithT(t)

	s := testScene(
		dynamicBody("m1", 10, 5, 0.4, 0.4),
		scene.Body{
			ID:        "ground_1",
			Type:      scene.Static,
			PositionM: geom.V(0, -0.1),
			Collider:  &scene.Collider{Kind: scene.Rectangle, WidthM: 8, HeightM: 0.2},
		},
	)

	once, first := Normalize(s, testMapping, testImage, DefaultOptions())
	g.Expect(first.Applied).To(BeTrue())

	twice, second := Normalize(once, testMapping, testImage, DefaultOptions())
	g.Expect(second.Applied).To(BeFalse())
	g.Expect(twice.Bodies[0].PositionM).To(Equal(once.Bodies[0].PositionM))
}

func TestNoEligibleBodies(t *testing.T) {
	g := NewWithT(t)

	s := testScene(scene.Body{
		ID:        "wall",
		Type:      scene.Static,
		PositionM: geom.V(100, 100),
	})
	out, report := Normalize(s, testMapping, testImage, DefaultOptions())

	g.Expect(report.Applied).To(BeFalse())
	g.Expect(report.Warnings).To(ContainElement("no eligible bodies to normalize"))
	g.Expect(out.Bodies[0].PositionM).To(Equal(geom.V(100, 100)))
}

func TestUnusableMappingIsNoOp(t *testing.T) {
	g := NewWithT(t)

	s := testScene(dynamicBody("m1", 10, 5, 0.4, 0.4))
	out, report := Normalize(s, nil, testImage, DefaultOptions())

	g.Expect(report.Applied).To(BeFalse())
	g.Expect(report.Warnings).To(ContainElement(ContainSubstring("image bounds are unusable")))
	g.Expect(out.Bodies[0].PositionM).To(Equal(geom.V(10, 5)))
}

func TestRestitutionDefault(t *testing.T) {
	g := NewWithT(t)

	s := testScene(
		dynamicBody("m1", 0, 1, 0.2, 0.2),
		scene.Body{ID: "ground_1", Type: scene.Static, PositionM: geom.V(0, -1)},
	)
	out, _ := Normalize(s, testMapping, testImage, DefaultOptions())

	m1 := out.Body("m1")
	g.Expect(m1.Material).NotTo(BeNil())
	g.Expect(m1.Material.Restitution).NotTo(BeNil())
	g.Expect(*m1.Material.Restitution).To(Equal(1.0))

	// Statics are left alone.
	g.Expect(out.Body("ground_1").Material).To(BeNil())
}

func TestTranslateFollowsConstraints(t *testing.T) {
	g := NewWithT(t)

	s := testScene(
		dynamicBody("m1", 10, 1, 0.3, 0.3),
		dynamicBody("m2", 11, 2, 0.3, 0.3),
	)
	s.Constraints = scene.Constraints{
		&scene.IdealFixedPulley{
			ID: "p1", BodyA: "m1", BodyB: "m2",
			PulleyAnchorM: geom.V(10.5, 3),
		},
	}

	out, report := Normalize(s, testMapping, testImage, DefaultOptions())
	g.Expect(report.Applied).To(BeTrue())

	// The anchor shifts with the bodies, preserving relative geometry.
	p := out.Constraints[0].(*scene.IdealFixedPulley)
	wantAnchor := geom.V(10.5, 3).Add(report.TranslationM)
	g.Expect(p.PulleyAnchorM.X).To(BeNumerically("~", wantAnchor.X, 1e-9))
	g.Expect(p.PulleyAnchorM.Y).To(BeNumerically("~", wantAnchor.Y, 1e-9))
}

func TestScaleVelocities(t *testing.T) {
	g := NewWithT(t)

	vel := geom.V(4, 0)
	b1 := dynamicBody("m1", -6, 0, 1, 1)
	b1.VelocityMS = &vel
	s := testScene(b1, dynamicBody("m2", 6, 0, 1, 1))

	opts := DefaultOptions()
	opts.ScaleVelocities = true
	out, report := Normalize(s, testMapping, testImage, opts)

	g.Expect(report.Scale).To(BeNumerically("<", 1))
	g.Expect(out.Body("m1").VelocityMS.X).To(BeNumerically("~", 4*report.Scale, 1e-9))
}
