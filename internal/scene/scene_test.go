package scene

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/einslab/sketchphys/internal/geom"
)

func TestCloneIsIndependent(t *testing.T) {
	s := ExamplePulley()
	vel := geom.V(1, 2)
	s.Bodies[0].VelocityMS = &vel
	s.Meta = &Meta{Normalization: &NormalizationMeta{
		ContactSeparation: map[string]geom.Vec2{"mass_1": geom.V(0, 0.01)},
	}}

	c := s.Clone()

	c.Bodies[0].PositionM = geom.V(99, 99)
	c.Bodies[0].VelocityMS.X = 99
	c.Bodies[0].Collider.WidthM = 99
	c.Bodies[2].Material.Friction = 99
	c.Constraints[0].(*IdealFixedPulley).RopeLengthM = 99
	c.Meta.Normalization.ContactSeparation["mass_1"] = geom.V(9, 9)
	c.Mapping.ScaleMPerPx = 99

	if s.Bodies[0].PositionM == geom.V(99, 99) {
		t.Error("clone shares body positions")
	}
	if s.Bodies[0].VelocityMS.X == 99 {
		t.Error("clone shares velocity pointer")
	}
	if s.Bodies[0].Collider.WidthM == 99 {
		t.Error("clone shares collider pointer")
	}
	if s.Bodies[2].Material.Friction == 99 {
		t.Error("clone shares material pointer")
	}
	if s.Constraints[0].(*IdealFixedPulley).RopeLengthM == 99 {
		t.Error("clone shares constraint pointer")
	}
	if s.Meta.Normalization.ContactSeparation["mass_1"] == geom.V(9, 9) {
		t.Error("clone shares contact separation map")
	}
	if s.Mapping.ScaleMPerPx == 99 {
		t.Error("clone shares mapping pointer")
	}
}

func TestConstraintJSONRoundTrip(t *testing.T) {
	cs := Constraints{
		&Rope{ID: "r1", BodyA: "a", BodyB: "b", LengthM: 1.5},
		&Spring{ID: "s1", BodyA: "a", BodyB: "b", RestLengthM: 0.5, Stiffness: 100, Damping: 2},
		&Hinge{ID: "h1", BodyA: "a", BodyB: "b", PivotM: geom.V(1, 2)},
		&Fixed{ID: "f1", Body: "a", PointM: geom.V(0, 3)},
		&Distance{ID: "d1", BodyA: "a", BodyB: "b", LengthM: 2},
		&IdealFixedPulley{
			ID:            "p1",
			BodyA:         "a",
			BodyB:         "b",
			PulleyAnchorM: geom.V(0, 2.5),
			RopeLengthM:   2,
			WheelRadiusM:  0.1,
		},
	}

	data, err := json.Marshal(cs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, tag := range []string{"rope", "spring", "hinge", "fixed", "distance", "ideal_fixed_pulley"} {
		if !strings.Contains(string(data), `"type":"`+tag+`"`) {
			t.Errorf("missing type tag %q in %s", tag, data)
		}
	}

	var back Constraints
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back) != len(cs) {
		t.Fatalf("got %d constraints, want %d", len(back), len(cs))
	}
	for i := range cs {
		if back[i].Kind() != cs[i].Kind() {
			t.Errorf("constraint %d kind = %q, want %q", i, back[i].Kind(), cs[i].Kind())
		}
	}
	p := back[5].(*IdealFixedPulley)
	if p.PulleyAnchorM != geom.V(0, 2.5) || p.RopeLengthM != 2 {
		t.Errorf("pulley fields lost: %+v", p)
	}
}

func TestConstraintUnknownType(t *testing.T) {
	var cs Constraints
	err := json.Unmarshal([]byte(`[{"type": "teleporter", "body_a": "a"}]`), &cs)
	if err == nil {
		t.Fatal("expected error for unknown constraint type")
	}
	if !strings.Contains(err.Error(), "teleporter") {
		t.Errorf("error should name the offending type: %v", err)
	}
}

func TestSceneJSONRoundTrip(t *testing.T) {
	s := ExamplePulley()

	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if back.Version != s.Version {
		t.Errorf("version = %q, want %q", back.Version, s.Version)
	}
	if len(back.Bodies) != 3 || len(back.Constraints) != 1 {
		t.Fatalf("bodies=%d constraints=%d", len(back.Bodies), len(back.Constraints))
	}
	p := back.Constraints[0].(*IdealFixedPulley)
	if math.Abs(p.RopeLengthM-s.Constraints[0].(*IdealFixedPulley).RopeLengthM) > 1e-12 {
		t.Errorf("rope length = %v", p.RopeLengthM)
	}
	if !back.Mapping.Valid() {
		t.Error("mapping lost in round trip")
	}
}

func TestValidateWarnings(t *testing.T) {
	s := &Scene{
		World: World{GravityMS2: 9.81}, // missing timestep
		Bodies: []Body{
			{ID: "a", Type: Dynamic}, // no mass
			{ID: "a", Type: Static},  // duplicate id
			{ID: "b", Type: Dynamic, MassKg: 1, PositionM: geom.V(math.NaN(), 0)},
		},
		Constraints: Constraints{
			&Rope{ID: "r1", BodyA: "a", BodyB: "ghost"},
		},
		Mapping: &Mapping{ScaleMPerPx: -1},
	}

	warnings := s.Validate()
	wantSubstrings := []string{
		"non-positive mass",
		"duplicate body id",
		"non-finite position",
		"time_step_s",
		"unusable",
		`unknown body "ghost"`,
	}
	for _, want := range wantSubstrings {
		found := false
		for _, w := range warnings {
			if strings.Contains(w, want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no warning containing %q in %v", want, warnings)
		}
	}
}

func TestValidateCleanScene(t *testing.T) {
	if warnings := ExamplePulley().Validate(); len(warnings) != 0 {
		t.Errorf("example scene should validate cleanly, got %v", warnings)
	}
}

func TestResolveRopeLengths(t *testing.T) {
	s := ExamplePulley()
	s.Constraints[0].(*IdealFixedPulley).RopeLengthM = 0

	out := s.ResolveRopeLengths()

	anchor := geom.V(0, 2.5)
	want := s.Bodies[0].PositionM.Dist(anchor) + s.Bodies[1].PositionM.Dist(anchor)
	got := out.Constraints[0].(*IdealFixedPulley).RopeLengthM
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("derived length = %v, want %v", got, want)
	}
	if s.Constraints[0].(*IdealFixedPulley).RopeLengthM != 0 {
		t.Error("input scene was mutated")
	}

	// A declared length is left alone.
	s.Constraints[0].(*IdealFixedPulley).RopeLengthM = 7
	out = s.ResolveRopeLengths()
	if out.Constraints[0].(*IdealFixedPulley).RopeLengthM != 7 {
		t.Error("declared rope length was overwritten")
	}
}

func TestMovableFromTypeOnly(t *testing.T) {
	// The role comes from the type field alone, never the id.
	cases := []struct {
		body Body
		want bool
	}{
		{Body{ID: "ground_1", Type: Dynamic}, true},
		{Body{ID: "mass_1", Type: Static}, false},
		{Body{ID: "mass_2", Type: Kinematic}, false},
		{Body{ID: "anything", Type: Dynamic}, true},
	}
	for _, c := range cases {
		if got := c.body.Movable(); got != c.want {
			t.Errorf("Movable(%s/%s) = %v, want %v", c.body.ID, c.body.Type, got, c.want)
		}
	}
}

func TestBodyAABBFallback(t *testing.T) {
	b := Body{ID: "x", Type: Dynamic, PositionM: geom.V(1, 1)}
	box := b.AABB()
	if math.Abs(box.Width()-2*DefaultHalfExtentM) > 1e-12 {
		t.Errorf("colliderless body width = %v", box.Width())
	}

	b.Collider = &Collider{Kind: Circle, RadiusM: -3}
	box = b.AABB()
	if math.Abs(box.Width()-2*DefaultHalfExtentM) > 1e-12 {
		t.Errorf("degenerate circle width = %v", box.Width())
	}
}

func TestBodyAABBRotatedRectangle(t *testing.T) {
	b := Body{
		ID:        "x",
		Type:      Dynamic,
		PositionM: geom.V(0, 0),
		AngleRad:  math.Pi / 2,
		Collider:  &Collider{Kind: Rectangle, WidthM: 4, HeightM: 2},
	}
	box := b.AABB()
	// A quarter turn swaps the extents.
	if math.Abs(box.Width()-2) > 1e-9 || math.Abs(box.Height()-4) > 1e-9 {
		t.Errorf("rotated box = %v", box)
	}
}

func TestBodyAABBPolygon(t *testing.T) {
	b := Body{
		ID:        "x",
		Type:      Dynamic,
		PositionM: geom.V(10, 0),
		Collider: &Collider{Kind: Polygon, Vertices: []geom.Vec2{
			{X: -1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 2},
		}},
	}
	box := b.AABB()
	want := geom.AABB{Min: geom.V(9, 0), Max: geom.V(11, 2)}
	if box != want {
		t.Errorf("got %v, want %v", box, want)
	}
}
