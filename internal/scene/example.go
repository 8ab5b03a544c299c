package scene

import "github.com/einslab/sketchphys/internal/geom"

// ExamplePulley builds the canonical single-fixed-pulley scene: two masses
// on an ideal rope over a frictionless wheel, with a static ground slab
// and an image mapping as the diagram parser would produce. The heavier
// mass descends.
func ExamplePulley() *Scene {
	s := &Scene{
		Version: SchemaVersion,
		World: World{
			GravityMS2: 9.81,
			TimeStepS:  0.016,
		},
		Bodies: []Body{
			{
				ID:        "mass_1",
				Type:      Dynamic,
				MassKg:    2.0,
				PositionM: geom.V(-0.5, 1.0),
				Collider:  &Collider{Kind: Rectangle, WidthM: 0.3, HeightM: 0.3},
			},
			{
				ID:        "mass_2",
				Type:      Dynamic,
				MassKg:    5.0,
				PositionM: geom.V(0.5, 2.0),
				Collider:  &Collider{Kind: Rectangle, WidthM: 0.3, HeightM: 0.3},
			},
			{
				ID:        "ground_1",
				Type:      Static,
				PositionM: geom.V(0, -0.1),
				Collider:  &Collider{Kind: Rectangle, WidthM: 8.0, HeightM: 0.2},
				Material:  &Material{Name: "ground", Friction: 0.4},
			},
		},
		Constraints: Constraints{
			&IdealFixedPulley{
				ID:            "pulley_1",
				BodyA:         "mass_1",
				BodyB:         "mass_2",
				PulleyAnchorM: geom.V(0, 2.5),
				WheelRadiusM:  0.1,
			},
		},
		Mapping: &Mapping{
			OriginPx:    geom.V(400, 300),
			ScaleMPerPx: 0.01,
		},
		Notes: "Example single fixed ideal pulley problem (two masses).",
	}
	return s.ResolveRopeLengths()
}
