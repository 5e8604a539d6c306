package collision

import (
	"math"
	"testing"

	"github.com/akmonengine/probe/actor"
	"github.com/akmonengine/probe/component"
	"github.com/akmonengine/probe/filter"
	"github.com/akmonengine/probe/geometry"
	"github.com/akmonengine/probe/scene"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

const epsilon = 1e-6

func nearlyEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func vecNearlyEqual(a, b mgl64.Vec3, tolerance float64) bool {
	return nearlyEqual(a.X(), b.X(), tolerance) && nearlyEqual(a.Y(), b.Y(), tolerance) && nearlyEqual(a.Z(), b.Z(), tolerance)
}

func createComponent(id uint32, multiBody bool) *component.PrimitiveComponent {
	return &component.PrimitiveComponent{
		ID:               id,
		Name:             "component",
		Owner:            &component.Actor{ID: id, Name: "actor"},
		MultiBodyOverlap: multiBody,
	}
}

func bodyPayload(owner *component.PrimitiveComponent, index int32) component.Payload {
	return component.BodyPayload(&component.BodyInstance{Owner: owner, InstanceBodyIndex: index, BoneName: "bone"})
}

// createShape builds a WorldStatic shape answering response to every channel
func createShape(g actor.Geometry, pose actor.Transform, response filter.Response, payload component.Payload, materials ...*actor.Material) *actor.Shape {
	shape := actor.NewShape(g, pose, materials...)
	shape.QueryFilterData, shape.SimulationFilterData = filter.CreateShapeFilterData(filter.ShapeFilterParams{
		Channel:    filter.WorldStatic,
		Responses:  filter.NewResponseContainer(response),
		Complexity: filter.FlagSimpleCollision | filter.FlagComplexCollision,
	})
	shape.Payload = payload
	return shape
}

func blockingQueryFilter() actor.FilterData {
	return filter.CreateTraceQueryFilterData(filter.Visibility, false, filter.NewResponseContainer(filter.Block), filter.DefaultQueryParams())
}

func createQuadMesh() *actor.TriangleMesh {
	mesh := actor.NewTriangleMesh(
		[]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
		[]uint32{0, 1, 2, 1, 3, 2},
	)
	mesh.Remap = []uint32{7, 9}
	mesh.MaterialIndices = []uint16{0, 1}
	return mesh
}

func TestConvertQueryImpactHit(t *testing.T) {
	owner := createComponent(1, false)
	shape := createShape(actor.BoxGeometry{HalfExtents: mgl64.Vec3{1, 1, 1}}, actor.NewTransformAt(mgl64.Vec3{6, 0, 0}), filter.Block, bodyPayload(owner, 2))
	q := RayQuery(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 0, 0}, blockingQueryFilter())

	hit := scene.LocationHit{Shape: shape, Hit: geometry.Hit{
		Position:  mgl64.Vec3{5, 0, 0},
		Normal:    mgl64.Vec3{-1, 0, 0},
		Distance:  5,
		FaceIndex: geometry.InvalidFaceIndex,
		Flags:     geometry.HitDefault,
	}}

	var out HitResult
	if err := ConvertQueryImpactHit(nil, hit, q, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !nearlyEqual(out.Time, 0.5, epsilon) || !nearlyEqual(out.Distance, 5, epsilon) {
		t.Errorf("expected time 0.5 distance 5, got %v %v", out.Time, out.Distance)
	}
	if !vecNearlyEqual(out.Location, mgl64.Vec3{5, 0, 0}, epsilon) {
		t.Errorf("expected location (5,0,0), got %v", out.Location)
	}
	if !vecNearlyEqual(out.ImpactNormal, mgl64.Vec3{-1, 0, 0}, epsilon) {
		t.Errorf("expected impact normal (-1,0,0), got %v", out.ImpactNormal)
	}
	if !out.BlockingHit || out.StartPenetrating {
		t.Errorf("expected a blocking hit, got %+v", out)
	}
	if out.Component != owner || out.Actor != owner.Owner || out.Item != 2 || out.BoneName != "bone" {
		t.Errorf("unexpected identity %+v", out)
	}
	if out.FaceIndex != -1 || out.PhysMaterial != nil {
		t.Errorf("expected no face index nor material, got %d %v", out.FaceIndex, out.PhysMaterial)
	}

	t.Run("idempotent", func(t *testing.T) {
		var again HitResult
		if err := ConvertQueryImpactHit(nil, hit, q, &again); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != out {
			t.Errorf("expected identical results, got %+v and %+v", out, again)
		}
	})

	t.Run("touch", func(t *testing.T) {
		touchHit := hit
		touchHit.Shape = createShape(actor.SphereGeometry{Radius: 1}, actor.NewTransform(), filter.Overlap, bodyPayload(owner, 0))
		var res HitResult
		ConvertQueryImpactHit(nil, touchHit, q, &res)
		if res.BlockingHit {
			t.Error("expected a non blocking hit")
		}
	})

	t.Run("non finite position", func(t *testing.T) {
		bad := hit
		bad.Position = mgl64.Vec3{math.NaN(), 0, 0}
		var res HitResult
		err := ConvertQueryImpactHit(nil, bad, q, &res)
		if !errors.Is(err, ErrInvalidGeometryResult) {
			t.Fatalf("expected ErrInvalidGeometryResult, got %v", err)
		}
		if res != NewHitResult() {
			t.Errorf("expected a reset result, got %+v", res)
		}
	})

	t.Run("non finite normal", func(t *testing.T) {
		bad := hit
		bad.Normal = mgl64.Vec3{0, math.Inf(1), 0}
		var res HitResult
		if err := ConvertQueryImpactHit(nil, bad, q, &res); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !vecNearlyEqual(res.Normal, mgl64.Vec3{-1, 0, 0}, epsilon) {
			t.Errorf("expected the trace to be opposed, got %v", res.Normal)
		}
	})
}

func TestConvertFaceIndexAndMaterial(t *testing.T) {
	m0 := &actor.Material{Name: "grass"}
	m1 := &actor.Material{Name: "rock"}
	shape := createShape(actor.TriangleMeshGeometry{Mesh: createQuadMesh()}, actor.NewTransform(), filter.Block, bodyPayload(createComponent(1, false), 0), m0, m1)

	hit := scene.LocationHit{Shape: shape, Hit: geometry.Hit{
		Position:  mgl64.Vec3{0.8, 0.8, 0},
		Normal:    mgl64.Vec3{0, 0, 1},
		Distance:  1,
		FaceIndex: 1,
		Flags:     geometry.HitDefault,
	}}
	q := RayQuery(mgl64.Vec3{0.8, 0.8, 1}, mgl64.Vec3{0.8, 0.8, -1}, blockingQueryFilter())

	var out HitResult
	ConvertQueryImpactHit(nil, hit, q, &out)
	if out.FaceIndex != -1 || out.PhysMaterial != nil {
		t.Errorf("expected no face index nor material without opting in, got %d %v", out.FaceIndex, out.PhysMaterial)
	}

	q.ReturnFaceIndex = true
	q.ReturnPhysicalMaterial = true
	ConvertQueryImpactHit(nil, hit, q, &out)
	if out.FaceIndex != 9 {
		t.Errorf("expected remapped face index 9, got %d", out.FaceIndex)
	}
	if out.PhysMaterial != m1 {
		t.Errorf("expected material rock, got %v", out.PhysMaterial)
	}
}

func TestConvertCustomPayload(t *testing.T) {
	tests := []struct {
		name      string
		multiBody bool
		expected  int32
	}{
		{"single body", false, component.IndexNone},
		{"multi body", true, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner := createComponent(1, tt.multiBody)
			payload := component.CustomPhysicsPayload(&component.CustomPayload{Owner: owner, ItemIndex: 4, HitName: "instance"})
			shape := createShape(actor.SphereGeometry{Radius: 1}, actor.NewTransform(), filter.Block, payload)

			hit := scene.LocationHit{Shape: shape, Hit: geometry.Hit{Distance: 1, Normal: mgl64.Vec3{0, 0, 1}, FaceIndex: geometry.InvalidFaceIndex, Flags: geometry.HitDefault}}
			var out HitResult
			ConvertQueryImpactHit(nil, hit, RayQuery(mgl64.Vec3{0, 0, 2}, mgl64.Vec3{0, 0, -2}, blockingQueryFilter()), &out)
			if out.Item != tt.expected || out.BoneName != "instance" {
				t.Errorf("expected item %d, got %d (%q)", tt.expected, out.Item, out.BoneName)
			}

			overlap, ok := ConvertQueryOverlap(shape, blockingQueryFilter())
			if !ok || overlap.ItemIndex != tt.expected {
				t.Errorf("expected overlap item %d, got %d", tt.expected, overlap.ItemIndex)
			}
		})
	}

	t.Run("no component", func(t *testing.T) {
		shape := createShape(actor.SphereGeometry{Radius: 1}, actor.NewTransform(), filter.Block, component.Payload{})
		if _, ok := ConvertQueryOverlap(shape, blockingQueryFilter()); ok {
			t.Error("expected the overlap to be rejected")
		}
	})
}

func TestFindGeomOpposingNormal(t *testing.T) {
	down := mgl64.Vec3{0, 0, -10}
	edge := mgl64.Vec3{1, 0, 1}.Normalize()

	t.Run("box", func(t *testing.T) {
		shape := createShape(actor.BoxGeometry{HalfExtents: mgl64.Vec3{1, 1, 1}}, actor.NewTransform(), filter.Block, component.Payload{})
		hit := scene.LocationHit{Shape: shape, Hit: geometry.Hit{Normal: edge, FaceIndex: geometry.InvalidFaceIndex}}

		got := FindGeomOpposingNormal(actor.GeometryTypeSphere, hit, down, edge)
		if !vecNearlyEqual(got, mgl64.Vec3{0, 0, 1}, epsilon) {
			t.Errorf("expected the top face, got %v", got)
		}

		side := FindGeomOpposingNormal(actor.GeometryTypeCapsule, hit, mgl64.Vec3{-10, 0, 0}, edge)
		if !vecNearlyEqual(side, mgl64.Vec3{1, 0, 0}, epsilon) {
			t.Errorf("expected the +X face, got %v", side)
		}
	})

	t.Run("rotated box", func(t *testing.T) {
		pose := actor.Transform{Rotation: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})}
		shape := createShape(actor.BoxGeometry{HalfExtents: mgl64.Vec3{1, 2, 1}}, pose, filter.Block, component.Payload{})
		normal := mgl64.Vec3{1, 0, 0.2}.Normalize()
		hit := scene.LocationHit{Shape: shape, Hit: geometry.Hit{Normal: normal}}

		got := FindGeomOpposingNormal(actor.GeometryTypeSphere, hit, mgl64.Vec3{-10, 0, 0}, normal)
		if !vecNearlyEqual(got, mgl64.Vec3{1, 0, 0}, epsilon) {
			t.Errorf("expected world +X, got %v", got)
		}
	})

	t.Run("convex", func(t *testing.T) {
		hull := actor.ConvexMeshGeometry{Mesh: actor.NewBoxConvexMesh(mgl64.Vec3{1, 1, 1}), Scale: actor.IdentityScale()}
		shape := createShape(hull, actor.NewTransform(), filter.Block, component.Payload{})

		hit := scene.LocationHit{Shape: shape, Hit: geometry.Hit{Normal: edge, FaceIndex: 4}}
		if got := FindGeomOpposingNormal(actor.GeometryTypeSphere, hit, down, edge); !vecNearlyEqual(got, mgl64.Vec3{0, 0, 1}, epsilon) {
			t.Errorf("expected polygon normal (0,0,1), got %v", got)
		}

		hit.FaceIndex = geometry.InvalidFaceIndex
		if got := FindGeomOpposingNormal(actor.GeometryTypeSphere, hit, down, edge); got != edge {
			t.Errorf("expected the reported normal, got %v", got)
		}
	})

	t.Run("triangle mesh", func(t *testing.T) {
		up := mgl64.Vec3{0, 0, 10}
		single := createShape(actor.TriangleMeshGeometry{Mesh: createQuadMesh()}, actor.NewTransform(), filter.Block, component.Payload{})
		double := createShape(actor.TriangleMeshGeometry{Mesh: createQuadMesh(), DoubleSided: true}, actor.NewTransform(), filter.Block, component.Payload{})

		hit := scene.LocationHit{Shape: single, Hit: geometry.Hit{Normal: edge, FaceIndex: 0}}
		if got := FindGeomOpposingNormal(actor.GeometryTypeSphere, hit, up, edge); !vecNearlyEqual(got, mgl64.Vec3{0, 0, 1}, epsilon) {
			t.Errorf("expected (0,0,1), got %v", got)
		}

		hit.Shape = double
		if got := FindGeomOpposingNormal(actor.GeometryTypeSphere, hit, up, edge); !vecNearlyEqual(got, mgl64.Vec3{0, 0, -1}, epsilon) {
			t.Errorf("expected the double sided normal to oppose the trace, got %v", got)
		}
	})

	t.Run("height field", func(t *testing.T) {
		field := actor.NewHeightField(3, 3)
		hf := actor.HeightFieldGeometry{Field: field, HeightScale: 1, RowScale: 1, ColumnScale: 1}
		shape := createShape(hf, actor.NewTransform(), filter.Block, component.Payload{})

		hit := scene.LocationHit{Shape: shape, Hit: geometry.Hit{Normal: edge, FaceIndex: 0}}
		if got := FindGeomOpposingNormal(actor.GeometryTypeSphere, hit, down, edge); !vecNearlyEqual(got, mgl64.Vec3{0, 0, 1}, epsilon) {
			t.Errorf("expected (0,0,1), got %v", got)
		}
	})

	t.Run("non round query", func(t *testing.T) {
		shape := createShape(actor.BoxGeometry{HalfExtents: mgl64.Vec3{1, 1, 1}}, actor.NewTransform(), filter.Block, component.Payload{})
		hit := scene.LocationHit{Shape: shape, Hit: geometry.Hit{Normal: edge}}
		if got := FindGeomOpposingNormal(actor.GeometryTypeBox, hit, down, edge); got != edge {
			t.Errorf("expected the reported normal, got %v", got)
		}
	})
}

func TestFindFaceIndex(t *testing.T) {
	hull := actor.ConvexMeshGeometry{Mesh: actor.NewBoxConvexMesh(mgl64.Vec3{1, 1, 1}), Scale: actor.IdentityScale()}
	shape := createShape(hull, actor.NewTransform(), filter.Block, component.Payload{})

	tests := []struct {
		name      string
		position  mgl64.Vec3
		direction mgl64.Vec3
		expected  uint32
	}{
		{"top face", mgl64.Vec3{0.5, 0, 1}, mgl64.Vec3{0, 0, -1}, 4},
		{"edge from the side", mgl64.Vec3{1, 0, 1}, mgl64.Vec3{-1, 0, 0}, 0},
		{"edge from above", mgl64.Vec3{1, 0, 1}, mgl64.Vec3{0, 0, -1}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := scene.LocationHit{Shape: shape, Hit: geometry.Hit{Position: tt.position, FaceIndex: geometry.InvalidFaceIndex}}
			if got := FindFaceIndex(hit, tt.direction); got != tt.expected {
				t.Errorf("expected face %d, got %d", tt.expected, got)
			}
		})
	}

	t.Run("converted sweep reports the recomputed polygon", func(t *testing.T) {
		owned := createShape(hull, actor.NewTransform(), filter.Block, bodyPayload(createComponent(1, false), 0))
		hit := scene.LocationHit{Shape: owned, Hit: geometry.Hit{
			Position:  mgl64.Vec3{1, 0, 1},
			Normal:    mgl64.Vec3{0, 0, 1},
			Distance:  1,
			FaceIndex: 0,
			Flags:     geometry.HitDefault,
		}}
		q := sweepQuery(actor.SphereGeometry{Radius: 1}, mgl64.Vec3{1, 0, 3}, mgl64.Vec3{1, 0, -1})
		q.ReturnFaceIndex = true

		var out HitResult
		if err := ConvertQueryImpactHit(NewConfig(), hit, q, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.FaceIndex != 4 {
			t.Errorf("expected the top polygon 4, got %d", out.FaceIndex)
		}
	})

	t.Run("not a hull", func(t *testing.T) {
		hit := scene.LocationHit{Shape: createShape(actor.SphereGeometry{Radius: 1}, actor.NewTransform(), filter.Block, component.Payload{}), Hit: geometry.Hit{FaceIndex: 3}}
		if got := FindFaceIndex(hit, mgl64.Vec3{0, 0, -1}); got != 3 {
			t.Errorf("expected the reported face, got %d", got)
		}
	})
}
