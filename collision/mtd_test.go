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
)

func overlapHit(shape *actor.Shape) scene.LocationHit {
	return scene.LocationHit{Shape: shape, Hit: geometry.Hit{FaceIndex: geometry.InvalidFaceIndex, Flags: geometry.HitDistance}}
}

func sweepQuery(g actor.Geometry, start, end mgl64.Vec3) Query {
	return Query{Start: start, End: end, Geometry: g, Pose: actor.NewTransformAt(start), Filter: blockingQueryFilter()}
}

func TestComputeMTD(t *testing.T) {
	ground := createShape(actor.BoxGeometry{HalfExtents: mgl64.Vec3{2, 2, 1}}, actor.NewTransform(), filter.Block, component.Payload{})

	t.Run("reported", func(t *testing.T) {
		hit := scene.LocationHit{Shape: ground, Hit: geometry.Hit{
			Normal:   mgl64.Vec3{0, 0, 1},
			Distance: -0.5,
			Flags:    geometry.HitNormal | geometry.HitDistance | geometry.HitMTD,
		}}
		q := sweepQuery(actor.SphereGeometry{Radius: 1}, mgl64.Vec3{0, 0, 1.5}, mgl64.Vec3{0, 0, -1.5})

		normal, depth, method := ComputeMTD(NewConfig(), hit, q)
		if method != MTDReported {
			t.Fatalf("expected the reported normal, got %v", method)
		}
		if normal != (mgl64.Vec3{0, 0, 1}) || !nearlyEqual(depth, 0.5, epsilon) {
			t.Errorf("unexpected mtd %v %v", normal, depth)
		}
	})

	t.Run("inflated sphere", func(t *testing.T) {
		q := sweepQuery(actor.SphereGeometry{Radius: 1}, mgl64.Vec3{0, 0, 1.5}, mgl64.Vec3{0, 0, -1.5})

		normal, depth, method := ComputeMTD(NewConfig(), overlapHit(ground), q)
		if method != MTDInflated {
			t.Fatalf("expected the inflated method, got %v", method)
		}
		if normal.Z() < 0.99 {
			t.Errorf("expected to be pushed up, got %v", normal)
		}
		if !nearlyEqual(depth, 0.5, 0.01) {
			t.Errorf("expected depth 0.5, got %v", depth)
		}
	})

	t.Run("jittered hull", func(t *testing.T) {
		slab := createShape(actor.BoxGeometry{HalfExtents: mgl64.Vec3{2, 2, 0.5}}, actor.NewTransform(), filter.Block, component.Payload{})
		hull := actor.ConvexMeshGeometry{Mesh: actor.NewBoxConvexMesh(mgl64.Vec3{0.5, 0.5, 0.5}), Scale: actor.IdentityScale()}
		q := sweepQuery(hull, mgl64.Vec3{0, 0, 0.25}, mgl64.Vec3{0, 0, -1.75})

		normal, depth, method := ComputeMTD(NewConfig(), overlapHit(slab), q)
		if method != MTDJittered {
			t.Fatalf("expected the jittered method, got %v", method)
		}
		if !vecNearlyEqual(normal, mgl64.Vec3{0, 0, 1}, 1e-3) {
			t.Errorf("expected to be pushed up, got %v", normal)
		}
		if !nearlyEqual(depth, 0.75, 0.01) {
			t.Errorf("expected depth 0.75, got %v", depth)
		}
	})

	t.Run("no shape", func(t *testing.T) {
		q := sweepQuery(actor.SphereGeometry{Radius: 1}, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 0, -1})
		normal, _, method := ComputeMTD(nil, scene.LocationHit{}, q)
		if method != MTDNone || normal != (mgl64.Vec3{0, 0, 1}) {
			t.Errorf("expected the trace to be opposed, got %v %v", normal, method)
		}
	})
}

func TestFindOverlappedTriangleNormal(t *testing.T) {
	field := actor.NewHeightField(3, 3)
	hf := actor.HeightFieldGeometry{Field: field, HeightScale: 1, RowScale: 1, ColumnScale: 1}

	r, ok := findOverlappedTriangleNormal(DefaultMTDConfig(), actor.SphereGeometry{Radius: 1}, actor.NewTransformAt(mgl64.Vec3{0.5, 0.5, 0.5}), hf, actor.NewTransform())
	if !ok {
		t.Fatal("expected overlapping triangles")
	}
	if r.method != MTDTriangle || !vecNearlyEqual(r.normal, mgl64.Vec3{0, 0, 1}, epsilon) {
		t.Errorf("expected the ground normal, got %v (%v)", r.normal, r.method)
	}
	if !nearlyEqual(r.depth, 0.5, 1e-3) {
		t.Errorf("expected depth 0.5, got %v", r.depth)
	}

	if _, ok := findOverlappedTriangleNormal(DefaultMTDConfig(), actor.SphereGeometry{Radius: 1}, actor.NewTransformAt(mgl64.Vec3{0.5, 0.5, 5}), hf, actor.NewTransform()); ok {
		t.Error("expected no triangle far above the field")
	}
}

func TestNearestPointMTD(t *testing.T) {
	target := createShape(actor.SphereGeometry{Radius: 1}, actor.NewTransform(), filter.Block, component.Payload{})

	tests := []struct {
		name     string
		position mgl64.Vec3
	}{
		{"inside uses the bounds center", mgl64.Vec3{0, 0, 0.5}},
		{"outside uses the closest point", mgl64.Vec3{0, 0, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := nearestPointMTD(overlapHit(target), sweepQuery(actor.SphereGeometry{Radius: 1}, tt.position, tt.position.Add(mgl64.Vec3{1, 0, 0})))
			if r.method != MTDNearestPoint || !vecNearlyEqual(r.normal, mgl64.Vec3{0, 0, 1}, 1e-6) {
				t.Errorf("expected (0,0,1), got %v", r.normal)
			}
		})
	}
}

func TestConvertStartPenetrating(t *testing.T) {
	hull := actor.ConvexMeshGeometry{Mesh: actor.NewBoxConvexMesh(mgl64.Vec3{1, 1, 1}), Scale: actor.IdentityScale()}
	owner := createComponent(1, false)
	shape := createShape(hull, actor.NewTransform(), filter.Block, bodyPayload(owner, 0))

	q := RayQuery(mgl64.Vec3{0, 0, 0.2}, mgl64.Vec3{0, 0, 5}, blockingQueryFilter())

	var out HitResult
	if err := ConvertQueryImpactHit(NewConfig(), overlapHit(shape), q, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !out.StartPenetrating || out.Time != 0 || out.Distance != 0 {
		t.Errorf("expected a start penetrating hit at time 0, got %+v", out)
	}
	if out.PenetrationDepth < 0 || math.IsNaN(out.PenetrationDepth) || math.IsInf(out.PenetrationDepth, 0) {
		t.Errorf("expected a finite positive depth, got %v", out.PenetrationDepth)
	}
	if out.Normal != out.ImpactNormal || out.Normal.Z() < 0.9 {
		t.Errorf("expected to be pushed through the top face, got %v", out.Normal)
	}
	if out.Location != q.Start || out.ImpactPoint != q.Start {
		t.Errorf("expected location at the trace start, got %v", out.Location)
	}
	if !out.BlockingHit || out.Component != owner {
		t.Errorf("unexpected identity %+v", out)
	}
}
