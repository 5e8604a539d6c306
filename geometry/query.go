package geometry

import (
	"math"

	"github.com/akmonengine/probe/actor"
	"github.com/akmonengine/probe/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// HitFlags selects the fields a query fills and reports which are valid.
type HitFlags uint16

const (
	HitPosition HitFlags = 1 << iota
	HitNormal
	HitDistance
	// HitMTD makes sweeps starting in overlap report the depenetration
	// direction as normal and the negated depth as distance.
	HitMTD
	HitFaceIndex

	HitDefault = HitPosition | HitNormal | HitDistance | HitFaceIndex
)

func (f HitFlags) Has(flag HitFlags) bool {
	return f&flag == flag
}

// Hit is the result of a query against a single geometry.
type Hit struct {
	Position  mgl64.Vec3
	Normal    mgl64.Vec3
	Distance  float64
	FaceIndex uint32
	// Flags reports which fields are valid
	Flags HitFlags
}

// HadInitialOverlap reports whether the query started inside the geometry.
func (h Hit) HadInitialOverlap() bool {
	return h.Distance <= 0
}

func initialOverlapHit() Hit {
	return Hit{FaceIndex: InvalidFaceIndex, Flags: HitDistance}
}

// Raycast intersects a ray with a posed geometry and returns the closest
// hit within maxDistance. direction must be normalized.
func Raycast(origin, direction mgl64.Vec3, maxDistance float64, g actor.Geometry, pose actor.Transform, flags HitFlags) (Hit, bool) {
	if IsTriangleGeometry(g) {
		return raycastTriangles(origin, direction, maxDistance, g, pose, flags)
	}

	c, ok := Convex(g, pose)
	if !ok {
		return Hit{}, false
	}

	res, hit := gjk.Sweep(pointConvex(origin), c, direction, maxDistance)
	if !hit {
		return Hit{}, false
	}
	if res.InitialOverlap {
		return initialOverlapHit(), true
	}

	h := Hit{
		Position:  res.Point,
		Normal:    res.Normal,
		Distance:  res.Distance,
		FaceIndex: InvalidFaceIndex,
		Flags:     HitPosition | HitNormal | HitDistance,
	}
	if flags.Has(HitFaceIndex) {
		h.FaceIndex = hullFaceIndex(g, pose, h.Normal)
		h.Flags |= HitFaceIndex
	}
	return h, true
}

func raycastTriangles(origin, direction mgl64.Vec3, maxDistance float64, g actor.Geometry, pose actor.Transform, flags HitFlags) (Hit, bool) {
	doubleSided := false
	if mesh, ok := g.(actor.TriangleMeshGeometry); ok {
		doubleSided = mesh.DoubleSided
	}

	end := origin.Add(direction.Mul(maxDistance))
	box := actor.AABBFromPoints(origin, end)

	best := Hit{Distance: math.MaxFloat64}
	found := false
	forEachTriangle(g, pose, box, func(index uint32, tri [3]mgl64.Vec3) bool {
		t, ok := rayTriangle(origin, direction, tri, maxDistance, doubleSided)
		if !ok || t >= best.Distance {
			return true
		}

		n := TriangleNormal(tri)
		if n.Dot(direction) > 0 {
			n = n.Mul(-1)
		}
		best = Hit{
			Position:  origin.Add(direction.Mul(t)),
			Normal:    n,
			Distance:  t,
			FaceIndex: InvalidFaceIndex,
			Flags:     HitPosition | HitNormal | HitDistance,
		}
		if flags.Has(HitFaceIndex) {
			best.FaceIndex = index
			best.Flags |= HitFaceIndex
		}
		found = true
		return true
	})
	return best, found
}

// Sweep moves a convex query geometry from pose along direction (normalized)
// up to maxDistance against a posed target geometry.
func Sweep(query actor.Geometry, pose actor.Transform, direction mgl64.Vec3, maxDistance float64, target actor.Geometry, targetPose actor.Transform, flags HitFlags) (Hit, bool) {
	c, ok := Convex(query, pose)
	if !ok {
		return Hit{}, false
	}

	if IsTriangleGeometry(target) {
		return sweepTriangles(c, query, pose, direction, maxDistance, target, targetPose, flags)
	}

	t, ok := Convex(target, targetPose)
	if !ok {
		return Hit{}, false
	}

	res, hit := gjk.Sweep(c, t, direction, maxDistance)
	if !hit {
		return Hit{}, false
	}
	if res.InitialOverlap {
		return sweepInitialOverlap(query, pose, target, targetPose, flags), true
	}

	h := Hit{
		Position:  res.Point,
		Normal:    res.Normal,
		Distance:  res.Distance,
		FaceIndex: InvalidFaceIndex,
		Flags:     HitPosition | HitNormal | HitDistance,
	}
	if flags.Has(HitFaceIndex) {
		h.FaceIndex = hullFaceIndex(target, targetPose, h.Normal)
		h.Flags |= HitFaceIndex
	}
	return h, true
}

func sweepTriangles(c gjk.Convex, query actor.Geometry, pose actor.Transform, direction mgl64.Vec3, maxDistance float64, target actor.Geometry, targetPose actor.Transform, flags HitFlags) (Hit, bool) {
	doubleSided := false
	if mesh, ok := target.(actor.TriangleMeshGeometry); ok {
		doubleSided = mesh.DoubleSided
	}

	start := actor.Bounds(query, pose)
	swept := start.Union(start.Translate(direction.Mul(maxDistance))).Expand(gjk.SweepTolerance)

	best := Hit{Distance: math.MaxFloat64}
	found := false
	overlap := false
	forEachTriangle(target, targetPose, swept, func(index uint32, tri [3]mgl64.Vec3) bool {
		n := TriangleNormal(tri)
		if n.LenSqr() == 0 {
			return true
		}

		res, hit := gjk.Sweep(c, triangleConvex(tri), direction, maxDistance)
		if !hit {
			return true
		}
		if res.InitialOverlap {
			overlap = true
			return false
		}
		// single sided triangles are only hit from the front
		if !doubleSided && n.Dot(direction) >= 0 {
			return true
		}
		if res.Distance >= best.Distance {
			return true
		}

		if n.Dot(direction) > 0 {
			n = n.Mul(-1)
		}
		normal := res.Normal
		if normal.LenSqr() == 0 {
			normal = n
		}
		best = Hit{
			Position:  res.Point,
			Normal:    normal,
			Distance:  res.Distance,
			FaceIndex: index,
			Flags:     HitDefault,
		}
		found = true
		return true
	})

	if overlap {
		return sweepInitialOverlap(query, pose, target, targetPose, flags), true
	}
	return best, found
}

// sweepInitialOverlap reports a sweep that starts in overlap. With HitMTD
// the depenetration is computed and reported as a negative distance.
func sweepInitialOverlap(query actor.Geometry, pose actor.Transform, target actor.Geometry, targetPose actor.Transform, flags HitFlags) Hit {
	h := initialOverlapHit()
	if !flags.Has(HitMTD) {
		return h
	}

	dir, depth, ok := ComputePenetration(query, pose, target, targetPose)
	if !ok {
		return h
	}

	h.Normal = dir
	h.Distance = -depth
	h.Position = pose.Position
	h.Flags = HitPosition | HitNormal | HitDistance | HitMTD
	return h
}

// hullFaceIndex returns the polygon of a convex hull whose normal best
// matches a world space normal, InvalidFaceIndex for other geometries.
func hullFaceIndex(g actor.Geometry, pose actor.Transform, normal mgl64.Vec3) uint32 {
	hull, ok := g.(actor.ConvexMeshGeometry)
	if !ok || hull.Mesh == nil {
		return InvalidFaceIndex
	}

	local := pose.RotateInverse(normal)
	best := InvalidFaceIndex
	bestDot := -math.MaxFloat64
	for i := 0; i < hull.Mesh.NbPolygons(); i++ {
		n, ok := hull.PolygonShapeNormal(uint32(i))
		if !ok {
			continue
		}
		if d := n.Dot(local); d > bestDot {
			best, bestDot = uint32(i), d
		}
	}
	return best
}
