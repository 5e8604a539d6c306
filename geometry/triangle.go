package geometry

import (
	"math"

	"github.com/akmonengine/probe/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// InvalidFaceIndex is reported when a hit has no meaningful face.
const InvalidFaceIndex uint32 = 0xFFFFFFFF

// TriangleNormal returns the unit normal of a counter-clockwise triangle,
// zero for a degenerate one.
func TriangleNormal(tri [3]mgl64.Vec3) mgl64.Vec3 {
	n := tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0]))
	l := n.Len()
	if l < 1e-12 {
		return mgl64.Vec3{}
	}
	return n.Mul(1 / l)
}

// WorldTriangle returns a triangle of a mesh or height field in world space.
func WorldTriangle(g actor.Geometry, pose actor.Transform, index uint32) ([3]mgl64.Vec3, bool) {
	var tri [3]mgl64.Vec3
	switch geom := g.(type) {
	case actor.TriangleMeshGeometry:
		if geom.Mesh == nil || int(index) >= geom.NbTriangles() {
			return tri, false
		}
		tri = geom.Triangle(index)
	case actor.HeightFieldGeometry:
		if geom.Field == nil || int(index) >= geom.NbTriangles() {
			return tri, false
		}
		tri = geom.Triangle(index)
	default:
		return tri, false
	}

	for i := range tri {
		tri[i] = pose.Apply(tri[i])
	}
	return tri, true
}

// forEachTriangle visits the world space triangles of a mesh or height
// field whose bounds overlap the world box. Height field holes are
// skipped. Iteration stops when fn returns false.
func forEachTriangle(g actor.Geometry, pose actor.Transform, box actor.AABB, fn func(index uint32, tri [3]mgl64.Vec3) bool) {
	visit := func(index uint32) bool {
		tri, ok := WorldTriangle(g, pose, index)
		if !ok || !actor.AABBFromPoints(tri[:]...).Overlaps(box) {
			return true
		}
		return fn(index, tri)
	}

	switch geom := g.(type) {
	case actor.TriangleMeshGeometry:
		for i := 0; i < geom.NbTriangles(); i++ {
			if !visit(uint32(i)) {
				return
			}
		}
	case actor.HeightFieldGeometry:
		minRow, maxRow, minColumn, maxColumn, ok := geom.CellRange(box.InverseTransform(pose))
		if !ok {
			return
		}
		for r := minRow; r <= maxRow; r++ {
			for c := minColumn; c <= maxColumn; c++ {
				for _, second := range [2]bool{false, true} {
					index := geom.Field.TriangleIndex(r, c, second)
					if geom.Field.IsHole(index) {
						continue
					}
					if !visit(index) {
						return
					}
				}
			}
		}
	}
}

// rayTriangle is the Moller-Trumbore intersection. Back faces are culled
// unless doubleSided.
func rayTriangle(origin, direction mgl64.Vec3, tri [3]mgl64.Vec3, maxDistance float64, doubleSided bool) (float64, bool) {
	const eps = 1e-12

	e1 := tri[1].Sub(tri[0])
	e2 := tri[2].Sub(tri[0])
	p := direction.Cross(e2)
	det := e1.Dot(p)

	if doubleSided {
		if math.Abs(det) < eps {
			return 0, false
		}
	} else if det < eps {
		return 0, false
	}

	inv := 1 / det
	s := origin.Sub(tri[0])
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(e1)
	v := direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := e2.Dot(q) * inv
	if t < 0 || t > maxDistance {
		return 0, false
	}
	return t, true
}

// FindOverlapTriangles returns the triangles of a mesh or height field
// that overlap a convex geometry, at most maxTriangles of them. The boolean
// reports that more triangles overlapped than were returned.
func FindOverlapTriangles(g actor.Geometry, pose actor.Transform, mesh actor.Geometry, meshPose actor.Transform, maxTriangles int) ([]uint32, bool) {
	c, ok := Convex(g, pose)
	if !ok || !IsTriangleGeometry(mesh) {
		return nil, false
	}

	var indices []uint32
	overflow := false
	forEachTriangle(mesh, meshPose, actor.Bounds(g, pose), func(index uint32, tri [3]mgl64.Vec3) bool {
		if !overlapsTriangle(c, tri) {
			return true
		}
		if len(indices) >= maxTriangles {
			overflow = true
			return false
		}
		indices = append(indices, index)
		return true
	})
	return indices, overflow
}
