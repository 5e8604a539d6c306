package geometry

import (
	"math"

	"github.com/akmonengine/probe/actor"
	"github.com/akmonengine/probe/epa"
	"github.com/akmonengine/probe/gjk"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

func overlapsTriangle(c gjk.Convex, tri [3]mgl64.Vec3) bool {
	return gjk.Distance(c, triangleConvex(tri)).Overlap
}

// Overlap reports whether a convex query geometry intersects a posed target.
func Overlap(query actor.Geometry, pose actor.Transform, target actor.Geometry, targetPose actor.Transform) bool {
	c, ok := Convex(query, pose)
	if !ok {
		return false
	}

	if IsTriangleGeometry(target) {
		hit := false
		forEachTriangle(target, targetPose, actor.Bounds(query, pose), func(_ uint32, tri [3]mgl64.Vec3) bool {
			hit = overlapsTriangle(c, tri)
			return !hit
		})
		return hit
	}

	t, ok := Convex(target, targetPose)
	if !ok {
		return false
	}

	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)
	simplex.Reset()
	return gjk.GJK(c, t, simplex)
}

// ComputePenetration returns the unit direction that pushes the query
// geometry out of the target and the depth to travel along it. It returns
// false when the geometries are separated or the depth cannot be computed.
// Against meshes and height fields the deepest overlapping triangle wins.
func ComputePenetration(query actor.Geometry, pose actor.Transform, target actor.Geometry, targetPose actor.Transform) (mgl64.Vec3, float64, bool) {
	c, ok := Convex(query, pose)
	if !ok {
		return mgl64.Vec3{}, 0, false
	}

	if IsTriangleGeometry(target) {
		var dir mgl64.Vec3
		depth := -1.0
		forEachTriangle(target, targetPose, actor.Bounds(query, pose), func(_ uint32, tri [3]mgl64.Vec3) bool {
			if d, p, ok := penetrate(c, triangleConvex(tri)); ok && p > depth {
				dir, depth = d, p
			}
			return true
		})
		return dir, depth, depth >= 0
	}

	t, ok := Convex(target, targetPose)
	if !ok {
		return mgl64.Vec3{}, 0, false
	}
	return penetrate(c, t)
}

func penetrate(a, b gjk.Convex) (mgl64.Vec3, float64, bool) {
	p, overlap, err := epa.Penetrate(a, b)
	if !overlap || (err != nil && !errors.Is(err, epa.ErrNotConverged)) {
		return mgl64.Vec3{}, 0, false
	}
	if !actor.IsFiniteVec3(p.Normal) || math.IsNaN(p.Depth) || math.IsInf(p.Depth, 0) {
		return mgl64.Vec3{}, 0, false
	}
	// the normal points from the query toward the target
	return p.Normal.Mul(-1), p.Depth, true
}

// PointDistance returns the distance from a point to a posed geometry and
// the closest point on it. Points inside a convex geometry are at distance 0
// and are their own closest point.
func PointDistance(point mgl64.Vec3, g actor.Geometry, pose actor.Transform) (float64, mgl64.Vec3, bool) {
	if IsTriangleGeometry(g) {
		best := math.MaxFloat64
		var closest mgl64.Vec3
		all := actor.AABB{
			Min: mgl64.Vec3{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64},
			Max: mgl64.Vec3{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64},
		}
		if hf, ok := g.(actor.HeightFieldGeometry); ok {
			all = actor.Bounds(hf, pose)
		}
		forEachTriangle(g, pose, all, func(_ uint32, tri [3]mgl64.Vec3) bool {
			res := gjk.Distance(pointConvex(point), triangleConvex(tri))
			if res.Distance < best {
				best, closest = res.Distance, res.PointB
			}
			return true
		})
		return best, closest, best < math.MaxFloat64
	}

	c, ok := Convex(g, pose)
	if !ok {
		return 0, mgl64.Vec3{}, false
	}

	res := gjk.Distance(pointConvex(point), c)
	if res.Overlap {
		return 0, point, true
	}
	return res.Distance, res.PointB, true
}
