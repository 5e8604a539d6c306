package collision

import (
	"math"

	"github.com/akmonengine/probe/actor"
	"github.com/akmonengine/probe/geometry"
	"github.com/akmonengine/probe/scene"
	"github.com/go-gl/mathgl/mgl64"
	log "github.com/sirupsen/logrus"
)

// MTDMethod names the step of the depenetration that produced a result
type MTDMethod uint8

const (
	MTDNone MTDMethod = iota
	MTDReported
	MTDInflated
	MTDJittered
	MTDTriangle
	MTDNearestPoint
)

func (m MTDMethod) String() string {
	switch m {
	case MTDReported:
		return "reported"
	case MTDInflated:
		return "inflated"
	case MTDJittered:
		return "jittered"
	case MTDTriangle:
		return "triangle"
	case MTDNearestPoint:
		return "nearest point"
	}
	return "none"
}

type mtd struct {
	normal mgl64.Vec3
	depth  float64
	method MTDMethod
}

// convertOverlappedShapeToImpactHit fills out for a hit that started in
// penetration of the shape
func convertOverlappedShapeToImpactHit(cfg *Config, hit scene.LocationHit, q Query, out *HitResult) {
	out.StartPenetrating = true
	out.BlockingHit = IsBlocking(hit.Shape, q.Filter)
	out.Time = 0
	out.Distance = 0
	out.Location = q.Pose.Position
	out.ImpactPoint = q.Pose.Position
	out.TraceStart = q.Start
	out.TraceEnd = q.End

	result := computeMTD(cfg, hit, q)
	out.Normal = result.normal
	out.ImpactNormal = result.normal
	out.PenetrationDepth = result.depth

	setHitResultFromShapeAndFaceIndex(hit.Shape, hit.FaceIndex, out, q.ReturnFaceIndex, q.ReturnPhysicalMaterial)
}

// ComputeMTD returns the direction and depth separating the query geometry
// from a shape it starts in, and the method that found them. Each method is
// tried in turn until one gives a finite normal.
func ComputeMTD(cfg *Config, hit scene.LocationHit, q Query) (mgl64.Vec3, float64, MTDMethod) {
	r := computeMTD(cfg, hit, q)
	return r.normal, r.depth, r.method
}

func computeMTD(cfg *Config, hit scene.LocationHit, q Query) mtd {
	if hit.Flags.Has(geometry.HitNormal) && validNormal(hit.Normal) {
		return mtd{normal: hit.Normal.Normalize(), depth: math.Abs(hit.Distance), method: MTDReported}
	}
	if hit.Shape == nil {
		return mtd{normal: fallbackNormal(q), method: MTDNone}
	}

	mtdCfg := DefaultMTDConfig()
	if cfg != nil {
		mtdCfg = cfg.MTD
	}

	g := q.Geometry
	if g == nil {
		// raycasts depenetrate a point
		g = actor.SphereGeometry{}
	}
	target := hit.Shape.Geometry
	targetPose := hit.Shape.GlobalPose()

	for _, inflation := range []float64{mtdCfg.SmallInflation, mtdCfg.LargeInflation} {
		if r, ok := computeInflatedMTD(cfg, g, q.Pose, target, targetPose, inflation); ok {
			return r
		}
	}

	if g.Type() == actor.GeometryTypeConvexMesh {
		if r, ok := computeJitteredMTD(cfg, mtdCfg, g, q, target, targetPose); ok {
			return r
		}
	}

	if geometry.IsTriangleGeometry(target) {
		if r, ok := findOverlappedTriangleNormal(mtdCfg, g, q.Pose, target, targetPose); ok {
			return r
		}
	}

	return nearestPointMTD(hit, q)
}

func computeInflatedMTD(cfg *Config, g actor.Geometry, pose actor.Transform, target actor.Geometry, targetPose actor.Transform, inflation float64) (mtd, bool) {
	inflated, ok := geometry.Inflate(g, inflation)
	if !ok {
		return mtd{}, false
	}

	normal, depth, ok := geometry.ComputePenetration(inflated, pose, target, targetPose)
	if !ok {
		return mtd{}, false
	}
	if !validNormal(normal) {
		cfg.logger().WithField("shape", target.Type()).Warn("penetration normal is not finite")
		return mtd{}, false
	}

	return mtd{
		normal: normal.Normalize(),
		depth:  max(math.Abs(depth)-inflation, 0) + smallNumber,
		method: MTDInflated,
	}, true
}

// computeJitteredMTD retries the penetration from slightly offset poses,
// for convex hulls that cannot be inflated
func computeJitteredMTD(cfg *Config, mtdCfg MTDConfig, g actor.Geometry, q Query, target actor.Geometry, targetPose actor.Transform) (mtd, bool) {
	direction := q.delta()
	if l := direction.Len(); l > 0 {
		direction = direction.Mul(1 / l)
	}

	attempts := 0
	for _, axis := range mtdCfg.JitterOrder {
		if attempts >= mtdCfg.MaxJitterAttempts {
			break
		}
		offset := axis.offset(direction).Mul(mtdCfg.JitterDistance)
		if offset.LenSqr() == 0 {
			continue
		}
		attempts++

		normal, depth, ok := geometry.ComputePenetration(g, q.Pose.Translated(offset), target, targetPose)
		if !ok {
			continue
		}
		if !validNormal(normal) {
			cfg.logger().WithFields(log.Fields{
				"shape":   target.Type(),
				"attempt": attempts,
			}).Warn("penetration normal is not finite")
			continue
		}

		normal = normal.Normalize()
		// depth at the unjittered pose
		return mtd{
			normal: normal,
			depth:  max(math.Abs(depth)+normal.Dot(offset), 0) + smallNumber,
			method: MTDJittered,
		}, true
	}
	return mtd{}, false
}

// findOverlappedTriangleNormal picks, among the triangles overlapping the
// query, the plane the query center is furthest in front of
func findOverlappedTriangleNormal(mtdCfg MTDConfig, g actor.Geometry, pose actor.Transform, target actor.Geometry, targetPose actor.Transform) (mtd, bool) {
	indices, _ := geometry.FindOverlapTriangles(g, pose, target, targetPose, mtdCfg.MaxOverlapTriangles)

	center := pose.Position
	bestPlaneDistance := -math.MaxFloat64
	var best mtd
	found := false
	for _, index := range indices {
		tri, ok := geometry.WorldTriangle(target, targetPose, index)
		if !ok {
			continue
		}
		n := geometry.TriangleNormal(tri)
		if n.LenSqr() == 0 {
			continue
		}

		planeDistance := n.Dot(center.Sub(tri[0]))
		if planeDistance > bestPlaneDistance {
			bestPlaneDistance = planeDistance
			best = mtd{normal: n, depth: planeDepth(g, pose, n, tri[0]), method: MTDTriangle}
			found = true
		}
	}
	return best, found
}

// planeDepth is how far the query geometry reaches behind a plane
func planeDepth(g actor.Geometry, pose actor.Transform, normal, onPlane mgl64.Vec3) float64 {
	c, ok := geometry.Convex(g, pose)
	if !ok {
		return 0
	}
	deepest := c.Support(normal.Mul(-1))
	return max(normal.Dot(onPlane.Sub(deepest)), 0)
}

// nearestPointMTD pushes the query away from the closest point of the
// shape, or from its bounds center when the query origin is inside
func nearestPointMTD(hit scene.LocationHit, q Query) mtd {
	location := q.Pose.Position
	target := hit.Shape.Geometry
	targetPose := hit.Shape.GlobalPose()

	distance, closest, ok := geometry.PointDistance(location, target, targetPose)
	if !ok || distance <= smallNumber {
		closest = actor.Bounds(target, targetPose).Center()
	}

	normal := location.Sub(closest)
	if !validNormal(normal) {
		return mtd{normal: fallbackNormal(q), depth: math.Abs(hit.Distance), method: MTDNearestPoint}
	}
	return mtd{normal: normal.Normalize(), depth: math.Abs(hit.Distance), method: MTDNearestPoint}
}

// fallbackNormal opposes the trace, or points up for traces of no length
func fallbackNormal(q Query) mgl64.Vec3 {
	delta := q.delta()
	if delta.LenSqr() == 0 {
		return mgl64.Vec3{0, 0, 1}
	}
	return delta.Mul(-1).Normalize()
}

func validNormal(n mgl64.Vec3) bool {
	return actor.IsFiniteVec3(n) && n.LenSqr() > 1e-12
}
