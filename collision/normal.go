package collision

import (
	"math"

	"github.com/akmonengine/probe/actor"
	"github.com/akmonengine/probe/geometry"
	"github.com/akmonengine/probe/scene"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	smallNumber = 1e-4
	// faceSearchRadius is how far from the impact point a hull plane may
	// pass to be a candidate face
	faceSearchRadius = 0.05
)

// FindGeomOpposingNormal returns the normal of the surface hit by a sphere
// or capsule sweep. Round shapes report the normal of the contact on the
// swept shape, which differs from the face normal on edges and corners.
// Other query kinds, and hits without a usable face, keep normal.
func FindGeomOpposingNormal(queryType actor.GeometryType, hit scene.LocationHit, traceDirectionDenorm, normal mgl64.Vec3) mgl64.Vec3 {
	if queryType != actor.GeometryTypeSphere && queryType != actor.GeometryTypeCapsule {
		return normal
	}
	if hit.Shape == nil {
		return normal
	}

	switch hit.Shape.GeometryType() {
	case actor.GeometryTypeBox:
		return FindBoxOpposingNormal(hit, traceDirectionDenorm, normal)
	case actor.GeometryTypeConvexMesh:
		return FindConvexMeshOpposingNormal(hit, traceDirectionDenorm, normal)
	case actor.GeometryTypeTriangleMesh:
		return FindTriMeshOpposingNormal(hit, traceDirectionDenorm, normal)
	case actor.GeometryTypeHeightField:
		return FindHeightFieldOpposingNormal(hit, traceDirectionDenorm, normal)
	}
	return normal
}

// FindBoxOpposingNormal picks, among the box faces whose axis the normal
// leans toward, the one most opposed to the trace.
func FindBoxOpposingNormal(hit scene.LocationHit, traceDirectionDenorm, normal mgl64.Vec3) mgl64.Vec3 {
	pose := hit.Shape.GlobalPose()
	localNormal := pose.RotateInverse(normal)
	localTrace := pose.RotateInverse(traceDirectionDenorm)

	var best mgl64.Vec3
	bestOpposingDot := math.MaxFloat64
	for i := 0; i < 3; i++ {
		var sign float64
		switch {
		case localNormal[i] > smallNumber:
			sign = 1
		case localNormal[i] < -smallNumber:
			sign = -1
		default:
			continue
		}

		if d := sign * localTrace[i]; d < bestOpposingDot {
			bestOpposingDot = d
			best = mgl64.Vec3{}
			best[i] = sign
		}
	}

	if best.LenSqr() == 0 {
		return normal
	}
	return pose.Rotate(best)
}

// FindConvexMeshOpposingNormal returns the world normal of the hull polygon
// that was hit
func FindConvexMeshOpposingNormal(hit scene.LocationHit, _ mgl64.Vec3, normal mgl64.Vec3) mgl64.Vec3 {
	if hit.FaceIndex == geometry.InvalidFaceIndex {
		return normal
	}
	hull, ok := hit.Shape.Geometry.(actor.ConvexMeshGeometry)
	if !ok || hull.Mesh == nil {
		return normal
	}

	local, ok := hull.PolygonShapeNormal(hit.FaceIndex)
	if !ok {
		return normal
	}
	return worldNormal(hit.Shape.GlobalPose(), local, normal)
}

// FindTriMeshOpposingNormal returns the world normal of the triangle that
// was hit, facing against the trace on double sided meshes
func FindTriMeshOpposingNormal(hit scene.LocationHit, traceDirectionDenorm, normal mgl64.Vec3) mgl64.Vec3 {
	if hit.FaceIndex == geometry.InvalidFaceIndex {
		return normal
	}
	mesh, ok := hit.Shape.Geometry.(actor.TriangleMeshGeometry)
	if !ok || mesh.Mesh == nil || int(hit.FaceIndex) >= mesh.NbTriangles() {
		return normal
	}

	i0, i1, i2 := mesh.Mesh.TriangleIndices(hit.FaceIndex)
	v0, v1, v2 := mesh.Mesh.Vertices[i0], mesh.Mesh.Vertices[i1], mesh.Mesh.Vertices[i2]
	local := v1.Sub(v0).Cross(v2.Sub(v0))
	if local.LenSqr() == 0 {
		return normal
	}

	local = mesh.Scale.TransformNormal(local.Normalize())
	// a mirroring scale flips the winding
	s := mesh.Scale.Scale
	if s != (mgl64.Vec3{}) && s.X()*s.Y()*s.Z() < 0 {
		local = local.Mul(-1)
	}

	result := worldNormal(hit.Shape.GlobalPose(), local, normal)
	if mesh.DoubleSided && result.Dot(traceDirectionDenorm) > 0 {
		result = result.Mul(-1)
	}
	return result
}

// FindHeightFieldOpposingNormal returns the world normal of the height
// field triangle that was hit
func FindHeightFieldOpposingNormal(hit scene.LocationHit, _ mgl64.Vec3, normal mgl64.Vec3) mgl64.Vec3 {
	if hit.FaceIndex == geometry.InvalidFaceIndex {
		return normal
	}

	tri, ok := geometry.WorldTriangle(hit.Shape.Geometry, hit.Shape.GlobalPose(), hit.FaceIndex)
	if !ok {
		return normal
	}
	n := geometry.TriangleNormal(tri)
	if n.LenSqr() == 0 {
		return normal
	}
	return n
}

func worldNormal(pose actor.Transform, local, fallback mgl64.Vec3) mgl64.Vec3 {
	n := pose.Rotate(local)
	if n.LenSqr() == 0 || !actor.IsFiniteVec3(n) {
		return fallback
	}
	return n.Normalize()
}

// FindFaceIndex recomputes the polygon of a convex hull hit by a sweep: the
// face most opposed to the sweep among those passing close to the impact
// point. Other shapes keep the reported face index.
func FindFaceIndex(hit scene.LocationHit, unitDirection mgl64.Vec3) uint32 {
	if hit.Shape == nil {
		return hit.FaceIndex
	}
	hull, ok := hit.Shape.Geometry.(actor.ConvexMeshGeometry)
	if !ok || hull.Mesh == nil {
		return hit.FaceIndex
	}

	pose := hit.Shape.GlobalPose()
	localPoint := pose.ApplyInverse(hit.Position)
	localDir := pose.RotateInverse(unitDirection)

	best := hit.FaceIndex
	bestDot := math.MaxFloat64
	for i, poly := range hull.Mesh.Polygons {
		if len(poly.VertexIndices) == 0 {
			continue
		}
		n, ok := hull.PolygonShapeNormal(uint32(i))
		if !ok {
			continue
		}

		onPlane := hull.ShapeVertex(int(poly.VertexIndices[0]))
		if math.Abs(n.Dot(localPoint.Sub(onPlane))) > faceSearchRadius {
			continue
		}
		if d := n.Dot(localDir); d < bestDot {
			best, bestDot = uint32(i), d
		}
	}
	return best
}
