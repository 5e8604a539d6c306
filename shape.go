package probe

import (
	"github.com/akmonengine/probe/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ShapeKind is the kind of a CollisionShape
type ShapeKind uint8

const (
	ShapeLine ShapeKind = iota
	ShapeBox
	ShapeSphere
	ShapeCapsule
	ShapeConvex
	// ShapeGeometry wraps any geometry. Overlaps reject the kinds they
	// cannot query.
	ShapeGeometry
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeCapsule:
		return "capsule"
	case ShapeConvex:
		return "convex"
	case ShapeGeometry:
		return "geometry"
	}
	return "line"
}

// MinExtent is the smallest half extent or radius a query geometry gets
const MinExtent = 1e-4

// CollisionShape describes the volume of a sweep or overlap. Capsules are
// aligned to Z and HalfHeight includes the radius.
type CollisionShape struct {
	Kind        ShapeKind
	HalfExtents mgl64.Vec3
	Radius      float64
	HalfHeight  float64
	Convex      *actor.ConvexMesh
	Scale       actor.MeshScale
	Geometry    actor.Geometry
}

// LineShape is a zero volume shape: sweeping it is a raycast
func LineShape() CollisionShape {
	return CollisionShape{Kind: ShapeLine}
}

func MakeBox(halfExtents mgl64.Vec3) CollisionShape {
	return CollisionShape{Kind: ShapeBox, HalfExtents: halfExtents}
}

func MakeSphere(radius float64) CollisionShape {
	return CollisionShape{Kind: ShapeSphere, Radius: radius}
}

func MakeCapsule(radius, halfHeight float64) CollisionShape {
	return CollisionShape{Kind: ShapeCapsule, Radius: radius, HalfHeight: halfHeight}
}

func MakeConvex(mesh *actor.ConvexMesh, scale actor.MeshScale) CollisionShape {
	return CollisionShape{Kind: ShapeConvex, Convex: mesh, Scale: scale}
}

func MakeGeometry(g actor.Geometry) CollisionShape {
	return CollisionShape{Kind: ShapeGeometry, Geometry: g}
}

// IsNearlyZero reports whether the shape has no volume to speak of
func (s CollisionShape) IsNearlyZero() bool {
	switch s.Kind {
	case ShapeBox:
		return s.HalfExtents.X() <= MinExtent && s.HalfExtents.Y() <= MinExtent && s.HalfExtents.Z() <= MinExtent
	case ShapeSphere, ShapeCapsule:
		return s.Radius <= MinExtent
	case ShapeConvex:
		return s.Convex == nil
	case ShapeGeometry:
		return s.Geometry == nil
	}
	return true
}

// queryGeometry returns the geometry of the shape and its pose at
// position for the given rotation
func (s CollisionShape) queryGeometry(position mgl64.Vec3, rotation mgl64.Quat) (actor.Geometry, actor.Transform) {
	pose := actor.Transform{Position: position, Rotation: rotation}

	switch s.Kind {
	case ShapeBox:
		e := s.HalfExtents
		return actor.BoxGeometry{HalfExtents: mgl64.Vec3{
			max(e.X(), MinExtent), max(e.Y(), MinExtent), max(e.Z(), MinExtent),
		}}, pose
	case ShapeSphere:
		return actor.SphereGeometry{Radius: max(s.Radius, MinExtent)}, pose
	case ShapeCapsule:
		radius := max(s.Radius, MinExtent)
		segment := s.HalfHeight - radius
		if segment <= MinExtent {
			return actor.SphereGeometry{Radius: radius}, pose
		}
		return actor.CapsuleGeometry{Radius: radius, HalfHeight: segment}, pose
	case ShapeConvex:
		if s.Convex == nil {
			return nil, pose
		}
		scale := s.Scale
		if scale.Scale.LenSqr() == 0 {
			scale = actor.IdentityScale()
		}
		return actor.ConvexMeshGeometry{Mesh: s.Convex, Scale: scale}, pose
	case ShapeGeometry:
		return s.Geometry, pose
	}
	return nil, pose
}
