package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// GeometryType represents the kind of collision geometry
type GeometryType int

const (
	GeometryTypeSphere GeometryType = iota
	GeometryTypeCapsule
	GeometryTypeBox
	GeometryTypeConvexMesh
	GeometryTypeTriangleMesh
	GeometryTypeHeightField
	GeometryTypeInvalid
)

func (g GeometryType) String() string {
	switch g {
	case GeometryTypeSphere:
		return "sphere"
	case GeometryTypeCapsule:
		return "capsule"
	case GeometryTypeBox:
		return "box"
	case GeometryTypeConvexMesh:
		return "convex"
	case GeometryTypeTriangleMesh:
		return "trianglemesh"
	case GeometryTypeHeightField:
		return "heightfield"
	}
	return "invalid"
}

// Geometry is implemented by every collision geometry
type Geometry interface {
	Type() GeometryType
	// LocalBounds returns the bounds in shape space
	LocalBounds() AABB
}

// Bounds returns the world bounds of g posed at t
func Bounds(g Geometry, t Transform) AABB {
	switch geom := g.(type) {
	case SphereGeometry:
		r := mgl64.Vec3{geom.Radius, geom.Radius, geom.Radius}
		return AABB{Min: t.Position.Sub(r), Max: t.Position.Add(r)}
	case CapsuleGeometry:
		axis := t.Rotate(mgl64.Vec3{0, 0, geom.HalfHeight})
		return AABBFromPoints(t.Position.Add(axis), t.Position.Sub(axis)).Expand(geom.Radius)
	}
	return g.LocalBounds().Transform(t)
}

// SphereGeometry is a sphere centered on the shape origin
type SphereGeometry struct {
	Radius float64
}

func (SphereGeometry) Type() GeometryType { return GeometryTypeSphere }

func (s SphereGeometry) LocalBounds() AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: r.Mul(-1), Max: r}
}

// CapsuleGeometry is a segment of half length HalfHeight along the local
// Z axis swept by a sphere of Radius.
type CapsuleGeometry struct {
	Radius     float64
	HalfHeight float64
}

func (CapsuleGeometry) Type() GeometryType { return GeometryTypeCapsule }

func (c CapsuleGeometry) LocalBounds() AABB {
	e := mgl64.Vec3{c.Radius, c.Radius, c.Radius + c.HalfHeight}
	return AABB{Min: e.Mul(-1), Max: e}
}

// BoxGeometry is an oriented box defined by its half-extents
type BoxGeometry struct {
	HalfExtents mgl64.Vec3
}

func (BoxGeometry) Type() GeometryType { return GeometryTypeBox }

func (b BoxGeometry) LocalBounds() AABB {
	return AABB{Min: b.HalfExtents.Mul(-1), Max: b.HalfExtents}
}

// MeshScale scales mesh vertices along the axes of Rotation
type MeshScale struct {
	Scale    mgl64.Vec3
	Rotation mgl64.Quat
}

// IdentityScale returns a scale leaving vertices untouched
func IdentityScale() MeshScale {
	return MeshScale{Scale: mgl64.Vec3{1, 1, 1}, Rotation: mgl64.QuatIdent()}
}

func (m MeshScale) normalized() MeshScale {
	if m.Scale == (mgl64.Vec3{}) {
		m.Scale = mgl64.Vec3{1, 1, 1}
	}
	if m.Rotation.W == 0 && m.Rotation.V.LenSqr() == 0 {
		m.Rotation = mgl64.QuatIdent()
	}
	return m
}

// IsIdentity reports a unit scale
func (m MeshScale) IsIdentity() bool {
	m = m.normalized()
	return m.Scale == mgl64.Vec3{1, 1, 1}
}

// IsUniform reports equal scale on the three axes
func (m MeshScale) IsUniform() bool {
	m = m.normalized()
	return m.Scale.X() == m.Scale.Y() && m.Scale.X() == m.Scale.Z()
}

// HasIdentityRotation reports whether the scale axes are the shape axes
func (m MeshScale) HasIdentityRotation() bool {
	m = m.normalized()
	return math.Abs(m.Rotation.W) >= 1-1e-12
}

// VertexToShape returns the matrix R^T * S * R mapping vertex space to
// shape space.
func (m MeshScale) VertexToShape() mgl64.Mat3 {
	m = m.normalized()
	rot := m.Rotation.Mat4().Mat3()
	return rot.Transpose().Mul3(mgl64.Diag3(m.Scale)).Mul3(rot)
}

// TransformNormal maps a vertex space normal to shape space, normalized.
func (m MeshScale) TransformNormal(n mgl64.Vec3) mgl64.Vec3 {
	m = m.normalized()
	// a uniform mirror still reverses every normal
	if m.IsUniform() && m.Scale.X() > 0 {
		return n
	}

	var tmp mgl64.Vec3
	if m.HasIdentityRotation() {
		// inverse transpose of a diagonal matrix
		tmp = mgl64.Vec3{n.X() / m.Scale.X(), n.Y() / m.Scale.Y(), n.Z() / m.Scale.Z()}
	} else {
		shapeToVertex := m.VertexToShape().Inv()
		tmp = shapeToVertex.Transpose().Mul3x1(n)
	}

	length := tmp.Len()
	if length == 0 {
		return n
	}
	return tmp.Mul(1 / length)
}
