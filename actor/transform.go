package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform represents a rigid pose in 3D space
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// NewTransformAt creates a translated transform without rotation
func NewTransformAt(position mgl64.Vec3) Transform {
	return Transform{Position: position, Rotation: mgl64.QuatIdent()}
}

// Apply maps a local point to world space
func (t Transform) Apply(point mgl64.Vec3) mgl64.Vec3 {
	return t.rotation().Rotate(point).Add(t.Position)
}

// ApplyInverse maps a world point to local space
func (t Transform) ApplyInverse(point mgl64.Vec3) mgl64.Vec3 {
	return t.rotation().Inverse().Rotate(point.Sub(t.Position))
}

// Rotate maps a local direction to world space
func (t Transform) Rotate(v mgl64.Vec3) mgl64.Vec3 {
	return t.rotation().Rotate(v)
}

// RotateInverse maps a world direction to local space
func (t Transform) RotateInverse(v mgl64.Vec3) mgl64.Vec3 {
	return t.rotation().Inverse().Rotate(v)
}

// Mul composes t (parent) with child: the result maps child-local points
// directly to t's parent space.
func (t Transform) Mul(child Transform) Transform {
	rot := t.rotation()
	return Transform{
		Position: t.Position.Add(rot.Rotate(child.Position)),
		Rotation: rot.Mul(child.rotation()).Normalize(),
	}
}

// Inverse returns the transform undoing t
func (t Transform) Inverse() Transform {
	inv := t.rotation().Inverse()
	return Transform{
		Position: inv.Rotate(t.Position.Mul(-1)),
		Rotation: inv,
	}
}

// Translated returns a copy of t moved by offset
func (t Transform) Translated(offset mgl64.Vec3) Transform {
	return Transform{Position: t.Position.Add(offset), Rotation: t.Rotation}
}

// IsFinite reports whether position and rotation hold no NaN or Inf
func (t Transform) IsFinite() bool {
	return IsFiniteVec3(t.Position) && IsFiniteVec3(t.Rotation.V) && !math.IsNaN(t.Rotation.W) && !math.IsInf(t.Rotation.W, 0)
}

// rotation treats the zero quaternion as identity, so literal Transforms
// without a rotation behave.
func (t Transform) rotation() mgl64.Quat {
	if t.Rotation.W == 0 && t.Rotation.V.LenSqr() == 0 {
		return mgl64.QuatIdent()
	}
	return t.Rotation
}

// IsFiniteVec3 reports whether every component of v is finite
func IsFiniteVec3(v mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			return false
		}
	}
	return true
}
