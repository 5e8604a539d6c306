package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyAABB returns an inverted box that any Extend call replaces
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// AABBFromPoints returns the bounds of a point set
func AABBFromPoints(points ...mgl64.Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box = box.ExtendPoint(p)
	}
	return box
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

func (a AABB) Extents() mgl64.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

// ExtendPoint grows the box to contain p
func (a AABB) ExtendPoint(p mgl64.Vec3) AABB {
	for i := 0; i < 3; i++ {
		a.Min[i] = math.Min(a.Min[i], p[i])
		a.Max[i] = math.Max(a.Max[i], p[i])
	}
	return a
}

// Union returns the smallest box containing a and other
func (a AABB) Union(other AABB) AABB {
	return a.ExtendPoint(other.Min).ExtendPoint(other.Max)
}

// Expand grows the box by amount on every side
func (a AABB) Expand(amount float64) AABB {
	e := mgl64.Vec3{amount, amount, amount}
	return AABB{Min: a.Min.Sub(e), Max: a.Max.Add(e)}
}

// Translate moves the box by offset
func (a AABB) Translate(offset mgl64.Vec3) AABB {
	return AABB{Min: a.Min.Add(offset), Max: a.Max.Add(offset)}
}

// Transform returns the world bounds of a local box under t
func (a AABB) Transform(t Transform) AABB {
	box := EmptyAABB()
	for i := 0; i < 8; i++ {
		corner := mgl64.Vec3{a.Min.X(), a.Min.Y(), a.Min.Z()}
		if i&1 != 0 {
			corner[0] = a.Max.X()
		}
		if i&2 != 0 {
			corner[1] = a.Max.Y()
		}
		if i&4 != 0 {
			corner[2] = a.Max.Z()
		}
		box = box.ExtendPoint(t.Apply(corner))
	}
	return box
}

// InverseTransform returns the local bounds (in t's frame) of a world box
func (a AABB) InverseTransform(t Transform) AABB {
	return a.Transform(t.Inverse())
}
