// Package gjk implements the Gilbert-Johnson-Keerthi family of queries on
// support-mapped convex sets: boolean overlap, closest points, and a
// conservative-advancement sweep built on top of the distance query.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
package gjk

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Convex is any convex set described by its support mapping, in world space.
type Convex interface {
	// Support returns the point of the set furthest along direction.
	Support(direction mgl64.Vec3) mgl64.Vec3
	// Center returns any point strictly inside the set.
	Center() mgl64.Vec3
}

// Simplex represents a set of 1-4 points in the Minkowski difference space.
// Size progression: 1 point → 2 points (line) → 3 points (triangle) → 4 points (tetrahedron)
type Simplex struct {
	Points [4]mgl64.Vec3
	Count  int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

var SimplexPool = sync.Pool{
	New: func() interface{} {
		return &Simplex{}
	},
}

// MinkowskiSupport computes a support point in the Minkowski difference (A - B):
// furthestPoint(A, direction) - furthestPoint(B, -direction)
func MinkowskiSupport(a, b Convex, direction mgl64.Vec3) mgl64.Vec3 {
	supportA := a.Support(direction)
	supportB := b.Support(direction.Mul(-1))
	return supportA.Sub(supportB)
}

// GJK reports whether two convex sets overlap.
//
// The simplex is modified in place. On overlap it usually ends as a
// tetrahedron enclosing the origin, which EPA uses as its initial polytope.
func GJK(a, b Convex, simplex *Simplex) bool {
	// Starting toward the other shape typically reduces iterations
	direction := b.Center().Sub(a.Center())
	if direction.LenSqr() < 1e-8 {
		direction = mgl64.Vec3{1, 0, 0}
	}

	simplex.Points[0] = MinkowskiSupport(a, b, direction)
	simplex.Count = 1

	direction = simplex.Points[0].Mul(-1)
	if direction.LenSqr() < 1e-16 {
		return true // touching at a single point
	}

	maxIterations := 32
	for i := 0; i < maxIterations; i++ {
		newPoint := MinkowskiSupport(a, b, direction)

		// The new point does not pass the origin: separated.
		if newPoint.Dot(direction) <= 0 {
			return false
		}

		simplex.Points[simplex.Count] = newPoint
		simplex.Count++

		if containsOrigin(simplex, &direction) {
			return true
		}
	}

	return false
}

// keep replaces the simplex with pts, oldest first.
func (s *Simplex) keep(pts ...mgl64.Vec3) {
	s.Count = copy(s.Points[:], pts)
}

// newest returns the last support point added.
func (s *Simplex) newest() mgl64.Vec3 {
	return s.Points[s.Count-1]
}

// containsOrigin reduces the simplex to the feature closest to the origin
// and updates the search direction. Only a tetrahedron can contain it.
func containsOrigin(simplex *Simplex, direction *mgl64.Vec3) bool {
	switch simplex.Count {
	case 2:
		return simplex.segmentCase(direction)
	case 3:
		return simplex.triangleCase(direction)
	case 4:
		return simplex.tetrahedronCase(direction)
	}
	return false
}

const degenerate = 1e-8

func (s *Simplex) segmentCase(direction *mgl64.Vec3) bool {
	a, b := s.Points[1], s.Points[0]
	toOrigin := a.Mul(-1)
	edge := b.Sub(a)

	// collapsed segment or origin behind the newest point
	if edge.LenSqr() < degenerate || edge.Dot(toOrigin) <= 0 {
		if toOrigin.LenSqr() < degenerate {
			return true
		}
		s.keep(a)
		*direction = toOrigin
		return false
	}

	perp := edge.Cross(toOrigin).Cross(edge)
	if perp.LenSqr() < degenerate {
		return true
	}
	*direction = perp
	return false
}

func (s *Simplex) triangleCase(direction *mgl64.Vec3) bool {
	a, b, c := s.Points[2], s.Points[1], s.Points[0]
	toOrigin := a.Mul(-1)
	ab, ac := b.Sub(a), c.Sub(a)
	n := ab.Cross(ac)

	switch {
	case n.LenSqr() < 1e-10:
		// collinear, fall back to the newest edge
		s.keep(b, a)
		return s.segmentCase(direction)
	case ab.Cross(n).Dot(toOrigin) > 0:
		s.keep(b, a)
		*direction = ab.Cross(toOrigin).Cross(ab)
	case n.Cross(ac).Dot(toOrigin) > 0:
		s.keep(c, a)
		*direction = ac.Cross(toOrigin).Cross(ac)
	case n.Dot(toOrigin) > 0:
		*direction = n
	default:
		// flip the winding so the normal faces the origin
		s.keep(a, c, b)
		*direction = n.Mul(-1)
	}
	return false
}

// outward orients n away from the vertex at offset.
func outward(n, offset mgl64.Vec3) mgl64.Vec3 {
	if n.Dot(offset) > 0 {
		return n.Mul(-1)
	}
	return n
}

func (s *Simplex) tetrahedronCase(direction *mgl64.Vec3) bool {
	a := s.newest()
	b, c, d := s.Points[2], s.Points[1], s.Points[0]
	toOrigin := a.Mul(-1)
	ab, ac, ad := b.Sub(a), c.Sub(a), d.Sub(a)

	abc := outward(ab.Cross(ac), ad)
	acd := outward(ac.Cross(ad), ab)
	adb := outward(ad.Cross(ab), ac)

	flat := abc.LenSqr() < 1e-10 || acd.LenSqr() < 1e-10 || adb.LenSqr() < 1e-10
	switch {
	case flat, abc.Dot(toOrigin) > 0:
		s.keep(c, b, a)
	case acd.Dot(toOrigin) > 0:
		s.keep(d, c, a)
	case adb.Dot(toOrigin) > 0:
		s.keep(b, d, a)
	default:
		return true
	}
	return s.triangleCase(direction)
}
