// Package epa computes penetration depth and direction for overlapping
// convex sets by expanding GJK's terminal simplex inside the Minkowski
// difference until the face nearest the origin stops moving.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"math"

	"github.com/akmonengine/probe/gjk"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

const (
	// EPAMaxIterations limits polytope expansion to prevent infinite loops.
	// Curved shapes converge slowly, polytopes in a few iterations.
	EPAMaxIterations = 64

	// EPAConvergenceTolerance defines when EPA has converged, relative to
	// the current depth estimate once that exceeds one unit.
	EPAConvergenceTolerance = 0.001

	// EPAMinFaceDistance is the minimum face distance before we skip it.
	EPAMinFaceDistance = 0.0001

	// NormalSnapThreshold is used to clamp nearly-zero normal components to exactly zero.
	NormalSnapThreshold = 1e-8

	// degenerateEpsilon is the squared length under which simplex points coincide.
	degenerateEpsilon = 1e-12

	polytopeInitialCapacity = 8
)

var (
	// ErrNotConverged is returned with the best estimate found when the
	// polytope did not converge within EPAMaxIterations.
	ErrNotConverged = errors.New("epa: polytope did not converge")

	// ErrDegenerate is returned when the Minkowski difference has no volume,
	// so no polytope can enclose the origin.
	ErrDegenerate = errors.New("epa: degenerate minkowski difference")
)

// Penetration is the minimum translation between two overlapping sets.
type Penetration struct {
	// Normal is the unit direction from A toward B. Moving A by
	// -Normal*Depth, or B by Normal*Depth, separates the sets.
	Normal mgl64.Vec3
	Depth  float64
}

// Penetrate runs GJK then EPA. The boolean is false when the sets do not overlap.
func Penetrate(a, b gjk.Convex) (Penetration, bool, error) {
	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)
	simplex.Reset()

	if !gjk.GJK(a, b, simplex) {
		return Penetration{}, false, nil
	}

	p, err := EPA(a, b, simplex)
	return p, true, err
}

// EPA computes the penetration of two overlapping convex sets. A simplex
// that stopped short of a tetrahedron is completed first. When the loop
// runs out of iterations the best estimate is returned with ErrNotConverged.
func EPA(a, b gjk.Convex, simplex *gjk.Simplex) (Penetration, error) {
	if simplex.Count < 4 && !completeSimplex(a, b, simplex) {
		return Penetration{}, ErrDegenerate
	}

	builder := polytopeBuilderPool.Get().(*PolytopeBuilder)
	defer polytopeBuilderPool.Put(builder)
	builder.Reset()

	if err := builder.BuildInitialFaces(simplex); err != nil {
		return Penetration{}, err
	}

	var best Penetration
	found := false

	for i := 0; i < EPAMaxIterations; i++ {
		if len(builder.faces) == 0 {
			break
		}

		closestFaceIndex := builder.FindClosestFaceIndex()
		closestFace := builder.faces[closestFaceIndex]

		// Skip faces that are too close to or behind the origin (degenerate)
		if closestFace.Distance < EPAMinFaceDistance {
			builder.faces[closestFaceIndex] = builder.faces[len(builder.faces)-1]
			builder.faces = builder.faces[:len(builder.faces)-1]
			continue
		}

		best = Penetration{Normal: closestFace.Normal, Depth: closestFace.Distance}
		found = true

		support := gjk.MinkowskiSupport(a, b, closestFace.Normal)
		distance := support.Dot(closestFace.Normal)

		if distance-closestFace.Distance < EPAConvergenceTolerance*math.Max(1, closestFace.Distance) {
			return Penetration{Normal: closestFace.Normal, Depth: closestFace.Distance}, nil
		}

		builder.AddPointAndRebuildFaces(support, closestFaceIndex)
	}

	if !found {
		return Penetration{}, ErrDegenerate
	}
	return best, errors.Wrapf(ErrNotConverged, "after %d iterations", EPAMaxIterations)
}

var searchDirections = [6]mgl64.Vec3{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// completeSimplex grows a GJK simplex that terminated early (the origin lies
// on a vertex, an edge or a face) into a tetrahedron. It reports false when
// the Minkowski difference is flat.
func completeSimplex(a, b gjk.Convex, simplex *gjk.Simplex) bool {
	if simplex.Count == 0 {
		simplex.Points[0] = gjk.MinkowskiSupport(a, b, searchDirections[0])
		simplex.Count = 1
	}

	if simplex.Count == 1 {
		for _, d := range searchDirections {
			p := gjk.MinkowskiSupport(a, b, d)
			if p.Sub(simplex.Points[0]).LenSqr() > degenerateEpsilon {
				simplex.Points[1] = p
				simplex.Count = 2
				break
			}
		}
		if simplex.Count == 1 {
			return false
		}
	}

	if simplex.Count == 2 {
		line := simplex.Points[1].Sub(simplex.Points[0])
		u := perpendicular(line)
		v := line.Cross(u).Normalize()
		for _, d := range [4]mgl64.Vec3{u, u.Mul(-1), v, v.Mul(-1)} {
			p := gjk.MinkowskiSupport(a, b, d)
			if p.Sub(simplex.Points[0]).Cross(line).LenSqr() > degenerateEpsilon {
				simplex.Points[2] = p
				simplex.Count = 3
				break
			}
		}
		if simplex.Count == 2 {
			return false
		}
	}

	if simplex.Count == 3 {
		p0 := simplex.Points[0]
		n := simplex.Points[1].Sub(p0).Cross(simplex.Points[2].Sub(p0))
		if n.LenSqr() < degenerateEpsilon {
			return false
		}
		n = n.Normalize()
		for _, d := range [2]mgl64.Vec3{n, n.Mul(-1)} {
			p := gjk.MinkowskiSupport(a, b, d)
			if math.Abs(p.Sub(p0).Dot(n)) > 1e-6 {
				simplex.Points[3] = p
				simplex.Count = 4
				return true
			}
		}
		return false
	}

	return true
}

// perpendicular returns a unit vector orthogonal to v.
func perpendicular(v mgl64.Vec3) mgl64.Vec3 {
	axis := mgl64.Vec3{1, 0, 0}
	if math.Abs(v.X()) > math.Abs(v.Y()) && math.Abs(v.X()) > math.Abs(v.Z()) {
		axis = mgl64.Vec3{0, 1, 0}
	}
	return v.Cross(axis).Normalize()
}

// snapNormalToAxis zeroes components below NormalSnapThreshold and
// renormalizes, so axis-aligned contacts report exact axis normals.
func snapNormalToAxis(normal mgl64.Vec3) mgl64.Vec3 {
	for i := range normal {
		if math.Abs(normal[i]) < NormalSnapThreshold {
			normal[i] = 0
		}
	}
	if normal.Len() <= 1e-8 {
		return mgl64.Vec3{0, 0, 1}
	}
	return normal.Normalize()
}
