package gjk

import (
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// SweepMaxIterations bounds the number of advancement steps.
	SweepMaxIterations = 64

	// SweepTolerance is the separation at which the moving set is
	// considered in contact.
	SweepTolerance = 1e-4
)

// SweepResult describes the first contact of a swept convex set.
type SweepResult struct {
	// Distance travelled along the sweep direction before contact.
	Distance float64
	// Normal is the unit contact normal on B, facing the swept set.
	Normal mgl64.Vec3
	// Point is the contact point on B.
	Point mgl64.Vec3
	// InitialOverlap is set when the sets already touch at the start.
	InitialOverlap bool
}

type translated struct {
	Convex
	offset mgl64.Vec3
}

func (t translated) Support(direction mgl64.Vec3) mgl64.Vec3 {
	return t.Convex.Support(direction).Add(t.offset)
}

func (t translated) Center() mgl64.Vec3 {
	return t.Convex.Center().Add(t.offset)
}

// Translate returns c moved by offset.
func Translate(c Convex, offset mgl64.Vec3) Convex {
	return translated{Convex: c, offset: offset}
}

// Sweep moves A along direction, up to maxDistance, and reports the first
// contact with B using conservative advancement: each step travels to the
// separating plane given by the current closest points, which never
// overshoots the time of impact.
func Sweep(a, b Convex, direction mgl64.Vec3, maxDistance float64) (SweepResult, bool) {
	if direction.LenSqr() == 0 {
		res := Distance(a, b)
		if res.Overlap || res.Distance <= SweepTolerance {
			return SweepResult{InitialOverlap: true, Point: res.PointB, Normal: res.Normal.Mul(-1)}, true
		}
		return SweepResult{}, false
	}
	dir := direction.Normalize()

	lambda := 0.0
	moved := translated{Convex: a}
	var normal mgl64.Vec3

	for i := 0; i < SweepMaxIterations; i++ {
		res := Distance(moved, b)
		if res.Overlap || res.Distance <= SweepTolerance {
			if i == 0 {
				return SweepResult{InitialOverlap: true, Point: res.PointB, Normal: res.Normal.Mul(-1)}, true
			}
			return SweepResult{Distance: lambda, Normal: normal, Point: res.PointB}, true
		}

		normal = res.Normal.Mul(-1)

		closing := res.Normal.Dot(dir)
		if closing <= 1e-12 {
			return SweepResult{}, false
		}

		lambda += res.Distance / closing
		if lambda > maxDistance {
			return SweepResult{}, false
		}
		moved.offset = dir.Mul(lambda)
	}

	// no convergence: grazing contacts that never close are reported as misses
	return SweepResult{}, false
}
