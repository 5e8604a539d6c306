package epa

import (
	"math"
	"sync"

	"github.com/akmonengine/probe/gjk"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Face is a triangle of the polytope with its outward normal.
type Face struct {
	Points   [3]mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64 // from the origin to the face plane
}

// edge is an undirected polytope edge.
type edge [2]mgl64.Vec3

func (e edge) matches(o edge) bool {
	return (e[0] == o[0] && e[1] == o[1]) || (e[0] == o[1] && e[1] == o[0])
}

// PolytopeBuilder grows the EPA polytope with buffers reused through a pool.
type PolytopeBuilder struct {
	faces []Face

	// every vertex inserted so far; their mean stays inside the polytope
	points []mgl64.Vec3

	// horizon between the faces seen from the new support point and the rest
	horizon []edge

	visible []bool
}

var polytopeBuilderPool = sync.Pool{
	New: func() interface{} {
		return &PolytopeBuilder{
			faces:   make([]Face, 0, polytopeInitialCapacity),
			points:  make([]mgl64.Vec3, 0, polytopeInitialCapacity),
			horizon: make([]edge, 0, polytopeInitialCapacity),
			visible: make([]bool, 0, polytopeInitialCapacity),
		}
	},
}

// Reset prepares the builder for reuse.
func (b *PolytopeBuilder) Reset() {
	b.faces = b.faces[:0]
	b.points = b.points[:0]
	b.horizon = b.horizon[:0]
	b.visible = b.visible[:0]
}

// BuildInitialFaces creates the initial polytope from a tetrahedron simplex.
func (b *PolytopeBuilder) BuildInitialFaces(simplex *gjk.Simplex) error {
	if simplex.Count != 4 {
		return errors.Errorf("invalid simplex count: %d (expected 4)", simplex.Count)
	}

	p0, p1, p2, p3 := simplex.Points[0], simplex.Points[1], simplex.Points[2], simplex.Points[3]
	b.points = append(b.points, p0, p1, p2, p3)

	b.faces = append(b.faces,
		createFaceOutward(p0, p1, p2, p3),
		createFaceOutward(p0, p2, p3, p1),
		createFaceOutward(p0, p3, p1, p2),
		createFaceOutward(p1, p3, p2, p0),
	)

	return nil
}

// createFaceOutward creates a Face with normal pointing outward from the polytope,
// using the opposite point as the inside reference.
func createFaceOutward(p0, p1, p2, oppositePoint mgl64.Vec3) Face {
	face := Face{Points: [3]mgl64.Vec3{p0, p1, p2}}

	normal := p1.Sub(p0).Cross(p2.Sub(p0))

	normalLength := math.Sqrt(normal.Dot(normal))
	if normalLength < 1e-8 {
		// zero area: parked so that it is picked and discarded first
		face.Normal = mgl64.Vec3{0, 0, 1}
		face.Distance = 0
		return face
	}
	normal = normal.Mul(1.0 / normalLength)

	if normal.Dot(oppositePoint.Sub(p0)) > 0 {
		normal = normal.Mul(-1)
	}

	distance := p0.Dot(normal)
	if distance < 0 {
		normal = normal.Mul(-1)
		distance = -distance
	}

	// origin on the face: keep it selectable so the polytope grows from it
	if distance < EPAMinFaceDistance {
		distance = EPAMinFaceDistance
	}

	face.Normal = snapNormalToAxis(normal)
	face.Distance = distance

	return face
}

// FindClosestFaceIndex returns the index of the face closest to the origin,
// or -1 if no faces exist.
func (b *PolytopeBuilder) FindClosestFaceIndex() int {
	if len(b.faces) == 0 {
		return -1
	}

	closestIndex := 0
	minDistance := b.faces[0].Distance

	for i := 1; i < len(b.faces); i++ {
		if b.faces[i].Distance < minDistance {
			closestIndex = i
			minDistance = b.faces[i].Distance
		}
	}

	return closestIndex
}

func (b *PolytopeBuilder) centroid() mgl64.Vec3 {
	if len(b.points) == 0 {
		return mgl64.Vec3{}
	}

	var sum mgl64.Vec3
	for _, p := range b.points {
		sum = sum.Add(p)
	}
	return sum.Mul(1.0 / float64(len(b.points)))
}

// markVisible flags the faces whose plane has support in front of it and
// returns how many there are.
func (b *PolytopeBuilder) markVisible(support mgl64.Vec3) int {
	b.visible = b.visible[:0]
	count := 0
	for i := range b.faces {
		seen := support.Sub(b.faces[i].Points[0]).Dot(b.faces[i].Normal) > 0
		b.visible = append(b.visible, seen)
		if seen {
			count++
		}
	}
	return count
}

// toggleHorizon adds e, or removes it when a visible neighbour already added
// it: edges shared by two visible faces are interior.
func (b *PolytopeBuilder) toggleHorizon(e edge) {
	for i := range b.horizon {
		if b.horizon[i].matches(e) {
			last := len(b.horizon) - 1
			b.horizon[i] = b.horizon[last]
			b.horizon = b.horizon[:last]
			return
		}
	}
	b.horizon = append(b.horizon, e)
}

// carveVisible drops the visible faces and leaves their boundary in horizon.
func (b *PolytopeBuilder) carveVisible() {
	b.horizon = b.horizon[:0]
	kept := b.faces[:0]
	for i, f := range b.faces {
		if !b.visible[i] {
			kept = append(kept, f)
			continue
		}
		b.toggleHorizon(edge{f.Points[0], f.Points[1]})
		b.toggleHorizon(edge{f.Points[1], f.Points[2]})
		b.toggleHorizon(edge{f.Points[2], f.Points[0]})
	}
	b.faces = kept
}

// AddPointAndRebuildFaces expands the polytope by adding a support point:
// the faces it sees are replaced by a fan from the support point to their
// boundary.
func (b *PolytopeBuilder) AddPointAndRebuildFaces(support mgl64.Vec3, closestIndex int) {
	// never remove the whole polytope
	if n := b.markVisible(support); n == 0 || n >= len(b.faces) {
		for i := range b.visible {
			b.visible[i] = i == closestIndex
		}
	}

	b.carveVisible()

	b.points = append(b.points, support)
	inside := b.centroid()
	for _, e := range b.horizon {
		b.faces = append(b.faces, createFaceOutward(e[0], e[1], support, inside))
	}
}

// Faces returns the current polytope faces.
func (b *PolytopeBuilder) Faces() []Face {
	return b.faces
}
