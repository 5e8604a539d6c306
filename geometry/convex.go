// Package geometry implements the geometry queries the scene is built on:
// raycasts, sweeps, overlaps, penetration depth and closest points between
// posed collision geometries.
package geometry

import (
	"github.com/akmonengine/probe/actor"
	"github.com/akmonengine/probe/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

type pointConvex mgl64.Vec3

func (p pointConvex) Support(mgl64.Vec3) mgl64.Vec3 { return mgl64.Vec3(p) }
func (p pointConvex) Center() mgl64.Vec3            { return mgl64.Vec3(p) }

type sphereConvex struct {
	center mgl64.Vec3
	radius float64
}

func (s sphereConvex) Support(direction mgl64.Vec3) mgl64.Vec3 {
	l := direction.Len()
	if l < 1e-12 {
		return s.center
	}
	return s.center.Add(direction.Mul(s.radius / l))
}

func (s sphereConvex) Center() mgl64.Vec3 { return s.center }

// capsuleConvex is a segment p0-p1 swept by a sphere
type capsuleConvex struct {
	p0, p1 mgl64.Vec3
	radius float64
}

func (c capsuleConvex) Support(direction mgl64.Vec3) mgl64.Vec3 {
	p := c.p0
	if c.p1.Dot(direction) > c.p0.Dot(direction) {
		p = c.p1
	}
	l := direction.Len()
	if l < 1e-12 {
		return p
	}
	return p.Add(direction.Mul(c.radius / l))
}

func (c capsuleConvex) Center() mgl64.Vec3 {
	return c.p0.Add(c.p1).Mul(0.5)
}

type boxConvex struct {
	pose        actor.Transform
	halfExtents mgl64.Vec3
}

func (b boxConvex) Support(direction mgl64.Vec3) mgl64.Vec3 {
	local := b.pose.RotateInverse(direction)
	var p mgl64.Vec3
	for i := 0; i < 3; i++ {
		if local[i] >= 0 {
			p[i] = b.halfExtents[i]
		} else {
			p[i] = -b.halfExtents[i]
		}
	}
	return b.pose.Apply(p)
}

func (b boxConvex) Center() mgl64.Vec3 { return b.pose.Position }

// hullConvex supports a scaled convex mesh: with M the vertex to shape
// matrix, the support of M*V along d is M times the support of V along M^T*d.
type hullConvex struct {
	pose   actor.Transform
	mesh   *actor.ConvexMesh
	m      mgl64.Mat3
	center mgl64.Vec3
}

func (h hullConvex) Support(direction mgl64.Vec3) mgl64.Vec3 {
	local := h.pose.RotateInverse(direction)
	v := h.mesh.Support(h.m.Transpose().Mul3x1(local))
	return h.pose.Apply(h.m.Mul3x1(v))
}

func (h hullConvex) Center() mgl64.Vec3 { return h.center }

type triangleConvex [3]mgl64.Vec3

func (t triangleConvex) Support(direction mgl64.Vec3) mgl64.Vec3 {
	best := t[0]
	bestDot := t[0].Dot(direction)
	for _, v := range t[1:] {
		if d := v.Dot(direction); d > bestDot {
			best, bestDot = v, d
		}
	}
	return best
}

func (t triangleConvex) Center() mgl64.Vec3 {
	return t[0].Add(t[1]).Add(t[2]).Mul(1.0 / 3.0)
}

// IsConvex reports whether g can be used as a query geometry and as a
// support-mapped convex set.
func IsConvex(g actor.Geometry) bool {
	switch geom := g.(type) {
	case actor.SphereGeometry, actor.CapsuleGeometry, actor.BoxGeometry:
		return true
	case actor.ConvexMeshGeometry:
		return geom.Mesh != nil
	}
	return false
}

// IsTriangleGeometry reports meshes and height fields.
func IsTriangleGeometry(g actor.Geometry) bool {
	switch g.(type) {
	case actor.TriangleMeshGeometry, actor.HeightFieldGeometry:
		return true
	}
	return false
}

// Convex returns the world space support mapping of a posed convex geometry.
func Convex(g actor.Geometry, pose actor.Transform) (gjk.Convex, bool) {
	switch geom := g.(type) {
	case actor.SphereGeometry:
		return sphereConvex{center: pose.Position, radius: geom.Radius}, true
	case actor.CapsuleGeometry:
		axis := pose.Rotate(mgl64.Vec3{0, 0, geom.HalfHeight})
		return capsuleConvex{p0: pose.Position.Sub(axis), p1: pose.Position.Add(axis), radius: geom.Radius}, true
	case actor.BoxGeometry:
		return boxConvex{pose: pose, halfExtents: geom.HalfExtents}, true
	case actor.ConvexMeshGeometry:
		if geom.Mesh == nil || len(geom.Mesh.Vertices) == 0 {
			return nil, false
		}
		return hullConvex{
			pose:   pose,
			mesh:   geom.Mesh,
			m:      geom.Scale.VertexToShape(),
			center: pose.Apply(geom.LocalBounds().Center()),
		}, true
	}
	return nil, false
}

// Point returns a convex made of a single point.
func Point(p mgl64.Vec3) gjk.Convex {
	return pointConvex(p)
}

// Inflate grows a sphere, capsule or box by amount. Other geometries cannot
// be inflated and are returned unchanged with false.
func Inflate(g actor.Geometry, amount float64) (actor.Geometry, bool) {
	switch geom := g.(type) {
	case actor.SphereGeometry:
		geom.Radius += amount
		return geom, true
	case actor.CapsuleGeometry:
		geom.Radius += amount
		return geom, true
	case actor.BoxGeometry:
		geom.HalfExtents = geom.HalfExtents.Add(mgl64.Vec3{amount, amount, amount})
		return geom, true
	}
	return g, false
}
