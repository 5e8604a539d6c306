package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// HullPolygon is one face of a convex hull. Plane holds the outward normal
// (xyz) and the plane constant (w) so that n·p + w = 0 on the face.
type HullPolygon struct {
	Plane         [4]float64
	VertexIndices []uint32
}

func (p HullPolygon) Normal() mgl64.Vec3 {
	return mgl64.Vec3{p.Plane[0], p.Plane[1], p.Plane[2]}
}

// Distance returns the signed distance of a vertex space point to the plane
func (p HullPolygon) Distance(point mgl64.Vec3) float64 {
	return p.Normal().Dot(point) + p.Plane[3]
}

// ConvexMesh is a cooked convex hull in vertex space
type ConvexMesh struct {
	Vertices []mgl64.Vec3
	Polygons []HullPolygon
	bounds   AABB
}

// NewConvexMesh builds a hull from its vertices and polygons. Polygon
// planes with a zero normal are computed from the first three vertices.
func NewConvexMesh(vertices []mgl64.Vec3, polygons []HullPolygon) *ConvexMesh {
	m := &ConvexMesh{Vertices: vertices, Polygons: polygons}
	for i := range m.Polygons {
		poly := &m.Polygons[i]
		if poly.Normal().LenSqr() > 0 || len(poly.VertexIndices) < 3 {
			continue
		}
		a := vertices[poly.VertexIndices[0]]
		b := vertices[poly.VertexIndices[1]]
		c := vertices[poly.VertexIndices[2]]
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		poly.Plane = [4]float64{n.X(), n.Y(), n.Z(), -n.Dot(a)}
	}
	m.bounds = AABBFromPoints(vertices...)
	return m
}

// NewBoxConvexMesh returns a hull shaped like a box of the given half-extents
func NewBoxConvexMesh(halfExtents mgl64.Vec3) *ConvexMesh {
	hx, hy, hz := halfExtents.X(), halfExtents.Y(), halfExtents.Z()
	vertices := []mgl64.Vec3{
		{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {-hx, hy, -hz},
		{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz},
	}
	polygons := []HullPolygon{
		{Plane: [4]float64{1, 0, 0, -hx}, VertexIndices: []uint32{1, 2, 6, 5}},
		{Plane: [4]float64{-1, 0, 0, -hx}, VertexIndices: []uint32{0, 4, 7, 3}},
		{Plane: [4]float64{0, 1, 0, -hy}, VertexIndices: []uint32{2, 3, 7, 6}},
		{Plane: [4]float64{0, -1, 0, -hy}, VertexIndices: []uint32{0, 1, 5, 4}},
		{Plane: [4]float64{0, 0, 1, -hz}, VertexIndices: []uint32{4, 5, 6, 7}},
		{Plane: [4]float64{0, 0, -1, -hz}, VertexIndices: []uint32{0, 3, 2, 1}},
	}
	return NewConvexMesh(vertices, polygons)
}

func (m *ConvexMesh) NbPolygons() int {
	return len(m.Polygons)
}

// PolygonData returns the polygon at index, false when out of range
func (m *ConvexMesh) PolygonData(index uint32) (HullPolygon, bool) {
	if int(index) >= len(m.Polygons) {
		return HullPolygon{}, false
	}
	return m.Polygons[index], true
}

// Support returns the furthest vertex along a vertex space direction
func (m *ConvexMesh) Support(direction mgl64.Vec3) mgl64.Vec3 {
	best := -math.MaxFloat64
	var result mgl64.Vec3
	for _, v := range m.Vertices {
		if d := v.Dot(direction); d > best {
			best = d
			result = v
		}
	}
	return result
}

// ConvexMeshGeometry instances a convex hull with a scale
type ConvexMeshGeometry struct {
	Mesh  *ConvexMesh
	Scale MeshScale
}

func (ConvexMeshGeometry) Type() GeometryType { return GeometryTypeConvexMesh }

func (g ConvexMeshGeometry) LocalBounds() AABB {
	if g.Mesh == nil {
		return AABB{}
	}
	m := g.Scale.VertexToShape()
	box := EmptyAABB()
	for _, v := range g.Mesh.Vertices {
		box = box.ExtendPoint(m.Mul3x1(v))
	}
	return box
}

// ShapeVertex maps a hull vertex to shape space
func (g ConvexMeshGeometry) ShapeVertex(i int) mgl64.Vec3 {
	return g.Scale.VertexToShape().Mul3x1(g.Mesh.Vertices[i])
}

// PolygonShapeNormal returns the shape space normal of a polygon
func (g ConvexMeshGeometry) PolygonShapeNormal(index uint32) (mgl64.Vec3, bool) {
	poly, ok := g.Mesh.PolygonData(index)
	if !ok {
		return mgl64.Vec3{}, false
	}
	n := poly.Normal()
	if n.LenSqr() == 0 {
		return mgl64.Vec3{}, false
	}
	return g.Scale.TransformNormal(n.Normalize()), true
}
