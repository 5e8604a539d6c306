package actor

import (
	"github.com/go-gl/mathgl/mgl64"
)

// TriangleMesh is a cooked triangle soup in vertex space. Indices are held
// either as 16-bit or 32-bit values, never both.
type TriangleMesh struct {
	Vertices  []mgl64.Vec3
	indices16 []uint16
	indices32 []uint32
	// Remap maps internal triangle indices to the caller's original order.
	Remap []uint32
	// MaterialIndices holds one shape material slot per triangle.
	MaterialIndices []uint16
	bounds          AABB
}

// NewTriangleMesh builds a mesh with 32-bit indices
func NewTriangleMesh(vertices []mgl64.Vec3, indices []uint32) *TriangleMesh {
	return &TriangleMesh{Vertices: vertices, indices32: indices, bounds: AABBFromPoints(vertices...)}
}

// NewTriangleMesh16 builds a mesh with 16-bit indices
func NewTriangleMesh16(vertices []mgl64.Vec3, indices []uint16) *TriangleMesh {
	return &TriangleMesh{Vertices: vertices, indices16: indices, bounds: AABBFromPoints(vertices...)}
}

func (m *TriangleMesh) Has16BitIndices() bool {
	return m.indices16 != nil
}

func (m *TriangleMesh) NbTriangles() int {
	if m.Has16BitIndices() {
		return len(m.indices16) / 3
	}
	return len(m.indices32) / 3
}

// TriangleIndices returns the three vertex indices of a triangle
func (m *TriangleMesh) TriangleIndices(index uint32) (i0, i1, i2 uint32) {
	base := int(index) * 3
	if m.Has16BitIndices() {
		return uint32(m.indices16[base]), uint32(m.indices16[base+1]), uint32(m.indices16[base+2])
	}
	return m.indices32[base], m.indices32[base+1], m.indices32[base+2]
}

// TriangleMeshGeometry instances a triangle mesh with a scale
type TriangleMeshGeometry struct {
	Mesh        *TriangleMesh
	Scale       MeshScale
	DoubleSided bool
}

func (TriangleMeshGeometry) Type() GeometryType { return GeometryTypeTriangleMesh }

func (g TriangleMeshGeometry) LocalBounds() AABB {
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

func (g TriangleMeshGeometry) NbTriangles() int {
	if g.Mesh == nil {
		return 0
	}
	return g.Mesh.NbTriangles()
}

// Triangle returns a triangle in shape space
func (g TriangleMeshGeometry) Triangle(index uint32) [3]mgl64.Vec3 {
	i0, i1, i2 := g.Mesh.TriangleIndices(index)
	m := g.Scale.VertexToShape()
	return [3]mgl64.Vec3{
		m.Mul3x1(g.Mesh.Vertices[i0]),
		m.Mul3x1(g.Mesh.Vertices[i1]),
		m.Mul3x1(g.Mesh.Vertices[i2]),
	}
}
