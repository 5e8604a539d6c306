package actor

import (
	"github.com/akmonengine/probe/component"
)

// Shape attaches a geometry to a rigid actor
type Shape struct {
	Geometry  Geometry
	LocalPose Transform

	QueryFilterData      FilterData
	SimulationFilterData FilterData

	Materials []*Material
	// Payload is resolved when the shape is attached: its own payload if
	// any, otherwise the payload of the actor.
	Payload component.Payload

	actor *RigidActor
}

// NewShape creates a detached shape. Without materials the shape uses
// DefaultMaterial.
func NewShape(geometry Geometry, localPose Transform, materials ...*Material) *Shape {
	if len(materials) == 0 {
		materials = []*Material{DefaultMaterial}
	}
	return &Shape{
		Geometry:  geometry,
		LocalPose: localPose,
		Materials: materials,
	}
}

func (s *Shape) GeometryType() GeometryType {
	if s.Geometry == nil {
		return GeometryTypeInvalid
	}
	return s.Geometry.Type()
}

// Actor returns the owning actor, nil when detached
func (s *Shape) Actor() *RigidActor {
	return s.actor
}

// GlobalPose returns the shape pose in world space
func (s *Shape) GlobalPose() Transform {
	if s.actor == nil {
		return s.LocalPose
	}
	return s.actor.GlobalPose.Mul(s.LocalPose)
}

// WorldBounds returns the world space bounds of the shape
func (s *Shape) WorldBounds() AABB {
	return Bounds(s.Geometry, s.GlobalPose())
}

// MaterialFromFaceIndex returns the material of a triangle for meshes and
// height fields, and the first material otherwise.
func (s *Shape) MaterialFromFaceIndex(faceIndex uint32) *Material {
	if len(s.Materials) == 0 {
		return nil
	}

	slot := -1
	switch geom := s.Geometry.(type) {
	case TriangleMeshGeometry:
		if geom.Mesh != nil && int(faceIndex) < len(geom.Mesh.MaterialIndices) {
			slot = int(geom.Mesh.MaterialIndices[faceIndex])
		}
	case HeightFieldGeometry:
		if geom.Field != nil && int(faceIndex) < geom.Field.NbTriangles() {
			slot = int(geom.Field.TriangleMaterial(faceIndex))
		}
	}

	if slot < 0 || slot >= len(s.Materials) {
		return s.Materials[0]
	}
	return s.Materials[slot]
}
