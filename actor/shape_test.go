package actor

import (
	"testing"

	"github.com/akmonengine/probe/component"
	"github.com/go-gl/mathgl/mgl64"
)

func TestShape_GlobalPose(t *testing.T) {
	a := NewRigidActor(1, NewTransformAt(mgl64.Vec3{0, 0, 10}), true)
	s := NewShape(BoxGeometry{HalfExtents: mgl64.Vec3{1, 1, 1}}, NewTransformAt(mgl64.Vec3{2, 0, 0}))
	a.AttachShape(s)

	if s.Actor() != a {
		t.Fatalf("Shape should reference its actor")
	}
	if !vec3Equal(s.GlobalPose().Position, mgl64.Vec3{2, 0, 10}, 1e-12) {
		t.Errorf("Expected global position (2,0,10), got %v", s.GlobalPose().Position)
	}
	bounds := s.WorldBounds()
	if !vec3Equal(bounds.Min, mgl64.Vec3{1, -1, 9}, 1e-12) {
		t.Errorf("Unexpected world bounds %v", bounds)
	}

	a.DetachShape(s)
	if s.Actor() != nil || a.NbShapes() != 0 {
		t.Errorf("Shape should be detached")
	}
}

func TestShape_PayloadResolution(t *testing.T) {
	comp := &component.PrimitiveComponent{ID: 4}
	a := NewRigidActor(1, NewTransform(), false)
	a.Payload = component.BodyPayload(&component.BodyInstance{Owner: comp})

	plain := NewShape(SphereGeometry{Radius: 1}, NewTransform())
	a.AttachShape(plain)
	if plain.Payload.Kind != component.PayloadBodyInstance {
		t.Errorf("Shape without payload should inherit the actor payload")
	}

	custom := NewShape(SphereGeometry{Radius: 1}, NewTransform())
	custom.Payload = component.CustomPhysicsPayload(&component.CustomPayload{Owner: comp, ItemIndex: 3})
	a.AttachShape(custom)
	if custom.Payload.Kind != component.PayloadCustom {
		t.Errorf("Shape payload should be kept")
	}
}

func TestShape_MaterialFromFaceIndex(t *testing.T) {
	grass := &Material{Name: "grass"}
	rock := &Material{Name: "rock"}

	t.Run("primitive uses the first material", func(t *testing.T) {
		s := NewShape(SphereGeometry{Radius: 1}, NewTransform(), grass, rock)
		if s.MaterialFromFaceIndex(5) != grass {
			t.Errorf("Expected grass")
		}
	})

	t.Run("triangle mesh per triangle material", func(t *testing.T) {
		mesh := NewTriangleMesh([]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}, []uint32{0, 1, 2, 1, 3, 2})
		mesh.MaterialIndices = []uint16{0, 1}
		s := NewShape(TriangleMeshGeometry{Mesh: mesh}, NewTransform(), grass, rock)
		if s.MaterialFromFaceIndex(1) != rock {
			t.Errorf("Expected rock for triangle 1")
		}
		if s.MaterialFromFaceIndex(9) != grass {
			t.Errorf("Out of range triangle should fall back to the first material")
		}
	})

	t.Run("height field per triangle material", func(t *testing.T) {
		field := NewHeightField(2, 2)
		field.Samples[0].MaterialIndex1 = 1
		s := NewShape(HeightFieldGeometry{Field: field, HeightScale: 1, RowScale: 1, ColumnScale: 1}, NewTransform(), grass, rock)
		if s.MaterialFromFaceIndex(0) != grass || s.MaterialFromFaceIndex(1) != rock {
			t.Errorf("Unexpected height field materials")
		}
	})

	t.Run("default material", func(t *testing.T) {
		s := NewShape(SphereGeometry{Radius: 1}, NewTransform())
		if s.MaterialFromFaceIndex(0) != DefaultMaterial {
			t.Errorf("Expected DefaultMaterial")
		}
	})
}
