package actor

import (
	"github.com/akmonengine/probe/component"
)

// RigidActor is a static or dynamic body owning collision shapes
type RigidActor struct {
	ID         uint32
	GlobalPose Transform
	Static     bool
	Payload    component.Payload

	shapes []*Shape
}

// NewRigidActor creates an actor at the given pose
func NewRigidActor(id uint32, pose Transform, static bool) *RigidActor {
	return &RigidActor{ID: id, GlobalPose: pose, Static: static}
}

// AttachShape adds a shape to the actor and resolves its payload
func (a *RigidActor) AttachShape(shape *Shape) {
	shape.actor = a
	shape.Payload = component.Resolve(shape.Payload, a.Payload)
	a.shapes = append(a.shapes, shape)
}

// DetachShape removes a shape from the actor
func (a *RigidActor) DetachShape(shape *Shape) {
	k := -1
	for i, s := range a.shapes {
		if s == shape {
			k = i
			break
		}
	}

	if k != -1 {
		a.shapes = append(a.shapes[:k], a.shapes[k+1:]...)
		shape.actor = nil
	}
}

func (a *RigidActor) Shapes() []*Shape {
	return a.shapes
}

func (a *RigidActor) NbShapes() int {
	return len(a.shapes)
}
