// Package component holds the engine-side identities that physics shapes
// report back to callers: actors, primitive components and the payload
// attached to every shape.
package component

// IndexNone marks an item or body index that does not apply.
const IndexNone int32 = -1

// Actor is an engine object owning one or more primitive components.
type Actor struct {
	ID   uint32
	Name string
}

// PrimitiveComponent is the engine component a collision shape belongs to.
type PrimitiveComponent struct {
	ID    uint32
	Name  string
	Owner *Actor

	// MultiBodyOverlap reports one overlap per body (item index) instead of
	// one per component.
	MultiBodyOverlap bool
}

// GetOwner returns the owning actor, nil when the component is detached.
func (c *PrimitiveComponent) GetOwner() *Actor {
	if c == nil {
		return nil
	}
	return c.Owner
}

// BodyInstance is the regular payload of a rigid actor.
type BodyInstance struct {
	Owner             *PrimitiveComponent
	InstanceBodyIndex int32
	BoneName          string
}

// CustomPayload is attached to shapes of non standard colliders
// (instanced meshes, destructibles) that have no body instance of their own.
type CustomPayload struct {
	Owner     *PrimitiveComponent
	ItemIndex int32
	HitName   string
}
