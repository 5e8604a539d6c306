package component

// PayloadKind discriminates the user data carried by a shape or actor.
type PayloadKind uint8

const (
	PayloadNone PayloadKind = iota
	PayloadBodyInstance
	PayloadCustom
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadBodyInstance:
		return "body"
	case PayloadCustom:
		return "custom"
	}
	return "none"
}

// Payload is a tagged variant: exactly one of body or custom is set,
// matching Kind. The zero value is an empty payload.
type Payload struct {
	Kind   PayloadKind
	body   *BodyInstance
	custom *CustomPayload
}

// BodyPayload wraps a body instance.
func BodyPayload(body *BodyInstance) Payload {
	if body == nil {
		return Payload{}
	}
	return Payload{Kind: PayloadBodyInstance, body: body}
}

// CustomPhysicsPayload wraps a custom payload.
func CustomPhysicsPayload(custom *CustomPayload) Payload {
	if custom == nil {
		return Payload{}
	}
	return Payload{Kind: PayloadCustom, custom: custom}
}

func (p Payload) IsEmpty() bool {
	return p.Kind == PayloadNone
}

// Body returns the body instance, or nil for other kinds.
func (p Payload) Body() *BodyInstance {
	if p.Kind != PayloadBodyInstance {
		return nil
	}
	return p.body
}

// Custom returns the custom payload, or nil for other kinds.
func (p Payload) Custom() *CustomPayload {
	if p.Kind != PayloadCustom {
		return nil
	}
	return p.custom
}

// Component returns the owning component whatever the payload kind.
func (p Payload) Component() *PrimitiveComponent {
	switch p.Kind {
	case PayloadBodyInstance:
		return p.body.Owner
	case PayloadCustom:
		return p.custom.Owner
	}
	return nil
}

// ItemIndex returns the body index or the custom item index.
func (p Payload) ItemIndex() int32 {
	switch p.Kind {
	case PayloadBodyInstance:
		return p.body.InstanceBodyIndex
	case PayloadCustom:
		return p.custom.ItemIndex
	}
	return IndexNone
}

// BoneName returns the bone (body) or hit name (custom).
func (p Payload) BoneName() string {
	switch p.Kind {
	case PayloadBodyInstance:
		return p.body.BoneName
	case PayloadCustom:
		return p.custom.HitName
	}
	return ""
}

// Resolve returns the first non empty payload, shape before actor.
func Resolve(shape, actor Payload) Payload {
	if !shape.IsEmpty() {
		return shape
	}
	return actor
}
