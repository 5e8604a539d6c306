package filter

import (
	"github.com/akmonengine/probe/scene"
	"github.com/scylladb/go-set/u32set"
)

// MobilityType restricts a query to static or dynamic actors
type MobilityType uint8

const (
	MobilityAny MobilityType = iota
	MobilityStatic
	MobilityDynamic
)

// QueryParams are the caller options of one query. They are read only
// while the query runs.
type QueryParams struct {
	// Tag names the query in logs and analyzer captures
	Tag string

	// TraceComplex tests per polygon collision instead of simple shapes
	TraceComplex bool
	// FindInitialOverlaps keeps sweep hits starting in penetration
	FindInitialOverlaps bool
	// ReturnFaceIndex reports the triangle of mesh hits and the polygon of
	// convex hull hits
	ReturnFaceIndex bool
	// ReturnPhysicalMaterial resolves the material of every hit
	ReturnPhysicalMaterial bool
	// TraceAsyncScene also queries the asynchronous scene
	TraceAsyncScene bool

	IgnoreTouches bool
	IgnoreBlocks  bool
	MobilityType  MobilityType
	IgnoreMask    MaskFilter

	ignoreActors     *u32set.Set
	ignoreComponents *u32set.Set
}

// DefaultQueryParams returns simple collision parameters keeping initial
// overlaps
func DefaultQueryParams() QueryParams {
	return QueryParams{FindInitialOverlaps: true}
}

// AddIgnoredActor excludes every shape of the actor with the given id
func (p *QueryParams) AddIgnoredActor(ids ...uint32) {
	if p.ignoreActors == nil {
		p.ignoreActors = u32set.New()
	}
	p.ignoreActors.Add(ids...)
}

// AddIgnoredComponent excludes every shape of the component with the given id
func (p *QueryParams) AddIgnoredComponent(ids ...uint32) {
	if p.ignoreComponents == nil {
		p.ignoreComponents = u32set.New()
	}
	p.ignoreComponents.Add(ids...)
}

func (p QueryParams) IsActorIgnored(id uint32) bool {
	return p.ignoreActors != nil && p.ignoreActors.Has(id)
}

func (p QueryParams) IsComponentIgnored(id uint32) bool {
	return p.ignoreComponents != nil && p.ignoreComponents.Has(id)
}

func (p QueryParams) NbIgnoredComponents() int {
	if p.ignoreComponents == nil {
		return 0
	}
	return p.ignoreComponents.Size()
}

// StaticDynamicQueryFlags returns the scene flags selecting the actors
// allowed by the mobility filter
func StaticDynamicQueryFlags(params QueryParams) scene.QueryFlags {
	switch params.MobilityType {
	case MobilityStatic:
		return scene.QueryStatic
	case MobilityDynamic:
		return scene.QueryDynamic
	}
	return scene.QueryStatic | scene.QueryDynamic
}

// ResponseParams hold the responses of a trace query
type ResponseParams struct {
	CollisionResponse ResponseContainer
}

// DefaultResponseParams blocks every channel
func DefaultResponseParams() ResponseParams {
	return ResponseParams{CollisionResponse: NewResponseContainer(Block)}
}

// ObjectQueryParams select shapes by their own channel instead of by
// responses
type ObjectQueryParams struct {
	ObjectTypesToQuery uint32
	IgnoreMask         MaskFilter
}

var (
	staticObjectTypes  = []Channel{WorldStatic}
	dynamicObjectTypes = []Channel{WorldDynamic, Pawn, PhysicsBody, Vehicle, Destructible}
)

// NewObjectQueryParams queries the given object types
func NewObjectQueryParams(channels ...Channel) ObjectQueryParams {
	var p ObjectQueryParams
	for _, c := range channels {
		p.AddObjectType(c)
	}
	return p
}

func AllStaticObjects() ObjectQueryParams {
	return NewObjectQueryParams(staticObjectTypes...)
}

func AllDynamicObjects() ObjectQueryParams {
	return NewObjectQueryParams(dynamicObjectTypes...)
}

func AllObjects() ObjectQueryParams {
	p := AllStaticObjects()
	for _, c := range dynamicObjectTypes {
		p.AddObjectType(c)
	}
	return p
}

func (p *ObjectQueryParams) AddObjectType(channel Channel) {
	if int(channel) < MaxChannels {
		p.ObjectTypesToQuery |= channel.Bit()
	}
}

func (p *ObjectQueryParams) RemoveObjectType(channel Channel) {
	if int(channel) < MaxChannels {
		p.ObjectTypesToQuery &^= channel.Bit()
	}
}

// IsValid reports whether at least one object type is queried
func (p ObjectQueryParams) IsValid() bool {
	return p.ObjectTypesToQuery != 0
}
