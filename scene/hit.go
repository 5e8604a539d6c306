package scene

import (
	"github.com/akmonengine/probe/actor"
	"github.com/akmonengine/probe/geometry"
)

// QueryFlags select which shapes a query visits and how filtering runs
type QueryFlags uint16

const (
	QueryStatic QueryFlags = 1 << iota
	QueryDynamic
	// QueryPrefilter runs QueryFilterCallback.PreFilter before the
	// geometry test of each candidate
	QueryPrefilter
	// QueryPostfilter runs QueryFilterCallback.PostFilter on each hit
	QueryPostfilter
	// QueryAnyHit stops at the first accepted hit, reported as the block
	QueryAnyHit

	QueryDefault = QueryStatic | QueryDynamic
)

func (f QueryFlags) Has(flag QueryFlags) bool {
	return f&flag == flag
}

// QueryHitType is the verdict of a filter. Values are ordered so that the
// weaker of two verdicts is their minimum.
type QueryHitType uint8

const (
	QueryHitNone QueryHitType = iota
	QueryHitTouch
	QueryHitBlock
)

func (t QueryHitType) String() string {
	switch t {
	case QueryHitTouch:
		return "touch"
	case QueryHitBlock:
		return "block"
	}
	return "none"
}

// QueryFilterData is handed unchanged to the filter callback
type QueryFilterData struct {
	Data  actor.FilterData
	Flags QueryFlags
}

// QueryFilterCallback decides the fate of each candidate shape and hit
type QueryFilterCallback interface {
	// PreFilter runs before the geometry test. It may restrict the hit
	// flags computed for the candidate.
	PreFilter(filterData actor.FilterData, shape *actor.Shape, rigidActor *actor.RigidActor, hitFlags *geometry.HitFlags) QueryHitType
	// PostFilter runs after the geometry test, once per hit.
	PostFilter(filterData actor.FilterData, hit LocationHit) QueryHitType
}

// Hit is implemented by every scene hit type
type Hit interface {
	HitDistance() float64
}

// LocationHit is a raycast or sweep hit on a shape
type LocationHit struct {
	Actor *actor.RigidActor
	Shape *actor.Shape
	geometry.Hit
}

func (h LocationHit) HitDistance() float64 {
	return h.Distance
}

type (
	RaycastHit = LocationHit
	SweepHit   = LocationHit
)

// OverlapHit is a shape intersecting an overlap query
type OverlapHit struct {
	Actor     *actor.RigidActor
	Shape     *actor.Shape
	FaceIndex uint32
}

func (OverlapHit) HitDistance() float64 {
	return 0
}
