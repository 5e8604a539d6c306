package filter

import (
	"github.com/akmonengine/probe/actor"
	"github.com/akmonengine/probe/geometry"
	"github.com/akmonengine/probe/scene"
)

// CalcQueryHitType returns the verdict of a query record against a shape
// record. Object queries block on the object types they name; during pre
// filtering multi object queries touch instead so that the scene keeps
// collecting. Trace queries take the weaker of the two one sided verdicts.
func CalcQueryHitType(query, shape actor.FilterData, preFilter bool) scene.QueryHitType {
	queryChannel := ChannelOf(query.Word3)
	shapeChannel := ChannelOf(shape.Word3)

	if MaskOf(query.Word3)&MaskOf(shape.Word3) != 0 {
		return scene.QueryHitNone
	}

	shapeBit := shapeChannel.Bit()
	if QueryKind(query.Word0) == ObjectQuery {
		if shapeBit&query.Word1 == 0 {
			return scene.QueryHitNone
		}
		if preFilter && queryChannel == traceMulti {
			return scene.QueryHitTouch
		}
		return scene.QueryHitBlock
	}

	if queryChannel == OverlapAll {
		return scene.QueryHitTouch
	}

	return min(oneSided(queryChannel.Bit(), shape), oneSided(shapeBit, query))
}

// oneSided is what the owner of fd wants from the channel bit
func oneSided(bit uint32, fd actor.FilterData) scene.QueryHitType {
	switch {
	case bit&fd.Word1 != 0:
		return scene.QueryHitBlock
	case bit&fd.Word2 != 0:
		return scene.QueryHitTouch
	}
	return scene.QueryHitNone
}

// TraceFilter is the query filter callback of raycasts and overlaps. A
// filter serves one query at a time.
type TraceFilter struct {
	Params QueryParams
	// IsOverlapQuery reports blocks as touches, overlaps having no notion
	// of blocking at the scene level
	IsOverlapQuery bool

	prefilterResult scene.QueryHitType
}

func NewTraceFilter(params QueryParams, overlap bool) *TraceFilter {
	return &TraceFilter{Params: params, IsOverlapQuery: overlap}
}

func (f *TraceFilter) PreFilter(filterData actor.FilterData, shape *actor.Shape, _ *actor.RigidActor, _ *geometry.HitFlags) scene.QueryHitType {
	f.prefilterResult = f.preFilter(filterData, shape)
	return f.prefilterResult
}

func (f *TraceFilter) preFilter(filterData actor.FilterData, shape *actor.Shape) scene.QueryHitType {
	if shape == nil {
		return scene.QueryHitNone
	}
	shapeFilter := shape.QueryFilterData

	common := FlagsOf(shapeFilter.Word3) & FlagsOf(filterData.Word3)
	if common&(FlagSimpleCollision|FlagComplexCollision) == 0 {
		return scene.QueryHitNone
	}

	result := CalcQueryHitType(filterData, shapeFilter, true)
	if result == scene.QueryHitTouch && f.Params.IgnoreTouches {
		result = scene.QueryHitNone
	}
	if result == scene.QueryHitBlock && f.Params.IgnoreBlocks {
		result = scene.QueryHitNone
	}

	if result != scene.QueryHitNone {
		if f.Params.IsActorIgnored(shapeFilter.Word0) {
			result = scene.QueryHitNone
		}
		if f.Params.NbIgnoredComponents() > 0 && f.Params.IsComponentIgnored(shape.SimulationFilterData.Word2) {
			result = scene.QueryHitNone
		}
	}

	if f.IsOverlapQuery && result == scene.QueryHitBlock {
		result = scene.QueryHitTouch
	}
	return result
}

// PostFilter keeps the pre filter verdict
func (f *TraceFilter) PostFilter(_ actor.FilterData, _ scene.LocationHit) scene.QueryHitType {
	return f.prefilterResult
}

// SweepFilter refines sweep hits starting in penetration: a blocking one
// is downgraded to a touch so that the sweep goes on to the first real
// block, or dropped when initial overlaps are discarded.
type SweepFilter struct {
	TraceFilter
	DiscardInitialOverlaps bool
}

func NewSweepFilter(params QueryParams) *SweepFilter {
	return &SweepFilter{
		TraceFilter:            TraceFilter{Params: params},
		DiscardInitialOverlaps: !params.FindInitialOverlaps,
	}
}

func (f *SweepFilter) PostFilter(_ actor.FilterData, hit scene.LocationHit) scene.QueryHitType {
	if !hit.HadInitialOverlap() {
		return f.prefilterResult
	}
	if f.DiscardInitialOverlaps {
		return scene.QueryHitNone
	}
	if f.prefilterResult == scene.QueryHitBlock {
		return scene.QueryHitTouch
	}
	return f.prefilterResult
}
