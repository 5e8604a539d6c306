package filter

import (
	"github.com/akmonengine/probe/actor"
)

// QueryKind tags word0 of a query filter record
type QueryKind uint32

const (
	ObjectQuery QueryKind = iota
	TraceQuery
)

// Flag is stored in the low 24 bits of word3
type Flag uint32

const (
	FlagSimpleCollision Flag = 1 << iota
	FlagComplexCollision
	FlagCCD
	FlagContactNotify
	FlagStaticShape
)

// MaskFilter is an opaque mask: a query and a shape sharing any bit never
// interact
type MaskFilter uint8

const (
	flagsMask    = 0xFFFFFF
	channelShift = 24
	channelBits  = 5
	channelMask  = 1<<channelBits - 1
	maxMaskBits  = 8 - channelBits

	// MaxMaskFilter is the widest mask that fits next to the channel
	MaxMaskFilter MaskFilter = 1<<maxMaskBits - 1

	traceSingle = 0
	traceMulti  = 1
)

// ChannelAndMask packs a channel and a mask filter into the top 8 bits
// of word3
func ChannelAndMask(channel Channel, mask MaskFilter) uint32 {
	packed := uint32(mask&MaxMaskFilter)<<channelBits | uint32(channel)&channelMask
	return packed << channelShift
}

// ChannelOf returns the channel stored in word3
func ChannelOf(word3 uint32) Channel {
	return Channel(word3 >> channelShift & channelMask)
}

// MaskOf returns the mask filter stored in word3
func MaskOf(word3 uint32) MaskFilter {
	return MaskFilter(word3 >> (channelShift + channelBits))
}

// FlagsOf returns the flags stored in word3
func FlagsOf(word3 uint32) Flag {
	return Flag(word3 & flagsMask)
}

func complexity(traceComplex bool) Flag {
	if traceComplex {
		return FlagComplexCollision
	}
	return FlagSimpleCollision
}

// CreateTraceQueryFilterData encodes a trace query on channel. Word1
// holds the channels the query blocks, word2 those it touches.
func CreateTraceQueryFilterData(channel Channel, traceComplex bool, responses ResponseContainer, params QueryParams) actor.FilterData {
	block, touch := responses.Masks()
	return actor.FilterData{
		Word0: uint32(TraceQuery),
		Word1: block,
		Word2: touch,
		Word3: uint32(complexity(traceComplex)) | ChannelAndMask(channel, params.IgnoreMask),
	}
}

// CreateObjectQueryFilterData encodes an object type query. The channel
// slot of word3 tells multi from single queries.
func CreateObjectQueryFilterData(traceComplex bool, multi bool, objectParams ObjectQueryParams) actor.FilterData {
	trace := Channel(traceSingle)
	if multi {
		trace = traceMulti
	}
	return actor.FilterData{
		Word0: uint32(ObjectQuery),
		Word1: objectParams.ObjectTypesToQuery,
		Word3: uint32(complexity(traceComplex)) | ChannelAndMask(trace, objectParams.IgnoreMask),
	}
}

// CreateQueryFilterData picks the object encoding when objectParams name
// at least one object type, the trace encoding otherwise.
func CreateQueryFilterData(channel Channel, traceComplex bool, responses ResponseContainer, params QueryParams, objectParams ObjectQueryParams, multi bool) actor.FilterData {
	if objectParams.IsValid() {
		return CreateObjectQueryFilterData(traceComplex, multi, objectParams)
	}
	return CreateTraceQueryFilterData(channel, traceComplex, responses, params)
}

// ShapeFilterParams describe a collidable shape
type ShapeFilterParams struct {
	Channel     Channel
	Mask        MaskFilter
	Responses   ResponseContainer
	ActorID     uint32
	ComponentID uint32
	Static      bool
	// Complexity is FlagSimpleCollision, FlagComplexCollision or both
	Complexity Flag
	// Extra flags such as FlagCCD or FlagContactNotify
	Extra Flag
}

// CreateShapeFilterData returns the query and simulation records of a
// shape. The query record carries the actor id in word0, the simulation
// record the component id in word2.
func CreateShapeFilterData(p ShapeFilterParams) (query, simulation actor.FilterData) {
	block, touch := p.Responses.Masks()

	flags := p.Complexity | p.Extra
	if p.Static {
		flags |= FlagStaticShape
	}
	word3 := uint32(flags)&flagsMask | ChannelAndMask(p.Channel, p.Mask)

	query = actor.FilterData{Word0: p.ActorID, Word1: block, Word2: touch, Word3: word3}
	simulation = actor.FilterData{Word0: p.ActorID, Word1: block, Word2: p.ComponentID, Word3: word3}
	return query, simulation
}

// DecodeResponses recovers the block and overlap channels of a trace
// record. Channels in neither mask decode as Ignore.
func DecodeResponses(fd actor.FilterData) ResponseContainer {
	var c ResponseContainer
	for i := range c {
		bit := Channel(i).Bit()
		switch {
		case fd.Word1&bit != 0:
			c[i] = Block
		case fd.Word2&bit != 0:
			c[i] = Overlap
		}
	}
	return c
}
