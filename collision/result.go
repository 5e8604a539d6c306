// Package collision converts scene query hits into engine hit and overlap
// results: identity resolution, surface normal recovery, depenetration of
// hits starting in overlap, sorting and deduplication.
package collision

import (
	"fmt"

	"github.com/akmonengine/probe/actor"
	"github.com/akmonengine/probe/component"
	"github.com/go-gl/mathgl/mgl64"
)

// HitResult is the engine view of a raycast or sweep hit
type HitResult struct {
	Actor        *component.Actor
	Component    *component.PrimitiveComponent
	PhysMaterial *actor.Material
	BoneName     string
	// Item is the body or custom item index, component.IndexNone if unused
	Item int32
	// FaceIndex is the caller side triangle index of mesh hits, -1 otherwise
	FaceIndex int32

	BlockingHit      bool
	StartPenetrating bool

	// Time is the hit distance over the trace length, in [0, 1]
	Time     float64
	Distance float64
	// Location is where the query shape stops along the trace
	Location    mgl64.Vec3
	ImpactPoint mgl64.Vec3
	// Normal is the normal of the swept shape at impact, ImpactNormal the
	// normal of the surface that was hit
	Normal       mgl64.Vec3
	ImpactNormal mgl64.Vec3

	TraceStart       mgl64.Vec3
	TraceEnd         mgl64.Vec3
	PenetrationDepth float64
}

// NewHitResult returns an empty result
func NewHitResult() HitResult {
	return HitResult{Time: 1, FaceIndex: -1, Item: component.IndexNone}
}

// Reset clears the result back to NewHitResult
func (h *HitResult) Reset() {
	*h = NewHitResult()
}

// IsValidBlockingHit reports a block that did not start in penetration
func (h HitResult) IsValidBlockingHit() bool {
	return h.BlockingHit && !h.StartPenetrating
}

func (h HitResult) String() string {
	name := "none"
	if h.Component != nil {
		name = h.Component.Name
	}
	return fmt.Sprintf("hit %s time %.4f distance %.4f blocking %t penetrating %t", name, h.Time, h.Distance, h.BlockingHit, h.StartPenetrating)
}

// OverlapResult is the engine view of an overlap
type OverlapResult struct {
	Actor     *component.Actor
	Component *component.PrimitiveComponent
	// ItemIndex is set only for components reporting one overlap per body
	ItemIndex   int32
	BlockingHit bool
}

func (o OverlapResult) key() overlapKey {
	return overlapKey{component: o.Component, item: o.ItemIndex}
}

type overlapKey struct {
	component *component.PrimitiveComponent
	item      int32
}
