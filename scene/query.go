package scene

import (
	"github.com/akmonengine/probe/actor"
	"github.com/akmonengine/probe/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// candidate is a shape that passed culling, mobility and pre-filtering
type candidate struct {
	entry    *entry
	hitType  QueryHitType
	hitFlags geometry.HitFlags
}

// visit walks the shapes whose bounds overlap box in insertion order.
// Iteration stops when fn returns true.
func (s *Scene) visit(box actor.AABB, filterData QueryFilterData, callback QueryFilterCallback, hitFlags geometry.HitFlags, fn func(c candidate) bool) {
	mobility := filterData.Flags & (QueryStatic | QueryDynamic)
	if mobility == 0 {
		mobility = QueryStatic | QueryDynamic
	}

	for _, idx := range s.grid.Query(box) {
		if idx >= len(s.entries) {
			continue
		}
		e := s.entries[idx]
		if !e.bounds.Overlaps(box) {
			continue
		}

		if e.actor.Static && !mobility.Has(QueryStatic) {
			continue
		}
		if !e.actor.Static && !mobility.Has(QueryDynamic) {
			continue
		}

		c := candidate{entry: e, hitType: QueryHitBlock, hitFlags: hitFlags}
		if filterData.Flags.Has(QueryPrefilter) && callback != nil {
			c.hitType = callback.PreFilter(filterData.Data, e.shape, e.actor, &c.hitFlags)
			if c.hitType == QueryHitNone {
				continue
			}
		}

		if fn(c) {
			return
		}
	}
}

func postFilter(filterData QueryFilterData, callback QueryFilterCallback, hit LocationHit, hitType QueryHitType) QueryHitType {
	if filterData.Flags.Has(QueryPostfilter) && callback != nil {
		return callback.PostFilter(filterData.Data, hit)
	}
	return hitType
}

// Raycast casts a ray from origin along the normalized direction. It
// returns true when the buffer received a block or a touch.
func (s *Scene) Raycast(origin, direction mgl64.Vec3, distance float64, buffer *HitBuffer[RaycastHit], hitFlags geometry.HitFlags, filterData QueryFilterData, callback QueryFilterCallback) bool {
	buffer.begin()
	before := buffer.NbHits()

	maxDistance := distance
	anyHit := filterData.Flags.Has(QueryAnyHit)
	box := actor.AABBFromPoints(origin, origin.Add(direction.Mul(distance)))

	s.visit(box, filterData, callback, hitFlags, func(c candidate) bool {
		h, ok := geometry.Raycast(origin, direction, maxDistance, c.entry.shape.Geometry, c.entry.shape.GlobalPose(), c.hitFlags)
		if !ok {
			return false
		}

		hit := RaycastHit{Actor: c.entry.actor, Shape: c.entry.shape, Hit: h}
		hitType := postFilter(filterData, callback, hit, c.hitType)
		if hitType == QueryHitNone {
			return false
		}

		if buffer.accept(hit, hitType, anyHit) {
			return true
		}
		if hitType == QueryHitBlock && !anyHit {
			maxDistance = buffer.Block.Distance
		}
		return false
	})

	buffer.finalize()
	return buffer.HasBlock || buffer.NbHits() > before
}

// Sweep moves a convex geometry from pose along the normalized direction.
// Non convex query geometries never hit.
func (s *Scene) Sweep(g actor.Geometry, pose actor.Transform, direction mgl64.Vec3, distance float64, buffer *HitBuffer[SweepHit], hitFlags geometry.HitFlags, filterData QueryFilterData, callback QueryFilterCallback) bool {
	buffer.begin()
	before := buffer.NbHits()

	if !geometry.IsConvex(g) {
		buffer.finalize()
		return false
	}

	maxDistance := distance
	anyHit := filterData.Flags.Has(QueryAnyHit)
	start := actor.Bounds(g, pose)
	box := start.Union(start.Translate(direction.Mul(distance)))

	s.visit(box, filterData, callback, hitFlags, func(c candidate) bool {
		h, ok := geometry.Sweep(g, pose, direction, maxDistance, c.entry.shape.Geometry, c.entry.shape.GlobalPose(), c.hitFlags)
		if !ok {
			return false
		}

		hit := SweepHit{Actor: c.entry.actor, Shape: c.entry.shape, Hit: h}
		hitType := postFilter(filterData, callback, hit, c.hitType)
		if hitType == QueryHitNone {
			return false
		}

		if buffer.accept(hit, hitType, anyHit) {
			return true
		}
		if hitType == QueryHitBlock && !anyHit && buffer.Block.Distance > 0 {
			maxDistance = buffer.Block.Distance
		}
		return false
	})

	buffer.finalize()
	return buffer.HasBlock || buffer.NbHits() > before
}

// Overlap reports the shapes intersecting a convex geometry at pose.
func (s *Scene) Overlap(g actor.Geometry, pose actor.Transform, buffer *HitBuffer[OverlapHit], filterData QueryFilterData, callback QueryFilterCallback) bool {
	buffer.begin()
	before := buffer.NbHits()

	if !geometry.IsConvex(g) {
		buffer.finalize()
		return false
	}

	anyHit := filterData.Flags.Has(QueryAnyHit)

	s.visit(actor.Bounds(g, pose), filterData, callback, 0, func(c candidate) bool {
		if !geometry.Overlap(g, pose, c.entry.shape.Geometry, c.entry.shape.GlobalPose()) {
			return false
		}

		hit := OverlapHit{Actor: c.entry.actor, Shape: c.entry.shape, FaceIndex: geometry.InvalidFaceIndex}
		return buffer.accept(hit, c.hitType, anyHit)
	})

	buffer.finalize()
	return buffer.HasBlock || buffer.NbHits() > before
}
