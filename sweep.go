package probe

import (
	"time"

	"github.com/akmonengine/probe/actor"
	"github.com/akmonengine/probe/collision"
	"github.com/akmonengine/probe/filter"
	"github.com/akmonengine/probe/geometry"
	"github.com/akmonengine/probe/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// GeomSweepTest reports whether anything blocks shape moving from start
// to end with the given rotation. A shape without volume is traced as a
// ray.
func (w *World) GeomSweepTest(shape CollisionShape, rotation mgl64.Quat, start, end mgl64.Vec3, channel filter.Channel, params filter.QueryParams, responses filter.ResponseParams, objects filter.ObjectQueryParams) bool {
	if shape.IsNearlyZero() {
		return w.RaycastTest(start, end, channel, params, responses, objects)
	}
	if err := w.checkScene(); err != nil {
		w.logger().WithError(err).Debug("GeomSweepTest skipped")
		return false
	}
	began := time.Now()

	blocking := false
	if tr, ok := newTrace(start, end); ok {
		g, pose := shape.queryGeometry(start, rotation)
		fd := filter.CreateQueryFilterData(channel, params.TraceComplex, responses.CollisionResponse, params, objects, false)
		queryFilter := scene.QueryFilterData{
			Data:  fd,
			Flags: filter.StaticDynamicQueryFlags(params) | scene.QueryPrefilter | scene.QueryPostfilter | scene.QueryAnyHit,
		}
		callback := filter.NewSweepFilter(params)
		callback.Params.IgnoreTouches = true

		locks := newSceneReadLocks(w.PhysScene)
		defer locks.releaseAll()

		buffer := scene.NewSingleBuffer[scene.SweepHit]()
		locks.lockRead(SceneSync).Sweep(g, pose, tr.direction, tr.length, buffer, 0, queryFilter, callback)
		blocking = buffer.HasBlock
		locks.release(SceneSync)

		if !blocking && params.TraceAsyncScene && w.PhysScene.HasAsyncScene() {
			locks.lockRead(SceneAsync).Sweep(g, pose, tr.direction, tr.length, buffer, 0, queryFilter, callback)
			blocking = buffer.HasBlock
			locks.release(SceneAsync)
		}
	}

	w.captureTrace(QueryEvent{
		Type: SweepQuery, Mode: ModeTest, Shape: shape.Kind, Dims: shapeDims(shape), Rotation: rotation,
		Start: start, End: end, Channel: channel, Tag: params.Tag,
		Duration: time.Since(began),
	}, shape, params, responses)
	return blocking
}

// GeomSweepSingle returns the first blocking hit of shape moving from
// start to end. A sweep starting in penetration returns that hit with
// StartPenetrating set, unless FindInitialOverlaps is false.
func (w *World) GeomSweepSingle(shape CollisionShape, rotation mgl64.Quat, start, end mgl64.Vec3, channel filter.Channel, params filter.QueryParams, responses filter.ResponseParams, objects filter.ObjectQueryParams) (collision.HitResult, bool) {
	if shape.IsNearlyZero() {
		return w.RaycastSingle(start, end, channel, params, responses, objects)
	}

	out := collision.NewHitResult()
	out.TraceStart = start
	out.TraceEnd = end

	if err := w.checkScene(); err != nil {
		w.logger().WithError(err).Debug("GeomSweepSingle skipped")
		return out, false
	}
	began := time.Now()

	tr, ok := newTrace(start, end)
	if !ok {
		return w.finishSingle(SweepQuery, shape, rotation, channel, params, responses, out, false, began), false
	}

	g, pose := shape.queryGeometry(start, rotation)
	fd := filter.CreateQueryFilterData(channel, params.TraceComplex, responses.CollisionResponse, params, objects, false)
	queryFilter := scene.QueryFilterData{
		Data:  fd,
		Flags: filter.StaticDynamicQueryFlags(params) | scene.QueryPrefilter,
	}
	if !params.FindInitialOverlaps {
		queryFilter.Flags |= scene.QueryPostfilter
	}
	hitFlags := geometry.HitPosition | geometry.HitNormal | geometry.HitDistance | geometry.HitMTD
	callback := filter.NewSweepFilter(params)
	callback.Params.IgnoreTouches = true

	locks := newSceneReadLocks(w.PhysScene)
	defer locks.releaseAll()

	buffer := scene.NewSingleBuffer[scene.SweepHit]()
	locks.lockRead(SceneSync).Sweep(g, pose, tr.direction, tr.length, buffer, hitFlags, queryFilter, callback)
	block, blocking := buffer.Block, buffer.HasBlock
	if !blocking {
		locks.release(SceneSync)
	}

	if params.TraceAsyncScene && w.PhysScene.HasAsyncScene() {
		distance := tr.length
		if blocking {
			distance = block.Distance
		}

		asyncBuffer := scene.NewSingleBuffer[scene.SweepHit]()
		if distance > smallNumber {
			locks.lockRead(SceneAsync).Sweep(g, pose, tr.direction, distance, asyncBuffer, hitFlags, queryFilter, callback)
		}
		if asyncBuffer.HasBlock && (!blocking || asyncBuffer.Block.Distance < block.Distance) {
			block, blocking = asyncBuffer.Block, true
		} else {
			locks.release(SceneAsync)
		}
	}

	if blocking {
		q := sweepQuery(g, pose, start, end, fd, params)
		if err := collision.ConvertQueryImpactHit(w.config(), block, q, &out); err != nil {
			blocking = false
			out.TraceStart, out.TraceEnd = start, end
			w.logInvalidResult(err, "GeomSweepSingle", start, end)
		}
	}
	locks.releaseAll()
	return w.finishSingle(SweepQuery, shape, rotation, channel, params, responses, out, blocking, began), blocking
}

// GeomSweepMulti returns the touches of shape moving from start to end up
// to the first block, followed by that block, sorted by time.
func (w *World) GeomSweepMulti(shape CollisionShape, rotation mgl64.Quat, start, end mgl64.Vec3, channel filter.Channel, params filter.QueryParams, responses filter.ResponseParams, objects filter.ObjectQueryParams) ([]collision.HitResult, bool) {
	if shape.IsNearlyZero() {
		return w.RaycastMulti(start, end, channel, params, responses, objects)
	}
	if err := w.checkScene(); err != nil {
		w.logger().WithError(err).Debug("GeomSweepMulti skipped")
		return nil, false
	}
	began := time.Now()

	results, blocking := w.geomSweepMulti(shape, rotation, start, end, channel, params, responses, objects)

	w.captureTrace(QueryEvent{
		Type: SweepQuery, Mode: ModeMulti, Shape: shape.Kind, Dims: shapeDims(shape), Rotation: rotation,
		Start: start, End: end, Channel: channel, Tag: params.Tag,
		Hits: results, Duration: time.Since(began),
	}, shape, params, responses)
	return results, blocking
}

func (w *World) geomSweepMulti(shape CollisionShape, rotation mgl64.Quat, start, end mgl64.Vec3, channel filter.Channel, params filter.QueryParams, responses filter.ResponseParams, objects filter.ObjectQueryParams) ([]collision.HitResult, bool) {
	var results []collision.HitResult
	blocking := false
	if tr, ok := newTrace(start, end); ok {
		g, pose := shape.queryGeometry(start, rotation)
		fd := filter.CreateQueryFilterData(channel, params.TraceComplex, responses.CollisionResponse, params, objects, true)
		queryFilter := scene.QueryFilterData{
			Data:  fd,
			Flags: filter.StaticDynamicQueryFlags(params) | scene.QueryPrefilter | scene.QueryPostfilter,
		}
		hitFlags := geometry.HitDefault | geometry.HitMTD
		callback := filter.NewSweepFilter(params)

		locks := newSceneReadLocks(w.PhysScene)
		defer locks.releaseAll()

		buffer := scene.NewDynamicBuffer[scene.SweepHit]()
		locks.lockRead(SceneSync).Sweep(g, pose, tr.direction, tr.length, buffer, hitFlags, queryFilter, callback)
		nbSync := buffer.NbHits()

		minBlockDistance := tr.length
		if buffer.HasBlock {
			blocking = true
			minBlockDistance = buffer.Block.Distance
		} else if nbSync == 0 {
			locks.release(SceneSync)
		}

		if params.TraceAsyncScene && minBlockDistance > smallNumber && w.PhysScene.HasAsyncScene() {
			locks.lockRead(SceneAsync).Sweep(g, pose, tr.direction, minBlockDistance, buffer, hitFlags, queryFilter, callback)
			if buffer.NbHits() == nbSync {
				locks.release(SceneAsync)
			}
			if buffer.HasBlock {
				blocking = true
				minBlockDistance = min(minBlockDistance, buffer.Block.Distance)
			}
		}

		if buffer.NbHits() > 0 {
			var converted bool
			var err error
			results, converted, err = collision.AddSweepResults(w.config(), buffer.Hits(), sweepQuery(g, pose, start, end, fd, params), nil, minBlockDistance)
			if err != nil {
				w.logInvalidResult(err, "GeomSweepMulti", start, end)
				blocking = blocking && converted
			}
		}
	}
	return results, blocking
}

func sweepQuery(g actor.Geometry, pose actor.Transform, start, end mgl64.Vec3, fd actor.FilterData, params filter.QueryParams) collision.Query {
	return collision.Query{
		Start:                  start,
		End:                    end,
		Geometry:               g,
		Pose:                   pose,
		Filter:                 fd,
		ReturnFaceIndex:        params.ReturnFaceIndex,
		ReturnPhysicalMaterial: params.ReturnPhysicalMaterial,
	}
}
