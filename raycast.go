package probe

import (
	"time"

	"github.com/akmonengine/probe/collision"
	"github.com/akmonengine/probe/filter"
	"github.com/akmonengine/probe/geometry"
	"github.com/akmonengine/probe/scene"
	"github.com/go-gl/mathgl/mgl64"
	log "github.com/sirupsen/logrus"
)

// trace is the direction and length of a raycast or sweep
type trace struct {
	start, end mgl64.Vec3
	direction  mgl64.Vec3
	length     float64
}

// newTrace returns false for traces too short to run
func newTrace(start, end mgl64.Vec3) (trace, bool) {
	delta := end.Sub(start)
	length := delta.Len()
	if length <= kindaSmallNumber {
		return trace{start: start, end: end}, false
	}
	return trace{start: start, end: end, direction: delta.Mul(1 / length), length: length}, true
}

// RaycastTest reports whether anything blocks the segment from start to
// end. Touches are ignored and the scenes stop at the first block.
func (w *World) RaycastTest(start, end mgl64.Vec3, channel filter.Channel, params filter.QueryParams, responses filter.ResponseParams, objects filter.ObjectQueryParams) bool {
	if err := w.checkScene(); err != nil {
		w.logger().WithError(err).Debug("RaycastTest skipped")
		return false
	}
	began := time.Now()

	blocking := false
	if tr, ok := newTrace(start, end); ok {
		fd := filter.CreateQueryFilterData(channel, params.TraceComplex, responses.CollisionResponse, params, objects, false)
		queryFilter := scene.QueryFilterData{
			Data:  fd,
			Flags: filter.StaticDynamicQueryFlags(params) | scene.QueryPrefilter | scene.QueryAnyHit,
		}
		callback := filter.NewTraceFilter(params, false)
		callback.Params.IgnoreTouches = true

		locks := newSceneReadLocks(w.PhysScene)
		defer locks.releaseAll()

		buffer := scene.NewSingleBuffer[scene.RaycastHit]()
		locks.lockRead(SceneSync).Raycast(tr.start, tr.direction, tr.length, buffer, 0, queryFilter, callback)
		blocking = buffer.HasBlock
		locks.release(SceneSync)

		if !blocking && params.TraceAsyncScene && w.PhysScene.HasAsyncScene() {
			locks.lockRead(SceneAsync).Raycast(tr.start, tr.direction, tr.length, buffer, 0, queryFilter, callback)
			blocking = buffer.HasBlock
			locks.release(SceneAsync)
		}
	}

	w.captureTrace(QueryEvent{
		Type: RaycastQuery, Mode: ModeTest, Shape: ShapeLine,
		Start: start, End: end, Channel: channel, Tag: params.Tag,
		Duration: time.Since(began),
	}, LineShape(), params, responses)
	return blocking
}

// RaycastSingle returns the closest blocking hit between start and end.
// With TraceAsyncScene, the asynchronous scene hit wins when it is
// strictly closer than the synchronous one.
func (w *World) RaycastSingle(start, end mgl64.Vec3, channel filter.Channel, params filter.QueryParams, responses filter.ResponseParams, objects filter.ObjectQueryParams) (collision.HitResult, bool) {
	out := collision.NewHitResult()
	out.TraceStart = start
	out.TraceEnd = end

	if err := w.checkScene(); err != nil {
		w.logger().WithError(err).Debug("RaycastSingle skipped")
		return out, false
	}
	began := time.Now()

	tr, ok := newTrace(start, end)
	if !ok {
		return w.finishSingle(RaycastQuery, LineShape(), mgl64.QuatIdent(), channel, params, responses, out, false, began), false
	}

	fd := filter.CreateQueryFilterData(channel, params.TraceComplex, responses.CollisionResponse, params, objects, false)
	queryFilter := scene.QueryFilterData{
		Data:  fd,
		Flags: filter.StaticDynamicQueryFlags(params) | scene.QueryPrefilter,
	}
	hitFlags := geometry.HitDefault | geometry.HitMTD
	callback := filter.NewTraceFilter(params, false)
	callback.Params.IgnoreTouches = true

	locks := newSceneReadLocks(w.PhysScene)
	defer locks.releaseAll()

	buffer := scene.NewSingleBuffer[scene.RaycastHit]()
	locks.lockRead(SceneSync).Raycast(tr.start, tr.direction, tr.length, buffer, hitFlags, queryFilter, callback)
	block, blocking := buffer.Block, buffer.HasBlock
	if !blocking {
		locks.release(SceneSync)
	}

	if params.TraceAsyncScene && w.PhysScene.HasAsyncScene() {
		distance := tr.length
		if blocking {
			distance = block.Distance
		}

		asyncBuffer := scene.NewSingleBuffer[scene.RaycastHit]()
		if distance > smallNumber {
			locks.lockRead(SceneAsync).Raycast(tr.start, tr.direction, distance, asyncBuffer, hitFlags, queryFilter, callback)
		}
		if asyncBuffer.HasBlock && (!blocking || asyncBuffer.Block.Distance < block.Distance) {
			block, blocking = asyncBuffer.Block, true
		} else {
			locks.release(SceneAsync)
		}
	}

	if blocking {
		q := collision.RayQuery(start, end, fd)
		q.ReturnFaceIndex = params.ReturnFaceIndex
		q.ReturnPhysicalMaterial = params.ReturnPhysicalMaterial
		if err := collision.ConvertQueryImpactHit(w.config(), block, q, &out); err != nil {
			blocking = false
			out.TraceStart, out.TraceEnd = start, end
			w.logInvalidResult(err, "RaycastSingle", start, end)
		}
	}
	locks.releaseAll()
	return w.finishSingle(RaycastQuery, LineShape(), mgl64.QuatIdent(), channel, params, responses, out, blocking, began), blocking
}

// RaycastMulti returns the touches up to the closest block, followed by
// that block, sorted by time. It reports whether a block was found.
func (w *World) RaycastMulti(start, end mgl64.Vec3, channel filter.Channel, params filter.QueryParams, responses filter.ResponseParams, objects filter.ObjectQueryParams) ([]collision.HitResult, bool) {
	if err := w.checkScene(); err != nil {
		w.logger().WithError(err).Debug("RaycastMulti skipped")
		return nil, false
	}
	began := time.Now()

	results, blocking := w.raycastMulti(start, end, channel, params, responses, objects)

	w.captureTrace(QueryEvent{
		Type: RaycastQuery, Mode: ModeMulti, Shape: ShapeLine, Rotation: mgl64.QuatIdent(),
		Start: start, End: end, Channel: channel, Tag: params.Tag,
		Hits: results, Duration: time.Since(began),
	}, LineShape(), params, responses)
	return results, blocking
}

func (w *World) raycastMulti(start, end mgl64.Vec3, channel filter.Channel, params filter.QueryParams, responses filter.ResponseParams, objects filter.ObjectQueryParams) ([]collision.HitResult, bool) {
	var results []collision.HitResult
	blocking := false
	if tr, ok := newTrace(start, end); ok {
		fd := filter.CreateQueryFilterData(channel, params.TraceComplex, responses.CollisionResponse, params, objects, true)
		queryFilter := scene.QueryFilterData{
			Data:  fd,
			Flags: filter.StaticDynamicQueryFlags(params) | scene.QueryPrefilter,
		}
		hitFlags := geometry.HitDefault | geometry.HitMTD
		callback := filter.NewTraceFilter(params, false)

		locks := newSceneReadLocks(w.PhysScene)
		defer locks.releaseAll()

		buffer := scene.NewDynamicBuffer[scene.RaycastHit]()
		locks.lockRead(SceneSync).Raycast(tr.start, tr.direction, tr.length, buffer, hitFlags, queryFilter, callback)
		nbSync := buffer.NbHits()
		if nbSync == 0 {
			locks.release(SceneSync)
		}

		minBlockDistance := tr.length
		if buffer.HasBlock {
			blocking = true
			minBlockDistance = buffer.Block.Distance
		}

		if params.TraceAsyncScene && w.PhysScene.HasAsyncScene() && minBlockDistance > smallNumber {
			locks.lockRead(SceneAsync).Raycast(tr.start, tr.direction, minBlockDistance, buffer, hitFlags, queryFilter, callback)
			if buffer.NbHits() == nbSync {
				locks.release(SceneAsync)
			}
			if buffer.HasBlock {
				blocking = true
				minBlockDistance = min(minBlockDistance, buffer.Block.Distance)
			}
		}

		if buffer.NbHits() > 0 {
			q := collision.RayQuery(start, end, fd)
			q.ReturnFaceIndex = params.ReturnFaceIndex
			q.ReturnPhysicalMaterial = params.ReturnPhysicalMaterial

			var converted bool
			var err error
			results, converted, err = collision.ConvertRaycastResults(w.config(), trimHits(buffer.Hits(), blocking, minBlockDistance), q, nil)
			if err != nil {
				w.logInvalidResult(err, "RaycastMulti", start, end)
				blocking = blocking && converted
			}
		}
	}
	return results, blocking
}

// trimHits drops the hits beyond the closest block of both scenes
func trimHits(hits []scene.LocationHit, blocking bool, maxDistance float64) []scene.LocationHit {
	if !blocking {
		return hits
	}

	kept := make([]scene.LocationHit, 0, len(hits))
	for _, h := range hits {
		if h.Distance <= maxDistance {
			kept = append(kept, h)
		}
	}
	return kept
}

// finishSingle captures a single result query
func (w *World) finishSingle(queryType QueryType, shape CollisionShape, rotation mgl64.Quat, channel filter.Channel, params filter.QueryParams, responses filter.ResponseParams, out collision.HitResult, blocking bool, began time.Time) collision.HitResult {
	if w.Analyzer.IsRecording() {
		var hits []collision.HitResult
		if blocking {
			hits = []collision.HitResult{out}
		}
		w.captureTrace(QueryEvent{
			Type: queryType, Mode: ModeSingle, Shape: shape.Kind, Dims: shapeDims(shape), Rotation: rotation,
			Start: out.TraceStart, End: out.TraceEnd, Channel: channel, Tag: params.Tag,
			Hits: hits, Duration: time.Since(began),
		}, shape, params, responses)
	}
	return out
}

// captureTrace records a raycast or sweep along with everything the same
// trace touches on the default channel, so a capture also shows what the
// query went through or ignored. No scene lock may be held.
func (w *World) captureTrace(event QueryEvent, shape CollisionShape, params filter.QueryParams, responses filter.ResponseParams) {
	if !w.Analyzer.IsRecording() {
		return
	}

	channel := w.config().DefaultChannel
	if event.Type == SweepQuery && !shape.IsNearlyZero() {
		event.TouchAll, _ = w.geomSweepMulti(shape, event.Rotation, event.Start, event.End, channel, params, responses, filter.AllObjects())
	} else {
		event.TouchAll, _ = w.raycastMulti(event.Start, event.End, channel, params, responses, filter.AllObjects())
	}
	w.Analyzer.capture(event)
}

func (w *World) logInvalidResult(err error, query string, start, end mgl64.Vec3) {
	w.logger().WithError(err).WithFields(log.Fields{
		"query": query,
		"start": start,
		"end":   end,
	}).Warn("query resulted in a non finite hit")
}
