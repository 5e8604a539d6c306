package probe

import (
	"time"

	"github.com/akmonengine/probe/actor"
	"github.com/akmonengine/probe/collision"
	"github.com/akmonengine/probe/filter"
	"github.com/akmonengine/probe/scene"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// overlapInfo is what an overlap query is after
type overlapInfo uint8

const (
	// gatherAll converts and returns every overlap
	gatherAll overlapInfo = iota
	// isBlocking only reports whether a blocking shape overlaps
	isBlocking
	// isAnything only reports whether any shape overlaps
	isAnything
)

// GeomOverlapMulti returns one result per component and item overlapping
// shape at position, and whether one of them blocks.
func (w *World) GeomOverlapMulti(shape CollisionShape, position mgl64.Vec3, rotation mgl64.Quat, channel filter.Channel, params filter.QueryParams, responses filter.ResponseParams, objects filter.ObjectQueryParams) ([]collision.OverlapResult, bool) {
	return w.geomOverlap(gatherAll, shape, position, rotation, channel, params, responses, objects)
}

// GeomOverlapBlockingTest reports whether a blocking shape overlaps shape
// at position
func (w *World) GeomOverlapBlockingTest(shape CollisionShape, position mgl64.Vec3, rotation mgl64.Quat, channel filter.Channel, params filter.QueryParams, responses filter.ResponseParams, objects filter.ObjectQueryParams) bool {
	_, found := w.geomOverlap(isBlocking, shape, position, rotation, channel, params, responses, objects)
	return found
}

// GeomOverlapAnyTest reports whether any shape, blocking or touching,
// overlaps shape at position
func (w *World) GeomOverlapAnyTest(shape CollisionShape, position mgl64.Vec3, rotation mgl64.Quat, channel filter.Channel, params filter.QueryParams, responses filter.ResponseParams, objects filter.ObjectQueryParams) bool {
	_, found := w.geomOverlap(isAnything, shape, position, rotation, channel, params, responses, objects)
	return found
}

// supportsOverlap reports whether g can be used as an overlap query
func supportsOverlap(g actor.Geometry) error {
	if g == nil {
		return errors.Wrap(ErrUnsupportedShapeKind, "no geometry")
	}
	switch g.Type() {
	case actor.GeometryTypeSphere, actor.GeometryTypeCapsule, actor.GeometryTypeBox, actor.GeometryTypeConvexMesh:
		return nil
	}
	return errors.Wrapf(ErrUnsupportedShapeKind, "%s", g.Type())
}

func (w *World) geomOverlap(info overlapInfo, shape CollisionShape, position mgl64.Vec3, rotation mgl64.Quat, channel filter.Channel, params filter.QueryParams, responses filter.ResponseParams, objects filter.ObjectQueryParams) ([]collision.OverlapResult, bool) {
	if err := w.checkScene(); err != nil {
		w.logger().WithError(err).Debug("GeomOverlap skipped")
		return nil, false
	}

	g, pose := shape.queryGeometry(position, rotation)
	if err := supportsOverlap(g); err != nil {
		kind := shape.Kind.String()
		if g != nil {
			kind = g.Type().String()
		}
		w.logger().WithError(err).WithField("kind", kind).Error("GeomOverlap only supports sphere, capsule, box and convex shapes")
		return nil, false
	}
	began := time.Now()

	fd := filter.CreateQueryFilterData(channel, params.TraceComplex, responses.CollisionResponse, params, objects, info != isAnything)
	queryFilter := scene.QueryFilterData{
		Data:  fd,
		Flags: filter.StaticDynamicQueryFlags(params) | scene.QueryPrefilter,
	}
	if info != gatherAll {
		queryFilter.Flags |= scene.QueryAnyHit
	}
	callback := filter.NewTraceFilter(params, true)
	callback.Params.IgnoreTouches = callback.Params.IgnoreTouches || info == isBlocking

	locks := newSceneReadLocks(w.PhysScene)
	defer locks.releaseAll()

	var results []collision.OverlapResult
	found := false

	buffer := scene.NewDynamicBuffer[scene.OverlapHit]()
	locks.lockRead(SceneSync).Overlap(g, pose, buffer, queryFilter, callback)
	nbSync := buffer.NbHits()
	switch {
	case info != gatherAll && buffer.HasBlock:
		found = true
	case nbSync == 0:
		locks.release(SceneSync)
	}

	if !found && params.TraceAsyncScene && w.PhysScene.HasAsyncScene() {
		locks.lockRead(SceneAsync).Overlap(g, pose, buffer, queryFilter, callback)
		if info != gatherAll {
			found = buffer.HasBlock
		}
		if buffer.NbHits() == nbSync {
			locks.release(SceneAsync)
		}
	}

	if info == gatherAll && buffer.NbHits() > 0 {
		results, found = collision.ConvertOverlapResults(w.config(), buffer.Hits(), fd, nil)
	}

	if w.Analyzer.IsRecording() {
		mode := ModeTest
		if info == gatherAll {
			mode = ModeMulti
		}
		w.Analyzer.capture(QueryEvent{
			Type: OverlapQuery, Mode: mode, Shape: shape.Kind, Dims: shapeDims(shape), Rotation: rotation,
			Start: position, End: position, Channel: channel, Tag: params.Tag,
			Overlaps: results, Duration: time.Since(began),
		})
	}
	return results, found
}
