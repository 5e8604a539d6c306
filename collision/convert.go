package collision

import (
	"math"

	"github.com/akmonengine/probe/actor"
	"github.com/akmonengine/probe/component"
	"github.com/akmonengine/probe/filter"
	"github.com/akmonengine/probe/geometry"
	"github.com/akmonengine/probe/scene"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// ErrInvalidGeometryResult is returned when a hit carries non finite data
var ErrInvalidGeometryResult = errors.New("invalid geometry result")

// Query describes the trace a hit belongs to
type Query struct {
	Start, End mgl64.Vec3
	// Geometry is the swept geometry, nil for raycasts
	Geometry actor.Geometry
	// Pose is the world pose of the swept geometry at Start
	Pose   actor.Transform
	Filter actor.FilterData

	ReturnFaceIndex        bool
	ReturnPhysicalMaterial bool
}

// RayQuery describes a raycast from start to end
func RayQuery(start, end mgl64.Vec3, filterData actor.FilterData) Query {
	return Query{Start: start, End: end, Pose: actor.NewTransformAt(start), Filter: filterData}
}

func (q Query) delta() mgl64.Vec3 {
	return q.End.Sub(q.Start)
}

func (q Query) queryType() actor.GeometryType {
	if q.Geometry == nil {
		return actor.GeometryTypeInvalid
	}
	return q.Geometry.Type()
}

// IsBlocking recomputes the verdict of a shape for a query record
func IsBlocking(shape *actor.Shape, queryFilter actor.FilterData) bool {
	if shape == nil {
		return false
	}
	return filter.CalcQueryHitType(queryFilter, shape.QueryFilterData, false) == scene.QueryHitBlock
}

// ConvertQueryImpactHit fills out from a raycast or sweep hit. Hits
// starting in overlap are depenetrated. It returns ErrInvalidGeometryResult,
// leaving out reset, when the hit holds non finite data.
func ConvertQueryImpactHit(cfg *Config, hit scene.LocationHit, q Query, out *HitResult) error {
	out.Reset()

	if hit.HadInitialOverlap() {
		convertOverlappedShapeToImpactHit(cfg, hit, q, out)
		return nil
	}

	out.BlockingHit = IsBlocking(hit.Shape, q.Filter)
	out.StartPenetrating = false

	delta := q.delta()
	checkLength := delta.Len()
	if math.IsNaN(hit.Distance) || math.IsInf(hit.Distance, 0) || checkLength == 0 {
		out.Reset()
		return errors.Wrapf(ErrInvalidGeometryResult, "distance %v over length %v", hit.Distance, checkLength)
	}
	out.Time = mgl64.Clamp(hit.Distance/checkLength, 0, 1)
	out.Distance = hit.Distance
	out.Location = q.Start.Add(delta.Mul(out.Time))
	out.TraceStart = q.Start
	out.TraceEnd = q.End

	position := hit.Position
	if !hit.Flags.Has(geometry.HitPosition) {
		position = out.Location
	}
	if !actor.IsFiniteVec3(position) {
		out.Reset()
		return errors.Wrapf(ErrInvalidGeometryResult, "position %v", position)
	}
	out.ImpactPoint = position

	normal := hit.Normal
	if !hit.Flags.Has(geometry.HitNormal) || !actor.IsFiniteVec3(normal) || normal.LenSqr() == 0 {
		normal = delta.Mul(-1 / checkLength)
	} else {
		normal = normal.Normalize()
	}
	out.Normal = normal
	out.ImpactNormal = normal

	if q.Geometry != nil {
		hit.FaceIndex = FindFaceIndex(hit, delta.Mul(1/checkLength))
	}
	out.ImpactNormal = FindGeomOpposingNormal(q.queryType(), hit, delta, normal)

	setHitResultFromShapeAndFaceIndex(hit.Shape, hit.FaceIndex, out, q.ReturnFaceIndex, q.ReturnPhysicalMaterial)
	return nil
}

// setHitResultFromShapeAndFaceIndex resolves the identity, material and
// caller side face index of a hit
func setHitResultFromShapeAndFaceIndex(shape *actor.Shape, faceIndex uint32, out *HitResult, returnFaceIndex, returnPhysMat bool) {
	if shape == nil {
		return
	}

	payload := shape.Payload
	out.Component = payload.Component()
	out.Actor = out.Component.GetOwner()

	switch payload.Kind {
	case component.PayloadBodyInstance:
		body := payload.Body()
		out.BoneName = body.BoneName
		out.Item = body.InstanceBodyIndex
	case component.PayloadCustom:
		custom := payload.Custom()
		out.BoneName = custom.HitName
		if out.Component != nil && out.Component.MultiBodyOverlap {
			out.Item = custom.ItemIndex
		}
	}

	if returnPhysMat {
		out.PhysMaterial = shape.MaterialFromFaceIndex(faceIndex)
	}

	if returnFaceIndex && faceIndex != geometry.InvalidFaceIndex {
		switch geom := shape.Geometry.(type) {
		case actor.TriangleMeshGeometry:
			if geom.Mesh == nil {
				break
			}
			out.FaceIndex = int32(faceIndex)
			if int(faceIndex) < len(geom.Mesh.Remap) {
				out.FaceIndex = int32(geom.Mesh.Remap[faceIndex])
			}
		case actor.ConvexMeshGeometry:
			if geom.Mesh != nil && int(faceIndex) < geom.Mesh.NbPolygons() {
				out.FaceIndex = int32(faceIndex)
			}
		}
	}
}

// ConvertQueryOverlap converts an overlap. It returns false for shapes with
// no owning component.
func ConvertQueryOverlap(shape *actor.Shape, queryFilter actor.FilterData) (OverlapResult, bool) {
	if shape == nil {
		return OverlapResult{}, false
	}

	payload := shape.Payload
	owner := payload.Component()
	if owner == nil {
		return OverlapResult{}, false
	}

	result := OverlapResult{
		Actor:       owner.GetOwner(),
		Component:   owner,
		ItemIndex:   component.IndexNone,
		BlockingHit: IsBlocking(shape, queryFilter),
	}
	if owner.MultiBodyOverlap {
		result.ItemIndex = payload.ItemIndex()
	}
	return result, true
}
