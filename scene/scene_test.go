package scene

import (
	"math"
	"testing"

	"github.com/akmonengine/probe/actor"
	"github.com/akmonengine/probe/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// verdictFilter returns a fixed verdict per actor id, Block by default
type verdictFilter struct {
	verdicts map[uint32]QueryHitType
	post     func(hit LocationHit) QueryHitType
}

func (f verdictFilter) PreFilter(_ actor.FilterData, _ *actor.Shape, rigidActor *actor.RigidActor, _ *geometry.HitFlags) QueryHitType {
	if v, ok := f.verdicts[rigidActor.ID]; ok {
		return v
	}
	return QueryHitBlock
}

func (f verdictFilter) PostFilter(_ actor.FilterData, hit LocationHit) QueryHitType {
	if f.post != nil {
		return f.post(hit)
	}
	return QueryHitBlock
}

func createBoxActor(id uint32, position mgl64.Vec3, halfExtents mgl64.Vec3, static bool) *actor.RigidActor {
	a := actor.NewRigidActor(id, actor.NewTransformAt(position), static)
	a.AttachShape(actor.NewShape(actor.BoxGeometry{HalfExtents: halfExtents}, actor.NewTransform()))
	return a
}

func createSphereActor(id uint32, position mgl64.Vec3, radius float64, static bool) *actor.RigidActor {
	a := actor.NewRigidActor(id, actor.NewTransformAt(position), static)
	a.AttachShape(actor.NewShape(actor.SphereGeometry{Radius: radius}, actor.NewTransform()))
	return a
}

// createRow places unit boxes along +X at x = 10, 20, 30
func createRow() *Scene {
	s := New(Config{CellSize: 5, NumCells: 256})
	s.AddActor(createBoxActor(1, mgl64.Vec3{10, 0, 0}, mgl64.Vec3{1, 1, 1}, true))
	s.AddActor(createBoxActor(2, mgl64.Vec3{20, 0, 0}, mgl64.Vec3{1, 1, 1}, false))
	s.AddActor(createBoxActor(3, mgl64.Vec3{30, 0, 0}, mgl64.Vec3{1, 1, 1}, false))
	return s
}

func prefilter(flags QueryFlags) QueryFilterData {
	return QueryFilterData{Flags: QueryDefault | QueryPrefilter | flags}
}

func TestSceneRaycast(t *testing.T) {
	origin := mgl64.Vec3{0, 0, 0}
	dir := mgl64.Vec3{1, 0, 0}

	t.Run("closest block", func(t *testing.T) {
		s := createRow()
		buf := NewSingleBuffer[RaycastHit]()
		if !s.Raycast(origin, dir, 100, buf, geometry.HitDefault, QueryFilterData{Flags: QueryDefault}, nil) {
			t.Fatal("expected a hit")
		}
		if buf.Block.Actor.ID != 1 {
			t.Errorf("expected actor 1, got %d", buf.Block.Actor.ID)
		}
		if math.Abs(buf.Block.Distance-9) > 1e-3 {
			t.Errorf("expected distance 9, got %v", buf.Block.Distance)
		}
	})

	t.Run("touches before the block", func(t *testing.T) {
		s := createRow()
		filter := verdictFilter{verdicts: map[uint32]QueryHitType{1: QueryHitTouch, 3: QueryHitTouch}}
		buf := NewDynamicBuffer[RaycastHit]()

		if !s.Raycast(origin, dir, 100, buf, geometry.HitDefault, prefilter(0), filter) {
			t.Fatal("expected hits")
		}
		// actor 3 lies behind the block and is dropped
		if buf.NbHits() != 2 {
			t.Fatalf("expected 2 hits, got %d", buf.NbHits())
		}
		if buf.Hits()[0].Actor.ID != 1 || buf.Hits()[1].Actor.ID != 2 {
			t.Errorf("expected touch 1 then block 2, got %d and %d", buf.Hits()[0].Actor.ID, buf.Hits()[1].Actor.ID)
		}
	})

	t.Run("ignored by prefilter", func(t *testing.T) {
		s := createRow()
		filter := verdictFilter{verdicts: map[uint32]QueryHitType{1: QueryHitNone}}
		buf := NewSingleBuffer[RaycastHit]()
		s.Raycast(origin, dir, 100, buf, geometry.HitDefault, prefilter(0), filter)
		if !buf.HasBlock || buf.Block.Actor.ID != 2 {
			t.Errorf("expected block on actor 2, got %+v", buf.Block)
		}
	})

	t.Run("postfilter", func(t *testing.T) {
		s := createRow()
		filter := verdictFilter{post: func(hit LocationHit) QueryHitType {
			if hit.Actor.ID == 1 {
				return QueryHitNone
			}
			return QueryHitBlock
		}}
		buf := NewSingleBuffer[RaycastHit]()
		s.Raycast(origin, dir, 100, buf, geometry.HitDefault, QueryFilterData{Flags: QueryDefault | QueryPostfilter}, filter)
		if !buf.HasBlock || buf.Block.Actor.ID != 2 {
			t.Errorf("expected block on actor 2, got %+v", buf.Block)
		}
	})

	t.Run("dynamic only", func(t *testing.T) {
		s := createRow()
		buf := NewSingleBuffer[RaycastHit]()
		s.Raycast(origin, dir, 100, buf, geometry.HitDefault, QueryFilterData{Flags: QueryDynamic}, nil)
		if !buf.HasBlock || buf.Block.Actor.ID != 2 {
			t.Errorf("expected the static actor to be skipped, got %+v", buf.Block)
		}
	})

	t.Run("any hit", func(t *testing.T) {
		s := createRow()
		filter := verdictFilter{verdicts: map[uint32]QueryHitType{1: QueryHitTouch}}
		buf := NewSingleBuffer[RaycastHit]()
		if !s.Raycast(origin, dir, 100, buf, geometry.HitDefault, prefilter(QueryAnyHit), filter) {
			t.Fatal("expected a hit")
		}
		if !buf.HasBlock {
			t.Error("expected the first hit to be reported as block")
		}
	})

	t.Run("too short", func(t *testing.T) {
		s := createRow()
		buf := NewSingleBuffer[RaycastHit]()
		if s.Raycast(origin, dir, 5, buf, geometry.HitDefault, QueryFilterData{Flags: QueryDefault}, nil) {
			t.Error("expected no hit")
		}
	})
}

func TestSceneAccumulatesAcrossQueries(t *testing.T) {
	s := createRow()
	buf := NewDynamicBuffer[RaycastHit]()

	s.Raycast(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, 100, buf, geometry.HitDefault, QueryFilterData{Flags: QueryDefault}, nil)
	s.Raycast(mgl64.Vec3{40, 0, 0}, mgl64.Vec3{-1, 0, 0}, 100, buf, geometry.HitDefault, QueryFilterData{Flags: QueryDefault}, nil)

	if buf.NbHits() != 2 {
		t.Fatalf("expected one block per query, got %d", buf.NbHits())
	}
	if buf.Hits()[0].Actor.ID != 1 || buf.Hits()[1].Actor.ID != 3 {
		t.Errorf("expected actors 1 and 3, got %d and %d", buf.Hits()[0].Actor.ID, buf.Hits()[1].Actor.ID)
	}
}

func TestSceneSweep(t *testing.T) {
	s := createRow()
	buf := NewSingleBuffer[SweepHit]()

	ok := s.Sweep(actor.SphereGeometry{Radius: 1}, actor.NewTransform(), mgl64.Vec3{1, 0, 0}, 100,
		buf, geometry.HitDefault, QueryFilterData{Flags: QueryDefault}, nil)
	if !ok || !buf.HasBlock {
		t.Fatal("expected a block")
	}
	if math.Abs(buf.Block.Distance-8) > 1e-3 {
		t.Errorf("expected distance 8, got %v", buf.Block.Distance)
	}

	t.Run("non convex query", func(t *testing.T) {
		mesh := actor.TriangleMeshGeometry{Mesh: actor.NewTriangleMesh(nil, nil)}
		if s.Sweep(mesh, actor.NewTransform(), mgl64.Vec3{1, 0, 0}, 100, NewSingleBuffer[SweepHit](), geometry.HitDefault, QueryFilterData{Flags: QueryDefault}, nil) {
			t.Error("expected no hit")
		}
	})
}

func TestSceneOverlap(t *testing.T) {
	s := New(Config{})
	s.AddActor(createSphereActor(1, mgl64.Vec3{0, 0, 0}, 1, true))
	s.AddActor(createSphereActor(2, mgl64.Vec3{1, 0, 0}, 1, false))
	s.AddActor(createSphereActor(3, mgl64.Vec3{50, 0, 0}, 1, false))

	buf := NewDynamicBuffer[OverlapHit]()
	filter := verdictFilter{verdicts: map[uint32]QueryHitType{1: QueryHitTouch, 2: QueryHitTouch}}
	if !s.Overlap(actor.BoxGeometry{HalfExtents: mgl64.Vec3{2, 2, 2}}, actor.NewTransform(), buf, prefilter(0), filter) {
		t.Fatal("expected overlaps")
	}
	if buf.NbHits() != 2 {
		t.Errorf("expected 2 overlaps, got %d", buf.NbHits())
	}
}

func TestSceneRemoveAndRefresh(t *testing.T) {
	s := createRow()
	first := s.Actors()[0]
	s.RemoveActor(first)

	buf := NewSingleBuffer[RaycastHit]()
	s.Raycast(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, 100, buf, geometry.HitDefault, QueryFilterData{Flags: QueryDefault}, nil)
	if !buf.HasBlock || buf.Block.Actor.ID != 2 {
		t.Fatalf("expected actor 2 after removal, got %+v", buf.Block)
	}

	// move actor 3 in front and refresh
	s.Actors()[1].GlobalPose.Position = mgl64.Vec3{5, 0, 0}
	s.Refresh()
	buf.Reset()
	s.Raycast(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, 100, buf, geometry.HitDefault, QueryFilterData{Flags: QueryDefault}, nil)
	if buf.Block.Actor.ID != 3 {
		t.Errorf("expected actor 3 after refresh, got %d", buf.Block.Actor.ID)
	}
}

func TestHitBuffer(t *testing.T) {
	hit := func(d float64) LocationHit {
		return LocationHit{Hit: geometry.Hit{Distance: d}}
	}

	t.Run("single keeps the nearest block", func(t *testing.T) {
		b := NewSingleBuffer[LocationHit]()
		b.begin()
		b.accept(hit(5), QueryHitBlock, false)
		b.accept(hit(3), QueryHitBlock, false)
		b.accept(hit(1), QueryHitTouch, false)
		b.finalize()
		if !b.HasBlock || b.Block.Distance != 3 || b.NbHits() != 0 {
			t.Errorf("unexpected buffer state: %+v", b)
		}
	})

	t.Run("dynamic trims touches behind the block", func(t *testing.T) {
		b := NewDynamicBuffer[LocationHit]()
		b.begin()
		b.accept(hit(1), QueryHitTouch, false)
		b.accept(hit(7), QueryHitTouch, false)
		b.accept(hit(4), QueryHitBlock, false)
		b.finalize()

		hits := b.Hits()
		if len(hits) != 2 || hits[0].Distance != 1 || hits[1].Distance != 4 {
			t.Errorf("expected touch at 1 then block at 4, got %+v", hits)
		}
	})

	t.Run("grows past inline capacity", func(t *testing.T) {
		b := NewDynamicBuffer[LocationHit]()
		b.begin()
		for i := 0; i < InlineHitCapacity+5; i++ {
			b.accept(hit(float64(i)), QueryHitTouch, false)
		}
		b.finalize()
		if b.NbHits() != InlineHitCapacity+5 {
			t.Errorf("expected %d hits, got %d", InlineHitCapacity+5, b.NbHits())
		}
	})

	t.Run("any hit stops", func(t *testing.T) {
		b := NewSingleBuffer[LocationHit]()
		b.begin()
		if !b.accept(hit(2), QueryHitTouch, true) {
			t.Error("expected any hit to stop the query")
		}
		if !b.HasBlock {
			t.Error("expected any hit to set the block")
		}
	})
}

func TestTask(t *testing.T) {
	data := make([]*int, 10)
	for i := range data {
		v := i
		data[i] = &v
	}

	task(3, data, func(v *int) { *v *= 2 })

	for i, v := range data {
		if *v != i*2 {
			t.Errorf("expected %d, got %d", i*2, *v)
		}
	}
}
