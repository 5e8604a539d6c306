// Package scene holds rigid actors and answers raycast, sweep and overlap
// queries against their shapes, with broad phase culling on a spatial grid
// and per candidate filtering through a QueryFilterCallback.
package scene

import (
	"sync"

	"github.com/akmonengine/probe/actor"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultCellSize = 10.0
	DefaultNumCells = 4096
	DefaultWorkers  = 1
)

// Config configures a Scene
type Config struct {
	CellSize float64
	NumCells int
	Workers  int
	Logger   log.FieldLogger
}

type entry struct {
	shape  *actor.Shape
	actor  *actor.RigidActor
	bounds actor.AABB
}

// Scene is a set of rigid actors. Queries take the read lock for their
// duration when called through LockRead; mutations take the write lock.
type Scene struct {
	mu sync.RWMutex

	actors  []*actor.RigidActor
	entries []*entry
	grid    *SpatialGrid

	workers int
	logger  log.FieldLogger
}

// New creates an empty scene
func New(cfg Config) *Scene {
	if cfg.CellSize <= 0 {
		cfg.CellSize = DefaultCellSize
	}
	if cfg.NumCells <= 0 {
		cfg.NumCells = DefaultNumCells
	}
	if cfg.Logger == nil {
		cfg.Logger = log.StandardLogger()
	}

	return &Scene{
		grid:    NewSpatialGrid(cfg.CellSize, cfg.NumCells),
		workers: max(DefaultWorkers, cfg.Workers),
		logger:  cfg.Logger,
	}
}

// LockRead takes the scene read lock. It must not be taken twice by the
// same call chain.
func (s *Scene) LockRead() {
	s.mu.RLock()
}

func (s *Scene) UnlockRead() {
	s.mu.RUnlock()
}

// AddActor adds an actor and indexes its shapes
func (s *Scene) AddActor(a *actor.RigidActor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.actors = append(s.actors, a)
	for _, shape := range a.Shapes() {
		e := &entry{shape: shape, actor: a, bounds: shape.WorldBounds()}
		s.entries = append(s.entries, e)
		s.grid.Insert(len(s.entries)-1, e.bounds)
	}
}

// RemoveActor removes an actor and its shapes
func (s *Scene) RemoveActor(a *actor.RigidActor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := -1
	for i, other := range s.actors {
		if other == a {
			k = i
			break
		}
	}

	if k != -1 {
		s.actors = append(s.actors[:k], s.actors[k+1:]...)
		s.rebuild()
	}
}

// Actors returns the actors of the scene
func (s *Scene) Actors() []*actor.RigidActor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*actor.RigidActor(nil), s.actors...)
}

// Refresh recomputes the world bounds of every shape, after actors moved
// or shapes were attached, and rebuilds the grid.
func (s *Scene) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuild()
}

func (s *Scene) rebuild() {
	s.entries = s.entries[:0]
	for _, a := range s.actors {
		for _, shape := range a.Shapes() {
			s.entries = append(s.entries, &entry{shape: shape, actor: a})
		}
	}

	task(s.workers, s.entries, func(e *entry) {
		e.bounds = e.shape.WorldBounds()
	})

	s.grid.Clear()
	for i, e := range s.entries {
		s.grid.Insert(i, e.bounds)
	}

	s.logger.WithFields(log.Fields{
		"actors": len(s.actors),
		"shapes": len(s.entries),
	}).Debug("scene refreshed")
}
