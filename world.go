// Package probe answers raycast, sweep and overlap queries against a world
// made of a synchronous and an optional asynchronous physics scene, and
// converts the scene hits into engine hit and overlap results.
package probe

import (
	"github.com/akmonengine/probe/actor"
	"github.com/akmonengine/probe/collision"
	"github.com/akmonengine/probe/scene"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrSceneUnavailable is reported when a world has no physics scene
	ErrSceneUnavailable = errors.New("physics scene unavailable")
	// ErrUnsupportedShapeKind is reported for query geometries an overlap
	// cannot use
	ErrUnsupportedShapeKind = errors.New("unsupported query shape kind")
)

const (
	// kindaSmallNumber is the trace length under which no query runs
	kindaSmallNumber = 1e-4
	// smallNumber is the block distance under which the asynchronous
	// scene is not searched
	smallNumber = 1e-8
)

// SceneType identifies one of the scenes of a PhysScene
type SceneType uint8

const (
	SceneSync SceneType = iota
	SceneAsync

	sceneTypeCount
)

func (t SceneType) String() string {
	if t == SceneAsync {
		return "async"
	}
	return "sync"
}

// PhysScene groups the scenes of a world. The synchronous scene always
// exists, the asynchronous one is optional.
type PhysScene struct {
	scenes [sceneTypeCount]*scene.Scene
}

// NewPhysScene creates the synchronous scene, and the asynchronous one if
// withAsync is set.
func NewPhysScene(cfg scene.Config, withAsync bool) *PhysScene {
	p := &PhysScene{}
	p.scenes[SceneSync] = scene.New(cfg)
	if withAsync {
		p.scenes[SceneAsync] = scene.New(cfg)
	}
	return p
}

// Scene returns the scene of the given type, nil if absent
func (p *PhysScene) Scene(t SceneType) *scene.Scene {
	if p == nil || t >= sceneTypeCount {
		return nil
	}
	return p.scenes[t]
}

func (p *PhysScene) HasAsyncScene() bool {
	return p.Scene(SceneAsync) != nil
}

// World is the handle every query runs against
type World struct {
	PhysScene *PhysScene
	Config    *collision.Config
	Logger    log.FieldLogger
	Analyzer  *Analyzer
}

// NewWorld creates a world around a PhysScene. A nil config selects the
// default tunables.
func NewWorld(physScene *PhysScene, cfg *collision.Config) *World {
	if cfg == nil {
		cfg = collision.NewConfig()
	}
	return &World{
		PhysScene: physScene,
		Config:    cfg,
		Logger:    cfg.Logger,
		Analyzer:  NewAnalyzer(),
	}
}

// AddActor adds an actor to a scene of the world
func (w *World) AddActor(a *actor.RigidActor, t SceneType) error {
	s := w.PhysScene.Scene(t)
	if s == nil {
		return errors.Wrapf(ErrSceneUnavailable, "%s scene", t)
	}
	s.AddActor(a)
	return nil
}

// RemoveActor removes an actor from every scene
func (w *World) RemoveActor(a *actor.RigidActor) {
	for t := SceneType(0); t < sceneTypeCount; t++ {
		if s := w.PhysScene.Scene(t); s != nil {
			s.RemoveActor(a)
		}
	}
}

// Refresh updates the bounds of every scene after actors moved
func (w *World) Refresh() {
	for t := SceneType(0); t < sceneTypeCount; t++ {
		if s := w.PhysScene.Scene(t); s != nil {
			s.Refresh()
		}
	}
}

// checkScene returns ErrSceneUnavailable when no query can run
func (w *World) checkScene() error {
	if w == nil || w.PhysScene.Scene(SceneSync) == nil {
		return ErrSceneUnavailable
	}
	return nil
}

func (w *World) logger() log.FieldLogger {
	if w == nil || w.Logger == nil {
		return log.StandardLogger()
	}
	return w.Logger
}

var defaultConfig = collision.NewConfig()

func (w *World) config() *collision.Config {
	if w.Config == nil {
		return defaultConfig
	}
	return w.Config
}
