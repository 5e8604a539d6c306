package probe

import "github.com/akmonengine/probe/scene"

// sceneReadLocks holds the read locks a query took on the scenes of a
// world. A scene is locked at most once; release unlocks it early when its
// results are not needed, releaseAll unlocks what remains.
type sceneReadLocks struct {
	physScene *PhysScene
	locked    [sceneTypeCount]*scene.Scene
}

func newSceneReadLocks(physScene *PhysScene) *sceneReadLocks {
	return &sceneReadLocks{physScene: physScene}
}

// lockRead locks and returns the scene of type t
func (l *sceneReadLocks) lockRead(t SceneType) *scene.Scene {
	s := l.physScene.Scene(t)
	if s == nil || l.locked[t] != nil {
		return s
	}
	s.LockRead()
	l.locked[t] = s
	return s
}

func (l *sceneReadLocks) release(t SceneType) {
	if s := l.locked[t]; s != nil {
		s.UnlockRead()
		l.locked[t] = nil
	}
}

func (l *sceneReadLocks) releaseAll() {
	for t := range l.locked {
		l.release(SceneType(t))
	}
}

func (l *sceneReadLocks) isLocked(t SceneType) bool {
	return l.locked[t] != nil
}
