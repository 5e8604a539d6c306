package probe

import (
	"sync"
	"time"

	"github.com/akmonengine/probe/collision"
	"github.com/akmonengine/probe/filter"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/atomic"
)

// QueryType is the family of a captured query
type QueryType uint8

const (
	RaycastQuery QueryType = iota
	SweepQuery
	OverlapQuery
)

func (t QueryType) String() string {
	switch t {
	case SweepQuery:
		return "sweep"
	case OverlapQuery:
		return "overlap"
	}
	return "raycast"
}

// QueryMode is the result shape of a captured query. Overlaps have no
// single mode.
type QueryMode uint8

const (
	ModeTest QueryMode = iota
	ModeSingle
	ModeMulti
)

func (m QueryMode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeMulti:
		return "multi"
	}
	return "test"
}

// QueryEvent is the capture of one query
type QueryEvent struct {
	Type QueryType
	Mode QueryMode

	// Shape is ShapeLine for raycasts
	Shape    ShapeKind
	Dims     mgl64.Vec3
	Rotation mgl64.Quat

	Start, End mgl64.Vec3
	Channel    filter.Channel
	Tag        string

	Hits     []collision.HitResult
	Overlaps []collision.OverlapResult
	// TouchAll holds every hit of the same raycast or sweep on the
	// default channel against all object types, blocked or not
	TouchAll []collision.HitResult
	Duration time.Duration
}

// QueryListener receives the captured queries of one type
type QueryListener func(event QueryEvent)

// Analyzer captures the queries of a world while recording, and hands
// them to the listeners on Flush. Queries may be captured from several
// goroutines.
type Analyzer struct {
	recording atomic.Bool

	mu        sync.Mutex
	listeners map[QueryType][]QueryListener
	buffer    []QueryEvent
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		listeners: make(map[QueryType][]QueryListener),
		buffer:    make([]QueryEvent, 0, 256),
	}
}

// SetRecording starts or stops the capture
func (a *Analyzer) SetRecording(recording bool) {
	a.recording.Store(recording)
}

func (a *Analyzer) IsRecording() bool {
	return a != nil && a.recording.Load()
}

// Subscribe registers a listener for a query type
func (a *Analyzer) Subscribe(queryType QueryType, listener QueryListener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners[queryType] = append(a.listeners[queryType], listener)
}

// Pending returns the number of captured queries not yet flushed
func (a *Analyzer) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buffer)
}

func (a *Analyzer) capture(event QueryEvent) {
	if !a.IsRecording() {
		return
	}

	a.mu.Lock()
	a.buffer = append(a.buffer, event)
	a.mu.Unlock()
}

// Flush sends every captured query to its listeners and clears the buffer
func (a *Analyzer) Flush() {
	a.mu.Lock()
	events := a.buffer
	a.buffer = make([]QueryEvent, 0, cap(events))
	listeners := make(map[QueryType][]QueryListener, len(a.listeners))
	for t, l := range a.listeners {
		listeners[t] = l
	}
	a.mu.Unlock()

	for _, event := range events {
		for _, listener := range listeners[event.Type] {
			listener(event)
		}
	}
}

// shapeDims describes a query shape the way captures report it
func shapeDims(shape CollisionShape) mgl64.Vec3 {
	switch shape.Kind {
	case ShapeBox:
		return shape.HalfExtents
	case ShapeSphere:
		return mgl64.Vec3{shape.Radius, shape.Radius, shape.Radius}
	case ShapeCapsule:
		return mgl64.Vec3{shape.Radius, shape.Radius, shape.HalfHeight}
	case ShapeConvex:
		return shape.Scale.Scale
	}
	return mgl64.Vec3{}
}
