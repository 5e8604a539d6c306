package collision

import (
	"github.com/akmonengine/probe/filter"
	"github.com/go-gl/mathgl/mgl64"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

const (
	// DefaultOverlapDedupThreshold is the overlap count from which
	// deduplication switches from a linear scan to a map
	DefaultOverlapDedupThreshold = 3

	DefaultSmallInflation      = 0.01
	DefaultLargeInflation      = 0.1
	DefaultJitterDistance      = 0.1
	DefaultMaxJitterAttempts   = 7
	DefaultMaxOverlapTriangles = 64
)

// JitterAxis is a direction the depenetration of convex hulls retries from
type JitterAxis uint8

const (
	// JitterForward and JitterBackward follow the trace direction
	JitterForward JitterAxis = iota
	JitterBackward
	JitterNegZ
	JitterPosZ
	JitterNegX
	JitterPosX
	JitterNegY
	JitterPosY
)

// DefaultJitterOrder tries below first, shapes usually resting on the ground
var DefaultJitterOrder = []JitterAxis{
	JitterForward, JitterBackward,
	JitterNegZ, JitterPosZ,
	JitterNegX, JitterPosX,
	JitterNegY, JitterPosY,
}

func (a JitterAxis) offset(direction mgl64.Vec3) mgl64.Vec3 {
	switch a {
	case JitterForward:
		return direction
	case JitterBackward:
		return direction.Mul(-1)
	case JitterNegZ:
		return mgl64.Vec3{0, 0, -1}
	case JitterPosZ:
		return mgl64.Vec3{0, 0, 1}
	case JitterNegX:
		return mgl64.Vec3{-1, 0, 0}
	case JitterPosX:
		return mgl64.Vec3{1, 0, 0}
	case JitterNegY:
		return mgl64.Vec3{0, -1, 0}
	}
	return mgl64.Vec3{0, 1, 0}
}

// MTDConfig tunes the depenetration of hits starting in overlap
type MTDConfig struct {
	SmallInflation      float64
	LargeInflation      float64
	JitterDistance      float64
	MaxJitterAttempts   int
	JitterOrder         []JitterAxis
	MaxOverlapTriangles int
}

func DefaultMTDConfig() MTDConfig {
	return MTDConfig{
		SmallInflation:      DefaultSmallInflation,
		LargeInflation:      DefaultLargeInflation,
		JitterDistance:      DefaultJitterDistance,
		MaxJitterAttempts:   DefaultMaxJitterAttempts,
		JitterOrder:         DefaultJitterOrder,
		MaxOverlapTriangles: DefaultMaxOverlapTriangles,
	}
}

// Config is shared by every conversion of a world. The overlap threshold
// may be changed while queries run.
type Config struct {
	// DefaultChannel is the channel of the touch all traces recorded
	// next to analyzed queries
	DefaultChannel filter.Channel
	MTD            MTDConfig
	Logger         log.FieldLogger

	overlapDedupThreshold atomic.Int32
}

// NewConfig returns a configuration with the default tunables
func NewConfig() *Config {
	c := &Config{
		DefaultChannel: filter.WorldStatic,
		MTD:            DefaultMTDConfig(),
		Logger:         log.StandardLogger(),
	}
	c.overlapDedupThreshold.Store(DefaultOverlapDedupThreshold)
	return c
}

func (c *Config) OverlapDedupThreshold() int {
	return int(c.overlapDedupThreshold.Load())
}

func (c *Config) SetOverlapDedupThreshold(n int) {
	c.overlapDedupThreshold.Store(int32(max(0, n)))
}

func (c *Config) logger() log.FieldLogger {
	if c == nil || c.Logger == nil {
		return log.StandardLogger()
	}
	return c.Logger
}
