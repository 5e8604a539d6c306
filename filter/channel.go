// Package filter encodes collision channels and responses into the four
// word filter records carried by queries and shapes, and decides the
// block, touch or ignore verdict of every query candidate.
package filter

import "fmt"

// Channel classifies what kind of thing a shape or a query represents
type Channel uint8

const (
	WorldStatic Channel = iota
	WorldDynamic
	Pawn
	Visibility
	Camera
	PhysicsBody
	Vehicle
	Destructible

	EngineTraceChannel1
	EngineTraceChannel2
	EngineTraceChannel3
	EngineTraceChannel4
	EngineTraceChannel5
	EngineTraceChannel6

	GameTraceChannel1
	GameTraceChannel2
	GameTraceChannel3
	GameTraceChannel4
	GameTraceChannel5
	GameTraceChannel6
	GameTraceChannel7
	GameTraceChannel8
	GameTraceChannel9
	GameTraceChannel10
	GameTraceChannel11
	GameTraceChannel12
	GameTraceChannel13
	GameTraceChannel14
	GameTraceChannel15
	GameTraceChannel16
	GameTraceChannel17

	// OverlapAll touches every shape whatever its responses
	OverlapAll

	MaxChannels = 32
)

var channelNames = [...]string{
	WorldStatic:  "WorldStatic",
	WorldDynamic: "WorldDynamic",
	Pawn:         "Pawn",
	Visibility:   "Visibility",
	Camera:       "Camera",
	PhysicsBody:  "PhysicsBody",
	Vehicle:      "Vehicle",
	Destructible: "Destructible",
}

func (c Channel) String() string {
	switch {
	case int(c) < len(channelNames):
		return channelNames[c]
	case c >= EngineTraceChannel1 && c <= EngineTraceChannel6:
		return fmt.Sprintf("EngineTraceChannel%d", c-EngineTraceChannel1+1)
	case c >= GameTraceChannel1 && c <= GameTraceChannel17:
		return fmt.Sprintf("GameTraceChannel%d", c-GameTraceChannel1+1)
	case c == OverlapAll:
		return "OverlapAll"
	}
	return fmt.Sprintf("Channel(%d)", uint8(c))
}

// Bit returns the channel bit in a block, touch or object type mask
func (c Channel) Bit() uint32 {
	return 1 << uint32(c)
}

// Response is how a participant reacts to a channel
type Response uint8

const (
	Ignore Response = iota
	Overlap
	Block
)

func (r Response) String() string {
	switch r {
	case Overlap:
		return "overlap"
	case Block:
		return "block"
	}
	return "ignore"
}

// ResponseContainer holds one response per channel
type ResponseContainer [MaxChannels]Response

// NewResponseContainer returns a container answering r on every channel
func NewResponseContainer(r Response) ResponseContainer {
	var c ResponseContainer
	c.SetAll(r)
	return c
}

func (c *ResponseContainer) SetAll(r Response) {
	for i := range c {
		c[i] = r
	}
}

// Set changes the response to one channel, out of range channels are ignored
func (c *ResponseContainer) Set(channel Channel, r Response) {
	if int(channel) < MaxChannels {
		c[channel] = r
	}
}

func (c ResponseContainer) Get(channel Channel) Response {
	if int(channel) >= MaxChannels {
		return Ignore
	}
	return c[channel]
}

// Masks returns the block and touch channel bitmasks
func (c ResponseContainer) Masks() (block, touch uint32) {
	for i, r := range c {
		switch r {
		case Block:
			block |= Channel(i).Bit()
		case Overlap:
			touch |= Channel(i).Bit()
		}
	}
	return block, touch
}

// ParseChannel returns the channel named s
func ParseChannel(s string) (Channel, bool) {
	for c := Channel(0); c < MaxChannels; c++ {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}
