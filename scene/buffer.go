package scene

// InlineHitCapacity is the number of hits a buffer stores before growing
const InlineHitCapacity = 32

// HitBuffer receives the hits of one or more queries. A single buffer keeps
// only the blocking hit. A dynamic buffer also keeps the touches, and on
// completion of each query appends that query's block after them, so that
// successive queries accumulate into Hits.
type HitBuffer[T Hit] struct {
	// Block is the blocking hit of the last query, valid if HasBlock
	Block    T
	HasBlock bool

	dynamic    bool
	hits       []T
	inline     [InlineHitCapacity]T
	queryStart int
}

// NewSingleBuffer returns a buffer keeping only the closest blocking hit
func NewSingleBuffer[T Hit]() *HitBuffer[T] {
	return &HitBuffer[T]{}
}

// NewDynamicBuffer returns a buffer keeping touches and blocks
func NewDynamicBuffer[T Hit]() *HitBuffer[T] {
	b := &HitBuffer[T]{dynamic: true}
	b.hits = b.inline[:0]
	return b
}

// Hits returns the accumulated hits of a dynamic buffer
func (b *HitBuffer[T]) Hits() []T {
	return b.hits
}

func (b *HitBuffer[T]) NbHits() int {
	return len(b.hits)
}

// IsDynamic reports whether the buffer keeps touches
func (b *HitBuffer[T]) IsDynamic() bool {
	return b.dynamic
}

// Reset empties the buffer, keeping its storage
func (b *HitBuffer[T]) Reset() {
	var zero T
	b.Block = zero
	b.HasBlock = false
	b.hits = b.hits[:0]
	b.queryStart = 0
}

func (b *HitBuffer[T]) begin() {
	var zero T
	b.Block = zero
	b.HasBlock = false
	b.queryStart = len(b.hits)
}

// accept records a hit of the given verdict and reports whether the
// query must stop
func (b *HitBuffer[T]) accept(hit T, hitType QueryHitType, anyHit bool) bool {
	if anyHit {
		b.Block = hit
		b.HasBlock = true
		return true
	}

	switch hitType {
	case QueryHitBlock:
		if !b.HasBlock || hit.HitDistance() < b.Block.HitDistance() {
			b.Block = hit
			b.HasBlock = true
		}
	case QueryHitTouch:
		if b.dynamic {
			b.hits = append(b.hits, hit)
		}
	}
	return false
}

// finalize drops this query's touches beyond its block, then stores the block
func (b *HitBuffer[T]) finalize() {
	if !b.dynamic {
		return
	}

	if b.HasBlock {
		blockDistance := b.Block.HitDistance()
		kept := b.hits[:b.queryStart]
		for _, h := range b.hits[b.queryStart:] {
			if h.HitDistance() <= blockDistance {
				kept = append(kept, h)
			}
		}
		b.hits = append(kept, b.Block)
	}
	b.queryStart = len(b.hits)
}
