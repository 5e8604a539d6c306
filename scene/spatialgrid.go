package scene

import (
	"math"
	"sort"

	"github.com/akmonengine/probe/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// maxInsertCells is the number of cells above which a shape is kept in
	// the oversized list instead of the grid.
	maxInsertCells = 512
	// maxQueryCells is the number of cells above which a query scans every
	// shape instead of walking the grid.
	maxQueryCells = 4096
)

// CellKey is the integer coordinate of a grid cell
type CellKey struct {
	X, Y, Z int
}

// Cell holds the indices of the shapes overlapping it
type Cell struct {
	shapeIndices []int
}

// SpatialGrid is a uniform hashed grid culling shapes by their world bounds
type SpatialGrid struct {
	cellSize  float64
	cells     []Cell
	cellMask  int
	oversized []int
	count     int
}

// NewSpatialGrid creates a grid with numCells buckets, rounded up to a power of two.
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].shapeIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Insert adds a shape index to every cell its bounds cover
func (sg *SpatialGrid) Insert(shapeIndex int, bounds actor.AABB) {
	sg.count = max(sg.count, shapeIndex+1)

	if sg.cellCount(bounds) > maxInsertCells {
		sg.oversized = append(sg.oversized, shapeIndex)
		return
	}

	minCell := sg.worldToCell(bounds.Min)
	maxCell := sg.worldToCell(bounds.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})
				sg.cells[cellIdx].shapeIndices = append(sg.cells[cellIdx].shapeIndices, shapeIndex)
			}
		}
	}
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].shapeIndices = sg.cells[i].shapeIndices[:0]
	}
	sg.oversized = sg.oversized[:0]
	sg.count = 0
}

// Query returns, in ascending order and without duplicates, the indices of
// the shapes that may overlap box. Hash collisions make it conservative.
func (sg *SpatialGrid) Query(box actor.AABB) []int {
	if sg.cellCount(box) > maxQueryCells {
		all := make([]int, sg.count)
		for i := range all {
			all[i] = i
		}
		return all
	}

	seen := make([]bool, sg.count)
	result := make([]int, 0, 16)
	add := func(idx int) {
		if !seen[idx] {
			seen[idx] = true
			result = append(result, idx)
		}
	}

	for _, idx := range sg.oversized {
		add(idx)
	}

	minCell := sg.worldToCell(box.Min)
	maxCell := sg.worldToCell(box.Max)
	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				for _, idx := range sg.cells[sg.hashCell(CellKey{x, y, z})].shapeIndices {
					add(idx)
				}
			}
		}
	}

	sort.Ints(result)
	return result
}

// cellCount returns the number of cells covered by box, computed in
// floating point so huge or infinite boxes do not overflow.
func (sg *SpatialGrid) cellCount(box actor.AABB) float64 {
	count := 1.0
	for i := 0; i < 3; i++ {
		span := math.Floor(box.Max[i]/sg.cellSize) - math.Floor(box.Min[i]/sg.cellSize) + 1
		if math.IsNaN(span) || math.IsInf(span, 0) {
			return math.Inf(1)
		}
		count *= span
	}
	return count
}

func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
