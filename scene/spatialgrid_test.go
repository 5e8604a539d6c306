package scene

import (
	"math"
	"testing"

	"github.com/akmonengine/probe/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func TestWorldToCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)

	tests := []struct {
		name     string
		position mgl64.Vec3
		expected CellKey
	}{
		{"origin", mgl64.Vec3{0, 0, 0}, CellKey{0, 0, 0}},
		{"positive", mgl64.Vec3{1.5, 2.3, 3.7}, CellKey{1, 2, 3}},
		{"negative", mgl64.Vec3{-1.5, -2.3, -3.7}, CellKey{-2, -3, -4}},
		{"fractional", mgl64.Vec3{0.5, 0.5, 0.5}, CellKey{0, 0, 0}},
		{"large", mgl64.Vec3{100.7, -200.3, 50.1}, CellKey{100, -201, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := grid.worldToCell(tt.position)
			if result != tt.expected {
				t.Errorf("worldToCell(%v) = %v, want %v", tt.position, result, tt.expected)
			}
		})
	}
}

func TestHashCellInRange(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)

	keys := []CellKey{{0, 0, 0}, {1, 2, 3}, {-1, -2, -3}, {100, 200, 300}, {-1000, 5, 77}}
	for _, key := range keys {
		if h := grid.hashCell(key); h < 0 || h >= len(grid.cells) {
			t.Errorf("hashCell(%v) = %d, out of range [0, %d)", key, h, len(grid.cells))
		}
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct{ in, want int }{{0, 1}, {1, 1}, {3, 4}, {16, 16}, {17, 32}}
	for _, tt := range tests {
		if got := nextPowerOfTwo(tt.in); got != tt.want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func box(center mgl64.Vec3, half float64) actor.AABB {
	e := mgl64.Vec3{half, half, half}
	return actor.AABB{Min: center.Sub(e), Max: center.Add(e)}
}

func TestSpatialGridQuery(t *testing.T) {
	grid := NewSpatialGrid(1.0, 64)
	grid.Insert(0, box(mgl64.Vec3{0, 0, 0}, 0.5))
	grid.Insert(1, box(mgl64.Vec3{10, 0, 0}, 0.5))
	grid.Insert(2, box(mgl64.Vec3{0.5, 0, 0}, 2))

	t.Run("near origin", func(t *testing.T) {
		got := grid.Query(box(mgl64.Vec3{0, 0, 0}, 0.1))
		if !containsIndex(got, 0) || !containsIndex(got, 2) {
			t.Errorf("expected shapes 0 and 2, got %v", got)
		}
		for i := 1; i < len(got); i++ {
			if got[i-1] >= got[i] {
				t.Errorf("expected sorted unique indices, got %v", got)
			}
		}
	})

	t.Run("far", func(t *testing.T) {
		got := grid.Query(box(mgl64.Vec3{10, 0, 0}, 0.1))
		if !containsIndex(got, 1) {
			t.Errorf("expected shape 1, got %v", got)
		}
	})

	t.Run("huge query scans everything", func(t *testing.T) {
		got := grid.Query(actor.AABB{
			Min: mgl64.Vec3{-math.MaxFloat64, -1, -1},
			Max: mgl64.Vec3{math.MaxFloat64, 1, 1},
		})
		if len(got) != 3 {
			t.Errorf("expected every shape, got %v", got)
		}
	})

	t.Run("clear", func(t *testing.T) {
		g := NewSpatialGrid(1.0, 16)
		g.Insert(0, box(mgl64.Vec3{}, 0.5))
		g.Clear()
		if got := g.Query(box(mgl64.Vec3{}, 0.5)); len(got) != 0 {
			t.Errorf("expected empty grid, got %v", got)
		}
	})
}

func TestSpatialGridOversized(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	grid.Insert(0, box(mgl64.Vec3{0, 0, 0}, 1000))

	if len(grid.oversized) != 1 {
		t.Fatalf("expected the large shape in the oversized list, got %v", grid.oversized)
	}

	got := grid.Query(box(mgl64.Vec3{500, 500, 500}, 0.1))
	if !containsIndex(got, 0) {
		t.Errorf("expected oversized shape to be returned, got %v", got)
	}
}

func containsIndex(indices []int, idx int) bool {
	for _, i := range indices {
		if i == idx {
			return true
		}
	}
	return false
}
