package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// HeightFieldHoleMaterial marks a triangle that does not exist
const HeightFieldHoleMaterial uint8 = 0x7f

// HeightFieldSample is one grid vertex. Material indices apply to the two
// triangles of the cell whose lowest corner is this sample.
type HeightFieldSample struct {
	Height         int16
	MaterialIndex0 uint8
	MaterialIndex1 uint8
	// TessFlag splits the cell along the other diagonal
	TessFlag bool
}

// HeightField is a grid of Rows x Columns samples stored row major. Rows
// run along local X, columns along local Y and heights along local Z.
type HeightField struct {
	Rows    int
	Columns int
	Samples []HeightFieldSample
}

// NewHeightField creates a flat field with all samples at height 0
func NewHeightField(rows, columns int) *HeightField {
	return &HeightField{Rows: rows, Columns: columns, Samples: make([]HeightFieldSample, rows*columns)}
}

func (h *HeightField) Sample(row, column int) HeightFieldSample {
	return h.Samples[row*h.Columns+column]
}

func (h *HeightField) SetHeight(row, column int, height int16) {
	h.Samples[row*h.Columns+column].Height = height
}

func (h *HeightField) NbTriangles() int {
	if h.Rows < 2 || h.Columns < 2 {
		return 0
	}
	return 2 * (h.Rows - 1) * (h.Columns - 1)
}

// TriangleCell returns the cell holding a triangle and whether it is the
// second triangle of that cell.
func (h *HeightField) TriangleCell(index uint32) (row, column int, second bool) {
	cell := int(index) / 2
	return cell / (h.Columns - 1), cell % (h.Columns - 1), index%2 == 1
}

// TriangleIndex returns the index of a cell triangle
func (h *HeightField) TriangleIndex(row, column int, second bool) uint32 {
	index := uint32(2 * (row*(h.Columns-1) + column))
	if second {
		index++
	}
	return index
}

// TriangleMaterial returns the material index of a triangle
func (h *HeightField) TriangleMaterial(index uint32) uint8 {
	row, column, second := h.TriangleCell(index)
	s := h.Sample(row, column)
	if second {
		return s.MaterialIndex1
	}
	return s.MaterialIndex0
}

// IsHole reports whether a triangle is a hole
func (h *HeightField) IsHole(index uint32) bool {
	return h.TriangleMaterial(index) == HeightFieldHoleMaterial
}

// HeightFieldGeometry instances a height field with scales
type HeightFieldGeometry struct {
	Field       *HeightField
	HeightScale float64
	RowScale    float64
	ColumnScale float64
}

func (HeightFieldGeometry) Type() GeometryType { return GeometryTypeHeightField }

func (g HeightFieldGeometry) LocalBounds() AABB {
	if g.Field == nil || len(g.Field.Samples) == 0 {
		return AABB{}
	}
	minH, maxH := math.MaxFloat64, -math.MaxFloat64
	for _, s := range g.Field.Samples {
		h := float64(s.Height) * g.HeightScale
		minH = math.Min(minH, h)
		maxH = math.Max(maxH, h)
	}
	return AABBFromPoints(
		mgl64.Vec3{0, 0, minH},
		mgl64.Vec3{float64(g.Field.Rows-1) * g.RowScale, float64(g.Field.Columns-1) * g.ColumnScale, maxH},
	)
}

func (g HeightFieldGeometry) NbTriangles() int {
	if g.Field == nil {
		return 0
	}
	return g.Field.NbTriangles()
}

// Vertex returns a sample position in shape space
func (g HeightFieldGeometry) Vertex(row, column int) mgl64.Vec3 {
	return mgl64.Vec3{
		float64(row) * g.RowScale,
		float64(column) * g.ColumnScale,
		float64(g.Field.Sample(row, column).Height) * g.HeightScale,
	}
}

// Triangle returns a triangle in shape space, wound so its normal faces +Z
func (g HeightFieldGeometry) Triangle(index uint32) [3]mgl64.Vec3 {
	row, column, second := g.Field.TriangleCell(index)
	v00 := g.Vertex(row, column)
	v10 := g.Vertex(row+1, column)
	v01 := g.Vertex(row, column+1)
	v11 := g.Vertex(row+1, column+1)

	if g.Field.Sample(row, column).TessFlag {
		if second {
			return [3]mgl64.Vec3{v10, v11, v01}
		}
		return [3]mgl64.Vec3{v00, v10, v01}
	}
	if second {
		return [3]mgl64.Vec3{v00, v11, v01}
	}
	return [3]mgl64.Vec3{v00, v10, v11}
}

// CellRange returns the inclusive cell range covering a shape space box,
// false when the box misses the field.
func (g HeightFieldGeometry) CellRange(box AABB) (minRow, maxRow, minColumn, maxColumn int, ok bool) {
	if g.Field == nil || g.Field.Rows < 2 || g.Field.Columns < 2 || g.RowScale == 0 || g.ColumnScale == 0 {
		return 0, 0, 0, 0, false
	}
	r0, r1 := box.Min.X()/g.RowScale, box.Max.X()/g.RowScale
	if r0 > r1 {
		r0, r1 = r1, r0
	}
	c0, c1 := box.Min.Y()/g.ColumnScale, box.Max.Y()/g.ColumnScale
	if c0 > c1 {
		c0, c1 = c1, c0
	}
	minRow, maxRow = int(math.Floor(r0)), int(math.Floor(r1))
	minColumn, maxColumn = int(math.Floor(c0)), int(math.Floor(c1))

	minRow = max(minRow, 0)
	minColumn = max(minColumn, 0)
	maxRow = min(maxRow, g.Field.Rows-2)
	maxColumn = min(maxColumn, g.Field.Columns-2)
	if minRow > maxRow || minColumn > maxColumn {
		return 0, 0, 0, 0, false
	}
	return minRow, maxRow, minColumn, maxColumn, true
}
