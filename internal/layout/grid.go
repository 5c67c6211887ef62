package layout

import (
	"errors"
	"fmt"
)

// ErrInvalidDimension is returned when a grid is requested with
// non-positive rows or columns.
var ErrInvalidDimension = errors.New("rows and cols must be at least 1")

// CellGeometry is one addressable rectangle on a rack image. All
// coordinates are normalized to [0,1] relative to the image size, so a
// layout is independent of the pixel dimensions it is rendered at.
// Cell ids are assigned at rack creation and never renumbered.
type CellGeometry struct {
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// InitializeGrid produces rows*cols cells in row-major order, exactly
// tiling the unit square.
func InitializeGrid(rows, cols int) ([]CellGeometry, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w (got %dx%d)", ErrInvalidDimension, rows, cols)
	}

	w := 1.0 / float64(cols)
	h := 1.0 / float64(rows)

	cells := make([]CellGeometry, rows*cols)
	for id := range cells {
		cells[id] = CellGeometry{
			ID:     id,
			X:      float64(id%cols) * w,
			Y:      float64(id/cols) * h,
			Width:  w,
			Height: h,
		}
	}
	return cells, nil
}

// MoveCell shifts the cell by (dx, dy) in normalized units. The position
// is clamped so the rectangle stays inside the unit square; a drag past a
// boundary parks the cell at that boundary instead of failing.
func MoveCell(c *CellGeometry, dx, dy float64) {
	c.X = clamp(c.X+dx, 0, 1-c.Width)
	c.Y = clamp(c.Y+dy, 0, 1-c.Height)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
