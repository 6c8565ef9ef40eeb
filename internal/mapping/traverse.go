package mapping

import (
	"fmt"
	"math"
)

// TraverseCells enumerates the grid cells a straight ray passes through
// between two cells, start through end inclusive, using unit-step integer
// midpoint stepping. The returned sequence is connected (consecutive cells
// differ by at most one in each of row and col), contains exactly one cell
// per major-axis step, and preserves start→end order.
func TraverseCells(start, end GridIndex) []GridIndex {
	// Transpose so the major axis (the larger span) is always iterated as
	// the first coordinate; remember the swap to un-transpose on output.
	sMaj, sMin := start.Col, start.Row
	eMaj, eMin := end.Col, end.Row
	swapped := false
	if absInt(end.Row-start.Row) > absInt(end.Col-start.Col) {
		sMaj, sMin = start.Row, start.Col
		eMaj, eMin = end.Row, end.Col
		swapped = true
	}

	// Iterate with increasing major coordinate; restore original order later.
	reversed := false
	if sMaj > eMaj {
		sMaj, eMaj = eMaj, sMaj
		sMin, eMin = eMin, sMin
		reversed = true
	}

	dMaj := eMaj - sMaj
	dMin := eMin - sMin
	step := 1
	if dMin < 0 {
		step = -1
		dMin = -dMin
	}

	cells := make([]GridIndex, 0, dMaj+1)
	minor := sMin
	e := 0
	for maj := sMaj; maj <= eMaj; maj++ {
		if swapped {
			cells = append(cells, GridIndex{Row: maj, Col: minor})
		} else {
			cells = append(cells, GridIndex{Row: minor, Col: maj})
		}
		// Integer midpoint recurrence: step the minor axis when the
		// accumulated error crosses half a cell.
		if 2*(e+dMin) < dMaj {
			e += dMin
		} else {
			minor += step
			e += dMin - dMaj
		}
	}

	if reversed {
		for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
			cells[i], cells[j] = cells[j], cells[i]
		}
	}
	return cells
}

// TraverseScaled samples a ray between two world points at a fixed step
// along whichever axis has the larger span, reconstructing the other
// coordinate with the same accumulated-error recurrence as TraverseCells but
// parameterised by the continuous slope and step scale. The result always
// includes the exact start and end points, with intermediate samples spaced
// no more than step apart along the dominant axis. Used when the probing
// resolution differs from the mapping-grid cell size.
func TraverseScaled(start, end Point, step float64) ([]Point, error) {
	if math.IsNaN(step) || step <= 0 {
		return nil, fmt.Errorf("traversal step must be positive, got %f", step)
	}
	dx := end.X - start.X
	dy := end.Y - start.Y
	if dx == 0 && dy == 0 {
		return []Point{start}, nil
	}

	// Single parametric walk: pick the dominant axis and carry the sign in a
	// multiplier rather than branching per slope octant.
	maj0, min0 := start.X, start.Y
	aMaj, aMin := math.Abs(dx), math.Abs(dy)
	majSign, minSign := math.Copysign(1, dx), math.Copysign(1, dy)
	swapped := false
	if math.Abs(dy) > math.Abs(dx) {
		maj0, min0 = start.Y, start.X
		aMaj, aMin = math.Abs(dy), math.Abs(dx)
		majSign, minSign = math.Copysign(1, dy), math.Copysign(1, dx)
		swapped = true
	}

	n := int(aMaj / step)
	pts := make([]Point, 0, n+2)
	minor := min0
	e := 0.0
	for i := 0; i <= n; i++ {
		maj := maj0 + float64(i)*step*majSign
		if swapped {
			pts = append(pts, Point{X: minor, Y: maj})
		} else {
			pts = append(pts, Point{X: maj, Y: minor})
		}
		if 2*(e+aMin*step) < aMaj*step {
			e += aMin * step
		} else {
			minor += minSign * step
			e += aMin*step - aMaj*step
		}
	}

	// The exact end value is included even when it is not a whole number of
	// steps from the start.
	last := pts[len(pts)-1]
	if math.Abs(last.X-end.X) > 1e-9 || math.Abs(last.Y-end.Y) > 1e-9 {
		pts = append(pts, end)
	}
	return pts, nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
