package mapping

import "fmt"

// ObstacleMap is the ground-truth environment used for simulated sensing: a
// dense boolean grid where true means the cell contains an obstacle. It is a
// deliberately distinct type from OccupancyGrid — one is what the world is,
// the other is what the agent believes — so the two can never be confused
// for each other in ray math.
type ObstacleMap struct {
	Rows int
	Cols int

	cells []bool // len = Rows * Cols, row-major
}

// NewObstacleMap creates an all-free obstacle map with the given dimensions.
func NewObstacleMap(rows, cols int) (*ObstacleMap, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("obstacle map dimensions must be positive, got %dx%d", rows, cols)
	}
	return &ObstacleMap{
		Rows:  rows,
		Cols:  cols,
		cells: make([]bool, rows*cols),
	}, nil
}

// Idx flattens a (row, col) pair: idx = row*Cols + col.
func (m *ObstacleMap) Idx(row, col int) int { return row*m.Cols + col }

// SetOccupied marks a cell as containing an obstacle. Out-of-range indices
// are ignored; obstacle geometry may extend past the map edge.
func (m *ObstacleMap) SetOccupied(row, col int) {
	if row < 0 || row >= m.Rows || col < 0 || col >= m.Cols {
		return
	}
	m.cells[m.Idx(row, col)] = true
}

// Occupied reports whether the cell contains an obstacle. Out-of-range
// indices are free.
func (m *ObstacleMap) Occupied(row, col int) bool {
	if row < 0 || row >= m.Rows || col < 0 || col >= m.Cols {
		return false
	}
	return m.cells[m.Idx(row, col)]
}

// OccupiedCount returns the number of obstacle cells in the map.
func (m *ObstacleMap) OccupiedCount() int {
	n := 0
	for _, c := range m.cells {
		if c {
			n++
		}
	}
	return n
}

// ResolveCollision truncates a traversed cell sequence at the first cell the
// obstacle map marks occupied, modelling a sensor ray physically stopping at
// the first obstacle even when the nominal range implied a longer ray. The
// returned sequence runs from the first cell up to and including the
// resolved terminal cell; when no cell along the ray is occupied (or when
// obstacles is nil), the input sequence is returned unchanged.
func ResolveCollision(cells []GridIndex, obstacles *ObstacleMap) []GridIndex {
	if obstacles == nil {
		return cells
	}
	for i, c := range cells {
		if obstacles.Occupied(c.Row, c.Col) {
			return cells[:i+1]
		}
	}
	return cells
}
