package mapping

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// logOddsClamp bounds stored log-odds before exponentiation so Probability
// never overflows for heavily-observed cells.
const logOddsClamp = 50.0

// OccupancyGrid is the accumulated belief map: one log-odds value per cell,
// initialised to 0 (unknown, 50% probability). The grid is created once per
// mapping session with fixed dimensions and mutated only through Update;
// renderers and persistence read it concurrently through the accessors.
type OccupancyGrid struct {
	CellSize float64 // world units per cell, > 0
	Origin   Point   // world-space position of cell (0,0)
	Rows     int
	Cols     int

	// mu guards logOdds and updatedAt. Rays may touch overlapping cells, so
	// read-modify-write of log-odds must be serialised.
	mu        sync.RWMutex
	logOdds   []float64 // len = Rows * Cols, row-major
	updatedAt time.Time
}

// NewOccupancyGrid creates an all-unknown grid. Non-positive dimensions or
// cell size are configuration errors and refuse construction.
func NewOccupancyGrid(origin Point, rows, cols int, cellSize float64) (*OccupancyGrid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", rows, cols)
	}
	if math.IsNaN(cellSize) || cellSize <= 0 {
		return nil, fmt.Errorf("grid cell size must be positive, got %f", cellSize)
	}
	return &OccupancyGrid{
		CellSize: cellSize,
		Origin:   origin,
		Rows:     rows,
		Cols:     cols,
		logOdds:  make([]float64, rows*cols),
	}, nil
}

// Idx flattens a (row, col) pair: idx = row*Cols + col. The flattening is a
// bijection over the valid row/col range.
func (g *OccupancyGrid) Idx(row, col int) int { return row*g.Cols + col }

// InBounds reports whether the index addresses an allocated cell.
func (g *OccupancyGrid) InBounds(idx GridIndex) bool {
	return idx.Row >= 0 && idx.Row < g.Rows && idx.Col >= 0 && idx.Col < g.Cols
}

// WorldToGrid converts a world point to this grid's cell index. The result
// may be out of bounds; callers decide whether to clamp or skip.
func (g *OccupancyGrid) WorldToGrid(p Point) GridIndex {
	return WorldToGrid(p, g.Origin, g.CellSize)
}

// GridToWorld returns the world-space centre of a cell.
func (g *OccupancyGrid) GridToWorld(idx GridIndex) Point {
	return GridToWorld(idx, g.Origin, g.CellSize)
}

// Update folds one resolved ray into the grid: every cell in the sequence
// except the last is classified free; the last cell is classified occupied
// only when terminalOccupied is set (a sensor return or simulated collision
// terminated the ray there, rather than the ray being clamped at the grid
// edge). Each increment is applied exactly once per ray. Cells outside the
// grid are a caller bug and are skipped rather than wrapped.
func (g *OccupancyGrid) Update(cells []GridIndex, model *SensorModel, terminalOccupied bool) {
	if len(cells) == 0 || model == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, c := range cells {
		if !g.InBounds(c) {
			continue
		}
		occupied := terminalOccupied && i == len(cells)-1
		g.logOdds[g.Idx(c.Row, c.Col)] += model.LogOddsIncrement(occupied)
	}
	g.updatedAt = time.Now()
}

// LogOdds returns the raw accumulated log-odds for a cell, for persistence
// and testing.
func (g *OccupancyGrid) LogOdds(row, col int) (float64, error) {
	if !g.InBounds(GridIndex{Row: row, Col: col}) {
		return 0, fmt.Errorf("cell (%d,%d) outside %dx%d grid", row, col, g.Rows, g.Cols)
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.logOdds[g.Idx(row, col)], nil
}

// Probability returns the cell's occupancy belief in (0,1): the logistic
// transform 1 - 1/(e^L + 1) of the stored log-odds, clamped to ±logOddsClamp
// before exponentiation for numerical stability. A never-observed cell is
// exactly 0.5.
func (g *OccupancyGrid) Probability(row, col int) (float64, error) {
	l, err := g.LogOdds(row, col)
	if err != nil {
		return 0, err
	}
	return logistic(l), nil
}

// Probabilities returns a dense row-major copy of every cell's occupancy
// probability, for renderers that redraw the whole grid per step.
func (g *OccupancyGrid) Probabilities() []float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]float64, len(g.logOdds))
	for i, l := range g.logOdds {
		out[i] = logistic(l)
	}
	return out
}

// UpdatedAt returns the time of the last Update, zero if never updated.
func (g *OccupancyGrid) UpdatedAt() time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.updatedAt
}

func logistic(l float64) float64 {
	if l > logOddsClamp {
		l = logOddsClamp
	} else if l < -logOddsClamp {
		l = -logOddsClamp
	}
	return 1 - 1/(math.Exp(l)+1)
}

// GridSnapshot is the exported, serialisable form of an OccupancyGrid used
// by the persistence layer.
type GridSnapshot struct {
	CellSize   float64
	Origin     Point
	Rows       int
	Cols       int
	LogOdds    []float64
	CapturedAt time.Time
}

// Snapshot copies the grid state under the read lock so persistence never
// races with ray updates.
func (g *OccupancyGrid) Snapshot() GridSnapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	lo := make([]float64, len(g.logOdds))
	copy(lo, g.logOdds)
	return GridSnapshot{
		CellSize:   g.CellSize,
		Origin:     g.Origin,
		Rows:       g.Rows,
		Cols:       g.Cols,
		LogOdds:    lo,
		CapturedAt: time.Now(),
	}
}

// RestoreGrid reconstructs a grid from a snapshot, validating dimensions the
// same way NewOccupancyGrid does.
func RestoreGrid(snap GridSnapshot) (*OccupancyGrid, error) {
	g, err := NewOccupancyGrid(snap.Origin, snap.Rows, snap.Cols, snap.CellSize)
	if err != nil {
		return nil, err
	}
	if len(snap.LogOdds) != snap.Rows*snap.Cols {
		return nil, fmt.Errorf("snapshot has %d cells, want %d", len(snap.LogOdds), snap.Rows*snap.Cols)
	}
	copy(g.logOdds, snap.LogOdds)
	return g, nil
}
