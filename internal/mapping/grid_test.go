package mapping

import (
	"math"
	"testing"
)

func mustGrid(t *testing.T, origin Point, rows, cols int, cellSize float64) *OccupancyGrid {
	t.Helper()
	g, err := NewOccupancyGrid(origin, rows, cols, cellSize)
	if err != nil {
		t.Fatalf("NewOccupancyGrid: %v", err)
	}
	return g
}

func mustModel(t *testing.T, pFree, pOcc float64) *SensorModel {
	t.Helper()
	m, err := NewSensorModel(pFree, pOcc)
	if err != nil {
		t.Fatalf("NewSensorModel: %v", err)
	}
	return m
}

func TestNewOccupancyGrid_RejectsBadConfig(t *testing.T) {
	if _, err := NewOccupancyGrid(Point{}, 0, 10, 1); err == nil {
		t.Error("expected error for zero rows")
	}
	if _, err := NewOccupancyGrid(Point{}, 10, 10, 0); err == nil {
		t.Error("expected error for zero cell size")
	}
	if _, err := NewOccupancyGrid(Point{}, 10, 10, -0.5); err == nil {
		t.Error("expected error for negative cell size")
	}
}

// probability(L=0) == 0.5 exactly for a fresh grid.
func TestProbability_UnknownCellIsExactlyHalf(t *testing.T) {
	g := mustGrid(t, Point{}, 4, 4, 1)
	p, err := g.Probability(2, 2)
	if err != nil {
		t.Fatalf("Probability: %v", err)
	}
	if p != 0.5 {
		t.Fatalf("fresh cell probability = %v, want exactly 0.5", p)
	}
}

func TestProbability_OutOfRangeIsError(t *testing.T) {
	g := mustGrid(t, Point{}, 4, 4, 1)
	if _, err := g.Probability(4, 0); err == nil {
		t.Error("expected error for row past the edge")
	}
	if _, err := g.Probability(0, -1); err == nil {
		t.Error("expected error for negative col")
	}
}

// Repeated free updates strictly decrease log-odds; repeated occupied
// updates strictly increase it; probability is monotone in log-odds.
func TestUpdate_LogOddsMonotonicity(t *testing.T) {
	g := mustGrid(t, Point{}, 1, 2, 1)
	m := mustModel(t, 0.3, 0.9)

	freeCell := []GridIndex{{Row: 0, Col: 0}, {Row: 0, Col: 1}}
	prevL, _ := g.LogOdds(0, 0)
	prevP, _ := g.Probability(0, 0)
	for i := 0; i < 5; i++ {
		g.Update(freeCell, m, true) // (0,0) is free, (0,1) occupied
		l, _ := g.LogOdds(0, 0)
		p, _ := g.Probability(0, 0)
		if l >= prevL {
			t.Fatalf("iteration %d: free log-odds %f did not decrease from %f", i, l, prevL)
		}
		if p >= prevP {
			t.Fatalf("iteration %d: free probability %f did not decrease from %f", i, p, prevP)
		}
		prevL, prevP = l, p
	}

	occL, _ := g.LogOdds(0, 1)
	if occL <= 0 {
		t.Fatalf("occupied log-odds = %f, want positive", occL)
	}
	occP, _ := g.Probability(0, 1)
	if occP <= 0.5 {
		t.Fatalf("occupied probability = %f, want > 0.5", occP)
	}
}

// Heavily observed cells must stay finite and within (0,1).
func TestProbability_StableForExtremeLogOdds(t *testing.T) {
	g := mustGrid(t, Point{}, 1, 1, 1)
	m := mustModel(t, 0.3, 0.9)
	cell := []GridIndex{{Row: 0, Col: 0}}
	for i := 0; i < 10000; i++ {
		g.Update(cell, m, true)
	}
	p, err := g.Probability(0, 0)
	if err != nil {
		t.Fatalf("Probability: %v", err)
	}
	if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 || p >= 1 {
		t.Fatalf("probability after saturation = %v, want finite in (0,1)", p)
	}
}

func TestUpdate_TerminalFreeWhenRayClamped(t *testing.T) {
	g := mustGrid(t, Point{}, 1, 3, 1)
	m := mustModel(t, 0.3, 0.9)
	cells := []GridIndex{{0, 0}, {0, 1}, {0, 2}}
	g.Update(cells, m, false)
	l, _ := g.LogOdds(0, 2)
	if l >= 0 {
		t.Fatalf("clamped terminal cell log-odds = %f, want negative", l)
	}
}

func TestUpdate_SkipsOutOfGridCells(t *testing.T) {
	g := mustGrid(t, Point{}, 2, 2, 1)
	m := mustModel(t, 0.3, 0.9)
	// must not panic
	g.Update([]GridIndex{{Row: 0, Col: 0}, {Row: 9, Col: 9}}, m, true)
	l, _ := g.LogOdds(0, 0)
	if l >= 0 {
		t.Fatalf("in-grid cell log-odds = %f, want free evidence applied", l)
	}
}

func TestGridIdx_FlatteningBijection(t *testing.T) {
	g := mustGrid(t, Point{}, 7, 5, 0.5)
	seen := make(map[int]bool)
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			idx := g.Idx(row, col)
			if idx < 0 || idx >= g.Rows*g.Cols {
				t.Fatalf("flat index %d out of range", idx)
			}
			if seen[idx] {
				t.Fatalf("flat index %d produced twice", idx)
			}
			seen[idx] = true
		}
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	g := mustGrid(t, Point{X: -2, Y: 3}, 4, 6, 0.25)
	m := mustModel(t, 0.3, 0.9)
	g.Update([]GridIndex{{0, 0}, {1, 2}, {3, 5}}, m, true)

	snap := g.Snapshot()
	restored, err := RestoreGrid(snap)
	if err != nil {
		t.Fatalf("RestoreGrid: %v", err)
	}

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			want, _ := g.LogOdds(row, col)
			got, _ := restored.LogOdds(row, col)
			if got != want {
				t.Fatalf("cell (%d,%d): restored log-odds %f != %f", row, col, got, want)
			}
		}
	}
}

func TestRestoreGrid_RejectsMismatchedCells(t *testing.T) {
	snap := GridSnapshot{CellSize: 1, Rows: 2, Cols: 2, LogOdds: []float64{1, 2, 3}}
	if _, err := RestoreGrid(snap); err == nil {
		t.Error("expected error for truncated log-odds slice")
	}
}

func TestStats_CountsClassifications(t *testing.T) {
	g := mustGrid(t, Point{}, 2, 2, 1)
	m := mustModel(t, 0.3, 0.9)
	// one strongly free cell, one strongly occupied cell, two untouched
	for i := 0; i < 10; i++ {
		g.Update([]GridIndex{{0, 0}, {0, 1}}, m, true)
	}
	s := g.Stats(0, 0)
	if s.Cells != 4 {
		t.Fatalf("cells = %d, want 4", s.Cells)
	}
	if s.Free != 1 || s.Occupied != 1 || s.Unknown != 2 {
		t.Fatalf("free/occupied/unknown = %d/%d/%d, want 1/1/2", s.Free, s.Occupied, s.Unknown)
	}
	if s.MeanProbability <= 0 || s.MeanProbability >= 1 {
		t.Fatalf("mean probability = %f", s.MeanProbability)
	}
}
