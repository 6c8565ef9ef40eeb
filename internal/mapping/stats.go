package mapping

import "gonum.org/v1/gonum/stat"

// Default probability thresholds for classifying a cell when summarising the
// grid. Cells between the two are reported as unknown.
const (
	DefaultFreeThreshold     = 0.35
	DefaultOccupiedThreshold = 0.65
)

// GridStats is a telemetry snapshot of grid-level statistics, useful for
// progress logging and report summaries.
type GridStats struct {
	Cells    int
	Free     int // probability below the free threshold
	Occupied int // probability above the occupied threshold
	Unknown  int

	MeanProbability   float64
	StdDevProbability float64
}

// Stats summarises the grid using the given classification thresholds.
// Passing zeros selects the package defaults.
func (g *OccupancyGrid) Stats(freeThreshold, occupiedThreshold float64) GridStats {
	if freeThreshold <= 0 {
		freeThreshold = DefaultFreeThreshold
	}
	if occupiedThreshold <= 0 {
		occupiedThreshold = DefaultOccupiedThreshold
	}

	probs := g.Probabilities()
	s := GridStats{Cells: len(probs)}
	for _, p := range probs {
		switch {
		case p < freeThreshold:
			s.Free++
		case p > occupiedThreshold:
			s.Occupied++
		default:
			s.Unknown++
		}
	}
	s.MeanProbability, s.StdDevProbability = stat.MeanStdDev(probs, nil)
	return s
}
