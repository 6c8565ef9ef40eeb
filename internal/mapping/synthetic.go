package mapping

import (
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangular obstacle in world units, addressed by
// its centre. Used to compose synthetic environments for simulation runs.
type Rect struct {
	X      float64 // centre
	Y      float64 // centre
	Width  float64
	Height float64
}

// Stamp marks every obstacle-map cell covered by the rectangle as occupied.
// Parts of the rectangle outside the map are ignored.
func (m *ObstacleMap) Stamp(r Rect, origin Point, cellSize float64) {
	minIdx := WorldToGrid(Point{X: r.X - r.Width/2, Y: r.Y - r.Height/2}, origin, cellSize)
	maxIdx := WorldToGrid(Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}, origin, cellSize)
	for row := minIdx.Row; row <= maxIdx.Row; row++ {
		for col := minIdx.Col; col <= maxIdx.Col; col++ {
			m.SetOccupied(row, col)
		}
	}
}

// ScanGenerator produces ground-truth sensor sweeps against an obstacle map
// by ray-casting: each beam is traversed until it hits an obstacle, and the
// reported range is the distance to the hit (or NaN for beams that leave the
// map without hitting anything, matching how a real sensor reports no
// return).
type ScanGenerator struct {
	Obstacles *ObstacleMap
	Origin    Point   // world position of obstacle-map cell (0,0)
	CellSize  float64 // obstacle-map resolution
	MaxRange  float64 // sensor reach in world units
	Beams     int     // samples per sweep, spread evenly over 2π
}

// NewScanGenerator validates the generator configuration.
func NewScanGenerator(obstacles *ObstacleMap, origin Point, cellSize, maxRange float64, beams int) (*ScanGenerator, error) {
	if obstacles == nil {
		return nil, fmt.Errorf("scan generator requires an obstacle map")
	}
	if cellSize <= 0 || maxRange <= 0 || beams <= 0 {
		return nil, fmt.Errorf("scan generator needs positive cell size, range and beam count")
	}
	return &ScanGenerator{
		Obstacles: obstacles,
		Origin:    origin,
		CellSize:  cellSize,
		MaxRange:  maxRange,
		Beams:     beams,
	}, nil
}

// Scan sweeps a full circle of beams from the pose and returns one sample
// per beam. Bearings are relative to the pose heading, as a real scanning
// sensor reports them.
func (g *ScanGenerator) Scan(pose Pose) []Sample {
	samples := make([]Sample, 0, g.Beams)
	for i := 0; i < g.Beams; i++ {
		bearing := 2 * math.Pi * float64(i) / float64(g.Beams)
		samples = append(samples, Sample{Bearing: bearing, Range: g.castRay(pose, bearing)})
	}
	return samples
}

// castRay returns the ground-truth range along one bearing: the distance
// from the pose to the centre of the first occupied cell, or NaN when the
// beam reaches MaxRange unobstructed.
func (g *ScanGenerator) castRay(pose Pose, bearing float64) float64 {
	endpoint, err := RayEndpoint(pose, bearing, g.MaxRange)
	if err != nil {
		return math.NaN()
	}
	start := WorldToGrid(pose.Position(), g.Origin, g.CellSize)
	end := WorldToGrid(endpoint, g.Origin, g.CellSize)

	cells := TraverseCells(start, end)
	for _, c := range cells {
		if g.Obstacles.Occupied(c.Row, c.Col) {
			hit := GridToWorld(c, g.Origin, g.CellSize)
			return math.Hypot(hit.X-pose.X, hit.Y-pose.Y)
		}
	}
	return math.NaN()
}
