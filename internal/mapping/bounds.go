package mapping

import (
	"fmt"
	"math"
)

// Bounds is a world-space axis-aligned extent.
type Bounds struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Width returns the X extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the Y extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// StepEndpoints computes the world-space endpoint of every valid ray in a
// recorded session, skipping samples the geometry rejects. Used to auto-size
// the grid before mapping begins.
func StepEndpoints(steps []Step) []Point {
	var pts []Point
	for _, step := range steps {
		for _, sample := range step.Samples {
			p, err := RayEndpoint(step.Pose, sample.Bearing, sample.Range)
			if err != nil {
				continue
			}
			pts = append(pts, p, step.Pose.Position())
		}
	}
	return pts
}

// ComputeBounds returns the extent of a point set expanded by margin/2 on
// every side, with the limits snapped outward to whole world units.
func ComputeBounds(points []Point, margin float64) (Bounds, error) {
	if len(points) == 0 {
		return Bounds{}, fmt.Errorf("no points to bound")
	}
	if math.IsNaN(margin) || margin < 0 {
		return Bounds{}, fmt.Errorf("margin must be non-negative, got %f", margin)
	}
	b := Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, p := range points {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	b.MinX = math.Floor(b.MinX - margin/2)
	b.MinY = math.Floor(b.MinY - margin/2)
	b.MaxX = math.Ceil(b.MaxX + margin/2)
	b.MaxY = math.Ceil(b.MaxY + margin/2)
	return b, nil
}

// GridForBounds allocates an occupancy grid covering the bounds at the given
// cell size, with the grid origin at the bounds minimum corner.
func GridForBounds(b Bounds, cellSize float64) (*OccupancyGrid, error) {
	if math.IsNaN(cellSize) || cellSize <= 0 {
		return nil, fmt.Errorf("grid cell size must be positive, got %f", cellSize)
	}
	rows := int(math.Round(b.Height() / cellSize))
	cols := int(math.Round(b.Width() / cellSize))
	return NewOccupancyGrid(Point{X: b.MinX, Y: b.MinY}, rows, cols, cellSize)
}
