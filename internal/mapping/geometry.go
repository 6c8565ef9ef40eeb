package mapping

import (
	"fmt"
	"math"
)

// Point is a 2D world-space coordinate in meters.
type Point struct {
	X float64
	Y float64
}

// Pose is a world-space position plus heading in radians.
type Pose struct {
	X       float64
	Y       float64
	Heading float64 // radians, counter-clockwise from +X
}

// Position returns the pose's location without the heading.
func (p Pose) Position() Point {
	return Point{X: p.X, Y: p.Y}
}

// GridIndex addresses one cell of a dense 2D grid. Row indexes the Y axis,
// Col the X axis.
type GridIndex struct {
	Row int
	Col int
}

// RayEndpoint projects a range measurement from a pose out along
// pose.Heading + bearing and returns the world-space point where the
// measurement terminates. Samples with a NaN bearing or a NaN or negative
// range are rejected; callers skip such rays.
func RayEndpoint(pose Pose, bearing, dist float64) (Point, error) {
	if math.IsNaN(bearing) {
		return Point{}, fmt.Errorf("ray bearing is NaN")
	}
	if math.IsNaN(dist) {
		return Point{}, fmt.Errorf("ray range is NaN")
	}
	if dist < 0 {
		return Point{}, fmt.Errorf("ray range is negative: %f", dist)
	}
	theta := bearing + pose.Heading
	return Point{
		X: pose.X + dist*math.Cos(theta),
		Y: pose.Y + dist*math.Sin(theta),
	}, nil
}

// WorldToGrid converts a world point to the index of the cell containing it.
// Rounding (not truncation) keeps the forward and inverse mappings consistent
// to within half a cell.
func WorldToGrid(p Point, origin Point, cellSize float64) GridIndex {
	return GridIndex{
		Row: int(math.Round((p.Y - origin.Y) / cellSize)),
		Col: int(math.Round((p.X - origin.X) / cellSize)),
	}
}

// GridToWorld is the exact inverse of WorldToGrid: the world-space point at
// the centre of the indexed cell. Used by renderers and diagnostics.
func GridToWorld(idx GridIndex, origin Point, cellSize float64) Point {
	return Point{
		X: float64(idx.Col)*cellSize + origin.X,
		Y: float64(idx.Row)*cellSize + origin.Y,
	}
}
