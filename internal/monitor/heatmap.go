// Package monitor renders occupancy grids for offline inspection. It
// produces static PNG heatmaps via gonum/plot and interactive HTML
// reports via go-echarts.
package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/occupancy.report/internal/mapping"
)

// probGrid adapts an occupancy grid's probability field to the
// plotter.GridXYZ interface. X/Y report world coordinates of cell
// centres so the PNG axes read in metres.
type probGrid struct {
	rows, cols int
	cellSize   float64
	origin     mapping.Point
	probs      []float64
}

func newProbGrid(g *mapping.OccupancyGrid) *probGrid {
	return &probGrid{
		rows:     g.Rows,
		cols:     g.Cols,
		cellSize: g.CellSize,
		origin:   g.Origin,
		probs:    g.Probabilities(),
	}
}

func (pg *probGrid) Dims() (c, r int)   { return pg.cols, pg.rows }
func (pg *probGrid) X(c int) float64    { return pg.origin.X + float64(c)*pg.cellSize }
func (pg *probGrid) Y(r int) float64    { return pg.origin.Y + float64(r)*pg.cellSize }
func (pg *probGrid) Z(c, r int) float64 { return pg.probs[r*pg.cols+c] }

// SaveHeatmapPNG renders the grid's occupancy probabilities as a heatmap
// PNG at outPath, overlaying the agent's path when one is given. Cells
// near probability 1 render dark, cells near 0 light, so walls read as
// ink on paper.
func SaveHeatmapPNG(g *mapping.OccupancyGrid, path []mapping.Pose, outPath string) error {
	if g == nil {
		return fmt.Errorf("no grid to plot")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	pg := newProbGrid(g)
	pal := palette.Heat(12, 255)
	hm := plotter.NewHeatMap(pg, pal)
	hm.Min = 0
	hm.Max = 1

	p := plot.New()
	p.Title.Text = "Occupancy Probability"
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	p.Add(hm)

	if len(path) > 0 {
		pts := make(plotter.XYs, len(path))
		for i, pose := range path {
			pts[i] = plotter.XY{X: pose.X, Y: pose.Y}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("path overlay: %w", err)
		}
		line.Color = color.RGBA{R: 0, G: 120, B: 255, A: 255}
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("agent path", line)
		p.Legend.Top = true
	}

	// Keep cells square regardless of grid aspect ratio
	width := 10 * vg.Inch
	height := vg.Length(float64(width) * float64(g.Rows) / float64(g.Cols))
	if err := p.Save(width, height, outPath); err != nil {
		return fmt.Errorf("save heatmap: %w", err)
	}
	return nil
}
