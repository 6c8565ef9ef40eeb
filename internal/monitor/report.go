package monitor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/occupancy.report/internal/mapping"
)

// viridis ramp shared by the occupancy heatmap and the path scatter.
var heatmapColors = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// WriteReportHTML renders an interactive HTML report at outPath: an
// occupancy-probability heatmap in grid coordinates plus an XY scatter of
// the agent's path in world coordinates. Stats land in the page subtitle.
func WriteReportHTML(g *mapping.OccupancyGrid, path []mapping.Pose, stats mapping.GridStats, outPath string) error {
	if g == nil {
		return fmt.Errorf("no grid to report")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	page := components.NewPage()
	page.AddCharts(occupancyHeatmap(g, stats), pathScatter(g, path))

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

func occupancyHeatmap(g *mapping.OccupancyGrid, stats mapping.GridStats) *charts.HeatMap {
	probs := g.Probabilities()

	cols := make([]string, g.Cols)
	for c := 0; c < g.Cols; c++ {
		cols[c] = fmt.Sprintf("%d", c)
	}
	rows := make([]string, g.Rows)
	for r := 0; r < g.Rows; r++ {
		rows[r] = fmt.Sprintf("%d", r)
	}

	data := make([]opts.HeatMapData, 0, len(probs))
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{c, r, probs[r*g.Cols+c]}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Occupancy Probability",
			Subtitle: fmt.Sprintf("cells=%d occupied=%d free=%d unknown=%d mean=%.3f", stats.Cells, stats.Occupied, stats.Free, stats.Unknown, stats.MeanProbability),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: cols, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: rows, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        1,
			InRange:    &opts.VisualMapInRange{Color: heatmapColors},
		}),
	)
	hm.AddSeries("occupancy", data)
	return hm
}

func pathScatter(g *mapping.OccupancyGrid, path []mapping.Pose) *charts.Scatter {
	pts := make([]opts.ScatterData, 0, len(path))
	for i, pose := range path {
		pts = append(pts, opts.ScatterData{Value: []interface{}{pose.X, pose.Y, i}})
	}

	minX := g.Origin.X
	minY := g.Origin.Y
	maxX := g.Origin.X + float64(g.Cols)*g.CellSize
	maxY := g.Origin.Y + float64(g.Rows)*g.CellSize

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: "Agent Path", Subtitle: fmt.Sprintf("steps=%d", len(pts))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: minX, Max: maxX, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: minY, Max: maxY, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(max(len(pts)-1, 1)),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: heatmapColors},
		}),
	)
	scatter.AddSeries("path", pts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	return scatter
}
