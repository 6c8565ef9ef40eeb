package monitor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/occupancy.report/internal/mapping"
)

func buildTestGrid(t *testing.T) (*mapping.OccupancyGrid, []mapping.Pose) {
	t.Helper()
	grid, err := mapping.NewOccupancyGrid(mapping.Point{X: -2, Y: -2}, 20, 30, 0.2)
	if err != nil {
		t.Fatalf("NewOccupancyGrid: %v", err)
	}
	model, err := mapping.NewSensorModel(0.3, 0.9)
	if err != nil {
		t.Fatalf("NewSensorModel: %v", err)
	}
	grid.Update([]mapping.GridIndex{
		{Row: 5, Col: 5}, {Row: 5, Col: 6}, {Row: 5, Col: 7}, {Row: 5, Col: 8},
	}, model, true)

	path := []mapping.Pose{
		{X: -1, Y: -1},
		{X: 0, Y: 0, Heading: 0.5},
		{X: 1, Y: 0.5, Heading: 1.0},
	}
	return grid, path
}

func TestSaveHeatmapPNG(t *testing.T) {
	grid, path := buildTestGrid(t)
	out := filepath.Join(t.TempDir(), "plots", "map.png")

	if err := SaveHeatmapPNG(grid, path, out); err != nil {
		t.Fatalf("SaveHeatmapPNG: %v", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("heatmap PNG is empty")
	}
}

func TestSaveHeatmapPNG_NoPath(t *testing.T) {
	grid, _ := buildTestGrid(t)
	out := filepath.Join(t.TempDir(), "map.png")
	if err := SaveHeatmapPNG(grid, nil, out); err != nil {
		t.Fatalf("SaveHeatmapPNG without path overlay: %v", err)
	}
}

func TestSaveHeatmapPNG_NilGrid(t *testing.T) {
	if err := SaveHeatmapPNG(nil, nil, filepath.Join(t.TempDir(), "map.png")); err == nil {
		t.Error("expected error for nil grid")
	}
}

func TestWriteReportHTML(t *testing.T) {
	grid, path := buildTestGrid(t)
	stats := grid.Stats(mapping.DefaultFreeThreshold, mapping.DefaultOccupiedThreshold)
	out := filepath.Join(t.TempDir(), "report.html")

	if err := WriteReportHTML(grid, path, stats, out); err != nil {
		t.Fatalf("WriteReportHTML: %v", err)
	}

	body, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	doc := string(body)
	if !strings.Contains(doc, "Occupancy Probability") {
		t.Error("report missing heatmap title")
	}
	if !strings.Contains(doc, "Agent Path") {
		t.Error("report missing path chart title")
	}
}

func TestWriteReportHTML_NilGrid(t *testing.T) {
	err := WriteReportHTML(nil, nil, mapping.GridStats{}, filepath.Join(t.TempDir(), "report.html"))
	if err == nil {
		t.Error("expected error for nil grid")
	}
}
