// Command gen-scan generates a synthetic scan log for testing the mapper: a
// rectangular room with a few obstacle blocks, swept by a simulated agent
// driving a square loop.
package main

import (
	"flag"
	"log"
	"math"
	"os"

	"github.com/banshee-data/occupancy.report/internal/mapping"
	"github.com/banshee-data/occupancy.report/internal/scanio"
)

func main() {
	output := flag.String("o", "sample.scan", "output path")
	steps := flag.Int("n", 200, "number of pose steps")
	beams := flag.Int("beams", 36, "beams per scan")
	cellSize := flag.Float64("cell-size", 0.2, "ground-truth cell size in meters")
	maxRange := flag.Float64("range", 12.0, "sensor max range in meters")
	flag.Parse()

	world, origin, err := buildWorld(*cellSize)
	if err != nil {
		log.Fatalf("building world: %v", err)
	}

	gen, err := mapping.NewScanGenerator(world, origin, *cellSize, *maxRange, *beams)
	if err != nil {
		log.Fatalf("creating generator: %v", err)
	}

	recorded := make([]mapping.Step, 0, *steps)
	for i := 0; i < *steps; i++ {
		pose := loopPose(i, *steps)
		recorded = append(recorded, mapping.Step{Pose: pose, Samples: gen.Scan(pose)})
		if (i+1)%50 == 0 {
			log.Printf("%d/%d steps", i+1, *steps)
		}
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("creating output: %v", err)
	}
	defer f.Close()
	if err := scanio.WriteLog(f, recorded); err != nil {
		log.Fatalf("writing log: %v", err)
	}
	log.Printf("✓ Created: %s (%d steps, %d beams)", *output, *steps, *beams)
}

// buildWorld stamps a 10x10m walled room with two interior blocks into a
// ground-truth obstacle map anchored at (0,0).
func buildWorld(cellSize float64) (*mapping.ObstacleMap, mapping.Point, error) {
	origin := mapping.Point{}
	cells := int(math.Round(10.0 / cellSize))
	world, err := mapping.NewObstacleMap(cells, cells)
	if err != nil {
		return nil, origin, err
	}

	wall := cellSize
	// Perimeter walls, one cell thick
	world.Stamp(mapping.Rect{X: 5, Y: wall / 2, Width: 10, Height: wall}, origin, cellSize)
	world.Stamp(mapping.Rect{X: 5, Y: 10 - wall/2, Width: 10, Height: wall}, origin, cellSize)
	world.Stamp(mapping.Rect{X: wall / 2, Y: 5, Width: wall, Height: 10}, origin, cellSize)
	world.Stamp(mapping.Rect{X: 10 - wall/2, Y: 5, Width: wall, Height: 10}, origin, cellSize)
	// Interior furniture
	world.Stamp(mapping.Rect{X: 3, Y: 6.5, Width: 1.2, Height: 0.8}, origin, cellSize)
	world.Stamp(mapping.Rect{X: 7, Y: 3, Width: 0.8, Height: 1.6}, origin, cellSize)
	return world, origin, nil
}

// loopPose drives the agent around a 6x6m square centred in the room, heading
// along the direction of travel.
func loopPose(i, total int) mapping.Pose {
	t := float64(i) / float64(total) * 4 // four sides
	side := int(t)
	frac := t - float64(side)
	switch side {
	case 0:
		return mapping.Pose{X: 2 + 6*frac, Y: 2, Heading: 0}
	case 1:
		return mapping.Pose{X: 8, Y: 2 + 6*frac, Heading: math.Pi / 2}
	case 2:
		return mapping.Pose{X: 8 - 6*frac, Y: 8, Heading: math.Pi}
	default:
		return mapping.Pose{X: 2, Y: 8 - 6*frac, Heading: 3 * math.Pi / 2}
	}
}
