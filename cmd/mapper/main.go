// Command mapper builds an occupancy grid from a recorded scan log or a live
// serial scanner, optionally persisting the session to SQLite and rendering
// heatmap/report output files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/banshee-data/occupancy.report/internal/config"
	"github.com/banshee-data/occupancy.report/internal/gridstore"
	"github.com/banshee-data/occupancy.report/internal/mapping"
	"github.com/banshee-data/occupancy.report/internal/monitor"
	"github.com/banshee-data/occupancy.report/internal/scanio"
	"github.com/banshee-data/occupancy.report/internal/units"
	"github.com/banshee-data/occupancy.report/internal/version"
)

func main() {
	scanFile := flag.String("scan", "", "Path to a recorded scan log")
	serialPort := flag.String("port", "", "Serial port to read live scan data from (alternative to -scan)")
	baudRate := flag.Int("baud", 115200, "Serial baud rate")
	maxSteps := flag.Int("max-steps", 1000, "Maximum steps to collect from a serial port")
	configFile := flag.String("config", "", "Path to a JSON tuning config")
	dbPath := flag.String("db", "", "SQLite database to persist the session to (optional)")
	label := flag.String("label", "", "Human-readable session label")
	pngOut := flag.String("png", "", "Write a heatmap PNG to this path")
	htmlOut := flag.String("html", "", "Write an HTML report to this path")
	distUnits := flag.String("units", units.Meters, "Distance units for logged output (m or ft)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("mapper %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if (*scanFile == "") == (*serialPort == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -scan or -port is required")
		flag.Usage()
		os.Exit(1)
	}
	if !units.IsValidDistanceUnit(*distUnits) {
		log.Fatalf("unknown distance unit %q (valid: %v)", *distUnits, units.ValidDistanceUnits)
	}

	tuning := &config.TuningConfig{}
	if *configFile != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configFile)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}

	steps, err := loadSteps(*scanFile, *serialPort, *baudRate, *maxSteps)
	if err != nil {
		log.Fatalf("loading scan data: %v", err)
	}
	if len(steps) == 0 {
		log.Fatalf("no scan steps to process")
	}
	log.Printf("loaded %d steps", len(steps))

	// Size the grid to cover every pose and ray endpoint in the recording.
	points := mapping.StepEndpoints(steps)
	bounds, err := mapping.ComputeBounds(points, tuning.GetMargin())
	if err != nil {
		log.Fatalf("computing bounds: %v", err)
	}
	grid, err := mapping.GridForBounds(bounds, tuning.GetCellSize())
	if err != nil {
		log.Fatalf("creating grid: %v", err)
	}
	conv := func(m float64) float64 { return units.ConvertDistance(m, *distUnits) }
	log.Printf("grid %dx%d cells at %.2g%s covering [%.1f,%.1f]x[%.1f,%.1f]",
		grid.Rows, grid.Cols, conv(grid.CellSize), *distUnits,
		conv(bounds.MinX), conv(bounds.MaxX), conv(bounds.MinY), conv(bounds.MaxY))

	session, err := mapping.NewSession(mapping.SessionConfig{
		Grid:               grid,
		FreeConfidence:     tuning.GetFreeConfidence(),
		OccupiedConfidence: tuning.GetOccupiedConfidence(),
	})
	if err != nil {
		log.Fatalf("creating session: %v", err)
	}

	var store *gridstore.Store
	sessionID := gridstore.NewSessionID()
	startedAt := time.Now().UTC()
	if *dbPath != "" {
		store, err = gridstore.Open(*dbPath)
		if err != nil {
			log.Fatalf("opening store: %v", err)
		}
		defer store.Close()

		rec := gridstore.SessionRecord{
			SessionID:          sessionID,
			Label:              *label,
			CellSize:           grid.CellSize,
			Rows:               grid.Rows,
			Cols:               grid.Cols,
			OriginX:            grid.Origin.X,
			OriginY:            grid.Origin.Y,
			FreeConfidence:     tuning.GetFreeConfidence(),
			OccupiedConfidence: tuning.GetOccupiedConfidence(),
			StartedAt:          startedAt,
		}
		if err := store.InsertSession(rec); err != nil {
			log.Fatalf("recording session: %v", err)
		}
	}

	snapshotEvery := tuning.GetSnapshotEverySteps()
	if store != nil && snapshotEvery > 0 {
		for i := 0; i < len(steps); i += snapshotEvery {
			end := min(i+snapshotEvery, len(steps))
			session.ProcessSteps(steps[i:end])
			if _, err := store.SaveSnapshot(sessionID, "periodic", grid.Snapshot()); err != nil {
				log.Fatalf("saving snapshot: %v", err)
			}
		}
	} else {
		session.ProcessSteps(steps)
	}

	diag := session.Diagnostics()
	log.Printf("session complete: %d steps, %d rays (%d skipped, %d clamped, %d truncated) in %s",
		diag.StepsProcessed, diag.RaysProcessed, diag.RaysSkipped, diag.RaysClamped, diag.RaysTruncated, diag.ProcessingTime)

	stats := grid.Stats(tuning.GetFreeThreshold(), tuning.GetOccupiedThreshold())
	log.Printf("grid: %d occupied, %d free, %d unknown of %d cells (mean p=%.3f)",
		stats.Occupied, stats.Free, stats.Unknown, stats.Cells, stats.MeanProbability)

	if store != nil {
		if _, err := store.SaveSnapshot(sessionID, "final", grid.Snapshot()); err != nil {
			log.Fatalf("saving final snapshot: %v", err)
		}
		if err := store.CompleteSession(sessionID, time.Now().UTC(), diag); err != nil {
			log.Fatalf("completing session: %v", err)
		}
		log.Printf("✓ Session %s saved to %s", sessionID, *dbPath)
	}

	if *pngOut != "" {
		if err := monitor.SaveHeatmapPNG(grid, session.Path(), *pngOut); err != nil {
			log.Fatalf("rendering heatmap: %v", err)
		}
		log.Printf("✓ Created: %s", *pngOut)
	}
	if *htmlOut != "" {
		if err := monitor.WriteReportHTML(grid, session.Path(), stats, *htmlOut); err != nil {
			log.Fatalf("rendering report: %v", err)
		}
		log.Printf("✓ Created: %s", *htmlOut)
	}
}

// loadSteps reads the full recording from either a scan log file or a live
// serial port.
func loadSteps(scanFile, serialPort string, baudRate, maxSteps int) ([]mapping.Step, error) {
	if scanFile != "" {
		f, err := os.Open(scanFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return scanio.ReadLog(f)
	}

	port, err := scanio.NewScanPort(serialPort, baudRate)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", serialPort, err)
	}
	defer port.Close()

	// Ctrl-C finishes collection early and maps whatever arrived.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	go func() {
		if err := port.Monitor(ctx); err != nil && ctx.Err() == nil {
			log.Printf("serial monitor stopped: %v", err)
		}
	}()

	log.Printf("collecting up to %d steps from %s", maxSteps, serialPort)
	return scanio.CollectSteps(ctx, port, maxSteps), nil
}
