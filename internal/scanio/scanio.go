// Package scanio reads and writes recorded sensor scans. The core engine
// consumes only numeric pose and sample data; this package is the file and
// port collaborator that supplies it.
//
// The scan-log format is line-oriented CSV. A pose line starts a new time
// step and sample lines attach to the most recent pose:
//
//	pose,<x>,<y>,<heading>
//	sample,<bearing>,<range>
//
// Blank lines and lines starting with # are ignored. Ranges and bearings may
// be "NaN" — sensors report unresolved beams that way, and the engine skips
// them per ray.
package scanio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/occupancy.report/internal/mapping"
)

// ReadLog parses a scan log into chronological steps.
func ReadLog(r io.Reader) ([]mapping.Step, error) {
	var steps []mapping.Step
	scan := bufio.NewScanner(r)
	lineNo := 0
	for scan.Scan() {
		lineNo++
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		switch fields[0] {
		case "pose":
			if len(fields) != 4 {
				return nil, fmt.Errorf("line %d: pose needs 3 values, got %d", lineNo, len(fields)-1)
			}
			x, err := parseField(fields[1], lineNo, "x")
			if err != nil {
				return nil, err
			}
			y, err := parseField(fields[2], lineNo, "y")
			if err != nil {
				return nil, err
			}
			heading, err := parseField(fields[3], lineNo, "heading")
			if err != nil {
				return nil, err
			}
			steps = append(steps, mapping.Step{Pose: mapping.Pose{X: x, Y: y, Heading: heading}})
		case "sample":
			if len(steps) == 0 {
				return nil, fmt.Errorf("line %d: sample before any pose", lineNo)
			}
			if len(fields) != 3 {
				return nil, fmt.Errorf("line %d: sample needs 2 values, got %d", lineNo, len(fields)-1)
			}
			bearing, err := parseField(fields[1], lineNo, "bearing")
			if err != nil {
				return nil, err
			}
			dist, err := parseField(fields[2], lineNo, "range")
			if err != nil {
				return nil, err
			}
			last := &steps[len(steps)-1]
			last.Samples = append(last.Samples, mapping.Sample{Bearing: bearing, Range: dist})
		default:
			return nil, fmt.Errorf("line %d: unknown record type %q", lineNo, fields[0])
		}
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("reading scan log: %w", err)
	}
	return steps, nil
}

// WriteLog writes steps in the scan-log format ReadLog parses.
func WriteLog(w io.Writer, steps []mapping.Step) error {
	bw := bufio.NewWriter(w)
	for _, step := range steps {
		if _, err := fmt.Fprintf(bw, "pose,%g,%g,%g\n", step.Pose.X, step.Pose.Y, step.Pose.Heading); err != nil {
			return fmt.Errorf("writing pose: %w", err)
		}
		for _, s := range step.Samples {
			if _, err := fmt.Fprintf(bw, "sample,%g,%g\n", s.Bearing, s.Range); err != nil {
				return fmt.Errorf("writing sample: %w", err)
			}
		}
	}
	return bw.Flush()
}

func parseField(s string, lineNo int, name string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: bad %s value %q: %w", lineNo, name, s, err)
	}
	return v, nil
}
