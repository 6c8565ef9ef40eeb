package scanio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/banshee-data/occupancy.report/internal/mapping"
)

// StreamedStep is one completed time step received from a live stream.
type StreamedStep = mapping.Step

// streamParser assembles scan-log lines arriving one at a time into steps.
// A step completes when the next pose line arrives; flush emits the step in
// progress when the stream ends.
type streamParser struct {
	current *mapping.Step
}

func newStreamParser() *streamParser {
	return &streamParser{}
}

// feed consumes one line and returns any steps it completed.
func (p *streamParser) feed(line string) ([]StreamedStep, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}
	fields := strings.Split(line, ",")
	switch fields[0] {
	case "pose":
		if len(fields) != 4 {
			return nil, fmt.Errorf("pose needs 3 values, got %d", len(fields)-1)
		}
		vals, err := parseFloats(fields[1:])
		if err != nil {
			return nil, err
		}
		var done []StreamedStep
		if p.current != nil {
			done = append(done, *p.current)
		}
		p.current = &mapping.Step{Pose: mapping.Pose{X: vals[0], Y: vals[1], Heading: vals[2]}}
		return done, nil
	case "sample":
		if p.current == nil {
			return nil, fmt.Errorf("sample before any pose")
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("sample needs 2 values, got %d", len(fields)-1)
		}
		vals, err := parseFloats(fields[1:])
		if err != nil {
			return nil, err
		}
		p.current.Samples = append(p.current.Samples, mapping.Sample{Bearing: vals[0], Range: vals[1]})
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown record type %q", fields[0])
	}
}

// flush returns the in-progress step, if any, and resets the parser.
func (p *streamParser) flush() []StreamedStep {
	if p.current == nil {
		return nil
	}
	step := *p.current
	p.current = nil
	return []StreamedStep{step}
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", f, err)
		}
		out[i] = v
	}
	return out, nil
}
