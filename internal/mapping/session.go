package mapping

import (
	"fmt"
	"time"

	"github.com/banshee-data/occupancy.report/internal/monitoring"
	"github.com/banshee-data/occupancy.report/internal/timeutil"
)

// Sample is one sensor measurement: a bearing relative to the agent's
// heading and a measured range. NaN or negative values mark samples the
// sensor could not resolve; the pipeline skips them.
type Sample struct {
	Bearing float64 // radians, relative to agent heading
	Range   float64 // world units
}

// Step is one time step of recorded sensor data: the pose the agent moved to
// and the samples taken there.
type Step struct {
	Pose    Pose
	Samples []Sample
}

// Diagnostics counts per-ray recoveries and session progress for the caller
// to inspect. Per-ray errors never abort a step.
type Diagnostics struct {
	StepsProcessed int64
	RaysProcessed  int64
	RaysSkipped    int64 // invalid samples (NaN bearing, NaN/negative range)
	RaysClamped    int64 // endpoint outside the grid, traversal cut at the boundary
	RaysTruncated  int64 // shortened by a simulated obstacle collision

	ProcessingTime time.Duration
}

// SessionConfig configures a mapping session.
type SessionConfig struct {
	// Grid is the belief map the session accumulates into. Required.
	Grid *OccupancyGrid

	// FreeConfidence and OccupiedConfidence parameterise the inverse sensor
	// model; both must be in (0,1) and neither may be 0.5.
	FreeConfidence     float64
	OccupiedConfidence float64

	// Obstacles is the simulation ground truth. When set, rays are truncated
	// at the first occupied cell (collision-aware sensing); when nil, rays
	// run to their nominal range and the final cell is classified occupied,
	// as real sensor data already encodes the stopping range.
	Obstacles *ObstacleMap

	// Clock defaults to the real clock; tests substitute a MockClock.
	Clock timeutil.Clock
}

// Session runs the synchronous mapping pipeline: for each pose step, every
// (bearing, range) sample is rasterised into grid cells and folded into the
// occupancy grid before the next step begins.
//
// Out-of-grid endpoints are clamped: the traversal is cut at the grid
// boundary and the surviving cells still receive free evidence, so no sensor
// information is silently discarded. The boundary cell is not classified
// occupied — the ray gave no evidence the obstacle sits there.
type Session struct {
	grid      *OccupancyGrid
	model     *SensorModel
	obstacles *ObstacleMap
	agent     *Agent
	clock     timeutil.Clock

	diag Diagnostics
	path []Pose

	logf func(format string, v ...interface{})
}

// NewSession validates the configuration and builds a session. Invalid
// configuration is fatal here, before any grid mutation occurs.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Grid == nil {
		return nil, fmt.Errorf("session requires a grid")
	}
	model, err := NewSensorModel(cfg.FreeConfidence, cfg.OccupiedConfidence)
	if err != nil {
		return nil, fmt.Errorf("invalid sensor model: %w", err)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Session{
		grid:      cfg.Grid,
		model:     model,
		obstacles: cfg.Obstacles,
		agent:     NewAgent(Pose{}),
		clock:     clock,
		logf:      monitoring.Prefixed("Session"),
	}, nil
}

// Grid returns the session's belief map.
func (s *Session) Grid() *OccupancyGrid { return s.grid }

// Agent returns the session's agent.
func (s *Session) Agent() *Agent { return s.agent }

// Diagnostics returns a copy of the session counters.
func (s *Session) Diagnostics() Diagnostics { return s.diag }

// Path returns the sequence of poses processed so far, for path tracing by
// an external renderer.
func (s *Session) Path() []Pose {
	out := make([]Pose, len(s.path))
	copy(out, s.path)
	return out
}

// ProcessStep moves the agent to the next pose and folds every sample into
// the grid. Malformed samples are skipped and counted; they never abort the
// step.
func (s *Session) ProcessStep(pose Pose, samples []Sample) {
	start := s.clock.Now()

	s.agent.Move(pose)
	s.path = append(s.path, pose)

	for _, sample := range samples {
		s.processRay(sample)
	}

	s.diag.StepsProcessed++
	s.diag.ProcessingTime += s.clock.Since(start)
}

// ProcessSteps runs a whole recorded session in chronological order and logs
// progress periodically.
func (s *Session) ProcessSteps(steps []Step) {
	for i, step := range steps {
		s.ProcessStep(step.Pose, step.Samples)
		if (i+1)%100 == 0 {
			s.logf("processed %d/%d steps (%d rays, %d skipped)",
				i+1, len(steps), s.diag.RaysProcessed, s.diag.RaysSkipped)
		}
	}
}

func (s *Session) processRay(sample Sample) {
	endpoint, err := s.agent.RayEndpoint(sample.Bearing, sample.Range)
	if err != nil {
		s.diag.RaysSkipped++
		return
	}

	startIdx := s.grid.WorldToGrid(s.agent.Pose().Position())
	endIdx := s.grid.WorldToGrid(endpoint)

	cells := TraverseCells(startIdx, endIdx)

	// Clamp at the grid boundary: keep the in-bounds prefix of the
	// traversal. A ray starting outside the grid contributes nothing.
	clamped := false
	for i, c := range cells {
		if !s.grid.InBounds(c) {
			cells = cells[:i]
			clamped = true
			break
		}
	}
	if len(cells) == 0 {
		s.diag.RaysSkipped++
		return
	}
	if clamped {
		s.diag.RaysClamped++
	}

	// Simulation mode: shorten the ray at the first true obstacle.
	terminalOccupied := !clamped
	if s.obstacles != nil {
		resolved := ResolveCollision(cells, s.obstacles)
		if len(resolved) < len(cells) {
			cells = resolved
			s.diag.RaysTruncated++
		}
		// The clamp may have stopped the ray exactly on an obstacle cell.
		last := cells[len(cells)-1]
		if s.obstacles.Occupied(last.Row, last.Col) {
			terminalOccupied = true
		}
	}

	s.grid.Update(cells, s.model, terminalOccupied)
	s.diag.RaysProcessed++
}
