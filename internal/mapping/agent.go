package mapping

// Agent is the moving sensor platform: a pose that is replaced wholesale on
// every step, plus a physical half-extent that renderers use to draw the
// robot body (it plays no part in ray math).
type Agent struct {
	pose       Pose
	HalfExtent float64 // meters; rendering only
}

// NewAgent creates an agent at the given starting pose.
func NewAgent(pose Pose) *Agent {
	return &Agent{pose: pose, HalfExtent: 0.5}
}

// Pose returns the agent's current pose.
func (a *Agent) Pose() Pose { return a.pose }

// Move unconditionally replaces the agent's pose. Pose transitions are total
// and always succeed; boundedness checks, if any, belong to the caller.
func (a *Agent) Move(pose Pose) { a.pose = pose }

// RayEndpoint projects a sensor sample from the agent's current pose,
// offsetting the sample bearing by the agent's own heading.
func (a *Agent) RayEndpoint(bearing, dist float64) (Point, error) {
	return RayEndpoint(a.pose, bearing, dist)
}
