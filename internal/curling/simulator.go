package curling

import "context"

// SimulationRequest is one forward simulation of a delivery: the current 16
// positions (NaN for absent stones), the slot of the delivered stone and its
// launch.
type SimulationRequest struct {
	Positions [NumStones]Vec2
	Shooter   StoneID
	Velocity  LaunchVelocity
}

// SimulationResult holds the settled positions in the same indexing. Stones
// removed from play come back as NaN.
type SimulationResult struct {
	Positions [NumStones]Vec2
	Valid     bool
}

// Simulator is the forward physics boundary. Implementations must be
// deterministic and safe for concurrent use.
type Simulator interface {
	Simulate(ctx context.Context, req SimulationRequest) (SimulationResult, error)
}

// TrajectorySimulator can report where a lone stone is when its speed first
// drops to a given value.
type TrajectorySimulator interface {
	SpeedReachedAt(ctx context.Context, v LaunchVelocity, speed float64) (Vec2, error)
}

// SimulatorFunc adapts a plain function to the Simulator interface.
type SimulatorFunc func(ctx context.Context, req SimulationRequest) (SimulationResult, error)

func (f SimulatorFunc) Simulate(ctx context.Context, req SimulationRequest) (SimulationResult, error) {
	return f(ctx, req)
}
