package physics

import (
	"context"
	"fmt"
	"math"

	"github.com/curlfighter/backend/internal/curling"
)

// StoneSimulator is the in-process forward simulator used by the planner.
// It keeps no state between calls and is safe for concurrent use.
type StoneSimulator struct {
	Sheet Sheet
}

// NewStoneSimulator returns a simulator on the standard sheet.
func NewStoneSimulator() *StoneSimulator {
	return &StoneSimulator{Sheet: DefaultSheet()}
}

// Simulate delivers the shooter's stone from the origin and returns where all
// stones settle.
func (ss *StoneSimulator) Simulate(ctx context.Context, req curling.SimulationRequest) (curling.SimulationResult, error) {
	var res curling.SimulationResult
	if !req.Velocity.Vector().IsFinite() {
		return res, nil
	}
	shooter := req.Shooter.Flat()
	if shooter < 0 || shooter >= curling.NumStones {
		return res, fmt.Errorf("%w: shooter slot %d", curling.ErrInvalidInput, shooter)
	}

	var stones [curling.NumStones]*Stone
	for i, p := range req.Positions {
		stones[i] = &Stone{ID: i, Position: p, Active: p.IsFinite()}
	}
	stones[shooter] = launchStone(shooter, req.Velocity)

	pe := NewPhysicsEngine(stones, ss.Sheet)
	settled, err := pe.Simulate(ctx)
	if err != nil {
		return res, err
	}
	res.Positions = pe.GetFinalPositions()
	res.Valid = settled
	return res, nil
}

// SpeedReachedAt slides a lone stone over an empty sheet and reports its
// position when its speed first drops to speed.
func (ss *StoneSimulator) SpeedReachedAt(ctx context.Context, v curling.LaunchVelocity, speed float64) (curling.Vec2, error) {
	if !v.Vector().IsFinite() || math.IsNaN(speed) {
		return curling.Absent, fmt.Errorf("%w: non-finite launch", curling.ErrInvalidInput)
	}
	s := launchStone(0, v)
	maxSteps := int(MaxSimulationTime / TimeStep)
	for step := 0; step < maxSteps; step++ {
		if step%ContextCheckSteps == 0 {
			if err := ctx.Err(); err != nil {
				return curling.Absent, err
			}
		}
		if s.Velocity.Magnitude() <= speed || !s.Moving() {
			return s.Position, nil
		}
		advance(s, TimeStep)
	}
	return curling.Absent, fmt.Errorf("%w: stone still above %.3f m/s after %.0fs", curling.ErrSimulationFailure, speed, MaxSimulationTime)
}

func launchStone(id int, v curling.LaunchVelocity) *Stone {
	return &Stone{
		ID:              id,
		Position:        curling.Vec2{},
		Velocity:        v.Vector(),
		AngularVelocity: v.Spin.Sign() * InitialAngularSpeed,
		Active:          true,
	}
}
