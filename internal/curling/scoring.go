package curling

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Evaluation is one scored candidate. Disqualified candidates carry Score
// -Inf and the error that disqualified them.
type Evaluation struct {
	Candidate ShotCandidate
	Velocity  LaunchVelocity
	Final     [NumStones]Vec2
	Score     float64
	Err       error
}

// Disqualified reports whether the candidate could not be scored.
func (e Evaluation) Disqualified() bool {
	return e.Err != nil || math.IsInf(e.Score, -1)
}

// HouseScore counts acting-team stones in the house minus opponent stones.
func HouseScore(positions [NumStones]Vec2, acting Team, g Geometry) float64 {
	var score float64
	for i, p := range positions {
		if !g.InHouse(p) {
			continue
		}
		if Team(i/StonesPerTeam) == acting {
			score++
		} else {
			score--
		}
	}
	return score
}

// evaluate estimates, simulates and scores a single candidate under its own
// timeout.
func (e *Engine) evaluate(ctx context.Context, b *Board, c ShotCandidate) Evaluation {
	ev := Evaluation{Candidate: c, Score: math.Inf(-1)}

	if e.opts.CandidateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.CandidateTimeout)
		defer cancel()
	}

	v, err := e.model.Estimate(ctx, c.Target, c.Speed, c.Spin)
	if err != nil {
		ev.Err = err
		return ev
	}
	ev.Velocity = v

	res, err := e.sim.Simulate(ctx, SimulationRequest{
		Positions: b.Positions(),
		Shooter:   b.Shooter(),
		Velocity:  v,
	})
	if err != nil {
		if !errors.Is(err, ErrSimulationFailure) {
			err = fmt.Errorf("%w: %w", ErrSimulationFailure, err)
		}
		ev.Err = err
		return ev
	}
	if !res.Valid {
		ev.Err = fmt.Errorf("%w: simulator flagged result invalid", ErrSimulationFailure)
		return ev
	}

	ev.Final = res.Positions
	ev.Score = HouseScore(res.Positions, b.ActingTeam, e.opts.Geometry)
	return ev
}

// SelectBest returns the first evaluation with the strictly highest score.
// The bool is false when every candidate was disqualified.
func SelectBest(evals []Evaluation) (Evaluation, bool) {
	if len(evals) == 0 {
		panic(ErrEmptyCandidateSet)
	}
	best := -1
	bestScore := math.Inf(-1)
	for i, ev := range evals {
		if ev.Err != nil {
			continue
		}
		if ev.Score > bestScore {
			bestScore = ev.Score
			best = i
		}
	}
	if best < 0 {
		return Evaluation{}, false
	}
	return evals[best], true
}
