package curling

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Policy selects how the engine picks a shot.
type Policy string

const (
	// PolicySimulationSearch scores generated candidates with the simulator.
	PolicySimulationSearch Policy = "search"
	// PolicyFixedShot maps the board state straight to a fixed launch.
	PolicyFixedShot Policy = "fixed"
	// PolicyTakeoutOrAlternate takes out a leading opponent stone and
	// otherwise alternates centre draws and guards.
	PolicyTakeoutOrAlternate Policy = "alternate"
)

// ParsePolicy maps a config string to a Policy.
func ParsePolicy(v string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(v))); p {
	case PolicySimulationSearch, PolicyFixedShot, PolicyTakeoutOrAlternate:
		return p, nil
	case "":
		return PolicySimulationSearch, nil
	}
	return "", fmt.Errorf("%w: unknown policy %q", ErrInvalidInput, v)
}

// EngineOptions controls a planning engine.
type EngineOptions struct {
	Policy           Policy
	Geometry         Geometry
	CandidateTimeout time.Duration // per-candidate budget (0 = none)
	Parallel         bool          // evaluate candidates concurrently
	MaxWorkers       int           // concurrency limit when Parallel (0 = unlimited)
}

// DefaultEngineOptions returns sensible defaults.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		Policy:           PolicySimulationSearch,
		Geometry:         DefaultGeometry(),
		CandidateTimeout: 2 * time.Second,
	}
}

// Plan is the outcome of one decision turn.
type Plan struct {
	Policy      Policy
	State       BoardState
	Velocity    LaunchVelocity
	Candidate   *ShotCandidate
	Score       float64 // zero when Fallback is set; the fixed shot is never scored
	Fallback    bool
	Evaluations []Evaluation
}

// Engine is the per-turn shot planner. It holds no per-turn state and may be
// shared between goroutines.
type Engine struct {
	model *VelocityModel
	sim   Simulator
	gen   CandidateGenerator
	opts  EngineOptions
}

// NewEngine wires a planner. sim may be nil only for the lookup policies.
func NewEngine(model *VelocityModel, sim Simulator, opts EngineOptions) *Engine {
	if opts.Policy == "" {
		opts.Policy = PolicySimulationSearch
	}
	if opts.Geometry == (Geometry{}) {
		opts.Geometry = DefaultGeometry()
	}
	return &Engine{
		model: model,
		sim:   sim,
		gen:   CandidateGenerator{Geometry: opts.Geometry},
		opts:  opts,
	}
}

// Options returns the engine's configuration.
func (e *Engine) Options() EngineOptions {
	return e.opts
}

// Model returns the velocity model.
func (e *Engine) Model() *VelocityModel {
	return e.model
}

// Plan decides the next shot for the acting team. Only an invalid board is
// reported as an error; unscorable candidates fall back to a safe draw.
func (e *Engine) Plan(ctx context.Context, b *Board) (*Plan, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	ranking := RankStones(b, e.opts.Geometry.Tee)
	state := ClassifyBoard(ranking, b.ActingTeam, e.opts.Geometry)

	switch e.opts.Policy {
	case PolicyFixedShot:
		return e.planFixed(state), nil
	case PolicyTakeoutOrAlternate:
		return e.planAlternate(ctx, b, ranking, state), nil
	}
	if e.sim == nil {
		return nil, fmt.Errorf("%w: search policy requires a simulator", ErrSimulationFailure)
	}

	candidates := e.gen.Generate(b, ranking)
	if len(candidates) == 0 {
		panic(ErrEmptyCandidateSet)
	}

	evals := e.evaluateAll(ctx, b, candidates)
	plan := &Plan{Policy: e.opts.Policy, State: state, Evaluations: evals}

	best, ok := SelectBest(evals)
	if !ok {
		log.Printf("[PLANNER] all %d candidates disqualified (end=%d shot=%d); using fallback draw", len(evals), b.End, b.Shot)
		plan.Velocity = e.model.Calibration().FixedShots.Center
		plan.Fallback = true
		return plan, nil
	}

	cand := best.Candidate
	plan.Velocity = best.Velocity
	plan.Candidate = &cand
	plan.Score = best.Score
	return plan, nil
}

// evaluateAll scores every candidate, keeping results in generation order.
func (e *Engine) evaluateAll(ctx context.Context, b *Board, candidates []ShotCandidate) []Evaluation {
	evals := make([]Evaluation, len(candidates))
	if !e.opts.Parallel || len(candidates) == 1 {
		for i, c := range candidates {
			evals[i] = e.evaluate(ctx, b, c)
		}
		return evals
	}

	g := errgroup.Group{}
	if e.opts.MaxWorkers > 0 {
		g.SetLimit(e.opts.MaxWorkers)
	}
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			evals[i] = e.evaluate(ctx, b, c)
			return nil
		})
	}
	// Failures are recorded per evaluation; the group never returns one.
	_ = g.Wait()
	return evals
}

func (e *Engine) planFixed(state BoardState) *Plan {
	shots := e.model.Calibration().FixedShots
	v := shots.Center
	if state == StateOwnLead {
		v = shots.Guard
	}
	return &Plan{Policy: e.opts.Policy, State: state, Velocity: v}
}

func (e *Engine) planAlternate(ctx context.Context, b *Board, ranking []StoneRef, state BoardState) *Plan {
	shots := e.model.Calibration().FixedShots
	plan := &Plan{Policy: e.opts.Policy, State: state}

	if state == StateOpponentLead {
		if target, ok := b.Position(ranking[0].Team, ranking[0].Index); ok {
			cand := ShotCandidate{Kind: KindTakeout, Target: target, Speed: takeoutSpeed, Spin: Clockwise}
			v, err := e.model.Estimate(ctx, cand.Target, cand.Speed, cand.Spin)
			if err == nil {
				plan.Velocity = v
				plan.Candidate = &cand
				return plan
			}
			log.Printf("[PLANNER] takeout estimate failed for %s: %v", cand, err)
			plan.Fallback = true
		}
	}

	if b.Shot%2 == 0 {
		plan.Velocity = shots.Center
	} else {
		plan.Velocity = shots.Guard
	}
	return plan
}
