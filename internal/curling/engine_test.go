package curling

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

// unchanged leaves every stone where it was; the shooter stays absent.
var unchanged = SimulatorFunc(func(_ context.Context, req SimulationRequest) (SimulationResult, error) {
	return SimulationResult{Positions: req.Positions, Valid: true}, nil
})

func newTestEngine(sim Simulator, opts EngineOptions) *Engine {
	return NewEngine(NewVelocityModel(nil, nil), sim, opts)
}

func TestPlanEmptyBoardDrawsToTee(t *testing.T) {
	e := newTestEngine(unchanged, DefaultEngineOptions())
	plan, err := e.Plan(context.Background(), &Board{})
	if err != nil {
		t.Fatal(err)
	}
	if plan.State != StateEmptyHouse || plan.Fallback {
		t.Fatalf("unexpected plan %+v", plan)
	}
	c := plan.Candidate
	if c == nil || c.Kind != KindDraw || c.Target != NewVec2(0, TeeLineY) || c.Spin != CounterClockwise {
		t.Fatalf("expected counterclockwise tee draw, got %v", c)
	}
	want := math.Sqrt(0.13968687866736632*TeeLineY + 0.41120940058777616)
	if math.Abs(plan.Velocity.Speed()-want) > 1e-9 {
		t.Errorf("expected launch speed %.6f, got %.6f", want, plan.Velocity.Speed())
	}
	if len(plan.Evaluations) != 3 {
		t.Errorf("expected 3 evaluations, got %d", len(plan.Evaluations))
	}
}

func TestPlanOwnLeadSelectsGuard(t *testing.T) {
	b := &Board{ActingTeam: Team0, Shot: 2}
	b.Stones[Team0][0] = at(0, TeeLineY-0.05)

	e := newTestEngine(unchanged, DefaultEngineOptions())
	plan, err := e.Plan(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	if plan.State != StateOwnLead {
		t.Fatalf("expected own lead, got %s", plan.State)
	}
	if plan.Candidate == nil || plan.Candidate.Kind != KindGuard {
		t.Errorf("expected a guard, got %v", plan.Candidate)
	}
	if plan.Score != 1 {
		t.Errorf("expected score 1, got %v", plan.Score)
	}
}

func TestPlanOpponentLeadTakesOut(t *testing.T) {
	b := &Board{ActingTeam: Team0}
	b.Stones[Team1][0] = at(0.3, TeeLineY)

	e := newTestEngine(unchanged, DefaultEngineOptions())
	plan, err := e.Plan(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	c := plan.Candidate
	if c == nil || c.Kind != KindTakeout || c.Spin != Clockwise || c.Target != NewVec2(0.3, TeeLineY) {
		t.Errorf("expected clockwise takeout at the stone, got %v", c)
	}
}

func TestPlanSkipsInvalidSimulations(t *testing.T) {
	sim := SimulatorFunc(func(_ context.Context, req SimulationRequest) (SimulationResult, error) {
		if req.Velocity.Spin == CounterClockwise {
			return SimulationResult{}, nil
		}
		pos := req.Positions
		pos[req.Shooter.Flat()] = NewVec2(0, TeeLineY)
		return SimulationResult{Positions: pos, Valid: true}, nil
	})

	e := newTestEngine(sim, DefaultEngineOptions())
	plan, err := e.Plan(context.Background(), &Board{})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Candidate == nil || plan.Candidate.Spin != Clockwise {
		t.Fatalf("expected the clockwise draw, got %v", plan.Candidate)
	}
	if plan.Score != 1 {
		t.Errorf("expected score 1, got %v", plan.Score)
	}
	first := plan.Evaluations[0]
	if !first.Disqualified() || !errors.Is(first.Err, ErrSimulationFailure) || !math.IsInf(first.Score, -1) {
		t.Errorf("invalid result should disqualify: %+v", first)
	}
}

func TestPlanFallsBackWhenAllFail(t *testing.T) {
	sim := SimulatorFunc(func(context.Context, SimulationRequest) (SimulationResult, error) {
		return SimulationResult{}, errors.New("physics exploded")
	})

	e := newTestEngine(sim, DefaultEngineOptions())
	plan, err := e.Plan(context.Background(), &Board{})
	if err != nil {
		t.Fatalf("fallback should not be an error: %v", err)
	}
	if !plan.Fallback || plan.Candidate != nil {
		t.Errorf("expected fallback plan, got %+v", plan)
	}
	if plan.Velocity != DefaultCalibration().FixedShots.Center {
		t.Errorf("expected fixed centre shot, got %+v", plan.Velocity)
	}
	if plan.Score != 0 {
		t.Errorf("unscored fallback should carry a zero score, got %v", plan.Score)
	}
	for i, ev := range plan.Evaluations {
		if !errors.Is(ev.Err, ErrSimulationFailure) {
			t.Errorf("evaluation %d: expected ErrSimulationFailure, got %v", i, ev.Err)
		}
	}
}

func TestPlanCandidateTimeout(t *testing.T) {
	sim := SimulatorFunc(func(ctx context.Context, _ SimulationRequest) (SimulationResult, error) {
		<-ctx.Done()
		return SimulationResult{}, ctx.Err()
	})

	opts := DefaultEngineOptions()
	opts.CandidateTimeout = 10 * time.Millisecond
	e := newTestEngine(sim, opts)

	plan, err := e.Plan(context.Background(), &Board{})
	if err != nil {
		t.Fatal(err)
	}
	if !plan.Fallback {
		t.Fatal("timed out candidates should trigger the fallback")
	}
	for i, ev := range plan.Evaluations {
		if !errors.Is(ev.Err, ErrSimulationFailure) || !errors.Is(ev.Err, context.DeadlineExceeded) {
			t.Errorf("evaluation %d: unexpected error %v", i, ev.Err)
		}
	}
}

func TestPlanParallelMatchesSequential(t *testing.T) {
	b := &Board{ActingTeam: Team0}
	b.Stones[Team1][0] = at(0.3, TeeLineY)

	// Only the hard takeout clears the stone.
	sim := SimulatorFunc(func(_ context.Context, req SimulationRequest) (SimulationResult, error) {
		pos := req.Positions
		if req.Velocity.Speed() > 4.2 {
			for i := StonesPerTeam; i < NumStones; i++ {
				pos[i] = Absent
			}
			pos[req.Shooter.Flat()] = NewVec2(0, TeeLineY)
		}
		return SimulationResult{Positions: pos, Valid: true}, nil
	})

	seq := newTestEngine(sim, DefaultEngineOptions())
	opts := DefaultEngineOptions()
	opts.Parallel = true
	opts.MaxWorkers = 2
	par := newTestEngine(sim, opts)

	a, err := seq.Plan(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	p, err := par.Plan(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	if a.Candidate == nil || a.Candidate.Speed != 4.0 {
		t.Fatalf("expected the hard takeout, got %v", a.Candidate)
	}
	if p.Candidate == nil || *p.Candidate != *a.Candidate || p.Score != a.Score || p.Velocity != a.Velocity {
		t.Errorf("parallel plan %+v differs from sequential %+v", p, a)
	}
	for i := range a.Evaluations {
		if a.Evaluations[i].Candidate != p.Evaluations[i].Candidate {
			t.Errorf("evaluation %d out of order", i)
		}
	}
}

func TestPlanRejectsInvalidBoard(t *testing.T) {
	e := newTestEngine(unchanged, DefaultEngineOptions())
	if _, err := e.Plan(context.Background(), &Board{ActingTeam: 3}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPlanSearchNeedsSimulator(t *testing.T) {
	e := newTestEngine(nil, DefaultEngineOptions())
	if _, err := e.Plan(context.Background(), &Board{}); err == nil {
		t.Error("expected an error without a simulator")
	}
}

func TestSelectBestKeepsFirstOfEqualScores(t *testing.T) {
	evals := []Evaluation{
		{Candidate: ShotCandidate{Kind: KindDraw}, Score: math.Inf(-1), Err: ErrSimulationFailure},
		{Candidate: ShotCandidate{Kind: KindGuard}, Score: 2},
		{Candidate: ShotCandidate{Kind: KindTakeout}, Score: 2},
		{Candidate: ShotCandidate{Kind: KindDraw}, Score: 1},
	}
	best, ok := SelectBest(evals)
	if !ok || best.Candidate.Kind != KindGuard {
		t.Errorf("expected the first score-2 guard, got %+v (ok=%v)", best, ok)
	}

	_, ok = SelectBest(evals[:1])
	if ok {
		t.Error("all-disqualified set should report no selection")
	}
}

func TestSelectBestPanicsOnEmpty(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrEmptyCandidateSet) {
			t.Errorf("expected ErrEmptyCandidateSet panic, got %v", r)
		}
	}()
	SelectBest(nil)
}

func TestFixedPolicy(t *testing.T) {
	shots := DefaultCalibration().FixedShots
	opts := DefaultEngineOptions()
	opts.Policy = PolicyFixedShot
	e := newTestEngine(nil, opts)

	own := &Board{ActingTeam: Team0}
	own.Stones[Team0][0] = at(0, TeeLineY)
	opp := &Board{ActingTeam: Team1}
	opp.Stones[Team0][0] = at(0, TeeLineY)

	tests := []struct {
		name  string
		board *Board
		want  LaunchVelocity
	}{
		{"empty", &Board{}, shots.Center},
		{"own lead", own, shots.Guard},
		{"opponent lead", opp, shots.Center},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := e.Plan(context.Background(), tt.board)
			if err != nil {
				t.Fatal(err)
			}
			if plan.Velocity != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, plan.Velocity)
			}
		})
	}
}

func TestAlternatePolicy(t *testing.T) {
	shots := DefaultCalibration().FixedShots
	opts := DefaultEngineOptions()
	opts.Policy = PolicyTakeoutOrAlternate
	e := newTestEngine(nil, opts)
	ctx := context.Background()

	even, err := e.Plan(ctx, &Board{Shot: 4})
	if err != nil {
		t.Fatal(err)
	}
	if even.Velocity != shots.Center {
		t.Errorf("even shot should draw to the centre, got %+v", even.Velocity)
	}
	odd, err := e.Plan(ctx, &Board{Shot: 5, ActingTeam: Team1})
	if err != nil {
		t.Fatal(err)
	}
	if odd.Velocity != shots.Guard {
		t.Errorf("odd shot should guard, got %+v", odd.Velocity)
	}

	b := &Board{ActingTeam: Team0, Shot: 2}
	b.Stones[Team1][1] = at(-0.2, TeeLineY+0.3)
	takeout, err := e.Plan(ctx, b)
	if err != nil {
		t.Fatal(err)
	}
	c := takeout.Candidate
	if c == nil || c.Kind != KindTakeout || c.Spin != Clockwise || c.Speed != 3.0 {
		t.Fatalf("expected clockwise takeout, got %v", c)
	}
	want, err := e.Model().Estimate(ctx, *b.Stones[Team1][1], 3.0, Clockwise)
	if err != nil {
		t.Fatal(err)
	}
	if takeout.Velocity != want {
		t.Errorf("expected model velocity %+v, got %+v", want, takeout.Velocity)
	}
}

func TestAlternatePolicyFallsBackOnModelError(t *testing.T) {
	cal := DefaultCalibration()
	for i := range cal.Regimes {
		cal.Regimes[i].C2 = [2]float64{0, -100}
	}
	opts := DefaultEngineOptions()
	opts.Policy = PolicyTakeoutOrAlternate
	e := NewEngine(NewVelocityModel(cal, nil), nil, opts)

	b := &Board{ActingTeam: Team0, Shot: 0}
	b.Stones[Team1][0] = at(0, TeeLineY)
	plan, err := e.Plan(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	if !plan.Fallback || plan.Velocity != cal.FixedShots.Center {
		t.Errorf("expected fallback to the centre shot, got %+v", plan)
	}
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"": PolicySimulationSearch, "FIXED": PolicyFixedShot, " alternate ": PolicyTakeoutOrAlternate} {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Errorf("ParsePolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParsePolicy("random"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
