package curling_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/curlfighter/backend/internal/curling"
	"github.com/curlfighter/backend/internal/physics"
)

func simulatedEngine(sim *physics.StoneSimulator, opts curling.EngineOptions) *curling.Engine {
	model := curling.NewVelocityModel(nil, curling.SimulatedDeltaAngle{Simulator: sim})
	return curling.NewEngine(model, sim, opts)
}

func TestEstimateRoundTrip(t *testing.T) {
	sim := physics.NewStoneSimulator()
	model := curling.NewVelocityModel(nil, curling.SimulatedDeltaAngle{Simulator: sim})
	ctx := context.Background()
	tolerance := 3 * curling.StoneRadius

	targets := []curling.Vec2{
		curling.NewVec2(0, curling.TeeLineY),
		curling.NewVec2(0.4, 37.9),
		curling.NewVec2(-0.5, 38.8),
	}
	for _, speed := range []float64{0.06, 0.3, 0.5, 0.8, 1.0} {
		for _, target := range targets {
			for _, spin := range []curling.Spin{curling.CounterClockwise, curling.Clockwise} {
				t.Run(fmt.Sprintf("s=%.2f/%.1f,%.1f/%s", speed, target.X, target.Y, spin), func(t *testing.T) {
					v, err := model.Estimate(ctx, target, speed, spin)
					if err != nil {
						t.Fatalf("Estimate: %v", err)
					}
					got, err := sim.SpeedReachedAt(ctx, v, speed)
					if err != nil {
						t.Fatalf("SpeedReachedAt: %v", err)
					}
					if d := got.DistanceTo(target); d > tolerance {
						t.Errorf("stone reached %.2f m/s at (%.3f, %.3f), %.3fm from target", speed, got.X, got.Y, d)
					}
				})
			}
		}
	}
}

func TestDeltaStrategiesCurlTheSameWay(t *testing.T) {
	sim := physics.NewStoneSimulator()
	cal := curling.DefaultCalibration()
	model := curling.NewVelocityModel(cal, nil)
	constant := curling.ConstantDeltaAngle{K: cal.DeltaAngleConstant}
	measured := curling.SimulatedDeltaAngle{Simulator: sim}
	ctx := context.Background()

	targets := []curling.Vec2{
		curling.NewVec2(0, curling.TeeLineY),
		curling.NewVec2(0.4, 37.9),
		curling.NewVec2(-0.5, 38.8),
		curling.NewVec2(0.3, curling.TeeLineY),
	}
	for _, speed := range []float64{0, 0.5, 3.0, 4.0} {
		for _, target := range targets {
			for _, spin := range []curling.Spin{curling.CounterClockwise, curling.Clockwise} {
				v0, err := model.LaunchSpeed(target.Magnitude(), speed)
				if err != nil {
					t.Fatalf("LaunchSpeed(%v, %.1f): %v", target, speed, err)
				}
				a, err := constant.DeltaAngle(ctx, target, speed, spin, v0)
				if err != nil {
					t.Fatal(err)
				}
				b, err := measured.DeltaAngle(ctx, target, speed, spin, v0)
				if err != nil {
					t.Fatal(err)
				}
				if a*b <= 0 {
					t.Errorf("s=%.1f target=(%.1f, %.3f) %s: constant %.5f and simulated %.5f disagree",
						speed, target.X, target.Y, spin, a, b)
				}
			}
		}
	}
}

func TestDefaultStrategyDrawRoundTrip(t *testing.T) {
	sim := physics.NewStoneSimulator()
	model := curling.NewVelocityModel(nil, nil)
	geometry := curling.DefaultGeometry()
	ctx := context.Background()

	targets := []curling.Vec2{
		curling.NewVec2(0, curling.TeeLineY),
		curling.NewVec2(0.4, 37.9),
		curling.NewVec2(-0.5, 38.8),
	}
	for _, target := range targets {
		for _, spin := range []curling.Spin{curling.CounterClockwise, curling.Clockwise} {
			v, err := model.Estimate(ctx, target, 0, spin)
			if err != nil {
				t.Fatalf("Estimate: %v", err)
			}
			got, err := sim.SpeedReachedAt(ctx, v, 0)
			if err != nil {
				t.Fatalf("SpeedReachedAt: %v", err)
			}
			if !geometry.InHouse(got) {
				t.Errorf("draw to (%.1f, %.3f) %s stopped outside the house at (%.3f, %.3f)", target.X, target.Y, spin, got.X, got.Y)
			}
			if d := got.DistanceTo(target); d > 3*curling.StoneRadius {
				t.Errorf("draw to (%.1f, %.3f) %s stopped %.3fm away", target.X, target.Y, spin, d)
			}
		}
	}
}

func TestDefaultEngineDrawScores(t *testing.T) {
	sim := physics.NewStoneSimulator()
	e := curling.NewEngine(curling.NewVelocityModel(nil, nil), sim, curling.DefaultEngineOptions())

	plan, err := e.Plan(context.Background(), &curling.Board{})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Fallback || plan.Candidate == nil || plan.Candidate.Kind != curling.KindDraw {
		t.Fatalf("expected a draw, got %+v", plan)
	}
	if plan.Score != 1 {
		t.Errorf("default draw should finish in the house, score %v", plan.Score)
	}
	if !plan.Evaluations[0].Final[0].IsFinite() {
		t.Error("shooter left play")
	}
}

func TestEngineDrawOnEmptySheet(t *testing.T) {
	sim := physics.NewStoneSimulator()
	e := simulatedEngine(sim, curling.DefaultEngineOptions())
	board := &curling.Board{}

	plan, err := e.Plan(context.Background(), board)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Candidate == nil || plan.Candidate.Kind != curling.KindDraw || plan.Candidate.Spin != curling.CounterClockwise {
		t.Fatalf("expected counterclockwise draw, got %v", plan.Candidate)
	}
	if plan.Score != 1 {
		t.Errorf("expected the draw to score 1, got %v", plan.Score)
	}

	res, err := sim.Simulate(context.Background(), curling.SimulationRequest{
		Positions: board.Positions(),
		Shooter:   board.Shooter(),
		Velocity:  plan.Velocity,
	})
	if err != nil {
		t.Fatal(err)
	}
	tee := curling.NewVec2(0, curling.TeeLineY)
	if d := res.Positions[0].DistanceTo(tee); d > 0.05 {
		t.Errorf("draw stopped %.3fm from the tee", d)
	}
}

func TestEngineProtectsLead(t *testing.T) {
	lead := curling.NewVec2(0, curling.TeeLineY-0.05)
	board := &curling.Board{ActingTeam: curling.Team0, Shot: 2}
	board.Stones[curling.Team0][0] = &lead

	e := simulatedEngine(physics.NewStoneSimulator(), curling.DefaultEngineOptions())
	plan, err := e.Plan(context.Background(), board)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Candidate == nil || plan.Candidate.Kind != curling.KindGuard {
		t.Fatalf("expected a guard, got %v", plan.Candidate)
	}
	if plan.Score != 1 {
		t.Errorf("lead stone should still count, got score %v", plan.Score)
	}
}

func TestEngineTakesOutShotStone(t *testing.T) {
	shot := curling.NewVec2(0.3, curling.TeeLineY)
	board := &curling.Board{ActingTeam: curling.Team0}
	board.Stones[curling.Team1][0] = &shot

	opts := curling.DefaultEngineOptions()
	opts.Parallel = true
	e := simulatedEngine(physics.NewStoneSimulator(), opts)

	plan, err := e.Plan(context.Background(), board)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Candidate == nil || plan.Candidate.Kind != curling.KindTakeout || plan.Candidate.Spin != curling.Clockwise {
		t.Fatalf("expected clockwise takeout, got %v", plan.Candidate)
	}
	if plan.Score != 1 {
		t.Errorf("expected the opponent stone removed and the shooter in the house, got score %v", plan.Score)
	}
	if plan.Evaluations[0].Final[curling.StonesPerTeam].IsFinite() {
		t.Error("opponent stone should be out of play after the takeout")
	}
}
