package planner

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/curlfighter/backend/internal/config"
	"github.com/curlfighter/backend/internal/curling"
	"github.com/curlfighter/backend/internal/physics"
)

// Delta strategy names accepted in PLANNER_DELTA_STRATEGY.
const (
	DeltaConstant  = "constant"
	DeltaSimulated = "simulated"
)

// GeometryFromConfig builds the sheet geometry from SHEET_* settings.
func GeometryFromConfig(cfg *config.Config) curling.Geometry {
	g := curling.DefaultGeometry()
	g.Tee = curling.NewVec2(0, cfg.SheetTeeY)
	g.Back = curling.NewVec2(0, cfg.SheetBackY)
	g.Front = curling.NewVec2(0, cfg.SheetFrontY)
	g.HouseRadius = cfg.SheetHouseRadius
	g.StoneRadius = cfg.SheetStoneRadius
	g.MaxSpeed = cfg.SheetMaxSpeed
	return g
}

// NewEngine wires the calibration, velocity model, simulator and engine
// options described by cfg.
func NewEngine(cfg *config.Config) (*curling.Engine, *physics.StoneSimulator, error) {
	cal := curling.DefaultCalibration()
	if cfg.CalibrationFile != "" {
		loaded, err := curling.LoadCalibration(cfg.CalibrationFile)
		if err != nil {
			return nil, nil, err
		}
		cal = loaded
	}

	geometry := GeometryFromConfig(cfg)
	if geometry.MaxSpeed > cal.MaxSpeed() {
		return nil, nil, fmt.Errorf("%w: SHEET_MAX_SPEED %.2f above calibrated %.2f", curling.ErrInvalidInput, geometry.MaxSpeed, cal.MaxSpeed())
	}
	if geometry.MaxSpeed <= curling.MinSpeed {
		return nil, nil, fmt.Errorf("%w: SHEET_MAX_SPEED %.2f", curling.ErrInvalidInput, geometry.MaxSpeed)
	}

	policy, err := curling.ParsePolicy(cfg.PlannerPolicy)
	if err != nil {
		return nil, nil, err
	}

	sim := physics.NewStoneSimulator()
	sim.Sheet.BackLineY = geometry.Back.Y
	sim.Sheet.StoneRadius = geometry.StoneRadius

	// The in-process simulator is always available here, so measuring the
	// curl is the default; the constant only fits draw weight.
	strategy := strings.ToLower(strings.TrimSpace(cfg.PlannerDeltaStrategy))
	if strategy == "" {
		strategy = DeltaSimulated
	}
	var delta curling.DeltaAngleStrategy
	switch strategy {
	case DeltaConstant:
		delta = curling.ConstantDeltaAngle{K: cal.DeltaAngleConstant}
	case DeltaSimulated:
		delta = curling.SimulatedDeltaAngle{Simulator: sim}
	default:
		return nil, nil, fmt.Errorf("%w: unknown delta strategy %q", curling.ErrInvalidInput, cfg.PlannerDeltaStrategy)
	}

	opts := curling.EngineOptions{
		Policy:           policy,
		Geometry:         geometry,
		CandidateTimeout: time.Duration(cfg.CandidateTimeoutMS) * time.Millisecond,
		Parallel:         cfg.PlannerParallel,
		MaxWorkers:       cfg.PlannerMaxWorkers,
	}

	log.Printf("[PLANNER] policy=%s delta=%s calibration=%s parallel=%v timeout=%s",
		policy, strategy, cal.Version, opts.Parallel, opts.CandidateTimeout)

	model := curling.NewVelocityModel(cal, delta).WithSpeedLimit(geometry.MaxSpeed)
	return curling.NewEngine(model, sim, opts), sim, nil
}
