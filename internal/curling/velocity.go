package curling

import (
	"context"
	"fmt"
	"math"
)

// DeltaAngleStrategy supplies the angular correction added to the target
// bearing to compensate for curl.
type DeltaAngleStrategy interface {
	DeltaAngle(ctx context.Context, target Vec2, speed float64, spin Spin, launchSpeed float64) (float64, error)
}

// ConstantDeltaAngle approximates the correction as spinSign*K/r. K is fitted
// on draw weight, so faster shots are overcorrected: curl shrinks with speed.
type ConstantDeltaAngle struct {
	K float64
}

func (c ConstantDeltaAngle) DeltaAngle(_ context.Context, target Vec2, _ float64, spin Spin, _ float64) (float64, error) {
	r := target.Magnitude()
	if r <= 0 {
		return 0, fmt.Errorf("%w: target at sheet origin", ErrInvalidInput)
	}
	return spin.Sign() * c.K / r, nil
}

// SimulatedDeltaAngle launches once straight at the target and measures how
// far the stone has turned by the time it slows to the desired speed.
type SimulatedDeltaAngle struct {
	Simulator TrajectorySimulator
}

func (s SimulatedDeltaAngle) DeltaAngle(ctx context.Context, target Vec2, speed float64, spin Spin, launchSpeed float64) (float64, error) {
	bearing := target.Bearing()
	probe := LaunchVelocity{
		VX:   launchSpeed * math.Cos(bearing),
		VY:   launchSpeed * math.Sin(bearing),
		Spin: spin,
	}
	reached, err := s.Simulator.SpeedReachedAt(ctx, probe, speed)
	if err != nil {
		return 0, fmt.Errorf("%w: delta angle probe: %w", ErrSimulationFailure, err)
	}
	if !reached.IsFinite() || reached.IsZero() {
		return 0, fmt.Errorf("%w: delta angle probe returned no position", ErrSimulationFailure)
	}
	return -(reached.Bearing() - bearing), nil
}

// VelocityModel inverts the fitted speed/distance relation of the ice.
type VelocityModel struct {
	calibration *Calibration
	delta       DeltaAngleStrategy
	maxSpeed    float64
}

// NewVelocityModel builds a model. A nil strategy defaults to the constant
// approximation from the calibration.
func NewVelocityModel(cal *Calibration, delta DeltaAngleStrategy) *VelocityModel {
	if cal == nil {
		cal = DefaultCalibration()
	}
	if delta == nil {
		delta = ConstantDeltaAngle{K: cal.DeltaAngleConstant}
	}
	return &VelocityModel{
		calibration: cal,
		delta:       delta,
		maxSpeed:    cal.MaxSpeed(),
	}
}

// WithSpeedLimit returns a copy of the model that also rejects desired speeds
// above limit. The calibrated range is never widened.
func (m *VelocityModel) WithSpeedLimit(limit float64) *VelocityModel {
	limited := *m
	if limit < limited.maxSpeed {
		limited.maxSpeed = limit
	}
	return &limited
}

// MaxSpeed is the highest desired speed the model accepts.
func (m *VelocityModel) MaxSpeed() float64 {
	return m.maxSpeed
}

// Calibration returns the data set the model was built from.
func (m *VelocityModel) Calibration() *Calibration {
	return m.calibration
}

// LaunchSpeed returns the release speed needed for a stone to still be
// moving at speed after travelling r metres.
func (m *VelocityModel) LaunchSpeed(r, speed float64) (float64, error) {
	if math.IsNaN(speed) || speed < MinSpeed || speed > m.maxSpeed {
		return 0, fmt.Errorf("%w: speed %.4f outside [%.1f, %.1f]", ErrInvalidInput, speed, MinSpeed, m.maxSpeed)
	}
	if math.IsNaN(r) || r <= 0 {
		return 0, fmt.Errorf("%w: target distance %.4f", ErrInvalidInput, r)
	}
	coef, ok := m.calibration.regime(speed)
	if !ok {
		return 0, fmt.Errorf("%w: no regime for speed %.4f", ErrInvalidInput, speed)
	}

	radicand := coef.c0(r)*speed*speed + coef.c1(r)*speed + coef.c2(r)
	v0 := math.Sqrt(radicand)
	if math.IsNaN(v0) || !(speed < v0) {
		return 0, fmt.Errorf("%w: launch %.4f not above release %.4f at r=%.3f", ErrModelInconsistency, v0, speed, r)
	}
	return v0, nil
}

// Estimate returns the launch velocity that brings a stone to target still
// moving at speed.
func (m *VelocityModel) Estimate(ctx context.Context, target Vec2, speed float64, spin Spin) (LaunchVelocity, error) {
	if !target.IsFinite() {
		return LaunchVelocity{}, fmt.Errorf("%w: target not finite", ErrInvalidInput)
	}
	v0, err := m.LaunchSpeed(target.Magnitude(), speed)
	if err != nil {
		return LaunchVelocity{}, err
	}

	delta, err := m.delta.DeltaAngle(ctx, target, speed, spin, v0)
	if err != nil {
		return LaunchVelocity{}, err
	}

	angle := target.Bearing() + delta
	return LaunchVelocity{
		VX:   v0 * math.Cos(angle),
		VY:   v0 * math.Sin(angle),
		Spin: spin,
	}, nil
}
