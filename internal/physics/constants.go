package physics

import "math"

// FCV1 ice and stone constants.
const (
	Gravity = 9.80665

	// Longitudinal deceleration is Gravity*(FrictionSlope/(v+FrictionOffset)+FrictionBase).
	FrictionSlope  = 0.00200985
	FrictionOffset = 0.06385782
	FrictionBase   = 0.00626286

	// Yaw rate is sign(omega)*YawCoefficient*v^YawExponent.
	YawCoefficient = 0.00820
	YawExponent    = -0.8

	AngularDeceleration = 0.025
	InitialAngularSpeed = math.Pi / 2
	MinSpeedForCurl     = 0.001
	SpinEpsilon         = 1e-6

	StoneRestitution = 0.98

	TimeStep          = 0.001 // seconds
	MaxSimulationTime = 120.0 // seconds
	ContextCheckSteps = 1024
)
