package physics

import (
	"context"
	"math"

	"github.com/curlfighter/backend/internal/curling"
)

// Stone is a single stone's physics state.
type Stone struct {
	ID              int
	Position        curling.Vec2
	Velocity        curling.Vec2
	AngularVelocity float64 // rad/s, positive is counterclockwise
	Active          bool
}

// Moving reports whether the stone still has translational speed.
func (s *Stone) Moving() bool {
	return s.Active && !s.Velocity.IsZero()
}

// CollisionEvent records a stone-stone impact or a stone leaving play.
type CollisionEvent struct {
	Type     string  // "stone", "out"
	StoneID  int
	TargetID int     // struck stone for "stone", -1 otherwise
	Speed    float64 // relative normal speed at impact
}

// PhysicsEngine steps every active stone until all have stopped.
type PhysicsEngine struct {
	Stones  [curling.NumStones]*Stone
	Sheet   Sheet
	Events  []CollisionEvent
	Elapsed float64
}

// Sheet is the playing area used for removal rules.
type Sheet struct {
	BackLineY   float64
	HogLineY    float64
	HalfWidth   float64
	StoneRadius float64
}

// DefaultSheet returns the standard sheet.
func DefaultSheet() Sheet {
	return Sheet{
		BackLineY:   curling.BackLineY,
		HogLineY:    curling.HogLineY,
		HalfWidth:   curling.SheetHalfWidth,
		StoneRadius: curling.StoneRadius,
	}
}

// NewPhysicsEngine creates a physics engine from stone states and sheet geometry.
func NewPhysicsEngine(stones [curling.NumStones]*Stone, sheet Sheet) *PhysicsEngine {
	return &PhysicsEngine{
		Stones: stones,
		Sheet:  sheet,
		Events: make([]CollisionEvent, 0),
	}
}

// Simulate runs the physics until all stones stop or the time limit is hit.
// The bool is false when the limit was reached.
func (pe *PhysicsEngine) Simulate(ctx context.Context) (bool, error) {
	maxSteps := int(MaxSimulationTime / TimeStep)
	for step := 0; !pe.AllStopped(); step++ {
		if step >= maxSteps {
			return false, nil
		}
		if step%ContextCheckSteps == 0 {
			if err := ctx.Err(); err != nil {
				return false, err
			}
		}
		pe.step(TimeStep)
	}
	pe.removeShortStones()
	return true, nil
}

// AllStopped returns true if no active stone is moving.
func (pe *PhysicsEngine) AllStopped() bool {
	for _, s := range pe.Stones {
		if s.Moving() {
			return false
		}
	}
	return true
}

func (pe *PhysicsEngine) step(dt float64) {
	for _, s := range pe.Stones {
		if s.Moving() {
			advance(s, dt)
		}
	}
	pe.resolveCollisions()
	pe.removeOutOfPlay()
	pe.Elapsed += dt
}

// advance moves a stone one step along its current heading, then applies
// friction, curl and spin decay.
func advance(s *Stone, dt float64) {
	speed := s.Velocity.Magnitude()
	newSpeed := math.Max(speed+longitudinalAcceleration(speed)*dt, 0)
	heading := s.Velocity.Bearing() + yawRate(speed, s.AngularVelocity)*dt

	if math.Abs(s.AngularVelocity) > SpinEpsilon {
		sign := math.Copysign(1, s.AngularVelocity)
		next := s.AngularVelocity + angularAcceleration(speed)*dt*sign
		if next*s.AngularVelocity > 0 {
			s.AngularVelocity = next
		} else {
			s.AngularVelocity = 0
		}
	}

	s.Position = s.Position.Plus(s.Velocity.Times(dt))
	if newSpeed == 0 {
		s.Velocity = curling.Vec2{}
		return
	}
	s.Velocity = curling.NewVec2(newSpeed*math.Cos(heading), newSpeed*math.Sin(heading))
}

func longitudinalAcceleration(speed float64) float64 {
	return -(FrictionSlope/(speed+FrictionOffset) + FrictionBase) * Gravity
}

func yawRate(speed, omega float64) float64 {
	if math.Abs(omega) <= SpinEpsilon {
		return 0
	}
	return math.Copysign(1, omega) * YawCoefficient * math.Pow(math.Max(speed, MinSpeedForCurl), YawExponent)
}

func angularAcceleration(speed float64) float64 {
	return -AngularDeceleration / math.Max(speed, MinSpeedForCurl)
}

func (pe *PhysicsEngine) resolveCollisions() {
	contact := 2 * pe.Sheet.StoneRadius
	for a := 0; a < len(pe.Stones); a++ {
		sa := pe.Stones[a]
		if !sa.Active {
			continue
		}
		for b := a + 1; b < len(pe.Stones); b++ {
			sb := pe.Stones[b]
			if !sb.Active || (!sa.Moving() && !sb.Moving()) {
				continue
			}
			if sa.Position.DistanceTo(sb.Position) >= contact {
				continue
			}
			if !checkStonesConverging(sa.Position, sb.Position, sa.Velocity, sb.Velocity) {
				continue
			}
			pe.resolveStoneStone(sa, sb)
		}
	}
}

// resolveStoneStone exchanges the normal velocity components of two equal
// stones; tangential components are kept.
func (pe *PhysicsEngine) resolveStoneStone(a, b *Stone) {
	struck := b
	if a.Velocity.Magnitude() < b.Velocity.Magnitude() {
		struck = a
	}

	n := b.Position.Minus(a.Position).Normalize()
	r := n.RightNormal()

	aNormal := n.Times(a.Velocity.Dot(n))
	aTangent := r.Times(a.Velocity.Dot(r))
	bNormal := n.Times(b.Velocity.Dot(n))
	bTangent := r.Times(b.Velocity.Dot(r))

	newANormal := bNormal.Times(StoneRestitution).Plus(aNormal.Times(1 - StoneRestitution))
	newBNormal := aNormal.Times(StoneRestitution).Plus(bNormal.Times(1 - StoneRestitution))

	a.Velocity = aTangent.Plus(newANormal)
	b.Velocity = bTangent.Plus(newBNormal)

	// A struck stone starts sliding without rotation.
	struck.AngularVelocity = 0

	separateOverlap(a, b, 2*pe.Sheet.StoneRadius)

	pe.Events = append(pe.Events, CollisionEvent{
		Type:     "stone",
		StoneID:  a.ID,
		TargetID: b.ID,
		Speed:    aNormal.Minus(bNormal).Magnitude(),
	})
}

func (pe *PhysicsEngine) removeOutOfPlay() {
	for _, s := range pe.Stones {
		if !s.Active {
			continue
		}
		beyondBack := s.Position.Y > pe.Sheet.BackLineY+pe.Sheet.StoneRadius
		offSide := math.Abs(s.Position.X) > pe.Sheet.HalfWidth-pe.Sheet.StoneRadius
		if beyondBack || offSide {
			pe.deactivate(s)
		}
	}
}

// removeShortStones takes out stones that came to rest before the hog line.
func (pe *PhysicsEngine) removeShortStones() {
	for _, s := range pe.Stones {
		if s.Active && s.Position.Y < pe.Sheet.HogLineY {
			pe.deactivate(s)
		}
	}
}

func (pe *PhysicsEngine) deactivate(s *Stone) {
	s.Active = false
	s.Velocity = curling.Vec2{}
	s.AngularVelocity = 0
	pe.Events = append(pe.Events, CollisionEvent{Type: "out", StoneID: s.ID, TargetID: -1})
}

// GetFinalPositions returns the positions of all stones, NaN for stones
// out of play.
func (pe *PhysicsEngine) GetFinalPositions() [curling.NumStones]curling.Vec2 {
	var positions [curling.NumStones]curling.Vec2
	for i, s := range pe.Stones {
		if s.Active {
			positions[i] = s.Position
		} else {
			positions[i] = curling.Absent
		}
	}
	return positions
}
