package curling

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Spin is the rotation a stone is released with.
type Spin int

const (
	Clockwise        Spin = -1
	CounterClockwise Spin = 1
)

// Sign returns +1 for counterclockwise and -1 for clockwise.
func (s Spin) Sign() float64 {
	if s == Clockwise {
		return -1
	}
	return 1
}

// Opposite returns the other rotation.
func (s Spin) Opposite() Spin {
	if s == Clockwise {
		return CounterClockwise
	}
	return Clockwise
}

func (s Spin) String() string {
	if s == Clockwise {
		return "cw"
	}
	return "ccw"
}

// ParseSpin accepts "cw"/"clockwise" and "ccw"/"counterclockwise".
func ParseSpin(v string) (Spin, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "cw", "clockwise":
		return Clockwise, nil
	case "ccw", "counterclockwise":
		return CounterClockwise, nil
	}
	return 0, fmt.Errorf("%w: unknown spin %q", ErrInvalidInput, v)
}

func (s Spin) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Spin) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSpin(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Spin) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

func (s *Spin) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseSpin(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// LaunchVelocity is the planner's output: the stone's release velocity and spin.
type LaunchVelocity struct {
	VX   float64 `json:"vx" yaml:"vx"`
	VY   float64 `json:"vy" yaml:"vy"`
	Spin Spin    `json:"spin" yaml:"spin"`
}

// Vector returns the translational part of the launch.
func (lv LaunchVelocity) Vector() Vec2 {
	return Vec2{X: lv.VX, Y: lv.VY}
}

// Speed returns the release speed.
func (lv LaunchVelocity) Speed() float64 {
	return math.Hypot(lv.VX, lv.VY)
}

// ShotKind labels what a candidate is trying to do.
type ShotKind string

const (
	KindDraw    ShotKind = "draw"
	KindGuard   ShotKind = "guard"
	KindTakeout ShotKind = "takeout"
)

// ShotCandidate is a proposed shot: where the stone should be, and how fast it
// should still be moving when it gets there.
type ShotCandidate struct {
	Kind   ShotKind `json:"kind"`
	Target Vec2     `json:"target"`
	Speed  float64  `json:"speed"`
	Spin   Spin     `json:"spin"`
}

func (c ShotCandidate) String() string {
	return fmt.Sprintf("%s(%.3f,%.3f) v=%.2f %s", c.Kind, c.Target.X, c.Target.Y, c.Speed, c.Spin)
}
