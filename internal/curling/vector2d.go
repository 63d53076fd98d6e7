package curling

import (
	"encoding/json"
	"math"
)

// Vec2 is a sheet-relative 2D coordinate or velocity, in metres (per second).
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Absent is the sentinel used for out-of-play stones in flat position arrays.
var Absent = Vec2{X: math.NaN(), Y: math.NaN()}

func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Plus(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Minus(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

func (v Vec2) Magnitude() float64 {
	return math.Hypot(v.X, v.Y)
}

// DistanceTo returns the Euclidean distance between two points.
func (v Vec2) DistanceTo(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Bearing returns the angle of the vector from the +x axis, in radians.
func (v Vec2) Bearing() float64 {
	return math.Atan2(v.Y, v.X)
}

func (v Vec2) Normalize() Vec2 {
	m := v.Magnitude()
	if m == 0 {
		return Vec2{}
	}
	return v.Times(1.0 / m)
}

func (v Vec2) RightNormal() Vec2 {
	return Vec2{X: v.Y, Y: -v.X}
}

func (v Vec2) LeftNormal() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

// Rotate rotates the vector counterclockwise by rad radians.
func (v Vec2) Rotate(rad float64) Vec2 {
	sin, cos := math.Sincos(rad)
	return Vec2{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// IsFinite reports whether both coordinates are real numbers.
func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// MarshalJSON writes absent (non-finite) points as null.
func (v Vec2) MarshalJSON() ([]byte, error) {
	if !v.IsFinite() {
		return []byte("null"), nil
	}
	type plain Vec2
	return json.Marshal(plain(v))
}
