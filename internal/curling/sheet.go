package curling

// Sheet geometry and shot limits. Coordinates are measured from the delivery
// point; the reference lines all cross the centre line at x = 0.
const (
	TeeLineY   = 38.405
	BackLineY  = 40.234
	FrontLineY = 36.576
	HogLineY   = 32.004

	// HouseRadius is half of the 1.83 m house diameter the scoring rules use.
	HouseRadius    = 1.83 / 2
	StoneRadius    = 0.145
	SheetHalfWidth = 2.375

	MinSpeed = 0.0
	MaxSpeed = 4.0

	NumTeams      = 2
	StonesPerTeam = 8
	NumStones     = NumTeams * StonesPerTeam

	// GuardOffset is how far in front of the front line guards are drawn.
	GuardOffset = 0.45
)

// Geometry carries the sheet constants the planner consumes as configuration.
type Geometry struct {
	Tee         Vec2    `json:"tee" yaml:"tee"`
	Back        Vec2    `json:"back" yaml:"back"`
	Front       Vec2    `json:"front" yaml:"front"`
	HouseRadius float64 `json:"house_radius" yaml:"house_radius"`
	StoneRadius float64 `json:"stone_radius" yaml:"stone_radius"`
	MaxSpeed    float64 `json:"max_speed" yaml:"max_speed"`
	GuardOffset float64 `json:"guard_offset" yaml:"guard_offset"`
}

// DefaultGeometry returns the standard sheet.
func DefaultGeometry() Geometry {
	return Geometry{
		Tee:         NewVec2(0, TeeLineY),
		Back:        NewVec2(0, BackLineY),
		Front:       NewVec2(0, FrontLineY),
		HouseRadius: HouseRadius,
		StoneRadius: StoneRadius,
		MaxSpeed:    MaxSpeed,
		GuardOffset: GuardOffset,
	}
}

// InHouse reports whether p lies within the scoring radius of the tee.
func (g Geometry) InHouse(p Vec2) bool {
	return p.IsFinite() && p.DistanceTo(g.Tee) <= g.HouseRadius
}

// Touching reports whether a stone at distance d from the tee touches the house.
func (g Geometry) Touching(d float64) bool {
	return d < g.HouseRadius+g.StoneRadius
}
