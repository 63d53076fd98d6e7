package curling

import "math"

// BoardState is the coarse situation the generator branches on.
type BoardState string

const (
	StateEmptyHouse   BoardState = "empty_house"
	StateOwnLead      BoardState = "own_lead"
	StateOpponentLead BoardState = "opponent_lead"
)

const (
	takeoutSpeed     = 3.0
	hardTakeoutSpeed = 4.0

	// Zone bounds, in stone radii from the centre line.
	centerZoneRadii = 1.0
	nearZoneRadii   = 3.0
)

// ClassifyBoard decides which of the three candidate branches applies.
func ClassifyBoard(ranking []StoneRef, acting Team, g Geometry) BoardState {
	if len(ranking) == 0 || !g.Touching(ranking[0].Distance) {
		return StateEmptyHouse
	}
	if ranking[0].Team == acting {
		return StateOwnLead
	}
	return StateOpponentLead
}

// TakeoutZone is the lateral band an opponent stone sits in, measured in
// stone radii from the centre line.
type TakeoutZone string

const (
	ZoneCenter    TakeoutZone = "center"
	ZoneNearLeft  TakeoutZone = "near_left"
	ZoneNearRight TakeoutZone = "near_right"
	ZoneWideLeft  TakeoutZone = "wide_left"
	ZoneWideRight TakeoutZone = "wide_right"
)

// ZoneFor returns the zone for a lateral offset dx from the tee.
func ZoneFor(dx float64, g Geometry) TakeoutZone {
	radii := math.Abs(dx) / g.StoneRadius
	switch {
	case radii <= centerZoneRadii:
		return ZoneCenter
	case radii <= nearZoneRadii && dx > 0:
		return ZoneNearRight
	case radii <= nearZoneRadii:
		return ZoneNearLeft
	case dx > 0:
		return ZoneWideRight
	default:
		return ZoneWideLeft
	}
}

// takeoutAim returns the aim point and primary spin for a stone at p.
func takeoutAim(p Vec2, g Geometry) (Vec2, Spin) {
	switch ZoneFor(p.X-g.Tee.X, g) {
	case ZoneNearRight:
		return p, Clockwise
	case ZoneNearLeft:
		return p, CounterClockwise
	case ZoneWideRight:
		return NewVec2(p.X-g.StoneRadius/2, p.Y), Clockwise
	case ZoneWideLeft:
		return NewVec2(p.X+g.StoneRadius/2, p.Y), CounterClockwise
	default:
		return p, CounterClockwise
	}
}

// CandidateGenerator maps a ranking to an ordered list of shot proposals.
// Order matters: the selector keeps the earliest of equally scored shots.
type CandidateGenerator struct {
	Geometry Geometry
}

// Generate never returns an empty list.
func (cg CandidateGenerator) Generate(b *Board, ranking []StoneRef) []ShotCandidate {
	g := cg.Geometry
	guardY := g.Front.Y - g.GuardOffset

	switch ClassifyBoard(ranking, b.ActingTeam, g) {
	case StateOwnLead:
		lead, _ := b.Position(ranking[0].Team, ranking[0].Index)
		return []ShotCandidate{
			{Kind: KindGuard, Target: NewVec2(lead.X, guardY), Speed: 0, Spin: CounterClockwise},
			{Kind: KindGuard, Target: NewVec2(lead.X, guardY), Speed: 0, Spin: Clockwise},
			{Kind: KindGuard, Target: NewVec2(lead.X, guardY-g.GuardOffset), Speed: 0, Spin: CounterClockwise},
		}

	case StateOpponentLead:
		shot, _ := b.Position(ranking[0].Team, ranking[0].Index)
		aim, spin := takeoutAim(shot, g)
		return []ShotCandidate{
			{Kind: KindTakeout, Target: aim, Speed: takeoutSpeed, Spin: spin},
			{Kind: KindTakeout, Target: aim, Speed: hardTakeoutSpeed, Spin: spin},
			{Kind: KindTakeout, Target: aim, Speed: takeoutSpeed, Spin: spin.Opposite()},
		}

	default:
		return []ShotCandidate{
			{Kind: KindDraw, Target: g.Tee, Speed: 0, Spin: CounterClockwise},
			{Kind: KindDraw, Target: g.Tee, Speed: 0, Spin: Clockwise},
			{Kind: KindGuard, Target: NewVec2(g.Tee.X, guardY), Speed: 0, Spin: CounterClockwise},
		}
	}
}
