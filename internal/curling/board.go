package curling

import (
	"fmt"
	"math"
	"sort"
)

// Team identifies one of the two sides.
type Team int

const (
	Team0 Team = 0
	Team1 Team = 1
)

// Opponent returns the other team.
func (t Team) Opponent() Team {
	return 1 - t
}

func (t Team) Valid() bool {
	return t == Team0 || t == Team1
}

// StoneID addresses a stone by team and slot.
type StoneID struct {
	Team  Team `json:"team"`
	Index int  `json:"index"`
}

// Flat returns the stone's index in a 16-entry position array.
func (id StoneID) Flat() int {
	return int(id.Team)*StonesPerTeam + id.Index
}

// Board is the immutable per-turn snapshot handed to the planner. A nil
// position means the stone is out of play or not yet thrown.
type Board struct {
	Stones     [NumTeams][StonesPerTeam]*Vec2 `json:"stones"`
	ActingTeam Team                           `json:"acting_team"`
	Shot       int                            `json:"shot"`
	End        int                            `json:"end"`
}

// Validate checks the snapshot's identity fields.
func (b *Board) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil board", ErrInvalidInput)
	}
	if !b.ActingTeam.Valid() {
		return fmt.Errorf("%w: acting team %d", ErrInvalidInput, b.ActingTeam)
	}
	if b.Shot < 0 || b.Shot >= NumStones {
		return fmt.Errorf("%w: shot %d out of range", ErrInvalidInput, b.Shot)
	}
	return nil
}

// Position returns the stone's position, or false when it is out of play.
func (b *Board) Position(team Team, idx int) (Vec2, bool) {
	if !team.Valid() || idx < 0 || idx >= StonesPerTeam {
		return Vec2{}, false
	}
	p := b.Stones[team][idx]
	if p == nil || !p.IsFinite() {
		return Vec2{}, false
	}
	return *p, true
}

// Positions flattens the board to team 0 slots 0..7 followed by team 1,
// absent stones as NaN.
func (b *Board) Positions() [NumStones]Vec2 {
	var out [NumStones]Vec2
	for team := Team0; team <= Team1; team++ {
		for idx := 0; idx < StonesPerTeam; idx++ {
			id := StoneID{Team: team, Index: idx}
			if p, ok := b.Position(team, idx); ok {
				out[id.Flat()] = p
			} else {
				out[id.Flat()] = Absent
			}
		}
	}
	return out
}

// Shooter returns the slot of the stone about to be delivered.
func (b *Board) Shooter() StoneID {
	return StoneID{Team: b.ActingTeam, Index: b.Shot / NumTeams}
}

// StoneRef is an ephemeral ranking record.
type StoneRef struct {
	Team     Team    `json:"team"`
	Index    int     `json:"index"`
	Distance float64 `json:"distance"`
}

// InPlay reports whether the referenced stone has a position.
func (r StoneRef) InPlay() bool {
	return !math.IsInf(r.Distance, 1)
}

// RankStones sorts every stone by distance to target. Absent stones get +Inf
// and sort last; equal distances keep enumeration order.
func RankStones(b *Board, target Vec2) []StoneRef {
	refs := make([]StoneRef, 0, NumStones)
	for team := Team0; team <= Team1; team++ {
		for idx := 0; idx < StonesPerTeam; idx++ {
			dist := math.Inf(1)
			if p, ok := b.Position(team, idx); ok {
				dist = p.DistanceTo(target)
			}
			refs = append(refs, StoneRef{Team: team, Index: idx, Distance: dist})
		}
	}
	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].Distance < refs[j].Distance
	})
	return refs
}
