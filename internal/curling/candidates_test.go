package curling

import "testing"

func TestClassifyBoard(t *testing.T) {
	g := DefaultGeometry()

	empty := &Board{}
	if got := ClassifyBoard(RankStones(empty, g.Tee), Team0, g); got != StateEmptyHouse {
		t.Errorf("empty board: expected %s, got %s", StateEmptyHouse, got)
	}

	// Outside house radius + stone radius does not count.
	far := &Board{}
	far.Stones[Team1][0] = at(0, TeeLineY+g.HouseRadius+g.StoneRadius+0.01)
	if got := ClassifyBoard(RankStones(far, g.Tee), Team0, g); got != StateEmptyHouse {
		t.Errorf("stone beyond the house: expected %s, got %s", StateEmptyHouse, got)
	}

	b := &Board{}
	b.Stones[Team0][0] = at(0, TeeLineY+0.1)
	b.Stones[Team1][0] = at(0, TeeLineY+0.5)
	ranking := RankStones(b, g.Tee)
	if got := ClassifyBoard(ranking, Team0, g); got != StateOwnLead {
		t.Errorf("expected %s for team 0, got %s", StateOwnLead, got)
	}
	if got := ClassifyBoard(ranking, Team1, g); got != StateOpponentLead {
		t.Errorf("expected %s for team 1, got %s", StateOpponentLead, got)
	}
}

func TestGenerateEmptyHouse(t *testing.T) {
	g := DefaultGeometry()
	b := &Board{}
	cands := CandidateGenerator{Geometry: g}.Generate(b, RankStones(b, g.Tee))

	if len(cands) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(cands))
	}
	first := cands[0]
	if first.Kind != KindDraw || first.Target != g.Tee || first.Speed != 0 || first.Spin != CounterClockwise {
		t.Errorf("unexpected first candidate %s", first)
	}
	if cands[1].Spin != Clockwise {
		t.Errorf("second draw should be clockwise, got %s", cands[1])
	}
	if cands[2].Kind != KindGuard || cands[2].Target.Y >= g.Front.Y {
		t.Errorf("third candidate should be a guard in front of the house, got %s", cands[2])
	}
}

func TestGenerateOwnLeadNeverTakesOut(t *testing.T) {
	g := DefaultGeometry()
	b := &Board{ActingTeam: Team1}
	b.Stones[Team1][0] = at(0.1, TeeLineY-0.05)

	cands := CandidateGenerator{Geometry: g}.Generate(b, RankStones(b, g.Tee))
	if len(cands) == 0 {
		t.Fatal("no candidates")
	}
	for _, c := range cands {
		if c.Kind != KindGuard {
			t.Errorf("own lead produced %s", c)
		}
		if c.Target.X != 0.1 {
			t.Errorf("guard should line up with the lead stone: %s", c)
		}
		if c.Target.Y >= g.Front.Y {
			t.Errorf("guard should sit in front of the house: %s", c)
		}
	}
}

func TestGenerateOpponentLeadNearRight(t *testing.T) {
	g := DefaultGeometry()
	b := &Board{ActingTeam: Team0}
	b.Stones[Team1][0] = at(0.3, TeeLineY)

	cands := CandidateGenerator{Geometry: g}.Generate(b, RankStones(b, g.Tee))
	if len(cands) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(cands))
	}
	first := cands[0]
	if first.Kind != KindTakeout || first.Spin != Clockwise || first.Target != NewVec2(0.3, TeeLineY) {
		t.Errorf("unexpected primary takeout %s", first)
	}
	if first.Speed != 3.0 || cands[1].Speed != 4.0 {
		t.Errorf("unexpected takeout speeds %v, %v", first.Speed, cands[1].Speed)
	}
	if cands[2].Spin != CounterClockwise {
		t.Errorf("last candidate should try the other spin, got %s", cands[2])
	}
}

func TestTakeoutZones(t *testing.T) {
	g := DefaultGeometry()
	R := g.StoneRadius

	tests := []struct {
		dx      float64
		zone    TakeoutZone
		spin    Spin
		targetX float64
	}{
		{0, ZoneCenter, CounterClockwise, 0},
		{R, ZoneCenter, CounterClockwise, R},
		{-2 * R, ZoneNearLeft, CounterClockwise, -2 * R},
		{2 * R, ZoneNearRight, Clockwise, 2 * R},
		{5 * R, ZoneWideRight, Clockwise, 5*R - R/2},
		{-5 * R, ZoneWideLeft, CounterClockwise, -5*R + R/2},
	}
	for _, tt := range tests {
		if got := ZoneFor(tt.dx, g); got != tt.zone {
			t.Errorf("dx=%.3f: expected zone %s, got %s", tt.dx, tt.zone, got)
		}
		aim, spin := takeoutAim(NewVec2(tt.dx, TeeLineY), g)
		if spin != tt.spin {
			t.Errorf("dx=%.3f: expected spin %s, got %s", tt.dx, tt.spin, spin)
		}
		if aim.X != tt.targetX || aim.Y != TeeLineY {
			t.Errorf("dx=%.3f: expected aim x=%.4f, got %+v", tt.dx, tt.targetX, aim)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	g := DefaultGeometry()
	b := &Board{ActingTeam: Team0}
	b.Stones[Team1][4] = at(-0.6, TeeLineY+0.2)

	gen := CandidateGenerator{Geometry: g}
	a := gen.Generate(b, RankStones(b, g.Tee))
	c := gen.Generate(b, RankStones(b, g.Tee))
	for i := range a {
		if a[i] != c[i] {
			t.Errorf("candidate %d differs between runs: %s vs %s", i, a[i], c[i])
		}
		if !a[i].Target.IsFinite() {
			t.Errorf("candidate %d has non-finite target", i)
		}
	}
}
