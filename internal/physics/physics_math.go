package physics

import "github.com/curlfighter/backend/internal/curling"

// checkStonesConverging returns true if two stones are moving toward each other.
func checkStonesConverging(posA, posB, velA, velB curling.Vec2) bool {
	relVel := velB.Minus(velA)
	direction := posB.Minus(posA)
	return relVel.Dot(direction) < 0
}

// separateOverlap pushes two overlapping stones apart along the line of
// centres so they just touch.
func separateOverlap(a, b *Stone, contact float64) {
	delta := b.Position.Minus(a.Position)
	dist := delta.Magnitude()
	if dist >= contact || dist == 0 {
		return
	}
	push := delta.Normalize().Times((contact - dist) / 2)
	a.Position = a.Position.Minus(push)
	b.Position = b.Position.Plus(push)
}
