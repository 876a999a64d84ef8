package gcode

import "math"

// NormalizeOrigin shifts the whole program so that the smallest X and Y used
// by any motion command become zero. Z, arc center offsets, feeds, and command
// order are untouched; comment and word lines are ignored when computing the
// minimum. Applying it twice is a no-op.
func NormalizeOrigin(p Program) Program {
	minX := math.Inf(1)
	minY := math.Inf(1)
	for _, c := range p {
		if !c.IsMotion() {
			continue
		}
		if c.HasX && c.X < minX {
			minX = c.X
		}
		if c.HasY && c.Y < minY {
			minY = c.Y
		}
	}
	if math.IsInf(minX, 1) {
		minX = 0
	}
	if math.IsInf(minY, 1) {
		minY = 0
	}
	if minX == 0 && minY == 0 {
		return p
	}

	out := make(Program, len(p))
	for i, c := range p {
		if c.IsMotion() {
			if c.HasX {
				c.X -= minX
			}
			if c.HasY {
				c.Y -= minY
			}
		}
		out[i] = c
	}
	return out
}
