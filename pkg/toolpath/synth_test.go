package toolpath

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"drillcam/pkg/gcode"
)

func testParams() Params {
	return Params{
		BitDiameter:     1.0,
		DrillDepth:      2.0,
		FeedRate:        100,
		PlungeRate:      50,
		SpindleSpeed:    10000,
		SafeHeight:      5,
		ClearanceHeight: 2,
	}
}

func motionCommands(p gcode.Program) []gcode.Command {
	var out []gcode.Command
	for _, c := range p {
		if c.IsMotion() {
			out = append(out, c)
		}
	}
	return out
}

func TestDepthPasses(t *testing.T) {
	tests := []struct {
		depth      float64
		wantPasses int
	}{
		{0.3, 1},
		{0.5, 1},
		{0.6, 2},
		{1.0, 2},
		{2.0, 4},
		{2.1, 5},
	}
	for _, test := range tests {
		n, step := depthPasses(test.depth)
		if n != test.wantPasses {
			t.Errorf("depthPasses(%v) passes = %d, want %d", test.depth, n, test.wantPasses)
		}
		if math.Abs(step*float64(n)-test.depth) > 1e-9 {
			t.Errorf("depthPasses(%v): step %v * passes %d != depth", test.depth, step, n)
		}
		if step > 0.5+1e-9 {
			t.Errorf("depthPasses(%v) step = %v, want <= 0.5", test.depth, step)
		}
	}
}

func TestHoleDispatchBoundary(t *testing.T) {
	s := NewSynthesizer(testParams(), zap.NewNop())

	// Exactly the bit diameter still plunges; the boundary is strict <=.
	plunge := s.Hole(1, 1, 1.0)
	if got := len(motionCommands(plunge)); got != 4 {
		t.Errorf("hole at bit diameter: %d motion commands, want 4 (straight plunge)", got)
	}

	mill := s.Hole(1, 1, 1.0001)
	if got := len(motionCommands(mill)); got <= 4 {
		t.Errorf("hole above bit diameter: %d motion commands, want a spiral block", got)
	}
}

func TestStraightPlungeShape(t *testing.T) {
	s := NewSynthesizer(testParams(), zap.NewNop())
	moves := motionCommands(s.StraightPlunge(1.0, 1.0))
	if len(moves) != 4 {
		t.Fatalf("straight plunge has %d motion commands, want 4", len(moves))
	}
	if moves[0].Kind != gcode.Rapid || moves[0].X != 1.0 || moves[0].Y != 1.0 {
		t.Errorf("move 0 = %+v, want rapid to hole", moves[0])
	}
	if moves[1].Kind != gcode.Rapid || moves[1].Z != 2 {
		t.Errorf("move 1 = %+v, want rapid to clearance", moves[1])
	}
	if moves[2].Kind != gcode.Linear || moves[2].Z != -2 || moves[2].Feed != 50 {
		t.Errorf("move 2 = %+v, want plunge to -depth at plunge rate", moves[2])
	}
	if moves[3].Kind != gcode.Rapid || moves[3].Z != 2 {
		t.Errorf("move 3 = %+v, want retract to clearance", moves[3])
	}
}

func TestSpiralMillFallbackOnDegenerateRadius(t *testing.T) {
	s := NewSynthesizer(testParams(), zap.NewNop())
	// Calling SpiralMill directly with a hole no wider than the bit must
	// degrade to a plunge regardless of dispatch.
	prog := s.SpiralMill(1, 1, 0.5)
	if got := len(motionCommands(prog)); got != 4 {
		t.Errorf("degenerate spiral: %d motion commands, want 4", got)
	}
}

func TestSpiralMillSegmented(t *testing.T) {
	s := NewSynthesizer(testParams(), zap.NewNop())
	// 3.0 mm hole, 1.0 mm bit, 2.0 mm depth: mill radius 1.0, 4 passes.
	prog := s.SpiralMill(1, 1, 3.0)

	var spiral []gcode.Command
	for _, c := range prog {
		if c.Kind == gcode.Linear && c.HasX && c.HasY {
			spiral = append(spiral, c)
		}
	}
	// Entry move to starting radius plus 4 passes of 37 segment points.
	// 3.0 > 2 * bit, so there is no return-to-center move.
	if len(spiral) != 1+4*37 {
		t.Fatalf("segmented spiral has %d XY linear moves, want %d", len(spiral), 1+4*37)
	}

	// First point of each pass carries the Z descent, the rest stay flat.
	descents := 0
	for _, c := range spiral[1:] {
		if c.HasZ {
			descents++
		}
	}
	if descents != 4 {
		t.Errorf("spiral has %d descending segments, want 4", descents)
	}

	// Every segment point is on the mill-radius circle around the center.
	for i, c := range spiral[1:] {
		r := math.Hypot(c.X-1, c.Y-1)
		if math.Abs(r-1.0) > 1e-9 {
			t.Errorf("segment %d at radius %v, want 1.0", i, r)
		}
	}

	deepest := 0.0
	for _, c := range spiral {
		if c.HasZ && c.Z < deepest {
			deepest = c.Z
		}
	}
	if math.Abs(deepest+2.0) > 1e-9 {
		t.Errorf("final pass depth = %v, want -2.0", deepest)
	}
}

func TestSpiralMillHelical(t *testing.T) {
	params := testParams()
	params.UseArcs = true
	s := NewSynthesizer(params, zap.NewNop())
	prog := s.SpiralMill(1, 1, 3.0)

	var arcs []gcode.Command
	for _, c := range prog {
		if c.Kind == gcode.ArcCW {
			arcs = append(arcs, c)
		}
	}
	if len(arcs) != 4 {
		t.Fatalf("helical spiral has %d arc commands, want 4 (one per pass)", len(arcs))
	}
	for i, arc := range arcs {
		wantZ := -0.5 * float64(i+1)
		if math.Abs(arc.Z-wantZ) > 1e-9 {
			t.Errorf("arc %d Z = %v, want %v", i, arc.Z, wantZ)
		}
		// Full circle: end point equals start radius point, I/J point back
		// at the hole center.
		if arc.X != 2.0 || arc.Y != 1.0 || arc.I != -1.0 || arc.J != 0.0 {
			t.Errorf("arc %d geometry = %+v", i, arc)
		}
	}
}

func TestSpiralMillReturnToCenter(t *testing.T) {
	s := NewSynthesizer(testParams(), zap.NewNop())

	hasReturn := func(p gcode.Program) bool {
		for _, c := range p {
			if c.Annotation == "Return to center" {
				return true
			}
		}
		return false
	}

	// 1.8 <= 2 * 1.0: the remaining web is thin, returning is safe.
	if !hasReturn(s.SpiralMill(0, 0, 1.8)) {
		t.Errorf("small hole should return to center before retracting")
	}
	// 3.0 > 2 * 1.0: must retract in place instead of dragging across stock.
	if hasReturn(s.SpiralMill(0, 0, 3.0)) {
		t.Errorf("large hole must not return to center")
	}
}
