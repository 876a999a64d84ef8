// Package toolpath turns geometric primitives plus machining parameters into
// ordered motion programs.
package toolpath

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"drillcam/pkg/cfg"
	"drillcam/pkg/gcode"
)

// Params is the immutable machining configuration for a whole conversion run.
// All lengths are millimeters, feeds are mm/min.
type Params struct {
	BitDiameter     float64
	DrillDepth      float64
	FeedRate        float64
	PlungeRate      float64
	SpindleSpeed    int
	SafeHeight      float64
	ClearanceHeight float64
	UseArcs         bool
}

// BitRadius returns half the bit diameter.
func (p Params) BitRadius() float64 {
	return p.BitDiameter / 2
}

// Synthesizer builds per-primitive motion blocks.
type Synthesizer struct {
	params Params
	log    *zap.Logger
}

func NewSynthesizer(params Params, log *zap.Logger) *Synthesizer {
	return &Synthesizer{params: params, log: log}
}

// depthPasses splits the drill depth into equal passes of at most
// cfg.ZStepPerPass each. Recomputing the step from the pass count means the
// passes divide the depth exactly, with no fractional leftover pass.
func depthPasses(depth float64) (int, float64) {
	n := int(math.Ceil(depth / cfg.ZStepPerPass))
	if n < 1 {
		n = 1
	}
	return n, depth / float64(n)
}

// Hole selects the drilling strategy for one hole. Holes no wider than the
// bit are plunged straight; anything wider is spiral milled.
func (s *Synthesizer) Hole(x, y, diameter float64) gcode.Program {
	if diameter <= s.params.BitDiameter {
		return s.StraightPlunge(x, y)
	}
	return s.SpiralMill(x, y, diameter)
}

// StraightPlunge drills a hole with a single vertical plunge: four motion
// commands, fixed shape.
func (s *Synthesizer) StraightPlunge(x, y float64) gcode.Program {
	return gcode.Program{
		gcode.RapidXY(x, y).WithNote("Position over hole"),
		gcode.RapidZ(s.params.ClearanceHeight).WithNote("Move to clearance height"),
		gcode.LinearZ(-s.params.DrillDepth, s.params.PlungeRate).WithNote("Drill down"),
		gcode.RapidZ(s.params.ClearanceHeight).WithNote("Retract"),
		gcode.Blank(),
	}
}

// SpiralMill cuts a hole wider than the bit by spiralling the tool center
// around the hole at millRadius. Depending on Params.UseArcs each depth pass
// is either a 36-segment polygon or a single helical arc command.
func (s *Synthesizer) SpiralMill(x, y, diameter float64) gcode.Program {
	millRadius := diameter/2 - s.params.BitRadius()
	if millRadius <= 0 {
		// A zero or negative tool-center radius always falls back to a
		// plunge, even when called outside the Hole dispatch.
		prog := gcode.Program{gcode.Comment("Hole size <= bit size, using straight drill")}
		return append(prog, s.StraightPlunge(x, y)...)
	}

	numPasses, zStep := depthPasses(s.params.DrillDepth)

	note := fmt.Sprintf("Spiral mill hole: dia %.4f mm at X%.4f Y%.4f", diameter, x, y)
	if s.params.UseArcs {
		note = fmt.Sprintf("Spiral mill hole with arcs: dia %.4f mm at X%.4f Y%.4f", diameter, x, y)
	}

	startX := x + millRadius
	startY := y
	prog := gcode.Program{
		gcode.Comment(note),
		gcode.RapidXY(x, y).WithNote("Move to hole center"),
		gcode.RapidZ(s.params.ClearanceHeight).WithNote("Move to clearance height"),
		gcode.LinearXY(startX, startY, s.params.FeedRate).WithNote("Move to starting radius"),
	}

	if s.params.UseArcs {
		prog = append(prog, s.helicalPasses(x, y, startX, startY, numPasses, zStep)...)
	} else {
		prog = append(prog, s.segmentedPasses(x, y, millRadius, numPasses, zStep)...)
	}

	// With only a thin web of material left the return to center is safe;
	// in a larger hole it would drag the bit across uncut stock, so the
	// tool retracts from wherever it is.
	if diameter <= cfg.ReturnToCenterRatio*s.params.BitDiameter {
		prog = append(prog, gcode.LinearXY(x, y, s.params.FeedRate).WithNote("Return to center"))
	}
	prog = append(prog,
		gcode.RapidZ(s.params.ClearanceHeight).WithNote("Retract"),
		gcode.Blank(),
	)
	return prog
}

// segmentedPasses traces each depth pass as a closed polygon around the hole
// center. The first segment of a pass carries the Z descent, so the tool
// spirals down and then finishes a full flat circle at that depth.
func (s *Synthesizer) segmentedPasses(x, y, millRadius float64, numPasses int, zStep float64) gcode.Program {
	segments := cfg.SegmentsPerCircle
	angleStep := 2 * math.Pi / float64(segments)

	var prog gcode.Program
	z := 0.0
	for pass := 0; pass < numPasses; pass++ {
		z -= zStep
		for seg := 0; seg <= segments; seg++ {
			angle := float64(seg) * angleStep
			segX := x + millRadius*math.Cos(angle)
			segY := y + millRadius*math.Sin(angle)
			if seg == 0 {
				prog = append(prog, gcode.LinearXYZ(segX, segY, z, s.params.PlungeRate))
			} else {
				prog = append(prog, gcode.LinearXY(segX, segY, s.params.FeedRate))
			}
		}
	}
	return prog
}

// helicalPasses descends with one full-circle clockwise arc per pass: the
// same cut as segmentedPasses in a single helical interpolation command each.
func (s *Synthesizer) helicalPasses(x, y, startX, startY float64, numPasses int, zStep float64) gcode.Program {
	iOffset := x - startX
	jOffset := y - startY

	var prog gcode.Program
	z := 0.0
	for pass := 0; pass < numPasses; pass++ {
		z -= zStep
		prog = append(prog, gcode.Arc(true, startX, startY, true, z, iOffset, jOffset, s.params.PlungeRate))
	}
	return prog
}
