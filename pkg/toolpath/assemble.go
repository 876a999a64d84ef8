package toolpath

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"drillcam/pkg/cfg"
	"drillcam/pkg/excellon"
	"drillcam/pkg/gcode"
	"drillcam/pkg/geometry"
)

// ErrNoPrimitives means the inputs contained nothing to machine; no output
// file should be produced.
var ErrNoPrimitives = errors.New("no drill holes, slots, or outline contours found")

// Assembler concatenates the program header, one motion block per primitive,
// and the footer. Holes come first in file order, then slots, then outline
// contours.
type Assembler struct {
	params Params
	synth  *Synthesizer
	router *Router
	log    *zap.Logger
}

func NewAssembler(params Params, offset OffsetFunc, log *zap.Logger) *Assembler {
	return &Assembler{
		params: params,
		synth:  NewSynthesizer(params, log),
		router: NewRouter(params, offset, log),
		log:    log,
	}
}

// Assemble builds the complete program for a scan result plus any outline
// contours.
func (a *Assembler) Assemble(inputName string, res *excellon.Result, outlines []geometry.Polygon) (gcode.Program, error) {
	if len(res.Holes) == 0 && len(res.Slots) == 0 && len(outlines) == 0 {
		return nil, ErrNoPrimitives
	}

	prog := a.header(inputName, len(res.Holes))

	drilled, milled := 0, 0
	for _, h := range res.Holes {
		if h.Diameter <= a.params.BitDiameter {
			drilled++
		} else {
			milled++
		}
		prog = append(prog, a.synth.Hole(h.X, h.Y, h.Diameter)...)
	}
	for _, s := range res.Slots {
		prog = append(prog, a.router.Slot(s)...)
	}
	prog = append(prog, a.router.Outlines(outlines)...)

	prog = append(prog, a.footer()...)

	a.log.Info("program assembled",
		zap.Int("straight_drilled", drilled),
		zap.Int("spiral_milled", milled),
		zap.Int("slots", len(res.Slots)),
		zap.Int("outline_contours", len(outlines)))
	return prog, nil
}

func (a *Assembler) header(inputName string, holes int) gcode.Program {
	return gcode.Program{
		gcode.Comment("Generated by drillcam"),
		gcode.Comment(fmt.Sprintf("Input file: %s", inputName)),
		gcode.Comment(fmt.Sprintf("Bit size: %g mm", a.params.BitDiameter)),
		gcode.Comment(fmt.Sprintf("Drill depth: %g mm", a.params.DrillDepth)),
		gcode.Comment(fmt.Sprintf("Total holes: %d", holes)),
		gcode.Blank(),
		gcode.Literal("G21").WithNote("Metric units"),
		gcode.Literal("G90").WithNote("Absolute positioning"),
		gcode.Literal("G94").WithNote("Feed per minute mode"),
		gcode.Literal(fmt.Sprintf("M3 S%d", a.params.SpindleSpeed)).WithNote("Start spindle clockwise"),
		gcode.Literal(fmt.Sprintf("G4 P%.1f", cfg.SpindleDwellSeconds)).WithNote("Pause for spindle to reach speed"),
		gcode.Blank(),
		gcode.RapidZ(a.params.SafeHeight).WithNote("Move to safe height"),
		gcode.Blank(),
	}
}

func (a *Assembler) footer() gcode.Program {
	return gcode.Program{
		gcode.Blank(),
		gcode.RapidZ(a.params.SafeHeight).WithNote("Return to safe height"),
		gcode.Literal("M5").WithNote("Stop spindle"),
		gcode.Literal("M2").WithNote("End program"),
		gcode.Blank(),
	}
}
