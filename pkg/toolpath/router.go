package toolpath

import (
	"fmt"

	"go.uber.org/zap"

	"drillcam/pkg/cfg"
	"drillcam/pkg/excellon"
	"drillcam/pkg/gcode"
	"drillcam/pkg/geometry"
)

// OffsetFunc is the polygon-offset collaborator: positive distance grows the
// ring, negative shrinks it, joins are mitred. An empty result is a valid
// outcome (the ring vanished) that callers resolve by fallback.
type OffsetFunc func(ring geometry.Polygon, distance float64) []geometry.Polygon

// Router cuts slots and board outlines by following bit-radius-compensated
// contours with the same multi-pass depth stepping as spiral milling.
type Router struct {
	params Params
	offset OffsetFunc
	synth  *Synthesizer
	log    *zap.Logger
}

func NewRouter(params Params, offset OffsetFunc, log *zap.Logger) *Router {
	if offset == nil {
		offset = geometry.Offset
	}
	return &Router{
		params: params,
		offset: offset,
		synth:  NewSynthesizer(params, log),
		log:    log,
	}
}

// Slot routes one slot. Wide slots (wider than the bit) get an inward-offset
// contour of their round-capped rectangle; narrow ones are cut straight down
// the centerline, where the bit already spans the full width.
func (r *Router) Slot(s excellon.Slot) gcode.Program {
	start := geometry.Point{X: s.StartX, Y: s.StartY}
	end := geometry.Point{X: s.EndX, Y: s.EndY}

	if start.Distance(end) < 1e-9 {
		// Zero-length slot degenerates to a hole of the slot's width.
		r.log.Warn("zero-length slot, drilling as hole",
			zap.Float64("x", s.StartX), zap.Float64("y", s.StartY))
		return r.synth.Hole(s.StartX, s.StartY, s.Diameter)
	}

	note := fmt.Sprintf("Slot: dia %.4f mm from X%.4f Y%.4f to X%.4f Y%.4f",
		s.Diameter, s.StartX, s.StartY, s.EndX, s.EndY)

	if s.Diameter <= r.params.BitDiameter {
		prog := gcode.Program{gcode.Comment(note)}
		return append(prog, r.centerline(start, end)...)
	}

	ring := geometry.SlotPolygon(start, end, s.Diameter, cfg.SegmentsPerCircle/2)
	contours := r.offset(ring, -r.params.BitRadius())
	if len(contours) == 0 {
		r.log.Warn("slot offset vanished, falling back to centerline routing",
			zap.Float64("diameter_mm", s.Diameter))
		prog := gcode.Program{
			gcode.Comment(note),
			gcode.Comment("WARNING: offset failed, centerline fallback"),
		}
		return append(prog, r.centerline(start, end)...)
	}

	prog := gcode.Program{gcode.Comment(note)}
	for _, contour := range contours {
		prog = append(prog, r.routeContour(contour)...)
	}
	return prog
}

// Outlines routes the parsed outline contours. The contour enclosing the
// largest area is the board's outer boundary and is offset outward; all
// others are treated as inner boundaries and offset inward.
func (r *Router) Outlines(contours []geometry.Polygon) gcode.Program {
	if len(contours) == 0 {
		return nil
	}

	outer := 0
	largest := contours[0].Area()
	for i, c := range contours[1:] {
		if a := c.Area(); a > largest {
			largest = a
			outer = i + 1
		}
	}

	var prog gcode.Program
	for i, contour := range contours {
		distance := -r.params.BitRadius()
		kind := "inner"
		if i == outer {
			distance = r.params.BitRadius()
			kind = "outer"
		}
		rings := r.offset(contour, distance)
		if len(rings) == 0 {
			r.log.Warn("outline contour vanished after offset, skipping",
				zap.String("kind", kind), zap.Int("index", i))
			prog = append(prog, gcode.Comment("WARNING: outline contour skipped, offset vanished"))
			continue
		}
		prog = append(prog, gcode.Comment(fmt.Sprintf("Outline %s contour %d", kind, i)))
		for _, ring := range rings {
			prog = append(prog, r.routeContour(ring)...)
		}
	}
	return prog
}

// routeContour follows a closed ring at full depth in multiple passes. Each
// pass descends on the way to the ring's first point, then traces the ring
// flat at that depth.
func (r *Router) routeContour(ring geometry.Polygon) gcode.Program {
	if len(ring) == 0 {
		return nil
	}
	first := ring[0]
	prog := gcode.Program{
		gcode.RapidXY(first.X, first.Y).WithNote("Move to contour start"),
		gcode.RapidZ(r.params.ClearanceHeight).WithNote("Move to clearance height"),
	}

	numPasses, zStep := depthPasses(r.params.DrillDepth)
	z := 0.0
	for pass := 0; pass < numPasses; pass++ {
		z -= zStep
		prog = append(prog, gcode.LinearXYZ(first.X, first.Y, z, r.params.PlungeRate))
		for _, p := range ring[1:] {
			prog = append(prog, gcode.LinearXY(p.X, p.Y, r.params.FeedRate))
		}
		prog = append(prog, gcode.LinearXY(first.X, first.Y, r.params.FeedRate))
	}

	prog = append(prog,
		gcode.RapidZ(r.params.ClearanceHeight).WithNote("Retract"),
		gcode.Blank(),
	)
	return prog
}

// centerline cuts back and forth between the two slot endpoints, stepping
// down between passes. No interior clearing happens beyond the bit's own
// width.
func (r *Router) centerline(start, end geometry.Point) gcode.Program {
	prog := gcode.Program{
		gcode.RapidXY(start.X, start.Y).WithNote("Move to slot start"),
		gcode.RapidZ(r.params.ClearanceHeight).WithNote("Move to clearance height"),
	}

	numPasses, zStep := depthPasses(r.params.DrillDepth)
	z := 0.0
	from, to := start, end
	for pass := 0; pass < numPasses; pass++ {
		z -= zStep
		prog = append(prog, gcode.LinearXYZ(from.X, from.Y, z, r.params.PlungeRate))
		prog = append(prog, gcode.LinearXY(to.X, to.Y, r.params.FeedRate))
		from, to = to, from
	}

	prog = append(prog,
		gcode.RapidZ(r.params.ClearanceHeight).WithNote("Retract"),
		gcode.Blank(),
	)
	return prog
}
