package toolpath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"drillcam/pkg/excellon"
	"drillcam/pkg/gcode"
	"drillcam/pkg/geometry"
)

func renderedText(p gcode.Program) string {
	return string(gcode.Render(p))
}

func TestSlotWideUsesOffsetRouting(t *testing.T) {
	params := testParams()
	params.BitDiameter = 0.6

	var offsetDistances []float64
	offset := func(ring geometry.Polygon, d float64) []geometry.Polygon {
		offsetDistances = append(offsetDistances, d)
		return geometry.Offset(ring, d)
	}

	r := NewRouter(params, offset, zap.NewNop())
	prog := r.Slot(excellon.Slot{StartX: 10, StartY: 0, EndX: 20, EndY: 0, Diameter: 0.8})

	require.Len(t, offsetDistances, 1)
	assert.InDelta(t, -0.3, offsetDistances[0], 1e-9)
	assert.NotEmpty(t, motionCommands(prog))
	assert.NotContains(t, renderedText(prog), "WARNING")
}

func TestSlotNarrowUsesCenterline(t *testing.T) {
	params := testParams() // bit 1.0
	offsetCalled := false
	offset := func(ring geometry.Polygon, d float64) []geometry.Polygon {
		offsetCalled = true
		return geometry.Offset(ring, d)
	}

	r := NewRouter(params, offset, zap.NewNop())
	prog := r.Slot(excellon.Slot{StartX: 0, StartY: 0, EndX: 5, EndY: 0, Diameter: 0.8})

	assert.False(t, offsetCalled, "narrow slot should not build an offset polygon")

	// Multi-pass centerline: 4 passes alternating between the endpoints.
	moves := motionCommands(prog)
	descents := 0
	for _, c := range moves {
		if c.Kind == gcode.Linear && c.HasZ {
			descents++
		}
	}
	assert.Equal(t, 4, descents)
}

func TestSlotOffsetVanishedFallsBack(t *testing.T) {
	params := testParams()
	params.BitDiameter = 0.6
	offset := func(geometry.Polygon, float64) []geometry.Polygon { return nil }

	r := NewRouter(params, offset, zap.NewNop())
	prog := r.Slot(excellon.Slot{StartX: 0, StartY: 0, EndX: 5, EndY: 0, Diameter: 0.8})

	text := renderedText(prog)
	assert.Contains(t, text, "WARNING")
	assert.NotEmpty(t, motionCommands(prog), "fallback must still cut the centerline")
}

func TestSlotZeroLengthBecomesHole(t *testing.T) {
	r := NewRouter(testParams(), nil, zap.NewNop())
	prog := r.Slot(excellon.Slot{StartX: 3, StartY: 3, EndX: 3, EndY: 3, Diameter: 0.8})

	// 0.8 <= 1.0 bit: a plain straight plunge at the point.
	moves := motionCommands(prog)
	require.Len(t, moves, 4)
	assert.Equal(t, 3.0, moves[0].X)
	assert.Equal(t, 3.0, moves[0].Y)
}

func TestOutlinesLargestContourOffsetOutward(t *testing.T) {
	params := testParams()

	var calls []struct {
		area float64
		d    float64
	}
	offset := func(ring geometry.Polygon, d float64) []geometry.Polygon {
		calls = append(calls, struct {
			area float64
			d    float64
		}{ring.Area(), d})
		return geometry.Offset(ring, d)
	}

	board := geometry.Polygon{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 80}, {X: 0, Y: 80}}
	cutout := geometry.Polygon{{X: 40, Y: 40}, {X: 60, Y: 40}, {X: 60, Y: 50}, {X: 40, Y: 50}}

	r := NewRouter(params, offset, zap.NewNop())
	prog := r.Outlines([]geometry.Polygon{cutout, board})

	require.Len(t, calls, 2)
	// The small cutout comes first in parse order but is offset inward; the
	// board boundary is the largest area and goes outward.
	assert.InDelta(t, 200.0, calls[0].area, 1e-6)
	assert.InDelta(t, -0.5, calls[0].d, 1e-9)
	assert.InDelta(t, 8000.0, calls[1].area, 1e-6)
	assert.InDelta(t, 0.5, calls[1].d, 1e-9)
	assert.NotEmpty(t, motionCommands(prog))
}

func TestOutlinesVanishedContourSkippedWithWarning(t *testing.T) {
	offset := func(geometry.Polygon, float64) []geometry.Polygon { return nil }
	r := NewRouter(testParams(), offset, zap.NewNop())

	prog := r.Outlines([]geometry.Polygon{{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}})
	assert.Empty(t, motionCommands(prog))
	assert.True(t, strings.Contains(renderedText(prog), "WARNING"))
}

func TestRouteContourDepthStepping(t *testing.T) {
	r := NewRouter(testParams(), nil, zap.NewNop())
	ring := geometry.Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	prog := r.routeContour(ring)

	descents := 0
	for _, c := range prog {
		if c.Kind == gcode.Linear && c.HasZ {
			descents++
			assert.Equal(t, 0.0, c.X)
			assert.Equal(t, 0.0, c.Y)
		}
	}
	// Same multi-pass stepping as spiral milling: depth 2.0 -> 4 passes.
	assert.Equal(t, 4, descents)

	// Each pass closes back to the ring's first point.
	closures := 0
	for _, c := range prog {
		if c.Kind == gcode.Linear && !c.HasZ && c.X == 0 && c.Y == 0 {
			closures++
		}
	}
	assert.Equal(t, 4, closures)
}
