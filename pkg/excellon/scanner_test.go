package excellon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func scanString(t *testing.T, content string) *Result {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.drl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	res, err := NewScanner(zap.NewNop()).ScanFile(path)
	require.NoError(t, err)
	return res
}

func TestScanMetricLeadingZero(t *testing.T) {
	res := scanString(t, `M48
;FILE_FORMAT=3:3
METRIC,LZ
T01C0.300
%
T01
X001000Y001000
X002000
Y003000
M30
`)

	require.Len(t, res.Holes, 3)
	assert.InDelta(t, 1.0, res.Holes[0].X, 1e-9)
	assert.InDelta(t, 1.0, res.Holes[0].Y, 1e-9)
	assert.InDelta(t, 0.3, res.Holes[0].Diameter, 1e-9)

	// Component-wise position updates: X-only keeps Y, Y-only keeps X.
	assert.InDelta(t, 2.0, res.Holes[1].X, 1e-9)
	assert.InDelta(t, 1.0, res.Holes[1].Y, 1e-9)
	assert.InDelta(t, 2.0, res.Holes[2].X, 1e-9)
	assert.InDelta(t, 3.0, res.Holes[2].Y, 1e-9)
}

func TestScanImperialConversion(t *testing.T) {
	res := scanString(t, `M48
;FILE_FORMAT=2:4
INCH,TZ
T01C0.0100
%
T01
X10000Y20000
`)

	require.Len(t, res.Holes, 1)
	assert.InDelta(t, 0.254, res.Holes[0].Diameter, 1e-9)
	assert.InDelta(t, 25.4, res.Holes[0].X, 1e-9)
	assert.InDelta(t, 50.8, res.Holes[0].Y, 1e-9)
}

func TestScanNoToolSelected(t *testing.T) {
	res := scanString(t, `;FILE_FORMAT=3:3
METRIC,LZ
T01C0.300
X001000Y001000
`)
	// Coordinates without an active tool update position but drill nothing.
	assert.Empty(t, res.Holes)
}

func TestScanMalformedToolDiameter(t *testing.T) {
	res := scanString(t, `METRIC,LZ
T01C0.3.0.0
T02C1.000
T02
X001000Y001000
`)
	assert.NotContains(t, res.Tools, "T01")
	require.Contains(t, res.Tools, "T02")
	require.Len(t, res.Holes, 1)
	assert.InDelta(t, 1.0, res.Holes[0].Diameter, 1e-9)
}

func TestScanSlotPair(t *testing.T) {
	res := scanString(t, `;FILE_FORMAT=3:3
METRIC,LZ
T01C0.800
%
T01
G00X010000Y000000
G01X020000Y000000
`)

	assert.Empty(t, res.Holes)
	require.Len(t, res.Slots, 1)
	s := res.Slots[0]
	assert.InDelta(t, 10.0, s.StartX, 1e-9)
	assert.InDelta(t, 0.0, s.StartY, 1e-9)
	assert.InDelta(t, 20.0, s.EndX, 1e-9)
	assert.InDelta(t, 0.0, s.EndY, 1e-9)
	assert.InDelta(t, 0.8, s.Diameter, 1e-9)
}

func TestScanSlotPairBrokenByDrillHit(t *testing.T) {
	res := scanString(t, `;FILE_FORMAT=3:3
METRIC,LZ
T01C0.800
T01
G00X010000Y000000
X005000Y005000
G01X020000Y000000
`)

	// The drill hit between the rapid and the linear move consumes the
	// pending mark, so no slot is produced.
	assert.Empty(t, res.Slots)
	assert.Len(t, res.Holes, 1)
}

func TestScanUnrecognizedLinesIgnored(t *testing.T) {
	res := scanString(t, `M48
FMAT,2
garbage line here
%
M30
`)
	assert.Empty(t, res.Holes)
	assert.Empty(t, res.Slots)
}

func TestScanMissingFileIsFatal(t *testing.T) {
	_, err := NewScanner(zap.NewNop()).ScanFile(filepath.Join(t.TempDir(), "nope.drl"))
	require.Error(t, err)
}

func TestDedupHoles(t *testing.T) {
	log := zap.NewNop()

	holes := []Hole{
		{X: 1, Y: 1, Diameter: 0.3},
		{X: 5, Y: 5, Diameter: 0.3},
		{X: 1, Y: 1, Diameter: 0.3},   // exact duplicate
		{X: 1, Y: 1, Diameter: 0.6},   // same spot, different tool: kept
		{X: 1.005, Y: 1, Diameter: 0.3}, // within tolerance: duplicate
	}
	out := DedupHoles(holes, log)
	require.Len(t, out, 3)
	assert.Equal(t, holes[0], out[0])
	assert.Equal(t, holes[1], out[1])
	assert.Equal(t, holes[3], out[2])
}
