package excellon

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Hole is one drill position with its tool diameter, in millimeters.
type Hole struct {
	X        float64
	Y        float64
	Diameter float64
}

// Slot is an elongated hole encoded in the file as a rapid (tool up) move
// immediately followed by a linear (tool down) move.
type Slot struct {
	StartX   float64
	StartY   float64
	EndX     float64
	EndY     float64
	Diameter float64
}

// ToolTable maps tool identifiers like "T01" to diameters in millimeters.
type ToolTable map[string]float64

// Result holds everything a scan produced, in file order.
type Result struct {
	Holes []Hole
	Slots []Slot
	Tools ToolTable
}

// rapidMark remembers a pending machine-style rapid move that may be the
// first half of a slot pair.
type rapidMark struct {
	x, y     float64
	diameter float64
	hasDia   bool
}

// scanState is the mutable cross-line state threaded through the scan. It is
// owned exclusively by the scanner and never escapes it.
type scanState struct {
	tool    string
	x, y    float64 // current position, millimeters
	format  Format
	pending *rapidMark
}

// Scanner performs a single forward pass over an Excellon file.
type Scanner struct {
	log      *zap.Logger
	handlers []lineHandler
}

// lineHandler pairs a line classifier with its action. Handlers are tried in
// a fixed priority order; the first match consumes the line.
type lineHandler struct {
	name   string
	match  func(line string) bool
	handle func(s *scanState, line string, res *Result)
}

var (
	toolDefRe    = regexp.MustCompile(`^T(\d+).*C([\d.]+)`)
	toolSelectRe = regexp.MustCompile(`^T\d+$`)
)

// NewScanner builds a scanner logging recoverable parse problems to log.
func NewScanner(log *zap.Logger) *Scanner {
	s := &Scanner{log: log}
	s.handlers = []lineHandler{
		{name: "format-directive", match: isFormatDirective, handle: s.handleFormatDirective},
		{name: "comment", match: isComment, handle: func(*scanState, string, *Result) {}},
		{name: "mode-directive", match: isModeDirective, handle: s.handleModeDirective},
		{name: "tool-definition", match: isToolDefinition, handle: s.handleToolDefinition},
		{name: "tool-selection", match: isToolSelection, handle: s.handleToolSelection},
		{name: "rapid-move", match: isRapidMove, handle: s.handleRapidMove},
		{name: "linear-move", match: isLinearMove, handle: s.handleLinearMove},
		{name: "coordinate", match: isCoordinate, handle: s.handleCoordinate},
	}
	return s
}

// ScanFile reads and scans the file at path. A missing or unreadable file is
// the only fatal condition; every structural surprise inside the file
// degrades to a warning or a skipped line.
func (s *Scanner) ScanFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening drill file: %w", err)
	}
	defer f.Close()

	res := &Result{Tools: ToolTable{}}
	state := &scanState{format: DefaultFormat()}

	lines := bufio.NewScanner(f)
	for lines.Scan() {
		s.scanLine(state, strings.TrimSpace(lines.Text()), res)
	}
	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("reading drill file: %w", err)
	}

	s.logSummary(res)
	return res, nil
}

func (s *Scanner) scanLine(state *scanState, line string, res *Result) {
	if line == "" {
		return
	}
	for _, h := range s.handlers {
		if h.match(line) {
			h.handle(state, line, res)
			return
		}
	}
	// Unrecognized lines (M48, %, M30, ...) contribute no event.
}

// --- classifiers, in priority order ---

func isFormatDirective(line string) bool {
	return strings.HasPrefix(line, ";FILE_FORMAT=")
}

func isComment(line string) bool {
	return strings.HasPrefix(line, ";")
}

func isModeDirective(line string) bool {
	return containsAnyToken(line, "METRIC", "INCH", "LZ", "TZ")
}

func isToolDefinition(line string) bool {
	return strings.HasPrefix(line, "T") && strings.Contains(line, "C") &&
		!strings.HasPrefix(line, "TYPE")
}

func isToolSelection(line string) bool {
	return toolSelectRe.MatchString(line) && len(line) <= 4
}

func isRapidMove(line string) bool {
	return strings.HasPrefix(line, "G00")
}

func isLinearMove(line string) bool {
	return strings.HasPrefix(line, "G01")
}

func isCoordinate(line string) bool {
	return strings.HasPrefix(line, "X") || strings.HasPrefix(line, "Y")
}

func containsAnyToken(line string, tokens ...string) bool {
	for _, t := range tokens {
		if strings.Contains(line, t) {
			return true
		}
	}
	return false
}

// --- handlers ---

func (s *Scanner) handleFormatDirective(state *scanState, line string, _ *Result) {
	spec := strings.TrimPrefix(line, ";FILE_FORMAT=")
	parts := strings.Split(spec, ":")
	if len(parts) != 2 {
		s.log.Warn("malformed FILE_FORMAT directive", zap.String("line", line))
		return
	}
	intDigits, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	decDigits, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || intDigits < 0 || decDigits < 0 {
		s.log.Warn("malformed FILE_FORMAT directive", zap.String("line", line))
		return
	}
	state.format.IntegerDigits = intDigits
	state.format.DecimalDigits = decDigits
}

// handleModeDirective applies every unit and zero-suppression token present on
// the line; Excellon headers routinely combine them, e.g. "METRIC,LZ".
func (s *Scanner) handleModeDirective(state *scanState, line string, _ *Result) {
	if strings.Contains(line, "METRIC") {
		state.format.Unit = Metric
	} else if strings.Contains(line, "INCH") {
		state.format.Unit = Imperial
	}
	if strings.Contains(line, "LZ") {
		state.format.Zeros = LeadingZeroPresent
	} else if strings.Contains(line, "TZ") {
		state.format.Zeros = TrailingZeroPresent
	}
}

func (s *Scanner) handleToolDefinition(state *scanState, line string, res *Result) {
	m := toolDefRe.FindStringSubmatch(line)
	if m == nil {
		return
	}
	diameter, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		s.log.Warn("malformed tool diameter, skipping tool",
			zap.String("line", line), zap.String("diameter", m[2]))
		return
	}
	if state.format.Unit == Imperial {
		diameter *= MMPerInch
	}
	id := "T" + m[1]
	res.Tools[id] = diameter
	s.log.Debug("tool defined", zap.String("tool", id), zap.Float64("diameter_mm", diameter))
}

func (s *Scanner) handleToolSelection(state *scanState, line string, res *Result) {
	state.tool = line
	if _, ok := res.Tools[line]; !ok {
		s.log.Warn("selected tool has no definition", zap.String("tool", line))
	}
}

func (s *Scanner) handleCoordinate(state *scanState, line string, res *Result) {
	// A plain drill coordinate between a rapid and a linear move breaks the
	// slot pair.
	state.pending = nil

	if !s.updatePosition(state, line) {
		return
	}
	diameter, ok := res.Tools[state.tool]
	if state.tool == "" || !ok {
		return
	}
	res.Holes = append(res.Holes, Hole{X: state.x, Y: state.y, Diameter: diameter})
}

func (s *Scanner) handleRapidMove(state *scanState, line string, res *Result) {
	if !s.updatePosition(state, strings.TrimPrefix(line, "G00")) {
		return
	}
	mark := &rapidMark{x: state.x, y: state.y}
	if d, ok := res.Tools[state.tool]; ok {
		mark.diameter = d
		mark.hasDia = true
	}
	state.pending = mark
}

func (s *Scanner) handleLinearMove(state *scanState, line string, res *Result) {
	mark := state.pending
	state.pending = nil
	if !s.updatePosition(state, strings.TrimPrefix(line, "G01")) {
		return
	}
	if mark == nil {
		return
	}
	diameter := mark.diameter
	if !mark.hasDia {
		d, ok := res.Tools[state.tool]
		if !ok {
			s.log.Warn("slot closed with no known tool diameter, skipping",
				zap.Float64("x", state.x), zap.Float64("y", state.y))
			return
		}
		diameter = d
	}
	res.Slots = append(res.Slots, Slot{
		StartX:   mark.x,
		StartY:   mark.y,
		EndX:     state.x,
		EndY:     state.y,
		Diameter: diameter,
	})
}

// updatePosition decodes the X and/or Y fields of a coordinate body and folds
// them into the state component-wise: a line supplying only X leaves Y where
// it was. Values are converted to millimeters here so downstream stages never
// see native units.
func (s *Scanner) updatePosition(state *scanState, body string) bool {
	var xToken, yToken string
	switch {
	case strings.HasPrefix(body, "X") && strings.Contains(body, "Y"):
		parts := strings.SplitN(body, "Y", 2)
		xToken = parts[0][1:]
		yToken = parts[1]
	case strings.HasPrefix(body, "X"):
		xToken = body[1:]
	case strings.HasPrefix(body, "Y"):
		yToken = body[1:]
	default:
		return false
	}

	scale := 1.0
	if state.format.Unit == Imperial {
		scale = MMPerInch
	}
	if xToken != "" {
		state.x = DecodeCoordinate(xToken, state.format) * scale
	}
	if yToken != "" {
		state.y = DecodeCoordinate(yToken, state.format) * scale
	}
	return true
}

func (s *Scanner) logSummary(res *Result) {
	counts := map[float64]int{}
	for _, h := range res.Holes {
		counts[h.Diameter]++
	}
	for diameter, count := range counts {
		s.log.Info("hole size",
			zap.Float64("diameter_mm", diameter), zap.Int("count", count))
	}
	s.log.Info("scan complete",
		zap.Int("holes", len(res.Holes)),
		zap.Int("slots", len(res.Slots)),
		zap.Int("tools", len(res.Tools)))
}
