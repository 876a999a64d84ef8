package outline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"go.uber.org/zap"

	"drillcam/pkg/cfg"
	"drillcam/pkg/excellon"
	"drillcam/pkg/geometry"
)

// gerberFile is the token stream of a Gerber layer: extended commands wrapped
// in percent signs, and data words terminated by asterisks.
type gerberFile struct {
	Commands []string `parser:"( @Ext | @Word )*"`
}

var gerberLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ext", Pattern: `%[^%]*%`},
	{Name: "Word", Pattern: `[A-Z][^*%\r\n]*`},
	{Name: "Star", Pattern: `\*`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var gerberParser = participle.MustBuild[gerberFile](
	participle.Lexer(gerberLexer),
	participle.Elide("Star", "Whitespace"),
)

var (
	formatSpecRe = regexp.MustCompile(`^FS([LT])[AI]X(\d)(\d)Y(\d)(\d)`)
	xFieldRe     = regexp.MustCompile(`X([+-]?[\d.]+)`)
	yFieldRe     = regexp.MustCompile(`Y([+-]?[\d.]+)`)
	iFieldRe     = regexp.MustCompile(`I([+-]?[\d.]+)`)
	jFieldRe     = regexp.MustCompile(`J([+-]?[\d.]+)`)
	dCodeRe      = regexp.MustCompile(`D0?([123])$`)
	gCodeRe      = regexp.MustCompile(`^G0?([123])(?:$|[XYIJD])`)
)

// GerberParser reads the subset of RS-274X needed for board outlines: format
// and unit declarations, linear and circular interpolation, and G36/G37
// regions. Arcs are flattened to line segments on the way out.
type GerberParser struct {
	log *zap.Logger
}

func NewGerberParser(log *zap.Logger) *GerberParser {
	return &GerberParser{log: log}
}

// gerberState tracks the modal drawing state while walking the token stream.
type gerberState struct {
	format   excellon.Format
	scale    float64
	mode     int // 1 linear, 2 clockwise arc, 3 counterclockwise arc
	pos      geometry.Point
	contour  geometry.Polygon
	contours []geometry.Polygon
}

// Contours implements Provider.
func (g *GerberParser) Contours(data []byte) ([]geometry.Polygon, error) {
	file, err := gerberParser.ParseBytes("", data)
	if err != nil {
		return nil, fmt.Errorf("parsing outline file: %w", err)
	}

	st := &gerberState{
		// Gerber coordinates keep trailing zeros by default ("L" format).
		format: excellon.Format{IntegerDigits: 3, DecimalDigits: 4, Zeros: excellon.TrailingZeroPresent},
		scale:  1.0,
		mode:   1,
	}

	for _, command := range file.Commands {
		if strings.HasPrefix(command, "%") {
			g.applyExtended(st, command)
			continue
		}
		g.applyWord(st, command)
	}
	st.flush()

	g.log.Debug("outline parsed", zap.Int("contours", len(st.contours)))
	return st.contours, nil
}

func (g *GerberParser) applyExtended(st *gerberState, command string) {
	body := strings.Trim(command, "%*")
	body = strings.TrimSuffix(body, "*")
	switch {
	case strings.HasPrefix(body, "FS"):
		m := formatSpecRe.FindStringSubmatch(body)
		if m == nil {
			g.log.Warn("malformed format specification, keeping defaults",
				zap.String("command", command))
			return
		}
		if m[1] == "L" {
			st.format.Zeros = excellon.TrailingZeroPresent
		} else {
			st.format.Zeros = excellon.LeadingZeroPresent
		}
		st.format.IntegerDigits = int(m[2][0] - '0')
		st.format.DecimalDigits = int(m[3][0] - '0')
	case strings.HasPrefix(body, "MOMM"):
		st.scale = 1.0
	case strings.HasPrefix(body, "MOIN"):
		st.scale = excellon.MMPerInch
	}
	// Aperture and polarity commands don't affect outline geometry.
}

func (g *GerberParser) applyWord(st *gerberState, word string) {
	if strings.HasPrefix(word, "G04") {
		return // comment
	}
	switch word {
	case "G36", "G37":
		st.flush()
		return
	case "G70":
		st.scale = excellon.MMPerInch
		return
	case "G71":
		st.scale = 1.0
		return
	case "G74", "G75":
		return // quadrant mode; arcs are always treated as multi-quadrant
	case "M00", "M02", "M30":
		st.flush()
		return
	}

	if m := gCodeRe.FindStringSubmatch(word); m != nil {
		st.mode = int(m[1][0] - '0')
	}

	d := dCodeRe.FindStringSubmatch(word)
	target := st.pos
	if m := xFieldRe.FindStringSubmatch(word); m != nil {
		target.X = excellon.DecodeCoordinate(m[1], st.format) * st.scale
	}
	if m := yFieldRe.FindStringSubmatch(word); m != nil {
		target.Y = excellon.DecodeCoordinate(m[1], st.format) * st.scale
	}

	if d == nil {
		// A bare mode change like G01 still moves nothing.
		st.pos = target
		return
	}

	switch d[1] {
	case "1": // draw
		if len(st.contour) == 0 {
			st.contour = append(st.contour, st.pos)
		}
		if st.mode == 2 || st.mode == 3 {
			offset := geometry.Point{}
			if m := iFieldRe.FindStringSubmatch(word); m != nil {
				offset.X = excellon.DecodeCoordinate(m[1], st.format) * st.scale
			}
			if m := jFieldRe.FindStringSubmatch(word); m != nil {
				offset.Y = excellon.DecodeCoordinate(m[1], st.format) * st.scale
			}
			arc := geometry.Arc{
				Start:     st.pos,
				End:       target,
				Center:    st.pos.Add(offset),
				Clockwise: st.mode == 2,
			}
			st.contour = append(st.contour, arc.Flatten(cfg.ArcChordTolerance)...)
		} else {
			st.contour = append(st.contour, target)
		}
	case "2": // move pen up
		st.flush()
		st.contour = geometry.Polygon{target}
	case "3": // flash, not outline geometry
	}
	st.pos = target
}

// flush closes the contour in progress and keeps it if it has enough points
// to enclose area. A duplicated closing point is dropped; exact closure is
// the offset engine's concern, not the parser's.
func (st *gerberState) flush() {
	contour := st.contour
	st.contour = nil
	if len(contour) > 1 && contour[0].Distance(contour[len(contour)-1]) < 1e-9 {
		contour = contour[:len(contour)-1]
	}
	if len(contour) >= 3 {
		st.contours = append(st.contours, contour)
	}
}
