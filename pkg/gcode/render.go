package gcode

import (
	"fmt"
	"os"
	"strings"
)

// Output precision contract: XY words carry 4 decimals, Z words 3, feed 1.
const (
	xyFormat   = "%.4f"
	zFormat    = "%.3f"
	feedFormat = "%.1f"
)

// Render produces the textual program, one command per line with a trailing
// newline.
func Render(p Program) []byte {
	var b strings.Builder
	for _, c := range p {
		renderCommand(&b, c)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func renderCommand(b *strings.Builder, c Command) {
	switch c.Kind {
	case Word:
		b.WriteString(c.Text)
	case Note:
		if c.Text != "" {
			fmt.Fprintf(b, "(%s)", c.Text)
		}
		return
	case Rapid:
		b.WriteString("G0")
		writeAxes(b, c)
	case Linear:
		b.WriteString("G1")
		writeAxes(b, c)
		writeFeed(b, c)
	case ArcCW, ArcCCW:
		if c.Kind == ArcCW {
			b.WriteString("G2")
		} else {
			b.WriteString("G3")
		}
		writeAxes(b, c)
		fmt.Fprintf(b, " I"+xyFormat+" J"+xyFormat, c.I, c.J)
		writeFeed(b, c)
	}
	if c.Annotation != "" {
		fmt.Fprintf(b, " (%s)", c.Annotation)
	}
}

func writeAxes(b *strings.Builder, c Command) {
	if c.HasX {
		fmt.Fprintf(b, " X"+xyFormat, c.X)
	}
	if c.HasY {
		fmt.Fprintf(b, " Y"+xyFormat, c.Y)
	}
	if c.HasZ {
		fmt.Fprintf(b, " Z"+zFormat, c.Z)
	}
}

func writeFeed(b *strings.Builder, c Command) {
	if c.Feed != 0 {
		fmt.Fprintf(b, " F"+feedFormat, c.Feed)
	}
}

// WriteFile renders the program and writes it in one shot, so the file handle
// never outlives the call regardless of errors.
func WriteFile(path string, p Program) error {
	if err := os.WriteFile(path, Render(p), 0o644); err != nil {
		return fmt.Errorf("writing program: %w", err)
	}
	return nil
}
