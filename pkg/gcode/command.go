// Package gcode models a machining program as a sequence of structured
// commands, so transforms like origin shifting work on coordinates rather
// than on rendered text.
package gcode

// Kind tells the renderer which words a command carries.
type Kind int

const (
	// Rapid is a G0 positioning move.
	Rapid Kind = iota
	// Linear is a G1 cutting move at a feed rate.
	Linear
	// ArcCW is a G2 clockwise arc with an I/J center offset, optionally
	// descending in Z (helical interpolation).
	ArcCW
	// ArcCCW is the G3 counterclockwise counterpart.
	ArcCCW
	// Word is a literal non-motion word, e.g. "G21" or "M3 S10000".
	Word
	// Note is a standalone parenthetical comment line; empty text renders
	// as a blank separator line.
	Note
)

// Command is one line of the output program. Axis words are emitted only when
// the corresponding Has flag is set; Feed is emitted when nonzero. Text holds
// the literal word for Word commands and the comment body for Note commands.
// Annotation is rendered as a trailing parenthetical comment and never
// participates in coordinate transforms.
type Command struct {
	Kind             Kind
	X, Y, Z          float64
	HasX, HasY, HasZ bool
	I, J             float64
	Feed             float64
	Text             string
	Annotation       string
}

// Program is an ordered sequence of commands.
type Program []Command

// WithNote returns the command with a trailing annotation attached.
func (c Command) WithNote(text string) Command {
	c.Annotation = text
	return c
}

// IsMotion reports whether the command positions the tool, i.e. carries
// coordinates the origin normalizer must consider.
func (c Command) IsMotion() bool {
	switch c.Kind {
	case Rapid, Linear, ArcCW, ArcCCW:
		return true
	}
	return false
}

// RapidXY builds a G0 move in the XY plane.
func RapidXY(x, y float64) Command {
	return Command{Kind: Rapid, X: x, Y: y, HasX: true, HasY: true}
}

// RapidZ builds a G0 move along Z only.
func RapidZ(z float64) Command {
	return Command{Kind: Rapid, Z: z, HasZ: true}
}

// LinearXY builds a G1 move in the XY plane at the given feed.
func LinearXY(x, y, feed float64) Command {
	return Command{Kind: Linear, X: x, Y: y, HasX: true, HasY: true, Feed: feed}
}

// LinearXYZ builds a G1 move with simultaneous XY and Z motion.
func LinearXYZ(x, y, z, feed float64) Command {
	return Command{Kind: Linear, X: x, Y: y, Z: z, HasX: true, HasY: true, HasZ: true, Feed: feed}
}

// LinearZ builds a G1 plunge along Z only.
func LinearZ(z, feed float64) Command {
	return Command{Kind: Linear, Z: z, HasZ: true, Feed: feed}
}

// Arc builds a full G2/G3 arc command. i and j are offsets from the current
// position to the arc center.
func Arc(clockwise bool, x, y float64, hasZ bool, z, i, j, feed float64) Command {
	kind := ArcCW
	if !clockwise {
		kind = ArcCCW
	}
	return Command{Kind: kind, X: x, Y: y, HasX: true, HasY: true, Z: z, HasZ: hasZ, I: i, J: j, Feed: feed}
}

// Literal builds a non-motion word line.
func Literal(word string) Command {
	return Command{Kind: Word, Text: word}
}

// Comment builds a standalone comment line.
func Comment(text string) Command {
	return Command{Kind: Note, Text: text}
}

// Blank builds an empty separator line.
func Blank() Command {
	return Command{Kind: Note}
}
