// Command drillcam converts Excellon drill files into G-code for CNC milling:
// straight plunges for holes no wider than the bit, spiral or helical milling
// for larger ones, and offset-contour routing for slots and board outlines.
package main

import (
	"errors"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"drillcam/pkg/excellon"
	"drillcam/pkg/gcode"
	"drillcam/pkg/geometry"
	"drillcam/pkg/logging"
	"drillcam/pkg/outline"
	"drillcam/pkg/toolpath"
)

var cli struct {
	Input  string `arg:"" help:"Excellon drill file (.drl, .xln, .txt)"`
	Output string `short:"o" help:"Output G-code path (default: input + .nc)"`

	BitSize         float64 `short:"b" default:"1.0" env:"DRILLCAM_BIT_SIZE" help:"Milling bit diameter in mm"`
	Depth           float64 `short:"d" default:"2.0" env:"DRILLCAM_DEPTH" help:"Drill/mill depth in mm"`
	FeedRate        float64 `short:"f" default:"100.0" env:"DRILLCAM_FEED_RATE" help:"XY feed rate in mm/min"`
	PlungeRate      float64 `short:"p" default:"50.0" env:"DRILLCAM_PLUNGE_RATE" help:"Z plunge rate in mm/min"`
	SpindleSpeed    int     `short:"s" default:"10000" env:"DRILLCAM_SPINDLE_SPEED" help:"Spindle speed in RPM"`
	SafeHeight      float64 `default:"5.0" env:"DRILLCAM_SAFE_HEIGHT" help:"Safe Z height for rapid moves in mm"`
	ClearanceHeight float64 `default:"2.0" env:"DRILLCAM_CLEARANCE_HEIGHT" help:"Z clearance height above workpiece in mm"`
	UseArcs         bool    `env:"DRILLCAM_USE_ARCS" help:"Use G2/G3 helical moves for spiral milling (more compact output)"`

	Outline    string `help:"Optional Gerber board outline file to route"`
	ZeroOrigin bool   `help:"Shift the program so its minimum X/Y become 0"`
	Verbose    bool   `short:"v" help:"Enable debug logging"`
}

func main() {
	// Shop defaults can live in a .env file next to the invocation.
	_ = godotenv.Load()

	ctx := kong.Parse(&cli,
		kong.Name("drillcam"),
		kong.Description("Convert Excellon drill files to G-code for CNC milling."),
		kong.UsageOnError(),
	)

	if cli.BitSize <= 0 {
		ctx.FatalIfErrorf(errors.New("bit size must be positive"))
	}
	if cli.Depth <= 0 {
		ctx.FatalIfErrorf(errors.New("drill depth must be positive"))
	}

	output := cli.Output
	if output == "" {
		output = cli.Input + ".nc"
	}

	log := logging.New(cli.Verbose)
	defer func() { _ = log.Sync() }()

	params := toolpath.Params{
		BitDiameter:     cli.BitSize,
		DrillDepth:      cli.Depth,
		FeedRate:        cli.FeedRate,
		PlungeRate:      cli.PlungeRate,
		SpindleSpeed:    cli.SpindleSpeed,
		SafeHeight:      cli.SafeHeight,
		ClearanceHeight: cli.ClearanceHeight,
		UseArcs:         cli.UseArcs,
	}

	scanner := excellon.NewScanner(log)
	res, err := scanner.ScanFile(cli.Input)
	if err != nil {
		log.Error("scan failed", zap.Error(err))
		os.Exit(1)
	}
	res.Holes = excellon.DedupHoles(res.Holes, log)

	contours := loadOutlines(log)

	assembler := toolpath.NewAssembler(params, nil, log)
	program, err := assembler.Assemble(cli.Input, res, contours)
	if err != nil {
		if errors.Is(err, toolpath.ErrNoPrimitives) {
			log.Error("nothing to machine", zap.String("input", cli.Input))
		} else {
			log.Error("assembly failed", zap.Error(err))
		}
		os.Exit(1)
	}

	if cli.ZeroOrigin {
		program = gcode.NormalizeOrigin(program)
	}

	if err := gcode.WriteFile(output, program); err != nil {
		log.Error("write failed", zap.Error(err))
		os.Exit(1)
	}
	log.Info("conversion complete", zap.String("output", output))
}

// loadOutlines reads and parses the optional outline file. Outline routing is
// a capability: any failure here degrades to a warning and an outline-free
// program.
func loadOutlines(log *zap.Logger) []geometry.Polygon {
	if cli.Outline == "" {
		return nil
	}
	data, err := os.ReadFile(cli.Outline)
	if err != nil {
		log.Warn("cannot read outline file, skipping outline routing", zap.Error(err))
		return nil
	}
	var provider outline.Provider = outline.NewGerberParser(log)
	contours, err := provider.Contours(data)
	if err != nil {
		log.Warn("cannot parse outline file, skipping outline routing", zap.Error(err))
		return nil
	}
	if len(contours) == 0 {
		log.Warn("outline file contained no closed contours")
	}
	return contours
}
