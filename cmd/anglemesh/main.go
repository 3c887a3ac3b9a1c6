package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hljgirl/distortionizer/internal/config"
	"github.com/hljgirl/distortionizer/internal/debug"
	"github.com/hljgirl/distortionizer/internal/logic/convert"
	"github.com/hljgirl/distortionizer/internal/osvr"
	"github.com/hljgirl/distortionizer/internal/table"
)

func main() {
	// CLI flags
	screenBounds := &boundsFlag{}
	verify := &verifyFlag{}
	flag.Var(screenBounds, "screen-bounds", "override screen bounds as left,bottom,right,top (config units)")
	flag.Var(verify, "verify", "enable angle verification as xx,xy,yx,yy,maxDiffDeg")
	cfgPath := flag.String("config", "", "path to config file (configs/*.yaml); empty for built-in defaults")
	eye := flag.String("eye", "", "override eye: left or right")
	depth := flag.Float64("depth", 0, "override assumed screen depth (0 = use config)")
	toMeters := flag.Float64("to-meters", 0, "override unit scale to meters (0 = use config)")
	angles := flag.String("angles", "", "override angle mode: field or longlat")
	debugLevel := flag.Int("debug", -1, "override debug level 0-3 (-1 = use config)")
	outPath := flag.String("o", "", "write the descriptor to this file instead of stdout")
	logFile := flag.String("log-file", "", "mirror diagnostics to this file")
	flag.Parse()

	if flag.NArg() > 1 {
		log.Fatalf("expected at most one calibration table path, got %d arguments", flag.NArg())
	}

	// Load configuration
	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("load config failed: %v", err)
		}
		cfg = loaded
	}

	// Validate CLI overrides (zero values mean "use config default")
	if err := validateCLIOverrides(*eye, *depth, *toMeters, *angles, *debugLevel); err != nil {
		log.Fatalf("invalid CLI override: %v", err)
	}
	cfg = applyOverridesToCopy(cfg, overrides{
		eye:        *eye,
		depth:      *depth,
		toMeters:   *toMeters,
		angles:     *angles,
		bounds:     screenBounds.val,
		verify:     verify.val,
		debugLevel: *debugLevel,
	})

	// Initialize debug system; the descriptor goes to stdout, so all
	// diagnostics stay on stderr (plus the optional log file).
	debug.Init(cfg.DebugLevel)
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("open log file failed: %v", err)
		}
		defer f.Close()
		debug.SetOutput(io.MultiWriter(os.Stderr, f))
	}
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Eye", cfg.Eye)
	debug.Value("Field angles", cfg.FieldAngles)
	debug.Value("Depth (meters)", cfg.DepthMeters())
	debug.Value("Debug level", cfg.DebugLevel)
	debug.PrintStruct("Verify config", cfg.Verify)

	if err := runConvert(cfg, flag.Arg(0), *outPath); err != nil {
		log.Fatalf("conversion failed: %v", err)
	}
}

// runConvert loads the calibration table, runs the pipeline and writes
// the display descriptor. A verification warning is logged but never
// blocks the output; any error aborts before anything is written.
func runConvert(cfg *config.Config, tablePath, outPath string) error {
	debug.Step(1, "Loading calibration table")
	var samples []table.Sample
	var err error
	if tablePath == "" || tablePath == "-" {
		debug.Info("Reading calibration table from stdin")
		samples, err = table.Load(os.Stdin)
	} else {
		debug.Value("Table path", tablePath)
		samples, err = table.LoadFile(tablePath)
	}
	if err != nil {
		return err
	}
	debug.Value("Samples", len(samples))

	debug.Step(2, "Converting samples to screen and mesh")
	res, err := convert.New(cfg).Run(samples)
	if err != nil {
		return err
	}
	debug.PrintStruct("Screen description", *res.Screen)
	if w := res.Warning(cfg.MaxAngleDiffDeg()); w != nil {
		log.Printf("warning: %v", w)
	}

	debug.Step(3, "Writing display descriptor")
	out := io.Writer(os.Stdout)
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
		debug.Value("Output path", outPath)
	}
	if err := osvr.Write(out, res.Screen, res.Mesh); err != nil {
		return err
	}

	debug.Summary("Conversion Complete")
	debug.Screen(res.Screen.HFOVDegrees, res.Screen.VFOVDegrees,
		res.Screen.OverlapPercent, res.Screen.XCOP, res.Screen.YCOP)
	return nil
}

// overrides carries the CLI values layered over the loaded config.
// Zero values mean "keep the config setting".
type overrides struct {
	eye        string
	depth      float64
	toMeters   float64
	angles     string
	bounds     *config.BoundsConfig
	verify     *config.VerifyConfig
	debugLevel int
}

// validateCLIOverrides checks that non-zero CLI overrides are within
// valid ranges. Zero values are ignored (they mean "use config").
func validateCLIOverrides(eye string, depth, toMeters float64, angles string, debugLevel int) error {
	if eye != "" && eye != config.EyeLeft && eye != config.EyeRight {
		return fmt.Errorf("eye must be %q or %q, got %q", config.EyeLeft, config.EyeRight, eye)
	}
	if depth != 0 {
		if math.IsNaN(depth) || math.IsInf(depth, 0) || depth < 0 {
			return fmt.Errorf("depth must be a positive number, got %g", depth)
		}
	}
	if toMeters != 0 {
		if math.IsNaN(toMeters) || math.IsInf(toMeters, 0) || toMeters < 0 {
			return fmt.Errorf("to-meters must be a positive number, got %g", toMeters)
		}
	}
	if angles != "" && angles != "field" && angles != "longlat" {
		return fmt.Errorf("angles must be \"field\" or \"longlat\", got %q", angles)
	}
	if debugLevel < -1 || debugLevel > 3 {
		return fmt.Errorf("debug level must be 0-3, got %d", debugLevel)
	}
	return nil
}

// applyOverridesToCopy returns a new config with overrides applied.
// Zero values in overrides mean "use base config".
func applyOverridesToCopy(baseCfg *config.Config, o overrides) *config.Config {
	cfg := *baseCfg
	if o.eye != "" {
		cfg.Eye = o.eye
	}
	if o.depth > 0 {
		cfg.Depth = o.depth
	}
	if o.toMeters > 0 {
		cfg.ToMeters = o.toMeters
	}
	switch o.angles {
	case "field":
		cfg.FieldAngles = true
	case "longlat":
		cfg.FieldAngles = false
	}
	if o.bounds != nil {
		b := *o.bounds
		cfg.ScreenBounds = &b
	}
	if o.verify != nil {
		cfg.Verify = *o.verify
		cfg.Verify.Enabled = true
		if cfg.Verify.MaxAngleDiffDeg == 0 {
			cfg.Verify.MaxAngleDiffDeg = 2.0
		}
	}
	if o.debugLevel >= 0 {
		cfg.DebugLevel = o.debugLevel
	}
	return &cfg
}

// boundsFlag implements flag.Value for -screen-bounds:
// "left,bottom,right,top" in the config's distance units.
type boundsFlag struct {
	val *config.BoundsConfig
}

func (b *boundsFlag) String() string {
	if b.val == nil {
		return ""
	}
	return fmt.Sprintf("%g,%g,%g,%g", b.val.Left, b.val.Bottom, b.val.Right, b.val.Top)
}

func (b *boundsFlag) Set(s string) error {
	vals, err := splitFloats(s, 4)
	if err != nil {
		return err
	}
	bc := &config.BoundsConfig{Left: vals[0], Bottom: vals[1], Right: vals[2], Top: vals[3]}
	if bc.Left >= bc.Right {
		return fmt.Errorf("left (%g) must be less than right (%g)", bc.Left, bc.Right)
	}
	if bc.Bottom >= bc.Top {
		return fmt.Errorf("bottom (%g) must be less than top (%g)", bc.Bottom, bc.Top)
	}
	b.val = bc
	return nil
}

// verifyFlag implements flag.Value for -verify:
// "xx,xy,yx,yy,maxDiffDeg" enables verification with the given
// screen-to-angle axes and tolerance.
type verifyFlag struct {
	val *config.VerifyConfig
}

func (v *verifyFlag) String() string {
	if v.val == nil {
		return ""
	}
	return fmt.Sprintf("%g,%g,%g,%g,%g", v.val.XX, v.val.XY, v.val.YX, v.val.YY, v.val.MaxAngleDiffDeg)
}

func (v *verifyFlag) Set(s string) error {
	vals, err := splitFloats(s, 5)
	if err != nil {
		return err
	}
	vc := &config.VerifyConfig{
		Enabled:         true,
		XX:              vals[0],
		XY:              vals[1],
		YX:              vals[2],
		YY:              vals[3],
		MaxAngleDiffDeg: vals[4],
	}
	if vc.XX == 0 && vc.XY == 0 {
		return fmt.Errorf("screen x axis (xx, xy) must not be the zero vector")
	}
	if vc.YX == 0 && vc.YY == 0 {
		return fmt.Errorf("screen y axis (yx, yy) must not be the zero vector")
	}
	if math.IsNaN(vc.MaxAngleDiffDeg) || math.IsInf(vc.MaxAngleDiffDeg, 0) || vc.MaxAngleDiffDeg < 0 {
		return fmt.Errorf("maxDiffDeg must be a non-negative number, got %g", vc.MaxAngleDiffDeg)
	}
	v.val = vc
	return nil
}

// splitFloats parses exactly n comma-separated floats.
func splitFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated numbers, got %d", n, len(parts))
	}
	vals := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("component %d: %v", i+1, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("component %d must be finite, got %g", i+1, v)
		}
		vals[i] = v
	}
	return vals, nil
}
