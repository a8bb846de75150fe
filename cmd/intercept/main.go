// Command intercept runs one pursuit/evasion encounter, prints the outcome
// and optionally renders the trajectories.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/intercept/internal/config"
	"github.com/banshee-data/intercept/internal/fsutil"
	"github.com/banshee-data/intercept/internal/guidance"
	"github.com/banshee-data/intercept/internal/monitoring"
	"github.com/banshee-data/intercept/internal/render"
	"github.com/banshee-data/intercept/internal/report"
	"github.com/banshee-data/intercept/internal/sim"
	"github.com/banshee-data/intercept/internal/sweep"
	"github.com/banshee-data/intercept/internal/version"
)

type options struct {
	configPath  string
	preset      string
	pngPath     string
	htmlPath    string
	jsonOut     bool
	showVersion bool
	quiet       bool
	verbose     bool

	// overlay holds only the fields whose flags were given explicitly.
	overlay *config.Config
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("intercept", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{overlay: config.EmptyConfig()}
	fs.StringVar(&o.configPath, "config", "", "Path to a .json or .yaml scenario file")
	fs.StringVar(&o.preset, "preset", config.PresetEvasive, "Base preset: evasive, random, pursuit or lead")
	fs.StringVar(&o.pngPath, "png", "", "Write the trajectory chart (and a _altitude companion) to this PNG path")
	fs.StringVar(&o.htmlPath, "html", "", "Write an interactive trajectory chart to this HTML path")
	fs.BoolVar(&o.jsonOut, "json", false, "Print a JSON summary instead of the console report")
	fs.BoolVar(&o.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&o.quiet, "quiet", false, "Only log warnings and errors")
	fs.BoolVar(&o.verbose, "verbose", false, "Log per-tick debug output")

	seed := fs.Int64("seed", 0, "Random seed")
	threshold := fs.Float64("threshold", sim.DefaultCollisionThreshold, "Collision distance threshold (m)")
	ticks := fs.Int("ticks", sim.DefaultMaxTicks, "Maximum number of ticks")
	speed := fs.Float64("speed", sim.DefaultInterceptorSpeed, "Interceptor cruise speed (m/tick)")
	weight := fs.Float64("weight", 0.6, "Evasion blend weight for the altitude correction [0,1]")
	gain := fs.Float64("gain", 0.1, "Evasion altitude correction gain")
	refAlt := fs.Float64("ref-alt", 20, "Evasion reference altitude (m)")
	mode := fs.String("mode", string(guidance.ModeLead), "Guidance mode: pure or lead")
	enforce := fs.Bool("enforce", true, "Enforce the minimum approach angle")
	minAngle := fs.Float64("min-angle", guidance.DefaultMinApproachDeg, "Minimum approach angle (deg)")
	evade := fs.Bool("evade", true, "Enable target evasion")
	randomStart := fs.String("random-start", "", "Draw the interceptor start from the rectangle minX,minY,maxX,maxY")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		c := o.overlay
		switch f.Name {
		case "seed":
			c.Seed = seed
		case "threshold":
			c.CollisionThreshold = threshold
		case "ticks":
			c.MaxTicks = ticks
		case "speed":
			c.InterceptorSpeed = speed
		case "weight":
			c.EvasionWeight = weight
		case "gain":
			c.EvasionGain = gain
		case "ref-alt":
			c.ReferenceAltitude = refAlt
		case "mode":
			var m guidance.Mode
			if m, err = guidance.ParseMode(*mode); err == nil {
				s := string(m)
				c.GuidanceMode = &s
			}
		case "enforce":
			c.EnforceMinAngle = enforce
		case "min-angle":
			c.MinApproachDeg = minAngle
		case "evade":
			c.EvasionEnabled = evade
		case "random-start":
			c.RandomStart, err = parseRect(*randomStart)
		}
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func parseRect(s string) (*config.Rect, error) {
	vals, err := sweep.ParseCSVFloat64s(s)
	if err != nil {
		return nil, fmt.Errorf("random-start: %w", err)
	}
	if len(vals) != 4 {
		return nil, fmt.Errorf("random-start needs minX,minY,maxX,maxY, got %d values", len(vals))
	}
	return &config.Rect{
		Min: config.Vec2{X: vals[0], Y: vals[1]},
		Max: config.Vec2{X: vals[2], Y: vals[3]},
	}, nil
}

// resolveConfig layers the preset, the scenario file and the explicit flags.
func resolveConfig(o *options) (*config.Config, error) {
	cfg, err := config.Preset(o.preset)
	if err != nil {
		return nil, err
	}
	if o.configPath != "" {
		file, err := config.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		if cfg, err = config.Merge(cfg, file); err != nil {
			return nil, err
		}
	}
	if cfg, err = config.Merge(cfg, o.overlay); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.showVersion {
		_, err := fmt.Fprintln(stdout, version.String("intercept"))
		return err
	}

	logger, err := monitoring.NewZapLogger(o.verbose, o.quiet)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	monitoring.UseZap(logger)

	cfg, err := resolveConfig(o)
	if err != nil {
		return err
	}
	res, err := sim.Run(cfg.ToParams())
	if err != nil {
		return err
	}

	maxTicks, minDeg := cfg.GetMaxTicks(), cfg.GetMinApproachDeg()
	if o.jsonOut {
		err = report.WriteJSON(stdout, report.Summarize(res, maxTicks, minDeg))
	} else {
		err = report.Write(stdout, res, maxTicks, minDeg)
	}
	if err != nil {
		return err
	}

	ro := render.DefaultOptions()
	ro.MinApproachDeg = minDeg
	return writeCharts(fsutil.OSFileSystem{}, o, res, ro)
}

func writeCharts(fsys fsutil.FileSystem, o *options, res *sim.Result, ro render.Options) error {
	if o.pngPath != "" {
		p, err := render.TrajectoryPlot(res, ro)
		if err != nil {
			return err
		}
		if err := render.SavePNG(fsys, o.pngPath, p, ro); err != nil {
			return err
		}
		alt, err := render.AltitudePlot(res, ro)
		if err != nil {
			return err
		}
		altPath := render.AltitudePath(o.pngPath)
		if err := render.SavePNG(fsys, altPath, alt, ro); err != nil {
			return err
		}
		monitoring.Logf("wrote %s and %s", o.pngPath, altPath)
	}
	if o.htmlPath != "" {
		if err := render.SaveHTML(fsys, o.htmlPath, res, ro); err != nil {
			return err
		}
		monitoring.Logf("wrote %s", o.htmlPath)
	}
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "intercept: %v\n", err)
		os.Exit(1)
	}
}
