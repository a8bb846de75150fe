// Command intercept-sweep runs a batch of encounters across seeds and
// evasion blend weights and writes the aggregate outcomes as CSV.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/intercept/internal/config"
	"github.com/banshee-data/intercept/internal/fsutil"
	"github.com/banshee-data/intercept/internal/monitoring"
	"github.com/banshee-data/intercept/internal/sweep"
	"github.com/banshee-data/intercept/internal/version"
)

func run(args []string, stdout, stderr io.Writer) (err error) {
	fs := flag.NewFlagSet("intercept-sweep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to a .json or .yaml scenario file")
	preset := fs.String("preset", config.PresetEvasive, "Base preset: evasive, random, pursuit or lead")
	weightList := fs.String("weights", "0:1:0.2", "Comma-separated blend weights or range min:max:step")
	runs := fs.Int("runs", 20, "Number of seeds per weight")
	seedStart := fs.Int64("seed-start", 1, "First seed")
	output := fs.String("output", "", "Summary CSV path (defaults to stdout)")
	rawOutput := fs.String("raw", "", "Optional per-run CSV path")
	quiet := fs.Bool("quiet", false, "Only log warnings and errors")
	verbose := fs.Bool("verbose", false, "Log per-tick debug output")
	showVersion := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		_, err := fmt.Fprintln(stdout, version.String("intercept-sweep"))
		return err
	}

	logger, err := monitoring.NewZapLogger(*verbose, *quiet)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	monitoring.UseZap(logger)

	base, err := config.Preset(*preset)
	if err != nil {
		return err
	}
	if *configPath != "" {
		file, err := config.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		if base, err = config.Merge(base, file); err != nil {
			return err
		}
	}

	weights, err := sweep.ParseValues(*weightList)
	if err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	if *runs <= 0 {
		return fmt.Errorf("runs must be positive, got %d", *runs)
	}

	summaryW := stdout
	if *output != "" {
		f, cerr := fsutil.CreateAll(fsutil.OSFileSystem{}, *output)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		summaryW = f
	}
	var rawW io.Writer
	if *rawOutput != "" {
		f, cerr := fsutil.CreateAll(fsutil.OSFileSystem{}, *rawOutput)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		rawW = f
	}

	w := sweep.NewCSVWriter(summaryW, rawW)
	if err := w.WriteHeaders(); err != nil {
		return err
	}

	monitoring.Logf("sweep: %d weights x %d seeds from %d", len(weights), *runs, *seedStart)
	var sampleErr error
	r := &sweep.Runner{
		Base:    base,
		Weights: weights,
		Seeds:   sweep.Seeds(*seedStart, *runs),
		OnSample: func(s sweep.Sample) {
			if err := w.WriteSample(s); err != nil && sampleErr == nil {
				sampleErr = err
			}
		},
	}
	summaries, err := r.Run()
	if err != nil {
		return err
	}
	if sampleErr != nil {
		return sampleErr
	}
	for _, s := range summaries {
		if err := w.WriteSummary(s); err != nil {
			return err
		}
	}
	return w.Flush()
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "intercept-sweep: %v\n", err)
		os.Exit(1)
	}
}
