// Command tracepad prepares tracing references and replays drawing sessions.
//
//	tracepad lineart   -input photo.jpg -output lineart.png
//	tracepad threshold -input photo.jpg -output bw.png
//	tracepad replay    -script strokes.txt -output drawing.png
//	tracepad sheet     -reference lineart.png -drawing drawing.png -output sheet.png
//
// Every subcommand accepts -config (a TOML file) and -log (a level).
// Flags given on the command line override the file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/wbrown/tracepad"
	"github.com/wbrown/tracepad/config"
	"github.com/wbrown/tracepad/edge"
	"github.com/wbrown/tracepad/imageutil"
	"github.com/wbrown/tracepad/session"
)

var commands = map[string]func(args []string) error{
	"lineart":   runLineart,
	"threshold": runThreshold,
	"replay":    runReplay,
	"sheet":     runSheet,
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tracepad <lineart|threshold|replay|sheet> [flags]")
	fmt.Fprintln(os.Stderr, "Run 'tracepad <command> -h' for the flags of a command.")
}

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		usage()
		os.Exit(2)
	}
	if err := run(os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

// common holds the flags shared by every subcommand.
type common struct {
	configPath string
	logLevel   string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "",
		"Path to a TOML configuration file")
	fs.StringVar(&c.logLevel, "log", "",
		"Log level: debug, info, warn or error (overrides the config file)")
}

// load reads the configuration and installs the logger.
func (c *common) load() (config.Config, error) {
	cfg := config.Default()
	if c.configPath != "" {
		var err error
		if cfg, err = config.Load(c.configPath); err != nil {
			return config.Config{}, err
		}
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return config.Config{}, err
	}
	tracepad.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return cfg, nil
}

// visited returns the names of the flags set on the command line.
func visited(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func runLineart(args []string) error {
	fs := flag.NewFlagSet("lineart", flag.ContinueOnError)
	var c common
	c.register(fs)
	input := fs.String("input", "",
		"Path to the reference image (required)")
	output := fs.String("output", "lineart.png",
		"Path to save the line art PNG")
	sensitivity := fs.Float64("sensitivity", 0,
		"Edge sensitivity, > 0 (default from config: 5)")
	contrast := fs.Float64("contrast", 0,
		"Edge contrast, > 0 (default from config: 3)")
	threshold := fs.Float64("threshold", 0,
		"Edge threshold, 0 to 100 (default from config: 15)")
	border := fs.String("border", "",
		"Border mode: white or replicate (default from config: white)")
	workers := fs.Int("workers", 0,
		"Goroutines to use, 0 for all CPUs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		fs.PrintDefaults()
		return errors.New("please provide the image using the -input flag")
	}
	cfg, err := c.load()
	if err != nil {
		return err
	}

	set := visited(fs)
	if set["sensitivity"] {
		cfg.Filter.Sensitivity = *sensitivity
	}
	if set["contrast"] {
		cfg.Filter.Contrast = *contrast
	}
	if set["threshold"] {
		cfg.Filter.Threshold = *threshold
	}
	if set["border"] {
		cfg.Filter.Border = *border
	}
	if set["workers"] {
		cfg.Filter.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	out, err := edge.ExtractEncoded(ctx, data, cfg.FilterSettings(), cfg.EdgeOptions()...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*output, out, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Printf("Line art saved to %s (%v)\n", *output, time.Since(start))
	return nil
}

func runThreshold(args []string) error {
	fs := flag.NewFlagSet("threshold", flag.ContinueOnError)
	var c common
	c.register(fs)
	input := fs.String("input", "",
		"Path to the reference image (required)")
	output := fs.String("output", "threshold.png",
		"Path to save the black and white PNG")
	cutoff := fs.Uint("cutoff", edge.DefaultThresholdCutoff,
		"Mean intensity above which pixels turn white, 0 to 255")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		fs.PrintDefaults()
		return errors.New("please provide the image using the -input flag")
	}
	if *cutoff > 255 {
		return fmt.Errorf("cutoff %d is above 255", *cutoff)
	}
	if _, err := c.load(); err != nil {
		return err
	}

	src, err := imageutil.LoadImage(*input)
	if err != nil {
		return err
	}
	out, err := edge.Threshold(src, uint8(*cutoff))
	if err != nil {
		return err
	}
	if err := imageutil.SavePNG(out, *output); err != nil {
		return err
	}
	fmt.Printf("Thresholded image saved to %s\n", *output)
	return nil
}

func runReplay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	var c common
	c.register(fs)
	script := fs.String("script", "",
		"Path to the event script, or - for stdin (required)")
	output := fs.String("output", "drawing.png",
		"Path to save the drawing PNG")
	width := fs.Int("width", 0,
		"Surface width in logical pixels (default from config: 800)")
	height := fs.Int("height", 0,
		"Surface height in logical pixels (default from config: 600)")
	scale := fs.Float64("scale", 0,
		"Display scale factor (default from config: 1)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *script == "" {
		fs.PrintDefaults()
		return errors.New("please provide the event script using the -script flag")
	}
	cfg, err := c.load()
	if err != nil {
		return err
	}
	set := visited(fs)
	if set["width"] {
		cfg.Surface.Width = *width
	}
	if set["height"] {
		cfg.Surface.Height = *height
	}
	if set["scale"] {
		cfg.Surface.Scale = *scale
	}

	in := os.Stdin
	if *script != "-" {
		f, err := os.Open(*script)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		in = f
	}
	steps, err := parseScript(in)
	if err != nil {
		return err
	}

	brush, err := cfg.BrushSettings()
	if err != nil {
		return err
	}
	pad := tracepad.NewPad(tracepad.WithBrush(brush))
	if err := pad.Initialize(cfg.Surface.Width, cfg.Surface.Height, cfg.Surface.Scale); err != nil {
		return err
	}
	if err := replay(pad, steps); err != nil {
		return err
	}

	data, err := pad.ExportEncoded()
	if err != nil {
		return err
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Printf("Replayed %d commands, %d undo steps left, saved to %s\n",
		len(steps), pad.HistoryLen(), *output)
	return nil
}

func runSheet(args []string) error {
	fs := flag.NewFlagSet("sheet", flag.ContinueOnError)
	var c common
	c.register(fs)
	reference := fs.String("reference", "",
		"Path to the reference image (required)")
	drawing := fs.String("drawing", "",
		"Path to the drawing (required)")
	output := fs.String("output", "sheet.png",
		"Path to save the comparison sheet PNG")
	lineart := fs.Bool("lineart", false,
		"Run the line-art filter on the reference first")
	ghost := fs.Bool("ghost", false,
		"Overlay the reference faintly on the drawing")
	opacity := fs.Float64("opacity", 0,
		"Ghost opacity, 0 to 1 (default from config: 0.2)")
	mirrored := fs.Bool("mirrored", false,
		"Show the drawing panel mirrored, as on a flipped pad (default from config)")
	feedback := fs.String("feedback", "",
		"Feedback text to record with the session")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *reference == "" || *drawing == "" {
		fs.PrintDefaults()
		return errors.New("please provide both -reference and -drawing")
	}
	cfg, err := c.load()
	if err != nil {
		return err
	}
	set := visited(fs)
	if set["opacity"] {
		cfg.Overlay.Opacity = *opacity
	}
	if set["mirrored"] {
		cfg.Overlay.Mirrored = *mirrored
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	refData, err := os.ReadFile(*reference)
	if err != nil {
		return fmt.Errorf("failed to read reference: %w", err)
	}
	if *lineart {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if refData, err = edge.ExtractEncoded(ctx, refData, cfg.FilterSettings(), cfg.EdgeOptions()...); err != nil {
			return err
		}
	}
	drawData, err := os.ReadFile(*drawing)
	if err != nil {
		return fmt.Errorf("failed to read drawing: %w", err)
	}

	s, err := session.New(refData, drawData, *feedback)
	if err != nil {
		return err
	}
	opts := session.DefaultSheetOptions()
	opts.Ghost = *ghost
	opts.Opacity = cfg.Overlay.Opacity
	opts.Mirrored = cfg.Overlay.Mirrored
	if ref, _, err := imageutil.Decode(refData); err == nil {
		opts.PanelWidth, opts.PanelHeight = panelSize(ref.Bounds())
	}

	sheet, err := s.Sheet(opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*output, sheet, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Printf("Session %s saved to %s\n", s.ID, *output)
	return nil
}

// panelSize keeps the reference's aspect ratio inside a 600x600 box.
func panelSize(b image.Rectangle) (int, int) {
	return imageutil.FitWithin(b.Dx(), b.Dy(), 600, 600)
}
