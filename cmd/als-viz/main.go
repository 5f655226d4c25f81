// als-viz renders an overview image of a Live set's arrangement: one row
// per track, filled where the track has active clips.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kurylko/alsparse/pkg/alsparse"
	"github.com/kurylko/alsparse/pkg/logger"
)

var (
	logLevel            string
	colorless           bool
	width               int
	height              int
	output              string
	renderSystemTracks  bool
	renderDisabledClips bool
)

func init() {
	flag.StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&colorless, "colorless", false, "Disable colored log output")
	flag.IntVar(&width, "width", 1920, "Width of the output image")
	flag.IntVar(&height, "height", 1080, "Height of the output image")
	flag.StringVar(&output, "out", "output.png", "Output image path")
	flag.BoolVar(&renderSystemTracks, "render-system-tracks", false, "Render main/return/group tracks too")
	flag.BoolVar(&renderDisabledClips, "render-disabled-clips", false, "Render disabled clips")
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <set.als>\n\nFlags:\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	log := logger.GetLogger()
	log.SetLevel(logger.ParseLevel(logLevel))
	if colorless {
		log.SetColorize(false)
	}

	if err := run(flag.Arg(0), log); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(input string, log *logger.Logger) error {
	input, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	log.Infof("Input file '%s'", input)
	log.Infof("Output resolution: %dx%d", width, height)

	parser := alsparse.NewParser(alsparse.WithLogger(log))
	res, err := parser.ParseFile(input)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", input, err)
	}
	project := res.Project

	log.Infof("Project: %s %s, duration %.2f beats",
		project.DAW(), project.DAWVersion(), project.Duration())
	if project.Duration() <= 0 {
		return fmt.Errorf("project is empty, nothing to render")
	}

	info := RenderInfo{
		Width:               width,
		Height:              height,
		RenderSystemTracks:  renderSystemTracks,
		RenderDisabledClips: renderDisabledClips,
	}
	if err := render(project, info, output); err != nil {
		return err
	}
	log.Infof("Wrote '%s'", output)
	return nil
}
