// als-dump prints the contents of an Ableton Live set: project metadata,
// tracks, clips, notes and automation envelopes.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kurylko/alsparse/pkg/alsparse"
	"github.com/kurylko/alsparse/pkg/alsparse/export"
	"github.com/kurylko/alsparse/pkg/alsparse/sample"
	"github.com/kurylko/alsparse/pkg/logger"
)

var (
	logLevel       string
	colorless      bool
	format         string
	inspectSamples bool
	exportMIDI     string
	includeMuted   bool
)

func init() {
	flag.StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&colorless, "colorless", false, "Disable colored output")
	flag.StringVar(&format, "format", "text", "Output format (text, json, yaml)")
	flag.BoolVar(&inspectSamples, "inspect-samples", false, "Read WAV metadata of referenced samples")
	flag.StringVar(&exportMIDI, "export-midi", "", "Also write MIDI tracks to the given .mid file")
	flag.BoolVar(&includeMuted, "include-muted", false, "Keep muted notes in the MIDI export")
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

	parser := alsparse.NewParser(alsparse.WithLogger(log))
	res, err := parser.ParseFile(input)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", input, err)
	}
	project := res.Project

	switch format {
	case "json":
		if err := export.WriteJSON(project, os.Stdout); err != nil {
			return err
		}
	case "yaml":
		if err := export.WriteYAML(project, os.Stdout); err != nil {
			return err
		}
	case "text":
		dumpText(input, project, log)
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	for _, d := range res.Diagnostics {
		log.Warnf("schema: %s", d)
	}

	if exportMIDI != "" {
		opts := export.MIDIOptions{IncludeMuted: includeMuted}
		if err := export.WriteMIDIFile(project, exportMIDI, opts); err != nil {
			return err
		}
		log.Infof("Wrote MIDI export to '%s'", exportMIDI)
	}
	return nil
}

func dumpText(input string, project *alsparse.Project, log *logger.Logger) {
	if fi, err := os.Stat(input); err == nil {
		log.Infof("File size: %s", humanize.Bytes(uint64(fi.Size())))
	}
	log.Infof("Project: %s %s, tempo %.2f BPM, duration %.2f beats",
		project.DAW(), project.DAWVersion(), project.Tempo, project.Duration())
	if creator := project.Metadata["Creator"]; creator != "" {
		log.Infof("Creator: %s", creator)
	}

	for _, track := range project.Tracks {
		frozen := ""
		if track.Frozen {
			frozen = " (frozen)"
		}
		log.Infof("  %s Track: \"%s\"%s", track.Kind, track.Name, frozen)
		if len(track.Children) > 0 {
			log.Infof("    Group members: %v", track.Children)
		}
		for _, clip := range track.Clips {
			state := ""
			if clip.Disabled {
				state = " (disabled)"
			}
			log.Infof("    Clip: \"%s\". Start: %.2f, End: %.2f%s", clip.Name, clip.Start, clip.End, state)
			if clip.Kind == alsparse.ClipMidi {
				log.Infof("      Notes: %s", humanize.Comma(int64(len(clip.Notes))))
				for _, n := range clip.Notes {
					log.Debugf("      Note: pitch=%d start=%.3f dur=%.3f vel=%d muted=%v",
						n.Pitch, n.Start, n.Duration, n.Velocity, n.Muted)
				}
			}
			if clip.Kind == alsparse.ClipAudio && clip.SamplePath != "" {
				log.Infof("      Sample: %s", clip.SamplePath)
				if inspectSamples {
					describeSample(input, clip.SamplePath, log)
				}
			}
		}
		for _, a := range track.Automations {
			log.Infof("    Automation: \"%s\". Events %d", a.Target, len(a.Points))
			for _, pt := range a.Points {
				log.Debugf("      Event: %g, %g", pt.Time, pt.Value)
			}
		}
	}
}

// describeSample resolves the (usually relative) sample path against the
// set location and prints its WAV header, skipping quietly when the file
// is missing or not a WAV.
func describeSample(setPath, samplePath string, log *logger.Logger) {
	p := samplePath
	if !filepath.IsAbs(p) {
		p = filepath.Join(filepath.Dir(setPath), p)
	}
	info, err := sample.ReadInfo(p)
	if err != nil {
		log.Debugf("sample %s: %v", samplePath, err)
		return
	}
	log.Infof("        %d Hz, %d ch, %d bit, %s, %s",
		info.SampleRate, info.Channels, info.BitDepth,
		info.Duration.Round(time.Millisecond), humanize.Bytes(uint64(info.SizeBytes)))
}
