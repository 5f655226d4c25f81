// Package export turns parsed projects into external formats: Standard
// MIDI Files for the note data and YAML/JSON summaries for tooling.
package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/kurylko/alsparse/pkg/alsparse"
)

// ticksPerQuarter is the SMF resolution. Note times in the project are in
// beats, so one beat maps to one quarter note worth of ticks.
const ticksPerQuarter = 960

// MIDIOptions controls SMF export.
type MIDIOptions struct {
	IncludeMuted    bool // keep notes whose mute flag is set
	IncludeDisabled bool // keep clips that are disabled in the set
}

// WriteMIDI renders every MIDI track of the project into one SMF1 file,
// one SMF track per project track, and writes it to w. Tracks without any
// exportable notes are skipped; exporting a project with no MIDI content
// at all is an error.
func WriteMIDI(p *alsparse.Project, w io.Writer, opts MIDIOptions) error {
	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	exported := 0
	for _, t := range p.Tracks {
		if t.Kind != alsparse.TrackMidi {
			continue
		}
		tr, notes := trackToSMF(p, t, opts)
		if notes == 0 {
			continue
		}
		if err := s.Add(tr); err != nil {
			return fmt.Errorf("adding track %q: %w", t.Name, err)
		}
		exported++
	}
	if exported == 0 {
		return fmt.Errorf("project has no exportable MIDI notes")
	}

	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("writing SMF: %w", err)
	}
	return nil
}

// WriteMIDIFile is WriteMIDI to a file path.
func WriteMIDIFile(p *alsparse.Project, path string, opts MIDIOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return WriteMIDI(p, f, opts)
}

type midiEvent struct {
	tick uint32
	off  bool // note-offs sort before note-ons at the same tick
	msg  midi.Message
}

func trackToSMF(p *alsparse.Project, t *alsparse.Track, opts MIDIOptions) (smf.Track, int) {
	var events []midiEvent
	for _, clip := range t.Clips {
		if clip.Disabled && !opts.IncludeDisabled {
			continue
		}
		for _, n := range clip.Notes {
			if n.Muted && !opts.IncludeMuted {
				continue
			}
			// note times are relative to the clip start
			on := beatsToTicks(clip.Start + n.Start)
			off := beatsToTicks(clip.Start + n.End())
			if off <= on {
				off = on + 1
			}
			events = append(events, midiEvent{tick: on, msg: midi.NoteOn(0, uint8(n.Pitch), uint8(n.Velocity))})
			events = append(events, midiEvent{tick: off, off: true, msg: midi.NoteOff(0, uint8(n.Pitch))})
		}
	}

	var tr smf.Track
	if len(events) == 0 {
		tr.Close(0)
		return tr, 0
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].off && !events[j].off
	})

	tr.Add(0, smf.MetaTrackSequenceName(t.Name))
	tr.Add(0, smf.MetaTempo(p.Tempo))

	var last uint32
	for _, ev := range events {
		tr.Add(ev.tick-last, ev.msg)
		last = ev.tick
	}
	tr.Close(0)
	return tr, len(events) / 2
}

func beatsToTicks(beats float64) uint32 {
	if beats < 0 {
		return 0
	}
	return uint32(math.Round(beats * ticksPerQuarter))
}
