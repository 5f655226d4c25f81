package alsparse

import "fmt"

// Project is the root of the parsed object graph. It is constructed once
// per parse and not mutated afterwards; it holds no references back into
// the source XML tree.
type Project struct {
	MajorVersion int
	MinorA       int
	MinorB       int
	MinorC       int

	// Metadata carries the remaining attributes of the Ableton root
	// element (Creator, Revision, SchemaChangeCount, ...).
	Metadata map[string]string

	// ContentHash is the MD5 of the decompressed XML, hex-encoded. Used
	// by the catalog to dedupe re-imports of the same set.
	ContentHash string

	Tempo  float64
	Tracks []*Track
}

// DAW names the originating workstation. Constant for this parser, part of
// the generic project surface so consumers can stay format-agnostic.
func (p *Project) DAW() string { return "Ableton Live" }

// DAWVersion renders the minor version triple, e.g. "10.0.377".
func (p *Project) DAWVersion() string {
	return fmt.Sprintf("%d.%d.%d", p.MinorA, p.MinorB, p.MinorC)
}

// Duration is the project length in project time units: the largest clip
// end across all tracks, 0 for an empty set.
func (p *Project) Duration() ProjectTime {
	var d ProjectTime
	for _, t := range p.Tracks {
		if td := t.Duration(); td > d {
			d = td
		}
	}
	return d
}

// Track is one arrangement lane. Kind decides which clip/automation
// extraction path built it and is never revised after construction.
type Track struct {
	ID     int
	Name   string
	Kind   TrackKind
	Color  Color
	Frozen bool

	// GroupID is the ID of the enclosing group track, or -1. Children
	// lists the IDs of tracks grouped under this one (set only on Group
	// tracks). Both are non-owning: every Track is owned by the Project.
	GroupID  int
	Children []int

	Clips       []*Clip
	Automations []*Automation
}

// Duration is the largest clip end on this track, 0 when it has no clips.
func (t *Track) Duration() ProjectTime {
	var d ProjectTime
	for _, c := range t.Clips {
		if c.End > d {
			d = c.End
		}
	}
	return d
}

// Clip is a time-bounded region on a track. The shared fields are always
// populated; SamplePath is meaningful only for ClipAudio, Notes only for
// ClipMidi.
type Clip struct {
	Kind     ClipKind
	Name     string
	Color    Color
	Start    ProjectTime
	End      ProjectTime
	Disabled bool

	// SamplePath is the referenced audio file for audio clips. The sample
	// itself is never opened during a parse.
	SamplePath string

	// Notes are time-ascending, owned exclusively by this clip.
	Notes []Note
}

// Automation is one per-parameter envelope owned by a track. Target is the
// raw dotted parameter path from the set (rewritten through the shortcut
// table); decoding it further is left to consumers.
type Automation struct {
	Target string
	Points []AutomationPoint
}
