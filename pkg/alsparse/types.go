package alsparse

// ProjectTime is a position or span in the project's native time
// coordinate (beats for Ableton arrangement view).
type ProjectTime = float64

// ProjectStart is the origin of the project timeline.
const ProjectStart ProjectTime = 0

// TrackKind identifies which extraction path built a track. It is decided
// once, when the track element is classified, and never changes afterwards.
type TrackKind int

const (
	TrackUnknown TrackKind = iota
	TrackAudio
	TrackMidi
	TrackReturn
	TrackGroup
	TrackMain
)

func (k TrackKind) String() string {
	switch k {
	case TrackAudio:
		return "Audio"
	case TrackMidi:
		return "Midi"
	case TrackReturn:
		return "Return"
	case TrackGroup:
		return "Group"
	case TrackMain:
		return "Main"
	default:
		return "Unknown"
	}
}

// ClipKind distinguishes the two clip variants.
type ClipKind int

const (
	ClipAudio ClipKind = iota
	ClipMidi
)

func (k ClipKind) String() string {
	if k == ClipMidi {
		return "Midi"
	}
	return "Audio"
}

// Color is an index into Live's clip/track color palette. Live stores the
// palette slot, not RGB, so the index is what survives a parse; RGBA()
// maps it through an approximation of the Live 11 palette.
type Color int

// ColorNone marks elements that carried no Color attribute.
const ColorNone Color = -1

// livePalette approximates the first rows of the Live color picker.
// Indices past the table wrap around, which matches how a stable but not
// pixel-exact rendering is good enough for dump/visualize consumers.
var livePalette = [...][3]uint8{
	{255, 148, 166}, {255, 165, 41}, {204, 153, 39}, {247, 242, 94},
	{191, 250, 0}, {26, 255, 47}, {37, 255, 168}, {92, 255, 232},
	{139, 199, 255}, {84, 129, 229}, {146, 167, 255}, {216, 108, 228},
	{229, 83, 160}, {255, 255, 255}, {255, 54, 54}, {246, 102, 2},
	{153, 114, 74}, {255, 240, 52}, {135, 255, 103}, {61, 196, 0},
	{0, 191, 175}, {25, 233, 255}, {16, 168, 255}, {0, 125, 192},
	{136, 108, 228}, {166, 146, 171}, {255, 57, 254}, {208, 66, 108},
}

// RGBA returns an approximate display color. Unset colors come back as a
// neutral gray so callers never have to special-case ColorNone.
func (c Color) RGBA() (r, g, b, a uint8) {
	if c < 0 {
		return 128, 128, 128, 255
	}
	p := livePalette[int(c)%len(livePalette)]
	return p[0], p[1], p[2], 255
}

// Note is one MIDI note inside a MidiClip. Start is relative to the clip
// start; Pitch is a MIDI note number (A0 = 21, C4 = 60).
type Note struct {
	Pitch    int
	Start    ProjectTime
	Duration ProjectTime
	Velocity int
	Muted    bool
}

// End returns the note-off position relative to the clip start.
func (n Note) End() ProjectTime { return n.Start + n.Duration }

// AutomationPoint is one (time, value) breakpoint of an envelope. Boolean
// events are mapped to 0/1 so consumers only ever see numbers.
type AutomationPoint struct {
	Time  ProjectTime
	Value float64
}

// Diagnostic records a non-fatal schema irregularity found during a parse:
// a missing element, an out-of-range value, an unrecognized track type.
// Diagnostics never abort the parse; the affected entity is filled with
// defaults instead.
type Diagnostic struct {
	Track   string // display name of the enclosing track, if known
	Path    string // dotted XML path of the offending element
	Message string
}

func (d Diagnostic) String() string {
	s := d.Message
	if d.Path != "" {
		s = d.Path + ": " + s
	}
	if d.Track != "" {
		s = d.Track + ": " + s
	}
	return s
}
