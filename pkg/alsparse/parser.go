package alsparse

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"

	"github.com/beevik/etree"
)

var minorVersionRE = regexp.MustCompile(`^(\d+)\.(\d+)_(\d+)$`)

// Result is what a successful parse returns: the project graph plus every
// schema irregularity encountered along the way. A non-empty Diagnostics
// list still means success; callers decide whether to log or ignore it.
type Result struct {
	Project     *Project
	Diagnostics []Diagnostic
}

// Parser turns Ableton Live set bytes into a Project graph. A Parser is
// stateless across calls and safe to reuse; each Parse produces an
// independent Result.
type Parser struct {
	log          Logger
	defaultTempo float64
	strict       bool
	shortcuts    map[string]string
}

func NewParser(opts ...Option) *Parser {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	return &Parser{
		log:          cfg.Logger,
		defaultTempo: cfg.DefaultTempo,
		strict:       cfg.StrictVersion,
		shortcuts:    cfg.Shortcuts,
	}
}

// Probe reports whether content could plausibly be a Live set: gzip or xz
// framed, or plain XML.
func Probe(content []byte) bool {
	return isGzip(content) || isXZ(content) || isXML(content)
}

// SupportedExtensions lists file extensions this parser claims.
func SupportedExtensions() []string { return []string{"als"} }

// SupportedMIMETypes lists MIME types this parser claims.
func SupportedMIMETypes() []string { return []string{"application/x-ableton-live-project"} }

// ParseFile reads and parses a Live set from disk.
func (p *Parser) ParseFile(path string) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return p.Parse(content)
}

// Parse builds the project graph from raw .als bytes. It fails only with
// a *FormatError (or a strict-mode version error); everything schema-level
// degrades into Diagnostics on the Result.
func (p *Parser) Parse(content []byte) (*Result, error) {
	p.log.Debugf("parsing Live set (%d bytes)", len(content))

	xmlContent, err := decompress(content)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlContent); err != nil {
		return nil, formatErrf(err, "malformed XML")
	}
	root := doc.Root()
	if root == nil {
		return nil, &FormatError{Reason: "document has no root element", Offset: -1}
	}
	if root.Tag != "Ableton" {
		return nil, &FormatError{Reason: "root element is <" + root.Tag + ">, not <Ableton>", Offset: -1}
	}

	b := &build{p: p}
	proj, err := b.buildProject(root)
	if err != nil {
		return nil, err
	}

	sum := md5.Sum(xmlContent)
	proj.ContentHash = hex.EncodeToString(sum[:])

	p.log.Debugf("parsed %d tracks, %d diagnostics", len(proj.Tracks), len(b.diags))
	return &Result{Project: proj, Diagnostics: b.diags}, nil
}

// build carries per-parse state: the owning parser and the accumulated
// diagnostics list.
type build struct {
	p     *Parser
	diags []Diagnostic
}

func (b *build) warnf(track, path, format string, args ...any) {
	d := Diagnostic{Track: track, Path: path, Message: fmt.Sprintf(format, args...)}
	b.p.log.Warnf("%s", d)
	b.diags = append(b.diags, d)
}

func (b *build) buildProject(root *etree.Element) (*Project, error) {
	proj := &Project{Metadata: map[string]string{}}

	if err := b.parseVersion(root, proj); err != nil {
		return nil, err
	}

	liveSet := child(root, "LiveSet")
	if liveSet == nil {
		b.warnf("", "Ableton", "set has no LiveSet element")
		proj.Tempo = b.p.defaultTempo
		return proj, nil
	}

	proj.Tempo = b.parseTempo(liveSet)
	proj.Tracks = b.parseTracks(liveSet)
	b.linkGroups(proj.Tracks)
	return proj, nil
}

// parseVersion reads the Ableton root attributes. Live writes something
// like MajorVersion="5" MinorVersion="10.0_377" plus Creator/Revision;
// everything beyond the two version keys lands in Metadata.
func (b *build) parseVersion(root *etree.Element, proj *Project) error {
	versionOK := true

	major, ok := attrInt(root, "MajorVersion", 0)
	if !ok {
		versionOK = false
	}
	proj.MajorVersion = major

	minor := attr(root, "MinorVersion", "")
	if m := minorVersionRE.FindStringSubmatch(minor); m != nil {
		proj.MinorA, _ = strconv.Atoi(m[1])
		proj.MinorB, _ = strconv.Atoi(m[2])
		proj.MinorC, _ = strconv.Atoi(m[3])
	} else {
		versionOK = false
	}

	if !versionOK {
		if b.p.strict {
			return &FormatError{Reason: "missing or malformed version header", Offset: -1}
		}
		b.warnf("", "Ableton", "missing or malformed version header (MajorVersion=%q, MinorVersion=%q)",
			attr(root, "MajorVersion", ""), minor)
	}

	for _, a := range root.Attr {
		if a.Key != "MajorVersion" && a.Key != "MinorVersion" {
			proj.Metadata[a.Key] = a.Value
		}
	}
	return nil
}

// parseTempo reads the set tempo from the main track mixer. Newer sets
// call the element MainTrack, pre-11 sets MasterTrack.
func (b *build) parseTempo(liveSet *etree.Element) float64 {
	mainTrack := child(liveSet, "MainTrack")
	if mainTrack == nil {
		mainTrack = child(liveSet, "MasterTrack")
	}
	if tempo, ok := valueFloat(mainTrack, 0, "DeviceChain", "Mixer", "Tempo", "Manual"); ok && tempo > 0 {
		return tempo
	}
	b.warnf("", "LiveSet.MainTrack", "no readable tempo, defaulting to %g BPM", b.p.defaultTempo)
	return b.p.defaultTempo
}

// parseTracks walks LiveSet/Tracks in document order and classifies every
// child by its element tag, then appends the main track. Unrecognized
// tags produce an Unknown track instead of failing the parse.
func (b *build) parseTracks(liveSet *etree.Element) []*Track {
	var tracks []*Track

	container := child(liveSet, "Tracks")
	if container == nil {
		b.warnf("", "LiveSet", "set has no Tracks container")
	}
	for _, el := range elementChildren(container) {
		switch el.Tag {
		case "AudioTrack":
			tracks = append(tracks, b.parseAudioTrack(el))
		case "MidiTrack":
			tracks = append(tracks, b.parseMidiTrack(el))
		case "ReturnTrack":
			tracks = append(tracks, b.parseSimpleTrack(el, TrackReturn))
		case "GroupTrack":
			tracks = append(tracks, b.parseSimpleTrack(el, TrackGroup))
		case "PreHearTrack":
			// cue bus, carries no clips or user automation worth keeping
		default:
			t := b.parseSimpleTrack(el, TrackUnknown)
			b.warnf(t.Name, "LiveSet.Tracks."+el.Tag, "unknown track type %q", el.Tag)
			tracks = append(tracks, t)
		}
	}

	mainTrack := child(liveSet, "MainTrack")
	if mainTrack == nil {
		mainTrack = child(liveSet, "MasterTrack")
	}
	if mainTrack == nil {
		b.warnf("", "LiveSet", "set has no main track")
	} else {
		tracks = append(tracks, b.parseSimpleTrack(mainTrack, TrackMain))
	}
	return tracks
}

// trackHeader pulls the fields every track variant shares.
func (b *build) trackHeader(el *etree.Element, kind TrackKind) *Track {
	name := valueOf(el, "Name", "EffectiveName")
	if name == "" {
		name = valueOf(el, "Name", "UserName")
	}

	color, ok := valueInt(el, int(ColorNone), "Color")
	if !ok {
		// pre-10 sets store the palette slot as ColorIndex
		color, _ = valueInt(el, int(ColorNone), "ColorIndex")
	}

	id, _ := attrInt(el, "Id", -1)
	groupID, _ := valueInt(el, -1, "TrackGroupId")

	return &Track{
		ID:      id,
		Name:    name,
		Kind:    kind,
		Color:   Color(color),
		Frozen:  valueBool(el, false, "Freeze"),
		GroupID: groupID,
	}
}

func (b *build) parseAudioTrack(el *etree.Element) *Track {
	t := b.trackHeader(el, TrackAudio)
	events := child(el, "DeviceChain", "MainSequencer", "Sample", "ArrangerAutomation", "Events")
	for _, clipEl := range children(events, "AudioClip") {
		t.Clips = append(t.Clips, b.parseClip(t, clipEl, ClipAudio))
	}
	t.Automations = b.parseAutomations(el, t.Name)
	return t
}

func (b *build) parseMidiTrack(el *etree.Element) *Track {
	t := b.trackHeader(el, TrackMidi)
	events := child(el, "DeviceChain", "MainSequencer", "ClipTimeable", "ArrangerAutomation", "Events")
	for _, clipEl := range children(events, "MidiClip") {
		t.Clips = append(t.Clips, b.parseClip(t, clipEl, ClipMidi))
	}
	t.Automations = b.parseAutomations(el, t.Name)
	return t
}

// parseSimpleTrack handles the kinds without an arrangement clip lane:
// return, group and main tracks still carry automation.
func (b *build) parseSimpleTrack(el *etree.Element, kind TrackKind) *Track {
	t := b.trackHeader(el, kind)
	t.Automations = b.parseAutomations(el, t.Name)
	return t
}

func (b *build) parseClip(t *Track, el *etree.Element, kind ClipKind) *Clip {
	clip := &Clip{
		Kind:     kind,
		Name:     valueOf(el, "Name"),
		Disabled: valueBool(el, false, "Disabled"),
	}

	color, ok := valueInt(el, int(ColorNone), "Color")
	if !ok {
		color, _ = valueInt(el, int(ColorNone), "ColorIndex")
	}
	clip.Color = Color(color)

	start, startOK := valueFloat(el, 0, "CurrentStart")
	end, endOK := valueFloat(el, 0, "CurrentEnd")
	if !startOK || !endOK {
		b.warnf(t.Name, elementPath(el), "clip %q has no readable time range", clip.Name)
	}
	if end < start {
		b.warnf(t.Name, elementPath(el), "clip %q ends (%g) before it starts (%g), clamping", clip.Name, end, start)
		end = start
	}
	clip.Start, clip.End = start, end

	switch kind {
	case ClipAudio:
		clip.SamplePath = valueOf(el, "SampleRef", "FileRef", "RelativePath")
		if clip.SamplePath == "" {
			clip.SamplePath = valueOf(el, "SampleRef", "FileRef", "Path")
		}
	case ClipMidi:
		clip.Notes = b.parseNotes(t, el, clip)
	}
	return clip
}

// parseNotes flattens the per-pitch KeyTrack layout into one time-ascending
// note list. Live groups notes by pitch, so document order alone would be
// pitch-major, which neither consumer wants.
func (b *build) parseNotes(t *Track, clipEl *etree.Element, clip *Clip) []Note {
	var notes []Note
	for _, kt := range children(child(clipEl, "Notes", "KeyTracks"), "KeyTrack") {
		pitch, ok := valueInt(kt, 0, "MidiKey")
		if !ok {
			b.warnf(t.Name, elementPath(kt), "clip %q: key track without a readable pitch, skipping its notes", clip.Name)
			continue
		}
		if clamped, c := clampMidiRange(pitch); c {
			b.warnf(t.Name, elementPath(kt), "clip %q: pitch %d outside 0-127, clamped to %d", clip.Name, pitch, clamped)
			pitch = clamped
		}

		for _, ev := range children(child(kt, "Notes"), "MidiNoteEvent") {
			start, _ := attrFloat(ev, "Time", 0)
			dur, _ := attrFloat(ev, "Duration", 0)
			if dur < 0 {
				b.warnf(t.Name, elementPath(ev), "clip %q: negative note duration %g, clamped to 0", clip.Name, dur)
				dur = 0
			}

			velF, velOK := attrFloat(ev, "Velocity", 100)
			if !velOK && attr(ev, "Velocity", "") != "" {
				b.warnf(t.Name, elementPath(ev), "clip %q: unreadable velocity %q, skipping note", clip.Name, attr(ev, "Velocity", ""))
				continue
			}
			vel := int(velF + 0.5)
			if clamped, c := clampMidiRange(vel); c {
				b.warnf(t.Name, elementPath(ev), "clip %q: velocity %d outside 0-127, clamped to %d", clip.Name, vel, clamped)
				vel = clamped
			}

			notes = append(notes, Note{
				Pitch:    pitch,
				Start:    start,
				Duration: dur,
				Velocity: vel,
				Muted:    !attrBool(ev, "IsEnabled", true),
			})
		}
	}
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Start != notes[j].Start {
			return notes[i].Start < notes[j].Start
		}
		return notes[i].Pitch < notes[j].Pitch
	})
	return notes
}

func clampMidiRange(v int) (int, bool) {
	switch {
	case v < 0:
		return 0, true
	case v > 127:
		return 127, true
	default:
		return v, false
	}
}

// linkGroups fills in the non-owning group index: every track that names a
// TrackGroupId gets listed under the matching group track's Children.
func (b *build) linkGroups(tracks []*Track) {
	groups := make(map[int]*Track)
	for _, t := range tracks {
		if t.Kind == TrackGroup && t.ID >= 0 {
			groups[t.ID] = t
		}
	}
	for _, t := range tracks {
		if t.GroupID < 0 {
			continue
		}
		g, ok := groups[t.GroupID]
		if !ok {
			b.warnf(t.Name, "", "track references group %d which does not exist", t.GroupID)
			continue
		}
		if g != t {
			g.Children = append(g.Children, t.ID)
		}
	}
}

// elementChildren returns the element children of el in document order,
// regardless of tag. nil-safe like the rest of the accessor layer.
func elementChildren(el *etree.Element) []*etree.Element {
	if el == nil {
		return nil
	}
	return el.ChildElements()
}
