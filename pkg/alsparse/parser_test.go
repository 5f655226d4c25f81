package alsparse

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// buildSet wraps track XML in a minimal but structurally faithful Live
// set, complete with a main track carrying the tempo.
func buildSet(tracksXML string) []byte {
	const tmpl = `<?xml version="1.0" encoding="UTF-8"?>
<Ableton MajorVersion="5" MinorVersion="10.0_377" SchemaChangeCount="3" Creator="Ableton Live 10.1.7" Revision="f7eb4c8e">
	<LiveSet>
		<Tracks>
%s
		</Tracks>
		<MainTrack Id="30">
			<Name><EffectiveName Value="Main"/></Name>
			<Color Value="0"/>
			<DeviceChain>
				<Mixer>
					<Tempo>
						<Manual Value="128"/>
					</Tempo>
				</Mixer>
			</DeviceChain>
			<AutomationEnvelopes><Envelopes/></AutomationEnvelopes>
		</MainTrack>
	</LiveSet>
</Ableton>`
	return []byte(fmt.Sprintf(tmpl, tracksXML))
}

const audioTrackXML = `<AudioTrack Id="10">
	<Name><EffectiveName Value="Drums"/></Name>
	<Color Value="3"/>
	<TrackGroupId Value="-1"/>
	<Freeze Value="false"/>
	<DeviceChain>
		<MainSequencer>
			<Sample>
				<ArrangerAutomation>
					<Events>
						<AudioClip Id="0" Time="0">
							<CurrentStart Value="0"/>
							<CurrentEnd Value="4"/>
							<Name Value="Kick"/>
							<Color Value="5"/>
							<Disabled Value="false"/>
							<SampleRef><FileRef><RelativePath Value="Samples/kick.wav"/></FileRef></SampleRef>
						</AudioClip>
					</Events>
				</ArrangerAutomation>
			</Sample>
		</MainSequencer>
		<Mixer>
			<Volume>
				<AutomationTarget Id="77"/>
			</Volume>
		</Mixer>
	</DeviceChain>
	<AutomationEnvelopes>
		<Envelopes>
			<AutomationEnvelope Id="1">
				<EnvelopeTarget><PointeeId Value="77"/></EnvelopeTarget>
				<Automation>
					<Events>
						<FloatEvent Id="1" Time="4" Value="0.5"/>
						<FloatEvent Id="2" Time="0" Value="1"/>
						<FloatEvent Id="3" Time="2" Value="0.75"/>
					</Events>
				</Automation>
			</AutomationEnvelope>
		</Envelopes>
	</AutomationEnvelopes>
</AudioTrack>`

const midiTrackXML = `<MidiTrack Id="11">
	<Name><EffectiveName Value="Lead"/></Name>
	<Color Value="7"/>
	<TrackGroupId Value="-1"/>
	<DeviceChain>
		<MainSequencer>
			<ClipTimeable>
				<ArrangerAutomation>
					<Events>
						<MidiClip Id="0" Time="0">
							<CurrentStart Value="0"/>
							<CurrentEnd Value="8"/>
							<Name Value="Melody"/>
							<Color Value="9"/>
							<Disabled Value="false"/>
							<Notes>
								<KeyTracks>
									<KeyTrack Id="0">
										<Notes>
											<MidiNoteEvent Time="1" Duration="1" Velocity="90" IsEnabled="true"/>
										</Notes>
										<MidiKey Value="64"/>
									</KeyTrack>
									<KeyTrack Id="1">
										<Notes>
											<MidiNoteEvent Time="0" Duration="1" Velocity="100" IsEnabled="true"/>
										</Notes>
										<MidiKey Value="60"/>
									</KeyTrack>
								</KeyTracks>
							</Notes>
						</MidiClip>
					</Events>
				</ArrangerAutomation>
			</ClipTimeable>
		</MainSequencer>
	</DeviceChain>
	<AutomationEnvelopes><Envelopes/></AutomationEnvelopes>
</MidiTrack>`

func gzipBytes(t *testing.T, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(content); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func mustParse(t *testing.T, content []byte) *Result {
	t.Helper()
	res, err := NewParser().Parse(content)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return res
}

func TestParseAudioTrack(t *testing.T) {
	res := mustParse(t, buildSet(audioTrackXML))
	p := res.Project

	if p.Tempo != 128 {
		t.Errorf("tempo = %g, want 128", p.Tempo)
	}
	if p.MajorVersion != 5 || p.MinorA != 10 || p.MinorB != 0 || p.MinorC != 377 {
		t.Errorf("version = %d/%d.%d.%d, want 5/10.0.377", p.MajorVersion, p.MinorA, p.MinorB, p.MinorC)
	}
	if p.DAWVersion() != "10.0.377" {
		t.Errorf("DAWVersion = %q", p.DAWVersion())
	}
	if p.Metadata["Creator"] != "Ableton Live 10.1.7" {
		t.Errorf("Creator metadata = %q", p.Metadata["Creator"])
	}

	// audio track plus the main track
	if len(p.Tracks) != 2 {
		t.Fatalf("track count = %d, want 2", len(p.Tracks))
	}
	track := p.Tracks[0]
	if track.Kind != TrackAudio {
		t.Errorf("kind = %v, want Audio", track.Kind)
	}
	if track.Name != "Drums" || track.ID != 10 || track.Color != 3 {
		t.Errorf("track header = %q/%d/%d", track.Name, track.ID, track.Color)
	}

	if len(track.Clips) != 1 {
		t.Fatalf("clip count = %d, want 1", len(track.Clips))
	}
	clip := track.Clips[0]
	if clip.Kind != ClipAudio || clip.Name != "Kick" || clip.Start != 0 || clip.End != 4 {
		t.Errorf("clip = %+v", clip)
	}
	if clip.SamplePath != "Samples/kick.wav" {
		t.Errorf("sample path = %q", clip.SamplePath)
	}

	if p.Tracks[1].Kind != TrackMain {
		t.Errorf("last track kind = %v, want Main", p.Tracks[1].Kind)
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", res.Diagnostics)
	}
}

func TestParseMidiNotes(t *testing.T) {
	res := mustParse(t, buildSet(midiTrackXML))

	track := res.Project.Tracks[0]
	if track.Kind != TrackMidi {
		t.Fatalf("kind = %v, want Midi", track.Kind)
	}
	if len(track.Clips) != 1 {
		t.Fatalf("clip count = %d, want 1", len(track.Clips))
	}
	notes := track.Clips[0].Notes
	want := []Note{
		{Pitch: 60, Start: 0, Duration: 1, Velocity: 100},
		{Pitch: 64, Start: 1, Duration: 1, Velocity: 90},
	}
	if !reflect.DeepEqual(notes, want) {
		t.Errorf("notes = %+v, want %+v", notes, want)
	}
}

func TestAutomationTargetAndOrder(t *testing.T) {
	res := mustParse(t, buildSet(audioTrackXML))

	autos := res.Project.Tracks[0].Automations
	if len(autos) != 1 {
		t.Fatalf("automation count = %d, want 1", len(autos))
	}
	if autos[0].Target != "Volume" {
		t.Errorf("target = %q, want Volume", autos[0].Target)
	}
	points := autos[0].Points
	if len(points) != 3 {
		t.Fatalf("point count = %d, want 3", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].Time < points[i-1].Time {
			t.Errorf("points not sorted by time: %+v", points)
		}
	}
	if points[0].Value != 1 || points[2].Value != 0.5 {
		t.Errorf("points = %+v", points)
	}
}

func TestGzipRoundTripEquivalence(t *testing.T) {
	plain := buildSet(audioTrackXML)

	fromPlain := mustParse(t, plain)
	fromGzip := mustParse(t, gzipBytes(t, plain))

	if !reflect.DeepEqual(fromPlain.Project, fromGzip.Project) {
		t.Error("gzip-framed parse differs from plain XML parse")
	}
	if fromPlain.Project.ContentHash == "" {
		t.Error("content hash not populated")
	}
}

func TestParseIdempotent(t *testing.T) {
	content := buildSet(audioTrackXML + "\n" + midiTrackXML)
	p := NewParser()

	first, err := p.Parse(content)
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	second, err := p.Parse(content)
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if !reflect.DeepEqual(first.Project, second.Project) {
		t.Error("two parses of the same content differ")
	}
}

func TestUnknownTrackKind(t *testing.T) {
	res := mustParse(t, buildSet(`<VideoTrack Id="99">
	<Name><EffectiveName Value="Cam"/></Name>
	<Color Value="1"/>
</VideoTrack>`))

	track := res.Project.Tracks[0]
	if track.Kind != TrackUnknown {
		t.Errorf("kind = %v, want Unknown", track.Kind)
	}
	if track.Name != "Cam" {
		t.Errorf("name = %q, want Cam", track.Name)
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v, want exactly one", res.Diagnostics)
	}
	if !strings.Contains(res.Diagnostics[0].Message, "unknown track type") {
		t.Errorf("diagnostic = %q", res.Diagnostics[0].Message)
	}
}

func TestGroupMembership(t *testing.T) {
	res := mustParse(t, buildSet(`<GroupTrack Id="20">
	<Name><EffectiveName Value="Bus"/></Name>
	<Color Value="2"/>
	<TrackGroupId Value="-1"/>
</GroupTrack>
<AudioTrack Id="21">
	<Name><EffectiveName Value="Grouped"/></Name>
	<Color Value="4"/>
	<TrackGroupId Value="20"/>
</AudioTrack>`))

	group := res.Project.Tracks[0]
	if group.Kind != TrackGroup {
		t.Fatalf("kind = %v, want Group", group.Kind)
	}
	if !reflect.DeepEqual(group.Children, []int{21}) {
		t.Errorf("group children = %v, want [21]", group.Children)
	}
	if res.Project.Tracks[1].GroupID != 20 {
		t.Errorf("member GroupID = %d, want 20", res.Project.Tracks[1].GroupID)
	}
}

func TestInvertedClipClamped(t *testing.T) {
	res := mustParse(t, buildSet(`<AudioTrack Id="10">
	<Name><EffectiveName Value="Broken"/></Name>
	<DeviceChain><MainSequencer><Sample><ArrangerAutomation><Events>
		<AudioClip Id="0">
			<CurrentStart Value="8"/>
			<CurrentEnd Value="4"/>
			<Name Value="Backwards"/>
		</AudioClip>
	</Events></ArrangerAutomation></Sample></MainSequencer></DeviceChain>
</AudioTrack>`))

	clip := res.Project.Tracks[0].Clips[0]
	if clip.Start != 8 || clip.End != 8 {
		t.Errorf("clamped clip = [%g, %g], want [8, 8]", clip.Start, clip.End)
	}
	if len(res.Diagnostics) == 0 {
		t.Error("expected a diagnostic for the inverted range")
	}
}

func TestOutOfRangePitchClamped(t *testing.T) {
	res := mustParse(t, buildSet(`<MidiTrack Id="11">
	<Name><EffectiveName Value="Weird"/></Name>
	<DeviceChain><MainSequencer><ClipTimeable><ArrangerAutomation><Events>
		<MidiClip Id="0">
			<CurrentStart Value="0"/>
			<CurrentEnd Value="4"/>
			<Name Value="Clip"/>
			<Notes><KeyTracks>
				<KeyTrack Id="0">
					<Notes><MidiNoteEvent Time="0" Duration="1" Velocity="300" IsEnabled="true"/></Notes>
					<MidiKey Value="140"/>
				</KeyTrack>
			</KeyTracks></Notes>
		</MidiClip>
	</Events></ArrangerAutomation></ClipTimeable></MainSequencer></DeviceChain>
</MidiTrack>`))

	notes := res.Project.Tracks[0].Clips[0].Notes
	if len(notes) != 1 {
		t.Fatalf("note count = %d, want 1", len(notes))
	}
	if notes[0].Pitch != 127 || notes[0].Velocity != 127 {
		t.Errorf("note = %+v, want pitch/velocity clamped to 127", notes[0])
	}
	if len(res.Diagnostics) != 2 {
		t.Errorf("diagnostics = %v, want one for pitch and one for velocity", res.Diagnostics)
	}
}

func TestMutedNote(t *testing.T) {
	res := mustParse(t, buildSet(`<MidiTrack Id="11">
	<Name><EffectiveName Value="M"/></Name>
	<DeviceChain><MainSequencer><ClipTimeable><ArrangerAutomation><Events>
		<MidiClip Id="0">
			<CurrentStart Value="0"/>
			<CurrentEnd Value="4"/>
			<Name Value="Clip"/>
			<Notes><KeyTracks>
				<KeyTrack Id="0">
					<Notes><MidiNoteEvent Time="0" Duration="1" Velocity="64" IsEnabled="false"/></Notes>
					<MidiKey Value="36"/>
				</KeyTrack>
			</KeyTracks></Notes>
		</MidiClip>
	</Events></ArrangerAutomation></ClipTimeable></MainSequencer></DeviceChain>
</MidiTrack>`))

	notes := res.Project.Tracks[0].Clips[0].Notes
	if len(notes) != 1 || !notes[0].Muted {
		t.Errorf("notes = %+v, want one muted note", notes)
	}
}

func TestMissingTempoDefaults(t *testing.T) {
	content := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<Ableton MajorVersion="5" MinorVersion="10.0_377">
	<LiveSet>
		<Tracks/>
		<MasterTrack Id="30">
			<Name><EffectiveName Value="Master"/></Name>
		</MasterTrack>
	</LiveSet>
</Ableton>`)
	res := mustParse(t, content)

	if res.Project.Tempo != DefaultTempo {
		t.Errorf("tempo = %g, want default %g", res.Project.Tempo, DefaultTempo)
	}
	if len(res.Diagnostics) == 0 {
		t.Error("expected a diagnostic for the missing tempo")
	}
	// pre-11 sets call the main track MasterTrack
	if got := res.Project.Tracks[0].Kind; got != TrackMain {
		t.Errorf("kind = %v, want Main", got)
	}
}

func TestMalformedInput(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"random binary", []byte{0x00, 0xff, 0xfe, 0x89, 0x50, 0x4e, 0x47}},
		{"truncated gzip", []byte{0x1f, 0x8b, 0x01, 0x02, 0x03}},
		{"gzip of binary garbage", gzipBytes(t, []byte{0xff, 0xfe, 0x00, 0x01})},
		{"plain text", []byte("just some text, no markup")},
		{"unbalanced xml", []byte(`<?xml version="1.0" encoding="UTF-8"?><Ableton><LiveSet></Ableton>`)},
		{"wrong root", []byte(`<?xml version="1.0" encoding="UTF-8"?><NotAbleton/>`)},
	}
	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Parse(tt.content)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !IsFormatError(err) {
				t.Errorf("error %v is not a FormatError", err)
			}
			if res != nil {
				t.Error("got a partial result alongside a fatal error")
			}
		})
	}
}

func TestStrictVersion(t *testing.T) {
	content := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<Ableton MinorVersion="garbage">
	<LiveSet><Tracks/></LiveSet>
</Ableton>`)

	if _, err := NewParser(WithStrictVersion()).Parse(content); err == nil {
		t.Error("strict parser accepted a garbled version header")
	}

	res, err := NewParser().Parse(content)
	if err != nil {
		t.Fatalf("lenient parse failed: %v", err)
	}
	if res.Project.MajorVersion != 0 {
		t.Errorf("MajorVersion = %d, want 0 default", res.Project.MajorVersion)
	}
	found := false
	for _, d := range res.Diagnostics {
		if strings.Contains(d.Message, "version header") {
			found = true
		}
	}
	if !found {
		t.Errorf("no version diagnostic in %v", res.Diagnostics)
	}
}

func TestEmptyEnvelopeRetained(t *testing.T) {
	res := mustParse(t, buildSet(`<AudioTrack Id="10">
	<Name><EffectiveName Value="A"/></Name>
	<DeviceChain><Mixer><Pan><AutomationTarget Id="5"/></Pan></Mixer></DeviceChain>
	<AutomationEnvelopes><Envelopes>
		<AutomationEnvelope Id="1">
			<EnvelopeTarget><PointeeId Value="5"/></EnvelopeTarget>
			<Automation><Events/></Automation>
		</AutomationEnvelope>
	</Envelopes></AutomationEnvelopes>
</AudioTrack>`))

	autos := res.Project.Tracks[0].Automations
	if len(autos) != 1 {
		t.Fatalf("empty envelope was dropped")
	}
	if autos[0].Target != "Pan" {
		t.Errorf("target = %q, want Pan", autos[0].Target)
	}
	if len(autos[0].Points) != 0 {
		t.Errorf("points = %v, want none", autos[0].Points)
	}
}

func TestUnresolvedAutomationTarget(t *testing.T) {
	res := mustParse(t, buildSet(`<AudioTrack Id="10">
	<Name><EffectiveName Value="A"/></Name>
	<AutomationEnvelopes><Envelopes>
		<AutomationEnvelope Id="1">
			<EnvelopeTarget><PointeeId Value="12345"/></EnvelopeTarget>
			<Automation><Events/></Automation>
		</AutomationEnvelope>
	</Envelopes></AutomationEnvelopes>
</AudioTrack>`))

	autos := res.Project.Tracks[0].Automations
	if len(autos) != 1 {
		t.Fatalf("unresolved envelope was dropped")
	}
	if autos[0].Target != "Pointee(12345)" {
		t.Errorf("target = %q, want Pointee(12345)", autos[0].Target)
	}
	if len(res.Diagnostics) == 0 {
		t.Error("expected a diagnostic for the unresolved target")
	}
}

func TestBoolAutomationEvents(t *testing.T) {
	res := mustParse(t, buildSet(`<AudioTrack Id="10">
	<Name><EffectiveName Value="A"/></Name>
	<DeviceChain><Mixer><On><AutomationTarget Id="6"/></On></Mixer></DeviceChain>
	<AutomationEnvelopes><Envelopes>
		<AutomationEnvelope Id="1">
			<EnvelopeTarget><PointeeId Value="6"/></EnvelopeTarget>
			<Automation><Events>
				<BoolEvent Id="1" Time="0" Value="true"/>
				<BoolEvent Id="2" Time="4" Value="false"/>
			</Events></Automation>
		</AutomationEnvelope>
	</Envelopes></AutomationEnvelopes>
</AudioTrack>`))

	points := res.Project.Tracks[0].Automations[0].Points
	want := []AutomationPoint{{Time: 0, Value: 1}, {Time: 4, Value: 0}}
	if !reflect.DeepEqual(points, want) {
		t.Errorf("points = %+v, want %+v", points, want)
	}
}

func TestProbe(t *testing.T) {
	plain := buildSet("")
	if !Probe(plain) {
		t.Error("plain XML not recognized")
	}
	if !Probe(gzipBytes(t, plain)) {
		t.Error("gzip framing not recognized")
	}
	if Probe([]byte{0x00, 0x01, 0x02}) {
		t.Error("binary garbage recognized as a set")
	}
}

func TestProjectDuration(t *testing.T) {
	res := mustParse(t, buildSet(audioTrackXML+"\n"+midiTrackXML))
	if got := res.Project.Duration(); got != 8 {
		t.Errorf("duration = %g, want 8 (largest clip end)", got)
	}
}
