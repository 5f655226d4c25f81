package alsparse

import (
	"testing"
)

func TestRewriteTarget(t *testing.T) {
	b := &build{p: NewParser()}

	tests := []struct {
		in, want string
	}{
		{"AudioTrack.DeviceChain.Mixer.Volume", "Volume"},
		{"MidiTrack.DeviceChain.Mixer.Pan", "Pan"},
		{"MainTrack.DeviceChain.Mixer.Tempo", "Tempo"},
		{"MasterTrack.DeviceChain.Mixer.TimeSignature", "TimeSignature"},
		{"ReturnTrack.DeviceChain.Mixer.Sends.TrackSendHolder.Send", "Send"},
		{"AudioTrack.DeviceChain.DeviceChain.Devices.Eq8.Bands.0", "Plugins.Eq8.Bands.0"},
		{"Something.Else.Entirely", "Something.Else.Entirely"},
	}
	for _, tt := range tests {
		if got := b.rewriteTarget(tt.in); got != tt.want {
			t.Errorf("rewriteTarget(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRewriteTargetCustomShortcuts(t *testing.T) {
	b := &build{p: NewParser(WithTargetShortcuts(map[string]string{
		"AudioTrack.DeviceChain.Mixer.Volume": "Gain",
	}))}
	if got := b.rewriteTarget("AudioTrack.DeviceChain.Mixer.Volume"); got != "Gain" {
		t.Errorf("custom shortcut ignored, got %q", got)
	}
	// everything else passes through untouched
	if got := b.rewriteTarget("AudioTrack.DeviceChain.Mixer.Pan"); got != "AudioTrack.DeviceChain.Mixer.Pan" {
		t.Errorf("got %q", got)
	}
}

func TestFindAutomationTarget(t *testing.T) {
	root := parseDoc(t, `<AudioTrack>
	<DeviceChain>
		<Mixer>
			<Volume><AutomationTarget Id="10"/></Volume>
			<Pan><AutomationTarget Id="11"/></Pan>
		</Mixer>
	</DeviceChain>
</AudioTrack>`)

	got := findAutomationTarget(root, 11, nil)
	want := []string{"AudioTrack", "DeviceChain", "Mixer", "Pan"}
	if len(got) != len(want) {
		t.Fatalf("path = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("path = %v, want %v", got, want)
		}
	}

	if findAutomationTarget(root, 999, nil) != nil {
		t.Error("nonexistent id resolved to a path")
	}
}
