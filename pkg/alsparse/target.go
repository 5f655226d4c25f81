package alsparse

import (
	"fmt"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// Automation targets are stored as an indirection: the envelope names a
// PointeeId, and somewhere in the track subtree sits an AutomationTarget
// element with that Id. The resolved value is the dotted element path down
// to the automated parameter, rewritten through a shortcut table so the
// common mixer parameters read as "Volume", "Pan" and so on instead of
// their full DeviceChain spelling.

var trackTypeTags = []string{"AudioTrack", "MidiTrack", "GroupTrack", "ReturnTrack", "MainTrack", "MasterTrack"}

var shortcutPatterns = map[string]string{
	"${track}.DeviceChain.Mixer.Volume":                     "Volume",
	"${track}.DeviceChain.Mixer.On":                         "On",
	"${track}.DeviceChain.Mixer.Pan":                        "Pan",
	"${track}.DeviceChain.Mixer.Sends.TrackSendHolder.Send": "Send",
	"${track}.DeviceChain.Mixer.SplitStereoPanL":            "SplitStereoPanL",
	"${track}.DeviceChain.Mixer.SplitStereoPanR":            "SplitStereoPanR",
	"${track}.DeviceChain.DeviceChain.Devices":              "Plugins",
}

func defaultShortcuts() map[string]string {
	out := map[string]string{
		"MainTrack.DeviceChain.Mixer.Tempo":           "Tempo",
		"MainTrack.DeviceChain.Mixer.TimeSignature":   "TimeSignature",
		"MasterTrack.DeviceChain.Mixer.Tempo":         "Tempo",
		"MasterTrack.DeviceChain.Mixer.TimeSignature": "TimeSignature",
	}
	for pattern, target := range shortcutPatterns {
		for _, tag := range trackTypeTags {
			out[strings.ReplaceAll(pattern, "${track}", tag)] = target
		}
	}
	return out
}

// parseAutomations extracts every envelope under the track's
// AutomationEnvelopes container. Empty envelopes are kept so consumers can
// tell "parameter automated but static" from "parameter absent".
func (b *build) parseAutomations(trackEl *etree.Element, trackName string) []*Automation {
	var out []*Automation
	envelopes := child(trackEl, "AutomationEnvelopes", "Envelopes")
	for _, env := range children(envelopes, "AutomationEnvelope") {
		pointee, ok := valueInt(env, -1, "EnvelopeTarget", "PointeeId")
		if !ok {
			b.warnf(trackName, elementPath(env), "envelope without a pointee id, skipping")
			continue
		}

		target := b.resolveTarget(trackEl, pointee)
		if target == "" {
			b.warnf(trackName, elementPath(env), "failed to resolve automation target %d", pointee)
			target = fmt.Sprintf("Pointee(%d)", pointee)
		}

		out = append(out, &Automation{
			Target: target,
			Points: b.parsePoints(env, trackName),
		})
	}
	return out
}

// parsePoints reads the envelope's event list. Event elements come in a
// few flavors (FloatEvent, EnumEvent, BoolEvent); they all carry Time and
// Value, with booleans mapped to 0/1.
func (b *build) parsePoints(env *etree.Element, trackName string) []AutomationPoint {
	events := child(env, "Automation", "Events")
	points := make([]AutomationPoint, 0, len(elementChildren(events)))
	for _, ev := range elementChildren(events) {
		time, ok := attrFloat(ev, "Time", 0)
		if !ok {
			b.warnf(trackName, elementPath(ev), "event without a readable time, skipping")
			continue
		}
		var value float64
		switch raw := attr(ev, "Value", ""); raw {
		case "true":
			value = 1
		case "false":
			value = 0
		default:
			value, ok = attrFloat(ev, "Value", 0)
			if !ok {
				b.warnf(trackName, elementPath(ev), "event with unreadable value %q, skipping", raw)
				continue
			}
		}
		points = append(points, AutomationPoint{Time: time, Value: value})
	}

	// Consumers assume monotonic time; the file does not guarantee it.
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time < points[j].Time })
	return points
}

// resolveTarget walks the track subtree looking for the AutomationTarget
// element carrying the pointee id and returns its rewritten dotted path,
// or "" when no such element exists.
func (b *build) resolveTarget(trackEl *etree.Element, pointee int) string {
	path := findAutomationTarget(trackEl, pointee, nil)
	if path == nil {
		return ""
	}
	return b.rewriteTarget(strings.Join(path, "."))
}

func findAutomationTarget(el *etree.Element, pointee int, path []string) []string {
	if el.Tag == "AutomationTarget" || el.Tag == "ModulationTarget" {
		if id, ok := attrInt(el, "Id", -1); ok && id == pointee {
			out := make([]string, len(path))
			copy(out, path)
			return out
		}
	}
	for _, ch := range el.ChildElements() {
		if found := findAutomationTarget(ch, pointee, append(path, el.Tag)); found != nil {
			return found
		}
	}
	return nil
}

// rewriteTarget applies the shortcut table, longest prefix first so the
// expansion is deterministic regardless of map order.
func (b *build) rewriteTarget(path string) string {
	keys := make([]string, 0, len(b.p.shortcuts))
	for k := range b.p.shortcuts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		path = strings.ReplaceAll(path, k, b.p.shortcuts[k])
	}
	return path
}
