package export

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/kurylko/alsparse/pkg/alsparse"
)

// Summary is the serializable view of a parsed project. The object graph
// itself stays accessor-only; this flattened form exists for the dump
// tool's json/yaml output.
type Summary struct {
	DAW      string            `json:"daw" yaml:"daw"`
	Version  string            `json:"version" yaml:"version"`
	Tempo    float64           `json:"tempo" yaml:"tempo"`
	Duration float64           `json:"duration" yaml:"duration"`
	Hash     string            `json:"hash" yaml:"hash"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Tracks   []TrackSummary    `json:"tracks" yaml:"tracks"`
}

type TrackSummary struct {
	ID          int                 `json:"id" yaml:"id"`
	Name        string              `json:"name" yaml:"name"`
	Kind        string              `json:"kind" yaml:"kind"`
	Color       int                 `json:"color" yaml:"color"`
	Frozen      bool                `json:"frozen,omitempty" yaml:"frozen,omitempty"`
	Group       int                 `json:"group,omitempty" yaml:"group,omitempty"`
	Children    []int               `json:"children,omitempty" yaml:"children,omitempty"`
	Clips       []ClipSummary       `json:"clips,omitempty" yaml:"clips,omitempty"`
	Automations []AutomationSummary `json:"automations,omitempty" yaml:"automations,omitempty"`
}

type ClipSummary struct {
	Kind     string        `json:"kind" yaml:"kind"`
	Name     string        `json:"name" yaml:"name"`
	Start    float64       `json:"start" yaml:"start"`
	End      float64       `json:"end" yaml:"end"`
	Disabled bool          `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Sample   string        `json:"sample,omitempty" yaml:"sample,omitempty"`
	Notes    []NoteSummary `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type NoteSummary struct {
	Pitch    int     `json:"pitch" yaml:"pitch"`
	Start    float64 `json:"start" yaml:"start"`
	Duration float64 `json:"duration" yaml:"duration"`
	Velocity int     `json:"velocity" yaml:"velocity"`
	Muted    bool    `json:"muted,omitempty" yaml:"muted,omitempty"`
}

type AutomationSummary struct {
	Target string    `json:"target" yaml:"target"`
	Points []float64 `json:"points,omitempty" yaml:"points,flow,omitempty"`
}

// NewSummary flattens a project into its serializable view. Automation
// points are interleaved time/value pairs to keep the output compact.
func NewSummary(p *alsparse.Project) Summary {
	s := Summary{
		DAW:      p.DAW(),
		Version:  p.DAWVersion(),
		Tempo:    p.Tempo,
		Duration: p.Duration(),
		Hash:     p.ContentHash,
		Metadata: p.Metadata,
	}
	for _, t := range p.Tracks {
		ts := TrackSummary{
			ID:       t.ID,
			Name:     t.Name,
			Kind:     t.Kind.String(),
			Color:    int(t.Color),
			Frozen:   t.Frozen,
			Group:    t.GroupID,
			Children: t.Children,
		}
		for _, c := range t.Clips {
			cs := ClipSummary{
				Kind:     c.Kind.String(),
				Name:     c.Name,
				Start:    c.Start,
				End:      c.End,
				Disabled: c.Disabled,
				Sample:   c.SamplePath,
			}
			for _, n := range c.Notes {
				cs.Notes = append(cs.Notes, NoteSummary{
					Pitch:    n.Pitch,
					Start:    n.Start,
					Duration: n.Duration,
					Velocity: n.Velocity,
					Muted:    n.Muted,
				})
			}
			ts.Clips = append(ts.Clips, cs)
		}
		for _, a := range t.Automations {
			as := AutomationSummary{Target: a.Target}
			for _, pt := range a.Points {
				as.Points = append(as.Points, pt.Time, pt.Value)
			}
			ts.Automations = append(ts.Automations, as)
		}
		s.Tracks = append(s.Tracks, ts)
	}
	return s
}

// WriteYAML writes the project summary as YAML.
func WriteYAML(p *alsparse.Project, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewSummary(p)); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// WriteJSON writes the project summary as indented JSON.
func WriteJSON(p *alsparse.Project, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewSummary(p)); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
