package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/kurylko/alsparse/pkg/alsparse"
)

// RenderInfo carries the render settings shared by the slicer and the
// pixel pass.
type RenderInfo struct {
	Width               int
	Height              int
	RenderSystemTracks  bool
	RenderDisabledClips bool
}

// timeMachine answers "which tracks have an active clip at time t" from a
// precomputed per-column cache, so the pixel pass stays a plain lookup.
type timeMachine struct {
	tracks []*alsparse.Track
	active [][]bool // [column][track]
	info   RenderInfo
	step   alsparse.ProjectTime
}

func newTimeMachine(project *alsparse.Project, info RenderInfo) *timeMachine {
	tracks := make([]*alsparse.Track, 0, len(project.Tracks))
	for _, t := range project.Tracks {
		if !info.RenderSystemTracks {
			switch t.Kind {
			case alsparse.TrackMain, alsparse.TrackReturn, alsparse.TrackGroup:
				continue
			}
		}
		tracks = append(tracks, t)
	}

	m := &timeMachine{tracks: tracks, info: info}
	duration := project.Duration()
	if info.Width > 0 && duration > 0 {
		m.step = duration / alsparse.ProjectTime(info.Width)
	}

	m.active = make([][]bool, info.Width)
	for col := 0; col < info.Width; col++ {
		row := make([]bool, len(tracks))
		at := alsparse.ProjectTime(col) * m.step
		for i, t := range tracks {
			row[i] = m.trackActive(t, at)
		}
		m.active[col] = row
	}
	return m
}

func (m *timeMachine) trackActive(t *alsparse.Track, at alsparse.ProjectTime) bool {
	for _, c := range t.Clips {
		if c.Disabled && !m.info.RenderDisabledClips {
			continue
		}
		if c.Start <= at && at <= c.End {
			return true
		}
	}
	return false
}

// render draws one horizontal band per track, filled wherever the track
// has an active clip, colored from the track's palette slot.
func render(project *alsparse.Project, info RenderInfo, outPath string) error {
	m := newTimeMachine(project, info)
	if len(m.tracks) == 0 {
		return fmt.Errorf("nothing to render: project has no matching tracks")
	}

	img := image.NewRGBA(image.Rect(0, 0, info.Width, info.Height))
	bandHeight := float64(info.Height) / float64(len(m.tracks))

	for col := 0; col < info.Width; col++ {
		for i := range m.tracks {
			if !m.active[col][i] {
				continue
			}
			r, g, b, a := m.tracks[i].Color.RGBA()
			c := color.RGBA{R: r, G: g, B: b, A: a}
			y0 := int(float64(i) * bandHeight)
			y1 := int(float64(i+1) * bandHeight)
			for y := y0; y < y1 && y < info.Height; y++ {
				img.SetRGBA(col, y, c)
			}
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}
