// Package sample inspects the audio files referenced by audio clips.
// Parsing a set never touches sample data; this is an on-demand layer for
// tools that want to show what a clip points at.
package sample

import (
	"fmt"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Info is the header-level metadata of a referenced WAV file.
type Info struct {
	Path       string
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
	SizeBytes  int64
}

// ReadInfo reads WAV metadata without decoding the sample data.
func ReadInfo(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sample: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat sample: %w", err)
	}

	d := wav.NewDecoder(f)
	d.ReadInfo()
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid WAV file", path)
	}

	dur, err := d.Duration()
	if err != nil {
		return nil, fmt.Errorf("reading duration: %w", err)
	}

	return &Info{
		Path:       path,
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
		Duration:   dur,
		SizeBytes:  fi.Size(),
	}, nil
}

// Peaks decodes the sample and reduces it to buckets normalized peak
// values in [0, 1], 0 being silence. This is the per-clip waveform
// overview a visualizer draws behind audio clips.
func Peaks(path string, buckets int) ([]float64, error) {
	if buckets <= 0 {
		return nil, fmt.Errorf("buckets must be positive, got %d", buckets)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sample: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding PCM: %w", err)
	}
	if buf.NumFrames() == 0 {
		return make([]float64, buckets), nil
	}

	scale := 1.0
	if d.BitDepth > 1 {
		scale = 1.0 / float64(int64(1)<<(d.BitDepth-1))
	}
	return bucketPeaks(buf, buckets, scale), nil
}

func bucketPeaks(buf *audio.IntBuffer, buckets int, scale float64) []float64 {
	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	frames := buf.NumFrames()

	peaks := make([]float64, buckets)
	framesPerBucket := frames/buckets + 1
	for frame := 0; frame < frames; frame++ {
		// mono mix of the frame
		var v float64
		for ch := 0; ch < channels; ch++ {
			v += float64(buf.Data[frame*channels+ch]) * scale
		}
		v /= float64(channels)
		if v < 0 {
			v = -v
		}
		if v > 1 {
			v = 1
		}
		b := frame / framesPerBucket
		if v > peaks[b] {
			peaks[b] = v
		}
	}
	return peaks
}
