package sample

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV writes one second of a full-scale 440 Hz sine, 16-bit mono.
func writeTestWAV(t *testing.T, rate int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating wav: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		SourceBitDepth: 16,
		Data:           make([]int, rate),
	}
	for i := range buf.Data {
		buf.Data[i] = int(32000 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encoding wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("closing encoder: %v", err)
	}
	return path
}

func TestReadInfo(t *testing.T) {
	path := writeTestWAV(t, 44100)

	info, err := ReadInfo(path)
	if err != nil {
		t.Fatalf("ReadInfo: %v", err)
	}
	if info.SampleRate != 44100 || info.Channels != 1 || info.BitDepth != 16 {
		t.Errorf("info = %+v", info)
	}
	if sec := info.Duration.Seconds(); sec < 0.99 || sec > 1.01 {
		t.Errorf("duration = %v, want ~1s", info.Duration)
	}
	if info.SizeBytes == 0 {
		t.Error("size not populated")
	}
}

func TestReadInfoRejectsNonWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.wav")
	if err := os.WriteFile(path, []byte("definitely not riff"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadInfo(path); err == nil {
		t.Error("garbage accepted as WAV")
	}
}

func TestPeaks(t *testing.T) {
	path := writeTestWAV(t, 8000)

	peaks, err := Peaks(path, 16)
	if err != nil {
		t.Fatalf("Peaks: %v", err)
	}
	if len(peaks) != 16 {
		t.Fatalf("got %d buckets, want 16", len(peaks))
	}
	for i, p := range peaks {
		if p < 0 || p > 1 {
			t.Errorf("bucket %d = %g, outside [0, 1]", i, p)
		}
	}
	// a full-scale sine should peak near 1 in every bucket that spans a cycle
	if peaks[0] < 0.9 {
		t.Errorf("first bucket peak = %g, want close to 1", peaks[0])
	}
}

func TestPeaksBadBuckets(t *testing.T) {
	if _, err := Peaks("irrelevant.wav", 0); err == nil {
		t.Error("zero buckets accepted")
	}
}
