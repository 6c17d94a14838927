// Package samplestest writes small audio fixtures for tests.
package samplestest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"

	"tjweldon/looper/src/samples"
)

// Format is the format fixtures are written in
func Format(rate beep.SampleRate) beep.Format {
	return beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
}

// WriteWAV writes a wav file of the given length holding a constant level
// and returns its path.
func WriteWAV(t testing.TB, dir, name string, rate beep.SampleRate, length time.Duration) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	n := rate.N(length)
	level := beep.StreamerFunc(func(s [][2]float64) (int, bool) {
		for i := range s {
			s[i] = [2]float64{0.25, 0.25}
		}
		return len(s), true
	})
	if err := wav.Encode(f, beep.Take(n, level), Format(rate)); err != nil {
		t.Fatal(err)
	}
	return path
}

// Ramp returns a sample whose frame i holds i/n on both channels, so the
// value of a rendered frame tells which position of the loop produced it.
func Ramp(id string, rate beep.SampleRate, length time.Duration) *samples.Sample {
	n := rate.N(length)
	frames := make([][2]float64, n)
	for i := range frames {
		v := float64(i) / float64(n)
		frames[i] = [2]float64{v, v}
	}
	return samples.New(id, Format(rate), frames)
}
