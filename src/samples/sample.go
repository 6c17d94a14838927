// Package samples loads audio assets into immutable PCM buffers that any
// number of tracks can share without copying.
package samples

import (
	"time"

	"github.com/faiface/beep"
)

// Sample is a decoded audio payload. It is never mutated after it has been
// created, which is what makes sharing it between tracks safe.
type Sample struct {
	id     string
	format beep.Format
	frames [][2]float64
}

// New wraps already decoded frames. The slice is owned by the Sample from
// then on.
func New(id string, format beep.Format, frames [][2]float64) *Sample {
	return &Sample{id: id, format: format, frames: frames}
}

func (s *Sample) ID() string          { return s.id }
func (s *Sample) Format() beep.Format { return s.format }
func (s *Sample) Len() int            { return len(s.frames) }

// Duration is the length of one pass through the loop
func (s *Sample) Duration() time.Duration {
	return s.format.SampleRate.D(len(s.frames))
}

// Frame returns the i-th frame
func (s *Sample) Frame(i int) [2]float64 {
	return s.frames[i]
}

func (s *Sample) String() string {
	return s.id + " (" + s.Duration().String() + ")"
}
