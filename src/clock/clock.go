// Package clock provides the timeline shared by every layer of the looper.
package clock

import (
	"sync/atomic"
	"time"

	"github.com/faiface/beep"

	"tjweldon/looper/src/timing"
)

// Clock is the single source of truth for "now"
type Clock interface {
	Now() time.Duration
}

// SampleClock measures time in frames rendered by the audio output, so a
// point on its timeline maps onto an exact frame.
type SampleClock struct {
	rate   beep.SampleRate
	frames atomic.Int64
}

func NewSampleClock(rate beep.SampleRate) *SampleClock {
	return &SampleClock{rate: rate}
}

func (c *SampleClock) Rate() beep.SampleRate { return c.rate }

// Frame is the index of the next frame to be rendered
func (c *SampleClock) Frame() int { return int(c.frames.Load()) }

func (c *SampleClock) Now() time.Duration { return c.rate.D(c.Frame()) }

// FrameAt returns the frame at which the instant t will be rendered.
func (c *SampleClock) FrameAt(t time.Duration) int {
	return timing.Frames(t, c.rate)
}

// Advance moves the clock forward by n rendered frames. Only the renderer
// calls this.
func (c *SampleClock) Advance(n int) {
	if n > 0 {
		c.frames.Add(int64(n))
	}
}
