package timing

import (
	"math"
	"time"

	"github.com/faiface/beep"
)

const (
	// LeadTime is added to "now" when the ensemble starts so every track can
	// be issued before the shared start instant is reached
	LeadTime = 100 * time.Millisecond

	// RampConstant is the time constant of the exponential gain approach
	// used for mute and unmute
	RampConstant = 10 * time.Millisecond
)

// Phase returns the position within a loop of the given period after
// elapsed time has passed since the loop began. The result is always in
// [0, period).
func Phase(elapsed, period time.Duration) time.Duration {
	if period <= 0 {
		return 0
	}
	p := elapsed % period
	if p < 0 {
		p += period
	}
	return p
}

// Frames converts d into a frame count at rate, rounding to the nearest
// frame instead of truncating like beep.SampleRate.N
func Frames(d time.Duration, rate beep.SampleRate) int {
	return int(math.Round(d.Seconds() * float64(rate)))
}

// Timing pairs a duration with the number of frames it spans at a given
// sample rate
type Timing struct {
	Duration time.Duration
	Samples  int
}

// From converts a duration into a Timing for the given format
func (Timing) From(d time.Duration, f beep.Format) Timing {
	return Timing{Duration: d, Samples: Frames(d, f.SampleRate)}
}

// Wrap folds the Timing into a loop of n frames, keeping Duration in step
func (t Timing) Wrap(n int, f beep.Format) Timing {
	if n <= 0 {
		return Timing{}
	}
	s := t.Samples % n
	if s < 0 {
		s += n
	}
	return Timing{Duration: f.SampleRate.D(s), Samples: s}
}
