package streams

import (
	"time"

	"tjweldon/looper/src/samples"
)

// Voice is one scheduled playback of a sample. It implements engine.Source.
type Voice struct {
	m      *Mixer
	id     uint64
	sample *samples.Sample
	gain   *Gain

	start  int // frame at which the voice becomes audible
	offset int // position in the sample at start
	pos    int // next position in the sample to be rendered
	loop   bool

	stopped bool
	done    bool
}

func (v *Voice) ID() uint64              { return v.id }
func (v *Voice) Sample() *samples.Sample { return v.sample }

func (v *Voice) Start() time.Duration {
	return v.m.format.SampleRate.D(v.start)
}

func (v *Voice) Offset() time.Duration {
	return v.m.format.SampleRate.D(v.offset)
}

func (v *Voice) Phase() time.Duration {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	return v.m.format.SampleRate.D(v.pos)
}

// Playing is true from scheduling until the voice is stopped or, for a one
// shot, runs out
func (v *Voice) Playing() bool {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	return v.live()
}

func (v *Voice) live() bool { return !v.stopped && !v.done }

// next renders the voice at the given frame of the timeline
func (v *Voice) next(frame int) (f [2]float64, ok bool) {
	if !v.live() || frame < v.start {
		return f, false
	}

	f = v.sample.Frame(v.pos)
	v.pos++
	if v.pos >= v.sample.Len() {
		if v.loop {
			v.pos = 0
		} else {
			v.done = true
		}
	}
	return f, true
}
