package streams

import (
	"math"
	"time"
)

// settled is how close a ramp has to get before it snaps to its target
const settled = 1e-6

// Gain is a bus that scales the voices routed through it. It implements
// engine.Gain.
type Gain struct {
	m      *Mixer
	value  float64
	target float64
	coeff  float64

	voices []*Voice
}

// RampTo approaches value along target + (start - target) * e^(-t/tc), the
// same curve as Web Audio's setTargetAtTime.
func (g *Gain) RampTo(value float64, timeConstant time.Duration) {
	g.m.mu.Lock()
	defer g.m.mu.Unlock()

	g.target = value
	if timeConstant <= 0 {
		g.value = value
		g.coeff = 0
		return
	}
	perFrame := timeConstant.Seconds() * float64(g.m.format.SampleRate)
	g.coeff = 1 - math.Exp(-1/perFrame)
}

func (g *Gain) Value() float64 {
	g.m.mu.Lock()
	defer g.m.mu.Unlock()
	return g.value
}

func (g *Gain) Target() float64 {
	g.m.mu.Lock()
	defer g.m.mu.Unlock()
	return g.target
}

// Voices is the number of live voices routed through the gain
func (g *Gain) Voices() int {
	g.m.mu.Lock()
	defer g.m.mu.Unlock()
	n := 0
	for _, v := range g.voices {
		if v.live() {
			n++
		}
	}
	return n
}

// step advances the ramp by one frame
func (g *Gain) step() {
	if g.value == g.target {
		return
	}
	g.value += (g.target - g.value) * g.coeff
	if math.Abs(g.target-g.value) < settled {
		g.value = g.target
	}
}

// prune drops voices that will never sound again
func (g *Gain) prune() {
	live := g.voices[:0]
	for _, v := range g.voices {
		if v.live() {
			live = append(live, v)
		}
	}
	for i := len(live); i < len(g.voices); i++ {
		g.voices[i] = nil
	}
	g.voices = live
}
