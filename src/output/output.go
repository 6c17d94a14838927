// Package output plays the mixed stream on an audio device, or without one.
// Every backend pulls frames from the mix at the device's pace, which is
// what moves the looper's clock forward.
package output

import (
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/pkg/errors"

	"tjweldon/looper/src/util"
)

var logger = util.Logger{}.Ctx("output")

type Output interface {
	// Play starts pulling from s. It is called once.
	Play(s beep.Streamer) error
	// SetPaused freezes the output. The stream is not pulled while paused,
	// so the clock stops with it and every loop keeps its place.
	SetPaused(paused bool)
	Paused() bool
	Close() error
}

// New creates the named backend: "speaker", "oto" or "headless"
func New(backend string, format beep.Format, buffer time.Duration, masterVolume float64) (Output, error) {
	logger.Ctx("New").Vol(util.Normal).Log("opening", backend, "output at", format.SampleRate, "Hz")

	chain := &chain{volume: masterVolume}
	switch backend {
	case "speaker":
		return NewSpeaker(format, buffer, chain)
	case "oto":
		return NewOto(format, buffer, chain)
	case "headless":
		return NewHeadless(format, buffer, chain), nil
	}
	return nil, errors.Errorf("unknown audio backend %q", backend)
}

// chain is master volume then pause control in front of the mix
type chain struct {
	mu     sync.Mutex
	volume float64
	ctrl   *beep.Ctrl
}

func (c *chain) wrap(s beep.Streamer) beep.Streamer {
	c.ctrl = &beep.Ctrl{
		Streamer: &effects.Volume{Streamer: s, Base: 2, Volume: c.volume, Silent: false},
		Paused:   false,
	}
	return c.ctrl
}

// setPaused flips the pause flag under lock, which is either the chain's
// own or one the backend supplies
func (c *chain) setPaused(lock sync.Locker, paused bool) {
	if lock == nil {
		lock = &c.mu
	}
	lock.Lock()
	defer lock.Unlock()
	if c.ctrl != nil {
		c.ctrl.Paused = paused
	}
}

func (c *chain) paused(lock sync.Locker) bool {
	if lock == nil {
		lock = &c.mu
	}
	lock.Lock()
	defer lock.Unlock()
	return c.ctrl != nil && c.ctrl.Paused
}

// stream pulls from the chain under its lock
func (c *chain) stream(out [][2]float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctrl == nil {
		for i := range out {
			out[i] = [2]float64{}
		}
		return
	}
	c.ctrl.Stream(out)
}
