// Package track is one instrument layer of the looper: a gain control and
// whichever playback source is currently sounding through it.
package track

import (
	"sync"
	"time"

	"tjweldon/looper/src/engine"
	"tjweldon/looper/src/samples"
	"tjweldon/looper/src/util"
)

var logger = util.Logger{}.Ctx("track")

// Track owns its gain and its current source exclusively. The source,
// once started, always plays the selected sample.
type Track struct {
	group   string
	options []string

	// mu serialises swaps, so each one replaces the source left by the
	// one before it
	mu       sync.Mutex
	selected *samples.Sample
	active   bool
	gain     engine.Gain
	source   engine.Source
}

// New creates a silent, not yet started track playing initial
func New(group string, options []string, initial *samples.Sample, gain engine.Gain) *Track {
	return &Track{
		group:    group,
		options:  append([]string(nil), options...),
		selected: initial,
		gain:     gain,
	}
}

func (t *Track) Group() string     { return t.group }
func (t *Track) Options() []string { return append([]string(nil), t.options...) }

// Offers reports whether id is one of the track's selectable samples
func (t *Track) Offers(id string) bool {
	for _, o := range t.options {
		if o == id {
			return true
		}
	}
	return false
}

func (t *Track) Selected() *samples.Sample {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected
}

func (t *Track) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Source is the running source, nil before the track starts or after a
// rejected schedule left it silent
func (t *Track) Source() engine.Source {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.source
}

func (t *Track) Gain() engine.Gain { return t.gain }

// Select changes the sample without any audio side effect. It reports
// false when sample is already selected.
func (t *Track) Select(sample *samples.Sample) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.selected == sample {
		return false
	}
	t.selected = sample
	return true
}

// SetActive ramps the gain towards 1 or 0. The source keeps running
// underneath so the loop never loses its place.
func (t *Track) SetActive(active bool, ramp time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active = active
	target := 0.0
	if active {
		target = 1
	}
	t.gain.RampTo(target, ramp)
}

// Start schedules the selected sample to loop from the instant at. A
// rejected schedule leaves the track silent and is returned to the caller.
func (t *Track) Start(r engine.Renderer, at time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	src, err := r.ScheduleStart(t.selected, at, 0, true, t.gain)
	if err != nil {
		t.source = nil
		return err
	}
	t.source = src

	logger.Ctx("Start").Vol(util.Normal).Log(t.group, "playing", t.selected, "at", at)
	return nil
}

// Swap replaces the sounding sample with sample while keeping the track in
// phase with an ensemble that started at origin. Elapsed time is measured
// by the renderer when it accepts the new source, not when the swap was
// requested. The returned duration is the seek position the new source
// started from.
func (t *Track) Swap(r engine.Renderer, sample *samples.Sample, origin time.Duration) (time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.selected == sample && t.source != nil {
		return t.source.Offset(), nil
	}

	prev := t.source
	t.selected = sample
	t.source = nil

	src, err := r.JoinLoop(sample, origin, t.gain)
	if prev != nil {
		r.Stop(prev)
	}
	if err != nil {
		return 0, err
	}
	t.source = src

	logger.Ctx("Swap").Vol(util.Normal).Log(t.group, "now playing", sample, "from", src.Offset())
	return src.Offset(), nil
}

// Stop stops the current source and forgets it
func (t *Track) Stop(r engine.Renderer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.source != nil {
		r.Stop(t.source)
		t.source = nil
	}
}
