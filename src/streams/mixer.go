package streams

import (
	"sync"
	"time"

	"github.com/faiface/beep"

	"tjweldon/looper/src/clock"
	"tjweldon/looper/src/engine"
	"tjweldon/looper/src/samples"
	"tjweldon/looper/src/timing"
	"tjweldon/looper/src/util"
)

// Mixer superimposes every gain bus into one stereo stream and keeps the
// sample clock in step with what it has rendered. It implements
// engine.Renderer.
type Mixer struct {
	mu     sync.Mutex
	format beep.Format
	clock  *clock.SampleClock
	buses  []*Gain
	nextID uint64
	closed bool
}

var _ engine.Renderer = (*Mixer)(nil)

func NewMixer(rate beep.SampleRate) *Mixer {
	return &Mixer{
		format: Stereo(rate),
		clock:  clock.NewSampleClock(rate),
	}
}

func (m *Mixer) Format() beep.Format       { return m.format }
func (m *Mixer) Clock() *clock.SampleClock { return m.clock }
func (m *Mixer) Now() time.Duration        { return m.clock.Now() }

func (m *Mixer) NewGain(initial float64) engine.Gain {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := &Gain{m: m, value: initial, target: initial}
	m.buses = append(m.buses, g)
	return g
}

func (m *Mixer) ScheduleStart(
	sample *samples.Sample,
	at, seek time.Duration,
	loop bool,
	dst engine.Gain,
) (engine.Source, error) {
	gain, err := m.check(sample, dst)
	if err != nil {
		return nil, &engine.ScheduleError{Op: "start", Err: err}
	}
	if at < 0 || seek < 0 || (!loop && seek >= sample.Duration()) {
		return nil, &engine.ScheduleError{Op: "start", Err: engine.ErrInvalidTime}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, &engine.ScheduleError{Op: "start", Err: engine.ErrClosed}
	}

	start := m.clock.FrameAt(at)
	if now := m.clock.Frame(); start < now {
		start = now
	}
	offset := timing.Timing{}.From(seek, m.format).Wrap(sample.Len(), m.format).Samples
	return m.add(sample, gain, start, offset, loop), nil
}

func (m *Mixer) JoinLoop(sample *samples.Sample, origin time.Duration, dst engine.Gain) (engine.Source, error) {
	gain, err := m.check(sample, dst)
	if err != nil {
		return nil, &engine.ScheduleError{Op: "join", Err: err}
	}
	if origin < 0 {
		return nil, &engine.ScheduleError{Op: "join", Err: engine.ErrInvalidTime}
	}

	// Stream holds the lock for a whole buffer and advances the clock
	// before releasing it, so the frame read here is the next one rendered
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, &engine.ScheduleError{Op: "join", Err: engine.ErrClosed}
	}

	first := m.clock.FrameAt(origin)
	start := m.clock.Frame()
	if start < first {
		start = first
	}
	offset := (start - first) % sample.Len()
	return m.add(sample, gain, start, offset, true), nil
}

func (m *Mixer) check(sample *samples.Sample, dst engine.Gain) (*Gain, error) {
	if sample == nil || sample.Len() == 0 || sample.Format().SampleRate != m.format.SampleRate {
		return nil, engine.ErrInvalidBuffer
	}
	gain, ok := dst.(*Gain)
	if !ok || gain.m != m {
		return nil, engine.ErrUnknownGain
	}
	return gain, nil
}

// add registers a voice on gain; m.mu must be held
func (m *Mixer) add(sample *samples.Sample, gain *Gain, start, offset int, loop bool) *Voice {
	m.nextID++
	v := &Voice{
		m:      m,
		id:     m.nextID,
		sample: sample,
		gain:   gain,
		start:  start,
		offset: offset,
		pos:    offset,
		loop:   loop,
	}
	gain.voices = append(gain.voices, v)

	logger.Ctx("Mixer.add").Vol(util.Quiet).Log("voice", v.id, sample.ID(), "at frame", start, "offset", offset)
	return v
}

func (m *Mixer) Stop(src engine.Source) {
	v, ok := src.(*Voice)
	if !ok || v == nil || v.m != m {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	v.stopped = true
	v.gain.prune()
}

// Voices is the number of live voices across all buses
func (m *Mixer) Voices() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, g := range m.buses {
		for _, v := range g.voices {
			if v.live() {
				n++
			}
		}
	}
	return n
}

// Close stops every voice and rejects further scheduling. The mixer keeps
// streaming silence so the output can be torn down at its own pace.
func (m *Mixer) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for _, g := range m.buses {
		for _, v := range g.voices {
			v.stopped = true
		}
		g.prune()
	}
}

// Stream implements beep.Streamer. It never runs out.
func (m *Mixer) Stream(out [][2]float64) (n int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	frame := m.clock.Frame()
	for i := range out {
		var mix [2]float64
		for _, g := range m.buses {
			var bus [2]float64
			for _, v := range g.voices {
				if f, ok := v.next(frame + i); ok {
					bus[0] += f[0]
					bus[1] += f[1]
				}
			}
			mix[0] += bus[0] * g.value
			mix[1] += bus[1] * g.value
			g.step()
		}
		out[i] = mix
	}

	for _, g := range m.buses {
		g.prune()
	}
	m.clock.Advance(len(out))
	return len(out), true
}

func (m *Mixer) Err() error { return nil }
