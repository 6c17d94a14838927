package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tjweldon/looper/src/engine"
	"tjweldon/looper/src/samples"
	"tjweldon/looper/src/samples/samplestest"
	"tjweldon/looper/src/streams"
	"tjweldon/looper/src/timing"
)

const rate = 1000

func advance(m *streams.Mixer, until time.Duration) {
	buf := make([][2]float64, 1)
	for m.Now() < until {
		m.Stream(buf)
	}
}

func newTrack(m *streams.Mixer, initial *samples.Sample) *Track {
	return New("drums", []string{"Drums 1", "Drums 2"}, initial, m.NewGain(0))
}

func TestSelectSameSampleIsNoop(t *testing.T) {
	m := streams.NewMixer(rate)
	one := samplestest.Ramp("Drums 1", rate, 2*time.Second)
	two := samplestest.Ramp("Drums 2", rate, time.Second)
	tr := newTrack(m, one)

	assert.False(t, tr.Select(one))
	assert.True(t, tr.Select(two))
	assert.Same(t, two, tr.Selected())
	assert.Nil(t, tr.Source(), "selecting before start has no audio side effect")
	assert.Equal(t, 0, m.Voices())
}

func TestOffers(t *testing.T) {
	tr := New("bass", []string{"Bass 1", "Bass 2"}, nil, streams.NewMixer(rate).NewGain(0))
	assert.True(t, tr.Offers("Bass 2"))
	assert.False(t, tr.Offers("Piano 1"))
}

func TestSetActiveNeverStopsTheSource(t *testing.T) {
	m := streams.NewMixer(rate)
	tr := newTrack(m, samplestest.Ramp("Drums 1", rate, 2*time.Second))
	origin := 100 * time.Millisecond
	require.NoError(t, tr.Start(m, origin))
	src := tr.Source()

	tr.SetActive(true, timing.RampConstant)
	advance(m, 700*time.Millisecond)
	tr.SetActive(false, timing.RampConstant)
	advance(m, 2300*time.Millisecond)
	tr.SetActive(true, timing.RampConstant)

	assert.True(t, tr.Active())
	assert.Equal(t, 1.0, tr.Gain().Target())
	assert.Same(t, src, tr.Source())
	assert.True(t, src.Playing())
	assert.Equal(t, timing.Phase(m.Now()-origin, 2*time.Second), src.Phase())
}

func TestSwapPreservesEnsemblePhase(t *testing.T) {
	m := streams.NewMixer(rate)
	first := samplestest.Ramp("Drums 1", rate, 2*time.Second)
	second := samplestest.Ramp("Drums 2", rate, 1500*time.Millisecond)
	tr := newTrack(m, first)
	tr.SetActive(true, 0)

	origin := 100 * time.Millisecond
	require.NoError(t, tr.Start(m, origin))
	old := tr.Source()

	advance(m, origin+1300*time.Millisecond)
	phase, err := tr.Swap(m, second, origin)
	require.NoError(t, err)

	assert.Equal(t, 1300*time.Millisecond, phase)
	assert.Equal(t, 1300*time.Millisecond, tr.Source().Offset())
	assert.Equal(t, m.Now(), tr.Source().Start())
	assert.False(t, old.Playing())
	assert.Same(t, second, tr.Source().Sample())
	assert.Equal(t, 1.0, tr.Gain().Target(), "swapping leaves the gain alone")
	assert.Equal(t, 1, m.Voices())
}

func TestRepeatedSwapsMeasureFromTheEnsembleStart(t *testing.T) {
	m := streams.NewMixer(rate)
	first := samplestest.Ramp("Drums 1", rate, 2*time.Second)
	second := samplestest.Ramp("Drums 2", rate, 1500*time.Millisecond)
	tr := newTrack(m, first)

	origin := 100 * time.Millisecond
	require.NoError(t, tr.Start(m, origin))

	advance(m, origin+1300*time.Millisecond)
	_, err := tr.Swap(m, second, origin)
	require.NoError(t, err)

	advance(m, origin+2500*time.Millisecond)
	phase, err := tr.Swap(m, first, origin)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, phase)
	assert.Equal(t, 1, m.Voices())
}

func TestSwapToSelectedSampleKeepsSource(t *testing.T) {
	m := streams.NewMixer(rate)
	first := samplestest.Ramp("Drums 1", rate, 2*time.Second)
	tr := newTrack(m, first)
	require.NoError(t, tr.Start(m, 0))
	advance(m, 700*time.Millisecond)

	src := tr.Source()
	_, err := tr.Swap(m, first, 0)
	require.NoError(t, err)
	assert.Same(t, src, tr.Source())
	assert.Equal(t, 700*time.Millisecond, src.Phase())
}

func TestSwapInsideLeadWindowJoinsAtOrigin(t *testing.T) {
	m := streams.NewMixer(rate)
	tr := newTrack(m, samplestest.Ramp("Drums 1", rate, 2*time.Second))
	origin := 100 * time.Millisecond
	require.NoError(t, tr.Start(m, origin))

	second := samplestest.Ramp("Drums 2", rate, time.Second)
	phase, err := tr.Swap(m, second, origin)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), phase)
	assert.Equal(t, origin, tr.Source().Start())
}

// busyMixer renders a device buffer while a swap is on its way into the
// mixer, the way the audio thread does between a request and its scheduling
type busyMixer struct {
	*streams.Mixer
	frames int
}

func (b busyMixer) JoinLoop(s *samples.Sample, origin time.Duration, dst engine.Gain) (engine.Source, error) {
	b.Stream(make([][2]float64, b.frames))
	return b.Mixer.JoinLoop(s, origin, dst)
}

func TestSwapStaysLockedWhileTheMixerRenders(t *testing.T) {
	m := streams.NewMixer(rate)
	first := samplestest.Ramp("Drums 1", rate, 2*time.Second)
	second := samplestest.Ramp("Drums 2", rate, 1500*time.Millisecond)
	tr := newTrack(m, first)

	origin := 100 * time.Millisecond
	require.NoError(t, tr.Start(m, origin))
	advance(m, origin+1300*time.Millisecond)

	phase, err := tr.Swap(busyMixer{Mixer: m, frames: 100}, second, origin)
	require.NoError(t, err)
	assert.Equal(t, 1400*time.Millisecond, phase)
	assert.Equal(t, m.Now(), tr.Source().Start())

	advance(m, origin+2*time.Second)
	assert.Equal(t, timing.Phase(m.Now()-origin, second.Duration()), tr.Source().Phase())
	assert.Equal(t, 500*time.Millisecond, tr.Source().Phase())
}

type mockRenderer struct{ mock.Mock }

func (r *mockRenderer) Now() time.Duration { return r.Called().Get(0).(time.Duration) }

func (r *mockRenderer) NewGain(initial float64) engine.Gain {
	return r.Called(initial).Get(0).(engine.Gain)
}

func (r *mockRenderer) ScheduleStart(s *samples.Sample, at, seek time.Duration, loop bool, dst engine.Gain) (engine.Source, error) {
	args := r.Called(s, at, seek, loop, dst)
	src, _ := args.Get(0).(engine.Source)
	return src, args.Error(1)
}

func (r *mockRenderer) JoinLoop(s *samples.Sample, origin time.Duration, dst engine.Gain) (engine.Source, error) {
	args := r.Called(s, origin, dst)
	src, _ := args.Get(0).(engine.Source)
	return src, args.Error(1)
}

func (r *mockRenderer) Stop(src engine.Source) { r.Called(src) }

func TestRejectedSwapLeavesTrackSilent(t *testing.T) {
	m := streams.NewMixer(rate)
	first := samplestest.Ramp("Drums 1", rate, 2*time.Second)
	second := samplestest.Ramp("Drums 2", rate, time.Second)
	tr := newTrack(m, first)
	require.NoError(t, tr.Start(m, 0))
	old := tr.Source()

	r := &mockRenderer{}
	rejected := &engine.ScheduleError{Op: "start", Err: engine.ErrInvalidBuffer}
	r.On("JoinLoop", second, time.Duration(0), tr.Gain()).Return(nil, rejected)
	r.On("Stop", old).Return()

	_, err := tr.Swap(r, second, 0)
	assert.ErrorIs(t, err, engine.ErrInvalidBuffer)
	assert.Nil(t, tr.Source())
	assert.Same(t, second, tr.Selected())
	r.AssertExpectations(t)
}

func TestRejectedStartLeavesTrackSilent(t *testing.T) {
	m := streams.NewMixer(rate)
	tr := newTrack(m, samples.New("Drums 1", streams.Stereo(rate), nil))

	err := tr.Start(m, 0)
	assert.ErrorIs(t, err, engine.ErrInvalidBuffer)
	assert.Nil(t, tr.Source())
}
