package output

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tjweldon/looper/src/streams"
)

func TestHeadlessDrivesTheClock(t *testing.T) {
	m := streams.NewMixer(8000)
	out := NewHeadless(m.Format(), 5*time.Millisecond, &chain{})
	require.NoError(t, out.Play(m))
	defer out.Close()

	require.Eventually(t, func() bool { return m.Now() >= 20*time.Millisecond }, 2*time.Second, 5*time.Millisecond)

	out.SetPaused(true)
	assert.True(t, out.Paused())
	frozen := m.Now()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, frozen, m.Now(), "a paused output does not pull the mix")

	out.SetPaused(false)
	require.Eventually(t, func() bool { return m.Now() > frozen }, 2*time.Second, 5*time.Millisecond)
}

func TestHeadlessCloseWithoutPlay(t *testing.T) {
	out := NewHeadless(streams.Stereo(8000), 0, &chain{})
	assert.NoError(t, out.Close())
	assert.NoError(t, out.Close())
}

func TestOtoReadWritesFloat32Frames(t *testing.T) {
	level := beep.StreamerFunc(func(s [][2]float64) (int, bool) {
		for i := range s {
			s[i] = [2]float64{0.5, -2}
		}
		return len(s), true
	})

	o := &Oto{chain: &chain{}}
	o.chain.wrap(level)

	p := make([]byte, 2*bytesPerFrame+3)
	n, err := o.Read(p)
	require.NoError(t, err)
	assert.Equal(t, len(p), n)

	left := math.Float32frombits(binary.LittleEndian.Uint32(p[8:]))
	right := math.Float32frombits(binary.LittleEndian.Uint32(p[12:]))
	assert.Equal(t, float32(0.5), left)
	assert.Equal(t, float32(-1), right, "samples are clamped")
	assert.Equal(t, []byte{0, 0, 0}, p[16:])
}

func TestMasterVolume(t *testing.T) {
	level := beep.StreamerFunc(func(s [][2]float64) (int, bool) {
		for i := range s {
			s[i] = [2]float64{0.5, 0.5}
		}
		return len(s), true
	})
	c := &chain{volume: -1}
	c.wrap(level)

	out := make([][2]float64, 4)
	c.stream(out)
	assert.InDelta(t, 0.25, out[3][0], 1e-9)
}

func TestUnknownBackend(t *testing.T) {
	_, err := New("alsa", streams.Stereo(44100), time.Millisecond, 0)
	assert.Error(t, err)
}
