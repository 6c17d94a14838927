package output

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/faiface/beep"
	"github.com/pkg/errors"
)

const bytesPerFrame = 2 * 4 // stereo float32

// Oto plays through an oto/v3 context. The player pulls from it as an
// io.Reader.
type Oto struct {
	ctx    *oto.Context
	player *oto.Player
	chain  *chain
	frames [][2]float64
}

func NewOto(format beep.Format, buffer time.Duration, chain *chain) (*Oto, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(format.SampleRate),
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   buffer,
	})
	if err != nil {
		return nil, errors.Wrap(err, "cannot create oto context")
	}
	<-ready

	return &Oto{ctx: ctx, chain: chain}, nil
}

func (o *Oto) Play(s beep.Streamer) error {
	o.chain.mu.Lock()
	o.chain.wrap(s)
	o.chain.mu.Unlock()

	o.player = o.ctx.NewPlayer(o)
	o.player.Play()
	return nil
}

// Read implements io.Reader for the oto player
func (o *Oto) Read(p []byte) (int, error) {
	n := len(p) / bytesPerFrame
	if cap(o.frames) < n {
		o.frames = make([][2]float64, n)
	}
	frames := o.frames[:n]
	o.chain.stream(frames)

	for i, f := range frames {
		binary.LittleEndian.PutUint32(p[i*bytesPerFrame:], math.Float32bits(clamp(f[0])))
		binary.LittleEndian.PutUint32(p[i*bytesPerFrame+4:], math.Float32bits(clamp(f[1])))
	}
	for i := n * bytesPerFrame; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

func (o *Oto) SetPaused(paused bool) { o.chain.setPaused(nil, paused) }
func (o *Oto) Paused() bool          { return o.chain.paused(nil) }

func (o *Oto) Close() error {
	if o.player == nil {
		return nil
	}
	if err := o.player.Close(); err != nil {
		return errors.Wrap(err, "cannot close oto player")
	}
	return nil
}

func clamp(v float64) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return float32(v)
}
