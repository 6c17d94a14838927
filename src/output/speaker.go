package output

import (
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/pkg/errors"
)

// Speaker plays through beep's speaker package
type Speaker struct {
	chain *chain
}

func NewSpeaker(format beep.Format, buffer time.Duration, chain *chain) (*Speaker, error) {
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(buffer)); err != nil {
		return nil, errors.Wrap(err, "failed to open speaker")
	}
	return &Speaker{chain: chain}, nil
}

func (s *Speaker) Play(st beep.Streamer) error {
	speaker.Play(s.chain.wrap(st))
	return nil
}

func (s *Speaker) SetPaused(paused bool) { s.chain.setPaused(speakerLock{}, paused) }
func (s *Speaker) Paused() bool          { return s.chain.paused(speakerLock{}) }

func (s *Speaker) Close() error {
	speaker.Clear()
	return nil
}

// speakerLock is the lock beep's speaker holds while it streams
type speakerLock struct{}

var _ sync.Locker = speakerLock{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }
