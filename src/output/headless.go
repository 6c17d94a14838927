package output

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
)

// Headless pulls the mix in real time and throws the audio away. It keeps
// the clock running on machines without a sound card.
type Headless struct {
	format beep.Format
	period time.Duration
	chain  *chain

	started atomic.Bool
	once    sync.Once
	stop    chan struct{}
	done    chan struct{}
}

func NewHeadless(format beep.Format, period time.Duration, chain *chain) *Headless {
	if period <= 0 {
		period = 10 * time.Millisecond
	}
	return &Headless{
		format: format,
		period: period,
		chain:  chain,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (h *Headless) Play(s beep.Streamer) error {
	h.chain.mu.Lock()
	h.chain.wrap(s)
	h.chain.mu.Unlock()

	h.started.Store(true)
	go h.run()
	return nil
}

func (h *Headless) run() {
	defer close(h.done)

	ticker := time.NewTicker(h.period)
	defer ticker.Stop()

	// pull exactly as many frames as wall time says have played
	began := time.Now()
	pulled := 0
	buf := make([][2]float64, h.format.SampleRate.N(h.period)+1)
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			due := h.format.SampleRate.N(time.Since(began)) - pulled
			for due > 0 {
				n := min(due, len(buf))
				h.chain.stream(buf[:n])
				pulled += n
				due -= n
			}
		}
	}
}

func (h *Headless) SetPaused(paused bool) { h.chain.setPaused(nil, paused) }
func (h *Headless) Paused() bool          { return h.chain.paused(nil) }

func (h *Headless) Close() error {
	h.once.Do(func() {
		close(h.stop)
	})
	if !h.started.Load() {
		return nil
	}
	select {
	case <-h.done:
	case <-time.After(time.Second):
	}
	return nil
}
