// Package streams renders scheduled sample playback into a single
// beep.Streamer. Mixer is the real-time side of the looper: the control
// side only registers events with it, and the audio output pulls frames
// from it, which is also what moves the shared clock forward.
package streams

import (
	"github.com/faiface/beep"

	"tjweldon/looper/src/util"
)

var logger = util.Logger{}.Ctx("streams")

// Stereo is the format the mixer renders at for the given rate
func Stereo(rate beep.SampleRate) beep.Format {
	return beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
}
