package samples

import (
	"bytes"
	"io"
	"path"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"
)

// resampleQuality is handed to beep.Resample
const resampleQuality = 4

type decoder func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]decoder{
	".wav": func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(rc) },
	".mp3": mp3.Decode,
	".flac": func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return flac.Decode(rc)
	},
	".ogg": vorbis.Decode,
}

// Decode turns the encoded bytes of an asset into a Sample at the given
// sample rate. The codec is chosen by the extension of location.
func Decode(id, location string, data []byte, rate beep.SampleRate) (*Sample, error) {
	ext := strings.ToLower(path.Ext(location))
	dec, ok := decoders[ext]
	if !ok {
		return nil, errors.Wrapf(ErrDecode, "unsupported format %q", ext)
	}

	streamer, format, err := dec(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return nil, errors.Wrapf(ErrDecode, "%v", err)
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != rate {
		s = beep.Resample(resampleQuality, format.SampleRate, rate, streamer)
		format.SampleRate = rate
	}

	frames, err := drain(s)
	if err != nil {
		return nil, errors.Wrapf(ErrDecode, "%v", err)
	}
	if len(frames) == 0 {
		return nil, ErrEmpty
	}

	return New(id, format, frames), nil
}

// drain reads s until it is exhausted
func drain(s beep.Streamer) ([][2]float64, error) {
	var frames [][2]float64
	chunk := make([][2]float64, 512)
	for {
		n, ok := s.Stream(chunk)
		frames = append(frames, chunk[:n]...)
		if !ok {
			break
		}
	}
	return frames, s.Err()
}
