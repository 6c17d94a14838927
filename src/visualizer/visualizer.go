// Package visualizer draws the moving wave shown next to each track. It is
// decoration only: the wave follows the track's active flag and its own
// free-running phase, never the audio.
package visualizer

import (
	"io"
	"math"
	"strings"
)

// Frame is one picture of the wave: the y value for every x
type Frame []float64

// Frames is an infinite generator of Frames
type Frames func() Frame

// Visualizer holds the drawing constants
type Visualizer struct {
	Width, Height int
	// Frequency is in radians per x step
	Frequency float64
	// Speed is how far the wave travels per active frame
	Speed float64
}

// Default matches the canvas of the web player
func Default() Visualizer {
	return Visualizer{Width: 200, Height: 40, Frequency: 0.05, Speed: 7}
}

// Frames returns a fresh generator. Each call starts from phase zero, so a
// generator can be restarted by asking for a new one.
func (v Visualizer) Frames(active func() bool) Frames {
	offset := 0.0
	mid := float64(v.Height) / 2
	amplitude := float64(v.Height) / 3

	return func() Frame {
		frame := make(Frame, v.Width+1)
		if !active() {
			for x := range frame {
				frame[x] = mid
			}
			return frame
		}

		for x := range frame {
			frame[x] = mid + math.Sin((float64(x)+offset)*v.Frequency)*amplitude
		}
		offset += v.Speed
		return frame
	}
}

// Render plots the frame as text, one row per unit of height
func (f Frame) Render(w io.Writer, height int) error {
	if height <= 0 {
		return nil
	}
	rows := make([][]byte, height)
	for i := range rows {
		rows[i] = []byte(strings.Repeat(" ", len(f)))
	}
	for x, y := range f {
		row := int(math.Round(y))
		if row < 0 {
			row = 0
		}
		if row >= height {
			row = height - 1
		}
		rows[row][x] = '*'
	}

	for i := range rows {
		if _, err := w.Write(append(rows[i], '\n')); err != nil {
			return err
		}
	}
	return nil
}
