package visualizer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInactiveIsAFlatLine(t *testing.T) {
	v := Default()
	next := v.Frames(func() bool { return false })

	for i := 0; i < 3; i++ {
		frame := next()
		require.Len(t, frame, v.Width+1)
		for _, y := range frame {
			assert.Equal(t, 20.0, y)
		}
	}
}

func TestActiveWaveMoves(t *testing.T) {
	v := Default()
	next := v.Frames(func() bool { return true })

	first, second := next(), next()
	assert.NotEqual(t, first, second)
	assert.InDelta(t, first[7], second[0], 1e-9, "the wave travels Speed steps per frame")

	for _, y := range first {
		assert.InDelta(t, 20, y, 40.0/3+1e-9)
	}
}

func TestFramesRestart(t *testing.T) {
	v := Default()
	active := true
	a := v.Frames(func() bool { return active })
	a()
	a()

	b := v.Frames(func() bool { return active })
	assert.Equal(t, v.Frames(func() bool { return true })(), b())

	active = false
	assert.Equal(t, 20.0, a()[0], "the same generator follows the flag")
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Frame{0, 1, 2, 9}.Render(&buf, 3))

	assert.Equal(t, strings.Join([]string{
		"*   ",
		" *  ",
		"  **",
	}, "\n")+"\n", buf.String())
}
