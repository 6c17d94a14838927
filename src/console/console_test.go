package console

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tjweldon/looper/src/assets"
	"tjweldon/looper/src/catalog"
	"tjweldon/looper/src/samples"
	"tjweldon/looper/src/samples/samplestest"
	"tjweldon/looper/src/scheduler"
	"tjweldon/looper/src/streams"
	"tjweldon/looper/src/visualizer"
)

const rate = 1000

func newConsole(t *testing.T) (*Console, *streams.Mixer) {
	t.Helper()
	dir := t.TempDir()
	samplestest.WriteWAV(t, dir, "drums-1.wav", rate, 2*time.Second)
	samplestest.WriteWAV(t, dir, "drums-2.wav", rate, time.Second)
	store := samples.NewStore(assets.Local{Root: dir}, rate, map[string]string{
		"Drums 1": "drums-1.wav",
		"Drums 2": "drums-2.wav",
	})

	m := streams.NewMixer(rate)
	groups := []catalog.Group{{ID: "drums", Label: "Drums", Options: []string{"Drums 1", "Drums 2"}}}
	s := scheduler.New(groups, m, store, scheduler.Options{LeadTime: 100 * time.Millisecond})
	require.NoError(t, s.Load(context.Background(), nil))

	return &Console{
		Sched: s,
		Vis:   visualizer.Visualizer{Width: 8, Height: 4, Frequency: 0.5, Speed: 1},
	}, m
}

func TestRunScript(t *testing.T) {
	c, m := newConsole(t)

	var out bytes.Buffer
	script := strings.Join([]string{
		"toggle drums",
		"select drums Drums 2",
		"status",
		"bogus",
		"quit",
		"toggle drums",
	}, "\n")
	require.NoError(t, c.Run(strings.NewReader(script), &out))

	assert.Contains(t, out.String(), "drums on")
	assert.Contains(t, out.String(), "drums plays Drums 2")
	assert.Contains(t, out.String(), "ensemble running since 100ms")
	assert.Contains(t, out.String(), `error: unknown command "bogus"`)

	tr, _ := c.Sched.Track("drums")
	assert.True(t, tr.Active(), "nothing after quit runs")
	assert.Equal(t, 1, m.Voices())
}

func TestExecErrors(t *testing.T) {
	c, _ := newConsole(t)
	var out bytes.Buffer

	for _, line := range []string{"toggle", "select drums", "select drums Cowbell", "toggle vocals", "wave", "wave vocals", "pause"} {
		_, err := c.Exec(line, &out)
		assert.Error(t, err, line)
	}
	assert.ErrorIs(t, func() error { _, err := c.Exec("select drums Cowbell", &out); return err }(), scheduler.ErrInvalidSelection)
}

func TestUsageMessages(t *testing.T) {
	c, _ := newConsole(t)
	var out bytes.Buffer

	for line, want := range map[string]string{
		"toggle":       "usage: toggle <group>",
		"select drums": "usage: select <group> <sample>",
		"wave":         "usage: wave <group>",
		"pause":        "no output to pause",
		"dance":        `unknown command "dance", try help`,
	} {
		_, err := c.Exec(line, &out)
		assert.EqualError(t, err, want, line)
	}
}

func TestPlayStopAndGroups(t *testing.T) {
	c, m := newConsole(t)
	var out bytes.Buffer

	_, err := c.Exec("play", &out)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Voices())

	_, err = c.Exec("stop", &out)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Voices())

	_, err = c.Exec("groups", &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "drums (Drums): Drums 1, Drums 2")
}

func TestWaveFollowsActiveFlag(t *testing.T) {
	c, _ := newConsole(t)

	var flat bytes.Buffer
	_, err := c.Exec("wave drums", &flat)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(flat.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "*********", lines[2])

	_, err = c.Exec("toggle drums", &bytes.Buffer{})
	require.NoError(t, err)

	var moving bytes.Buffer
	_, err = c.Exec("wave drums", &moving)
	require.NoError(t, err)
	assert.NotEqual(t, flat.String(), moving.String())
}
