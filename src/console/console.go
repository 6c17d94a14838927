// Package console turns typed commands into scheduler calls. None of the
// commands wait on audio: each is one scheduling call that returns at once.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"

	"tjweldon/looper/src/output"
	"tjweldon/looper/src/scheduler"
	"tjweldon/looper/src/util"
	"tjweldon/looper/src/visualizer"
)

var logger = util.Logger{}.Ctx("console")

const help = `commands:
  toggle <group>            mute or unmute a group, starting playback on first use
  select <group> <sample>   switch the sample a group plays
  play                      start every group on one beat
  stop                      stop playback
  pause | resume            freeze and unfreeze the output
  status                    show every group
  groups                    list groups and their samples
  wave <group>              draw the group's wave
  help                      show this text
  quit                      leave
`

type Console struct {
	Sched  *scheduler.Scheduler
	Output output.Output
	Vis    visualizer.Visualizer

	waves map[string]visualizer.Frames
}

// Run reads commands from r until quit or end of input
func (c *Console) Run(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		quit, err := c.Exec(scanner.Text(), w)
		if err != nil {
			fmt.Fprintln(w, "error:", err)
		}
		if quit {
			return nil
		}
	}
}

// Exec runs a single command line
func (c *Console) Exec(line string, w io.Writer) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	logger.Ctx("Exec").Vol(util.Quiet).Log(fields)

	cmd, rest := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "quit", "exit":
		return true, nil

	case "help":
		fmt.Fprint(w, help)

	case "toggle":
		if len(rest) != 1 {
			return false, errors.New("usage: toggle <group>")
		}
		active, err := c.Sched.ToggleTrack(rest[0])
		if err != nil {
			return false, err
		}
		fmt.Fprintf(w, "%s %s\n", rest[0], onOff(active))

	case "select":
		if len(rest) < 2 {
			return false, errors.New("usage: select <group> <sample>")
		}
		sample := strings.Join(rest[1:], " ")
		if err := c.Sched.SelectSample(rest[0], sample); err != nil {
			return false, err
		}
		fmt.Fprintf(w, "%s plays %s\n", rest[0], sample)

	case "play":
		return false, c.Sched.Start()

	case "stop":
		c.Sched.Stop()

	case "pause", "resume":
		if c.Output == nil {
			return false, errors.Errorf("no output to %s", cmd)
		}
		c.Output.SetPaused(cmd == "pause")

	case "status":
		return false, c.status(w)

	case "groups":
		for _, st := range c.Sched.Snapshot() {
			tr, ok := c.Sched.Track(st.Group)
			if !ok {
				fmt.Fprintf(w, "%s (%s)\n", st.Group, st.Label)
				continue
			}
			fmt.Fprintf(w, "%s (%s): %s\n", st.Group, st.Label, strings.Join(tr.Options(), ", "))
		}

	case "wave":
		if len(rest) != 1 {
			return false, errors.New("usage: wave <group>")
		}
		return false, c.wave(rest[0], w)

	default:
		return false, errors.Errorf("unknown command %q, try help", cmd)
	}
	return false, nil
}

func (c *Console) status(w io.Writer) error {
	e := c.Sched.Ensemble()
	fmt.Fprintf(w, "ensemble %s", e.State)
	if e.State == scheduler.Running {
		fmt.Fprintf(w, " since %s", e.StartInstant)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tSAMPLE\tSTATE\tPHASE")
	for _, st := range c.Sched.Snapshot() {
		phase := "-"
		if st.Playing {
			phase = st.Phase.Round(time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", st.Group, st.Sample, onOff(st.Active), phase)
	}
	return tw.Flush()
}

func (c *Console) wave(group string, w io.Writer) error {
	if c.waves == nil {
		c.waves = map[string]visualizer.Frames{}
	}
	next, ok := c.waves[group]
	if !ok {
		known := false
		for _, st := range c.Sched.Snapshot() {
			known = known || st.Group == group
		}
		if !known {
			return &scheduler.InvalidSelection{Group: group, Reason: "unknown group"}
		}

		next = c.Vis.Frames(func() bool {
			for _, st := range c.Sched.Snapshot() {
				if st.Group == group {
					return st.Active
				}
			}
			return false
		})
		c.waves[group] = next
	}
	return next().Render(w, c.Vis.Height)
}

func onOff(active bool) string {
	if active {
		return "on"
	}
	return "off"
}
