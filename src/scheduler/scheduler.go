// Package scheduler keeps every track of the looper in phase lock: all of
// them start on one shared instant, and samples swapped in mid-flight are
// seeked to where that shared timeline says the loop should be.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"tjweldon/looper/src/catalog"
	"tjweldon/looper/src/engine"
	"tjweldon/looper/src/samples"
	"tjweldon/looper/src/track"
	"tjweldon/looper/src/util"
)

var logger = util.Logger{}.Ctx("scheduler")

type State int

const (
	NotStarted State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "not started"
}

// Ensemble is the set of tracks and the instant they all started on
type Ensemble struct {
	State        State
	StartInstant time.Duration
	Tracks       []*track.Track
}

// Options tune the timing of the scheduler
type Options struct {
	// LeadTime is added to now when the ensemble starts
	LeadTime time.Duration
	// Ramp is the time constant of mute and unmute
	Ramp time.Duration
}

// Status is a read-only view of one track for the UI
type Status struct {
	Group   string
	Label   string
	Sample  string
	Active  bool
	Playing bool
	Phase   time.Duration
}

type Scheduler struct {
	mu       sync.Mutex
	groups   []catalog.Group
	renderer engine.Renderer
	store    *samples.Store
	opts     Options

	ready    bool
	ensemble Ensemble
	byGroup  map[string]*track.Track

	// user gestures made before the catalog finished loading
	pendingSample map[string]string
	pendingActive map[string]bool
}

func New(groups []catalog.Group, r engine.Renderer, store *samples.Store, opts Options) *Scheduler {
	return &Scheduler{
		groups:        append([]catalog.Group(nil), groups...),
		renderer:      r,
		store:         store,
		opts:          opts,
		byGroup:       map[string]*track.Track{},
		pendingSample: map[string]string{},
		pendingActive: map[string]bool{},
	}
}

// Load preloads the whole catalog and creates one muted track per group.
// When any sample fails the scheduler stays not ready and no track exists.
func (s *Scheduler) Load(ctx context.Context, onLoaded func(*samples.Sample)) error {
	s.mu.Lock()
	ready := s.ready
	s.mu.Unlock()
	if ready {
		return nil
	}

	var ids []string
	for _, g := range s.groups {
		ids = append(ids, g.Options...)
	}
	if err := s.store.PreloadAll(ctx, ids, onLoaded); err != nil {
		return errors.Wrap(err, "catalog not ready")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	tracks := make([]*track.Track, 0, len(s.groups))
	for _, g := range s.groups {
		id := g.Options[0]
		if pending, ok := s.pendingSample[g.ID]; ok {
			id = pending
		}
		sample, ok := s.store.Get(id)
		if !ok {
			return errors.Wrapf(samples.ErrNotFound, "%q", id)
		}

		tr := track.New(g.ID, g.Options, sample, s.renderer.NewGain(0))
		if s.pendingActive[g.ID] {
			tr.SetActive(true, s.opts.Ramp)
		}
		tracks = append(tracks, tr)
	}

	for _, tr := range tracks {
		s.byGroup[tr.Group()] = tr
	}
	s.ensemble.Tracks = tracks
	s.pendingSample = map[string]string{}
	s.pendingActive = map[string]bool{}
	s.ready = true

	logger.Ctx("Load").Vol(util.Normal).Log("ready with tracks", util.Map((*track.Track).Group, tracks))
	return nil
}

func (s *Scheduler) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Ensemble returns a copy of the ensemble record
func (s *Scheduler) Ensemble() Ensemble {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.ensemble
	e.Tracks = append([]*track.Track(nil), e.Tracks...)
	return e
}

func (s *Scheduler) Track(group string) (*track.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, ok := s.byGroup[group]
	return tr, ok
}

// Start starts every track on one shared instant. Starting a running
// ensemble does nothing.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.start()
}

func (s *Scheduler) start() error {
	if !s.ready {
		return ErrNotReady
	}
	if s.ensemble.State == Running {
		return nil
	}
	logger := logger.Ctx("start").Vol(util.Normal)

	// captured once: every track must see the very same instant
	startInstant := s.renderer.Now() + s.opts.LeadTime
	for _, tr := range s.ensemble.Tracks {
		if err := tr.Start(s.renderer, startInstant); err != nil {
			logger.Vol(util.Loud).Log(tr.Group(), "stays silent:", err)
		}
	}

	s.ensemble.State = Running
	s.ensemble.StartInstant = startInstant
	logger.Log("ensemble starts at", startInstant)
	return nil
}

// Stop stops every source and returns the ensemble to not started
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tr := range s.ensemble.Tracks {
		tr.Stop(s.renderer)
	}
	s.ensemble.State = NotStarted
	s.ensemble.StartInstant = 0
	logger.Ctx("Stop").Vol(util.Normal).Log("ensemble stopped")
}

// ToggleTrack mutes or unmutes a group and returns its new active state.
// The first toggle after loading starts the whole ensemble; toggles made
// before that are remembered.
func (s *Scheduler) ToggleTrack(group string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.group(group); !ok {
		return false, &InvalidSelection{Group: group, Reason: "unknown group"}
	}
	if !s.ready {
		s.pendingActive[group] = !s.pendingActive[group]
		return s.pendingActive[group], nil
	}

	if err := s.start(); err != nil {
		return false, err
	}
	tr := s.byGroup[group]
	active := !tr.Active()
	tr.SetActive(active, s.opts.Ramp)

	logger.Ctx("ToggleTrack").Vol(util.Quiet).Log(group, "active:", active)
	return active, nil
}

// SelectSample makes sampleID the sample of a group. On a running ensemble
// the new sample joins in phase, otherwise the choice waits for the start.
func (s *Scheduler) SelectSample(group, sampleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.group(group)
	if !ok {
		return &InvalidSelection{Group: group, Sample: sampleID, Reason: "unknown group"}
	}
	if !offers(g, sampleID) {
		return &InvalidSelection{Group: group, Sample: sampleID, Reason: "not offered by group"}
	}

	if !s.ready {
		s.pendingSample[group] = sampleID
		return nil
	}

	sample, ok := s.store.Get(sampleID)
	if !ok {
		return &InvalidSelection{Group: group, Sample: sampleID, Reason: "not loaded"}
	}
	tr := s.byGroup[group]

	if s.ensemble.State != Running {
		tr.Select(sample)
		return nil
	}

	if _, err := tr.Swap(s.renderer, sample, s.ensemble.StartInstant); err != nil {
		logger.Ctx("SelectSample").Vol(util.Loud).Log(group, "stays silent:", err)
		return err
	}
	return nil
}

// Snapshot reports the state of every track in catalog order
func (s *Scheduler) Snapshot() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Status, 0, len(s.groups))
	for _, g := range s.groups {
		st := Status{Group: g.ID, Label: g.Label, Sample: g.Options[0]}
		tr, ok := s.byGroup[g.ID]
		if !ok {
			if id, ok := s.pendingSample[g.ID]; ok {
				st.Sample = id
			}
			st.Active = s.pendingActive[g.ID]
			out = append(out, st)
			continue
		}

		st.Sample = tr.Selected().ID()
		st.Active = tr.Active()
		if src := tr.Source(); src != nil {
			st.Playing = src.Playing()
			st.Phase = src.Phase()
		}
		out = append(out, st)
	}
	return out
}

func (s *Scheduler) group(id string) (catalog.Group, bool) {
	for _, g := range s.groups {
		if g.ID == id {
			return g, true
		}
	}
	return catalog.Group{}, false
}

func offers(g catalog.Group, sampleID string) bool {
	for _, o := range g.Options {
		if o == sampleID {
			return true
		}
	}
	return false
}
