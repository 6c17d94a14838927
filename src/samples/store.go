package samples

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/faiface/beep"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"tjweldon/looper/src/assets"
	"tjweldon/looper/src/util"
)

var (
	// ErrNotFound is returned for identifiers the catalog does not know
	ErrNotFound = errors.New("unknown sample")
	// ErrDecode is returned when an asset cannot be fetched or decoded
	ErrDecode = errors.New("cannot decode sample")
	// ErrEmpty is returned for assets that decode to zero frames
	ErrEmpty = errors.New("sample has no frames")
)

// LoadError reports which sample failed to load and where it was looked for
type LoadError struct {
	ID       string
	Location string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load sample %q from %s: %v", e.ID, e.Location, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

var logger = util.Logger{}.Ctx("samples")

// Store resolves sample identifiers to decoded Samples and keeps them for
// the rest of the session.
type Store struct {
	src       assets.Source
	rate      beep.SampleRate
	locations map[string]string

	mu    sync.RWMutex
	cache map[string]*Sample
}

// NewStore creates a Store that fetches through src and decodes every
// sample to rate. locations maps identifiers to asset locations.
func NewStore(src assets.Source, rate beep.SampleRate, locations map[string]string) *Store {
	locs := make(map[string]string, len(locations))
	for id, loc := range locations {
		locs[id] = loc
	}
	return &Store{src: src, rate: rate, locations: locs, cache: map[string]*Sample{}}
}

func (s *Store) Rate() beep.SampleRate { return s.rate }

// Known reports whether id is in the catalog, loaded or not
func (s *Store) Known(id string) bool {
	_, ok := s.locations[id]
	return ok
}

// Get returns an already loaded sample without doing any I/O
func (s *Store) Get(id string) (*Sample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	smp, ok := s.cache[id]
	return smp, ok
}

// Load returns the sample for id, fetching and decoding it on first use
func (s *Store) Load(ctx context.Context, id string) (*Sample, error) {
	if smp, ok := s.Get(id); ok {
		return smp, nil
	}

	smp, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[id]; ok {
		return cached, nil
	}
	s.cache[id] = smp
	return smp, nil
}

// PreloadAll loads every id concurrently and returns once all of them are
// ready, or with the first error. Nothing from the batch is kept when any
// of it fails. onLoaded, if not nil, is called once per sample as it
// becomes ready, never concurrently.
func (s *Store) PreloadAll(ctx context.Context, ids []string, onLoaded func(*Sample)) error {
	logger := logger.Ctx("PreloadAll").Vol(util.Normal)
	logger.Log("loading", len(ids), "samples")

	results := make([]*Sample, len(ids))
	var progress sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			smp, ok := s.Get(id)
			if !ok {
				var err error
				if smp, err = s.fetch(gctx, id); err != nil {
					return err
				}
			}
			results[i] = smp

			if onLoaded != nil {
				progress.Lock()
				onLoaded(smp)
				progress.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Vol(util.Loud).Log("catalog not ready:", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, smp := range results {
		if _, ok := s.cache[smp.ID()]; !ok {
			s.cache[smp.ID()] = smp
		}
	}
	logger.Log("catalog ready")
	return nil
}

func (s *Store) fetch(ctx context.Context, id string) (*Sample, error) {
	location, ok := s.locations[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%q", id)
	}
	fail := func(err error) error {
		return &LoadError{ID: id, Location: location, Err: err}
	}

	rc, err := s.src.Open(ctx, location)
	if err != nil {
		return nil, fail(errors.Wrapf(ErrDecode, "%v", err))
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fail(errors.Wrapf(ErrDecode, "%v", err))
	}

	smp, err := Decode(id, location, data, s.rate)
	if err != nil {
		return nil, fail(err)
	}

	logger.Ctx("fetch").Vol(util.Quiet).Log("decoded", smp)
	return smp, nil
}
