// Package assets fetches the raw bytes of sample files from wherever the
// catalog says they live: the local disk, an HTTP server or a GCS bucket.
package assets

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when a location does not name an existing asset
var ErrNotFound = errors.New("asset not found")

// Source opens the asset stored at location
type Source interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// Mux routes a location to a Source by its URL scheme. Locations without a
// scheme go to the fallback.
type Mux struct {
	fallback Source
	schemes  map[string]Source
}

func NewMux(fallback Source) *Mux {
	return &Mux{fallback: fallback, schemes: map[string]Source{}}
}

// Handle registers src for locations such as "gs://..." when scheme is "gs"
func (m *Mux) Handle(scheme string, src Source) *Mux {
	m.schemes[strings.ToLower(scheme)] = src
	return m
}

func (m *Mux) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if u, err := url.Parse(location); err == nil && u.Scheme != "" {
		src, ok := m.schemes[strings.ToLower(u.Scheme)]
		if !ok {
			return nil, errors.Errorf("no asset source for scheme %q", u.Scheme)
		}
		return src.Open(ctx, location)
	}
	if m.fallback == nil {
		return nil, errors.Errorf("no asset source for %q", location)
	}
	return m.fallback.Open(ctx, location)
}

// Close closes every routed source that holds resources, each one once
// even when it serves several schemes.
func (m *Mux) Close() error {
	closed := map[io.Closer]bool{}
	var first error
	for _, src := range append([]Source{m.fallback}, m.sourcesByScheme()...) {
		c, ok := src.(io.Closer)
		if !ok || closed[c] {
			continue
		}
		closed[c] = true
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *Mux) sourcesByScheme() []Source {
	srcs := make([]Source, 0, len(m.schemes))
	for _, src := range m.schemes {
		srcs = append(srcs, src)
	}
	return srcs
}
