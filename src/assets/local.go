package assets

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Local reads assets from a directory on disk
type Local struct {
	Root string
}

func (l Local) Open(_ context.Context, location string) (io.ReadCloser, error) {
	path := location
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.Root, location)
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrNotFound, "%s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	return f, nil
}
