package assets

import (
	"context"
	"io"
	"net/url"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// GCS reads assets from a Google Cloud Storage bucket
type GCS struct {
	client       *storage.Client
	bucket       string
	objectPrefix string
}

// NewGCS creates a GCS source. Application default credentials are used
// when credentialsFile is empty.
func NewGCS(ctx context.Context, bucket, objectPrefix, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GCS client")
	}

	return &GCS{client: client, bucket: bucket, objectPrefix: objectPrefix}, nil
}

func (g *GCS) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	bucket, object, err := g.object(location)
	if err != nil {
		return nil, err
	}

	r, err := g.client.Bucket(bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return nil, errors.Wrapf(ErrNotFound, "gs://%s/%s", bucket, object)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read gs://%s/%s", bucket, object)
	}
	return r, nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}

// object splits a location into bucket and object name. "gs://b/o" names
// its own bucket, anything else is an object under the configured prefix.
func (g *GCS) object(location string) (bucket, object string, err error) {
	if strings.HasPrefix(location, "gs://") {
		u, err := url.Parse(location)
		if err != nil {
			return "", "", errors.Wrapf(err, "invalid asset location %q", location)
		}
		return u.Host, strings.TrimPrefix(u.Path, "/"), nil
	}

	if g.bucket == "" {
		return "", "", errors.Errorf("no bucket configured for %q", location)
	}
	object = strings.TrimPrefix(location, "/")
	if g.objectPrefix != "" {
		object = path.Join(g.objectPrefix, object)
	}
	return g.bucket, object, nil
}
