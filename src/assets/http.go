package assets

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// HTTP fetches assets over http(s). Relative locations are resolved
// against BaseURL.
type HTTP struct {
	Client  *http.Client
	BaseURL string
}

func (h HTTP) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	target, err := h.resolve(location)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build request for %s", target)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s", target)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, errors.Wrapf(ErrNotFound, "%s", target)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, errors.Errorf("failed to fetch %s: %s", target, resp.Status)
	}
	return resp.Body, nil
}

func (h HTTP) resolve(location string) (string, error) {
	ref, err := url.Parse(location)
	if err != nil {
		return "", errors.Wrapf(err, "invalid asset location %q", location)
	}
	if ref.IsAbs() || h.BaseURL == "" {
		return ref.String(), nil
	}
	base, err := url.Parse(h.BaseURL)
	if err != nil {
		return "", errors.Wrapf(err, "invalid base url %q", h.BaseURL)
	}
	return base.ResolveReference(ref).String(), nil
}
