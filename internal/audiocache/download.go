package audiocache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/llehouerou/riptide/internal/errmsg"
)

const (
	// DefaultTimeout bounds a whole transfer, body included.
	DefaultTimeout = 120 * time.Second

	userAgent = "riptide/1.0 (https://github.com/llehouerou/riptide)"
)

// Downloader fetches remote audio with a bounded timeout.
type Downloader struct {
	httpClient *http.Client
}

// NewDownloader creates a downloader. A zero timeout means DefaultTimeout.
func NewDownloader(timeout time.Duration) *Downloader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Downloader{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Bytes downloads the full body of url into memory.
func (d *Downloader) Bytes(ctx context.Context, url string) ([]byte, error) {
	body, err := d.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(networkReader{body})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ToFile downloads url into path, creating or truncating it.
// Returns the number of bytes written.
func (d *Downloader) ToFile(ctx context.Context, url, path string) (int64, error) {
	body, err := d.open(ctx, url)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, errmsg.Wrap(errmsg.ErrIO, err)
	}

	n, err := io.Copy(f, networkReader{body})
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		if errors.Is(err, errmsg.ErrNetwork) {
			return n, err
		}
		return n, errmsg.Wrap(errmsg.ErrIO, err)
	}
	return n, nil
}

func (d *Downloader) open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", errmsg.ErrNetwork, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: http request: %w", errmsg.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: unexpected status: %s", errmsg.ErrNetwork, resp.Status)
	}

	return resp.Body, nil
}

// networkReader tags body read failures as network errors so callers can tell
// them apart from local write failures.
type networkReader struct {
	r io.Reader
}

func (n networkReader) Read(p []byte) (int, error) {
	c, err := n.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = fmt.Errorf("%w: read body: %w", errmsg.ErrNetwork, err)
	}
	return c, err
}
