// Package artwork retrieves and decodes album art referenced by player
// metadata. Fetches are single-attempt: a later metadata change naturally
// re-triggers the pipeline, so nothing here retries.
package artwork

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const _maxImageSize = 10 * 1024 * 1024 // 10 MB

// Stage names the pipeline step an artwork error originated from.
type Stage string

const (
	// StageRead covers URI parsing and local file reads
	StageRead Stage = "read"
	// StageTransport covers the HTTP round trip
	StageTransport Stage = "transport"
	// StageDecode covers image decoding and scaling
	StageDecode Stage = "decode"
)

// StageError wraps a pipeline failure with its originating stage so the
// log line can name where the fetch died.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ArtFetcher resolves art URIs to raw image bytes. file URIs are read
// from disk, http/https URIs are fetched over the shared client; any
// other scheme fails.
type ArtFetcher struct {
	logger *zap.Logger
	client *http.Client
}

// NewArtFetcher creates a fetcher with a shared HTTP session
func NewArtFetcher(logger *zap.Logger) *ArtFetcher {
	return &ArtFetcher{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second, // Essential to prevent a hung fetch lingering forever
		},
	}
}

// Fetch resolves uri by scheme and returns the raw image bytes
func (f *ArtFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, &StageError{Stage: StageRead, Err: fmt.Errorf("invalid art URI: %w", err)}
	}

	switch u.Scheme {
	case "file":
		return f.readFile(u.Path)
	case "http", "https":
		return f.httpGet(ctx, uri)
	default:
		return nil, &StageError{Stage: StageRead, Err: fmt.Errorf("unsupported URI scheme %q", u.Scheme)}
	}
}

func (f *ArtFetcher) readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &StageError{Stage: StageRead, Err: err}
	}

	f.logger.Debug("Artwork read from file",
		zap.Int("bytes", len(data)),
		zap.String("path", path))
	return data, nil
}

func (f *ArtFetcher) httpGet(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, &StageError{Stage: StageTransport, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", "playerlock/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &StageError{Stage: StageTransport, Err: fmt.Errorf("network error: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StageError{Stage: StageTransport, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return nil, &StageError{Stage: StageTransport, Err: fmt.Errorf("url is not an image: %s", ct)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, _maxImageSize))
	if err != nil {
		return nil, &StageError{Stage: StageTransport, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	f.logger.Debug("Artwork fetched",
		zap.Int("bytes", len(data)),
		zap.String("url", uri))
	return data, nil
}
