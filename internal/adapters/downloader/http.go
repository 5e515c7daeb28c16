package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"songforge/internal/core/domain"
	"songforge/internal/core/ports"
)

const defaultMaxRetries = 5

// HTTPDownloader fetches generated artifacts over HTTP and writes them to
// disk. A failed transfer never leaves a partial file at the destination:
// bytes are streamed to a temporary file in the same directory and renamed
// into place only when the transfer completes.
type HTTPDownloader struct {
	client     *http.Client
	maxRetries int
	logger     zerolog.Logger
}

// NewHTTPDownloader creates an HTTPDownloader. maxRetries <= 0 selects the
// default retry budget.
func NewHTTPDownloader(timeout time.Duration, maxRetries int, logger zerolog.Logger) *HTTPDownloader {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &HTTPDownloader{
		client: &http.Client{
			Timeout: timeout,
		},
		maxRetries: maxRetries,
		logger:     logger.With().Str("component", "downloader").Logger(),
	}
}

// Download fetches url and writes it to dest, returning bytes written.
// Transfers are retried with exponential backoff; the terminal failure is
// reported as *domain.DownloadError.
func (d *HTTPDownloader) Download(ctx context.Context, url, dest string) (int64, error) {
	var lastErr error
	for attempt := 0; attempt < d.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			d.logger.Warn().Err(lastErr).Int("attempt", attempt).Dur("backoff", backoff).
				Msg("download failed, retrying")
			select {
			case <-ctx.Done():
				return 0, &domain.DownloadError{URL: url, Err: ctx.Err()}
			case <-time.After(backoff):
			}
		}

		n, err := d.fetch(ctx, url, dest)
		if err == nil {
			d.logger.Info().Str("dest", dest).Int64("bytes", n).Msg("download complete")
			return n, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return 0, &domain.DownloadError{URL: url, Err: lastErr}
}

func (d *HTTPDownloader) fetch(ctx context.Context, url, dest string) (written int64, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory %s: %w", dir, err)
	}

	// Temp file lives next to dest so the final rename stays on one
	// filesystem.
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.partial-%s", filepath.Base(dest), uuid.NewString()))
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	written, err = io.Copy(tmp, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("write payload: %w", err)
	}
	if written == 0 {
		return 0, fmt.Errorf("payload is empty")
	}
	if err = tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("replace %s: %w", dest, err)
	}
	return written, nil
}

var _ ports.Downloader = (*HTTPDownloader)(nil)
