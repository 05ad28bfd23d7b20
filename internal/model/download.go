package model

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultUserAgent identifies the installer to asset hosts.
const DefaultUserAgent = "NativeTTS Model Installer"

const snippetRunes = 200

// DownloadError is returned for non-success HTTP responses.
type DownloadError struct {
	URL        string
	StatusCode int
	Status     string
	Snippet    string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("Download failed (%s): %s", e.Status, e.Snippet)
}

// Downloader streams assets into a model directory, publishing progress
// after every chunk.
type Downloader struct {
	Client    *http.Client
	UserAgent string
	Progress  *ProgressTracker
	Logger    *slog.Logger
}

// Fetch replaces dir with a fresh copy of every asset in m. It returns the
// total number of bytes written. Verification is left to the caller.
func (d *Downloader) Fetch(ctx context.Context, dir string, m Manifest) (int64, error) {
	if err := os.RemoveAll(dir); err != nil {
		return 0, fmt.Errorf("remove existing model dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create model dir: %w", err)
	}

	assets := m.Assets()
	planned := d.plannedTotal(ctx, assets)

	var done int64
	for _, a := range assets {
		n, err := d.download(ctx, a, filepath.Join(dir, a.Filename), done, planned)
		if err != nil {
			return done, err
		}
		done += n
	}

	return done, nil
}

// plannedTotal asks the server for every asset size up front so the first
// progress poll already reflects the whole install. Zero means unknown.
func (d *Downloader) plannedTotal(ctx context.Context, assets []Asset) int64 {
	var total int64
	for _, a := range assets {
		n := d.probeSize(ctx, a.URL)
		if n <= 0 {
			return 0
		}
		total += n
	}
	return total
}

func (d *Downloader) probeSize(ctx context.Context, url string) int64 {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0
	}
	d.setHeaders(req)

	resp, err := d.client().Do(req)
	if err != nil {
		d.logger().DebugContext(ctx, "asset size probe failed", slog.String("url", url), slog.String("error", err.Error()))
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 || resp.ContentLength < 0 {
		return 0
	}
	return resp.ContentLength
}

func (d *Downloader) download(ctx context.Context, a Asset, outPath string, base, planned int64) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	d.setHeaders(req)

	resp, err := d.client().Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s download request failed: %w", a.Label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return 0, &DownloadError{
			URL:        a.URL,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Snippet:    truncateRunes(string(body), snippetRunes),
		}
	}

	var total int64
	switch {
	case planned > 0:
		total = max(planned, base+resp.ContentLength)
	case resp.ContentLength > 0:
		total = base + resp.ContentLength
	}
	d.report(StatusDownloading, a.Label, base, total)

	tmp := outPath + ".download"
	fh, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}

	log := d.logger().With(slog.String("asset", a.Label), slog.String("url", a.URL))
	throttle := rate.Sometimes{Interval: 700 * time.Millisecond}

	var written int64
	buf := make([]byte, 64*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			wn, writeErr := fh.Write(buf[:n])
			if writeErr != nil {
				_ = fh.Close()
				_ = os.Remove(tmp)
				return 0, fmt.Errorf("write temp file: %w", writeErr)
			}
			written += int64(wn)
			d.report(StatusDownloading, a.Label, base+written, total)
			throttle.Do(func() {
				log.DebugContext(ctx, "download progress",
					slog.Int64("downloaded_bytes", base+written),
					slog.Int64("total_bytes", total),
				)
			})
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = fh.Close()
			_ = os.Remove(tmp)
			return 0, fmt.Errorf("%s download read failed: %w", a.Label, readErr)
		}
	}

	if err := fh.Close(); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, outPath); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("move temp file into place: %w", err)
	}

	log.InfoContext(ctx, "asset downloaded", slog.Int64("bytes", written))
	return written, nil
}

func (d *Downloader) report(status Status, phase string, downloaded, total int64) {
	if d.Progress == nil {
		return
	}
	d.Progress.Set(status, phase, uint64(max(downloaded, 0)), uint64(max(total, 0)))
}

func (d *Downloader) setHeaders(req *http.Request) {
	ua := d.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
}

func (d *Downloader) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return &http.Client{Timeout: 0}
}

func (d *Downloader) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func truncateRunes(s string, n int) string {
	s = strings.TrimSpace(s)
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
