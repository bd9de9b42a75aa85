package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"sunweather/internal/logging"
	"sunweather/internal/services"
	"sunweather/internal/suvi"
)

var hrefRE = regexp.MustCompile(`(?i)href="([^"]+\.png)"`)

// The archive rejects anonymous-looking traffic, so every request carries
// the same referer and user-agent pair the site expects.
const (
	refererHeader   = "https://www.swpc.noaa.gov/"
	userAgentHeader = "sunweather/1.0 (solar imagery grid renderer)"
)

// Window bounds the observation times worth downloading. Zero values leave
// the corresponding side unbounded.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether ts falls inside the window.
func (w Window) Contains(ts time.Time) bool {
	if !w.Start.IsZero() && ts.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && ts.After(w.End) {
		return false
	}
	return true
}

// Client downloads band imagery from the archive.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	retries     int
	concurrency int
	logger      *slog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client (used in tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger attaches a logger for per-file debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a client for the archive rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, retries, concurrency int, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		retries:     retries,
		concurrency: concurrency,
		logger:      logging.NewNop(),
	}
	if c.retries < 1 {
		c.retries = 1
	}
	if c.concurrency < 1 {
		c.concurrency = 1
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchBand scrapes the band's directory index and downloads every frame in
// the window into destDir. The returned sequence ascends by observation
// time. Individual file failures after the retry budget degrade to a
// partial sequence; only an unreachable index is an error.
func (c *Client) FetchBand(ctx context.Context, band suvi.Band, window Window, destDir string) (suvi.Sequence, error) {
	seq := suvi.Sequence{Band: band}
	logger := logging.WithContext(ctx, c.logger)

	dirURL := c.baseURL + "/" + string(band) + "/"
	frames, err := c.scrapeIndex(ctx, dirURL)
	if err != nil {
		return seq, services.Wrap(services.ErrFetch, "fetching", "index", fmt.Sprintf("band %s", band), err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return seq, services.Wrap(services.ErrFetch, "fetching", "scratch", fmt.Sprintf("band %s", band), err)
	}

	type slot struct {
		img suvi.BandImage
		err error
	}
	results := make([]slot, len(frames))
	sem := make(chan struct{}, c.concurrency)
	var wg sync.WaitGroup
	for i, frame := range frames {
		if !window.Contains(frame.timestamp) {
			continue
		}
		wg.Add(1)
		go func(i int, frame indexEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			dest := filepath.Join(destDir, frame.name)
			if err := c.download(ctx, frame.url, dest); err != nil {
				results[i].err = err
				return
			}
			results[i].img = suvi.BandImage{Band: band, Timestamp: frame.timestamp, Path: dest}
		}(i, frame)
	}
	wg.Wait()

	var failed int
	for _, res := range results {
		if res.err != nil {
			failed++
			logger.Warn("frame download failed",
				logging.String(logging.FieldBand, string(band)),
				logging.Error(res.err))
			continue
		}
		if res.img.Path != "" {
			seq.Images = append(seq.Images, res.img)
		}
	}
	sort.Slice(seq.Images, func(i, j int) bool {
		return seq.Images[i].Timestamp.Before(seq.Images[j].Timestamp)
	})

	logger.Debug("band fetched",
		logging.String(logging.FieldBand, string(band)),
		logging.Int("frames", len(seq.Images)),
		logging.Int("failed", failed))
	return seq, nil
}

type indexEntry struct {
	name      string
	url       string
	timestamp time.Time
}

// scrapeIndex fetches a directory listing and extracts datestamped PNG
// entries, sorted ascending. The latest.png alias duplicates the newest
// frame and is dropped.
func (c *Client) scrapeIndex(ctx context.Context, dirURL string) ([]indexEntry, error) {
	body, err := c.get(ctx, dirURL)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(dirURL)
	if err != nil {
		return nil, fmt.Errorf("parse index url: %w", err)
	}

	seen := make(map[string]struct{})
	var entries []indexEntry
	for _, match := range hrefRE.FindAllStringSubmatch(string(body), -1) {
		href := match[1]
		if strings.HasSuffix(href, "latest.png") {
			continue
		}
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		resolved := base.ResolveReference(ref)
		name := path.Base(resolved.Path)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		ts, ok := suvi.ParseObservationTime(name)
		if !ok {
			c.logger.Debug("skipping file without observation timestamp", logging.String("file", name))
			continue
		}
		entries = append(entries, indexEntry{name: name, url: resolved.String(), timestamp: ts})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].timestamp.Before(entries[j].timestamp) })
	return entries, nil
}

// download retrieves one frame with retries and exponential backoff.
func (c *Client) download(ctx context.Context, srcURL, dest string) error {
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, backoffDelay(attempt-1)); err != nil {
				return err
			}
		}
		body, err := c.get(ctx, srcURL)
		if err != nil {
			lastErr = err
			continue
		}
		if err := os.WriteFile(dest, body, 0o644); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		return nil
	}
	return fmt.Errorf("download %s after %d attempts: %w", srcURL, c.retries, lastErr)
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Referer", refererHeader)
	req.Header.Set("User-Agent", userAgentHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %s for %s", resp.Status, target)
	}
	return io.ReadAll(resp.Body)
}

// backoffDelay doubles from 500ms per failed attempt, capped at 8s.
func backoffDelay(failures int) time.Duration {
	delay := 500 * time.Millisecond << (failures - 1)
	if delay > 8*time.Second {
		delay = 8 * time.Second
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
