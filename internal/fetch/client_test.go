package fetch_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"sunweather/internal/fetch"
	"sunweather/internal/services"
	"sunweather/internal/suvi"
)

func frameName(band suvi.Band, ts time.Time) string {
	stamp := ts.Format("20060102T150405")
	return fmt.Sprintf("or_suvi-l2-ci%s_g16_s%sZ_e%sZ_v1-0-2.png", band, stamp, stamp)
}

type archiveStub struct {
	band     suvi.Band
	names    []string
	failures map[string]*atomic.Int32 // remaining failures per file
}

func (a *archiveStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			var b strings.Builder
			b.WriteString("<html><body>")
			b.WriteString(`<a href="latest.png">latest.png</a>`)
			for _, name := range a.names {
				fmt.Fprintf(&b, `<a href="%s">%s</a>`, name, name)
			}
			b.WriteString("</body></html>")
			w.Write([]byte(b.String()))
			return
		}
		name := filepath.Base(r.URL.Path)
		if counter, ok := a.failures[name]; ok && counter.Add(-1) >= 0 {
			http.Error(w, "upstream blip", http.StatusBadGateway)
			return
		}
		w.Write([]byte("png-bytes:" + name))
	}
}

func newTestClient(t *testing.T, stub *archiveStub) (*fetch.Client, string) {
	t.Helper()
	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)
	client := fetch.NewClient(server.URL, 5*time.Second, 3, 4)
	return client, server.URL
}

func TestFetchBandDownloadsAndOrders(t *testing.T) {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	stub := &archiveStub{band: suvi.Band284, names: []string{
		frameName(suvi.Band284, base.Add(8*time.Minute)),
		frameName(suvi.Band284, base),
		frameName(suvi.Band284, base.Add(4*time.Minute)),
	}}
	client, _ := newTestClient(t, stub)

	dest := t.TempDir()
	seq, err := client.FetchBand(context.Background(), suvi.Band284, fetch.Window{}, dest)
	if err != nil {
		t.Fatalf("FetchBand returned error: %v", err)
	}
	if len(seq.Images) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(seq.Images))
	}
	for i := 1; i < len(seq.Images); i++ {
		if !seq.Images[i-1].Timestamp.Before(seq.Images[i].Timestamp) {
			t.Fatalf("sequence not ascending at %d", i)
		}
	}
	for _, img := range seq.Images {
		data, err := os.ReadFile(img.Path)
		if err != nil {
			t.Fatalf("read downloaded frame: %v", err)
		}
		if !strings.HasPrefix(string(data), "png-bytes:") {
			t.Fatalf("unexpected frame contents: %q", data)
		}
	}
}

func TestFetchBandSkipsLatestAlias(t *testing.T) {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	stub := &archiveStub{band: suvi.Band171, names: []string{frameName(suvi.Band171, base)}}
	client, _ := newTestClient(t, stub)

	seq, err := client.FetchBand(context.Background(), suvi.Band171, fetch.Window{}, t.TempDir())
	if err != nil {
		t.Fatalf("FetchBand returned error: %v", err)
	}
	if len(seq.Images) != 1 {
		t.Fatalf("expected latest.png skipped, got %d frames", len(seq.Images))
	}
}

func TestFetchBandRetriesTransientFailures(t *testing.T) {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	name := frameName(suvi.Band094, base)
	failures := &atomic.Int32{}
	failures.Store(2) // fail twice, succeed on the third attempt
	stub := &archiveStub{
		band:     suvi.Band094,
		names:    []string{name},
		failures: map[string]*atomic.Int32{name: failures},
	}
	client, _ := newTestClient(t, stub)

	seq, err := client.FetchBand(context.Background(), suvi.Band094, fetch.Window{}, t.TempDir())
	if err != nil {
		t.Fatalf("FetchBand returned error: %v", err)
	}
	if len(seq.Images) != 1 {
		t.Fatalf("expected retry to recover the frame, got %d", len(seq.Images))
	}
}

func TestFetchBandDegradesAfterRetryBudget(t *testing.T) {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	good := frameName(suvi.Band131, base)
	bad := frameName(suvi.Band131, base.Add(4*time.Minute))
	failures := &atomic.Int32{}
	failures.Store(100)
	stub := &archiveStub{
		band:     suvi.Band131,
		names:    []string{good, bad},
		failures: map[string]*atomic.Int32{bad: failures},
	}
	client, _ := newTestClient(t, stub)

	seq, err := client.FetchBand(context.Background(), suvi.Band131, fetch.Window{}, t.TempDir())
	if err != nil {
		t.Fatalf("expected partial coverage, not error: %v", err)
	}
	if len(seq.Images) != 1 {
		t.Fatalf("expected 1 surviving frame, got %d", len(seq.Images))
	}
}

func TestFetchBandWindowFiltering(t *testing.T) {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	stub := &archiveStub{band: suvi.Band304, names: []string{
		frameName(suvi.Band304, base),
		frameName(suvi.Band304, base.Add(4*time.Minute)),
		frameName(suvi.Band304, base.Add(8*time.Minute)),
	}}
	client, _ := newTestClient(t, stub)

	window := fetch.Window{Start: base.Add(2 * time.Minute)}
	seq, err := client.FetchBand(context.Background(), suvi.Band304, window, t.TempDir())
	if err != nil {
		t.Fatalf("FetchBand returned error: %v", err)
	}
	if len(seq.Images) != 2 {
		t.Fatalf("expected window to drop the oldest frame, got %d", len(seq.Images))
	}
}

func TestFetchBandIndexFailureIsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)
	client := fetch.NewClient(server.URL, time.Second, 1, 1)

	_, err := client.FetchBand(context.Background(), suvi.Band195, fetch.Window{}, t.TempDir())
	if err == nil {
		t.Fatal("expected error for unreachable index")
	}
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected ErrFetch classification, got %v", err)
	}
}

func TestWindowContains(t *testing.T) {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	w := fetch.Window{Start: base, End: base.Add(time.Hour)}
	if !w.Contains(base) || !w.Contains(base.Add(time.Hour)) {
		t.Fatal("expected inclusive bounds")
	}
	if w.Contains(base.Add(-time.Second)) || w.Contains(base.Add(time.Hour+time.Second)) {
		t.Fatal("expected out-of-window instants rejected")
	}
	if !(fetch.Window{}).Contains(base) {
		t.Fatal("expected zero window to contain everything")
	}
}
