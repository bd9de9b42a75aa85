package compose_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sunweather/internal/align"
	"sunweather/internal/compose"
	"sunweather/internal/suvi"
)

func writePNG(t *testing.T, dir, name string, width, height int, fill color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
	return path
}

func bandColor(i int) color.RGBA {
	return color.RGBA{R: uint8(40 * (i + 1)), G: uint8(30 * (i + 1)), B: uint8(20 * (i + 1)), A: 0xff}
}

func fullFrameSet(t *testing.T, dir string, size int) align.FrameSet {
	t.Helper()
	fs := align.FrameSet{
		Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Cells:     make(map[suvi.Band]align.Cell),
	}
	for i, band := range suvi.Bands() {
		path := writePNG(t, dir, string(band)+".png", size, size, bandColor(i))
		fs.Cells[band] = align.Cell{Image: &suvi.BandImage{Band: band, Timestamp: fs.Timestamp, Path: path}}
	}
	return fs
}

func TestComposePlacesBandsAtGridCells(t *testing.T) {
	dir := t.TempDir()
	composer := compose.New(64, 64)
	fs := fullFrameSet(t, dir, 64)

	frame, err := composer.Compose(fs)
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if frame.Bounds() != image.Rect(0, 0, 64*suvi.GridCols, 64*suvi.GridRows) {
		t.Fatalf("unexpected canvas bounds: %v", frame.Bounds())
	}

	for i, band := range suvi.Bands() {
		row, col := band.GridCell()
		cx := col*64 + 32
		cy := row*64 + 32
		got := frame.RGBAAt(cx, cy)
		want := bandColor(i)
		if got != want {
			t.Fatalf("band %s at (%d,%d): got %v want %v", band, cx, cy, got, want)
		}
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	composer := compose.New(48, 48)
	fs := fullFrameSet(t, dir, 100)

	first, err := composer.Compose(fs)
	if err != nil {
		t.Fatalf("first Compose: %v", err)
	}
	second, err := composer.Compose(fs)
	if err != nil {
		t.Fatalf("second Compose: %v", err)
	}
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Fatal("expected byte-identical composites for identical frame sets")
	}
}

func TestComposeLetterboxesNonSquareSources(t *testing.T) {
	dir := t.TempDir()
	composer := compose.New(64, 64)
	fs := fullFrameSet(t, dir, 64)

	// Wide 094 source: letterbox bars above and below.
	wide := writePNG(t, dir, "wide.png", 128, 32, color.RGBA{R: 0xff, A: 0xff})
	ts := fs.Timestamp
	fs.Cells[suvi.Band094] = align.Cell{Image: &suvi.BandImage{Band: suvi.Band094, Timestamp: ts, Path: wide}}

	frame, err := composer.Compose(fs)
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}

	top := frame.RGBAAt(32, 2)
	if top != (color.RGBA{A: 0xff}) {
		t.Fatalf("expected black letterbox bar, got %v", top)
	}
	center := frame.RGBAAt(32, 32)
	if center.R < 0xf0 {
		t.Fatalf("expected scaled source at cell center, got %v", center)
	}
}

func TestComposeRendersPlaceholderForMissingCell(t *testing.T) {
	dir := t.TempDir()
	composer := compose.New(64, 64)
	fs := fullFrameSet(t, dir, 64)
	fs.Cells[suvi.Band284] = align.Cell{Missing: true}

	frame, err := composer.Compose(fs)
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}

	row, col := suvi.Band284.GridCell()
	corner := frame.RGBAAt(col*64+2, row*64+2)
	if corner != (color.RGBA{R: 0x14, G: 0x14, B: 0x18, A: 0xff}) {
		t.Fatalf("expected placeholder field color, got %v", corner)
	}
}

func TestComposeFailsOnUnreadableObservation(t *testing.T) {
	dir := t.TempDir()
	composer := compose.New(32, 32)
	fs := fullFrameSet(t, dir, 32)
	ts := fs.Timestamp
	fs.Cells[suvi.Band131] = align.Cell{Image: &suvi.BandImage{Band: suvi.Band131, Timestamp: ts, Path: filepath.Join(dir, "absent.png")}}

	if _, err := composer.Compose(fs); err == nil {
		t.Fatal("expected error for unreadable observation")
	}
}
