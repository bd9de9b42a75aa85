package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sunweather/internal/suvi"
)

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// writeTestConfig materializes a config file wired to the stub archive and
// stub encoder so CLI runs stay hermetic.
func writeTestConfig(t *testing.T, path, baseDir, archiveURL, outputPath, ffmpegPath string) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
work_dir = %q
log_dir = %q

[archive]
base_url = %q
request_timeout = 5
retries = 1
concurrency = 2

[output]
path = %q
fps = 5

[compose]
tile_width = 32
tile_height = 24

[encode]
ffmpeg_binary = %q

[logging]
level = "error"
`,
		filepath.Join(baseDir, "work"),
		filepath.Join(baseDir, "logs"),
		archiveURL,
		outputPath,
		ffmpegPath,
	)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// newArchiveServer serves directory indexes and observation PNGs for every
// band, mimicking the SWPC animation archive layout.
func newArchiveServer(t *testing.T, observations []string) *httptest.Server {
	t.Helper()

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 0x90, G: 0x40, A: 0xff})
		}
	}
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture png: %v", err)
	}
	pngBytes := buf.Bytes()

	mux := http.NewServeMux()
	for _, band := range suvi.Bands() {
		band := band
		mux.HandleFunc("/"+string(band)+"/", func(w http.ResponseWriter, r *http.Request) {
			name := strings.TrimPrefix(r.URL.Path, "/"+string(band)+"/")
			if name == "" {
				var index strings.Builder
				index.WriteString("<html><body>\n")
				index.WriteString(`<a href="latest.png">latest.png</a>` + "\n")
				for _, obs := range observations {
					file := fmt.Sprintf("or_suvi-l2-ci%s_g19_s%sZ_e%sZ.png", band, obs, obs)
					fmt.Fprintf(&index, "<a href=%q>%s</a>\n", file, file)
				}
				index.WriteString("</body></html>\n")
				w.Header().Set("Content-Type", "text/html")
				fmt.Fprint(w, index.String())
				return
			}
			w.Header().Set("Content-Type", "image/png")
			w.Write(pngBytes)
		})
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// writeStubFFmpeg drops a shell script that touches its final argument, which
// is where ffmpeg places its output file.
func writeStubFFmpeg(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\nfor last; do :; done\n: > \"$last\"\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub ffmpeg: %v", err)
	}
	return path
}
