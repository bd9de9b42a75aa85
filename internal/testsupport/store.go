package testsupport

import (
	"path/filepath"
	"testing"

	"sunweather/internal/manifest"
)

// MustOpenStore opens a manifest.Store backed by a temp database and
// registers cleanup.
func MustOpenStore(t testing.TB) *manifest.Store {
	t.Helper()

	store, err := manifest.Open(filepath.Join(t.TempDir(), "manifest.db"))
	if err != nil {
		t.Fatalf("manifest.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
