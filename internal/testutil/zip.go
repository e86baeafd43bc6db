// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/klauspost/compress/zip"
)

// MustWriteZip writes a zip archive at path holding entries, keyed by
// slash-separated entry name. Names ending in "/" become directory entries.
// Entries are written in sorted order so archives are reproducible.
func MustWriteZip(t testing.TB, path string, entries map[string]string) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path), 0o755)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer MustClose(t, f)

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	slices.Sort(names)

	zw := zip.NewWriter(f)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s to %s: %v", name, path, err)
		}
		if _, err := w.Write([]byte(entries[name])); err != nil {
			t.Fatalf("failed to write %s to %s: %v", name, path, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finish %s: %v", path, err)
	}
}
