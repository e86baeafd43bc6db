// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mavensync/mavensync/internal/testutil"
)

func TestProvider_Load(t *testing.T) {
	base := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(base, LocalConfigFile), `working_dir: "scratch"`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{
		BaseDir:       base,
		ConfigDirPath: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.WorkingDir != "scratch" {
		t.Errorf("WorkingDir = %q, want scratch", cfg.WorkingDir)
	}
}

func TestProvider_LoadError(t *testing.T) {
	cfg, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "missing.cue"),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}
