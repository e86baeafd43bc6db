// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions selects where configuration is read from. Zero values fall
	// back to the normal lookup order.
	LoadOptions struct {
		// ConfigFilePath is an explicit --config file; it must exist.
		ConfigFilePath string
		// ConfigDirPath replaces the per-user config directory.
		ConfigDirPath string
		// BaseDir is the tree root searched for mavensync.cue.
		BaseDir string
	}

	// Provider yields the effective configuration of one invocation.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	fileProvider struct{}
)

// configDirOverride, when set, is returned by ConfigDir instead of the
// platform lookup. os.UserHomeDir ignores HOME on some CI hosts.
var configDirOverride string

// NewProvider returns the Provider backed by CUE files, MAVENSYNC_
// environment variables and built-in defaults.
func NewProvider() Provider {
	return fileProvider{}
}

func (fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetConfigDirOverride pins ConfigDir to dir. Tests pair it with Reset.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset restores the platform config directory lookup.
func Reset() {
	SetConfigDirOverride("")
}
