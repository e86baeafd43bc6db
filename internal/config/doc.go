// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is read from the first file found among an explicit --config
// path, mavensync.cue in the tree root and config.cue in the user config
// directory (~/.config/mavensync on Linux). Files are validated against the
// embedded schema (config_schema.cue) before being merged over the built-in
// defaults. Environment variables prefixed with MAVENSYNC_ override scalar
// values.
//
// The loaded Config converts into the run's domain objects: artifact specs,
// the rewrite rule set, resolver repositories and manifest generator options.
package config
