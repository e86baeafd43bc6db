// SPDX-License-Identifier: MPL-2.0

// Package manifest drives the external build-manifest generator. It turns the
// rewrite rules into generator flags, runs the generator over a repackaged
// working tree and captures its standard output into the manifest file.
package manifest
