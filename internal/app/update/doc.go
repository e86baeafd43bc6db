// SPDX-License-Identifier: MPL-2.0

// Package update runs the prebuilt synchronization pipeline: resolve the
// configured artifacts, fetch the ones that changed, repackage everything into
// a fresh working directory, generate the build manifest and commit the new
// output directory. The pipeline runs inside a version-control scope that
// restores the working tree afterwards, whatever the outcome.
package update
