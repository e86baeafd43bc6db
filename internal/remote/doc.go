// SPDX-License-Identifier: MPL-2.0

// Package remote talks to Maven repositories over HTTP. It resolves the
// "latest" version marker through maven-metadata.xml and downloads descriptors
// and payloads into a repository-scoped directory layout.
package remote
