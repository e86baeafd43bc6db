// SPDX-License-Identifier: MPL-2.0

// Package testutil holds fixture and assertion helpers shared by the
// package tests: file and zip fixtures (MustWriteFile, MustWriteZip),
// existence checks, and a CommandRecorder that stands in for external tools
// such as git and pom2bp through RunHelperProcess.
package testutil
