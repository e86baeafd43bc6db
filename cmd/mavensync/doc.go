// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the mavensync command tree.
//
// The root command runs a full update of the prebuilt tree. Subcommands
// preview the update, report installed versions and manage configuration.
package cmd
