// SPDX-License-Identifier: MPL-2.0

// Package maven models Maven artifact identity: coordinates, artifact keys,
// loose version ordering, and the minimal POM descriptor handling the updater
// needs (reading group/artifact/version and repairing a misdeclared groupId).
package maven
