// SPDX-License-Identifier: MPL-2.0

package maven

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
)

const (
	// descriptorIndent is the indentation of the project-level POM elements.
	// Deeper elements (parent, dependencies) are ignored by the reader.
	descriptorIndent = "  "

	groupIDTag    = "groupId"
	artifactIDTag = "artifactId"
	versionTag    = "version"
)

// Descriptor is the identity declared by a POM file. Fields the file does not
// declare at project level are empty.
type Descriptor struct {
	GroupID    string
	ArtifactID string
	Version    string
}

// IsComplete reports whether all three identity fields were found.
func (d Descriptor) IsComplete() bool {
	return d.GroupID != "" && d.ArtifactID != "" && d.Version != ""
}

// ReadDescriptor extracts groupId, artifactId and version from a POM file.
// Only single-line elements indented by exactly two spaces are recognized;
// the last occurrence of a tag wins. It never fails: an unreadable file or a
// missing tag yields empty fields.
func ReadDescriptor(path string) Descriptor {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}
	}

	var d Descriptor
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if v, ok := tagValue(line, groupIDTag); ok {
			d.GroupID = v
		} else if v, ok := tagValue(line, artifactIDTag); ok {
			d.ArtifactID = v
		} else if v, ok := tagValue(line, versionTag); ok {
			d.Version = v
		}
	}
	return d
}

// PatchDescriptorGroup rewrites a POM so that it declares groupID: every
// project-level groupId line is dropped and a fresh one is inserted directly
// before each project-level artifactId line.
func PatchDescriptorGroup(path, groupID string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read descriptor: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat descriptor: %w", err)
	}

	var out bytes.Buffer
	for _, line := range strings.SplitAfter(string(data), "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, openTag(artifactIDTag)):
			fmt.Fprintf(&out, "%s%s</%s>\n", openTag(groupIDTag), groupID, groupIDTag)
		case strings.HasPrefix(line, openTag(groupIDTag)):
			continue
		}
		out.WriteString(line)
	}

	if err := os.WriteFile(path, out.Bytes(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write descriptor: %w", err)
	}
	return nil
}

func openTag(tag string) string {
	return descriptorIndent + "<" + tag + ">"
}

func tagValue(line, tag string) (string, bool) {
	rest, ok := strings.CutPrefix(line, openTag(tag))
	if !ok {
		return "", false
	}
	return strings.TrimSuffix(rest, "</"+tag+">"), true
}
