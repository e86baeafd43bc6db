// SPDX-License-Identifier: MPL-2.0

package maven

import (
	"regexp"
	"strings"
)

// versionComponentRe splits a version into numeric runs, lowercase letter runs
// and dots. Text between matches (for example "-") is kept as its own component.
var versionComponentRe = regexp.MustCompile(`\d+|[a-z]+|\.`)

type (
	// Version is a version string compared with loose, segment-aware ordering:
	// numeric segments compare numerically, so 1.9.0 < 1.10.0 and 1.6.1 < 1.6.1.1.
	Version string

	// versionComponent is one segment of a version. Numeric segments keep
	// their digits without leading zeros so any length compares correctly.
	versionComponent struct {
		str     string
		numeric bool
	}
)

// String returns the version string.
func (v Version) String() string { return string(v) }

// Compare returns -1, 0 or +1 when v is lower than, equal to or greater than
// other. Components are compared pairwise; when one version is a prefix of the
// other the longer one is greater. A numeric component ranks above a textual
// one at the same position.
func (v Version) Compare(other Version) int {
	a, b := v.components(), other.components()
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := a[i].compare(b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// Less reports whether v orders before other.
func (v Version) Less(other Version) bool { return v.Compare(other) < 0 }

func (v Version) components() []versionComponent {
	s := string(v)
	var parts []string
	last := 0
	for _, loc := range versionComponentRe.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			parts = append(parts, s[last:loc[0]])
		}
		parts = append(parts, s[loc[0]:loc[1]])
		last = loc[1]
	}
	if last < len(s) {
		parts = append(parts, s[last:])
	}

	comps := make([]versionComponent, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "." {
			continue
		}
		if isDigits(p) {
			digits := strings.TrimLeft(p, "0")
			if digits == "" {
				digits = "0"
			}
			comps = append(comps, versionComponent{str: digits, numeric: true})
			continue
		}
		comps = append(comps, versionComponent{str: p})
	}
	return comps
}

func (c versionComponent) compare(o versionComponent) int {
	switch {
	case c.numeric && o.numeric:
		if len(c.str) != len(o.str) {
			if len(c.str) < len(o.str) {
				return -1
			}
			return 1
		}
		return strings.Compare(c.str, o.str)
	case c.numeric:
		return 1
	case o.numeric:
		return -1
	default:
		return strings.Compare(c.str, o.str)
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
