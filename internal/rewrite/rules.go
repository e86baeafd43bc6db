// SPDX-License-Identifier: MPL-2.0

// Package rewrite holds the mapping from Maven artifact keys to build-system
// module names, output paths and per-module manifest options.
package rewrite

import (
	"slices"
	"strings"

	"github.com/mavensync/mavensync/internal/maven"
)

type (
	// Rule describes how one library appears in the generated build manifest.
	// Name and Path are always populated once the rule is part of a RuleSet.
	Rule struct {
		// Name is the build module name.
		Name string
		// Path is the output directory, relative to the working tree, that
		// receives extracted resources.
		Path string
		// Host marks a host-only module.
		Host bool
		// HostAndDevice marks a module built for both host and device.
		HostAndDevice bool
		// ExtraStaticLibs are additional static dependencies of the module.
		ExtraStaticLibs []string
		// OptionalUsesLibs are optional runtime library dependencies.
		OptionalUsesLibs []string
	}

	// DependencyRewrite maps a descriptor dependency to an existing build module.
	DependencyRewrite struct {
		From string
		To   string
	}

	// RuleSet is the immutable set of rewrite rules for a run.
	RuleSet struct {
		rules map[maven.Key]Rule
		deps  []DependencyRewrite
	}
)

// NameForArtifact derives a module name from a key: "group:lib" -> "group_lib".
func NameForArtifact(key maven.Key) string {
	return strings.ReplaceAll(string(key), ":", "_")
}

// PathForArtifact derives an output path from a key: "com.ex:lib" -> "com/ex/lib".
func PathForArtifact(key maven.Key) string {
	return strings.ReplaceAll(strings.ReplaceAll(string(key), ".", "/"), ":", "/")
}

// NewRuleSet builds a RuleSet, filling in missing names and paths from the
// key. Later entries for the same key replace earlier ones. Dependency
// rewrites are kept sorted by source for stable manifest output.
func NewRuleSet(rules map[maven.Key]Rule, deps []DependencyRewrite) *RuleSet {
	rs := &RuleSet{rules: make(map[maven.Key]Rule, len(rules))}
	for key, r := range rules {
		if r.Name == "" {
			r.Name = NameForArtifact(key)
		}
		if r.Path == "" {
			r.Path = PathForArtifact(key)
		}
		r.ExtraStaticLibs = slices.Sorted(slices.Values(r.ExtraStaticLibs))
		r.OptionalUsesLibs = slices.Sorted(slices.Values(r.OptionalUsesLibs))
		rs.rules[key] = r
	}

	rs.deps = slices.Clone(deps)
	slices.SortStableFunc(rs.deps, func(a, b DependencyRewrite) int {
		return strings.Compare(a.From, b.From)
	})
	return rs
}

// Lookup returns the rule for key.
func (rs *RuleSet) Lookup(key maven.Key) (Rule, bool) {
	r, ok := rs.rules[key]
	return r, ok
}

// Match resolves the key a descriptor maps to: the qualified group:artifact
// key when a rule exists for it, otherwise the bare artifact id when that has
// a rule. ok is false when neither is tracked.
func (rs *RuleSet) Match(groupID, artifactID string) (maven.Key, bool) {
	if key := maven.NewKey(groupID, artifactID); rs.has(key) {
		return key, true
	}
	if key := maven.Key(artifactID); rs.has(key) {
		return key, true
	}
	return "", false
}

// Keys returns every rule key: qualified keys first, then bare names, each
// group sorted alphabetically.
func (rs *RuleSet) Keys() []maven.Key {
	var qualified, bare []maven.Key
	for key := range rs.rules {
		if key.IsQualified() {
			qualified = append(qualified, key)
		} else {
			bare = append(bare, key)
		}
	}
	slices.Sort(qualified)
	slices.Sort(bare)
	return append(qualified, bare...)
}

// DependencyRewrites returns the dependency rewrite rules sorted by source.
func (rs *RuleSet) DependencyRewrites() []DependencyRewrite {
	return slices.Clone(rs.deps)
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int { return len(rs.rules) }

func (rs *RuleSet) has(key maven.Key) bool {
	_, ok := rs.rules[key]
	return ok
}
