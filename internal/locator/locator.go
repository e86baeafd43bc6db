// SPDX-License-Identifier: MPL-2.0

// Package locator discovers Maven artifacts on disk. It walks repository
// directories, reads every POM it finds, matches the declared identity against
// the rewrite rules and keeps the highest version per artifact key.
package locator

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mavensync/mavensync/internal/maven"
	"github.com/mavensync/mavensync/internal/rewrite"
)

type (
	// LibraryInfo is one artifact found on disk.
	LibraryInfo struct {
		// Key is the rule key the artifact matched (qualified or bare).
		Key maven.Key
		// GroupID, ArtifactID and Version are read from the descriptor.
		GroupID    string
		ArtifactID string
		Version    maven.Version
		// Dir is the directory holding the descriptor and payload.
		Dir string
		// RepoDir is the repository root Dir was found under.
		RepoDir string
		// File is the payload file name, relative to Dir.
		File string
	}

	// Locator scans repository trees for tracked artifacts.
	Locator struct {
		rules  *rewrite.RuleSet
		logger *log.Logger
	}
)

// New creates a Locator that tracks the artifacts named by rules. Skipped
// descriptors are reported through logger.
func New(rules *rewrite.RuleSet, logger *log.Logger) *Locator {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &Locator{rules: rules, logger: logger}
}

// PayloadPath returns the absolute payload location.
func (li *LibraryInfo) PayloadPath() string {
	return filepath.Join(li.Dir, li.File)
}

// Scan walks every root and returns the newest tracked artifact per key.
// Roots that do not exist are ignored. Descriptors with missing identity
// fields or without a sibling .jar/.aar are skipped with a warning.
// When two candidates share a key and compare equal, the one seen later wins.
func (l *Locator) Scan(roots ...string) (map[maven.Key]*LibraryInfo, error) {
	found := make(map[maven.Key]*LibraryInfo)

	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				if path == root && errors.Is(walkErr, fs.ErrNotExist) {
					return filepath.SkipDir
				}
				return walkErr
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), "."+maven.ExtPom) {
				return nil
			}

			info, ok := l.inspect(root, path)
			if !ok {
				return nil
			}
			if prev, exists := found[info.Key]; !exists || info.Version.Compare(prev.Version) >= 0 {
				found[info.Key] = info
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return found, nil
}

// inspect reads one descriptor and builds its LibraryInfo.
func (l *Locator) inspect(root, pomPath string) (*LibraryInfo, bool) {
	desc := maven.ReadDescriptor(pomPath)
	if !desc.IsComplete() {
		l.logger.Warn("Failed to find Maven artifact data", "file", pomPath)
		return nil, false
	}

	base := strings.TrimSuffix(pomPath, "."+maven.ExtPom)
	payload := ""
	for _, ext := range []string{maven.ExtJar, maven.ExtAar} {
		if fileExists(base + "." + ext) {
			payload = base + "." + ext
			break
		}
	}
	if payload == "" {
		l.logger.Warn("Failed to find artifact", "path", base)
		return nil, false
	}

	key, tracked := l.rules.Match(desc.GroupID, desc.ArtifactID)
	if !tracked {
		return nil, false
	}

	return &LibraryInfo{
		Key:        key,
		GroupID:    desc.GroupID,
		ArtifactID: desc.ArtifactID,
		Version:    maven.Version(desc.Version),
		Dir:        filepath.Dir(pomPath),
		RepoDir:    root,
		File:       filepath.Base(payload),
	}, true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
