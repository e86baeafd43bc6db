// SPDX-License-Identifier: MPL-2.0

// Package repackage moves located artifacts into the working tree and
// unpacks Android archives into the layout the build manifest expects.
package repackage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mavensync/mavensync/internal/locator"
	"github.com/mavensync/mavensync/internal/maven"
	"github.com/mavensync/mavensync/internal/rewrite"
)

const (
	// ClassesJar is the compiled-code entry stripped from unpacked archives.
	ClassesJar = "classes.jar"
	// ManifestEntry is the archive entry copied into the manifests staging tree.
	ManifestEntry = "AndroidManifest.xml"
	// ManifestsDir is the staging directory, under the working tree, that
	// collects one ManifestEntry per library.
	ManifestsDir = "manifests"
)

// DefaultBlacklist lists the paths, relative to an unpacked archive, that never
// survive repackaging.
var DefaultBlacklist = []string{
	"annotations.zip",
	"public.txt",
	"R.txt",
	"AndroidManifest.xml",
	filepath.Join("libs", "noto-emoji-compat-java.jar"),
}

// Repackager relocates artifacts into a working directory.
type Repackager struct {
	rules     *rewrite.RuleSet
	blacklist []string
	out       io.Writer
}

// New creates a Repackager. A nil blacklist selects DefaultBlacklist. One
// progress line per artifact is written to out.
func New(rules *rewrite.RuleSet, blacklist []string, out io.Writer) *Repackager {
	if blacklist == nil {
		blacklist = DefaultBlacklist
	}
	if out == nil {
		out = io.Discard
	}
	return &Repackager{rules: rules, blacklist: blacklist, out: out}
}

// Repackage moves the artifact directory into workingDir, keeping its path
// relative to the repository root. For .aar payloads it optionally unpacks the
// archive into the rule's output path, and it always stages the archive's
// AndroidManifest.xml under manifests/<name>/.
func (p *Repackager) Repackage(workingDir string, info *locator.LibraryInfo, extractResources bool) error {
	file, err := maven.ParseArtifactFile(info.File)
	if err != nil {
		return err
	}
	rule, ok := p.rules.Lookup(info.Key)
	if !ok {
		return fmt.Errorf("no rewrite rule for %s", info.Key)
	}

	rel, err := filepath.Rel(info.RepoDir, info.Dir)
	if err != nil {
		return fmt.Errorf("locate %s under %s: %w", info.Dir, info.RepoDir, err)
	}
	newDir := filepath.Join(workingDir, rel)
	if err := moveDir(info.Dir, newDir); err != nil {
		return fmt.Errorf("move %s: %w", info.Key, err)
	}

	if file.IsAar() {
		archive := filepath.Join(newDir, info.File)
		if extractResources {
			if err := p.extractResources(archive, filepath.Join(workingDir, rule.Path)); err != nil {
				return fmt.Errorf("extract resources of %s: %w", info.Key, err)
			}
		}
		manifestDir := filepath.Join(workingDir, ManifestsDir, rule.Name)
		if err := extractEntry(archive, ManifestEntry, manifestDir); err != nil {
			return fmt.Errorf("extract %s of %s: %w", ManifestEntry, info.Key, err)
		}
	}

	fmt.Fprintf(p.out, "%s : %s -> %s\n", file.Version, info.Key, rule.Name)
	return nil
}

// extractResources unpacks archive into targetDir and strips what the build
// must not see: the compiled classes, empty directories and blacklisted files.
func (p *Repackager) extractResources(archive, targetDir string) error {
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", targetDir, err)
	}
	if err := extractAll(archive, targetDir); err != nil {
		return err
	}
	if err := removeIfExists(filepath.Join(targetDir, ClassesJar)); err != nil {
		return err
	}
	if err := pruneEmptyDirs(targetDir); err != nil {
		return err
	}
	for _, rel := range p.blacklist {
		if err := removeIfExists(filepath.Join(targetDir, rel)); err != nil {
			return err
		}
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.RemoveAll(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
