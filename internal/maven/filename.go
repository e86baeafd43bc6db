// SPDX-License-Identifier: MPL-2.0

package maven

import "regexp"

var artifactFileRe = regexp.MustCompile(`^(.+?)-(\d+\.\d+\.\d+(?:-\w+\d+)?(?:-[\d.]+)*)\.(jar|aar)$`)

// ArtifactFile is a payload file name split into its parts.
type ArtifactFile struct {
	Name    string
	Version string
	Ext     string
}

// ParseArtifactFile splits "name-version.ext" where version is at least
// three dotted numbers with an optional qualifier such as "-alpha01".
func ParseArtifactFile(file string) (ArtifactFile, error) {
	m := artifactFileRe.FindStringSubmatch(file)
	if m == nil {
		return ArtifactFile{}, &DescriptorParseError{File: file}
	}
	return ArtifactFile{Name: m[1], Version: m[2], Ext: m[3]}, nil
}

// IsAar reports whether the payload is an Android archive.
func (f ArtifactFile) IsAar() bool { return f.Ext == ExtAar }
