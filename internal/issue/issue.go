// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Id identifies an entry of the issue catalog.
//
//nolint:revive // Id matches the catalog's established naming
type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	GeneratorNotFoundId
	UncommittedChangesId
	DownloadFailedId
	ArtifactNameUnparseableId
	GeneratorFailedId
	CleanupFailedId
	InvalidCoordinateId
)

type (
	// MarkdownMsg is help text rendered to the terminal.
	MarkdownMsg string

	// HttpLink is a documentation link appended to an issue.
	//
	//nolint:revive // HttpLink matches the catalog's established naming
	HttpLink string

	// Issue is a catalog entry: markdown guidance for one failure class.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

// Id returns the catalog id.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the unrendered guidance.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// DocLinks returns a copy of the documentation links.
func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// ExtLinks returns a copy of the external links.
func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the guidance for a terminal using the glamour style at
// stylePath ("dark", "light", "notty" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- " + string(link) + "\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- " + string(link) + "\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Print the effective configuration:
~~~
$ mavensync config show
~~~
- Write a fresh default file and compare:
~~~
$ mavensync config init
~~~
- Check that every artifact's 'repo' names a configured repository id`,
	}

	generatorNotFoundIssue = &Issue{
		id: GeneratorNotFoundId,
		mdMsg: `
# Manifest generator not found!

The build-manifest generator must be on your PATH before anything is fetched.

## Things you can try:
- Set up the build environment, then build the generator:
~~~
$ source build/envsetup.sh && lunch
$ m pom2bp
~~~
- Point 'manifest.generator' in your configuration at another executable`,
	}

	uncommittedChangesIssue = &Issue{
		id: UncommittedChangesId,
		mdMsg: `
# Uncommitted changes in the working tree!

A failed run resets the tree with 'git reset --hard', so it refuses to start
while staged or unstaged changes exist.

## Things you can try:
- Commit or stash your changes first:
~~~
$ git stash
~~~`,
		extLinks: []HttpLink{"https://git-scm.com/docs/git-stash"},
	}

	downloadFailedIssue = &Issue{
		id: DownloadFailedId,
		mdMsg: `
# Download failed!

An artifact, its descriptor or the repository metadata could not be fetched.
The working tree has been restored.

## Things you can try:
- Check that the coordinate and version exist in the repository
- Check the repository 'url' in your configuration
- Raise 'http.timeout' on slow networks`,
	}

	artifactNameUnparseableIssue = &Issue{
		id: ArtifactNameUnparseableId,
		mdMsg: `
# Unexpected artifact file name!

A payload file name did not match 'name-MAJOR.MINOR.PATCH[-qualifier].(jar|aar)',
so its version could not be determined.

## Things you can try:
- Pin the artifact to a release version instead of a snapshot
- Remove unrelated files from the artifact directories`,
	}

	generatorFailedIssue = &Issue{
		id: GeneratorFailedId,
		mdMsg: `
# Manifest generator failed!

The generator exited with an error while reading the repackaged artifacts.
The working tree has been restored.

## Things you can try:
- Re-run with '--verbose' to see the generator's diagnostics
- Add the offending module to 'manifest.excludes'
- Add a 'dependency_rewrites' entry for dependencies the generator cannot map`,
	}

	cleanupFailedIssue = &Issue{
		id: CleanupFailedId,
		mdMsg: `
# Cleanup failed, manual cleanup required!

The working tree could not be restored after the run. Stray files or a
throwaway commit may be left behind.

## Things you can try:
- Inspect the latest commits and the working tree:
~~~
$ git log --oneline -3
$ git status
~~~
- Drop a leftover "COMMIT TO REVERT - RESET ME!!!" commit with 'git reset --hard HEAD~1'
- Remove the working directory ('support_tmp' by default)`,
	}

	invalidCoordinateIssue = &Issue{
		id: InvalidCoordinateId,
		mdMsg: `
# Invalid artifact coordinate!

Artifacts are written as 'group:library:version:extension', for example
'androidx.core:core:latest:aar'. All four parts are required.`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		generatorNotFoundIssue.Id():       generatorNotFoundIssue,
		uncommittedChangesIssue.Id():      uncommittedChangesIssue,
		downloadFailedIssue.Id():          downloadFailedIssue,
		artifactNameUnparseableIssue.Id(): artifactNameUnparseableIssue,
		generatorFailedIssue.Id():         generatorFailedIssue,
		cleanupFailedIssue.Id():           cleanupFailedIssue,
		invalidCoordinateIssue.Id():       invalidCoordinateIssue,
	}
)

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
