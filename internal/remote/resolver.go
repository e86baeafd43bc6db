// SPDX-License-Identifier: MPL-2.0

package remote

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mavensync/mavensync/internal/maven"
)

type (
	// Repository is a Maven repository an artifact can be fetched from.
	Repository struct {
		// ID names the repository in configuration and is also the top-level
		// download directory.
		ID string
		// Name is the display name used in commit messages.
		Name string
		// URL is the repository base URL.
		URL string
	}

	// Resolver resolves "latest" versions and fetches artifacts.
	Resolver struct {
		client *Client
		repos  map[string]Repository
		cache  *VersionCache
		out    io.Writer
	}

	// metadata is the subset of maven-metadata.xml the resolver reads.
	metadata struct {
		XMLName    xml.Name `xml:"metadata"`
		Versioning struct {
			Latest  string `xml:"latest"`
			Release string `xml:"release"`
		} `xml:"versioning"`
	}
)

// NewResolver creates a Resolver over repos. Progress lines are written to out.
func NewResolver(client *Client, repos []Repository, cache *VersionCache, out io.Writer) *Resolver {
	if cache == nil {
		cache = NewVersionCache()
	}
	if out == nil {
		out = io.Discard
	}
	byID := make(map[string]Repository, len(repos))
	for _, r := range repos {
		byID[r.ID] = r
	}
	return &Resolver{client: client, repos: byID, cache: cache, out: out}
}

// Repository returns the repository registered under id.
func (r *Resolver) Repository(id string) (Repository, bool) {
	repo, ok := r.repos[id]
	return repo, ok
}

// Resolve returns spec pinned to a concrete version. Specs that already carry
// a concrete version are returned unchanged; "latest" is looked up in the
// cache first and otherwise read from the repository metadata.
func (r *Resolver) Resolve(ctx context.Context, spec maven.Spec) (maven.Spec, error) {
	if !spec.IsLatest() {
		return spec, nil
	}
	if v, ok := r.cache.Get(spec.Key()); ok {
		return spec.WithVersion(v), nil
	}

	repo, err := r.repository(spec)
	if err != nil {
		return maven.Spec{}, err
	}

	fmt.Fprintf(r.out, "Fetching latest version for %s ... ", spec.Key())
	latest, err := r.fetchLatest(ctx, spec.MetadataURL(repo.URL))
	if err != nil {
		fmt.Fprintln(r.out)
		return maven.Spec{}, err
	}
	fmt.Fprintln(r.out, latest)

	r.cache.Put(spec.Key(), latest)
	return spec.WithVersion(latest), nil
}

// Fetch downloads the descriptor and payload of a concrete spec into
// root/repoID/group/library/version and returns that directory. On failure
// every directory the fetch created is removed again. A descriptor that declares a different group than the
// spec is patched in place.
func (r *Resolver) Fetch(ctx context.Context, spec maven.Spec, root string) (dir string, err error) {
	if spec.IsLatest() {
		return "", fmt.Errorf("fetch %s: version not resolved", spec.Key())
	}
	repo, err := r.repository(spec)
	if err != nil {
		return "", err
	}

	dir = filepath.Join(root, spec.RepoID, spec.Group, spec.Library, spec.Version)
	created := firstMissingDir(root, dir)
	defer func() {
		if err != nil && created != "" {
			_ = os.RemoveAll(created)
		}
	}()

	pomPath := filepath.Join(dir, spec.FileName(maven.ExtPom))
	if err = r.download(ctx, spec.DescriptorURL(repo.URL), pomPath); err != nil {
		return "", err
	}
	if err = r.download(ctx, spec.PayloadURL(repo.URL), filepath.Join(dir, spec.FileName(spec.Ext))); err != nil {
		return "", err
	}

	if desc := maven.ReadDescriptor(pomPath); desc.GroupID != spec.Group {
		if err = maven.PatchDescriptorGroup(pomPath, spec.Group); err != nil {
			return "", fmt.Errorf("fix groupId of %s: %w", pomPath, err)
		}
	}

	return dir, nil
}

func (r *Resolver) repository(spec maven.Spec) (Repository, error) {
	repo, ok := r.repos[spec.RepoID]
	if !ok {
		return Repository{}, &maven.ConfigurationError{
			Value:  spec.String(),
			Reason: fmt.Sprintf("unknown repository %q", spec.RepoID),
		}
	}
	return repo, nil
}

func (r *Resolver) fetchLatest(ctx context.Context, metadataURL string) (string, error) {
	body, err := r.client.Open(ctx, metadataURL)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }() // read-only response body

	var md metadata
	if err := xml.NewDecoder(io.LimitReader(body, maxMetadataBytes)).Decode(&md); err != nil {
		return "", &DownloadError{URL: redactURL(metadataURL), Err: fmt.Errorf("decoding metadata: %w", err)}
	}
	if md.Versioning.Latest == "" {
		return "", &DownloadError{URL: redactURL(metadataURL), Err: errors.New("metadata has no versioning/latest")}
	}
	return md.Versioning.Latest, nil
}

// download streams url into path, creating parent directories. A partially
// written file is removed.
func (r *Resolver) download(ctx context.Context, url, path string) (err error) {
	fmt.Fprintf(r.out, "Downloading URL: %s\n", redactURL(url))

	body, err := r.client.Open(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }() // read-only response body

	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if _, err = io.Copy(f, body); err != nil {
		return &DownloadError{URL: redactURL(url), Err: err}
	}
	return nil
}

// firstMissingDir returns the outermost directory on the path from root to dir
// that does not exist yet, or "" when dir already exists.
func firstMissingDir(root, dir string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return dir
	}
	current := root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		current = filepath.Join(current, part)
		if _, statErr := os.Stat(current); statErr != nil {
			return current
		}
	}
	return ""
}
