package githubrepo

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/google/go-github/v80/github"
	"golang.org/x/sync/errgroup"

	"github.com/templar-dev/templar/internal/extract"
	"github.com/templar-dev/templar/internal/heuristics"
)

// fetchConcurrency bounds parallel blob downloads per repository.
const fetchConcurrency = 8

// Cache stores blob content keyed by repository, blob SHA, and path. Keying
// by SHA makes entries immutable, so a hit never needs revalidation.
type Cache interface {
	Get(repo, sha, path string) ([]byte, bool)
	Put(repo, sha, path string, content []byte) error
}

// Snapshot is everything the extraction engine needs about one repository at
// one ref, resolved and fetched.
type Snapshot struct {
	Identity   extract.Identity
	Ref        string
	Listing    []heuristics.TreeEntry
	Files      []extract.SourceFile
	RepoConfig *extract.RepoConfig
	Warnings   []string
}

// SnapshotStore persists serialized tree snapshots so a repository fetched
// once can be served again without network access.
type SnapshotStore interface {
	GetSnapshot(repo, ref string) ([]byte, bool)
	PutSnapshot(repo, ref string, data []byte) error
}

// Fetcher resolves repository snapshots through the GitHub API.
type Fetcher struct {
	client    *github.Client
	cache     Cache
	snapshots SnapshotStore
}

// NewFetcher wraps a GitHub client. cache and snapshots may be nil to fetch
// uncached.
func NewFetcher(client *github.Client, cache Cache, snapshots SnapshotStore) *Fetcher {
	return &Fetcher{client: client, cache: cache, snapshots: snapshots}
}

// ListTree resolves the repository identity and its recursive tree listing
// at the requested ref without downloading any content. The returned
// snapshot has Listing populated and Files empty.
func (f *Fetcher) ListTree(ctx context.Context, ref RepoRef) (*Snapshot, []*github.TreeEntry, error) {
	repo, _, err := f.client.Repositories.Get(ctx, ref.Owner, ref.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve %s: %w", ref, err)
	}

	snap := &Snapshot{
		Identity: extract.Identity{
			Name:          ref.Name,
			Owner:         ref.Owner,
			URL:           repo.GetHTMLURL(),
			DefaultBranch: repo.GetDefaultBranch(),
			Description:   repo.GetDescription(),
		},
		Ref: ref.Ref,
	}
	if snap.Ref == "" {
		snap.Ref = repo.GetDefaultBranch()
	}

	tree, _, err := f.client.Git.GetTree(ctx, ref.Owner, ref.Name, snap.Ref, true)
	if err != nil {
		return nil, nil, fmt.Errorf("list tree of %s at %s: %w", ref, snap.Ref, err)
	}
	if tree.GetTruncated() {
		snap.Warnings = append(snap.Warnings, "repository tree listing was truncated by the API; some files were not considered")
	}

	var blobs []*github.TreeEntry
	for _, entry := range tree.Entries {
		snap.Listing = append(snap.Listing, heuristics.TreeEntry{
			Path: entry.GetPath(),
			Dir:  entry.GetType() == "tree",
		})
		if entry.GetType() == "blob" {
			blobs = append(blobs, entry)
		}
	}
	sort.SliceStable(snap.Listing, func(i, j int) bool {
		return snap.Listing[i].Path < snap.Listing[j].Path
	})

	return snap, blobs, nil
}

// Fetch resolves the repository, lists its tree, and downloads blob content
// concurrently. Blobs larger than maxFileSizeKB are listed with their size
// but not downloaded; the engine drops them by size without ever touching
// content. progress, when non-nil, is called once per resolved blob with
// the running count and the total.
func (f *Fetcher) Fetch(ctx context.Context, ref RepoRef, maxFileSizeKB int, progress func(done, total int)) (*Snapshot, error) {
	snap, blobs, err := f.ListTree(ctx, ref)
	if err != nil {
		return nil, err
	}

	files, err := f.fetchBlobs(ctx, ref, blobs, maxFileSizeKB, progress)
	if err != nil {
		return nil, err
	}
	snap.Files = files

	f.saveSnapshot(ref, snap, blobs)
	f.extractRepoConfig(snap)
	return snap, nil
}

// fetchBlobs downloads blob content with bounded concurrency. Results keep
// tree order: each goroutine writes only its own index.
func (f *Fetcher) fetchBlobs(ctx context.Context, ref RepoRef, blobs []*github.TreeEntry, maxFileSizeKB int, progress func(done, total int)) ([]extract.SourceFile, error) {
	files := make([]extract.SourceFile, len(blobs))
	repoKey := ref.Owner + "/" + ref.Name

	var done atomic.Int64
	report := func() {
		if progress != nil {
			progress(int(done.Add(1)), len(blobs))
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	for i, entry := range blobs {
		g.Go(func() error {
			files[i] = extract.SourceFile{
				Path: entry.GetPath(),
				Size: int64(entry.GetSize()),
			}
			if maxFileSizeKB > 0 && files[i].Size > int64(maxFileSizeKB)*1024 {
				report()
				return nil
			}

			content, err := f.blobContent(gCtx, repoKey, ref, entry)
			if err != nil {
				return err
			}
			files[i].Content = content
			report()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (f *Fetcher) blobContent(ctx context.Context, repoKey string, ref RepoRef, entry *github.TreeEntry) ([]byte, error) {
	if f.cache != nil {
		if content, ok := f.cache.Get(repoKey, entry.GetSHA(), entry.GetPath()); ok {
			return content, nil
		}
	}

	content, _, err := f.client.Git.GetBlobRaw(ctx, ref.Owner, ref.Name, entry.GetSHA())
	if err != nil {
		return nil, fmt.Errorf("fetch blob %s: %w", entry.GetPath(), err)
	}

	if f.cache != nil {
		// Cache failures are not fatal; the content is already in hand.
		_ = f.cache.Put(repoKey, entry.GetSHA(), entry.GetPath(), content)
	}
	return content, nil
}

// extractRepoConfig pulls the repository-supplied config out of the fetched
// files. The config steers extraction and is not itself template content. A
// malformed config is dropped with a warning rather than failing the fetch.
func (f *Fetcher) extractRepoConfig(snap *Snapshot) {
	for i, file := range snap.Files {
		if file.Path != extract.RepoConfigPath {
			continue
		}
		snap.Files = append(snap.Files[:i], snap.Files[i+1:]...)
		if file.Content == nil {
			return
		}
		rc, err := extract.ParseRepoConfig(file.Content)
		if err != nil {
			snap.Warnings = append(snap.Warnings, fmt.Sprintf("ignoring %s: %v", extract.RepoConfigPath, err))
			return
		}
		snap.RepoConfig = rc
		return
	}
}
