package githubrepo

import (
	"encoding/json"
	"fmt"

	"github.com/google/go-github/v80/github"

	"github.com/templar-dev/templar/internal/extract"
	"github.com/templar-dev/templar/internal/heuristics"
)

// snapshotRecord is the serialized form of a resolved tree listing. Blob
// content is not embedded; it lives in the blob cache keyed by SHA.
type snapshotRecord struct {
	Identity extract.Identity       `json:"identity"`
	Ref      string                 `json:"ref"`
	Listing  []heuristics.TreeEntry `json:"listing"`
	Blobs    []blobRecord           `json:"blobs"`
}

type blobRecord struct {
	Path string `json:"path"`
	SHA  string `json:"sha"`
	Size int64  `json:"size"`
}

// saveSnapshot records the resolved tree under both the caller-supplied ref
// and the resolved one, so "owner/name" and "owner/name@main" both hit
// offline. Persistence failures are not fatal; the fetch already succeeded.
func (f *Fetcher) saveSnapshot(ref RepoRef, snap *Snapshot, blobs []*github.TreeEntry) {
	if f.snapshots == nil {
		return
	}

	rec := snapshotRecord{
		Identity: snap.Identity,
		Ref:      snap.Ref,
		Listing:  snap.Listing,
		Blobs:    make([]blobRecord, 0, len(blobs)),
	}
	for _, entry := range blobs {
		rec.Blobs = append(rec.Blobs, blobRecord{
			Path: entry.GetPath(),
			SHA:  entry.GetSHA(),
			Size: int64(entry.GetSize()),
		})
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	repoKey := ref.Owner + "/" + ref.Name
	_ = f.snapshots.PutSnapshot(repoKey, ref.Ref, data)
	if snap.Ref != ref.Ref {
		_ = f.snapshots.PutSnapshot(repoKey, snap.Ref, data)
	}
}

// FetchOffline rebuilds a repository snapshot entirely from the local cache.
// It fails when the repository was never fetched at this ref, or when a
// needed blob is not cached; both are resolved by one online fetch.
func (f *Fetcher) FetchOffline(ref RepoRef, maxFileSizeKB int, progress func(done, total int)) (*Snapshot, error) {
	if f.snapshots == nil || f.cache == nil {
		return nil, fmt.Errorf("offline fetch of %s requires the local cache", ref)
	}

	repoKey := ref.Owner + "/" + ref.Name
	data, ok := f.snapshots.GetSnapshot(repoKey, ref.Ref)
	if !ok {
		return nil, fmt.Errorf("no cached snapshot for %s; fetch it online first", ref)
	}
	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode cached snapshot for %s: %w", ref, err)
	}

	snap := &Snapshot{
		Identity: rec.Identity,
		Ref:      rec.Ref,
		Listing:  rec.Listing,
		Files:    make([]extract.SourceFile, 0, len(rec.Blobs)),
	}
	for i, b := range rec.Blobs {
		sf := extract.SourceFile{Path: b.Path, Size: b.Size}
		if maxFileSizeKB <= 0 || b.Size <= int64(maxFileSizeKB)*1024 {
			content, ok := f.cache.Get(repoKey, b.SHA, b.Path)
			if !ok {
				return nil, fmt.Errorf("blob %s of %s is not cached; fetch it online first", b.Path, ref)
			}
			sf.Content = content
		}
		snap.Files = append(snap.Files, sf)
		if progress != nil {
			progress(i+1, len(rec.Blobs))
		}
	}

	f.extractRepoConfig(snap)
	return snap, nil
}
