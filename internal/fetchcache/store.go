// Package fetchcache persists fetched blob content in a local SQLite
// database so repeated extractions of the same repository do not re-download
// unchanged files. Entries are keyed by blob SHA, which makes them immutable:
// a hit never needs revalidation against the API. A small in-memory cache
// fronts the database for blobs touched repeatedly within one run. Tree
// snapshots are stored alongside the blobs so a previously fetched repository
// can be served entirely offline.
package fetchcache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/maypok86/otter"
)

// memCacheCost bounds the in-memory front by total content bytes.
const memCacheCost = 32 << 20

const createBlobsTable = `
CREATE TABLE IF NOT EXISTS blobs (
	repo TEXT NOT NULL,
	sha TEXT NOT NULL,
	path TEXT NOT NULL,
	content BLOB NOT NULL,
	fetched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (repo, sha)
)`

const createFetchedAtIndex = `
CREATE INDEX IF NOT EXISTS idx_blobs_fetched_at ON blobs(fetched_at)`

const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS snapshots (
	repo TEXT NOT NULL,
	ref TEXT NOT NULL,
	data BLOB NOT NULL,
	fetched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (repo, ref)
)`

// Store is a blob content cache backed by SQLite.
type Store struct {
	db  *sql.DB
	mem otter.Cache[string, []byte]
}

// Open opens (creating if necessary) the cache database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	for _, ddl := range []string{createBlobsTable, createFetchedAtIndex, createSnapshotsTable} {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("create cache schema: %w", err)
		}
	}

	mem, err := otter.MustBuilder[string, []byte](memCacheCost).
		Cost(func(key string, value []byte) uint32 { return uint32(len(value)) + 1 }).
		Build()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("build memory cache: %w", err)
	}

	return &Store{db: db, mem: mem}, nil
}

func memKey(repo, sha string) string {
	return repo + "\x00" + sha
}

// Get returns cached content for a blob, checking memory before SQLite.
func (s *Store) Get(repo, sha, path string) ([]byte, bool) {
	key := memKey(repo, sha)
	if content, ok := s.mem.Get(key); ok {
		return content, true
	}

	var content []byte
	err := s.db.QueryRow("SELECT content FROM blobs WHERE repo = ? AND sha = ?", repo, sha).Scan(&content)
	if err != nil {
		return nil, false
	}
	s.mem.Set(key, content)
	return content, true
}

// Put stores blob content. The path column is informational; lookups key on
// repo and SHA only.
func (s *Store) Put(repo, sha, path string, content []byte) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO blobs (repo, sha, path, content, fetched_at) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)",
		repo, sha, path, content,
	)
	if err != nil {
		return fmt.Errorf("cache blob %s: %w", path, err)
	}
	s.mem.Set(memKey(repo, sha), content)
	return nil
}

// GetSnapshot returns the serialized tree snapshot for a repository ref.
// The ref is the caller-supplied string, which may be empty for the default
// branch.
func (s *Store) GetSnapshot(repo, ref string) ([]byte, bool) {
	var data []byte
	err := s.db.QueryRow("SELECT data FROM snapshots WHERE repo = ? AND ref = ?", repo, ref).Scan(&data)
	if err != nil {
		return nil, false
	}
	return data, true
}

// PutSnapshot stores a serialized tree snapshot, replacing any previous one
// for the same repository ref.
func (s *Store) PutSnapshot(repo, ref string, data []byte) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO snapshots (repo, ref, data, fetched_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)",
		repo, ref, data,
	)
	if err != nil {
		return fmt.Errorf("cache snapshot %s@%s: %w", repo, ref, err)
	}
	return nil
}

// Prune deletes entries not refreshed within maxAge and returns how many
// rows were removed.
func (s *Store) Prune(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).UTC()
	var total int64
	for _, table := range []string{"blobs", "snapshots"} {
		res, err := s.db.Exec("DELETE FROM "+table+" WHERE fetched_at < ?", cutoff)
		if err != nil {
			return total, fmt.Errorf("prune cache: %w", err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

// Close releases the memory cache and the database handle.
func (s *Store) Close() error {
	s.mem.Close()
	return s.db.Close()
}
