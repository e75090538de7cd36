package selector

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/templar-dev/templar/internal/language"
)

// Mode mirrors the extraction mode; the selector only needs to know whether
// skeleton-only exclusions apply.
type Mode int

const (
	ModeSkeleton Mode = iota
	ModeCopier
)

// FileInfo is one candidate file from the repository listing.
type FileInfo struct {
	Path string
	Size int64
}

// Drop records why a file was removed from the candidate set.
type Drop struct {
	Path   string
	Reason string
}

// Options configure one selection pass.
type Options struct {
	Mode            Mode
	IncludePatterns []string
	ExcludePatterns []string
	MaxFiles        int
	MaxFileSizeKB   int

	// KeepLogicDirs lifts the business-logic directory exclusion that
	// skeleton mode otherwise applies.
	KeepLogicDirs bool
}

// Result is the outcome of a listing-level selection pass.
type Result struct {
	Kept    []FileInfo
	Dropped []Drop

	// MatchedIncludes counts the deduplicated files that matched an
	// include pattern, before any exclusion applied. Zero means the
	// request was out of scope entirely, not merely filtered down.
	MatchedIncludes int
}

// Path segments that are excluded unconditionally, in any mode.
var excludedSegments = []string{
	"node_modules", "vendor", ".git", "dist", "build", "out", "target",
	"__pycache__", ".next", ".nuxt", ".cache", "coverage", "bower_components",
	".venv", "venv", ".idea", ".vscode",
}

// Lockfiles, minified assets and bundles carry no template value.
var unconditionalFileDrops = []string{
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "composer.lock",
	"cargo.lock", "gemfile.lock", "poetry.lock", "go.sum",
}

// Directory names that signal tests and fixtures; these are excluded in
// skeleton mode only. Copier mode retains them.
var skeletonExcludedDirs = []string{
	"test", "tests", "__tests__", "spec", "specs", "fixtures", "fixture",
	"mocks", "__mocks__", "stories", "examples", "e2e", "testdata",
}

// Directory names that signal domain logic; excluded in skeleton mode
// unless KeepLogicDirs is set.
var logicDirs = []string{
	"services", "controllers", "handlers", "usecases", "domain", "business",
}

var skeletonExcludedSuffixes = []string{
	".test.ts", ".test.tsx", ".test.js", ".test.jsx", ".spec.ts", ".spec.tsx",
	".spec.js", ".spec.py", "_test.go", "_test.py", ".stories.tsx", ".stories.ts",
}

// maxSkeletonLines is the per-file line cap in skeleton mode; longer files
// are assumed to be logic-dense and unsafe to stub.
const maxSkeletonLines = 400

// Directories whose presence in a path raises priority: they are where the
// template-relevant source usually lives.
var prioritySegments = map[string]int{
	"src": 3, "lib": 3, "components": 3, "pages": 3, "app": 2, "api": 2,
	"internal": 2, "cmd": 2, "config": 1, "public": 1,
}

// Select applies include/exclude patterns, unconditional filters, priority
// ranking and the MaxFiles cap to a repository listing. Content-dependent
// filters (binary sniff, line cap) run later in ContentDrop once bytes
// are available.
func Select(files []FileInfo, opts Options) (*Result, error) {
	includes, err := compilePatterns(opts.IncludePatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid include pattern: %w", err)
	}
	excludes, err := compilePatterns(opts.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude pattern: %w", err)
	}

	res := &Result{}
	seen := map[string]bool{}

	type ranked struct {
		FileInfo
		score int
		index int
	}
	var candidates []ranked

	for i, f := range files {
		path := strings.TrimPrefix(f.Path, "/")
		if seen[path] {
			continue // deduplicated, not dropped
		}
		seen[path] = true

		if len(includes) > 0 && !matchAny(includes, path) {
			continue // silently out of scope; only later-stage removals get reasons
		}
		res.MatchedIncludes++
		if matchAny(excludes, path) {
			res.Dropped = append(res.Dropped, Drop{Path: path, Reason: "matched exclude pattern"})
			continue
		}
		if seg := excludedSegment(path); seg != "" {
			res.Dropped = append(res.Dropped, Drop{Path: path, Reason: fmt.Sprintf("inside excluded directory %q", seg)})
			continue
		}
		if isUnconditionalDrop(path) {
			res.Dropped = append(res.Dropped, Drop{Path: path, Reason: "lockfile or generated bundle"})
			continue
		}
		if opts.MaxFileSizeKB > 0 && f.Size > int64(opts.MaxFileSizeKB)*1024 {
			res.Dropped = append(res.Dropped, Drop{
				Path:   path,
				Reason: fmt.Sprintf("exceeds size limit (%d KB)", opts.MaxFileSizeKB),
			})
			continue
		}
		if opts.Mode == ModeSkeleton && skeletonExcluded(path, opts.KeepLogicDirs) {
			res.Dropped = append(res.Dropped, Drop{Path: path, Reason: "test/fixture/business-logic path (skeleton mode)"})
			continue
		}

		candidates = append(candidates, ranked{FileInfo: FileInfo{Path: path, Size: f.Size}, score: priority(path), index: i})
	}

	// Highest priority first; ties keep original tree order.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].index < candidates[j].index
	})

	for i, c := range candidates {
		if opts.MaxFiles > 0 && i >= opts.MaxFiles {
			res.Dropped = append(res.Dropped, Drop{Path: c.Path, Reason: "over file cap"})
			continue
		}
		res.Kept = append(res.Kept, c.FileInfo)
	}

	return res, nil
}

// ContentDrop checks content-dependent filters for a single surviving file.
// It returns a non-empty reason when the file must be dropped.
func ContentDrop(mode Mode, path string, content []byte) string {
	if isBinary(content) {
		return "binary content"
	}
	if mode == ModeSkeleton {
		if lines := bytes.Count(content, []byte("\n")) + 1; lines > maxSkeletonLines {
			return fmt.Sprintf("over %d lines (skeleton mode)", maxSkeletonLines)
		}
	}
	return ""
}

// isBinary samples the file prefix for a NUL byte.
func isBinary(content []byte) bool {
	sample := content
	if len(sample) > 8000 {
		sample = sample[:8000]
	}
	return bytes.IndexByte(sample, 0) >= 0
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	var out []glob.Glob
	for _, p := range patterns {
		// Case-insensitive matching: both pattern and candidate paths are
		// lowered before compiling/matching.
		g, err := glob.Compile(strings.ToLower(p), '/')
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		out = append(out, g)

		// "**/*.ts" should also match a root-level "index.ts".
		if strings.HasPrefix(p, "**/") {
			if g, err := glob.Compile(strings.ToLower(strings.TrimPrefix(p, "**/")), '/'); err == nil {
				out = append(out, g)
			}
		}
	}
	return out, nil
}

func matchAny(globs []glob.Glob, path string) bool {
	lower := strings.ToLower(path)
	for _, g := range globs {
		if g.Match(lower) {
			return true
		}
	}
	return false
}

// ExcludedPath reports whether a path falls under an unconditionally
// excluded directory such as node_modules or .git.
func ExcludedPath(path string) bool {
	return excludedSegment(strings.TrimPrefix(path, "/")) != ""
}

func excludedSegment(path string) string {
	for _, seg := range strings.Split(path, "/") {
		lower := strings.ToLower(seg)
		for _, ex := range excludedSegments {
			if lower == ex {
				return seg
			}
		}
	}
	return ""
}

func isUnconditionalDrop(path string) bool {
	base := strings.ToLower(path)
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	for _, name := range unconditionalFileDrops {
		if base == name {
			return true
		}
	}
	return strings.Contains(base, ".min.") || strings.Contains(base, ".bundle.")
}

func skeletonExcluded(path string, keepLogicDirs bool) bool {
	lower := strings.ToLower(path)
	for _, suffix := range skeletonExcludedSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	for _, seg := range strings.Split(lower, "/") {
		for _, ex := range skeletonExcludedDirs {
			if seg == ex {
				return true
			}
		}
		if !keepLogicDirs {
			for _, ex := range logicDirs {
				if seg == ex {
					return true
				}
			}
		}
	}
	return false
}

// priority rewards source-like directories and code extensions, and
// penalizes metadata-only files.
func priority(path string) int {
	score := 0
	lower := strings.ToLower(path)

	for _, seg := range strings.Split(lower, "/") {
		if s, ok := prioritySegments[seg]; ok {
			score += s
		}
	}

	info := language.Detect(path)
	switch info.Family {
	case language.FamilyCurly, language.FamilyIndent, language.FamilyGenericBrace:
		score += 2
	case language.FamilyConfig:
		score++
	}

	base := lower
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	switch {
	case strings.HasPrefix(base, "license"), strings.HasPrefix(base, "notice"):
		score -= 3
	case strings.HasPrefix(lower, ".github/"):
		score -= 2
	case info.Family == language.FamilyDoc:
		score -= 1
	}

	return score
}
