// Package extract is the template extraction core: mode coordination, the
// per-file transform pipeline, and final assembly. The engine is synchronous
// and side-effect-free over its inputs; all I/O (listing, content fetch)
// happens in the calling layer before Extract runs.
package extract

import (
	"github.com/templar-dev/templar/internal/heuristics"
	"github.com/templar-dev/templar/internal/scrub"
)

// Mode selects how file content is transformed.
type Mode string

const (
	// ModeSkeleton strips implementation bodies, leaving structure and
	// TODO stubs.
	ModeSkeleton Mode = "skeleton"
	// ModeCopier preserves content verbatim aside from identity scrubbing.
	ModeCopier Mode = "copier"
)

// FallbackMode controls what happens when skeleton extraction is degenerate.
type FallbackMode string

const (
	// FallbackCopier re-runs the pipeline in copier mode.
	FallbackCopier FallbackMode = "copier"
	// FallbackSkip keeps the degenerate skeleton result with a warning.
	FallbackSkip FallbackMode = "skip"
)

// SourceFile is one raw input file. The engine borrows it read-only; the
// caller owns the bytes.
type SourceFile struct {
	Path    string
	Content []byte
	Size    int64
}

// TemplateFile is one transformed output file.
type TemplateFile struct {
	Path         string   `json:"path"`
	Content      string   `json:"content"`
	Description  string   `json:"description,omitempty"`
	Placeholders []string `json:"placeholders,omitempty"`
	Notes        []string `json:"notes,omitempty"`
}

// TemplateMetadata records what the extraction did and why.
type TemplateMetadata struct {
	ModeUsed             Mode     `json:"modeUsed"`
	RedactedFunctions    int      `json:"redactedFunctions"`
	DroppedFiles         []string `json:"droppedFiles,omitempty"`
	TotalFilesConsidered int      `json:"totalFilesConsidered"`
	Warnings             []string `json:"warnings,omitempty"`
	FallbackReason       string   `json:"fallbackReason,omitempty"`
	Notes                []string `json:"notes,omitempty"`
}

// Result is the full extraction output bundle.
type Result struct {
	Files        []TemplateFile    `json:"files"`
	Structure    string            `json:"structure"`
	Instructions []string          `json:"instructions"`
	Placeholders map[string]string `json:"placeholders"`
	Metadata     TemplateMetadata  `json:"metadata"`

	// PlaceholderOrder preserves first-discovery order for renderers;
	// Placeholders itself serializes with sorted keys.
	PlaceholderOrder []string `json:"-"`

	// Analysis is the heuristic structure analysis the defaults were
	// derived from, when the caller supplied a listing.
	Analysis *heuristics.StructureAnalysis `json:"-"`
}

// Identity is the repository identity the request operates on.
type Identity = scrub.Identity

// Request is one extraction request. Files must contain the raw content of
// every path the caller wants considered, in listing order.
type Request struct {
	Identity   Identity
	Listing    []heuristics.TreeEntry
	Files      []SourceFile
	Options    Options
	RepoConfig *RepoConfig
}
