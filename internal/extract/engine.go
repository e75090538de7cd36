package extract

import (
	"fmt"
	"strings"

	"github.com/templar-dev/templar/internal/heuristics"
	"github.com/templar-dev/templar/internal/language"
	"github.com/templar-dev/templar/internal/redact"
	"github.com/templar-dev/templar/internal/scrub"
	"github.com/templar-dev/templar/internal/selector"
)

// Engine runs extraction requests. It holds no state; every request builds
// its catalog and replacement set fresh, so identical inputs always produce
// byte-identical output.
type Engine struct{}

func New() *Engine { return &Engine{} }

// Extract runs the mode coordinator: the pipeline executes in the requested
// mode, skeleton output is evaluated for degeneracy, and a degenerate
// skeleton either falls back to copier mode or is kept with a warning.
func (e *Engine) Extract(req Request) (*Result, error) {
	if err := validateIdentity(req.Identity); err != nil {
		return nil, err
	}

	listing := req.Listing
	if len(listing) == 0 {
		for _, f := range req.Files {
			listing = append(listing, heuristics.TreeEntry{Path: f.Path})
		}
	}
	analysis := heuristics.Analyze(listing)

	opts := req.Options.applyRepoConfig(req.RepoConfig).withDefaults(analysis.RecommendedPatterns)

	res, err := e.run(req, opts)
	if err != nil {
		return nil, err
	}
	res.Analysis = analysis

	degenerate := evaluateDegeneracy(opts, res)
	if opts.Mode != ModeSkeleton || degenerate == nil {
		res.Instructions = buildInstructions(req.RepoConfig, res.Metadata.ModeUsed, false, res.Metadata.Notes)
		return res, nil
	}

	if opts.FallbackMode == FallbackSkip {
		res.Metadata.Warnings = append(res.Metadata.Warnings,
			"skeleton extraction is degenerate ("+degenerate.reason+"); kept as requested")
		res.Instructions = buildInstructions(req.RepoConfig, res.Metadata.ModeUsed, false, res.Metadata.Notes)
		return res, nil
	}

	// Re-run the entire pipeline in copier mode, which lifts the
	// skeleton-only exclusions. Defaults are re-derived from the raw
	// options so the copier file cap applies.
	copierOpts := req.Options.applyRepoConfig(req.RepoConfig)
	copierOpts.Mode = ModeCopier
	copierOpts = copierOpts.withDefaults(analysis.RecommendedPatterns)

	fallback, err := e.run(req, copierOpts)
	if err != nil {
		return nil, err
	}
	fallback.Analysis = analysis
	fallback.Metadata.FallbackReason = degenerate.reason
	fallback.Instructions = buildInstructions(req.RepoConfig, ModeCopier, true, fallback.Metadata.Notes)
	return fallback, nil
}

// run executes selection, transformation and scrubbing once in a fixed
// mode, then assembles the result.
func (e *Engine) run(req Request, opts Options) (*Result, error) {
	catalog := scrub.NewCatalog()
	var overrides map[string]string
	if req.RepoConfig != nil {
		overrides = req.RepoConfig.Placeholders
	}
	set := scrub.NewReplacementSet(req.Identity, catalog, overrides)

	selMode := selector.ModeCopier
	if opts.Mode == ModeSkeleton {
		selMode = selector.ModeSkeleton
	}

	infos := make([]selector.FileInfo, 0, len(req.Files))
	byPath := make(map[string]SourceFile, len(req.Files))
	for _, f := range req.Files {
		size := f.Size
		if size == 0 {
			size = int64(len(f.Content))
		}
		infos = append(infos, selector.FileInfo{Path: f.Path, Size: size})
		if _, ok := byPath[f.Path]; !ok {
			byPath[f.Path] = f
		}
	}

	sel, err := selector.Select(infos, selector.Options{
		Mode:            selMode,
		IncludePatterns: opts.IncludePatterns,
		ExcludePatterns: opts.ExcludePatterns,
		MaxFiles:        opts.MaxFiles,
		MaxFileSizeKB:   opts.MaxFileSizeKB,
		KeepLogicDirs:   !*opts.RemoveBusinessLogic,
	})
	if err != nil {
		return nil, err
	}
	if sel.MatchedIncludes == 0 {
		if len(opts.IncludePatterns) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoFiles, strings.Join(opts.IncludePatterns, ", "))
		}
		return nil, ErrNoFiles
	}

	meta := TemplateMetadata{
		ModeUsed:             opts.Mode,
		TotalFilesConsidered: len(byPath),
	}
	for _, d := range sel.Dropped {
		meta.DroppedFiles = append(meta.DroppedFiles, d.Path)
		meta.Notes = append(meta.Notes, fmt.Sprintf("dropped %s: %s", d.Path, d.Reason))
	}

	redactOpts := redact.Options{
		KeepComments: *opts.KeepComments,
		IncludeTypes: *opts.IncludeTypes,
	}

	var files []TemplateFile
	for _, kept := range sel.Kept {
		src, ok := byPath[kept.Path]
		if !ok {
			// Listed but never fetched; the caller decided not to supply it.
			continue
		}

		if reason := selector.ContentDrop(selMode, src.Path, src.Content); reason != "" {
			meta.DroppedFiles = append(meta.DroppedFiles, src.Path)
			meta.Notes = append(meta.Notes, fmt.Sprintf("dropped %s: %s", src.Path, reason))
			continue
		}

		tf, ok := e.transform(src, opts, redactOpts, &meta)
		if !ok {
			continue
		}
		content, fired := set.Scrub(tf.Path, tf.Content)
		tf.Content = content
		tf.Placeholders = fired
		files = append(files, tf)
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	var dirs []string
	if opts.PreserveStructure {
		for _, ent := range req.Listing {
			if ent.Dir && ent.Path != "" && !selector.ExcludedPath(ent.Path) {
				dirs = append(dirs, ent.Path)
			}
		}
	}

	return &Result{
		Files:            files,
		Structure:        renderTreeWith(paths, dirs),
		Placeholders:     catalog.Map(),
		PlaceholderOrder: catalog.Keys(),
		Metadata:         meta,
	}, nil
}

// transform produces the (pre-scrub) output text for one surviving file and
// reports whether the file survived. A per-file transform failure keeps the
// original content with a warning; under StrictRedaction it drops the file
// instead. Neither aborts the batch.
func (e *Engine) transform(src SourceFile, opts Options, redactOpts redact.Options, meta *TemplateMetadata) (TemplateFile, bool) {
	info := language.Detect(src.Path)
	tf := TemplateFile{Path: src.Path, Description: describeFile(info, opts.Mode)}

	if opts.Mode == ModeCopier {
		tf.Content = string(src.Content)
		return tf, true
	}

	var r redact.Redactor
	if opts.StrictRedaction {
		var err error
		if r, err = redact.ForLanguageStrict(info, redactOpts); err != nil {
			meta.DroppedFiles = append(meta.DroppedFiles, src.Path)
			meta.Notes = append(meta.Notes, fmt.Sprintf("dropped %s: %v", src.Path, err))
			return tf, false
		}
	} else {
		r = redact.ForLanguage(info, redactOpts)
	}

	res, err := r.Redact(src.Path, src.Content)
	if err != nil {
		if opts.StrictRedaction {
			meta.DroppedFiles = append(meta.DroppedFiles, src.Path)
			meta.Notes = append(meta.Notes, fmt.Sprintf("dropped %s: redaction failed: %v", src.Path, err))
			return tf, false
		}
		meta.Warnings = append(meta.Warnings,
			fmt.Sprintf("transform failed for %s: %v; original content kept", src.Path, err))
		tf.Content = string(src.Content)
		tf.Notes = append(tf.Notes, "transform failed; content not redacted")
		return tf, true
	}

	meta.RedactedFunctions += res.RedactedFunctions
	tf.Content = res.Content
	tf.Notes = append(tf.Notes, res.Notes...)
	return tf, true
}

func describeFile(info language.Info, mode Mode) string {
	kind := info.Language
	if info.Framework != "" {
		kind += " (" + info.Framework + ")"
	}
	if mode == ModeSkeleton {
		switch info.Family {
		case language.FamilyCurly, language.FamilyIndent, language.FamilyGenericBrace:
			return kind + " skeleton with TODO stubs"
		}
	}
	return kind + " file"
}

// evaluateDegeneracy applies the skeleton fallback triggers: nothing
// survived, nothing was redacted despite drops, or too few files survived
// relative to the candidates considered.
func evaluateDegeneracy(opts Options, res *Result) *errDegenerateSkeleton {
	if opts.Mode != ModeSkeleton {
		return nil
	}
	meta := res.Metadata

	if len(res.Files) == 0 {
		return &errDegenerateSkeleton{reason: "no files survived skeleton selection"}
	}
	if meta.RedactedFunctions == 0 && len(meta.DroppedFiles) > 0 {
		return &errDegenerateSkeleton{reason: "no functions could be redacted from the surviving files"}
	}
	if meta.TotalFilesConsidered >= opts.MinSkeletonFiles && len(res.Files) < opts.MinSkeletonFiles {
		return &errDegenerateSkeleton{reason: fmt.Sprintf(
			"only %d of %d candidate files survived (minimum %d)",
			len(res.Files), meta.TotalFilesConsidered, opts.MinSkeletonFiles)}
	}
	return nil
}

func validateIdentity(id Identity) error {
	if strings.TrimSpace(id.Owner) == "" || strings.TrimSpace(id.Name) == "" {
		return fmt.Errorf("%w: owner and name are required", ErrInvalidRepository)
	}
	return nil
}
