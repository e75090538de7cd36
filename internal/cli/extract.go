package cli

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/templar-dev/templar/internal/extract"
	"github.com/templar-dev/templar/internal/fetchcache"
	"github.com/templar-dev/templar/internal/githubrepo"
)

var (
	extractMode     string
	extractFallback string
	extractMaxFiles int
	extractMaxSize  int
	extractInclude  []string
	extractExclude  []string
	extractOut      string
	extractNoCache  bool
	extractOffline  bool
	extractNoTypes  bool
	extractNoDocs   bool
	extractKeepDirs bool
	extractStrict   bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <owner/repo[@ref]>",
	Short: "Extract a reusable template from a GitHub repository",
	Long: `Extract fetches a repository, selects its structurally relevant files,
and writes a template bundle: the transformed files, a TEMPLATE.md guide,
and a machine-readable template.json.

Without --mode the extraction runs in skeleton mode and falls back to
copier mode when the repository yields too little structure to stub.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractMode, "mode", "", "extraction mode: skeleton or copier (default: automatic)")
	extractCmd.Flags().StringVar(&extractFallback, "fallback", "", "fallback when skeleton extraction degenerates: copier or skip")
	extractCmd.Flags().IntVar(&extractMaxFiles, "max-files", 0, "maximum files in the template (default: mode-dependent)")
	extractCmd.Flags().IntVar(&extractMaxSize, "max-file-size-kb", 0, "skip files larger than this")
	extractCmd.Flags().StringSliceVar(&extractInclude, "include", nil, "glob patterns to include (default: derived from the repository)")
	extractCmd.Flags().StringSliceVar(&extractExclude, "exclude", nil, "glob patterns to exclude")
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "output directory (default: ./<repo>-template)")
	extractCmd.Flags().BoolVar(&extractNoCache, "no-cache", false, "bypass the local blob cache")
	extractCmd.Flags().BoolVar(&extractOffline, "offline", false, "serve the repository from the local cache without network access")
	extractCmd.Flags().BoolVar(&extractNoTypes, "no-types", false, "drop type and interface declarations in skeleton mode")
	extractCmd.Flags().BoolVar(&extractNoDocs, "strip-comments", false, "drop comments in skeleton mode")
	extractCmd.Flags().BoolVar(&extractKeepDirs, "preserve-structure", false, "keep source directories in the rendered structure even when they kept no files")
	extractCmd.Flags().BoolVar(&extractStrict, "strict-redaction", false, "drop files whose language cannot be reliably redacted instead of keeping best-effort output")
	extractCmd.MarkFlagsMutuallyExclusive("offline", "no-cache")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadToolConfig()
	if err != nil {
		return err
	}

	ref, err := githubrepo.ParseRepoRef(args[0])
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	if verbose {
		log.Printf("run %s: extracting %s", runID, ref)
	}

	ctx := cmd.Context()
	client := githubrepo.NewClient(ctx, cfg.GitHub.Token)

	var cache githubrepo.Cache
	var snapshots githubrepo.SnapshotStore
	if cfg.Cache.Enabled && !extractNoCache {
		store, err := fetchcache.Open(cfg.CacheDBPath())
		if err != nil {
			if extractOffline {
				return fmt.Errorf("offline mode needs the local cache: %w", err)
			}
			log.Printf("blob cache unavailable, fetching uncached: %v", err)
		} else {
			defer store.Close()
			if cfg.Cache.MaxAgeDays > 0 && !extractOffline {
				if n, err := store.Prune(time.Duration(cfg.Cache.MaxAgeDays) * 24 * time.Hour); err == nil && n > 0 && verbose {
					log.Printf("pruned %d stale cache entries", n)
				}
			}
			cache = store
			snapshots = store
		}
	} else if extractOffline {
		return fmt.Errorf("offline mode needs the local cache; enable it in the configuration")
	}

	sizeKB := extractMaxSize
	if sizeKB == 0 {
		sizeKB = cfg.Extract.MaxFileSizeKB
	}
	if sizeKB == 0 {
		sizeKB = extract.DefaultMaxFileSizeKB
	}

	fetcher := githubrepo.NewFetcher(client, cache, snapshots)
	var snap *githubrepo.Snapshot
	if extractOffline {
		snap, err = fetcher.FetchOffline(ref, sizeKB, fetchProgress())
	} else {
		snap, err = fetcher.Fetch(ctx, ref, sizeKB, fetchProgress())
	}
	if err != nil {
		return err
	}

	opts := extract.Options{
		Mode:            extract.Mode(firstNonEmpty(extractMode, cfg.Extract.Mode)),
		FallbackMode:    extract.FallbackMode(firstNonEmpty(extractFallback, cfg.Extract.FallbackMode)),
		MaxFiles:        extractMaxFiles,
		MaxFileSizeKB:   sizeKB,
		IncludePatterns: extractInclude,
		ExcludePatterns: extractExclude,

		PreserveStructure: extractKeepDirs,
		StrictRedaction:   extractStrict,
	}
	if extractMaxFiles == 0 {
		opts.MaxFiles = cfg.Extract.MaxFiles
	}
	if extractNoTypes {
		f := false
		opts.IncludeTypes = &f
	}
	if extractNoDocs {
		f := false
		opts.KeepComments = &f
	}

	res, err := extract.New().Extract(extract.Request{
		Identity:   snap.Identity,
		Listing:    snap.Listing,
		Files:      snap.Files,
		Options:    opts,
		RepoConfig: snap.RepoConfig,
	})
	if err != nil {
		return err
	}
	res.Metadata.Warnings = append(snap.Warnings, res.Metadata.Warnings...)

	outDir := extractOut
	if outDir == "" {
		outDir = ref.Name + "-template"
	}
	if err := WriteBundle(outDir, res); err != nil {
		return err
	}

	printSummary(cmd, ref, res, outDir)
	return nil
}

// fetchProgress returns a per-blob progress callback. The bar is created
// lazily on the first report because the blob total is only known once the
// tree listing is in.
func fetchProgress() func(done, total int) {
	var once sync.Once
	var bar *progressbar.ProgressBar

	return func(done, total int) {
		once.Do(func() {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Fetching files"),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		})
		bar.Add(1)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
