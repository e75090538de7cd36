package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templar-dev/templar/internal/heuristics"
)

// Test Plan for the extraction engine:
// - Determinism: identical requests yield byte-identical results
// - Cap invariant: never more output files than MaxFiles
// - Exclusion invariant: no vendor/build path survives in any mode
// - Size invariant: oversize sources never reach the output
// - Fallback invariant: copier output for a skeleton request carries a reason
// - Copier lift: test-only repositories fall back and keep their files
// - FallbackSkip keeps the degenerate skeleton result with a warning
// - Redaction counting flows into metadata
// - Manifest scrubbing end to end
// - RepoConfig overrides computed defaults but not caller options
// - Invalid identity and a scope matching nothing are the fatal errors
// - Strict redaction drops files with no grammar-backed strategy
// - PreserveStructure renders directories that kept no files

func testIdentity() Identity {
	return Identity{
		Name:          "acme-widgets",
		Owner:         "acme-corp",
		URL:           "https://github.com/acme-corp/acme-widgets",
		DefaultBranch: "main",
		Description:   "Widgets for every occasion",
	}
}

func file(path, content string) SourceFile {
	return SourceFile{Path: path, Content: []byte(content)}
}

var tsSource = `function alpha(): number {
	return 1;
}

function beta(): number {
	return 2;
}

function gamma(): number {
	return 3;
}
`

func basicRequest() Request {
	return Request{
		Identity: testIdentity(),
		Files: []SourceFile{
			file("package.json", `{"name": "acme-widgets", "version": "1.0.0"}`),
			file("src/math.ts", tsSource),
			file("src/helper.ts", "function helper(): void {\n\tconsole.log(1);\n}\n"),
			file("README.md", "# Acme Widgets\n\nDocs here.\n"),
		},
	}
}

func TestExtract_Determinism(t *testing.T) {
	t.Parallel()

	e := New()
	a, err := e.Extract(basicRequest())
	require.NoError(t, err)
	b, err := e.Extract(basicRequest())
	require.NoError(t, err)

	assert.Equal(t, a, b, "identical inputs must yield identical output")
	require.Equal(t, len(a.Files), len(b.Files))
	for i := range a.Files {
		assert.Equal(t, a.Files[i].Path, b.Files[i].Path)
		assert.Equal(t, a.Files[i].Content, b.Files[i].Content)
	}
	assert.Equal(t, a.PlaceholderOrder, b.PlaceholderOrder)
}

func TestExtract_MaxFilesCap(t *testing.T) {
	t.Parallel()

	req := Request{Identity: testIdentity()}
	for i := 0; i < 50; i++ {
		req.Files = append(req.Files, file(fmt.Sprintf("src/f%02d.ts", i), tsSource))
	}
	req.Options = Options{Mode: ModeCopier, MaxFiles: 5}

	res, err := New().Extract(req)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Files), 5)
}

func TestExtract_VendorNeverSurvives(t *testing.T) {
	t.Parallel()

	for _, mode := range []Mode{ModeSkeleton, ModeCopier} {
		req := basicRequest()
		req.Files = append(req.Files, file("node_modules/pkg/index.js", "function a() {}"))
		req.Options = Options{Mode: mode, FallbackMode: FallbackSkip}

		res, err := New().Extract(req)
		require.NoError(t, err)
		for _, f := range res.Files {
			assert.NotContains(t, f.Path, "node_modules")
		}
	}
}

func TestExtract_OversizeNeverSurvives(t *testing.T) {
	t.Parallel()

	req := basicRequest()
	req.Files = append(req.Files, SourceFile{
		Path:    "src/huge.ts",
		Content: []byte("function x() {}\n"),
		Size:    500 * 1024,
	})
	req.Options = Options{Mode: ModeCopier, MaxFileSizeKB: 100}

	res, err := New().Extract(req)
	require.NoError(t, err)
	for _, f := range res.Files {
		assert.NotEqual(t, "src/huge.ts", f.Path)
	}
	assert.Contains(t, res.Metadata.DroppedFiles, "src/huge.ts")
}

func TestExtract_RedactionCount(t *testing.T) {
	t.Parallel()

	req := Request{
		Identity: testIdentity(),
		Files: []SourceFile{
			file("src/math.ts", tsSource),
			file("src/other.ts", "function delta(): void {}\nfunction eps(): void {\n\twork();\n}\n"),
			file("src/third.ts", "const x = 1;\nexport { x };\n"),
		},
		Options: Options{Mode: ModeSkeleton, FallbackMode: FallbackSkip},
	}

	res, err := New().Extract(req)
	require.NoError(t, err)
	require.Equal(t, Mode(ModeSkeleton), res.Metadata.ModeUsed)

	var math TemplateFile
	for _, f := range res.Files {
		if f.Path == "src/math.ts" {
			math = f
		}
	}
	require.NotEmpty(t, math.Path)
	assert.Equal(t, 3, strings.Count(math.Content, "TODO: Implement"))
	assert.GreaterOrEqual(t, res.Metadata.RedactedFunctions, 4)
}

func TestExtract_FallbackInvariant(t *testing.T) {
	t.Parallel()

	// Only test-directory files: skeleton selection drops everything.
	req := Request{
		Identity: testIdentity(),
		Files: []SourceFile{
			file("tests/a.test.ts", tsSource),
			file("tests/b.test.ts", tsSource),
		},
		Options: Options{Mode: ModeSkeleton, FallbackMode: FallbackCopier},
	}

	res, err := New().Extract(req)
	require.NoError(t, err)

	assert.Equal(t, Mode(ModeCopier), res.Metadata.ModeUsed,
		"modeUsed reflects the mode whose output is returned")
	assert.NotEmpty(t, res.Metadata.FallbackReason)
	require.Len(t, res.Files, 2, "copier mode lifts the skeleton-only exclusions")
	assert.Contains(t, res.Files[0].Content, "return 1;", "copier content is unredacted")
	assert.Contains(t, res.Instructions[0], "review copied files")
}

func TestExtract_FallbackSkipKeepsSkeleton(t *testing.T) {
	t.Parallel()

	req := Request{
		Identity: testIdentity(),
		Files: []SourceFile{
			file("tests/a.test.ts", tsSource),
		},
		Options: Options{Mode: ModeSkeleton, FallbackMode: FallbackSkip},
	}

	res, err := New().Extract(req)
	require.NoError(t, err)
	assert.Equal(t, Mode(ModeSkeleton), res.Metadata.ModeUsed)
	assert.Empty(t, res.Files)
	require.NotEmpty(t, res.Metadata.Warnings)
	assert.Contains(t, res.Metadata.Warnings[0], "degenerate")
}

func TestExtract_ManifestScrubbing(t *testing.T) {
	t.Parallel()

	res, err := New().Extract(basicRequest())
	require.NoError(t, err)

	var manifest TemplateFile
	for _, f := range res.Files {
		if f.Path == "package.json" {
			manifest = f
		}
	}
	require.NotEmpty(t, manifest.Path)
	assert.Contains(t, manifest.Content, `"{{PROJECT_NAME}}"`)
	assert.Contains(t, res.Placeholders, "PROJECT_NAME")
	assert.Contains(t, manifest.Placeholders, "PROJECT_NAME")
}

func TestExtract_MetadataInvariant(t *testing.T) {
	t.Parallel()

	req := basicRequest()
	req.Files = append(req.Files,
		file("vendor/dep.ts", tsSource),
		file("src/blob.js", string([]byte{0x89, 0x00, 0x01})),
	)

	res, err := New().Extract(req)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Metadata.DroppedFiles)+len(res.Files),
		res.Metadata.TotalFilesConsidered)
	assert.Contains(t, res.Metadata.DroppedFiles, "src/blob.js", "binary content is dropped with a note")
	assert.Contains(t, res.Metadata.DroppedFiles, "vendor/dep.ts")
}

func TestExtract_RepoConfigPrecedence(t *testing.T) {
	t.Parallel()

	req := basicRequest()
	req.RepoConfig = &RepoConfig{
		Mode:         string(ModeCopier),
		MaxFiles:     2,
		Instructions: []string{"Custom setup step"},
	}

	res, err := New().Extract(req)
	require.NoError(t, err)
	assert.Equal(t, Mode(ModeCopier), res.Metadata.ModeUsed, "repo config beats computed defaults")
	assert.LessOrEqual(t, len(res.Files), 2)
	assert.Contains(t, res.Instructions, "Custom setup step")

	// Explicit caller options beat the repo config.
	req2 := basicRequest()
	req2.RepoConfig = &RepoConfig{Mode: string(ModeCopier), MaxFiles: 1}
	req2.Options = Options{Mode: ModeSkeleton, FallbackMode: FallbackSkip, MaxFiles: 10}

	res2, err := New().Extract(req2)
	require.NoError(t, err)
	assert.Equal(t, Mode(ModeSkeleton), res2.Metadata.ModeUsed)
	assert.Greater(t, len(res2.Files), 1)
}

func TestExtract_InvalidIdentityFatal(t *testing.T) {
	t.Parallel()

	_, err := New().Extract(Request{Identity: Identity{Owner: "", Name: ""}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRepository)
}

func TestExtract_NoMatchingFilesErrors(t *testing.T) {
	t.Parallel()

	req := basicRequest()
	req.Options = Options{IncludePatterns: []string{"**/*.rs"}}
	_, err := New().Extract(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoFiles)
	assert.Contains(t, err.Error(), "**/*.rs")

	_, err = New().Extract(Request{Identity: testIdentity()})
	assert.ErrorIs(t, err, ErrNoFiles, "an empty repository has nothing to match")
}

func TestExtract_StrictRedactionDropsUnsupported(t *testing.T) {
	t.Parallel()

	req := Request{
		Identity: testIdentity(),
		Files: []SourceFile{
			file("main.go", "package main\n\nfunc main() {\n\twork()\n}\n"),
			file("src/app.ts", tsSource),
		},
		Options: Options{
			Mode:            ModeSkeleton,
			FallbackMode:    FallbackSkip,
			IncludePatterns: []string{"**/*.go", "**/*.ts"},
			StrictRedaction: true,
		},
	}

	res, err := New().Extract(req)
	require.NoError(t, err)
	for _, f := range res.Files {
		assert.NotEqual(t, "main.go", f.Path, "no grammar means no output under strict redaction")
	}
	assert.Contains(t, res.Metadata.DroppedFiles, "main.go")

	// Without strict redaction the same file survives via the lenient path.
	req.Options.StrictRedaction = false
	res, err = New().Extract(req)
	require.NoError(t, err)
	var paths []string
	for _, f := range res.Files {
		paths = append(paths, f.Path)
	}
	assert.Contains(t, paths, "main.go")
}

func TestExtract_PreserveStructureKeepsEmptyDirs(t *testing.T) {
	t.Parallel()

	req := basicRequest()
	req.Listing = []heuristics.TreeEntry{
		{Path: "src", Dir: true},
		{Path: "src/util", Dir: true},
		{Path: "node_modules", Dir: true},
		{Path: "src/math.ts"},
		{Path: "README.md"},
	}
	req.Options = Options{Mode: ModeCopier, PreserveStructure: true}

	res, err := New().Extract(req)
	require.NoError(t, err)
	assert.Contains(t, res.Structure, "util/")
	assert.NotContains(t, res.Structure, "node_modules")

	req.Options.PreserveStructure = false
	res, err = New().Extract(req)
	require.NoError(t, err)
	assert.NotContains(t, res.Structure, "util/", "empty directories are omitted by default")
}

func TestExtract_TransformFailureRecovers(t *testing.T) {
	t.Parallel()

	// Unbalanced braces exercise the lenient paths; the batch must not
	// abort and every surviving file keeps usable content.
	req := Request{
		Identity: testIdentity(),
		Files: []SourceFile{
			file("src/broken.ts", "function lost( {{{"),
			file("src/ok.ts", tsSource),
			file("src/more.ts", tsSource),
		},
		Options: Options{Mode: ModeSkeleton, FallbackMode: FallbackSkip},
	}

	res, err := New().Extract(req)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Files)
}

func TestExtract_StructureRendering(t *testing.T) {
	t.Parallel()

	res, err := New().Extract(basicRequest())
	require.NoError(t, err)

	assert.Contains(t, res.Structure, "src/")
	assert.Contains(t, res.Structure, "  math.ts")
}
