package heuristics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the heuristic scorer:
// - Scores stay inside their clamp ranges for arbitrary inputs
// - Adding a manifest never decreases worthiness (monotonicity)
// - Grammar-backed main language raises redaction confidence
// - Main language and framework detection
// - Recommended patterns follow the main language
// - Warnings for code-free trees
// Exact score values are never asserted; the weights are tunable constants.

func entriesFor(paths ...string) []TreeEntry {
	out := make([]TreeEntry, 0, len(paths))
	for _, p := range paths {
		out = append(out, TreeEntry{Path: p})
	}
	return out
}

func TestAnalyze_ScoreRanges(t *testing.T) {
	t.Parallel()

	cases := [][]TreeEntry{
		{},
		entriesFor("README.md"),
		entriesFor("package.json", "src/index.ts", "src/app.ts", "docs/guide.md"),
		entriesFor("a.bin", "b.bin"),
		entriesFor(
			"package.json", "tsconfig.json", "next.config.js", "README.md",
			"src/index.ts", "src/pages/home.tsx", "src/components/Button.tsx",
			"src/services/billing.ts", "tests/billing.test.ts",
		),
	}

	for _, entries := range cases {
		a := Analyze(entries)
		assert.GreaterOrEqual(t, a.TemplateWorthiness, 0.05)
		assert.LessOrEqual(t, a.TemplateWorthiness, 0.95)
		assert.GreaterOrEqual(t, a.RedactionConfidence, 0.1)
		assert.LessOrEqual(t, a.RedactionConfidence, 0.9)
	}
}

func TestAnalyze_ManifestMonotonicity(t *testing.T) {
	t.Parallel()

	base := entriesFor("src/index.ts", "src/util.ts", "docs/guide.md")
	withManifest := append(entriesFor("package.json"), base...)

	before := Analyze(base).TemplateWorthiness
	after := Analyze(withManifest).TemplateWorthiness
	assert.GreaterOrEqual(t, after, before, "adding a manifest must not decrease worthiness")
}

func TestAnalyze_GrammarRaisesRedactionConfidence(t *testing.T) {
	t.Parallel()

	ts := Analyze(entriesFor("src/a.ts", "src/b.ts", "src/c.ts"))
	kt := Analyze(entriesFor("src/a.kt", "src/b.kt", "src/c.kt"))
	assert.Greater(t, ts.RedactionConfidence, kt.RedactionConfidence,
		"grammar-backed language should redact with more confidence")
}

func TestAnalyze_MainLanguageAndFramework(t *testing.T) {
	t.Parallel()

	a := Analyze(entriesFor(
		"next.config.js", "src/pages/index.tsx", "src/pages/about.tsx", "src/lib/api.ts",
	))
	assert.Equal(t, "tsx", a.MainLanguage)
	assert.Equal(t, "nextjs", a.Framework)
}

func TestAnalyze_RecommendedPatterns(t *testing.T) {
	t.Parallel()

	a := Analyze(entriesFor("main.py", "app/views.py", "requirements.txt"))
	assert.Contains(t, a.RecommendedPatterns, "**/*.py")
	assert.Contains(t, a.RecommendedPatterns, "**/*.md")

	g := Analyze(entriesFor("main.go", "internal/server/server.go", "go.mod"))
	assert.Contains(t, g.RecommendedPatterns, "**/*.go")
}

func TestAnalyze_CodeFreeTreeWarns(t *testing.T) {
	t.Parallel()

	a := Analyze(entriesFor("README.md", "LICENSE"))
	require.NotEmpty(t, a.Warnings)
	assert.Contains(t, a.Warnings[0], "no recognizable source files")
}

func TestAnalyze_CountersAndDirectories(t *testing.T) {
	t.Parallel()

	a := Analyze([]TreeEntry{
		{Path: "src", Dir: true},
		{Path: "src/services", Dir: true},
		{Path: "tests", Dir: true},
		{Path: "src/services/payment.ts"},
		{Path: "tests/payment.test.ts"},
		{Path: "config.yml"},
	})
	assert.Equal(t, []string{"src", "tests"}, a.Directories)
	assert.GreaterOrEqual(t, a.Heuristics["logic"], 1)
	assert.GreaterOrEqual(t, a.Heuristics["tests"], 1)
	assert.GreaterOrEqual(t, a.Heuristics["config"], 1)
}
