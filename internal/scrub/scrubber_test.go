package scrub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the placeholder scrubber:
// - Identity substrings replaced case-insensitively with {{KEY}} tokens
// - Regex metacharacters in identity values never crash scrubbing
// - Whitespace-normalized matching across reflowed lines
// - Manifest field-level scrubbing (structured + textual fallback)
// - First markdown heading replaced with a titled placeholder
// - Secret-like config values blanked
// - Catalog keeps first-discovery order; first writer wins
// - Malformed content never errors

func testSet(catalog *Catalog) *ReplacementSet {
	return NewReplacementSet(Identity{
		Name:          "acme-widgets",
		Owner:         "acme-corp",
		URL:           "https://github.com/acme-corp/acme-widgets",
		DefaultBranch: "main",
		Description:   "Widgets for every occasion",
	}, catalog, nil)
}

func TestScrub_IdentitySubstrings(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog()
	s := testSet(catalog)

	content := `Clone ACME-WIDGETS from https://github.com/acme-corp/acme-widgets today.`
	out, fired := s.Scrub("notes.rst", content)

	assert.Contains(t, out, "{{PROJECT_NAME}}")
	assert.Contains(t, out, "{{PROJECT_URL}}")
	assert.NotContains(t, out, "acme-corp/acme-widgets")
	assert.Contains(t, fired, "PROJECT_NAME")
	assert.Contains(t, fired, "PROJECT_URL")
}

func TestScrub_RegexMetacharactersInIdentity(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog()
	s := NewReplacementSet(Identity{
		Name:        "c++-helpers",
		Owner:       "dev",
		Description: "C++ helpers (fast!) + more [beta]",
	}, catalog, nil)

	out, fired := s.Scrub("README.md", "# Intro\n\nInstall c++-helpers. C++ helpers (fast!) + more [beta] for you.\n")
	assert.Contains(t, out, "{{PROJECT_NAME}}")
	assert.Contains(t, out, "{{PROJECT_DESCRIPTION}}")
	assert.Contains(t, fired, "PROJECT_DESCRIPTION")
}

func TestScrub_WhitespaceNormalizedMatching(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog()
	s := testSet(catalog)

	out, _ := s.Scrub("doc.txt", "Widgets for\n  every   occasion\n")
	assert.Contains(t, out, "{{PROJECT_DESCRIPTION}}")
}

func TestScrub_ManifestStructured(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog()
	s := testSet(catalog)

	manifest := `{
  "name": "acme-widgets",
  "version": "2.1.0",
  "description": "Widgets for every occasion",
  "main": "index.js"
}`
	out, fired := s.Scrub("package.json", manifest)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "{{PROJECT_NAME}}", doc["name"])
	assert.Equal(t, "{{PROJECT_VERSION}}", doc["version"])
	assert.Equal(t, "{{PROJECT_DESCRIPTION}}", doc["description"])
	assert.Equal(t, "index.js", doc["main"])

	assert.Contains(t, fired, "PROJECT_NAME")
	assert.Equal(t, "Name of the project this template was extracted from", catalog.Description("PROJECT_NAME"))
}

func TestScrub_ManifestTextualFallback(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog()
	s := testSet(catalog)

	// Trailing comma makes this invalid JSON; the regex fallback applies.
	broken := `{
  "name": "acme-widgets",
  "version": "2.1.0",
}`
	out, _ := s.Scrub("package.json", broken)
	assert.Contains(t, out, `"name": "{{PROJECT_NAME}}"`)
	assert.Contains(t, out, `"version": "{{PROJECT_VERSION}}"`)
}

func TestScrub_DocHeading(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog()
	s := testSet(catalog)

	out, fired := s.Scrub("README.md", "# Acme Widgets Handbook\n\nWelcome.\n## Section\n")
	assert.Contains(t, out, "# {{PROJECT_TITLE}}")
	assert.Contains(t, out, "## Section")
	assert.Contains(t, fired, "PROJECT_TITLE")
}

func TestScrub_DocHeadingAfterBadges(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog()
	s := testSet(catalog)

	doc := `<p align="center"><img src="logo.svg"></p>
[![CI](https://ci.example.com/badge.svg)](https://ci.example.com)

# Acme Widgets

Welcome.
`
	out, fired := s.Scrub("README.md", doc)
	assert.Contains(t, out, "# {{PROJECT_TITLE}}")
	assert.NotContains(t, out, "# Acme Widgets\n")
	assert.Contains(t, fired, "PROJECT_TITLE")
}

func TestScrub_SecretValues(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog()
	s := testSet(catalog)

	out, _ := s.Scrub(".env", "API_KEY=sk-12345\nDB_PASSWORD=hunter2\nPORT=8080\n")
	assert.Contains(t, out, "API_KEY={{value}}")
	assert.Contains(t, out, "DB_PASSWORD={{value}}")
	assert.Contains(t, out, "PORT=8080")
}

func TestScrub_DefaultExportedComponent(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog()
	s := testSet(catalog)

	out, fired := s.Scrub("src/App.tsx", "export default function Dashboard() {\n  return null;\n}\n")
	assert.Contains(t, out, "export default function {{COMPONENT_NAME}}")
	assert.Contains(t, fired, "COMPONENT_NAME")
}

func TestCatalog_FirstWriterWins(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	c.Add("PROJECT_NAME", "first description")
	c.Add("PROJECT_TITLE", "title")
	c.Add("PROJECT_NAME", "second description")

	assert.Equal(t, []string{"PROJECT_NAME", "PROJECT_TITLE"}, c.Keys())
	assert.Equal(t, "first description", c.Description("PROJECT_NAME"))
}

func TestScrub_DescriptionOverrides(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog()
	s := NewReplacementSet(Identity{Name: "acme-widgets", Owner: "acme-corp"},
		catalog, map[string]string{"PROJECT_NAME": "Your widget suite name"})

	s.Scrub("a.md", "install acme-widgets\n")
	assert.Equal(t, "Your widget suite name", catalog.Description("PROJECT_NAME"))
}

func TestScrub_MalformedContentNeverPanics(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog()
	s := testSet(catalog)

	assert.NotPanics(t, func() {
		s.Scrub("package.json", "{{{{not json")
		s.Scrub("weird.md", "")
		s.Scrub(".env", "=====")
	})
}
