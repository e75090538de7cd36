// Package scrub replaces repository-identity substrings and secret-like
// values with named {{PLACEHOLDER}} tokens, building a catalog of every
// placeholder it introduced. Scrubbing is heuristic: unmatched patterns are
// skipped, and nothing in this package ever fails on malformed content.
package scrub

import (
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/templar-dev/templar/internal/language"
)

// Identity carries the repository identity fields to scrub.
type Identity struct {
	Name          string
	Owner         string
	URL           string
	DefaultBranch string
	Description   string
}

// Catalog maps placeholder keys to human-readable descriptions. Insertion
// order is first-discovery order; the first writer of a key wins.
type Catalog struct {
	order []string
	descs map[string]string
}

func NewCatalog() *Catalog {
	return &Catalog{descs: map[string]string{}}
}

// Add records a placeholder description unless the key is already present.
func (c *Catalog) Add(key, description string) {
	if _, ok := c.descs[key]; ok {
		return
	}
	c.order = append(c.order, key)
	c.descs[key] = description
}

// Keys returns placeholder keys in first-discovery order.
func (c *Catalog) Keys() []string { return c.order }

// Description returns the recorded description for a key.
func (c *Catalog) Description(key string) string { return c.descs[key] }

// Map returns the catalog as a plain map for serialization.
func (c *Catalog) Map() map[string]string {
	out := make(map[string]string, len(c.descs))
	for k, v := range c.descs {
		out[k] = v
	}
	return out
}

type rule struct {
	key         string
	description string
	pattern     *regexp.Regexp
}

// ReplacementSet is built once per extraction request from the repository
// identity and applied to every file.
type ReplacementSet struct {
	rules     []rule
	catalog   *Catalog
	overrides map[string]string
}

// NewReplacementSet compiles identity fields into literal, case-insensitive,
// whitespace-normalized patterns. Descriptions may be overridden per key by
// a repository-supplied config.
func NewReplacementSet(id Identity, catalog *Catalog, overrides map[string]string) *ReplacementSet {
	s := &ReplacementSet{catalog: catalog, overrides: overrides}

	add := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		s.rules = append(s.rules, rule{
			key:         key,
			description: s.describe(key),
			pattern:     literalPattern(value),
		})
	}

	// URL first: it usually contains the name and owner as substrings.
	add("PROJECT_URL", id.URL)
	add("PROJECT_NAME", id.Name)
	add("PROJECT_OWNER", id.Owner)
	add("DEFAULT_BRANCH", id.DefaultBranch)
	add("PROJECT_DESCRIPTION", id.Description)

	return s
}

// canonicalDescriptions are the stock descriptions for every placeholder
// key this package introduces.
var canonicalDescriptions = map[string]string{
	"PROJECT_URL":         "Repository URL of the original project",
	"PROJECT_NAME":        "Name of the project this template was extracted from",
	"PROJECT_OWNER":       "Owner (user or organization) of the original repository",
	"DEFAULT_BRANCH":      "Default branch of the original repository",
	"PROJECT_DESCRIPTION": "Description of the original project",
	"PROJECT_VERSION":     "Version of the original project",
	"PROJECT_REPOSITORY":  "Repository reference from the original manifest",
	"PROJECT_HOMEPAGE":    "Homepage of the original project",
	"PROJECT_TITLE":       "Title of your project",
	"COMPONENT_NAME":      "Name of your main exported component",
	"VARIABLE_NAME":       "Rename generic bindings (app/client/server/api) to fit your project",
	"value":               "Fill in your own secret values",
}

// describe resolves a placeholder description, preferring repo-config
// overrides over the canonical text.
func (s *ReplacementSet) describe(key string) string {
	if o, ok := s.overrides[key]; ok {
		return o
	}
	if d, ok := canonicalDescriptions[key]; ok {
		return d
	}
	return "Replace with a value for your project"
}

// literalPattern escapes a value for literal matching, then relaxes interior
// whitespace so descriptions reflowed across lines still match.
func literalPattern(value string) *regexp.Regexp {
	escaped := regexp.QuoteMeta(strings.TrimSpace(value))
	escaped = regexp.MustCompile(`(?:\\?\s)+`).ReplaceAllString(escaped, `\s+`)
	return regexp.MustCompile(`(?i)` + escaped)
}

var (
	secretKeyRe  = regexp.MustCompile(`(?i)^(\s*["']?[\w.-]*(?:api[_-]?key|apikey|token|secret|password|credential)[\w.-]*["']?\s*[:=]\s*)(.+?)(,?\s*)$`)
	headingRe    = regexp.MustCompile(`^#\s+.+$`)
	defaultExpRe = regexp.MustCompile(`(export\s+default\s+(?:async\s+)?(?:function|class)\s+)([A-Z]\w*)`)
	genericVarRe = regexp.MustCompile(`\b(const|let|var)\s+(app|client|server|api)\b`)
	manifestKeys = []string{"name", "description", "version", "repository", "homepage"}
)

// manifestNames are structured project-metadata files that get field-level
// scrubbing independent of substring matching.
var manifestNames = map[string]bool{
	"package.json":  true,
	"composer.json": true,
	"manifest.json": true,
	"bower.json":    true,
}

// Scrub rewrites one file's content, returning the scrubbed text and the
// placeholder keys that fired, in firing order.
func (s *ReplacementSet) Scrub(path, content string) (string, []string) {
	var fired []string
	seen := map[string]bool{}
	note := func(key, description string) {
		s.catalog.Add(key, description)
		if !seen[key] {
			seen[key] = true
			fired = append(fired, key)
		}
	}

	base := strings.ToLower(filepath.Base(path))
	info := language.Detect(path)

	if manifestNames[base] {
		content = s.scrubManifest(content, note)
	}

	for _, r := range s.rules {
		if r.pattern.MatchString(content) {
			content = r.pattern.ReplaceAllString(content, "{{"+r.key+"}}")
			note(r.key, r.description)
		}
	}

	switch info.Family {
	case language.FamilyDoc:
		content = s.scrubHeading(content, note)
	case language.FamilyConfig:
		content = s.scrubSecrets(content, note)
	case language.FamilyCurly, language.FamilyGenericBrace:
		content = s.scrubSource(content, note)
	}

	return content, fired
}

// scrubManifest parses the manifest as JSON and rewrites well-known fields.
// On parse failure it falls back to textual replacement.
func (s *ReplacementSet) scrubManifest(content string, note func(key, desc string)) string {
	var doc map[string]any
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return s.scrubManifestText(content, note)
	}

	changed := false
	for _, field := range manifestKeys {
		if _, ok := doc[field]; !ok {
			continue
		}
		key := manifestPlaceholder(field)
		doc[field] = "{{" + key + "}}"
		note(key, s.describe(key))
		changed = true
	}
	if !changed {
		return content
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return content
	}
	return string(out) + "\n"
}

func (s *ReplacementSet) scrubManifestText(content string, note func(key, desc string)) string {
	for _, field := range manifestKeys {
		re := regexp.MustCompile(`(?m)("` + field + `"\s*:\s*)"[^"]*"`)
		if re.MatchString(content) {
			key := manifestPlaceholder(field)
			content = re.ReplaceAllString(content, `${1}"{{`+key+`}}"`)
			note(key, s.describe(key))
		}
	}
	return content
}

func manifestPlaceholder(field string) string {
	switch field {
	case "name":
		return "PROJECT_NAME"
	case "description":
		return "PROJECT_DESCRIPTION"
	case "version":
		return "PROJECT_VERSION"
	case "repository":
		return "PROJECT_REPOSITORY"
	case "homepage":
		return "PROJECT_HOMEPAGE"
	}
	return strings.ToUpper(field)
}

// scrubHeading replaces the first top-level heading of a document with a
// generic titled placeholder. Badge and HTML lines before the heading are
// common in READMEs, so any preceding lines are scanned past.
func (s *ReplacementSet) scrubHeading(content string, note func(key, desc string)) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if headingRe.MatchString(line) {
			lines[i] = "# {{PROJECT_TITLE}}"
			note("PROJECT_TITLE", s.describe("PROJECT_TITLE"))
			break
		}
	}
	return strings.Join(lines, "\n")
}

// scrubSecrets blanks values on key/value lines whose key looks like an API
// key, token, or password.
func (s *ReplacementSet) scrubSecrets(content string, note func(key, desc string)) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if m := secretKeyRe.FindStringSubmatch(line); m != nil {
			lines[i] = m[1] + "{{value}}" + m[3]
			note("value", s.describe("value"))
		}
	}
	return strings.Join(lines, "\n")
}

// scrubSource applies best-effort source rules: default-exported component
// names and generically named local bindings.
func (s *ReplacementSet) scrubSource(content string, note func(key, desc string)) string {
	if defaultExpRe.MatchString(content) {
		content = defaultExpRe.ReplaceAllString(content, "${1}{{COMPONENT_NAME}}")
		note("COMPONENT_NAME", s.describe("COMPONENT_NAME"))
	}
	if genericVarRe.MatchString(content) {
		// Offered, not forced: the binding keyword survives, only the name
		// becomes a placeholder.
		note("VARIABLE_NAME", s.describe("VARIABLE_NAME"))
	}
	return content
}
