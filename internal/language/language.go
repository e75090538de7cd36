package language

import (
	"path/filepath"
	"strings"
)

// Family groups languages by the redaction strategy that applies to them.
// New languages are supported by adding a variant here and a parser binding
// in the redact package, never by branching on extensions elsewhere.
type Family int

const (
	// FamilyUnknown means no strategy is known; callers fall back to
	// generic text handling.
	FamilyUnknown Family = iota

	// FamilyCurly covers C-like languages with brace-delimited function
	// bodies where a tree-sitter grammar is available.
	FamilyCurly

	// FamilyIndent covers indentation-delimited languages (Python-style).
	FamilyIndent

	// FamilyGenericBrace covers brace-delimited languages without a
	// grammar binding; bodies are located by brace-depth counting.
	FamilyGenericBrace

	// FamilyDoc covers documentation and plain-text files.
	FamilyDoc

	// FamilyConfig covers structured configuration and manifest files.
	FamilyConfig
)

// String returns the family name for logging.
func (f Family) String() string {
	switch f {
	case FamilyCurly:
		return "curly"
	case FamilyIndent:
		return "indent"
	case FamilyGenericBrace:
		return "generic-brace"
	case FamilyDoc:
		return "doc"
	case FamilyConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Info describes the detected language of a file.
type Info struct {
	Language  string // e.g. "typescript", "python"
	Family    Family
	Framework string // best-guess framework signal, may be empty
}

// extension → (language, family) for everything we recognize.
var byExtension = map[string]Info{
	".ts":         {Language: "typescript", Family: FamilyCurly},
	".tsx":        {Language: "tsx", Family: FamilyCurly},
	".js":         {Language: "javascript", Family: FamilyCurly},
	".jsx":        {Language: "javascript", Family: FamilyCurly},
	".mjs":        {Language: "javascript", Family: FamilyCurly},
	".cjs":        {Language: "javascript", Family: FamilyCurly},
	".java":       {Language: "java", Family: FamilyCurly},
	".c":          {Language: "c", Family: FamilyCurly},
	".h":          {Language: "c", Family: FamilyCurly},
	".rs":         {Language: "rust", Family: FamilyCurly},
	".php":        {Language: "php", Family: FamilyCurly},
	".rb":         {Language: "ruby", Family: FamilyCurly},
	".py":         {Language: "python", Family: FamilyIndent},
	".pyi":        {Language: "python", Family: FamilyIndent},
	".go":         {Language: "go", Family: FamilyGenericBrace},
	".cs":         {Language: "csharp", Family: FamilyGenericBrace},
	".kt":         {Language: "kotlin", Family: FamilyGenericBrace},
	".kts":        {Language: "kotlin", Family: FamilyGenericBrace},
	".swift":      {Language: "swift", Family: FamilyGenericBrace},
	".scala":      {Language: "scala", Family: FamilyGenericBrace},
	".dart":       {Language: "dart", Family: FamilyGenericBrace},
	".cpp":        {Language: "cpp", Family: FamilyGenericBrace},
	".cc":         {Language: "cpp", Family: FamilyGenericBrace},
	".hpp":        {Language: "cpp", Family: FamilyGenericBrace},
	".md":         {Language: "markdown", Family: FamilyDoc},
	".rst":        {Language: "rst", Family: FamilyDoc},
	".txt":        {Language: "text", Family: FamilyDoc},
	".adoc":       {Language: "asciidoc", Family: FamilyDoc},
	".json":       {Language: "json", Family: FamilyConfig},
	".yml":        {Language: "yaml", Family: FamilyConfig},
	".yaml":       {Language: "yaml", Family: FamilyConfig},
	".toml":       {Language: "toml", Family: FamilyConfig},
	".ini":        {Language: "ini", Family: FamilyConfig},
	".env":        {Language: "dotenv", Family: FamilyConfig},
	".xml":        {Language: "xml", Family: FamilyConfig},
	".properties": {Language: "properties", Family: FamilyConfig},
}

// filename-level framework hints. These only need to be directionally
// right; the heuristic scorer aggregates them across the tree.
var frameworkHints = map[string]string{
	"next.config.js":     "nextjs",
	"next.config.mjs":    "nextjs",
	"next.config.ts":     "nextjs",
	"nuxt.config.ts":     "nuxt",
	"vite.config.ts":     "vite",
	"vite.config.js":     "vite",
	"angular.json":       "angular",
	"svelte.config.js":   "svelte",
	"gatsby-config.js":   "gatsby",
	"remix.config.js":    "remix",
	"tailwind.config.js": "tailwind",
	"go.mod":             "go-module",
	"cargo.toml":         "cargo",
	"composer.json":      "composer",
	"gemfile":            "rails",
	"pom.xml":            "maven",
	"build.gradle":       "gradle",
	"pyproject.toml":     "python-project",
	"manage.py":          "django",
	"requirements.txt":   "python-project",
	"serverless.yml":     "serverless",
	"dockerfile":         "docker",
}

// Detect classifies a file path into a language, family, and an optional
// framework signal. Unrecognized extensions map to FamilyUnknown.
func Detect(path string) Info {
	base := strings.ToLower(filepath.Base(path))

	info, ok := byExtension[strings.ToLower(filepath.Ext(base))]
	if !ok {
		// Extensionless well-known files.
		switch base {
		case "dockerfile", "makefile", "rakefile", "gemfile", "procfile":
			info = Info{Language: base, Family: FamilyConfig}
		case ".env", ".env.example", ".env.local":
			info = Info{Language: "dotenv", Family: FamilyConfig}
		default:
			info = Info{Language: "text", Family: FamilyUnknown}
		}
	}

	// .env.example and friends carry a non-.env extension.
	if strings.HasPrefix(base, ".env") {
		info = Info{Language: "dotenv", Family: FamilyConfig}
	}

	if fw, ok := frameworkHints[base]; ok {
		info.Framework = fw
	}
	return info
}

// HasGrammar reports whether a tree-sitter grammar binding exists for the
// detected language.
func HasGrammar(lang string) bool {
	switch lang {
	case "typescript", "tsx", "javascript", "java", "c", "rust", "php", "ruby", "python":
		return true
	}
	return false
}
