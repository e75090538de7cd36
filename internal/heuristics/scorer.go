package heuristics

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/templar-dev/templar/internal/language"
)

// TreeEntry is one row of a repository file listing. No content is needed
// for analysis.
type TreeEntry struct {
	Path string
	Dir  bool
}

// StructureAnalysis summarizes what a repository looks like and how suitable
// it is as a template source. Worthiness and redaction confidence are
// directional heuristics, not calibrated probabilities: callers must only
// rely on ranges and monotonic relationships.
type StructureAnalysis struct {
	MainLanguage        string
	Framework           string
	KeyFiles            []string
	Directories         []string
	RecommendedPatterns []string
	TemplateWorthiness  float64 // clamped to [0.05, 0.95]
	RedactionConfidence float64 // clamped to [0.1, 0.9]
	Insights            []string
	Warnings            []string
	Heuristics          map[string]int
}

// Named regex families for categorizing paths. Tunable constants; validated
// only by relative and range tests.
var (
	configRe   = regexp.MustCompile(`(?i)(^|/)(package\.json|go\.mod|cargo\.toml|composer\.json|pyproject\.toml|requirements\.txt|gemfile|pom\.xml|build\.gradle|tsconfig\.json|\.babelrc|webpack\.config|vite\.config|next\.config|\.eslintrc|dockerfile|docker-compose|makefile|[^/]*\.(ya?ml|toml|ini|env|properties))`)
	docsRe     = regexp.MustCompile(`(?i)(^|/)(readme|changelog|contributing|license|docs?/|[^/]*\.(md|rst|adoc|txt))`)
	testsRe    = regexp.MustCompile(`(?i)(^|/)(tests?/|__tests__/|spec/|e2e/)|[._-](test|spec)\.[a-z]+$|_test\.go$`)
	fixturesRe = regexp.MustCompile(`(?i)(^|/)(fixtures?|testdata|mocks?|__mocks__|seeds?|samples?|stories)(/|$)|\.stories\.[a-z]+$`)
	logicRe    = regexp.MustCompile(`(?i)(^|/)(services?|controllers?|handlers?|routes?|pipelines?|workers?|jobs?|usecases?|domain|business|core|logic)(/|$)`)
	uiRe       = regexp.MustCompile(`(?i)(^|/)(components?|pages?|views?|layouts?|screens?|widgets?|styles?)(/|$)|\.(css|scss|less|vue|svelte)$`)
	infraRe    = regexp.MustCompile(`(?i)(^|/)(\.github/|\.gitlab|terraform|ansible|helm|k8s|kubernetes|deploy|infra)(/|$)?|\.tf$`)
)

var keyFileNames = map[string]bool{
	"package.json":     true,
	"go.mod":           true,
	"cargo.toml":       true,
	"composer.json":    true,
	"pyproject.toml":   true,
	"requirements.txt": true,
	"gemfile":          true,
	"pom.xml":          true,
	"tsconfig.json":    true,
	"dockerfile":       true,
	"readme.md":        true,
	"makefile":         true,
}

// Analyze scores a repository listing along independent axes and derives a
// template-worthiness estimate, a redaction-confidence estimate, and a
// recommended include-pattern set.
func Analyze(entries []TreeEntry) *StructureAnalysis {
	a := &StructureAnalysis{
		Heuristics: map[string]int{
			"config":   0,
			"docs":     0,
			"tests":    0,
			"fixtures": 0,
			"logic":    0,
			"ui":       0,
			"infra":    0,
			"code":     0,
		},
	}

	langCounts := map[string]int{}
	seenDirs := map[string]bool{}

	for _, e := range entries {
		if e.Dir {
			top := topSegment(e.Path)
			if top != "" && !seenDirs[top] {
				seenDirs[top] = true
				a.Directories = append(a.Directories, top)
			}
			continue
		}

		p := e.Path
		if configRe.MatchString(p) {
			a.Heuristics["config"]++
		}
		if docsRe.MatchString(p) {
			a.Heuristics["docs"]++
		}
		if testsRe.MatchString(p) {
			a.Heuristics["tests"]++
		}
		if fixturesRe.MatchString(p) {
			a.Heuristics["fixtures"]++
		}
		if logicRe.MatchString(p) {
			a.Heuristics["logic"]++
		}
		if uiRe.MatchString(p) {
			a.Heuristics["ui"]++
		}
		if infraRe.MatchString(p) {
			a.Heuristics["infra"]++
		}

		info := language.Detect(p)
		switch info.Family {
		case language.FamilyCurly, language.FamilyIndent, language.FamilyGenericBrace:
			a.Heuristics["code"]++
			langCounts[info.Language]++
		}
		if info.Framework != "" && a.Framework == "" {
			a.Framework = info.Framework
		}

		base := strings.ToLower(filepath.Base(p))
		if keyFileNames[base] {
			a.KeyFiles = append(a.KeyFiles, p)
		}
	}

	sort.Strings(a.Directories)
	a.MainLanguage = dominantLanguage(langCounts)
	a.RecommendedPatterns = recommendPatterns(a.MainLanguage, a.Heuristics)
	a.TemplateWorthiness = worthiness(a.Heuristics)
	a.RedactionConfidence = redactionConfidence(a.MainLanguage, a.Heuristics)
	a.Insights = insights(a)

	if a.Heuristics["code"] == 0 {
		a.Warnings = append(a.Warnings, "no recognizable source files found")
	}
	if len(a.KeyFiles) == 0 {
		a.Warnings = append(a.Warnings, "no project manifest found; structure may be unusual")
	}

	return a
}

// worthiness is purely additive with fixed weights. Manifests, docs and a
// clear structure raise the score; a fixture-heavy or code-free tree lowers
// it. The weights are ad hoc; only monotonicity is promised.
func worthiness(h map[string]int) float64 {
	score := 0.2
	score += 0.08 * float64(min(h["config"], 5))
	score += 0.04 * float64(min(h["docs"], 5))
	score += 0.02 * float64(min(h["code"], 10))
	score += 0.03 * float64(min(h["ui"], 5))
	score -= 0.03 * float64(min(h["fixtures"], 5))
	if h["code"] == 0 {
		score -= 0.2
	}
	return clamp(score, 0.05, 0.95)
}

// redactionConfidence estimates how safely skeleton mode can strip logic.
// Grammar-backed languages and logic-light trees redact more safely.
func redactionConfidence(mainLang string, h map[string]int) float64 {
	score := 0.3
	if language.HasGrammar(mainLang) {
		score += 0.25
	}
	score += 0.02 * float64(min(h["config"], 5))
	score -= 0.04 * float64(min(h["logic"], 5))
	if h["code"] == 0 {
		score -= 0.2
	}
	return clamp(score, 0.1, 0.9)
}

func recommendPatterns(mainLang string, h map[string]int) []string {
	patterns := []string{"**/*.md", "**/*.json", "**/*.yml", "**/*.yaml", "**/*.toml"}

	switch mainLang {
	case "typescript", "tsx", "javascript":
		patterns = append(patterns, "**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx", "**/*.css")
	case "python":
		patterns = append(patterns, "**/*.py", "**/*.cfg", "**/*.txt")
	case "go":
		patterns = append(patterns, "**/*.go")
	case "rust":
		patterns = append(patterns, "**/*.rs")
	case "java":
		patterns = append(patterns, "**/*.java", "**/*.gradle", "**/*.xml")
	case "ruby":
		patterns = append(patterns, "**/*.rb", "Gemfile")
	case "c", "cpp":
		patterns = append(patterns, "**/*.c", "**/*.h", "**/*.cpp", "**/*.hpp")
	case "php":
		patterns = append(patterns, "**/*.php")
	default:
		patterns = append(patterns, "**/*")
	}

	if h["infra"] > 0 {
		patterns = append(patterns, "**/Dockerfile", "**/*.tf")
	}
	return patterns
}

func insights(a *StructureAnalysis) []string {
	var out []string
	if a.MainLanguage != "" {
		out = append(out, fmt.Sprintf("primary language: %s", a.MainLanguage))
	}
	if a.Framework != "" {
		out = append(out, fmt.Sprintf("framework signal: %s", a.Framework))
	}
	h := a.Heuristics
	if h["tests"] > h["code"]/2 && h["tests"] > 0 {
		out = append(out, "test-heavy repository; skeleton mode will drop most test files")
	}
	if h["logic"] > 3 {
		out = append(out, "significant business-logic directories detected")
	}
	if h["ui"] > 3 {
		out = append(out, "UI-heavy repository; component structure is the main template value")
	}
	return out
}

func dominantLanguage(counts map[string]int) string {
	best, bestCount := "", 0
	// Deterministic tie-break by name.
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if counts[name] > bestCount {
			best, bestCount = name, counts[name]
		}
	}
	return best
}

func topSegment(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.IndexByte(path, '/'); i > 0 {
		return path[:i]
	}
	return path
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
