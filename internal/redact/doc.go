package redact

import (
	"path/filepath"
	"regexp"
	"strings"
)

// docRedactor collapses documentation and unrecognized text files to a stub:
// leading import/include-style lines survive verbatim, followed by a single
// TODO comment in extension-appropriate syntax.
type docRedactor struct {
	opts Options
}

var importLineRe = regexp.MustCompile(
	`^\s*(import\b|from\s+\S+\s+import\b|#include\b|require\s*\(|using\s+\w|package\s+\w)`)

func (d docRedactor) Redact(path string, src []byte) (*Result, error) {
	lines := strings.Split(string(src), "\n")

	var kept []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" && len(kept) == 0 {
			continue
		}
		if importLineRe.MatchString(line) {
			kept = append(kept, line)
			continue
		}
		break
	}

	kept = append(kept, todoComment(path))
	return &Result{Content: strings.Join(kept, "\n") + "\n"}, nil
}

// todoComment picks a comment syntax by file extension.
func todoComment(path string) string {
	const msg = "TODO: Add your content here"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".html", ".xml", ".adoc":
		return "<!-- " + msg + " -->"
	case ".py", ".rb", ".sh", ".yml", ".yaml", ".toml", ".txt", ".rst", "":
		return "# " + msg
	default:
		return "// " + msg
	}
}
