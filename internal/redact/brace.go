package redact

import (
	"fmt"
	"regexp"
	"strings"
)

// braceRedactor locates function-like constructs by header heuristics and
// strips everything between the opening brace and its match, tracked with a
// running depth counter. Used for brace languages without a grammar binding
// and as the parse-failure fallback for curly languages.
type braceRedactor struct {
	lang      string
	opts      Options
	typeAware bool // curly-family fallback keeps the return-stub contract
}

func newBraceRedactor(lang string, opts Options, typeAware bool) *braceRedactor {
	return &braceRedactor{lang: lang, opts: opts, typeAware: typeAware}
}

// Keyword-led function headers: func/fn/function/fun, optionally prefixed
// by modifiers, with an optional Go-style receiver before the name.
var keywordHeaderRe = regexp.MustCompile(
	`(?:^|\s)(?:func|fn|function|fun)\s+(?:\([^)]*\)\s*)?([A-Za-z_]\w*)`)

// Declaration-style headers: modifiers/types then name(args). The name must
// not be a control-flow keyword.
var declHeaderRe = regexp.MustCompile(
	`^\s*(?:[\w\[\]<>,\.\*&:?]+\s+)+\*?([A-Za-z_]\w*)\s*\(`)

// Method-shorthand headers: name(args) { at line start (class bodies). The
// brace must sit on the same line or a plain call statement would match.
var shorthandHeaderRe = regexp.MustCompile(
	`^\s*(?:async\s+)?([A-Za-z_]\w*)\s*\([^)]*\)\s*(?::[^{;]+)?\{\s*$`)

var controlKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"return": true, "else": true, "do": true, "select": true, "defer": true,
	"new": true, "throw": true, "typeof": true, "await": true,
}

func (b *braceRedactor) Redact(_ string, src []byte) (*Result, error) {
	text := string(src)
	var out strings.Builder
	count := 0

	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); {
		line := lines[i]

		name, ok := b.headerName(line)
		if !ok {
			out.WriteString(line)
			if i < len(lines)-1 {
				out.WriteByte('\n')
			}
			i++
			continue
		}

		// Find the opening brace: same line or a short lookahead. A ';'
		// first means a prototype, not a definition.
		openLine, openCol, found := findOpenBrace(lines, i)
		if !found {
			out.WriteString(line)
			if i < len(lines)-1 {
				out.WriteByte('\n')
			}
			i++
			continue
		}

		// Emit header lines up to and including the opening brace.
		for j := i; j < openLine; j++ {
			out.WriteString(lines[j])
			out.WriteByte('\n')
		}
		out.WriteString(lines[openLine][:openCol+1])

		indent := leadingWhitespace(line)
		out.WriteByte('\n')
		fmt.Fprintf(&out, "%s\t// TODO: Implement %s\n", indent, name)
		if ret := b.returnStub(line); ret != "" {
			fmt.Fprintf(&out, "%s\t%s\n", indent, ret)
		}
		out.WriteString(indent + "}")

		endLine, endCol := matchBrace(lines, openLine, openCol)
		count++

		// Anything after the closing brace on its line survives.
		rest := ""
		if endLine < len(lines) && endCol+1 < len(lines[endLine]) {
			rest = lines[endLine][endCol+1:]
		}
		out.WriteString(rest)
		if endLine < len(lines)-1 {
			out.WriteByte('\n')
		}
		i = endLine + 1
	}

	content := out.String()
	if !b.opts.KeepComments {
		content = stripCommentLines(content, "//")
	}
	return &Result{Content: content, RedactedFunctions: count}, nil
}

// headerName decides whether a line opens a function-like construct and
// extracts the symbol name.
func (b *braceRedactor) headerName(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") ||
		strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "#") {
		return "", false
	}
	if !strings.Contains(line, "(") {
		return "", false
	}

	if m := keywordHeaderRe.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	if m := declHeaderRe.FindStringSubmatch(line); m != nil && !controlKeywords[m[1]] {
		// Declarations that close with ';' on the same line are prototypes.
		if !strings.Contains(line, ";") {
			return m[1], true
		}
	}
	if m := shorthandHeaderRe.FindStringSubmatch(line); m != nil && !controlKeywords[m[1]] {
		return m[1], true
	}
	return "", false
}

// returnStub guesses a placeholder return from the header text alone.
// Only the curly-family fallback synthesizes returns; generic brace
// languages get the bare TODO comment.
func (b *braceRedactor) returnStub(header string) string {
	if !b.typeAware {
		return ""
	}
	switch {
	case strings.Contains(header, "Promise<") || strings.Contains(header, "async "):
		return "return Promise.resolve(undefined);"
	case strings.Contains(header, ": void") || strings.Contains(header, " void "):
		return ""
	case regexp.MustCompile(`\)\s*:\s*\w`).MatchString(header):
		return "return undefined;"
	default:
		return ""
	}
}

// findOpenBrace scans from the header line for the first '{', giving up at
// a ';' or after a short lookahead window.
func findOpenBrace(lines []string, start int) (line, col int, ok bool) {
	const lookahead = 3
	for i := start; i < len(lines) && i <= start+lookahead; i++ {
		for j := 0; j < len(lines[i]); j++ {
			switch lines[i][j] {
			case '{':
				return i, j, true
			case ';':
				return 0, 0, false
			}
		}
	}
	return 0, 0, false
}

// matchBrace finds the closing brace matching the opener at (line, col)
// with a running depth counter. String and comment contexts are not
// tracked; this is a heuristic, and a transform that goes wrong is caught
// upstream by the per-file failure recovery.
func matchBrace(lines []string, line, col int) (int, int) {
	depth := 0
	for i := line; i < len(lines); i++ {
		j := 0
		if i == line {
			j = col
		}
		for ; j < len(lines[i]); j++ {
			switch lines[i][j] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return i, j
				}
			}
		}
	}
	// Unbalanced source: treat the rest of the file as the body.
	return len(lines) - 1, maxInt(len(lines[len(lines)-1])-1, 0)
}

func leadingWhitespace(line string) string {
	for i, c := range line {
		if c != ' ' && c != '\t' {
			return line[:i]
		}
	}
	return line
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
