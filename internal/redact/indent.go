package redact

import (
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// indentRedactor handles indentation-delimited languages. The tree-sitter
// python grammar locates def/class bodies; when the parse is unavailable
// the line scanner below produces the same stub contract.
type indentRedactor struct {
	opts Options
}

func newIndentRedactor(opts Options) *indentRedactor {
	return &indentRedactor{opts: opts}
}

var indentFuncKinds = map[string]bool{
	"function_definition": true,
	"class_definition":    true,
}

func (r *indentRedactor) Redact(path string, src []byte) (*Result, error) {
	tree, err := parseSource(pythonLanguage(), path, src)
	if err != nil {
		return r.scan(src), nil
	}
	defer tree.Close()

	var repls []replacement
	count := 0

	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		if !indentFuncKinds[n.Kind()] {
			return true
		}
		body := n.ChildByFieldName("body")
		if body == nil {
			return true
		}

		name := nodeName(n, src)
		var stubIndent string
		if body.StartPosition().Row == n.StartPosition().Row {
			// Inline body (def f(): return 1): stub goes on its own lines,
			// one level below the header.
			stubIndent = lineIndent(src, n.StartByte()) + "    "
			repls = append(repls, replacement{
				start: body.StartByte(),
				end:   body.EndByte(),
				text:  fmt.Sprintf("# TODO: Implement %s\n%spass", name, stubIndent),
			})
		} else {
			stubIndent = lineIndent(src, body.StartByte())
			repls = append(repls, replacement{
				start: body.StartByte(),
				end:   body.EndByte(),
				text:  fmt.Sprintf("# TODO: Implement %s\n%spass", name, stubIndent),
			})
		}
		count++
		return false
	})

	content := applyReplacements(src, repls)
	if !r.opts.KeepComments {
		content = stripCommentLines(content, "#")
	}
	return &Result{Content: content, RedactedFunctions: count}, nil
}

var indentHeaderRe = regexp.MustCompile(`^([ \t]*)(?:async[ \t]+)?(?:def|class)[ \t]+([A-Za-z_]\w*)`)

// scan is the grammarless fallback: emit each def/class header unchanged,
// emit an indented TODO comment plus a pass statement, then skip every
// following line indented strictly deeper than the header. Blank lines do
// not terminate the skip.
func (r *indentRedactor) scan(src []byte) *Result {
	lines := strings.Split(string(src), "\n")
	var out []string
	count := 0

	for i := 0; i < len(lines); {
		m := indentHeaderRe.FindStringSubmatch(lines[i])
		if m == nil {
			out = append(out, lines[i])
			i++
			continue
		}

		indent, name := m[1], m[2]

		// Emit the header, consuming continuation lines until the colon
		// that opens the body. Anything inline after the colon is body.
		for i < len(lines) {
			line := lines[i]
			i++
			if idx := strings.LastIndexByte(line, ':'); idx >= 0 {
				out = append(out, line[:idx+1])
				break
			}
			out = append(out, line)
		}

		count++
		out = append(out, indent+"    # TODO: Implement "+name)
		out = append(out, indent+"    pass")

		for i < len(lines) {
			line := lines[i]
			if strings.TrimSpace(line) == "" {
				i++
				continue
			}
			if indentWidth(line) > len(indent) {
				i++
				continue
			}
			break
		}
	}

	content := strings.Join(out, "\n")
	if !r.opts.KeepComments {
		content = stripCommentLines(content, "#")
	}
	return &Result{Content: content, RedactedFunctions: count}
}

func indentWidth(line string) int {
	n := 0
	for _, c := range line {
		if c != ' ' && c != '\t' {
			break
		}
		n++
	}
	return n
}
