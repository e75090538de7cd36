package redact

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// grammarRedactor strips function bodies using a tree-sitter grammar. Bodies
// are replaced with a TODO stub plus a type-aware placeholder return.
type grammarRedactor struct {
	spec grammarSpec
	opts Options
}

func newGrammarRedactor(spec grammarSpec, opts Options) *grammarRedactor {
	return &grammarRedactor{spec: spec, opts: opts}
}

func (g *grammarRedactor) Redact(path string, src []byte) (*Result, error) {
	tree, err := parseSource(g.spec.language(), path, src)
	if err != nil {
		// Grammar unavailable or parse refused: brace counting still works
		// for curly languages.
		return newBraceRedactor(g.spec.name, g.opts, true).Redact(path, src)
	}
	defer tree.Close()

	var repls []replacement
	count := 0

	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		kind := n.Kind()

		if !g.opts.IncludeTypes && g.spec.typeKinds[kind] {
			repls = append(repls, replacement{start: n.StartByte(), end: n.EndByte()})
			return false
		}

		if !g.spec.funcKinds[kind] {
			return true
		}

		body := n.ChildByFieldName("body")
		if body == nil {
			body = findChildOfKind(n, "body_statement")
		}
		if body == nil {
			return true // abstract/interface member without a body
		}

		if stub, ok := g.stubFor(n, body, src); ok {
			repls = append(repls, replacement{start: body.StartByte(), end: body.EndByte(), text: stub})
			count++
			return false // nested closures are already covered by this span
		}
		return true
	})

	content := applyReplacements(src, repls)
	if !g.opts.KeepComments {
		content = stripCommentLines(content, g.spec.comment)
	}

	return &Result{Content: content, RedactedFunctions: count}, nil
}

// stubFor builds the replacement text for one body node. Braced bodies keep
// their delimiters; keyword-delimited bodies (Ruby) are replaced in place.
func (g *grammarRedactor) stubFor(fn, body *sitter.Node, src []byte) (string, bool) {
	name := nodeName(fn, src)
	ret := g.stubReturn(fn, src)

	bodyText := nodeText(body, src)
	if strings.HasPrefix(bodyText, "{") {
		indent := lineIndent(src, fn.StartByte())
		var b strings.Builder
		b.WriteString("{\n")
		fmt.Fprintf(&b, "%s\t%s TODO: Implement %s\n", indent, g.spec.comment, name)
		if ret != "" {
			fmt.Fprintf(&b, "%s\t%s\n", indent, ret)
		}
		b.WriteString(indent + "}")
		return b.String(), true
	}

	if g.spec.name == "ruby" {
		bodyIndent := lineIndent(src, body.StartByte())
		return fmt.Sprintf("# TODO: Implement %s\n%snil", name, bodyIndent), true
	}

	// Expression-bodied arrow functions: nothing structural to preserve,
	// substitute the whole expression.
	switch g.spec.name {
	case "typescript", "tsx", "javascript":
		return fmt.Sprintf("undefined /* TODO: Implement %s */", name), true
	case "rust":
		return fmt.Sprintf("todo!() /* TODO: Implement %s */", name), true
	}
	return "", false
}

// stubReturn synthesizes the placeholder return statement for a function,
// empty when the declared return type is void-like.
func (g *grammarRedactor) stubReturn(fn *sitter.Node, src []byte) string {
	ret := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(
		nodeText(fn.ChildByFieldName(g.spec.returnField), src)), ":"))
	ret = strings.TrimSpace(ret)

	switch g.spec.name {
	case "typescript", "tsx", "javascript":
		switch {
		case strings.Contains(ret, "Promise") || isAsync(fn):
			return "return Promise.resolve(undefined);"
		case ret == "" || ret == "void" || ret == "never" || ret == "undefined":
			return ""
		default:
			return "return undefined;"
		}
	case "java":
		switch {
		case ret == "" || ret == "void":
			return ""
		case strings.Contains(ret, "Future"):
			return "return CompletableFuture.completedFuture(null);"
		case ret == "boolean":
			return "return false;"
		case isJavaNumeric(ret):
			return "return 0;"
		default:
			return "return null;"
		}
	case "c":
		if ret == "" || ret == "void" {
			return ""
		}
		return "return 0;"
	case "rust":
		if fn.ChildByFieldName("return_type") == nil {
			return ""
		}
		return "todo!()"
	case "php":
		if ret == "" || ret == "void" {
			return ""
		}
		return "return null;"
	}
	return ""
}

func isAsync(fn *sitter.Node) bool {
	for i := 0; i < int(fn.ChildCount()); i++ {
		if fn.Child(uint(i)).Kind() == "async" {
			return true
		}
	}
	return false
}

func isJavaNumeric(t string) bool {
	switch t {
	case "int", "long", "short", "byte", "double", "float", "char":
		return true
	}
	return false
}

func findChildOfKind(node *sitter.Node, kind string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(uint(i)); child.Kind() == kind {
			return child
		}
	}
	return nil
}

// stripCommentLines removes full-line comments, keeping the TODO markers
// the redactor itself inserted.
func stripCommentLines(content, leader string) string {
	lines := strings.Split(content, "\n")
	out := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, leader) && !strings.Contains(trimmed, "TODO: Implement") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
