package redact

import (
	"fmt"
	"sort"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// parseSource parses source with the given grammar and returns the tree.
// The caller must Close the returned tree.
func parseSource(lang *sitter.Language, path string, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(lang)

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s", path)
	}
	return tree, nil
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for
// each node. Returning false from the visitor skips the node's children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(uint(i)), visitor)
	}
}

// nodeText extracts the text content of a tree-sitter node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// nodeName resolves the display name of a function-like node: its own name
// field, or the binding it is assigned to (const f = () => {}), or the
// property key it hangs on.
func nodeName(node *sitter.Node, source []byte) string {
	if name := nodeText(node.ChildByFieldName("name"), source); name != "" {
		return name
	}

	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		switch parent.Kind() {
		case "variable_declarator", "assignment_expression":
			if name := nodeText(parent.ChildByFieldName("name"), source); name != "" {
				return name
			}
			if name := nodeText(parent.ChildByFieldName("left"), source); name != "" {
				return name
			}
		case "pair":
			if name := nodeText(parent.ChildByFieldName("key"), source); name != "" {
				return name
			}
		case "statement_block", "class_body", "program":
			return "anonymous"
		}
	}
	return "anonymous"
}

// lineIndent returns the leading whitespace of the line containing byte
// offset pos.
func lineIndent(src []byte, pos uint) string {
	start := int(pos)
	if start > len(src) {
		start = len(src)
	}
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return string(src[start:end])
}

// replacement is one byte-span substitution against the original source.
type replacement struct {
	start, end uint
	text       string
}

// applyReplacements rebuilds source with all substitutions applied.
// Spans must not overlap.
func applyReplacements(src []byte, repls []replacement) string {
	sort.Slice(repls, func(i, j int) bool { return repls[i].start < repls[j].start })

	var out []byte
	var cursor uint
	for _, r := range repls {
		if r.start < cursor {
			continue // overlapping span, keep the outer replacement
		}
		out = append(out, src[cursor:r.start]...)
		out = append(out, r.text...)
		cursor = r.end
	}
	out = append(out, src[cursor:]...)
	return string(out)
}

// grammarSpec binds one curly-family language to its tree-sitter grammar
// and the node kinds whose bodies are redactable.
type grammarSpec struct {
	name        string
	language    func() *sitter.Language
	funcKinds   map[string]bool
	typeKinds   map[string]bool // removable when IncludeTypes is off
	returnField string
	comment     string // line comment leader
}

var tsFuncKinds = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"method_definition":              true,
	"function_expression":            true,
	"arrow_function":                 true,
}

var grammarSpecs = map[string]grammarSpec{
	"typescript": {
		name:        "typescript",
		language:    func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTypescript()) },
		funcKinds:   tsFuncKinds,
		typeKinds:   map[string]bool{"interface_declaration": true, "type_alias_declaration": true},
		returnField: "return_type",
		comment:     "//",
	},
	"tsx": {
		name:        "tsx",
		language:    func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTSX()) },
		funcKinds:   tsFuncKinds,
		typeKinds:   map[string]bool{"interface_declaration": true, "type_alias_declaration": true},
		returnField: "return_type",
		comment:     "//",
	},
	"javascript": {
		// The TypeScript grammar is a strict superset of JavaScript.
		name:        "javascript",
		language:    func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTypescript()) },
		funcKinds:   tsFuncKinds,
		returnField: "return_type",
		comment:     "//",
	},
	"java": {
		name:     "java",
		language: func() *sitter.Language { return sitter.NewLanguage(java.Language()) },
		funcKinds: map[string]bool{
			"method_declaration":      true,
			"constructor_declaration": true,
		},
		returnField: "type",
		comment:     "//",
	},
	"c": {
		name:        "c",
		language:    func() *sitter.Language { return sitter.NewLanguage(c.Language()) },
		funcKinds:   map[string]bool{"function_definition": true},
		returnField: "type",
		comment:     "//",
	},
	"rust": {
		name:        "rust",
		language:    func() *sitter.Language { return sitter.NewLanguage(rust.Language()) },
		funcKinds:   map[string]bool{"function_item": true, "closure_expression": true},
		returnField: "return_type",
		comment:     "//",
	},
	"php": {
		name:     "php",
		language: func() *sitter.Language { return sitter.NewLanguage(php.LanguagePHP()) },
		funcKinds: map[string]bool{
			"function_definition": true,
			"method_declaration":  true,
		},
		returnField: "return_type",
		comment:     "//",
	},
	"ruby": {
		name:     "ruby",
		language: func() *sitter.Language { return sitter.NewLanguage(ruby.Language()) },
		funcKinds: map[string]bool{
			"method":           true,
			"singleton_method": true,
		},
		comment: "#",
	},
}

// pythonLanguage is shared by the indentation strategy's grammar pre-pass.
func pythonLanguage() *sitter.Language {
	return sitter.NewLanguage(python.Language())
}
