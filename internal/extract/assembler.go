package extract

import (
	"sort"
	"strings"
)

// defaultInstructions seed the instruction list when the repository supplies
// none of its own.
var defaultInstructions = []string{
	"Review the template structure and remove anything you do not need",
	"Replace all {{PLACEHOLDER}} values with your project's details",
	"Install dependencies and verify the project builds",
}

// treeNode is one directory level of the rendered structure.
type treeNode struct {
	children map[string]*treeNode
	file     bool
}

// renderTree builds a nested, alphabetical text rendering of the surviving
// file paths.
func renderTree(paths []string) string {
	return renderTreeWith(paths, nil)
}

// renderTreeWith additionally inserts directory paths that kept no files,
// so the rendered structure mirrors the source layout.
func renderTreeWith(paths, dirs []string) string {
	root := &treeNode{children: map[string]*treeNode{}}
	insert := func(p string, file bool) {
		node := root
		segs := strings.Split(strings.Trim(p, "/"), "/")
		for i, seg := range segs {
			child, ok := node.children[seg]
			if !ok {
				child = &treeNode{children: map[string]*treeNode{}}
				node.children[seg] = child
			}
			if file && i == len(segs)-1 {
				child.file = true
			}
			node = child
		}
	}
	for _, d := range dirs {
		insert(d, false)
	}
	for _, p := range paths {
		insert(p, true)
	}

	var b strings.Builder
	writeTree(&b, root, 0)
	return b.String()
}

func writeTree(b *strings.Builder, node *treeNode, depth int) {
	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		child := node.children[name]
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(name)
		if !child.file {
			b.WriteString("/")
		}
		b.WriteString("\n")
		writeTree(b, child, depth+1)
	}
}

// buildInstructions assembles the ordered, de-duplicated instruction list:
// mode-specific guidance first, then the seed list (repo-supplied or
// default), then transformer/selector notes as NOTE: lines.
func buildInstructions(rc *RepoConfig, mode Mode, fellBack bool, notes []string) []string {
	var out []string

	if fellBack {
		out = append(out, "Fallback to copier mode was used; review copied files for sensitive logic")
	}
	if mode == ModeSkeleton {
		out = append(out, "Re-implement the TODO sections with your own logic")
	}

	seed := defaultInstructions
	if rc != nil && len(rc.Instructions) > 0 {
		seed = rc.Instructions
	}
	out = append(out, seed...)

	for _, n := range notes {
		out = append(out, "NOTE: "+n)
	}

	return dedupe(out)
}

func dedupe(items []string) []string {
	seen := map[string]bool{}
	out := items[:0]
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
