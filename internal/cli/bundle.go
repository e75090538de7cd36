package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/templar-dev/templar/internal/extract"
)

const (
	guideName    = "TEMPLATE.md"
	manifestName = "template.json"
)

// WriteBundle writes an extraction result to disk: the template files under
// their original relative paths, a TEMPLATE.md guide, and a machine-readable
// template.json manifest.
func WriteBundle(outDir string, res *extract.Result) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, file := range res.Files {
		target, err := bundlePath(outDir, file.Path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", file.Path, err)
		}
		if err := os.WriteFile(target, []byte(file.Content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", file.Path, err)
		}
	}

	guide := renderGuide(res)
	if err := os.WriteFile(filepath.Join(outDir, guideName), []byte(guide), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", guideName, err)
	}

	manifest, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", manifestName, err)
	}
	if err := os.WriteFile(filepath.Join(outDir, manifestName), append(manifest, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", manifestName, err)
	}

	return nil
}

// bundlePath resolves a template file path under outDir, rejecting paths
// that would escape it.
func bundlePath(outDir, path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("refusing to write outside output directory: %s", path)
	}
	return filepath.Join(outDir, clean), nil
}

// renderGuide builds the human-readable TEMPLATE.md companion.
func renderGuide(res *extract.Result) string {
	var b strings.Builder

	b.WriteString("# Project Template\n\n")
	fmt.Fprintf(&b, "Extraction mode: **%s**\n\n", res.Metadata.ModeUsed)

	if res.Structure != "" {
		b.WriteString("## Structure\n\n```\n")
		b.WriteString(res.Structure)
		b.WriteString("```\n\n")
	}

	if len(res.Instructions) > 0 {
		b.WriteString("## Getting started\n\n")
		for i, inst := range res.Instructions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, inst)
		}
		b.WriteString("\n")
	}

	if len(res.PlaceholderOrder) > 0 {
		b.WriteString("## Placeholders\n\n")
		b.WriteString("| Placeholder | Description |\n")
		b.WriteString("| --- | --- |\n")
		for _, key := range res.PlaceholderOrder {
			fmt.Fprintf(&b, "| `{{%s}}` | %s |\n", key, res.Placeholders[key])
		}
		b.WriteString("\n")
	}

	if len(res.Metadata.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range res.Metadata.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	return b.String()
}
