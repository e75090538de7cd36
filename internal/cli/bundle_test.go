package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templar-dev/templar/internal/extract"
)

// Test Plan:
// - WriteBundle lays out template files under their relative paths
// - TEMPLATE.md carries structure, numbered instructions, and the
//   placeholder table in discovery order
// - template.json is valid and includes the file list
// - Paths escaping the output directory are rejected

func sampleResult() *extract.Result {
	return &extract.Result{
		Files: []extract.TemplateFile{
			{Path: "src/app.ts", Content: "// TODO: Implement main\n"},
			{Path: "package.json", Content: "{\n  \"name\": \"{{PROJECT_NAME}}\"\n}\n"},
		},
		Structure:    "package.json\nsrc/\n  app.ts\n",
		Instructions: []string{"Re-implement the TODO sections with your own logic", "Install dependencies and verify the project builds"},
		Placeholders: map[string]string{
			"PROJECT_NAME":  "The project name",
			"PROJECT_OWNER": "The repository owner",
		},
		PlaceholderOrder: []string{"PROJECT_NAME", "PROJECT_OWNER"},
		Metadata: extract.TemplateMetadata{
			ModeUsed:             extract.ModeSkeleton,
			RedactedFunctions:    1,
			TotalFilesConsidered: 2,
			Warnings:             []string{"something noteworthy"},
		},
	}
}

func TestWriteBundle(t *testing.T) {
	t.Parallel()

	outDir := filepath.Join(t.TempDir(), "bundle")
	require.NoError(t, WriteBundle(outDir, sampleResult()))

	content, err := os.ReadFile(filepath.Join(outDir, "src", "app.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "TODO: Implement main")

	_, err = os.Stat(filepath.Join(outDir, "package.json"))
	require.NoError(t, err)

	guide, err := os.ReadFile(filepath.Join(outDir, guideName))
	require.NoError(t, err)
	text := string(guide)
	assert.Contains(t, text, "## Structure")
	assert.Contains(t, text, "1. Re-implement the TODO sections")
	assert.Contains(t, text, "| `{{PROJECT_NAME}}` | The project name |")
	assert.Contains(t, text, "- something noteworthy")

	nameIdx := strings.Index(text, "{{PROJECT_NAME}}")
	ownerIdx := strings.Index(text, "{{PROJECT_OWNER}}")
	require.GreaterOrEqual(t, nameIdx, 0)
	require.GreaterOrEqual(t, ownerIdx, 0)
	assert.Less(t, nameIdx, ownerIdx, "placeholder table keeps discovery order")

	manifest, err := os.ReadFile(filepath.Join(outDir, manifestName))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), `"src/app.ts"`)
	assert.Contains(t, string(manifest), `"modeUsed": "skeleton"`)
}

func TestWriteBundle_RejectsEscapingPaths(t *testing.T) {
	t.Parallel()

	res := sampleResult()
	res.Files = append(res.Files, extract.TemplateFile{Path: "../outside.txt", Content: "nope"})

	outDir := filepath.Join(t.TempDir(), "bundle")
	err := WriteBundle(outDir, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside output directory")

	_, statErr := os.Stat(filepath.Join(filepath.Dir(outDir), "outside.txt"))
	assert.True(t, os.IsNotExist(statErr))
}
