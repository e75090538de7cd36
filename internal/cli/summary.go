package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/templar-dev/templar/internal/extract"
	"github.com/templar-dev/templar/internal/githubrepo"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// printSummary renders the post-extraction report.
func printSummary(cmd *cobra.Command, ref githubrepo.RepoRef, res *extract.Result, outDir string) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Template extracted from %s", ref)))
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Mode:"), res.Metadata.ModeUsed)
	if res.Metadata.FallbackReason != "" {
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Fallback:"), res.Metadata.FallbackReason)
	}
	fmt.Fprintf(out, "%s %d of %d considered\n", labelStyle.Render("Files:"), len(res.Files), res.Metadata.TotalFilesConsidered)
	if res.Metadata.ModeUsed == extract.ModeSkeleton {
		fmt.Fprintf(out, "%s %d\n", labelStyle.Render("Redacted functions:"), res.Metadata.RedactedFunctions)
	}
	fmt.Fprintf(out, "%s %d\n", labelStyle.Render("Placeholders:"), len(res.Placeholders))

	for _, w := range res.Metadata.Warnings {
		fmt.Fprintln(out, warningStyle.Render("warning: "+w))
	}

	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Written to:"), pathStyle.Render(outDir))
}
