package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/templar-dev/templar/internal/githubrepo"
	"github.com/templar-dev/templar/internal/heuristics"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <owner/repo[@ref]>",
	Short: "Analyze a repository's structure without extracting it",
	Long: `Analyze lists a repository's tree and reports what templar would do
with it: detected language and framework, template worthiness, redaction
confidence, and the file patterns a skeleton extraction would select.

No file content is downloaded.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadToolConfig()
	if err != nil {
		return err
	}

	ref, err := githubrepo.ParseRepoRef(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client := githubrepo.NewClient(ctx, cfg.GitHub.Token)
	fetcher := githubrepo.NewFetcher(client, nil, nil)

	snap, _, err := fetcher.ListTree(ctx, ref)
	if err != nil {
		return err
	}

	analysis := heuristics.Analyze(snap.Listing)
	printAnalysis(cmd, ref, snap, analysis)
	return nil
}

func printAnalysis(cmd *cobra.Command, ref githubrepo.RepoRef, snap *githubrepo.Snapshot, a *heuristics.StructureAnalysis) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s at %s", ref, snap.Ref)))
	if snap.Identity.Description != "" {
		fmt.Fprintln(out, labelStyle.Render(snap.Identity.Description))
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Language:"), orUnknown(a.MainLanguage))
	if a.Framework != "" {
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Framework:"), a.Framework)
	}
	fmt.Fprintf(out, "%s %.2f\n", labelStyle.Render("Template worthiness:"), a.TemplateWorthiness)
	fmt.Fprintf(out, "%s %.2f\n", labelStyle.Render("Redaction confidence:"), a.RedactionConfidence)

	if len(a.KeyFiles) > 0 {
		fmt.Fprintf(out, "%s %v\n", labelStyle.Render("Key files:"), a.KeyFiles)
	}
	if len(a.RecommendedPatterns) > 0 {
		fmt.Fprintf(out, "%s %v\n", labelStyle.Render("Recommended patterns:"), a.RecommendedPatterns)
	}

	for _, insight := range a.Insights {
		fmt.Fprintln(out, "- "+insight)
	}
	for _, w := range a.Warnings {
		fmt.Fprintln(out, warningStyle.Render("warning: "+w))
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
