// Package cli wires templar's commands: extract, analyze, cache, version.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/templar-dev/templar/internal/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "templar",
	Short: "Templar - turn GitHub repositories into reusable project templates",
	Long: `Templar extracts reusable project templates from GitHub repositories.

It fetches a repository, selects the files that carry its structure, and
either copies them with identity scrubbing or strips implementation bodies
down to TODO stubs, depending on what the repository looks like.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .templar/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadToolConfig resolves the tool configuration, honoring the --config flag.
func loadToolConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFile(cfgFile)
	}
	return config.LoadConfig()
}
