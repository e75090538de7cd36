package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/templar-dev/templar/internal/fetchcache"
)

var pruneMaxAgeDays int

// cacheCmd groups blob cache maintenance commands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local blob cache",
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the cache database location",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadToolConfig()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cfg.CacheDBPath())
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete cache entries older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadToolConfig()
		if err != nil {
			return err
		}

		maxAgeDays := pruneMaxAgeDays
		if maxAgeDays == 0 {
			maxAgeDays = cfg.Cache.MaxAgeDays
		}

		store, err := fetchcache.Open(cfg.CacheDBPath())
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Prune(time.Duration(maxAgeDays) * 24 * time.Hour)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pruned %d entries older than %d days\n", n, maxAgeDays)
		return nil
	},
}

func init() {
	cachePruneCmd.Flags().IntVar(&pruneMaxAgeDays, "max-age-days", 0, "retention window in days (default: configured value)")

	cacheCmd.AddCommand(cachePathCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}
