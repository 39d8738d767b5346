package commands

import (
	"log/slog"
	"time"

	"sgautojoin/lib/serviceutil"
	"sgautojoin/services/autojoin"

	"github.com/spf13/cobra"
)

var fetchMaxPages *int
var fetchLocal *bool

func init() {
	fetchMaxPages = fetchCmd.Flags().Int("max-pages", 0, "Maximum listing pages to fetch, overrides the config.")
	fetchLocal = fetchCmd.Flags().Bool("local", false, "Read session cookies from the local cookie file instead of the environment secret.")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [--max-pages <n>] [--local]",
	Short: "Fetches the active listings and merges them into the cache without joining anything.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		maxPages := cfg.MaxPages
		if *fetchMaxPages > 0 {
			maxPages = *fetchMaxPages
		}

		client := newSession(ctx, cfg, *fetchLocal)

		listings, err := client.FetchAll(ctx, maxPages, cfg.pacing())
		if err != nil {
			serviceutil.Fatal("failed to fetch giveaway listings", err)
		}

		store, err := autojoin.LoadStore(cfg.DataFile)
		if err != nil {
			serviceutil.Fatal("failed to load giveaway cache", err)
		}
		err = store.MergeAll(autojoin.RecordsFromListings(listings), time.Now())
		if err != nil {
			serviceutil.Fatal("failed to merge fetched listings", err)
		}

		slog.Info(
			"cache updated",
			"fetched", len(listings),
			"records", store.Len(),
			"path", cfg.DataFile,
		)
	},
}
