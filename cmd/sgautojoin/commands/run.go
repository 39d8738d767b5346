package commands

import (
	"log/slog"
	"time"

	"sgautojoin/lib/serviceutil"
	"sgautojoin/services/autojoin"

	"github.com/spf13/cobra"
)

var runMaxPages *int
var runLocal *bool

func init() {
	runMaxPages = runCmd.Flags().Int("max-pages", 0, "Maximum listing pages to fetch, overrides the config.")
	runLocal = runCmd.Flags().Bool("local", false, "Read session cookies from the local cookie file instead of the environment secret.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--max-pages <n>] [--local]",
	Short: "Fetches the active listings, updates the cache and joins what the budget allows.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		// fail fast on a bad filter before touching the network
		criteria, err := cfg.criteria()
		if err != nil {
			serviceutil.Fatal("invalid candidate criteria", err)
		}

		maxPages := cfg.MaxPages
		if *runMaxPages > 0 {
			maxPages = *runMaxPages
		}

		client := newSession(ctx, cfg, *runLocal)

		listings, err := client.FetchAll(ctx, maxPages, cfg.pacing())
		if err != nil {
			serviceutil.Fatal("failed to fetch giveaway listings", err)
		}

		store, err := autojoin.LoadStore(cfg.DataFile)
		if err != nil {
			serviceutil.Fatal("failed to load giveaway cache", err)
		}

		now := time.Now()
		err = store.MergeAll(autojoin.RecordsFromListings(listings), now)
		if err != nil {
			serviceutil.Fatal("failed to merge fetched listings", err)
		}
		removed, err := store.SweepExpired(now)
		if err != nil {
			serviceutil.Fatal("failed to sweep expired records", err)
		}
		slog.Info("cache updated", "records", store.Len(), "expired_removed", removed)

		candidates, err := autojoin.SelectCandidates(store.Records(), criteria, now)
		if err != nil {
			serviceutil.Fatal("failed to select candidates", err)
		}
		if len(candidates) == 0 {
			slog.Info("no joinable giveaways match the criteria")
			return
		}

		summary := autojoin.ProcessAndJoinAll(
			ctx,
			candidates,
			autojoin.SiteProbe{Client: client},
			store,
			autojoin.ProcessOptions{Pacing: cfg.pacing()},
		)
		renderSummary(summary)

		if cfg.Smtp.Enabled() {
			err := autojoin.SendRunReport(ctx, cfg.Smtp, summary)
			if err != nil {
				slog.Error("failed to mail run report", "err", err)
			}
		}
	},
}
