package commands

import (
	"log/slog"
	"time"

	"sgautojoin/lib/serviceutil"
	"sgautojoin/services/autojoin"

	"github.com/spf13/cobra"
)

var joinLocal *bool

func init() {
	joinLocal = joinCmd.Flags().Bool("local", false, "Read session cookies from the local cookie file instead of the environment secret.")
	rootCmd.AddCommand(joinCmd)
}

var joinCmd = &cobra.Command{
	Use:   "join [--local]",
	Short: "Joins giveaways from the existing cache without fetching new listings.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		criteria, err := cfg.criteria()
		if err != nil {
			serviceutil.Fatal("invalid candidate criteria", err)
		}

		store, err := autojoin.LoadStore(cfg.DataFile)
		if err != nil {
			serviceutil.Fatal("failed to load giveaway cache", err)
		}

		now := time.Now()
		candidates, err := autojoin.SelectCandidates(store.Records(), criteria, now)
		if err != nil {
			serviceutil.Fatal("failed to select candidates", err)
		}
		if len(candidates) == 0 {
			slog.Info("no joinable giveaways match the criteria")
			return
		}
		renderCandidates(candidates, now)

		client := newSession(ctx, cfg, *joinLocal)

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
