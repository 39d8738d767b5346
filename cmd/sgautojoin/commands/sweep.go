package commands

import (
	"log/slog"
	"time"

	"sgautojoin/lib/serviceutil"
	"sgautojoin/services/autojoin"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sweepCmd)
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Removes giveaways that have already ended from the cache.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		store, err := autojoin.LoadStore(cfg.DataFile)
		if err != nil {
			serviceutil.Fatal("failed to load giveaway cache", err)
		}

		removed, err := store.SweepExpired(time.Now())
		if err != nil {
			serviceutil.Fatal("failed to sweep expired records", err)
		}
		slog.Info("sweep finished", "removed", removed, "remaining", store.Len())
	},
}
