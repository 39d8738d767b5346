package commands

import (
	"context"
	"fmt"
	"os"

	"sgautojoin/lib/telemetry"

	"github.com/spf13/cobra"
)

var verbose *bool
var configFile *string

var rootCmd = &cobra.Command{
	Use:   "sgautojoin",
	Short: "sgautojoin enters near-expiry steamgifts giveaways within a points budget.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
	},
}

func init() {
	verbose = rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging.")
	configFile = rootCmd.PersistentFlags().String("config", "config.json5", "Path to the configuration file.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
