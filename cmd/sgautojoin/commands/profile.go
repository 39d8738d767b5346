package commands

import (
	"fmt"

	"sgautojoin/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var profileLocal *bool
var pointsLocal *bool

func init() {
	profileLocal = profileCmd.Flags().Bool("local", false, "Read session cookies from the local cookie file instead of the environment secret.")
	pointsLocal = pointsCmd.Flags().Bool("local", false, "Read session cookies from the local cookie file instead of the environment secret.")
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(pointsCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile [--local]",
	Short: "Prints the logged-in steamgifts profile.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()
		client := newSession(ctx, cfg, *profileLocal)

		profile, err := client.Profile(ctx)
		if err != nil {
			serviceutil.Fatal("failed to scrape profile", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Username", "Points"})
		t.AppendRow(table.Row{profile.Username, profile.Points})
		t.Render()
	},
}

var pointsCmd = &cobra.Command{
	Use:   "points [--local]",
	Short: "Prints the current spendable point balance.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()
		client := newSession(ctx, cfg, *pointsLocal)

		fmt.Println(client.CurrentPoints(ctx))
	},
}
