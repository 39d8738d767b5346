package commands

import (
	"log/slog"

	"sgautojoin/lib/scrapers/steamgifts"
	"sgautojoin/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cookiesCmd)
}

var cookiesCmd = &cobra.Command{
	Use:   "cookies",
	Short: "Opens a browser to log in and captures the session cookies into the local cookie file.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		cookies, err := steamgifts.CaptureCookies(ctx, cfg.BaseUrl)
		if err != nil {
			serviceutil.Fatal("failed to capture cookies", err)
		}

		err = steamgifts.SaveCookiesFile(cfg.CookiesFile, cookies)
		if err != nil {
			serviceutil.Fatal("failed to save cookies", err)
		}
		slog.Info("cookies saved", "path", cfg.CookiesFile)
	},
}
