package steamgifts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// cookies are persisted as a flat name -> value json map, the same format
// older bots wrote and the one the COOKIES secret carries.

func LoadCookiesFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseCookies(raw)
}

// LoadCookiesEnv reads cookies from an environment secret, the
// deployment-injected alternative to a local cookie file.
func LoadCookiesEnv(name string) (map[string]string, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return nil, fmt.Errorf("environment variable %s is not set", name)
	}
	return parseCookies([]byte(raw))
}

func parseCookies(raw []byte) (map[string]string, error) {
	var cookies map[string]string
	err := json.Unmarshal(raw, &cookies)
	if err != nil {
		return nil, fmt.Errorf("cookies are not a json name/value map: %w", err)
	}
	return cookies, nil
}

func SaveCookiesFile(path string, cookies map[string]string) error {
	raw, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if dir != "." {
		err = os.MkdirAll(dir, 0o755)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(path, raw, 0o600)
}

// CaptureCookies opens a visible browser on the site, waits for the user to
// finish logging in (the nav avatar appearing), then reads the session
// cookies out of the browser.
func CaptureCookies(ctx context.Context, baseUrl string) (map[string]string, error) {
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	parsed, err := url.Parse(baseUrl)
	if err != nil {
		return nil, err
	}
	host := parsed.Hostname()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(
		ctx,
		append(
			chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", false),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	slog.Info("opening browser, log in and the cookies will be captured", "url", baseUrl)

	cookies := map[string]string{}
	err = chromedp.Run(
		browserCtx,
		chromedp.Navigate(baseUrl),
		chromedp.WaitVisible("a.nav__avatar", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			all, err := storage.GetCookies().Do(ctx)
			if err != nil {
				return err
			}
			for _, c := range all {
				if strings.Contains(c.Domain, host) {
					cookies[c.Name] = c.Value
				}
			}
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("no cookies captured for %s", host)
	}

	slog.Info("captured session cookies", "count", len(cookies))
	return cookies, nil
}
