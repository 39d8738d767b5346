package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"sgautojoin/lib/configutil"
	"sgautojoin/lib/scrapers/steamgifts"
	"sgautojoin/lib/serviceutil"
	"sgautojoin/services/autojoin"
)

type CriteriaConfig struct {
	SortKeys   []string `json:"sort_keys"`
	Descending bool     `json:"descending"`
	MinPoints  int      `json:"min_points"`
	MaxPoints  int      `json:"max_points"`
	// omit to disable the near-expiry window
	TimeWindowSeconds *int64   `json:"time_window_seconds"`
	AvoidTitles       []string `json:"avoid_titles"`
	AvoidSimilarity   float64  `json:"avoid_similarity"`
}

type Config struct {
	BaseUrl       string `json:"base_url"`
	CookiesFile   string `json:"cookies_file"`
	CookiesEnv    string `json:"cookies_env"`
	DataFile      string `json:"data_file"`
	MaxPages      int    `json:"max_pages"`
	PacingSeconds *int   `json:"pacing_seconds"`

	// omit to use the default near-expiry criteria
	Criteria *CriteriaConfig     `json:"criteria"`
	Smtp     autojoin.SmtpConfig `json:"smtp"`
}

func loadConfig() Config {
	cfg, err := configutil.ReadConfig[Config](*configFile)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file, using defaults", "path", *configFile)
	} else if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	if cfg.CookiesFile == "" {
		cfg.CookiesFile = "cookies/steamgifts.json"
	}
	if cfg.CookiesEnv == "" {
		cfg.CookiesEnv = "SG_COOKIES"
	}
	if cfg.DataFile == "" {
		cfg.DataFile = "data/giveaways.json"
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 5
	}
	return cfg
}

func (c Config) pacing() time.Duration {
	if c.PacingSeconds == nil {
		return autojoin.DefaultPacing
	}
	return time.Duration(*c.PacingSeconds) * time.Second
}

func (c Config) criteria() (autojoin.Criteria, error) {
	if c.Criteria == nil {
		return autojoin.DefaultCriteria(), nil
	}

	keys := make([]autojoin.SortKey, len(c.Criteria.SortKeys))
	for i, key := range c.Criteria.SortKeys {
		keys[i] = autojoin.SortKey(key)
	}
	if len(keys) == 0 {
		keys = autojoin.DefaultCriteria().SortKeys
	}

	criteria := autojoin.Criteria{
		SortKeys:          keys,
		Descending:        c.Criteria.Descending,
		MinPoints:         c.Criteria.MinPoints,
		MaxPoints:         c.Criteria.MaxPoints,
		TimeWindowSeconds: c.Criteria.TimeWindowSeconds,
		AvoidTitles:       c.Criteria.AvoidTitles,
		AvoidSimilarity:   c.Criteria.AvoidSimilarity,
	}
	return criteria, criteria.Validate()
}

// newSession builds the authenticated client and verifies the session is
// alive. Rate limiting during bootstrap aborts the process early with a
// distinct exit code, the way the site expects misbehaving bots to back off.
func newSession(ctx context.Context, cfg Config, local bool) *steamgifts.Client {
	var cookies map[string]string
	var err error
	if local {
		cookies, err = steamgifts.LoadCookiesFile(cfg.CookiesFile)
	} else {
		cookies, err = steamgifts.LoadCookiesEnv(cfg.CookiesEnv)
	}
	if err != nil {
		serviceutil.Fatal("failed to load session cookies", err)
	}

	client, err := steamgifts.NewClient(steamgifts.ClientOptions{
		BaseUrl: cfg.BaseUrl,
		Cookies: cookies,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize steamgifts client", err)
	}

	err = client.Bootstrap(ctx)
	if errors.Is(err, steamgifts.ErrRateLimited) {
		slog.Error("rate limited during session bootstrap, try again later")
		os.Exit(2)
	}
	if err != nil {
		serviceutil.Fatal("failed to bootstrap session", err)
	}
	return client
}
