package steamgifts

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"context"
	"log/slog"
	"sgautojoin/lib/htmlutil"
	"sgautojoin/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("sgautojoin/scrapers/steamgifts")

var ErrRateLimited = fmt.Errorf("steamgifts is rate limiting this session, wait a bit before running again")
var ErrLoginFailed = fmt.Errorf("steamgifts session is not logged in, capture fresh cookies")

const DefaultBaseUrl = "https://www.steamgifts.com"

type ClientOptions struct {
	BaseUrl string
	// session cookies as a name -> value map, the format the cookie
	// capture command writes
	Cookies map[string]string
}

// Client talks to steamgifts through one authenticated session. The xsrf
// token is fetched once by Bootstrap and reused for every entry submit.
type Client struct {
	BaseUrl   *url.URL
	Http      *resty.Client
	XsrfToken string
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	var cookies []*http.Cookie
	for name, value := range opts.Cookies {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value})
	}
	jar.SetCookies(baseUrl, cookies)
	client.SetCookieJar(jar)

	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/steamgifts/http")

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}

// Bootstrap fetches the landing page, verifies the cookies still belong to a
// logged-in account and pulls the anti-forgery token entry submits need.
func (c *Client) Bootstrap(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Bootstrap")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch landing page")
		return err
	}
	if res.StatusCode() == http.StatusTooManyRequests {
		span.SetStatus(codes.Error, ErrRateLimited.Error())
		return ErrRateLimited
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "landing page returned an error status")
		return fmt.Errorf("landing page returned %s", res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse landing page html")
		return err
	}

	if len(doc.Find("a.nav__avatar").Nodes) == 0 {
		span.SetStatus(codes.Error, ErrLoginFailed.Error())
		return ErrLoginFailed
	}

	token := doc.Find("input[name=xsrf_token]").AttrOr("value", "")
	if token == "" {
		span.SetStatus(codes.Error, "failed to find xsrf token")
		return ErrLoginFailed
	}

	c.XsrfToken = token
	slog.DebugContext(ctx, "session bootstrapped")
	return nil
}

// CurrentPoints scrapes the spendable balance from the navigation bar.
// Any failure reads as 0: treating an unknown balance as an empty one makes
// the entry loop halt instead of overspending.
func (c *Client) CurrentPoints(ctx context.Context) int {
	ctx, span := tracer.Start(ctx, "client:CurrentPoints")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "failed to fetch point balance", "err", err)
		return 0
	}
	if res.IsError() {
		slog.WarnContext(ctx, "point balance request rejected", "status", res.Status())
		return 0
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "failed to parse point balance page", "err", err)
		return 0
	}

	text := htmlutil.CleanText(doc.Find("span.nav__points").First().Text())
	points, err := strconv.Atoi(text)
	if err != nil {
		slog.WarnContext(ctx, "could not find points in the page", "text", text)
		return 0
	}
	return points
}
