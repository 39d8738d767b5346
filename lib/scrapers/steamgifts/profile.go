package steamgifts

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"sgautojoin/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

type Profile struct {
	Username string
	Points   int
}

// Profile scrapes the logged-in account from the landing page navigation.
// A missing avatar anchor means the cookies no longer carry a session.
func (c *Client) Profile(ctx context.Context) (Profile, error) {
	ctx, span := tracer.Start(ctx, "client:Profile")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch landing page")
		return Profile{}, err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "landing page returned an error status")
		return Profile{}, fmt.Errorf("landing page returned %s", res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse landing page html")
		return Profile{}, err
	}

	avatar := doc.Find("a.nav__avatar").First()
	if len(avatar.Nodes) == 0 {
		span.SetStatus(codes.Error, ErrLoginFailed.Error())
		return Profile{}, ErrLoginFailed
	}

	href := avatar.AttrOr("href", "")
	username := strings.Trim(strings.TrimPrefix(href, "/user/"), "/")

	points := 0
	text := htmlutil.CleanText(doc.Find("span.nav__points").First().Text())
	if parsed, err := strconv.Atoi(text); err == nil {
		points = parsed
	}

	return Profile{
		Username: username,
		Points:   points,
	}, nil
}
