package steamgifts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type ListingCreator struct {
	Id       int64  `json:"id"`
	SteamId  string `json:"steam_id"`
	Username string `json:"username"`
}

// Listing is one result row of the json listing api. Field names follow the
// wire format.
type Listing struct {
	Id               int64           `json:"id"`
	Name             string          `json:"name"`
	Points           int             `json:"points"`
	Copies           int             `json:"copies"`
	AppId            *int64          `json:"app_id"`
	PackageId        *int64          `json:"package_id"`
	Link             string          `json:"link"`
	CreatedTimestamp int64           `json:"created_timestamp"`
	StartTimestamp   int64           `json:"start_timestamp"`
	EndTimestamp     int64           `json:"end_timestamp"`
	CommentCount     int             `json:"comment_count"`
	EntryCount       int             `json:"entry_count"`
	Creator          *ListingCreator `json:"creator"`

	RegionRestricted bool `json:"region_restricted"`
	InviteOnly       bool `json:"invite_only"`
	Whitelist        bool `json:"whitelist"`
	Group            bool `json:"group"`
	ContributorLevel int  `json:"contributor_level"`

	// derived from Link, not part of the wire format
	Code string `json:"-"`
}

type listingPage struct {
	Results []Listing `json:"results"`
}

// EntryCodeFromLink pulls the short entry code out of a canonical
// /giveaway/<code>/<slug> url.
func EntryCodeFromLink(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) < 2 || segments[0] != "giveaway" {
		return ""
	}
	return segments[1]
}

// FetchPage requests one page of the active giveaway listing.
func (c *Client) FetchPage(ctx context.Context, page int) ([]Listing, error) {
	ctx, span := tracer.Start(ctx, "client:FetchPage")
	defer span.End()
	span.SetAttributes(attribute.Int("page", page))

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"format": "json",
			"page":   strconv.Itoa(page),
		}).
		Get("/")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch listing page")
		return nil, err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "listing page returned an error status")
		return nil, fmt.Errorf("listing page %d returned %s", page, res.Status())
	}

	var parsed listingPage
	err = json.Unmarshal(res.Body(), &parsed)
	if err != nil {
		span.SetStatus(codes.Error, "failed to unmarshal listing page")
		return nil, err
	}

	for i, listing := range parsed.Results {
		code := EntryCodeFromLink(listing.Link)
		if code == "" {
			slog.WarnContext(
				ctx, "listing has no usable link",
				"id", listing.Id,
				"link", listing.Link,
			)
		}
		parsed.Results[i].Code = code
	}

	return parsed.Results, nil
}

// FetchAll walks the paginated listing with a fixed pacing delay between
// pages, stopping at the first empty page or at maxPages.
func (c *Client) FetchAll(ctx context.Context, maxPages int, pacing time.Duration) ([]Listing, error) {
	ctx, span := tracer.Start(ctx, "client:FetchAll")
	defer span.End()

	var out []Listing
	for page := 1; page <= maxPages; page++ {
		slog.InfoContext(ctx, "fetching listing page", "page", page, "max_pages", maxPages)

		listings, err := c.FetchPage(ctx, page)
		if err != nil {
			return out, err
		}
		if len(listings) == 0 {
			slog.InfoContext(ctx, "no more listings, stopping", "page", page)
			break
		}
		out = append(out, listings...)

		if page < maxPages && pacing > 0 {
			select {
			case <-time.After(pacing):
			case <-ctx.Done():
				return out, ctx.Err()
			}
		}
	}

	slog.InfoContext(ctx, "fetched listings", "count", len(out))
	return out, nil
}
