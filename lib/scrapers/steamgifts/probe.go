package steamgifts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sgautojoin/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

type EntryState struct {
	Entered bool
	Owned   bool
}

// GiveawayState fetches a giveaway page and inspects it for the markers of
// an existing entry or an already-owned prize: a visible entry-removal
// button means entered, the sidebar "exists in your account" notice means
// owned.
func (c *Client) GiveawayState(ctx context.Context, link string) (EntryState, error) {
	ctx, span := tracer.Start(ctx, "client:GiveawayState")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch giveaway page")
		return EntryState{}, err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "giveaway page returned an error status")
		return EntryState{}, fmt.Errorf("giveaway page returned %s", res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse giveaway page html")
		return EntryState{}, err
	}

	var state EntryState

	removeBtn := doc.Find(`div[data-do="entry_delete"]`).First()
	if len(removeBtn.Nodes) > 0 && !removeBtn.HasClass("is-hidden") {
		state.Entered = true
	}

	doc.Find("div.sidebar__error").Each(func(_ int, sel *goquery.Selection) {
		notice := strings.ToLower(htmlutil.CleanText(sel.Text()))
		if strings.Contains(notice, "exists in your account") {
			state.Owned = true
		}
	})

	return state, nil
}

type entryResponse struct {
	Type   string `json:"type"`
	Msg    string `json:"msg"`
	Points string `json:"points"`
}

// SubmitEntry posts an entry for the given code. A transport or http error
// comes back as err; a logical rejection (site said no) is false, nil.
func (c *Client) SubmitEntry(ctx context.Context, code string) (bool, error) {
	ctx, span := tracer.Start(ctx, "client:SubmitEntry")
	defer span.End()

	if c.XsrfToken == "" {
		return false, fmt.Errorf("session has no xsrf token, call Bootstrap first")
	}
	if code == "" {
		return false, fmt.Errorf("giveaway has no entry code")
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"xsrf_token": c.XsrfToken,
			"do":         "entry_insert",
			"code":       code,
		}).
		Post("/ajax.php")
	if err != nil {
		span.SetStatus(codes.Error, "entry request failed in transport")
		return false, err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "entry request returned an error status")
		return false, fmt.Errorf("entry request returned %s", res.Status())
	}

	var parsed entryResponse
	err = json.Unmarshal(res.Body(), &parsed)
	if err != nil {
		// the site answers entry_insert with json, anything else is not
		// a success indicator
		return false, nil
	}
	return parsed.Type == "success", nil
}
