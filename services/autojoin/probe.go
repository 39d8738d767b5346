package autojoin

import (
	"context"

	"sgautojoin/lib/scrapers/steamgifts"
)

// SiteProbe adapts the steamgifts client to the RemoteProbe capability the
// processor consumes.
type SiteProbe struct {
	Client *steamgifts.Client
}

func (p SiteProbe) CurrentPoints(ctx context.Context) int {
	return p.Client.CurrentPoints(ctx)
}

func (p SiteProbe) IsJoinable(ctx context.Context, rec *GiveawayRecord) (bool, error) {
	state, err := p.Client.GiveawayState(ctx, rec.Link)
	if err != nil {
		return false, err
	}
	if state.Entered {
		rec.Joined = true
	}
	if state.Owned {
		rec.Owned = true
	}
	return !state.Entered && !state.Owned, nil
}

func (p SiteProbe) SubmitEntry(ctx context.Context, rec GiveawayRecord) (bool, error) {
	return p.Client.SubmitEntry(ctx, rec.Code)
}

// RecordFromListing converts a fetched listing row into a cacheable record.
// Join/own knowledge is not part of the listing, the store merge carries it
// forward from previous cycles.
func RecordFromListing(l steamgifts.Listing) GiveawayRecord {
	copies := l.Copies
	if copies < 1 {
		copies = 1
	}

	var creator *Creator
	if l.Creator != nil {
		creator = &Creator{
			Id:       l.Creator.Id,
			SteamId:  l.Creator.SteamId,
			Username: l.Creator.Username,
		}
	}

	return GiveawayRecord{
		Id:               l.Id,
		Name:             l.Name,
		Points:           l.Points,
		Copies:           copies,
		AppId:            l.AppId,
		PackageId:        l.PackageId,
		Link:             l.Link,
		CreatedTimestamp: l.CreatedTimestamp,
		StartTimestamp:   l.StartTimestamp,
		EndTimestamp:     l.EndTimestamp,
		CommentCount:     l.CommentCount,
		EntryCount:       l.EntryCount,
		Creator:          creator,
		Code:             l.Code,
		RegionRestricted: l.RegionRestricted,
		InviteOnly:       l.InviteOnly,
		Whitelist:        l.Whitelist,
		Group:            l.Group,
		ContributorLevel: l.ContributorLevel,
	}
}

// RecordsFromListings converts a whole fetch batch.
func RecordsFromListings(listings []steamgifts.Listing) []GiveawayRecord {
	out := make([]GiveawayRecord, len(listings))
	for i, l := range listings {
		out[i] = RecordFromListing(l)
	}
	return out
}
