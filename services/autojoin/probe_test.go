package autojoin

import (
	"testing"

	"sgautojoin/lib/scrapers/steamgifts"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRecordFromListing(t *testing.T) {
	appId := int64(620)
	listing := steamgifts.Listing{
		Id:               1234,
		Name:             "Portal 2",
		Points:           15,
		Copies:           2,
		AppId:            &appId,
		Link:             "https://www.steamgifts.com/giveaway/Aaa11/portal-2",
		CreatedTimestamp: 100,
		StartTimestamp:   100,
		EndTimestamp:     4000,
		CommentCount:     3,
		EntryCount:       150,
		Creator: &steamgifts.ListingCreator{
			Id:       9,
			SteamId:  "7656119",
			Username: "someone",
		},
		RegionRestricted: true,
		ContributorLevel: 2,
		Code:             "Aaa11",
	}

	expected := GiveawayRecord{
		Id:               1234,
		Name:             "Portal 2",
		Points:           15,
		Copies:           2,
		AppId:            &appId,
		Link:             "https://www.steamgifts.com/giveaway/Aaa11/portal-2",
		CreatedTimestamp: 100,
		StartTimestamp:   100,
		EndTimestamp:     4000,
		CommentCount:     3,
		EntryCount:       150,
		Creator: &Creator{
			Id:       9,
			SteamId:  "7656119",
			Username: "someone",
		},
		Code:             "Aaa11",
		RegionRestricted: true,
		ContributorLevel: 2,
	}

	diff := cmp.Diff(expected, RecordFromListing(listing))
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestRecordFromListingClampsCopies(t *testing.T) {
	rec := RecordFromListing(steamgifts.Listing{Id: 1, Name: "x", Copies: 0})
	require.Equal(t, 1, rec.Copies)
	require.NoError(t, rec.Validate())
}

func TestRecordsFromListings(t *testing.T) {
	records := RecordsFromListings([]steamgifts.Listing{
		{Id: 1, Name: "a", Copies: 1},
		{Id: 2, Name: "b", Copies: 1},
	})
	require.Len(t, records, 2)
	require.Equal(t, int64(2), records[1].Id)
}
