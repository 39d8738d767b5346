package autojoin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSelectCandidatesFilters(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	in := func(remaining int64) int64 { return now.Unix() + remaining }

	records := []GiveawayRecord{
		{Id: 1, Name: "joined", Points: 10, Copies: 1, Joined: true, EndTimestamp: in(600)},
		{Id: 2, Name: "owned", Points: 10, Copies: 1, Owned: true, EndTimestamp: in(600)},
		{Id: 3, Name: "too cheap", Points: 2, Copies: 1, EndTimestamp: in(600)},
		{Id: 4, Name: "too expensive", Points: 120, Copies: 1, EndTimestamp: in(600)},
		{Id: 5, Name: "already ended", Points: 10, Copies: 1, EndTimestamp: in(-60)},
		{Id: 6, Name: "too far out", Points: 10, Copies: 1, EndTimestamp: in(7200)},
		{Id: 7, Name: "keeper", Points: 10, Copies: 1, EndTimestamp: in(600)},
	}

	criteria := DefaultCriteria()
	criteria.MinPoints = 5
	criteria.MaxPoints = 100

	candidates, err := SelectCandidates(records, criteria, now)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, int64(7), candidates[0].Id)
}

func TestSelectCandidatesNilWindow(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	records := []GiveawayRecord{
		{Id: 1, Name: "days away", Points: 10, Copies: 1, EndTimestamp: now.Unix() + 86400*3},
	}

	candidates, err := SelectCandidates(records, Criteria{
		SortKeys: []SortKey{SortPoints},
	}, now)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
}

func TestSelectCandidatesCompositeSort(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	in := func(remaining int64) int64 { return now.Unix() + remaining }

	records := []GiveawayRecord{
		{Id: 1, Name: "a", Points: 30, Copies: 1, EndTimestamp: in(1200)},
		{Id: 2, Name: "b", Points: 10, Copies: 1, EndTimestamp: in(600)},
		{Id: 3, Name: "c", Points: 5, Copies: 1, EndTimestamp: in(1200)},
	}

	criteria := Criteria{SortKeys: []SortKey{SortRemainingTime, SortPoints}}
	candidates, err := SelectCandidates(records, criteria, now)
	require.NoError(t, err)

	ids := []int64{candidates[0].Id, candidates[1].Id, candidates[2].Id}
	require.Equal(t, []int64{2, 3, 1}, ids)

	criteria.Descending = true
	candidates, err = SelectCandidates(records, criteria, now)
	require.NoError(t, err)
	ids = []int64{candidates[0].Id, candidates[1].Id, candidates[2].Id}
	require.Equal(t, []int64{1, 3, 2}, ids)
}

func TestSelectCandidatesWinProbabilitySort(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	records := []GiveawayRecord{
		{Id: 1, Name: "crowded", Points: 10, Copies: 1, EntryCount: 999, EndTimestamp: now.Unix() + 600},
		{Id: 2, Name: "quiet", Points: 10, Copies: 1, EntryCount: 3, EndTimestamp: now.Unix() + 600},
	}

	candidates, err := SelectCandidates(records, Criteria{
		SortKeys:   []SortKey{SortWinProbability},
		Descending: true,
	}, now)
	require.NoError(t, err)
	require.Equal(t, int64(2), candidates[0].Id)
}

func TestSelectCandidatesInvalidSortKey(t *testing.T) {
	_, err := SelectCandidates(nil, Criteria{
		SortKeys: []SortKey{SortPoints, SortKey("bogus")},
	}, time.Now())
	require.ErrorIs(t, err, ErrInvalidSortKey)
}

func TestSelectCandidatesAvoidTitles(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	records := []GiveawayRecord{
		{Id: 1, Name: "Counter-Strike 2", Points: 10, Copies: 1, EndTimestamp: now.Unix() + 600},
		{Id: 2, Name: "Stardew Valley", Points: 10, Copies: 1, EndTimestamp: now.Unix() + 600},
	}

	candidates, err := SelectCandidates(records, Criteria{
		SortKeys:    []SortKey{SortPoints},
		AvoidTitles: []string{"counter-strike 2"},
	}, now)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, int64(2), candidates[0].Id)
}
