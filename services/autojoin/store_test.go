package autojoin

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testStorePath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "giveaways.json")
}

func TestLoadStoreMissingFile(t *testing.T) {
	path := testStorePath(t)

	store, err := LoadStore(path)
	require.NoError(t, err)
	require.Equal(t, 0, store.Len())

	// the empty document gets written out immediately
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc document
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Equal(t, 0, doc.ResultsCount)
	require.NotNil(t, doc.Giveaways)
}

func TestLoadStoreCorruptFile(t *testing.T) {
	path := testStorePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadStore(path)
	require.ErrorIs(t, err, ErrCorruptStore)
}

func TestUpsertAndGet(t *testing.T) {
	store, err := LoadStore(testStorePath(t))
	require.NoError(t, err)

	rec := GiveawayRecord{Id: 42, Name: "Half-Life", Points: 15, Copies: 1}
	require.NoError(t, store.Upsert(rec))

	got, ok := store.Get(42)
	require.True(t, ok)
	require.Equal(t, "Half-Life", got.Name)

	_, ok = store.Get(99)
	require.False(t, ok)

	rec.Points = 20
	require.NoError(t, store.Upsert(rec))
	got, _ = store.Get(42)
	require.Equal(t, 20, got.Points)
	require.Equal(t, 1, store.Len())

	invalid := GiveawayRecord{Id: 0, Copies: 1}
	require.Error(t, store.Upsert(invalid))
}

func TestMergeAllKeepsJoinedAndOwned(t *testing.T) {
	store, err := LoadStore(testStorePath(t))
	require.NoError(t, err)

	require.NoError(t, store.Upsert(GiveawayRecord{
		Id: 7, Name: "Celeste", Points: 50, Copies: 1, Joined: true,
	}))
	require.NoError(t, store.Upsert(GiveawayRecord{
		Id: 8, Name: "Hades", Points: 30, Copies: 1, Owned: true,
	}))

	fetchedAt := time.Unix(1_700_000_000, 0)
	err = store.MergeAll([]GiveawayRecord{
		// fresh fetch never knows about previous joins
		{Id: 7, Name: "Celeste", Points: 60, Copies: 1, Joined: false},
		{Id: 8, Name: "Hades", Points: 30, Copies: 1, Owned: false},
		{Id: 9, Name: "Stray", Points: 20, Copies: 1},
	}, fetchedAt)
	require.NoError(t, err)

	celeste, _ := store.Get(7)
	require.True(t, celeste.Joined)
	// the fetched metadata still wins
	require.Equal(t, 60, celeste.Points)

	hades, _ := store.Get(8)
	require.True(t, hades.Owned)

	stray, ok := store.Get(9)
	require.True(t, ok)
	require.False(t, stray.Joined)

	require.Equal(t, fetchedAt, store.FetchedAt())
}

func TestSweepExpired(t *testing.T) {
	store, err := LoadStore(testStorePath(t))
	require.NoError(t, err)

	now := time.Unix(2_000_000, 0)
	require.NoError(t, store.Upsert(GiveawayRecord{
		Id: 1, Name: "ended", Copies: 1, EndTimestamp: now.Unix() - 100,
	}))
	require.NoError(t, store.Upsert(GiveawayRecord{
		Id: 2, Name: "ending now", Copies: 1, EndTimestamp: now.Unix(),
	}))
	require.NoError(t, store.Upsert(GiveawayRecord{
		Id: 3, Name: "live", Copies: 1, EndTimestamp: now.Unix() + 100,
	}))

	removed, err := store.SweepExpired(now)
	require.NoError(t, err)
	require.Equal(t, 2, removed)
	require.Equal(t, 1, store.Len())

	_, ok := store.Get(3)
	require.True(t, ok)

	removed, err = store.SweepExpired(now)
	require.NoError(t, err)
	require.Equal(t, 0, removed)
}

func TestStoreReload(t *testing.T) {
	path := testStorePath(t)

	store, err := LoadStore(path)
	require.NoError(t, err)
	require.NoError(t, store.MergeAll([]GiveawayRecord{
		{Id: 1, Name: "a", Points: 5, Copies: 1, Joined: true},
		{Id: 2, Name: "b", Points: 10, Copies: 2},
	}, time.Unix(1_700_000_000, 0)))

	reloaded, err := LoadStore(path)
	require.NoError(t, err)
	require.Equal(t, 2, reloaded.Len())
	require.Equal(t, store.FetchedAt(), reloaded.FetchedAt())

	a, ok := reloaded.Get(1)
	require.True(t, ok)
	require.True(t, a.Joined)

	var doc document
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Equal(t, len(doc.Giveaways), doc.ResultsCount)
}
