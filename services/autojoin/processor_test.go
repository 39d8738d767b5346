package autojoin

import (
	"context"
	"fmt"
	"testing"
	"time"

	"sgautojoin/lib/telemetry"

	"github.com/stretchr/testify/require"
)

// fakeProbe plays the live site: a point balance, a set of giveaways the
// account has already entered or owns, and per-id submit outcomes.
type fakeProbe struct {
	points  int
	entered map[int64]bool
	owned   map[int64]bool

	rejectSubmit map[int64]bool
	failJoinable map[int64]error
	failSubmit   map[int64]error

	joinableCalls int
	submitCalls   int
}

func newFakeProbe(points int) *fakeProbe {
	return &fakeProbe{
		points:       points,
		entered:      map[int64]bool{},
		owned:        map[int64]bool{},
		rejectSubmit: map[int64]bool{},
		failJoinable: map[int64]error{},
		failSubmit:   map[int64]error{},
	}
}

func (p *fakeProbe) CurrentPoints(ctx context.Context) int {
	return p.points
}

func (p *fakeProbe) IsJoinable(ctx context.Context, rec *GiveawayRecord) (bool, error) {
	p.joinableCalls++
	err := p.failJoinable[rec.Id]
	if err != nil {
		return false, err
	}
	rec.Joined = rec.Joined || p.entered[rec.Id]
	rec.Owned = rec.Owned || p.owned[rec.Id]
	return !rec.Joined && !rec.Owned, nil
}

func (p *fakeProbe) SubmitEntry(ctx context.Context, rec GiveawayRecord) (bool, error) {
	p.submitCalls++
	err := p.failSubmit[rec.Id]
	if err != nil {
		return false, err
	}
	if p.rejectSubmit[rec.Id] {
		return false, nil
	}
	p.entered[rec.Id] = true
	p.points -= rec.Points
	return true, nil
}

func testCandidates() []GiveawayRecord {
	end := time.Now().Unix() + 1800
	return []GiveawayRecord{
		{Id: 1, Name: "A", Points: 50, Copies: 1, EndTimestamp: end},
		{Id: 2, Name: "B", Points: 80, Copies: 1, EndTimestamp: end},
	}
}

func TestProcessSpendsBudgetGreedily(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:autojoin")
	defer cleanup()

	store, err := LoadStore(testStorePath(t))
	require.NoError(t, err)

	probe := newFakeProbe(100)
	summary := ProcessAndJoinAll(context.Background(), testCandidates(), probe, store, ProcessOptions{})

	require.Equal(t, 100, summary.StartingBudget)
	require.Equal(t, 2, summary.Attempted)
	require.Equal(t, 1, summary.Joined)
	require.Equal(t, 1, summary.SkippedInsufficientPoints)
	require.Equal(t, 0, summary.SkippedAlreadyEntered)
	require.Equal(t, 0, summary.Failed)
	require.Equal(t, 50, summary.PointsSpent)

	// the join landed in the cache
	joined, ok := store.Get(1)
	require.True(t, ok)
	require.True(t, joined.Joined)
	require.Equal(t, 1, joined.EntryCount)

	// the unaffordable one never hit the network
	_, ok = store.Get(2)
	require.False(t, ok)
	require.Equal(t, 1, probe.joinableCalls)
}

func TestProcessZeroBudgetStops(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:autojoin")
	defer cleanup()

	store, err := LoadStore(testStorePath(t))
	require.NoError(t, err)

	probe := newFakeProbe(0)
	summary := ProcessAndJoinAll(context.Background(), testCandidates(), probe, store, ProcessOptions{})

	require.Equal(t, 0, summary.Attempted)
	require.Equal(t, 0, summary.Joined)
	require.Equal(t, 0, probe.joinableCalls)
	require.Equal(t, 0, probe.submitCalls)
}

func TestProcessIdempotent(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:autojoin")
	defer cleanup()

	store, err := LoadStore(testStorePath(t))
	require.NoError(t, err)

	probe := newFakeProbe(500)
	first := ProcessAndJoinAll(context.Background(), testCandidates(), probe, store, ProcessOptions{})
	require.Equal(t, 2, first.Joined)

	// an identical second pass finds everything already entered
	second := ProcessAndJoinAll(context.Background(), testCandidates(), probe, store, ProcessOptions{})
	require.Equal(t, 0, second.Joined)
	require.Equal(t, 2, second.SkippedAlreadyEntered)
	require.Equal(t, 0, second.PointsSpent)
}

func TestProcessContinuesPastFailures(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:autojoin")
	defer cleanup()

	store, err := LoadStore(testStorePath(t))
	require.NoError(t, err)

	end := time.Now().Unix() + 1800
	candidates := []GiveawayRecord{
		{Id: 1, Name: "check fails", Points: 10, Copies: 1, EndTimestamp: end},
		{Id: 2, Name: "submit errors", Points: 10, Copies: 1, EndTimestamp: end},
		{Id: 3, Name: "submit rejected", Points: 10, Copies: 1, EndTimestamp: end},
		{Id: 4, Name: "fine", Points: 10, Copies: 1, EndTimestamp: end},
	}

	probe := newFakeProbe(100)
	probe.failJoinable[1] = fmt.Errorf("connection reset")
	probe.failSubmit[2] = fmt.Errorf("http 500")
	probe.rejectSubmit[3] = true

	summary := ProcessAndJoinAll(context.Background(), candidates, probe, store, ProcessOptions{})

	require.Equal(t, 4, summary.Attempted)
	require.Equal(t, 3, summary.Failed)
	require.Equal(t, 1, summary.Joined)
	require.Equal(t, 10, summary.PointsSpent)

	joined, ok := store.Get(4)
	require.True(t, ok)
	require.True(t, joined.Joined)
}

func TestProcessPersistsDiscoveredEntryState(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:autojoin")
	defer cleanup()

	store, err := LoadStore(testStorePath(t))
	require.NoError(t, err)

	end := time.Now().Unix() + 1800
	candidates := []GiveawayRecord{
		{Id: 1, Name: "entered elsewhere", Points: 10, Copies: 1, EndTimestamp: end},
		{Id: 2, Name: "already in library", Points: 10, Copies: 1, EndTimestamp: end},
	}

	probe := newFakeProbe(100)
	probe.entered[1] = true
	probe.owned[2] = true

	summary := ProcessAndJoinAll(context.Background(), candidates, probe, store, ProcessOptions{})

	require.Equal(t, 2, summary.Attempted)
	require.Equal(t, 2, summary.SkippedAlreadyEntered)
	require.Equal(t, 0, summary.Joined)
	require.Equal(t, 0, summary.PointsSpent)

	entered, ok := store.Get(1)
	require.True(t, ok)
	require.True(t, entered.Joined)

	owned, ok := store.Get(2)
	require.True(t, ok)
	require.True(t, owned.Owned)
}
