package autojoin

import (
	"context"
	"log/slog"
	"time"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("sgautojoin/services/autojoin")

// RemoteProbe is the capability the processor needs from the live site.
type RemoteProbe interface {
	// the authenticated user's spendable balance. implementations return 0
	// on any failure to fetch or parse: an unknown balance is treated as no
	// balance so the processor halts instead of overspending.
	CurrentPoints(ctx context.Context) int
	// live check against the giveaway page. discovers joined/owned states
	// and writes them onto the record; returns false when the record is
	// already joined or owned.
	IsJoinable(ctx context.Context, rec *GiveawayRecord) (bool, error)
	// posts an entry. true only on an explicit success indicator in the
	// response body; transport errors come back as err.
	SubmitEntry(ctx context.Context, rec GiveawayRecord) (bool, error)
}

// JoinSummary accounts for every processed candidate in exactly one of the
// joined/skipped/failed buckets.
type JoinSummary struct {
	RunId          string
	StartingBudget int
	PointsSpent    int

	Attempted                 int
	Joined                    int
	SkippedInsufficientPoints int
	SkippedAlreadyEntered     int
	Failed                    int
}

const DefaultPacing = time.Second

type ProcessOptions struct {
	// delay inserted after each remote call in the loop. the site treats
	// rapid request bursts as abuse. zero disables pacing, callers should
	// pass DefaultPacing unless they are a test.
	Pacing time.Duration
}

// ProcessAndJoinAll walks the ordered candidate list and greedily spends a
// points budget read once up front. A zero balance is a hard stop; an
// unaffordable candidate is skipped; a failed submit is recorded and the
// loop continues. Running it twice over an unchanged list joins at most once
// per candidate: the live check short-circuits anything already entered.
func ProcessAndJoinAll(
	ctx context.Context,
	candidates []GiveawayRecord,
	probe RemoteProbe,
	store *RecordStore,
	opts ProcessOptions,
) JoinSummary {
	ctx, span := tracer.Start(ctx, "ProcessAndJoinAll")
	defer span.End()

	var summary JoinSummary

	runId, err := random.String(8)
	if err != nil {
		slog.WarnContext(ctx, "failed to generate run id", "err", err)
	}
	summary.RunId = runId
	span.SetAttributes(attribute.String("run_id", runId))

	budget := probe.CurrentPoints(ctx)
	summary.StartingBudget = budget
	slog.InfoContext(
		ctx, "processing candidates",
		"run_id", runId,
		"count", len(candidates),
		"budget", budget,
	)

	for _, candidate := range candidates {
		if budget == 0 {
			slog.WarnContext(ctx, "point balance exhausted, stopping", "run_id", runId)
			break
		}
		if budget < candidate.Points {
			summary.Attempted++
			summary.SkippedInsufficientPoints++
			slog.InfoContext(
				ctx, "skipping, not enough points",
				"giveaway", candidate.Short(),
				"cost", candidate.Points,
				"budget", budget,
			)
			continue
		}

		summary.Attempted++

		joinable, err := probe.IsJoinable(ctx, &candidate)
		if err != nil {
			summary.Failed++
			slog.ErrorContext(
				ctx, "joinable check failed",
				"giveaway", candidate.Short(),
				"err", err,
			)
			pace(ctx, opts.Pacing)
			continue
		}
		if !joinable {
			// the probe discovered joined/owned live, make the cache agree
			err := store.Upsert(candidate)
			if err != nil {
				slog.WarnContext(
					ctx, "failed to persist discovered entry state",
					"giveaway", candidate.Short(),
					"err", err,
				)
			}
			summary.SkippedAlreadyEntered++
			slog.InfoContext(
				ctx, "already entered or owned, skipping",
				"giveaway", candidate.Short(),
			)
			pace(ctx, opts.Pacing)
			continue
		}

		ok, err := probe.SubmitEntry(ctx, candidate)
		if err != nil || !ok {
			summary.Failed++
			if err != nil {
				slog.ErrorContext(
					ctx, "entry request failed",
					"giveaway", candidate.Short(),
					"err", err,
				)
			} else {
				slog.ErrorContext(
					ctx, "entry rejected by site",
					"giveaway", candidate.Short(),
				)
			}
			pace(ctx, opts.Pacing)
			continue
		}

		candidate.Joined = true
		candidate.EntryCount++
		err = store.Upsert(candidate)
		if err != nil {
			// the entry went through, the spend is real either way
			slog.ErrorContext(
				ctx, "joined but failed to persist record",
				"giveaway", candidate.Short(),
				"err", err,
			)
		}

		budget -= candidate.Points
		summary.PointsSpent += candidate.Points
		summary.Joined++
		slog.InfoContext(
			ctx, "joined giveaway",
			"giveaway", candidate.Short(),
			"cost", candidate.Points,
			"budget", budget,
		)
		pace(ctx, opts.Pacing)
	}

	slog.InfoContext(
		ctx, "run finished",
		"run_id", runId,
		"attempted", summary.Attempted,
		"joined", summary.Joined,
		"skipped_insufficient", summary.SkippedInsufficientPoints,
		"skipped_entered", summary.SkippedAlreadyEntered,
		"failed", summary.Failed,
		"points_spent", summary.PointsSpent,
	)
	return summary
}

func pace(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
