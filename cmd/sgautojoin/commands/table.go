package commands

import (
	"os"
	"time"

	"sgautojoin/services/autojoin"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func renderSummary(summary autojoin.JoinSummary) {
	t := newTable()
	t.AppendHeader(table.Row{"Run", "Budget", "Spent", "Attempted", "Joined", "Skipped (points)", "Skipped (entered)", "Failed"})
	t.AppendRow(table.Row{
		summary.RunId,
		summary.StartingBudget,
		summary.PointsSpent,
		summary.Attempted,
		summary.Joined,
		summary.SkippedInsufficientPoints,
		summary.SkippedAlreadyEntered,
		summary.Failed,
	})
	t.Render()
}

func renderCandidates(candidates []autojoin.GiveawayRecord, now time.Time) {
	t := newTable()
	t.AppendHeader(table.Row{"Id", "Name", "Points", "Copies", "Entries", "Ends in", "P(win)"})
	for _, c := range candidates {
		t.AppendRow(table.Row{
			c.Id,
			c.Name,
			c.Points,
			c.Copies,
			c.EntryCount,
			(time.Duration(c.RemainingSeconds(now)) * time.Second).String(),
			c.WinProbability(),
		})
	}
	t.Render()
}
