package autojoin

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/antzucaro/matchr"
)

var ErrInvalidSortKey = fmt.Errorf("unknown sort key")

// SortKey names an attribute a candidate list can be ordered by. The set is
// closed: each key maps to an explicit accessor below, validated before any
// network activity happens.
type SortKey string

const (
	SortRemainingTime  SortKey = "remaining_time"
	SortPoints         SortKey = "points"
	SortCopies         SortKey = "copies"
	SortEntries        SortKey = "entries"
	SortWinProbability SortKey = "win_probability"
)

var sortAccessors = map[SortKey]func(r GiveawayRecord, now time.Time) float64{
	SortRemainingTime: func(r GiveawayRecord, now time.Time) float64 {
		return float64(r.RemainingSeconds(now))
	},
	SortPoints: func(r GiveawayRecord, _ time.Time) float64 {
		return float64(r.Points)
	},
	SortCopies: func(r GiveawayRecord, _ time.Time) float64 {
		return float64(r.Copies)
	},
	SortEntries: func(r GiveawayRecord, _ time.Time) float64 {
		return float64(r.EntryCount)
	},
	SortWinProbability: func(r GiveawayRecord, _ time.Time) float64 {
		return r.WinProbability()
	},
}

// only near-expiry giveaways are considered by default, the harvesting
// strategy of the bot: spend points where the outcome resolves soonest.
const DefaultTimeWindowSeconds int64 = 3600

const defaultAvoidSimilarity = 0.9

type Criteria struct {
	// composite sort key, ties broken by the next key in sequence
	SortKeys []SortKey
	// applies to the whole composite key
	Descending bool

	MinPoints int
	// 0 means unbounded
	MaxPoints int

	// nil disables the time window filter
	TimeWindowSeconds *int64

	// titles to stay away from, matched fuzzily against record names
	AvoidTitles []string
	// JaroWinkler similarity above which a title counts as avoided,
	// defaults to 0.9
	AvoidSimilarity float64
}

func DefaultCriteria() Criteria {
	window := DefaultTimeWindowSeconds
	return Criteria{
		SortKeys:          []SortKey{SortRemainingTime, SortPoints},
		TimeWindowSeconds: &window,
	}
}

func (c Criteria) Validate() error {
	for _, key := range c.SortKeys {
		_, ok := sortAccessors[key]
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidSortKey, key)
		}
	}
	return nil
}

func (c Criteria) avoided(name string) bool {
	threshold := c.AvoidSimilarity
	if threshold == 0 {
		threshold = defaultAvoidSimilarity
	}
	for _, avoid := range c.AvoidTitles {
		similarity := matchr.JaroWinkler(
			strings.ToLower(name),
			strings.ToLower(avoid),
			false,
		)
		if similarity >= threshold {
			return true
		}
	}
	return false
}

// SelectCandidates filters records down to the joinable set allowed by the
// criteria and stable-sorts it by the composite key. An empty result is a
// legitimate terminal state, not an error.
func SelectCandidates(records []GiveawayRecord, criteria Criteria, now time.Time) ([]GiveawayRecord, error) {
	err := criteria.Validate()
	if err != nil {
		return nil, err
	}

	var candidates []GiveawayRecord
	for _, rec := range records {
		if rec.Joined || rec.Owned {
			continue
		}
		if rec.Points < criteria.MinPoints {
			continue
		}
		if criteria.MaxPoints > 0 && rec.Points > criteria.MaxPoints {
			continue
		}
		if criteria.TimeWindowSeconds != nil {
			remaining := rec.RemainingSeconds(now)
			if remaining == 0 || remaining > *criteria.TimeWindowSeconds {
				continue
			}
		}
		if len(criteria.AvoidTitles) > 0 && criteria.avoided(rec.Name) {
			continue
		}
		candidates = append(candidates, rec)
	}

	slices.SortStableFunc(candidates, func(a, b GiveawayRecord) int {
		for _, key := range criteria.SortKeys {
			accessor := sortAccessors[key]
			av := accessor(a, now)
			bv := accessor(b, now)

			cmp := 0
			if av < bv {
				cmp = -1
			}
			if av > bv {
				cmp = 1
			}
			if cmp == 0 {
				continue
			}
			if criteria.Descending {
				return -cmp
			}
			return cmp
		}
		return 0
	})

	return candidates, nil
}
