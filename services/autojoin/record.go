package autojoin

import (
	"fmt"
	"time"
)

type Creator struct {
	Id       int64  `json:"id"`
	SteamId  string `json:"steam_id"`
	Username string `json:"username"`
}

// GiveawayRecord is one listed giveaway. Records are passed around by value;
// the only durable copy lives inside the RecordStore and every persistent
// mutation goes back through Upsert.
//
// RemainingTime/RemainingTimeStr are carried for compatibility with caches
// written by older bots. They go stale the moment they are written, so
// nothing here reads them back; remaining time is always derived from
// EndTimestamp.
type GiveawayRecord struct {
	Id               int64    `json:"id"`
	Name             string   `json:"name"`
	Points           int      `json:"points"`
	Copies           int      `json:"copies"`
	AppId            *int64   `json:"app_id"`
	PackageId        *int64   `json:"package_id"`
	Link             string   `json:"link"`
	CreatedTimestamp int64    `json:"created_timestamp"`
	StartTimestamp   int64    `json:"start_timestamp"`
	EndTimestamp     int64    `json:"end_timestamp"`
	CommentCount     int      `json:"comment_count"`
	EntryCount       int      `json:"entry_count"`
	Creator          *Creator `json:"creator"`
	Code             string   `json:"code"`

	RegionRestricted bool `json:"region_restricted"`
	InviteOnly       bool `json:"invite_only"`
	Whitelist        bool `json:"whitelist"`
	Group            bool `json:"group"`
	ContributorLevel int  `json:"contributor_level"`

	Joined bool `json:"joined"`
	Owned  bool `json:"owned"`

	Score            float64 `json:"score"`
	RemainingTime    int64   `json:"remaining_time"`
	RemainingTimeStr string  `json:"remaining_time_str"`
}

func (r GiveawayRecord) Validate() error {
	if r.Id == 0 {
		return fmt.Errorf("giveaway record is missing an id")
	}
	if r.Points < 0 {
		return fmt.Errorf("giveaway %d: negative point cost %d", r.Id, r.Points)
	}
	if r.EntryCount < 0 {
		return fmt.Errorf("giveaway %d: negative entry count %d", r.Id, r.EntryCount)
	}
	if r.Copies < 1 {
		return fmt.Errorf("giveaway %d: copies must be positive, got %d", r.Id, r.Copies)
	}
	return nil
}

func (r GiveawayRecord) RemainingSeconds(now time.Time) int64 {
	remaining := r.EndTimestamp - now.Unix()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// the chance a single entry wins one of the listed copies. an unjoined
// record counts the hypothetical own entry.
func (r GiveawayRecord) WinProbability() float64 {
	entries := r.EntryCount
	if !r.Joined {
		entries++
	}
	if entries <= 0 {
		return 1
	}
	return float64(r.Copies) / float64(entries)
}

func (r GiveawayRecord) Short() string {
	return fmt.Sprintf("%s (%d)", r.Name, r.Id)
}
