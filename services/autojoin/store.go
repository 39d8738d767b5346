package autojoin

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

var ErrCorruptStore = fmt.Errorf("giveaway cache document is corrupt")

// the persisted wire format, shared with older bots that wrote the
// same cache file.
type document struct {
	TimeFetched  int64                     `json:"time_fetched"`
	ResultsCount int                       `json:"results_count"`
	Giveaways    map[string]GiveawayRecord `json:"giveaways"`
}

// RecordStore owns the durable id -> record mapping. It is single-writer:
// one process owns the file for the duration of a run, and every mutating
// call rewrites the whole document so a crash loses at most the in-flight
// item.
type RecordStore struct {
	path string
	doc  document
}

// LoadStore reads the cache document at path. A missing file initializes an
// empty store and persists it immediately; a file that exists but cannot be
// parsed fails with ErrCorruptStore rather than silently operating on
// incomplete data.
func LoadStore(path string) (*RecordStore, error) {
	store := &RecordStore{
		path: path,
		doc: document{
			Giveaways: map[string]GiveawayRecord{},
		},
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Info("initializing empty giveaway cache", "path", path)
		err := store.persist()
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	if err != nil {
		return nil, err
	}

	var doc document
	err = json.Unmarshal(raw, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrCorruptStore, path, err)
	}
	if doc.Giveaways == nil {
		doc.Giveaways = map[string]GiveawayRecord{}
	}

	// keys are re-derived from record ids so a hand-edited document
	// cannot break the key == id invariant
	normalized := make(map[string]GiveawayRecord, len(doc.Giveaways))
	for _, rec := range doc.Giveaways {
		if rec.Id == 0 {
			return nil, fmt.Errorf("%w: %s: entry with missing id", ErrCorruptStore, path)
		}
		normalized[storeKey(rec.Id)] = rec
	}
	doc.Giveaways = normalized

	store.doc = doc
	return store, nil
}

func storeKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (s *RecordStore) Len() int {
	return len(s.doc.Giveaways)
}

func (s *RecordStore) FetchedAt() time.Time {
	return time.Unix(s.doc.TimeFetched, 0)
}

func (s *RecordStore) Get(id int64) (GiveawayRecord, bool) {
	rec, ok := s.doc.Giveaways[storeKey(id)]
	return rec, ok
}

// Records returns a snapshot slice of every cached record.
func (s *RecordStore) Records() []GiveawayRecord {
	out := make([]GiveawayRecord, 0, len(s.doc.Giveaways))
	for _, rec := range s.doc.Giveaways {
		out = append(out, rec)
	}
	return out
}

// Upsert replaces or inserts a record by id and persists synchronously.
func (s *RecordStore) Upsert(rec GiveawayRecord) error {
	err := rec.Validate()
	if err != nil {
		return err
	}
	s.doc.Giveaways[storeKey(rec.Id)] = rec
	return s.persist()
}

// MergeAll reconciles a freshly fetched batch against the cache. The fetch
// has authoritative metadata (points, entries, timing) but stale join/own
// knowledge, so a true joined/owned flag on the cached record sticks even
// when the incoming record says false. Persists once for the whole batch.
func (s *RecordStore) MergeAll(incoming []GiveawayRecord, fetchedAt time.Time) error {
	for _, rec := range incoming {
		err := rec.Validate()
		if err != nil {
			return err
		}
		prev, ok := s.doc.Giveaways[storeKey(rec.Id)]
		if ok {
			rec.Joined = rec.Joined || prev.Joined
			rec.Owned = rec.Owned || prev.Owned
		}
		s.doc.Giveaways[storeKey(rec.Id)] = rec
	}
	s.doc.TimeFetched = fetchedAt.Unix()
	return s.persist()
}

// SweepExpired drops every record that has already ended and reports how
// many were removed. Housekeeping only: candidate selection filters by
// timeframe on its own.
func (s *RecordStore) SweepExpired(now time.Time) (int, error) {
	removed := 0
	for key, rec := range s.doc.Giveaways {
		if rec.EndTimestamp <= now.Unix() {
			delete(s.doc.Giveaways, key)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.persist()
}

func (s *RecordStore) persist() error {
	s.doc.ResultsCount = len(s.doc.Giveaways)

	raw, err := json.MarshalIndent(s.doc, "", "    ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if dir != "." {
		err = os.MkdirAll(dir, 0o755)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, raw, 0o644)
}
