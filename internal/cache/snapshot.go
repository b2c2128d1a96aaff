package cache

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bjulian5/portsync/internal/model"
)

// ErrDuplicateRecord is returned when inserting a URL that is already cached
var ErrDuplicateRecord = errors.New("record already cached")

// Snapshot is the in-memory form of the cache document.
// Records are keyed by URL; at most one record exists per URL.
type Snapshot struct {
	Version   int
	Watermark time.Time

	records map[string]*model.ChangeRecord
}

// NewSnapshot returns an empty snapshot
func NewSnapshot(version int, watermark time.Time) *Snapshot {
	return &Snapshot{
		Version:   version,
		Watermark: watermark,
		records:   make(map[string]*model.ChangeRecord),
	}
}

// Has reports whether a record with url is cached
func (s *Snapshot) Has(url string) bool {
	_, ok := s.records[url]
	return ok
}

// Insert adds rec. Records without identity are rejected.
func (s *Snapshot) Insert(rec *model.ChangeRecord) error {
	if rec == nil || !rec.HasIdentity() {
		return errors.New("record has no identity")
	}
	if s.Has(rec.URL) {
		return fmt.Errorf("%s: %w", rec.URL, ErrDuplicateRecord)
	}
	s.records[rec.URL] = rec
	return nil
}

// Len returns the number of cached records
func (s *Snapshot) Len() int {
	return len(s.records)
}

// Records returns the cached records sorted ascending by merge time, then URL
func (s *Snapshot) Records() []*model.ChangeRecord {
	out := make([]*model.ChangeRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	SortByMergedAt(out)
	return out
}

// AdvanceWatermark moves the watermark to t unless that would move it backwards
func (s *Snapshot) AdvanceWatermark(t time.Time) {
	if t.After(s.Watermark) {
		s.Watermark = t
	}
}

// Clone returns a copy that can be mutated without affecting s.
// Records are shared; they are not modified after insertion.
func (s *Snapshot) Clone() *Snapshot {
	c := NewSnapshot(s.Version, s.Watermark)
	for url, rec := range s.records {
		c.records[url] = rec
	}
	return c
}

// SortByMergedAt orders records ascending by merge time, breaking ties by URL
func SortByMergedAt(records []*model.ChangeRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].MergedAt.Equal(records[j].MergedAt) {
			return records[i].MergedAt.Before(records[j].MergedAt)
		}
		return records[i].URL < records[j].URL
	})
}
