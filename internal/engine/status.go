package engine

import (
	"time"

	"github.com/bjulian5/portsync/internal/cache"
	"github.com/bjulian5/portsync/internal/classify"
	"github.com/bjulian5/portsync/internal/model"
)

// CacheSummary describes the cache without touching the network
type CacheSummary struct {
	Version       int
	Watermark     time.Time
	Records       int
	Oldest        time.Time
	Newest        time.Time
	ByDisposition map[model.Disposition]int
}

// SummarizeCache classifies every cached change
func SummarizeCache(snap *cache.Snapshot, classifier *classify.Classifier) *CacheSummary {
	summary := &CacheSummary{
		Version:       snap.Version,
		Watermark:     snap.Watermark,
		Records:       snap.Len(),
		ByDisposition: make(map[model.Disposition]int),
	}

	records := snap.Records()
	if len(records) > 0 {
		summary.Oldest = records[0].MergedAt
		summary.Newest = records[len(records)-1].MergedAt
	}
	for _, rec := range records {
		summary.ByDisposition[classifier.Classify(rec)]++
	}
	return summary
}
