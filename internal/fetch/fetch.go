// Package fetch brings the cache up to date with the merge history of the
// source repository.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bjulian5/portsync/internal/cache"
	"github.com/bjulian5/portsync/internal/gh"
	"github.com/bjulian5/portsync/internal/model"
	"github.com/bjulian5/portsync/internal/paginate"
)

// Source is the remote view of the source repository
type Source interface {
	ListMergedChanges(ctx context.Context, repo gh.Repo, cursor string) (paginate.Page[*model.ChangeRecord], error)
	ListChangeFiles(ctx context.Context, repo gh.Repo, number int, cursor string) (paginate.Page[string], error)
}

// Options configures a Fetcher
type Options struct {
	Repo                gh.Repo
	MainBranch          string
	FileRefetchAttempts int
	Now                 func() time.Time
}

// Result summarizes one fetch pass
type Result struct {
	// Records is the whole cache after the pass, ascending by merge time
	Records   []*model.ChangeRecord
	Scanned   int
	New       int
	Skipped   int
	Watermark time.Time
}

// Fetcher walks merged changes newest-first and commits what it found
type Fetcher struct {
	source Source
	store  *cache.Store
	opts   Options
	logger zerolog.Logger
}

// NewFetcher creates a fetcher
func NewFetcher(source Source, store *cache.Store, opts Options, logger zerolog.Logger) *Fetcher {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FileRefetchAttempts < 1 {
		opts.FileRefetchAttempts = 1
	}
	return &Fetcher{
		source: source,
		store:  store,
		opts:   opts,
		logger: logger.With().Str("component", "fetch").Logger(),
	}
}

// Run loads the cache, reads every change updated since the watermark and,
// only if the whole pass succeeded, saves the cache with the watermark moved
// to the time the pass started.
func (f *Fetcher) Run(ctx context.Context) (*Result, error) {
	started := f.opts.Now()

	snap, err := f.store.Load()
	if err != nil {
		return nil, err
	}

	work := snap.Clone()
	since := snap.Watermark
	result := &Result{}

	f.logger.Info().Time("since", since).Int("cached", snap.Len()).Msg("fetching merged changes")

	listChanges := func(ctx context.Context, cursor string) (paginate.Page[*model.ChangeRecord], error) {
		return f.source.ListMergedChanges(ctx, f.opts.Repo, cursor)
	}

	err = paginate.Each(ctx, listChanges, func(rec *model.ChangeRecord) (bool, error) {
		result.Scanned++

		// Newest-first order: nothing past this point was updated since the last pass.
		if rec.UpdatedAt.Before(since) {
			f.logger.Debug().Str("url", rec.URL).Msg("reached watermark")
			return false, nil
		}

		if reason := f.skipReason(work, rec, since); reason != "" {
			result.Skipped++
			ev := f.logger.Debug()
			if reason == "missing identity" {
				ev = f.logger.Warn()
			}
			ev.Str("url", rec.URL).Str("reason", reason).Msg("skipping change")
			return true, nil
		}

		files, err := f.listFiles(ctx, rec.Number())
		if err != nil {
			return false, fmt.Errorf("failed to fetch files of %s: %w", rec.URL, err)
		}
		rec.AddFiles(files...)

		if err := work.Insert(rec); err != nil {
			return false, err
		}
		result.New++

		f.logger.Info().
			Str("url", rec.URL).
			Int("number", rec.Number()).
			Int("files", len(rec.Files)).
			Msg("new change")
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch aborted, cache left unchanged: %w", err)
	}

	work.AdvanceWatermark(started)
	if err := f.store.Save(work); err != nil {
		return nil, err
	}

	result.Records = work.Records()
	result.Watermark = work.Watermark
	return result, nil
}

func (f *Fetcher) skipReason(work *cache.Snapshot, rec *model.ChangeRecord, since time.Time) string {
	switch {
	case !rec.HasIdentity():
		return "missing identity"
	case rec.MergedAt.Before(since):
		return "merged before watermark"
	case work.Has(rec.URL):
		return "already cached"
	case rec.BaseRefName != f.opts.MainBranch:
		return "not merged into " + f.opts.MainBranch
	case rec.Number() == 0:
		return "no pull request number"
	}
	return ""
}

// listFiles reads the whole file list of one change, starting over from the
// first page when a page fails.
func (f *Fetcher) listFiles(ctx context.Context, number int) ([]string, error) {
	listPage := func(ctx context.Context, cursor string) (paginate.Page[string], error) {
		return f.source.ListChangeFiles(ctx, f.opts.Repo, number, cursor)
	}
	return paginate.AllWithRestart(ctx, f.opts.FileRefetchAttempts, listPage)
}
