// Package engine composes one board synchronization run.
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bjulian5/portsync/internal/board"
	"github.com/bjulian5/portsync/internal/classify"
	"github.com/bjulian5/portsync/internal/config"
	"github.com/bjulian5/portsync/internal/fetch"
	"github.com/bjulian5/portsync/internal/model"
	"github.com/bjulian5/portsync/internal/release"
)

// BoardClient reads and writes the project board
type BoardClient interface {
	board.Lister
	board.Writer
}

// SyncOperations provides the steps of a sync run
type SyncOperations struct {
	Fetcher    *fetch.Fetcher
	Classifier *classify.Classifier
	Attributor *release.Attributor
	Board      BoardClient
	Vocabulary *config.Vocabulary
	DryRun     bool
	Logger     zerolog.Logger
}

// ChangeOutcome is what happened to one change
type ChangeOutcome struct {
	Change   *model.ChangeRecord
	Decision board.Decision
	Outcome  board.Outcome
	Err      error
}

// SyncResult contains the results of a sync run
type SyncResult struct {
	Scanned   int // changes read from the remote this pass
	New       int // changes added to the cache
	Total     int // changes reconciled
	Created   int
	Updated   int
	Unchanged int
	Planned   int // dry-run only
	Failed    int
	Outcomes  []ChangeOutcome
}

// PerformSync fetches new changes, reads the board once and reconciles every
// cached change against it. Mutation failures are counted, not returned.
func (s *SyncOperations) PerformSync(ctx context.Context) (*SyncResult, error) {
	fetched, err := s.Fetcher.Run(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, err := board.Load(ctx, s.Board, board.Target(s.Vocabulary), s.Logger)
	if err != nil {
		return nil, err
	}

	reconciler := board.NewReconciler(s.Board, s.Vocabulary, snapshot, s.DryRun, s.Logger)
	result := &SyncResult{
		Scanned: fetched.Scanned,
		New:     fetched.New,
	}

	for _, rec := range fetched.Records {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		d := s.Decide(ctx, rec, snapshot)
		out, err := reconciler.Reconcile(ctx, d)
		result.Total++
		result.Outcomes = append(result.Outcomes, ChangeOutcome{Change: rec, Decision: d, Outcome: out, Err: err})

		log := s.Logger.With().
			Str("url", rec.URL).
			Int("number", rec.Number()).
			Str("category", string(d.Disposition)).
			Str("owner", d.Owner).
			Str("release", d.Release).
			Str("action", string(out.Action)).
			Logger()

		if err != nil {
			result.Failed++
			log.Error().Err(err).Msg("board update failed")
			continue
		}

		switch out.Action {
		case board.ActionCreated:
			result.Created++
			log.Info().Msg("board entry created")
		case board.ActionUpdated:
			result.Updated++
			log.Info().Msg("board entry updated")
		case board.ActionPlanned:
			result.Planned++
			log.Info().Stringer("mutations", mutationList(out.Mutations)).Msg("board update planned")
		default:
			result.Unchanged++
			log.Debug().Msg("board entry unchanged")
		}
	}

	return result, nil
}

// Decide classifies rec. The release is only looked up when the board has no
// release for the change yet.
func (s *SyncOperations) Decide(ctx context.Context, rec *model.ChangeRecord, snapshot *board.Snapshot) board.Decision {
	d := board.Decision{
		Change:      rec,
		Disposition: s.Classifier.Classify(rec),
		Owner:       s.Classifier.SuggestOwner(rec),
	}
	existing, ok := snapshot.Lookup(rec.URL)
	if !ok || existing.Release == "" {
		d.Release = s.Attributor.Attribute(ctx, rec.MergeCommit)
	}
	return d
}

type mutationList []board.Mutation

func (l mutationList) String() string {
	return fmt.Sprint([]board.Mutation(l))
}
